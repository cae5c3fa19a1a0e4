// Cinevault - Personal Media Tracking Storage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinevault

/*
Package kvstore implements the storage driver for key-value backends.

Store holds all record logic (serialization, password hashing, search history
ordering, migrations, user listing) and talks to the backend through the
small Backend interface. Five backends are provided:

  - Memory: process-local map with TTL driven by a clock.Clock
  - Badger: embedded badger/v4 database
  - Redis: any Redis-compatible server via go-redis
  - NATS: a JetStream key-value bucket (build tag "nats")
  - Proxy: an Upstash-compatible REST endpoint with retry, circuit breaking
    and client-side rate limiting

# Key Layout

	u:{user}:pr:{source+id}     play record
	u:{user}:fav:{source+id}    favorite
	u:{user}:skip:{source+id}   skip config
	u:{user}:sh                 search history (JSON array)
	u:{user}:danmaku            danmaku filter document
	u:{user}:playrecords        legacy play record map (read by migrations)
	u:{user}:favorites          legacy favorites map
	u:{user}:skipconfigs        legacy skip config map
	pwd:{user}                  legacy (V1) bcrypt hash
	user:{user}                 V2 profile including the bcrypt hash
	oidc:{sub}                  OIDC subject -> username
	global:{key}                global value
	admin:config                admin configuration

The {user} segment is escaped ("%" -> "%25", ":" -> "%3A") so that one user's
prefix never covers another user's keys. Keys written through RawSet are used
verbatim.

# Expiry

RawSet accepts a TTL. Badger, Redis and the proxy expire entries natively.
Memory and NATS expire lazily on read; their expired entries are also removed
by Sweep, which the maintenance service calls periodically.
*/
package kvstore

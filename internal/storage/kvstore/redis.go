// Cinevault - Personal Media Tracking Storage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinevault

package kvstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisScanCount   = 500
	redisDeleteBatch = 500
)

// RedisConfig configures the Redis-compatible backend.
type RedisConfig struct {
	// URL is a redis:// or rediss:// URL. When set, Addr, Password and DB
	// are ignored.
	URL      string
	Addr     string
	Password string
	DB       int

	// KeyPrefix namespaces every key, e.g. "cinevault:". With a prefix,
	// ClearAllData only removes prefixed keys instead of flushing the database.
	KeyPrefix string
}

// Redis is a Backend on any server speaking the Redis protocol.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis creates a Redis backend. It does not contact the server; use Ping.
func NewRedis(cfg RedisConfig) (*Redis, error) {
	var opts *redis.Options
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		opts = parsed
	} else {
		if cfg.Addr == "" {
			return nil, errors.New("redis address is required")
		}
		opts = &redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}
	}
	return &Redis{client: redis.NewClient(opts), prefix: cfg.KeyPrefix}, nil
}

// Name implements Backend.
func (r *Redis) Name() string {
	return "redis"
}

// Get implements Backend.
func (r *Redis) Get(ctx context.Context, key string) (value []byte, ok bool, err error) {
	defer observe("redis", "get", time.Now(), &err)
	value, err = r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// Set implements Backend.
func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) (err error) {
	defer observe("redis", "set", time.Now(), &err)
	return r.client.Set(ctx, r.prefix+key, value, ttl).Err()
}

// Delete implements Backend.
func (r *Redis) Delete(ctx context.Context, keys ...string) (err error) {
	defer observe("redis", "del", time.Now(), &err)
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.prefix + k
	}
	return r.deleteRaw(ctx, full)
}

func (r *Redis) deleteRaw(ctx context.Context, keys []string) error {
	for start := 0; start < len(keys); start += redisDeleteBatch {
		end := start + redisDeleteBatch
		if end > len(keys) {
			end = len(keys)
		}
		if err := r.client.Del(ctx, keys[start:end]...).Err(); err != nil {
			return err
		}
	}
	return nil
}

// Keys implements Backend using SCAN, so it never blocks the server the way
// KEYS would.
func (r *Redis) Keys(ctx context.Context, prefix string) (keys []string, err error) {
	defer observe("redis", "scan", time.Now(), &err)
	raw, err := r.scan(ctx, r.prefix+prefix)
	if err != nil {
		return nil, err
	}
	for _, k := range raw {
		keys = append(keys, strings.TrimPrefix(k, r.prefix))
	}
	return keys, nil
}

func (r *Redis) scan(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	iter := r.client.Scan(ctx, 0, globEscape(prefix)+"*", redisScanCount).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	return keys, iter.Err()
}

// Take implements Taker with GETDEL.
func (r *Redis) Take(ctx context.Context, key string) (value []byte, ok bool, err error) {
	defer observe("redis", "getdel", time.Now(), &err)
	value, err = r.client.GetDel(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// Flush implements Flusher.
func (r *Redis) Flush(ctx context.Context) error {
	if r.prefix == "" {
		return r.client.FlushDB(ctx).Err()
	}
	keys, err := r.scan(ctx, r.prefix)
	if err != nil {
		return err
	}
	return r.deleteRaw(ctx, keys)
}

// Ping implements Pinger.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close implements Backend.
func (r *Redis) Close() error {
	return r.client.Close()
}

// globEscape escapes the glob metacharacters understood by MATCH.
func globEscape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, c := range s {
		switch c {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(c)
	}
	return b.String()
}

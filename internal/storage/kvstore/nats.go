// Cinevault - Personal Media Tracking Storage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinevault

//go:build nats

package kvstore

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/goccy/go-json"
	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// NATSSupported reports whether this binary was built with the nats tag.
const NATSSupported = true

// NATSConfig configures the JetStream key-value backend.
type NATSConfig struct {
	// URL of the NATS server. Ignored when Embedded is set.
	URL string

	// Bucket is the key-value bucket name. Default: cinevault.
	Bucket string

	// Embedded starts an in-process JetStream server storing data in StoreDir.
	Embedded bool
	StoreDir string

	// Clock drives envelope expiry. Default: wall clock.
	Clock clock.Clock
}

// natsEnvelope wraps stored values so TTLs can be enforced per key.
type natsEnvelope struct {
	Value     []byte `json:"v"`
	ExpiresAt int64  `json:"e,omitempty"` // unix ms, 0 = never
}

// NATS is a Backend on a JetStream key-value bucket. Keys are base64url
// encoded because bucket keys allow only a restricted alphabet.
type NATS struct {
	nc       *nats.Conn
	js       jetstream.JetStream
	bucket   string
	embedded *server.Server
	clock    clock.Clock

	// mu guards kv, which Flush replaces.
	mu sync.RWMutex
	kv jetstream.KeyValue
}

// OpenNATS connects to (or starts) a NATS server and binds the bucket,
// creating it when missing.
func OpenNATS(ctx context.Context, cfg NATSConfig) (*NATS, error) {
	if cfg.Bucket == "" {
		cfg.Bucket = "cinevault"
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}

	n := &NATS{bucket: cfg.Bucket, clock: cfg.Clock}
	url := cfg.URL
	if cfg.Embedded {
		ns, err := startEmbeddedNATS(cfg.StoreDir)
		if err != nil {
			return nil, err
		}
		n.embedded = ns
		url = ns.ClientURL()
	}

	nc, err := nats.Connect(url, nats.Name("cinevault-storage"))
	if err != nil {
		n.shutdownEmbedded()
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	n.nc = nc

	if n.js, err = jetstream.New(nc); err != nil {
		n.Close()
		return nil, fmt.Errorf("create jetstream context: %w", err)
	}
	n.mu.Lock()
	err = n.bind(ctx)
	n.mu.Unlock()
	if err != nil {
		n.Close()
		return nil, err
	}
	return n, nil
}

func startEmbeddedNATS(storeDir string) (*server.Server, error) {
	opts := &server.Options{
		ServerName: "cinevault-kv",
		Host:       "127.0.0.1",
		Port:       -1, // random free port
		JetStream:  true,
		StoreDir:   storeDir,
		NoLog:      true,
		NoSigs:     true,
	}
	ns, err := server.NewServer(opts)
	if err != nil {
		return nil, fmt.Errorf("create NATS server: %w", err)
	}
	go ns.Start()
	if !ns.ReadyForConnections(30 * time.Second) {
		ns.Shutdown()
		return nil, errors.New("NATS server not ready within timeout")
	}
	return ns, nil
}

// bind creates or opens the bucket. Callers hold mu.
func (n *NATS) bind(ctx context.Context) error {
	kv, err := n.js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:  n.bucket,
		History: 1,
		Storage: jetstream.FileStorage,
	})
	if err != nil {
		return fmt.Errorf("bind bucket %q: %w", n.bucket, err)
	}
	n.kv = kv
	return nil
}

// store returns the currently bound bucket.
func (n *NATS) store() jetstream.KeyValue {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.kv
}

func encodeNATSKey(key string) string {
	if key == "" {
		return "_"
	}
	return "k" + base64.RawURLEncoding.EncodeToString([]byte(key))
}

func decodeNATSKey(encoded string) (string, bool) {
	if !strings.HasPrefix(encoded, "k") {
		return "", false
	}
	raw, err := base64.RawURLEncoding.DecodeString(encoded[1:])
	if err != nil {
		return "", false
	}
	return string(raw), true
}

// Name implements Backend.
func (n *NATS) Name() string {
	return "nats"
}

func (n *NATS) load(ctx context.Context, encoded string) (*natsEnvelope, uint64, error) {
	entry, err := n.store().Get(ctx, encoded)
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, err
	}
	var env natsEnvelope
	if err := json.Unmarshal(entry.Value(), &env); err != nil {
		return nil, 0, fmt.Errorf("decode envelope: %w", err)
	}
	return &env, entry.Revision(), nil
}

func (n *NATS) live(env *natsEnvelope) bool {
	return env != nil && (env.ExpiresAt == 0 || n.clock.Now().UnixMilli() < env.ExpiresAt)
}

// Get implements Backend.
func (n *NATS) Get(ctx context.Context, key string) (value []byte, ok bool, err error) {
	defer observe("nats", "get", time.Now(), &err)
	env, _, err := n.load(ctx, encodeNATSKey(key))
	if err != nil {
		return nil, false, err
	}
	if !n.live(env) {
		return nil, false, nil
	}
	return env.Value, true, nil
}

// Set implements Backend.
func (n *NATS) Set(ctx context.Context, key string, value []byte, ttl time.Duration) (err error) {
	defer observe("nats", "put", time.Now(), &err)
	env := natsEnvelope{Value: value}
	if ttl > 0 {
		env.ExpiresAt = n.clock.Now().Add(ttl).UnixMilli()
	}
	data, err := json.Marshal(&env)
	if err != nil {
		return err
	}
	_, err = n.store().Put(ctx, encodeNATSKey(key), data)
	return err
}

// Delete implements Backend.
func (n *NATS) Delete(ctx context.Context, keys ...string) (err error) {
	defer observe("nats", "delete", time.Now(), &err)
	kv := n.store()
	for _, k := range keys {
		if err = kv.Delete(ctx, encodeNATSKey(k)); err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
			return err
		}
	}
	return nil
}

func (n *NATS) encodedKeys(ctx context.Context) ([]string, error) {
	lister, err := n.store().ListKeys(ctx)
	if err != nil {
		return nil, err
	}
	defer lister.Stop() //nolint:errcheck // stopping an exhausted lister cannot fail meaningfully

	var keys []string
	for k := range lister.Keys() {
		keys = append(keys, k)
	}
	return keys, nil
}

// Keys implements Backend. Expired entries are filtered out, which costs a
// read per matching key.
func (n *NATS) Keys(ctx context.Context, prefix string) (keys []string, err error) {
	defer observe("nats", "keys", time.Now(), &err)
	encoded, err := n.encodedKeys(ctx)
	if err != nil {
		return nil, err
	}
	for _, ek := range encoded {
		k, ok := decodeNATSKey(ek)
		if !ok || !strings.HasPrefix(k, prefix) {
			continue
		}
		env, _, err := n.load(ctx, ek)
		if err != nil {
			return nil, err
		}
		if n.live(env) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

// Sweep implements Sweeper.
func (n *NATS) Sweep(ctx context.Context) (int, error) {
	encoded, err := n.encodedKeys(ctx)
	if err != nil {
		return 0, err
	}
	kv := n.store()
	removed := 0
	for _, ek := range encoded {
		env, rev, err := n.load(ctx, ek)
		if err != nil {
			return removed, err
		}
		if env == nil || n.live(env) {
			continue
		}
		// Only delete the revision we inspected; a concurrent Set wins.
		if err := kv.Delete(ctx, ek, jetstream.LastRevision(rev)); err != nil {
			continue
		}
		removed++
	}
	return removed, nil
}

// Flush implements Flusher by recreating the bucket. Operations that
// picked up the old bucket before the swap may fail with a not-found error.
func (n *NATS) Flush(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.js.DeleteKeyValue(ctx, n.bucket); err != nil && !errors.Is(err, jetstream.ErrBucketNotFound) {
		return fmt.Errorf("delete bucket %q: %w", n.bucket, err)
	}
	return n.bind(ctx)
}

// Ping implements Pinger.
func (n *NATS) Ping(_ context.Context) error {
	if n.nc == nil || !n.nc.IsConnected() {
		return errors.New("nats connection is not established")
	}
	return nil
}

// Close implements Backend.
func (n *NATS) Close() error {
	if n.nc != nil {
		n.nc.Close()
	}
	n.shutdownEmbedded()
	return nil
}

func (n *NATS) shutdownEmbedded() {
	if n.embedded != nil {
		n.embedded.Shutdown()
		n.embedded.WaitForShutdown()
		n.embedded = nil
	}
}

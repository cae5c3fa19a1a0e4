// Cinevault - Personal Media Tracking Storage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinevault

package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/cinevault/internal/storage"
)

// BadgerConfig configures the embedded badger backend.
type BadgerConfig struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path string

	// InMemory keeps all data in memory (tests and ephemeral deployments).
	InMemory bool

	// SyncWrites fsyncs every write.
	SyncWrites bool
}

// Badger is a Backend on an embedded badger database with native TTL.
type Badger struct {
	db *badger.DB
}

// OpenBadger opens (or creates) a badger database.
func OpenBadger(cfg BadgerConfig) (*Badger, error) {
	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.SyncWrites = cfg.SyncWrites
	opts.Logger = nil // badger's own logger is too chatty at info level

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", cfg.Path, err)
	}
	return &Badger{db: db}, nil
}

// Name implements Backend.
func (b *Badger) Name() string {
	return "badger"
}

// Get implements Backend.
func (b *Badger) Get(_ context.Context, key string) (value []byte, ok bool, err error) {
	defer observe("badger", "get", time.Now(), &err)
	err = b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, b.translate(err)
	}
	return value, true, nil
}

// Set implements Backend.
func (b *Badger) Set(_ context.Context, key string, value []byte, ttl time.Duration) (err error) {
	defer observe("badger", "set", time.Now(), &err)
	err = b.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(key), value)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
	return b.translate(err)
}

// Delete implements Backend. Large deletes go through a write batch so they
// are not limited by the transaction size.
func (b *Badger) Delete(_ context.Context, keys ...string) (err error) {
	defer observe("badger", "delete", time.Now(), &err)
	if b.db.IsClosed() {
		return storage.ErrClosed
	}
	wb := b.db.NewWriteBatch()
	defer wb.Cancel()
	for _, k := range keys {
		if err = wb.Delete([]byte(k)); err != nil {
			return b.translate(err)
		}
	}
	return b.translate(wb.Flush())
}

// Keys implements Backend.
func (b *Badger) Keys(_ context.Context, prefix string) (keys []string, err error) {
	defer observe("badger", "keys", time.Now(), &err)
	p := []byte(prefix)
	err = b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = p
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			keys = append(keys, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})
	return keys, b.translate(err)
}

// Take implements Taker. A concurrent take of the same key loses the
// transaction conflict and sees the key as absent.
func (b *Badger) Take(_ context.Context, key string) (value []byte, ok bool, err error) {
	defer observe("badger", "take", time.Now(), &err)
	err = b.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		if value, err = item.ValueCopy(nil); err != nil {
			return err
		}
		return txn.Delete([]byte(key))
	})
	if errors.Is(err, badger.ErrKeyNotFound) || errors.Is(err, badger.ErrConflict) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, b.translate(err)
	}
	return value, true, nil
}

// Flush implements Flusher.
func (b *Badger) Flush(_ context.Context) error {
	return b.translate(b.db.DropAll())
}

// Ping implements Pinger.
func (b *Badger) Ping(_ context.Context) error {
	if b.db.IsClosed() {
		return storage.ErrClosed
	}
	return nil
}

// RunValueLogGC runs one value log GC pass. It reports whether a file was
// rewritten; callers loop while it returns true.
func (b *Badger) RunValueLogGC(discardRatio float64) (bool, error) {
	err := b.db.RunValueLogGC(discardRatio)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, badger.ErrNoRewrite), errors.Is(err, badger.ErrRejected), errors.Is(err, badger.ErrGCInMemoryMode):
		return false, nil
	default:
		return false, b.translate(err)
	}
}

// Close implements Backend.
func (b *Badger) Close() error {
	if b.db.IsClosed() {
		return nil
	}
	return b.db.Close()
}

func (b *Badger) translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, badger.ErrDBClosed) || b.db.IsClosed() {
		return fmt.Errorf("%w: %v", storage.ErrClosed, err)
	}
	return err
}

// Package boltdb implements cas.CASBackend over go.etcd.io/bbolt, the
// durable backend used by cmd/dialog and the sync integration tests.
// Catalogs map to buckets, created on demand.
package boltdb

import (
	"context"
	"fmt"
	"path/filepath"

	bolt "go.etcd.io/bbolt"
)

// Backend is a bbolt-backed cas.CASBackend. One bucket is created per
// catalog the first time it is used.
type Backend struct {
	db *bolt.DB
}

// Open opens (creating if absent) a BoltDB file at <dataDir>/dialog.db.
func Open(dataDir string) (*Backend, error) {
	dbPath := filepath.Join(dataDir, "dialog.db")
	db, err := bolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("open bolt database: %w", err)
	}
	return &Backend{db: db}, nil
}

func (b *Backend) Close() error { return b.db.Close() }

func (b *Backend) ensureBucket(catalog string) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(catalog))
		return err
	})
}

func (b *Backend) Get(_ context.Context, catalog string, key []byte) ([]byte, bool, error) {
	var out []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(catalog))
		if bucket == nil {
			return nil
		}
		v := bucket.Get(key)
		if v != nil {
			out = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("bolt get: %w", err)
	}
	return out, out != nil, nil
}

func (b *Backend) Put(_ context.Context, catalog string, key []byte, value []byte) error {
	if err := b.ensureBucket(catalog); err != nil {
		return fmt.Errorf("ensure bucket %s: %w", catalog, err)
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(catalog))
		return bucket.Put(key, value)
	})
}

// CompareAndSwap implements the optional CAS extension used by branch
// cells. bbolt transactions are already serialized per-writer, so the
// read-then-conditional-write happens inside one Update call.
func (b *Backend) CompareAndSwap(_ context.Context, catalog string, key []byte, expected, new []byte) (bool, []byte, error) {
	if err := b.ensureBucket(catalog); err != nil {
		return false, nil, fmt.Errorf("ensure bucket %s: %w", catalog, err)
	}
	var ok bool
	var current []byte
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(catalog))
		existing := bucket.Get(key)

		matches := (expected == nil && existing == nil) || bytesEqual(expected, existing)
		if !matches {
			current = append([]byte(nil), existing...)
			ok = false
			return nil
		}
		ok = true
		return bucket.Put(key, new)
	})
	if err != nil {
		return false, nil, fmt.Errorf("bolt compare-and-swap: %w", err)
	}
	return ok, current, nil
}

func bytesEqual(a, b []byte) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

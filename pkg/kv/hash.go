package kv

import (
	"fmt"

	bolt "go.etcd.io/bbolt"
)

// HashMap is a point-lookup-only map, used by unique-hashed indexes
// where range queries are never meaningful.
type HashMap struct {
	db     *DB
	bucket []byte
}

// Get returns the value stored for key, if present.
func (m *HashMap) Get(key []byte) ([]byte, bool, error) {
	var val []byte
	err := m.db.bolt.View(func(tx *bolt.Tx) error {
		val = cp(tx.Bucket(m.bucket).Get(key))
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("kv: get: %w", err)
	}
	return val, val != nil, nil
}

// Put writes key -> value, overwriting any existing value.
func (m *HashMap) Put(key, value []byte) error {
	err := m.db.bolt.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(m.bucket).Put(key, value)
	})
	if err != nil {
		return fmt.Errorf("kv: put: %w", err)
	}
	return nil
}

// Delete removes key, if present.
func (m *HashMap) Delete(key []byte) error {
	err := m.db.bolt.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(m.bucket).Delete(key)
	})
	if err != nil {
		return fmt.Errorf("kv: delete: %w", err)
	}
	return nil
}

// ForEach calls fn for every entry, in no particular guaranteed order
// (callers must not rely on iteration order from a hash map).
func (m *HashMap) ForEach(fn func(k, v []byte) bool) error {
	err := m.db.bolt.View(func(tx *bolt.Tx) error {
		return tx.Bucket(m.bucket).ForEach(func(k, v []byte) error {
			if !fn(k, v) {
				return errStopIteration
			}
			return nil
		})
	})
	if err != nil && err != errStopIteration {
		return fmt.Errorf("kv: foreach: %w", err)
	}
	return nil
}

// Truncate removes every entry from the map.
func (m *HashMap) Truncate() error {
	err := m.db.bolt.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(m.bucket); err != nil {
			return err
		}
		_, err := tx.CreateBucket(m.bucket)
		return err
	})
	if err != nil {
		return fmt.Errorf("kv: truncate: %w", err)
	}
	return nil
}

var errStopIteration = fmt.Errorf("kv: iteration stopped")

package kv

import (
	"bytes"
	"fmt"

	bolt "go.etcd.io/bbolt"
)

// OrderedMap is a byte-key-sorted map supporting point lookups and
// ascending/descending range scans, backing a vault's ordered indexes.
type OrderedMap struct {
	db     *DB
	bucket []byte
}

func cp(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// Get returns the value stored for key, if present.
func (m *OrderedMap) Get(key []byte) ([]byte, bool, error) {
	var val []byte
	err := m.db.bolt.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(m.bucket).Get(key)
		val = cp(v)
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("kv: get: %w", err)
	}
	return val, val != nil, nil
}

// Put writes key -> value, overwriting any existing value.
func (m *OrderedMap) Put(key, value []byte) error {
	err := m.db.bolt.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(m.bucket).Put(key, value)
	})
	if err != nil {
		return fmt.Errorf("kv: put: %w", err)
	}
	return nil
}

// Delete removes key, if present.
func (m *OrderedMap) Delete(key []byte) error {
	err := m.db.bolt.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(m.bucket).Delete(key)
	})
	if err != nil {
		return fmt.Errorf("kv: delete: %w", err)
	}
	return nil
}

// Ascend calls fn for every key >= from (or every key, if from is nil)
// in ascending order, stopping early if fn returns false.
func (m *OrderedMap) Ascend(from []byte, fn func(k, v []byte) bool) error {
	err := m.db.bolt.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(m.bucket).Cursor()
		var k, v []byte
		if from == nil {
			k, v = c.First()
		} else {
			k, v = c.Seek(from)
		}
		for ; k != nil; k, v = c.Next() {
			if !fn(k, v) {
				break
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("kv: ascend: %w", err)
	}
	return nil
}

// AscendGreater calls fn for every key strictly greater than pivot, in
// ascending order.
func (m *OrderedMap) AscendGreater(pivot []byte, fn func(k, v []byte) bool) error {
	return m.Ascend(pivot, func(k, v []byte) bool {
		if bytes.Equal(k, pivot) {
			return true
		}
		return fn(k, v)
	})
}

// Descend calls fn for every key <= from (or every key, if from is
// nil) in descending order, stopping early if fn returns false.
func (m *OrderedMap) Descend(from []byte, fn func(k, v []byte) bool) error {
	err := m.db.bolt.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(m.bucket).Cursor()
		var k, v []byte
		if from == nil {
			k, v = c.Last()
		} else {
			k, v = c.Seek(from)
			if k == nil {
				k, v = c.Last()
			} else if !bytes.Equal(k, from) {
				k, v = c.Prev()
			}
		}
		for ; k != nil; k, v = c.Prev() {
			if !fn(k, v) {
				break
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("kv: descend: %w", err)
	}
	return nil
}

// DescendLesser calls fn for every key strictly less than pivot, in
// descending order.
func (m *OrderedMap) DescendLesser(pivot []byte, fn func(k, v []byte) bool) error {
	return m.Descend(pivot, func(k, v []byte) bool {
		if bytes.Equal(k, pivot) {
			return true
		}
		return fn(k, v)
	})
}

// Min returns the lowest key in the map.
func (m *OrderedMap) Min() (key, value []byte, ok bool, err error) {
	err = m.db.bolt.View(func(tx *bolt.Tx) error {
		k, v := tx.Bucket(m.bucket).Cursor().First()
		key, value, ok = cp(k), cp(v), k != nil
		return nil
	})
	if err != nil {
		return nil, nil, false, fmt.Errorf("kv: min: %w", err)
	}
	return key, value, ok, nil
}

// Max returns the highest key in the map.
func (m *OrderedMap) Max() (key, value []byte, ok bool, err error) {
	err = m.db.bolt.View(func(tx *bolt.Tx) error {
		k, v := tx.Bucket(m.bucket).Cursor().Last()
		key, value, ok = cp(k), cp(v), k != nil
		return nil
	})
	if err != nil {
		return nil, nil, false, fmt.Errorf("kv: max: %w", err)
	}
	return key, value, ok, nil
}

// Truncate removes every entry from the map.
func (m *OrderedMap) Truncate() error {
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

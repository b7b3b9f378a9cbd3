package kv

import (
	"encoding/binary"
	"fmt"

	bolt "go.etcd.io/bbolt"
)

// AppendLog is a fixed-width-key append-only map: each Append call
// assigns the next monotonic uint64 sequence number as the key. It
// backs the vault journal.
type AppendLog struct {
	db     *DB
	bucket []byte
}

// Append writes value under the next sequence number and returns that
// sequence number.
func (m *AppendLog) Append(value []byte) (uint64, error) {
	var seq uint64
	err := m.db.bolt.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(m.bucket)
		n, err := b.NextSequence()
		if err != nil {
			return err
		}
		seq = n
		var key [8]byte
		binary.BigEndian.PutUint64(key[:], seq)
		return b.Put(key[:], value)
	})
	if err != nil {
		return 0, fmt.Errorf("kv: append: %w", err)
	}
	return seq, nil
}

// Delete removes the record at sequence number seq.
func (m *AppendLog) Delete(seq uint64) error {
	var key [8]byte
	binary.BigEndian.PutUint64(key[:], seq)
	err := m.db.bolt.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(m.bucket).Delete(key[:])
	})
	if err != nil {
		return fmt.Errorf("kv: delete: %w", err)
	}
	return nil
}

// Scan calls fn for every record in ascending sequence order.
func (m *AppendLog) Scan(fn func(seq uint64, value []byte) bool) error {
	err := m.db.bolt.View(func(tx *bolt.Tx) error {
		return tx.Bucket(m.bucket).ForEach(func(k, v []byte) error {
			seq := binary.BigEndian.Uint64(k)
			if !fn(seq, v) {
				return errStopIteration
			}
			return nil
		})
	})
	if err != nil && err != errStopIteration {
		return fmt.Errorf("kv: scan: %w", err)
	}
	return nil
}

// Truncate removes every record from the log.
func (m *AppendLog) Truncate() error {
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

// Len reports the number of records currently in the log.
func (m *AppendLog) Len() (int, error) {
	var n int
	err := m.db.bolt.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(m.bucket).Stats().KeyN
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("kv: len: %w", err)
	}
	return n, nil
}

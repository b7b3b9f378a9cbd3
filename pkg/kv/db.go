package kv

import (
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

// DB is a single backend file, shared by all of a vault's maps.
type DB struct {
	bolt *bolt.DB
	path string
}

// Open opens (creating if necessary) the backend file at path.
func Open(path string) (*DB, error) {
	b, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("kv: open %s: %w", path, err)
	}
	return &DB{bolt: b, path: path}, nil
}

// Close releases the backend file.
func (db *DB) Close() error {
	if err := db.bolt.Close(); err != nil {
		return fmt.Errorf("kv: close %s: %w", db.path, err)
	}
	return nil
}

// Path returns the filesystem path the database was opened from.
func (db *DB) Path() string { return db.path }

// Sync flushes any buffered writes to stable storage.
func (db *DB) Sync() error {
	if err := db.bolt.Sync(); err != nil {
		return fmt.Errorf("kv: sync %s: %w", db.path, err)
	}
	return nil
}

// CopyTo writes a consistent snapshot of the whole database to dst,
// used by Vault.Checkpoint to produce dated backups.
func (db *DB) CopyTo(dst string) error {
	err := db.bolt.View(func(tx *bolt.Tx) error {
		return tx.CopyFile(dst, 0600)
	})
	if err != nil {
		return fmt.Errorf("kv: copy %s to %s: %w", db.path, dst, err)
	}
	return nil
}

// OrderedMap opens (creating if necessary) the named ordered map.
func (db *DB) OrderedMap(name string) (*OrderedMap, error) {
	if err := db.ensureBucket(name); err != nil {
		return nil, err
	}
	return &OrderedMap{db: db, bucket: []byte(name)}, nil
}

// HashMap opens (creating if necessary) the named unordered map.
func (db *DB) HashMap(name string) (*HashMap, error) {
	if err := db.ensureBucket(name); err != nil {
		return nil, err
	}
	return &HashMap{db: db, bucket: []byte(name)}, nil
}

// AppendLog opens (creating if necessary) the named fixed-width
// append-only log.
func (db *DB) AppendLog(name string) (*AppendLog, error) {
	if err := db.ensureBucket(name); err != nil {
		return nil, err
	}
	return &AppendLog{db: db, bucket: []byte(name)}, nil
}

func (db *DB) ensureBucket(name string) error {
	err := db.bolt.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(name))
		return err
	})
	if err != nil {
		return fmt.Errorf("kv: create bucket %s: %w", name, err)
	}
	return nil
}

// DropBucket removes a named map entirely (used on index destruction).
func (db *DB) DropBucket(name string) error {
	err := db.bolt.Update(func(tx *bolt.Tx) error {
		if tx.Bucket([]byte(name)) == nil {
			return nil
		}
		return tx.DeleteBucket([]byte(name))
	})
	if err != nil {
		return fmt.Errorf("kv: drop bucket %s: %w", name, err)
	}
	return nil
}

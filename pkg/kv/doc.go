// Package kv provides the abstract key-value backend primitives a
// vault is built from: an ordered map (supports point and range
// lookups), an unordered hash map (point lookups only, for
// unique-hashed indexes), and a fixed-width append-only log (the
// journal). All three ride on a single github.com/etcd-io/bbolt
// database file per vault, one bucket per named map, matching the
// teacher repo's "one *bolt.DB, one bucket per concern" idiom
// (pkg/storage/boltdb.go in the retrieved cuemby/warren reference).
//
// Writes go through bbolt's serialized read-write transactions
// (DB.Update); reads use its concurrent read-only transactions
// (DB.View), giving every map transactional, crash-safe writes without
// the vault needing to know about bbolt directly.
package kv

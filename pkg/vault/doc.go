// Package vault implements the per-collection aggregate: a primary
// key-value store of identifier to document bytes, a crash-recovery
// journal, and the secondary indexes declared
// in the vault's configuration.
//
// Every mutation brackets itself between a journal "begin" and "end"
// record. If the process dies mid-mutation, the next Open finds a
// begin with no matching end and triggers Rebuild, which truncates
// every index and re-derives them from the primary store — the
// authoritative source of truth. Uniqueness is
// pre-checked before any journal record is written, so a rejected
// Place leaves the vault exactly as it was, without needing a rebuild to restore consistency.
package vault

package vault

import "errors"

// ErrNotPermitted is returned when a mutation is attempted while the
// server is in a mode that forbids it.
var ErrNotPermitted = errors.New("vault: not permitted")

// ErrBackendError wraps an underlying kv backend failure encountered
// mid-mutation; the journal's begin record is left in place so a
// restart triggers a rebuild.
var ErrBackendError = errors.New("vault: backend error")

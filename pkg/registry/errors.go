package registry

import "errors"

// ErrUnknownVault is returned by Recall when the named vault is not
// currently open in this registry.
var ErrUnknownVault = errors.New("registry: unknown vault")

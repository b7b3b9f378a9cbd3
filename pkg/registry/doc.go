// Package registry is the process-wide name-to-Vault map. It is an
// explicit value owned by the server runtime — not a package-level
// singleton — so a process can host more than one
// independent registry (a production registry and a test registry in
// the same test binary, for instance).
//
// Each named vault persists under its own subdirectory of the
// registry's root directory, holding the vault's bbolt file plus a
// sibling configuration document describing its declared indexes,
// sub-fields, and event handlers.
package registry

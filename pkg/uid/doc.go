// Package uid implements the 128-bit document identifier used as the
// primary key of every record stored by a vault.
//
// An ID carries 122 bits of entropy plus the 6 RFC 4122 version/variant
// bits. Two construction modes are supported: random (version 4, mixed
// with an optional caller-supplied salt to reduce cross-process collision
// risk) and deterministic (version 5, SHA-1 over a namespace ID and a
// name, matching RFC 4122 name-based UUIDs bit-for-bit). The 64-bit
// integer projection is a lossy XOR-fold used only as an opaque legacy
// key; it is never an inverse of either constructor.
package uid

// Package index implements a vault's secondary indexes and
// the identifier-set algebra (intersection, union, complement,
// symmetric difference) that both Index.merge and the result-set
// package build on.
//
// An Index maps an index-key byte sequence to a set of document
// identifiers. Three kinds are supported: Ordered (non-unique, backed
// by a kv.OrderedMap, supporting range lookups), Hashed (non-unique,
// backed by a kv.HashMap, point lookups only), and UniqueHashed (at
// most one identifier per key, backed by a kv.HashMap, enforcing
// uniqueness on Place).
//
// Equal/Greater/Lesser return an IDSet rather than mutating the
// receiver; IDSet.Merge implements the set algebra Index.merge and
// Result-set filtering both depend on; an intersection iterates the
// smaller operand as its outer loop.
package index

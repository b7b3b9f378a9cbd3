package index

import "encoding/binary"

// Comparator determines how an indexed document-path value is turned
// into index-key bytes, and therefore how the ordered map sorts them.
type Comparator int

const (
	// Lexical compares raw bytes, e.g. UTF-8 strings compared byte by
	// byte.
	Lexical Comparator = iota
	// Int32 compares as signed 32-bit integers.
	Int32
	// Int64 compares as signed 64-bit integers.
	Int64
)

// EncodeKey turns a logical key under comparator c into byte-lexically
// ordered key bytes. For Int32/Int64 this flips the sign bit (offset
// binary) so two's-complement negative numbers still sort below
// positive ones under plain byte comparison.
func EncodeKey(c Comparator, key []byte) []byte {
	switch c {
	case Int32:
		if len(key) != 4 {
			return key
		}
		v := binary.BigEndian.Uint32(key)
		v ^= 0x80000000
		out := make([]byte, 4)
		binary.BigEndian.PutUint32(out, v)
		return out
	case Int64:
		if len(key) != 8 {
			return key
		}
		v := binary.BigEndian.Uint64(key)
		v ^= 0x8000000000000000
		out := make([]byte, 8)
		binary.BigEndian.PutUint64(out, v)
		return out
	default:
		out := make([]byte, len(key))
		copy(out, key)
		return out
	}
}

// EncodeInt32Key is a convenience wrapper producing the order-preserving
// key bytes for a signed 32-bit value.
func EncodeInt32Key(v int32) []byte {
	raw := make([]byte, 4)
	binary.BigEndian.PutUint32(raw, uint32(v)) //nolint:gosec
	return EncodeKey(Int32, raw)
}

// EncodeInt64Key is a convenience wrapper producing the order-preserving
// key bytes for a signed 64-bit value.
func EncodeInt64Key(v int64) []byte {
	raw := make([]byte, 8)
	binary.BigEndian.PutUint64(raw, uint64(v)) //nolint:gosec
	return EncodeKey(Int64, raw)
}

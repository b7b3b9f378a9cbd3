package uid

import (
	"crypto/rand"
	"crypto/sha1" //nolint:gosec // name-based UUIDs are specified to use SHA-1, not used for security.
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// ID is a 128-bit globally unique document identifier. The zero value is
// the nil ID (all zero bytes).
type ID [16]byte

// Nil is the well-known all-zero identifier.
var Nil ID

// DNS is the well-known DNS namespace, per RFC 4122 Appendix C.
var DNS = mustParseLiteral("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

// URL is the well-known URL namespace, per RFC 4122 Appendix C.
var URL = mustParseLiteral("6ba7b811-9dad-11d1-80b4-00c04fd430c8")

func mustParseLiteral(s string) ID {
	u := uuid.MustParse(s)
	var id ID
	copy(id[:], u[:])
	return id
}

// New generates a random (version 4) identifier using a cryptographic RNG.
func New() ID {
	return NewWithMixin(0)
}

// NewWithMixin generates a random identifier, XOR-folding the caller
// supplied mixin into the low 8 bytes before the version/variant bits are
// fixed up. The mixin reduces collision risk across independent
// processes sharing a single RNG seed source (e.g. containers started
// from the same image at the same instant).
func NewWithMixin(mixin uint64) ID {
	var id ID
	if _, err := rand.Read(id[:]); err != nil {
		// crypto/rand.Read only fails if the OS entropy source is broken;
		// there is no sane fallback for a document-identity primitive.
		panic(fmt.Sprintf("uid: crypto/rand unavailable: %v", err))
	}
	if mixin != 0 {
		var m [8]byte
		binary.BigEndian.PutUint64(m[:], mixin)
		for i := 0; i < 8; i++ {
			id[8+i] ^= m[i]
		}
	}
	id[6] = (id[6] & 0x0f) | 0x40 // version 4
	id[8] = (id[8] & 0x3f) | 0x80 // RFC 4122 variant
	return id
}

// FromNamespaceAndName deterministically derives an identifier (version
// 5) from a parent namespace ID and a name byte sequence: the first 16
// bytes of SHA-1(namespace ‖ name), with the version/variant bits
// overwritten.
func FromNamespaceAndName(namespace ID, name []byte) ID {
	h := sha1.New() //nolint:gosec
	h.Write(namespace[:])
	h.Write(name)
	sum := h.Sum(nil)

	var id ID
	copy(id[:], sum[:16])
	id[6] = (id[6] & 0x0f) | 0x50 // version 5
	id[8] = (id[8] & 0x3f) | 0x80 // RFC 4122 variant
	return id
}

// FromBytes builds an ID from a 16-byte slice, failing if the length is
// wrong.
func FromBytes(b []byte) (ID, error) {
	var id ID
	if len(b) != 16 {
		return id, fmt.Errorf("uid: want 16 bytes, got %d", len(b))
	}
	copy(id[:], b)
	return id, nil
}

// FromCanonicalString parses the braced hex form, optionally followed by
// the lossy "/NNNN" integer-projection suffix (which is ignored on
// parse — it is a display convenience, not additional information).
func FromCanonicalString(s string) (ID, error) {
	hex, _, _ := strings.Cut(s, "/")
	hex = strings.TrimPrefix(hex, "{")
	hex = strings.TrimSuffix(hex, "}")

	u, err := uuid.Parse(hex)
	if err != nil {
		return Nil, fmt.Errorf("uid: malformed canonical string %q: %w", s, err)
	}
	var id ID
	copy(id[:], u[:])
	return id, nil
}

// Bytes returns the identifier's 16 raw bytes.
func (id ID) Bytes() []byte {
	out := make([]byte, 16)
	copy(out, id[:])
	return out
}

// Int64 projects the identifier to a 64-bit integer by XOR-folding its
// two 8-byte halves. This projection is lossy and is not an inverse of
// either constructor; it exists only as an opaque hash or legacy scalar
// key.
func (id ID) Int64() int64 {
	hi := binary.BigEndian.Uint64(id[0:8])
	lo := binary.BigEndian.Uint64(id[8:16])
	return int64(hi ^ lo) //nolint:gosec // intentional lossy fold
}

// String returns the canonical "{xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx}/NNNN" form.
func (id ID) String() string {
	u := uuid.UUID(id)
	return "{" + u.String() + "}/" + strconv.FormatInt(id.Int64(), 10)
}

// Canonical returns the bare "xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx"
// form, without the display braces or the lossy integer suffix String
// appends. This is the form scripts see from the Host API's string
// projection testable property).
func (id ID) Canonical() string {
	return uuid.UUID(id).String()
}

// IsNil reports whether id is the all-zero nil identifier.
func (id ID) IsNil() bool {
	return id == Nil
}

// Compare returns -1, 0, or 1 as id is lexicographically less than,
// equal to, or greater than other, over the raw 16 bytes. This is a
// total order.
func (id ID) Compare(other ID) int {
	for i := 0; i < 16; i++ {
		if id[i] != other[i] {
			if id[i] < other[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// Less reports whether id sorts strictly before other.
func (id ID) Less(other ID) bool { return id.Compare(other) < 0 }

package document

import "github.com/logjamd/logjamd/pkg/uid"

// Kind identifies the type of value a Node carries.
type Kind uint8

const (
	KindDouble Kind = iota + 1
	KindString
	KindDocument
	KindArray
	KindBinary
	KindID
	KindBool
	KindTimestamp
	KindNull
	KindRegex
	KindInt32
	KindInt64
)

// String returns a short human-readable name for k, used in error
// messages and script-facing type introspection.
func (k Kind) String() string {
	switch k {
	case KindDouble:
		return "double"
	case KindString:
		return "string"
	case KindDocument:
		return "document"
	case KindArray:
		return "array"
	case KindBinary:
		return "binary"
	case KindID:
		return "id"
	case KindBool:
		return "bool"
	case KindTimestamp:
		return "timestamp"
	case KindNull:
		return "null"
	case KindRegex:
		return "regex"
	case KindInt32:
		return "int32"
	case KindInt64:
		return "int64"
	default:
		return "unknown"
	}
}

// Regex holds a regular expression pattern plus its option flags, the
// way the binary format stores them (two NUL-terminated strings).
type Regex struct {
	Pattern string
	Options string
}

// Node is one typed value in a Document's tree. The zero Node is a null
// node.
type Node struct {
	kind Kind

	str    string
	dbl    float64
	sub    *Document
	bin    []byte
	binSub byte
	id     uid.ID
	bl     bool
	ts     int64
	i32    int32
	i64    int64
	rx     Regex
}

// Kind reports the node's value type.
func (n Node) Kind() Kind { return n.kind }

// NewNull returns a null-typed node.
func NewNull() Node { return Node{kind: KindNull} }

// NewDouble wraps a double-precision float.
func NewDouble(v float64) Node { return Node{kind: KindDouble, dbl: v} }

// NewString wraps a UTF-8 string.
func NewString(v string) Node { return Node{kind: KindString, str: v} }

// NewBool wraps a boolean.
func NewBool(v bool) Node { return Node{kind: KindBool, bl: v} }

// NewInt32 wraps a 32-bit signed integer.
func NewInt32(v int32) Node { return Node{kind: KindInt32, i32: v} }

// NewInt64 wraps a 64-bit signed integer.
func NewInt64(v int64) Node { return Node{kind: KindInt64, i64: v} }

// NewTimestamp wraps a 64-bit timestamp (milliseconds since the Unix
// epoch, by convention; the core does not interpret the value).
func NewTimestamp(v int64) Node { return Node{kind: KindTimestamp, ts: v} }

// NewID wraps a document identifier.
func NewID(v uid.ID) Node { return Node{kind: KindID, id: v} }

// NewBinary wraps an opaque byte blob with a caller-defined subtype tag.
func NewBinary(subtype byte, data []byte) Node {
	cp := make([]byte, len(data))
	copy(cp, data)
	return Node{kind: KindBinary, bin: cp, binSub: subtype}
}

// NewRegex wraps a regular expression pattern and its option flags.
func NewRegex(pattern, options string) Node {
	return Node{kind: KindRegex, rx: Regex{Pattern: pattern, Options: options}}
}

// NewDocumentNode wraps a sub-document.
func NewDocumentNode(d *Document) Node {
	if d == nil {
		d = New()
	}
	return Node{kind: KindDocument, sub: d}
}

// NewArrayNode wraps an array (a Document whose keys are decimal
// indexes in insertion order).
func NewArrayNode(d *Document) Node {
	if d == nil {
		d = New()
	}
	return Node{kind: KindArray, sub: d}
}

// AsDouble returns the node's float64 value, or 0 if the node is not a
// double.
func (n Node) AsDouble() float64 { return n.dbl }

// AsString returns the node's string value, or "" if the node is not a
// string.
func (n Node) AsString() string { return n.str }

// AsBool returns the node's boolean value, or false if the node is not
// a bool.
func (n Node) AsBool() bool { return n.bl }

// AsInt32 returns the node's int32 value, or 0 if the node is not an
// int32.
func (n Node) AsInt32() int32 { return n.i32 }

// AsInt64 returns the node's int64 value, or 0 if the node is not an
// int64.
func (n Node) AsInt64() int64 { return n.i64 }

// AsTimestamp returns the node's timestamp value, or 0 if the node is
// not a timestamp.
func (n Node) AsTimestamp() int64 { return n.ts }

// AsID returns the node's identifier value, or the nil ID if the node
// is not an id.
func (n Node) AsID() uid.ID { return n.id }

// AsBinary returns the node's byte payload and subtype tag.
func (n Node) AsBinary() ([]byte, byte) { return n.bin, n.binSub }

// AsRegex returns the node's pattern/options pair.
func (n Node) AsRegex() Regex { return n.rx }

// AsDocument returns the node's sub-document (or array, since arrays
// are represented as documents). Returns an empty document if the node
// carries neither.
func (n Node) AsDocument() *Document {
	if n.sub == nil {
		return New()
	}
	return n.sub
}

// IsNull reports whether the node is the null type.
func (n Node) IsNull() bool { return n.kind == KindNull || n.kind == 0 }

// Equal reports deep value equality, including child order for document
// and array nodes.
func (n Node) Equal(other Node) bool {
	if n.kind != other.kind {
		// Treat the zero Node and an explicit null node as equal.
		return n.IsNull() && other.IsNull()
	}
	switch n.kind {
	case KindDouble:
		return n.dbl == other.dbl
	case KindString:
		return n.str == other.str
	case KindDocument, KindArray:
		return n.sub.Equal(other.sub)
	case KindBinary:
		if n.binSub != other.binSub || len(n.bin) != len(other.bin) {
			return false
		}
		for i := range n.bin {
			if n.bin[i] != other.bin[i] {
				return false
			}
		}
		return true
	case KindID:
		return n.id == other.id
	case KindBool:
		return n.bl == other.bl
	case KindTimestamp:
		return n.ts == other.ts
	case KindRegex:
		return n.rx == other.rx
	case KindInt32:
		return n.i32 == other.i32
	case KindInt64:
		return n.i64 == other.i64
	case KindNull:
		return true
	default:
		return false
	}
}

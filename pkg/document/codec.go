package document

import (
	"encoding/binary"
	"fmt"
	"unicode/utf8"
)

// Encode serializes the document to its self-delimiting binary form: a
// little-endian int32 total length (inclusive of itself), a sequence of
// (type tag, NUL-terminated name, typed value) elements, and a
// terminating 0x00 byte.
func (d *Document) Encode() []byte {
	var body []byte
	for _, k := range d.order {
		n := d.values[k]
		body = append(body, byte(n.kind))
		body = append(body, []byte(k)...)
		body = append(body, 0)
		body = append(body, encodeValue(n)...)
	}
	body = append(body, 0) // terminator

	total := 4 + len(body)
	out := make([]byte, 4, total)
	binary.LittleEndian.PutUint32(out, uint32(total)) //nolint:gosec // document sizes fit uint32 in practice
	out = append(out, body...)
	return out
}

func encodeValue(n Node) []byte {
	switch n.kind {
	case KindDouble:
		b := make([]byte, 8)
		binary.LittleEndian.PutUint64(b, mathFloatBits(n.dbl))
		return b
	case KindString:
		return encodeString(n.str)
	case KindDocument, KindArray:
		return n.sub.Encode()
	case KindBinary:
		b := make([]byte, 4, 5+len(n.bin))
		binary.LittleEndian.PutUint32(b, uint32(len(n.bin))) //nolint:gosec
		b = append(b, n.binSub)
		b = append(b, n.bin...)
		return b
	case KindID:
		return n.id.Bytes()
	case KindBool:
		if n.bl {
			return []byte{1}
		}
		return []byte{0}
	case KindTimestamp:
		b := make([]byte, 8)
		binary.LittleEndian.PutUint64(b, uint64(n.ts)) //nolint:gosec
		return b
	case KindNull:
		return nil
	case KindRegex:
		var out []byte
		out = append(out, []byte(n.rx.Pattern)...)
		out = append(out, 0)
		out = append(out, []byte(n.rx.Options)...)
		out = append(out, 0)
		return out
	case KindInt32:
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, uint32(n.i32)) //nolint:gosec
		return b
	case KindInt64:
		b := make([]byte, 8)
		binary.LittleEndian.PutUint64(b, uint64(n.i64)) //nolint:gosec
		return b
	default:
		return nil
	}
}

func encodeString(s string) []byte {
	payload := append([]byte(s), 0)
	out := make([]byte, 4, 4+len(payload))
	binary.LittleEndian.PutUint32(out, uint32(len(payload))) //nolint:gosec
	out = append(out, payload...)
	return out
}

// Decode parses the self-delimiting binary form produced by Encode. It
// fails with ErrMalformed on truncation, a bad length prefix, an
// unknown type tag, or a non-UTF-8 string payload.
func Decode(b []byte) (*Document, error) {
	d, _, err := decodeAt(b)
	return d, err
}

// decodeAt decodes one length-prefixed document starting at the front
// of b, returning the number of bytes consumed.
func decodeAt(b []byte) (*Document, int, error) {
	if len(b) < 4 {
		return nil, 0, fmt.Errorf("%w: truncated length prefix", ErrMalformed)
	}
	total := int(binary.LittleEndian.Uint32(b))
	if total < 5 || total > len(b) {
		return nil, 0, fmt.Errorf("%w: invalid total length %d", ErrMalformed, total)
	}

	doc := New()
	pos := 4
	for {
		if pos >= total {
			return nil, 0, fmt.Errorf("%w: missing terminator", ErrMalformed)
		}
		tag := b[pos]
		pos++
		if tag == 0 {
			break
		}

		nameStart := pos
		for pos < total && b[pos] != 0 {
			pos++
		}
		if pos >= total {
			return nil, 0, fmt.Errorf("%w: unterminated field name", ErrMalformed)
		}
		name := string(b[nameStart:pos])
		pos++ // skip NUL

		n, consumed, err := decodeValue(Kind(tag), b[pos:total])
		if err != nil {
			return nil, 0, err
		}
		pos += consumed
		doc.SetChild(name, n)
	}
	return doc, total, nil
}

func decodeValue(kind Kind, b []byte) (Node, int, error) {
	switch kind {
	case KindDouble:
		if len(b) < 8 {
			return Node{}, 0, fmt.Errorf("%w: truncated double", ErrMalformed)
		}
		return NewDouble(mathFloatFromBits(binary.LittleEndian.Uint64(b))), 8, nil
	case KindString:
		s, n, err := decodeString(b)
		if err != nil {
			return Node{}, 0, err
		}
		return NewString(s), n, nil
	case KindDocument, KindArray:
		sub, n, err := decodeAt(b)
		if err != nil {
			return Node{}, 0, err
		}
		if kind == KindArray {
			return NewArrayNode(sub), n, nil
		}
		return NewDocumentNode(sub), n, nil
	case KindBinary:
		if len(b) < 5 {
			return Node{}, 0, fmt.Errorf("%w: truncated binary header", ErrMalformed)
		}
		length := int(binary.LittleEndian.Uint32(b))
		if length < 0 || 5+length > len(b) {
			return Node{}, 0, fmt.Errorf("%w: invalid binary length %d", ErrMalformed, length)
		}
		subtype := b[4]
		data := b[5 : 5+length]
		return NewBinary(subtype, data), 5 + length, nil
	case KindID:
		if len(b) < 16 {
			return Node{}, 0, fmt.Errorf("%w: truncated id", ErrMalformed)
		}
		id, err := uidFromBytes(b[:16])
		if err != nil {
			return Node{}, 0, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return NewID(id), 16, nil
	case KindBool:
		if len(b) < 1 {
			return Node{}, 0, fmt.Errorf("%w: truncated bool", ErrMalformed)
		}
		return NewBool(b[0] != 0), 1, nil
	case KindTimestamp:
		if len(b) < 8 {
			return Node{}, 0, fmt.Errorf("%w: truncated timestamp", ErrMalformed)
		}
		return NewTimestamp(int64(binary.LittleEndian.Uint64(b))), 8, nil //nolint:gosec
	case KindNull:
		return NewNull(), 0, nil
	case KindRegex:
		pattern, n1, err := decodeCString(b)
		if err != nil {
			return Node{}, 0, err
		}
		options, n2, err := decodeCString(b[n1:])
		if err != nil {
			return Node{}, 0, err
		}
		return NewRegex(pattern, options), n1 + n2, nil
	case KindInt32:
		if len(b) < 4 {
			return Node{}, 0, fmt.Errorf("%w: truncated int32", ErrMalformed)
		}
		return NewInt32(int32(binary.LittleEndian.Uint32(b))), 4, nil //nolint:gosec
	case KindInt64:
		if len(b) < 8 {
			return Node{}, 0, fmt.Errorf("%w: truncated int64", ErrMalformed)
		}
		return NewInt64(int64(binary.LittleEndian.Uint64(b))), 8, nil //nolint:gosec
	default:
		return Node{}, 0, fmt.Errorf("%w: unknown type tag 0x%02x", ErrMalformed, byte(kind))
	}
}

func decodeString(b []byte) (string, int, error) {
	if len(b) < 4 {
		return "", 0, fmt.Errorf("%w: truncated string header", ErrMalformed)
	}
	length := int(binary.LittleEndian.Uint32(b))
	if length < 1 || 4+length > len(b) {
		return "", 0, fmt.Errorf("%w: invalid string length %d", ErrMalformed, length)
	}
	payload := b[4 : 4+length]
	if payload[length-1] != 0 {
		return "", 0, fmt.Errorf("%w: string missing NUL terminator", ErrMalformed)
	}
	s := payload[:length-1]
	if !utf8.Valid(s) {
		return "", 0, fmt.Errorf("%w: string payload is not valid UTF-8", ErrMalformed)
	}
	return string(s), 4 + length, nil
}

func decodeCString(b []byte) (string, int, error) {
	i := 0
	for i < len(b) && b[i] != 0 {
		i++
	}
	if i >= len(b) {
		return "", 0, fmt.Errorf("%w: unterminated C string", ErrMalformed)
	}
	if !utf8.Valid(b[:i]) {
		return "", 0, fmt.Errorf("%w: string payload is not valid UTF-8", ErrMalformed)
	}
	return string(b[:i]), i + 1, nil
}

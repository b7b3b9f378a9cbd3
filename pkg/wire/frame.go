package wire

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/logjamd/logjamd/pkg/document"
)

// maxFrameSize bounds a single frame's declared total length, guarding
// against a hostile or corrupt length prefix demanding an unbounded
// read.
const maxFrameSize = 64 << 20

// ReadFrame reads one native-framed document from r: 4 little-endian
// bytes giving the total length N (inclusive of the prefix itself),
// then N-4 more bytes, decoded as a document.
func ReadFrame(r io.Reader) (*document.Document, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("wire: read frame length: %w", err)
	}
	total := binary.LittleEndian.Uint32(header[:])
	if total < 5 || total > maxFrameSize {
		return nil, fmt.Errorf("wire: invalid frame length %d: %w", total, ErrProtocolError)
	}

	buf := make([]byte, total)
	copy(buf, header[:])
	if _, err := io.ReadFull(r, buf[4:]); err != nil {
		return nil, fmt.Errorf("wire: read frame body: %w", err)
	}

	doc, err := document.Decode(buf)
	if err != nil {
		return nil, fmt.Errorf("wire: decode frame: %w", err)
	}
	return doc, nil
}

// WriteFrame writes doc in its native length-prefixed encoding.
func WriteFrame(w io.Writer, doc *document.Document) error {
	if _, err := w.Write(doc.Encode()); err != nil {
		return fmt.Errorf("wire: write frame: %w", err)
	}
	return nil
}

// SniffPrefix reads up to 4 bytes (or until the first whitespace) from
// r without consuming more of the stream than that prefix, and returns
// it verbatim for the Pre stage to classify. Because a
// plain io.Reader cannot un-read, callers pass a buffered reader so the
// returned prefix's bytes remain available to the chosen next stage.
func SniffPrefix(br interface {
	Peek(int) ([]byte, error)
}, n int) (string, error) {
	b, err := br.Peek(n)
	if err != nil && len(b) == 0 {
		return "", fmt.Errorf("wire: sniff prefix: %w", err)
	}
	for i, c := range b {
		if c == ' ' || c == '\t' || c == '\r' || c == '\n' {
			return string(b[:i]), nil
		}
	}
	return string(b), nil
}

package document

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logjamd/logjamd/pkg/uid"
)

func TestSetAutoCreatesIntermediates(t *testing.T) {
	d := New()
	d.Set("a/b/c", NewInt32(5))

	a := d.Get("a")
	require.Equal(t, KindDocument, a.Kind())
	assert.Equal(t, int32(5), a.AsDocument().Get("b/c").AsInt32())
}

func TestGetMissingPathReturnsNull(t *testing.T) {
	d := New()
	assert.True(t, d.Get("does/not/exist").IsNull())
}

func TestSetOverwritesInPlace(t *testing.T) {
	d := New()
	d.Set("x", NewInt32(1))
	d.Set("y", NewInt32(2))
	d.Set("x", NewInt32(3))

	assert.Equal(t, []string{"x", "y"}, d.Keys())
	assert.Equal(t, int32(3), d.Get("x").AsInt32())
}

func TestPushCreatesArray(t *testing.T) {
	d := New()
	d.Push("tags", NewString("a"))
	d.Push("tags", NewString("b"))

	tags := d.Get("tags")
	require.Equal(t, KindArray, tags.Kind())
	assert.Equal(t, "a", tags.AsDocument().Get("0").AsString())
	assert.Equal(t, "b", tags.AsDocument().Get("1").AsString())
}

func TestPushReplacesNonArraySubdocument(t *testing.T) {
	d := New()
	d.Set("thing/name", NewString("first"))
	d.Push("thing", NewString("pushed"))

	thing := d.Get("thing")
	require.Equal(t, KindArray, thing.Kind())
	assert.Equal(t, "pushed", thing.AsDocument().Get("0").AsString())
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	d := New()
	d.Set("name", NewString("hello"))
	d.Set("count", NewInt32(42))
	d.Set("big", NewInt64(1<<40))
	d.Set("ratio", NewDouble(3.5))
	d.Set("flag", NewBool(true))
	d.Set("nothing", NewNull())
	d.Set("when", NewTimestamp(1234567890))
	d.Set("blob", NewBinary(7, []byte{0x00, 0x01, 0xff}))
	d.Set("pattern", NewRegex("^a.*z$", "i"))
	d.Set("owner", NewID(uid.New()))
	d.Push("list/0", NewInt32(1))
	d.Push("list", NewInt32(2))
	d.Set("nested/a/b", NewString("deep"))

	encoded := d.Encode()
	decoded, err := Decode(encoded)
	require.NoError(t, err)

	assert.True(t, d.Equal(decoded), cmp.Diff(d.Keys(), decoded.Keys()))
}

func TestEncodeDecodePreservesChildOrder(t *testing.T) {
	d := New()
	for _, k := range []string{"z", "a", "m", "b"} {
		d.Set(k, NewString(k))
	}
	decoded, err := Decode(d.Encode())
	require.NoError(t, err)
	assert.Equal(t, d.Keys(), decoded.Keys())
}

func TestDecodeTruncatedFails(t *testing.T) {
	_, err := Decode([]byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestDecodeUnknownTypeTagFails(t *testing.T) {
	d := New()
	d.Set("x", NewInt32(1))
	raw := d.Encode()
	// Corrupt the type tag of the first field (byte at offset 4).
	raw[4] = 0xEE
	_, err := Decode(raw)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestDecodeBadLengthPrefixFails(t *testing.T) {
	raw := []byte{0xff, 0xff, 0xff, 0x7f, 0, 0, 0, 0}
	_, err := Decode(raw)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestDecodeNonUTF8StringFails(t *testing.T) {
	d := New()
	d.Set("x", NewString("ok"))
	raw := d.Encode()
	// Field layout: [len][tag 0x02]['x' 0x00][strlen u32][payload...]
	// Find the string payload and inject an invalid UTF-8 byte.
	for i := range raw {
		if raw[i] == 'o' && raw[i+1] == 'k' {
			raw[i] = 0xff
			break
		}
	}
	_, err := Decode(raw)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestArrayIterationOrderIsInsertionOrder(t *testing.T) {
	d := New()
	arr := New()
	arr.SetChild("0", NewString("first"))
	arr.SetChild("1", NewString("second"))
	d.SetChild("items", NewArrayNode(arr))

	got := d.Get("items").AsDocument().Keys()
	assert.Equal(t, []string{"0", "1"}, got)
}

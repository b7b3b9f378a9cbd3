package resultset

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/logjamd/logjamd/pkg/document"
	"github.com/logjamd/logjamd/pkg/index"
	"github.com/logjamd/logjamd/pkg/kv"
	"github.com/logjamd/logjamd/pkg/uid"
	"github.com/logjamd/logjamd/pkg/vault"
)

func openTestVault(t *testing.T) *vault.Vault {
	t.Helper()
	db, err := kv.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := vault.Config{Indexes: []vault.IndexSpec{
		{Name: "by_city", Kind: index.Hashed, Path: "city", Comparator: index.Lexical},
		{Name: "by_age", Kind: index.Ordered, Path: "age", Comparator: index.Int32},
	}}
	v, err := vault.Open(db, "people", cfg)
	require.NoError(t, err)
	return v
}

func place(t *testing.T, v *vault.Vault, city string, age int32) uid.ID {
	t.Helper()
	d := document.New()
	d.Set("city", document.NewString(city))
	d.Set("age", document.NewInt32(age))
	id := v.NextID()
	require.NoError(t, v.Place(id, d))
	return id
}

func TestEqualFiltersByCity(t *testing.T) {
	v := openTestVault(t)
	a := place(t, v, "austin", 30)
	place(t, v, "dallas", 40)

	rs, err := New(v).Equal("city", []byte("austin"))
	require.NoError(t, err)
	require.Equal(t, 1, rs.Size())
	require.True(t, rs.Has(a))
}

func TestAndModeIntersectsSuccessiveFilters(t *testing.T) {
	v := openTestVault(t)
	a := place(t, v, "austin", 30)
	place(t, v, "austin", 40)

	rs, err := New(v).Equal("city", []byte("austin"))
	require.NoError(t, err)
	rs, err = rs.Greater("age", index.EncodeInt32Key(35))
	require.NoError(t, err)

	require.Equal(t, 1, rs.Size())

	rs2, err := New(v).Equal("city", []byte("austin"))
	require.NoError(t, err)
	rs2, err = rs2.Lesser("age", index.EncodeInt32Key(35))
	require.NoError(t, err)
	require.Equal(t, 1, rs2.Size())
	require.True(t, rs2.Has(a))
}

func TestOrModeUnionsSuccessiveFilters(t *testing.T) {
	v := openTestVault(t)
	place(t, v, "austin", 30)
	place(t, v, "dallas", 40)

	rs, err := New(v).ModeOr().Equal("city", []byte("austin"))
	require.NoError(t, err)
	rs, err = rs.Equal("city", []byte("dallas"))
	require.NoError(t, err)

	require.Equal(t, 2, rs.Size())
}

func TestIncludeExcludeBypassMode(t *testing.T) {
	v := openTestVault(t)
	a := place(t, v, "austin", 30)
	b := place(t, v, "dallas", 40)

	rs, err := New(v).Equal("city", []byte("austin"))
	require.NoError(t, err)
	rs = rs.Include(b)
	require.Equal(t, 2, rs.Size())
	require.True(t, rs.Has(a))
	require.True(t, rs.Has(b))

	rs = rs.Exclude(a)
	require.Equal(t, 1, rs.Size())
	require.False(t, rs.Has(a))
}

func TestRecordsAndFirstMaterialize(t *testing.T) {
	v := openTestVault(t)
	place(t, v, "austin", 30)

	rs, err := New(v).Equal("city", []byte("austin"))
	require.NoError(t, err)

	first, ok, err := rs.First()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "austin", first.Get("city").AsString())

	records, err := rs.Records()
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestFirstReturnsLowestOrderedIDNotInsertionOrder(t *testing.T) {
	v := openTestVault(t)
	a := place(t, v, "austin", 30)
	b := place(t, v, "austin", 35)

	low, high := a, b
	if high.Less(low) {
		low, high = high, low
	}

	rs := None(v).ModeOr()
	rs = rs.Include(high)
	rs = rs.Include(low)
	require.Equal(t, 2, rs.Size())

	first, ok, err := rs.First()
	require.NoError(t, err)
	require.True(t, ok)

	want, _, err := v.Fetch(low)
	require.NoError(t, err)
	require.True(t, first.Equal(want))
}

func TestCostsRecordsOneEntryPerFilter(t *testing.T) {
	v := openTestVault(t)
	place(t, v, "austin", 30)

	rs, err := New(v).Equal("city", []byte("austin"))
	require.NoError(t, err)
	rs, err = rs.Greater("age", index.EncodeInt32Key(0))
	require.NoError(t, err)

	costs := rs.Costs()
	require.Len(t, costs, 2)
	require.Equal(t, "equal", costs[0].Command)
	require.Equal(t, "greater", costs[1].Command)
}

func TestEqualOnUnconfiguredPathFails(t *testing.T) {
	v := openTestVault(t)
	_, err := New(v).Equal("no_such_path", []byte("x"))
	require.Error(t, err)
}

func TestTaggedOnUnconfiguredPathIsPermissiveNoOp(t *testing.T) {
	v := openTestVault(t)
	place(t, v, "austin", 30)

	rs, err := New(v).Tagged("no_such_tag_path", []byte("x"))
	require.NoError(t, err)
	require.Equal(t, 0, rs.Size())
}

func TestContainsIsAlwaysAPermissiveNoOp(t *testing.T) {
	v := openTestVault(t)
	a := place(t, v, "austin", 30)

	rs, err := New(v).Equal("city", []byte("austin"))
	require.NoError(t, err)
	before := rs.Size()

	rs, err = rs.Contains("city", []byte("aus"))
	require.NoError(t, err)
	require.Equal(t, before, rs.Size())
	require.True(t, rs.Has(a))
}

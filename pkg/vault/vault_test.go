package vault

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/logjamd/logjamd/pkg/document"
	"github.com/logjamd/logjamd/pkg/index"
	"github.com/logjamd/logjamd/pkg/kv"
	"github.com/logjamd/logjamd/pkg/uid"
)

func openTestVault(t *testing.T, cfg Config) *Vault {
	t.Helper()
	db, err := kv.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	v, err := Open(db, "people", cfg)
	require.NoError(t, err)
	return v
}

func personDoc(name, email string) *document.Document {
	d := document.New()
	d.Set("name", document.NewString(name))
	d.Set("email", document.NewString(email))
	return d
}

func TestPlaceThenFetchRoundTrips(t *testing.T) {
	v := openTestVault(t, Config{})
	id := v.NextID()
	doc := personDoc("Ada", "ada@example.com")

	require.NoError(t, v.Place(id, doc))

	got, ok, err := v.Fetch(id)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, doc.Equal(got))
}

func TestRemoveClearsDocument(t *testing.T) {
	v := openTestVault(t, Config{})
	id := v.NextID()
	require.NoError(t, v.Place(id, personDoc("Ada", "ada@example.com")))

	require.NoError(t, v.Remove(id))

	_, ok, err := v.Fetch(id)
	require.NoError(t, err)
	require.False(t, ok)

	// Removing again is a no-op, not an error.
	require.NoError(t, v.Remove(id))
}

func TestUniqueIndexRejectsDuplicateLeavesVaultUnchanged(t *testing.T) {
	cfg := Config{Indexes: []IndexSpec{
		{Name: "by_email", Kind: index.UniqueHashed, Path: "email", Comparator: index.Lexical},
	}}
	v := openTestVault(t, cfg)

	a := v.NextID()
	require.NoError(t, v.Place(a, personDoc("Ada", "ada@example.com")))

	b := v.NextID()
	err := v.Place(b, personDoc("Ada Clone", "ada@example.com"))
	require.ErrorIs(t, err, index.ErrUniqueConstraintViolation)

	// The rejected placement left no trace: b was never stored, and a's
	// binding is untouched.
	_, ok, err := v.Fetch(b)
	require.NoError(t, err)
	require.False(t, ok)

	idx, _ := v.Index("by_email")
	set, err := idx.Equal([]byte("ada@example.com"))
	require.NoError(t, err)
	require.Equal(t, 1, set.Len())
	require.True(t, set.Contains(a))
}

func TestOrderedIndexReflectsPlacement(t *testing.T) {
	cfg := Config{Indexes: []IndexSpec{
		{Name: "by_age", Kind: index.Ordered, Path: "age", Comparator: index.Int32},
	}}
	v := openTestVault(t, cfg)

	ids := make([]uid.ID, 3)
	for i := range ids {
		d := document.New()
		d.Set("age", document.NewInt32(int32(i*10)))
		ids[i] = v.NextID()
		require.NoError(t, v.Place(ids[i], d))
	}

	idx, _ := v.Index("by_age")
	all, err := idx.All()
	require.NoError(t, err)
	require.Equal(t, 3, all.Len())

	gt, err := idx.Greater(index.EncodeInt32Key(0))
	require.NoError(t, err)
	require.Equal(t, 2, gt.Len())
}

func TestRebuildRederivesIndexesFromPrimary(t *testing.T) {
	cfg := Config{Indexes: []IndexSpec{
		{Name: "by_email", Kind: index.UniqueHashed, Path: "email", Comparator: index.Lexical},
	}}
	v := openTestVault(t, cfg)

	id := v.NextID()
	require.NoError(t, v.Place(id, personDoc("Ada", "ada@example.com")))

	idx, _ := v.Index("by_email")
	require.NoError(t, idx.Truncate())
	set, err := idx.Equal([]byte("ada@example.com"))
	require.NoError(t, err)
	require.Equal(t, 0, set.Len())

	require.NoError(t, v.Rebuild())

	set, err = idx.Equal([]byte("ada@example.com"))
	require.NoError(t, err)
	require.Equal(t, 1, set.Len())
	require.True(t, set.Contains(id))
}

func TestOpenRebuildsWhenJournalIsNonEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")
	db, err := kv.Open(path)
	require.NoError(t, err)

	cfg := Config{Indexes: []IndexSpec{
		{Name: "by_email", Kind: index.UniqueHashed, Path: "email", Comparator: index.Lexical},
	}}
	v, err := Open(db, "people", cfg)
	require.NoError(t, err)

	id := v.NextID()
	require.NoError(t, v.Place(id, personDoc("Ada", "ada@example.com")))

	// Simulate a crash mid-mutation: leave a dangling begin record.
	journal, err := db.AppendLog(bucketName("people", "journal"))
	require.NoError(t, err)
	_, err = journal.Append([]byte{tagBegin})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db2, err := kv.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db2.Close() })

	v2, err := Open(db2, "people", cfg)
	require.NoError(t, err)

	idx, _ := v2.Index("by_email")
	set, err := idx.Equal([]byte("ada@example.com"))
	require.NoError(t, err)
	require.Equal(t, 1, set.Len())
}

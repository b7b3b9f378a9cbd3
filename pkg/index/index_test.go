package index

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/logjamd/logjamd/pkg/kv"
	"github.com/logjamd/logjamd/pkg/uid"
)

func openTestDB(t *testing.T) *kv.DB {
	t.Helper()
	db, err := kv.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOrderedIndexEqualGreaterLesserPartition(t *testing.T) {
	db := openTestDB(t)
	idx, err := Open(db, "idx", "by_age", Ordered, "age", Int32)
	require.NoError(t, err)

	ids := make([]uid.ID, 5)
	for i := range ids {
		ids[i] = uid.New()
		require.NoError(t, idx.Place(EncodeInt32Key(int32(i)), ids[i]))
	}

	pivot := EncodeInt32Key(2)
	eq, err := idx.Equal(pivot)
	require.NoError(t, err)
	gt, err := idx.Greater(pivot)
	require.NoError(t, err)
	lt, err := idx.Lesser(pivot)
	require.NoError(t, err)
	all, err := idx.All()
	require.NoError(t, err)

	union := eq.Merge(Union, gt).Merge(Union, lt)
	require.Equal(t, all.Len(), union.Len())
	for _, id := range all.Slice() {
		require.True(t, union.Contains(id))
	}

	require.Equal(t, 1, eq.Len())
	require.Equal(t, 2, gt.Len())
	require.Equal(t, 2, lt.Len())
}

func TestHashedIndexRejectsRangeQuery(t *testing.T) {
	db := openTestDB(t)
	idx, err := Open(db, "idx", "by_tag", Hashed, "tag", Lexical)
	require.NoError(t, err)

	_, err = idx.Greater([]byte("x"))
	require.ErrorIs(t, err, ErrUnsupportedOperation)
	_, err = idx.Lesser([]byte("x"))
	require.ErrorIs(t, err, ErrUnsupportedOperation)
}

func TestUniqueIndexRejectsDuplicateKey(t *testing.T) {
	db := openTestDB(t)
	idx, err := Open(db, "idx", "by_email", UniqueHashed, "email", Lexical)
	require.NoError(t, err)

	a, b := uid.New(), uid.New()
	require.NoError(t, idx.Place([]byte("a@example.com"), a))
	err = idx.Place([]byte("a@example.com"), b)
	require.ErrorIs(t, err, ErrUniqueConstraintViolation)

	// Re-placing the same id for the same key is idempotent, not a
	// violation.
	require.NoError(t, idx.Place([]byte("a@example.com"), a))
}

func TestIndexPlaceRemove(t *testing.T) {
	db := openTestDB(t)
	idx, err := Open(db, "idx", "by_tag", Hashed, "tag", Lexical)
	require.NoError(t, err)

	a, b := uid.New(), uid.New()
	require.NoError(t, idx.Place([]byte("red"), a))
	require.NoError(t, idx.Place([]byte("red"), b))

	set, err := idx.Equal([]byte("red"))
	require.NoError(t, err)
	require.Equal(t, 2, set.Len())

	require.NoError(t, idx.Remove([]byte("red"), a))
	set, err = idx.Equal([]byte("red"))
	require.NoError(t, err)
	require.Equal(t, 1, set.Len())
	require.True(t, set.Contains(b))
}

func TestIDSetAlgebraLaws(t *testing.T) {
	x, y, z := uid.New(), uid.New(), uid.New()
	a := NewIDSet(x, y)
	b := NewIDSet(y, z)

	require.Equal(t, a.Merge(Union, b).Len(), b.Merge(Union, a).Len())
	require.Equal(t, a.Merge(Intersection, b).Len(), b.Merge(Intersection, a).Len())

	symDiff := a.Merge(Complement, b).Merge(Union, b.Merge(Complement, a))
	require.Equal(t, a.Merge(SymmetricDifference, b).Len(), symDiff.Len())

	require.Equal(t, 0, a.Merge(SymmetricDifference, a).Len())
	require.Equal(t, a.Len(), a.Merge(Intersection, a).Len())
}

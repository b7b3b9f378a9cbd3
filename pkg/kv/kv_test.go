package kv

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOrderedMapPutGetDelete(t *testing.T) {
	db := openTestDB(t)
	m, err := db.OrderedMap("m")
	require.NoError(t, err)

	require.NoError(t, m.Put([]byte("a"), []byte("1")))
	v, ok, err := m.Get([]byte("a"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("1"), v)

	require.NoError(t, m.Delete([]byte("a")))
	_, ok, err = m.Get([]byte("a"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestOrderedMapRangeScans(t *testing.T) {
	db := openTestDB(t)
	m, err := db.OrderedMap("m")
	require.NoError(t, err)

	for _, k := range []string{"a", "b", "c", "d"} {
		require.NoError(t, m.Put([]byte(k), []byte(k)))
	}

	var got []string
	require.NoError(t, m.AscendGreater([]byte("b"), func(k, v []byte) bool {
		got = append(got, string(k))
		return true
	}))
	require.Equal(t, []string{"c", "d"}, got)

	got = nil
	require.NoError(t, m.DescendLesser([]byte("c"), func(k, v []byte) bool {
		got = append(got, string(k))
		return true
	}))
	require.Equal(t, []string{"b", "a"}, got)

	_, _, ok, err := m.Min()
	require.NoError(t, err)
	require.True(t, ok)

	maxKey, _, ok, err := m.Max()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("d"), maxKey)
}

func TestAppendLogMonotonicSequence(t *testing.T) {
	db := openTestDB(t)
	log, err := db.AppendLog("journal")
	require.NoError(t, err)

	seq1, err := log.Append([]byte("begin-1"))
	require.NoError(t, err)
	seq2, err := log.Append([]byte("end-1"))
	require.NoError(t, err)
	require.Less(t, seq1, seq2)

	var records []string
	require.NoError(t, log.Scan(func(seq uint64, value []byte) bool {
		records = append(records, string(value))
		return true
	}))
	require.Equal(t, []string{"begin-1", "end-1"}, records)

	n, err := log.Len()
	require.NoError(t, err)
	require.Equal(t, 2, n)

	require.NoError(t, log.Truncate())
	n, err = log.Len()
	require.NoError(t, err)
	require.Equal(t, 0, n)
}

func TestHashMapForEach(t *testing.T) {
	db := openTestDB(t)
	m, err := db.HashMap("h")
	require.NoError(t, err)

	require.NoError(t, m.Put([]byte("k1"), []byte("v1")))
	require.NoError(t, m.Put([]byte("k2"), []byte("v2")))

	seen := map[string]string{}
	require.NoError(t, m.ForEach(func(k, v []byte) bool {
		seen[string(k)] = string(v)
		return true
	}))
	require.Equal(t, map[string]string{"k1": "v1", "k2": "v2"}, seen)
}

package index

import (
	"fmt"

	"github.com/logjamd/logjamd/pkg/kv"
	"github.com/logjamd/logjamd/pkg/uid"
)

// Kind selects how an Index is backed and what operations it supports.
type Kind int

const (
	// Ordered indexes are non-unique and support Equal, Greater, and
	// Lesser.
	Ordered Kind = iota
	// Hashed indexes are non-unique and support only Equal.
	Hashed
	// UniqueHashed indexes bind at most one identifier per key and
	// support only Equal; Place rejects a second binding.
	UniqueHashed
)

// Index is a named secondary index within a vault.
type Index struct {
	Name       string
	Kind       Kind
	Path       string
	Comparator Comparator

	ordered *kv.OrderedMap
	hashed  *kv.HashMap
}

// Open attaches an Index to its backing bucket, creating it if
// necessary. db is the vault's backend; bucket is a name unique to this
// index within the vault (conventionally "idx:<name>").
func Open(db *kv.DB, bucket string, name string, kind Kind, path string, cmp Comparator) (*Index, error) {
	idx := &Index{Name: name, Kind: kind, Path: path, Comparator: cmp}
	var err error
	switch kind {
	case Ordered:
		idx.ordered, err = db.OrderedMap(bucket)
	default:
		idx.hashed, err = db.HashMap(bucket)
	}
	if err != nil {
		return nil, fmt.Errorf("index %s: %w", name, err)
	}
	return idx, nil
}

// isUnique reports whether the index enforces a single identifier per
// key.
func (idx *Index) isUnique() bool { return idx.Kind == UniqueHashed }

func idsToBytes(ids []uid.ID) []byte {
	out := make([]byte, 0, len(ids)*16)
	for _, id := range ids {
		out = append(out, id.Bytes()...)
	}
	return out
}

func idsFromBytes(b []byte) []uid.ID {
	n := len(b) / 16
	out := make([]uid.ID, 0, n)
	for i := 0; i < n; i++ {
		id, err := uid.FromBytes(b[i*16 : i*16+16])
		if err != nil {
			continue
		}
		out = append(out, id)
	}
	return out
}

func (idx *Index) getRaw(key []byte) ([]byte, bool, error) {
	if idx.ordered != nil {
		return idx.ordered.Get(key)
	}
	return idx.hashed.Get(key)
}

func (idx *Index) putRaw(key, value []byte) error {
	if idx.ordered != nil {
		return idx.ordered.Put(key, value)
	}
	return idx.hashed.Put(key, value)
}

func (idx *Index) deleteRaw(key []byte) error {
	if idx.ordered != nil {
		return idx.ordered.Delete(key)
	}
	return idx.hashed.Delete(key)
}

// Equal returns the set of identifiers bound to exactly key. Unique
// indexes resolve in O(1) via the hash map; non-unique ordered indexes
// resolve via the ordered map, collecting duplicates.
func (idx *Index) Equal(key []byte) (IDSet, error) {
	val, ok, err := idx.getRaw(key)
	if err != nil {
		return IDSet{}, fmt.Errorf("index %s: equal: %w", idx.Name, err)
	}
	if !ok {
		return IDSet{}, nil
	}
	return NewIDSet(idsFromBytes(val)...), nil
}

// Greater returns identifiers whose index key compares strictly greater
// than key, under the index's comparator. Only Ordered indexes support
// this; others fail with ErrUnsupportedOperation.
func (idx *Index) Greater(key []byte) (IDSet, error) {
	if idx.ordered == nil {
		return IDSet{}, fmt.Errorf("index %s: greater: %w", idx.Name, ErrUnsupportedOperation)
	}
	var all []uid.ID
	err := idx.ordered.AscendGreater(key, func(_, v []byte) bool {
		all = append(all, idsFromBytes(v)...)
		return true
	})
	if err != nil {
		return IDSet{}, fmt.Errorf("index %s: greater: %w", idx.Name, err)
	}
	return NewIDSet(all...), nil
}

// Lesser returns identifiers whose index key compares strictly less
// than key, under the index's comparator. Only Ordered indexes support
// this; others fail with ErrUnsupportedOperation.
func (idx *Index) Lesser(key []byte) (IDSet, error) {
	if idx.ordered == nil {
		return IDSet{}, fmt.Errorf("index %s: lesser: %w", idx.Name, ErrUnsupportedOperation)
	}
	var all []uid.ID
	err := idx.ordered.DescendLesser(key, func(_, v []byte) bool {
		all = append(all, idsFromBytes(v)...)
		return true
	})
	if err != nil {
		return IDSet{}, fmt.Errorf("index %s: lesser: %w", idx.Name, err)
	}
	return NewIDSet(all...), nil
}

// All returns every identifier currently indexed, used to verify the
// equal/greater/lesser partition property.
func (idx *Index) All() (IDSet, error) {
	var all []uid.ID
	collect := func(_, v []byte) bool {
		all = append(all, idsFromBytes(v)...)
		return true
	}
	var err error
	if idx.ordered != nil {
		err = idx.ordered.Ascend(nil, collect)
	} else {
		err = idx.hashed.ForEach(collect)
	}
	if err != nil {
		return IDSet{}, fmt.Errorf("index %s: all: %w", idx.Name, err)
	}
	return NewIDSet(all...), nil
}

// MinKey returns the lowest key currently present in an ordered index.
func (idx *Index) MinKey() ([]byte, bool, error) {
	if idx.ordered == nil {
		return nil, false, fmt.Errorf("index %s: min_key: %w", idx.Name, ErrUnsupportedOperation)
	}
	k, _, ok, err := idx.ordered.Min()
	if err != nil {
		return nil, false, fmt.Errorf("index %s: min_key: %w", idx.Name, err)
	}
	return k, ok, nil
}

// MaxKey returns the highest key currently present in an ordered index.
func (idx *Index) MaxKey() ([]byte, bool, error) {
	if idx.ordered == nil {
		return nil, false, fmt.Errorf("index %s: max_key: %w", idx.Name, ErrUnsupportedOperation)
	}
	k, _, ok, err := idx.ordered.Max()
	if err != nil {
		return nil, false, fmt.Errorf("index %s: max_key: %w", idx.Name, err)
	}
	return k, ok, nil
}

// Place binds id to key, maintaining the secondary structure. Unique
// indexes fail with ErrUniqueConstraintViolation if key is already
// bound to a different identifier.
func (idx *Index) Place(key []byte, id uid.ID) error {
	existing, ok, err := idx.getRaw(key)
	if err != nil {
		return fmt.Errorf("index %s: place: %w", idx.Name, err)
	}

	if idx.isUnique() {
		if ok {
			bound := idsFromBytes(existing)
			if len(bound) > 0 && bound[0] != id {
				return fmt.Errorf("index %s: place key %x: %w", idx.Name, key, ErrUniqueConstraintViolation)
			}
		}
		return idx.putRaw(key, id.Bytes())
	}

	ids := idsFromBytes(existing)
	for _, existingID := range ids {
		if existingID == id {
			return nil // already bound; Place is idempotent
		}
	}
	ids = append(ids, id)
	return idx.putRaw(key, idsToBytes(ids))
}

// CheckUnique reports whether binding id to key is permitted under a
// unique index's constraint, without mutating anything. Non-unique
// indexes always return nil. A vault pre-checks every unique index this
// way before writing its journal's begin record, so a rejected
// placement never needs a rollback.
func (idx *Index) CheckUnique(key []byte, id uid.ID) error {
	if !idx.isUnique() {
		return nil
	}
	existing, ok, err := idx.getRaw(key)
	if err != nil {
		return fmt.Errorf("index %s: check_unique: %w", idx.Name, err)
	}
	if ok {
		bound := idsFromBytes(existing)
		if len(bound) > 0 && bound[0] != id {
			return fmt.Errorf("index %s: check_unique key %x: %w", idx.Name, key, ErrUniqueConstraintViolation)
		}
	}
	return nil
}

// Remove unbinds id from key. A no-op if the binding does not exist.
func (idx *Index) Remove(key []byte, id uid.ID) error {
	existing, ok, err := idx.getRaw(key)
	if err != nil {
		return fmt.Errorf("index %s: remove: %w", idx.Name, err)
	}
	if !ok {
		return nil
	}

	ids := idsFromBytes(existing)
	out := ids[:0]
	for _, existingID := range ids {
		if existingID != id {
			out = append(out, existingID)
		}
	}
	if len(out) == 0 {
		return idx.deleteRaw(key)
	}
	return idx.putRaw(key, idsToBytes(out))
}

// Truncate removes every entry, used before a full rebuild.
func (idx *Index) Truncate() error {
	var err error
	if idx.ordered != nil {
		err = idx.ordered.Truncate()
	} else {
		err = idx.hashed.Truncate()
	}
	if err != nil {
		return fmt.Errorf("index %s: truncate: %w", idx.Name, err)
	}
	return nil
}

package vault

import (
	"fmt"
	"sync"

	"github.com/logjamd/logjamd/pkg/document"
	"github.com/logjamd/logjamd/pkg/index"
	"github.com/logjamd/logjamd/pkg/kv"
	"github.com/logjamd/logjamd/pkg/uid"
)

const (
	tagBegin byte = 0x01
	tagEnd   byte = 0x02
)

// Vault is one named collection: a primary identifier-to-document store,
// the secondary indexes declared by its Config, and a crash-recovery
// journal bracketing every mutation.
type Vault struct {
	Name string

	mu      sync.RWMutex
	db      *kv.DB
	primary *kv.HashMap
	journal *kv.AppendLog
	indexes map[string]*index.Index
	specs   []IndexSpec
}

// Open attaches a Vault to db under name, creating its backing buckets
// if necessary. If the journal is non-empty — meaning the process died
// mid-mutation on a previous run — Open rebuilds every index from the
// primary store before returning.
func Open(db *kv.DB, name string, cfg Config) (*Vault, error) {
	primary, err := db.HashMap(bucketName(name, "primary"))
	if err != nil {
		return nil, fmt.Errorf("vault %s: %w", name, err)
	}
	journal, err := db.AppendLog(bucketName(name, "journal"))
	if err != nil {
		return nil, fmt.Errorf("vault %s: %w", name, err)
	}

	v := &Vault{
		Name:    name,
		db:      db,
		primary: primary,
		journal: journal,
		indexes: make(map[string]*index.Index, len(cfg.Indexes)),
		specs:   cfg.Indexes,
	}

	for _, spec := range cfg.Indexes {
		idx, err := index.Open(db, bucketName(name, "idx:"+spec.Name), spec.Name, spec.Kind, spec.Path, spec.Comparator)
		if err != nil {
			return nil, fmt.Errorf("vault %s: %w", name, err)
		}
		v.indexes[spec.Name] = idx
	}

	n, err := journal.Len()
	if err != nil {
		return nil, fmt.Errorf("vault %s: %w", name, err)
	}
	if n > 0 {
		if err := v.rebuildLocked(); err != nil {
			return nil, fmt.Errorf("vault %s: recovering from journal: %w", name, err)
		}
	}

	return v, nil
}

func bucketName(vault, part string) string {
	return "vault:" + vault + ":" + part
}

// Index returns the named secondary index, if declared.
func (v *Vault) Index(name string) (*index.Index, bool) {
	idx, ok := v.indexes[name]
	return idx, ok
}

// IndexForPath returns the index configured against the given document
// path, if any. Result-set filter operations look indexes up this way,
// by the field they index rather than by their administrative name
//.
func (v *Vault) IndexForPath(path string) (*index.Index, bool) {
	for _, spec := range v.specs {
		if spec.Path == path {
			return v.indexes[spec.Name], true
		}
	}
	return nil, false
}

// IndexNames returns the declared index names, in configuration order.
func (v *Vault) IndexNames() []string {
	out := make([]string, len(v.specs))
	for i, spec := range v.specs {
		out[i] = spec.Name
	}
	return out
}

// NextID generates a fresh random identifier for a new document, the
// convention Place callers use when a document arrives without one
// already set at "__uid".
func (v *Vault) NextID() uid.ID { return uid.New() }

// keyFor extracts the value at spec.Path from doc and encodes it as
// index-key bytes under spec.Comparator.
func keyFor(doc *document.Document, spec IndexSpec) []byte {
	n := doc.Get(spec.Path)
	switch spec.Comparator {
	case index.Int32:
		return index.EncodeInt32Key(nodeAsInt32(n))
	case index.Int64:
		return index.EncodeInt64Key(nodeAsInt64(n))
	default:
		return nodeAsLexicalBytes(n)
	}
}

func nodeAsInt32(n document.Node) int32 {
	switch n.Kind() {
	case document.KindInt32:
		return n.AsInt32()
	case document.KindInt64:
		return int32(n.AsInt64()) //nolint:gosec // narrowing is caller's choice of comparator
	case document.KindDouble:
		return int32(n.AsDouble())
	default:
		return 0
	}
}

func nodeAsInt64(n document.Node) int64 {
	switch n.Kind() {
	case document.KindInt64:
		return n.AsInt64()
	case document.KindInt32:
		return int64(n.AsInt32())
	case document.KindTimestamp:
		return n.AsTimestamp()
	case document.KindDouble:
		return int64(n.AsDouble())
	default:
		return 0
	}
}

func nodeAsLexicalBytes(n document.Node) []byte {
	switch n.Kind() {
	case document.KindString:
		return []byte(n.AsString())
	case document.KindID:
		return n.AsID().Bytes()
	case document.KindBool:
		if n.AsBool() {
			return []byte{1}
		}
		return []byte{0}
	default:
		return nil
	}
}

// Fetch returns the document bound to id, if any.
func (v *Vault) Fetch(id uid.ID) (*document.Document, bool, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.fetchLocked(id)
}

func (v *Vault) fetchLocked(id uid.ID) (*document.Document, bool, error) {
	raw, ok, err := v.primary.Get(id.Bytes())
	if err != nil {
		return nil, false, fmt.Errorf("vault %s: fetch: %w", v.Name, err)
	}
	if !ok {
		return nil, false, nil
	}
	doc, err := document.Decode(raw)
	if err != nil {
		return nil, false, fmt.Errorf("vault %s: fetch: %w", v.Name, err)
	}
	return doc, true, nil
}

// Place stores doc under id, replacing any prior document bound to the
// same id and updating every secondary index accordingly. Every unique
// index's constraint is checked against doc's values before any journal
// record is written, so a rejected placement leaves the vault exactly
// as it was.
func (v *Vault) Place(id uid.ID, doc *document.Document) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	old, hadOld, err := v.fetchLocked(id)
	if err != nil {
		return err
	}

	newKeys := make(map[string][]byte, len(v.specs))
	for _, spec := range v.specs {
		key := keyFor(doc, spec)
		newKeys[spec.Name] = key
		if err := v.indexes[spec.Name].CheckUnique(key, id); err != nil {
			return err
		}
	}

	if _, err := v.journal.Append([]byte{tagBegin}); err != nil {
		return fmt.Errorf("vault %s: place: %w", v.Name, err)
	}

	if hadOld {
		for _, spec := range v.specs {
			oldKey := keyFor(old, spec)
			if err := v.indexes[spec.Name].Remove(oldKey, id); err != nil {
				return fmt.Errorf("vault %s: place: %w: %v", v.Name, ErrBackendError, err)
			}
		}
	}

	if err := v.primary.Put(id.Bytes(), doc.Encode()); err != nil {
		return fmt.Errorf("vault %s: place: %w: %v", v.Name, ErrBackendError, err)
	}

	for _, spec := range v.specs {
		if err := v.indexes[spec.Name].Place(newKeys[spec.Name], id); err != nil {
			return fmt.Errorf("vault %s: place: %w: %v", v.Name, ErrBackendError, err)
		}
	}

	return v.closeMutation()
}

// Remove deletes the document bound to id and unbinds it from every
// secondary index. A no-op if id is not bound to anything.
func (v *Vault) Remove(id uid.ID) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	old, ok, err := v.fetchLocked(id)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	if _, err := v.journal.Append([]byte{tagBegin}); err != nil {
		return fmt.Errorf("vault %s: remove: %w", v.Name, err)
	}

	for _, spec := range v.specs {
		key := keyFor(old, spec)
		if err := v.indexes[spec.Name].Remove(key, id); err != nil {
			return fmt.Errorf("vault %s: remove: %w: %v", v.Name, ErrBackendError, err)
		}
	}

	if err := v.primary.Delete(id.Bytes()); err != nil {
		return fmt.Errorf("vault %s: remove: %w: %v", v.Name, ErrBackendError, err)
	}

	return v.closeMutation()
}

// closeMutation writes the journal's end record and truncates the
// journal, since only one mutation is ever in flight under mu. A
// non-empty journal at the next Open means this never ran, and Rebuild
// is required.
func (v *Vault) closeMutation() error {
	if _, err := v.journal.Append([]byte{tagEnd}); err != nil {
		return fmt.Errorf("vault %s: %w: %v", v.Name, ErrBackendError, err)
	}
	if err := v.journal.Truncate(); err != nil {
		return fmt.Errorf("vault %s: %w: %v", v.Name, ErrBackendError, err)
	}
	return nil
}

// Rebuild truncates every secondary index and re-derives it from the
// primary store, then clears the journal. It runs automatically on Open
// when the journal is non-empty, and can be invoked directly to repair
// an index after a configuration change.
func (v *Vault) Rebuild() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.rebuildLocked()
}

func (v *Vault) rebuildLocked() error {
	for _, spec := range v.specs {
		if err := v.indexes[spec.Name].Truncate(); err != nil {
			return fmt.Errorf("vault %s: rebuild: %w", v.Name, err)
		}
	}

	var scanErr error
	err := v.primary.ForEach(func(k, val []byte) bool {
		id, err := uid.FromBytes(k)
		if err != nil {
			scanErr = fmt.Errorf("vault %s: rebuild: %w", v.Name, err)
			return false
		}
		doc, err := document.Decode(val)
		if err != nil {
			scanErr = fmt.Errorf("vault %s: rebuild: %w", v.Name, err)
			return false
		}
		for _, spec := range v.specs {
			key := keyFor(doc, spec)
			if err := v.indexes[spec.Name].Place(key, id); err != nil {
				scanErr = fmt.Errorf("vault %s: rebuild: %w", v.Name, err)
				return false
			}
		}
		return true
	})
	if err != nil {
		return fmt.Errorf("vault %s: rebuild: %w", v.Name, err)
	}
	if scanErr != nil {
		return scanErr
	}

	return v.journal.Truncate()
}

// Checkpoint writes a consistent snapshot of the whole backend — every
// vault sharing this Vault's underlying database — to dst.
func (v *Vault) Checkpoint(dst string) error {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.db.CopyTo(dst)
}

// Optimize re-derives every secondary index from the primary store, the
// same repair Rebuild performs after an unclean shutdown. It is exposed
// separately as the script-facing maintenance operation:
// callers ask for it after heavy churn, without implying anything about
// journal recovery.
func (v *Vault) Optimize() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.rebuildLocked()
}

// AllIDs returns every identifier currently bound in the primary store,
// in the order the backend iterates them. It backs the result-set
// "whole vault" cover).
func (v *Vault) AllIDs() (index.IDSet, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	var ids []uid.ID
	var scanErr error
	err := v.primary.ForEach(func(k, _ []byte) bool {
		id, err := uid.FromBytes(k)
		if err != nil {
			scanErr = fmt.Errorf("vault %s: all ids: %w", v.Name, err)
			return false
		}
		ids = append(ids, id)
		return true
	})
	if err != nil {
		return index.IDSet{}, fmt.Errorf("vault %s: all ids: %w", v.Name, err)
	}
	if scanErr != nil {
		return index.IDSet{}, scanErr
	}
	return index.NewIDSet(ids...), nil
}

package resultset

import (
	"fmt"
	"time"

	"github.com/logjamd/logjamd/pkg/document"
	"github.com/logjamd/logjamd/pkg/index"
	"github.com/logjamd/logjamd/pkg/uid"
	"github.com/logjamd/logjamd/pkg/vault"
)

// CostEntry records one filter operation's diagnostic trace: the
// command name, how long it took, and the set's cardinality before and
// after the operation.
type CostEntry struct {
	Command  string
	Elapsed  time.Duration
	PreSize  int
	PostSize int
}

// ResultSet is a chained, vault-scoped identifier filter. Filter
// operations (Equal, Greater, Lesser, Tagged, Contains) look up their
// target index by the document path it was configured against, then
// combine into the running set under the current combining Mode
// (AND/OR, default AND); Include and Exclude edit the set directly,
// independent of mode.
type ResultSet struct {
	vault *vault.Vault
	mode  index.Mode
	ids   index.IDSet
	bound bool
	costs []CostEntry
}

// New returns an empty, unconstrained result set scoped to v, combining
// filters with AND (intersection) by default.
func New(v *vault.Vault) *ResultSet {
	return &ResultSet{vault: v, mode: index.Intersection}
}

// All returns a result set bound to every identifier currently in v, the
// starting point for a script that wants to filter down from the whole
// vault rather than build a set up from nothing).
func All(v *vault.Vault) (*ResultSet, error) {
	ids, err := v.AllIDs()
	if err != nil {
		return nil, fmt.Errorf("resultset: all: %w", err)
	}
	return &ResultSet{vault: v, mode: index.Intersection, ids: ids, bound: true}, nil
}

// None returns an empty result set scoped to v. Unlike New, whose
// unbound set accepts its first filter as-is, None's set is already
// bound empty: the first filter intersects or unions against nothing
//).
func None(v *vault.Vault) *ResultSet {
	return &ResultSet{vault: v, mode: index.Intersection, bound: true}
}

// ModeAnd switches subsequent filters to combine by intersection.
func (r *ResultSet) ModeAnd() *ResultSet {
	r.mode = index.Intersection
	return r
}

// ModeOr switches subsequent filters to combine by union.
func (r *ResultSet) ModeOr() *ResultSet {
	r.mode = index.Union
	return r
}

// Size reports the set's current cardinality.
func (r *ResultSet) Size() int { return r.ids.Len() }

// Has reports whether id is currently a member of the set.
func (r *ResultSet) Has(id uid.ID) bool { return r.bound && r.ids.Contains(id) }

// Costs returns the recorded trace of every filter operation applied so
// far, in application order.
func (r *ResultSet) Costs() []CostEntry {
	out := make([]CostEntry, len(r.costs))
	copy(out, r.costs)
	return out
}

// merge folds newIDs into the running set: the first filter applied
// simply becomes the set (AND against "unconstrained" is the operand
// itself, not empty); every later filter combines via the active mode.
func (r *ResultSet) merge(command string, newIDs index.IDSet, start time.Time) {
	pre := 0
	if r.bound {
		pre = r.ids.Len()
	}
	if !r.bound {
		r.ids = newIDs
		r.bound = true
	} else {
		r.ids = r.ids.Merge(r.mode, newIDs)
	}
	r.costs = append(r.costs, CostEntry{
		Command:  command,
		Elapsed:  time.Since(start),
		PreSize:  pre,
		PostSize: r.ids.Len(),
	})
}

func (r *ResultSet) unchanged(command string, start time.Time) *ResultSet {
	size := 0
	if r.bound {
		size = r.ids.Len()
	}
	r.costs = append(r.costs, CostEntry{Command: command, Elapsed: time.Since(start), PreSize: size, PostSize: size})
	return r
}

// Equal filters by exact match against the index configured for path.
func (r *ResultSet) Equal(path string, key []byte) (*ResultSet, error) {
	start := time.Now()
	idx, ok := r.vault.IndexForPath(path)
	if !ok {
		return r, fmt.Errorf("resultset: equal: no index configured for path %q", path)
	}
	set, err := idx.Equal(key)
	if err != nil {
		return r, fmt.Errorf("resultset: equal: %w", err)
	}
	r.merge("equal", set, start)
	return r, nil
}

// Greater filters by the path's ordered index, values sorting strictly
// above key.
func (r *ResultSet) Greater(path string, key []byte) (*ResultSet, error) {
	start := time.Now()
	idx, ok := r.vault.IndexForPath(path)
	if !ok {
		return r, fmt.Errorf("resultset: greater: no index configured for path %q", path)
	}
	set, err := idx.Greater(key)
	if err != nil {
		return r, fmt.Errorf("resultset: greater: %w", err)
	}
	r.merge("greater", set, start)
	return r, nil
}

// Lesser filters by the path's ordered index, values sorting strictly
// below key.
func (r *ResultSet) Lesser(path string, key []byte) (*ResultSet, error) {
	start := time.Now()
	idx, ok := r.vault.IndexForPath(path)
	if !ok {
		return r, fmt.Errorf("resultset: lesser: no index configured for path %q", path)
	}
	set, err := idx.Lesser(key)
	if err != nil {
		return r, fmt.Errorf("resultset: lesser: %w", err)
	}
	r.merge("lesser", set, start)
	return r, nil
}

// Tagged filters by exact match against path's index, provided it is a
// hashed "tag" index. If path has no configured index, or the
// configured index is not hashed, Tagged is a permissive no-op:
// it returns the receiver unchanged rather than failing.
func (r *ResultSet) Tagged(path string, tag []byte) (*ResultSet, error) {
	start := time.Now()
	idx, ok := r.vault.IndexForPath(path)
	if !ok || idx.Kind != index.Hashed {
		return r.unchanged("tagged", start), nil
	}
	set, err := idx.Equal(tag)
	if err != nil {
		return r, fmt.Errorf("resultset: tagged: %w", err)
	}
	r.merge("tagged", set, start)
	return r, nil
}

// Contains filters by full-text substring match against path's index.
// Full-text indexing is not implemented by this core, so Contains
// always takes the documented permissive fallback: the receiver
// unchanged, never an error.
func (r *ResultSet) Contains(path string, substr []byte) (*ResultSet, error) {
	start := time.Now()
	_ = path
	_ = substr
	return r.unchanged("contains", start), nil
}

// Include unconditionally adds id to the set, independent of mode.
func (r *ResultSet) Include(id uid.ID) *ResultSet {
	start := time.Now()
	if !r.bound {
		r.ids = index.NewIDSet(id)
		r.bound = true
		r.costs = append(r.costs, CostEntry{Command: "include", Elapsed: time.Since(start), PostSize: 1})
		return r
	}
	pre := r.ids.Len()
	r.ids = r.ids.Include(id)
	r.costs = append(r.costs, CostEntry{Command: "include", Elapsed: time.Since(start), PreSize: pre, PostSize: r.ids.Len()})
	return r
}

// Exclude unconditionally removes id from the set, independent of mode.
func (r *ResultSet) Exclude(id uid.ID) *ResultSet {
	start := time.Now()
	pre := 0
	if r.bound {
		pre = r.ids.Len()
		r.ids = r.ids.Exclude(id)
	}
	r.bound = true
	r.costs = append(r.costs, CostEntry{Command: "exclude", Elapsed: time.Since(start), PreSize: pre, PostSize: r.ids.Len()})
	return r
}

// First materializes and returns the document bound to the
// lowest-ordered identifier in the set. Returns ok=false on an empty
// set.
func (r *ResultSet) First() (*document.Document, bool, error) {
	if !r.bound || r.ids.Len() == 0 {
		return nil, false, nil
	}
	var (
		min   uid.ID
		found bool
	)
	r.ids.Each(func(id uid.ID) bool {
		if !found || id.Less(min) {
			min = id
			found = true
		}
		return true
	})
	doc, ok, err := r.vault.Fetch(min)
	if err != nil {
		return nil, false, fmt.Errorf("resultset: first: %w", err)
	}
	return doc, ok, nil
}

// Records materializes every document currently in the set, in the
// set's iteration order. Identifiers that no longer resolve to a
// document (removed after the index scan that produced them) are
// skipped silently, matching Vault.Fetch's own race tolerance.
func (r *ResultSet) Records() ([]*document.Document, error) {
	if !r.bound {
		return nil, nil
	}
	out := make([]*document.Document, 0, r.ids.Len())
	var fetchErr error
	r.ids.Each(func(id uid.ID) bool {
		doc, ok, err := r.vault.Fetch(id)
		if err != nil {
			fetchErr = fmt.Errorf("resultset: records: %w", err)
			return false
		}
		if ok {
			out = append(out, doc)
		}
		return true
	})
	if fetchErr != nil {
		return nil, fetchErr
	}
	return out, nil
}

package index

import "github.com/logjamd/logjamd/pkg/uid"

// Mode selects a set-algebra operation for Merge and for
// resultset.ResultSet's mode_and/mode_or.
type Mode int

const (
	// Intersection keeps identifiers present in both operands.
	Intersection Mode = iota
	// Union keeps identifiers present in either operand.
	Union
	// Complement keeps identifiers present in the receiver but not in
	// the other operand (receiver ∖ other).
	Complement
	// SymmetricDifference keeps identifiers present in exactly one
	// operand: (A ∖ B) ∪ (B ∖ A).
	SymmetricDifference
)

// IDSet is an immutable, order-preserving set of document identifiers.
// It is the value type returned by Index.Equal/Greater/Lesser and
// combined by Merge; resultset.ResultSet wraps one to add cost
// accounting and vault-aware filtering on top.
type IDSet struct {
	ids   []uid.ID
	index map[uid.ID]struct{}
}

// NewIDSet builds a set from ids, preserving first-occurrence order and
// dropping duplicates.
func NewIDSet(ids ...uid.ID) IDSet {
	s := IDSet{index: make(map[uid.ID]struct{}, len(ids))}
	for _, id := range ids {
		if _, dup := s.index[id]; dup {
			continue
		}
		s.index[id] = struct{}{}
		s.ids = append(s.ids, id)
	}
	return s
}

// Len reports the number of identifiers in the set.
func (s IDSet) Len() int { return len(s.ids) }

// Contains reports whether id is a member.
func (s IDSet) Contains(id uid.ID) bool {
	_, ok := s.index[id]
	return ok
}

// Each calls fn for every identifier in order, stopping early if fn
// returns false.
func (s IDSet) Each(fn func(uid.ID) bool) {
	for _, id := range s.ids {
		if !fn(id) {
			return
		}
	}
}

// Slice returns the set's identifiers as a new slice, in order.
func (s IDSet) Slice() []uid.ID {
	out := make([]uid.ID, len(s.ids))
	copy(out, s.ids)
	return out
}

// Include returns a copy of s with id added, a no-op if already
// present.
func (s IDSet) Include(id uid.ID) IDSet {
	if s.Contains(id) {
		return s
	}
	out := NewIDSet(s.ids...)
	out.index[id] = struct{}{}
	out.ids = append(out.ids, id)
	return out
}

// Exclude returns a copy of s with id removed, a no-op if absent.
func (s IDSet) Exclude(id uid.ID) IDSet {
	if !s.Contains(id) {
		return s
	}
	out := IDSet{index: make(map[uid.ID]struct{}, len(s.ids))}
	for _, existing := range s.ids {
		if existing == id {
			continue
		}
		out.index[existing] = struct{}{}
		out.ids = append(out.ids, existing)
	}
	return out
}

// Merge combines s and other under mode. The receiver's iteration order
// is preserved for union and intersection. Intersection iterates the
// smaller of the two operands as the outer loop; union walks the
// receiver and then the other operand, and complement walks the
// receiver, whatever their sizes.
func (s IDSet) Merge(mode Mode, other IDSet) IDSet {
	switch mode {
	case Intersection:
		small, big := s, other
		smallIsReceiver := true
		if other.Len() < s.Len() {
			small, big = other, s
			smallIsReceiver = false
		}
		var out []uid.ID
		small.Each(func(id uid.ID) bool {
			if big.Contains(id) {
				out = append(out, id)
			}
			return true
		})
		if !smallIsReceiver {
			// Re-order to match the receiver's iteration order.
			out = reorderLike(s, out)
		}
		return NewIDSet(out...)

	case Union:
		out := make([]uid.ID, 0, s.Len()+other.Len())
		out = append(out, s.ids...)
		other.Each(func(id uid.ID) bool {
			if !s.Contains(id) {
				out = append(out, id)
			}
			return true
		})
		return NewIDSet(out...)

	case Complement:
		var out []uid.ID
		s.Each(func(id uid.ID) bool {
			if !other.Contains(id) {
				out = append(out, id)
			}
			return true
		})
		return NewIDSet(out...)

	case SymmetricDifference:
		aOnly := s.Merge(Complement, other)
		bOnly := other.Merge(Complement, s)
		return aOnly.Merge(Union, bOnly)

	default:
		return s
	}
}

func reorderLike(order IDSet, ids []uid.ID) []uid.ID {
	present := make(map[uid.ID]struct{}, len(ids))
	for _, id := range ids {
		present[id] = struct{}{}
	}
	out := make([]uid.ID, 0, len(ids))
	order.Each(func(id uid.ID) bool {
		if _, ok := present[id]; ok {
			out = append(out, id)
		}
		return true
	})
	return out
}

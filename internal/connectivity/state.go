package connectivity

import "strings"

// State is an immutable snapshot of the set of connectivity kinds
// active at one moment. A device can report several interfaces at
// once (e.g. wifi + vpn). The sequence keeps the order reported by
// the source for display; equality ignores order and duplicates.
type State struct {
	kinds []Kind
}

// NewState builds a State from a non-empty kind sequence. The tracker
// normalizes an empty raw report to [KindNone] before construction;
// passing an empty sequence here is a programming error and panics.
func NewState(kinds []Kind) State {
	if len(kinds) == 0 {
		panic("connectivity: NewState called with empty kind sequence")
	}

	copied := make([]Kind, len(kinds))
	copy(copied, kinds)

	return State{kinds: copied}
}

// Unknown returns the canonical pre-observation state.
func Unknown() State {
	return State{kinds: []Kind{KindUnknown}}
}

// Kinds returns the kind sequence in source order.
func (s State) Kinds() []Kind {
	out := make([]Kind, len(s.kinds))
	copy(out, s.kinds)

	return out
}

// Has reports whether kind is part of the state.
func (s State) Has(kind Kind) bool {
	return s.mask()&kind.bit() != 0
}

// Offline reports whether the state carries no usable connectivity.
func (s State) Offline() bool {
	return s.mask() == KindNone.bit()
}

// Equal compares two states as sets: order and duplicates do not
// affect the outcome.
func (s State) Equal(other State) bool {
	return s.mask() == other.mask()
}

// Hash is consistent with Equal: stable under reordering and
// duplication of kinds.
func (s State) Hash() uint32 {
	return uint32(s.mask())
}

// String lists the kinds in source order. Diagnostics only, never
// used for equality.
func (s State) String() string {
	parts := make([]string, len(s.kinds))
	for i, kind := range s.kinds {
		parts[i] = string(kind)
	}

	return strings.Join(parts, ", ")
}

func (s State) mask() uint8 {
	var m uint8
	for _, kind := range s.kinds {
		m |= kind.bit()
	}

	return m
}

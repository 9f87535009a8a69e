package regex

import (
	"encoding/binary"
	"fmt"
)

// Position identifies a leaf (Char, Range or Accept node) within a regex
// tree. The firstpos/lastpos/followpos algorithm (Aho et al.) is expressed
// entirely in terms of these positions rather than the leaves themselves,
// which keeps the DFA subset construction in package lexicon independent of
// the tree shape.
type Position uint16

const (
	positionNil Position = 0x0000

	positionMin uint16 = 0x0001
	positionMax uint16 = 0x7fff

	positionMaskLeaf   uint16 = 0x0000
	positionMaskAccept uint16 = 0x8000
	positionMaskValue  uint16 = 0x7fff
)

func newPosition(n uint16, accept bool) (Position, error) {
	if n < positionMin || n > positionMax {
		return positionNil, fmt.Errorf("regex: position out of range [%v, %v]: %v", positionMin, positionMax, n)
	}
	if accept {
		return Position(n | positionMaskAccept), nil
	}
	return Position(n | positionMaskLeaf), nil
}

func (p Position) String() string {
	if p.IsAccept() {
		return fmt.Sprintf("acc#%v", uint16(p)&positionMaskValue)
	}
	return fmt.Sprintf("pos#%v", uint16(p)&positionMaskValue)
}

// IsAccept reports whether the position marks an Accept leaf.
func (p Position) IsAccept() bool {
	return uint16(p)&positionMaskAccept > 0
}

// PositionSet is a set of Position values. Like vartan's symbolPositionSet,
// duplicates may accumulate between add/merge calls; Set lazily sorts and
// dedupes.
type PositionSet struct {
	s      []Position
	sorted bool
}

func NewPositionSet() *PositionSet {
	return &PositionSet{}
}

func (s *PositionSet) Add(p Position) *PositionSet {
	s.s = append(s.s, p)
	s.sorted = false
	return s
}

func (s *PositionSet) Merge(t *PositionSet) *PositionSet {
	if t == nil {
		return s
	}
	s.s = append(s.s, t.s...)
	s.sorted = false
	return s
}

// Set returns the sorted, duplicate-free contents of the set.
func (s *PositionSet) Set() []Position {
	s.dedup()
	return s.s
}

func (s *PositionSet) Empty() bool {
	return len(s.s) == 0
}

func (s *PositionSet) String() string {
	s.dedup()
	if len(s.s) == 0 {
		return "{}"
	}
	out := "{"
	for i, p := range s.s {
		if i > 0 {
			out += ", "
		}
		out += p.String()
	}
	return out + "}"
}

// Hash returns a value suitable for use as a map key identifying the exact
// (sorted, deduped) contents of the set; it is how the DFA subset
// construction recognizes that two position sets denote the same state.
func (s *PositionSet) Hash() string {
	s.dedup()
	if len(s.s) == 0 {
		return ""
	}
	buf := make([]byte, 0, len(s.s)*8)
	b := make([]byte, 8)
	for _, p := range s.s {
		binary.PutUvarint(b, uint64(p))
		buf = append(buf, b...)
	}
	return string(buf)
}

func (s *PositionSet) dedup() {
	if s.sorted {
		return
	}
	if len(s.s) == 0 {
		s.sorted = true
		return
	}
	sortPositions(s.s)
	w := 1
	for _, v := range s.s[1:] {
		if v == s.s[w-1] {
			continue
		}
		s.s[w] = v
		w++
	}
	s.s = s.s[:w]
	s.sorted = true
}

// sortPositions is an in-place insertion sort; position sets are tiny
// (bounded by the number of leaves in one terminal's pattern), so this
// avoids pulling in sort.Slice's interface overhead on the hot DFA-build
// path, matching the hand-rolled sort vartan uses for the same job.
func sortPositions(ps []Position) {
	for i := 1; i < len(ps); i++ {
		v := ps[i]
		j := i - 1
		for j >= 0 && ps[j] > v {
			ps[j+1] = ps[j]
			j--
		}
		ps[j+1] = v
	}
}

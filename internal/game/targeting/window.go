package targeting

import (
	"fmt"

	"github.com/cory-johannsen/goodnight/internal/game/character"
)

// ClampCount limits an attack's target count to the number of candidates.
func ClampCount(count, candidates int) int {
	return min(count, candidates)
}

// Starts returns how many distinct windows of count fit in n candidates.
func Starts(n, count int) int {
	if n == 0 {
		return 0
	}
	return n - ClampCount(count, n) + 1
}

// Window returns the contiguous run of count slots beginning at start.
//
// Precondition: 0 <= start < Starts(len(cands), count). Panics otherwise;
// targeting outside the candidate list is a state machine defect.
func Window(cands []*Slot, start, count int) []*Slot {
	count = ClampCount(count, len(cands))
	if start < 0 || start+count > len(cands) || count == 0 {
		panic(fmt.Sprintf("targeting: window [%d,+%d) outside %d candidates", start, count, len(cands)))
	}
	return cands[start : start+count]
}

// Occupants returns the combatants in slots, in order.
//
// Precondition: every slot is occupied. Panics otherwise.
func Occupants(slots []*Slot) []*character.Combatant {
	out := make([]*character.Combatant, len(slots))
	for i, s := range slots {
		if s.Occupant == nil {
			panic(fmt.Sprintf("targeting: empty %s slot %d targeted", s.Side, s.Index))
		}
		out[i] = s.Occupant
	}
	return out
}

// Selector is the scrolling chooser for a target window. Left and right move
// the window start, wrapping at either end.
type Selector struct {
	cands []*Slot
	count int
	start int
}

// NewSelector creates a Selector over cands.
//
// Precondition: len(cands) > 0.
func NewSelector(cands []*Slot, count int) *Selector {
	if len(cands) == 0 {
		panic("targeting: selector over no candidates")
	}
	return &Selector{cands: cands, count: ClampCount(count, len(cands))}
}

// Next moves the window right, wrapping to the start.
func (s *Selector) Next() {
	s.start = (s.start + 1) % Starts(len(s.cands), s.count)
}

// Prev moves the window left, wrapping to the end.
func (s *Selector) Prev() {
	n := Starts(len(s.cands), s.count)
	s.start = (s.start - 1 + n) % n
}

// Selected returns the slots in the current window.
func (s *Selector) Selected() []*Slot {
	return Window(s.cands, s.start, s.count)
}

// Start returns the current window start.
func (s *Selector) Start() int { return s.start }

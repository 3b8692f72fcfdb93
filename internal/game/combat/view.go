package combat

import (
	"github.com/cory-johannsen/goodnight/internal/game/targeting"
)

// SlotView is the drawable state of one battle slot.
type SlotView struct {
	Side     targeting.Side
	Index    int
	X, Y     int
	Occupied bool
	Name     string
	Level    int
	Votes    int
	MaxVotes int
	Spin     int
	MaxSpin  int
	Effects  string
	Dead     bool
	Current  bool
	Targeted bool
}

// View is a read-only snapshot of a World for renderers.
type View struct {
	Round         int
	Result        Result
	Slots         []SlotView
	Current       string
	ActiveAttack  string
	AwaitingInput bool
	Floaters      []Floater
}

// View returns the World's drawable state. The snapshot shares nothing
// mutable with the World.
func (w *World) View() View {
	v := View{
		Round:         w.round,
		Result:        w.result,
		AwaitingInput: w.awaitingInput,
		Floaters:      w.Floaters(),
	}
	cur := w.Current()
	if cur != nil {
		v.Current = cur.Name
	}
	if w.active != nil {
		v.ActiveAttack = w.active.Name
	}
	targeted := make(map[*targeting.Slot]bool, len(w.activeTargets))
	for _, t := range w.activeTargets {
		if s := w.board.SlotOf(t); s != nil {
			targeted[s] = true
		}
	}
	for _, s := range w.board.All() {
		sv := SlotView{Side: s.Side, Index: s.Index, X: s.X, Y: s.Y, Targeted: targeted[s]}
		if c := s.Occupant; c != nil {
			sv.Occupied = true
			sv.Name = c.Name
			sv.Level = c.Level
			sv.Votes, sv.MaxVotes = c.Votes, c.MaxVotes
			sv.Spin, sv.MaxSpin = c.Spin, c.MaxSpin
			sv.Effects = c.Effects.Abbrevs()
			sv.Dead = c.Dead
			sv.Current = c == cur
		}
		v.Slots = append(v.Slots, sv)
	}
	return v
}

package combat

import (
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/goodnight/internal/game/character"
	"github.com/cory-johannsen/goodnight/internal/game/targeting"
)

// FloaterKind distinguishes how a floater is drawn.
type FloaterKind int

const (
	FloaterDamage FloaterKind = iota
	FloaterHeal
	FloaterStatus
)

func (k FloaterKind) String() string {
	switch k {
	case FloaterDamage:
		return "damage"
	case FloaterHeal:
		return "heal"
	default:
		return "status"
	}
}

// Floater is a transient popup over a slot.
type Floater struct {
	Target *character.Combatant
	Side   targeting.Side
	Slot   int
	X, Y   int
	// Line stacks floaters over the same slot.
	Line      int
	Text      string
	Kind      FloaterKind
	Remaining time.Duration
}

func (w *World) addFloater(c *character.Combatant, text string, kind FloaterKind) {
	slot := w.board.SlotOf(c)
	if slot == nil {
		return
	}
	line := 0
	for _, f := range w.floaters {
		if f.Target == c {
			line++
		}
	}
	w.floaters = append(w.floaters, &Floater{
		Target:    c,
		Side:      slot.Side,
		Slot:      slot.Index,
		X:         slot.X,
		Y:         slot.Y,
		Line:      line,
		Text:      text,
		Kind:      kind,
		Remaining: w.timing.FloaterLifetime,
	})
	w.logger.Debug("floater", zap.String("combatant", c.Name), zap.String("text", text), zap.Stringer("kind", kind))
}

// ageFloaters drops floaters that expired or whose combatant left the board.
func (w *World) ageFloaters(dt time.Duration) {
	kept := w.floaters[:0]
	for _, f := range w.floaters {
		f.Remaining -= dt
		if f.Remaining > 0 && w.board.SlotOf(f.Target) != nil {
			kept = append(kept, f)
		}
	}
	for i := len(kept); i < len(w.floaters); i++ {
		w.floaters[i] = nil
	}
	w.floaters = kept
}

// Floaters returns copies of the visible floaters.
func (w *World) Floaters() []Floater {
	out := make([]Floater, len(w.floaters))
	for i, f := range w.floaters {
		out[i] = *f
	}
	return out
}

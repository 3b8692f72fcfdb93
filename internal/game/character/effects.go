package character

import (
	"strings"

	"github.com/cory-johannsen/goodnight/internal/game/ruleset"
)

// ActiveEffect is one timed modifier currently on a combatant.
type ActiveEffect struct {
	Def    *ruleset.Effect
	Rounds int
}

// ActiveSet is a combatant's active effects in insertion order, holding at
// most one entry per effect id.
// It is not safe for concurrent use; the caller must serialise access.
type ActiveSet struct {
	effects []*ActiveEffect
}

// Insert appends ae unless an effect with the same id is already active.
//
// Precondition: ae and ae.Def must not be nil.
// Postcondition: Returns false and leaves the set unchanged on a duplicate id.
func (s *ActiveSet) Insert(ae *ActiveEffect) bool {
	if s.Has(ae.Def.ID) {
		return false
	}
	s.effects = append(s.effects, ae)
	return true
}

// Remove deletes ae from the set. Removing an absent entry is a no-op.
//
// Postcondition: ae is not in All().
func (s *ActiveSet) Remove(ae *ActiveEffect) bool {
	for i, e := range s.effects {
		if e == ae {
			s.effects = append(s.effects[:i], s.effects[i+1:]...)
			return true
		}
	}
	return false
}

// Has reports whether an effect with id is active.
func (s *ActiveSet) Has(id string) bool {
	return s.Get(id) != nil
}

// Get returns the active effect with id, or nil.
func (s *ActiveSet) Get(id string) *ActiveEffect {
	for _, e := range s.effects {
		if e.Def.ID == id {
			return e
		}
	}
	return nil
}

// HasFunction reports whether any active effect performs f.
func (s *ActiveSet) HasFunction(f ruleset.Function) bool {
	for _, e := range s.effects {
		if e.Def.Function == f {
			return true
		}
	}
	return false
}

// All returns a copy of the active effects in insertion order. The entries
// are shared with the set.
func (s *ActiveSet) All() []*ActiveEffect {
	return append([]*ActiveEffect(nil), s.effects...)
}

// Len returns the number of active effects.
func (s *ActiveSet) Len() int { return len(s.effects) }

// Abbrevs returns the space-separated abbreviations shown under a combatant.
func (s *ActiveSet) Abbrevs() string {
	parts := make([]string, 0, len(s.effects))
	for _, e := range s.effects {
		if e.Def.Abbrev != "" {
			parts = append(parts, e.Def.Abbrev)
		}
	}
	return strings.Join(parts, " ")
}

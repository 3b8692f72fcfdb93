package session

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/cory-johannsen/goodnight/internal/game/character"
	"github.com/cory-johannsen/goodnight/internal/game/ruleset"
)

// Snapshot is the persisted shape of a GameSession.
type Snapshot struct {
	ID     string                   `json:"id" yaml:"id"`
	Money  int                      `json:"money" yaml:"money"`
	Items  []character.ItemSnapshot `json:"items,omitempty" yaml:"items,omitempty"`
	Flags  []string                 `json:"flags,omitempty" yaml:"flags,omitempty"`
	Allies []character.Snapshot     `json:"allies" yaml:"allies"`
}

// Snapshot captures the session for saving.
func (s *GameSession) Snapshot() Snapshot {
	snap := Snapshot{
		ID:    s.ID.String(),
		Money: s.money,
		Flags: s.Flags(),
	}
	for _, st := range s.items.Stacks() {
		snap.Items = append(snap.Items, character.ItemSnapshot{Attack: st.Attack.ID, Quantity: st.Quantity})
	}
	for _, c := range s.allies {
		snap.Allies = append(snap.Allies, c.Export(s.tables, false))
	}
	return snap
}

// Restore rebuilds a session from snap.
//
// Postcondition: Returns an error naming the first unknown id.
func Restore(snap Snapshot, tables *ruleset.Tables) (*GameSession, error) {
	id, err := uuid.Parse(snap.ID)
	if err != nil {
		return nil, fmt.Errorf("parsing session id %q: %w", snap.ID, err)
	}
	s := New(tables, snap.Money)
	s.ID = id
	for _, is := range snap.Items {
		a, ok := tables.Attack(is.Attack)
		if !ok {
			return nil, fmt.Errorf("unknown item attack %q", is.Attack)
		}
		s.items.Add(a, is.Quantity)
	}
	for _, f := range snap.Flags {
		s.SetFlag(f, true)
	}
	for i, cs := range snap.Allies {
		c, err := character.Import(cs, tables, s.items)
		if err != nil {
			return nil, fmt.Errorf("restoring ally %d: %w", i, err)
		}
		if err := s.AddAlly(c); err != nil {
			return nil, err
		}
	}
	return s, nil
}

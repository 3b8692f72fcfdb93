// Package session holds the persistent party state that outlives a single
// encounter: the ally roster, money, the shared briefcase and quest flags.
package session

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/cory-johannsen/goodnight/internal/config"
	"github.com/cory-johannsen/goodnight/internal/game/character"
	"github.com/cory-johannsen/goodnight/internal/game/dice"
	"github.com/cory-johannsen/goodnight/internal/game/ruleset"
	"github.com/cory-johannsen/goodnight/internal/game/targeting"
)

// MaxAllies is the largest party that fits on the player side of the board.
const MaxAllies = targeting.SlotsPerSide

// ErrPartyFull is returned by AddAlly when the party has MaxAllies members.
var ErrPartyFull = errors.New("party is full")

// GameSession is the party's state between and during encounters. It is
// owned by one driver goroutine and is not safe for concurrent use.
type GameSession struct {
	ID     uuid.UUID
	tables *ruleset.Tables
	allies []*character.Combatant
	money  int
	items  *character.Inventory
	flags  map[string]bool
}

// New creates an empty session.
//
// Precondition: tables != nil.
func New(tables *ruleset.Tables, money int) *GameSession {
	return &GameSession{
		ID:     uuid.New(),
		tables: tables,
		money:  max(money, 0),
		items:  character.NewInventory(),
		flags:  make(map[string]bool),
	}
}

// NewGame creates a session whose party is the configured player character.
//
// Postcondition: Returns an error if the player template or level is unknown.
func NewGame(tables *ruleset.Tables, roller *dice.Roller, cfg config.GameConfig) (*GameSession, error) {
	s := New(tables, cfg.StartingMoney)
	player, err := character.Spawn(tables, roller, cfg.PlayerTemplate, cfg.PlayerLevel, false, s.items)
	if err != nil {
		return nil, fmt.Errorf("creating player: %w", err)
	}
	if err := s.AddAlly(player); err != nil {
		return nil, err
	}
	return s, nil
}

// Tables returns the data tables the session resolves ids against.
func (s *GameSession) Tables() *ruleset.Tables { return s.tables }

// Player returns the party leader, or nil for an empty party.
func (s *GameSession) Player() *character.Combatant {
	if len(s.allies) == 0 {
		return nil
	}
	return s.allies[0]
}

// Allies returns the party in roster order.
func (s *GameSession) Allies() []*character.Combatant {
	return append([]*character.Combatant(nil), s.allies...)
}

// Ally returns the first ally built from templateID, or nil.
func (s *GameSession) Ally(templateID string) *character.Combatant {
	for _, c := range s.allies {
		if c.Template.ID == templateID {
			return c
		}
	}
	return nil
}

// AddAlly appends c to the party. c draws items from the party briefcase.
//
// Precondition: c is not an AI combatant.
// Postcondition: Returns ErrPartyFull when the party has MaxAllies members.
func (s *GameSession) AddAlly(c *character.Combatant) error {
	if len(s.allies) >= MaxAllies {
		return fmt.Errorf("adding %s: %w", c.Name, ErrPartyFull)
	}
	c.Items = s.items
	s.allies = append(s.allies, c)
	return nil
}

// RemoveAlly drops the first ally built from templateID. The player is never
// removed.
//
// Postcondition: Returns false if no such ally was removed.
func (s *GameSession) RemoveAlly(templateID string) bool {
	for i, c := range s.allies {
		if i > 0 && c.Template.ID == templateID {
			s.allies = append(s.allies[:i], s.allies[i+1:]...)
			return true
		}
	}
	return false
}

// Money returns the party's money.
func (s *GameSession) Money() int { return s.money }

// AdjustMoney adds delta to the party's money, floored at zero.
func (s *GameSession) AdjustMoney(delta int) { s.money = max(0, s.money+delta) }

// Items returns the party briefcase.
func (s *GameSession) Items() *character.Inventory { return s.items }

// Flag reports whether the named quest flag is set.
func (s *GameSession) Flag(name string) bool { return s.flags[name] }

// SetFlag sets or clears a quest flag.
func (s *GameSession) SetFlag(name string, v bool) {
	if v {
		s.flags[name] = true
		return
	}
	delete(s.flags, name)
}

// Flags returns the set flags in sorted order.
func (s *GameSession) Flags() []string {
	out := make([]string, 0, len(s.flags))
	for f := range s.flags {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// GrantRewards pays out a won encounter: drops go to the briefcase, money is
// added once and xp is split evenly across the living allies. Allies whose
// share crosses a level boundary are returned as pending level-ups and have
// not yet received their share.
func (s *GameSession) GrantRewards(xp, money int, drops []ruleset.ItemSpec) []*LevelUp {
	for _, d := range drops {
		s.items.Add(d.Attack, d.Quantity)
	}
	s.AdjustMoney(money)

	var living []*character.Combatant
	for _, c := range s.allies {
		if !c.Dead {
			living = append(living, c)
		}
	}
	if len(living) == 0 {
		return nil
	}
	share := xp / len(living)
	levels := s.tables.Levels()
	var ups []*LevelUp
	for _, c := range living {
		if levels.ForXP(c.XP+share) != c.Level {
			ups = append(ups, &LevelUp{Ally: c, XP: share, levels: levels})
			continue
		}
		c.XP += share
	}
	return ups
}

// SaveVotes records every ally's votes before an encounter.
func (s *GameSession) SaveVotes() {
	for _, c := range s.allies {
		c.SavedVotes = c.Votes
	}
}

// Package character models combatants: the mutable instances built from a
// template and level that fight in an encounter.
package character

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/cory-johannsen/goodnight/internal/game/dice"
	"github.com/cory-johannsen/goodnight/internal/game/ruleset"
)

// Combatant is one character taking part in combat.
//
// Invariant: 0 <= Votes <= MaxVotes; Votes == 0 iff Dead.
// Invariant: 0 <= Spin <= MaxSpin.
type Combatant struct {
	ID       uuid.UUID
	Template *ruleset.Template
	Name     string
	Level    int
	XP       int
	AI       bool
	Dead     bool
	// SummoningSickness keeps a combatant from acting in the round it appears.
	SummoningSickness bool

	Votes    int
	MaxVotes int
	Spin     int
	MaxSpin  int

	Speed    int
	Wit      int
	Cunning  int
	Charisma int
	Flair    int
	// Resistance is the fraction of positive damage deflected, capped at 1.
	Resistance float64

	Effects ActiveSet

	StandardAttacks []*ruleset.Attack
	SpinAttacks     []*ruleset.Attack
	// Items is the shared briefcase this combatant draws item attacks from.
	Items *Inventory

	// SpinCarry accumulates damage that was too small to earn spin.
	SpinCarry int
	// SavedVotes is the votes total at encounter start, used by restarts.
	SavedVotes int
}

// NewAI instantiates an AI combatant from tpl at level. Votes and spin come
// from the template's growth and both start full.
//
// Precondition: tpl != nil; level >= 1.
// Postcondition: SummoningSickness is true; attack lists are fresh copies.
func NewAI(tpl *ruleset.Template, level int, items *Inventory) *Combatant {
	c := newCombatant(tpl, level, items)
	c.AI = true
	c.MaxVotes = tpl.Votes.At(level)
	c.Votes = c.MaxVotes
	c.MaxSpin = tpl.Spin.At(level)
	c.Spin = c.MaxSpin
	return c
}

// NewAlly instantiates a player-side combatant. Votes and max spin come from
// the level table; spin starts at zero and XP at the level's threshold.
//
// Precondition: tpl != nil; level >= 1.
// Postcondition: Returns an error if levels has no row for level.
func NewAlly(tpl *ruleset.Template, level int, levels ruleset.Levels, items *Inventory) (*Combatant, error) {
	row, ok := levels.Row(level)
	if !ok {
		return nil, fmt.Errorf("no level table row for level %d", level)
	}
	c := newCombatant(tpl, level, items)
	c.XP = row.XP
	c.MaxVotes = row.Votes
	c.Votes = row.Votes
	c.MaxSpin = row.Spin
	c.Spin = 0
	return c, nil
}

func newCombatant(tpl *ruleset.Template, level int, items *Inventory) *Combatant {
	if items == nil {
		items = &Inventory{}
	}
	return &Combatant{
		ID:                uuid.New(),
		Template:          tpl,
		Name:              tpl.Name,
		Level:             level,
		SummoningSickness: true,
		Speed:             tpl.Speed.At(level),
		Wit:               tpl.Wit.At(level),
		Cunning:           tpl.Cunning.At(level),
		Charisma:          tpl.Charisma.At(level),
		Flair:             tpl.Flair.At(level),
		Resistance:        tpl.Resistance,
		StandardAttacks:   append([]*ruleset.Attack(nil), tpl.StandardAttacks...),
		SpinAttacks:       append([]*ruleset.Attack(nil), tpl.SpinAttacks...),
		Items:             items,
	}
}

// Spawn picks a random variant of templateID and instantiates it.
//
// Precondition: roller != nil.
// Postcondition: Returns an error if templateID has no variants or, for
// allies, the level table has no row for level.
func Spawn(tables *ruleset.Tables, roller *dice.Roller, templateID string, level int, ai bool, items *Inventory) (*Combatant, error) {
	variants := tables.Variants(templateID)
	if len(variants) == 0 {
		return nil, fmt.Errorf("unknown template %q", templateID)
	}
	tpl := variants[0]
	if len(variants) > 1 {
		tpl = variants[roller.Choice(len(variants))]
	}
	if ai {
		return NewAI(tpl, level, items), nil
	}
	return NewAlly(tpl, level, tables.Levels(), items)
}

// Alive reports whether the combatant can still act or be targeted as living.
func (c *Combatant) Alive() bool { return !c.Dead }

// Deficit returns the votes missing from full.
func (c *Combatant) Deficit() int { return c.MaxVotes - c.Votes }

// MissesTurn reports whether an active effect makes the combatant skip turns.
func (c *Combatant) MissesTurn() bool {
	return c.Effects.HasFunction(ruleset.FunctionMissTurn)
}

// Owns reports whether a is one of the combatant's permanent attacks rather
// than a consumable item.
func (c *Combatant) Owns(a *ruleset.Attack) bool {
	for _, s := range c.StandardAttacks {
		if s == a {
			return true
		}
	}
	for _, s := range c.SpinAttacks {
		if s == a {
			return true
		}
	}
	return false
}

// CanAfford reports whether the combatant has the spin a costs.
func (c *Combatant) CanAfford(a *ruleset.Attack) bool {
	return a.SpinCost <= c.Spin
}

// IsImmune reports whether a has no effect on the combatant.
func (c *Combatant) IsImmune(a *ruleset.Attack) bool { return c.Template.IsImmune(a) }

// Resists reports whether the combatant takes reduced damage from a.
func (c *Combatant) Resists(a *ruleset.Attack) bool { return c.Template.Resists(a) }

// IsWeakTo reports whether the combatant takes increased damage from a.
func (c *Combatant) IsWeakTo(a *ruleset.Attack) bool { return c.Template.IsWeakTo(a) }

// StatValue returns the damage base for stat, never negative.
func (c *Combatant) StatValue(stat ruleset.Stat) int {
	switch stat {
	case ruleset.StatCunning, ruleset.StatMoney:
		return max(c.Cunning, 0)
	case ruleset.StatWit:
		return max(c.Wit, 0)
	default:
		return 0
	}
}

// SetVotes assigns votes clamped to [0, MaxVotes] and keeps Dead in step.
//
// Postcondition: Votes == 0 iff Dead.
func (c *Combatant) SetVotes(v int) {
	c.Votes = min(max(v, 0), c.MaxVotes)
	c.Dead = c.Votes == 0
}

// SetSpin assigns spin clamped to [0, MaxSpin].
func (c *Combatant) SetSpin(v int) {
	c.Spin = min(max(v, 0), c.MaxSpin)
}

func (c *Combatant) String() string {
	return fmt.Sprintf("%s(L%d %d/%d)", c.Name, c.Level, c.Votes, c.MaxVotes)
}

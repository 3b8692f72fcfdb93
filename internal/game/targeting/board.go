// Package targeting places combatants in battle slots and resolves which
// slots an attack may target.
package targeting

import (
	"sort"

	"github.com/cory-johannsen/goodnight/internal/game/character"
	"github.com/cory-johannsen/goodnight/internal/game/ruleset"
)

// Side is one half of the battlefield.
type Side int

const (
	SidePlayer Side = iota
	SideMonster
)

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == SidePlayer {
		return SideMonster
	}
	return SidePlayer
}

func (s Side) String() string {
	if s == SidePlayer {
		return "player"
	}
	return "monster"
}

// SlotsPerSide is the fixed number of battle positions on each side.
const SlotsPerSide = 4

// Slot is a fixed battle position holding at most one combatant.
type Slot struct {
	Side     Side
	Index    int
	X, Y     int
	Occupant *character.Combatant
}

// Occupied reports whether the slot holds a combatant.
func (s *Slot) Occupied() bool { return s.Occupant != nil }

// Board owns both sides' slots.
type Board struct {
	slots [2][SlotsPerSide]*Slot
}

// NewBoard lays out two facing columns of slots, tile units apart. Player
// slots sit on the left, monster slots on the right, both staggered so the
// front rank is nearer the centre.
//
// Precondition: tile >= 1.
func NewBoard(tile int) *Board {
	b := &Board{}
	for i := 0; i < SlotsPerSide; i++ {
		stagger := (i % 2) * tile
		b.slots[SidePlayer][i] = &Slot{Side: SidePlayer, Index: i, X: 2*tile + stagger, Y: (i + 1) * 2 * tile}
		b.slots[SideMonster][i] = &Slot{Side: SideMonster, Index: i, X: 8*tile + i*tile, Y: (i + 1) * 2 * tile}
	}
	return b
}

// Slots returns side's slots in index order.
func (b *Board) Slots(side Side) []*Slot {
	out := make([]*Slot, SlotsPerSide)
	copy(out, b.slots[side][:])
	return out
}

// All returns player slots followed by monster slots.
func (b *Board) All() []*Slot {
	return append(b.Slots(SidePlayer), b.Slots(SideMonster)...)
}

// SlotOf returns the slot holding c, or nil.
func (b *Board) SlotOf(c *character.Combatant) *Slot {
	for _, s := range b.All() {
		if s.Occupant == c {
			return s
		}
	}
	return nil
}

// SideOf returns the side a combatant fights on.
func SideOf(c *character.Combatant) Side {
	if c.AI {
		return SideMonster
	}
	return SidePlayer
}

// Place puts c into the first empty slot on its side.
//
// Postcondition: Returns the slot, or nil when the side is full.
func (b *Board) Place(c *character.Combatant) *Slot {
	for _, s := range b.slots[SideOf(c)] {
		if s.Occupant == nil {
			s.Occupant = c
			return s
		}
	}
	return nil
}

// Clear empties every slot.
func (b *Board) Clear() {
	for _, s := range b.All() {
		s.Occupant = nil
	}
}

// Combatants returns the occupants of side in slot order.
func (b *Board) Combatants(side Side) []*character.Combatant {
	var out []*character.Combatant
	for _, s := range b.slots[side] {
		if s.Occupant != nil {
			out = append(out, s.Occupant)
		}
	}
	return out
}

// Candidates returns the occupied slots an attack of type tt cast by caster
// may target, sorted left to right.
//
// Precondition: caster is on the board for Self and None.
func (b *Board) Candidates(tt ruleset.TargetType, caster *character.Combatant) []*Slot {
	own := SideOf(caster)
	var out []*Slot
	switch tt {
	case ruleset.TargetAllEnemy:
		out = b.filter(own.Opposite(), living)
	case ruleset.TargetAllFriendly:
		out = b.filter(own, living)
	case ruleset.TargetDeadFriendly:
		out = b.filter(own, dead)
	case ruleset.TargetAll:
		out = append(b.filter(SidePlayer, living), b.filter(SideMonster, living)...)
	default:
		if s := b.SlotOf(caster); s != nil {
			out = []*Slot{s}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].X < out[j].X })
	return out
}

func living(c *character.Combatant) bool { return !c.Dead }
func dead(c *character.Combatant) bool   { return c.Dead }

func (b *Board) filter(side Side, keep func(*character.Combatant) bool) []*Slot {
	var out []*Slot
	for _, s := range b.slots[side] {
		if s.Occupant != nil && keep(s.Occupant) {
			out = append(out, s)
		}
	}
	return out
}

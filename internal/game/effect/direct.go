package effect

import (
	"github.com/cory-johannsen/goodnight/internal/game/character"
	"github.com/cory-johannsen/goodnight/internal/game/ruleset"
)

// Direct is the Sink used outside combat: votes are clamped in place, money
// goes to the wallet and presentation-only events are dropped.
type Direct struct {
	// Money is the wallet ChangeMoney adjusts. May be nil.
	Money *int
}

// ChangeVotes clamps c's votes after adding delta. Healing never raises the dead.
func (d Direct) ChangeVotes(c *character.Combatant, delta int) {
	if c.Dead && delta > 0 {
		return
	}
	c.SetVotes(c.Votes + delta)
}

// Revived does nothing outside combat.
func (Direct) Revived(*character.Combatant) {}

// Floater does nothing outside combat.
func (Direct) Floater(*character.Combatant, string) {}

// Summon does nothing outside combat.
func (Direct) Summon(*character.Combatant, ruleset.SummonSpec, int) {}

// ChangeMoney adds delta to the wallet, floored at zero.
func (d Direct) ChangeMoney(delta int) {
	if d.Money != nil {
		*d.Money = max(0, *d.Money+delta)
	}
}

package script

import (
	"fmt"

	"github.com/cory-johannsen/goodnight/internal/game/character"
	"github.com/cory-johannsen/goodnight/internal/game/dice"
	"github.com/cory-johannsen/goodnight/internal/game/effect"
	"github.com/cory-johannsen/goodnight/internal/game/ruleset"
)

// Party is the state party actions change.
type Party interface {
	Allies() []*character.Combatant
	Ally(templateID string) *character.Combatant
	AddAlly(c *character.Combatant) error
	RemoveAlly(templateID string) bool
	AdjustMoney(delta int)
	SetFlag(name string, v bool)
	Items() *character.Inventory
}

// Apply performs a party action. Dialog, encounter and begin-combat actions
// are left to the caller and do nothing here.
//
// Postcondition: Returns an error for unknown ids or a full party.
func Apply(a Action, p Party, tables *ruleset.Tables, roller *dice.Roller) error {
	direct := effect.Direct{}
	switch a.Kind {
	case KindGiveMoney:
		p.AdjustMoney(a.Amount)
	case KindGiveVotes:
		for _, c := range p.Allies() {
			direct.ChangeVotes(c, a.Amount)
		}
	case KindGiveSpin:
		for _, c := range p.Allies() {
			c.SetSpin(c.Spin + a.Amount)
		}
	case KindRestoreVotes:
		for _, c := range p.Allies() {
			c.SetVotes(c.MaxVotes)
		}
	case KindRestoreSpin:
		for _, c := range p.Allies() {
			c.SetSpin(c.MaxSpin)
		}
	case KindSetFlag:
		p.SetFlag(a.Name, true)
	case KindUnsetFlag:
		p.SetFlag(a.Name, false)
	case KindAddAlly:
		c, err := character.Spawn(tables, roller, a.Name, max(a.Level, 1), false, p.Items())
		if err != nil {
			return fmt.Errorf("adding ally: %w", err)
		}
		return p.AddAlly(c)
	case KindRemoveAlly:
		p.RemoveAlly(a.Name)
	case KindLearnAttack:
		return learn(a, p, tables)
	}
	return nil
}

func learn(a Action, p Party, tables *ruleset.Tables) error {
	atk, ok := tables.Attack(a.Attack)
	if !ok {
		return fmt.Errorf("learning unknown attack %q", a.Attack)
	}
	var c *character.Combatant
	if a.Ally == "" {
		if allies := p.Allies(); len(allies) > 0 {
			c = allies[0]
		}
	} else {
		c = p.Ally(a.Ally)
	}
	if c == nil {
		return fmt.Errorf("learning %q: no ally %q", a.Attack, a.Ally)
	}
	if c.Owns(atk) {
		return nil
	}
	if atk.IsSpin() {
		c.SpinAttacks = append(c.SpinAttacks, atk)
	} else {
		c.StandardAttacks = append(c.StandardAttacks, atk)
	}
	return nil
}

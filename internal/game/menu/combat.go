package menu

import (
	"fmt"

	"github.com/cory-johannsen/goodnight/internal/game/character"
	"github.com/cory-johannsen/goodnight/internal/game/combat"
	"github.com/cory-johannsen/goodnight/internal/game/ruleset"
	"github.com/cory-johannsen/goodnight/internal/game/targeting"
)

// Chooser receives the player's final action.
type Chooser func(atk *ruleset.Attack, targets []*character.Combatant)

// Combat builds the menus of one player turn.
type Combat struct {
	Stack  *Stack
	World  *combat.World
	Source *character.Combatant
	Choose Chooser

	target     *targeting.Selector
	targetMenu *Menu
}

// Main opens the turn's root menu: Offense, Defense, Spin and Items. It
// cannot be dismissed.
//
// Precondition: c.Source is the current combatant.
func (c *Combat) Main() *Menu {
	src := c.Source
	defense := c.World.Tables().Defense()
	m := &Menu{Title: src.Name}
	m.Items = []*Item{
		{Label: "Offense >", Description: "Launch a political attack", Enabled: len(src.StandardAttacks) > 0,
			Activate: func() { c.Stack.Push(c.Attacks(src.StandardAttacks)) }},
		{Label: "Defense", Enabled: defense != nil,
			Activate: func() { c.choose(defense) }},
		{Label: "Spin >", Description: "Run spin to get control of the situation", Enabled: len(src.SpinAttacks) > 0,
			Activate: func() { c.Stack.Push(c.Attacks(src.SpinAttacks)) }},
		{Label: "Items >", Description: "Use an item from your briefcase", Enabled: src.Items != nil && len(src.Items.Stacks()) > 0,
			Activate: func() { c.Stack.Push(c.Items()) }},
	}
	if defense != nil {
		m.Items[1].Description = defense.Description
	}
	c.Stack.Clear()
	c.Stack.Push(m)
	return m
}

// Attacks builds the list menu for attacks.
func (c *Combat) Attacks(attacks []*ruleset.Attack) *Menu {
	m := New("Attacks")
	for _, atk := range attacks {
		m.Items = append(m.Items, c.attackItem(atk, 1))
	}
	return m
}

// Items builds the list menu for the source's briefcase.
func (c *Combat) Items() *Menu {
	m := New("Items")
	for _, st := range c.Source.Items.Stacks() {
		m.Items = append(m.Items, c.attackItem(st.Attack, st.Quantity))
	}
	return m
}

func (c *Combat) attackItem(atk *ruleset.Attack, qty int) *Item {
	label := atk.Name
	enabled := c.Source.CanAfford(atk)
	if atk.Stat == ruleset.StatMoney {
		cost := c.World.Encounter().BribeCost
		label = fmt.Sprintf("%s ($%d)", atk.Name, cost)
		enabled = enabled && c.World.Party().Money() >= cost
	}
	if qty > 1 {
		label = fmt.Sprintf("%s (x%d)", atk.Name, qty)
	}
	if len(c.World.Board().Candidates(atk.TargetType, c.Source)) == 0 {
		enabled = false
	}
	desc := atk.Description
	if atk.SpinCost > 0 {
		desc = fmt.Sprintf("%s (Uses %d spin).", desc, atk.SpinCost)
	}
	return &Item{Label: label, Description: desc, Enabled: enabled, Activate: func() { c.choose(atk) }}
}

// choose acts immediately for untargeted attacks and opens a target menu
// otherwise.
func (c *Combat) choose(atk *ruleset.Attack) {
	switch atk.TargetType {
	case ruleset.TargetNone, ruleset.TargetSelf:
		cands := c.World.Board().Candidates(atk.TargetType, c.Source)
		c.finish(atk, targeting.Occupants(cands))
	default:
		c.Stack.Push(c.Target(atk))
	}
}

// Target builds the window chooser for atk. Left and Right scroll the window;
// Cancel backs out.
//
// Precondition: atk has at least one candidate.
func (c *Combat) Target(atk *ruleset.Attack) *Menu {
	cands := c.World.Board().Candidates(atk.TargetType, c.Source)
	sel := targeting.NewSelector(cands, max(atk.TargetCount, 1))
	m := New("Choose target", &Item{Label: "< Choose Target >", Description: "Choose target", Enabled: true})
	m.Items[0].Activate = func() {
		c.finish(atk, targeting.Occupants(sel.Selected()))
	}
	m.keys = func(m *Menu, k Key) bool {
		switch k {
		case KeyLeft:
			sel.Prev()
		case KeyRight:
			sel.Next()
		default:
			return false
		}
		return true
	}
	c.target, c.targetMenu = sel, m
	return m
}

// Targeted returns the slots the open target menu points at, or nil.
func (c *Combat) Targeted() []*targeting.Slot {
	if c.target == nil || c.Stack.Top() != c.targetMenu {
		return nil
	}
	return c.target.Selected()
}

func (c *Combat) finish(atk *ruleset.Attack, targets []*character.Combatant) {
	c.Stack.Clear()
	c.target, c.targetMenu = nil, nil
	c.Choose(atk, targets)
}

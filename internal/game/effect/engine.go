// Package effect applies, reverses and ticks timed modifiers on combatants.
//
// The engine mutates combatant stats directly. Anything that reaches past the
// combatant (votes changes that must emit floaters, revives, summons, party
// money) goes through a Sink, so the same engine serves combat and scripts.
package effect

import (
	"math"

	"go.uber.org/zap"

	"github.com/cory-johannsen/goodnight/internal/game/character"
	"github.com/cory-johannsen/goodnight/internal/game/dice"
	"github.com/cory-johannsen/goodnight/internal/game/ruleset"
)

// Sink receives the side effects of effect activation and ticking.
type Sink interface {
	// ChangeVotes adds delta (negative for damage) to c's votes.
	ChangeVotes(c *character.Combatant, delta int)
	// Revived is called after a revive set c's votes and cleared Dead.
	Revived(c *character.Combatant)
	// Floater shows a status popup over c.
	Floater(c *character.Combatant, text string)
	// Summon asks for count new combatants described by spec on caster's side.
	Summon(caster *character.Combatant, spec ruleset.SummonSpec, count int)
	// ChangeMoney adds delta to the party's money, floored at zero.
	ChangeMoney(delta int)
}

// Engine implements effect activation over a Sink.
type Engine struct {
	sink   Sink
	roller *dice.Roller
	logger *zap.Logger
}

// NewEngine creates an Engine.
//
// Precondition: sink, roller and logger must be non-nil.
func NewEngine(sink Sink, roller *dice.Roller, logger *zap.Logger) *Engine {
	return &Engine{sink: sink, roller: roller, logger: logger}
}

// Rounds rolls a duration for def in [RoundsMin, RoundsMax].
func (e *Engine) Rounds(def *ruleset.Effect) int {
	return e.roller.Range(dice.KindRounds, def.RoundsMin, def.RoundsMax)
}

// Attach rolls a duration for def and adds it to c.
//
// Postcondition: Returns false if def was already active on c.
func (e *Engine) Attach(c *character.Combatant, def *ruleset.Effect) bool {
	return e.Add(c, def, e.Rounds(def))
}

// Add activates def on c for rounds rounds. A duplicate id is ignored; a
// zero-round effect is applied and immediately removed.
//
// Precondition: rounds >= 0.
// Postcondition: c.Effects holds at most one entry for def.ID; when rounds == 0
// it holds none.
func (e *Engine) Add(c *character.Combatant, def *ruleset.Effect, rounds int) bool {
	ae := &character.ActiveEffect{Def: def, Rounds: rounds}
	if !c.Effects.Insert(ae) {
		return false
	}
	e.Apply(c, def)
	e.logger.Debug("effect applied",
		zap.String("effect", def.ID),
		zap.String("combatant", c.Name),
		zap.Int("rounds", rounds),
	)
	if rounds == 0 {
		e.Remove(c, ae)
	}
	return true
}

// Remove deactivates ae, reversing its activation if it is reversible.
func (e *Engine) Remove(c *character.Combatant, ae *character.ActiveEffect) {
	if !c.Effects.Remove(ae) {
		return
	}
	e.Unapply(c, ae.Def)
	e.logger.Debug("effect removed", zap.String("effect", ae.Def.ID), zap.String("combatant", c.Name))
}

// RemoveAll deactivates every effect on c in insertion order.
func (e *Engine) RemoveAll(c *character.Combatant) {
	for _, ae := range c.Effects.All() {
		e.Remove(c, ae)
	}
}

// TickOne decrements ae, runs its per-round update and removes it when it
// expires.
//
// Postcondition: Returns true if ae expired.
func (e *Engine) TickOne(c *character.Combatant, ae *character.ActiveEffect) bool {
	ae.Rounds--
	e.Update(c, ae.Def)
	if ae.Rounds <= 0 {
		e.Remove(c, ae)
		return true
	}
	return false
}

// Tick runs TickOne over every effect on c, stopping early if c dies.
func (e *Engine) Tick(c *character.Combatant) {
	for _, ae := range c.Effects.All() {
		if c.Dead {
			return
		}
		e.TickOne(c, ae)
	}
}

// Apply performs def's activation change on c.
func (e *Engine) Apply(c *character.Combatant, def *ruleset.Effect) {
	switch def.Function {
	case ruleset.FunctionReduce:
		e.addValue(c, def.Attribute, -def.Value)
	case ruleset.FunctionAdd, ruleset.FunctionAddPermanent:
		e.addValue(c, def.Attribute, def.Value)
	case ruleset.FunctionRevive:
		c.Votes = max(1, int(float64(c.MaxVotes)*def.Value))
		c.Votes = min(c.Votes, c.MaxVotes)
		c.Dead = false
		e.sink.Revived(c)
	case ruleset.FunctionCallFriends:
		if def.Summon != nil {
			e.sink.Summon(c, *def.Summon, int(def.Value))
		}
	}
}

// Unapply reverses def's activation when def is reversible.
func (e *Engine) Unapply(c *character.Combatant, def *ruleset.Effect) {
	switch def.Function {
	case ruleset.FunctionReduce:
		e.addValue(c, def.Attribute, def.Value)
	case ruleset.FunctionAdd:
		e.addValue(c, def.Attribute, -def.Value)
	}
}

// Update performs def's per-round change. Only drains act on tick.
func (e *Engine) Update(c *character.Combatant, def *ruleset.Effect) {
	if def.Function != ruleset.FunctionDrain {
		return
	}
	e.sink.Floater(c, def.ID)
	e.addValue(c, def.Attribute, -def.Value)
}

func (e *Engine) addValue(c *character.Combatant, attr ruleset.Attribute, value float64) {
	iv := int(value)
	switch attr {
	case ruleset.AttrSpin:
		c.SetSpin(c.Spin + iv)
	case ruleset.AttrVotes:
		e.sink.ChangeVotes(c, iv)
	case ruleset.AttrWit:
		c.Wit = max(0, c.Wit+iv)
	case ruleset.AttrCunning:
		c.Cunning = max(0, c.Cunning+iv)
	case ruleset.AttrCharisma:
		c.Charisma = max(0, c.Charisma+iv)
	case ruleset.AttrFlair:
		c.Flair = max(0, c.Flair+iv)
	case ruleset.AttrResistance:
		c.Resistance = math.Max(0, c.Resistance+value)
	case ruleset.AttrMoney:
		e.sink.ChangeMoney(iv)
	}
}

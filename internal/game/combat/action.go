package combat

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/goodnight/internal/game/character"
	"github.com/cory-johannsen/goodnight/internal/game/ruleset"
)

// Decision is an attack and the targets it is aimed at.
type Decision struct {
	Attack  *ruleset.Attack
	Targets []*character.Combatant
}

// Decider chooses actions for AI combatants.
type Decider interface {
	// Decide returns source's action. ok is false when source has no legal
	// action and must pass.
	Decide(w *World, source *character.Combatant) (d Decision, ok bool)
}

// Act announces source's attack on targets and schedules its resolution.
//
// Precondition: source is the current combatant and no continuation is
// pending. Panics otherwise.
// Postcondition: AwaitingInput is false and ActiveAttack returns attack.
func (w *World) Act(source *character.Combatant, attack *ruleset.Attack, targets []*character.Combatant) {
	if source != w.Current() {
		panic("combat: Act called for " + source.Name + " out of turn")
	}
	w.awaitingInput = false
	w.active = attack
	w.activeSource = source
	w.activeTargets = append([]*character.Combatant(nil), targets...)
	w.logger.Info("action chosen",
		zap.String("source", source.Name),
		zap.String("attack", attack.ID),
		zap.Int("targets", len(targets)),
	)
	delay := w.timing.AttackDelay
	if len(w.floaters) > 0 {
		delay = w.timing.TurnEndFloaterDelay
	}
	w.schedule(delay, stepResolve)
}

func (w *World) runAI() {
	c := w.Current()
	if w.decider == nil {
		w.logger.Warn("no decider for AI combatant", zap.String("combatant", c.Name))
		w.EndTurn()
		return
	}
	d, ok := w.decider.Decide(w, c)
	if !ok {
		w.logger.Info("AI passes", zap.String("combatant", c.Name))
		w.EndTurn()
		return
	}
	w.Act(c, d.Attack, d.Targets)
}

package combat

import (
	"go.uber.org/zap"
)

// beginRound clears summoning sickness, re-sorts the roster by speed and
// starts the first living combatant's turn.
//
// Precondition: at least one combatant is alive. Panics otherwise.
func (w *World) beginRound() {
	w.round++
	for _, c := range w.order {
		c.SummoningSickness = false
	}
	SortBySpeed(w.order)
	w.current = 0
	for w.current < len(w.order) && w.order[w.current].Dead {
		w.current++
	}
	if w.current >= len(w.order) {
		panic("combat: round began with no living combatant")
	}
	w.logger.Info("round started", zap.Int("round", w.round))
	w.beginTurn()
}

// beginTurn ticks the current combatant's effects. Whether the combatant
// misses this turn is decided before ticking, so a stun that expires on this
// tick still costs the turn.
func (w *World) beginTurn() {
	if w.current >= len(w.order) {
		w.beginRound()
		return
	}
	c := w.order[w.current]
	w.missTurn = c.MissesTurn()
	w.tickQueue = c.Effects.All()
	w.tickIndex = 0
	w.logger.Debug("turn started", zap.String("combatant", c.Name), zap.Bool("miss_turn", w.missTurn))
	w.tickEffects()
}

// tickEffects ticks queued effects in insertion order. A tick that leaves
// floaters on screen pauses before the next one.
func (w *World) tickEffects() {
	c := w.order[w.current]
	for {
		if c.Dead {
			w.EndTurn()
			return
		}
		if w.tickIndex >= len(w.tickQueue) {
			w.afterEffects()
			return
		}
		ae := w.tickQueue[w.tickIndex]
		w.tickIndex++
		if c.Effects.Get(ae.Def.ID) != ae {
			continue
		}
		w.effects.TickOne(c, ae)
		if len(w.floaters) > 0 {
			w.schedule(w.timing.EffectTickDelay, stepTickEffect)
			return
		}
	}
}

func (w *World) afterEffects() {
	c := w.order[w.current]
	switch {
	case c.Dead:
		w.EndTurn()
	case w.missTurn:
		w.active = w.tables.MissTurn()
		w.activeSource = c
		w.logger.Debug("turn missed", zap.String("combatant", c.Name))
		w.schedule(w.timing.MissTurnDelay, stepEndTurn)
	case c.AI:
		w.schedule(w.timing.AIThinkDelay, stepAI)
	default:
		w.awaitingInput = true
		w.listener.PlayerTurn(w, c)
	}
}

// EndTurn clears the active action and either finishes the encounter or
// advances to the next combatant able to act. A board where both sides are
// wiped counts as won.
func (w *World) EndTurn() {
	w.active = nil
	w.activeSource = nil
	w.activeTargets = nil
	w.awaitingInput = false

	win, lose := true, true
	for _, c := range w.order {
		if c.Dead {
			continue
		}
		if c.AI {
			win = false
		} else {
			lose = false
		}
	}
	switch {
	case win:
		w.finish(Won)
		return
	case lose:
		w.finish(Lost)
		return
	}

	w.current++
	for w.current < len(w.order) && (w.order[w.current].Dead || w.order[w.current].SummoningSickness) {
		w.current++
	}
	w.beginTurn()
}

func (w *World) finish(r Result) {
	w.result = r
	w.logger.Info("encounter finished",
		zap.String("encounter", w.encounter.ID),
		zap.Stringer("result", r),
		zap.Int("rounds", w.round),
	)
	w.listener.Finished(w, r)
}

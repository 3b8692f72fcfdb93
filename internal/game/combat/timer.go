package combat

import (
	"time"

	"go.uber.org/zap"
)

// step names a delayed continuation of the state machine.
type step int

const (
	stepResolve step = iota + 1
	stepEndTurn
	stepTickEffect
	stepAI
	stepSummon
)

func (s step) String() string {
	switch s {
	case stepResolve:
		return "resolve"
	case stepEndTurn:
		return "end_turn"
	case stepTickEffect:
		return "tick_effect"
	case stepAI:
		return "ai"
	case stepSummon:
		return "summon"
	default:
		return "unknown"
	}
}

// continuation is the World's single pending timed step.
type continuation struct {
	step      step
	remaining time.Duration
}

// schedule arms the continuation slot.
//
// Precondition: no continuation is pending. Panics otherwise.
func (w *World) schedule(d time.Duration, s step) {
	if w.pending != nil {
		panic("combat: " + s.String() + " scheduled while " + w.pending.step.String() + " is pending")
	}
	w.pending = &continuation{step: s, remaining: d}
	w.logger.Debug("continuation scheduled", zap.Stringer("step", s), zap.Duration("delay", d))
}

func (w *World) fire(s step) {
	switch s {
	case stepResolve:
		w.resolve()
	case stepEndTurn:
		w.EndTurn()
	case stepTickEffect:
		w.tickEffects()
	case stepAI:
		w.runAI()
	case stepSummon:
		w.fillSummons()
		w.schedule(w.timing.SummonDelay, stepEndTurn)
	}
}

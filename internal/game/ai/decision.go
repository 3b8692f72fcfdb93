// Package ai picks actions for computer-controlled combatants.
//
// A DecisionMaker builds the legal attack set for the acting combatant,
// drops attacks that would be wasted on the current board, picks one by
// weight and aims it with the same targeting windows the player menu uses.
package ai

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/goodnight/internal/game/character"
	"github.com/cory-johannsen/goodnight/internal/game/combat"
	"github.com/cory-johannsen/goodnight/internal/game/dice"
	"github.com/cory-johannsen/goodnight/internal/game/ruleset"
	"github.com/cory-johannsen/goodnight/internal/game/targeting"
)

// DecisionMaker implements combat.Decider.
type DecisionMaker struct {
	roller *dice.Roller
	logger *zap.Logger
}

// NewDecisionMaker creates a DecisionMaker.
//
// Precondition: roller and logger must be non-nil.
func NewDecisionMaker(roller *dice.Roller, logger *zap.Logger) *DecisionMaker {
	return &DecisionMaker{roller: roller, logger: logger}
}

// Decide picks source's attack and targets on w's board.
//
// Postcondition: ok is false only when source has no attack with a target.
func (d *DecisionMaker) Decide(w *combat.World, source *character.Combatant) (combat.Decision, bool) {
	board := w.Board()
	attacks := Playable(board, source, Filter(board, source, Legal(source)))
	if len(attacks) == 0 {
		attacks = Playable(board, source, source.StandardAttacks)
	}
	if len(attacks) == 0 {
		return combat.Decision{}, false
	}

	weights := make([]int, len(attacks))
	positive := false
	for i, a := range attacks {
		weights[i] = a.Weight
		positive = positive || a.Weight > 0
	}
	var atk *ruleset.Attack
	if positive {
		atk = attacks[d.roller.Weighted(weights)]
	} else {
		atk = attacks[d.roller.Choice(len(attacks))]
	}

	targets := d.Targets(board, source, atk)
	d.logger.Debug("AI decided",
		zap.String("combatant", source.Name),
		zap.String("attack", atk.ID),
		zap.Int("targets", len(targets)),
	)
	return combat.Decision{Attack: atk, Targets: targets}, true
}

// Legal returns the attacks source may use: every standard attack plus the
// spin attacks and items it can afford.
func Legal(source *character.Combatant) []*ruleset.Attack {
	out := append([]*ruleset.Attack(nil), source.StandardAttacks...)
	for _, a := range source.SpinAttacks {
		if source.CanAfford(a) {
			out = append(out, a)
		}
	}
	if source.Items != nil {
		for _, s := range source.Items.Stacks() {
			if source.CanAfford(s.Attack) {
				out = append(out, s.Attack)
			}
		}
	}
	return out
}

// Filter drops attacks that would be wasted: heals larger than the worst
// wound on source's side, revives with nobody to revive and summons with
// nowhere to put the newcomers.
func Filter(board *targeting.Board, source *character.Combatant, attacks []*ruleset.Attack) []*ruleset.Attack {
	side := targeting.SideOf(source)
	deficit := 0
	hasDead, hasRoom := false, false
	for _, s := range board.Slots(side) {
		c := s.Occupant
		switch {
		case c == nil:
			hasRoom = true
		case c.Dead:
			hasDead, hasRoom = true, true
		default:
			deficit = max(deficit, c.Deficit())
		}
	}

	var out []*ruleset.Attack
	for _, a := range attacks {
		switch {
		case a.HealthBenefit > deficit:
		case a.IsRevive() && !hasDead:
		case a.IsSummon() && !hasRoom:
		default:
			out = append(out, a)
		}
	}
	return out
}

// Playable keeps the attacks that have at least one candidate target.
func Playable(board *targeting.Board, source *character.Combatant, attacks []*ruleset.Attack) []*ruleset.Attack {
	var out []*ruleset.Attack
	for _, a := range attacks {
		if len(board.Candidates(a.TargetType, source)) > 0 {
			out = append(out, a)
		}
	}
	return out
}

// Targets aims atk: a revive at the first dead ally, a heal at the worst
// wound, anything else at a random window.
//
// Precondition: atk has at least one candidate.
func (d *DecisionMaker) Targets(board *targeting.Board, source *character.Combatant, atk *ruleset.Attack) []*character.Combatant {
	cands := board.Candidates(atk.TargetType, source)
	count := targeting.ClampCount(max(atk.TargetCount, 1), len(cands))
	starts := targeting.Starts(len(cands), count)

	start := -1
	switch {
	case atk.IsRevive():
		for i, s := range cands {
			if s.Occupant.Dead {
				start = i
				break
			}
		}
	case atk.HealthBenefit > 0:
		worst := -1
		for i, s := range cands {
			if def := s.Occupant.Deficit(); !s.Occupant.Dead && def > worst {
				start, worst = i, def
			}
		}
	}
	if start < 0 {
		start = d.roller.Choice(starts)
	}
	start = min(start, starts-1)
	return targeting.Occupants(targeting.Window(cands, start, count))
}

package combat

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/goodnight/internal/game/character"
	"github.com/cory-johannsen/goodnight/internal/game/ruleset"
	"github.com/cory-johannsen/goodnight/internal/game/targeting"
)

// worldSink routes effect side effects into the World.
type worldSink struct{ w *World }

func (s worldSink) ChangeVotes(c *character.Combatant, delta int) { s.w.ApplyDamage(c, -delta) }

func (s worldSink) Revived(c *character.Combatant) {
	s.w.addFloater(c, "Revived!", FloaterStatus)
	s.w.logger.Info("combatant revived", zap.String("combatant", c.Name), zap.Int("votes", c.Votes))
}

func (s worldSink) Floater(c *character.Combatant, text string) {
	s.w.addFloater(c, text, FloaterStatus)
}

func (s worldSink) ChangeMoney(delta int) { s.w.party.AdjustMoney(delta) }

// Summon clears dead occupants from the caster's side and queues the fill,
// which runs after the resolution pause.
func (s worldSink) Summon(caster *character.Combatant, spec ruleset.SummonSpec, count int) {
	side := targeting.SideOf(caster)
	for _, slot := range s.w.board.Slots(side) {
		if slot.Occupant != nil && slot.Occupant.Dead {
			slot.Occupant = nil
		}
	}
	s.w.summons = append(s.w.summons, summonRequest{side: side, spec: spec, count: count, items: caster.Items})
}

// summonRequest is a queued CallFriends activation.
type summonRequest struct {
	side  targeting.Side
	spec  ruleset.SummonSpec
	count int
	items *character.Inventory
}

// fillSummons spawns queued reinforcements into empty slots. Newcomers join
// the turn order with summoning sickness.
func (w *World) fillSummons() {
	reqs := w.summons
	w.summons = nil
	for _, r := range reqs {
		for i := 0; i < r.count && w.emptySlots(r.side) > 0; i++ {
			c, err := character.Spawn(w.tables, w.roller, r.spec.TemplateID, r.spec.Level, r.side == targeting.SideMonster, r.items)
			if err != nil {
				w.logger.Error("summoning", zap.String("template", r.spec.TemplateID), zap.Error(err))
				break
			}
			w.board.Place(c)
			w.order = append(w.order, c)
			w.logger.Info("combatant summoned", zap.String("combatant", c.Name), zap.Stringer("side", r.side))
		}
	}
}

func (w *World) emptySlots(side targeting.Side) int {
	n := 0
	for _, s := range w.board.Slots(side) {
		if s.Occupant == nil {
			n++
		}
	}
	return n
}

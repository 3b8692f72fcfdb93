package combat

import (
	"math"
	"strconv"

	"go.uber.org/zap"

	"github.com/cory-johannsen/goodnight/internal/game/character"
	"github.com/cory-johannsen/goodnight/internal/game/dice"
	"github.com/cory-johannsen/goodnight/internal/game/ruleset"
)

const (
	resistFactor   = 0.7
	weaknessFactor = 1.3
	// spinDivisor converts damage dealt into spin earned.
	spinDivisor = 5
	// massiveFactor scales player damage when MassiveDamage is set.
	massiveFactor = 100
)

// resolve runs the active attack to completion and schedules the end of the
// turn, or the summon fill when the attack called for reinforcements.
func (w *World) resolve() {
	src, atk := w.activeSource, w.active

	// Resources.
	base := src.StatValue(atk.Stat)
	if atk.Stat == ruleset.StatMoney {
		w.party.AdjustMoney(-w.encounter.BribeCost)
	}
	if atk.IsHealing() {
		base = -base
	}
	if atk.SpinCost > 0 {
		src.SetSpin(src.Spin - atk.SpinCost)
	}
	if !src.Owns(atk) {
		src.Items.Remove(atk)
	}

	for _, e := range atk.Effects {
		if e.ApplyToSource && !e.CriticalFail {
			w.effects.Attach(src, e)
		}
	}

	critFail := true
	total := 0
	for _, t := range w.activeTargets {
		if t.IsImmune(atk) {
			w.addFloater(t, "Immune", FloaterStatus)
			continue
		}
		net := w.Damage(src, t, atk, base+w.rollDamage(src, t, atk))
		tried := atk.TriesDamage()
		if !tried || net != 0 {
			critFail = false
		}
		if tried {
			w.ApplyDamage(t, net)
		}
		for _, e := range atk.Effects {
			if !e.ApplyToSource && !e.CriticalFail {
				w.effects.Attach(t, e)
			}
		}
		if net > 0 {
			total += net
		}
	}

	if cf := atk.CriticalFail(); critFail && cf != nil {
		w.addFloater(src, "Critical fail", FloaterStatus)
		w.effects.Attach(src, cf)
	}
	if atk.SpinCost == 0 {
		AwardSpin(src, total)
	}

	w.logger.Debug("action resolved",
		zap.String("source", src.Name),
		zap.String("attack", atk.ID),
		zap.Int("damage", total),
	)
	delay := w.timing.TurnEndDelay
	if len(w.floaters) > 0 {
		delay = w.timing.TurnEndFloaterDelay
	}
	next := stepEndTurn
	if len(w.summons) > 0 {
		next = stepSummon
	}
	w.schedule(delay, next)
}

// rollDamage returns the attack's rolled component: the crit damage when the
// crit roll succeeds, otherwise a draw in [DamageMin, DamageMax].
func (w *World) rollDamage(src, target *character.Combatant, atk *ruleset.Attack) int {
	if atk.CritChanceMax > 0 {
		chance := w.roller.Range(dice.KindCrit, atk.CritChanceMin, atk.CritChanceMax)
		if w.roller.Percent() <= chance+src.Flair {
			w.addFloater(target, "Critical Hit!", FloaterStatus)
			return atk.CritDamage
		}
	}
	return w.roller.Range(dice.KindDamage, atk.DamageMin, atk.DamageMax)
}

// Damage applies target's mitigation to raw and returns the integer votes
// change. Negative values are healing and pass through unmitigated.
func (w *World) Damage(src, target *character.Combatant, atk *ruleset.Attack, raw int) int {
	dmg := float64(raw)
	if w.MassiveDamage && !src.AI {
		dmg *= massiveFactor
	}
	if dmg <= 0 {
		return int(dmg)
	}
	dmg = math.Max(0, dmg-float64(target.Charisma))
	switch {
	case target.Resists(atk):
		dmg *= resistFactor
		w.addFloater(target, "Resists", FloaterStatus)
	case target.IsWeakTo(atk):
		dmg *= weaknessFactor
		w.addFloater(target, "Weak!", FloaterStatus)
	}
	if target.Resistance != 0 {
		w.addFloater(target, "Defends", FloaterStatus)
		dmg -= dmg * math.Min(1, target.Resistance)
	}
	return int(dmg)
}

// ApplyDamage subtracts dmg from target's votes and shows the change. A
// negative dmg heals. Healing never raises the dead.
//
// Postcondition: 0 <= target.Votes <= target.MaxVotes; Votes == 0 iff Dead.
func (w *World) ApplyDamage(target *character.Combatant, dmg int) {
	if target.Dead && dmg < 0 {
		return
	}
	target.SetVotes(target.Votes - dmg)
	if dmg >= 0 {
		w.addFloater(target, strconv.Itoa(dmg), FloaterDamage)
	} else {
		w.addFloater(target, strconv.Itoa(-dmg), FloaterHeal)
	}
	if target.Dead {
		w.logger.Info("combatant defeated", zap.String("combatant", target.Name))
	}
}

// AwardSpin converts damage dealt into spin. Damage too small to earn a point
// carries over to the next award.
//
// Postcondition: c.Spin <= c.MaxSpin.
func AwardSpin(c *character.Combatant, dmg int) {
	dmg = max(dmg, 0)
	bonus := (dmg + c.SpinCarry + max(c.Wit, 0)) / spinDivisor
	if bonus <= 0 {
		c.SpinCarry += dmg
		return
	}
	c.SpinCarry = 0
	c.SetSpin(c.Spin + bonus)
}

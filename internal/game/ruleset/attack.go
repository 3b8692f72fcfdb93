package ruleset

// Sentinel attack ids. Both are optional in content.
const (
	// DefenseID is the attack the Defense menu entry performs.
	DefenseID = "DEFENSE"
	// MissTurnID is announced when a combatant's turn is skipped.
	MissTurnID = "MISSTURN"
)

// Attack is the static definition of a combat action: standard attacks, spin
// attacks and consumable items all share this shape.
type Attack struct {
	ID            string     `yaml:"id"`
	Name          string     `yaml:"name"`
	Description   string     `yaml:"description"`
	SpinCost      int        `yaml:"spin_cost"`
	TargetType    TargetType `yaml:"target_type"`
	TargetCount   int        `yaml:"target_count"`
	Stat          Stat       `yaml:"stat"`
	DamageMin     int        `yaml:"damage_min"`
	DamageMax     int        `yaml:"damage_max"`
	CritDamage    int        `yaml:"crit_damage"`
	CritChanceMin int        `yaml:"crit_chance_min"`
	CritChanceMax int        `yaml:"crit_chance_max"`
	EffectIDs     []string   `yaml:"effects"`
	WeightValue   *int       `yaml:"ai_weight"`

	// Resolved by Load.
	Effects       []*Effect `yaml:"-"`
	Weight        int       `yaml:"-"`
	HealthBenefit int       `yaml:"-"`
}

// IsSpin reports whether the attack costs spin.
func (a *Attack) IsSpin() bool { return a.SpinCost > 0 }

// IsHealing reports whether the attack's rolled component restores votes.
func (a *Attack) IsHealing() bool { return a.DamageMin < 0 }

// TriesDamage reports whether the attack deals damage at all: it is based on
// a stat or has a non-zero damage component. Pure effect attacks do not.
func (a *Attack) TriesDamage() bool {
	return a.Stat != StatNone || a.DamageMin != 0 || a.DamageMax != 0 || a.CritDamage != 0
}

// IsRevive reports whether the attack carries a Revive effect.
func (a *Attack) IsRevive() bool { return a.hasFunction(FunctionRevive) }

// IsSummon reports whether the attack carries a CallFriends effect.
func (a *Attack) IsSummon() bool { return a.hasFunction(FunctionCallFriends) }

// CriticalFail returns the attack's critical-fail sentinel effect, or nil.
func (a *Attack) CriticalFail() *Effect {
	for _, e := range a.Effects {
		if e.CriticalFail {
			return e
		}
	}
	return nil
}

func (a *Attack) hasFunction(f Function) bool {
	for _, e := range a.Effects {
		if e.Function == f {
			return true
		}
	}
	return false
}

// healthBenefit is the minimum votes the attack restores to a friendly target.
// Only attacks aimed at friends (or with no target) count.
func (a *Attack) healthBenefit() int {
	if a.TargetType != TargetAllFriendly && a.TargetType != TargetNone {
		return 0
	}
	benefit := 0
	if a.DamageMax < 0 {
		benefit = -a.DamageMax
	}
	for _, e := range a.Effects {
		if e.Function == FunctionAddPermanent && e.Attribute == AttrVotes {
			benefit += int(e.Value)
		}
	}
	return benefit
}

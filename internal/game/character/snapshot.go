package character

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/cory-johannsen/goodnight/internal/game/ruleset"
)

// Stat keys used in Snapshot.Stats.
const (
	KeyVotes      = "votes"
	KeyMaxVotes   = "max_votes"
	KeySpin       = "spin"
	KeyMaxSpin    = "max_spin"
	KeySpeed      = "speed"
	KeyWit        = "wit"
	KeyCunning    = "cunning"
	KeyCharisma   = "charisma"
	KeyFlair      = "flair"
	KeyResistance = "resistance"
	KeySpinCarry  = "spin_carry"
	KeySavedVotes = "saved_votes"
)

// EffectSnapshot is an active effect by id.
type EffectSnapshot struct {
	ID     string `json:"id" yaml:"id"`
	Rounds int    `json:"rounds" yaml:"rounds"`
}

// ItemSnapshot is an item stack by attack id.
type ItemSnapshot struct {
	Attack   string `json:"attack" yaml:"attack"`
	Quantity int    `json:"quantity" yaml:"quantity"`
}

// Snapshot is the attribute-name to value export shape of a combatant.
type Snapshot struct {
	ID                string             `json:"id" yaml:"id"`
	Template          string             `json:"template" yaml:"template"`
	Variant           int                `json:"variant" yaml:"variant"`
	Name              string             `json:"name" yaml:"name"`
	Level             int                `json:"level" yaml:"level"`
	XP                int                `json:"xp" yaml:"xp"`
	AI                bool               `json:"ai" yaml:"ai"`
	Dead              bool               `json:"dead" yaml:"dead"`
	SummoningSickness bool               `json:"summoning_sickness" yaml:"summoning_sickness"`
	Stats             map[string]float64 `json:"stats" yaml:"stats"`
	Effects           []EffectSnapshot   `json:"effects,omitempty" yaml:"effects,omitempty"`
	StandardAttacks   []string           `json:"standard_attacks" yaml:"standard_attacks"`
	SpinAttacks       []string           `json:"spin_attacks" yaml:"spin_attacks"`
	Items             []ItemSnapshot     `json:"items,omitempty" yaml:"items,omitempty"`
}

// Export captures the combatant's state. Items are included only when
// withItems is set; allies share the party briefcase, which is saved once.
func (c *Combatant) Export(tables *ruleset.Tables, withItems bool) Snapshot {
	snap := Snapshot{
		ID:                c.ID.String(),
		Template:          c.Template.ID,
		Name:              c.Name,
		Level:             c.Level,
		XP:                c.XP,
		AI:                c.AI,
		Dead:              c.Dead,
		SummoningSickness: c.SummoningSickness,
		Stats: map[string]float64{
			KeyVotes:      float64(c.Votes),
			KeyMaxVotes:   float64(c.MaxVotes),
			KeySpin:       float64(c.Spin),
			KeyMaxSpin:    float64(c.MaxSpin),
			KeySpeed:      float64(c.Speed),
			KeyWit:        float64(c.Wit),
			KeyCunning:    float64(c.Cunning),
			KeyCharisma:   float64(c.Charisma),
			KeyFlair:      float64(c.Flair),
			KeyResistance: c.Resistance,
			KeySpinCarry:  float64(c.SpinCarry),
			KeySavedVotes: float64(c.SavedVotes),
		},
		StandardAttacks: attackIDs(c.StandardAttacks),
		SpinAttacks:     attackIDs(c.SpinAttacks),
	}
	for i, v := range tables.Variants(c.Template.ID) {
		if v == c.Template {
			snap.Variant = i
		}
	}
	for _, ae := range c.Effects.All() {
		snap.Effects = append(snap.Effects, EffectSnapshot{ID: ae.Def.ID, Rounds: ae.Rounds})
	}
	if withItems && c.Items != nil {
		for _, s := range c.Items.Stacks() {
			snap.Items = append(snap.Items, ItemSnapshot{Attack: s.Attack.ID, Quantity: s.Quantity})
		}
	}
	return snap
}

// Import rebuilds a combatant from snap. Active effects are restored without
// being re-applied: their activation changes are already part of the stats.
// When snap carries no items the combatant draws from items.
//
// Postcondition: Returns an error naming the first unknown id.
func Import(snap Snapshot, tables *ruleset.Tables, items *Inventory) (*Combatant, error) {
	variants := tables.Variants(snap.Template)
	if snap.Variant < 0 || snap.Variant >= len(variants) {
		return nil, fmt.Errorf("unknown template %q variant %d", snap.Template, snap.Variant)
	}
	id, err := uuid.Parse(snap.ID)
	if err != nil {
		return nil, fmt.Errorf("parsing combatant id %q: %w", snap.ID, err)
	}
	stat := func(key string) int { return int(snap.Stats[key]) }
	c := &Combatant{
		ID:                id,
		Template:          variants[snap.Variant],
		Name:              snap.Name,
		Level:             snap.Level,
		XP:                snap.XP,
		AI:                snap.AI,
		Dead:              snap.Dead,
		SummoningSickness: snap.SummoningSickness,
		Votes:             stat(KeyVotes),
		MaxVotes:          stat(KeyMaxVotes),
		Spin:              stat(KeySpin),
		MaxSpin:           stat(KeyMaxSpin),
		Speed:             stat(KeySpeed),
		Wit:               stat(KeyWit),
		Cunning:           stat(KeyCunning),
		Charisma:          stat(KeyCharisma),
		Flair:             stat(KeyFlair),
		Resistance:        snap.Stats[KeyResistance],
		SpinCarry:         stat(KeySpinCarry),
		SavedVotes:        stat(KeySavedVotes),
		Items:             items,
	}
	if c.StandardAttacks, err = resolveAttacks(tables, snap.StandardAttacks); err != nil {
		return nil, err
	}
	if c.SpinAttacks, err = resolveAttacks(tables, snap.SpinAttacks); err != nil {
		return nil, err
	}
	for _, es := range snap.Effects {
		def, ok := tables.Effect(es.ID)
		if !ok {
			return nil, fmt.Errorf("unknown effect %q", es.ID)
		}
		c.Effects.Insert(&ActiveEffect{Def: def, Rounds: es.Rounds})
	}
	if len(snap.Items) > 0 {
		c.Items = &Inventory{}
		for _, is := range snap.Items {
			a, ok := tables.Attack(is.Attack)
			if !ok {
				return nil, fmt.Errorf("unknown item attack %q", is.Attack)
			}
			c.Items.Add(a, is.Quantity)
		}
	}
	if c.Items == nil {
		c.Items = &Inventory{}
	}
	return c, nil
}

func attackIDs(attacks []*ruleset.Attack) []string {
	ids := make([]string, len(attacks))
	for i, a := range attacks {
		ids[i] = a.ID
	}
	return ids
}

func resolveAttacks(tables *ruleset.Tables, ids []string) ([]*ruleset.Attack, error) {
	out := make([]*ruleset.Attack, 0, len(ids))
	for _, id := range ids {
		a, ok := tables.Attack(id)
		if !ok {
			return nil, fmt.Errorf("unknown attack %q", id)
		}
		out = append(out, a)
	}
	return out, nil
}

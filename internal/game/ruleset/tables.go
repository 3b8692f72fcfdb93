// Package ruleset loads the immutable combat data tables: effects, attacks,
// character templates, encounters and the level table.
//
// Every string reference between tables is resolved into a typed pointer once
// at load time. A reference to an unknown id is a configuration error and
// fails the load before any combat starts.
package ruleset

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Document is the on-disk shape of a tables file. A file may carry any
// subset of the sections; Load merges every file in a directory.
type Document struct {
	Effects      []*Effect      `yaml:"effects"`
	Attacks      []*Attack      `yaml:"attacks"`
	AttackGroups []*AttackGroup `yaml:"attack_groups"`
	Templates    []*Template    `yaml:"templates"`
	Encounters   []*Encounter   `yaml:"encounters"`
	Levels       []Level        `yaml:"levels"`
}

// Tables holds the resolved, read-only data tables.
type Tables struct {
	effects    map[string]*Effect
	attacks    map[string]*Attack
	groups     map[string]*AttackGroup
	templates  map[string][]*Template
	encounters map[string]*Encounter
	levels     Levels
}

// Effect returns the effect with id.
func (t *Tables) Effect(id string) (*Effect, bool) {
	e, ok := t.effects[id]
	return e, ok
}

// Attack returns the attack with id.
func (t *Tables) Attack(id string) (*Attack, bool) {
	a, ok := t.attacks[id]
	return a, ok
}

// Variants returns every template variant registered under id.
func (t *Tables) Variants(id string) []*Template {
	return t.templates[id]
}

// Encounter returns the encounter with id.
func (t *Tables) Encounter(id string) (*Encounter, bool) {
	e, ok := t.encounters[id]
	return e, ok
}

// EncounterIDs returns all encounter ids sorted.
func (t *Tables) EncounterIDs() []string {
	ids := make([]string, 0, len(t.encounters))
	for id := range t.encounters {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Levels returns the level table ordered by level.
func (t *Tables) Levels() Levels { return t.levels }

// Defense returns the Defense sentinel attack, or nil when content omits it.
func (t *Tables) Defense() *Attack { return t.attacks[DefenseID] }

// MissTurn returns the MissTurn sentinel attack, or nil when content omits it.
func (t *Tables) MissTurn() *Attack { return t.attacks[MissTurnID] }

// Load reads every *.yaml / *.yml file in dir, merges them and resolves the
// result.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns fully resolved Tables, or an error naming every
// configuration problem found.
func Load(dir string) (*Tables, error) {
	files, err := yamlFiles(dir)
	if err != nil {
		return nil, err
	}
	var merged Document
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		var doc Document
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		merged.Effects = append(merged.Effects, doc.Effects...)
		merged.Attacks = append(merged.Attacks, doc.Attacks...)
		merged.AttackGroups = append(merged.AttackGroups, doc.AttackGroups...)
		merged.Templates = append(merged.Templates, doc.Templates...)
		merged.Encounters = append(merged.Encounters, doc.Encounters...)
		merged.Levels = append(merged.Levels, doc.Levels...)
	}
	tables, err := Build(merged)
	if err != nil {
		return nil, fmt.Errorf("loading tables from %s: %w", dir, err)
	}
	return tables, nil
}

// Build resolves and validates doc. The Document's records are adopted, not
// copied; callers must not mutate them afterwards.
//
// Postcondition: Returns fully resolved Tables, or an error joining every
// configuration problem found.
func Build(doc Document) (*Tables, error) {
	t := &Tables{
		effects:    make(map[string]*Effect),
		attacks:    make(map[string]*Attack),
		groups:     make(map[string]*AttackGroup),
		templates:  make(map[string][]*Template),
		encounters: make(map[string]*Encounter),
	}
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	for _, e := range doc.Effects {
		if e.ID == "" {
			fail("effect with empty id")
			continue
		}
		if _, dup := t.effects[e.ID]; dup {
			fail("effect %q: duplicate id", e.ID)
			continue
		}
		t.effects[e.ID] = e
		if e.RoundsMin < 0 || e.RoundsMin > e.RoundsMax {
			fail("effect %q: rounds must satisfy 0 <= rounds_min <= rounds_max, got %d..%d", e.ID, e.RoundsMin, e.RoundsMax)
		}
		switch e.Function {
		case FunctionUnset:
			fail("effect %q: function must be set", e.ID)
		case FunctionAdd, FunctionAddPermanent, FunctionReduce, FunctionDrain:
			if e.Attribute == AttrNone {
				fail("effect %q: function %s requires an attribute", e.ID, e.Function)
			}
		case FunctionCallFriends:
			if e.Summon == nil {
				fail("effect %q: call_friends requires a summon block", e.ID)
			} else if e.Value < 1 {
				fail("effect %q: call_friends value must be >= 1", e.ID)
			}
		}
		if e.Summon != nil && e.Function != FunctionCallFriends {
			fail("effect %q: summon block is only valid on call_friends", e.ID)
		}
	}

	for _, a := range doc.Attacks {
		if a.ID == "" {
			fail("attack with empty id")
			continue
		}
		if _, dup := t.attacks[a.ID]; dup {
			fail("attack %q: duplicate id", a.ID)
			continue
		}
		t.attacks[a.ID] = a
		if a.SpinCost < 0 {
			fail("attack %q: spin_cost must be >= 0", a.ID)
		}
		if a.TargetCount == 0 {
			a.TargetCount = 1
		}
		if a.TargetCount < 0 || a.TargetCount > MaxMonsters {
			fail("attack %q: target_count must be 1-%d, got %d", a.ID, MaxMonsters, a.TargetCount)
		}
		if a.DamageMin > a.DamageMax {
			fail("attack %q: damage_min %d exceeds damage_max %d", a.ID, a.DamageMin, a.DamageMax)
		}
		if a.CritChanceMin < 0 || a.CritChanceMin > a.CritChanceMax {
			fail("attack %q: crit chance must satisfy 0 <= min <= max", a.ID)
		}
		a.Weight = 1
		if a.WeightValue != nil {
			a.Weight = *a.WeightValue
		}
		if a.Weight < 0 {
			fail("attack %q: ai_weight must be >= 0", a.ID)
		}
		a.Effects = a.Effects[:0]
		critFails := 0
		for _, id := range a.EffectIDs {
			e, ok := t.effects[id]
			if !ok {
				fail("attack %q: unknown effect %q", a.ID, id)
				continue
			}
			if e.CriticalFail {
				critFails++
			}
			a.Effects = append(a.Effects, e)
		}
		if critFails > 1 {
			fail("attack %q: at most one critical_fail effect allowed", a.ID)
		}
		a.HealthBenefit = a.healthBenefit()
	}

	for _, g := range doc.AttackGroups {
		if _, dup := t.groups[g.ID]; dup {
			fail("attack group %q: duplicate id", g.ID)
			continue
		}
		t.groups[g.ID] = g
	}

	for _, tpl := range doc.Templates {
		if tpl.ID == "" {
			fail("template with empty id")
			continue
		}
		t.templates[tpl.ID] = append(t.templates[tpl.ID], tpl)
		ids := tpl.AttackIDs
		if tpl.AttackGroup != "" {
			g, ok := t.groups[tpl.AttackGroup]
			if !ok {
				fail("template %q: unknown attack group %q", tpl.ID, tpl.AttackGroup)
			} else {
				ids = append(append([]string(nil), g.AttackIDs...), ids...)
			}
		}
		tpl.StandardAttacks, tpl.SpinAttacks = nil, nil
		for _, id := range ids {
			a, ok := t.attacks[id]
			if !ok {
				fail("template %q: unknown attack %q", tpl.ID, id)
				continue
			}
			if a.IsSpin() {
				tpl.SpinAttacks = append(tpl.SpinAttacks, a)
			} else {
				tpl.StandardAttacks = append(tpl.StandardAttacks, a)
			}
		}
		tpl.immune = t.attackSet(tpl.ID, "immunities", tpl.Immunities, fail)
		tpl.resists = t.attackSet(tpl.ID, "resistances", tpl.Resistances, fail)
		tpl.weak = t.attackSet(tpl.ID, "weaknesses", tpl.Weaknesses, fail)
		if tpl.Votes.At(1) < 1 {
			fail("template %q: votes must be >= 1 at level 1", tpl.ID)
		}
	}

	for _, e := range t.effects {
		if e.Summon == nil {
			continue
		}
		if len(t.templates[e.Summon.TemplateID]) == 0 {
			fail("effect %q: unknown summon template %q", e.ID, e.Summon.TemplateID)
		}
		if e.Summon.Level < 1 {
			fail("effect %q: summon level must be >= 1", e.ID)
		}
	}

	for _, enc := range doc.Encounters {
		if enc.ID == "" {
			fail("encounter with empty id")
			continue
		}
		if _, dup := t.encounters[enc.ID]; dup {
			fail("encounter %q: duplicate id", enc.ID)
			continue
		}
		t.encounters[enc.ID] = enc
		if enc.Trigger == "" {
			enc.Trigger = enc.ID
		}
		if len(enc.Monsters) == 0 || len(enc.Monsters) > MaxMonsters {
			fail("encounter %q: must have 1-%d monsters, got %d", enc.ID, MaxMonsters, len(enc.Monsters))
		}
		for _, m := range enc.Monsters {
			if len(t.templates[m.TemplateID]) == 0 {
				fail("encounter %q: unknown template %q", enc.ID, m.TemplateID)
			}
			if m.Level < 1 {
				fail("encounter %q: monster %q level must be >= 1", enc.ID, m.TemplateID)
			}
		}
		if enc.BribeCost < 0 || enc.XP < 0 || enc.Money < 0 {
			fail("encounter %q: bribe_cost, xp and money must be >= 0", enc.ID)
		}
		t.resolveItems(enc.ID, "items", enc.Items, fail)
		t.resolveItems(enc.ID, "drops", enc.Drops, fail)
	}

	t.levels = Levels(doc.Levels).sorted()
	if len(t.levels) == 0 {
		fail("level table must not be empty")
	}
	for i, row := range t.levels {
		if i > 0 && row.Level == t.levels[i-1].Level {
			fail("level %d: duplicate row", row.Level)
		}
		if i > 0 && row.XP < t.levels[i-1].XP {
			fail("level %d: xp %d is below the previous level's %d", row.Level, row.XP, t.levels[i-1].XP)
		}
		if row.Votes < 1 || row.SkillPoints < 0 || row.Spin < 0 {
			fail("level %d: votes must be >= 1, spin and skill_points >= 0", row.Level)
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return t, nil
}

func (t *Tables) attackSet(owner, field string, ids []string, fail func(string, ...any)) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, ok := t.attacks[id]; !ok {
			fail("template %q: unknown attack %q in %s", owner, id, field)
			continue
		}
		set[id] = true
	}
	return set
}

func (t *Tables) resolveItems(owner, field string, items []ItemSpec, fail func(string, ...any)) {
	for i := range items {
		a, ok := t.attacks[items[i].AttackID]
		if !ok {
			fail("encounter %q: unknown attack %q in %s", owner, items[i].AttackID, field)
			continue
		}
		items[i].Attack = a
		if items[i].Quantity == 0 {
			items[i].Quantity = 1
		}
		if items[i].Quantity < 0 {
			fail("encounter %q: negative quantity for %q in %s", owner, a.ID, field)
		}
	}
}

func yamlFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if isTableFile(e.Name()) {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func isTableFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

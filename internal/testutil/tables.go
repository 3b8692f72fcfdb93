// Package testutil provides shared test fixtures: data tables, scripted
// rollers and a disposable Postgres container.
package testutil

import (
	"testing"

	"go.uber.org/zap"

	"github.com/cory-johannsen/goodnight/internal/game/dice"
	"github.com/cory-johannsen/goodnight/internal/game/ruleset"
)

func ip(v int) *int { return &v }

// Document returns a fresh copy of the standard test tables. Callers may
// append records before passing it to Build.
//
// Postcondition: every call returns independent records.
func Document() ruleset.Document {
	return ruleset.Document{
		Effects: []*ruleset.Effect{
			{ID: "shamed", Abbrev: "SHM", Function: ruleset.FunctionReduce, Attribute: ruleset.AttrCharisma, Value: 2, RoundsMin: 2, RoundsMax: 2},
			{ID: "drained", Abbrev: "DRN", Function: ruleset.FunctionDrain, Attribute: ruleset.AttrVotes, Value: 3, RoundsMin: 2, RoundsMax: 2},
			{ID: "stunned", Abbrev: "STN", Function: ruleset.FunctionMissTurn, RoundsMin: 1, RoundsMax: 1},
			{ID: "flop", Abbrev: "FLP", ApplyToSource: true, Function: ruleset.FunctionMissTurn, RoundsMin: 1, RoundsMax: 1, CriticalFail: true},
			{ID: "pumped", Abbrev: "PMP", ApplyToSource: true, Function: ruleset.FunctionAdd, Attribute: ruleset.AttrWit, Value: 2, RoundsMin: 2, RoundsMax: 2},
			{ID: "boost", Function: ruleset.FunctionAddPermanent, Attribute: ruleset.AttrVotes, Value: 5},
			{ID: "revive", Function: ruleset.FunctionRevive, Attribute: ruleset.AttrVotes, Value: 0.5},
			{ID: "rally", Function: ruleset.FunctionCallFriends, Value: 2, Summon: &ruleset.SummonSpec{TemplateID: "intern", Level: 1}},
			{ID: "kickback", Function: ruleset.FunctionAddPermanent, Attribute: ruleset.AttrMoney, Value: 10},
			{ID: "thick_skin", Abbrev: "THK", ApplyToSource: true, Function: ruleset.FunctionAdd, Attribute: ruleset.AttrResistance, Value: 0.5, RoundsMin: 2, RoundsMax: 2},
		},
		Attacks: []*ruleset.Attack{
			{ID: "jab", Name: "Jab", TargetType: ruleset.TargetAllEnemy, Stat: ruleset.StatCunning},
			{ID: "zinger", Name: "Zinger", TargetType: ruleset.TargetAllEnemy, Stat: ruleset.StatWit, DamageMin: 1, DamageMax: 3, CritDamage: 10, CritChanceMin: 10, CritChanceMax: 20, EffectIDs: []string{"shamed", "flop"}},
			{ID: "filibuster", Name: "Filibuster", SpinCost: 4, TargetType: ruleset.TargetAllEnemy, TargetCount: 2, Stat: ruleset.StatCunning, DamageMin: 2, DamageMax: 4, EffectIDs: []string{"stunned"}},
			{ID: "pep_talk", Name: "Pep Talk", SpinCost: 3, TargetType: ruleset.TargetAllFriendly, DamageMin: -6, DamageMax: -4, EffectIDs: []string{"boost"}},
			{ID: "grassroots", Name: "Grassroots", SpinCost: 5, TargetType: ruleset.TargetDeadFriendly, EffectIDs: []string{"revive"}},
			{ID: "call_interns", Name: "Call the Interns", SpinCost: 5, TargetType: ruleset.TargetNone, EffectIDs: []string{"rally"}},
			{ID: "bribe", Name: "Bribe", TargetType: ruleset.TargetAllEnemy, Stat: ruleset.StatMoney, DamageMin: 1, DamageMax: 1},
			{ID: "leak", Name: "Leak", TargetType: ruleset.TargetAllEnemy, EffectIDs: []string{"drained"}, WeightValue: ip(0)},
			{ID: "coffee", Name: "Coffee", TargetType: ruleset.TargetSelf, EffectIDs: []string{"pumped"}},
			{ID: "fundraiser", Name: "Fundraiser", TargetType: ruleset.TargetSelf, EffectIDs: []string{"kickback"}},
			{ID: ruleset.DefenseID, Name: "Defend", TargetType: ruleset.TargetSelf, EffectIDs: []string{"thick_skin"}},
			{ID: ruleset.MissTurnID, Name: "Stunned", TargetType: ruleset.TargetNone},
		},
		Templates: []*ruleset.Template{
			{
				ID: "candidate", Name: "Candidate",
				Votes: ruleset.Growth{Base: 30, PerLevel: 5}, Spin: ruleset.Growth{Base: 10, PerLevel: 2},
				Speed: ruleset.Growth{Base: 5, PerLevel: 1}, Wit: ruleset.Growth{Base: 2, PerLevel: 1},
				Cunning: ruleset.Growth{Base: 10, PerLevel: 1},
				AttackIDs: []string{"jab", "zinger", "filibuster", "pep_talk", "grassroots", "bribe"},
			},
			{
				ID: "aide", Name: "Aide",
				Votes: ruleset.Growth{Base: 20}, Speed: ruleset.Growth{Base: 4}, Cunning: ruleset.Growth{Base: 6},
				AttackIDs: []string{"jab", "pep_talk"},
			},
			{
				ID: "intern", Name: "Intern",
				Votes: ruleset.Growth{Base: 10, PerLevel: 2}, Spin: ruleset.Growth{Base: 6},
				Speed: ruleset.Growth{Base: 3}, Cunning: ruleset.Growth{Base: 4},
				AttackIDs:   []string{"jab", "call_interns"},
				Resistances: []string{"zinger"},
				Weaknesses:  []string{"bribe"},
			},
			{
				ID: "lobbyist", Name: "Lobbyist",
				Votes: ruleset.Growth{Base: 25, PerLevel: 5}, Spin: ruleset.Growth{Base: 10},
				Speed: ruleset.Growth{Base: 7}, Cunning: ruleset.Growth{Base: 8}, Charisma: ruleset.Growth{Base: 1},
				AttackIDs:  []string{"jab", "filibuster", "pep_talk", "grassroots"},
				Immunities: []string{"bribe"},
			},
		},
		Encounters: []*ruleset.Encounter{
			{
				ID: "hallway", Name: "Hallway Ambush",
				Monsters:  []ruleset.MonsterSpec{{TemplateID: "intern", Level: 1}, {TemplateID: "intern", Level: 1}},
				Items:     []ruleset.ItemSpec{{AttackID: "coffee", Quantity: 2}},
				BribeCost: 5, XP: 40, Money: 20,
				Drops: []ruleset.ItemSpec{{AttackID: "coffee", Quantity: 1}},
			},
			{
				ID: "lobby", Name: "K Street",
				Monsters: []ruleset.MonsterSpec{{TemplateID: "lobbyist", Level: 2}, {TemplateID: "intern", Level: 1}},
				XP:       120, Money: 50,
				Drops: []ruleset.ItemSpec{{AttackID: "fundraiser"}},
			},
		},
		Levels: []ruleset.Level{
			{Level: 1, XP: 0, Votes: 30, Spin: 10},
			{Level: 2, XP: 100, Votes: 40, Spin: 12, SkillPoints: 3},
			{Level: 3, XP: 250, Votes: 50, Spin: 15, SkillPoints: 3},
		},
	}
}

// Tables builds the standard test tables or fails the test.
func Tables(t testing.TB) *ruleset.Tables {
	t.Helper()
	return BuildTables(t, Document())
}

// BuildTables builds doc or fails the test.
func BuildTables(t testing.TB, doc ruleset.Document) *ruleset.Tables {
	t.Helper()
	tables, err := ruleset.Build(doc)
	if err != nil {
		t.Fatalf("building test tables: %v", err)
	}
	return tables
}

// Roller returns a silent Roller replaying values (see dice.SequenceSource).
func Roller(values ...int) *dice.Roller {
	return dice.NewLoggedRoller(dice.NewSequenceSource(values...), zap.NewNop())
}

// SeededRoller returns a silent Roller over a seeded source.
func SeededRoller(seed uint64) *dice.Roller {
	return dice.NewLoggedRoller(dice.NewSeededSource(seed), zap.NewNop())
}

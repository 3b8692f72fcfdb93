package ai_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/goodnight/internal/config"
	"github.com/cory-johannsen/goodnight/internal/game/ai"
	"github.com/cory-johannsen/goodnight/internal/game/character"
	"github.com/cory-johannsen/goodnight/internal/game/combat"
	"github.com/cory-johannsen/goodnight/internal/game/dice"
	"github.com/cory-johannsen/goodnight/internal/game/ruleset"
	"github.com/cory-johannsen/goodnight/internal/testutil"
)

type board struct {
	w      *combat.World
	tables *ruleset.Tables
}

func newBoard(t *testing.T, roller *dice.Roller) *board {
	t.Helper()
	tables := testutil.Tables(t)
	enc, ok := tables.Encounter("lobby")
	require.True(t, ok)
	w := combat.New(combat.Options{
		Tables:    tables,
		Encounter: enc,
		Roller:    roller,
		Logger:    zap.NewNop(),
		Timing:    config.CombatConfig{TileSize: 16},
	})
	return &board{w: w, tables: tables}
}

func (b *board) ally(t *testing.T) *character.Combatant {
	t.Helper()
	c, err := character.NewAlly(b.tables.Variants("candidate")[0], 1, b.tables.Levels(), nil)
	require.NoError(t, err)
	require.NoError(t, b.w.Join(c))
	return c
}

func (b *board) monster(t *testing.T, id string) *character.Combatant {
	t.Helper()
	c := character.NewAI(b.tables.Variants(id)[0], 1, b.w.AIItems())
	require.NoError(t, b.w.Join(c))
	return c
}

func ids(attacks []*ruleset.Attack) []string {
	out := make([]string, len(attacks))
	for i, a := range attacks {
		out[i] = a.ID
	}
	return out
}

func TestLegal_SpinAndItemsNeedSpin(t *testing.T) {
	b := newBoard(t, testutil.Roller(0))
	c := b.ally(t)
	coffee, _ := b.tables.Attack("coffee")
	c.Items.Add(coffee, 1)

	c.Spin = 0
	assert.Equal(t, []string{"jab", "zinger", "bribe", "coffee"}, ids(ai.Legal(c)))

	c.Spin = 4
	assert.Equal(t, []string{"jab", "zinger", "bribe", "filibuster", "pep_talk", "coffee"}, ids(ai.Legal(c)))
}

func TestFilter_DropsWastedHealing(t *testing.T) {
	b := newBoard(t, testutil.Roller(0))
	b.ally(t)
	lob := b.monster(t, "lobbyist")
	lob.Spin = lob.MaxSpin
	legal := ai.Legal(lob)

	assert.Equal(t, []string{"jab", "filibuster"}, ids(ai.Filter(b.w.Board(), lob, legal)))

	lob.SetVotes(lob.MaxVotes - 9)
	assert.Equal(t, []string{"jab", "filibuster", "pep_talk"}, ids(ai.Filter(b.w.Board(), lob, legal)))
}

func TestFilter_ReviveNeedsDeadAlly(t *testing.T) {
	b := newBoard(t, testutil.Roller(0))
	b.ally(t)
	lob := b.monster(t, "lobbyist")
	fallen := b.monster(t, "intern")
	lob.Spin = lob.MaxSpin
	fallen.SetVotes(0)

	assert.Contains(t, ids(ai.Filter(b.w.Board(), lob, ai.Legal(lob))), "grassroots")
}

func TestFilter_SummonNeedsRoom(t *testing.T) {
	b := newBoard(t, testutil.Roller(0))
	b.ally(t)
	var interns []*character.Combatant
	for i := 0; i < 4; i++ {
		interns = append(interns, b.monster(t, "intern"))
	}
	caller := interns[0]
	caller.Spin = caller.MaxSpin

	assert.NotContains(t, ids(ai.Filter(b.w.Board(), caller, ai.Legal(caller))), "call_interns")

	interns[3].SetVotes(0)
	assert.Contains(t, ids(ai.Filter(b.w.Board(), caller, ai.Legal(caller))), "call_interns")
}

func TestTargets_ReviveAimsAtDead(t *testing.T) {
	b := newBoard(t, testutil.Roller(0))
	b.ally(t)
	lob := b.monster(t, "lobbyist")
	b.monster(t, "intern")
	fallen := b.monster(t, "intern")
	fallen.SetVotes(0)
	grassroots, _ := b.tables.Attack("grassroots")

	dm := ai.NewDecisionMaker(testutil.Roller(0), zap.NewNop())
	assert.Equal(t, []*character.Combatant{fallen}, dm.Targets(b.w.Board(), lob, grassroots))
}

func TestTargets_HealAimsAtWorstWound(t *testing.T) {
	b := newBoard(t, testutil.Roller(0))
	b.ally(t)
	lob := b.monster(t, "lobbyist")
	hurt := b.monster(t, "intern")
	scratched := b.monster(t, "intern")
	hurt.SetVotes(2)
	scratched.SetVotes(scratched.MaxVotes - 1)
	pep, _ := b.tables.Attack("pep_talk")

	dm := ai.NewDecisionMaker(testutil.Roller(0), zap.NewNop())
	assert.Equal(t, []*character.Combatant{hurt}, dm.Targets(b.w.Board(), lob, pep))
}

func TestDecide_WeightedChoice(t *testing.T) {
	b := newBoard(t, testutil.Roller(0))
	enemy := b.ally(t)
	lob := b.monster(t, "lobbyist")
	lob.Spin = lob.MaxSpin

	dm := ai.NewDecisionMaker(testutil.Roller(1), zap.NewNop())
	d, ok := dm.Decide(b.w, lob)
	require.True(t, ok)
	assert.Equal(t, "filibuster", d.Attack.ID)
	assert.Equal(t, []*character.Combatant{enemy}, d.Targets)
}

func TestDecide_FallsBackToStandardAttacks(t *testing.T) {
	b := newBoard(t, testutil.Roller(0))
	b.ally(t)
	lob := b.monster(t, "lobbyist")
	lob.Spin = 0
	pep, _ := b.tables.Attack("pep_talk")
	lob.StandardAttacks = []*ruleset.Attack{pep}

	dm := ai.NewDecisionMaker(testutil.Roller(0), zap.NewNop())
	d, ok := dm.Decide(b.w, lob)
	require.True(t, ok)
	assert.Equal(t, "pep_talk", d.Attack.ID)
}

func TestDecide_NoAttacksPasses(t *testing.T) {
	b := newBoard(t, testutil.Roller(0))
	b.ally(t)
	lob := b.monster(t, "lobbyist")
	lob.StandardAttacks = nil
	lob.Spin = 0

	_, ok := ai.NewDecisionMaker(testutil.Roller(0), zap.NewNop()).Decide(b.w, lob)
	assert.False(t, ok)
}

func TestProperty_TargetsAreLivingEnemies(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		b := newBoard(t, testutil.Roller(0))
		var allies []*character.Combatant
		n := rapid.IntRange(1, 4).Draw(rt, "allies")
		for i := 0; i < n; i++ {
			allies = append(allies, b.ally(t))
		}
		for i, a := range allies {
			if i > 0 && rapid.Bool().Draw(rt, "dead") {
				a.SetVotes(0)
			}
		}
		lob := b.monster(t, "lobbyist")
		lob.Spin = rapid.IntRange(0, lob.MaxSpin).Draw(rt, "spin")

		seed := rapid.Uint64().Draw(rt, "seed")
		d, ok := ai.NewDecisionMaker(testutil.SeededRoller(seed), zap.NewNop()).Decide(b.w, lob)
		if !ok {
			rt.Fatalf("lobbyist always has jab")
		}
		if d.Attack.TargetType != ruleset.TargetAllEnemy {
			return
		}
		if len(d.Targets) == 0 {
			rt.Fatalf("no targets for %s", d.Attack.ID)
		}
		for _, c := range d.Targets {
			if c.Dead || c.AI {
				rt.Fatalf("%s aimed at %v", d.Attack.ID, c)
			}
		}
	})
}

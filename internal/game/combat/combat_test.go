package combat_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/goodnight/internal/config"
	"github.com/cory-johannsen/goodnight/internal/game/character"
	"github.com/cory-johannsen/goodnight/internal/game/combat"
	"github.com/cory-johannsen/goodnight/internal/game/ruleset"
	"github.com/cory-johannsen/goodnight/internal/game/targeting"
	"github.com/cory-johannsen/goodnight/internal/testutil"
)

const frame = 100 * time.Millisecond

var timing = config.CombatConfig{
	AttackDelay:         time.Second,
	TurnEndDelay:        time.Second,
	TurnEndFloaterDelay: 2 * time.Second,
	EffectTickDelay:     time.Second,
	AIThinkDelay:        500 * time.Millisecond,
	MissTurnDelay:       2 * time.Second,
	SummonDelay:         500 * time.Millisecond,
	FloaterLifetime:     time.Second,
	TileSize:            16,
}

type wallet struct{ money int }

func (p *wallet) Money() int { return p.money }

func (p *wallet) AdjustMoney(delta int) { p.money = max(0, p.money+delta) }

type recorder struct {
	turns   []*character.Combatant
	results []combat.Result
}

func (r *recorder) PlayerTurn(_ *combat.World, c *character.Combatant) { r.turns = append(r.turns, c) }

func (r *recorder) Finished(_ *combat.World, res combat.Result) { r.results = append(r.results, res) }

type deciderFunc func(w *combat.World, c *character.Combatant) (combat.Decision, bool)

func (f deciderFunc) Decide(w *combat.World, c *character.Combatant) (combat.Decision, bool) {
	return f(w, c)
}

func passing(calls *int) deciderFunc {
	return func(*combat.World, *character.Combatant) (combat.Decision, bool) {
		if calls != nil {
			*calls++
		}
		return combat.Decision{}, false
	}
}

type harness struct {
	t        *testing.T
	w        *combat.World
	tables   *ruleset.Tables
	wallet   *wallet
	listener *recorder
	items    *character.Inventory
}

func newHarness(t *testing.T, doc ruleset.Document, encounterID string, decider combat.Decider) *harness {
	t.Helper()
	return newHarnessWithLogger(t, doc, encounterID, decider, zap.NewNop())
}

func newHarnessWithLogger(t *testing.T, doc ruleset.Document, encounterID string, decider combat.Decider, logger *zap.Logger) *harness {
	t.Helper()
	tables := testutil.BuildTables(t, doc)
	enc, ok := tables.Encounter(encounterID)
	require.True(t, ok)
	h := &harness{
		t:        t,
		tables:   tables,
		wallet:   &wallet{money: 100},
		listener: &recorder{},
		items:    character.NewInventory(),
	}
	h.w = combat.New(combat.Options{
		Tables:    tables,
		Encounter: enc,
		Roller:    testutil.Roller(0),
		Logger:    logger,
		Timing:    timing,
		Party:     h.wallet,
		Decider:   decider,
		Listener:  h.listener,
	})
	return h
}

func (h *harness) ally(templateID string) *character.Combatant {
	h.t.Helper()
	c, err := character.NewAlly(h.tables.Variants(templateID)[0], 1, h.tables.Levels(), h.items)
	require.NoError(h.t, err)
	require.NoError(h.t, h.w.Join(c))
	return c
}

func (h *harness) monster(templateID string, level int) *character.Combatant {
	h.t.Helper()
	c := character.NewAI(h.tables.Variants(templateID)[0], level, h.w.AIItems())
	require.NoError(h.t, h.w.Join(c))
	return c
}

func (h *harness) attack(id string) *ruleset.Attack {
	h.t.Helper()
	a, ok := h.tables.Attack(id)
	require.True(h.t, ok, "attack %q", id)
	return a
}

// run advances frames until the World waits for input, finishes or idles.
func (h *harness) run() {
	h.t.Helper()
	for i := 0; i < 10000; i++ {
		if h.w.AwaitingInput() || h.w.Result() != combat.InProgress || !h.w.Pending() {
			return
		}
		h.w.Update(frame)
	}
	h.t.Fatal("combat did not settle")
}

func (h *harness) act(source *character.Combatant, attackID string, targets ...*character.Combatant) {
	h.t.Helper()
	require.True(h.t, h.w.AwaitingInput())
	h.w.Act(source, h.attack(attackID), targets)
}

func floaterTexts(w *combat.World) []string {
	var out []string
	for _, f := range w.Floaters() {
		out = append(out, f.Text)
	}
	return out
}

func TestBasicAttack_StatDamage(t *testing.T) {
	h := newHarness(t, testutil.Document(), "hallway", passing(nil))
	cand := h.ally("candidate")
	aide := h.monster("aide", 1)
	h.w.Start()
	h.run()
	require.Equal(t, cand, h.w.Current())

	h.act(cand, "jab", aide)
	h.run()

	assert.Equal(t, 10, aide.Votes)
	assert.Equal(t, 2, cand.Spin, "(10 + wit 2) / 5")
	assert.Equal(t, 2, h.w.Round())
	assert.Len(t, h.listener.turns, 2)
}

func TestResistance_ReducesThirtyPercent(t *testing.T) {
	doc := testutil.Document()
	for _, tpl := range doc.Templates {
		if tpl.ID == "intern" {
			tpl.Resistances = append(tpl.Resistances, "jab")
		}
	}
	h := newHarness(t, doc, "hallway", passing(nil))
	cand := h.ally("candidate")
	intern := h.monster("intern", 1)
	h.w.Start()
	h.run()

	h.act(cand, "jab", intern)
	h.w.Update(timing.AttackDelay)

	assert.Equal(t, 3, intern.Votes)
	assert.Contains(t, floaterTexts(h.w), "Resists")
}

func TestWeakness_BribeChargesOnceAndWins(t *testing.T) {
	h := newHarness(t, testutil.Document(), "hallway", passing(nil))
	cand := h.ally("candidate")
	intern := h.monster("intern", 1)
	h.w.Start()
	h.run()

	h.act(cand, "bribe", intern)
	h.run()

	assert.True(t, intern.Dead)
	assert.Equal(t, 95, h.wallet.money)
	assert.Equal(t, combat.Won, h.w.Result())
	assert.Equal(t, []combat.Result{combat.Won}, h.listener.results)
}

func TestImmune_SkipsTarget(t *testing.T) {
	h := newHarness(t, testutil.Document(), "lobby", passing(nil))
	cand := h.ally("candidate")
	lob := h.monster("lobbyist", 1)
	cand.Speed = 20
	h.w.Start()
	h.run()

	h.act(cand, "bribe", lob)
	h.w.Update(timing.AttackDelay)

	assert.Equal(t, lob.MaxVotes, lob.Votes)
	assert.Contains(t, floaterTexts(h.w), "Immune")
	assert.Equal(t, 100, h.wallet.money, "lobby has no bribe cost")
}

func TestCriticalHit_UsesCritDamage(t *testing.T) {
	h := newHarness(t, testutil.Document(), "hallway", passing(nil))
	cand := h.ally("candidate")
	aide := h.monster("aide", 1)
	h.w.Start()
	h.run()

	h.act(cand, "zinger", aide)
	h.w.Update(timing.AttackDelay)

	assert.Equal(t, 8, aide.Votes, "wit 2 + crit 10")
	assert.True(t, aide.Effects.Has("shamed"))
	assert.False(t, cand.Effects.Has("flop"))
	assert.Contains(t, floaterTexts(h.w), "Critical Hit!")
}

func TestCriticalFail_CostsNextTurn(t *testing.T) {
	h := newHarness(t, testutil.Document(), "hallway", passing(nil))
	h.w = combat.New(combat.Options{
		Tables:    h.tables,
		Encounter: h.w.Encounter(),
		Roller:    testutil.Roller(0, 99),
		Logger:    zap.NewNop(),
		Timing:    timing,
		Party:     h.wallet,
		Decider:   passing(nil),
		Listener:  h.listener,
	})
	cand := h.ally("candidate")
	aide := h.monster("aide", 1)
	aide.Charisma = 50
	h.w.Start()
	h.run()

	h.act(cand, "zinger", aide)
	h.w.Update(timing.AttackDelay)
	assert.Equal(t, aide.MaxVotes, aide.Votes)
	assert.True(t, cand.Effects.Has("flop"))
	assert.Contains(t, floaterTexts(h.w), "Critical fail")

	h.run()
	assert.Equal(t, 3, h.w.Round(), "round 2 turn was skipped")
	assert.Len(t, h.listener.turns, 2)
	assert.False(t, cand.Effects.Has("flop"))
}

func TestMissTurn_AnnouncedWithoutDeciding(t *testing.T) {
	calls := 0
	h := newHarness(t, testutil.Document(), "hallway", passing(&calls))
	cand := h.ally("candidate")
	cand.Spin = 10
	aide := h.monster("aide", 1)
	h.w.Start()
	h.run()

	h.act(cand, "filibuster", aide)
	for h.w.ActiveAttack() == nil || h.w.ActiveAttack().ID != ruleset.MissTurnID {
		require.True(t, h.w.Pending())
		h.w.Update(frame)
	}
	assert.Equal(t, aide, h.w.Current())
	assert.Equal(t, 8, aide.Votes, "cunning 10 + 2")
	assert.Equal(t, 6, cand.Spin, "spin attacks earn no spin")

	h.run()
	assert.Zero(t, calls)
	assert.Equal(t, cand, h.w.Current())
}

func TestHealing_RestoresAndBoosts(t *testing.T) {
	h := newHarness(t, testutil.Document(), "hallway", passing(nil))
	cand := h.ally("candidate")
	aide := h.ally("aide")
	h.monster("intern", 1)
	cand.Spin = 10
	aide.SetVotes(10)
	h.w.Start()
	h.run()
	require.Equal(t, cand, h.w.Current())

	h.act(cand, "pep_talk", aide)
	h.w.Update(timing.AttackDelay)

	assert.Equal(t, 21, aide.Votes, "6 healed + 5 boost")
	assert.Equal(t, 7, cand.Spin)
	var kinds []combat.FloaterKind
	for _, f := range h.w.Floaters() {
		kinds = append(kinds, f.Kind)
	}
	assert.Contains(t, kinds, combat.FloaterHeal)
}

func TestRevive_RaisesDeadAlly(t *testing.T) {
	h := newHarness(t, testutil.Document(), "hallway", passing(nil))
	cand := h.ally("candidate")
	aide := h.ally("aide")
	h.monster("intern", 1)
	cand.Spin = 10
	aide.SetVotes(0)
	h.w.Start()
	h.run()

	cands := h.w.Board().Candidates(ruleset.TargetDeadFriendly, cand)
	require.Len(t, cands, 1)
	h.act(cand, "grassroots", cands[0].Occupant)
	h.w.Update(timing.AttackDelay)

	assert.False(t, aide.Dead)
	assert.Equal(t, 15, aide.Votes)
	assert.Equal(t, 0, aide.Effects.Len())
	assert.Contains(t, floaterTexts(h.w), "Revived!")
}

func TestItem_ConsumedAndEffectApplied(t *testing.T) {
	h := newHarness(t, testutil.Document(), "hallway", passing(nil))
	cand := h.ally("candidate")
	h.monster("intern", 1)
	coffee := h.attack("coffee")
	h.items.Add(coffee, 2)
	h.w.Start()
	h.run()

	h.act(cand, "coffee", cand)
	h.w.Update(timing.AttackDelay)

	assert.Equal(t, 1, h.items.Quantity(coffee))
	assert.Equal(t, 4, cand.Wit)
	assert.True(t, cand.Effects.Has("pumped"))
}

func TestMoneyEffect_PaysParty(t *testing.T) {
	h := newHarness(t, testutil.Document(), "hallway", passing(nil))
	cand := h.ally("candidate")
	h.monster("intern", 1)
	h.items.Add(h.attack("fundraiser"), 1)
	h.w.Start()
	h.run()

	h.act(cand, "fundraiser", cand)
	h.w.Update(timing.AttackDelay)

	assert.Equal(t, 110, h.wallet.money)
}

func TestTurnOrder_SpeedDescending(t *testing.T) {
	h := newHarness(t, testutil.Document(), "hallway", passing(nil))
	a := h.ally("aide")
	b := h.ally("aide")
	c := h.ally("aide")
	d := h.ally("aide")
	a.Speed, b.Speed, c.Speed, d.Speed = 3, 9, 6, 6
	h.monster("intern", 1)
	h.w.Start()

	for i := 0; i < 4; i++ {
		h.run()
		require.True(t, h.w.AwaitingInput())
		h.w.EndTurn()
	}
	assert.Equal(t, []*character.Combatant{b, c, d, a}, h.listener.turns)
}

func TestDrainKillDuringTick_EndsTurn(t *testing.T) {
	calls := 0
	h := newHarness(t, testutil.Document(), "hallway", passing(&calls))
	h.ally("candidate")
	intern := h.monster("intern", 1)
	drained, ok := h.tables.Effect("drained")
	require.True(t, ok)
	intern.SetVotes(2)
	h.w.Effects().Add(intern, drained, 2)
	h.w.Start()
	h.run()

	h.w.EndTurn()
	h.run()

	assert.True(t, intern.Dead)
	assert.Zero(t, calls)
	assert.Equal(t, combat.Won, h.w.Result())
}

func TestEndTurn_WinAndLose(t *testing.T) {
	t.Run("won", func(t *testing.T) {
		h := newHarness(t, testutil.Document(), "hallway", passing(nil))
		h.ally("candidate")
		m := h.monster("intern", 1)
		h.w.Start()
		h.run()
		m.SetVotes(0)
		h.w.EndTurn()
		assert.Equal(t, combat.Won, h.w.Result())
	})
	t.Run("lost", func(t *testing.T) {
		h := newHarness(t, testutil.Document(), "hallway", passing(nil))
		c := h.ally("candidate")
		h.monster("intern", 1)
		h.w.Start()
		h.run()
		c.SetVotes(0)
		h.w.EndTurn()
		assert.Equal(t, combat.Lost, h.w.Result())
		assert.Equal(t, []combat.Result{combat.Lost}, h.listener.results)
	})
}

func TestSchedule_SecondContinuationPanics(t *testing.T) {
	h := newHarness(t, testutil.Document(), "hallway", passing(nil))
	cand := h.ally("candidate")
	m := h.monster("intern", 1)
	h.w.Start()
	h.run()

	h.w.Act(cand, h.attack("jab"), []*character.Combatant{m})
	assert.Panics(t, func() { h.w.Act(cand, h.attack("jab"), []*character.Combatant{m}) })
}

func TestAct_OutOfTurnPanics(t *testing.T) {
	h := newHarness(t, testutil.Document(), "hallway", passing(nil))
	cand := h.ally("candidate")
	m := h.monster("intern", 1)
	h.w.Start()
	h.run()
	assert.Panics(t, func() { h.w.Act(m, h.attack("jab"), []*character.Combatant{cand}) })
}

func TestSummon_FillsEmptyAndDeadSlots(t *testing.T) {
	var h *harness
	decider := deciderFunc(func(w *combat.World, c *character.Combatant) (combat.Decision, bool) {
		return combat.Decision{Attack: h.attack("call_interns"), Targets: []*character.Combatant{c}}, true
	})
	h = newHarness(t, testutil.Document(), "hallway", decider)
	h.ally("candidate")
	caller := h.monster("intern", 1)
	fallen := h.monster("intern", 1)
	fallen.SetVotes(0)
	h.w.Start()
	h.run()
	h.w.EndTurn()
	h.run()

	require.True(t, h.w.AwaitingInput())
	monsters := h.w.Board().Combatants(targeting.SideMonster)
	assert.Len(t, monsters, 3)
	for _, m := range monsters {
		assert.False(t, m.Dead)
	}
	assert.Nil(t, h.w.Board().SlotOf(fallen))
	assert.Len(t, h.w.Order(), 5)
	assert.Equal(t, 1, caller.Spin)
}

func TestReset_ClearsEffectsAndRaisesDead(t *testing.T) {
	h := newHarness(t, testutil.Document(), "hallway", passing(nil))
	cand := h.ally("candidate")
	aide := h.ally("aide")
	m := h.monster("intern", 1)
	h.w.Start()
	h.run()
	shamed, _ := h.tables.Effect("shamed")
	h.w.Effects().Add(cand, shamed, 2)
	aide.SetVotes(0)
	m.SetVotes(0)
	h.w.EndTurn()
	require.Equal(t, combat.Won, h.w.Result())

	h.w.Reset()
	assert.Equal(t, 0, cand.Effects.Len())
	assert.False(t, aide.Dead)
	assert.Equal(t, aide.MaxVotes/2, aide.Votes)
	assert.Empty(t, h.w.Floaters())
}

func TestView_ReflectsBoard(t *testing.T) {
	h := newHarness(t, testutil.Document(), "hallway", passing(nil))
	cand := h.ally("candidate")
	m := h.monster("intern", 1)
	h.w.Start()
	h.run()
	h.act(cand, "jab", m)

	v := h.w.View()
	assert.Equal(t, "Candidate", v.Current)
	assert.Equal(t, "Jab", v.ActiveAttack)
	require.Len(t, v.Slots, 8)
	var targeted int
	for _, s := range v.Slots {
		if s.Targeted {
			targeted++
			assert.Equal(t, "Intern", s.Name)
		}
	}
	assert.Equal(t, 1, targeted)
}

func TestFinish_Logged(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := newHarnessWithLogger(t, testutil.Document(), "hallway", passing(nil), zap.New(core))
	h.ally("candidate")
	m := h.monster("intern", 1)
	h.w.Start()
	h.run()
	m.SetVotes(0)
	h.w.EndTurn()

	entries := logs.FilterMessage("encounter finished").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "won", entries[0].ContextMap()["result"])
}

func TestAwardSpin_CarriesRemainder(t *testing.T) {
	tables := testutil.Tables(t)
	c := character.NewAI(tables.Variants("aide")[0], 1, nil)
	c.Wit, c.MaxSpin, c.Spin = 0, 10, 0

	combat.AwardSpin(c, 2)
	assert.Equal(t, 0, c.Spin)
	assert.Equal(t, 2, c.SpinCarry)

	combat.AwardSpin(c, 3)
	assert.Equal(t, 1, c.Spin)
	assert.Equal(t, 0, c.SpinCarry)
}

func TestApplyDamage_Clamps(t *testing.T) {
	h := newHarness(t, testutil.Document(), "hallway", passing(nil))
	c := h.ally("candidate")

	h.w.ApplyDamage(c, 5)
	h.w.ApplyDamage(c, -1000)
	assert.Equal(t, c.MaxVotes, c.Votes)

	h.w.ApplyDamage(c, c.MaxVotes+1)
	assert.Zero(t, c.Votes)
	assert.True(t, c.Dead)

	h.w.ApplyDamage(c, -10)
	assert.True(t, c.Dead, "healing never raises the dead")
}

func TestProperty_VotesInvariant(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		h := newHarness(t, testutil.Document(), "hallway", passing(nil))
		c := h.ally("candidate")
		for _, d := range rapid.SliceOf(rapid.IntRange(-100, 100)).Draw(rt, "damage") {
			h.w.ApplyDamage(c, d)
			if c.Votes < 0 || c.Votes > c.MaxVotes {
				rt.Fatalf("votes %d outside [0,%d]", c.Votes, c.MaxVotes)
			}
			if (c.Votes == 0) != c.Dead {
				rt.Fatalf("votes %d with dead=%v", c.Votes, c.Dead)
			}
		}
	})
}

func TestProperty_SortBySpeedStable(t *testing.T) {
	tables := testutil.Tables(t)
	tpl := tables.Variants("aide")[0]
	rapid.Check(t, func(rt *rapid.T) {
		speeds := rapid.SliceOfN(rapid.IntRange(0, 5), 1, 8).Draw(rt, "speeds")
		cs := make([]*character.Combatant, len(speeds))
		pos := make(map[*character.Combatant]int, len(speeds))
		for i, s := range speeds {
			cs[i] = character.NewAI(tpl, 1, nil)
			cs[i].Speed = s
			pos[cs[i]] = i
		}
		combat.SortBySpeed(cs)
		for i := 1; i < len(cs); i++ {
			if cs[i-1].Speed < cs[i].Speed {
				rt.Fatalf("not descending at %d", i)
			}
			if cs[i-1].Speed == cs[i].Speed && pos[cs[i-1]] > pos[cs[i]] {
				rt.Fatalf("tie reordered at %d", i)
			}
		}
	})
}

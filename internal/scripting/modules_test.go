package scripting_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/goodnight/internal/game/dice"
	"github.com/cory-johannsen/goodnight/internal/game/script"
	"github.com/cory-johannsen/goodnight/internal/scripting"
)

// runScript loads a single file registering trigger "t" and returns its
// actions.
func runScript(t *testing.T, mgr *scripting.Manager, luaSrc string) []script.Action {
	t.Helper()
	dir := writeTempLua(t, "test.lua", luaSrc)
	require.NoError(t, mgr.Load(dir, 0))
	s, ok := mgr.Script("t")
	require.True(t, ok)
	return s.Actions
}

func TestEngineLog_AllLevels(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)
	roller := dice.NewLoggedRoller(dice.NewCryptoSource(), zap.NewNop())
	mgr := scripting.NewManager(roller, logger)
	defer mgr.Close()

	runScript(t, mgr, `
		engine.script("t", function()
			engine.log.debug("d")
			engine.log.info("i")
			engine.log.warn("w")
			engine.log.error("e")
			return {}
		end)
	`)

	levels := map[string]bool{}
	for _, e := range logs.FilterField(zap.String("source", "lua")).All() {
		levels[e.Level.String()] = true
	}
	assert.True(t, levels["debug"], "expected debug log")
	assert.True(t, levels["info"], "expected info log")
	assert.True(t, levels["warn"], "expected warn log")
	assert.True(t, levels["error"], "expected error log")
}

func TestEngineRandom_UsesRoller(t *testing.T) {
	mgr, _ := newTestManager(t)
	actions := runScript(t, mgr, `
		local lines = { "Vote early.", "Vote often." }
		engine.script("t", function()
			return { engine.message(lines[engine.random(#lines)]) }
		end)
	`)
	assert.Equal(t, "Vote early.", actions[0].Text)
}

func TestEngineRandom_RejectsNonPositive(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "test.lua", `
		engine.script("t", function() return { engine.message(tostring(engine.random(0))) } end)
	`)
	require.NoError(t, mgr.Load(dir, 0))
	_, ok := mgr.Script("t")
	assert.False(t, ok)
}

func TestEngineFlag_NilCallbackIsUnset(t *testing.T) {
	mgr, _ := newTestManager(t)
	actions := runScript(t, mgr, `
		engine.script("t", function()
			if engine.flag("anything") then return { engine.message("set") } end
			return { engine.message("unset") }
		end)
	`)
	assert.Equal(t, "unset", actions[0].Text)
}

func TestEngineActions_EveryConstructor(t *testing.T) {
	mgr, _ := newTestManager(t)
	actions := runScript(t, mgr, `
		engine.script("t", {
			engine.say("Donor", "Nice tie."),
			engine.message("A hush falls."),
			engine.encounter("lobby"),
			engine.begin_combat(),
			engine.give_money(5),
			engine.give_votes(10, "The crowd warms up."),
			engine.give_spin(3),
			engine.restore_votes(),
			engine.restore_spin(),
			engine.set_flag("won"),
			engine.unset_flag("lost"),
			engine.add_ally("aide", 2, "An aide joins you."),
			engine.remove_ally("aide"),
			engine.learn_attack("leak"),
		})
	`)
	want := []script.Action{
		{Kind: script.KindSay, Speaker: "Donor", Text: "Nice tie."},
		{Kind: script.KindMessage, Text: "A hush falls."},
		{Kind: script.KindEncounter, Name: "lobby"},
		{Kind: script.KindBeginCombat},
		{Kind: script.KindGiveMoney, Amount: 5},
		{Kind: script.KindGiveVotes, Amount: 10, Text: "The crowd warms up."},
		{Kind: script.KindGiveSpin, Amount: 3},
		{Kind: script.KindRestoreVotes},
		{Kind: script.KindRestoreSpin},
		{Kind: script.KindSetFlag, Name: "won"},
		{Kind: script.KindUnsetFlag, Name: "lost"},
		{Kind: script.KindAddAlly, Name: "aide", Level: 2, Text: "An aide joins you."},
		{Kind: script.KindRemoveAlly, Name: "aide"},
		{Kind: script.KindLearnAttack, Attack: "leak"},
	}
	assert.Equal(t, want, actions)
}

func TestProperty_GiveMoneyCarriesAmount(t *testing.T) {
	mgr, _ := newTestManager(t)
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(-1000, 1000).Draw(rt, "amount")
		actions := runScript(t, mgr, fmt.Sprintf(`engine.script("t", { engine.give_money(%d) })`, n))
		if actions[0].Amount != n {
			rt.Fatalf("amount %d, want %d", actions[0].Amount, n)
		}
	})
}

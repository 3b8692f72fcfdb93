package scripting_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/goodnight/internal/game/dice"
	"github.com/cory-johannsen/goodnight/internal/game/script"
	"github.com/cory-johannsen/goodnight/internal/scripting"
)

func newTestManager(t testing.TB) (*scripting.Manager, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)
	roller := dice.NewLoggedRoller(dice.NewSequenceSource(0), logger)
	mgr := scripting.NewManager(roller, logger)
	t.Cleanup(mgr.Close)
	return mgr, logs
}

func writeTempLua(t testing.TB, filename, src string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, filename), []byte(src), 0644))
	return dir
}

func hasLevel(logs *observer.ObservedLogs, level zapcore.Level) bool {
	for _, e := range logs.All() {
		if e.Level == level {
			return true
		}
	}
	return false
}

func TestManager_Load_StaticScript(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "hallway.lua", `
		engine.script("hallway", {
			engine.say("Intern", "Got a minute?"),
			engine.begin_combat(),
			engine.give_money(20, "You found $20."),
			engine.set_flag("hallway_cleared"),
		})
	`)
	require.NoError(t, mgr.Load(dir, 0))

	s, ok := mgr.Script("hallway")
	require.True(t, ok)
	assert.Equal(t, "hallway", s.Trigger)
	assert.Equal(t, []script.Action{
		{Kind: script.KindSay, Speaker: "Intern", Text: "Got a minute?"},
		{Kind: script.KindBeginCombat},
		{Kind: script.KindGiveMoney, Amount: 20, Text: "You found $20."},
		{Kind: script.KindSetFlag, Name: "hallway_cleared"},
	}, s.Actions)
	assert.Equal(t, []string{"hallway"}, mgr.Triggers())
}

func TestManager_Load_RawTables(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "raw.lua", `
		engine.script("raw", {
			{kind = "add_ally", name = "aide", level = 2},
			{kind = "learn_attack", attack = "leak", ally = "aide"},
		})
	`)
	require.NoError(t, mgr.Load(dir, 0))
	s, ok := mgr.Script("raw")
	require.True(t, ok)
	require.Len(t, s.Actions, 2)
	assert.Equal(t, script.Action{Kind: script.KindAddAlly, Name: "aide", Level: 2}, s.Actions[0])
	assert.Equal(t, script.Action{Kind: script.KindLearnAttack, Attack: "leak", Ally: "aide"}, s.Actions[1])
}

func TestManager_FunctionScript_ReadsFlags(t *testing.T) {
	mgr, _ := newTestManager(t)
	flags := map[string]bool{}
	mgr.Flag = func(name string) bool { return flags[name] }
	dir := writeTempLua(t, "lobby.lua", `
		engine.script("lobby", function(trigger)
			if engine.flag("endorsed") then
				return { engine.message("The lobbyist waves you through.") }
			end
			return { engine.say("Lobbyist", "Not so fast."), engine.begin_combat() }
		end)
	`)
	require.NoError(t, mgr.Load(dir, 0))

	s, ok := mgr.Script("lobby")
	require.True(t, ok)
	assert.Len(t, s.Actions, 2)

	flags["endorsed"] = true
	s, ok = mgr.Script("lobby")
	require.True(t, ok)
	require.Len(t, s.Actions, 1)
	assert.Equal(t, script.KindMessage, s.Actions[0].Kind)
}

func TestManager_Script_Unknown(t *testing.T) {
	mgr, _ := newTestManager(t)
	_, ok := mgr.Script("nowhere")
	assert.False(t, ok)
}

func TestManager_Script_RuntimeError_WarnLog(t *testing.T) {
	mgr, logs := newTestManager(t)
	dir := writeTempLua(t, "bad.lua", `
		engine.script("bad", function() error("intentional error") end)
		engine.script("spin", function() while true do end end)
		engine.script("shape", function() return 42 end)
	`)
	require.NoError(t, mgr.Load(dir, 500))
	for _, trigger := range []string{"bad", "spin", "shape"} {
		_, ok := mgr.Script(trigger)
		assert.False(t, ok, trigger)
	}
	assert.True(t, hasLevel(logs, zap.WarnLevel), "expected Warn log for Lua runtime error")
}

func TestManager_Load_MalformedActionFails(t *testing.T) {
	mgr, _ := newTestManager(t)
	for name, src := range map[string]string{
		"unknown kind": `engine.script("x", { {kind = "teleport"} })`,
		"missing text": `engine.script("x", { engine.say("Intern") })`,
		"not a table":  `engine.script("x", { "say" })`,
		"bad body":     `engine.script("x", 7)`,
		"syntax":       `this is not valid lua @@@@`,
	} {
		dir := writeTempLua(t, "x.lua", src)
		assert.Error(t, mgr.Load(dir, 0), name)
	}
}

func TestManager_Load_FailureKeepsPreviousScripts(t *testing.T) {
	mgr, _ := newTestManager(t)
	good := writeTempLua(t, "a.lua", `engine.script("a", { engine.message("hi") })`)
	require.NoError(t, mgr.Load(good, 0))
	bad := writeTempLua(t, "b.lua", `engine.script("b", { {kind = "nope"} })`)
	require.Error(t, mgr.Load(bad, 0))
	_, ok := mgr.Script("a")
	assert.True(t, ok)
}

func TestManager_Load_MissingDir(t *testing.T) {
	mgr, _ := newTestManager(t)
	assert.Error(t, mgr.Load(filepath.Join(t.TempDir(), "absent"), 0))
}

func TestManager_Load_MultipleFiles_OrderedByName(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.lua"), []byte(`greeting = "first"`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.lua"), []byte(`
		engine.script("greet", { engine.message(greeting) })
	`), 0644))
	require.NoError(t, mgr.Load(dir, 0))
	s, ok := mgr.Script("greet")
	require.True(t, ok)
	assert.Equal(t, "first", s.Actions[0].Text)
}

func TestProperty_ScriptMissingTriggerNeverPanics(t *testing.T) {
	mgr, _ := newTestManager(t)
	rapid.Check(t, func(rt *rapid.T) {
		trigger := rapid.StringMatching(`[a-z]{1,10}`).Draw(rt, "trigger")
		if _, ok := mgr.Script(trigger); ok {
			rt.Fatalf("unexpected script for %q", trigger)
		}
	})
}

func TestManager_ConcurrentScript_NoRace(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "conc.lua", `
		engine.script("conc", function(trigger) return { engine.message(trigger) } end)
	`)
	require.NoError(t, mgr.Load(dir, 0))

	const goroutines = 10
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				s, ok := mgr.Script("conc")
				assert.True(t, ok)
				assert.Equal(t, "conc", s.Actions[0].Text)
			}
		}()
	}
	wg.Wait()
}

func TestNewManager_PanicsOnNilRoller(t *testing.T) {
	assert.Panics(t, func() {
		scripting.NewManager(nil, zap.NewNop())
	})
}

func TestNewManager_PanicsOnNilLogger(t *testing.T) {
	roller := dice.NewLoggedRoller(dice.NewCryptoSource(), zap.NewNop())
	assert.Panics(t, func() {
		scripting.NewManager(roller, nil)
	})
}

func TestManager_Close_ReleasesScripts(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "a.lua", `engine.script("a", { engine.message("hi") })`)
	require.NoError(t, mgr.Load(dir, 0))
	mgr.Close()
	_, ok := mgr.Script("a")
	assert.False(t, ok)
	assert.Empty(t, mgr.Triggers())
}

func TestManager_Load_ShippedScripts(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.Load(filepath.Join("..", "..", "content", "scripts"), 100000))
	assert.ElementsMatch(t, []string{"hallway", "lobby", "debate_night"}, mgr.Triggers())

	s, ok := mgr.Script("lobby")
	require.True(t, ok)
	var kinds []script.Kind
	for _, a := range s.Actions {
		kinds = append(kinds, a.Kind)
	}
	assert.Equal(t, []script.Kind{
		script.KindSay, script.KindBeginCombat, script.KindAddAlly, script.KindSetFlag, script.KindEncounter,
	}, kinds)

	s, ok = mgr.Script("debate_night")
	require.True(t, ok)
	require.Len(t, s.Actions, 4)
	assert.Equal(t, "Moderator", s.Actions[0].Speaker)
	assert.Equal(t, 250, s.Actions[2].Amount)
}

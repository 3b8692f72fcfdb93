package scripting

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/goodnight/internal/game/dice"
	"github.com/cory-johannsen/goodnight/internal/game/script"
)

// RegisterModules defines the engine global in L. Scripts registered through
// engine.script land in scripts.
//
// Precondition: L must be from NewSandboxedState; scripts must be non-nil.
// Postcondition: engine global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState, scripts map[string]lua.LValue) {
	engine := L.NewTable()
	L.SetGlobal("engine", engine)

	L.SetField(engine, "script", L.NewFunction(func(L *lua.LState) int {
		trigger := L.CheckString(1)
		body := L.CheckAny(2)
		if body.Type() != lua.LTTable && body.Type() != lua.LTFunction {
			L.ArgError(2, "expected action table or function")
			return 0
		}
		scripts[trigger] = body
		return 0
	}))

	L.SetField(engine, "flag", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		if m.Flag == nil {
			L.Push(lua.LFalse)
			return 1
		}
		L.Push(lua.LBool(m.Flag(name)))
		return 1
	}))

	L.SetField(engine, "random", L.NewFunction(func(L *lua.LState) int {
		n := L.CheckInt(1)
		if n < 1 {
			L.ArgError(1, "expected a positive bound")
			return 0
		}
		L.Push(lua.LNumber(m.roller.Range(dice.KindChoice, 1, n)))
		return 1
	}))

	registerActions(L, engine)
	m.registerLog(L, engine)
}

// registerActions adds one constructor per action kind. Each returns the
// action as a table in the shape toAction reads.
func registerActions(L *lua.LState, engine *lua.LTable) {
	action := func(kind script.Kind, fields ...string) *lua.LFunction {
		return L.NewFunction(func(L *lua.LState) int {
			t := L.NewTable()
			t.RawSetString("kind", lua.LString(kind.String()))
			for i, f := range fields {
				if v := L.Get(i + 1); v != lua.LNil {
					t.RawSetString(f, v)
				}
			}
			L.Push(t)
			return 1
		})
	}
	L.SetField(engine, "say", action(script.KindSay, "speaker", "text"))
	L.SetField(engine, "message", action(script.KindMessage, "text"))
	L.SetField(engine, "encounter", action(script.KindEncounter, "name"))
	L.SetField(engine, "begin_combat", action(script.KindBeginCombat))
	L.SetField(engine, "give_money", action(script.KindGiveMoney, "amount", "text"))
	L.SetField(engine, "give_votes", action(script.KindGiveVotes, "amount", "text"))
	L.SetField(engine, "give_spin", action(script.KindGiveSpin, "amount", "text"))
	L.SetField(engine, "restore_votes", action(script.KindRestoreVotes, "text"))
	L.SetField(engine, "restore_spin", action(script.KindRestoreSpin, "text"))
	L.SetField(engine, "set_flag", action(script.KindSetFlag, "name"))
	L.SetField(engine, "unset_flag", action(script.KindUnsetFlag, "name"))
	L.SetField(engine, "add_ally", action(script.KindAddAlly, "name", "level", "text"))
	L.SetField(engine, "remove_ally", action(script.KindRemoveAlly, "name", "text"))
	L.SetField(engine, "learn_attack", action(script.KindLearnAttack, "attack", "ally", "text"))
}

func (m *Manager) registerLog(L *lua.LState, engine *lua.LTable) {
	log := L.NewTable()
	levels := map[string]func(string, ...zap.Field){
		"debug": m.logger.Debug,
		"info":  m.logger.Info,
		"warn":  m.logger.Warn,
		"error": m.logger.Error,
	}
	for name, fn := range levels {
		fn := fn
		L.SetField(log, name, L.NewFunction(func(L *lua.LState) int {
			fn(L.CheckString(1), zap.String("source", "lua"))
			return 0
		}))
	}
	L.SetField(engine, "log", log)
}

// toScript converts a Lua action list.
//
// Postcondition: Returns an error naming the first malformed action.
func toScript(trigger string, list *lua.LTable) (script.Script, error) {
	s := script.Script{Trigger: trigger}
	n := list.Len()
	for i := 1; i <= n; i++ {
		t, ok := list.RawGetInt(i).(*lua.LTable)
		if !ok {
			return script.Script{}, fmt.Errorf("script %q: action %d is not a table", trigger, i)
		}
		a, err := toAction(t)
		if err != nil {
			return script.Script{}, fmt.Errorf("script %q: action %d: %w", trigger, i, err)
		}
		s.Actions = append(s.Actions, a)
	}
	return s, nil
}

func toAction(t *lua.LTable) (script.Action, error) {
	kind, err := script.ParseKind(lua.LVAsString(t.RawGetString("kind")))
	if err != nil {
		return script.Action{}, err
	}
	a := script.Action{
		Kind:    kind,
		Speaker: lua.LVAsString(t.RawGetString("speaker")),
		Text:    lua.LVAsString(t.RawGetString("text")),
		Amount:  int(lua.LVAsNumber(t.RawGetString("amount"))),
		Name:    lua.LVAsString(t.RawGetString("name")),
		Level:   int(lua.LVAsNumber(t.RawGetString("level"))),
		Ally:    lua.LVAsString(t.RawGetString("ally")),
		Attack:  lua.LVAsString(t.RawGetString("attack")),
	}
	switch kind {
	case script.KindSay, script.KindMessage:
		if a.Text == "" {
			return script.Action{}, fmt.Errorf("%s needs text", kind)
		}
	case script.KindEncounter, script.KindSetFlag, script.KindUnsetFlag, script.KindAddAlly, script.KindRemoveAlly:
		if a.Name == "" {
			return script.Action{}, fmt.Errorf("%s needs a name", kind)
		}
	case script.KindLearnAttack:
		if a.Attack == "" {
			return script.Action{}, fmt.Errorf("%s needs an attack", kind)
		}
	}
	return a, nil
}

package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/goodnight/internal/game/dice"
	"github.com/cory-johannsen/goodnight/internal/game/script"
)

// Manager owns one sandboxed LState holding every trigger script and
// implements script.Source over it.
//
// Manager is safe for concurrent use; calls into the LState are serialized.
type Manager struct {
	mu        sync.Mutex
	state     *lua.LState
	scripts   map[string]lua.LValue
	instLimit int
	roller    *dice.Roller
	logger    *zap.Logger

	// Flag answers engine.flag. Injected after construction; nil reports
	// every flag unset.
	Flag func(name string) bool
}

// NewManager creates a Manager with no scripts loaded.
//
// Precondition: roller and logger must be non-nil.
// Postcondition: Returns a non-nil Manager.
func NewManager(roller *dice.Roller, logger *zap.Logger) *Manager {
	if roller == nil {
		panic("scripting: NewManager requires a roller")
	}
	if logger == nil {
		panic("scripting: NewManager requires a logger")
	}
	return &Manager{
		scripts: make(map[string]lua.LValue),
		roller:  roller,
		logger:  logger,
	}
}

// Load creates a fresh VM, registers the engine module, then executes every
// *.lua file in scriptDir in lexicographic order. Static action lists are
// validated immediately. On success the new VM replaces the old one.
//
// Precondition: scriptDir must be a readable directory.
// Postcondition: On error the previously loaded scripts stay in place.
func (m *Manager) Load(scriptDir string, instLimit int) error {
	L := NewSandboxedState(instLimit)
	scripts := make(map[string]lua.LValue)
	m.RegisterModules(L, scripts)

	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		L.Close()
		return fmt.Errorf("scripting: reading script dir %q: %w", scriptDir, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	for _, path := range luaFiles {
		budget := Arm(L, instLimit)
		err := budget.Wrap(L.DoFile(path))
		budget.Release()
		if err != nil {
			L.Close()
			return fmt.Errorf("scripting: loading %q: %w", path, err)
		}
	}
	for trigger, body := range scripts {
		if t, ok := body.(*lua.LTable); ok {
			if _, err := toScript(trigger, t); err != nil {
				L.Close()
				return fmt.Errorf("scripting: %w", err)
			}
		}
	}

	m.mu.Lock()
	old := m.state
	m.state = L
	m.scripts = scripts
	m.instLimit = instLimit
	m.mu.Unlock()
	if old != nil {
		old.Close()
	}
	m.logger.Info("trigger scripts loaded",
		zap.String("dir", scriptDir),
		zap.Int("files", len(luaFiles)),
		zap.Int("scripts", len(scripts)),
	)
	return nil
}

// Triggers returns the registered trigger ids in order.
func (m *Manager) Triggers() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.scripts))
	for id := range m.scripts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Script returns the script bound to trigger. Scripts registered as
// functions are called with the trigger id and must return an action list.
// Lua runtime errors and malformed results are logged at Warn level and
// reported as no script.
//
// Postcondition: ok is false when trigger has no usable script.
func (m *Manager) Script(trigger string) (script.Script, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	body, ok := m.scripts[trigger]
	if !ok {
		m.logger.Debug("no trigger script", zap.String("trigger", trigger))
		return script.Script{}, false
	}

	list, ok := body.(*lua.LTable)
	if fn, isFn := body.(*lua.LFunction); isFn {
		var err error
		list, err = m.call(fn, trigger)
		if err != nil {
			m.logger.Warn("scripting: Lua runtime error",
				zap.String("trigger", trigger),
				zap.Error(err),
			)
			return script.Script{}, false
		}
		ok = true
	}
	if !ok {
		return script.Script{}, false
	}

	s, err := toScript(trigger, list)
	if err != nil {
		m.logger.Warn("scripting: malformed script",
			zap.String("trigger", trigger),
			zap.Error(err),
		)
		return script.Script{}, false
	}
	return s, true
}

// call runs fn under a fresh instruction budget.
//
// Precondition: m.mu is held.
func (m *Manager) call(fn *lua.LFunction, trigger string) (*lua.LTable, error) {
	L := m.state
	budget := Arm(L, m.instLimit)
	defer budget.Release()
	err := L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, lua.LString(trigger))
	if err != nil {
		return nil, budget.Wrap(err)
	}
	m.logger.Debug("trigger script ran",
		zap.String("trigger", trigger),
		zap.Int("instructions", budget.Used()),
	)
	ret := L.Get(-1)
	L.Pop(1)
	list, ok := ret.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("script function returned %s, want table", ret.Type())
	}
	return list, nil
}

// Close releases the VM.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != nil {
		m.state.Close()
		m.state = nil
	}
	m.scripts = make(map[string]lua.LValue)
}

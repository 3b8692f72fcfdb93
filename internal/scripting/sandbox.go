// Package scripting provides a sandboxed GopherLua environment for trigger
// scripts. Scripts register the dialog and party actions that frame an
// encounter; the Manager turns them into script.Script values.
package scripting

import (
	"context"
	"errors"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
)

// DefaultInstructionLimit bounds each script call when no limit is configured.
const DefaultInstructionLimit = 100_000

// ErrBudgetExhausted reports a script stopped for running too long.
var ErrBudgetExhausted = errors.New("instruction budget exhausted")

// safeLibs are the only standard libraries a script can reach.
var safeLibs = []lua.LGFunction{lua.OpenBase, lua.OpenTable, lua.OpenString, lua.OpenMath}

// unsafeGlobals are stripped after OpenBase installs them.
var unsafeGlobals = []string{"dofile", "loadfile", "load", "loadstring", "collectgarbage", "require", "module"}

// Budget is an opcode allowance for one script call. GopherLua asks the
// state's context for Done once per opcode, so each ask spends one unit.
type Budget struct {
	context.Context
	cancel context.CancelFunc
	limit  int64
	left   atomic.Int64
}

// Done spends one opcode and cancels the budget when none are left.
func (b *Budget) Done() <-chan struct{} {
	if b.left.Add(-1) <= 0 {
		b.cancel()
	}
	return b.Context.Done()
}

// Used reports how many opcodes have run under the budget.
func (b *Budget) Used() int {
	return int(min(b.limit, b.limit-b.left.Load()))
}

// Exhausted reports whether the budget ran out.
func (b *Budget) Exhausted() bool { return b.left.Load() <= 0 }

// Release ends the budget early.
func (b *Budget) Release() { b.cancel() }

// Wrap joins err with ErrBudgetExhausted when the budget ran out.
func (b *Budget) Wrap(err error) error {
	if err != nil && b.Exhausted() {
		return errors.Join(ErrBudgetExhausted, err)
	}
	return err
}

// NewSandboxedState returns an LState carrying only the base, table, string
// and math libraries, without the loaders that reach the filesystem, and
// with a first budget of instLimit opcodes.
//
// Precondition: instLimit >= 0; 0 uses DefaultInstructionLimit.
// Postcondition: The caller owns the LState and must Close it.
func NewSandboxedState(instLimit int) *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, open := range safeLibs {
		open(L)
	}
	for _, name := range unsafeGlobals {
		L.SetGlobal(name, lua.LNil)
	}
	Arm(L, instLimit)
	return L
}

// Arm replaces L's budget with a fresh one of instLimit opcodes.
//
// Precondition: instLimit >= 0; 0 uses DefaultInstructionLimit.
func Arm(L *lua.LState, instLimit int) *Budget {
	if instLimit <= 0 {
		instLimit = DefaultInstructionLimit
	}
	ctx, cancel := context.WithCancel(context.Background())
	b := &Budget{Context: ctx, cancel: cancel, limit: int64(instLimit)}
	b.left.Store(int64(instLimit))
	L.SetContext(b)
	return b
}

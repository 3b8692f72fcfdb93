// Package combat implements the encounter state machine: turn scheduling,
// effect ticking, action resolution and win/lose detection.
//
// A World is single-threaded and frame driven. The driver calls Update once
// per frame; every pause in the state machine is the single pending
// continuation a World may hold.
package combat

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/goodnight/internal/config"
	"github.com/cory-johannsen/goodnight/internal/game/character"
	"github.com/cory-johannsen/goodnight/internal/game/dice"
	"github.com/cory-johannsen/goodnight/internal/game/effect"
	"github.com/cory-johannsen/goodnight/internal/game/ruleset"
	"github.com/cory-johannsen/goodnight/internal/game/targeting"
)

// Result is the outcome state of a World.
type Result int

const (
	InProgress Result = iota
	Won
	Lost
)

// String returns a human-readable result label.
func (r Result) String() string {
	switch r {
	case InProgress:
		return "in progress"
	case Won:
		return "won"
	case Lost:
		return "lost"
	default:
		return "unknown"
	}
}

// Party is the wallet money-based attacks and effects draw on.
type Party interface {
	Money() int
	AdjustMoney(delta int)
}

// Listener is told when the World needs a player decision or has finished.
type Listener interface {
	// PlayerTurn is called when c, a non-AI combatant, must choose an action.
	PlayerTurn(w *World, c *character.Combatant)
	// Finished is called once when the World reaches Won or Lost.
	Finished(w *World, result Result)
}

// Options configures a World.
type Options struct {
	Tables    *ruleset.Tables
	Encounter *ruleset.Encounter
	Roller    *dice.Roller
	Logger    *zap.Logger
	Timing    config.CombatConfig
	Party     Party
	Decider   Decider
	Listener  Listener
}

// World is one running encounter.
type World struct {
	tables    *ruleset.Tables
	encounter *ruleset.Encounter
	roller    *dice.Roller
	logger    *zap.Logger
	timing    config.CombatConfig
	party     Party
	decider   Decider
	listener  Listener
	effects   *effect.Engine

	board   *targeting.Board
	aiItems *character.Inventory
	order   []*character.Combatant
	current int
	round   int
	result  Result

	floaters []*Floater
	pending  *continuation

	// turn state
	missTurn      bool
	tickQueue     []*character.ActiveEffect
	tickIndex     int
	awaitingInput bool

	// action state
	active        *ruleset.Attack
	activeSource  *character.Combatant
	activeTargets []*character.Combatant
	summons       []summonRequest

	// MassiveDamage multiplies damage dealt by non-AI combatants by 100.
	// Diagnostic only.
	MassiveDamage bool
}

// New creates a World for opts.Encounter with an empty board.
//
// Precondition: Tables, Encounter, Roller, Logger, Party and Listener must be
// non-nil. Decider may be nil only if no AI combatant joins.
func New(opts Options) *World {
	tile := max(opts.Timing.TileSize, 1)
	w := &World{
		tables:    opts.Tables,
		encounter: opts.Encounter,
		roller:    opts.Roller,
		logger:    opts.Logger,
		timing:    opts.Timing,
		party:     opts.Party,
		decider:   opts.Decider,
		listener:  opts.Listener,
		board:     targeting.NewBoard(tile),
		aiItems:   character.NewInventory(opts.Encounter.Items...),
		current:   -1,
	}
	w.effects = effect.NewEngine(worldSink{w}, opts.Roller, opts.Logger)
	return w
}

// Join places c on its side of the board and adds it to the turn order.
//
// Postcondition: Returns an error if c's side has no empty slot.
func (w *World) Join(c *character.Combatant) error {
	if w.board.Place(c) == nil {
		return fmt.Errorf("no empty %s slot for %s", targeting.SideOf(c), c.Name)
	}
	w.order = append(w.order, c)
	return nil
}

// Start begins the first round.
//
// Precondition: the World has not started and at least one living combatant joined.
func (w *World) Start() {
	if w.current != -1 || w.round != 0 {
		panic("combat: Start called twice")
	}
	w.logger.Info("encounter started",
		zap.String("encounter", w.encounter.ID),
		zap.Int("combatants", len(w.order)),
	)
	w.beginRound()
}

// Update advances floaters and the pending continuation by dt, firing the
// continuation when its time runs out.
func (w *World) Update(dt time.Duration) {
	w.ageFloaters(dt)
	if w.pending == nil {
		return
	}
	w.pending.remaining -= dt
	if w.pending.remaining > 0 {
		return
	}
	step := w.pending.step
	w.pending = nil
	w.fire(step)
}

// Board returns the battlefield.
func (w *World) Board() *targeting.Board { return w.board }

// Tables returns the data tables the World was built with.
func (w *World) Tables() *ruleset.Tables { return w.tables }

// Encounter returns the encounter being fought.
func (w *World) Encounter() *ruleset.Encounter { return w.encounter }

// Effects returns the World's effect engine.
func (w *World) Effects() *effect.Engine { return w.effects }

// AIItems returns the monsters' shared briefcase.
func (w *World) AIItems() *character.Inventory { return w.aiItems }

// Party returns the wallet the World charges.
func (w *World) Party() Party { return w.party }

// Order returns a copy of the turn order.
func (w *World) Order() []*character.Combatant {
	return append([]*character.Combatant(nil), w.order...)
}

// Current returns the combatant whose turn it is, or nil before the first round.
func (w *World) Current() *character.Combatant {
	if w.current < 0 || w.current >= len(w.order) {
		return nil
	}
	return w.order[w.current]
}

// Round returns the number of rounds begun.
func (w *World) Round() int { return w.round }

// Result returns the World's outcome state.
func (w *World) Result() Result { return w.result }

// Pending reports whether a continuation is outstanding.
func (w *World) Pending() bool { return w.pending != nil }

// AwaitingInput reports whether the World waits for a player action.
func (w *World) AwaitingInput() bool { return w.awaitingInput }

// ActiveAttack returns the attack being announced or resolved, or nil.
func (w *World) ActiveAttack() *ruleset.Attack { return w.active }

// ActiveTargets returns the targets of the active attack.
func (w *World) ActiveTargets() []*character.Combatant {
	return append([]*character.Combatant(nil), w.activeTargets...)
}

// Reset clears every combatant's effects and raises the dead at half votes.
// It runs after a won encounter.
func (w *World) Reset() {
	for _, c := range w.order {
		w.effects.RemoveAll(c)
		if c.Dead {
			c.Dead = false
			c.Votes = max(1, c.MaxVotes/2)
		}
	}
	w.floaters = nil
}

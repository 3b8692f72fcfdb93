// Package encounter drives one encounter from its opening dialog through
// combat to the reward and level-up screens, or to the game-over menu.
package encounter

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/goodnight/internal/config"
	"github.com/cory-johannsen/goodnight/internal/game/character"
	"github.com/cory-johannsen/goodnight/internal/game/combat"
	"github.com/cory-johannsen/goodnight/internal/game/dice"
	"github.com/cory-johannsen/goodnight/internal/game/menu"
	"github.com/cory-johannsen/goodnight/internal/game/ruleset"
	"github.com/cory-johannsen/goodnight/internal/game/script"
	"github.com/cory-johannsen/goodnight/internal/game/session"
	"github.com/cory-johannsen/goodnight/internal/game/targeting"
	"github.com/cory-johannsen/goodnight/internal/observability"
)

// Phase is the screen the controller is showing.
type Phase int

const (
	// PhaseIdle is the state before Start.
	PhaseIdle Phase = iota
	// PhaseDialog shows a script line and waits for a key.
	PhaseDialog
	// PhaseCombat runs the World.
	PhaseCombat
	// PhaseVictory shows the reward summary and waits for a key.
	PhaseVictory
	// PhaseLevelUp shows the skill-point menu for one ally.
	PhaseLevelUp
	// PhaseGameOver shows the defeat menu.
	PhaseGameOver
	// PhaseDone follows a won encounter once every screen is dismissed.
	PhaseDone
	// PhaseQuit follows choosing Quit on the defeat menu.
	PhaseQuit
)

var phaseNames = []string{"idle", "dialog", "combat", "victory", "level up", "game over", "done", "quit"}

func (p Phase) String() string {
	if int(p) < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// Options configures a Controller.
type Options struct {
	Tables  *ruleset.Tables
	Session *session.GameSession
	// Scripts resolves encounter triggers. May be nil.
	Scripts script.Source
	Roller  *dice.Roller
	Logger  *zap.Logger
	Timing  config.CombatConfig
	// Decider chooses monster actions, and player actions under Autopilot.
	Decider combat.Decider
	// Autopilot lets Decider play the party.
	Autopilot bool
	// MassiveDamage is passed to every World.
	MassiveDamage bool
}

// Controller runs encounters for one GameSession. It is driven by a single
// goroutine through Update and HandleKey and is not safe for concurrent use.
type Controller struct {
	opts   Options
	logger *zap.Logger

	encounter *ruleset.Encounter
	world     *combat.World
	phase     Phase
	restarts  int

	cursor   *script.Cursor
	dialog   *script.Action
	postWin  bool
	menus    menu.Stack
	turn     *menu.Combat
	levelUps []*session.LevelUp
	levelUp  *session.LevelUp
	queued   []string
}

// New creates a Controller.
//
// Precondition: Tables, Session, Roller, Logger and Decider must be non-nil.
func New(opts Options) *Controller {
	return &Controller{opts: opts, logger: opts.Logger}
}

// Start begins encounter id: it records the party's votes, fills the board
// and plays the encounter's trigger script up to the point combat begins.
// Without a script the first round starts immediately.
//
// Postcondition: Returns an error if id is unknown or a monster cannot be
// instantiated.
func (c *Controller) Start(id string) (*combat.World, error) {
	enc, ok := c.opts.Tables.Encounter(id)
	if !ok {
		return nil, fmt.Errorf("unknown encounter %q", id)
	}
	c.encounter = enc
	c.restarts = 0
	c.opts.Session.SaveVotes()
	return c.begin()
}

// begin builds a fresh World for the current encounter and plays its script.
func (c *Controller) begin() (*combat.World, error) {
	enc := c.encounter
	s := c.opts.Session
	w := combat.New(combat.Options{
		Tables:    c.opts.Tables,
		Encounter: enc,
		Roller:    c.opts.Roller,
		Logger:    observability.ForEncounter(c.logger, enc.ID, c.restarts),
		Timing:    c.opts.Timing,
		Party:     s,
		Decider:   c.opts.Decider,
		Listener:  c,
	})
	w.MassiveDamage = c.opts.MassiveDamage
	for _, ally := range s.Allies() {
		ally.SpinCarry = 0
		if err := w.Join(ally); err != nil {
			return nil, err
		}
	}
	for i, spec := range enc.Monsters {
		m, err := character.Spawn(c.opts.Tables, c.opts.Roller, spec.TemplateID, spec.Level, true, w.AIItems())
		if err != nil {
			return nil, fmt.Errorf("encounter %q monster %d: %w", enc.ID, i, err)
		}
		if err := w.Join(m); err != nil {
			return nil, fmt.Errorf("encounter %q monster %d: %w", enc.ID, i, err)
		}
	}

	c.world = w
	c.menus.Clear()
	c.turn = nil
	c.dialog = nil
	c.postWin = false
	c.levelUps, c.levelUp = nil, nil
	c.cursor = nil
	c.logger.Info("encounter loaded",
		zap.String("encounter", enc.ID),
		zap.Int("restarts", c.restarts),
	)

	if c.opts.Scripts != nil {
		if sc, ok := c.opts.Scripts.Script(enc.Trigger); ok {
			c.cursor = script.NewCursor(sc)
		}
	}
	c.advance()
	return w, nil
}

// Restart replays the current encounter after a defeat with fresh monsters.
// Allies are revived: on the first retry with max(max/2, saved) votes and no
// spin, on later retries with full votes and half spin.
//
// Precondition: Start has been called.
func (c *Controller) Restart() (*combat.World, error) {
	if c.encounter == nil {
		return nil, fmt.Errorf("restart before any encounter started")
	}
	c.restarts++
	for _, ally := range c.opts.Session.Allies() {
		if c.world != nil {
			c.world.Effects().RemoveAll(ally)
		}
		ally.Dead = false
		if c.restarts > 1 {
			ally.SetVotes(ally.MaxVotes)
			ally.SetSpin(ally.MaxSpin / 2)
		} else {
			ally.SetVotes(max(ally.MaxVotes/2, ally.SavedVotes))
			ally.SetSpin(0)
		}
	}
	c.logger.Info("encounter restarted",
		zap.String("encounter", c.encounter.ID),
		zap.Int("restarts", c.restarts),
	)
	return c.begin()
}

// advance runs script actions until one shows dialog or the script ends.
// Before the win a BeginCombat action or the end of the script starts the
// first round; after the win the end of the script starts the rewards.
func (c *Controller) advance() {
	for c.cursor != nil {
		a, ok := c.cursor.Next()
		if !ok {
			break
		}
		switch a.Kind {
		case script.KindBeginCombat:
			if !c.postWin {
				c.startCombat()
				return
			}
			continue
		case script.KindSay, script.KindMessage:
		case script.KindEncounter:
			c.queued = append(c.queued, a.Name)
		default:
			c.apply(a)
		}
		if a.Yields() {
			c.dialog = &a
			c.phase = PhaseDialog
			return
		}
	}
	c.cursor = nil
	if c.postWin {
		c.rewards()
		return
	}
	c.startCombat()
}

func (c *Controller) apply(a script.Action) {
	s := c.opts.Session
	if err := script.Apply(a, s, c.opts.Tables, c.opts.Roller); err != nil {
		c.logger.Warn("script action failed",
			zap.String("action", a.Kind.String()),
			zap.Error(err),
		)
		return
	}
	if a.Kind == script.KindAddAlly && !c.postWin && c.world.Round() == 0 {
		allies := s.Allies()
		if err := c.world.Join(allies[len(allies)-1]); err != nil {
			c.logger.Warn("new ally could not join", zap.Error(err))
		}
	}
}

func (c *Controller) startCombat() {
	c.phase = PhaseCombat
	c.dialog = nil
	c.world.Start()
}

// PlayerTurn opens the turn menu for ally, unless the party is on autopilot.
func (c *Controller) PlayerTurn(w *combat.World, ally *character.Combatant) {
	if c.opts.Autopilot {
		return
	}
	c.turn = &menu.Combat{Stack: &c.menus, World: w, Source: ally, Choose: func(atk *ruleset.Attack, targets []*character.Combatant) {
		c.turn = nil
		w.Act(ally, atk, targets)
	}}
	c.turn.Main()
}

// Finished continues the script after a win, or opens the defeat menu.
func (c *Controller) Finished(w *combat.World, result combat.Result) {
	c.menus.Clear()
	c.turn = nil
	switch result {
	case combat.Won:
		c.logger.Info("encounter won", zap.String("encounter", c.encounter.ID), zap.Int("rounds", w.Round()))
		c.postWin = true
		c.advance()
	case combat.Lost:
		c.logger.Info("encounter lost", zap.String("encounter", c.encounter.ID), zap.Int("rounds", w.Round()))
		c.phase = PhaseGameOver
		c.menus.Push(menu.GameOver(c.restart, c.quit))
	}
}

func (c *Controller) restart() {
	if _, err := c.Restart(); err != nil {
		c.logger.Error("restarting encounter", zap.Error(err))
	}
}

func (c *Controller) quit() {
	c.menus.Clear()
	c.phase = PhaseQuit
}

// rewards pays out the encounter and shows the victory summary.
func (c *Controller) rewards() {
	enc := c.encounter
	c.levelUps = c.opts.Session.GrantRewards(enc.XP, enc.Money, enc.Drops)
	c.phase = PhaseVictory
	c.logger.Info("rewards granted",
		zap.String("encounter", enc.ID),
		zap.Int("xp", enc.XP),
		zap.Int("money", enc.Money),
		zap.Int("level_ups", len(c.levelUps)),
	)
}

// nextLevelUp shows the next pending level-up, or finishes the encounter.
func (c *Controller) nextLevelUp() {
	c.menus.Clear()
	if len(c.levelUps) == 0 {
		c.levelUp = nil
		c.world.Reset()
		c.phase = PhaseDone
		c.logger.Info("encounter complete", zap.String("encounter", c.encounter.ID))
		return
	}
	c.levelUp = c.levelUps[0]
	c.levelUps = c.levelUps[1:]
	c.levelUp.Begin()
	c.phase = PhaseLevelUp
	c.menus.Push(menu.SkillPoints(c.levelUp, c.nextLevelUp))
}

// Update advances the World by dt. Under autopilot it also plays the
// party's turns.
func (c *Controller) Update(dt time.Duration) {
	if c.world == nil {
		return
	}
	c.world.Update(dt)
	if c.phase == PhaseCombat && c.opts.Autopilot && c.world.AwaitingInput() {
		ally := c.world.Current()
		d, ok := c.opts.Decider.Decide(c.world, ally)
		if !ok {
			c.world.EndTurn()
			return
		}
		c.world.Act(ally, d.Attack, d.Targets)
	}
}

// HandleKey routes k to the dialog, the victory screen or the open menu.
// Keys are ignored while the World has a pending continuation.
func (c *Controller) HandleKey(k menu.Key) {
	if c.world != nil && c.world.Pending() {
		return
	}
	switch c.phase {
	case PhaseDialog:
		c.dialog = nil
		c.advance()
	case PhaseVictory:
		c.nextLevelUp()
	default:
		c.menus.HandleKey(k)
	}
}

// Phase returns the current screen.
func (c *Controller) Phase() Phase { return c.phase }

// World returns the running World, or nil before Start.
func (c *Controller) World() *combat.World { return c.world }

// Encounter returns the current encounter, or nil before Start.
func (c *Controller) Encounter() *ruleset.Encounter { return c.encounter }

// Restarts returns how often the current encounter has been restarted.
func (c *Controller) Restarts() int { return c.restarts }

// Dialog returns the script line being shown, or nil.
func (c *Controller) Dialog() *script.Action { return c.dialog }

// Menus returns the open menus, bottom first.
func (c *Controller) Menus() []*menu.Menu { return c.menus.Menus() }

// Targeted returns the slots the open target menu points at, or nil.
func (c *Controller) Targeted() []*targeting.Slot {
	if c.turn == nil {
		return nil
	}
	return c.turn.Targeted()
}

// LevelUp returns the level-up being allocated, or nil.
func (c *Controller) LevelUp() *session.LevelUp { return c.levelUp }

// Queued removes and returns the encounters scripts have queued.
func (c *Controller) Queued() []string {
	q := c.queued
	c.queued = nil
	return q
}

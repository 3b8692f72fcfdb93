// Package combatsim runs encounters in a fixed-timestep frame loop: it feeds
// keys to the encounter controller, advances it once per frame, prints the
// screen when it changes and chains the encounters scripts queue.
package combatsim

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/goodnight/internal/config"
	"github.com/cory-johannsen/goodnight/internal/frontend/console"
	"github.com/cory-johannsen/goodnight/internal/game/combat"
	"github.com/cory-johannsen/goodnight/internal/game/dice"
	"github.com/cory-johannsen/goodnight/internal/game/encounter"
	"github.com/cory-johannsen/goodnight/internal/game/menu"
	"github.com/cory-johannsen/goodnight/internal/game/ruleset"
	"github.com/cory-johannsen/goodnight/internal/game/script"
	"github.com/cory-johannsen/goodnight/internal/game/session"
	"github.com/cory-johannsen/goodnight/internal/scripting"
	"github.com/cory-johannsen/goodnight/internal/storage/postgres"
)

// clearScreen homes the cursor and clears the terminal.
const clearScreen = "\033[H\033[2J"

// Saves is the save store the driver writes finished encounters to.
type Saves interface {
	Put(ctx context.Context, slot string, snap session.Snapshot) (*postgres.Save, error)
	Latest(ctx context.Context, slot string) (*postgres.Save, error)
}

// Options configures a Driver.
type Options struct {
	Config  config.Config
	Logger  *zap.Logger
	Tables  *ruleset.Tables
	Scripts *scripting.Manager
	Session *session.GameSession
	Roller  *dice.Roller
	Decider combat.Decider
	// Saves may be nil.
	Saves Saves
	// Watcher may be nil.
	Watcher *ruleset.Watcher
	// Keys delivers player input. May be nil under Autopilot.
	Keys <-chan menu.Key
	Out  io.Writer
	// Encounter is the first encounter to run.
	Encounter string
	Autopilot bool
	// MassiveDamage multiplies party damage by 100.
	MassiveDamage bool
	Palette       console.Palette
	// Slot names the save slot.
	Slot string
}

// Driver plays encounters until the queue runs dry or the player quits. It
// implements server.Service.
type Driver struct {
	opts     Options
	logger   *zap.Logger
	tables   *ruleset.Tables
	session  *session.GameSession
	renderer console.Renderer
	ctl      *encounter.Controller

	// reloaded holds tables loaded by the watcher until the next encounter.
	reloaded *ruleset.Tables
	queue    []string

	stop     chan struct{}
	stopOnce sync.Once
	last     string
}

// NewDriver creates a Driver.
//
// Precondition: Logger, Tables, Session, Roller, Decider and Out must be
// non-nil; Config.Game.FrameRate must be >= 1.
func NewDriver(opts Options) *Driver {
	if opts.Slot == "" {
		opts.Slot = postgres.DefaultSlot
	}
	d := &Driver{
		opts:     opts,
		logger:   opts.Logger,
		tables:   opts.Tables,
		session:  opts.Session,
		renderer: console.Renderer{Palette: opts.Palette},
		stop:     make(chan struct{}),
	}
	if opts.Scripts != nil {
		opts.Scripts.Flag = func(name string) bool { return d.session.Flag(name) }
	}
	return d
}

// Start runs the frame loop until every queued encounter is done, the player
// quits or Stop is called.
//
// Postcondition: Returns an error only if an encounter cannot be started.
func (d *Driver) Start() error {
	if err := d.begin(d.opts.Encounter); err != nil {
		return err
	}
	dt := time.Second / time.Duration(d.opts.Config.Game.FrameRate)
	ticker := time.NewTicker(dt)
	defer ticker.Stop()

	var changes <-chan string
	if d.opts.Watcher != nil {
		changes = d.opts.Watcher.Events
	}
	d.render()
	for {
		select {
		case <-d.stop:
			return nil
		case k, ok := <-d.opts.Keys:
			if !ok {
				d.opts.Keys = nil
				continue
			}
			d.ctl.HandleKey(k)
		case path, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
			d.reload(path)
		case <-ticker.C:
			d.Frame(dt)
		}
		finished, err := d.advance()
		if err != nil {
			return err
		}
		d.render()
		if finished {
			return nil
		}
	}
}

// Stop ends the frame loop. It is safe to call more than once.
func (d *Driver) Stop() {
	d.stopOnce.Do(func() { close(d.stop) })
}

// Frame advances the controller by dt, pressing keys itself under Autopilot.
// Autopilot only answers a screen once it has been drawn.
func (d *Driver) Frame(dt time.Duration) {
	d.ctl.Update(dt)
	if !d.opts.Autopilot {
		return
	}
	k, ok := d.autoKey()
	if !ok || d.renderer.Render(d.ctl) != d.last {
		return
	}
	d.ctl.HandleKey(k)
}

// Controller returns the controller of the running encounter.
func (d *Driver) Controller() *encounter.Controller { return d.ctl }

// Session returns the game session, which a table reload replaces.
func (d *Driver) Session() *session.GameSession { return d.session }

// autoKey answers every non-combat screen: it dismisses dialog, spends skill
// points on the first skill and quits on defeat.
func (d *Driver) autoKey() (menu.Key, bool) {
	switch d.ctl.Phase() {
	case encounter.PhaseDialog, encounter.PhaseVictory:
		return menu.KeyConfirm, true
	case encounter.PhaseLevelUp:
		if d.ctl.LevelUp().Remaining() > 0 {
			return menu.KeyConfirm, true
		}
		return d.pick(-1)
	case encounter.PhaseGameOver:
		return d.pick(-1)
	}
	return menu.KeyNone, false
}

// pick moves the open menu's selection towards item i, where a negative i
// counts from the end, and confirms once it is there.
func (d *Driver) pick(i int) (menu.Key, bool) {
	menus := d.ctl.Menus()
	if len(menus) == 0 {
		return menu.KeyNone, false
	}
	top := menus[len(menus)-1]
	if i < 0 {
		i += len(top.Items)
	}
	if top.Selected() != i {
		return menu.KeyUp, true
	}
	return menu.KeyConfirm, true
}

// advance reacts to a finished encounter: it saves the party and starts the
// next queued encounter. finished reports that nothing is left to play.
func (d *Driver) advance() (finished bool, err error) {
	switch d.ctl.Phase() {
	case encounter.PhaseQuit:
		d.logger.Info("player quit", zap.String("encounter", d.ctl.Encounter().ID))
		return true, nil
	case encounter.PhaseDone:
		d.save()
		d.queue = append(d.queue, d.ctl.Queued()...)
		if len(d.queue) == 0 {
			return true, nil
		}
		next := d.queue[0]
		d.queue = d.queue[1:]
		return false, d.begin(next)
	}
	return false, nil
}

// begin starts encounter id, first swapping in reloaded tables.
func (d *Driver) begin(id string) error {
	if d.reloaded != nil {
		s, err := session.Restore(d.session.Snapshot(), d.reloaded)
		if err != nil {
			d.logger.Warn("keeping previous tables", zap.Error(err))
		} else {
			d.tables, d.session = d.reloaded, s
			d.logger.Info("content tables reloaded")
		}
		d.reloaded = nil
	}
	d.ctl = encounter.New(encounter.Options{
		Tables:        d.tables,
		Session:       d.session,
		Scripts:       d.scripts(),
		Roller:        d.opts.Roller,
		Logger:        d.logger,
		Timing:        d.opts.Config.Combat,
		Decider:       d.opts.Decider,
		Autopilot:     d.opts.Autopilot,
		MassiveDamage: d.opts.MassiveDamage,
	})
	if _, err := d.ctl.Start(id); err != nil {
		return fmt.Errorf("starting encounter: %w", err)
	}
	return nil
}

// scripts keeps a nil *Manager from becoming a non-nil script.Source.
func (d *Driver) scripts() script.Source {
	if d.opts.Scripts == nil {
		return nil
	}
	return d.opts.Scripts
}

// reload re-reads the file at path. Scripts swap in at once; tables wait for
// the next encounter so the running World keeps consistent records.
func (d *Driver) reload(path string) {
	content := d.opts.Config.Content
	if filepath.Ext(path) == ".lua" {
		if d.opts.Scripts == nil {
			return
		}
		if err := d.opts.Scripts.Load(content.ScriptsDir, content.InstructionLimit); err != nil {
			d.logger.Warn("script reload failed", zap.String("path", path), zap.Error(err))
		}
		return
	}
	tables, err := ruleset.Load(content.TablesDir)
	if err != nil {
		d.logger.Warn("table reload failed", zap.String("path", path), zap.Error(err))
		return
	}
	d.reloaded = tables
	d.logger.Info("content tables changed; applying at next encounter", zap.String("path", path))
}

func (d *Driver) save() {
	if d.opts.Saves == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	saved, err := d.opts.Saves.Put(ctx, d.opts.Slot, d.session.Snapshot())
	if err != nil {
		d.logger.Error("saving session", zap.Error(err))
		return
	}
	d.logger.Info("session saved", zap.String("slot", saved.Slot), zap.Stringer("id", saved.ID))
}

func (d *Driver) render() {
	out := d.renderer.Render(d.ctl)
	if out == d.last {
		return
	}
	d.last = out
	if d.opts.Palette != (console.Palette{}) {
		out = clearScreen + out
	}
	if _, err := io.WriteString(d.opts.Out, out+"\n"); err != nil && !errors.Is(err, io.ErrClosedPipe) {
		d.logger.Warn("writing frame", zap.Error(err))
	}
}

// Package script models the trigger scripts that frame encounters: dialog
// shown before and after a fight, the point where combat begins and the
// handful of party changes a script may make.
package script

import "fmt"

// Kind is the closed set of script actions.
type Kind int

const (
	KindUnknown Kind = iota
	// KindSay shows a line of dialog from a named speaker.
	KindSay
	// KindMessage shows a narration box.
	KindMessage
	// KindEncounter starts the named encounter.
	KindEncounter
	// KindBeginCombat starts the first round of the encounter the script
	// belongs to. Actions after it run once the encounter is won.
	KindBeginCombat
	KindGiveMoney
	KindGiveVotes
	KindGiveSpin
	KindRestoreVotes
	KindRestoreSpin
	KindSetFlag
	KindUnsetFlag
	KindAddAlly
	KindRemoveAlly
	KindLearnAttack
)

var kindNames = map[Kind]string{
	KindSay:          "say",
	KindMessage:      "message",
	KindEncounter:    "encounter",
	KindBeginCombat:  "begin_combat",
	KindGiveMoney:    "give_money",
	KindGiveVotes:    "give_votes",
	KindGiveSpin:     "give_spin",
	KindRestoreVotes: "restore_votes",
	KindRestoreSpin:  "restore_spin",
	KindSetFlag:      "set_flag",
	KindUnsetFlag:    "unset_flag",
	KindAddAlly:      "add_ally",
	KindRemoveAlly:   "remove_ally",
	KindLearnAttack:  "learn_attack",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "unknown"
}

// ParseKind returns the Kind named s.
func ParseKind(s string) (Kind, error) {
	for k, n := range kindNames {
		if n == s {
			return k, nil
		}
	}
	return KindUnknown, fmt.Errorf("unknown script action %q", s)
}

// Action is one script step. Which payload fields are meaningful depends on
// Kind.
type Action struct {
	Kind Kind
	// Speaker names the talker for KindSay.
	Speaker string
	// Text is dialog shown when the action runs. Party actions with text
	// show it as a message.
	Text string
	// Amount is the quantity for the give actions.
	Amount int
	// Name is the flag, encounter or template id the action refers to.
	Name string
	// Level is the new ally's level for KindAddAlly.
	Level int
	// Ally is the template id of the ally a KindLearnAttack teaches. Empty
	// means the player.
	Ally string
	// Attack is the attack id for KindLearnAttack.
	Attack string
}

// Yields reports whether the action shows dialog and waits for it to be
// dismissed.
func (a Action) Yields() bool {
	switch a.Kind {
	case KindSay, KindMessage:
		return true
	case KindEncounter, KindBeginCombat, KindSetFlag, KindUnsetFlag:
		return false
	default:
		return a.Text != ""
	}
}

// Script is the ordered action list bound to a trigger.
type Script struct {
	Trigger string
	Actions []Action
}

// Source resolves trigger ids to scripts.
type Source interface {
	// Script returns the script bound to trigger, if any.
	Script(trigger string) (Script, bool)
}

// Cursor walks a Script one action at a time.
type Cursor struct {
	script Script
	next   int
}

// NewCursor returns a Cursor at the start of s.
func NewCursor(s Script) *Cursor { return &Cursor{script: s} }

// Next returns the next action and advances.
//
// Postcondition: ok is false once the script is exhausted.
func (c *Cursor) Next() (a Action, ok bool) {
	if c.next >= len(c.script.Actions) {
		return Action{}, false
	}
	a = c.script.Actions[c.next]
	c.next++
	return a, true
}

// Done reports whether every action has been returned.
func (c *Cursor) Done() bool { return c.next >= len(c.script.Actions) }

// Trigger returns the trigger of the script being walked.
func (c *Cursor) Trigger() string { return c.script.Trigger }

package session

import (
	"github.com/cory-johannsen/goodnight/internal/game/character"
	"github.com/cory-johannsen/goodnight/internal/game/ruleset"
)

// Skill is a stat that skill points can raise.
type Skill int

const (
	SkillCunning Skill = iota
	SkillWit
	SkillCharisma
	SkillFlair
	SkillSpeed

	numSkills = iota
)

// Skills lists every Skill in menu order.
var Skills = []Skill{SkillCunning, SkillWit, SkillCharisma, SkillFlair, SkillSpeed}

func (s Skill) String() string {
	switch s {
	case SkillCunning:
		return "Cunning"
	case SkillWit:
		return "Wit"
	case SkillCharisma:
		return "Charisma"
	case SkillFlair:
		return "Flair"
	case SkillSpeed:
		return "Speed"
	default:
		return "unknown"
	}
}

// Value returns c's current value of s.
func (s Skill) Value(c *character.Combatant) int {
	switch s {
	case SkillCunning:
		return c.Cunning
	case SkillWit:
		return c.Wit
	case SkillCharisma:
		return c.Charisma
	case SkillFlair:
		return c.Flair
	default:
		return c.Speed
	}
}

// LevelUp is a pending level boundary crossing and its skill-point
// allocation.
type LevelUp struct {
	Ally *character.Combatant
	// XP is the reward share not yet added to Ally.
	XP int

	levels  ruleset.Levels
	started bool
	points  int
	added   [numSkills]int
}

// Begin adds the xp share and raises the ally to its new level. Max votes
// and max spin come from the level table row; skill points are that row's.
// Calling Begin again has no effect.
func (l *LevelUp) Begin() {
	if l.started {
		return
	}
	l.started = true
	c := l.Ally
	c.XP += l.XP
	c.Level = l.levels.ForXP(c.XP)
	if row, ok := l.levels.Row(c.Level); ok {
		c.MaxVotes = row.Votes
		c.MaxSpin = row.Spin
		c.SetVotes(c.Votes)
		c.SetSpin(c.Spin)
		l.points = row.SkillPoints
	}
}

// Remaining returns the unallocated skill points.
func (l *LevelUp) Remaining() int { return l.points }

// Added returns the points allocated to s so far.
func (l *LevelUp) Added(s Skill) int { return l.added[s] }

// CanAdjust reports whether delta may be applied to s: raising needs a free
// point and lowering needs a point allocated to s.
func (l *LevelUp) CanAdjust(s Skill, delta int) bool {
	switch {
	case delta > 0:
		return l.points >= delta
	case delta < 0:
		return l.added[s] >= -delta
	default:
		return false
	}
}

// Adjust moves delta points into (or back out of) s.
//
// Postcondition: Returns false and changes nothing when CanAdjust is false.
func (l *LevelUp) Adjust(s Skill, delta int) bool {
	if !l.CanAdjust(s, delta) {
		return false
	}
	l.added[s] += delta
	l.points -= delta
	return true
}

// Done reports whether every point has been allocated.
func (l *LevelUp) Done() bool { return l.started && l.points == 0 }

// Commit adds the allocated points to the ally's stats.
//
// Precondition: Done() is true.
func (l *LevelUp) Commit() {
	c := l.Ally
	c.Cunning += l.added[SkillCunning]
	c.Wit += l.added[SkillWit]
	c.Charisma += l.added[SkillCharisma]
	c.Flair += l.added[SkillFlair]
	c.Speed += l.added[SkillSpeed]
	l.added = [numSkills]int{}
}

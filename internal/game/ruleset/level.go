package ruleset

import "sort"

// Level is one row of the experience table.
type Level struct {
	Level       int `yaml:"level"`
	XP          int `yaml:"xp"`
	Votes       int `yaml:"votes"`
	Spin        int `yaml:"spin"`
	SkillPoints int `yaml:"skill_points"`
}

// Levels is the experience table ordered by Level ascending.
type Levels []Level

func (l Levels) sorted() Levels {
	out := append(Levels(nil), l...)
	sort.Slice(out, func(i, j int) bool { return out[i].Level < out[j].Level })
	return out
}

// ForXP returns the highest level whose XP threshold is <= xp. Below the
// first threshold it returns the first level.
//
// Precondition: len(l) > 0.
func (l Levels) ForXP(xp int) int {
	current := l[0].Level
	for _, row := range l {
		if row.XP > xp {
			break
		}
		current = row.Level
	}
	return current
}

// Row returns the table row for level.
func (l Levels) Row(level int) (Level, bool) {
	for _, row := range l {
		if row.Level == level {
			return row, true
		}
	}
	return Level{}, false
}

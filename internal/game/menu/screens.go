package menu

import (
	"fmt"

	"github.com/cory-johannsen/goodnight/internal/game/session"
)

// GameOver builds the defeat menu.
func GameOver(restart, quit func()) *Menu {
	return &Menu{
		Title: "You are defeated",
		Items: []*Item{
			{Label: "Restart this encounter", Description: "You failed this time, but next time the dice rolls may be in your favour", Enabled: true, Activate: restart},
			{Label: "Quit game", Description: "Exit the game", Enabled: true, Activate: quit},
		},
	}
}

var skillDescriptions = [...]string{
	session.SkillCunning:  "Effectiveness of standard attacks",
	session.SkillWit:      "Effectiveness of spin attacks",
	session.SkillCharisma: "Defense against opponent's attacks",
	session.SkillFlair:    "Chance of critical attack",
	session.SkillSpeed:    "Determines order in battle",
}

// SkillPoints builds the allocation menu for lu: one row per skill and a
// Done row. On a skill row Left removes a point and Right or Confirm adds
// one. Done is enabled only once every point is spent; it commits lu and
// calls done.
//
// Precondition: lu.Begin has run.
func SkillPoints(lu *session.LevelUp, done func()) *Menu {
	m := &Menu{Title: fmt.Sprintf("LEVEL UP %s!", lu.Ally.Name)}
	for _, s := range session.Skills {
		m.Items = append(m.Items, &Item{Description: skillDescriptions[s]})
	}
	doneItem := &Item{Label: "Done", Description: "Finish assigning skill points", Activate: func() {
		lu.Commit()
		done()
	}}
	m.Items = append(m.Items, doneItem)

	refresh := func() {
		for i, s := range session.Skills {
			it := m.Items[i]
			it.Label = fmt.Sprintf("< %s: %d +%d >", s, s.Value(lu.Ally), lu.Added(s))
			it.Enabled = lu.Added(s) > 0 || lu.Remaining() > 0
		}
		doneItem.Enabled = lu.Done()
	}
	refresh()

	m.keys = func(m *Menu, k Key) bool {
		if m.selected >= len(session.Skills) {
			return false
		}
		s := session.Skills[m.selected]
		switch k {
		case KeyLeft:
			lu.Adjust(s, -1)
		case KeyRight, KeyConfirm:
			lu.Adjust(s, 1)
		default:
			return false
		}
		refresh()
		return true
	}
	return m
}

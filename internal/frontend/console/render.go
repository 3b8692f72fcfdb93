package console

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/goodnight/internal/game/combat"
	"github.com/cory-johannsen/goodnight/internal/game/encounter"
	"github.com/cory-johannsen/goodnight/internal/game/menu"
	"github.com/cory-johannsen/goodnight/internal/game/targeting"
)

// Renderer formats a Controller's current screen.
type Renderer struct {
	Palette Palette
}

// Render returns the screen of ctl as text lines joined by "\n".
func (r Renderer) Render(ctl *encounter.Controller) string {
	var b strings.Builder
	p := r.Palette
	w := ctl.World()
	if w == nil {
		return ""
	}

	enc := ctl.Encounter()
	v := w.View()
	b.WriteString(paintf(p.Title, "== %s ==", enc.Name))
	if v.Round > 0 {
		fmt.Fprintf(&b, "  round %d", v.Round)
	}
	b.WriteString("\n")
	r.board(&b, v, ctl.Targeted())

	if v.ActiveAttack != "" {
		fmt.Fprintf(&b, "%s: %s\n", v.Current, paint(p.Title, v.ActiveAttack))
	}
	for _, f := range v.Floaters {
		b.WriteString(r.floater(f))
		b.WriteString("\n")
	}

	switch ctl.Phase() {
	case encounter.PhaseDialog:
		if d := ctl.Dialog(); d != nil {
			b.WriteString("\n")
			if d.Speaker != "" {
				b.WriteString(paintf(p.Title, "%s: ", d.Speaker))
			}
			b.WriteString(paint(p.Dialog, d.Text))
			b.WriteString("\n")
		}
	case encounter.PhaseVictory:
		b.WriteString("\n")
		b.WriteString(paint(p.Title, "Victory!"))
		fmt.Fprintf(&b, " +%d XP, +$%d\n", enc.XP, enc.Money)
		for _, d := range enc.Drops {
			fmt.Fprintf(&b, "  found %s x%d\n", d.Attack.Name, max(d.Quantity, 1))
		}
	}

	if menus := ctl.Menus(); len(menus) > 0 {
		b.WriteString("\n")
		r.menu(&b, menus[len(menus)-1])
	}
	return b.String()
}

func (r Renderer) board(b *strings.Builder, v combat.View, targeted []*targeting.Slot) {
	p := r.Palette
	marked := make(map[[2]int]bool, len(targeted))
	for _, s := range targeted {
		marked[[2]int{int(s.Side), s.Index}] = true
	}
	side := targeting.Side(-1)
	for _, s := range v.Slots {
		if !s.Occupied {
			continue
		}
		if s.Side != side {
			side = s.Side
			if side == targeting.SidePlayer {
				b.WriteString("PARTY\n")
			} else {
				b.WriteString("OPPONENTS\n")
			}
		}
		cursor := "  "
		switch {
		case marked[[2]int{int(s.Side), s.Index}] || s.Targeted:
			cursor = paint(p.Target, "> ")
		case s.Current:
			cursor = paint(p.Current, "* ")
		}
		color := p.Party
		if s.Side == targeting.SideMonster {
			color = p.Monster
		}
		if s.Dead {
			color = p.Dead
		}
		line := fmt.Sprintf("%-12s L%-2d votes %3d/%-3d spin %3d/%-3d", s.Name, s.Level, s.Votes, s.MaxVotes, s.Spin, s.MaxSpin)
		if s.Effects != "" {
			line += " [" + s.Effects + "]"
		}
		if s.Dead {
			line += " (out)"
		}
		b.WriteString(cursor)
		b.WriteString(paint(color, line))
		b.WriteString("\n")
	}
}

func (r Renderer) floater(f combat.Floater) string {
	p := r.Palette
	color := p.Status
	switch f.Kind {
	case combat.FloaterDamage:
		color = p.Damage
	case combat.FloaterHeal:
		color = p.Heal
	}
	name := ""
	if f.Target != nil {
		name = f.Target.Name
	}
	return fmt.Sprintf("  %s %s", name, paint(color, f.Text))
}

func (r Renderer) menu(b *strings.Builder, m *menu.Menu) {
	p := r.Palette
	b.WriteString(paint(p.Title, m.Title))
	b.WriteString("\n")
	for i, it := range m.Items {
		prefix := "  "
		color := ""
		if i == m.Selected() {
			prefix = "> "
			color = p.Selected
		}
		if !it.Enabled {
			color = p.Disabled
		}
		b.WriteString(prefix)
		b.WriteString(paint(color, it.Label))
		b.WriteString("\n")
	}
	if it := m.SelectedItem(); it != nil && it.Description != "" {
		b.WriteString(paint(p.Dialog, it.Description))
		b.WriteString("\n")
	}
}

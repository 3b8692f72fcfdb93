// Package menu implements the keyboard-driven menus of the combat screen:
// a stack of item lists, each navigated with abstract keys.
package menu

import (
	"fmt"
	"strings"
)

// Key is an abstract input key. Frontends map their own input onto it.
type Key int

const (
	KeyNone Key = iota
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyConfirm
	KeyCancel
)

var keyNames = []string{"none", "up", "down", "left", "right", "confirm", "cancel"}

func (k Key) String() string {
	if int(k) < 0 || int(k) >= len(keyNames) {
		return "unknown"
	}
	return keyNames[k]
}

// ParseKey maps a key name to a Key. "enter" and "esc" are accepted as
// aliases for confirm and cancel.
//
// Postcondition: Returns an error for unrecognized names.
func ParseKey(s string) (Key, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "w", "k":
		return KeyUp, nil
	case "down", "s", "j":
		return KeyDown, nil
	case "left", "a", "h":
		return KeyLeft, nil
	case "right", "d", "l":
		return KeyRight, nil
	case "confirm", "enter", "":
		return KeyConfirm, nil
	case "cancel", "esc", "escape", "q":
		return KeyCancel, nil
	}
	return KeyNone, fmt.Errorf("unknown key %q", s)
}

// Item is one menu entry.
type Item struct {
	Label       string
	Description string
	Enabled     bool
	// Activate runs when the item is chosen. May be nil.
	Activate func()
}

// handler lets a specialised menu take keys before the default handling.
// It reports whether it consumed k.
type handler func(m *Menu, k Key) bool

// Menu is a list of items with a wrapping selection.
type Menu struct {
	Title string
	Items []*Item
	// Dismissible menus are popped by Left or Cancel.
	Dismissible bool

	selected int
	stack    *Stack
	keys     handler
}

// New creates a dismissible menu.
func New(title string, items ...*Item) *Menu {
	return &Menu{Title: title, Items: items, Dismissible: true}
}

// Selected returns the index of the highlighted item.
func (m *Menu) Selected() int { return m.selected }

// SelectedItem returns the highlighted item, or nil for an empty menu.
func (m *Menu) SelectedItem() *Item {
	if len(m.Items) == 0 {
		return nil
	}
	return m.Items[m.selected]
}

// Move shifts the selection by delta, wrapping at either end.
func (m *Menu) Move(delta int) {
	n := len(m.Items)
	if n == 0 {
		return
	}
	m.selected = ((m.selected+delta)%n + n) % n
}

// HandleKey applies k: Up and Down move the selection, Left and Cancel
// dismiss when allowed, Right and Confirm activate an enabled item.
func (m *Menu) HandleKey(k Key) {
	if m.keys != nil && m.keys(m, k) {
		return
	}
	switch k {
	case KeyUp:
		m.Move(-1)
	case KeyDown:
		m.Move(1)
	case KeyLeft, KeyCancel:
		m.dismiss()
	case KeyRight, KeyConfirm:
		if it := m.SelectedItem(); it != nil && it.Enabled && it.Activate != nil {
			it.Activate()
		}
	}
}

func (m *Menu) dismiss() {
	if m.Dismissible && m.stack != nil {
		m.stack.Remove(m)
	}
}

// Stack holds the open menus. Only the top menu receives keys.
type Stack struct {
	menus []*Menu
}

// Push opens m on top of the stack.
func (s *Stack) Push(m *Menu) {
	m.stack = s
	s.menus = append(s.menus, m)
}

// Pop closes the top menu.
func (s *Stack) Pop() {
	if n := len(s.menus); n > 0 {
		s.menus[n-1].stack = nil
		s.menus = s.menus[:n-1]
	}
}

// Remove closes m and every menu opened above it.
func (s *Stack) Remove(m *Menu) {
	for i, x := range s.menus {
		if x == m {
			for _, y := range s.menus[i:] {
				y.stack = nil
			}
			s.menus = s.menus[:i]
			return
		}
	}
}

// Clear closes every menu.
func (s *Stack) Clear() {
	for len(s.menus) > 0 {
		s.Pop()
	}
}

// Top returns the menu receiving keys, or nil.
func (s *Stack) Top() *Menu {
	if len(s.menus) == 0 {
		return nil
	}
	return s.menus[len(s.menus)-1]
}

// Menus returns the open menus, bottom first.
func (s *Stack) Menus() []*Menu { return append([]*Menu(nil), s.menus...) }

// Len returns the number of open menus.
func (s *Stack) Len() int { return len(s.menus) }

// HandleKey sends k to the top menu.
//
// Postcondition: Returns false when no menu is open.
func (s *Stack) HandleKey(k Key) bool {
	top := s.Top()
	if top == nil {
		return false
	}
	top.HandleKey(k)
	return true
}

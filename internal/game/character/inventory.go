package character

import "github.com/cory-johannsen/goodnight/internal/game/ruleset"

// ItemStack is a quantity of one consumable item attack.
type ItemStack struct {
	Attack   *ruleset.Attack
	Quantity int
}

// Inventory is an ordered briefcase of item stacks. The party's briefcase is
// shared by every ally; each encounter's briefcase is shared by its monsters.
type Inventory struct {
	stacks []ItemStack
}

// NewInventory builds an inventory from item specs.
//
// Precondition: every spec has a resolved Attack.
func NewInventory(specs ...ruleset.ItemSpec) *Inventory {
	inv := &Inventory{}
	for _, s := range specs {
		inv.Add(s.Attack, s.Quantity)
	}
	return inv
}

// Add increments the stack for a by qty, appending a new stack if none exists.
//
// Precondition: a != nil.
func (inv *Inventory) Add(a *ruleset.Attack, qty int) {
	if qty <= 0 {
		return
	}
	for i := range inv.stacks {
		if inv.stacks[i].Attack == a {
			inv.stacks[i].Quantity += qty
			return
		}
	}
	inv.stacks = append(inv.stacks, ItemStack{Attack: a, Quantity: qty})
}

// Remove consumes one a, dropping the stack when it reaches zero.
//
// Postcondition: Returns false if a was not held.
func (inv *Inventory) Remove(a *ruleset.Attack) bool {
	for i := range inv.stacks {
		if inv.stacks[i].Attack != a {
			continue
		}
		inv.stacks[i].Quantity--
		if inv.stacks[i].Quantity <= 0 {
			inv.stacks = append(inv.stacks[:i], inv.stacks[i+1:]...)
		}
		return true
	}
	return false
}

// Quantity returns how many a are held.
func (inv *Inventory) Quantity(a *ruleset.Attack) int {
	for _, s := range inv.stacks {
		if s.Attack == a {
			return s.Quantity
		}
	}
	return 0
}

// Stacks returns a copy of the stacks in acquisition order.
func (inv *Inventory) Stacks() []ItemStack {
	return append([]ItemStack(nil), inv.stacks...)
}

package combat

import (
	"sort"

	"github.com/cory-johannsen/goodnight/internal/game/character"
)

// SortBySpeed orders combatants by speed descending. Ties keep their
// existing relative order.
//
// Postcondition: combatants[i].Speed >= combatants[i+1].Speed for all i.
func SortBySpeed(combatants []*character.Combatant) {
	sort.SliceStable(combatants, func(i, j int) bool {
		return combatants[i].Speed > combatants[j].Speed
	})
}

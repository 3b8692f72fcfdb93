// Package dice provides the randomness abstraction for the combat engine.
//
// Every random decision in combat (damage, crits, effect durations, AI choice,
// template variants) is routed through a Source so tests can fix sequences.
package dice

import "fmt"

// Source is the randomness provider.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// Kind names the purpose of a roll in the audit log.
type Kind string

const (
	KindDamage   Kind = "damage"
	KindCrit     Kind = "crit"
	KindRounds   Kind = "rounds"
	KindWeighted Kind = "weighted"
	KindChoice   Kind = "choice"
	KindPercent  Kind = "percent"
)

// Roll is the audit record of one bounded draw.
//
// Invariant: Lo <= Value <= Hi.
type Roll struct {
	Kind  Kind
	Lo    int
	Hi    int
	Value int
}

// String returns a human-readable audit string in the format:
//
//	"damage [2..5] = 3"
func (r Roll) String() string {
	return fmt.Sprintf("%s [%d..%d] = %d", r.Kind, r.Lo, r.Hi, r.Value)
}

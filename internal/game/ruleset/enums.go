package ruleset

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// TargetType selects which slots an attack may target.
type TargetType int

const (
	TargetNone TargetType = iota
	TargetSelf
	TargetAllEnemy
	TargetAllFriendly
	TargetDeadFriendly
	TargetAll
)

var targetTypeNames = []string{"none", "self", "all_enemy", "all_friendly", "dead_friendly", "all"}

func (t TargetType) String() string { return enumName(targetTypeNames, int(t)) }

// UnmarshalYAML decodes a target type from its snake_case name.
func (t *TargetType) UnmarshalYAML(n *yaml.Node) error {
	v, err := decodeEnum(n, "target_type", targetTypeNames)
	*t = TargetType(v)
	return err
}

// MarshalYAML encodes the target type as its name.
func (t TargetType) MarshalYAML() (interface{}, error) { return t.String(), nil }

// Stat is the combatant attribute an attack's damage is based on.
type Stat int

const (
	StatNone Stat = iota
	StatCunning
	StatWit
	// StatMoney bases damage on cunning and costs the encounter's bribe.
	StatMoney
)

var statNames = []string{"none", "cunning", "wit", "money"}

func (s Stat) String() string { return enumName(statNames, int(s)) }

// UnmarshalYAML decodes a stat from its name.
func (s *Stat) UnmarshalYAML(n *yaml.Node) error {
	v, err := decodeEnum(n, "stat", statNames)
	*s = Stat(v)
	return err
}

// MarshalYAML encodes the stat as its name.
func (s Stat) MarshalYAML() (interface{}, error) { return s.String(), nil }

// Function is what an effect does to its attribute.
type Function int

const (
	FunctionUnset Function = iota
	// FunctionAdd adds Value on activation and removes it on expiry.
	FunctionAdd
	// FunctionAddPermanent adds Value on activation; expiry leaves it.
	FunctionAddPermanent
	// FunctionReduce subtracts Value on activation and restores it on expiry.
	FunctionReduce
	// FunctionDrain subtracts Value on every tick.
	FunctionDrain
	// FunctionRevive raises a dead combatant with Value*MaxVotes votes.
	FunctionRevive
	// FunctionCallFriends summons Value combatants onto the caster's side.
	FunctionCallFriends
	// FunctionMissTurn makes the holder skip turns while active.
	FunctionMissTurn
)

var functionNames = []string{"", "add", "add_permanent", "reduce", "drain", "revive", "call_friends", "miss_turn"}

func (f Function) String() string { return enumName(functionNames, int(f)) }

// UnmarshalYAML decodes a function from its name.
func (f *Function) UnmarshalYAML(n *yaml.Node) error {
	v, err := decodeEnum(n, "function", functionNames)
	if err == nil && v == int(FunctionUnset) {
		err = fmt.Errorf("line %d: function must not be empty", n.Line)
	}
	*f = Function(v)
	return err
}

// MarshalYAML encodes the function as its name.
func (f Function) MarshalYAML() (interface{}, error) { return f.String(), nil }

// Attribute is the combatant (or party) quantity an effect changes.
type Attribute int

const (
	AttrNone Attribute = iota
	AttrSpin
	AttrVotes
	AttrWit
	AttrCunning
	AttrCharisma
	AttrFlair
	AttrResistance
	AttrMoney
)

var attributeNames = []string{"none", "spin", "votes", "wit", "cunning", "charisma", "flair", "resistance", "money"}

func (a Attribute) String() string { return enumName(attributeNames, int(a)) }

// UnmarshalYAML decodes an attribute from its name.
func (a *Attribute) UnmarshalYAML(n *yaml.Node) error {
	v, err := decodeEnum(n, "attribute", attributeNames)
	*a = Attribute(v)
	return err
}

// MarshalYAML encodes the attribute as its name.
func (a Attribute) MarshalYAML() (interface{}, error) { return a.String(), nil }

func enumName(names []string, i int) string {
	if i < 0 || i >= len(names) {
		return fmt.Sprintf("unknown(%d)", i)
	}
	return names[i]
}

func decodeEnum(n *yaml.Node, field string, names []string) (int, error) {
	var s string
	if err := n.Decode(&s); err != nil {
		return 0, err
	}
	for i, name := range names {
		if name == s {
			return i, nil
		}
	}
	return 0, fmt.Errorf("line %d: unknown %s %q", n.Line, field, s)
}

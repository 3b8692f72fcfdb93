package ruleset

// SummonSpec names what a CallFriends effect brings onto the field.
type SummonSpec struct {
	TemplateID string `yaml:"template"`
	Level      int    `yaml:"level"`
}

// Effect is the static definition of a timed modifier.
//
// Invariant after Load: 0 <= RoundsMin <= RoundsMax; Function != FunctionUnset;
// Summon != nil iff Function == FunctionCallFriends.
type Effect struct {
	ID            string    `yaml:"id"`
	Abbrev        string    `yaml:"abbrev"`
	Description   string    `yaml:"description"`
	ApplyToSource bool      `yaml:"apply_to_source"`
	Function      Function  `yaml:"function"`
	Attribute     Attribute `yaml:"attribute"`
	Value         float64   `yaml:"value"`
	RoundsMin     int       `yaml:"rounds_min"`
	RoundsMax     int       `yaml:"rounds_max"`
	// CriticalFail marks the sentinel effect granted to a source whose
	// damaging attack produced no net damage.
	CriticalFail bool        `yaml:"critical_fail"`
	Summon       *SummonSpec `yaml:"summon"`
}

// Reversible reports whether expiry undoes the activation change.
func (e *Effect) Reversible() bool {
	return e.Function == FunctionAdd || e.Function == FunctionReduce
}

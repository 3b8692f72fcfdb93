package ruleset

// Growth is a stat that scales linearly with level.
type Growth struct {
	Base     int `yaml:"base"`
	PerLevel int `yaml:"per_level"`
}

// At returns the stat at level.
//
// Precondition: level >= 1.
func (g Growth) At(level int) int {
	return g.Base + (level-1)*g.PerLevel
}

// Template is one variant of a character archetype. Several variants may
// share an ID; instantiation picks one at random.
type Template struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Votes       Growth   `yaml:"votes"`
	Spin        Growth   `yaml:"spin"`
	Speed       Growth   `yaml:"speed"`
	Wit         Growth   `yaml:"wit"`
	Cunning     Growth   `yaml:"cunning"`
	Charisma    Growth   `yaml:"charisma"`
	Flair       Growth   `yaml:"flair"`
	Resistance  float64  `yaml:"resistance"`
	AttackGroup string   `yaml:"attack_group"`
	AttackIDs   []string `yaml:"attacks"`
	Immunities  []string `yaml:"immunities"`
	Resistances []string `yaml:"resistances"`
	Weaknesses  []string `yaml:"weaknesses"`

	// Resolved by Load.
	StandardAttacks []*Attack       `yaml:"-"`
	SpinAttacks     []*Attack       `yaml:"-"`
	immune          map[string]bool
	resists         map[string]bool
	weak            map[string]bool
}

// IsImmune reports whether the template ignores attack entirely.
func (t *Template) IsImmune(a *Attack) bool { return t.immune[a.ID] }

// Resists reports whether attack deals reduced damage to the template.
func (t *Template) Resists(a *Attack) bool { return t.resists[a.ID] }

// IsWeakTo reports whether attack deals increased damage to the template.
func (t *Template) IsWeakTo(a *Attack) bool { return t.weak[a.ID] }

// AttackGroup is a named, reusable attack list.
type AttackGroup struct {
	ID        string   `yaml:"id"`
	AttackIDs []string `yaml:"attacks"`
}

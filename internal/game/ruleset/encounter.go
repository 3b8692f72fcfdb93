package ruleset

// MonsterSpec places one monster in an encounter.
type MonsterSpec struct {
	TemplateID string `yaml:"template"`
	Level      int    `yaml:"level"`
}

// ItemSpec is a quantity of an item attack.
type ItemSpec struct {
	AttackID string `yaml:"attack"`
	Quantity int    `yaml:"quantity"`

	Attack *Attack `yaml:"-"`
}

// Encounter is the static definition of one battle and its rewards.
type Encounter struct {
	ID        string        `yaml:"id"`
	Name      string        `yaml:"name"`
	Monsters  []MonsterSpec `yaml:"monsters"`
	Items     []ItemSpec    `yaml:"items"`
	BribeCost int           `yaml:"bribe_cost"`
	XP        int           `yaml:"xp"`
	Money     int           `yaml:"money"`
	Drops     []ItemSpec    `yaml:"drops"`
	// Trigger is the script bound to the encounter; it defaults to ID.
	Trigger string `yaml:"trigger"`
}

// MaxMonsters is the number of monster slots on the board.
const MaxMonsters = 4

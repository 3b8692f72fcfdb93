// Package config provides Viper-based configuration loading for the combat simulator.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings for the save store.
type DatabaseConfig struct {
	// Enabled turns the save store on. When false no connection is attempted.
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
	// Output is "stderr", "stdout" or a file path. The console renderer
	// draws on stdout, so interactive runs log elsewhere.
	Output string `mapstructure:"output"`
}

// CombatConfig holds the pacing of the combat state machine. Every pause is a
// timed suspension point the renderer uses to show floaters.
type CombatConfig struct {
	// AttackDelay separates an attack announcement from its resolution.
	AttackDelay time.Duration `mapstructure:"attack_delay"`
	// TurnEndDelay separates resolution from turn end when no floaters are pending.
	TurnEndDelay time.Duration `mapstructure:"turn_end_delay"`
	// TurnEndFloaterDelay replaces TurnEndDelay when floaters are pending.
	TurnEndFloaterDelay time.Duration `mapstructure:"turn_end_floater_delay"`
	// EffectTickDelay follows an effect tick that produced floaters.
	EffectTickDelay time.Duration `mapstructure:"effect_tick_delay"`
	// AIThinkDelay precedes every AI decision.
	AIThinkDelay time.Duration `mapstructure:"ai_think_delay"`
	// MissTurnDelay is how long a skipped turn is announced.
	MissTurnDelay time.Duration `mapstructure:"miss_turn_delay"`
	// SummonDelay precedes filling slots with summoned combatants.
	SummonDelay time.Duration `mapstructure:"summon_delay"`
	// FloaterLifetime is how long a floater stays visible.
	FloaterLifetime time.Duration `mapstructure:"floater_lifetime"`
	// TileSize is the slot grid unit used for slot coordinates.
	TileSize int `mapstructure:"tile_size"`
}

// ContentConfig locates the data tables and trigger scripts.
type ContentConfig struct {
	// TablesDir holds the YAML data tables.
	TablesDir string `mapstructure:"tables_dir"`
	// ScriptsDir holds Lua trigger scripts.
	ScriptsDir string `mapstructure:"scripts_dir"`
	// Watch reloads tables when files under TablesDir change.
	Watch bool `mapstructure:"watch"`
	// InstructionLimit bounds each Lua call.
	InstructionLimit int `mapstructure:"instruction_limit"`
}

// GameConfig holds new-game settings.
type GameConfig struct {
	// PlayerTemplate is the template id of the player character.
	PlayerTemplate string `mapstructure:"player_template"`
	// PlayerLevel is the starting player level.
	PlayerLevel int `mapstructure:"player_level"`
	// StartingMoney is the party's initial money.
	StartingMoney int `mapstructure:"starting_money"`
	// Seed fixes the random source when non-zero.
	Seed uint64 `mapstructure:"seed"`
	// FrameRate is the number of Update calls per second in the frame driver.
	FrameRate int `mapstructure:"frame_rate"`
}

// Config is the top-level application configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Combat   CombatConfig   `mapstructure:"combat"`
	Content  ContentConfig  `mapstructure:"content"`
	Game     GameConfig     `mapstructure:"game"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if c.Database.Enabled {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateCombat(c.Combat); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateContent(c.Content); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateGame(c.Game); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	if l.Output == "" {
		return fmt.Errorf("logging.output must not be empty")
	}
	return nil
}

func validateCombat(c CombatConfig) error {
	var errs []string
	delays := []struct {
		name string
		d    time.Duration
	}{
		{"attack_delay", c.AttackDelay},
		{"turn_end_delay", c.TurnEndDelay},
		{"turn_end_floater_delay", c.TurnEndFloaterDelay},
		{"effect_tick_delay", c.EffectTickDelay},
		{"ai_think_delay", c.AIThinkDelay},
		{"miss_turn_delay", c.MissTurnDelay},
		{"summon_delay", c.SummonDelay},
		{"floater_lifetime", c.FloaterLifetime},
	}
	for _, d := range delays {
		if d.d < 0 {
			errs = append(errs, fmt.Sprintf("combat.%s must not be negative", d.name))
		}
	}
	if c.TileSize < 1 {
		errs = append(errs, fmt.Sprintf("combat.tile_size must be >= 1, got %d", c.TileSize))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateContent(c ContentConfig) error {
	var errs []string
	if c.TablesDir == "" {
		errs = append(errs, "content.tables_dir must not be empty")
	}
	if c.InstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("content.instruction_limit must be >= 0, got %d", c.InstructionLimit))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateGame(g GameConfig) error {
	var errs []string
	if g.PlayerTemplate == "" {
		errs = append(errs, "game.player_template must not be empty")
	}
	if g.PlayerLevel < 1 {
		errs = append(errs, fmt.Sprintf("game.player_level must be >= 1, got %d", g.PlayerLevel))
	}
	if g.StartingMoney < 0 {
		errs = append(errs, fmt.Sprintf("game.starting_money must be >= 0, got %d", g.StartingMoney))
	}
	if g.FrameRate < 1 {
		errs = append(errs, fmt.Sprintf("game.frame_rate must be >= 1, got %d", g.FrameRate))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with GOODNIGHT_ prefix
	v.SetEnvPrefix("GOODNIGHT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Defaults returns a Viper instance carrying only the built-in defaults.
//
// Postcondition: LoadFromViper(Defaults()) returns a valid Config.
func Defaults() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "goodnight")
	v.SetDefault("database.password", "goodnight")
	v.SetDefault("database.name", "goodnight")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 4)
	v.SetDefault("database.min_conns", 1)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")

	v.SetDefault("combat.attack_delay", "1s")
	v.SetDefault("combat.turn_end_delay", "1s")
	v.SetDefault("combat.turn_end_floater_delay", "2s")
	v.SetDefault("combat.effect_tick_delay", "1s")
	v.SetDefault("combat.ai_think_delay", "500ms")
	v.SetDefault("combat.miss_turn_delay", "2s")
	v.SetDefault("combat.summon_delay", "500ms")
	v.SetDefault("combat.floater_lifetime", "1s")
	v.SetDefault("combat.tile_size", 16)

	v.SetDefault("content.tables_dir", "content/tables")
	v.SetDefault("content.scripts_dir", "content/scripts")
	v.SetDefault("content.watch", false)
	v.SetDefault("content.instruction_limit", 100000)

	v.SetDefault("game.player_template", "candidate")
	v.SetDefault("game.player_level", 1)
	v.SetDefault("game.starting_money", 100)
	v.SetDefault("game.seed", 0)
	v.SetDefault("game.frame_rate", 30)
}

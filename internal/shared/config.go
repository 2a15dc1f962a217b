package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/desertthunder/swipebeats/internal/models"
	"github.com/go-playground/validator/v10"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
//
// Scalar settings can be overridden with SWIPEBEATS_* environment variables, see [Config.ApplyEnv].
type Config struct {
	DefaultPreset string         `toml:"default_preset"`
	Database      DatabaseConfig `toml:"database"`
	Search        SearchConfig   `toml:"search"`
	Swipe         SwipeConfig    `toml:"swipe"`
	Player        PlayerConfig   `toml:"player"`
	Log           LogConfig      `toml:"log"`
	Presets       []PresetConfig `toml:"presets" validate:"dive"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path" env:"SWIPEBEATS_DB_PATH" validate:"required"`
	MaxOpenConns int    `toml:"max_open_conns" env:"SWIPEBEATS_DB_MAX_OPEN_CONNS" validate:"gte=0"`
	MaxIdleConns int    `toml:"max_idle_conns" env:"SWIPEBEATS_DB_MAX_IDLE_CONNS" validate:"gte=0"`
}

// SearchConfig contains catalog search client settings.
type SearchConfig struct {
	BaseURL   string        `toml:"base_url" env:"SWIPEBEATS_SEARCH_BASE_URL" validate:"required,url"`
	Country   string        `toml:"country" env:"SWIPEBEATS_SEARCH_COUNTRY"`
	Limit     int           `toml:"limit" env:"SWIPEBEATS_SEARCH_LIMIT" validate:"gte=1,lte=200"`
	Timeout   time.Duration `toml:"timeout" env:"SWIPEBEATS_SEARCH_TIMEOUT"`
	RateLimit float64       `toml:"rate_limit" env:"SWIPEBEATS_SEARCH_RATE_LIMIT" validate:"gte=0"`
	Locale    string        `toml:"locale" env:"SWIPEBEATS_LOCALE"`
}

// SwipeConfig contains swipe session settings.
type SwipeConfig struct {
	Term      string  `toml:"term" env:"SWIPEBEATS_SWIPE_TERM" validate:"required"`
	Threshold float64 `toml:"threshold" env:"SWIPEBEATS_SWIPE_THRESHOLD" validate:"gt=0"`
}

// PlayerConfig contains the external audio player command.
type PlayerConfig struct {
	Command string   `toml:"command" env:"SWIPEBEATS_PLAYER_COMMAND"`
	Args    []string `toml:"args" env:"SWIPEBEATS_PLAYER_ARGS" envSeparator:" "`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string `toml:"level" env:"SWIPEBEATS_LOG_LEVEL" validate:"omitempty,oneof=debug info warn error fatal"`
	File  string `toml:"file" env:"SWIPEBEATS_LOG_FILE"`
}

// PresetConfig is one [[presets]] table.
type PresetConfig struct {
	Title                string   `toml:"title" validate:"required"`
	Term                 string   `toml:"term" validate:"required"`
	Mode                 string   `toml:"mode" validate:"required,oneof=keyword genre artist song"`
	GenreID              int      `toml:"genre_id" validate:"gte=0"`
	AllowedPrimaryGenres []string `toml:"allowed_primary_genres" validate:"dive,required"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return ParseConfig(data)
}

// ParseConfig parses TOML data on top of [DefaultConfig] and validates the result.
//
// A file that declares its own [[presets]] replaces the built-in catalog entirely.
func ParseConfig(data []byte) (*Config, error) {
	config := DefaultConfig()
	builtin := config.Presets
	config.Presets = nil

	md, err := toml.Decode(string(data), config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if !md.IsDefined("presets") {
		config.Presets = builtin
	} else if !md.IsDefined("default_preset") {
		config.DefaultPreset = ""
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

type rootEnv struct {
	DefaultPreset string `env:"SWIPEBEATS_DEFAULT_PRESET"`
}

// ApplyEnv overrides scalar settings from SWIPEBEATS_* environment variables.
//
// Unset variables leave the file values in place.
func (c *Config) ApplyEnv() error {
	root, err := env.ParseAs[rootEnv]()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if root.DefaultPreset != "" {
		c.DefaultPreset = root.DefaultPreset
	}

	targets := []any{&c.Database, &c.Search, &c.Swipe, &c.Player, &c.Log}
	for _, target := range targets {
		if err := env.Parse(target); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}
	return c.Validate()
}

// Validate checks field constraints and that the default preset exists.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if c.DefaultPreset != "" && len(c.Presets) > 0 {
		if _, ok := models.FindPreset(c.SearchPresets(), c.DefaultPreset); !ok {
			return fmt.Errorf("%w: default preset %q is not defined", ErrInvalidPreset, c.DefaultPreset)
		}
	}

	return nil
}

// SearchPresets converts the configured presets into [models.SearchPreset] values.
//
// Invalid modes are skipped; [Config.Validate] reports them.
func (c *Config) SearchPresets() []models.SearchPreset {
	presets := make([]models.SearchPreset, 0, len(c.Presets))
	for _, p := range c.Presets {
		mode, err := models.ParseSearchMode(p.Mode)
		if err != nil {
			continue
		}
		presets = append(presets, models.SearchPreset{
			Title:                p.Title,
			Term:                 p.Term,
			Mode:                 mode,
			GenreID:              p.GenreID,
			AllowedPrimaryGenres: append([]string(nil), p.AllowedPrimaryGenres...),
		})
	}
	return presets
}

// DefaultSearchPreset returns the configured default preset, falling back to the first preset,
// then to a keyword search for the swipe term.
func (c *Config) DefaultSearchPreset() models.SearchPreset {
	presets := c.SearchPresets()
	if p, ok := models.FindPreset(presets, c.DefaultPreset); ok {
		return p
	}
	if len(presets) > 0 {
		return presets[0]
	}
	return models.SearchPreset{Title: c.Swipe.Term, Term: c.Swipe.Term, Mode: models.ModeKeyword}
}

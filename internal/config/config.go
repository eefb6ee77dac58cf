// Package config loads jcal settings from a YAML file, JCAL_* environment
// variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/lululau/jcal/internal/bounds"
	"github.com/lululau/jcal/internal/logger"
	"github.com/lululau/jcal/internal/months"
)

// EnvPrefix is prepended to environment variable names, e.g. JCAL_LOCALE.
const EnvPrefix = "JCAL"

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// PickerConfig controls which dates can be selected.
type PickerConfig struct {
	PastYears     int  `mapstructure:"past_years" validate:"gte=0"`
	FutureYears   int  `mapstructure:"future_years" validate:"gte=0"`
	FutureEnabled bool `mapstructure:"future_enabled"`
	// YearRange is either empty or [low, high].
	YearRange []int `mapstructure:"year_range"`
}

// HolidaysConfig locates the holiday data.
type HolidaysConfig struct {
	File string `mapstructure:"file"`
	URL  string `mapstructure:"url" validate:"omitempty,url"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `mapstructure:"addr" validate:"required"`
	// RateLimit is the allowed requests per second per client; 0 disables it.
	RateLimit float64 `mapstructure:"rate_limit" validate:"gte=0"`
	Burst     int     `mapstructure:"burst" validate:"gte=0"`
}

// Config holds all application configuration.
type Config struct {
	Locale   string         `mapstructure:"locale" validate:"required"`
	Timezone string         `mapstructure:"timezone" validate:"required"`
	Log      logger.Config  `mapstructure:"log"`
	Picker   PickerConfig   `mapstructure:"picker"`
	Holidays HolidaysConfig `mapstructure:"holidays"`
	Server   ServerConfig   `mapstructure:"server"`
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"locale":        "locale",
	"timezone":      "timezone",
	"future":        "picker.future_enabled",
	"holidays-file": "holidays.file",
	"log-level":     "log.level",
	"addr":          "server.addr",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("locale", months.DefaultLanguage)
	v.SetDefault("timezone", "Asia/Tehran")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stderr")
	v.SetDefault("picker.past_years", bounds.DefaultPastYears)
	v.SetDefault("picker.future_years", bounds.DefaultFutureYears)
	v.SetDefault("picker.future_enabled", false)
	v.SetDefault("holidays.file", "")
	v.SetDefault("holidays.url", "")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.rate_limit", 0)
	v.SetDefault("server.burst", 20)
}

// Load reads configuration from the optional file at configPath, then the
// environment, then any flags in fs that were set explicitly. Later sources
// win.
func Load(configPath string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for name, key := range flagKeys {
			f := fs.Lookup(name)
			if f == nil || !f.Changed {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadEnvFile exports the variables of a dotenv file into the process
// environment. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

var validate = validator.New()

// Validate checks field constraints and the values that need the domain
// packages to verify.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := months.New(c.Locale); err != nil {
		return fmt.Errorf("%w: locale: %v", ErrInvalid, err)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("%w: timezone %q: %v", ErrInvalid, c.Timezone, err)
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %v", ErrInvalid, err)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("%w: log.format must be json or console, got %q", ErrInvalid, c.Log.Format)
	}
	r := c.Picker.YearRange
	if len(r) != 0 && len(r) != 2 {
		return fmt.Errorf("%w: picker.year_range needs two years, got %d", ErrInvalid, len(r))
	}
	if len(r) == 2 && r[0] > r[1] {
		return fmt.Errorf("%w: picker.year_range [%d, %d] is inverted", ErrInvalid, r[0], r[1])
	}
	return nil
}

// Location resolves the configured time zone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// BoundsConfig converts the picker section into calculator input.
func (c *Config) BoundsConfig() bounds.Config {
	out := bounds.Config{
		FutureEnabled: c.Picker.FutureEnabled,
		PastYears:     c.Picker.PastYears,
		FutureYears:   c.Picker.FutureYears,
	}
	if r := c.Picker.YearRange; len(r) == 2 {
		out.YearRange = &bounds.YearRange{Low: r[0], High: r[1]}
	}
	return out
}

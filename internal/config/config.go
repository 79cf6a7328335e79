package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env      string   `mapstructure:"env"`      // current application environment (local, dev, production)
	Problems Problems `mapstructure:"problems"` // problem source API section
	Store    Store    `mapstructure:"store"`    // local persistence section
	Tracker  Tracker  `mapstructure:"tracker"`  // progress tracker section
	HTTP     HTTP     `mapstructure:"http"`     // dashboard API section
	CLI      CLI      `mapstructure:"cli"`      // terminal client section
}

// Problems configures the remote problem source.
type Problems struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Store selects and configures the key-value store backing the tracker.
type Store struct {
	Driver      string `mapstructure:"driver"` // sqlite, redis or memory
	SQLitePath  string `mapstructure:"sqlite_path"`
	RedisAddr   string `mapstructure:"redis_addr"`
	RedisDB     int    `mapstructure:"redis_db"`
	RedisPrefix string `mapstructure:"redis_prefix"`
}

type Tracker struct {
	Key      string `mapstructure:"key"`      // name of the persisted snapshot
	Timezone string `mapstructure:"timezone"` // IANA name or "Local"
}

type HTTP struct {
	Addr           string   `mapstructure:"addr"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type CLI struct {
	MaxInvalidAnswers int `mapstructure:"max_invalid_answers"`
}

// Location resolves the tracker timezone used for calendar-day math.
func (t Tracker) Location() (*time.Location, error) {
	name := strings.TrimSpace(t.Timezone)
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: tracker.timezone %q: %v", ErrInvalidConfig, name, err)
	}
	return loc, nil
}

// Load reads configuration from .env, config files and environment variables.
func Load() (*Config, error) {
	// A missing .env is the common case outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("env", "APP_ENV")
	// VITE_API_URL is what the web front-end uses for the same setting.
	_ = v.BindEnv("problems.base_url", "PROBLEMS_BASE_URL", "VITE_API_URL")

	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "local")
	v.SetDefault("problems.base_url", "http://localhost:8000")
	v.SetDefault("problems.timeout", "5s")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.sqlite_path", "little_toeic.db")
	v.SetDefault("store.redis_addr", "127.0.0.1:6379")
	v.SetDefault("store.redis_db", 0)
	v.SetDefault("store.redis_prefix", "little_toeic:")
	v.SetDefault("tracker.key", "little_toeic_stats")
	v.SetDefault("tracker.timezone", "Local")
	v.SetDefault("http.addr", ":8090")
	v.SetDefault("http.allowed_origins", []string{"*"})
	v.SetDefault("cli.max_invalid_answers", 3)
}

// Validate checks values that would otherwise fail late at runtime.
func (c *Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Store.Driver)) {
	case "sqlite", "redis", "memory":
	default:
		return fmt.Errorf("%w: store.driver %q", ErrInvalidConfig, c.Store.Driver)
	}
	if c.Problems.Timeout <= 0 {
		return fmt.Errorf("%w: problems.timeout must be positive", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.Tracker.Key) == "" {
		return fmt.Errorf("%w: tracker.key is required", ErrInvalidConfig)
	}
	if _, err := c.Tracker.Location(); err != nil {
		return err
	}
	return nil
}

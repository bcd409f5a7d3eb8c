package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultCategories are the question pools offered when the config names none.
var DefaultCategories = []string{"Web Dev", "Mobile Dev", "AI", "Cybersecurity"}

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Log Log `yaml:"log"`
	Quiz struct {
		ExpiryDelaySeconds int      `yaml:"expiry_delay_seconds"`
		Categories         []string `yaml:"categories"`
		SessionTTL         string   `yaml:"session_ttl"`
		Timezone           string   `yaml:"timezone"`
	} `yaml:"quiz"`
	Storage struct {
		Driver  string `yaml:"driver"`
		Catalog string `yaml:"catalog"`
		Ledger  string `yaml:"ledger"`
	} `yaml:"storage"`
	Ledger struct {
		RetentionDays int    `yaml:"retention_days"`
		PruneSchedule string `yaml:"prune_schedule"`
	} `yaml:"ledger"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
}

// Log selects the zap encoder and level.
type Log struct {
	Level string `yaml:"level"`
	Env   string `yaml:"env"`
}

// Load reads YAML config from path. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}
	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.Postgres.URL = url
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Quiz.ExpiryDelaySeconds <= 0 {
		c.Quiz.ExpiryDelaySeconds = 60
	}
	if c.Quiz.Categories == nil {
		c.Quiz.Categories = append([]string(nil), DefaultCategories...)
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "file"
	}
	if c.Storage.Catalog == "" {
		c.Storage.Catalog = "data/questions.json"
	}
	if c.Storage.Ledger == "" {
		c.Storage.Ledger = "data/already_answered.json"
	}
	if c.Ledger.PruneSchedule == "" {
		c.Ledger.PruneSchedule = "5 0 * * *"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// ExpiryDelay is the time a delivered question stays in use before it is forced to used.
func (c Config) ExpiryDelay() time.Duration {
	return time.Duration(c.Quiz.ExpiryDelaySeconds) * time.Second
}

// Location resolves quiz.timezone, falling back to the process zone.
func (c Config) Location() (*time.Location, error) {
	if c.Quiz.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Quiz.Timezone)
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

// Package config loads sbhasm's TOML configuration file.
//
// The file is optional. Every field has a zero value meaning "not set", in
// which case the command-line flag or the pipeline default applies. Flags
// given explicitly on the command line always win over the file.
//
// Example:
//
//	[search]
//	restarts = 200
//	iterations = 500000
//	seed = 7
//
//	[anneal]
//	initial_temperature = 2.0
//	cooling = 0.99999
//
//	[log]
//	path = "results.txt"
//	mongo_uri = "mongodb://localhost:27017"
//
//	[cache]
//	redis_url = "redis://localhost:6379/0"
//	ttl = "72h"
package config

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/sbhasm/pkg/core/anneal"
	errs "github.com/matzehuels/sbhasm/pkg/errors"
)

const appName = "sbhasm"

// Config is the decoded configuration file.
type Config struct {
	Search SearchConfig `toml:"search"`
	Anneal AnnealConfig `toml:"anneal"`
	Log    LogConfig    `toml:"log"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// SearchConfig holds the restart and iteration budget.
type SearchConfig struct {
	Restarts   int    `toml:"restarts,omitempty"`
	Iterations int    `toml:"iterations,omitempty"`
	Seed       uint64 `toml:"seed,omitempty"`
	Workers    int    `toml:"workers,omitempty"`
}

// AnnealConfig holds the temperature schedule.
type AnnealConfig struct {
	InitialTemperature float64 `toml:"initial_temperature,omitempty"`
	Cooling            float64 `toml:"cooling,omitempty"`
	MinTemperature     float64 `toml:"min_temperature,omitempty"`
}

// LogConfig selects the run-log sinks.
type LogConfig struct {
	Path            string `toml:"path,omitempty"`
	MongoURI        string `toml:"mongo_uri,omitempty"`
	MongoDatabase   string `toml:"mongo_database,omitempty"`
	MongoCollection string `toml:"mongo_collection,omitempty"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	Dir      string   `toml:"dir,omitempty"`
	RedisURL string   `toml:"redis_url,omitempty"`
	TTL      Duration `toml:"ttl,omitempty"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr          string `toml:"addr,omitempty"`
	MaxIterations int    `toml:"max_iterations,omitempty"`
	MaxFragments  int    `toml:"max_fragments,omitempty"`
}

// Duration is a time.Duration written as a Go duration string ("90m").
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// DefaultPath returns $XDG_CONFIG_HOME/sbhasm/config.toml, falling back to
// ~/.config/sbhasm/config.toml.
func DefaultPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads and validates the file at path.
// Unknown keys are rejected so that typos do not pass silently.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errs.New(errs.ErrCodeFileNotFound, "config file %s not found", path)
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeIO, err, "open config %s", path)
	}
	defer f.Close()

	cfg, err := Decode(f)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidConfig, err, "config %s", path)
	}
	return cfg, nil
}

// LoadDefault loads the file at DefaultPath. A missing file yields an
// empty Config and no error.
func LoadDefault() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return &Config{}, nil
	}
	cfg, err := Load(path)
	if errs.Is(err, errs.ErrCodeFileNotFound) {
		return &Config{}, nil
	}
	return cfg, err
}

// Decode reads a configuration from r and validates it.
func Decode(r io.Reader) (*Config, error) {
	var cfg Config
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errs.New(errs.ErrCodeInvalidConfig, "unknown keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Encode writes cfg as TOML.
func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// Validate checks the values that are set. Unset schedule values are
// checked against the annealing defaults they will be replaced with.
func (c *Config) Validate() error {
	counts := []struct {
		name string
		n    int
	}{
		{"search.restarts", c.Search.Restarts},
		{"search.iterations", c.Search.Iterations},
		{"search.workers", c.Search.Workers},
		{"server.max_iterations", c.Server.MaxIterations},
		{"server.max_fragments", c.Server.MaxFragments},
	}
	for _, cnt := range counts {
		if err := errs.ValidateCount(cnt.name, cnt.n); err != nil {
			return errs.New(errs.ErrCodeInvalidConfig, "%s", errs.UserMessage(err))
		}
	}

	a := anneal.Options{
		InitialTemp: c.Anneal.InitialTemperature,
		Cooling:     c.Anneal.Cooling,
		MinTemp:     c.Anneal.MinTemperature,
	}
	a.SetDefaults()
	if err := errs.ValidateSchedule(a.InitialTemp, a.Cooling, a.MinTemp); err != nil {
		return errs.New(errs.ErrCodeInvalidConfig, "anneal: %s", errs.UserMessage(err))
	}

	if c.Log.MongoURI != "" {
		if err := errs.ValidateURL(c.Log.MongoURI, "mongodb", "mongodb+srv"); err != nil {
			return errs.New(errs.ErrCodeInvalidConfig, "log.mongo_uri: %s", errs.UserMessage(err))
		}
	}
	if c.Cache.RedisURL != "" {
		if err := errs.ValidateURL(c.Cache.RedisURL, "redis", "rediss"); err != nil {
			return errs.New(errs.ErrCodeInvalidConfig, "cache.redis_url: %s", errs.UserMessage(err))
		}
	}
	if c.Cache.TTL < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "cache.ttl must not be negative")
	}
	return nil
}

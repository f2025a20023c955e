// Package daemon holds the long-running pieces of the DePaym server:
// configuration loading and the session sweep loop.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the daemon configuration, loaded from a TOML file with
// sensible defaults for every field.
type Config struct {
	API      APIConfig      `toml:"api"`
	Store    StoreConfig    `toml:"store"`
	Exchange ExchangeConfig `toml:"exchange"`
	Sweep    SweepConfig    `toml:"sweep"`
}

// APIConfig configures the HTTP listener.
type APIConfig struct {
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
	Metrics bool   `toml:"metrics"`
}

// Addr returns the host:port listen address.
func (a APIConfig) Addr() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

// StoreConfig configures the sqlite database.
type StoreConfig struct {
	Path string `toml:"path"`
}

// ExchangeConfig configures the fiat rate provider. An empty APIKey
// disables the currency endpoints.
type ExchangeConfig struct {
	APIKey string `toml:"api_key"`
	TTL    string `toml:"ttl"`
}

// CacheTTL parses the TTL field, falling back to 3h on empty or bad input.
func (e ExchangeConfig) CacheTTL() time.Duration {
	if e.TTL == "" {
		return 3 * time.Hour
	}
	d, err := time.ParseDuration(e.TTL)
	if err != nil || d <= 0 {
		return 3 * time.Hour
	}
	return d
}

// SweepConfig configures the expired-session sweep.
type SweepConfig struct {
	Interval string `toml:"interval"`
}

// SweepInterval parses the interval, falling back to 1m.
func (s SweepConfig) SweepInterval() time.Duration {
	if s.Interval == "" {
		return time.Minute
	}
	d, err := time.ParseDuration(s.Interval)
	if err != nil || d <= 0 {
		return time.Minute
	}
	return d
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			Host:    "127.0.0.1",
			Port:    8080,
			Metrics: true,
		},
		Store: StoreConfig{
			Path: defaultStorePath(),
		},
		Exchange: ExchangeConfig{
			TTL: "3h",
		},
		Sweep: SweepConfig{
			Interval: "1m",
		},
	}
}

func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "depaym.db"
	}
	return filepath.Join(home, ".depaym", "depaym.db")
}

// LoadConfig reads a TOML config file over the defaults. A missing file
// is not an error; a malformed one is.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

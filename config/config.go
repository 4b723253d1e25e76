// Package config loads the server and CLI settings from a TOML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/warp/vesting-engine/generic"
)

// Config holds all vesting-engine configuration.
type Config struct {
	Server     ServerConfig     `toml:"server"`
	Price      PriceConfig      `toml:"price"`
	Calculator CalculatorConfig `toml:"calculator"`
}

// ServerConfig holds HTTP and storage settings.
type ServerConfig struct {
	Port        int      `toml:"port"`
	DBPath      string   `toml:"db_path"`
	CORSOrigins []string `toml:"cors_origins"`
	// Seed loads the reference schemes and price table on startup.
	Seed bool `toml:"seed"`
}

// PriceConfig holds spot price settings.
type PriceConfig struct {
	APIURL          string        `toml:"api_url,omitempty"`
	RefreshInterval time.Duration `toml:"refresh_interval"`
	Timeout         time.Duration `toml:"timeout"`
	StaleAfter      time.Duration `toml:"stale_after"`
	FallbackUSD     float64       `toml:"fallback_usd"`
	// Offline disables upstream fetches entirely.
	Offline bool `toml:"offline"`
}

// CalculatorConfig holds defaults for new calculator sessions.
type CalculatorConfig struct {
	DefaultScheme     string  `toml:"default_scheme"`
	DefaultGrowthRate float64 `toml:"default_growth_rate"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:        8080,
			DBPath:      "vesting.db",
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
			Seed:        true,
		},
		Price: PriceConfig{
			RefreshInterval: 5 * time.Minute,
			Timeout:         10 * time.Second,
			StaleAfter:      15 * time.Minute,
			FallbackUSD:     generic.DefaultBTCPrice.InexactFloat64(),
		},
		Calculator: CalculatorConfig{
			DefaultScheme:     "accelerator",
			DefaultGrowthRate: 15,
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "vesting-engine")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "vesting-engine")
}

// Path returns the full path to the default config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the config file at path (the default path when empty),
// returning defaults if it doesn't exist. Environment overrides apply last.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		path = Path()
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return cfg, fmt.Errorf("reading config: %w", err)
	default:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	}

	applyEnv(&cfg)
	cfg.normalize()
	return cfg, nil
}

// Save writes the config to path (the default path when empty).
func Save(cfg Config, path string) error {
	if path == "" {
		path = Path()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("VESTING_DB_PATH"); v != "" {
		cfg.Server.DBPath = v
	}
	if v := os.Getenv("VESTING_PRICE_API_URL"); v != "" {
		cfg.Price.APIURL = v
	}
}

func (c *Config) normalize() {
	def := DefaultConfig()
	if c.Server.Port <= 0 {
		c.Server.Port = def.Server.Port
	}
	if c.Server.DBPath == "" {
		c.Server.DBPath = def.Server.DBPath
	}
	if c.Price.RefreshInterval <= 0 {
		c.Price.RefreshInterval = def.Price.RefreshInterval
	}
	if c.Price.Timeout <= 0 {
		c.Price.Timeout = def.Price.Timeout
	}
	if c.Price.FallbackUSD <= 0 {
		c.Price.FallbackUSD = def.Price.FallbackUSD
	}
	c.Calculator.DefaultGrowthRate = generic.ClampGrowthRate(c.Calculator.DefaultGrowthRate)
}

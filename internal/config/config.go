package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Database  DatabaseConfig
	UI        UIConfig
	Journal   JournalConfig
	Log       LogConfig
	Simulator SimulatorConfig
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string
}

// UIConfig holds presentation settings.
type UIConfig struct {
	Locale string
	Accent string
}

// JournalConfig controls the alert history log.
type JournalConfig struct {
	Enabled   bool
	Retention time.Duration
}

// LogConfig controls diagnostics.
type LogConfig struct {
	Level string
	File  string
}

// SimulatorConfig drives the demo charging sessions.
type SimulatorConfig struct {
	Sessions    int
	FailureRate float64 `mapstructure:"failure_rate"`
	Seed        int64
	Step        time.Duration
}

// Path returns the config file location: $VOLTALERT_CONFIG or ~/.config/voltalert/config.toml.
func Path() string {
	if p := os.Getenv("VOLTALERT_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "voltalert", "config.toml")
}

// Load reads configuration from file and env. Env var overrides use prefix VOLTALERT_.
// A .env file in the working directory is applied first when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigType("toml")
	if cfgPath := os.Getenv("VOLTALERT_CONFIG"); cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "voltalert"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("VOLTALERT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, c.Validate()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "voltalert", "voltalert.db"))
	v.SetDefault("ui.locale", "en-US")
	v.SetDefault("ui.accent", "39")
	v.SetDefault("journal.enabled", true)
	v.SetDefault("journal.retention", 30*24*time.Hour)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", filepath.Join(os.TempDir(), "voltalert.log"))
	v.SetDefault("simulator.sessions", 4)
	v.SetDefault("simulator.failure_rate", 0.35)
	v.SetDefault("simulator.seed", 1)
	v.SetDefault("simulator.step", 750*time.Millisecond)
}

// Default returns the built-in configuration without reading files or env.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	var c Config
	_ = v.Unmarshal(&c)
	return c
}

// Validate rejects settings the app cannot run with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Simulator.Sessions < 0 {
		return fmt.Errorf("simulator.sessions must be >= 0, got %d", c.Simulator.Sessions)
	}
	if c.Simulator.FailureRate < 0 || c.Simulator.FailureRate > 1 {
		return fmt.Errorf("simulator.failure_rate must be within [0,1], got %v", c.Simulator.FailureRate)
	}
	if c.Journal.Retention < 0 {
		return fmt.Errorf("journal.retention must be >= 0")
	}
	return nil
}

// Save writes the provided config to path, creating the directory if needed.
func Save(cfg Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.path", cfg.Database.Path)
	v.Set("ui.locale", cfg.UI.Locale)
	v.Set("ui.accent", cfg.UI.Accent)
	v.Set("journal.enabled", cfg.Journal.Enabled)
	v.Set("journal.retention", cfg.Journal.Retention.String())
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.file", cfg.Log.File)
	v.Set("simulator.sessions", cfg.Simulator.Sessions)
	v.Set("simulator.failure_rate", cfg.Simulator.FailureRate)
	v.Set("simulator.seed", cfg.Simulator.Seed)
	v.Set("simulator.step", cfg.Simulator.Step.String())

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults
const (
	DefaultServer         = "http://localhost:9090"
	DefaultHomeRefresh    = 5 * time.Second
	DefaultDetailRefresh  = 3 * time.Second
	DefaultStartDelay     = 100 * time.Millisecond
	DefaultRequestTimeout = 30 * time.Second
	DefaultLogLevel       = "info"
)

// Config holds g3console configuration
type Config struct {
	Server         string        `yaml:"server"`
	HomeRefresh    time.Duration `yaml:"home_refresh"`
	DetailRefresh  time.Duration `yaml:"detail_refresh"`
	StartDelay     time.Duration `yaml:"start_delay"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	LogLevel       string        `yaml:"log_level"`
	LogFile        string        `yaml:"log_file"`
	RestoreState   bool          `yaml:"restore_state"`
}

// fileConfig mirrors Config with optional fields so a file only overrides
// what it sets.
type fileConfig struct {
	Server         string         `yaml:"server"`
	HomeRefresh    *time.Duration `yaml:"home_refresh"`
	DetailRefresh  *time.Duration `yaml:"detail_refresh"`
	StartDelay     *time.Duration `yaml:"start_delay"`
	RequestTimeout *time.Duration `yaml:"request_timeout"`
	LogLevel       string         `yaml:"log_level"`
	LogFile        string         `yaml:"log_file"`
	RestoreState   *bool          `yaml:"restore_state"`
}

// configFile is the name of the config file
const configFile = "config.yaml"

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server:         DefaultServer,
		HomeRefresh:    DefaultHomeRefresh,
		DetailRefresh:  DefaultDetailRefresh,
		StartDelay:     DefaultStartDelay,
		RequestTimeout: DefaultRequestTimeout,
		LogLevel:       DefaultLogLevel,
		LogFile:        defaultLogFile(),
		RestoreState:   true,
	}
}

// Load loads configuration with the following precedence (highest first):
// 1. Environment variables
// 2. The config file at path, or ~/.config/g3console/config.yaml if path is empty
// 3. Built-in defaults
//
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = GlobalConfigPath()
	}
	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			if !errors.Is(err, os.ErrNotExist) || explicit {
				return nil, err
			}
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// GlobalConfigPath returns the path to the global config file
func GlobalConfigPath() string {
	dir := configDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, configFile)
}

func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "g3console")
}

func defaultLogFile() string {
	dir := configDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "g3console.log")
}

// loadFromFile merges the YAML file at path into cfg.
// Relative log_file paths resolve against the file's directory.
func loadFromFile(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	if fc.Server != "" {
		cfg.Server = fc.Server
	}
	if fc.HomeRefresh != nil {
		cfg.HomeRefresh = *fc.HomeRefresh
	}
	if fc.DetailRefresh != nil {
		cfg.DetailRefresh = *fc.DetailRefresh
	}
	if fc.StartDelay != nil {
		cfg.StartDelay = *fc.StartDelay
	}
	if fc.RequestTimeout != nil {
		cfg.RequestTimeout = *fc.RequestTimeout
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
	if fc.LogFile != "" {
		cfg.LogFile = resolvePath(fc.LogFile, filepath.Dir(path))
	}
	if fc.RestoreState != nil {
		cfg.RestoreState = *fc.RestoreState
	}
	return nil
}

// resolvePath expands a leading ~ and makes relative paths absolute against baseDir.
func resolvePath(path, baseDir string) string {
	if path == "" {
		return ""
	}
	if path[0] == '~' {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[1:])
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}
	return path
}

// applyEnv applies environment variables to config
func applyEnv(cfg *Config) {
	if v := os.Getenv("G3CONSOLE_SERVER"); v != "" {
		cfg.Server = v
	}
	if v := os.Getenv("G3CONSOLE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("G3CONSOLE_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Server)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("server %q is not an http(s) URL", c.Server)
	}
	for _, d := range []struct {
		name string
		v    time.Duration
	}{
		{"home_refresh", c.HomeRefresh},
		{"detail_refresh", c.DetailRefresh},
		{"start_delay", c.StartDelay},
		{"request_timeout", c.RequestTimeout},
	} {
		if d.v <= 0 {
			return fmt.Errorf("%s must be positive, got %s", d.name, d.v)
		}
	}
	return nil
}

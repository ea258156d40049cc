// Package config handles the XDG configuration directory and the client config file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"

	"todo/internal/service"
)

const (
	// AppName is the application directory name.
	AppName = "todo"

	// ConfigFile is the config filename inside the config directory.
	ConfigFile = "config.yaml"
)

// RemoteConfig describes how to reach the task service.
type RemoteConfig struct {
	BaseURL  string        `yaml:"base_url" env:"TODO_BASE_URL" env-default:"http://localhost:8080/"`
	Timeout  time.Duration `yaml:"timeout" env:"TODO_TIMEOUT" env-default:"5s"`
	APIToken string        `yaml:"api_token" env:"TODO_API_TOKEN"`
}

// DefaultsConfig holds the filter/sort settings a fresh session starts with.
type DefaultsConfig struct {
	Filter string `yaml:"filter" env:"TODO_FILTER" env-default:"all"`
	Sort   string `yaml:"sort" env:"TODO_SORT" env-default:"due"`
	Order  string `yaml:"order" env:"TODO_ORDER" env-default:"asc"`
}

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string `yaml:"-"`

	// Debug enables debug logging.
	Debug bool `yaml:"-"`

	// Quiet suppresses informational output.
	Quiet bool `yaml:"-"`

	LogLevel string         `yaml:"log_level" env:"TODO_LOG_LEVEL" env-default:"INFO"`
	Remote   RemoteConfig   `yaml:"remote"`
	Defaults DefaultsConfig `yaml:"defaults"`
}

// New loads the config from configDir, or from the default directory if empty.
// A missing config file is not an error: environment and defaults apply.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	cfg := &Config{Dir: dir}

	if cfg.HasConfigFile() {
		if err := cleanenv.ReadConfig(cfg.ConfigPath(), cfg); err != nil {
			return nil, fmt.Errorf("cannot read config %s: %w", cfg.ConfigPath(), err)
		}
	} else if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("cannot read env: %w", err)
	}
	cfg.Dir = dir
	return cfg, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// ConfigPath returns the path to the config file.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.Dir, ConfigFile)
}

// HasConfigFile checks if the config file exists.
func (c *Config) HasConfigFile() bool {
	_, err := os.Stat(c.ConfigPath())
	return err == nil
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// Settings parses the configured default filter and sort settings.
func (c *Config) Settings() (service.Settings, error) {
	return service.ParseSettings(service.DefaultSettings(), c.Defaults.Filter, c.Defaults.Sort, c.Defaults.Order)
}

// fileConfig is the on-disk shape; durations are written as strings.
type fileConfig struct {
	LogLevel string `yaml:"log_level,omitempty"`
	Remote   struct {
		BaseURL  string `yaml:"base_url,omitempty"`
		Timeout  string `yaml:"timeout,omitempty"`
		APIToken string `yaml:"api_token,omitempty"`
	} `yaml:"remote"`
	Defaults DefaultsConfig `yaml:"defaults"`
}

// SaveDefaults stores s as the default settings and writes the config file
// with mode 0600 (it may hold an API token).
func (c *Config) SaveDefaults(s service.Settings) error {
	c.Defaults = DefaultsConfig{
		Filter: s.Filter.String(),
		Sort:   s.SortKey.String(),
		Order:  s.Direction.String(),
	}

	var fc fileConfig
	fc.LogLevel = c.LogLevel
	fc.Remote.BaseURL = c.Remote.BaseURL
	if c.Remote.Timeout > 0 {
		fc.Remote.Timeout = c.Remote.Timeout.String()
	}
	fc.Remote.APIToken = c.Remote.APIToken
	fc.Defaults = c.Defaults

	data, err := yaml.Marshal(&fc)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := c.EnsureDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return os.WriteFile(c.ConfigPath(), data, 0600)
}

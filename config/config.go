// Package config provides configuration management for NordVPN Manager.
// It handles loading, saving, and validating application settings.
package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yllada/nordvpn-manager/common"
)

// Config represents the application configuration.
// All settings are persisted to a YAML file in the user's config directory.
type Config struct {
	// Binary is the nordvpn executable, looked up in PATH unless absolute.
	Binary string `yaml:"binary"`
	// CommandTimeout bounds every nordvpn invocation.
	CommandTimeout time.Duration `yaml:"command_timeout"`
	// LogLevel is one of "debug", "info", "warn" or "error".
	LogLevel string `yaml:"log_level"`
	// LogToFile also writes logs under ~/.config/nordvpn-manager/logs.
	LogToFile bool `yaml:"log_to_file"`
	// ShowNotifications enables desktop notifications for connection events.
	ShowNotifications bool `yaml:"show_notifications"`
	// WatchInterval is the polling period of the watch command.
	WatchInterval time.Duration `yaml:"watch_interval"`
	// MetricsAddress is the listen address of the metrics command.
	MetricsAddress string `yaml:"metrics_address"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Binary:            "nordvpn",
		CommandTimeout:    common.CommandTimeout,
		LogLevel:          "info",
		LogToFile:         true,
		ShowNotifications: true,
		WatchInterval:     common.WatchInterval,
		MetricsAddress:    common.MetricsAddress,
	}
}

// Load reads the configuration from the default path.
// If the file doesn't exist, it creates one with default values.
func Load() (*Config, error) {
	configPath, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(configPath)
}

// LoadFile reads the configuration from path, writing the defaults there
// first if the file does not exist.
func LoadFile(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()
		if err := cfg.SaveFile(path); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrConfigLoad, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	// Fields missing from the file keep their defaults.
	config := DefaultConfig()
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", common.ErrConfigLoad, path, err)
	}

	config.validate()
	return config, nil
}

// validate replaces unusable values with their defaults.
func (c *Config) validate() {
	defaults := DefaultConfig()

	if c.Binary == "" {
		c.Binary = defaults.Binary
	}
	if c.CommandTimeout <= 0 {
		common.LogWarn("command_timeout %v is not positive, using %v", c.CommandTimeout, defaults.CommandTimeout)
		c.CommandTimeout = defaults.CommandTimeout
	}
	if _, err := common.ParseLevel(c.LogLevel); err != nil {
		common.LogWarn("%v, using %q", err, defaults.LogLevel)
		c.LogLevel = defaults.LogLevel
	}
	if c.WatchInterval < time.Second {
		c.WatchInterval = defaults.WatchInterval
	}
	if _, _, err := net.SplitHostPort(c.MetricsAddress); err != nil {
		common.LogWarn("metrics_address %q is invalid, using %q", c.MetricsAddress, defaults.MetricsAddress)
		c.MetricsAddress = defaults.MetricsAddress
	}
}

// Level returns the configured log level.
func (c *Config) Level() common.LogLevel {
	level, _ := common.ParseLevel(c.LogLevel)
	return level
}

// SaveFile writes the configuration to path.
func (c *Config) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("%w: creating config directory: %v", common.ErrConfigSave, err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrConfigSave, err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("%w: %v", common.ErrConfigSave, err)
	}
	return nil
}

// DefaultPath returns ~/.config/nordvpn-manager/config.yaml.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("error getting home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", common.ConfigDirName, common.ConfigFileName), nil
}

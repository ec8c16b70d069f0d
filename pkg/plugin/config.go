package plugin

import (
	"fmt"
	"time"
)

// LogLevel defines the severity level for logging
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

// Config defines the configuration for the plugin registry
type Config struct {
	// PluginDir holds <kind>/<name>.so files and an optional plugins.toml
	PluginDir     string
	LogLevel      LogLevel
	LoadTimeout   time.Duration
	EnableMetrics bool
	// Disabled plugin names are never registered
	Disabled []string
}

// DefaultConfig returns the default registry configuration
func DefaultConfig() *Config {
	return &Config{
		PluginDir:     "",
		LogLevel:      LogLevelInfo,
		LoadTimeout:   30 * time.Second,
		EnableMetrics: true,
	}
}

// ValidateConfig validates the configuration to ensure it is valid
func ValidateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("config cannot be nil")
	}
	if config.LoadTimeout < 0 {
		return fmt.Errorf("LoadTimeout cannot be negative")
	}
	if config.LogLevel < LogLevelDebug || config.LogLevel > LogLevelError {
		return fmt.Errorf("invalid LogLevel %d", config.LogLevel)
	}
	for _, name := range config.Disabled {
		if name == "" {
			return fmt.Errorf("disabled plugin name cannot be empty")
		}
	}
	return nil
}

// IsDisabled reports whether the named plugin is switched off
func (c *Config) IsDisabled(name string) bool {
	for _, d := range c.Disabled {
		if d == name {
			return true
		}
	}
	return false
}

// Clone creates a deep copy of the configuration
func (c *Config) Clone() *Config {
	clone := *c
	clone.Disabled = append([]string(nil), c.Disabled...)
	return &clone
}

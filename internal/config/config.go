// Package config handles monitor configuration loading using viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"bbo-monitor/internal/bbo"
	"bbo-monitor/internal/stream"
)

// Config is the top-level monitor configuration. Values come from an
// optional YAML file overridden by BBO_* environment variables.
type Config struct {
	// Device is the path to the C2H stream device node or a capture file.
	Device string `mapstructure:"device"`
	// Follow keeps reading past EOF, for device nodes that report EOF while
	// idle.
	Follow bool `mapstructure:"follow"`
	// Count is the number of packets to receive before exiting in line mode.
	// Zero means run until interrupted.
	Count int `mapstructure:"count"`
	// ClockPeriodNs is the timestamp clock period in nanoseconds.
	ClockPeriodNs uint32 `mapstructure:"clock_period_ns"`
	// ReadBackoff is the delay before retrying a zero-length device read.
	ReadBackoff time.Duration `mapstructure:"read_backoff"`
	// LogLevel is a logrus level name (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`

	UDP UDPConfig `mapstructure:"udp"`
}

// UDPConfig configures the network mirror source.
type UDPConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port"`
	Group   string `mapstructure:"group"` // optional multicast group
}

// Load reads configuration from the given file path (empty means defaults
// only) with environment overrides applied.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("device", "/dev/xdma0_c2h_0")
	v.SetDefault("follow", false)
	v.SetDefault("count", 0)
	v.SetDefault("clock_period_ns", bbo.DefaultClockPeriodNs)
	v.SetDefault("read_backoff", stream.DefaultReadBackoff)
	v.SetDefault("log_level", "info")
	v.SetDefault("udp.enabled", false)
	v.SetDefault("udp.port", stream.DefaultUDPPort)
	v.SetDefault("udp.group", "")

	v.SetEnvPrefix("BBO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the configuration for values the monitor cannot run with.
func (c *Config) Validate() error {
	if c.ClockPeriodNs == 0 {
		return fmt.Errorf("clock_period_ns must be positive")
	}
	if c.Count < 0 {
		return fmt.Errorf("count must not be negative, got %d", c.Count)
	}
	if c.ReadBackoff < 0 {
		return fmt.Errorf("read_backoff must not be negative, got %s", c.ReadBackoff)
	}
	if c.UDP.Enabled && (c.UDP.Port <= 0 || c.UDP.Port > 65535) {
		return fmt.Errorf("udp.port out of range: %d", c.UDP.Port)
	}
	return nil
}

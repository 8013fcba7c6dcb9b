package cliconfig

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bft-labs/moisturelog/internal/domain"
	"github.com/bft-labs/moisturelog/pkg/moisturelog"
)

// Config holds CLI configuration for moisturelog.
type Config struct {
	Device       string
	BaudRate     int
	ReadTimeout  time.Duration
	DataFile     string
	MaxRecords   int
	SyncWindow   time.Duration
	IdleInterval time.Duration
	Echo         bool
	LogLevel     string
	// Replay is a capture file read instead of the device.
	Replay string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Device:       moisturelog.DefaultDevice,
		BaudRate:     moisturelog.DefaultBaudRate,
		ReadTimeout:  moisturelog.DefaultReadTimeout,
		DataFile:     moisturelog.DefaultDataFile,
		MaxRecords:   moisturelog.DefaultMaxRecords,
		SyncWindow:   moisturelog.DefaultSyncWindow,
		IdleInterval: moisturelog.DefaultIdleInterval,
		Echo:         true,
		LogLevel:     "info",
	}
}

// Validate checks the configuration. Errors wrap domain.ErrInvalidConfig.
func (c *Config) Validate() error {
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))

	switch {
	case c.Device == "" && c.Replay == "":
		return invalid("device is required")
	case c.BaudRate <= 0:
		return invalid("baud rate must be positive")
	case c.DataFile == "":
		return invalid("data file is required")
	case c.MaxRecords <= 0:
		return invalid("max records must be positive")
	case c.SyncWindow < 0:
		return invalid("sync window must not be negative")
	case c.IdleInterval <= 0:
		return invalid("idle interval must be positive")
	case c.ReadTimeout <= 0:
		return invalid("read timeout must be positive")
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return invalid(fmt.Sprintf("unknown log level %q", c.LogLevel))
	}
	return nil
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidConfig, msg)
}

// BridgeConfig converts c to the library configuration. A zero sync window
// disables the start-up gate.
func (c Config) BridgeConfig() moisturelog.Config {
	sync := c.SyncWindow
	if sync == 0 {
		sync = -1
	}
	return moisturelog.Config{
		Device:       c.Device,
		BaudRate:     c.BaudRate,
		DataFile:     c.DataFile,
		MaxRecords:   c.MaxRecords,
		SyncWindow:   sync,
		IdleInterval: c.IdleInterval,
		ReadTimeout:  c.ReadTimeout,
	}
}

// configSetter applies configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses an environment value and sets dst if positive.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setBoolFromString accepts "true" and "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}

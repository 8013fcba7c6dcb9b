package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	Device       string `toml:"device"`
	BaudRate     int    `toml:"baud_rate"`
	ReadTimeout  string `toml:"read_timeout"`
	DataFile     string `toml:"data_file"`
	MaxRecords   int    `toml:"max_records"`
	SyncWindow   string `toml:"sync_window"`
	IdleInterval string `toml:"idle_interval"`
	Echo         *bool  `toml:"echo"`
	LogLevel     string `toml:"log_level"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.moisturelog/config.toml, or "" when the home
// directory is unknown.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".moisturelog", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("device", fc.Device, &cfg.Device)
	s.setString("data-file", fc.DataFile, &cfg.DataFile)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	s.setInt("baud", fc.BaudRate, &cfg.BaudRate)
	s.setInt("max-records", fc.MaxRecords, &cfg.MaxRecords)

	if err := s.setDuration("read-timeout", fc.ReadTimeout, &cfg.ReadTimeout); err != nil {
		return err
	}
	if err := s.setDuration("sync-window", fc.SyncWindow, &cfg.SyncWindow); err != nil {
		return err
	}
	if err := s.setDuration("idle-interval", fc.IdleInterval, &cfg.IdleInterval); err != nil {
		return err
	}

	s.setBool("echo", fc.Echo, &cfg.Echo)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables
// (MOISTURELOG_*). It respects flags that have been explicitly set (changed
// map) and returns an error if a variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("device", os.Getenv("MOISTURELOG_DEVICE"), &cfg.Device)
	s.setString("data-file", os.Getenv("MOISTURELOG_DATA_FILE"), &cfg.DataFile)
	s.setString("log-level", os.Getenv("MOISTURELOG_LOG_LEVEL"), &cfg.LogLevel)

	if err := s.setIntFromString("baud", os.Getenv("MOISTURELOG_BAUD_RATE"), &cfg.BaudRate); err != nil {
		return err
	}
	if err := s.setIntFromString("max-records", os.Getenv("MOISTURELOG_MAX_RECORDS"), &cfg.MaxRecords); err != nil {
		return err
	}

	if err := s.setDuration("read-timeout", os.Getenv("MOISTURELOG_READ_TIMEOUT"), &cfg.ReadTimeout); err != nil {
		return err
	}
	if err := s.setDuration("sync-window", os.Getenv("MOISTURELOG_SYNC_WINDOW"), &cfg.SyncWindow); err != nil {
		return err
	}
	if err := s.setDuration("idle-interval", os.Getenv("MOISTURELOG_IDLE_INTERVAL"), &cfg.IdleInterval); err != nil {
		return err
	}

	s.setBoolFromString("echo", os.Getenv("MOISTURELOG_ECHO"), &cfg.Echo)

	return nil
}

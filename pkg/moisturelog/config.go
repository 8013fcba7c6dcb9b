package moisturelog

import (
	"fmt"
	"time"

	"github.com/bft-labs/moisturelog/internal/adapters/serial"
	"github.com/bft-labs/moisturelog/internal/domain"
	"github.com/bft-labs/moisturelog/internal/frame"
	"github.com/bft-labs/moisturelog/internal/logstore"
)

// Defaults applied by Config.SetDefaults.
const (
	DefaultDevice       = logstore.DefaultPort
	DefaultBaudRate     = logstore.DefaultBaudRate
	DefaultDataFile     = "data_log.json"
	DefaultMaxRecords   = logstore.DefaultMaxRecords
	DefaultSyncWindow   = frame.DefaultSyncWindow
	DefaultIdleInterval = frame.DefaultIdleInterval
	DefaultReadTimeout  = serial.DefaultReadTimeout
)

// Config configures a Bridge.
type Config struct {
	// Device is the serial device path. It is also the port recorded in the
	// log document.
	Device string
	// BaudRate is used to open the device and is enforced in the document.
	BaudRate int
	// DataFile is the path of the JSON log document.
	DataFile string
	// MaxRecords bounds the number of records kept in the document.
	MaxRecords int
	// SyncWindow is how long after start frames are discarded as noise.
	SyncWindow time.Duration
	// IdleInterval is the pause after a read that returned nothing.
	IdleInterval time.Duration
	// ReadTimeout bounds a single device read.
	ReadTimeout time.Duration
}

// DefaultConfig returns a Config with every field set to its default.
func DefaultConfig() Config {
	var cfg Config
	cfg.SetDefaults()
	return cfg
}

// SetDefaults fills zero-valued fields. A zero SyncWindow is kept as the
// default window; use a negative value to disable the gate.
func (c *Config) SetDefaults() {
	if c.Device == "" {
		c.Device = DefaultDevice
	}
	if c.BaudRate == 0 {
		c.BaudRate = DefaultBaudRate
	}
	if c.DataFile == "" {
		c.DataFile = DefaultDataFile
	}
	if c.MaxRecords == 0 {
		c.MaxRecords = DefaultMaxRecords
	}
	if c.SyncWindow == 0 {
		c.SyncWindow = DefaultSyncWindow
	}
	if c.IdleInterval == 0 {
		c.IdleInterval = DefaultIdleInterval
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
}

// Validate checks a defaulted Config. Errors wrap ErrInvalidConfig.
func (c Config) Validate() error {
	switch {
	case c.BaudRate < 0:
		return fmt.Errorf("%w: baud rate must be positive, got %d", domain.ErrInvalidConfig, c.BaudRate)
	case c.MaxRecords < 0:
		return fmt.Errorf("%w: max records must be positive, got %d", domain.ErrInvalidConfig, c.MaxRecords)
	case c.IdleInterval < 0:
		return fmt.Errorf("%w: idle interval must be positive, got %s", domain.ErrInvalidConfig, c.IdleInterval)
	case c.ReadTimeout < 0:
		return fmt.Errorf("%w: read timeout must be positive, got %s", domain.ErrInvalidConfig, c.ReadTimeout)
	}
	return nil
}

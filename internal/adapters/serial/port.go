// Package serial opens the sensor board's serial device as a ports.ByteSource.
package serial

import (
	"fmt"
	"time"

	bugserial "go.bug.st/serial"

	"github.com/bft-labs/moisturelog/internal/domain"
)

// DefaultReadTimeout bounds a single read; an expired read returns no bytes.
const DefaultReadTimeout = 100 * time.Millisecond

// Config describes how the device is opened.
type Config struct {
	Device      string
	BaudRate    int
	ReadTimeout time.Duration
}

// Port is an open serial device. Reads return 0, nil when nothing arrived
// within the read timeout.
type Port struct {
	port bugserial.Port
	name string
}

// Open opens and configures the device for 8N1 at cfg.BaudRate and discards
// anything already buffered by the driver. Failures wrap domain.ErrDevice.
func Open(cfg Config) (*Port, error) {
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}

	mode := &bugserial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		Parity:   bugserial.NoParity,
		StopBits: bugserial.OneStopBit,
	}
	p, err := bugserial.Open(cfg.Device, mode)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", domain.ErrDevice, cfg.Device, err)
	}

	if err := configure(p, cfg.ReadTimeout); err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("%w: configure %s: %w", domain.ErrDevice, cfg.Device, err)
	}

	return &Port{port: p, name: cfg.Device}, nil
}

func configure(p bugserial.Port, timeout time.Duration) error {
	if err := p.SetReadTimeout(timeout); err != nil {
		return err
	}
	if err := p.ResetInputBuffer(); err != nil {
		return err
	}
	return p.ResetOutputBuffer()
}

// Read reads whatever bytes are available.
func (p *Port) Read(b []byte) (int, error) {
	return p.port.Read(b)
}

// Close releases the device.
func (p *Port) Close() error {
	return p.port.Close()
}

// Name returns the device path.
func (p *Port) Name() string {
	return p.name
}

// Devices lists the serial devices present on the system.
func Devices() ([]string, error) {
	return bugserial.GetPortsList()
}

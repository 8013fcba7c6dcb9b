package domain

import "time"

// TimestampLayout is the layout of Record.Timestamp: local time, second
// precision, no zone offset.
const TimestampLayout = "2006-01-02T15:04:05"

// RelayStatus is the state reported for the relay.
type RelayStatus int

const (
	RelayOff RelayStatus = iota
	RelayOn
)

// String returns the persisted representation ("OFF" or "ON").
func (s RelayStatus) String() string {
	if s == RelayOn {
		return "ON"
	}
	return "OFF"
}

// Reading is one parsed telemetry frame.
type Reading struct {
	Humidity  float64
	Relay     RelayStatus
	Threshold float64
}

// Record is a Reading stamped with the time it was stored.
type Record struct {
	Timestamp   string `json:"timestamp"`
	Humidity    Real   `json:"humidity"`
	RelayStatus string `json:"relay_status"`
	Threshold   Real   `json:"threshold"`
}

// NewRecord builds the persisted form of r taken at t.
func NewRecord(r Reading, t time.Time) Record {
	return Record{
		Timestamp:   t.Local().Format(TimestampLayout),
		Humidity:    Real(r.Humidity),
		RelayStatus: r.Relay.String(),
		Threshold:   Real(r.Threshold),
	}
}

// DeviceConfig is the device description recorded alongside the data.
type DeviceConfig struct {
	Port     string `json:"port"`
	BaudRate int    `json:"baud_rate"`
}

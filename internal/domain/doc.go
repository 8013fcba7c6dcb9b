// Package domain contains the core domain entities and value objects for moisturelog.
//
// This package represents the innermost layer of the Clean Architecture. It has
// no dependencies on infrastructure concerns (serial ports, file system, logging)
// and contains only pure business logic.
//
// # Entities
//
//   - [Reading]: One validated telemetry frame (humidity, relay status, threshold)
//   - [Record]: A Reading stamped with its local acquisition time, as persisted
//   - [DeviceConfig]: The port/baud pair recorded in the log document
//
// # Design Principles
//
// Domain entities are:
//   - Only constructed fully valid (a failed parse yields no Reading)
//   - Free of infrastructure dependencies
//   - Testable without mocks or external systems
package domain

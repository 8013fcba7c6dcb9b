// Package ports defines the interfaces (ports) that connect the application
// layer to infrastructure adapters.
//
// In Clean Architecture / Hexagonal Architecture, ports are the boundaries
// between the application core and the outside world. They define what the
// application needs from external systems without specifying how those needs
// are fulfilled.
//
// # Port Interfaces
//
//   - [ByteSource]: Raw byte stream from the sensor device
//   - [DocumentStorage]: Persists and loads the log document bytes
//   - [Logger]: Structured logging abstraction
//
// # Usage
//
// The application layer (internal/app) and the core packages (internal/frame,
// internal/logstore) depend only on these interfaces. Infrastructure adapters
// (internal/adapters) implement them with concrete implementations (serial
// port, file system, zerolog, in-memory test doubles).
package ports

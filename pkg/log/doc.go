// Package log exposes the structured logging interface used by moisturelog
// and ready-made implementations of it.
//
// Use the console logger for human-readable output:
//
//	logger := log.NewConsole(os.Stderr, "debug")
//
// Wrap an existing zerolog logger:
//
//	logger := log.NewZerolog(zerolog.New(os.Stderr))
//
// Or discard everything:
//
//	logger := log.Noop()
//
// Any type with Debug, Info, Warn and Error methods taking a message and
// fields satisfies [Logger].
package log

// Package moisturelog provides an embeddable bridge between a soil-moisture
// sensor board on a serial line and a bounded JSON log document.
//
// The board emits lines such as
//
//	MOISTURE:42.5,RELAY:1,THRESHOLD:65.0
//
// terminated by CR or LF. Every valid line becomes one record in the log
// document, which keeps at most [Config.MaxRecords] records and repairs
// itself when it finds the file damaged or hand-edited.
//
// # Basic Usage
//
//	b, err := moisturelog.New(moisturelog.Config{
//	    Device:   "/dev/ttyACM0",
//	    DataFile: "data_log.json",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := b.Start(ctx); err != nil {
//	    log.Fatal(err) // errors.Is(err, moisturelog.ErrDevice)
//	}
//	// ... run until shutdown signal ...
//	_ = b.Stop()
//
// Frames arriving during the first [Config.SyncWindow] after Start are
// dropped as start-up noise.
//
// # Event Handling
//
// Implement [EventHandler] (embedding [BaseEventHandler] for defaults) and
// pass it with [WithEventHandler]. Handlers run on the acquisition goroutine
// and must not call Start, Stop or Stats.
//
// # Replay and Testing
//
// [WithByteSource] replaces the serial device with any [ByteSource], for
// example a captured session; the bridge stops by itself at io.EOF.
// [WithStorage] replaces the document file.
//
// # Lifecycle States
//
// A Bridge is in one of [StateStopped], [StateStarting], [StateRunning],
// [StateStopping] or [StateCrashed]. Use [Bridge.Status] to query it and
// [Bridge.Done] to wait for the end of a run.
package moisturelog

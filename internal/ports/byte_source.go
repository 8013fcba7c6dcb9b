package ports

// ByteSource is the raw device stream frames are read from.
// A serial port opened with a read timeout satisfies this interface.
type ByteSource interface {
	// Read reads up to len(p) bytes into p.
	// Returns 0, nil when no byte is currently available (would block);
	// the caller should wait and retry.
	// Returns io.EOF when the stream has ended for good.
	Read(p []byte) (int, error)

	// Close releases the device.
	Close() error
}


package ports

import "context"

// DocumentStorage holds the raw bytes of the log document.
// The log store decodes, repairs and re-encodes; storage only moves bytes.
type DocumentStorage interface {
	// Load returns the stored document.
	// Returns nil bytes and nil error if no document exists yet.
	// Returns an error only for actual read failures.
	Load(ctx context.Context) ([]byte, error)

	// Save replaces the stored document with data in one step.
	// The implementation should use atomic writes (e.g., write to temp file, then rename)
	// so readers never observe a half-written document.
	Save(ctx context.Context, data []byte) error
}

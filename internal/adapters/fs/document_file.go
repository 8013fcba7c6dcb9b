// Package fs stores the log document on the local file system.
package fs

import (
	"context"
	"os"
	"path/filepath"
)

// DocumentFile implements ports.DocumentStorage using a single file.
type DocumentFile struct {
	path string
	perm os.FileMode
}

// NewDocumentFile creates a DocumentFile for the given path. The file is
// written world-readable (0644) so other tools can follow it.
func NewDocumentFile(path string) *DocumentFile {
	return &DocumentFile{path: path, perm: 0o644}
}

// Load reads the whole document.
// Returns nil bytes and nil error if the file does not exist.
func (f *DocumentFile) Load(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

// Save replaces the document atomically: the bytes are written and synced
// to a temp file beside the target, which is then renamed over it.
func (f *DocumentFile) Save(ctx context.Context, data []byte) error {
	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	tmp := f.path + ".tmp"
	if err := f.writeTemp(tmp, data); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, f.path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// writeTemp writes data to tmp with f.perm, whatever mode a leftover file
// at tmp had.
func (f *DocumentFile) writeTemp(tmp string, data []byte) error {
	file, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.perm)
	if err != nil {
		return err
	}
	if _, err := file.Write(data); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Sync(); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}
	return os.Chmod(tmp, f.perm)
}

// Path returns the full path to the document file.
func (f *DocumentFile) Path() string {
	return f.path
}

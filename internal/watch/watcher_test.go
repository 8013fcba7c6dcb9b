package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	logAdapter "github.com/bft-labs/moisturelog/internal/adapters/log"
	"github.com/bft-labs/moisturelog/internal/logstore"
)

const oneRecord = `{
  "config": {
    "port": "/dev/ttyACM0",
    "baud_rate": 9600
  },
  "data": [
    {
      "timestamp": "2025-03-14T09:26:53",
      "humidity": 42.5,
      "relay_status": "ON",
      "threshold": 65.0
    }
  ]
}
`

func TestWatcher_DeliversInitialAndRewrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data_log.json")

	w := New(path, logAdapter.NewNoopLogger(), WithDebounce(10*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	snaps := make(chan logstore.Snapshot, 8)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(s logstore.Snapshot) { snaps <- s })
	}()

	initial := receive(t, snaps)
	if initial.Len() != 0 {
		t.Errorf("initial records = %d, want 0", initial.Len())
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("watcher created the document: %v", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(oneRecord), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}

	updated := receive(t, snaps)
	if updated.Len() != 1 {
		t.Fatalf("records after rewrite = %d, want 1", updated.Len())
	}
	rec, ok := updated.Latest()
	if !ok || rec.Humidity != 42.5 || rec.RelayStatus != "ON" {
		t.Errorf("Latest() = %+v, %v", rec, ok)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data_log.json")
	w := New(path, logAdapter.NewNoopLogger(), WithDebounce(10*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	snaps := make(chan logstore.Snapshot, 8)
	go func() { _ = w.Run(ctx, func(s logstore.Snapshot) { snaps <- s }) }()
	receive(t, snaps)

	if err := os.WriteFile(filepath.Join(dir, "other.json"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case s := <-snaps:
		t.Errorf("unexpected delivery for unrelated file: %d records", s.Len())
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_MissingDirectory(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "absent", "data_log.json"), logAdapter.NewNoopLogger())
	if err := w.Run(context.Background(), func(logstore.Snapshot) {}); err == nil {
		t.Error("Run() = nil, want error for missing directory")
	}
}

func receive(t *testing.T, ch <-chan logstore.Snapshot) logstore.Snapshot {
	t.Helper()
	select {
	case s := <-ch:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot delivered")
		return logstore.Snapshot{}
	}
}

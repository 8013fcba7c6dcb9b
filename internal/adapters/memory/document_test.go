package memory

import (
	"context"
	"errors"
	"testing"
)

func TestDocumentStore(t *testing.T) {
	ctx := context.Background()
	s := NewDocumentStore(nil)

	data, err := s.Load(ctx)
	if err != nil || data != nil {
		t.Fatalf("Load() = %q, %v; want nil, nil", data, err)
	}

	if err := s.Save(ctx, []byte("abc")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	data, _ = s.Load(ctx)
	data[0] = 'x'
	if string(s.Bytes()) != "abc" {
		t.Errorf("stored bytes aliased by Load result: %q", s.Bytes())
	}
	if s.Saves() != 1 {
		t.Errorf("Saves() = %d, want 1", s.Saves())
	}

	boom := errors.New("disk full")
	s.SaveErr = boom
	if err := s.Save(ctx, []byte("def")); !errors.Is(err, boom) {
		t.Fatalf("Save() error = %v, want %v", err, boom)
	}
	if string(s.Bytes()) != "abc" {
		t.Errorf("failed save changed bytes: %q", s.Bytes())
	}
}

package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"gofinances/internal/storage"
)

func TestSQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "test.db")

	s, err := New(path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer s.Close()

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := s.Set(ctx, "k", []byte(`["a"]`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Set(ctx, "k", []byte(`["b"]`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, err := s.Get(ctx, "k")
	if err != nil || string(got) != `["b"]` {
		t.Fatalf("unexpected value %q err=%v", got, err)
	}

	if err := s.Remove(ctx, "k"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := s.Get(ctx, "k"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after remove, got %v", err)
	}
}

func TestSQLiteStoreReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := New(path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := s.Set(ctx, storage.UserKey("1"), []byte(`{"id":"1"}`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	s.Close()

	// migrations must be idempotent on reopen
	s, err = New(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	got, err := s.Get(ctx, storage.UserKey("1"))
	if err != nil || string(got) != `{"id":"1"}` {
		t.Fatalf("unexpected value %q err=%v", got, err)
	}
}

package memory

import (
	"context"
	"errors"
	"testing"

	"gofinances/internal/storage"
)

func TestMemoryStoreGetSetRemove(t *testing.T) {
	ctx := context.Background()
	s := New()

	if _, err := s.Get(ctx, "k"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	buf := []byte(`[1]`)
	if err := s.Set(ctx, "k", buf); err != nil {
		t.Fatalf("set: %v", err)
	}
	buf[1] = '9' // caller mutation must not leak into the store

	got, err := s.Get(ctx, "k")
	if err != nil || string(got) != `[1]` {
		t.Fatalf("unexpected get: %q err=%v", got, err)
	}

	if err := s.Remove(ctx, "k"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("expected empty store, got %d keys", s.Len())
	}
	// removing an absent key is not an error
	if err := s.Remove(ctx, "k"); err != nil {
		t.Fatalf("remove absent: %v", err)
	}
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	s := New()

	var out []string
	found, err := storage.GetJSON(ctx, s, storage.UserKey("42"), &out)
	if err != nil || found {
		t.Fatalf("expected absent key, found=%v err=%v", found, err)
	}

	if err := storage.SetJSON(ctx, s, storage.UserKey("42"), []string{"a", "b"}); err != nil {
		t.Fatalf("set json: %v", err)
	}
	found, err = storage.GetJSON(ctx, s, storage.UserKey("42"), &out)
	if err != nil || !found || len(out) != 2 {
		t.Fatalf("unexpected get json: %v found=%v err=%v", out, found, err)
	}

	_ = s.Set(ctx, "bad", []byte("{"))
	if _, err := storage.GetJSON(ctx, s, "bad", &out); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestTransactionsKey(t *testing.T) {
	if got := storage.TransactionsKey("42"); got != "@gofinances:transactions_user:42" {
		t.Fatalf("unexpected key %q", got)
	}
	if got := storage.UserKey("42"); got != "@gofinances:user:42" {
		t.Fatalf("unexpected user key %q", got)
	}
}

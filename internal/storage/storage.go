// Package storage defines the key-value persistence collaborator: opaque JSON
// documents addressed by namespaced string keys.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

const namespace = "@gofinances"

// ReadyKey is read by readiness checks; it never holds a value.
const ReadyKey = namespace + ":ready"

// ErrNotFound is returned by Store.Get when the key holds no value.
var ErrNotFound = errors.New("storage: key not found")

// Store persists raw values by key. Implementations must be safe for concurrent use.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	Close() error
}

// TransactionsKey is the key holding every transaction of userID.
func TransactionsKey(userID string) string {
	return namespace + ":transactions_user:" + userID
}

// UserKey is the key holding the session profile of userID.
func UserKey(userID string) string {
	return namespace + ":user:" + userID
}

// GetJSON decodes the value at key into v. It reports false when the key is absent.
func GetJSON(ctx context.Context, s Store, key string, v any) (bool, error) {
	data, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it at key.
func SetJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.Set(ctx, key, data); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

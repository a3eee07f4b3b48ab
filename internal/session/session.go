// Package session persists the profile of each signed-in user.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gofinances/internal/storage"
)

var ErrInvalidUser = errors.New("user id and name are required")

// User is the profile returned by the identity provider.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Photo string `json:"photo,omitempty"`
}

// Manager keeps one session per user id.
type Manager struct {
	store storage.Store
}

func NewManager(store storage.Store) *Manager {
	return &Manager{store: store}
}

// SignIn stores user as the session of user.ID, replacing any previous one.
func (m *Manager) SignIn(ctx context.Context, user User) error {
	if strings.TrimSpace(user.ID) == "" || strings.TrimSpace(user.Name) == "" {
		return ErrInvalidUser
	}
	if err := storage.SetJSON(ctx, m.store, storage.UserKey(user.ID), user); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Current returns the session of userID, reporting false when there is none.
func (m *Manager) Current(ctx context.Context, userID string) (User, bool, error) {
	if strings.TrimSpace(userID) == "" {
		return User{}, false, nil
	}
	var u User
	found, err := storage.GetJSON(ctx, m.store, storage.UserKey(userID), &u)
	if err != nil {
		return User{}, false, fmt.Errorf("load session: %w", err)
	}
	if !found || u.ID != userID {
		return User{}, false, nil
	}
	return u, true, nil
}

// SignOut forgets the session of userID. Stored transactions are kept.
func (m *Manager) SignOut(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrInvalidUser
	}
	if err := m.store.Remove(ctx, storage.UserKey(userID)); err != nil {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

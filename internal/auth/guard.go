// Package auth gates authenticated-only surfaces on the presence of a
// persisted token. Presence is all this layer checks: validity and expiry
// are the backend's business, and a stale token simply fails on first use.
package auth

import (
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/mekaroindia/mekaro/internal/backend"
	"github.com/mekaroindia/mekaro/internal/store"
)

var ErrNotAuthenticated = errors.New("not authenticated")

type Guard struct {
	durable store.Store
	session store.Store
	log     *slog.Logger
}

func NewGuard(durable, session store.Store, log *slog.Logger) *Guard {
	return &Guard{durable: durable, session: session, log: log}
}

// Token returns the persisted auth token, if any. Implements
// backend.TokenSource.
func (g *Guard) Token() (string, bool) {
	raw, ok, err := g.durable.Get(store.KeyToken)
	if err != nil {
		g.log.Warn("failed to read token", "error", err)
		return "", false
	}
	if !ok || len(raw) == 0 {
		return "", false
	}
	return string(raw), true
}

// Require fails with ErrNotAuthenticated when no token is present. The
// caller decides what "redirect to login" means on its surface.
func (g *Guard) Require() error {
	if _, ok := g.Token(); !ok {
		return ErrNotAuthenticated
	}
	return nil
}

func (g *Guard) SetToken(token string) error {
	return g.durable.Set(store.KeyToken, []byte(token))
}

// Logout drops the token and the session-cached profile.
func (g *Guard) Logout() error {
	if err := g.durable.Delete(store.KeyToken); err != nil {
		return err
	}
	return g.session.Delete(store.KeyProfile)
}

// CacheProfile stores the fetched profile for the session, so repeated
// views don't refetch it.
func (g *Guard) CacheProfile(user *backend.User) {
	raw, err := json.Marshal(user)
	if err != nil {
		g.log.Warn("failed to cache profile", "error", err)
		return
	}
	if err := g.session.Set(store.KeyProfile, raw); err != nil {
		g.log.Warn("failed to cache profile", "error", err)
	}
}

func (g *Guard) CachedProfile() (*backend.User, bool) {
	raw, ok, err := g.session.Get(store.KeyProfile)
	if err != nil || !ok {
		return nil, false
	}
	var user backend.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, false
	}
	return &user, true
}

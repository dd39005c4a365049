// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session holds client-side login state for admin clients: a typed
// state holder and a countdown timer that logs the client out when the
// bearer token expires.
package session

import (
	"sync"
	"time"
)

// Identity is the authenticated user as returned by the login endpoint.
type Identity struct {
	UserID int64
	Name   string
	Role   string
	Avatar string
}

// State holds the current login. All access goes through typed methods;
// there is deliberately no string-keyed map underneath.
type State struct {
	mu        sync.RWMutex
	token     string
	identity  Identity
	expiresAt time.Time
}

// NewState returns an empty, unauthenticated state.
func NewState() *State {
	return &State{}
}

// SetLogin replaces the stored login after a successful authentication.
func (s *State) SetLogin(token string, id Identity, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.identity = id
	s.expiresAt = expiresAt
}

// SetToken replaces only the token and expiry, keeping the identity.
// Used after a successful refresh.
func (s *State) SetToken(token string, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.expiresAt = expiresAt
}

// Clear wipes the login.
func (s *State) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.identity = Identity{}
	s.expiresAt = time.Time{}
}

// Token returns the bearer token, empty when logged out.
func (s *State) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Identity returns the logged-in user.
func (s *State) Identity() Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity
}

// ExpiresAt returns the token expiry, zero when logged out.
func (s *State) ExpiresAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiresAt
}

// Authenticated reports whether a login is present.
func (s *State) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// RefreshFunc exchanges the current token for a fresh one at the server.
type RefreshFunc func(ctx context.Context, token string) (newToken string, expiresAt time.Time, err error)

// Timer counts down to token expiry on a one second tick. When the
// remaining time reaches zero it clears the state and fires OnExpire
// exactly once; the expiry is a hard cutoff, not a warning.
type Timer struct {
	state   *State
	refresh RefreshFunc

	// OnTick receives the remaining time each second, formatted HH:MM:SS.
	OnTick func(remaining time.Duration, display string)
	// OnExpire fires once when the countdown reaches zero.
	OnExpire func()

	now func() time.Time

	mu      sync.Mutex
	stopCh  chan struct{}
	stopped bool
	expired bool
}

// NewTimer creates a countdown timer over the given state. refresh may be
// nil when token extension is not offered.
func NewTimer(state *State, refresh RefreshFunc) *Timer {
	return &Timer{
		state:   state,
		refresh: refresh,
		now:     time.Now,
	}
}

// Start runs the countdown in its own goroutine until Stop is called or
// the token expires.
func (t *Timer) Start() {
	t.mu.Lock()
	if t.stopCh != nil && !t.stopped {
		t.mu.Unlock()
		return
	}
	t.stopCh = make(chan struct{})
	t.stopped = false
	t.expired = false
	stopCh := t.stopCh
	t.mu.Unlock()

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-stopCh:
				return
			case <-ticker.C:
				if t.tick() {
					return
				}
			}
		}
	}()
}

// Stop halts the countdown without touching the state.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopCh != nil && !t.stopped {
		close(t.stopCh)
		t.stopped = true
	}
}

// tick advances the countdown once. Returns true when the timer has
// finished and the goroutine should exit.
func (t *Timer) tick() bool {
	remaining := t.state.ExpiresAt().Sub(t.now())

	if remaining <= 0 {
		t.mu.Lock()
		alreadyExpired := t.expired
		t.expired = true
		t.stopped = true
		t.mu.Unlock()

		if !alreadyExpired {
			t.state.Clear()
			if t.OnExpire != nil {
				t.OnExpire()
			}
		}
		return true
	}

	if t.OnTick != nil {
		t.OnTick(remaining, FormatRemaining(remaining))
	}
	return false
}

// Extend asks the server for a fresh token. On success the state is
// updated with the new token and expiry; on failure the state is left
// untouched and the error returned.
func (t *Timer) Extend(ctx context.Context) error {
	if t.refresh == nil {
		return fmt.Errorf("token refresh not configured")
	}

	token, expiresAt, err := t.refresh(ctx, t.state.Token())
	if err != nil {
		return fmt.Errorf("extending session: %w", err)
	}

	t.state.SetToken(token, expiresAt)
	return nil
}

// FormatRemaining renders a duration as HH:MM:SS, clamping negatives to
// 00:00:00.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

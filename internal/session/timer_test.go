// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"testing"
	"time"
)

func loggedInState(expiresIn time.Duration, base time.Time) *State {
	s := NewState()
	s.SetLogin("token-1", Identity{UserID: 1, Name: "Admin", Role: "admin"}, base.Add(expiresIn))
	return s
}

func TestFormatRemaining(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{2*time.Hour + 3*time.Minute + 4*time.Second, "02:03:04"},
		{59 * time.Second, "00:00:59"},
		{time.Hour, "01:00:00"},
		{0, "00:00:00"},
		{-time.Minute, "00:00:00"},
		{25 * time.Hour, "25:00:00"},
	}
	for _, tt := range tests {
		if got := FormatRemaining(tt.d); got != tt.want {
			t.Errorf("FormatRemaining(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestTimer_TickReportsRemaining(t *testing.T) {
	base := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	state := loggedInState(90*time.Second, base)

	tm := NewTimer(state, nil)
	tm.now = func() time.Time { return base }

	var gotDisplay string
	tm.OnTick = func(_ time.Duration, display string) { gotDisplay = display }

	if done := tm.tick(); done {
		t.Fatal("timer should not finish with time remaining")
	}
	if gotDisplay != "00:01:30" {
		t.Errorf("display = %q, want 00:01:30", gotDisplay)
	}
}

func TestTimer_ExpiryClearsStateOnce(t *testing.T) {
	base := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	state := loggedInState(time.Second, base)

	tm := NewTimer(state, nil)
	current := base
	tm.now = func() time.Time { return current }

	expirations := 0
	tm.OnExpire = func() { expirations++ }

	current = base.Add(2 * time.Second)
	if done := tm.tick(); !done {
		t.Fatal("timer should finish past expiry")
	}
	// A straggler tick must not fire OnExpire again.
	tm.tick()

	if expirations != 1 {
		t.Errorf("OnExpire fired %d times, want 1", expirations)
	}
	if state.Authenticated() {
		t.Error("state should be cleared at expiry")
	}
	if state.Token() != "" {
		t.Error("token should be wiped at expiry")
	}
}

func TestTimer_ExtendSuccess(t *testing.T) {
	base := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	state := loggedInState(time.Minute, base)
	newExpiry := base.Add(2 * time.Hour)

	refresh := func(_ context.Context, token string) (string, time.Time, error) {
		if token != "token-1" {
			t.Errorf("refresh received token %q, want token-1", token)
		}
		return "token-2", newExpiry, nil
	}

	tm := NewTimer(state, refresh)
	if err := tm.Extend(context.Background()); err != nil {
		t.Fatalf("Extend: %v", err)
	}

	if state.Token() != "token-2" {
		t.Errorf("token = %q, want token-2", state.Token())
	}
	if !state.ExpiresAt().Equal(newExpiry) {
		t.Errorf("expiry = %v, want %v", state.ExpiresAt(), newExpiry)
	}
	if state.Identity().Name != "Admin" {
		t.Error("identity should survive a refresh")
	}
}

func TestTimer_ExtendFailureLeavesState(t *testing.T) {
	base := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	state := loggedInState(time.Minute, base)
	origExpiry := state.ExpiresAt()

	refresh := func(context.Context, string) (string, time.Time, error) {
		return "", time.Time{}, errors.New("server unavailable")
	}

	tm := NewTimer(state, refresh)
	if err := tm.Extend(context.Background()); err == nil {
		t.Fatal("expected error from failed refresh")
	}

	if state.Token() != "token-1" {
		t.Errorf("token = %q, want token-1 untouched", state.Token())
	}
	if !state.ExpiresAt().Equal(origExpiry) {
		t.Errorf("expiry changed on failed refresh: %v", state.ExpiresAt())
	}
}

func TestTimer_ExtendWithoutRefreshFunc(t *testing.T) {
	state := loggedInState(time.Minute, time.Now())
	tm := NewTimer(state, nil)

	if err := tm.Extend(context.Background()); err == nil {
		t.Error("expected error when refresh is not configured")
	}
}

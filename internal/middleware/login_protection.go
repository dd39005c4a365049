// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/olegiv/corpcms-go/internal/util"
)

// LoginProtectionConfig tunes brute-force protection on the login endpoint.
type LoginProtectionConfig struct {
	// RequestsPerSecond per source IP for login attempts.
	RequestsPerSecond float64
	// Burst allows short bursts above the sustained rate.
	Burst int
	// MaxFailedAttempts before an account is locked.
	MaxFailedAttempts int
	// LockoutDuration is the initial lockout; it doubles with each
	// subsequent lockout up to MaxLockoutDuration.
	LockoutDuration    time.Duration
	MaxLockoutDuration time.Duration
	// AttemptWindow is how far back failed attempts are counted.
	AttemptWindow time.Duration
}

// DefaultLoginProtectionConfig returns conservative defaults: one login
// attempt every two seconds per IP and a 15 minute lockout after five
// failures.
func DefaultLoginProtectionConfig() LoginProtectionConfig {
	return LoginProtectionConfig{
		RequestsPerSecond:  0.5,
		Burst:              5,
		MaxFailedAttempts:  5,
		LockoutDuration:    15 * time.Minute,
		MaxLockoutDuration: 24 * time.Hour,
		AttemptWindow:      15 * time.Minute,
	}
}

type accountState struct {
	failures     []time.Time
	lockedUntil  time.Time
	lockoutCount int
}

// LoginProtection combines a per-IP rate limit with per-account lockout.
// Both maps live in memory; restarting the process clears them, which is
// acceptable for an admin back office.
type LoginProtection struct {
	cfg        LoginProtectionConfig
	ipLimiters *limiterCache[string]

	mu       sync.Mutex
	accounts map[string]*accountState

	stopCh chan struct{}
}

// NewLoginProtection creates login protection and starts its background
// cleanup loop.
func NewLoginProtection(cfg LoginProtectionConfig) *LoginProtection {
	lp := &LoginProtection{
		cfg:        cfg,
		ipLimiters: newLimiterCache[string](rate.Limit(cfg.RequestsPerSecond), cfg.Burst, 10000),
		accounts:   make(map[string]*accountState),
		stopCh:     make(chan struct{}),
	}
	go lp.cleanupLoop()
	return lp
}

// Close stops the cleanup loop.
func (lp *LoginProtection) Close() {
	close(lp.stopCh)
}

// Middleware rate-limits login POSTs per source IP.
func (lp *LoginProtection) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			next.ServeHTTP(w, r)
			return
		}

		ip := util.ClientIP(r)
		if !lp.ipLimiters.get(ip).Allow() {
			slog.Warn("login rate limit exceeded",
				"category", "auth", "ip", ip)
			w.Header().Set("Retry-After", "2")
			WriteAPIError(w, http.StatusTooManyRequests, "rate_limited",
				"Too many login attempts, slow down", nil)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// IsAccountLocked reports whether the account is currently locked and, if
// so, for how much longer.
func (lp *LoginProtection) IsAccountLocked(email string) (bool, time.Duration) {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	st, ok := lp.accounts[normalizeEmail(email)]
	if !ok {
		return false, 0
	}

	remaining := time.Until(st.lockedUntil)
	if remaining <= 0 {
		return false, 0
	}
	return true, remaining
}

// RecordFailedAttempt registers a failed login. When the failure count
// within the window reaches the threshold the account is locked, with the
// lockout doubling on each repeat.
func (lp *LoginProtection) RecordFailedAttempt(email string) {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	key := normalizeEmail(email)
	st, ok := lp.accounts[key]
	if !ok {
		st = &accountState{}
		lp.accounts[key] = st
	}

	now := time.Now()
	cutoff := now.Add(-lp.cfg.AttemptWindow)
	kept := st.failures[:0]
	for _, t := range st.failures {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	st.failures = append(kept, now)

	if len(st.failures) >= lp.cfg.MaxFailedAttempts {
		lockout := lp.cfg.LockoutDuration
		for i := 0; i < st.lockoutCount; i++ {
			lockout *= 2
			if lockout >= lp.cfg.MaxLockoutDuration {
				lockout = lp.cfg.MaxLockoutDuration
				break
			}
		}
		st.lockedUntil = now.Add(lockout)
		st.lockoutCount++
		st.failures = nil

		slog.Warn("account locked after repeated login failures",
			"category", "auth", "lockout", lockout.String())
	}
}

// RecordSuccessfulLogin clears failure tracking for the account.
func (lp *LoginProtection) RecordSuccessfulLogin(email string) {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	delete(lp.accounts, normalizeEmail(email))
}

// RemainingAttempts returns how many failures are left before lockout.
func (lp *LoginProtection) RemainingAttempts(email string) int {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	st, ok := lp.accounts[normalizeEmail(email)]
	if !ok {
		return lp.cfg.MaxFailedAttempts
	}

	cutoff := time.Now().Add(-lp.cfg.AttemptWindow)
	n := 0
	for _, t := range st.failures {
		if t.After(cutoff) {
			n++
		}
	}
	remaining := lp.cfg.MaxFailedAttempts - n
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (lp *LoginProtection) cleanupLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-lp.stopCh:
			return
		case <-ticker.C:
			lp.cleanup()
		}
	}
}

// cleanup drops account records with no recent failures and no active
// lockout.
func (lp *LoginProtection) cleanup() {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-lp.cfg.AttemptWindow)
	for key, st := range lp.accounts {
		if st.lockedUntil.After(now) {
			continue
		}
		active := false
		for _, t := range st.failures {
			if t.After(cutoff) {
				active = true
				break
			}
		}
		if !active {
			delete(lp.accounts, key)
		}
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/olegiv/corpcms-go/internal/store"
)

// Token verification errors. Handlers map these onto the API error taxonomy:
// missing/expired/invalid all end as 401 with a distinct code.
var (
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// Claims carried by a bearer token. Role is embedded so authorization does
// not need a user lookup per request; a role change takes effect when the
// token is next issued.
type Claims struct {
	UserID int64  `json:"uid"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Issuer signs and validates bearer tokens over a server secret.
// Both operations are pure; no state is consulted beyond the secret and TTL.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer creates a token issuer with the given signing secret and TTL.
func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// NewIssuerWithClock creates an issuer with an injectable clock for tests.
func NewIssuerWithClock(secret string, ttl time.Duration, now func() time.Time) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl, now: now}
}

// TTL returns the fixed token lifetime.
func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

// Issue signs a token for the user with expiry = now + TTL.
func (i *Issuer) Issue(user store.User) (string, time.Time, error) {
	now := i.now().UTC()
	expiresAt := now.Add(i.ttl)

	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify validates a raw token string and returns its claims.
// Returns ErrMissingToken for empty input, ErrExpiredToken for a lapsed TTL,
// and ErrInvalidToken for anything else that fails validation.
func (i *Issuer) Verify(raw string) (*Claims, error) {
	if raw == "" {
		return nil, ErrMissingToken
	}

	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Refresh re-issues a token from a still-valid one, extending the expiry by
// the fixed TTL. No other state is validated: the original claims are carried
// over as-is.
func (i *Issuer) Refresh(raw string) (string, time.Time, error) {
	claims, err := i.Verify(raw)
	if err != nil {
		return "", time.Time{}, err
	}

	return i.Issue(store.User{
		ID:    claims.UserID,
		Email: claims.Email,
		Role:  claims.Role,
	})
}

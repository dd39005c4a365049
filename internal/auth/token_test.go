package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/olegiv/corpcms-go/internal/model"
	"github.com/olegiv/corpcms-go/internal/store"
)

const testSecret = "unit-test-secret-0123456789abcdef"

func testUser() store.User {
	return store.User{ID: 42, Email: "editor@example.com", Role: model.RoleEditor}
}

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewIssuer(testSecret, 2*time.Hour)

	token, expiresAt, err := issuer.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if token == "" {
		t.Fatal("Issue returned empty token")
	}
	if until := time.Until(expiresAt); until < time.Hour || until > 3*time.Hour {
		t.Errorf("expiresAt %s not ~2h out", expiresAt)
	}

	claims, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if claims.UserID != 42 || claims.Email != "editor@example.com" || claims.Role != model.RoleEditor {
		t.Errorf("claims = %+v, want id=42 email=editor@example.com role=editor", claims)
	}
}

func TestVerify_Expired(t *testing.T) {
	now := time.Now()
	issuer := NewIssuerWithClock(testSecret, time.Hour, func() time.Time { return now })

	token, _, err := issuer.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	// Advance the clock past the TTL
	now = now.Add(time.Hour + time.Minute)

	_, err = issuer.Verify(token)
	if !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("Verify error = %v, want ErrExpiredToken", err)
	}
}

func TestVerify_Missing(t *testing.T) {
	issuer := NewIssuer(testSecret, time.Hour)
	if _, err := issuer.Verify(""); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("Verify(\"\") error = %v, want ErrMissingToken", err)
	}
}

func TestVerify_BadSignature(t *testing.T) {
	issuer := NewIssuer(testSecret, time.Hour)
	other := NewIssuer("different-secret-0123456789abcdef!", time.Hour)

	token, _, err := other.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	if _, err := issuer.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("Verify error = %v, want ErrInvalidToken", err)
	}
}

func TestVerify_Garbage(t *testing.T) {
	issuer := NewIssuer(testSecret, time.Hour)
	if _, err := issuer.Verify("not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("Verify error = %v, want ErrInvalidToken", err)
	}
}

func TestRefresh_ExtendsExpiry(t *testing.T) {
	now := time.Now()
	issuer := NewIssuerWithClock(testSecret, time.Hour, func() time.Time { return now })

	token, firstExpiry, err := issuer.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	// 30 minutes later the token is still valid; refresh extends by a full TTL
	now = now.Add(30 * time.Minute)

	refreshed, newExpiry, err := issuer.Refresh(token)
	if err != nil {
		t.Fatalf("Refresh error: %v", err)
	}
	if !newExpiry.After(firstExpiry) {
		t.Errorf("refreshed expiry %s not after original %s", newExpiry, firstExpiry)
	}

	claims, err := issuer.Verify(refreshed)
	if err != nil {
		t.Fatalf("Verify of refreshed token error: %v", err)
	}
	if claims.UserID != 42 || claims.Role != model.RoleEditor {
		t.Errorf("refreshed claims = %+v", claims)
	}
}

func TestRefresh_ExpiredRejected(t *testing.T) {
	now := time.Now()
	issuer := NewIssuerWithClock(testSecret, time.Hour, func() time.Time { return now })

	token, _, err := issuer.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	now = now.Add(2 * time.Hour)

	if _, _, err := issuer.Refresh(token); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("Refresh error = %v, want ErrExpiredToken", err)
	}
}

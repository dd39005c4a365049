package config

import (
	"testing"
	"time"
)

const strongSecret = "Abc123!xyz-0987654321-QWERTYUIOPas"

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("CORPCMS_JWT_SECRET", strongSecret)
}

func TestLoad_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.DBDriver != "sqlite" {
		t.Errorf("DBDriver = %q, want sqlite", cfg.DBDriver)
	}
	if cfg.TokenTTL != 2*time.Hour {
		t.Errorf("TokenTTL = %s, want 2h", cfg.TokenTTL)
	}
	if cfg.ServerAddr() != "localhost:8080" {
		t.Errorf("ServerAddr() = %q", cfg.ServerAddr())
	}
	if !cfg.IsDevelopment() {
		t.Error("IsDevelopment() = false, want true")
	}
	if cfg.UseRedisCache() {
		t.Error("UseRedisCache() = true with no redis URL")
	}
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("CORPCMS_JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("Load() succeeded without a JWT secret")
	}
}

func TestLoad_ShortSecret(t *testing.T) {
	t.Setenv("CORPCMS_JWT_SECRET", "too-short")

	if _, err := Load(); err == nil {
		t.Fatal("Load() accepted a short JWT secret")
	}
}

func TestLoad_WeakSecret(t *testing.T) {
	t.Setenv("CORPCMS_JWT_SECRET", "change-me-to-32-byte-secret-key!")

	if _, err := Load(); err == nil {
		t.Fatal("Load() accepted a known default secret")
	}
}

func TestLoad_InvalidDriver(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("CORPCMS_DB_DRIVER", "postgres")

	if _, err := Load(); err == nil {
		t.Fatal("Load() accepted an unsupported DB driver")
	}
}

func TestHasMinimumEntropy(t *testing.T) {
	tests := []struct {
		secret string
		want   bool
	}{
		{"abcdefgh", false},
		{"abcDEF123", true},
		{"abc-DEF-123", true},
		{"12345678", false},
	}
	for _, tt := range tests {
		if got := hasMinimumEntropy(tt.secret); got != tt.want {
			t.Errorf("hasMinimumEntropy(%q) = %v, want %v", tt.secret, got, tt.want)
		}
	}
}

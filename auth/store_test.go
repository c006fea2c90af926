package auth

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestFileCache_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tpi", "token")
	cache := NewFileCache(path)

	token, err := cache.Get()
	if err != nil || token != "" {
		t.Fatalf("missing file should read as empty, got %q, %v", token, err)
	}

	if err := cache.Store("abc123"); err != nil {
		t.Fatalf("Store() failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("expected mode 0600, got %o", perm)
	}

	if err := os.WriteFile(path, []byte("abc123\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if token, _ := cache.Get(); token != "abc123" {
		t.Errorf("expected trimmed token, got %q", token)
	}

	if err := cache.Erase(); err != nil {
		t.Fatalf("Erase() failed: %v", err)
	}
	if err := cache.Erase(); err != nil {
		t.Errorf("erasing twice should not fail, got %v", err)
	}
	if cache.Path() != path {
		t.Errorf("unexpected path %q", cache.Path())
	}
}

func TestFileCache_StoreLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	cache := NewFileCache(filepath.Join(dir, "token"))
	for _, tok := range []string{"one", "two"} {
		if err := cache.Store(tok); err != nil {
			t.Fatalf("Store() failed: %v", err)
		}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the token file, got %d entries", len(entries))
	}
	if tok, _ := cache.Get(); tok != "two" {
		t.Errorf("expected last stored token, got %q", tok)
	}
}

func TestDefaultCachePath(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")
	t.Setenv("HOME", "/tmp/home")
	path, err := DefaultCachePath()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Base(path) != "token" || filepath.Base(filepath.Dir(path)) != "tpi" {
		t.Errorf("unexpected cache path %q", path)
	}
}

func TestExpired(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	sign := func(claims jwt.Claims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
		if err != nil {
			t.Fatal(err)
		}
		return s
	}

	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{"opaque", "0123456789abcdef", false},
		{"no exp", sign(jwt.RegisteredClaims{Subject: "root"}), false},
		{"future", sign(jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))}), false},
		{"past", sign(jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute))}), true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := expired(tc.token, now); got != tc.want {
				t.Errorf("expired() = %v, want %v", got, tc.want)
			}
		})
	}
}

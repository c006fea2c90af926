package auth

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenStore persists a bearer token between invocations.
type TokenStore interface {
	// Path describes where the token lives, for messages.
	Path() string
	// Get returns the stored token, or "" when none is stored.
	Get() (string, error)
	// Store replaces the stored token.
	Store(token string) error
	// Erase removes the stored token. Erasing an empty store is not an error.
	Erase() error
}

// FileCache stores the token in a single file readable only by its owner.
type FileCache struct {
	path string
}

// NewFileCache returns a cache backed by path.
func NewFileCache(path string) *FileCache {
	return &FileCache{path: path}
}

// DefaultCachePath returns $XDG_CACHE_HOME/tpi/token (or the platform
// equivalent).
func DefaultCachePath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("auth: locating cache directory: %w", err)
	}
	return filepath.Join(dir, "tpi", "token"), nil
}

// Path implements TokenStore.
func (c *FileCache) Path() string { return c.path }

// Get implements TokenStore.
func (c *FileCache) Get() (string, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("auth: reading token cache: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Store implements TokenStore. The file is replaced atomically with mode 0600.
func (c *FileCache) Store(token string) error {
	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("auth: creating cache directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".token-*")
	if err != nil {
		return fmt.Errorf("auth: writing token cache: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("auth: writing token cache: %w", err)
	}
	if _, err := tmp.WriteString(token); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("auth: writing token cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("auth: writing token cache: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path); err != nil {
		return fmt.Errorf("auth: writing token cache: %w", err)
	}
	return nil
}

// Erase implements TokenStore.
func (c *FileCache) Erase() error {
	if err := os.Remove(c.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("auth: removing token cache: %w", err)
	}
	return nil
}

// expired reports whether token is a JWT whose exp claim is not after now.
// Opaque tokens never expire client-side; the BMC decides with a 401.
func expired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !exp.After(now)
}

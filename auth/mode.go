package auth

import (
	"context"
	"fmt"

	"github.com/kbukum/tpictl/errors"
)

// Mode selects how requests are authenticated.
type Mode int

const (
	// ModeToken sends the first attempt without credentials and escalates
	// to a bearer token on 401.
	ModeToken Mode = iota
	// ModeTrusted never attaches a token and never retries.
	ModeTrusted
)

// String returns the configuration name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeToken:
		return "token"
	case ModeTrusted:
		return "trusted"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode accepts "token" and "trusted". An empty string selects ModeToken.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "token":
		return ModeToken, nil
	case "trusted":
		return ModeTrusted, nil
	default:
		return 0, fmt.Errorf("auth: unknown mode %q (want token or trusted)", s)
	}
}

// Authenticator supplies bearer tokens. Implementations must be safe for
// concurrent use.
type Authenticator interface {
	// Mode reports the fixed authentication mode.
	Mode() Mode
	// Token returns a bearer token, performing a login if needed.
	Token(ctx context.Context) (string, error)
}

type trusted struct{}

// Trusted is the authenticator for callers the BMC already trusts.
var Trusted Authenticator = trusted{}

func (trusted) Mode() Mode { return ModeTrusted }

func (trusted) Token(context.Context) (string, error) {
	return "", errors.Unauthorized("trusted mode does not use tokens")
}

// TokenFunc adapts an ordinary function to a ModeToken Authenticator.
//
//	a := auth.TokenFunc(func(ctx context.Context) (string, error) {
//	    return os.Getenv("TPI_TOKEN"), nil
//	})
type TokenFunc func(ctx context.Context) (string, error)

// Mode implements Authenticator.
func (f TokenFunc) Mode() Mode { return ModeToken }

// Token implements Authenticator.
func (f TokenFunc) Token(ctx context.Context) (string, error) { return f(ctx) }

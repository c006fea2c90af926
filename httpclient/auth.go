package httpclient

import "net/http"

// AuthType identifies the authentication method.
type AuthType int

const (
	// AuthNone leaves the request untouched.
	AuthNone AuthType = iota
	// AuthBearer sets an "Authorization: Bearer <token>" header.
	AuthBearer
)

// AuthConfig describes the credential attached to a single attempt.
type AuthConfig struct {
	// Type is the authentication method.
	Type AuthType
	// Token is the bearer token (AuthBearer).
	Token string
}

// BearerAuth creates a bearer token auth config.
func BearerAuth(token string) *AuthConfig {
	return &AuthConfig{Type: AuthBearer, Token: token}
}

// Apply attaches the credential to req. A nil config is a no-op.
func (a *AuthConfig) Apply(req *http.Request) {
	if a == nil {
		return
	}
	switch a.Type {
	case AuthBearer:
		req.Header.Set("Authorization", "Bearer "+a.Token)
	}
}

// HasBearer reports whether req carries a bearer credential.
func HasBearer(req *http.Request) bool {
	v := req.Header.Get("Authorization")
	return len(v) > len("Bearer ") && v[:len("Bearer ")] == "Bearer "
}

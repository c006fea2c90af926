package httpclient

import (
	"net/http"
	"testing"
)

func TestBearerAuth(t *testing.T) {
	req, _ := http.NewRequest("GET", "http://example.com", nil)
	BearerAuth("my-token").Apply(req)
	if got := req.Header.Get("Authorization"); got != "Bearer my-token" {
		t.Errorf("got %q, want %q", got, "Bearer my-token")
	}
	if !HasBearer(req) {
		t.Error("expected HasBearer=true")
	}
}

func TestNilAuth(t *testing.T) {
	var auth *AuthConfig
	req, _ := http.NewRequest("GET", "http://example.com", nil)
	auth.Apply(req)
	if HasBearer(req) {
		t.Error("nil auth should not set Authorization")
	}
}

func TestAuthNone(t *testing.T) {
	req, _ := http.NewRequest("GET", "http://example.com", nil)
	(&AuthConfig{Type: AuthNone, Token: "ignored"}).Apply(req)
	if req.Header.Get("Authorization") != "" {
		t.Error("AuthNone should not set Authorization header")
	}
}

func TestHasBearer_OtherSchemes(t *testing.T) {
	req, _ := http.NewRequest("GET", "http://example.com", nil)
	req.SetBasicAuth("u", "p")
	if HasBearer(req) {
		t.Error("basic auth is not a bearer credential")
	}
	req.Header.Set("Authorization", "Bearer ")
	if HasBearer(req) {
		t.Error("empty bearer token should not count")
	}
}

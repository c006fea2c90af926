package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/kbukum/tpictl/api"
)

// Attempt is one request received by the fake BMC.
type Attempt struct {
	Method        string
	Path          string
	Query         string
	Authorization string
	ContentType   string
	Body          []byte
}

// BMCOption configures a fake BMC.
type BMCOption func(*BMC)

// WithUser sets the credentials accepted by the login endpoint.
func WithUser(username, password string) BMCOption {
	return func(b *BMC) { b.username, b.password = username, password }
}

// WithToken sets the token issued on login and required on /api/bmc.
func WithToken(token string) BMCOption {
	return func(b *BMC) { b.token = token }
}

// WithoutAuth makes /api/bmc accept requests without a token.
func WithoutAuth() BMCOption {
	return func(b *BMC) { b.open = true }
}

// WithHandler serves authorized /api/bmc requests with h instead of the
// default JSON success body.
func WithHandler(h http.HandlerFunc) BMCOption {
	return func(b *BMC) { b.handler = h }
}

// WithLoginStatus makes the login endpoint answer status with body
// regardless of the credentials.
func WithLoginStatus(status int, body string) BMCOption {
	return func(b *BMC) { b.loginStatus, b.loginBody = status, body }
}

// BMC is a fake board management controller.
type BMC struct {
	username    string
	password    string
	token       string
	open        bool
	handler     http.HandlerFunc
	loginStatus int
	loginBody   string

	mu       sync.Mutex
	server   *httptest.Server
	attempts []Attempt
	logins   int
}

// NewBMC starts a fake BMC that is stopped when t ends. Defaults: user
// "root" / "turing", token "test-token", authentication required.
func NewBMC(t testing.TB, opts ...BMCOption) *BMC {
	t.Helper()
	b := newBMC(opts...)
	T(t).Setup(b)
	return b
}

func newBMC(opts ...BMCOption) *BMC {
	b := &BMC{username: "root", password: "turing", token: "test-token"}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Name implements TestComponent.
func (b *BMC) Name() string { return "bmc" }

// Start implements TestComponent.
func (b *BMC) Start(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.server != nil {
		return fmt.Errorf("bmc already started")
	}
	b.server = httptest.NewServer(b)
	return nil
}

// Stop implements TestComponent.
func (b *BMC) Stop(context.Context) error {
	b.mu.Lock()
	srv := b.server
	b.server = nil
	b.mu.Unlock()
	if srv != nil {
		srv.Close()
	}
	return nil
}

// Reset implements TestComponent. It forgets recorded attempts and logins.
func (b *BMC) Reset(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.attempts = nil
	b.logins = 0
	return nil
}

// Snapshot implements TestComponent. The snapshot is the recorded attempts.
func (b *BMC) Snapshot(context.Context) (interface{}, error) {
	return b.Attempts(), nil
}

// Restore implements TestComponent.
func (b *BMC) Restore(_ context.Context, snapshot interface{}) error {
	attempts, ok := snapshot.([]Attempt)
	if !ok {
		return fmt.Errorf("bmc: unexpected snapshot type %T", snapshot)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.attempts = append([]Attempt(nil), attempts...)
	return nil
}

// URL returns the server base URL.
func (b *BMC) URL() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.server == nil {
		return ""
	}
	return b.server.URL
}

// Target returns the /api/bmc target of the running server.
func (b *BMC) Target() api.Target {
	t, err := api.ParseTarget(b.URL())
	if err != nil {
		panic(err)
	}
	return t
}

// Token returns the token issued on login.
func (b *BMC) Token() string { return b.token }

// Attempts returns a copy of every request received, logins included.
func (b *BMC) Attempts() []Attempt {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Attempt(nil), b.attempts...)
}

// APIAttempts returns the received requests other than logins.
func (b *BMC) APIAttempts() []Attempt {
	var out []Attempt
	for _, a := range b.Attempts() {
		if a.Path != api.AuthenticatePath {
			out = append(out, a)
		}
	}
	return out
}

// Logins returns the number of login requests received.
func (b *BMC) Logins() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.logins
}

// ServeHTTP implements http.Handler.
func (b *BMC) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	b.mu.Lock()
	b.attempts = append(b.attempts, Attempt{
		Method:        r.Method,
		Path:          r.URL.Path,
		Query:         r.URL.RawQuery,
		Authorization: r.Header.Get("Authorization"),
		ContentType:   r.Header.Get("Content-Type"),
		Body:          body,
	})
	b.mu.Unlock()

	if r.URL.Path == api.AuthenticatePath {
		b.serveLogin(w, r, body)
		return
	}
	if !b.open && r.Header.Get("Authorization") != "Bearer "+b.token {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if b.handler != nil {
		b.handler(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, `{"response":[{"result":"ok"}]}`)
}

func (b *BMC) serveLogin(w http.ResponseWriter, r *http.Request, body []byte) {
	b.mu.Lock()
	b.logins++
	b.mu.Unlock()

	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if b.loginStatus != 0 {
		w.WriteHeader(b.loginStatus)
		_, _ = io.WriteString(w, b.loginBody)
		return
	}

	var creds struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.Unmarshal(body, &creds); err != nil {
		http.Error(w, "malformed login request", http.StatusBadRequest)
		return
	}
	if creds.Username != b.username || creds.Password != b.password {
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, "wrong username or password")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"id": b.token})
}

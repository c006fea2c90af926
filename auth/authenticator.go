package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/singleflight"

	"github.com/kbukum/tpictl/api"
	"github.com/kbukum/tpictl/errors"
	"github.com/kbukum/tpictl/httpclient"
	"github.com/kbukum/tpictl/logger"
)

const instrumentationName = "github.com/kbukum/tpictl/auth"

// TokenAuthenticator obtains tokens from a cache, pre-supplied credentials
// or an interactive prompt, in that order.
type TokenAuthenticator struct {
	login    api.Target
	client   *httpclient.Client
	creds    Credentials
	prompter Prompter
	store    TokenStore
	log      *logger.Logger
	logins   metric.Int64Counter
	now      func() time.Time

	mu     sync.Mutex
	token  string
	loaded bool

	group singleflight.Group
}

// Option configures a TokenAuthenticator.
type Option func(*TokenAuthenticator)

// WithCredentials sets pre-supplied credentials. A username without a
// password is passed to the prompter.
func WithCredentials(c Credentials) Option {
	return func(a *TokenAuthenticator) { a.creds = c }
}

// WithPrompter sets the interactive fallback.
func WithPrompter(p Prompter) Option {
	return func(a *TokenAuthenticator) { a.prompter = p }
}

// WithStore enables token caching.
func WithStore(s TokenStore) Option {
	return func(a *TokenAuthenticator) { a.store = s }
}

// WithLogger overrides the component logger.
func WithLogger(l *logger.Logger) Option {
	return func(a *TokenAuthenticator) { a.log = l }
}

// NewTokenAuthenticator returns an authenticator that logs in against the
// host of target.
func NewTokenAuthenticator(target api.Target, client *httpclient.Client, opts ...Option) *TokenAuthenticator {
	a := &TokenAuthenticator{
		login:  target.Authenticate(),
		client: client,
		log:    logger.WithComponent("auth"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	logins, err := otel.Meter(instrumentationName).Int64Counter("bmc.auth.logins",
		metric.WithDescription("Credential logins against the BMC"),
	)
	if err != nil {
		a.log.Debug("login counter unavailable", logger.Fields(logger.FieldError, err.Error()))
	}
	a.logins = logins
	return a
}

// Mode implements Authenticator.
func (a *TokenAuthenticator) Mode() Mode { return ModeToken }

// Token implements Authenticator.
func (a *TokenAuthenticator) Token(ctx context.Context) (string, error) {
	a.mu.Lock()
	token := a.token
	a.mu.Unlock()
	if token != "" {
		return token, nil
	}

	// The shared acquisition outlives any single caller; each caller stops
	// waiting when its own context is done.
	ch := a.group.DoChan("token", func() (any, error) {
		return a.acquire(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

// Invalidate forgets the in-memory token and erases the cache, so the next
// Token call logs in again.
func (a *TokenAuthenticator) Invalidate() error {
	a.mu.Lock()
	a.token = ""
	a.loaded = true
	a.mu.Unlock()

	if a.store == nil {
		return nil
	}
	if err := a.store.Erase(); err != nil {
		return err
	}
	a.log.Debug("token cache erased", logger.Fields(logger.FieldPath, a.store.Path()))
	return nil
}

// Login exchanges credentials for a token without consulting or updating
// the cache.
func (a *TokenAuthenticator) Login(ctx context.Context, creds Credentials) (string, error) {
	payload, err := json.Marshal(map[string]string{
		"username": creds.Username,
		"password": creds.Password,
	})
	if err != nil {
		return "", errors.Internal(err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.login.String(), bytes.NewReader(payload))
	if err != nil {
		return "", errors.Internal(err)
	}
	req.Header.Set("Content-Type", "application/json")

	a.log.Debug("logging in", logger.Fields(logger.FieldURL, a.login.String()))
	resp, err := a.client.Execute(ctx, req)
	if err != nil {
		a.count(ctx, "transport")
		if httpclient.IsCanceled(err) {
			return "", err
		}
		if httpclient.IsTimeout(err) {
			return "", errors.Timeout("login").WithCause(err)
		}
		return "", errors.ConnectionFailed(a.login.Hostname()).WithCause(err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		var body struct {
			ID string `json:"id"`
		}
		if err := resp.DecodeJSON(&body); err != nil || body.ID == "" {
			a.count(ctx, "malformed")
			if err == nil {
				err = fmt.Errorf("login response carries no token")
			}
			return "", errors.InvalidToken().WithCause(err)
		}
		a.count(ctx, "ok")
		return body.ID, nil
	case http.StatusForbidden:
		a.count(ctx, "forbidden")
		return "", errors.Forbidden(string(bytes.TrimSpace(resp.Body)))
	default:
		a.count(ctx, "unexpected")
		return "", errors.ExternalServiceError("BMC",
			fmt.Errorf("unexpected status code %d", resp.StatusCode)).WithDetail("status", resp.StatusCode)
	}
}

func (a *TokenAuthenticator) acquire(ctx context.Context) (string, error) {
	token, err := a.cached()
	switch {
	case err == nil && token != "":
		return token, nil
	case errors.HasCode(err, errors.ErrCodeTokenExpired):
		a.log.Debug("cached token rejected", logger.Fields(logger.FieldError, err.Error()))
	}

	creds := a.creds
	if !creds.Complete() {
		if a.prompter == nil {
			return "", errors.Unauthorized("no credentials available (use --user and --password)")
		}
		if creds, err = a.prompter.PromptCredentials(ctx, creds.Username); err != nil {
			return "", err
		}
	}

	token, err = a.Login(ctx, creds)
	if err != nil {
		return "", err
	}

	a.mu.Lock()
	a.token = token
	a.loaded = true
	a.mu.Unlock()
	a.persist(token)
	return token, nil
}

// cached loads the stored token once per process. An expired JWT is
// erased and reported as TOKEN_EXPIRED.
func (a *TokenAuthenticator) cached() (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.token != "" || a.loaded || a.store == nil {
		return a.token, nil
	}
	a.loaded = true

	token, err := a.store.Get()
	if err != nil {
		a.log.Warn("could not read token cache", logger.Fields(logger.FieldPath, a.store.Path(), logger.FieldError, err.Error()))
		return "", nil
	}
	if token == "" {
		return "", nil
	}
	if expired(token, a.now()) {
		if err := a.store.Erase(); err != nil {
			a.log.Warn("could not erase token cache", logger.Fields(logger.FieldPath, a.store.Path(), logger.FieldError, err.Error()))
		}
		return "", errors.TokenExpired().WithDetail("path", a.store.Path())
	}
	a.log.Debug("using cached token", logger.Fields(logger.FieldPath, a.store.Path()))
	a.token = token
	return token, nil
}

func (a *TokenAuthenticator) persist(token string) {
	if a.store == nil {
		return
	}
	if err := a.store.Store(token); err != nil {
		a.log.Warn("could not cache token", logger.Fields(logger.FieldPath, a.store.Path(), logger.FieldError, err.Error()))
	}
}

func (a *TokenAuthenticator) count(ctx context.Context, outcome string) {
	if a.logins == nil {
		return
	}
	a.logins.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

package request

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/kbukum/tpictl/api"
	"github.com/kbukum/tpictl/auth"
	"github.com/kbukum/tpictl/httpclient"
)

// State is the position of a Request in its lifecycle.
type State int

const (
	// Building means no method has been selected yet.
	Building State = iota
	// Ready means the envelope is built and Send may be called.
	Ready
	// Attempting means Send is in progress.
	Attempting
	// Done means Send returned.
	Done
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Building:
		return "building"
	case Ready:
		return "ready"
	case Attempting:
		return "attempting"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Request is an authenticated BMC request. It is not safe for concurrent
// use; the authenticator and transport it holds are.
type Request struct {
	target    api.Target
	auth      auth.Authenticator
	transport *httpclient.Client
	envelope  *Envelope
	body      Body
	state     State
}

// New returns a request for target. Call Get or Post before Send.
func New(target api.Target, authenticator auth.Authenticator, transport *httpclient.Client) *Request {
	return &Request{
		target:    target,
		auth:      authenticator,
		transport: transport,
	}
}

// Target returns the request target.
func (r *Request) Target() api.Target { return r.target }

// State returns the lifecycle state.
func (r *Request) State() State { return r.state }

// Get selects GET on the current target. It replaces any envelope built
// before and panics if the target does not form a valid absolute URL.
func (r *Request) Get() *Request {
	return r.selectMethod(http.MethodGet, r.target)
}

// Post selects POST on the current target. See Get.
func (r *Request) Post() *Request {
	return r.selectMethod(http.MethodPost, r.target)
}

// GetTarget replaces the target and selects GET on it.
func (r *Request) GetTarget(t api.Target) *Request {
	return r.selectMethod(http.MethodGet, t)
}

// PostTarget replaces the target and selects POST on it.
func (r *Request) PostTarget(t api.Target) *Request {
	return r.selectMethod(http.MethodPost, t)
}

// SetMultipart attaches a multipart form, replacing any previous body.
func (r *Request) SetMultipart(form *Multipart) {
	if form == nil {
		r.body = nil
		return
	}
	r.body = form
}

// SetBody attaches b, replacing any previous body. A nil body sends none.
func (r *Request) SetBody(b Body) {
	r.body = b
}

// URL returns the built URL. The caller may adjust it before Send.
// Panics before Get or Post.
func (r *Request) URL() *url.URL {
	return r.mustEnvelope().URL
}

// Header returns the built header set. The caller may add headers before
// Send. Panics before Get or Post.
func (r *Request) Header() http.Header {
	return r.mustEnvelope().Header
}

// Send performs the request. In auth.ModeToken a 401 answer to the
// unauthenticated attempt triggers one authenticated retry; in
// auth.ModeTrusted exactly one attempt is made. Every status, a second 401
// included, is returned as a response. Errors come from the authenticator
// (*TokenError), from the transport (*httpclient.Error) or from a body
// that cannot be replayed.
//
// Send panics if neither Get nor Post was called.
func (r *Request) Send(ctx context.Context) (*httpclient.Response, error) {
	envelope := r.mustEnvelope()
	r.state = Attempting
	defer func() { r.state = Done }()

	mode := r.auth.Mode()
	// Trusted callers start out authenticated and are never escalated.
	authenticated := mode == auth.ModeTrusted

	for {
		attempt := envelope.Clone()

		var token string
		if authenticated && mode == auth.ModeToken {
			var err error
			if token, err = r.auth.Token(ctx); err != nil {
				return nil, &TokenError{Err: err}
			}
		}
		if err := ctx.Err(); err != nil {
			return nil, httpclient.NewCanceledError(err)
		}

		req, src, err := attempt.build(ctx, r.body)
		if err != nil {
			return nil, bodyError(err)
		}
		if token != "" {
			httpclient.BearerAuth(token).Apply(req)
		}

		resp, err := r.transport.Execute(ctx, req)
		if err != nil {
			if rerr := src.readErr(); rerr != nil {
				return nil, bodyError(rerr)
			}
			return nil, err
		}

		if resp.IsUnauthorized() && !authenticated {
			// No token is worth asking for if the body cannot be sent again.
			if !replayable(r.body) {
				return nil, bodyError(ErrBodyNotReplayable)
			}
			authenticated = true
			continue
		}
		return resp, nil
	}
}

func (r *Request) selectMethod(method string, t api.Target) *Request {
	if t.IsZero() {
		panic("request: target has no host")
	}
	u := t.URL()
	if u.Scheme == "" || u.Host == "" {
		panic(fmt.Sprintf("request: invalid target URL %q", u))
	}
	r.target = t
	r.envelope = &Envelope{
		Method: method,
		URL:    u,
		Header: make(http.Header),
	}
	r.state = Ready
	return r
}

func (r *Request) mustEnvelope() *Envelope {
	if r.envelope == nil {
		panic("request: Get or Post must be called before using the request")
	}
	return r.envelope
}

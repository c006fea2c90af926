package api

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

const (
	// BasePath is the path every BMC management call is routed through.
	BasePath = "/api/bmc"
	// AuthenticatePath is the credential login endpoint.
	AuthenticatePath = "/api/bmc/authenticate"
)

// Param is one query pair. Order is kept because the firmware parses the
// query positionally in places.
type Param struct {
	Key   string
	Value string
}

// Target is an immutable request destination.
type Target struct {
	scheme string
	host   string
	path   string
	params []Param
}

// NewTarget returns the base target for host using the scheme selected by
// version. host may carry a port.
func NewTarget(host string, version Version) (Target, error) {
	host = strings.TrimSpace(host)
	if host == "" {
		return Target{}, fmt.Errorf("api: empty host")
	}
	if strings.Contains(host, "://") {
		return Target{}, fmt.Errorf("api: host %q must not include a scheme", host)
	}
	if strings.ContainsAny(host, "/?#") {
		return Target{}, fmt.Errorf("api: host %q must not include a path or query", host)
	}
	return Target{scheme: version.Scheme(), host: host, path: BasePath}, nil
}

// MustTarget is like NewTarget but panics on error.
func MustTarget(host string, version Version) Target {
	t, err := NewTarget(host, version)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseTarget builds a target from an absolute URL such as an
// httptest.Server URL. The path defaults to BasePath and the query is kept.
func ParseTarget(raw string) (Target, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Target{}, fmt.Errorf("api: parse %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return Target{}, fmt.Errorf("api: unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return Target{}, fmt.Errorf("api: %q has no host", raw)
	}
	t := Target{scheme: u.Scheme, host: u.Host, path: u.Path}
	if t.path == "" || t.path == "/" {
		t.path = BasePath
	}
	for _, pair := range strings.Split(u.RawQuery, "&") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		if k, err = url.QueryUnescape(k); err != nil {
			return Target{}, fmt.Errorf("api: query of %q: %w", raw, err)
		}
		if v, err = url.QueryUnescape(v); err != nil {
			return Target{}, fmt.Errorf("api: query of %q: %w", raw, err)
		}
		t.params = append(t.params, Param{Key: k, Value: v})
	}
	return t, nil
}

// Scheme returns the URL scheme.
func (t Target) Scheme() string { return t.scheme }

// Host returns host[:port].
func (t Target) Host() string { return t.host }

// Hostname returns the host without a port.
func (t Target) Hostname() string {
	if h, _, err := net.SplitHostPort(t.host); err == nil {
		return h
	}
	return t.host
}

// Path returns the request path.
func (t Target) Path() string { return t.path }

// Params returns a copy of the query pairs.
func (t Target) Params() []Param {
	out := make([]Param, len(t.params))
	copy(out, t.params)
	return out
}

// IsZero reports whether t was never initialized.
func (t Target) IsZero() bool { return t.host == "" }

// With returns a copy of t with key=value appended to the query.
func (t Target) With(key, value string) Target {
	out := t.clone()
	out.params = append(out.params, Param{Key: key, Value: value})
	return out
}

// WithPath returns a copy of t with a different path.
func (t Target) WithPath(path string) Target {
	out := t.clone()
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	out.path = path
	return out
}

// WithoutParams returns a copy of t with an empty query.
func (t Target) WithoutParams() Target {
	out := t
	out.params = nil
	return out
}

// Get returns the legacy read descriptor opt=get&type=name.
func (t Target) Get(name string) Target {
	return t.WithoutParams().With("opt", "get").With("type", name)
}

// Set returns the legacy write descriptor opt=set&type=name.
func (t Target) Set(name string) Target {
	return t.WithoutParams().With("opt", "set").With("type", name)
}

// Authenticate returns the login endpoint on the same host.
func (t Target) Authenticate() Target {
	return t.WithoutParams().WithPath(AuthenticatePath)
}

// URL returns the absolute URL. Each call returns a fresh value.
func (t Target) URL() *url.URL {
	u := &url.URL{Scheme: t.scheme, Host: t.host, Path: t.path}
	if len(t.params) > 0 {
		parts := make([]string, 0, len(t.params))
		for _, p := range t.params {
			parts = append(parts, url.QueryEscape(p.Key)+"="+url.QueryEscape(p.Value))
		}
		u.RawQuery = strings.Join(parts, "&")
	}
	return u
}

// String returns the absolute URL as text.
func (t Target) String() string {
	if t.IsZero() {
		return ""
	}
	return t.URL().String()
}

func (t Target) clone() Target {
	out := t
	out.params = t.Params()
	return out
}

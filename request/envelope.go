package request

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"net/url"
	"sync"
)

// Envelope is the body-less part of a request: method, URL and headers.
// Cloning an envelope is always possible because it never owns a body.
type Envelope struct {
	Method string
	URL    *url.URL
	Header http.Header
}

// Clone returns a deep copy of e.
func (e *Envelope) Clone() *Envelope {
	u := *e.URL
	if e.URL.User != nil {
		user := *e.URL.User
		u.User = &user
	}
	return &Envelope{
		Method: e.Method,
		URL:    &u,
		Header: e.Header.Clone(),
	}
}

// build turns the envelope and an opened body into an attempt. The
// returned source is nil when there is no body.
func (e *Envelope) build(ctx context.Context, body Body) (*http.Request, *source, error) {
	req := &http.Request{
		Method:     e.Method,
		URL:        e.URL,
		Proto:      "HTTP/1.1",
		ProtoMajor: 1,
		ProtoMinor: 1,
		Header:     e.Header,
		Host:       e.URL.Host,
	}
	req = req.WithContext(ctx)
	if body == nil {
		return req, nil, nil
	}

	rc, contentType, err := body.Open()
	if err != nil {
		return nil, nil, err
	}
	src := &source{ReadCloser: rc}
	req.Body = src
	req.ContentLength = -1
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req, src, nil
}

// source records the first error the body itself returned while the
// transport was reading it.
type source struct {
	io.ReadCloser

	mu     sync.Mutex
	err    error
	closed bool
}

func (s *source) Read(p []byte) (int, error) {
	n, err := s.ReadCloser.Read(p)
	if err != nil && err != io.EOF && !stderrors.Is(err, io.ErrClosedPipe) {
		s.mu.Lock()
		if s.err == nil && !s.closed {
			s.err = err
		}
		s.mu.Unlock()
	}
	return n, err
}

func (s *source) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return s.ReadCloser.Close()
}

// readErr returns the recorded read error, if any.
func (s *source) readErr() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

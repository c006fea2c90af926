package request

import (
	"bytes"
	"errors"
	"io"
	"sync"
)

// ErrBodyNotReplayable is returned when a body that can only be read once
// is needed for a second attempt.
var ErrBodyNotReplayable = errors.New("request: body cannot be replayed")

// Body produces the payload of an attempt. Open is called once per attempt
// and must return a reader positioned at the start of the payload.
type Body interface {
	Open() (rc io.ReadCloser, contentType string, err error)
}

// BodyFunc adapts an ordinary function to the Body interface.
type BodyFunc func() (io.ReadCloser, string, error)

// Open implements Body.
func (f BodyFunc) Open() (io.ReadCloser, string, error) { return f() }

type bytesBody struct {
	data        []byte
	contentType string
}

// Bytes returns a replayable body over data.
func Bytes(data []byte, contentType string) Body {
	return bytesBody{data: data, contentType: contentType}
}

func (b bytesBody) Open() (io.ReadCloser, string, error) {
	return io.NopCloser(bytes.NewReader(b.data)), b.contentType, nil
}

type oneShot struct {
	mu          sync.Mutex
	r           io.Reader
	contentType string
	opened      bool
}

// OneShot wraps a stream that can be sent only once. A second Open returns
// ErrBodyNotReplayable.
func OneShot(r io.Reader, contentType string) Body {
	return &oneShot{r: r, contentType: contentType}
}

func (o *oneShot) Open() (io.ReadCloser, string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.opened {
		return nil, "", ErrBodyNotReplayable
	}
	o.opened = true
	if rc, ok := o.r.(io.ReadCloser); ok {
		return rc, o.contentType, nil
	}
	return io.NopCloser(o.r), o.contentType, nil
}

// Replayable reports whether Open can still succeed.
func (o *oneShot) Replayable() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return !o.opened
}

// replayable reports whether b can be opened for another attempt. Bodies
// are replayable unless they report otherwise.
func replayable(b Body) bool {
	r, ok := b.(interface{ Replayable() bool })
	return !ok || r.Replayable()
}

package request

import (
	stderrors "errors"
	"fmt"

	"github.com/kbukum/tpictl/errors"
	"github.com/kbukum/tpictl/httpclient"
)

// ErrorKind is the broad class of a Send failure.
type ErrorKind int

const (
	// KindUnknown is reported for nil and unrecognized errors.
	KindUnknown ErrorKind = iota
	// KindProgramming means the caller misused the request, e.g. a body
	// that cannot be replayed was needed twice.
	KindProgramming
	// KindAuth means the authenticator could not supply a token.
	KindAuth
	// KindTransport means no response was received.
	KindTransport
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case KindProgramming:
		return "programming"
	case KindAuth:
		return "auth"
	case KindTransport:
		return "transport"
	default:
		return "unknown"
	}
}

// TokenError wraps a failure returned by the authenticator.
type TokenError struct {
	Err error
}

// Error implements the error interface.
func (e *TokenError) Error() string {
	return fmt.Sprintf("request: obtaining token: %v", e.Err)
}

// Unwrap returns the authenticator's error.
func (e *TokenError) Unwrap() error { return e.Err }

// bodyError turns a failed Body.Open, or a body that failed while being
// read, into a returned error. A body that
// cannot be replayed is an internal error, anything else (a firmware image
// that disappeared) is invalid input.
func bodyError(err error) error {
	if stderrors.Is(err, ErrBodyNotReplayable) {
		return errors.Internal(err)
	}
	return errors.InvalidInput("body", err.Error()).WithCause(err)
}

// Classify reports the kind of an error returned by Send.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}
	var tokenErr *TokenError
	switch {
	case stderrors.Is(err, ErrBodyNotReplayable):
		return KindProgramming
	case stderrors.As(err, &tokenErr):
		return KindAuth
	case httpclient.IsTransport(err):
		return KindTransport
	case errors.HasCode(err, errors.ErrCodeInternal):
		return KindProgramming
	default:
		return KindUnknown
	}
}

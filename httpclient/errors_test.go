package httpclient

import (
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"testing"
)

func TestErrorCode_String(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want string
	}{
		{ErrCodeTimeout, "timeout"},
		{ErrCodeConnection, "connection"},
		{ErrCodeTLS, "tls"},
		{ErrCodeCanceled, "canceled"},
		{ErrCodeValidation, "validation"},
		{ErrorCode(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.code.String(); got != tt.want {
			t.Errorf("ErrorCode(%d).String() = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestError_ErrorAndUnwrap(t *testing.T) {
	inner := errors.New("connection refused")
	e := NewConnectionError(inner)
	if got := e.Error(); got != "httpclient: connection: connection refused" {
		t.Errorf("unexpected message %q", got)
	}
	if !errors.Is(e, inner) {
		t.Error("expected errors.Is to reach the cause")
	}
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	expired, cancel2 := context.WithTimeout(context.Background(), 0)
	defer cancel2()
	<-expired.Done()

	tests := []struct {
		name string
		ctx  context.Context
		err  error
		want ErrorCode
	}{
		{"canceled context", canceled, errors.New("x"), ErrCodeCanceled},
		{"deadline context", expired, errors.New("x"), ErrCodeTimeout},
		{"net timeout", context.Background(), fmt.Errorf("dial: %w", timeoutErr{}), ErrCodeTimeout},
		{"unknown authority", context.Background(), fmt.Errorf("get: %w", x509.UnknownAuthorityError{}), ErrCodeTLS},
		{"anything else", context.Background(), errors.New("connection reset"), ErrCodeConnection},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := classify(tc.ctx, tc.err)
			if got.Code != tc.want {
				t.Errorf("expected %s, got %s", tc.want, got.Code)
			}
			if !errors.Is(got, tc.err) {
				t.Error("classified error should wrap the original")
			}
		})
	}
}

func TestPredicates_NonTransportError(t *testing.T) {
	err := errors.New("plain")
	if IsTransport(err) || IsRetryable(err) || IsTimeout(err) || IsTLS(err) {
		t.Error("plain errors are not transport errors")
	}
	if IsRetryable(NewTLSError(err)) {
		t.Error("tls errors are not retryable")
	}
}

package httpclient

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kbukum/tpictl/logger"
)

func newTestClient(t *testing.T, cfg Config) *Client {
	t.Helper()
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return c
}

func TestClient_Execute_GET(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if got := r.URL.Query().Get("type"); got != "info" {
			t.Errorf("expected type=info, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response":[{"result":"ok"}]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, Config{})
	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/bmc?opt=get&type=info", nil)
	resp, err := c.Execute(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.IsSuccess() {
		t.Errorf("expected success, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Content-Type"); got != "application/json" {
		t.Errorf("unexpected content type %q", got)
	}
	var decoded struct {
		Response []map[string]string `json:"response"`
	}
	if err := resp.DecodeJSON(&decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Response[0]["result"] != "ok" {
		t.Errorf("unexpected body %s", resp.Body)
	}
}

func TestClient_Execute_ErrorStatusIsNotAnError(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden, http.StatusInternalServerError} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			_, _ = w.Write([]byte("nope"))
		}))

		c := newTestClient(t, Config{})
		req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
		resp, err := c.Execute(context.Background(), req)
		srv.Close()
		if err != nil {
			t.Fatalf("status %d: unexpected error: %v", status, err)
		}
		if resp.StatusCode != status {
			t.Errorf("expected %d, got %d", status, resp.StatusCode)
		}
		if string(resp.Body) != "nope" {
			t.Errorf("unexpected body %q", resp.Body)
		}
		if !resp.IsError() {
			t.Error("expected IsError=true")
		}
	}
}

func TestClient_Execute_DefaultHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "tpi/test" {
			t.Errorf("expected User-Agent tpi/test, got %q", got)
		}
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("expected Accept from defaults, got %q", got)
		}
		if got := r.Header.Get("X-Custom"); got != "from-request" {
			t.Errorf("request header should win over defaults, got %q", got)
		}
		if r.Header.Get(HeaderRequestID) == "" {
			t.Error("expected a request id")
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := newTestClient(t, Config{
		UserAgent: "tpi/test",
		Headers:   map[string]string{"Accept": "application/json", "X-Custom": "default"},
	})
	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	req.Header.Set("X-Custom", "from-request")
	if _, err := c.Execute(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Header.Get(HeaderRequestID) != "" {
		t.Error("Execute must not mutate the caller's request headers")
	}
}

func TestClient_Execute_RequestIDPerAttempt(t *testing.T) {
	var (
		mu  sync.Mutex
		ids []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		ids = append(ids, r.Header.Get(HeaderRequestID))
		mu.Unlock()
	}))
	defer srv.Close()

	c := newTestClient(t, Config{})
	for i := 0; i < 2; i++ {
		req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
		if _, err := c.Execute(context.Background(), req); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	mu.Lock()
	defer mu.Unlock()
	if len(ids) != 2 || ids[0] == "" || ids[0] == ids[1] {
		t.Errorf("expected two distinct request ids, got %v", ids)
	}
}

func TestClient_Execute_LogsRequestID(t *testing.T) {
	var buf bytes.Buffer
	prev := logger.GetGlobalLogger()
	logger.SetGlobalLogger(logger.NewWithWriter(&logger.Config{Level: "debug", Format: "json"}, "test", &buf))
	t.Cleanup(func() { logger.SetGlobalLogger(prev) })

	var id string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id = r.Header.Get(HeaderRequestID)
	}))
	defer srv.Close()

	c := newTestClient(t, Config{})
	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	if _, err := c.Execute(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id == "" {
		t.Fatal("expected a request id header")
	}
	if want := `"request_id":"` + id + `"`; !strings.Contains(buf.String(), want) {
		t.Errorf("expected %s in log output, got %s", want, buf.String())
	}
}

func TestClient_Execute_ConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := newTestClient(t, Config{})
	req, _ := http.NewRequest(http.MethodGet, url, nil)
	_, err := c.Execute(context.Background(), req)
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsConnection(err) {
		t.Errorf("expected connection error, got %v", err)
	}
	if !IsTransport(err) || !IsRetryable(err) {
		t.Error("connection errors are retryable transport errors")
	}
}

func TestClient_Execute_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := newTestClient(t, Config{Timeout: 20 * time.Millisecond})
	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	_, err := c.Execute(context.Background(), req)
	if !IsTimeout(err) {
		t.Errorf("expected timeout error, got %v", err)
	}
}

func TestClient_Execute_Canceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := newTestClient(t, Config{})
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	_, err := c.Execute(ctx, req)
	if !IsCanceled(err) {
		t.Errorf("expected canceled error, got %v", err)
	}
}

func TestClient_Execute_TLS(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("secure"))
	}))
	defer srv.Close()

	t.Run("self-signed rejected by default", func(t *testing.T) {
		c := newTestClient(t, Config{})
		req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
		_, err := c.Execute(context.Background(), req)
		if !IsTLS(err) {
			t.Errorf("expected tls error, got %v", err)
		}
	})

	t.Run("skip verify accepts self-signed", func(t *testing.T) {
		c := newTestClient(t, Config{TLS: &TLSConfig{SkipVerify: true}})
		req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
		resp, err := c.Execute(context.Background(), req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(resp.Body) != "secure" {
			t.Errorf("unexpected body %q", resp.Body)
		}
	})
}

func TestClient_Execute_NilRequest(t *testing.T) {
	c := newTestClient(t, Config{})
	if _, err := c.Execute(context.Background(), nil); !hasCode(err, ErrCodeValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestClient_Execute_Span(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(prev)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := newTestClient(t, Config{})
	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/bmc", nil)
	BearerAuth("tok").Apply(req)
	if _, err := c.Execute(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	span := spans[0]
	if span.Name() != "bmc POST" {
		t.Errorf("unexpected span name %q", span.Name())
	}
	attrs := map[string]string{}
	for _, kv := range span.Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	if attrs["http.response.status_code"] != "401" {
		t.Errorf("expected status attribute 401, got %q", attrs["http.response.status_code"])
	}
	if attrs["http.request.authenticated"] != "true" {
		t.Errorf("expected authenticated attribute, got %q", attrs["http.request.authenticated"])
	}
	if strings.Contains(attrs["url.full"], "tok") {
		t.Error("token must never appear in span attributes")
	}
}

func TestConfig_Defaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Timeout != defaultTimeout {
		t.Errorf("expected default timeout, got %v", cfg.Timeout)
	}
	if cfg.UserAgent != defaultUserAgent {
		t.Errorf("expected default user agent, got %q", cfg.UserAgent)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := (&Config{}).Validate(); err == nil {
		t.Error("expected error for zero timeout")
	}
}

package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-cleanhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/tpictl/logger"
)

const instrumentationName = "github.com/kbukum/tpictl/httpclient"

// HeaderRequestID carries a per-attempt identifier the BMC can log.
const HeaderRequestID = "X-Request-ID"

// Client executes single HTTP attempts over a shared connection pool.
// It is safe for concurrent use; copying the pointer is the intended way
// to share it.
type Client struct {
	httpClient *http.Client
	config     Config
	tracer     trace.Tracer
	attempts   metric.Int64Counter
	duration   metric.Float64Histogram
	log        *logger.Logger
}

// New creates a new HTTP client with the given configuration.
func New(cfg Config) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	transport := cleanhttp.DefaultPooledTransport()
	if cfg.TLS != nil {
		tlsCfg, err := cfg.TLS.Build()
		if err != nil {
			return nil, err
		}
		if tlsCfg != nil {
			transport.TLSClientConfig = tlsCfg
		}
	}

	meter := otel.Meter(instrumentationName)
	attempts, err := meter.Int64Counter("bmc.request.attempts",
		metric.WithDescription("HTTP attempts sent to the BMC"),
	)
	if err != nil {
		return nil, fmt.Errorf("httpclient: creating attempts counter: %w", err)
	}
	duration, err := meter.Float64Histogram("bmc.request.duration",
		metric.WithDescription("Duration of HTTP attempts sent to the BMC"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("httpclient: creating duration histogram: %w", err)
	}

	return &Client{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		config:   cfg,
		tracer:   otel.Tracer(instrumentationName),
		attempts: attempts,
		duration: duration,
		log:      logger.WithComponent("httpclient"),
	}, nil
}

// Execute sends req once and returns the complete response for any status
// code. The response body is fully read and the connection released before
// Execute returns. Only failures to obtain a response are returned as
// errors, always as *Error.
func (c *Client) Execute(ctx context.Context, req *http.Request) (*Response, error) {
	if req == nil || req.URL == nil {
		return nil, NewValidationError("request has no URL")
	}
	req = req.Clone(ctx)
	c.applyDefaults(req)
	ctx = logger.ContextWithRequestID(ctx, req.Header.Get(HeaderRequestID))

	ctx, span := c.tracer.Start(ctx, "bmc "+req.Method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.full", req.URL.Redacted()),
			attribute.String("server.address", req.URL.Hostname()),
			attribute.String("http.request.id", req.Header.Get(HeaderRequestID)),
			attribute.Bool("http.request.authenticated", HasBearer(req)),
		),
	)
	defer span.End()
	req = req.WithContext(ctx)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	log := c.log.WithContext(ctx).WithFields(logger.Fields(
		logger.FieldMethod, req.Method,
		logger.FieldURL, req.URL.Redacted(),
	))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		cerr := classify(ctx, err)
		span.RecordError(cerr)
		span.SetStatus(codes.Error, cerr.Code.String())
		c.record(ctx, req.Method, cerr.Code.String(), elapsed)
		log.Debug("attempt failed", logger.Fields(logger.FieldError, cerr.Error(), logger.FieldDuration, elapsed.Milliseconds()))
		return nil, cerr
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		cerr := classify(ctx, fmt.Errorf("read response body: %w", err))
		span.RecordError(cerr)
		span.SetStatus(codes.Error, cerr.Code.String())
		return nil, cerr
	}
	elapsed = time.Since(start)

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	if resp.StatusCode >= 500 {
		span.SetStatus(codes.Error, http.StatusText(resp.StatusCode))
	}
	c.record(ctx, req.Method, fmt.Sprintf("%d", resp.StatusCode), elapsed)
	log.Debug("attempt completed", logger.Fields(logger.FieldStatus, resp.StatusCode, logger.FieldDuration, elapsed.Milliseconds()))

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

// Unwrap returns the underlying *http.Client for advanced use cases.
func (c *Client) Unwrap() *http.Client {
	return c.httpClient
}

// CloseIdleConnections releases pooled connections.
func (c *Client) CloseIdleConnections() {
	c.httpClient.CloseIdleConnections()
}

func (c *Client) applyDefaults(req *http.Request) {
	if req.Header == nil {
		req.Header = make(http.Header)
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}
	for k, v := range c.config.Headers {
		if req.Header.Get(k) == "" {
			req.Header.Set(k, v)
		}
	}
	if req.Header.Get(HeaderRequestID) == "" {
		req.Header.Set(HeaderRequestID, uuid.NewString())
	}
}

func (c *Client) record(ctx context.Context, method, outcome string, d time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("outcome", outcome),
	)
	c.attempts.Add(ctx, 1, attrs)
	c.duration.Record(ctx, d.Seconds(), attrs)
}

// Package httpclient is the transport used by the tpi client to reach the
// BMC management API.
//
// A Client wraps one pooled *http.Client and is safe for concurrent use by
// any number of requests. Execute performs exactly one attempt: it never
// retries and never turns an HTTP status into an error. Only failures to
// obtain a response (connection, TLS, timeout, cancellation) are returned
// as *Error values. Deciding what a status means is left to the caller.
//
// # Basic Usage
//
//	client, err := httpclient.New(httpclient.Config{
//	    Timeout: 30 * time.Second,
//	    TLS:     &httpclient.TLSConfig{SkipVerify: true},
//	})
//
//	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, "https://turingpi.local/api/bmc?opt=get&type=info", nil)
//	resp, err := client.Execute(ctx, req)
//
// Each attempt gets an X-Request-ID header and an OpenTelemetry client span.
// Both are no-ops in cost when no tracer provider is installed.
package httpclient

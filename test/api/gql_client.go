/*
Copyright 2024-2025 the Unikorn Authors.
Copyright 2026 Nevio.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

//nolint:revive // naming conventions acceptable in test code
package api

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/onsi/ginkgo/v2"

	"github.com/nevio-air/booking-e2e/pkg/constants"
)

var errNotOpen = errors.New("client is not open")

//go:generate mockgen -source=gql_client.go -destination=mock/interfaces.go -package=mock

// Executor runs a single GraphQL operation and returns its data field.
type Executor interface {
	Execute(ctx context.Context, query string, variables map[string]any) (json.RawMessage, error)
}

type clientOptions struct {
	timeout      time.Duration
	logRequests  bool
	logResponses bool
	logWriter    io.Writer
}

// ClientOption customizes a GqlClient.
type ClientOption func(*clientOptions)

// WithTimeout sets the per-call timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(o *clientOptions) {
		o.timeout = timeout
	}
}

// WithLogWriter sends client logging to w instead of the GinkgoWriter.
func WithLogWriter(w io.Writer) ClientOption {
	return func(o *clientOptions) {
		o.logWriter = w
	}
}

// WithRequestLogging enables request and/or response body logging.
func WithRequestLogging(requests, responses bool) ClientOption {
	return func(o *clientOptions) {
		o.logRequests = requests
		o.logResponses = responses
	}
}

// WithConfig applies the timeout and logging settings of a test configuration.
func WithConfig(config *TestConfig) ClientOption {
	return func(o *clientOptions) {
		o.timeout = config.RequestTimeout
		o.logRequests = config.LogRequests
		o.logResponses = config.LogResponses
	}
}

type gqlRequest struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables"`
	OperationName string         `json:"operationName,omitempty"`
}

type gqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors,omitempty"`
}

// GqlClient sends GraphQL operations over HTTP POST to a fixed base URL with a
// fixed header set. It must be opened before use and closed when done; a single
// opened client may be reused for any number of operations.
type GqlClient struct {
	baseURL string
	headers map[string]string
	options clientOptions
	client  *resty.Client
}

// NewGqlClient stores the target and headers. The content type defaults to JSON,
// caller supplied headers override it.
func NewGqlClient(baseURL string, headers map[string]string, opts ...ClientOption) *GqlClient {
	merged := map[string]string{
		"Content-Type": "application/json",
	}

	for name, value := range headers {
		merged[http.CanonicalHeaderKey(name)] = value
	}

	return &GqlClient{
		baseURL: baseURL,
		headers: merged,
		options: buildOptions(opts),
	}
}

func buildOptions(opts []ClientOption) clientOptions {
	options := clientOptions{
		timeout:   30 * time.Second,
		logWriter: ginkgo.GinkgoWriter,
	}

	for _, opt := range opts {
		opt(&options)
	}

	return options
}

// BaseURL returns the target of every request.
func (c *GqlClient) BaseURL() string {
	return c.baseURL
}

// Headers returns a copy of the header set attached to every request.
func (c *GqlClient) Headers() map[string]string {
	return maps.Clone(c.headers)
}

// Open creates the request context bound to the base URL and headers.
// Opening an already open client is a no-op.
func (c *GqlClient) Open() error {
	if c.client != nil {
		return nil
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return &Error{Kind: KindTransport, Op: "open", Err: fmt.Errorf("parsing base URL: %w", err)}
	}

	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &Error{Kind: KindTransport, Op: "open", Err: fmt.Errorf("base URL %q is not an absolute http(s) URL", c.baseURL)}
	}

	c.client = resty.New().
		SetHeader("User-Agent", constants.UserAgent()).
		SetHeaders(c.headers).
		SetTimeout(c.options.timeout)

	return nil
}

// Close releases the request context. It is safe to call on a client that was
// never opened or is already closed.
func (c *GqlClient) Close() error {
	if c.client == nil {
		return nil
	}

	c.client.GetClient().CloseIdleConnections()
	c.client = nil

	return nil
}

// Cookies returns the cookies accumulated for the base URL.
func (c *GqlClient) Cookies() []*http.Cookie {
	if c.client == nil {
		return nil
	}

	jar := c.client.GetClient().Jar
	if jar == nil {
		return nil
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil
	}

	return jar.Cookies(u)
}

// Execute posts {query, variables} to the base URL and returns the data field.
// Non-2xx statuses are transport errors carrying the raw body, a non-empty errors
// list is a GraphQL error even when data is also present.
func (c *GqlClient) Execute(ctx context.Context, query string, variables map[string]any) (json.RawMessage, error) {
	name := operationName(query)

	op := name
	if op == "" {
		op = "graphql"
	}

	//nolint:bodyclose // resty reads and closes the body
	resp, traceParent, err := c.post(ctx, op, gqlRequest{
		Query:         query,
		Variables:     variables,
		OperationName: name,
	})
	if err != nil {
		return nil, err
	}

	body := resp.Body()

	if !resp.IsSuccess() {
		c.logUnexpectedStatus(op, resp.StatusCode(), string(body), traceParent)

		return nil, &Error{
			Kind:       KindTransport,
			Op:         op,
			StatusCode: resp.StatusCode(),
			Body:       string(body),
			TraceID:    extractTraceID(traceParent),
		}
	}

	var envelope gqlResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &Error{
			Kind:       KindTransport,
			Op:         op,
			StatusCode: resp.StatusCode(),
			Body:       string(body),
			TraceID:    extractTraceID(traceParent),
			Err:        fmt.Errorf("decoding graphql envelope: %w", err),
		}
	}

	if len(envelope.Errors) > 0 {
		c.logf("[POST %s] GRAPHQL ERRORS op=%s count=%d traceparent=%s\n", c.baseURL, op, len(envelope.Errors), traceParent)

		return nil, &Error{
			Kind:          KindGraphQL,
			Op:            op,
			StatusCode:    resp.StatusCode(),
			Body:          string(body),
			GraphQLErrors: envelope.Errors,
			TraceID:       extractTraceID(traceParent),
		}
	}

	return envelope.Data, nil
}

// post sends body as JSON to the base URL. Only failures to get a response at
// all are returned as errors, status handling is left to the caller.
func (c *GqlClient) post(ctx context.Context, op string, body any) (*resty.Response, string, error) {
	if c.client == nil {
		return nil, "", &Error{Kind: KindTransport, Op: op, Err: errNotOpen}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, "", &Error{Kind: KindTransport, Op: op, Err: fmt.Errorf("marshaling request body: %w", err)}
	}

	// Add W3C Trace Context headers
	traceParent := createTraceParent()

	start := time.Now()
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Traceparent", traceParent).
		SetHeader("Tracestate", "test-automation=ginkgo").
		SetBody(payload).
		Post(c.baseURL)
	duration := time.Since(start)

	if err != nil {
		c.logError(op, duration, traceParent, err, "http request failed")

		return nil, traceParent, &Error{
			Kind:    KindTransport,
			Op:      op,
			TraceID: extractTraceID(traceParent),
			Err:     fmt.Errorf("http request failed: %w", err),
		}
	}

	if c.options.logRequests {
		c.logf("[POST %s] op=%s status=%d duration=%s headers=%v traceparent=%s\n", c.baseURL, op, resp.StatusCode(), duration, maskHeaders(c.headers), traceParent)
	}

	if c.options.logResponses && len(resp.Body()) > 0 {
		c.logf("[POST %s] response body: %s\n", c.baseURL, string(resp.Body()))
	}

	return resp, traceParent, nil
}

// logError logs a generic error with trace context.
func (c *GqlClient) logError(op string, duration time.Duration, traceParent string, err error, context string) {
	c.logf("[POST %s] ERROR %s op=%s duration=%s traceparent=%s error=%v\n", c.baseURL, context, op, duration, traceParent, err)
	c.logTraceContext(traceParent)
}

// logUnexpectedStatus logs a non-2xx HTTP status code.
func (c *GqlClient) logUnexpectedStatus(op string, status int, body, traceParent string) {
	c.logf("[POST %s] UNEXPECTED STATUS op=%s got=%d body=%s traceparent=%s\n", c.baseURL, op, status, body, traceParent)
	c.logTraceContext(traceParent)
}

// WithClient opens a client, hands it to fn and closes it again on every path.
func WithClient(baseURL string, headers map[string]string, opts []ClientOption, fn func(*GqlClient) error) error {
	client := NewGqlClient(baseURL, headers, opts...)

	if err := client.Open(); err != nil {
		return err
	}

	defer client.Close()

	return fn(client)
}

// maskHeaders hides credential values before they reach the logs.
func maskHeaders(headers map[string]string) map[string]string {
	out := maps.Clone(headers)

	for name, value := range out {
		if name == "Authorization" || name == "Cookie" {
			out[name] = maskSecret(value)
		}
	}

	return out
}

func maskSecret(value string) string {
	if len(value) <= 8 {
		return "***"
	}

	return value[:4] + "***"
}

func (c *GqlClient) logf(format string, args ...any) {
	if c.options.logWriter == nil {
		return
	}

	fmt.Fprintf(c.options.logWriter, format, args...)
}

// logTraceContext logs the trace context information.
func (c *GqlClient) logTraceContext(traceParent string) {
	c.logf("TRACE CONTEXT: Use trace ID '%s' to search logs for this request\n", extractTraceID(traceParent))
}

// generateTraceID creates a new W3C trace ID.
// A fresh trace ID per request lets a failure be found in the server logs.
func generateTraceID() string {
	bytes := make([]byte, 16)
	_, _ = rand.Read(bytes)

	return hex.EncodeToString(bytes)
}

// generateSpanID creates a new W3C span ID.
func generateSpanID() string {
	bytes := make([]byte, 8)
	_, _ = rand.Read(bytes)

	return hex.EncodeToString(bytes)
}

// createTraceParent creates a W3C traceparent header value.
func createTraceParent() string {
	return fmt.Sprintf("00-%s-%s-01", generateTraceID(), generateSpanID())
}

// extractTraceID extracts the trace ID from a traceparent header value.
func extractTraceID(traceParent string) string {
	parts := strings.Split(traceParent, "-")
	if len(parts) >= 2 {
		return parts[1]
	}

	return traceParent
}

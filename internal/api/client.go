package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/go-querystring/query"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"

	"github.com/gsms/gsms/internal/log"
	"github.com/gsms/gsms/internal/telemetry"
)

// DefaultTimeout bounds a single backend request.
const DefaultTimeout = 10 * time.Second

// DefaultRetryAttempts is the number of tries for idempotent reads.
const DefaultRetryAttempts = 3

// HeaderRequestID carries the per-request correlation id.
const HeaderRequestID = "X-Request-ID"

// TokenSource supplies the bearer token for outgoing requests.
// *auth.Session satisfies it.
type TokenSource interface {
	Token() string
}

// RequestObserver is notified after every logical request.
type RequestObserver interface {
	ObserveRequest(method, route string, status int, duration time.Duration, errorType string)
}

// Client is the GSMS backend API client
type Client struct {
	baseURL      string
	httpClient   *http.Client
	tokens       TokenSource
	onUnauth     func(ctx context.Context)
	observer     RequestObserver
	logger       *log.Logger
	userAgent    string
	attempts     uint
	retryDelay   time.Duration
	timeout      time.Duration
	customClient bool
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its transport is used
// as is.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
			c.customClient = true
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithTokenSource sets where bearer tokens come from.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithUnauthorizedHandler registers fn to run whenever the backend answers
// 401.
func WithUnauthorizedHandler(fn func(ctx context.Context)) Option {
	return func(c *Client) { c.onUnauth = fn }
}

// WithRetryAttempts sets how many times GET requests are tried. Values
// below 1 mean a single try.
func WithRetryAttempts(n uint) Option {
	return func(c *Client) {
		if n < 1 {
			n = 1
		}
		c.attempts = n
	}
}

// WithRetryDelay sets the base backoff delay between GET retries.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) { c.retryDelay = d }
}

// WithLogger sets the client logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRequestObserver registers a metrics sink.
func WithRequestObserver(o RequestObserver) Option {
	return func(c *Client) { c.observer = o }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// New creates a client for the backend rooted at baseURL (e.g.
// "http://localhost:8080/api").
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     log.DefaultLogger(),
		userAgent:  "gsms",
		attempts:   DefaultRetryAttempts,
		retryDelay: 200 * time.Millisecond,
		timeout:    DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if !c.customClient {
		c.httpClient = &http.Client{
			Timeout:   c.timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	c.logger = c.logger.With("component", "api")
	return c
}

// BaseURL returns the backend root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// call is one logical backend request.
type call struct {
	method string
	// route is the path template used for spans and metrics.
	route string
	path  string
	query interface{}
	body  interface{}
}

func get(route, path string, q interface{}) call {
	return call{method: http.MethodGet, route: route, path: path, query: q}
}

func send(method, route, path string, body interface{}) call {
	return call{method: method, route: route, path: path, body: body}
}

// do performs the call and returns the decoded envelope. Any non-success
// outcome is an *Error.
func (c *Client) do(ctx context.Context, cl call) (*envelope, error) {
	ctx, span := telemetry.StartAPISpan(ctx, cl.method, cl.route)
	defer span.End()

	start := time.Now()
	requestID := uuid.NewString()
	span.SetAttributes(attribute.String("request.id", requestID))

	env, status, err := c.doWithRetry(ctx, cl, requestID)
	elapsed := time.Since(start)

	errorType := ""
	if err != nil {
		apiErr, ok := asError(err)
		if !ok {
			apiErr = &Error{Method: cl.method, Route: cl.route, Message: msgNetwork, Cause: err}
			err = apiErr
		}
		errorType = apiErr.Kind()
		if apiErr.Status == http.StatusUnauthorized && c.onUnauth != nil {
			c.onUnauth(ctx)
		}
		telemetry.RecordError(span, err)
		c.logger.DebugContext(ctx, "api request failed",
			"method", cl.method, "route", cl.route, "status", status,
			"request_id", requestID, "error_type", errorType, "error", err)
	} else {
		telemetry.RecordSuccess(span, attribute.Int("http.response.status_code", status))
		c.logger.DebugContext(ctx, "api request",
			"method", cl.method, "route", cl.route, "status", status,
			"request_id", requestID, "duration", elapsed)
	}
	telemetry.RecordDuration(span, "request", elapsed)

	if c.observer != nil {
		c.observer.ObserveRequest(cl.method, cl.route, status, elapsed, errorType)
	}
	return env, err
}

func (c *Client) doWithRetry(ctx context.Context, cl call, requestID string) (*envelope, int, error) {
	target, err := c.url(cl)
	if err != nil {
		return nil, 0, &Error{Method: cl.method, Route: cl.route, Message: "invalid request", Cause: err, kind: KindHTTP}
	}

	var payload []byte
	if cl.body != nil {
		payload, err = json.Marshal(cl.body)
		if err != nil {
			return nil, 0, &Error{Method: cl.method, Route: cl.route, Message: "invalid request body", Cause: err, kind: KindHTTP}
		}
	}

	attempts := uint(1)
	if cl.method == http.MethodGet {
		attempts = c.attempts
	}

	var (
		env    *envelope
		status int
	)
	err = retry.Do(
		func() error {
			var attemptErr error
			env, status, attemptErr = c.roundTrip(ctx, cl, target, payload, requestID)
			return attemptErr
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			apiErr, ok := asError(err)
			return ok && apiErr.Temporary()
		}),
		retry.OnRetry(func(n uint, err error) {
			c.logger.DebugContext(ctx, "retrying api request",
				"route", cl.route, "attempt", n+1, "request_id", requestID, "error", err)
		}),
	)
	return env, status, err
}

func (c *Client) url(cl call) (string, error) {
	u, err := url.Parse(c.baseURL + cl.path)
	if err != nil {
		return "", err
	}
	if cl.query != nil {
		values, err := query.Values(cl.query)
		if err != nil {
			return "", fmt.Errorf("encode query: %w", err)
		}
		u.RawQuery = values.Encode()
	}
	return u.String(), nil
}

// roundTrip performs a single HTTP exchange.
func (c *Client) roundTrip(ctx context.Context, cl call, target string, payload []byte, requestID string) (*envelope, int, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, target, body)
	if err != nil {
		return nil, 0, &Error{Method: cl.method, Route: cl.route, Message: "invalid request", Cause: err, kind: KindHTTP}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderRequestID, requestID)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, &Error{Method: cl.method, Route: cl.route, Message: msgNetwork, Cause: err}
	}
	defer resp.Body.Close()

	return parseResponse(cl, resp)
}

// parseResponse maps an HTTP response onto an envelope or an *Error.
func parseResponse(cl call, resp *http.Response) (*envelope, int, error) {
	status := resp.StatusCode
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, status, &Error{Method: cl.method, Route: cl.route, Status: status, Message: msgNetwork, Cause: err, kind: KindNetwork}
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if status < 200 || status >= 300 {
		backend := ""
		code := 0
		if decodeErr == nil {
			backend = env.Message
			if env.Code != nil {
				code = *env.Code
			}
		}
		return nil, status, &Error{
			Method:  cl.method,
			Route:   cl.route,
			Status:  status,
			Code:    code,
			Message: statusMessage(status, backend),
		}
	}

	if decodeErr != nil {
		return nil, status, &Error{Method: cl.method, Route: cl.route, Status: status, Message: msgDecode, Cause: decodeErr, kind: KindDecode}
	}

	if !env.ok() {
		code := 0
		if env.Code != nil {
			code = *env.Code
		}
		msg := env.Message
		if msg == "" {
			msg = msgFailed
		}
		return nil, status, &Error{Method: cl.method, Route: cl.route, Status: status, Code: code, Message: msg}
	}

	return &env, status, nil
}

// fetch performs cl and decodes data into out.
func (c *Client) fetch(ctx context.Context, cl call, out interface{}) error {
	env, err := c.do(ctx, cl)
	if err != nil {
		return err
	}
	if err := decodeData(env, out); err != nil {
		return &Error{Method: cl.method, Route: cl.route, Status: http.StatusOK, Code: CodeOK, Message: msgDecode, Cause: err, kind: KindDecode}
	}
	return nil
}

// fetchPage performs cl and decodes a page result.
func fetchPage[T any](ctx context.Context, c *Client, cl call) (*Page[T], error) {
	env, err := c.do(ctx, cl)
	if err != nil {
		return nil, err
	}
	page, err := decodePage[T](env)
	if err != nil {
		return nil, &Error{Method: cl.method, Route: cl.route, Status: http.StatusOK, Code: CodeOK, Message: msgDecode, Cause: err, kind: KindDecode}
	}
	return page, nil
}

// pathID formats an id path segment.
func pathID(prefix string, id int64, suffix ...string) string {
	p := fmt.Sprintf("%s/%d", prefix, id)
	for _, s := range suffix {
		p += "/" + s
	}
	return p
}

var errInvalidID = errors.New("id must be positive")

func requireID(method, route string, id int64) error {
	if id <= 0 {
		return &Error{Method: method, Route: route, Message: "invalid id", Cause: errInvalidID, kind: KindHTTP}
	}
	return nil
}

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/akiliapp/lms/pkg/envelope"
	"github.com/akiliapp/lms/pkg/logging"
)

// DefaultTimeout is the default HTTP timeout.
const DefaultTimeout = 30 * time.Second

// maxResponseSize caps how much of a response body is read.
const maxResponseSize = 16 << 20

// Client talks to the LMS backend. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	identity   IdentitySource
	logger     *slog.Logger
	limiter    *rate.Limiter
	perPage    int
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client. The client is copied, never
// modified.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			cp := *hc
			c.httpClient = &cp
		}
	}
}

// WithTimeout sets the HTTP timeout for requests.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithIdentity sets the source of the bearer token and user id.
func WithIdentity(src IdentitySource) Option {
	return func(c *Client) {
		c.identity = src
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRateLimit limits outgoing requests to rps per second. Zero disables
// limiting.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps > 0 {
			burst := int(rps)
			if burst < 1 {
				burst = 1
			}
			c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		} else {
			c.limiter = nil
		}
	}
}

// WithDefaultPerPage sets the page size used by List when the caller does not
// give one.
func WithDefaultPerPage(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.perPage = n
		}
	}
}

// New creates a client for the backend rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     logging.Nop(),
		perPage:    envelope.DefaultPerPage,
	}
	for _, opt := range opts {
		opt(c)
	}

	base := c.httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	c.httpClient.Transport = &identityTransport{
		base:     base,
		identity: c.identity,
		limiter:  c.limiter,
		logger:   c.logger,
	}
	return c
}

// BaseURL returns the backend root URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// DefaultPerPage returns the page size List uses when none is given.
func (c *Client) DefaultPerPage() int {
	return c.perPage
}

// Resource returns the client for one resource kind.
func (c *Client) Resource(k Kind) *Resource {
	return &Resource{client: c, kind: k}
}

func (c *Client) get(ctx context.Context, path string, query url.Values) (*envelope.Envelope, error) {
	return c.do(ctx, http.MethodGet, path, query, nil)
}

func (c *Client) post(ctx context.Context, path string, query url.Values, body any) (*envelope.Envelope, error) {
	return c.do(ctx, http.MethodPost, path, query, body)
}

// do performs one request and decodes the envelope. Non-2xx responses and
// transport failures come back as *APIError.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (*envelope.Envelope, error) {
	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &APIError{
			Code:    CodeConnection,
			Message: err.Error(),
			Err:     err,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Code:       CodeConnection,
			Message:    err.Error(),
			Err:        err,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, parseError(resp.StatusCode, data)
	}

	env, err := envelope.Parse(data)
	if err != nil {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Code:       CodeInvalidResponse,
			Message:    "invalid response from server",
			Err:        err,
		}
	}
	return env, nil
}

// parseError builds an APIError from a non-2xx response body.
func parseError(status int, body []byte) error {
	apiErr := &APIError{StatusCode: status, Code: CodeHTTP}
	switch status {
	case http.StatusUnauthorized:
		apiErr.Code = CodeUnauthorized
	case http.StatusNotFound:
		apiErr.Code = CodeNotFound
	}

	if env, err := envelope.Parse(body); err == nil {
		apiErr.Message = env.ErrorMessage()
		if apiErr.Message == "" {
			if m, ok := env.Body().(map[string]any); ok {
				apiErr.Message = envelope.Message(m["message"])
			}
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = fmt.Sprintf("server returned status %d", status)
	}
	return apiErr
}

package client

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// TokenSource supplies the current access token for outgoing requests. The
// pipeline reads it at dispatch time and never caches it; an empty string
// means anonymous and no Authorization header is attached.
type TokenSource interface {
	AccessToken() string
}

// TokenSourceFunc adapts a plain function to a TokenSource.
type TokenSourceFunc func() string

func (f TokenSourceFunc) AccessToken() string { return f() }

// UnauthorizedHandler is invoked whenever a request fails with HTTP 401.
// The pipeline calls it once per failing call; implementations must be
// idempotent since concurrent calls can fail with 401 simultaneously.
type UnauthorizedHandler interface {
	Invalidate()
}

// UnauthorizedFunc adapts a plain function to an UnauthorizedHandler.
type UnauthorizedFunc func()

func (f UnauthorizedFunc) Invalidate() { f() }

// Notifier receives a user-facing notice for each classified failure, keyed
// by taxonomy kind.
type Notifier interface {
	Notify(kind, message string)
}

// SaveFunc persists downloaded bytes under the given filename and returns
// the path written.
type SaveFunc func(filename string, data []byte) (string, error)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout overrides the default 10s request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.log = logger }
}

// WithTokenSource sets the access token provider.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithUnauthorizedHandler sets the handler run when a request is classified
// as unauthorized.
func WithUnauthorizedHandler(h UnauthorizedHandler) Option {
	return func(c *Client) { c.onUnauthorized = h }
}

// WithNotifier forwards classified failures to a notice sink.
func WithNotifier(n Notifier) Option {
	return func(c *Client) { c.notifier = n }
}

// WithRetryPolicy enables retries for the configured kinds. The default
// client performs no retries.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *Client) { c.retry = &p }
}

// WithRateLimit throttles outgoing requests client-side.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(limit, burst) }
}

// WithSaveFunc replaces the download persistence function, primarily for
// testing and for embedding hosts that capture files themselves.
func WithSaveFunc(fn SaveFunc) Option {
	return func(c *Client) { c.save = fn }
}

// WithDownloadDir sets the directory the default SaveFunc writes into.
func WithDownloadDir(dir string) Option {
	return func(c *Client) { c.downloadDir = dir }
}

// WithNowTime sets the now time function (primarily for testing).
func WithNowTime(nowFunc func() time.Time) Option {
	return func(c *Client) { c.nowTime = nowFunc }
}

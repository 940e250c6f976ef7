// Package client implements the request pipeline: the single chokepoint
// through which every call to the admin backend passes. It attaches
// credentials and trace headers on the way out, and classifies failures
// into a closed taxonomy on the way back.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout = 10 * time.Second

	headerClientTimestamp = "X-Client-Timestamp"
	headerRequestID       = "X-Request-ID"
)

// Client is the admin backend pipeline. All outbound calls, uploads and
// downloads go through it. The client reads session state but never writes
// it: on 401 it only asks the configured UnauthorizedHandler to invalidate.
type Client struct {
	baseURL     string
	http        *http.Client
	timeout     time.Duration
	downloadDir string

	tokens         TokenSource
	onUnauthorized UnauthorizedHandler
	notifier       Notifier
	retry          *RetryPolicy
	limiter        *rate.Limiter
	save           SaveFunc

	lastTS  atomic.Int64
	nowTime func() time.Time
	log     zerolog.Logger
}

// New creates a pipeline client for the given base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: defaultTimeout,
		nowTime: time.Now,
		log:     zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.save == nil {
		c.save = c.saveToDownloadDir
	}
	return c
}

// Send performs a JSON request against the backend. query may be nil; body
// is marshalled as JSON when non-nil; on success the envelope's data field
// is decoded into result when result is non-nil. On failure the returned
// error is always a classified *Error.
func (c *Client) Send(ctx context.Context, method, path string, query url.Values, body, result any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return AsError(errors.Wrap(err, "[Client.Send] marshal body"))
		}
	}

	raw, cerr := c.sendWithRetry(ctx, method, c.buildURL(path, query), payload)
	if cerr != nil {
		return c.react(cerr)
	}
	if result == nil {
		return nil
	}
	return c.decodeEnvelope(raw, result)
}

// Get is shorthand for Send with http.MethodGet and no body.
func (c *Client) Get(ctx context.Context, path string, query url.Values, result any) error {
	return c.Send(ctx, http.MethodGet, path, query, nil, result)
}

// Post is shorthand for Send with http.MethodPost.
func (c *Client) Post(ctx context.Context, path string, body, result any) error {
	return c.Send(ctx, http.MethodPost, path, nil, body, result)
}

// Put is shorthand for Send with http.MethodPut.
func (c *Client) Put(ctx context.Context, path string, body, result any) error {
	return c.Send(ctx, http.MethodPut, path, nil, body, result)
}

// Delete is shorthand for Send with http.MethodDelete and no body.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.Send(ctx, http.MethodDelete, path, nil, nil, nil)
}

// sendWithRetry runs one or more attempts according to the retry policy.
// Without a policy a single attempt is made. Only the final classified
// error escapes; side effects run once per call, not per attempt.
func (c *Client) sendWithRetry(ctx context.Context, method, fullURL string, payload []byte) ([]byte, *Error) {
	if c.retry == nil {
		return c.attempt(ctx, method, fullURL, payload, "")
	}

	var raw []byte
	operation := func() error {
		var cerr *Error
		raw, cerr = c.attempt(ctx, method, fullURL, payload, "")
		if cerr == nil {
			return nil
		}
		if c.retry.retryable(cerr.Kind) {
			return cerr
		}
		return backoff.Permanent(cerr)
	}

	err := backoff.Retry(operation, backoff.WithContext(c.retry.backOff(), ctx))
	if err != nil {
		return nil, AsError(err)
	}
	return raw, nil
}

// attempt performs exactly one HTTP round trip. contentType overrides the
// default application/json (used by uploads).
func (c *Client) attempt(parent context.Context, method, fullURL string, payload []byte, contentType string) ([]byte, *Error) {
	ctx, cancel := context.WithTimeout(parent, c.timeout)
	defer cancel()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, classifyTransport(err)
		}
	}

	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		return nil, AsError(errors.Wrap(err, "[Client.attempt] build request"))
	}
	if payload != nil && contentType == "" {
		contentType = "application/json"
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	c.decorate(req)

	return c.roundTrip(req)
}

// roundTrip executes a decorated request and classifies the outcome.
func (c *Client) roundTrip(req *http.Request) ([]byte, *Error) {
	started := c.nowTime()
	resp, err := c.http.Do(req)
	if err != nil {
		cerr := classifyTransport(err)
		c.log.Debug().
			Str("method", req.Method).
			Str("url", req.URL.String()).
			Str("kind", string(cerr.Kind)).
			Msg("request failed before a response")
		return nil, cerr
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransport(err)
	}

	c.log.Debug().
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Int("status", resp.StatusCode).
		Dur("elapsed", c.nowTime().Sub(started)).
		Msg("request complete")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, classifyStatus(resp.StatusCode, raw)
	}
	return raw, nil
}

// react performs the side effect mandated by the classified kind and then
// re-raises the error. Order is fixed: classify, invalidate on 401, notify,
// return. Only unauthorized has a cross-component effect; the handler is
// responsible for its own idempotence.
func (c *Client) react(cerr *Error) error {
	if cerr.Kind == KindUnauthorized && c.onUnauthorized != nil {
		c.onUnauthorized.Invalidate()
	}
	if c.notifier != nil {
		c.notifier.Notify(string(cerr.Kind), cerr.Message)
	}
	return cerr
}

// decorate stamps the outgoing request with the bearer credential, a
// strictly monotonic client timestamp and a request ID for tracing.
func (c *Client) decorate(req *http.Request) {
	if c.tokens != nil {
		if token := c.tokens.AccessToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	req.Header.Set(headerClientTimestamp, strconv.FormatInt(c.clientTimestamp(), 10))
	req.Header.Set(headerRequestID, uuid.New().String())
}

// clientTimestamp returns the current time in milliseconds, bumped so that
// two concurrent requests never share a value.
func (c *Client) clientTimestamp() int64 {
	for {
		now := c.nowTime().UnixMilli()
		last := c.lastTS.Load()
		if now <= last {
			now = last + 1
		}
		if c.lastTS.CompareAndSwap(last, now) {
			return now
		}
	}
}

// decodeEnvelope unpacks the standard response wrapper and decodes its data
// field into result.
func (c *Client) decodeEnvelope(raw []byte, result any) error {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return AsError(errors.Wrap(err, "[Client.decodeEnvelope] parse envelope"))
	}
	if len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, result); err != nil {
		return AsError(errors.Wrap(err, "[Client.decodeEnvelope] decode data"))
	}
	return nil
}

func (c *Client) buildURL(path string, query url.Values) string {
	full := c.baseURL + path
	if len(query) > 0 {
		full += "?" + query.Encode()
	}
	return full
}

// saveToDownloadDir is the default SaveFunc: it writes the bytes into the
// configured download directory (working directory when unset).
func (c *Client) saveToDownloadDir(filename string, data []byte) (string, error) {
	dir := c.downloadDir
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", errors.Wrap(err, "[Client.saveToDownloadDir] create dir")
		}
	}
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.Wrap(err, "[Client.saveToDownloadDir] write file")
	}
	return path, nil
}

package client

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
)

// Download fetches path as an opaque binary blob and hands it to the
// configured SaveFunc. The response body is never interpreted as JSON.
// filename may be empty, in which case the server's Content-Disposition
// name is used, falling back to a date-stamped default. The path written
// by the SaveFunc is returned; the caller never receives the bytes.
func (c *Client) Download(ctx context.Context, path string, query url.Values, filename string) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if c.limiter != nil {
		if err := c.limiter.Wait(reqCtx); err != nil {
			return "", c.react(classifyTransport(err))
		}
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, c.buildURL(path, query), nil)
	if err != nil {
		return "", c.react(AsError(errors.Wrap(err, "[Client.Download] build request")))
	}
	req.Header.Set("Accept", "application/octet-stream")
	c.decorate(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", c.react(classifyTransport(err))
	}
	defer resp.Body.Close()

	raw, cerr := readAllClassified(resp)
	if cerr != nil {
		return "", c.react(cerr)
	}

	if filename == "" {
		filename = dispositionFilename(resp.Header.Get("Content-Disposition"))
	}
	if filename == "" {
		filename = fmt.Sprintf("export-%s.bin", c.nowTime().Format("20060102"))
	}

	saved, err := c.save(filename, raw)
	if err != nil {
		return "", AsError(errors.Wrap(err, "[Client.Download] save"))
	}
	return saved, nil
}

// readAllClassified drains a response and classifies non-2xx statuses.
func readAllClassified(resp *http.Response) ([]byte, *Error) {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransport(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, classifyStatus(resp.StatusCode, raw)
	}
	return raw, nil
}

func dispositionFilename(disposition string) string {
	if disposition == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return ""
	}
	return params["filename"]
}

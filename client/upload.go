package client

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/pkg/errors"
)

// ProgressFunc receives upload progress as a percentage in [0,100]. Values
// are non-decreasing; 0 and 100 are each reported exactly once across a
// successful upload.
type ProgressFunc func(pct int)

// Upload sends file as multipart form data under the "file" field. Progress
// is computed from bytes sent over bytes total; onProgress may be nil. On
// success the envelope's data field is decoded into result when non-nil.
func (c *Client) Upload(ctx context.Context, path string, file io.Reader, filename string, onProgress ProgressFunc, result any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return c.react(AsError(errors.Wrap(err, "[Client.Upload] create form file")))
	}
	if _, err := io.Copy(part, file); err != nil {
		return c.react(AsError(errors.Wrap(err, "[Client.Upload] copy file")))
	}
	if err := mw.Close(); err != nil {
		return c.react(AsError(errors.Wrap(err, "[Client.Upload] close multipart writer")))
	}

	total := int64(buf.Len())
	if onProgress != nil {
		onProgress(0)
	}
	body := &progressReader{r: &buf, total: total, report: onProgress}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if c.limiter != nil {
		if err := c.limiter.Wait(reqCtx); err != nil {
			return c.react(classifyTransport(err))
		}
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.buildURL(path, nil), body)
	if err != nil {
		return c.react(AsError(errors.Wrap(err, "[Client.Upload] build request")))
	}
	req.ContentLength = total
	req.Header.Set("Content-Type", mw.FormDataContentType())
	c.decorate(req)

	raw, cerr := c.roundTrip(req)
	if cerr != nil {
		return c.react(cerr)
	}
	if result == nil {
		return nil
	}
	return c.decodeEnvelope(raw, result)
}

// progressReader reports fractional progress as the request body drains.
// It never reports a percentage twice and skips 0, which the caller reports
// before the first byte moves.
type progressReader struct {
	r       io.Reader
	total   int64
	sent    int64
	lastPct int
	report  ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.sent += int64(n)
		p.emit()
	}
	return n, err
}

func (p *progressReader) emit() {
	if p.report == nil || p.total <= 0 {
		return
	}
	pct := int(p.sent * 100 / p.total)
	if pct > 100 {
		pct = 100
	}
	if pct > p.lastPct {
		p.lastPct = pct
		p.report(pct)
	}
}

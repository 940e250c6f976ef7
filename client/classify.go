package client

import (
	"context"
	"encoding/json"
	"net"

	"github.com/pkg/errors"
)

// Envelope is the backend response wrapper carried by every JSON endpoint,
// on success and on domain-level failure alike.
type Envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
	Errors  []FieldError    `json:"errors,omitempty"`
}

// classifyTransport maps an error returned by the HTTP client itself (no
// response was received) to a classified error. Deadline expiry becomes
// KindTimeout, everything else KindNetwork.
func classifyTransport(err error) *Error {
	kind := KindNetwork
	if errors.Is(err, context.DeadlineExceeded) {
		kind = KindTimeout
	} else {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			kind = KindTimeout
		}
	}
	return &Error{
		Kind:    kind,
		Message: defaultMessage(kind),
		cause:   err,
	}
}

// classifyStatus maps a non-2xx HTTP response to a classified error. The
// body, when it parses as the standard envelope, contributes the server
// message and field errors. Classification is pure: it performs no side
// effects and keys primarily off the HTTP status.
func classifyStatus(status int, body []byte) *Error {
	kind := kindForStatus(status)
	cerr := &Error{
		Kind:       kind,
		HTTPStatus: status,
		Message:    defaultMessage(kind),
	}

	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return cerr
	}
	cerr.FieldErrors = env.Errors

	switch kind {
	case KindValidation:
		// Prefer the first field-level message when the server supplies one.
		if len(env.Errors) > 0 && env.Errors[0].Message != "" {
			cerr.Message = env.Errors[0].Message
		}
	case KindUnknown:
		if env.Message != "" {
			cerr.Message = env.Message
		}
	}
	return cerr
}

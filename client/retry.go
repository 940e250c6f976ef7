package client

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy is an explicit, opt-in retry configuration. Only failures
// whose classified kind appears in RetryableKinds are retried; everything
// else fails on the first attempt. Validation and permission failures are
// never sensibly retryable and are not part of the default set.
type RetryPolicy struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
	RetryableKinds  []Kind
}

// DefaultRetryPolicy retries transient transport failures only.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:      3,
		InitialInterval: 250 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		RetryableKinds:  []Kind{KindTimeout, KindNetwork},
	}
}

func (p RetryPolicy) retryable(kind Kind) bool {
	for _, k := range p.RetryableKinds {
		if k == kind {
			return true
		}
	}
	return false
}

func (p RetryPolicy) backOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		b.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		b.MaxInterval = p.MaxInterval
	}
	return backoff.WithMaxRetries(b, p.MaxRetries)
}

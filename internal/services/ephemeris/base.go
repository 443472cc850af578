package ephemeris

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	xhttp "Astrolabe/pkg/http"
	applogger "Astrolabe/pkg/logger"
)

// ErrUnavailable wraps every failure to get an answer from the ephemeris
// service, after retries.
var ErrUnavailable = errors.New("ephemeris service unavailable")

// httpServiceBase posts JSON to one upstream and retries transient failures.
type httpServiceBase struct {
	client     *xhttp.Client
	log        *applogger.Logger
	attempts   int
	backoffMin time.Duration
	backoffMax time.Duration
}

func (b *httpServiceBase) postJSON(ctx context.Context, path string, payload, dest interface{}) error {
	return b.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: "POST",
		Path:   path,
		Body:   payload,
	}, dest)
}

// postJSONWithRetry retries transport errors and 5xx/429 answers. Other
// statuses are returned at once.
func (b *httpServiceBase) postJSONWithRetry(ctx context.Context, path string, payload, dest interface{}) error {
	attempts := b.attempts
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 1; i <= attempts; i++ {
		err = b.postJSON(ctx, path, payload, dest)
		if err == nil {
			return nil
		}
		if !retryable(err) || i == attempts {
			break
		}
		wait := backoff(b.backoffMin, b.backoffMax, i)
		b.log.Warn("ephemeris request failed, retrying",
			applogger.String("path", path),
			applogger.Int("attempt", i),
			applogger.Duration("backoff_ms", wait),
			applogger.Error(err),
		)
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", ErrUnavailable, ctx.Err())
		}
	}
	return fmt.Errorf("%w: post %s: %w", ErrUnavailable, path, err)
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *xhttp.StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	return true
}

func backoff(min, max time.Duration, attempt int) time.Duration {
	if min <= 0 {
		min = 100 * time.Millisecond
	}
	if max < min {
		max = min
	}
	d := min
	for i := 1; i < attempt && d < max; i++ {
		d *= 2
	}
	if d > max {
		d = max
	}
	// full jitter over the upper half
	return d/2 + time.Duration(rand.Int63n(int64(d/2)+1))
}

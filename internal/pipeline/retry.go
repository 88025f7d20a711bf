package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/dojosearch/dojosearch/internal/llm"
)

// RetryPolicy bounds retries for idempotent external calls. Backoff doubles
// per attempt. Fatal API errors (quota, auth) are never retried.
type RetryPolicy struct {
	MaxRetries int
	Backoff    time.Duration
}

// Do runs op, retrying up to MaxRetries times. The last error is returned
// when the budget is exhausted.
func (p RetryPolicy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	backoff := p.Backoff
	var err error

	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return errors.Join(ctx.Err(), err)
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		err = op(ctx)
		if err == nil {
			return nil
		}
		if errors.Is(err, llm.ErrFatalAPI) {
			return err
		}
		if ctx.Err() != nil {
			return err
		}
	}
	return err
}

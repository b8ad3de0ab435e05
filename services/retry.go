package services

import (
	"context"
	"time"

	"github.com/yeremiapane/table-order/utils"
)

// retryRead calls fn up to attempts times, doubling the wait after every
// retryable failure. Non-retryable errors return immediately.
func retryRead(ctx context.Context, attempts int, backoff time.Duration, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for i := 0; i < attempts; i++ {
		err = fn()
		if err == nil || !utils.IsRetryable(err) {
			return err
		}
		if i == attempts-1 {
			break
		}

		wait := backoff << i
		utils.InfoLogger.Debugf("Retrying read after %v (attempt %d/%d): %v", wait, i+1, attempts, err)
		select {
		case <-ctx.Done():
			return err
		case <-time.After(wait):
		}
	}
	return err
}

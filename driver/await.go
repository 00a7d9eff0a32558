package driver

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Poll intervals used by AwaitComplete.
const (
	awaitInitialInterval = 5 * time.Millisecond
	awaitMaxInterval     = 250 * time.Millisecond
)

// AwaitComplete calls fn until it stops failing with OperationNotComplete,
// backing off between attempts. It gives up when ctx is done.
//
//	err := driver.AwaitComplete(ctx, func() error {
//		ok, err = rs.Next()
//		return err
//	})
func AwaitComplete(ctx context.Context, fn func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = awaitInitialInterval
	b.MaxInterval = awaitMaxInterval
	b.MaxElapsedTime = 0

	return backoff.Retry(func() error {
		err := fn()
		if err == nil || CodeOf(err) == OperationNotComplete {
			return err
		}
		return backoff.Permanent(err)
	}, backoff.WithContext(b, ctx))
}

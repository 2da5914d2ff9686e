// Package retry reruns optimistic read-modify-write operations that lost a
// version race.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/ariachat/server/internal/port/outbound"
	"github.com/cenkalti/backoff/v5"
)

// DefaultMaxTries bounds conflict retries.
const DefaultMaxTries uint = 5

// OnConflict runs op until it succeeds, fails with an error other than
// outbound.ErrConcurrentModification, or maxTries is reached. The last
// conflict error is returned when tries run out.
func OnConflict[T any](ctx context.Context, maxTries uint, op func() (T, error)) (T, error) {
	if maxTries == 0 {
		maxTries = DefaultMaxTries
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 5 * time.Millisecond
	b.MaxInterval = 200 * time.Millisecond

	return backoff.Retry(ctx, func() (T, error) {
		res, err := op()
		if err != nil && !errors.Is(err, outbound.ErrConcurrentModification) {
			return res, backoff.Permanent(err)
		}
		return res, err
	}, backoff.WithBackOff(b), backoff.WithMaxTries(maxTries))
}

package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rbroggi/atoll/internal/core/model"
	log "github.com/sirupsen/logrus"
)

// Store is what the startup sequence needs from the document store.
type Store interface {
	CheckConnection(ctx context.Context) error
	EnsureAllIndexes(ctx context.Context) error
}

type prepareOptions struct {
	backOff backoff.BackOff
}

// PrepareOptArgs are the optional arguments of PrepareDB.
type PrepareOptArgs = func(*prepareOptions)

// WithBackOff overrides the delay policy between connection attempts. Useful for testing.
func WithBackOff(b backoff.BackOff) PrepareOptArgs {
	return func(o *prepareOptions) {
		o.backOff = b
	}
}

// PrepareDB waits for the store to answer, retrying connectivity failures up to attempts times,
// then ensures every index. Any other failure aborts immediately.
func PrepareDB(ctx context.Context, store Store, attempts uint64, optArgs ...PrepareOptArgs) error {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = 200 * time.Millisecond
	exp.MaxInterval = 5 * time.Second
	opts := &prepareOptions{backOff: exp}
	for _, opt := range optArgs {
		opt(opts)
	}

	var attempt uint64
	check := func() error {
		attempt++
		err := store.CheckConnection(ctx)
		if err == nil {
			return nil
		}
		if !errors.Is(err, model.ErrConnectivity) {
			return backoff.Permanent(err)
		}
		log.WithError(err).WithField("attempt", attempt).Warn("store not reachable yet")
		return err
	}

	// attempts counts the first try, WithMaxRetries counts retries
	var retries uint64
	if attempts > 1 {
		retries = attempts - 1
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(opts.backOff, retries), ctx)
	if err := backoff.Retry(check, policy); err != nil {
		return fmt.Errorf("error connecting to store after %d attempts: %w", attempt, err)
	}

	if err := store.EnsureAllIndexes(ctx); err != nil {
		return fmt.Errorf("error preparing store: %w", err)
	}
	log.WithField("attempts", attempt).Info("store ready")
	return nil
}

package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/rbroggi/atoll/internal/core/model"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/x/mongo/driver/topology"
)

// classify maps driver errors onto the model error taxonomy. ctx is the caller context, not the
// per-call one, so that a caller cancellation is not reported as the store being unreachable.
func classify(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	var selectionErr topology.ServerSelectionError
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return model.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %w", model.ErrDuplicate, err)
	case ctx.Err() != nil:
		return fmt.Errorf("store call aborted: %w", ctx.Err())
	case mongo.IsNetworkError(err),
		mongo.IsTimeout(err),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, mongo.ErrClientDisconnected),
		errors.Is(err, topology.ErrServerSelectionTimeout),
		errors.As(err, &selectionErr):
		return fmt.Errorf("%w: %w", model.ErrConnectivity, err)
	}
	return err
}

// resultOf labels the outcome of a store call for metrics.
func resultOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, model.ErrNotFound):
		return "not_found"
	case errors.Is(err, model.ErrDuplicate):
		return "duplicate"
	case errors.Is(err, model.ErrConnectivity):
		return "connectivity"
	case errors.Is(err, model.ErrProgramming):
		return "programming"
	}
	return "error"
}

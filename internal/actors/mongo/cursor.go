package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rbroggi/atoll/internal/core/model"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const cursorCloseTimeout = 5 * time.Second

// Cursor iterates lazily over query results. Every batch fetch gets its own timeout
// and a cancelled context stops the iteration.
type Cursor[D any, P documentPtr[D]] struct {
	cur  *mongo.Cursor
	coll *collection[D, P]
	err  error
}

// Next advances the cursor, fetching a new batch when needed.
func (c *Cursor[D, P]) Next(ctx context.Context) bool {
	if c.err != nil {
		return false
	}
	if err := ctx.Err(); err != nil {
		c.err = fmt.Errorf("store call aborted: %w", err)
		return false
	}
	if c.cur.RemainingBatchLength() > 0 {
		return c.cur.Next(ctx)
	}
	callCtx, cancel := context.WithTimeout(ctx, c.coll.timeout)
	defer cancel()
	if c.cur.Next(callCtx) {
		return true
	}
	if err := c.cur.Err(); err != nil {
		c.err = classify(ctx, err)
	}
	return false
}

// Decode decodes the current document. A document not matching the record layout yields model.ErrCorruptRecord.
func (c *Cursor[D, P]) Decode() (P, error) {
	return decodeDocument[D, P](c.cur.Current)
}

// Err returns the error that stopped the iteration, if any.
func (c *Cursor[D, P]) Err() error {
	return c.err
}

// Close releases the server side cursor. It runs even if ctx was cancelled.
func (c *Cursor[D, P]) Close(ctx context.Context) error {
	closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cursorCloseTimeout)
	defer cancel()
	return c.cur.Close(closeCtx)
}

// collect drains cur through mapFn. Corrupt records are logged and skipped.
func collect[D any, P documentPtr[D], T any](ctx context.Context, cur *Cursor[D, P], mapFn func(P) (T, error)) ([]T, error) {
	defer func() {
		if err := cur.Close(ctx); err != nil {
			log.WithError(err).WithField("collection", cur.coll.name()).Warn("error closing cursor")
		}
	}()

	result := make([]T, 0)
	for cur.Next(ctx) {
		doc, err := cur.Decode()
		if err == nil {
			var item T
			item, err = mapFn(doc)
			if err == nil {
				result = append(result, item)
				continue
			}
		}
		if !errors.Is(err, model.ErrCorruptRecord) {
			return nil, err
		}
		log.WithError(err).WithField("collection", cur.coll.name()).Warn("skipping corrupt record")
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// findAll runs f against c and collects the mapped results.
func findAll[D any, P documentPtr[D], T any](ctx context.Context, c *collection[D, P], f *filter, sort bson.D, mapFn func(P) (T, error)) ([]T, error) {
	cur, err := c.find(ctx, f, sort)
	if err != nil {
		return nil, err
	}
	return collect(ctx, cur, mapFn)
}

package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/rbroggi/atoll/internal/core/model"
	"github.com/rbroggi/atoll/internal/metrics"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// currentSchemaVersion is stamped on every inserted record.
const currentSchemaVersion = 1

// Meta holds the fields every record carries.
type Meta struct {
	ID            primitive.ObjectID `bson:"_id"`
	Created       time.Time          `bson:"created"`
	SchemaVersion int                `bson:"schema_version"`
}

func (m *Meta) meta() *Meta {
	return m
}

type document interface {
	meta() *Meta
}

// documentPtr constrains P to be *D with the document methods.
type documentPtr[D any] interface {
	*D
	document
}

// collection is a typed view over a mongo collection.
type collection[D any, P documentPtr[D]] struct {
	coll    *mongo.Collection
	indexes []mongo.IndexModel
	timeout time.Duration
	nowFunc func() time.Time
}

func newCollection[D any, P documentPtr[D]](db *mongo.Database, name string, opts *storeOptions, indexes ...mongo.IndexModel) *collection[D, P] {
	return &collection[D, P]{
		coll:    db.Collection(name),
		indexes: indexes,
		timeout: opts.operationTimeout,
		nowFunc: opts.nowFunc,
	}
}

func (c *collection[D, P]) name() string {
	return c.coll.Name()
}

// call runs fn bounded by the operation timeout and classifies its error.
func (c *collection[D, P]) call(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	start := time.Now()
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	err := classify(ctx, fn(callCtx))
	metrics.ObserveStoreOperation(c.name(), operation, resultOf(err), time.Since(start))
	return err
}

// insert stores doc, assigning its identifier when missing and stamping the creation time and schema version.
func (c *collection[D, P]) insert(ctx context.Context, doc P) error {
	m := doc.meta()
	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	// the store keeps millisecond precision
	m.Created = c.nowFunc().UTC().Truncate(time.Millisecond)
	m.SchemaVersion = currentSchemaVersion
	return c.call(ctx, "insert", func(ctx context.Context) error {
		_, err := c.coll.InsertOne(ctx, doc)
		return err
	})
}

// findOne returns the first document matching f, in sort order when given. It returns model.ErrNotFound when nothing matches.
func (c *collection[D, P]) findOne(ctx context.Context, f *filter, sort bson.D) (P, error) {
	query, err := f.lookup()
	if err != nil {
		return nil, err
	}
	opts := options.FindOne()
	if sort != nil {
		opts.SetSort(sort)
	}
	var raw bson.Raw
	err = c.call(ctx, "find_one", func(ctx context.Context) error {
		raw, err = c.coll.FindOne(ctx, query, opts).Raw()
		return err
	})
	if err != nil {
		return nil, err
	}
	return decodeDocument[D, P](raw)
}

// decodeDocument decodes raw into a record. A document not matching the record layout yields model.ErrCorruptRecord.
func decodeDocument[D any, P documentPtr[D]](raw bson.Raw) (P, error) {
	doc := P(new(D))
	if err := bson.Unmarshal(raw, doc); err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrCorruptRecord, err)
	}
	return doc, nil
}

func (c *collection[D, P]) findByID(ctx context.Context, id interface{}) (P, error) {
	return c.findOne(ctx, newFilter().id(id), nil)
}

// exists reports whether any document matches f.
func (c *collection[D, P]) exists(ctx context.Context, f *filter) (bool, error) {
	query, err := f.lookup()
	if err != nil {
		return false, err
	}
	var count int64
	err = c.call(ctx, "count", func(ctx context.Context) error {
		count, err = c.coll.CountDocuments(ctx, query, options.Count().SetLimit(1))
		return err
	})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// find opens a cursor over the documents matching f. An empty filter iterates the whole collection.
func (c *collection[D, P]) find(ctx context.Context, f *filter, sort bson.D) (*Cursor[D, P], error) {
	query, err := f.build()
	if err != nil {
		return nil, err
	}
	opts := options.Find()
	if sort != nil {
		opts.SetSort(sort)
	}
	var cur *mongo.Cursor
	err = c.call(ctx, "find", func(ctx context.Context) error {
		cur, err = c.coll.Find(ctx, query, opts)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &Cursor[D, P]{cur: cur, coll: c}, nil
}

// update holds the operators of a partial update.
type update struct {
	set      bson.D
	push     bson.D
	addToSet bson.D
	pull     bson.D
}

func (u update) doc() bson.D {
	d := bson.D{}
	for _, op := range []struct {
		name   string
		fields bson.D
	}{
		{"$set", u.set},
		{"$push", u.push},
		{"$addToSet", u.addToSet},
		{"$pull", u.pull},
	} {
		if len(op.fields) > 0 {
			d = append(d, bson.E{Key: op.name, Value: op.fields})
		}
	}
	return d
}

// updateByID applies u to the document with the given identifier. It returns model.ErrNotFound when no document matched.
func (c *collection[D, P]) updateByID(ctx context.Context, id interface{}, u update) error {
	oid, err := NormalizeID(id)
	if err != nil {
		return err
	}
	doc := u.doc()
	if len(doc) == 0 {
		return fmt.Errorf("%w: empty update on %s", model.ErrProgramming, c.name())
	}
	var res *mongo.UpdateResult
	err = c.call(ctx, "update", func(ctx context.Context) error {
		res, err = c.coll.UpdateByID(ctx, oid, doc)
		return err
	})
	if err != nil {
		return err
	}
	if res.MatchedCount < 1 {
		return model.ErrNotFound
	}
	return nil
}

// removeByID deletes the document with the given identifier and reports whether it existed.
func (c *collection[D, P]) removeByID(ctx context.Context, id interface{}) (bool, error) {
	removed, err := c.remove(ctx, newFilter().id(id))
	if err != nil {
		return false, err
	}
	return removed > 0, nil
}

// remove deletes every document matching f. An empty filter is refused.
func (c *collection[D, P]) remove(ctx context.Context, f *filter) (int64, error) {
	query, err := f.lookup()
	if err != nil {
		return 0, err
	}
	var res *mongo.DeleteResult
	err = c.call(ctx, "remove", func(ctx context.Context) error {
		res, err = c.coll.DeleteMany(ctx, query)
		return err
	})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ensureIndexes creates the declared indexes. Creating an existing identical index is a no-op.
func (c *collection[D, P]) ensureIndexes(ctx context.Context) error {
	if len(c.indexes) == 0 {
		return nil
	}
	return c.call(ctx, "create_indexes", func(ctx context.Context) error {
		_, err := c.coll.Indexes().CreateMany(ctx, c.indexes)
		return err
	})
}

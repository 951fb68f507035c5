package mongo

import (
	"github.com/rbroggi/atoll/internal/core/model"
	"go.mongodb.org/mongo-driver/bson"
)

// filter composes independent equality fragments into a query document.
// The first identifier error is kept and reported by build/lookup.
type filter struct {
	d   bson.D
	err error
}

func newFilter() *filter {
	return &filter{d: bson.D{}}
}

// id matches the document identifier.
func (f *filter) id(v interface{}) *filter {
	return f.oid(fieldID, v)
}

// oid matches an identifier valued field.
func (f *filter) oid(key string, v interface{}) *filter {
	oid, err := NormalizeID(v)
	if err != nil {
		f.fail(err)
		return f
	}
	return f.eq(key, oid)
}

// oids matches an identifier valued field against any of ids.
func (f *filter) oids(key string, ids []model.ID) *filter {
	oids, err := normalizeIDs(ids)
	if err != nil {
		f.fail(err)
		return f
	}
	return f.eq(key, bson.M{"$in": oids})
}

func (f *filter) eq(key string, v interface{}) *filter {
	f.d = append(f.d, bson.E{Key: key, Value: v})
	return f
}

// contains matches array fields holding v.
func (f *filter) contains(key string, v interface{}) *filter {
	return f.eq(key, bson.M{"$in": bson.A{v}})
}

func (f *filter) fail(err error) {
	if f.err == nil {
		f.err = err
	}
}

// build returns the query. An empty query matches every document.
func (f *filter) build() (bson.D, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.d, nil
}

// lookup returns the query of an operation targeting specific documents.
// An empty query is a programming error, never "any document".
func (f *filter) lookup() (bson.D, error) {
	d, err := f.build()
	if err != nil {
		return nil, err
	}
	if len(d) == 0 {
		return nil, model.ErrEmptyFilter
	}
	return d, nil
}

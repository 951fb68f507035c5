package mongo

import (
	"fmt"

	"github.com/rbroggi/atoll/internal/core/model"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NormalizeID converts a caller supplied identifier (model.ID, hex string or ObjectID) into an ObjectID.
// It fails with model.ErrInvalidID instead of producing an identifier that matches nothing.
func NormalizeID(v interface{}) (primitive.ObjectID, error) {
	switch id := v.(type) {
	case primitive.ObjectID:
		if id.IsZero() {
			return primitive.NilObjectID, fmt.Errorf("%w: zero object id", model.ErrInvalidID)
		}
		return id, nil
	case *primitive.ObjectID:
		if id == nil {
			return primitive.NilObjectID, fmt.Errorf("%w: nil object id", model.ErrInvalidID)
		}
		return NormalizeID(*id)
	case model.ID:
		return parseHex(string(id))
	case string:
		return parseHex(id)
	default:
		return primitive.NilObjectID, fmt.Errorf("%w: unsupported identifier type %T", model.ErrInvalidID, v)
	}
}

func parseHex(s string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", model.ErrInvalidID, s)
	}
	return oid, nil
}

func normalizeIDs(ids []model.ID) ([]primitive.ObjectID, error) {
	oids := make([]primitive.ObjectID, len(ids))
	for i, id := range ids {
		oid, err := NormalizeID(id)
		if err != nil {
			return nil, err
		}
		oids[i] = oid
	}
	return oids, nil
}

func toModelID(oid primitive.ObjectID) model.ID {
	if oid.IsZero() {
		return ""
	}
	return model.ID(oid.Hex())
}

func toModelIDs(oids []primitive.ObjectID) []model.ID {
	ids := make([]model.ID, len(oids))
	for i, oid := range oids {
		ids[i] = toModelID(oid)
	}
	return ids
}

// optionalObjectID maps an empty id to nil.
func optionalObjectID(id model.ID) (*primitive.ObjectID, error) {
	if id.IsZero() {
		return nil, nil
	}
	oid, err := NormalizeID(id)
	if err != nil {
		return nil, err
	}
	return &oid, nil
}

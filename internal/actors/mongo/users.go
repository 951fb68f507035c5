package mongo

import (
	"context"
	"errors"

	"github.com/rbroggi/atoll/internal/core/model"
	"github.com/rbroggi/atoll/internal/core/ports"
	"go.mongodb.org/mongo-driver/bson"
)

// InsertUser will save the user in the database.
func (m *MongoDB) InsertUser(ctx context.Context, user *model.User) error {
	if user == nil {
		return errors.New("nil user passed to insert method")
	}
	doc, err := toUserDocument(user)
	if err != nil {
		return err
	}
	if err := m.users.insert(ctx, doc); err != nil {
		return err
	}
	user.ID = toModelID(doc.ID)
	user.CreatedAt = doc.Created
	return nil
}

// FindUser returns the first user matching the query.
func (m *MongoDB) FindUser(ctx context.Context, query ports.UserQuery) (*model.User, error) {
	f := newFilter()
	if !query.ID.IsZero() {
		f.id(query.ID)
	}
	if query.Mail != "" {
		f.eq(fieldMail, query.Mail)
	}
	if query.Token != "" {
		f.contains(fieldTokens, query.Token)
	}
	if tgID, ok := query.TgID.Get(); ok {
		f.eq(fieldTgID, tgID)
	}
	if tgUsername, ok := query.TgUsername.Get(); ok {
		f.eq(fieldTgUsername, tgUsername)
	}

	doc, err := m.users.findOne(ctx, f, nil)
	if err != nil {
		return nil, err
	}
	user, err := fromUserDocument(doc)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers lists users matching the query in insertion order.
func (m *MongoDB) ListUsers(ctx context.Context, query ports.ListUsersQuery) ([]model.User, error) {
	f := newFilter()
	if len(query.IDs) > 0 {
		f.oids(fieldID, query.IDs)
	}
	if len(query.Roles) > 0 {
		roles := make([]string, len(query.Roles))
		for i, r := range query.Roles {
			roles[i] = string(r)
		}
		f.eq(fieldRoles, bson.M{"$in": roles})
	}
	return findAll(ctx, m.users, f, bson.D{{Key: fieldID, Value: 1}}, fromUserDocument)
}

// UpdateUser sets the fields set in args. It returns model.ErrNotFound if the user does not exist.
func (m *MongoDB) UpdateUser(ctx context.Context, args model.UpdateUserArgs) error {
	set := bson.D{}
	setIf := func(key string, v interface{}, ok bool) {
		if ok {
			set = append(set, bson.E{Key: key, Value: v})
		}
	}
	fullname, ok := args.Fullname.Get()
	setIf(fieldFullname, fullname, ok)
	birthDt, ok := args.BirthDt.Get()
	setIf(fieldBirthDt, birthDt, ok)
	tgID, ok := args.TgID.Get()
	setIf(fieldTgID, tgID, ok)
	tgUsername, ok := args.TgUsername.Get()
	setIf(fieldTgUsername, tgUsername, ok)
	vkID, ok := args.VkID.Get()
	setIf(fieldVkID, vkID, ok)
	description, ok := args.Description.Get()
	setIf(fieldDesc, description, ok)
	if len(set) == 0 {
		// nothing to write, only check existence
		_, err := m.users.findByID(ctx, args.ID)
		return err
	}
	return m.users.updateByID(ctx, args.ID, update{set: set})
}

// PullUserToken removes token from the user tokens.
func (m *MongoDB) PullUserToken(ctx context.Context, userID model.ID, token string) error {
	return m.users.updateByID(ctx, userID, update{pull: bson.D{{Key: fieldTokens, Value: token}}})
}

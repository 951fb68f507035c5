package mongo

import (
	"context"
	"errors"

	"github.com/rbroggi/atoll/internal/core/model"
	"github.com/rbroggi/atoll/internal/core/ports"
	"go.mongodb.org/mongo-driver/bson"
)

// InsertMailCode will save the mail code in the database. A code already in use yields model.ErrDuplicate.
func (m *MongoDB) InsertMailCode(ctx context.Context, mailCode *model.MailCode) error {
	if mailCode == nil {
		return errors.New("nil mail code passed to insert method")
	}
	doc, err := toMailCodeDocument(mailCode)
	if err != nil {
		return err
	}
	if err := m.mailCodes.insert(ctx, doc); err != nil {
		return err
	}
	mailCode.ID = toModelID(doc.ID)
	mailCode.CreatedAt = doc.Created
	return nil
}

// MailCodeExists reports whether a stored mail code has the given code.
func (m *MongoDB) MailCodeExists(ctx context.Context, code string) (bool, error) {
	return m.mailCodes.exists(ctx, newFilter().eq(fieldCode, code))
}

func mailCodeFilter(query ports.MailCodeQuery) *filter {
	f := newFilter()
	if !query.ID.IsZero() {
		f.id(query.ID)
	}
	if query.ToMail != "" {
		f.eq(fieldToMail, query.ToMail)
	}
	if query.Code != "" {
		f.eq(fieldCode, query.Code)
	}
	if query.Type != "" {
		f.eq(fieldType, string(query.Type))
	}
	if id, ok := query.ToUserID.Get(); ok {
		if id != nil {
			f.oid(fieldToUserOID, *id)
		} else {
			f.eq(fieldToUserOID, nil)
		}
	}
	return f
}

// ListMailCodes lists mail codes matching the query, newest first.
func (m *MongoDB) ListMailCodes(ctx context.Context, query ports.MailCodeQuery) ([]model.MailCode, error) {
	sort := bson.D{{Key: fieldCreated, Value: -1}, {Key: fieldID, Value: -1}}
	return findAll(ctx, m.mailCodes, mailCodeFilter(query), sort, fromMailCodeDocument)
}

// RemoveMailCodes removes the mail codes matching the query. An empty query is refused.
func (m *MongoDB) RemoveMailCodes(ctx context.Context, query ports.MailCodeQuery) (int64, error) {
	return m.mailCodes.remove(ctx, mailCodeFilter(query))
}

// InsertRepresentativeRequest will save the representative request in the database.
func (m *MongoDB) InsertRepresentativeRequest(ctx context.Context, request *model.RepresentativeRequest) error {
	if request == nil {
		return errors.New("nil representative request passed to insert method")
	}
	doc, err := toRepresentativeRequestDocument(request)
	if err != nil {
		return err
	}
	if err := m.representativeRequests.insert(ctx, doc); err != nil {
		return err
	}
	request.ID = toModelID(doc.ID)
	request.CreatedAt = doc.Created
	return nil
}

// ListRepresentativeRequests lists every representative request in insertion order.
func (m *MongoDB) ListRepresentativeRequests(ctx context.Context) ([]model.RepresentativeRequest, error) {
	return findAll(ctx, m.representativeRequests, newFilter(), bson.D{{Key: fieldID, Value: 1}}, fromRepresentativeRequestDocument)
}

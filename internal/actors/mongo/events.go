package mongo

import (
	"context"
	"errors"

	"github.com/rbroggi/atoll/internal/core/model"
	"github.com/rbroggi/atoll/internal/core/ports"
	"go.mongodb.org/mongo-driver/bson"
)

// InsertEvent will save the event in the database.
func (m *MongoDB) InsertEvent(ctx context.Context, event *model.Event) error {
	if event == nil {
		return errors.New("nil event passed to insert method")
	}
	doc, err := toEventDocument(event)
	if err != nil {
		return err
	}
	if err := m.events.insert(ctx, doc); err != nil {
		return err
	}
	event.ID = toModelID(doc.ID)
	event.CreatedAt = doc.Created
	return nil
}

// FindEvent returns the event matching the query.
func (m *MongoDB) FindEvent(ctx context.Context, query ports.EventQuery) (*model.Event, error) {
	f := newFilter()
	if !query.ID.IsZero() {
		f.id(query.ID)
	}
	if !query.SourceRequestID.IsZero() {
		f.oid(fieldSourceRequestOID, query.SourceRequestID)
	}
	doc, err := m.events.findOne(ctx, f, nil)
	if err != nil {
		return nil, err
	}
	event, err := fromEventDocument(doc)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// ListEvents lists events matching the query in insertion order.
func (m *MongoDB) ListEvents(ctx context.Context, query ports.ListEventsQuery) ([]model.Event, error) {
	f := newFilter()
	if len(query.AnyTeamIDs) > 0 {
		f.oids(fieldTeamOIDs, query.AnyTeamIDs)
	}
	return findAll(ctx, m.events, f, bson.D{{Key: fieldID, Value: 1}}, fromEventDocument)
}

// InsertEventRequest will save the event request in the database.
func (m *MongoDB) InsertEventRequest(ctx context.Context, request *model.EventRequest) error {
	if request == nil {
		return errors.New("nil event request passed to insert method")
	}
	doc, err := toEventRequestDocument(request)
	if err != nil {
		return err
	}
	if err := m.eventRequests.insert(ctx, doc); err != nil {
		return err
	}
	request.ID = toModelID(doc.ID)
	request.CreatedAt = doc.Created
	return nil
}

// FindEventRequest returns the event request with the given id.
func (m *MongoDB) FindEventRequest(ctx context.Context, id model.ID) (*model.EventRequest, error) {
	doc, err := m.eventRequests.findByID(ctx, id)
	if err != nil {
		return nil, err
	}
	request, err := fromEventRequestDocument(doc)
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// ListEventRequests lists every event request in insertion order.
func (m *MongoDB) ListEventRequests(ctx context.Context) ([]model.EventRequest, error) {
	return findAll(ctx, m.eventRequests, newFilter(), bson.D{{Key: fieldID, Value: 1}}, fromEventRequestDocument)
}

// RemoveEventRequest removes the request and reports whether it existed.
func (m *MongoDB) RemoveEventRequest(ctx context.Context, id model.ID) (bool, error) {
	return m.eventRequests.removeByID(ctx, id)
}

// InsertRating will save the rating in the database.
func (m *MongoDB) InsertRating(ctx context.Context, rating *model.Rating) error {
	if rating == nil {
		return errors.New("nil rating passed to insert method")
	}
	doc, err := toRatingDocument(rating)
	if err != nil {
		return err
	}
	if err := m.ratings.insert(ctx, doc); err != nil {
		return err
	}
	rating.ID = toModelID(doc.ID)
	rating.CreatedAt = doc.Created
	return nil
}

// ListRatings lists ratings matching the query, best place first.
func (m *MongoDB) ListRatings(ctx context.Context, query ports.ListRatingsQuery) ([]model.Rating, error) {
	f := newFilter()
	if !query.EventID.IsZero() {
		f.oid(fieldEventOID, query.EventID)
	}
	sort := bson.D{{Key: fieldPlace, Value: 1}, {Key: fieldID, Value: 1}}
	return findAll(ctx, m.ratings, f, sort, fromRatingDocument)
}

// InsertFeedback will save the feedback in the database.
func (m *MongoDB) InsertFeedback(ctx context.Context, feedback *model.Feedback) error {
	if feedback == nil {
		return errors.New("nil feedback passed to insert method")
	}
	doc, err := toFeedbackDocument(feedback)
	if err != nil {
		return err
	}
	if err := m.feedbacks.insert(ctx, doc); err != nil {
		return err
	}
	feedback.ID = toModelID(doc.ID)
	feedback.CreatedAt = doc.Created
	return nil
}

// ListFeedbacks lists feedbacks matching the query in insertion order.
func (m *MongoDB) ListFeedbacks(ctx context.Context, query ports.ListFeedbacksQuery) ([]model.Feedback, error) {
	f := newFilter()
	if !query.EventID.IsZero() {
		f.oid(fieldEventOID, query.EventID)
	}
	return findAll(ctx, m.feedbacks, f, bson.D{{Key: fieldID, Value: 1}}, fromFeedbackDocument)
}

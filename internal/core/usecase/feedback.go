package usecase

import (
	"context"
	"fmt"

	"github.com/rbroggi/atoll/internal/core/model"
	"github.com/rbroggi/atoll/internal/core/ports"
)

// FeedbackService collects feedback about events.
type FeedbackService struct {
	feedbacks ports.FeedbackRepository
	events    ports.EventRepository
	users     ports.UserRepository
}

// CreateFeedback stores the feedback of a user about an event. Both must exist.
func (s *FeedbackService) CreateFeedback(ctx context.Context, args model.CreateFeedbackArgs) (*model.Feedback, error) {
	if _, err := resolveEvent(ctx, s.events, args.EventID); err != nil {
		return nil, err
	}
	if _, err := resolveUser(ctx, s.users, args.UserID); err != nil {
		return nil, err
	}

	feedback := &model.Feedback{
		EventID: args.EventID,
		UserID:  args.UserID,
		Text:    args.Text,
		Rate:    args.Rate,
	}
	if err := s.feedbacks.InsertFeedback(ctx, feedback); err != nil {
		return nil, fmt.Errorf("error saving feedback in repository: %w", err)
	}
	return feedback, nil
}

// ListFeedbacks lists feedbacks. A zero eventID lists the feedbacks of every event.
func (s *FeedbackService) ListFeedbacks(ctx context.Context, eventID model.ID) ([]model.Feedback, error) {
	feedbacks, err := s.feedbacks.ListFeedbacks(ctx, ports.ListFeedbacksQuery{EventID: eventID})
	if err != nil {
		return nil, fmt.Errorf("error listing feedbacks: %w", err)
	}
	return feedbacks, nil
}

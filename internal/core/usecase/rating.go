package usecase

import (
	"context"
	"fmt"

	"github.com/rbroggi/atoll/internal/core/model"
	"github.com/rbroggi/atoll/internal/core/ports"
)

// RatingService records the places teams took in events.
type RatingService struct {
	ratings ports.RatingRepository
	teams   ports.TeamRepository
	events  ports.EventRepository
}

// CreateRating stores the place of a team in an event. Both must exist.
func (s *RatingService) CreateRating(ctx context.Context, args model.CreateRatingArgs) (*model.Rating, error) {
	if _, err := resolveTeam(ctx, s.teams, args.TeamID); err != nil {
		return nil, err
	}
	if _, err := resolveEvent(ctx, s.events, args.EventID); err != nil {
		return nil, err
	}
	if args.Place < 1 {
		return nil, fmt.Errorf("%w: place must be positive", model.ErrValidation)
	}

	rating := &model.Rating{EventID: args.EventID, TeamID: args.TeamID, Place: args.Place}
	if err := s.ratings.InsertRating(ctx, rating); err != nil {
		return nil, fmt.Errorf("error saving rating in repository: %w", err)
	}
	return rating, nil
}

// ListRatings lists ratings by place ascending. A zero eventID lists the ratings of every event.
func (s *RatingService) ListRatings(ctx context.Context, eventID model.ID) ([]model.Rating, error) {
	ratings, err := s.ratings.ListRatings(ctx, ports.ListRatingsQuery{EventID: eventID})
	if err != nil {
		return nil, fmt.Errorf("error listing ratings: %w", err)
	}
	return ratings, nil
}

func resolveEvent(ctx context.Context, events ports.EventRepository, id model.ID) (*model.Event, error) {
	if id.IsZero() {
		return nil, fmt.Errorf("%w: missing event id", model.ErrValidation)
	}
	event, err := events.FindEvent(ctx, ports.EventQuery{ID: id})
	if err != nil {
		return nil, referenceErr(err, "event", id)
	}
	return event, nil
}

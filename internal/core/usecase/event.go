package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rbroggi/atoll/internal/core/model"
	"github.com/rbroggi/atoll/internal/core/ports"
)

// EventService gathers the functionality around events.
type EventService struct {
	events    ports.EventRepository
	teams     ports.TeamRepository
	feedbacks ports.FeedbackRepository
	informer  *Informer
	nowFunc   func() time.Time
}

// CreateEvent creates an event. Every team must exist and the time window must not be reversed.
func (s *EventService) CreateEvent(ctx context.Context, args model.CreateEventArgs) (*model.Event, error) {
	event, err := newEvent(args, s.nowFunc)
	if err != nil {
		return nil, err
	}
	if len(event.TeamIDs) > 0 {
		teams, err := s.teams.ListTeams(ctx, ports.ListTeamsQuery{IDs: event.TeamIDs})
		if err != nil {
			return nil, fmt.Errorf("error loading teams: %w", err)
		}
		if missing := missingIDs(event.TeamIDs, teamIDs(teams)); len(missing) > 0 {
			return nil, fmt.Errorf("%w: teams %v", model.ErrReferenceNotFound, missing)
		}
	}

	if err := s.events.InsertEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("error saving event in repository: %w", err)
	}
	s.informer.Inform(ctx, model.DomainEventEventCreated, event.ID, nil)
	return event, nil
}

// GetEvent returns the event with the given id or model.ErrNotFound.
func (s *EventService) GetEvent(ctx context.Context, id model.ID) (*model.Event, error) {
	event, err := s.events.FindEvent(ctx, ports.EventQuery{ID: id})
	if err != nil {
		return nil, fmt.Errorf("error finding event: %w", err)
	}
	return event, nil
}

// ListEvents lists all events.
func (s *EventService) ListEvents(ctx context.Context) ([]model.Event, error) {
	events, err := s.events.ListEvents(ctx, ports.ListEventsQuery{})
	if err != nil {
		return nil, fmt.Errorf("error listing events: %w", err)
	}
	return events, nil
}

// ListUserEvents lists the events in which at least one team of the user takes part.
func (s *EventService) ListUserEvents(ctx context.Context, userID model.ID) ([]model.Event, error) {
	teams, err := s.teams.ListTeams(ctx, ports.ListTeamsQuery{MemberID: userID})
	if err != nil {
		return nil, fmt.Errorf("error listing user teams: %w", err)
	}
	if len(teams) == 0 {
		return []model.Event{}, nil
	}
	events, err := s.events.ListEvents(ctx, ports.ListEventsQuery{AnyTeamIDs: teamIDs(teams)})
	if err != nil {
		return nil, fmt.Errorf("error listing user events: %w", err)
	}
	return events, nil
}

func newEvent(args model.CreateEventArgs, nowFunc func() time.Time) (*model.Event, error) {
	start := args.StartDt
	if start.IsZero() {
		start = nowFunc()
	}
	if args.EndDt.Before(start) {
		return nil, fmt.Errorf("%w: event ends before it starts", model.ErrValidation)
	}
	timeline := args.Timeline
	if timeline == nil {
		timeline = []model.TimelineEntry{}
	}
	ids := []model.ID{}
	if args.TeamIDs != nil {
		ids = uniqueIDs(args.TeamIDs)
	}
	return &model.Event{
		Title:       args.Title,
		Description: args.Description,
		StartDt:     start,
		EndDt:       args.EndDt,
		Timeline:    timeline,
		TeamIDs:     ids,
	}, nil
}

func teamIDs(teams []model.Team) []model.ID {
	ids := make([]model.ID, len(teams))
	for i, t := range teams {
		ids[i] = t.ID
	}
	return ids
}

// missingIDs returns the ids of want absent from have.
func missingIDs(want, have []model.ID) []model.ID {
	present := make(map[model.ID]struct{}, len(have))
	for _, id := range have {
		present[id] = struct{}{}
	}
	var missing []model.ID
	for _, id := range want {
		if _, ok := present[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

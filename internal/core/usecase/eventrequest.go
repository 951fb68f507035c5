package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/rbroggi/atoll/internal/core/model"
	"github.com/rbroggi/atoll/internal/core/ports"
	log "github.com/sirupsen/logrus"
)

// EventRequestService gathers the functionality around event requests and their conversion into events.
type EventRequestService struct {
	requests   ports.EventRequestRepository
	events     ports.EventRepository
	users      ports.UserRepository
	transactor ports.Transactor
	informer   *Informer
	nowFunc    func() time.Time
}

// CreateEventRequest stores a request for an event. The requestor must exist.
func (s *EventRequestService) CreateEventRequest(ctx context.Context, args model.CreateEventRequestArgs) (*model.EventRequest, error) {
	start := args.StartDt
	if start.IsZero() {
		start = s.nowFunc()
	}
	if args.EndDt.Before(start) {
		return nil, fmt.Errorf("%w: event request ends before it starts", model.ErrValidation)
	}
	requestor, err := resolveUser(ctx, s.users, args.RequestorID)
	if err != nil {
		return nil, fmt.Errorf("error resolving requestor: %w", err)
	}
	timeline := args.Timeline
	if timeline == nil {
		timeline = []model.TimelineEntry{}
	}

	request := &model.EventRequest{
		Title:       args.Title,
		Description: args.Description,
		RequestorID: requestor.ID,
		StartDt:     start,
		EndDt:       args.EndDt,
		Timeline:    timeline,
	}
	if err := s.requests.InsertEventRequest(ctx, request); err != nil {
		return nil, fmt.Errorf("error saving event request in repository: %w", err)
	}
	request.Requestor = requestor

	s.informer.Inform(ctx, model.DomainEventEventRequestCreated, request.ID, map[string]string{"requestor_id": requestor.ID.String()})
	return request, nil
}

// GetEventRequest returns the event request with the given id or model.ErrNotFound.
func (s *EventRequestService) GetEventRequest(ctx context.Context, id model.ID) (*model.EventRequest, error) {
	request, err := s.requests.FindEventRequest(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error finding event request: %w", err)
	}
	return request, nil
}

// ListEventRequests lists all pending event requests.
func (s *EventRequestService) ListEventRequests(ctx context.Context) ([]model.EventRequest, error) {
	requests, err := s.requests.ListEventRequests(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing event requests: %w", err)
	}
	return requests, nil
}

// ConvertEventRequest turns a request into an event and removes the request.
//
// The event records the request it comes from and at most one event per request can exist.
// If a previous conversion stored the event but did not remove the request, the stored event is
// reused and the removal completed. Converting a request that is gone because it was already
// converted returns model.ErrAlreadyConverted; one that never existed returns model.ErrReferenceNotFound.
func (s *EventRequestService) ConvertEventRequest(ctx context.Context, requestID model.ID) (*model.Event, error) {
	var converted *model.Event
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		converted = nil
		request, err := s.requests.FindEventRequest(ctx, requestID)
		if errors.Is(err, model.ErrNotFound) {
			return s.missingRequestErr(ctx, requestID)
		}
		if err != nil {
			return fmt.Errorf("error loading event request: %w", err)
		}

		event, err := s.events.FindEvent(ctx, ports.EventQuery{SourceRequestID: request.ID})
		switch {
		case err == nil:
			log.WithField("event_request_id", request.ID).
				WithField("event_id", event.ID).
				Debug("completing half-done event request conversion")
		case errors.Is(err, model.ErrNotFound):
			event, err = newEvent(model.CreateEventArgs{
				Title:       request.Title,
				Description: request.Description,
				StartDt:     request.StartDt,
				EndDt:       request.EndDt,
				Timeline:    request.Timeline,
			}, s.nowFunc)
			if err != nil {
				return err
			}
			event.SourceRequestID = request.ID
			if err := s.events.InsertEvent(ctx, event); err != nil {
				return fmt.Errorf("error saving event in repository: %w", err)
			}
		default:
			return fmt.Errorf("error looking up converted event: %w", err)
		}

		removed, err := s.requests.RemoveEventRequest(ctx, request.ID)
		if err != nil {
			return fmt.Errorf("error removing event request: %w", err)
		}
		if !removed {
			return fmt.Errorf("%w: [%s] converted concurrently", model.ErrAlreadyConverted, request.ID)
		}
		converted = event
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.informer.Inform(ctx, model.DomainEventEventRequestConverted, requestID, map[string]string{"event_id": converted.ID.String()})
	return converted, nil
}

func (s *EventRequestService) missingRequestErr(ctx context.Context, requestID model.ID) error {
	event, err := s.events.FindEvent(ctx, ports.EventQuery{SourceRequestID: requestID})
	if err == nil {
		return fmt.Errorf("%w: [%s] became event [%s]", model.ErrAlreadyConverted, requestID, event.ID)
	}
	if errors.Is(err, model.ErrNotFound) {
		return fmt.Errorf("%w: event request [%s]", model.ErrReferenceNotFound, requestID)
	}
	return fmt.Errorf("error looking up converted event: %w", err)
}

// SweepConvertedRequests removes the requests whose event already exists, finishing conversions
// interrupted between the event creation and the request removal.
// Every request is inspected even when some fail; failures are returned together.
func (s *EventRequestService) SweepConvertedRequests(ctx context.Context) (*model.SweepResult, error) {
	requests, err := s.requests.ListEventRequests(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing event requests: %w", err)
	}

	res := &model.SweepResult{}
	var errs *multierror.Error
	for _, request := range requests {
		if err := ctx.Err(); err != nil {
			return res, multierror.Append(errs, err).ErrorOrNil()
		}
		res.Inspected++
		_, err := s.events.FindEvent(ctx, ports.EventQuery{SourceRequestID: request.ID})
		if errors.Is(err, model.ErrNotFound) {
			continue
		}
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("event request [%s]: %w", request.ID, err))
			continue
		}
		removed, err := s.requests.RemoveEventRequest(ctx, request.ID)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("event request [%s]: %w", request.ID, err))
			continue
		}
		if removed {
			res.Removed++
			log.WithField("event_request_id", request.ID).Info("removed already converted event request")
		}
	}
	return res, errs.ErrorOrNil()
}

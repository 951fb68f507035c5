package usecase

import (
	"context"
	"fmt"

	"github.com/rbroggi/atoll/internal/core/model"
	"github.com/rbroggi/atoll/internal/core/ports"
)

// RepresentativeRequestService handles applications for the representative role.
type RepresentativeRequestService struct {
	requests ports.RepresentativeRequestRepository
	users    ports.UserRepository
}

// CreateRepresentativeRequest stores the application of an existing user.
func (s *RepresentativeRequestService) CreateRepresentativeRequest(ctx context.Context, args model.CreateRepresentativeRequestArgs) (*model.RepresentativeRequest, error) {
	user, err := resolveUser(ctx, s.users, args.UserID)
	if err != nil {
		return nil, err
	}

	request := &model.RepresentativeRequest{UserID: user.ID, UserIntID: args.UserIntID}
	if err := s.requests.InsertRepresentativeRequest(ctx, request); err != nil {
		return nil, fmt.Errorf("error saving representative request in repository: %w", err)
	}
	request.User = user
	return request, nil
}

// ListRepresentativeRequests lists every representative request.
func (s *RepresentativeRequestService) ListRepresentativeRequests(ctx context.Context) ([]model.RepresentativeRequest, error) {
	requests, err := s.requests.ListRepresentativeRequests(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing representative requests: %w", err)
	}
	return requests, nil
}

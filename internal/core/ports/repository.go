package ports

import (
	"context"

	"github.com/rbroggi/atoll/internal/core/model"
)

// Repository is the interface for the persistence layer.
// Single lookups return model.ErrNotFound when nothing matches.
type Repository interface {
	UserRepository
	MailCodeRepository
	TeamRepository
	InviteRepository
	EventRepository
	EventRequestRepository
	RatingRepository
	FeedbackRepository
	RepresentativeRequestRepository
}

// Transactor runs a sequence of repository calls as one unit.
type Transactor interface {
	// WithinTransaction runs fn. Repository calls made with the ctx handed to fn take part in the
	// transaction when the store supports it; fn must therefore be safe to retry.
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserRepository persists users.
type UserRepository interface {
	// InsertUser durably saves the user, assigning its ID and CreatedAt.
	InsertUser(ctx context.Context, user *model.User) error

	// FindUser returns the first user matching the query.
	FindUser(ctx context.Context, query UserQuery) (*model.User, error)

	// ListUsers lists all users matching the query.
	ListUsers(ctx context.Context, query ListUsersQuery) ([]model.User, error)

	// UpdateUser sets the fields set in args. It returns model.ErrNotFound if the user does not exist.
	UpdateUser(ctx context.Context, args model.UpdateUserArgs) error

	// PullUserToken removes token from the user tokens.
	PullUserToken(ctx context.Context, userID model.ID, token string) error
}

// MailCodeRepository persists mail codes.
type MailCodeRepository interface {
	InsertMailCode(ctx context.Context, mailCode *model.MailCode) error

	// MailCodeExists reports whether a stored mail code has the given code.
	MailCodeExists(ctx context.Context, code string) (bool, error)

	// ListMailCodes lists mail codes matching the query, newest first.
	ListMailCodes(ctx context.Context, query MailCodeQuery) ([]model.MailCode, error)

	// RemoveMailCodes removes the mail codes matching the query and returns how many were removed.
	RemoveMailCodes(ctx context.Context, query MailCodeQuery) (int64, error)
}

// TeamRepository persists teams.
type TeamRepository interface {
	InsertTeam(ctx context.Context, team *model.Team) error
	FindTeam(ctx context.Context, id model.ID) (*model.Team, error)
	ListTeams(ctx context.Context, query ListTeamsQuery) ([]model.Team, error)

	// AddTeamMember adds userID to the team members unless already there.
	// It returns model.ErrNotFound if the team does not exist.
	AddTeamMember(ctx context.Context, teamID, userID model.ID) error
}

// InviteRepository persists invites.
type InviteRepository interface {
	InsertInvite(ctx context.Context, invite *model.Invite) error
	FindInvite(ctx context.Context, query InviteQuery) (*model.Invite, error)
	ListInvites(ctx context.Context, query ListInvitesQuery) ([]model.Invite, error)

	// RemoveInvite removes the invite and reports whether it existed.
	RemoveInvite(ctx context.Context, id model.ID) (bool, error)
}

// EventRepository persists events.
type EventRepository interface {
	// InsertEvent saves the event. It returns model.ErrDuplicate if an event for the same
	// source request already exists.
	InsertEvent(ctx context.Context, event *model.Event) error
	FindEvent(ctx context.Context, query EventQuery) (*model.Event, error)
	ListEvents(ctx context.Context, query ListEventsQuery) ([]model.Event, error)
}

// EventRequestRepository persists event requests.
type EventRequestRepository interface {
	InsertEventRequest(ctx context.Context, request *model.EventRequest) error
	FindEventRequest(ctx context.Context, id model.ID) (*model.EventRequest, error)
	ListEventRequests(ctx context.Context) ([]model.EventRequest, error)

	// RemoveEventRequest removes the request and reports whether it existed.
	RemoveEventRequest(ctx context.Context, id model.ID) (bool, error)
}

// RatingRepository persists ratings.
type RatingRepository interface {
	InsertRating(ctx context.Context, rating *model.Rating) error

	// ListRatings lists ratings matching the query ordered by place ascending.
	ListRatings(ctx context.Context, query ListRatingsQuery) ([]model.Rating, error)
}

// FeedbackRepository persists feedbacks.
type FeedbackRepository interface {
	InsertFeedback(ctx context.Context, feedback *model.Feedback) error
	ListFeedbacks(ctx context.Context, query ListFeedbacksQuery) ([]model.Feedback, error)
}

// RepresentativeRequestRepository persists representative requests.
type RepresentativeRequestRepository interface {
	InsertRepresentativeRequest(ctx context.Context, request *model.RepresentativeRequest) error
	ListRepresentativeRequests(ctx context.Context) ([]model.RepresentativeRequest, error)
}

package ports

import (
	"github.com/rbroggi/atoll/internal/core/model"
)

// UserQuery identifies one user. At least one field must be set. Set fields are combined.
type UserQuery struct {
	// ID is the user-id to query. Zero-value will be ignored as filter.
	ID model.ID

	// Mail of the user. Zero-value will be ignored as filter.
	Mail string

	// Token is one of the user tokens. Zero-value will be ignored as filter.
	Token string

	// TgID filters on the telegram id, including on its absence when set to nil.
	TgID model.Optional[*int64]

	// TgUsername filters on the telegram username, including on its absence when set to nil.
	TgUsername model.Optional[*string]
}

// Validate returns model.ErrEmptyFilter when no field is set.
func (q UserQuery) Validate() error {
	if q.ID.IsZero() && q.Mail == "" && q.Token == "" && !q.TgID.IsSet() && !q.TgUsername.IsSet() {
		return model.ErrEmptyFilter
	}
	return nil
}

// ListUsersQuery gathers the parameters for listing users.
type ListUsersQuery struct {
	// IDs restricts to these users. Zero-value will be ignored as filter.
	IDs []model.ID

	// Roles keeps users having any of these roles. Zero-value will be ignored as filter.
	Roles []model.Role
}

// MailCodeQuery selects mail codes. Zero-values are ignored as filter.
type MailCodeQuery struct {
	ID     model.ID
	ToMail string
	Code   string
	Type   model.MailCodeType

	// ToUserID filters on the bound user, including on codes bound to no user when set to nil.
	ToUserID model.Optional[*model.ID]
}

// Validate returns model.ErrEmptyFilter when no field is set.
func (q MailCodeQuery) Validate() error {
	if q.ID.IsZero() && q.ToMail == "" && q.Code == "" && q.Type == "" && !q.ToUserID.IsSet() {
		return model.ErrEmptyFilter
	}
	return nil
}

// ListTeamsQuery gathers the parameters for listing teams. Zero-values are ignored as filter.
type ListTeamsQuery struct {
	IDs []model.ID

	// MemberID keeps teams having this user as member.
	MemberID model.ID
}

// InviteQuery identifies one invite by its composite key. Both fields are required.
type InviteQuery struct {
	FromTeamID model.ID
	ToUserID   model.ID
}

// Validate returns model.ErrEmptyFilter when a key field is missing.
func (q InviteQuery) Validate() error {
	if q.FromTeamID.IsZero() || q.ToUserID.IsZero() {
		return model.ErrEmptyFilter
	}
	return nil
}

// ListInvitesQuery gathers the parameters for listing invites.
type ListInvitesQuery struct {
	ToUserID model.ID
}

// EventQuery identifies one event. At least one field must be set.
type EventQuery struct {
	ID              model.ID
	SourceRequestID model.ID
}

// Validate returns model.ErrEmptyFilter when no field is set.
func (q EventQuery) Validate() error {
	if q.ID.IsZero() && q.SourceRequestID.IsZero() {
		return model.ErrEmptyFilter
	}
	return nil
}

// ListEventsQuery gathers the parameters for listing events.
type ListEventsQuery struct {
	// AnyTeamIDs keeps events in which at least one of the teams takes part. Zero-value will be ignored as filter.
	AnyTeamIDs []model.ID
}

// ListRatingsQuery gathers the parameters for listing ratings.
type ListRatingsQuery struct {
	EventID model.ID
}

// ListFeedbacksQuery gathers the parameters for listing feedbacks.
type ListFeedbacksQuery struct {
	EventID model.ID
}

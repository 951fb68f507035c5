package model

import (
	"time"
)

// ID is an opaque, store-assigned identifier. It is immutable once the entity is created.
type ID string

// IsZero reports whether the id is empty.
func (id ID) IsZero() bool {
	return id == ""
}

// String returns the id as a plain string.
func (id ID) String() string {
	return string(id)
}

// Role is a user role.
type Role string

const (
	// RoleSportsman is the default role of every new user.
	RoleSportsman Role = "sportsman"

	// RoleRepresentative is granted to users representing an organization.
	RoleRepresentative Role = "representative"

	// RoleAdmin grants administrative rights.
	RoleAdmin Role = "admin"
)

// MailCodeType tags the purpose of a mail code.
type MailCodeType string

const (
	// MailCodeTypeRegistration is sent when a mail address gets registered.
	MailCodeTypeRegistration MailCodeType = "reg"

	// MailCodeTypeLogin is sent for a passwordless login.
	MailCodeTypeLogin MailCodeType = "login"
)

// User represents a user in the system.
type User struct {
	// ID unique identifier of the user.
	ID ID `json:"id"`

	// Fullname is the user full name.
	Fullname *string `json:"fullname,omitempty"`

	// Mail is the stable external key of the user.
	Mail string `json:"mail"`

	// BirthDt is the user birth date.
	BirthDt *time.Time `json:"birth_dt,omitempty"`

	// TgID is the telegram user id.
	TgID *int64 `json:"tg_id,omitempty"`

	// TgUsername is the telegram username.
	TgUsername *string `json:"tg_username,omitempty"`

	// VkID is the vk user id.
	VkID *int64 `json:"vk_id,omitempty"`

	// Description is a free text about the user.
	Description *string `json:"description,omitempty"`

	// Tokens are the auth tokens of the user.
	Tokens []string `json:"-"`

	// Roles the user has. Never empty.
	Roles []Role `json:"roles"`

	// CreatedAt is the time at which the user was created in the system.
	CreatedAt time.Time `json:"created_at"`
}

// HasAnyRole reports whether the user has at least one of roles.
func (u *User) HasAnyRole(roles ...Role) bool {
	for _, have := range u.Roles {
		for _, want := range roles {
			if have == want {
				return true
			}
		}
	}
	return false
}

// Team is a group of users led by a captain.
type Team struct {
	ID          ID        `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CaptainID   ID        `json:"captain_id"`
	MemberIDs   []ID      `json:"member_ids"`
	CreatedAt   time.Time `json:"created_at"`

	// Captain and Members are attached by services when already loaded. They are never persisted.
	Captain *User  `json:"-"`
	Members []User `json:"-"`
}

// HasMember reports whether userID is part of the team.
func (t *Team) HasMember(userID ID) bool {
	for _, id := range t.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// TimelineEntry is a point of an event agenda.
type TimelineEntry struct {
	At   time.Time `json:"at"`
	Text string    `json:"text"`
}

// Event is a competition or gathering teams take part in.
type Event struct {
	ID          ID              `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	StartDt     time.Time       `json:"start_dt"`
	EndDt       time.Time       `json:"end_dt"`
	Timeline    []TimelineEntry `json:"timeline"`
	TeamIDs     []ID            `json:"team_ids"`

	// SourceRequestID is the event request this event was converted from, if any.
	SourceRequestID ID `json:"source_request_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// EventRequest is a proposal for an event awaiting conversion.
type EventRequest struct {
	ID          ID              `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	RequestorID ID              `json:"requestor_id"`
	StartDt     time.Time       `json:"start_dt"`
	EndDt       time.Time       `json:"end_dt"`
	Timeline    []TimelineEntry `json:"timeline"`
	CreatedAt   time.Time       `json:"created_at"`

	Requestor *User `json:"-"`
}

// Rating is the place a team took in an event.
type Rating struct {
	ID        ID        `json:"id"`
	EventID   ID        `json:"event_id"`
	TeamID    ID        `json:"team_id"`
	Place     int       `json:"place"`
	CreatedAt time.Time `json:"created_at"`
}

// Feedback is what a user thought of an event.
type Feedback struct {
	ID        ID        `json:"id"`
	EventID   ID        `json:"event_id"`
	UserID    ID        `json:"user_id"`
	Text      string    `json:"text"`
	Rate      int       `json:"rate"`
	CreatedAt time.Time `json:"created_at"`
}

// Invite is a pending offer of team membership. Accepting it consumes it.
type Invite struct {
	ID         ID        `json:"id"`
	FromTeamID ID        `json:"from_team_id"`
	ToUserID   ID        `json:"to_user_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// MailCode is a one-time verification code sent to a mail address.
type MailCode struct {
	ID       ID           `json:"id"`
	ToMail   string       `json:"to_mail"`
	Code     string       `json:"code"`
	Type     MailCodeType `json:"type"`
	ToUserID *ID          `json:"to_user_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`

	ToUser *User `json:"-"`
}

// RepresentativeRequest is a user's application for the representative role.
type RepresentativeRequest struct {
	ID        ID        `json:"id"`
	UserID    ID        `json:"user_id"`
	UserIntID int64     `json:"user_int_id"`
	CreatedAt time.Time `json:"created_at"`

	User *User `json:"-"`
}

// EventAnalytics aggregates participation and feedback of one event. Means and medians are truncated.
type EventAnalytics struct {
	TeamsCount              int `json:"teams_count"`
	MeanTeamsParticipants   int `json:"mean_teams_participants"`
	MedianTeamsParticipants int `json:"median_teams_participants"`
	ParticipantsCount       int `json:"participants_count"`
	FeedbacksCount          int `json:"feedbacks_count"`
	MeanRate                int `json:"mean_rate"`
	MedianRate              int `json:"median_rate"`
}

// DomainEventKind names a state change.
type DomainEventKind string

const (
	DomainEventUserCreated           DomainEventKind = "user.created"
	DomainEventTeamCreated           DomainEventKind = "team.created"
	DomainEventInviteCreated         DomainEventKind = "invite.created"
	DomainEventInviteAccepted        DomainEventKind = "invite.accepted"
	DomainEventEventCreated          DomainEventKind = "event.created"
	DomainEventEventRequestCreated   DomainEventKind = "event_request.created"
	DomainEventEventRequestConverted DomainEventKind = "event_request.converted"
)

// DomainEvent collects a state change of the domain, to be informed to other systems.
type DomainEvent struct {
	// ID is the event id.
	ID string `json:"id"`

	// Kind is the type of change.
	Kind DomainEventKind `json:"kind"`

	// EntityID is the id of the entity the change is about.
	EntityID ID `json:"entity_id"`

	// OccurredAt is when the change was committed.
	OccurredAt time.Time `json:"occurred_at"`

	// Attributes are kind-specific details.
	Attributes map[string]string `json:"attributes,omitempty"`
}

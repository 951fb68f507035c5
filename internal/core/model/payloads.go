package model

import (
	"time"
)

// CreateUserArgs contain the arguments of the CreateUser method.
type CreateUserArgs struct {
	// Fullname is the user full name. Optional.
	Fullname *string

	// Mail is the user mail. Required.
	Mail string

	// Tokens to give to the user. When nil, one token is generated unless SkipTokenCreation is set.
	Tokens []string

	// SkipTokenCreation leaves a user created without Tokens tokenless.
	SkipTokenCreation bool

	// BirthDt is the user birth date. Optional.
	BirthDt *time.Time

	// TgUsername is the telegram username. Optional.
	TgUsername *string

	// TgID is the telegram user id. Optional.
	TgID *int64

	// Roles of the user. Defaults to RoleSportsman.
	Roles []Role
}

// CreateUserResponse contains the response of the CreateUser method.
type CreateUserResponse struct {
	// User
	User User

	// CreatedToken is the token generated during creation, empty if none was.
	CreatedToken string
}

// UpdateUserArgs contain the arguments of the UpdateUser method. Unchanged fields are left untouched.
type UpdateUserArgs struct {
	// ID is the id of the user to be updated.
	ID ID

	Fullname    Optional[*string]
	BirthDt     Optional[*time.Time]
	TgID        Optional[*int64]
	TgUsername  Optional[*string]
	VkID        Optional[*int64]
	Description Optional[*string]
}

// HasChanges reports whether at least one field is set.
func (a UpdateUserArgs) HasChanges() bool {
	return a.Fullname.IsSet() || a.BirthDt.IsSet() || a.TgID.IsSet() ||
		a.TgUsername.IsSet() || a.VkID.IsSet() || a.Description.IsSet()
}

// CreateMailCodeArgs contain the arguments of the CreateMailCode method.
type CreateMailCodeArgs struct {
	ToMail string

	// Code is generated when empty.
	Code string

	Type MailCodeType

	// ToUserID binds the code to a user. It must reference an existing user.
	ToUserID *ID
}

// CreateTeamArgs contain the arguments of the CreateTeam method.
type CreateTeamArgs struct {
	CaptainID   ID
	Title       string
	Description string

	// MemberIDs defaults to the captain alone when nil.
	MemberIDs []ID
}

// CreateEventArgs contain the arguments of the CreateEvent method.
type CreateEventArgs struct {
	Title       string
	Description string
	TeamIDs     []ID

	// StartDt defaults to now when zero.
	StartDt  time.Time
	EndDt    time.Time
	Timeline []TimelineEntry
}

// CreateEventRequestArgs contain the arguments of the CreateEventRequest method.
type CreateEventRequestArgs struct {
	Title       string
	Description string
	RequestorID ID

	// StartDt defaults to now when zero.
	StartDt  time.Time
	EndDt    time.Time
	Timeline []TimelineEntry
}

// CreateRatingArgs contain the arguments of the CreateRating method.
type CreateRatingArgs struct {
	EventID ID
	TeamID  ID
	Place   int
}

// CreateFeedbackArgs contain the arguments of the CreateFeedback method.
type CreateFeedbackArgs struct {
	EventID ID
	UserID  ID
	Text    string
	Rate    int
}

// CreateRepresentativeRequestArgs contain the arguments of the CreateRepresentativeRequest method.
type CreateRepresentativeRequestArgs struct {
	UserID    ID
	UserIntID int64
}

// SweepResult reports what a recovery sweep did.
type SweepResult struct {
	// Inspected is the number of event requests looked at.
	Inspected int

	// Removed is the number of already converted requests removed.
	Removed int
}

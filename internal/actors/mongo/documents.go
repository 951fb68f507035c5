package mongo

import (
	"fmt"
	"time"

	"github.com/rbroggi/atoll/internal/core/model"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	fieldID            = "_id"
	fieldCreated       = "created"
	fieldSchemaVersion = "schema_version"

	fieldMail       = "mail"
	fieldFullname   = "fullname"
	fieldBirthDt    = "birth_dt"
	fieldTgID       = "tg_id"
	fieldTgUsername = "tg_username"
	fieldVkID       = "vk_id"
	fieldDesc       = "description"
	fieldTokens     = "tokens"
	fieldRoles      = "roles"

	fieldUserOIDs         = "user_oids"
	fieldTeamOIDs         = "team_oids"
	fieldSourceRequestOID = "source_request_oid"
	fieldEventOID         = "event_oid"
	fieldPlace            = "place"
	fieldFromTeamOID      = "from_team_oid"
	fieldToUserOID        = "to_user_oid"
	fieldToMail           = "to_mail"
	fieldCode             = "code"
	fieldType             = "type"
)

// Required fields are pointers so that a record missing them is told apart from a zero value.

type userDoc struct {
	Meta        `bson:",inline"`
	Fullname    *string    `bson:"fullname"`
	Mail        *string    `bson:"mail"`
	BirthDt     *time.Time `bson:"birth_dt"`
	TgID        *int64     `bson:"tg_id"`
	TgUsername  *string    `bson:"tg_username"`
	VkID        *int64     `bson:"vk_id"`
	Description *string    `bson:"description"`
	Tokens      []string   `bson:"tokens"`
	Roles       []string   `bson:"roles"`
}

type teamDoc struct {
	Meta        `bson:",inline"`
	CaptainOID  *primitive.ObjectID  `bson:"captain_oid"`
	Title       *string              `bson:"title"`
	Description string               `bson:"description"`
	UserOIDs    []primitive.ObjectID `bson:"user_oids"`
}

type timelineDoc struct {
	At   time.Time `bson:"at"`
	Text string    `bson:"text"`
}

type eventDoc struct {
	Meta             `bson:",inline"`
	Title            *string              `bson:"title"`
	Description      string               `bson:"description"`
	StartDt          *time.Time           `bson:"start_dt"`
	EndDt            *time.Time           `bson:"end_dt"`
	Timeline         []timelineDoc        `bson:"timeline"`
	TeamOIDs         []primitive.ObjectID `bson:"team_oids"`
	SourceRequestOID *primitive.ObjectID  `bson:"source_request_oid,omitempty"`
}

type eventRequestDoc struct {
	Meta         `bson:",inline"`
	Title        *string             `bson:"title"`
	Description  string              `bson:"description"`
	RequestorOID *primitive.ObjectID `bson:"requestor_oid"`
	StartDt      *time.Time          `bson:"start_dt"`
	EndDt        *time.Time          `bson:"end_dt"`
	Timeline     []timelineDoc       `bson:"timeline"`
}

type ratingDoc struct {
	Meta     `bson:",inline"`
	EventOID *primitive.ObjectID `bson:"event_oid"`
	TeamOID  *primitive.ObjectID `bson:"team_oid"`
	Place    *int                `bson:"place"`
}

type feedbackDoc struct {
	Meta     `bson:",inline"`
	EventOID *primitive.ObjectID `bson:"event_oid"`
	UserOID  *primitive.ObjectID `bson:"user_oid"`
	Text     string              `bson:"text"`
	Rate     *int                `bson:"rate"`
}

type inviteDoc struct {
	Meta        `bson:",inline"`
	FromTeamOID *primitive.ObjectID `bson:"from_team_oid"`
	ToUserOID   *primitive.ObjectID `bson:"to_user_oid"`
}

type mailCodeDoc struct {
	Meta      `bson:",inline"`
	ToMail    *string             `bson:"to_mail"`
	Code      *string             `bson:"code"`
	Type      *string             `bson:"type"`
	ToUserOID *primitive.ObjectID `bson:"to_user_oid"`
}

type representativeRequestDoc struct {
	Meta      `bson:",inline"`
	UserOID   *primitive.ObjectID `bson:"user_oid"`
	UserIntID *int64              `bson:"user_int_id"`
}

func corrupt(d document, field string) error {
	return fmt.Errorf("%w: record [%s] misses required field %q", model.ErrCorruptRecord, d.meta().ID.Hex(), field)
}

// metaOf converts the identifier and creation time of an entity. A zero id is assigned on insert.
func metaOf(id model.ID, createdAt time.Time) (Meta, error) {
	m := Meta{Created: createdAt}
	if id.IsZero() {
		return m, nil
	}
	oid, err := NormalizeID(id)
	if err != nil {
		return m, err
	}
	m.ID = oid
	return m, nil
}

func requiredObjectID(id model.ID) (*primitive.ObjectID, error) {
	oid, err := NormalizeID(id)
	if err != nil {
		return nil, err
	}
	return &oid, nil
}

func ptr[T any](v T) *T {
	return &v
}

func toUserDocument(u *model.User) (*userDoc, error) {
	m, err := metaOf(u.ID, u.CreatedAt)
	if err != nil {
		return nil, err
	}
	roles := make([]string, len(u.Roles))
	for i, r := range u.Roles {
		roles[i] = string(r)
	}
	tokens := u.Tokens
	if tokens == nil {
		tokens = []string{}
	}
	return &userDoc{
		Meta:        m,
		Fullname:    u.Fullname,
		Mail:        ptr(u.Mail),
		BirthDt:     u.BirthDt,
		TgID:        u.TgID,
		TgUsername:  u.TgUsername,
		VkID:        u.VkID,
		Description: u.Description,
		Tokens:      tokens,
		Roles:       roles,
	}, nil
}

func fromUserDocument(d *userDoc) (model.User, error) {
	if d.Mail == nil {
		return model.User{}, corrupt(d, fieldMail)
	}
	if len(d.Roles) == 0 {
		return model.User{}, corrupt(d, fieldRoles)
	}
	roles := make([]model.Role, len(d.Roles))
	for i, r := range d.Roles {
		roles[i] = model.Role(r)
	}
	tokens := d.Tokens
	if tokens == nil {
		tokens = []string{}
	}
	return model.User{
		ID:          toModelID(d.ID),
		Fullname:    d.Fullname,
		Mail:        *d.Mail,
		BirthDt:     d.BirthDt,
		TgID:        d.TgID,
		TgUsername:  d.TgUsername,
		VkID:        d.VkID,
		Description: d.Description,
		Tokens:      tokens,
		Roles:       roles,
		CreatedAt:   d.Created,
	}, nil
}

func toTeamDocument(t *model.Team) (*teamDoc, error) {
	m, err := metaOf(t.ID, t.CreatedAt)
	if err != nil {
		return nil, err
	}
	captain, err := requiredObjectID(t.CaptainID)
	if err != nil {
		return nil, err
	}
	members, err := normalizeIDs(t.MemberIDs)
	if err != nil {
		return nil, err
	}
	return &teamDoc{
		Meta:        m,
		CaptainOID:  captain,
		Title:       ptr(t.Title),
		Description: t.Description,
		UserOIDs:    members,
	}, nil
}

func fromTeamDocument(d *teamDoc) (model.Team, error) {
	if d.CaptainOID == nil {
		return model.Team{}, corrupt(d, "captain_oid")
	}
	if d.Title == nil {
		return model.Team{}, corrupt(d, "title")
	}
	return model.Team{
		ID:          toModelID(d.ID),
		Title:       *d.Title,
		Description: d.Description,
		CaptainID:   toModelID(*d.CaptainOID),
		MemberIDs:   toModelIDs(d.UserOIDs),
		CreatedAt:   d.Created,
	}, nil
}

func toTimelineDocs(entries []model.TimelineEntry) []timelineDoc {
	docs := make([]timelineDoc, len(entries))
	for i, e := range entries {
		docs[i] = timelineDoc{At: e.At, Text: e.Text}
	}
	return docs
}

func fromTimelineDocs(docs []timelineDoc) []model.TimelineEntry {
	entries := make([]model.TimelineEntry, len(docs))
	for i, d := range docs {
		entries[i] = model.TimelineEntry{At: d.At, Text: d.Text}
	}
	return entries
}

func toEventDocument(e *model.Event) (*eventDoc, error) {
	m, err := metaOf(e.ID, e.CreatedAt)
	if err != nil {
		return nil, err
	}
	teams, err := normalizeIDs(e.TeamIDs)
	if err != nil {
		return nil, err
	}
	source, err := optionalObjectID(e.SourceRequestID)
	if err != nil {
		return nil, err
	}
	return &eventDoc{
		Meta:             m,
		Title:            ptr(e.Title),
		Description:      e.Description,
		StartDt:          ptr(e.StartDt),
		EndDt:            ptr(e.EndDt),
		Timeline:         toTimelineDocs(e.Timeline),
		TeamOIDs:         teams,
		SourceRequestOID: source,
	}, nil
}

func fromEventDocument(d *eventDoc) (model.Event, error) {
	switch {
	case d.Title == nil:
		return model.Event{}, corrupt(d, "title")
	case d.StartDt == nil:
		return model.Event{}, corrupt(d, "start_dt")
	case d.EndDt == nil:
		return model.Event{}, corrupt(d, "end_dt")
	}
	e := model.Event{
		ID:          toModelID(d.ID),
		Title:       *d.Title,
		Description: d.Description,
		StartDt:     *d.StartDt,
		EndDt:       *d.EndDt,
		Timeline:    fromTimelineDocs(d.Timeline),
		TeamIDs:     toModelIDs(d.TeamOIDs),
		CreatedAt:   d.Created,
	}
	if d.SourceRequestOID != nil {
		e.SourceRequestID = toModelID(*d.SourceRequestOID)
	}
	return e, nil
}

func toEventRequestDocument(r *model.EventRequest) (*eventRequestDoc, error) {
	m, err := metaOf(r.ID, r.CreatedAt)
	if err != nil {
		return nil, err
	}
	requestor, err := requiredObjectID(r.RequestorID)
	if err != nil {
		return nil, err
	}
	return &eventRequestDoc{
		Meta:         m,
		Title:        ptr(r.Title),
		Description:  r.Description,
		RequestorOID: requestor,
		StartDt:      ptr(r.StartDt),
		EndDt:        ptr(r.EndDt),
		Timeline:     toTimelineDocs(r.Timeline),
	}, nil
}

func fromEventRequestDocument(d *eventRequestDoc) (model.EventRequest, error) {
	switch {
	case d.Title == nil:
		return model.EventRequest{}, corrupt(d, "title")
	case d.RequestorOID == nil:
		return model.EventRequest{}, corrupt(d, "requestor_oid")
	case d.StartDt == nil:
		return model.EventRequest{}, corrupt(d, "start_dt")
	case d.EndDt == nil:
		return model.EventRequest{}, corrupt(d, "end_dt")
	}
	return model.EventRequest{
		ID:          toModelID(d.ID),
		Title:       *d.Title,
		Description: d.Description,
		RequestorID: toModelID(*d.RequestorOID),
		StartDt:     *d.StartDt,
		EndDt:       *d.EndDt,
		Timeline:    fromTimelineDocs(d.Timeline),
		CreatedAt:   d.Created,
	}, nil
}

func toRatingDocument(r *model.Rating) (*ratingDoc, error) {
	m, err := metaOf(r.ID, r.CreatedAt)
	if err != nil {
		return nil, err
	}
	event, err := requiredObjectID(r.EventID)
	if err != nil {
		return nil, err
	}
	team, err := requiredObjectID(r.TeamID)
	if err != nil {
		return nil, err
	}
	return &ratingDoc{Meta: m, EventOID: event, TeamOID: team, Place: ptr(r.Place)}, nil
}

func fromRatingDocument(d *ratingDoc) (model.Rating, error) {
	switch {
	case d.EventOID == nil:
		return model.Rating{}, corrupt(d, "event_oid")
	case d.TeamOID == nil:
		return model.Rating{}, corrupt(d, "team_oid")
	case d.Place == nil:
		return model.Rating{}, corrupt(d, "place")
	}
	return model.Rating{
		ID:        toModelID(d.ID),
		EventID:   toModelID(*d.EventOID),
		TeamID:    toModelID(*d.TeamOID),
		Place:     *d.Place,
		CreatedAt: d.Created,
	}, nil
}

func toFeedbackDocument(f *model.Feedback) (*feedbackDoc, error) {
	m, err := metaOf(f.ID, f.CreatedAt)
	if err != nil {
		return nil, err
	}
	event, err := requiredObjectID(f.EventID)
	if err != nil {
		return nil, err
	}
	user, err := requiredObjectID(f.UserID)
	if err != nil {
		return nil, err
	}
	return &feedbackDoc{Meta: m, EventOID: event, UserOID: user, Text: f.Text, Rate: ptr(f.Rate)}, nil
}

func fromFeedbackDocument(d *feedbackDoc) (model.Feedback, error) {
	switch {
	case d.EventOID == nil:
		return model.Feedback{}, corrupt(d, "event_oid")
	case d.UserOID == nil:
		return model.Feedback{}, corrupt(d, "user_oid")
	case d.Rate == nil:
		return model.Feedback{}, corrupt(d, "rate")
	}
	return model.Feedback{
		ID:        toModelID(d.ID),
		EventID:   toModelID(*d.EventOID),
		UserID:    toModelID(*d.UserOID),
		Text:      d.Text,
		Rate:      *d.Rate,
		CreatedAt: d.Created,
	}, nil
}

func toInviteDocument(i *model.Invite) (*inviteDoc, error) {
	m, err := metaOf(i.ID, i.CreatedAt)
	if err != nil {
		return nil, err
	}
	team, err := requiredObjectID(i.FromTeamID)
	if err != nil {
		return nil, err
	}
	user, err := requiredObjectID(i.ToUserID)
	if err != nil {
		return nil, err
	}
	return &inviteDoc{Meta: m, FromTeamOID: team, ToUserOID: user}, nil
}

func fromInviteDocument(d *inviteDoc) (model.Invite, error) {
	switch {
	case d.FromTeamOID == nil:
		return model.Invite{}, corrupt(d, fieldFromTeamOID)
	case d.ToUserOID == nil:
		return model.Invite{}, corrupt(d, fieldToUserOID)
	}
	return model.Invite{
		ID:         toModelID(d.ID),
		FromTeamID: toModelID(*d.FromTeamOID),
		ToUserID:   toModelID(*d.ToUserOID),
		CreatedAt:  d.Created,
	}, nil
}

func toMailCodeDocument(c *model.MailCode) (*mailCodeDoc, error) {
	m, err := metaOf(c.ID, c.CreatedAt)
	if err != nil {
		return nil, err
	}
	var user *primitive.ObjectID
	if c.ToUserID != nil {
		if user, err = requiredObjectID(*c.ToUserID); err != nil {
			return nil, err
		}
	}
	return &mailCodeDoc{
		Meta:      m,
		ToMail:    ptr(c.ToMail),
		Code:      ptr(c.Code),
		Type:      ptr(string(c.Type)),
		ToUserOID: user,
	}, nil
}

func fromMailCodeDocument(d *mailCodeDoc) (model.MailCode, error) {
	switch {
	case d.ToMail == nil:
		return model.MailCode{}, corrupt(d, fieldToMail)
	case d.Code == nil:
		return model.MailCode{}, corrupt(d, fieldCode)
	case d.Type == nil:
		return model.MailCode{}, corrupt(d, fieldType)
	}
	c := model.MailCode{
		ID:        toModelID(d.ID),
		ToMail:    *d.ToMail,
		Code:      *d.Code,
		Type:      model.MailCodeType(*d.Type),
		CreatedAt: d.Created,
	}
	if d.ToUserOID != nil {
		c.ToUserID = ptr(toModelID(*d.ToUserOID))
	}
	return c, nil
}

func toRepresentativeRequestDocument(r *model.RepresentativeRequest) (*representativeRequestDoc, error) {
	m, err := metaOf(r.ID, r.CreatedAt)
	if err != nil {
		return nil, err
	}
	user, err := requiredObjectID(r.UserID)
	if err != nil {
		return nil, err
	}
	return &representativeRequestDoc{Meta: m, UserOID: user, UserIntID: ptr(r.UserIntID)}, nil
}

func fromRepresentativeRequestDocument(d *representativeRequestDoc) (model.RepresentativeRequest, error) {
	switch {
	case d.UserOID == nil:
		return model.RepresentativeRequest{}, corrupt(d, "user_oid")
	case d.UserIntID == nil:
		return model.RepresentativeRequest{}, corrupt(d, "user_int_id")
	}
	return model.RepresentativeRequest{
		ID:        toModelID(d.ID),
		UserID:    toModelID(*d.UserOID),
		UserIntID: *d.UserIntID,
		CreatedAt: d.Created,
	}, nil
}

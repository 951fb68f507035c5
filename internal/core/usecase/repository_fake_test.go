package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rbroggi/atoll/internal/core/model"
	"github.com/rbroggi/atoll/internal/core/ports"
)

var fakeNow = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

// fakeRepository is an in-memory ports.Repository honoring the same uniqueness rules as the store.
type fakeRepository struct {
	mu     sync.Mutex
	nextID int

	users                  []model.User
	mailCodes              []model.MailCode
	teams                  []model.Team
	invites                []model.Invite
	events                 []model.Event
	eventRequests          []model.EventRequest
	ratings                []model.Rating
	feedbacks              []model.Feedback
	representativeRequests []model.RepresentativeRequest

	// failures makes the named method fail once with the given error.
	failures map[string]error
	calls    map[string]int
}

var _ ports.Repository = (*fakeRepository)(nil)

func newFakeRepository() *fakeRepository {
	return &fakeRepository{failures: map[string]error{}, calls: map[string]int{}}
}

func (r *fakeRepository) failOnce(method string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[method] = err
}

func (r *fakeRepository) enter(method string) error {
	r.calls[method]++
	if err, ok := r.failures[method]; ok {
		delete(r.failures, method)
		return err
	}
	return nil
}

func (r *fakeRepository) newID() model.ID {
	r.nextID++
	return model.ID(fmt.Sprintf("id-%04d", r.nextID))
}

func (r *fakeRepository) InsertUser(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("InsertUser"); err != nil {
		return err
	}
	for _, u := range r.users {
		if u.Mail == user.Mail {
			return fmt.Errorf("%w: mail", model.ErrDuplicate)
		}
	}
	user.ID = r.newID()
	user.CreatedAt = fakeNow
	r.users = append(r.users, *user)
	return nil
}

func (r *fakeRepository) FindUser(_ context.Context, query ports.UserQuery) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("FindUser"); err != nil {
		return nil, err
	}
	if err := query.Validate(); err != nil {
		return nil, err
	}
	for _, u := range r.users {
		if matchesUser(u, query) {
			u := u
			return &u, nil
		}
	}
	return nil, model.ErrNotFound
}

func matchesUser(u model.User, q ports.UserQuery) bool {
	if !q.ID.IsZero() && u.ID != q.ID {
		return false
	}
	if q.Mail != "" && u.Mail != q.Mail {
		return false
	}
	if q.Token != "" && !containsString(u.Tokens, q.Token) {
		return false
	}
	if tgID, ok := q.TgID.Get(); ok && !equalPtr(tgID, u.TgID) {
		return false
	}
	if tgUsername, ok := q.TgUsername.Get(); ok && !equalPtr(tgUsername, u.TgUsername) {
		return false
	}
	return true
}

func (r *fakeRepository) ListUsers(_ context.Context, query ports.ListUsersQuery) ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("ListUsers"); err != nil {
		return nil, err
	}
	ret := []model.User{}
	for _, u := range r.users {
		if len(query.IDs) > 0 && !containsID(query.IDs, u.ID) {
			continue
		}
		if len(query.Roles) > 0 && !u.HasAnyRole(query.Roles...) {
			continue
		}
		ret = append(ret, u)
	}
	return ret, nil
}

func (r *fakeRepository) UpdateUser(_ context.Context, args model.UpdateUserArgs) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("UpdateUser"); err != nil {
		return err
	}
	for i := range r.users {
		u := &r.users[i]
		if u.ID != args.ID {
			continue
		}
		if v, ok := args.Fullname.Get(); ok {
			u.Fullname = v
		}
		if v, ok := args.BirthDt.Get(); ok {
			u.BirthDt = v
		}
		if v, ok := args.TgID.Get(); ok {
			u.TgID = v
		}
		if v, ok := args.TgUsername.Get(); ok {
			u.TgUsername = v
		}
		if v, ok := args.VkID.Get(); ok {
			u.VkID = v
		}
		if v, ok := args.Description.Get(); ok {
			u.Description = v
		}
		return nil
	}
	return model.ErrNotFound
}

func (r *fakeRepository) PullUserToken(_ context.Context, userID model.ID, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("PullUserToken"); err != nil {
		return err
	}
	for i := range r.users {
		if r.users[i].ID != userID {
			continue
		}
		kept := []string{}
		for _, t := range r.users[i].Tokens {
			if t != token {
				kept = append(kept, t)
			}
		}
		r.users[i].Tokens = kept
		return nil
	}
	return model.ErrNotFound
}

func (r *fakeRepository) InsertMailCode(_ context.Context, mailCode *model.MailCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("InsertMailCode"); err != nil {
		return err
	}
	for _, c := range r.mailCodes {
		if c.Code == mailCode.Code {
			return fmt.Errorf("%w: code", model.ErrDuplicate)
		}
	}
	mailCode.ID = r.newID()
	mailCode.CreatedAt = fakeNow.Add(time.Duration(r.nextID) * time.Second)
	r.mailCodes = append(r.mailCodes, *mailCode)
	return nil
}

func (r *fakeRepository) MailCodeExists(_ context.Context, code string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("MailCodeExists"); err != nil {
		return false, err
	}
	for _, c := range r.mailCodes {
		if c.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func matchesMailCode(c model.MailCode, q ports.MailCodeQuery) bool {
	if !q.ID.IsZero() && c.ID != q.ID {
		return false
	}
	if q.ToMail != "" && c.ToMail != q.ToMail {
		return false
	}
	if q.Code != "" && c.Code != q.Code {
		return false
	}
	if q.Type != "" && c.Type != q.Type {
		return false
	}
	if id, ok := q.ToUserID.Get(); ok && !equalPtr(id, c.ToUserID) {
		return false
	}
	return true
}

func (r *fakeRepository) ListMailCodes(_ context.Context, query ports.MailCodeQuery) ([]model.MailCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("ListMailCodes"); err != nil {
		return nil, err
	}
	ret := []model.MailCode{}
	for i := len(r.mailCodes) - 1; i >= 0; i-- {
		if matchesMailCode(r.mailCodes[i], query) {
			ret = append(ret, r.mailCodes[i])
		}
	}
	return ret, nil
}

func (r *fakeRepository) RemoveMailCodes(_ context.Context, query ports.MailCodeQuery) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("RemoveMailCodes"); err != nil {
		return 0, err
	}
	if err := query.Validate(); err != nil {
		return 0, err
	}
	kept := []model.MailCode{}
	for _, c := range r.mailCodes {
		if !matchesMailCode(c, query) {
			kept = append(kept, c)
		}
	}
	removed := int64(len(r.mailCodes) - len(kept))
	r.mailCodes = kept
	return removed, nil
}

func (r *fakeRepository) InsertTeam(_ context.Context, team *model.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("InsertTeam"); err != nil {
		return err
	}
	team.ID = r.newID()
	team.CreatedAt = fakeNow
	stored := *team
	stored.MemberIDs = append([]model.ID{}, team.MemberIDs...)
	stored.Captain, stored.Members = nil, nil
	r.teams = append(r.teams, stored)
	return nil
}

func (r *fakeRepository) FindTeam(_ context.Context, id model.ID) (*model.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("FindTeam"); err != nil {
		return nil, err
	}
	for _, t := range r.teams {
		if t.ID == id {
			t.MemberIDs = append([]model.ID{}, t.MemberIDs...)
			return &t, nil
		}
	}
	return nil, model.ErrNotFound
}

func (r *fakeRepository) ListTeams(_ context.Context, query ports.ListTeamsQuery) ([]model.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("ListTeams"); err != nil {
		return nil, err
	}
	ret := []model.Team{}
	for _, t := range r.teams {
		if len(query.IDs) > 0 && !containsID(query.IDs, t.ID) {
			continue
		}
		if !query.MemberID.IsZero() && !t.HasMember(query.MemberID) {
			continue
		}
		t.MemberIDs = append([]model.ID{}, t.MemberIDs...)
		ret = append(ret, t)
	}
	return ret, nil
}

func (r *fakeRepository) AddTeamMember(_ context.Context, teamID, userID model.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("AddTeamMember"); err != nil {
		return err
	}
	for i := range r.teams {
		if r.teams[i].ID != teamID {
			continue
		}
		if !r.teams[i].HasMember(userID) {
			r.teams[i].MemberIDs = append(r.teams[i].MemberIDs, userID)
		}
		return nil
	}
	return model.ErrNotFound
}

func (r *fakeRepository) removeTeam(id model.ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.teams {
		if r.teams[i].ID == id {
			r.teams = append(r.teams[:i], r.teams[i+1:]...)
			return
		}
	}
}

func (r *fakeRepository) InsertInvite(_ context.Context, invite *model.Invite) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("InsertInvite"); err != nil {
		return err
	}
	for _, i := range r.invites {
		if i.FromTeamID == invite.FromTeamID && i.ToUserID == invite.ToUserID {
			return fmt.Errorf("%w: invite", model.ErrDuplicate)
		}
	}
	invite.ID = r.newID()
	invite.CreatedAt = fakeNow
	r.invites = append(r.invites, *invite)
	return nil
}

func (r *fakeRepository) FindInvite(_ context.Context, query ports.InviteQuery) (*model.Invite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("FindInvite"); err != nil {
		return nil, err
	}
	if err := query.Validate(); err != nil {
		return nil, err
	}
	for _, i := range r.invites {
		if i.FromTeamID == query.FromTeamID && i.ToUserID == query.ToUserID {
			return &i, nil
		}
	}
	return nil, model.ErrNotFound
}

func (r *fakeRepository) ListInvites(_ context.Context, query ports.ListInvitesQuery) ([]model.Invite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("ListInvites"); err != nil {
		return nil, err
	}
	ret := []model.Invite{}
	for _, i := range r.invites {
		if query.ToUserID.IsZero() || i.ToUserID == query.ToUserID {
			ret = append(ret, i)
		}
	}
	return ret, nil
}

func (r *fakeRepository) RemoveInvite(_ context.Context, id model.ID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("RemoveInvite"); err != nil {
		return false, err
	}
	for i := range r.invites {
		if r.invites[i].ID == id {
			r.invites = append(r.invites[:i], r.invites[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepository) InsertEvent(_ context.Context, event *model.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("InsertEvent"); err != nil {
		return err
	}
	if !event.SourceRequestID.IsZero() {
		for _, e := range r.events {
			if e.SourceRequestID == event.SourceRequestID {
				return fmt.Errorf("%w: source request", model.ErrDuplicate)
			}
		}
	}
	event.ID = r.newID()
	event.CreatedAt = fakeNow
	r.events = append(r.events, *event)
	return nil
}

func (r *fakeRepository) FindEvent(_ context.Context, query ports.EventQuery) (*model.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("FindEvent"); err != nil {
		return nil, err
	}
	if err := query.Validate(); err != nil {
		return nil, err
	}
	for _, e := range r.events {
		if !query.ID.IsZero() && e.ID != query.ID {
			continue
		}
		if !query.SourceRequestID.IsZero() && e.SourceRequestID != query.SourceRequestID {
			continue
		}
		return &e, nil
	}
	return nil, model.ErrNotFound
}

func (r *fakeRepository) ListEvents(_ context.Context, query ports.ListEventsQuery) ([]model.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("ListEvents"); err != nil {
		return nil, err
	}
	ret := []model.Event{}
	for _, e := range r.events {
		if len(query.AnyTeamIDs) > 0 && len(missingIDs(query.AnyTeamIDs, e.TeamIDs)) == len(query.AnyTeamIDs) {
			continue
		}
		ret = append(ret, e)
	}
	return ret, nil
}

func (r *fakeRepository) InsertEventRequest(_ context.Context, request *model.EventRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("InsertEventRequest"); err != nil {
		return err
	}
	request.ID = r.newID()
	request.CreatedAt = fakeNow
	stored := *request
	stored.Requestor = nil
	r.eventRequests = append(r.eventRequests, stored)
	return nil
}

func (r *fakeRepository) FindEventRequest(_ context.Context, id model.ID) (*model.EventRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("FindEventRequest"); err != nil {
		return nil, err
	}
	for _, e := range r.eventRequests {
		if e.ID == id {
			return &e, nil
		}
	}
	return nil, model.ErrNotFound
}

func (r *fakeRepository) ListEventRequests(_ context.Context) ([]model.EventRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("ListEventRequests"); err != nil {
		return nil, err
	}
	return append([]model.EventRequest{}, r.eventRequests...), nil
}

func (r *fakeRepository) RemoveEventRequest(_ context.Context, id model.ID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("RemoveEventRequest"); err != nil {
		return false, err
	}
	for i := range r.eventRequests {
		if r.eventRequests[i].ID == id {
			r.eventRequests = append(r.eventRequests[:i], r.eventRequests[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepository) InsertRating(_ context.Context, rating *model.Rating) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("InsertRating"); err != nil {
		return err
	}
	rating.ID = r.newID()
	rating.CreatedAt = fakeNow
	r.ratings = append(r.ratings, *rating)
	return nil
}

func (r *fakeRepository) ListRatings(_ context.Context, query ports.ListRatingsQuery) ([]model.Rating, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("ListRatings"); err != nil {
		return nil, err
	}
	ret := []model.Rating{}
	for _, rt := range r.ratings {
		if query.EventID.IsZero() || rt.EventID == query.EventID {
			ret = append(ret, rt)
		}
	}
	sort.SliceStable(ret, func(i, j int) bool { return ret[i].Place < ret[j].Place })
	return ret, nil
}

func (r *fakeRepository) InsertFeedback(_ context.Context, feedback *model.Feedback) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("InsertFeedback"); err != nil {
		return err
	}
	feedback.ID = r.newID()
	feedback.CreatedAt = fakeNow
	r.feedbacks = append(r.feedbacks, *feedback)
	return nil
}

func (r *fakeRepository) ListFeedbacks(_ context.Context, query ports.ListFeedbacksQuery) ([]model.Feedback, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("ListFeedbacks"); err != nil {
		return nil, err
	}
	ret := []model.Feedback{}
	for _, f := range r.feedbacks {
		if query.EventID.IsZero() || f.EventID == query.EventID {
			ret = append(ret, f)
		}
	}
	return ret, nil
}

func (r *fakeRepository) InsertRepresentativeRequest(_ context.Context, request *model.RepresentativeRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("InsertRepresentativeRequest"); err != nil {
		return err
	}
	request.ID = r.newID()
	request.CreatedAt = fakeNow
	stored := *request
	stored.User = nil
	r.representativeRequests = append(r.representativeRequests, stored)
	return nil
}

func (r *fakeRepository) ListRepresentativeRequests(_ context.Context) ([]model.RepresentativeRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("ListRepresentativeRequests"); err != nil {
		return nil, err
	}
	return append([]model.RepresentativeRequest{}, r.representativeRequests...), nil
}

func containsString(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

func containsID(ids []model.ID, id model.ID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func newTestServices(repo *fakeRepository, sender *MockSender, opts ...ServicesOptArgs) *Services {
	opts = append([]ServicesOptArgs{WithNowFunc(func() time.Time { return fakeNow })}, opts...)
	args := ServicesArgs{Repository: repo}
	if sender != nil {
		args.Sender = sender
	}
	return NewServices(args, opts...)
}

package mongo

import (
	"context"
	"errors"

	"github.com/rbroggi/atoll/internal/core/model"
	"github.com/rbroggi/atoll/internal/core/ports"
	"go.mongodb.org/mongo-driver/bson"
)

// InsertTeam will save the team in the database.
func (m *MongoDB) InsertTeam(ctx context.Context, team *model.Team) error {
	if team == nil {
		return errors.New("nil team passed to insert method")
	}
	doc, err := toTeamDocument(team)
	if err != nil {
		return err
	}
	if err := m.teams.insert(ctx, doc); err != nil {
		return err
	}
	team.ID = toModelID(doc.ID)
	team.CreatedAt = doc.Created
	return nil
}

// FindTeam returns the team with the given id.
func (m *MongoDB) FindTeam(ctx context.Context, id model.ID) (*model.Team, error) {
	doc, err := m.teams.findByID(ctx, id)
	if err != nil {
		return nil, err
	}
	team, err := fromTeamDocument(doc)
	if err != nil {
		return nil, err
	}
	return &team, nil
}

// ListTeams lists teams matching the query in insertion order.
func (m *MongoDB) ListTeams(ctx context.Context, query ports.ListTeamsQuery) ([]model.Team, error) {
	f := newFilter()
	if len(query.IDs) > 0 {
		f.oids(fieldID, query.IDs)
	}
	if !query.MemberID.IsZero() {
		f.oid(fieldUserOIDs, query.MemberID)
	}
	return findAll(ctx, m.teams, f, bson.D{{Key: fieldID, Value: 1}}, fromTeamDocument)
}

// AddTeamMember adds userID to the team members unless already there.
func (m *MongoDB) AddTeamMember(ctx context.Context, teamID, userID model.ID) error {
	oid, err := NormalizeID(userID)
	if err != nil {
		return err
	}
	return m.teams.updateByID(ctx, teamID, update{addToSet: bson.D{{Key: fieldUserOIDs, Value: oid}}})
}

// InsertInvite will save the invite in the database. A second invite from the same team to the same
// user yields model.ErrDuplicate.
func (m *MongoDB) InsertInvite(ctx context.Context, invite *model.Invite) error {
	if invite == nil {
		return errors.New("nil invite passed to insert method")
	}
	doc, err := toInviteDocument(invite)
	if err != nil {
		return err
	}
	if err := m.invites.insert(ctx, doc); err != nil {
		return err
	}
	invite.ID = toModelID(doc.ID)
	invite.CreatedAt = doc.Created
	return nil
}

// FindInvite returns the invite matching the composite key.
func (m *MongoDB) FindInvite(ctx context.Context, query ports.InviteQuery) (*model.Invite, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	f := newFilter().oid(fieldFromTeamOID, query.FromTeamID).oid(fieldToUserOID, query.ToUserID)
	doc, err := m.invites.findOne(ctx, f, nil)
	if err != nil {
		return nil, err
	}
	invite, err := fromInviteDocument(doc)
	if err != nil {
		return nil, err
	}
	return &invite, nil
}

// ListInvites lists invites matching the query in insertion order.
func (m *MongoDB) ListInvites(ctx context.Context, query ports.ListInvitesQuery) ([]model.Invite, error) {
	f := newFilter()
	if !query.ToUserID.IsZero() {
		f.oid(fieldToUserOID, query.ToUserID)
	}
	return findAll(ctx, m.invites, f, bson.D{{Key: fieldID, Value: 1}}, fromInviteDocument)
}

// RemoveInvite removes the invite and reports whether it existed.
func (m *MongoDB) RemoveInvite(ctx context.Context, id model.ID) (bool, error) {
	return m.invites.removeByID(ctx, id)
}

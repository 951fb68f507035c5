package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/rbroggi/atoll/internal/core/model"
	"github.com/rbroggi/atoll/internal/core/ports"
)

// InviteService gathers the functionality around team invites.
type InviteService struct {
	invites    ports.InviteRepository
	teams      ports.TeamRepository
	users      ports.UserRepository
	transactor ports.Transactor
	informer   *Informer
}

// CreateInvite invites a user into a team. Both must exist and only one pending invite per pair is allowed.
func (s *InviteService) CreateInvite(ctx context.Context, fromTeamID, toUserID model.ID) (*model.Invite, error) {
	if _, err := resolveTeam(ctx, s.teams, fromTeamID); err != nil {
		return nil, err
	}
	if _, err := resolveUser(ctx, s.users, toUserID); err != nil {
		return nil, err
	}

	invite := &model.Invite{FromTeamID: fromTeamID, ToUserID: toUserID}
	if err := s.invites.InsertInvite(ctx, invite); err != nil {
		return nil, fmt.Errorf("error saving invite in repository: %w", err)
	}

	s.informer.Inform(ctx, model.DomainEventInviteCreated, invite.ID, map[string]string{
		"team_id": fromTeamID.String(),
		"user_id": toUserID.String(),
	})
	return invite, nil
}

// GetInvite returns the pending invite of the user into the team or model.ErrNotFound.
func (s *InviteService) GetInvite(ctx context.Context, fromTeamID, toUserID model.ID) (*model.Invite, error) {
	query := ports.InviteQuery{FromTeamID: fromTeamID, ToUserID: toUserID}
	if err := query.Validate(); err != nil {
		return nil, err
	}
	invite, err := s.invites.FindInvite(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error finding invite: %w", err)
	}
	return invite, nil
}

// ListInvites lists the pending invites of a user.
func (s *InviteService) ListInvites(ctx context.Context, toUserID model.ID) ([]model.Invite, error) {
	invites, err := s.invites.ListInvites(ctx, ports.ListInvitesQuery{ToUserID: toUserID})
	if err != nil {
		return nil, fmt.Errorf("error listing invites: %w", err)
	}
	return invites, nil
}

// AcceptInvite consumes the invite of the user into the team and makes the user a member.
// It returns model.ErrReferenceNotFound when there is no such invite, including when it was already accepted.
//
// Membership is granted before the invite is removed, so a failure in between leaves the invite
// in place and a retry completes the transition without ever dropping the member.
func (s *InviteService) AcceptInvite(ctx context.Context, fromTeamID, toUserID model.ID) (*model.Invite, error) {
	query := ports.InviteQuery{FromTeamID: fromTeamID, ToUserID: toUserID}
	if err := query.Validate(); err != nil {
		return nil, err
	}

	var accepted *model.Invite
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		invite, err := s.invites.FindInvite(ctx, query)
		if errors.Is(err, model.ErrNotFound) {
			return fmt.Errorf("%w: invite from team [%s] to user [%s]", model.ErrReferenceNotFound, fromTeamID, toUserID)
		}
		if err != nil {
			return fmt.Errorf("error finding invite: %w", err)
		}
		if err := s.teams.AddTeamMember(ctx, invite.FromTeamID, invite.ToUserID); err != nil {
			return referenceErr(err, "team", invite.FromTeamID)
		}
		removed, err := s.invites.RemoveInvite(ctx, invite.ID)
		if err != nil {
			return fmt.Errorf("error removing invite: %w", err)
		}
		if !removed {
			return fmt.Errorf("%w: invite [%s] accepted concurrently", model.ErrReferenceNotFound, invite.ID)
		}
		accepted = invite
		return nil
	})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error accepting invite: %w", err)
	}

	s.informer.Inform(ctx, model.DomainEventInviteAccepted, accepted.ID, map[string]string{
		"team_id": accepted.FromTeamID.String(),
		"user_id": accepted.ToUserID.String(),
	})
	return accepted, nil
}

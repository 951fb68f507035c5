package usecase

import (
	"context"
	"fmt"

	"github.com/rbroggi/atoll/internal/core/model"
	"github.com/rbroggi/atoll/internal/core/ports"
)

// TeamService gathers the functionality around teams.
type TeamService struct {
	teams    ports.TeamRepository
	users    ports.UserRepository
	informer *Informer
}

// CreateTeam creates a team. The captain and every member must exist. The captain is always a member,
// appended after the explicit members when they leave it out. Nothing is stored when a reference does not resolve.
func (s *TeamService) CreateTeam(ctx context.Context, args model.CreateTeamArgs) (*model.Team, error) {
	captain, err := resolveUser(ctx, s.users, args.CaptainID)
	if err != nil {
		return nil, fmt.Errorf("error resolving captain: %w", err)
	}

	memberIDs := make([]model.ID, 0, len(args.MemberIDs)+1)
	memberIDs = append(memberIDs, args.MemberIDs...)
	memberIDs = uniqueIDs(append(memberIDs, captain.ID))
	members, err := resolveUsers(ctx, s.users, memberIDs)
	if err != nil {
		return nil, fmt.Errorf("error resolving members: %w", err)
	}

	team := &model.Team{
		Title:       args.Title,
		Description: args.Description,
		CaptainID:   captain.ID,
		MemberIDs:   memberIDs,
	}
	if err := s.teams.InsertTeam(ctx, team); err != nil {
		return nil, fmt.Errorf("error saving team in repository: %w", err)
	}
	team.Captain = captain
	team.Members = members

	s.informer.Inform(ctx, model.DomainEventTeamCreated, team.ID, map[string]string{"captain_id": captain.ID.String()})
	return team, nil
}

// GetTeam returns the team with the given id or model.ErrNotFound.
func (s *TeamService) GetTeam(ctx context.Context, id model.ID) (*model.Team, error) {
	team, err := s.teams.FindTeam(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error finding team: %w", err)
	}
	return team, nil
}

// ListTeams lists all teams.
func (s *TeamService) ListTeams(ctx context.Context) ([]model.Team, error) {
	teams, err := s.teams.ListTeams(ctx, ports.ListTeamsQuery{})
	if err != nil {
		return nil, fmt.Errorf("error listing teams: %w", err)
	}
	return teams, nil
}

// ListUserTeams lists the teams the user is a member of.
func (s *TeamService) ListUserTeams(ctx context.Context, userID model.ID) ([]model.Team, error) {
	teams, err := s.teams.ListTeams(ctx, ports.ListTeamsQuery{MemberID: userID})
	if err != nil {
		return nil, fmt.Errorf("error listing user teams: %w", err)
	}
	return teams, nil
}

// resolveTeam loads one referenced team.
func resolveTeam(ctx context.Context, teams ports.TeamRepository, id model.ID) (*model.Team, error) {
	if id.IsZero() {
		return nil, fmt.Errorf("%w: missing team id", model.ErrValidation)
	}
	team, err := teams.FindTeam(ctx, id)
	if err != nil {
		return nil, referenceErr(err, "team", id)
	}
	return team, nil
}

func uniqueIDs(ids []model.ID) []model.ID {
	seen := make(map[model.ID]struct{}, len(ids))
	ret := make([]model.ID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ret = append(ret, id)
	}
	return ret
}

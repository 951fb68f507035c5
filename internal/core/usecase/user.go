package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/rbroggi/atoll/internal/core/model"
	"github.com/rbroggi/atoll/internal/core/ports"
)

// UserService gathers the functionality around the user-lifecycle
type UserService struct {
	users    ports.UserRepository
	informer *Informer
}

// CreateUser creates a user. Unless told otherwise it generates one auth token, returned in the response.
func (s *UserService) CreateUser(ctx context.Context, args model.CreateUserArgs) (*model.CreateUserResponse, error) {
	mail := strings.TrimSpace(args.Mail)
	if mail == "" {
		return nil, fmt.Errorf("%w: mail is required", model.ErrValidation)
	}

	roles, err := normalizeRoles(args.Roles)
	if err != nil {
		return nil, err
	}

	var createdToken string
	tokens := args.Tokens
	if tokens == nil {
		tokens = []string{}
		if !args.SkipTokenCreation {
			createdToken, err = GenerateToken()
			if err != nil {
				return nil, fmt.Errorf("error generating token: %w", err)
			}
			tokens = append(tokens, createdToken)
		}
	}

	user := &model.User{
		Fullname:   trimmed(args.Fullname),
		Mail:       mail,
		BirthDt:    args.BirthDt,
		TgID:       args.TgID,
		TgUsername: trimmed(args.TgUsername),
		Tokens:     tokens,
		Roles:      roles,
	}
	if err := s.users.InsertUser(ctx, user); err != nil {
		return nil, fmt.Errorf("error saving user in repository: %w", err)
	}

	s.informer.Inform(ctx, model.DomainEventUserCreated, user.ID, map[string]string{"mail": user.Mail})
	return &model.CreateUserResponse{User: *user, CreatedToken: createdToken}, nil
}

// UpdateUser updates the fields set in args and returns the updated user.
// It returns model.ErrNotFound if the ID does not correspond to an existing user.
func (s *UserService) UpdateUser(ctx context.Context, args model.UpdateUserArgs) (*model.User, error) {
	user, err := s.GetUser(ctx, ports.UserQuery{ID: args.ID})
	if err != nil {
		return nil, err
	}
	if !args.HasChanges() {
		return user, nil
	}

	if fullname, ok := args.Fullname.Get(); ok {
		args.Fullname = model.SetTo(trimmed(fullname))
	}
	if err := s.users.UpdateUser(ctx, args); err != nil {
		return nil, fmt.Errorf("error updating user: %w", err)
	}

	if v, ok := args.Fullname.Get(); ok {
		user.Fullname = v
	}
	if v, ok := args.BirthDt.Get(); ok {
		user.BirthDt = v
	}
	if v, ok := args.TgID.Get(); ok {
		user.TgID = v
	}
	if v, ok := args.TgUsername.Get(); ok {
		user.TgUsername = v
	}
	if v, ok := args.VkID.Get(); ok {
		user.VkID = v
	}
	if v, ok := args.Description.Get(); ok {
		user.Description = v
	}
	return user, nil
}

// GetUser returns the user matching every field set in the query.
// It returns model.ErrEmptyFilter when the query sets no field and model.ErrNotFound when no user matches.
func (s *UserService) GetUser(ctx context.Context, query ports.UserQuery) (*model.User, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	user, err := s.users.FindUser(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error finding user: %w", err)
	}
	return user, nil
}

// ListUsers lists users. When roles are given only users having any of them are returned.
func (s *UserService) ListUsers(ctx context.Context, roles ...model.Role) ([]model.User, error) {
	users, err := s.users.ListUsers(ctx, ports.ListUsersQuery{Roles: roles})
	if err != nil {
		return nil, fmt.Errorf("error listing users on the repository: %w", err)
	}
	return users, nil
}

// RemoveToken revokes one auth token of the user.
func (s *UserService) RemoveToken(ctx context.Context, userID model.ID, token string) error {
	if err := s.users.PullUserToken(ctx, userID, token); err != nil {
		return fmt.Errorf("error removing user token: %w", err)
	}
	return nil
}

// resolveUsers loads every user in ids, failing with model.ErrReferenceNotFound if one is missing.
// Users are returned in the order of ids.
func resolveUsers(ctx context.Context, users ports.UserRepository, ids []model.ID) ([]model.User, error) {
	if len(ids) == 0 {
		return []model.User{}, nil
	}
	found, err := users.ListUsers(ctx, ports.ListUsersQuery{IDs: ids})
	if err != nil {
		return nil, fmt.Errorf("error loading users: %w", err)
	}
	byID := make(map[model.ID]model.User, len(found))
	for _, u := range found {
		byID[u.ID] = u
	}
	ret := make([]model.User, 0, len(ids))
	for _, id := range ids {
		u, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: user [%s]", model.ErrReferenceNotFound, id)
		}
		ret = append(ret, u)
	}
	return ret, nil
}

// resolveUser loads one referenced user.
func resolveUser(ctx context.Context, users ports.UserRepository, id model.ID) (*model.User, error) {
	if id.IsZero() {
		return nil, fmt.Errorf("%w: missing user id", model.ErrValidation)
	}
	resolved, err := resolveUsers(ctx, users, []model.ID{id})
	if err != nil {
		return nil, err
	}
	return &resolved[0], nil
}

func normalizeRoles(roles []model.Role) ([]model.Role, error) {
	if roles == nil {
		return []model.Role{model.RoleSportsman}, nil
	}
	seen := make(map[model.Role]struct{}, len(roles))
	ret := make([]model.Role, 0, len(roles))
	for _, r := range roles {
		if _, ok := seen[r]; ok || r == "" {
			continue
		}
		seen[r] = struct{}{}
		ret = append(ret, r)
	}
	if len(ret) == 0 {
		return nil, fmt.Errorf("%w: a user needs at least one role", model.ErrValidation)
	}
	return ret, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}

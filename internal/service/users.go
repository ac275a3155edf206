package service

import (
	"context"
	"strings"

	"github.com/Shivanand-hulikatti/coffee-meetup/internal/logging"
	"github.com/Shivanand-hulikatti/coffee-meetup/internal/model"
	"github.com/Shivanand-hulikatti/coffee-meetup/internal/validation"
)

// UserService manages member accounts.
type UserService struct {
	users UserStore
}

// NewUserService constructs a UserService.
func NewUserService(users UserStore) *UserService {
	return &UserService{users: users}
}

// SignIn returns the stored user for an authenticated identity, creating it
// on first sign-in. The stored role wins over any role the identity claims.
func (s *UserService) SignIn(ctx context.Context, identity model.Requester) (*model.User, error) {
	if err := requireUser(identity); err != nil {
		return nil, err
	}
	email := strings.TrimSpace(identity.Email)
	name := strings.TrimSpace(identity.Name)
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}
	u, err := s.users.Ensure(ctx, model.User{
		ID:          identity.UserID,
		Email:       strings.ToLower(email),
		DisplayName: name,
		Role:        model.RoleUser,
	})
	return u, operationFailed(err)
}

// Profile returns the requester's own record.
func (s *UserService) Profile(ctx context.Context, r model.Requester) (*model.User, error) {
	if err := requireUser(r); err != nil {
		return nil, err
	}
	u, err := s.users.GetByID(ctx, r.UserID)
	return u, operationFailed(err)
}

// UpdateProfile changes the requester's display name, country or language.
func (s *UserService) UpdateProfile(ctx context.Context, r model.Requester, in model.ProfileInput) (*model.User, error) {
	if err := requireUser(r); err != nil {
		return nil, err
	}
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	in.Country = strings.TrimSpace(in.Country)
	in.Language = strings.TrimSpace(in.Language)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	u, err := s.users.UpdateProfile(ctx, r.UserID, in)
	return u, operationFailed(err)
}

// ChangeRole grants or revokes admin rights.
func (s *UserService) ChangeRole(ctx context.Context, userID string, in model.RoleInput) (*model.User, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	u, err := s.users.UpdateRole(ctx, userID, model.ParseRole(in.Role))
	if err != nil {
		return nil, operationFailed(err)
	}
	logging.Ctx(ctx).Info().Str("user_id", userID).Str("role", string(u.Role)).Msg("role changed")
	return u, nil
}

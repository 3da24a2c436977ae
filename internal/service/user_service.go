package service

import (
	"context"
	"fmt"
	"strings"

	"civicreport/internal/model"
	"civicreport/internal/repository"
)

// EditUserInput lists the profile fields a user may change. Nil means keep.
type EditUserInput struct {
	Email         *string
	Username      *string
	ProfilePicURL *string
	Password      *string
}

// UserService handles profile operations for the authenticated user.
type UserService interface {
	Edit(ctx context.Context, userID uint, in EditUserInput) (*model.User, error)
	Stats(ctx context.Context, userID uint) (*model.UserStats, error)
}

type userService struct {
	users     repository.UserRepository
	incidents repository.IncidentRepository
	hasher    PasswordHasher
}

// NewUserService creates a new user service.
func NewUserService(users repository.UserRepository, incidents repository.IncidentRepository, hasher PasswordHasher) UserService {
	return &userService{users: users, incidents: incidents, hasher: hasher}
}

// Edit applies the given changes. A new password is hashed through the pool
// before it reaches storage.
func (s *userService) Edit(ctx context.Context, userID uint, in EditUserInput) (*model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Email != nil {
		user.Email = strings.TrimSpace(*in.Email)
	}
	if in.Username != nil {
		user.Username = strings.TrimSpace(*in.Username)
	}
	if in.ProfilePicURL != nil {
		user.ProfilePicURL = in.ProfilePicURL
	}
	if in.Password != nil {
		hash, err := s.hasher.HashPassword(ctx, *in.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Stats counts the user's reports.
func (s *userService) Stats(ctx context.Context, userID uint) (*model.UserStats, error) {
	return s.incidents.StatsByUser(ctx, userID)
}

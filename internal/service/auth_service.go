package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	apperrors "civicreport/internal/errors"
	"civicreport/internal/model"
	"civicreport/internal/repository"
)

// PasswordHasher hashes and verifies secrets off the request goroutine.
// *hashpool.Pool satisfies it.
type PasswordHasher interface {
	HashPassword(ctx context.Context, plaintext string) (string, error)
	VerifyPassword(ctx context.Context, digest, plaintext string) (bool, error)
}

// TokenIssuer signs access tokens. *auth.TokenService satisfies it.
type TokenIssuer interface {
	Issue(subjectID uint, email string, role model.Role) (string, error)
}

// SignupInput carries the fields of a new account.
type SignupInput struct {
	Username      string
	Email         string
	Password      string
	Role          model.Role
	ProfilePicURL *string
}

// AuthService handles authentication operations.
type AuthService interface {
	Signup(ctx context.Context, in SignupInput) (string, error)
	Signin(ctx context.Context, email, password string) (string, error)
}

type authService struct {
	users  repository.UserRepository
	hasher PasswordHasher
	tokens TokenIssuer
	log    zerolog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(users repository.UserRepository, hasher PasswordHasher, tokens TokenIssuer, log zerolog.Logger) AuthService {
	return &authService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		log:    log.With().Str("component", "auth_service").Logger(),
	}
}

// Signup stores a new user and returns a token for it. The role defaults to
// CITIZEN; a taken email or username is ErrCredentialsTaken.
func (s *authService) Signup(ctx context.Context, in SignupInput) (string, error) {
	role := in.Role
	if role == "" {
		role = model.RoleCitizen
	}
	if !role.IsValid() {
		return "", fmt.Errorf("signup: unknown role %q", role)
	}

	hash, err := s.hasher.HashPassword(ctx, in.Password)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username:      strings.TrimSpace(in.Username),
		Email:         strings.TrimSpace(in.Email),
		PasswordHash:  hash,
		Role:          role,
		ProfilePicURL: in.ProfilePicURL,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return "", err
	}

	s.log.Info().Uint("user_id", user.ID).Str("role", string(user.Role)).Msg("user signed up")
	return s.tokens.Issue(user.ID, user.Email, user.Role)
}

// Signin checks a credential. Unknown email and wrong password produce the
// same ErrCredentialsIncorrect.
func (s *authService) Signin(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", apperrors.ErrCredentialsIncorrect
		}
		return "", fmt.Errorf("find user: %w", err)
	}

	ok, err := s.hasher.VerifyPassword(ctx, user.PasswordHash, password)
	if err != nil {
		return "", fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return "", apperrors.ErrCredentialsIncorrect
	}

	return s.tokens.Issue(user.ID, user.Email, user.Role)
}

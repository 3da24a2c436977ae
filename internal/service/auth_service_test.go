package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "civicreport/internal/errors"
	"civicreport/internal/hashpool"
	"civicreport/internal/model"
)

func newAuthService(users *MockUserRepository, hasher *MockHasher, tokens *MockTokenIssuer) AuthService {
	return NewAuthService(users, hasher, tokens, zerolog.Nop())
}

func TestAuthService_Signup_DefaultsToCitizen(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	hasher := new(MockHasher)
	tokens := new(MockTokenIssuer)
	svc := newAuthService(users, hasher, tokens)

	hasher.On("HashPassword", ctx, "secret1").Return("$argon2id$digest", nil)
	users.On("Create", ctx, mock.MatchedBy(func(u *model.User) bool {
		return u.Email == "ana@example.com" &&
			u.Username == "ana" &&
			u.PasswordHash == "$argon2id$digest" &&
			u.Role == model.RoleCitizen
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*model.User).ID = 10
	}).Return(nil)
	tokens.On("Issue", uint(10), "ana@example.com", model.RoleCitizen).Return("h.p.s", nil)

	token, err := svc.Signup(ctx, SignupInput{Username: "ana", Email: "ana@example.com", Password: "secret1"})

	require.NoError(t, err)
	assert.Equal(t, "h.p.s", token)
	users.AssertExpectations(t)
	hasher.AssertExpectations(t)
	tokens.AssertExpectations(t)
}

func TestAuthService_Signup_KeepsRequestedRole(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	hasher := new(MockHasher)
	tokens := new(MockTokenIssuer)
	svc := newAuthService(users, hasher, tokens)

	hasher.On("HashPassword", ctx, "secret1").Return("digest", nil)
	users.On("Create", ctx, mock.MatchedBy(func(u *model.User) bool { return u.Role == model.RoleAdmin })).Return(nil)
	tokens.On("Issue", mock.Anything, mock.Anything, model.RoleAdmin).Return("tok", nil)

	_, err := svc.Signup(ctx, SignupInput{Username: "root", Email: "root@example.com", Password: "secret1", Role: model.RoleAdmin})

	require.NoError(t, err)
	tokens.AssertExpectations(t)
}

func TestAuthService_Signup_CredentialsTaken(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	hasher := new(MockHasher)
	tokens := new(MockTokenIssuer)
	svc := newAuthService(users, hasher, tokens)

	hasher.On("HashPassword", ctx, "secret1").Return("digest", nil)
	users.On("Create", ctx, mock.Anything).Return(fmt.Errorf("create user: %w", apperrors.ErrCredentialsTaken))

	_, err := svc.Signup(ctx, SignupInput{Username: "ana", Email: "ana@example.com", Password: "secret1"})

	assert.ErrorIs(t, err, apperrors.ErrCredentialsTaken)
	tokens.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthService_Signup_WorkerFailureStoresNothing(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	hasher := new(MockHasher)
	tokens := new(MockTokenIssuer)
	svc := newAuthService(users, hasher, tokens)

	hasher.On("HashPassword", ctx, "secret1").Return("", hashpool.ErrPoolClosed)

	_, err := svc.Signup(ctx, SignupInput{Username: "ana", Email: "ana@example.com", Password: "secret1"})

	assert.ErrorIs(t, err, apperrors.ErrWorkerFailure)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_Signup_RejectsUnknownRole(t *testing.T) {
	svc := newAuthService(new(MockUserRepository), new(MockHasher), new(MockTokenIssuer))

	_, err := svc.Signup(context.Background(), SignupInput{Username: "ana", Email: "a@example.com", Password: "secret1", Role: "ROOT"})

	assert.Error(t, err)
}

func TestAuthService_Signin(t *testing.T) {
	stored := &model.User{ID: 4, Email: "ana@example.com", PasswordHash: "digest", Role: model.RoleCitizen}

	tests := []struct {
		name      string
		setup     func(users *MockUserRepository, hasher *MockHasher, tokens *MockTokenIssuer)
		wantToken string
		wantErr   error
	}{
		{
			name: "valid credential",
			setup: func(users *MockUserRepository, hasher *MockHasher, tokens *MockTokenIssuer) {
				users.On("FindByEmail", mock.Anything, "ana@example.com").Return(stored, nil)
				hasher.On("VerifyPassword", mock.Anything, "digest", "secret1").Return(true, nil)
				tokens.On("Issue", uint(4), "ana@example.com", model.RoleCitizen).Return("tok", nil)
			},
			wantToken: "tok",
		},
		{
			name: "wrong password",
			setup: func(users *MockUserRepository, hasher *MockHasher, tokens *MockTokenIssuer) {
				users.On("FindByEmail", mock.Anything, "ana@example.com").Return(stored, nil)
				hasher.On("VerifyPassword", mock.Anything, "digest", "secret1").Return(false, nil)
			},
			wantErr: apperrors.ErrCredentialsIncorrect,
		},
		{
			name: "unknown email",
			setup: func(users *MockUserRepository, hasher *MockHasher, tokens *MockTokenIssuer) {
				users.On("FindByEmail", mock.Anything, "ana@example.com").Return(nil, fmt.Errorf("find: %w", apperrors.ErrNotFound))
			},
			wantErr: apperrors.ErrCredentialsIncorrect,
		},
		{
			name: "worker failure",
			setup: func(users *MockUserRepository, hasher *MockHasher, tokens *MockTokenIssuer) {
				users.On("FindByEmail", mock.Anything, "ana@example.com").Return(stored, nil)
				hasher.On("VerifyPassword", mock.Anything, "digest", "secret1").Return(false, hashpool.ErrPoolClosed)
			},
			wantErr: apperrors.ErrWorkerFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(MockUserRepository)
			hasher := new(MockHasher)
			tokens := new(MockTokenIssuer)
			tt.setup(users, hasher, tokens)

			token, err := newAuthService(users, hasher, tokens).Signin(context.Background(), "ana@example.com", "secret1")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, token)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantToken, token)
		})
	}
}

func TestAuthService_Signin_WrongPasswordAndUnknownEmailMatch(t *testing.T) {
	users := new(MockUserRepository)
	hasher := new(MockHasher)
	users.On("FindByEmail", mock.Anything, "known@example.com").Return(&model.User{ID: 1, PasswordHash: "d"}, nil)
	users.On("FindByEmail", mock.Anything, "ghost@example.com").Return(nil, apperrors.ErrNotFound)
	hasher.On("VerifyPassword", mock.Anything, "d", "bad").Return(false, nil)
	svc := newAuthService(users, hasher, new(MockTokenIssuer))

	_, wrongPassword := svc.Signin(context.Background(), "known@example.com", "bad")
	_, unknownEmail := svc.Signin(context.Background(), "ghost@example.com", "bad")

	assert.True(t, errors.Is(wrongPassword, apperrors.ErrCredentialsIncorrect))
	assert.Equal(t, apperrors.MapErrorToHTTP(wrongPassword), apperrors.MapErrorToHTTP(unknownEmail))
}

func TestAuthService_WithRealPool(t *testing.T) {
	argon, err := hashpool.NewArgon2(hashpool.Argon2Config{Memory: 8 * 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})
	require.NoError(t, err)
	pool := hashpool.New(argon, hashpool.WithWorkers(2))
	defer pool.Close()

	var saved *model.User
	users := new(MockUserRepository)
	users.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		saved = args.Get(1).(*model.User)
		saved.ID = 1
	}).Return(nil)
	tokens := new(MockTokenIssuer)
	tokens.On("Issue", uint(1), "ana@example.com", model.RoleCitizen).Return("tok", nil)

	svc := NewAuthService(users, pool, tokens, zerolog.Nop())
	ctx := context.Background()

	_, err = svc.Signup(ctx, SignupInput{Username: "ana", Email: "ana@example.com", Password: "secret1"})
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.NotEqual(t, "secret1", saved.PasswordHash)
	users.On("FindByEmail", mock.Anything, "ana@example.com").Return(saved, nil)

	_, err = svc.Signin(ctx, "ana@example.com", "secret1")
	assert.NoError(t, err)
	_, err = svc.Signin(ctx, "ana@example.com", "secret2")
	assert.ErrorIs(t, err, apperrors.ErrCredentialsIncorrect)
}

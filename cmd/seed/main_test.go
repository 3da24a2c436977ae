package main

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "civicreport/internal/errors"
	"civicreport/internal/model"
)

type memUsers struct {
	byEmail map[string]*model.User
	nextID  uint
	findErr error
}

func newMemUsers() *memUsers { return &memUsers{byEmail: map[string]*model.User{}} }

func (m *memUsers) Create(_ context.Context, u *model.User) error {
	m.nextID++
	u.ID = m.nextID
	m.byEmail[u.Email] = u
	return nil
}

func (m *memUsers) Update(_ context.Context, u *model.User) error {
	m.byEmail[u.Email] = u
	return nil
}

func (m *memUsers) FindByID(context.Context, uint) (*model.User, error) {
	return nil, apperrors.ErrNotFound
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*model.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	if u, ok := m.byEmail[email]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("user %s: %w", email, apperrors.ErrNotFound)
}

type prefixHasher struct{}

func (prefixHasher) HashPassword(_ context.Context, p string) (string, error) { return "h:" + p, nil }

func TestSeedAdmin_CreatesAdmin(t *testing.T) {
	repo := newMemUsers()

	created, err := seedAdmin(context.Background(), repo, prefixHasher{}, adminSeed{
		Email: "root@example.com", Username: "root", Password: "secret1",
	}, zerolog.Nop())

	require.NoError(t, err)
	assert.True(t, created)
	u := repo.byEmail["root@example.com"]
	require.NotNil(t, u)
	assert.Equal(t, model.RoleAdmin, u.Role)
	assert.Equal(t, "h:secret1", u.PasswordHash)
}

func TestSeedAdmin_PromotesExisting(t *testing.T) {
	repo := newMemUsers()
	repo.byEmail["ops@example.com"] = &model.User{ID: 4, Email: "ops@example.com", Role: model.RoleCitizen, PasswordHash: "old"}

	created, err := seedAdmin(context.Background(), repo, prefixHasher{}, adminSeed{
		Email: "ops@example.com", Username: "ops", Password: "newpass",
	}, zerolog.Nop())

	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, model.RoleAdmin, repo.byEmail["ops@example.com"].Role)
	assert.Equal(t, "h:newpass", repo.byEmail["ops@example.com"].PasswordHash)
}

func TestSeedAdmin_LookupFailure(t *testing.T) {
	repo := newMemUsers()
	repo.findErr = errors.New("connection refused")

	_, err := seedAdmin(context.Background(), repo, prefixHasher{}, adminSeed{Email: "a@example.com", Password: "x"}, zerolog.Nop())

	require.Error(t, err)
	assert.Empty(t, repo.byEmail)
}

func TestLoadAdminSeed(t *testing.T) {
	t.Setenv("SEED_ADMIN_EMAIL", "chief@example.com")
	t.Setenv("SEED_ADMIN_USERNAME", "")
	t.Setenv("SEED_ADMIN_PASSWORD", "pw123456")

	s, err := loadAdminSeed()
	require.NoError(t, err)
	assert.Equal(t, "chief", s.Username)

	t.Setenv("SEED_ADMIN_PASSWORD", "")
	_, err = loadAdminSeed()
	assert.Error(t, err)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"civicreport/internal/config"
	"civicreport/internal/db"
	apperrors "civicreport/internal/errors"
	"civicreport/internal/hashpool"
	"civicreport/internal/logger"
	"civicreport/internal/model"
	"civicreport/internal/repository"
)

// adminSeed is read from SEED_ADMIN_* environment variables.
type adminSeed struct {
	Email    string
	Username string
	Password string
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New(logger.Options{Service: "civicreport-seed"})
		fallback.Fatal().Err(err).Msg("load config")
	}
	log := logger.New(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Service: "civicreport-seed"})
	log.Info().Msg("starting seed script")

	seed, err := loadAdminSeed()
	if err != nil {
		log.Fatal().Err(err).Msg("seed input")
	}

	gormDB, err := db.NewMySQL(cfg.MySQLDSN, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := db.Migrate(gormDB, false); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}
	log.Info().Msg("database migrations completed")

	argon, err := hashpool.NewArgon2(hashpool.DefaultArgon2Config())
	if err != nil {
		log.Fatal().Err(err).Msg("argon2 config")
	}
	// one-shot process, hash on the caller
	pool := hashpool.New(argon, hashpool.WithWorkers(0), hashpool.WithLogger(log))
	defer pool.Close()

	created, err := seedAdmin(context.Background(), repository.NewUserRepository(gormDB), pool, seed, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to seed admin")
	}
	log.Info().Str("email", seed.Email).Bool("created", created).Msg("seed completed successfully")
}

func loadAdminSeed() (adminSeed, error) {
	s := adminSeed{
		Email:    strings.TrimSpace(os.Getenv("SEED_ADMIN_EMAIL")),
		Username: strings.TrimSpace(os.Getenv("SEED_ADMIN_USERNAME")),
		Password: os.Getenv("SEED_ADMIN_PASSWORD"),
	}
	if s.Email == "" || s.Password == "" {
		return s, errors.New("SEED_ADMIN_EMAIL and SEED_ADMIN_PASSWORD are required")
	}
	if s.Username == "" {
		s.Username = strings.SplitN(s.Email, "@", 2)[0]
	}
	return s, nil
}

type passwordHasher interface {
	HashPassword(ctx context.Context, plaintext string) (string, error)
}

// seedAdmin creates the admin account, or promotes and re-keys an existing
// account with the same email. It reports whether a new row was created.
func seedAdmin(ctx context.Context, repo repository.UserRepository, hasher passwordHasher, s adminSeed, log zerolog.Logger) (bool, error) {
	digest, err := hasher.HashPassword(ctx, s.Password)
	if err != nil {
		return false, fmt.Errorf("hash admin password: %w", err)
	}

	existing, err := repo.FindByEmail(ctx, s.Email)
	switch {
	case err == nil:
		existing.Role = model.RoleAdmin
		existing.PasswordHash = digest
		if err := repo.Update(ctx, existing); err != nil {
			return false, fmt.Errorf("update user %s: %w", s.Email, err)
		}
		log.Info().Uint("user_id", existing.ID).Msg("existing user promoted to admin")
		return false, nil
	case errors.Is(err, apperrors.ErrNotFound):
	default:
		return false, fmt.Errorf("check user %s: %w", s.Email, err)
	}

	user := &model.User{
		Username:     s.Username,
		Email:        s.Email,
		PasswordHash: digest,
		Role:         model.RoleAdmin,
	}
	if err := repo.Create(ctx, user); err != nil {
		return false, fmt.Errorf("create user %s: %w", s.Email, err)
	}
	return true, nil
}

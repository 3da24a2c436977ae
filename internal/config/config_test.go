package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "civicreport/internal/errors"
)

func TestLoad_MissingSecretIsFatal(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.ErrorIs(t, err, apperrors.ErrConfigFatal)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cr3t")
	t.Setenv("APP_ENV", "")
	t.Setenv("HASH_WORKERS", "")
	t.Setenv("S3_BUCKET", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 1, cfg.HashWorkers)
	assert.Equal(t, "incidents", cfg.S3Bucket)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Production(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cr3t")
	t.Setenv("APP_ENV", "Production")
	t.Setenv("HASH_WORKERS", "4")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 4, cfg.HashWorkers)
}

func TestLoad_NegativeWorkersIsFatal(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cr3t")
	t.Setenv("HASH_WORKERS", "-1")

	_, err := Load()
	assert.ErrorIs(t, err, apperrors.ErrConfigFatal)
}

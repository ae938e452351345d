package config

import (
	"testing"

	"github.com/bmizerany/assert"
	"github.com/rs/zerolog"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("GIN_MODE", "debug")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test,")

	cfg, err := Load(zerolog.Nop())
	assert.Equal(t, nil, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.Equal(t, defaultRankSnapshotCron, cfg.RankSnapshotCron)
	assert.Equal(t, false, cfg.SMTP.Enabled())
}

func TestLoadPostgresDSNFromParts(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_NAME", "league")

	cfg, err := Load(zerolog.Nop())
	assert.Equal(t, nil, err)
	assert.Equal(t, "host=db port=5432 user=postgres password=postgres dbname=league sslmode=disable", cfg.DatabaseURL)
}

func TestLoadRejectsMissingSecretInRelease(t *testing.T) {
	t.Setenv("GIN_MODE", "release")
	t.Setenv("JWT_SECRET", "")

	_, err := Load(zerolog.Nop())
	assert.NotEqual(t, nil, err)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "mysql")

	_, err := Load(zerolog.Nop())
	assert.NotEqual(t, nil, err)
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	defaultRankSnapshotCron = "0 0 3 * * *"
)

type Config struct {
	Port             string
	GinMode          string
	LogLevel         string
	DBDriver         string
	DatabaseURL      string
	SQLitePath       string
	JWTSecret        string
	CORSOrigins      []string
	SMTP             SMTPConfig
	RankSnapshotCron string
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Enabled is false when no SMTP host is configured; mails are then only logged.
func (s SMTPConfig) Enabled() bool {
	return s.Host != ""
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", gin.DebugMode),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		DBDriver:    getEnv("DB_DRIVER", DriverPostgres),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		SQLitePath:  getEnv("SQLITE_PATH", "towerhub.db"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     smtpPort,
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     getEnv("SMTP_FROM", "noreply@towerhub.local"),
		},
		RankSnapshotCron: getEnv("RANK_SNAPSHOT_CRON", defaultRankSnapshotCron),
	}

	if cfg.DatabaseURL == "" && cfg.DBDriver == DriverPostgres {
		cfg.DatabaseURL = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			getEnv("DB_HOST", "localhost"),
			getEnv("DB_PORT", "5432"),
			getEnv("DB_USER", "postgres"),
			getEnv("DB_PASSWORD", "postgres"),
			getEnv("DB_NAME", "towerhub"),
			getEnv("DB_SSLMODE", "disable"),
		)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	logger.Info().
		Str("port", cfg.Port).
		Str("gin_mode", cfg.GinMode).
		Str("db_driver", cfg.DBDriver).
		Str("log_level", cfg.LogLevel).
		Bool("smtp", cfg.SMTP.Enabled()).
		Str("rank_snapshot_cron", cfg.RankSnapshotCron).
		Msg("configuration loaded")

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.JWTSecret == "" && c.GinMode == gin.ReleaseMode {
		return fmt.Errorf("JWT_SECRET is required in release mode")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

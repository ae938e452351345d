package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bmizerany/assert"
	"github.com/rs/zerolog"
)

// unsetEnv clears key for the test and restores it afterwards.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	os.Unsetenv(key)
}

func TestNewReadsLevelFromDotEnv(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, nil, os.WriteFile(filepath.Join(dir, ".env"), []byte("LOG_LEVEL=debug\n"), 0o600))
	t.Chdir(dir)
	unsetEnv(t, "LOG_LEVEL")

	assert.Equal(t, zerolog.DebugLevel, New().GetLevel())
}

func TestNewPrefersEnvironment(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, nil, os.WriteFile(filepath.Join(dir, ".env"), []byte("LOG_LEVEL=debug\n"), 0o600))
	t.Chdir(dir)
	t.Setenv("LOG_LEVEL", "warn")

	assert.Equal(t, zerolog.WarnLevel, New().GetLevel())
}

func TestNewDefaultsToInfo(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LOG_LEVEL", "loud")

	assert.Equal(t, zerolog.InfoLevel, New().GetLevel())
}

package cron

import (
	"bytes"
	"strings"
	"testing"
	"time"

	authModels "towerhub-api/packages/auth/models"
	"towerhub-api/packages/core/models"
	"towerhub-api/packages/core/services"
	"towerhub-api/packages/core/testutil"

	"github.com/bmizerany/assert"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

func newTestScheduler(t *testing.T, spec string, buf *bytes.Buffer) (*Scheduler, *gorm.DB) {
	t.Helper()

	db := testutil.NewDB(t)
	logger := zerolog.New(buf)
	notifications := services.NewNotificationService(db, nil, logger)
	return NewScheduler(db, services.NewLeaderboardService(db), services.NewCleanupService(db, notifications, logger), spec, logger), db
}

func TestRunNow(t *testing.T) {
	var buf bytes.Buffer
	s, db := newTestScheduler(t, "0 0 3 * * *", &buf)
	alice := testutil.CreateUser(t, db, "alice")
	testutil.CreateUser(t, db, "bob")

	expired := authModels.RefreshToken{UserID: alice.ID, Token: "expired", ExpiresAt: time.Now().Add(-time.Hour)}
	assert.Equal(t, nil, db.Create(&expired).Error)

	s.RunNow()

	var snapshots, tokens int64
	db.Model(&models.RankSnapshot{}).Count(&snapshots)
	db.Model(&authModels.RefreshToken{}).Count(&tokens)
	assert.Equal(t, int64(2), snapshots)
	assert.Equal(t, int64(0), tokens)
	assert.T(t, strings.Contains(buf.String(), `"component":"cron"`))
}

func TestStartRejectsBadSpec(t *testing.T) {
	var buf bytes.Buffer
	s, _ := newTestScheduler(t, "every day", &buf)

	err := s.Start()
	assert.NotEqual(t, nil, err)
	assert.T(t, strings.Contains(err.Error(), "rank_snapshot"))
}

func TestStartAndStop(t *testing.T) {
	var buf bytes.Buffer
	s, _ := newTestScheduler(t, "0 0 3 * * *", &buf)

	assert.Equal(t, nil, s.Start())
	assert.Equal(t, 3, len(s.cron.Entries()))
	s.Stop()
	assert.T(t, strings.Contains(buf.String(), "scheduler stopped"))
}

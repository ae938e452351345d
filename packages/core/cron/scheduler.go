package cron

import (
	"fmt"

	authUtils "towerhub-api/packages/auth/utils"
	"towerhub-api/packages/core/services"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const hourly = "0 0 * * * *"

type Scheduler struct {
	cron         *cron.Cron
	db           *gorm.DB
	leaderboard  *services.LeaderboardService
	cleanup      *services.CleanupService
	snapshotSpec string
	logger       zerolog.Logger
}

func NewScheduler(db *gorm.DB, leaderboard *services.LeaderboardService, cleanup *services.CleanupService, snapshotSpec string, logger zerolog.Logger) *Scheduler {
	logger = logger.With().Str("component", "cron").Logger()
	// Precision à la seconde
	c := cron.New(cron.WithSeconds(), cron.WithChain(cron.Recover(cronLogger{logger})))

	return &Scheduler{
		cron:         c,
		db:           db,
		leaderboard:  leaderboard,
		cleanup:      cleanup,
		snapshotSpec: snapshotSpec,
		logger:       logger,
	}
}

// Start registers every job and starts the scheduler.
func (s *Scheduler) Start() error {
	jobs := []struct {
		name string
		spec string
		fn   func()
	}{
		{"rank_snapshot", s.snapshotSpec, s.runRankSnapshot},
		{"refresh_token_cleanup", hourly, s.runTokenCleanup},
		{"registration_cleanup", hourly, s.runRegistrationCleanup},
	}

	for _, job := range jobs {
		if _, err := s.cron.AddFunc(job.spec, job.fn); err != nil {
			return fmt.Errorf("schedule %s (%q): %w", job.name, job.spec, err)
		}
		s.logger.Info().Str("job", job.name).Str("spec", job.spec).Msg("job scheduled")
	}

	s.cron.Start()
	s.logger.Info().Msg("scheduler started")
	return nil
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info().Msg("scheduler stopped")
}

func (s *Scheduler) runRankSnapshot() {
	n, err := s.leaderboard.SnapshotRanks()
	if err != nil {
		s.logger.Error().Err(err).Msg("rank snapshot failed")
		return
	}
	s.logger.Info().Int("players", n).Msg("rank snapshot stored")
}

func (s *Scheduler) runTokenCleanup() {
	n, err := authUtils.CleanExpiredTokens(s.db)
	if err != nil {
		s.logger.Error().Err(err).Msg("refresh token cleanup failed")
		return
	}
	if n > 0 {
		s.logger.Info().Int64("deleted", n).Msg("expired refresh tokens removed")
	}
}

func (s *Scheduler) runRegistrationCleanup() {
	stale, err := s.cleanup.StaleRegistrationsCount()
	if err != nil {
		s.logger.Error().Err(err).Msg("stale registration count failed")
		return
	}
	if stale > 0 {
		rejected, err := s.cleanup.RejectStaleRegistrations()
		if err != nil {
			s.logger.Error().Err(err).Msg("stale registration cleanup failed")
		} else {
			s.logger.Info().Int64("rejected", rejected).Msg("stale registrations rejected")
		}
	}

	expired, err := s.cleanup.ExpireJoinRequests(services.JoinRequestTTL)
	if err != nil {
		s.logger.Error().Err(err).Msg("join request cleanup failed")
		return
	}
	if expired > 0 {
		s.logger.Info().Int64("expired", expired).Msg("join requests expired")
	}
}

// RunNow runs every job once, synchronously.
func (s *Scheduler) RunNow() {
	s.logger.Info().Msg("running all jobs now")
	s.runRankSnapshot()
	s.runTokenCleanup()
	s.runRegistrationCleanup()
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}

package services

import (
	"fmt"
	"time"

	"towerhub-api/packages/core/models"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// JoinRequestTTL is how long a tower join request stays pending.
const JoinRequestTTL = 30 * 24 * time.Hour

// CleanupService closes leftovers nobody acted on: pending registrations
// of tournaments that already started, and old join requests.
type CleanupService struct {
	db            *gorm.DB
	notifications *NotificationService
	logger        zerolog.Logger
}

func NewCleanupService(db *gorm.DB, notifications *NotificationService, logger zerolog.Logger) *CleanupService {
	return &CleanupService{
		db:            db,
		notifications: notifications,
		logger:        logger,
	}
}

func (s *CleanupService) staleRegistrations() *gorm.DB {
	return s.db.Model(&models.TournamentRegistration{}).
		Joins("JOIN tournaments ON tournaments.id = tournament_registrations.tournament_id").
		Where("tournament_registrations.status = ?", models.RegistrationPending).
		Where("tournaments.status <> ?", models.TournamentUpcoming)
}

// StaleRegistrationsCount returns the number of pending registrations
// whose tournament is no longer open.
func (s *CleanupService) StaleRegistrationsCount() (int64, error) {
	var count int64
	err := s.staleRegistrations().Count(&count).Error
	return count, err
}

// RejectStaleRegistrations rejects those registrations and tells the
// tower leaders.
func (s *CleanupService) RejectStaleRegistrations() (int64, error) {
	var regs []models.TournamentRegistration
	if err := s.staleRegistrations().
		Preload("Tournament").
		Preload("Team.Tower").
		Find(&regs).Error; err != nil {
		return 0, err
	}
	if len(regs) == 0 {
		return 0, nil
	}

	ids := make([]uint, 0, len(regs))
	for _, r := range regs {
		ids = append(ids, r.ID)
	}
	res := s.db.Model(&models.TournamentRegistration{}).
		Where("id IN ? AND status = ?", ids, models.RegistrationPending).
		Update("status", models.RegistrationRejected)
	if res.Error != nil {
		return 0, res.Error
	}

	batch := make([]models.Notification, 0, len(regs))
	for _, r := range regs {
		if r.Team == nil || r.Team.Tower == nil || r.Tournament == nil {
			continue
		}
		batch = append(batch, NewNotification(r.Team.Tower.LeaderID, models.NotificationRegistrationRejected,
			"Registration closed",
			fmt.Sprintf("%s was not reviewed before %s started.", r.Team.Name, r.Tournament.Title),
			map[string]interface{}{"tournamentId": r.TournamentID, "teamId": r.TeamID, "registrationId": r.ID}, nil))
	}
	s.notifications.SendMany(batch)

	s.logger.Info().Int64("count", res.RowsAffected).Msg("stale registrations rejected")
	return res.RowsAffected, nil
}

// ExpireJoinRequests drops pending tower memberships older than maxAge.
func (s *CleanupService) ExpireJoinRequests(maxAge time.Duration) (int64, error) {
	res := s.db.Where("approved = ? AND joined_at < ?", false, time.Now().Add(-maxAge)).Delete(&models.TowerMember{})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected > 0 {
		s.logger.Info().Int64("count", res.RowsAffected).Msg("expired tower join requests")
	}
	return res.RowsAffected, nil
}

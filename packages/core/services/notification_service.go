package services

import (
	"encoding/json"
	"fmt"
	"strings"

	authModels "towerhub-api/packages/auth/models"
	authServices "towerhub-api/packages/auth/services"
	"towerhub-api/packages/core/models"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type NotificationService struct {
	db     *gorm.DB
	mailer authServices.EmailService
	logger zerolog.Logger
}

func NewNotificationService(db *gorm.DB, mailer authServices.EmailService, logger zerolog.Logger) *NotificationService {
	return &NotificationService{
		db:     db,
		mailer: mailer,
		logger: logger,
	}
}

func (s *NotificationService) WithDB(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db, mailer: s.mailer, logger: s.logger}
}

// NewNotification builds an unsaved notification with a JSON payload.
func NewNotification(userID uint, kind, title, message string, data interface{}, sentBy *uint) models.Notification {
	n := models.Notification{
		UserID:  userID,
		Type:    kind,
		Title:   title,
		Message: message,
		SentBy:  sentBy,
	}
	if data != nil {
		if raw, err := json.Marshal(data); err == nil {
			n.Data = datatypes.JSON(raw)
		}
	}
	return n
}

// Notify stores one notification and e-mails it when the user opted in.
func (s *NotificationService) Notify(userID uint, kind, title, message string, data interface{}, sentBy *uint) (*models.Notification, error) {
	n := NewNotification(userID, kind, title, message, data, sentBy)
	if err := s.db.Create(&n).Error; err != nil {
		return nil, err
	}
	s.deliverEmails([]models.Notification{n})
	return &n, nil
}

// NotifyMany stores notifications in batches.
func (s *NotificationService) NotifyMany(notifications []models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	if err := s.db.CreateInBatches(&notifications, 100).Error; err != nil {
		return err
	}
	s.deliverEmails(notifications)
	return nil
}

// Send is Notify for side effects of another operation: failures are
// logged and swallowed.
func (s *NotificationService) Send(userID uint, kind, title, message string, data interface{}, sentBy *uint) {
	if _, err := s.Notify(userID, kind, title, message, data, sentBy); err != nil {
		s.logger.Warn().Err(err).Uint("user_id", userID).Str("type", kind).Msg("notification failed")
	}
}

// SendMany is the batch form of Send.
func (s *NotificationService) SendMany(notifications []models.Notification) {
	if err := s.NotifyMany(notifications); err != nil {
		s.logger.Warn().Err(err).Int("count", len(notifications)).Msg("notifications failed")
	}
}

func (s *NotificationService) List(userID uint, unreadOnly bool) ([]models.Notification, error) {
	query := s.db.Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("read = ?", false)
	}

	var notifications []models.Notification
	err := query.Preload("Sender").
		Order("created_at DESC").Order("id DESC").
		Limit(models.NotificationListLimit).
		Find(&notifications).Error
	return notifications, err
}

func (s *NotificationService) MarkRead(userID, notificationID uint) (*models.Notification, error) {
	var n models.Notification
	if err := first(s.db.Where("user_id = ?", userID), &n, "notification", notificationID); err != nil {
		return nil, err
	}
	if err := s.db.Model(&n).Update("read", true).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

func (s *NotificationService) MarkAllRead(userID uint) (int64, error) {
	res := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true)
	return res.RowsAffected, res.Error
}

func (s *NotificationService) UnreadCount(userID uint) (int64, error) {
	var count int64
	err := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (s *NotificationService) Delete(userID, notificationID uint) error {
	res := s.db.Where("user_id = ?", userID).Delete(&models.Notification{}, notificationID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return NotFound("notification not found")
	}
	return nil
}

// NotifyTowerLeaders tells every tower leader and co-leader about a new tournament.
func (s *NotificationService) NotifyTowerLeaders(t models.Tournament, sentBy uint) error {
	var ids []uint
	if err := s.db.Model(&models.TowerMember{}).
		Where("role = ? AND approved = ?", models.TowerRoleCoLeader, true).
		Distinct().
		Pluck("user_id", &ids).Error; err != nil {
		return err
	}

	data := map[string]interface{}{"tournamentId": t.ID, "game": t.Game, "maxTeams": t.MaxTeams}
	notifications := make([]models.Notification, 0, len(ids))
	for _, id := range ids {
		if id == sentBy {
			continue
		}
		notifications = append(notifications, NewNotification(id, models.NotificationTournamentCreated,
			"New tournament: "+t.Title,
			fmt.Sprintf("%s registrations are open, %d team slots available.", t.Game, t.MaxTeams),
			data, &sentBy))
	}
	return s.NotifyMany(notifications)
}

func categoryOf(kind string) string {
	switch {
	case strings.HasPrefix(kind, "TOURNAMENT_"), strings.HasPrefix(kind, "REGISTRATION_"):
		return authModels.NotifyCategoryTournaments
	case strings.HasPrefix(kind, "TEAM_"):
		return authModels.NotifyCategoryTeams
	case strings.HasPrefix(kind, "TOWER_"):
		return authModels.NotifyCategoryTowers
	default:
		return authModels.NotifyCategoryAccount
	}
}

// deliverEmails never fails the caller; delivery errors are logged.
func (s *NotificationService) deliverEmails(notifications []models.Notification) {
	if s.mailer == nil {
		return
	}

	ids := make([]uint, 0, len(notifications))
	for _, n := range notifications {
		ids = append(ids, n.UserID)
	}
	var users []authModels.User
	if err := s.db.Where("id IN ? AND email IS NOT NULL AND enabled = ?", ids, true).Find(&users).Error; err != nil {
		s.logger.Warn().Err(err).Msg("failed to load notification recipients")
		return
	}
	byID := make(map[uint]authModels.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	for _, n := range notifications {
		u, ok := byID[n.UserID]
		if !ok || u.Email == nil || *u.Email == "" || !u.WantsNotification(categoryOf(n.Type)) {
			continue
		}
		if err := s.mailer.Send(*u.Email, n.Title, n.Message); err != nil {
			s.logger.Warn().Err(err).Uint("user_id", u.ID).Str("type", n.Type).Msg("notification email failed")
		}
	}
}

package services

import (
	"strings"

	authModels "towerhub-api/packages/auth/models"
	"towerhub-api/packages/core/authz"
	"towerhub-api/packages/core/models"

	"gorm.io/gorm"
)

type OrganizerService struct {
	db            *gorm.DB
	progression   *ProgressionService
	notifications *NotificationService
}

func NewOrganizerService(db *gorm.DB, progression *ProgressionService, notifications *NotificationService) *OrganizerService {
	return &OrganizerService{
		db:            db,
		progression:   progression,
		notifications: notifications,
	}
}

// Apply files or renews the user's organizer application. A rejected or
// blocked user may apply again.
func (s *OrganizerService) Apply(userID uint, req models.OrganizerApplyRequest) (*models.OrganizerApplication, error) {
	var user authModels.User
	if err := first(s.db, &user, "user", userID); err != nil {
		return nil, err
	}
	if user.HasRole(authModels.RoleOrganizer) {
		return nil, Conflict("you are already an organizer")
	}

	reason := strings.TrimSpace(req.Reason)
	var app models.OrganizerApplication
	err := s.db.Where("user_id = ?", userID).First(&app).Error
	switch {
	case isRecordNotFound(err):
		app = models.OrganizerApplication{UserID: userID, Reason: reason, Status: models.ApplicationPending}
		if err := s.db.Create(&app).Error; err != nil {
			return nil, err
		}
		return &app, nil
	case err != nil:
		return nil, err
	}

	if app.Status == models.ApplicationPending {
		return nil, Conflict("your application is already pending")
	}
	if err := s.db.Model(&app).Updates(map[string]interface{}{
		"reason":      reason,
		"status":      models.ApplicationPending,
		"reviewed_by": nil,
	}).Error; err != nil {
		return nil, err
	}
	app.Reason = reason
	app.Status = models.ApplicationPending
	app.ReviewedBy = nil
	return &app, nil
}

func (s *OrganizerService) MyApplication(userID uint) (*models.OrganizerApplication, error) {
	var app models.OrganizerApplication
	if err := first(s.db.Where("user_id = ?", userID), &app, "application"); err != nil {
		return nil, err
	}
	return &app, nil
}

func (s *OrganizerService) ListApplications(status string) ([]models.OrganizerApplication, error) {
	query := s.db.Preload("Player").Order("created_at DESC").Order("id DESC")
	if status != "" {
		status = strings.ToUpper(status)
		switch status {
		case models.ApplicationPending, models.ApplicationApproved, models.ApplicationRejected:
		default:
			return nil, Invalid("unknown application status %q", status)
		}
		query = query.Where("status = ?", status)
	}

	var apps []models.OrganizerApplication
	err := query.Find(&apps).Error
	return apps, err
}

func (s *OrganizerService) pending(adminID, appID uint) (*models.OrganizerApplication, error) {
	if err := authz.NewAuthorizer(s.db).Require(adminID, authz.IsSuperAdmin{}); err != nil {
		return nil, err
	}
	var app models.OrganizerApplication
	if err := first(s.db, &app, "application", appID); err != nil {
		return nil, err
	}
	if app.Status != models.ApplicationPending {
		return nil, Invalid("application is already %s", strings.ToLower(app.Status))
	}
	return &app, nil
}

// Approve grants the organizer role.
func (s *OrganizerService) Approve(adminID, appID uint) (*models.OrganizerApplication, error) {
	app, err := s.pending(adminID, appID)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var user authModels.User
		if err := first(tx, &user, "user", app.UserID); err != nil {
			return err
		}
		user.AddRole(authModels.RoleOrganizer)
		if err := tx.Model(&user).Update("roles", user.Roles).Error; err != nil {
			return err
		}
		return tx.Model(app).Updates(map[string]interface{}{
			"status":      models.ApplicationApproved,
			"reviewed_by": adminID,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	app.Status = models.ApplicationApproved
	app.ReviewedBy = &adminID

	s.progression.AwardBadgeQuietly(app.UserID, models.BadgeOrganizer)
	s.notifications.Send(app.UserID, models.NotificationOrganizerApproved, "Organizer application approved",
		"You can now create tournaments.", map[string]interface{}{"applicationId": app.ID}, &adminID)
	return app, nil
}

func (s *OrganizerService) Reject(adminID, appID uint) (*models.OrganizerApplication, error) {
	app, err := s.pending(adminID, appID)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(app).Updates(map[string]interface{}{
		"status":      models.ApplicationRejected,
		"reviewed_by": adminID,
	}).Error; err != nil {
		return nil, err
	}
	app.Status = models.ApplicationRejected
	app.ReviewedBy = &adminID

	s.notifications.Send(app.UserID, models.NotificationOrganizerRejected, "Organizer application rejected",
		"Your organizer application was not accepted.", map[string]interface{}{"applicationId": app.ID}, &adminID)
	return app, nil
}

// withRole filters users holding role. Roles are a JSON array: postgres
// uses jsonb containment, other drivers match the quoted value.
func withRole(db *gorm.DB, role string) *gorm.DB {
	if db.Dialector.Name() == "postgres" {
		return db.Where("roles @> ?", `["`+role+`"]`)
	}
	return db.Where("roles LIKE ?", `%"`+role+`"%`)
}

func (s *OrganizerService) ListOrganizers() ([]models.OrganizerView, error) {
	var users []authModels.User
	if err := withRole(s.db.Model(&authModels.User{}), authModels.RoleOrganizer).
		Order("id ASC").
		Find(&users).Error; err != nil {
		return nil, err
	}

	out := make([]models.OrganizerView, 0, len(users))
	if len(users) == 0 {
		return out, nil
	}

	ids := make([]uint, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	var players []models.Player
	if err := s.db.Where("id IN ?", ids).Find(&players).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}
	organized, err := countBy(s.db.Table("tournament_organizers"), "player_id", ids)
	if err != nil {
		return nil, err
	}

	for _, u := range users {
		summary := models.PlayerSummary{ID: u.ID, Username: u.Username, Name: u.Name, AvatarURL: u.AvatarURL}
		if p, ok := byID[u.ID]; ok {
			summary = p.Summary()
		}
		out = append(out, models.OrganizerView{
			PlayerSummary:        summary,
			Email:                u.Email,
			TournamentsOrganized: organized[u.ID],
		})
	}
	return out, nil
}

// Block takes the organizer role away. Tournaments already organized keep
// their organizer list.
func (s *OrganizerService) Block(adminID, userID uint) (*authModels.User, error) {
	if err := authz.NewAuthorizer(s.db).Require(adminID, authz.IsSuperAdmin{}); err != nil {
		return nil, err
	}
	var user authModels.User
	if err := first(s.db, &user, "user", userID); err != nil {
		return nil, err
	}
	if !user.HasRole(authModels.RoleOrganizer) {
		return nil, Invalid("user is not an organizer")
	}

	user.RemoveRole(authModels.RoleOrganizer)
	if len(user.Roles) == 0 {
		user.Roles = authModels.GetDefaultRoles()
	}
	if err := s.db.Model(&user).Update("roles", user.Roles).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

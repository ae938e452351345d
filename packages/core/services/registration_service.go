package services

import (
	"fmt"

	"towerhub-api/packages/core/authz"
	"towerhub-api/packages/core/models"

	"gorm.io/gorm"
)

// RegisterTeam enters a team in an upcoming tournament. Pending and
// approved entries both count against maxTeams.
func (s *TournamentService) RegisterTeam(actorID, tournamentID, teamID uint) (*models.TournamentRegistration, error) {
	var tournament models.Tournament
	if err := first(s.db, &tournament, "tournament", tournamentID); err != nil {
		return nil, err
	}
	if tournament.Status != models.TournamentUpcoming {
		return nil, Invalid("registrations are closed for this tournament")
	}

	var team models.Team
	if err := first(s.db, &team, "team", teamID); err != nil {
		return nil, err
	}
	if err := authz.NewAuthorizer(s.db).Require(actorID, authz.TowerAdmin(team.TowerID)); err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.Model(&models.TournamentRegistration{}).
		Where("tournament_id = ? AND team_id = ?", tournamentID, teamID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, Conflict("team is already registered")
	}

	if err := s.db.Model(&models.TournamentRegistration{}).
		Where("tournament_id = ? AND status IN ?", tournamentID, []string{models.RegistrationPending, models.RegistrationApproved}).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count >= int64(tournament.MaxTeams) {
		return nil, Conflict("tournament is full")
	}

	reg := &models.TournamentRegistration{
		TournamentID:    tournamentID,
		TeamID:          teamID,
		CreatedByUserID: actorID,
		Status:          models.RegistrationPending,
	}
	if err := s.db.Create(reg).Error; err != nil {
		return nil, err
	}
	return reg, nil
}

func (s *TournamentService) Registrations(tournamentID uint) ([]models.TournamentRegistration, error) {
	var tournament models.Tournament
	if err := first(s.db, &tournament, "tournament", tournamentID); err != nil {
		return nil, err
	}

	var regs []models.TournamentRegistration
	err := s.db.Where("tournament_id = ?", tournamentID).
		Preload("Team.Tower").
		Order("created_at ASC").Order("id ASC").
		Find(&regs).Error
	return regs, err
}

func (s *TournamentService) registration(tournamentID, regID uint) (*models.TournamentRegistration, error) {
	var reg models.TournamentRegistration
	if err := first(s.db.Where("tournament_id = ?", tournamentID).Preload("Team.Tower").Preload("Tournament"), &reg, "registration", regID); err != nil {
		return nil, err
	}
	if reg.Status != models.RegistrationPending {
		return nil, Invalid("registration is already %s", reg.Status)
	}
	return &reg, nil
}

// ApproveRegistration confirms a pending entry if a slot is still free.
func (s *TournamentService) ApproveRegistration(actorID, tournamentID, regID uint) (*models.TournamentRegistration, error) {
	if err := authz.NewAuthorizer(s.db).Require(actorID, authz.TournamentStaff(tournamentID)); err != nil {
		return nil, err
	}
	reg, err := s.registration(tournamentID, regID)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var approved int64
		if err := tx.Model(&models.TournamentRegistration{}).
			Where("tournament_id = ? AND status = ?", tournamentID, models.RegistrationApproved).
			Count(&approved).Error; err != nil {
			return err
		}
		if approved >= int64(reg.Tournament.MaxTeams) {
			return Conflict("tournament is full")
		}
		if err := decideRegistration(tx, reg.ID, map[string]interface{}{
			"status":              models.RegistrationApproved,
			"approved_by_user_id": actorID,
		}); err != nil {
			return err
		}
		return tx.Model(&models.Tower{}).Where("id = ?", reg.Team.TowerID).
			UpdateColumn("tournaments_participated", gorm.Expr("tournaments_participated + ?", 1)).Error
	})
	if err != nil {
		return nil, err
	}
	reg.Status = models.RegistrationApproved
	reg.ApprovedByUserID = &actorID

	var memberIDs []uint
	if err := s.db.Model(&models.TeamMember{}).Where("team_id = ?", reg.TeamID).Pluck("user_id", &memberIDs).Error; err != nil {
		return nil, err
	}
	for _, userID := range memberIDs {
		s.progression.AwardBadgeQuietly(userID, models.BadgeFirstTournament)
		s.progression.UpdateAchievementQuietly(userID, models.AchievementTournamentParticipation, 1)
	}

	recipients := dedupe(append([]uint{reg.Team.Tower.LeaderID}, memberIDs...))
	s.notifyRegistration(recipients, reg, models.NotificationRegistrationApproved, "Registration approved",
		fmt.Sprintf("%s is in %s.", reg.Team.Name, reg.Tournament.Title), actorID)
	return reg, nil
}

func (s *TournamentService) RejectRegistration(actorID, tournamentID, regID uint) (*models.TournamentRegistration, error) {
	if err := authz.NewAuthorizer(s.db).Require(actorID, authz.TournamentStaff(tournamentID)); err != nil {
		return nil, err
	}
	reg, err := s.registration(tournamentID, regID)
	if err != nil {
		return nil, err
	}

	if err := decideRegistration(s.db, reg.ID, map[string]interface{}{"status": models.RegistrationRejected}); err != nil {
		return nil, err
	}
	reg.Status = models.RegistrationRejected

	s.notifyRegistration([]uint{reg.Team.Tower.LeaderID}, reg, models.NotificationRegistrationRejected, "Registration rejected",
		fmt.Sprintf("%s was not accepted in %s.", reg.Team.Name, reg.Tournament.Title), actorID)
	return reg, nil
}

// decideRegistration moves a registration out of PENDING. A registration
// already decided by another request yields a Conflict.
func decideRegistration(db *gorm.DB, regID uint, changes map[string]interface{}) error {
	res := db.Model(&models.TournamentRegistration{}).
		Where("id = ? AND status = ?", regID, models.RegistrationPending).
		Updates(changes)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return Conflict("registration was already decided")
	}
	return nil
}

func (s *TournamentService) notifyRegistration(recipients []uint, reg *models.TournamentRegistration, kind, title, message string, actorID uint) {
	data := map[string]interface{}{"tournamentId": reg.TournamentID, "teamId": reg.TeamID, "registrationId": reg.ID}
	batch := make([]models.Notification, 0, len(recipients))
	for _, id := range recipients {
		batch = append(batch, NewNotification(id, kind, title, message, data, &actorID))
	}
	s.notifications.SendMany(batch)
}

package services

import (
	"fmt"
	"strings"

	"towerhub-api/packages/core/authz"
	"towerhub-api/packages/core/models"
	"towerhub-api/packages/core/ranking"

	"gorm.io/gorm"
)

type TeamService struct {
	db            *gorm.DB
	progression   *ProgressionService
	notifications *NotificationService
}

func NewTeamService(db *gorm.DB, progression *ProgressionService, notifications *NotificationService) *TeamService {
	return &TeamService{
		db:            db,
		progression:   progression,
		notifications: notifications,
	}
}

// CreateTeam adds a team to a tower, within the tower's team cap.
func (s *TeamService) CreateTeam(actorID, towerID uint, req models.CreateTeamRequest) (*models.Team, error) {
	if err := authz.NewAuthorizer(s.db).Require(actorID, authz.TowerAdmin(towerID)); err != nil {
		return nil, err
	}

	var tower models.Tower
	if err := first(s.db, &tower, "tower", towerID); err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.Model(&models.Team{}).Where("tower_id = ?", towerID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count >= int64(tower.MaxTeams) {
		return nil, Conflict("tower reached its limit of %d teams", tower.MaxTeams)
	}

	name := strings.TrimSpace(req.Name)
	if err := s.db.Unscoped().Model(&models.Team{}).Where("tower_id = ? AND name = ?", towerID, name).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, Conflict("a team named %q already exists in this tower", name)
	}

	team := &models.Team{
		TowerID: towerID,
		Name:    name,
		LogoURL: req.LogoURL,
	}
	if err := s.db.Create(team).Error; err != nil {
		return nil, err
	}

	s.progression.UpdateAchievementQuietly(actorID, models.AchievementTeamCreated, 1)
	return team, nil
}

func (s *TeamService) GetTeamByID(id uint) (*models.Team, error) {
	var team models.Team
	err := first(s.db.Preload("Tower").Preload("Captain").Preload("Members.Player"), &team, "team", id)
	if err != nil {
		return nil, err
	}
	return &team, nil
}

// GetTeam returns the team with its aggregate recomputed from the current
// member rows.
func (s *TeamService) GetTeam(id uint) (*models.TeamDetails, error) {
	team, err := s.GetTeamByID(id)
	if err != nil {
		return nil, err
	}
	return &models.TeamDetails{
		Team:      *team,
		Aggregate: ranking.AggregateTeam(team.MemberRecords()),
	}, nil
}

// AddMember puts an approved tower member in the team. The first member
// becomes captain.
func (s *TeamService) AddMember(actorID, teamID, userID uint) (*models.TeamMember, error) {
	var team models.Team
	if err := first(s.db, &team, "team", teamID); err != nil {
		return nil, err
	}
	if err := authz.NewAuthorizer(s.db).Require(actorID, authz.TowerAdmin(team.TowerID)); err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.Model(&models.TowerMember{}).
		Where("tower_id = ? AND user_id = ? AND approved = ?", team.TowerID, userID, true).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, Invalid("user is not an approved member of this tower")
	}

	if err := s.db.Model(&models.TeamMember{}).Where("team_id = ? AND user_id = ?", teamID, userID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, Conflict("user is already in this team")
	}

	member := &models.TeamMember{TeamID: teamID, UserID: userID}
	becameCaptain := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(member).Error; err != nil {
			return err
		}
		if team.CaptainID == nil {
			becameCaptain = true
			return tx.Model(&team).Update("captain_id", userID).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if becameCaptain {
		s.progression.AwardBadgeQuietly(userID, models.BadgeTeamCaptain)
	}
	var teams int64
	if err := s.db.Model(&models.TeamMember{}).Where("user_id = ?", userID).Count(&teams).Error; err == nil && teams >= TeamPlayerTeamCount {
		s.progression.AwardBadgeQuietly(userID, models.BadgeTeamPlayer)
	}

	s.notifications.Send(userID, models.NotificationTeamMemberAdded, "New team",
		fmt.Sprintf("You were added to %s.", team.Name),
		map[string]interface{}{"teamId": teamID, "towerId": team.TowerID}, &actorID)
	return member, nil
}

// RemoveMember drops a player from the team, handing the captaincy to the
// longest standing remaining member when needed.
func (s *TeamService) RemoveMember(actorID, teamID, userID uint) error {
	var team models.Team
	if err := first(s.db, &team, "team", teamID); err != nil {
		return err
	}
	if err := authz.NewAuthorizer(s.db).Require(actorID, authz.TowerAdmin(team.TowerID)); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("team_id = ? AND user_id = ?", teamID, userID).Delete(&models.TeamMember{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return NotFound("team member not found")
		}
		if team.CaptainID == nil || *team.CaptainID != userID {
			return nil
		}

		var next models.TeamMember
		err := tx.Where("team_id = ?", teamID).Order("joined_at ASC").Order("id ASC").First(&next).Error
		switch {
		case isRecordNotFound(err):
			return tx.Model(&team).Update("captain_id", nil).Error
		case err != nil:
			return err
		}
		return tx.Model(&team).Update("captain_id", next.UserID).Error
	})
}

// DeleteTeam is refused while the team is entered in an unfinished
// tournament.
func (s *TeamService) DeleteTeam(actorID, teamID uint) error {
	var team models.Team
	if err := first(s.db, &team, "team", teamID); err != nil {
		return err
	}
	if err := authz.NewAuthorizer(s.db).Require(actorID, authz.TowerAdmin(team.TowerID)); err != nil {
		return err
	}

	var active int64
	if err := s.db.Model(&models.TournamentRegistration{}).
		Joins("JOIN tournaments ON tournaments.id = tournament_registrations.tournament_id").
		Where("tournament_registrations.team_id = ?", teamID).
		Where("tournament_registrations.status IN ?", []string{models.RegistrationPending, models.RegistrationApproved}).
		Where("tournaments.status IN ?", models.OngoingStatuses).
		Count(&active).Error; err != nil {
		return err
	}
	if active > 0 {
		return Invalid("team is registered in an ongoing tournament")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("team_id = ?", teamID).Delete(&models.TeamMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(&team).Error
	})
}

package services

import (
	"fmt"
	"strings"
	"time"

	"towerhub-api/packages/core/authz"
	"towerhub-api/packages/core/models"

	"gorm.io/gorm"
)

type TournamentService struct {
	db            *gorm.DB
	progression   *ProgressionService
	notifications *NotificationService
}

func NewTournamentService(db *gorm.DB, progression *ProgressionService, notifications *NotificationService) *TournamentService {
	return &TournamentService{
		db:            db,
		progression:   progression,
		notifications: notifications,
	}
}

type PaginatedTournamentsResponse struct {
	Data       []models.Tournament `json:"data"`
	Total      int64               `json:"total"`
	Page       int                 `json:"page"`
	PageSize   int                 `json:"pageSize"`
	TotalPages int                 `json:"totalPages"`
}

// CreateTournament is open to organizers and super admins. The creator is
// always one of the organizers.
func (s *TournamentService) CreateTournament(actorID uint, req models.CreateTournamentRequest) (*models.Tournament, error) {
	if err := authz.NewAuthorizer(s.db).Require(actorID, authz.AnyOf(authz.IsOrganizer{}, authz.IsSuperAdmin{})); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, Invalid("title is required")
	}

	organizerIDs := dedupe(append([]uint{actorID}, req.OrganizerIDs...))
	var organizers []models.Player
	if err := s.db.Where("id IN ?", organizerIDs).Find(&organizers).Error; err != nil {
		return nil, err
	}
	if len(organizers) != len(organizerIDs) {
		return nil, Invalid("unknown organizer in organizerIds")
	}

	tournament := &models.Tournament{
		Title:         title,
		Game:          strings.TrimSpace(req.Game),
		LogoURL:       req.LogoURL,
		Description:   req.Description,
		EntryFee:      req.EntryFee,
		MaxTeams:      req.MaxTeams,
		MatchDateTime: req.MatchDateTime,
		Status:        models.TournamentUpcoming,
		Organizers:    organizers,
	}
	if err := s.db.Omit("Organizers.*").Create(tournament).Error; err != nil {
		return nil, err
	}

	if err := s.notifications.NotifyTowerLeaders(*tournament, actorID); err != nil {
		s.notifications.logger.Warn().Err(err).Uint("tournament_id", tournament.ID).Msg("tournament announcement failed")
	}
	return tournament, nil
}

func (s *TournamentService) GetTournamentByID(id uint) (*models.Tournament, error) {
	var tournament models.Tournament
	err := first(s.db.
		Preload("Organizers").
		Preload("WinnerTeam").
		Preload("Registrations", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Registrations.Team"),
		&tournament, "tournament", id)
	if err != nil {
		return nil, err
	}
	return &tournament, nil
}

func (s *TournamentService) GetAllTournaments(page, pageSize int, status string) (*PaginatedTournamentsResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	query := s.db.Model(&models.Tournament{})
	if status != "" {
		status = strings.ToUpper(status)
		switch status {
		case models.TournamentUpcoming, models.TournamentLive, models.TournamentCompleted, models.TournamentCancelled:
		default:
			return nil, Invalid("unknown tournament status %q", status)
		}
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var tournaments []models.Tournament
	if err := query.
		Preload("Organizers").
		Preload("WinnerTeam").
		Order("match_date_time ASC").Order("id ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&tournaments).Error; err != nil {
		return nil, err
	}

	return &PaginatedTournamentsResponse{
		Data:       tournaments,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: int((total + int64(pageSize) - 1) / int64(pageSize)),
	}, nil
}

// UpdateStatus moves the tournament along UPCOMING -> LIVE -> COMPLETED
// or cancels it. Completion designates the winner.
func (s *TournamentService) UpdateStatus(actorID, id uint, status string) (*models.Tournament, error) {
	if err := authz.NewAuthorizer(s.db).Require(actorID, authz.TournamentStaff(id)); err != nil {
		return nil, err
	}

	var tournament models.Tournament
	if err := first(s.db, &tournament, "tournament", id); err != nil {
		return nil, err
	}
	if !tournament.CanTransitionTo(status) {
		return nil, Invalid("cannot change status from %s to %s", tournament.Status, status)
	}

	var winner *models.TournamentRegistration
	err := s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{"status": status}
		if status == models.TournamentCompleted {
			now := time.Now()
			updates["completed_at"] = now

			var reg models.TournamentRegistration
			err := tx.Where("tournament_id = ? AND status = ?", id, models.RegistrationApproved).
				Order("wins DESC").Order("created_at ASC").Order("id ASC").
				Preload("Team").
				First(&reg).Error
			switch {
			case err == nil:
				winner = &reg
				updates["winner_team_id"] = reg.TeamID
				if reg.Team != nil {
					if err := tx.Model(&models.Tower{}).Where("id = ?", reg.Team.TowerID).
						UpdateColumn("tournaments_won", gorm.Expr("tournaments_won + ?", 1)).Error; err != nil {
						return err
					}
				}
			case !isRecordNotFound(err):
				return err
			}
		}
		return tx.Model(&tournament).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}

	if winner != nil {
		s.rewardWinner(tournament, *winner, actorID)
	}
	return s.GetTournamentByID(id)
}

func (s *TournamentService) rewardWinner(t models.Tournament, reg models.TournamentRegistration, actorID uint) {
	var memberIDs []uint
	if err := s.db.Model(&models.TeamMember{}).Where("team_id = ?", reg.TeamID).Pluck("user_id", &memberIDs).Error; err != nil {
		s.notifications.logger.Warn().Err(err).Uint("team_id", reg.TeamID).Msg("failed to load winning team members")
		return
	}

	teamName := ""
	if reg.Team != nil {
		teamName = reg.Team.Name
	}
	batch := make([]models.Notification, 0, len(memberIDs))
	for _, userID := range memberIDs {
		s.progression.AwardBadgeQuietly(userID, models.BadgeTournamentWinner)
		s.progression.UpdateAchievementQuietly(userID, models.AchievementTournamentWin, 1)
		batch = append(batch, NewNotification(userID, models.NotificationTournamentWon,
			"Champions!", fmt.Sprintf("%s won %s.", teamName, t.Title),
			map[string]interface{}{"tournamentId": t.ID, "teamId": reg.TeamID}, &actorID))
	}
	s.notifications.SendMany(batch)
}

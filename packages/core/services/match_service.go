package services

import (
	"fmt"
	"strings"
	"time"

	"towerhub-api/packages/core/authz"
	"towerhub-api/packages/core/models"
	"towerhub-api/packages/core/utils"

	"gorm.io/gorm"
)

type MatchService struct {
	db            *gorm.DB
	progression   *ProgressionService
	notifications *NotificationService
}

func NewMatchService(db *gorm.DB, progression *ProgressionService, notifications *NotificationService) *MatchService {
	return &MatchService{
		db:            db,
		progression:   progression,
		notifications: notifications,
	}
}

func (s *MatchService) GetMatchByID(id uint) (*models.Match, error) {
	var match models.Match
	err := first(s.db.Preload("TeamA").Preload("TeamB").Preload("WinnerTeam").Preload("Proofs"), &match, "match", id)
	if err != nil {
		return nil, err
	}
	return &match, nil
}

func (s *MatchService) GetTournamentMatches(tournamentID uint) ([]models.Match, error) {
	var tournament models.Tournament
	if err := first(s.db, &tournament, "tournament", tournamentID); err != nil {
		return nil, err
	}

	var matches []models.Match
	result := s.db.Where("tournament_id = ?", tournamentID).
		Order("created_at ASC").Order("id ASC").
		Preload("TeamA").
		Preload("TeamB").
		Preload("WinnerTeam").
		Preload("Proofs").
		Find(&matches)
	if result.Error != nil {
		return nil, result.Error
	}
	return matches, nil
}

// CreateMatch pairs two approved registrants of a tournament that is not
// finished.
func (s *MatchService) CreateMatch(actorID, tournamentID uint, req models.CreateMatchRequest) (*models.Match, error) {
	if err := authz.NewAuthorizer(s.db).Require(actorID, authz.TournamentStaff(tournamentID)); err != nil {
		return nil, err
	}
	if req.TeamAID == req.TeamBID {
		return nil, Invalid("a team cannot play against itself")
	}

	var tournament models.Tournament
	if err := first(s.db, &tournament, "tournament", tournamentID); err != nil {
		return nil, err
	}
	if tournament.Status != models.TournamentUpcoming && tournament.Status != models.TournamentLive {
		return nil, Invalid("tournament is %s", strings.ToLower(tournament.Status))
	}

	var count int64
	if err := s.db.Model(&models.TournamentRegistration{}).
		Where("tournament_id = ? AND status = ? AND team_id IN ?", tournamentID, models.RegistrationApproved, []uint{req.TeamAID, req.TeamBID}).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count != 2 {
		return nil, Invalid("both teams must be approved registrants of the tournament")
	}

	match := &models.Match{
		TournamentID: tournamentID,
		TeamAID:      req.TeamAID,
		TeamBID:      req.TeamBID,
		RoomID:       strings.TrimSpace(req.RoomID),
	}
	if err := s.db.Create(match).Error; err != nil {
		return nil, err
	}
	return s.GetMatchByID(match.ID)
}

func (s *MatchService) SetRoom(actorID, matchID uint, roomID string) (*models.Match, error) {
	var match models.Match
	if err := first(s.db, &match, "match", matchID); err != nil {
		return nil, err
	}
	if err := authz.NewAuthorizer(s.db).Require(actorID, authz.TournamentStaff(match.TournamentID)); err != nil {
		return nil, err
	}
	if match.CompletedAt != nil {
		return nil, Invalid("match is already completed")
	}

	if err := s.db.Model(&match).Update("room_id", strings.TrimSpace(roomID)).Error; err != nil {
		return nil, err
	}
	return s.GetMatchByID(matchID)
}

// AddProof attaches a screenshot link. Players of either team and the
// tournament staff may upload.
func (s *MatchService) AddProof(actorID, matchID uint, url string) (*models.Proof, error) {
	var match models.Match
	if err := first(s.db, &match, "match", matchID); err != nil {
		return nil, err
	}

	staff, err := authz.NewAuthorizer(s.db).Allowed(actorID, authz.TournamentStaff(match.TournamentID))
	if err != nil {
		return nil, err
	}
	if !staff {
		var count int64
		if err := s.db.Model(&models.TeamMember{}).
			Where("user_id = ? AND team_id IN ?", actorID, []uint{match.TeamAID, match.TeamBID}).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, Forbidden("only players of this match or its organizers can add proofs")
		}
	}

	proof := &models.Proof{MatchID: matchID, UploadedByID: actorID, URL: url}
	if err := s.db.Create(proof).Error; err != nil {
		return nil, err
	}
	return proof, nil
}

type participant struct {
	teamID uint
	won    bool
	line   models.StatLine
}

// RecordResult applies a match result to the score counters, once per
// match, while the tournament is live.
func (s *MatchService) RecordResult(actorID, matchID uint, req models.MatchResultRequest) (*models.MatchResult, error) {
	var match models.Match
	if err := first(s.db, &match, "match", matchID); err != nil {
		return nil, err
	}
	if err := authz.NewAuthorizer(s.db).Require(actorID, authz.TournamentStaff(match.TournamentID)); err != nil {
		return nil, err
	}
	if match.CompletedAt != nil {
		return nil, Conflict("match result already recorded")
	}
	if !match.HasTeam(req.WinnerTeamID) {
		return nil, Invalid("winner must be one of the two teams")
	}

	var tournament models.Tournament
	if err := first(s.db, &tournament, "tournament", match.TournamentID); err != nil {
		return nil, err
	}
	if tournament.Status != models.TournamentLive {
		return nil, Invalid("results can only be recorded while the tournament is live")
	}

	participants, err := s.participants(match, req)
	if err != nil {
		return nil, err
	}

	var teams []models.Team
	if err := s.db.Where("id IN ?", []uint{match.TeamAID, match.TeamBID}).Find(&teams).Error; err != nil {
		return nil, err
	}
	towerOf := make(map[uint]uint, len(teams))
	for _, t := range teams {
		towerOf[t.ID] = t.TowerID
	}

	loserID := match.TeamAID
	if req.WinnerTeamID == match.TeamAID {
		loserID = match.TeamBID
	}

	var levelUps []uint
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := claimMatch(tx, matchID, req.WinnerTeamID, time.Now()); err != nil {
			return err
		}

		towerPoints := make(map[uint]int64)
		progression := s.progression.WithDB(tx)
		for userID, p := range participants {
			if err := s.updatePlayerStatsInTransaction(tx, userID, p); err != nil {
				return err
			}
			towerPoints[towerOf[p.teamID]] += p.line.Points

			xp := utils.XPMatchPlayed
			if p.won {
				xp += utils.XPMatchWon
			}
			res, err := progression.AddXP(userID, xp)
			if err != nil {
				return err
			}
			if res.LeveledUp {
				levelUps = append(levelUps, userID)
			}
		}

		for towerID, points := range towerPoints {
			if towerID == 0 || points == 0 {
				continue
			}
			if err := tx.Model(&models.Tower{}).Where("id = ?", towerID).
				UpdateColumn("total_points", gorm.Expr("total_points + ?", points)).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(&models.TournamentRegistration{}).
			Where("tournament_id = ? AND team_id = ?", match.TournamentID, req.WinnerTeamID).
			UpdateColumn("wins", gorm.Expr("wins + 1")).Error; err != nil {
			return err
		}
		return tx.Model(&models.TournamentRegistration{}).
			Where("tournament_id = ? AND team_id = ?", match.TournamentID, loserID).
			UpdateColumn("losses", gorm.Expr("losses + 1")).Error
	})
	if err != nil {
		return nil, err
	}

	s.afterResult(participants, levelUps)

	updated, err := s.GetMatchByID(matchID)
	if err != nil {
		return nil, err
	}
	if levelUps == nil {
		levelUps = []uint{}
	}
	return &models.MatchResult{
		Match:         *updated,
		PlayersScored: len(participants),
		LevelUps:      levelUps,
	}, nil
}

// claimMatch completes the match inside tx. Only the first caller for a
// match gets through; later ones get a Conflict, whatever they read before.
func claimMatch(tx *gorm.DB, matchID, winnerTeamID uint, at time.Time) error {
	res := tx.Model(&models.Match{}).
		Where("id = ? AND completed_at IS NULL", matchID).
		Updates(map[string]interface{}{
			"winner_team_id": winnerTeamID,
			"completed_at":   at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return Conflict("match result already recorded")
	}
	return nil
}

// participants maps every member of both teams to their stat line. Stat
// lines for players outside the match are rejected.
func (s *MatchService) participants(match models.Match, req models.MatchResultRequest) (map[uint]*participant, error) {
	var members []models.TeamMember
	if err := s.db.Where("team_id IN ?", []uint{match.TeamAID, match.TeamBID}).Find(&members).Error; err != nil {
		return nil, err
	}

	out := make(map[uint]*participant, len(members))
	for _, m := range members {
		if prev, ok := out[m.UserID]; ok && prev.teamID != m.TeamID {
			return nil, Invalid("player %d is on both teams", m.UserID)
		}
		out[m.UserID] = &participant{
			teamID: m.TeamID,
			won:    m.TeamID == req.WinnerTeamID,
			line:   models.StatLine{UserID: m.UserID},
		}
	}

	seen := make(map[uint]bool, len(req.Stats))
	for _, line := range req.Stats {
		p, ok := out[line.UserID]
		if !ok {
			return nil, Invalid("player %d did not play this match", line.UserID)
		}
		if seen[line.UserID] {
			return nil, Invalid("duplicate stat line for player %d", line.UserID)
		}
		if line.Kills < 0 || line.Deaths < 0 || line.Points < 0 {
			return nil, Invalid("stat values must be positive")
		}
		seen[line.UserID] = true
		p.line = line
	}
	return out, nil
}

func (s *MatchService) updatePlayerStatsInTransaction(tx *gorm.DB, userID uint, p *participant) error {
	updates := map[string]interface{}{
		"matches_played":     gorm.Expr("matches_played + 1"),
		"kills":              gorm.Expr("kills + ?", p.line.Kills),
		"deaths":             gorm.Expr("deaths + ?", p.line.Deaths),
		"performance_points": gorm.Expr("performance_points + ?", p.line.Points),
	}
	if p.won {
		updates["matches_won"] = gorm.Expr("matches_won + 1")
		updates["wins"] = gorm.Expr("wins + 1")
	}
	if p.line.MVP {
		updates["mvp_count"] = gorm.Expr("mvp_count + 1")
	}
	return tx.Model(&models.Player{}).Where("id = ?", userID).UpdateColumns(updates).Error
}

// afterResult runs the progression side effects once the result is
// committed. Failures are logged.
func (s *MatchService) afterResult(participants map[uint]*participant, levelUps []uint) {
	for userID, p := range participants {
		s.progression.UpdateAchievementQuietly(userID, models.AchievementMatchesPlayed, 1)
		if p.line.MVP {
			s.progression.UpdateAchievementQuietly(userID, models.AchievementMVPEarned, 1)
		}

		var player models.Player
		if err := s.db.First(&player, userID).Error; err != nil {
			s.progression.logger.Warn().Err(err).Uint("user_id", userID).Msg("failed to reload player after match")
			continue
		}
		earned, err := s.progression.CheckMatchMilestones(player)
		if err != nil {
			s.progression.logger.Warn().Err(err).Uint("user_id", userID).Msg("milestone check failed")
		}
		for _, badge := range earned {
			s.notifications.Send(userID, models.NotificationBadgeEarned, "New badge",
				fmt.Sprintf("You earned the %s badge.", badge),
				map[string]interface{}{"badge": badge}, nil)
		}
	}

	for _, userID := range levelUps {
		var player models.Player
		if err := s.db.Select("id", "level").First(&player, userID).Error; err != nil {
			continue
		}
		s.notifications.Send(userID, models.NotificationLevelUp, "Level up",
			fmt.Sprintf("You reached level %d.", player.Level),
			map[string]interface{}{"level": player.Level}, nil)
	}
}

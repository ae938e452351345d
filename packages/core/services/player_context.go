package services

import (
	"fmt"
	"strings"

	"towerhub-api/packages/core/models"
	"towerhub-api/packages/core/ranking"

	"gorm.io/gorm"
)

const badgesPerEntry = 3

type tournamentCounts struct {
	Played  int64
	Ongoing int64
}

// playerContext holds what leaderboard rows show next to the raw counters.
type playerContext struct {
	towers      map[uint]*models.EntityRef
	teams       map[uint]*models.EntityRef
	tournaments map[uint]tournamentCounts
	badges      map[uint][]models.BadgeSummary
}

func ongoingStatusSQL() string {
	quoted := make([]string, 0, len(models.OngoingStatuses))
	for _, st := range models.OngoingStatuses {
		quoted = append(quoted, "'"+st+"'")
	}
	return strings.Join(quoted, ", ")
}

func loadPlayerContext(db *gorm.DB, ids []uint) (*playerContext, error) {
	pc := &playerContext{
		towers:      make(map[uint]*models.EntityRef),
		teams:       make(map[uint]*models.EntityRef),
		tournaments: make(map[uint]tournamentCounts),
		badges:      make(map[uint][]models.BadgeSummary),
	}
	if len(ids) == 0 {
		return pc, nil
	}

	var led []models.Tower
	if err := db.Where("leader_id IN ?", ids).Find(&led).Error; err != nil {
		return nil, err
	}
	for _, t := range led {
		pc.towers[t.LeaderID] = t.Ref()
	}
	var memberships []models.TowerMember
	if err := db.Where("user_id IN ? AND approved = ?", ids, true).Preload("Tower").Find(&memberships).Error; err != nil {
		return nil, err
	}
	for _, m := range memberships {
		if _, ok := pc.towers[m.UserID]; !ok && m.Tower != nil {
			pc.towers[m.UserID] = m.Tower.Ref()
		}
	}

	var captained []models.Team
	if err := db.Where("captain_id IN ?", ids).Order("id ASC").Find(&captained).Error; err != nil {
		return nil, err
	}
	for _, t := range captained {
		if _, ok := pc.teams[*t.CaptainID]; !ok {
			pc.teams[*t.CaptainID] = t.Ref()
		}
	}
	var teamMemberships []models.TeamMember
	if err := db.Where("user_id IN ?", ids).Preload("Team").Order("id ASC").Find(&teamMemberships).Error; err != nil {
		return nil, err
	}
	for _, m := range teamMemberships {
		if _, ok := pc.teams[m.UserID]; !ok && m.Team != nil {
			pc.teams[m.UserID] = m.Team.Ref()
		}
	}

	var rows []struct {
		UserID  uint
		Played  int64
		Ongoing int64
	}
	if err := db.Table("team_members").
		Select(fmt.Sprintf("team_members.user_id AS user_id, "+
			"COUNT(DISTINCT tournament_registrations.tournament_id) AS played, "+
			"COUNT(DISTINCT CASE WHEN tournaments.status IN (%s) THEN tournaments.id END) AS ongoing", ongoingStatusSQL())).
		Joins("JOIN tournament_registrations ON tournament_registrations.team_id = team_members.team_id AND tournament_registrations.status = ?", models.RegistrationApproved).
		Joins("JOIN tournaments ON tournaments.id = tournament_registrations.tournament_id AND tournaments.deleted_at IS NULL").
		Where("team_members.user_id IN ?", ids).
		Group("team_members.user_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		pc.tournaments[r.UserID] = tournamentCounts{Played: r.Played, Ongoing: r.Ongoing}
	}

	var userBadges []models.UserBadge
	if err := db.Where("user_id IN ?", ids).Preload("Badge").
		Order("earned_at DESC").Order("id DESC").
		Find(&userBadges).Error; err != nil {
		return nil, err
	}
	for _, ub := range userBadges {
		if len(pc.badges[ub.UserID]) < badgesPerEntry {
			pc.badges[ub.UserID] = append(pc.badges[ub.UserID], ub.Summary())
		}
	}

	return pc, nil
}

func (pc *playerContext) entry(rank int64, p models.Player, m ranking.DerivedMetrics) models.PlayerLeaderboardEntry {
	badges := pc.badges[p.ID]
	if badges == nil {
		badges = []models.BadgeSummary{}
	}
	counts := pc.tournaments[p.ID]
	return models.PlayerLeaderboardEntry{
		Rank:               rank,
		ID:                 p.ID,
		Username:           p.Username,
		Name:               p.Name,
		AvatarURL:          p.AvatarURL,
		GameID:             p.GameID,
		Level:              p.Level,
		XP:                 p.XP,
		PerformancePoints:  p.PerformancePoints,
		MatchesPlayed:      p.MatchesPlayed,
		MatchesWon:         p.MatchesWon,
		Wins:               p.Wins,
		Kills:              p.Kills,
		Deaths:             p.Deaths,
		MvpCount:           p.MvpCount,
		KDRatio:            m.KDRatio,
		WinRate:            m.WinRate,
		CurrentTower:       pc.towers[p.ID],
		CurrentTeam:        pc.teams[p.ID],
		TournamentsPlayed:  counts.Played,
		OngoingTournaments: counts.Ongoing,
		Badges:             badges,
	}
}

// loadPlayerTournaments lists the tournaments the player's teams were
// approved for, split into ongoing and completed.
func loadPlayerTournaments(db *gorm.DB, userID uint) (models.PlayerTournaments, error) {
	out := models.PlayerTournaments{
		Ongoing:   []models.TournamentSummary{},
		Completed: []models.TournamentSummary{},
	}

	var regs []models.TournamentRegistration
	err := db.
		Joins("JOIN team_members ON team_members.team_id = tournament_registrations.team_id").
		Where("team_members.user_id = ? AND tournament_registrations.status = ?", userID, models.RegistrationApproved).
		Preload("Tournament").
		Order("tournament_registrations.created_at DESC").
		Find(&regs).Error
	if err != nil {
		return out, err
	}

	seen := make(map[uint]bool)
	for _, r := range regs {
		if r.Tournament == nil || seen[r.TournamentID] {
			continue
		}
		seen[r.TournamentID] = true
		t := *r.Tournament
		switch t.Status {
		case models.TournamentCompleted:
			out.Completed = append(out.Completed, t.Summary())
			if t.WinnerTeamID != nil && *t.WinnerTeamID == r.TeamID {
				out.Wins++
			}
		case models.TournamentCancelled:
		default:
			out.Ongoing = append(out.Ongoing, t.Summary())
		}
	}
	out.Total = len(seen)
	return out, nil
}

// currentTower returns the tower the user leads or is an approved member of.
func currentTower(db *gorm.DB, userID uint) (*models.Tower, string, error) {
	var tower models.Tower
	err := db.Where("leader_id = ?", userID).First(&tower).Error
	if err == nil {
		return &tower, models.TowerRoleOwner, nil
	}
	if !isRecordNotFound(err) {
		return nil, "", err
	}

	var member models.TowerMember
	err = db.Where("user_id = ? AND approved = ?", userID, true).Preload("Tower").First(&member).Error
	if isRecordNotFound(err) || (err == nil && member.Tower == nil) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", err
	}
	return member.Tower, member.Role, nil
}

// absoluteRank counts players with strictly more points.
func absoluteRank(db *gorm.DB, points int64) (int64, error) {
	var greater int64
	err := db.Model(&models.Player{}).Where("performance_points > ?", points).Count(&greater).Error
	return ranking.AbsoluteRank(greater), err
}

package services

import (
	"fmt"
	"time"

	"towerhub-api/packages/core/models"
	"towerhub-api/packages/core/ranking"

	"gorm.io/gorm"
)

const (
	DefaultWinnersLimit  = 20
	winnersPerTournament = 3
	snapshotBatchSize    = 500
)

// PageQuery is a validated leaderboard request.
type PageQuery struct {
	Limit  int
	Offset int
	Period ranking.Period
}

// NewPageQuery applies the defaults and rejects bad values with
// ranking.ErrInvalidArgument.
func NewPageQuery(limit, offset int, period string) (PageQuery, error) {
	limit, offset, err := ranking.NormalizePage(limit, offset)
	if err != nil {
		return PageQuery{}, err
	}
	p, err := ranking.ParsePeriod(period)
	if err != nil {
		return PageQuery{}, err
	}
	return PageQuery{Limit: limit, Offset: offset, Period: p}, nil
}

// LeaderboardService reads the score source and ranks it. It never writes
// counters.
type LeaderboardService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewLeaderboardService(db *gorm.DB) *LeaderboardService {
	return &LeaderboardService{
		db:  db,
		now: time.Now,
	}
}

// windowed restricts a query to rows created inside the period.
func (s *LeaderboardService) windowed(q *gorm.DB, table string, p ranking.Period) *gorm.DB {
	if since, ok := p.Since(s.now()); ok {
		return q.Where(table+".created_at >= ?", since)
	}
	return q
}

func newPage[T any](entries []T, q PageQuery, total int64, now time.Time) *models.LeaderboardPage[T] {
	return &models.LeaderboardPage[T]{
		Leaderboard: entries,
		Period:      q.Period,
		UpdatedAt:   now.UTC().Format(time.RFC3339),
		Pagination:  ranking.NewPagination(total, q.Limit, q.Offset),
	}
}

func (s *LeaderboardService) Players(q PageQuery) (*models.LeaderboardPage[models.PlayerLeaderboardEntry], error) {
	query := func() *gorm.DB {
		return s.windowed(s.db.Model(&models.Player{}), "players", q.Period)
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, err
	}

	var players []models.Player
	if err := query().
		Order("performance_points DESC").Order("id ASC").
		Limit(q.Limit).Offset(q.Offset).
		Find(&players).Error; err != nil {
		return nil, err
	}

	records := make([]ranking.ScoreRecord, 0, len(players))
	ids := make([]uint, 0, len(players))
	for _, p := range players {
		records = append(records, p.ScoreRecord())
		ids = append(ids, p.ID)
	}

	pc, err := loadPlayerContext(s.db, ids)
	if err != nil {
		return nil, err
	}

	entries := make([]models.PlayerLeaderboardEntry, 0, len(players))
	for i, ranked := range ranking.RankPage(records, q.Offset) {
		entries = append(entries, pc.entry(ranked.Rank, players[i], ranked.Metrics))
	}

	return newPage(entries, q, total, s.now()), nil
}

func (s *LeaderboardService) Towers(q PageQuery) (*models.LeaderboardPage[models.TowerLeaderboardEntry], error) {
	query := func() *gorm.DB {
		return s.windowed(s.db.Model(&models.Tower{}), "towers", q.Period)
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, err
	}

	var towers []models.Tower
	if err := query().
		Preload("Leader").
		Order("total_points DESC").Order("id ASC").
		Limit(q.Limit).Offset(q.Offset).
		Find(&towers).Error; err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(towers))
	records := make([]ranking.ScoreRecord, 0, len(towers))
	for _, t := range towers {
		ids = append(ids, t.ID)
		records = append(records, ranking.ScoreRecord{ID: t.ID, PerformancePoints: t.TotalPoints})
	}

	memberCounts, err := countBy(s.db.Model(&models.TowerMember{}).Where("approved = ?", true), "tower_id", ids)
	if err != nil {
		return nil, err
	}
	teamCounts, err := countBy(s.db.Model(&models.Team{}), "tower_id", ids)
	if err != nil {
		return nil, err
	}

	entries := make([]models.TowerLeaderboardEntry, 0, len(towers))
	for i, ranked := range ranking.RankPage(records, q.Offset) {
		t := towers[i]
		entry := models.TowerLeaderboardEntry{
			Rank:                    ranked.Rank,
			ID:                      t.ID,
			Name:                    t.Name,
			Code:                    t.Code,
			LogoURL:                 t.LogoURL,
			BannerURL:               t.BannerURL,
			Level:                   t.Level,
			XP:                      t.XP,
			TotalPoints:             t.TotalPoints,
			TournamentsParticipated: t.TournamentsParticipated,
			TournamentsWon:          t.TournamentsWon,
			TotalMembers:            memberCounts[t.ID],
			TotalTeams:              teamCounts[t.ID],
		}
		if t.Leader != nil {
			leader := t.Leader.Summary()
			entry.Leader = &leader
		}
		entries = append(entries, entry)
	}

	return newPage(entries, q, total, s.now()), nil
}

// Teams ranks teams by the sum of their current members' points. The sum
// is computed in SQL so that ordering happens before pagination.
func (s *LeaderboardService) Teams(q PageQuery) (*models.LeaderboardPage[models.TeamLeaderboardEntry], error) {
	var total int64
	if err := s.windowed(s.db.Model(&models.Team{}), "teams", q.Period).Count(&total).Error; err != nil {
		return nil, err
	}

	var totals []struct {
		TeamID uint
		Total  int64
	}
	err := s.windowed(s.db.Table("teams"), "teams", q.Period).
		Select("teams.id AS team_id, COALESCE(SUM(players.performance_points), 0) AS total").
		Joins("LEFT JOIN team_members ON team_members.team_id = teams.id").
		Joins("LEFT JOIN players ON players.id = team_members.user_id AND players.deleted_at IS NULL").
		Where("teams.deleted_at IS NULL").
		Group("teams.id").
		Order("total DESC").Order("teams.id ASC").
		Limit(q.Limit).Offset(q.Offset).
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(totals))
	for _, t := range totals {
		ids = append(ids, t.TeamID)
	}

	teams, err := s.fetchTeams(ids)
	if err != nil {
		return nil, err
	}
	counts, err := s.teamTournamentCounts(ids)
	if err != nil {
		return nil, err
	}

	records := make([]ranking.ScoreRecord, 0, len(ids))
	aggregates := make([]ranking.TeamAggregate, 0, len(ids))
	for _, id := range ids {
		agg := ranking.AggregateTeam(teams[id].MemberRecords())
		aggregates = append(aggregates, agg)
		records = append(records, agg.Record(id))
	}

	entries := make([]models.TeamLeaderboardEntry, 0, len(ids))
	for i, ranked := range ranking.RankPage(records, q.Offset) {
		team := teams[ids[i]]
		entry := models.TeamLeaderboardEntry{
			Rank:               ranked.Rank,
			ID:                 team.ID,
			TeamAggregate:      aggregates[i],
			Name:               team.Name,
			LogoURL:            team.LogoURL,
			Members:            memberSummaries(team),
			TournamentsPlayed:  counts[team.ID].Played,
			OngoingTournaments: counts[team.ID].Ongoing,
		}
		if team.Tower != nil {
			entry.Tower = team.Tower.Ref()
		}
		if team.Captain != nil {
			captain := team.Captain.Summary()
			entry.Captain = &captain
		}
		entries = append(entries, entry)
	}

	return newPage(entries, q, total, s.now()), nil
}

// fetchTeams loads teams with their tower, captain and current members.
func (s *LeaderboardService) fetchTeams(ids []uint) (map[uint]models.Team, error) {
	out := make(map[uint]models.Team, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var teams []models.Team
	if err := s.db.Where("id IN ?", ids).
		Preload("Tower").
		Preload("Captain").
		Preload("Members", func(db *gorm.DB) *gorm.DB { return db.Order("team_members.id ASC") }).
		Preload("Members.Player").
		Find(&teams).Error; err != nil {
		return nil, err
	}
	for _, t := range teams {
		out[t.ID] = t
	}
	return out, nil
}

func (s *LeaderboardService) teamTournamentCounts(ids []uint) (map[uint]tournamentCounts, error) {
	out := make(map[uint]tournamentCounts, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []struct {
		TeamID  uint
		Played  int64
		Ongoing int64
	}
	err := s.db.Table("tournament_registrations").
		Select(fmt.Sprintf("tournament_registrations.team_id AS team_id, COUNT(*) AS played, "+
			"SUM(CASE WHEN tournaments.status IN (%s) THEN 1 ELSE 0 END) AS ongoing", ongoingStatusSQL())).
		Joins("JOIN tournaments ON tournaments.id = tournament_registrations.tournament_id AND tournaments.deleted_at IS NULL").
		Where("tournament_registrations.team_id IN ? AND tournament_registrations.status = ?", ids, models.RegistrationApproved).
		Group("tournament_registrations.team_id").
		Scan(&rows).Error
	for _, r := range rows {
		out[r.TeamID] = tournamentCounts{Played: r.Played, Ongoing: r.Ongoing}
	}
	return out, err
}

func memberSummaries(team models.Team) []models.PlayerSummary {
	out := make([]models.PlayerSummary, 0, len(team.Members))
	for _, m := range team.Members {
		if m.Player != nil {
			out = append(out, m.Player.Summary())
		}
	}
	return out
}

// TournamentWinners lists completed tournaments, newest first, with their
// top placements by registration wins. Earlier registrations win ties.
func (s *LeaderboardService) TournamentWinners(limit int) ([]models.TournamentWinners, error) {
	if limit <= 0 {
		limit = DefaultWinnersLimit
	}
	if limit > ranking.MaxLimit {
		limit = ranking.MaxLimit
	}

	var tournaments []models.Tournament
	if err := s.db.Where("status = ?", models.TournamentCompleted).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&tournaments).Error; err != nil {
		return nil, err
	}

	out := make([]models.TournamentWinners, 0, len(tournaments))
	for _, t := range tournaments {
		var regs []models.TournamentRegistration
		if err := s.db.Where("tournament_id = ? AND status = ?", t.ID, models.RegistrationApproved).
			Preload("Team").
			Preload("Team.Tower").
			Preload("Team.Captain").
			Preload("Team.Members.Player").
			Order("wins DESC").Order("created_at ASC").Order("id ASC").
			Limit(winnersPerTournament).
			Find(&regs).Error; err != nil {
			return nil, err
		}

		placements := make([]models.Placement, 0, len(regs))
		for i, r := range regs {
			if r.Team == nil {
				continue
			}
			p := models.Placement{
				Position: i + 1,
				Team:     *r.Team.Ref(),
				Members:  memberSummaries(*r.Team),
				Wins:     r.Wins,
				Losses:   r.Losses,
			}
			if r.Team.Tower != nil {
				p.Tower = r.Team.Tower.Ref()
			}
			if r.Team.Captain != nil {
				captain := r.Team.Captain.Summary()
				p.Captain = &captain
			}
			placements = append(placements, p)
		}
		out = append(out, models.TournamentWinners{Tournament: t.Summary(), Winners: placements})
	}
	return out, nil
}

// PlayerDetails returns a player with its absolute rank, independent of
// any page.
func (s *LeaderboardService) PlayerDetails(playerID uint) (*models.PlayerDetails, error) {
	var player models.Player
	if err := first(s.db, &player, "player", playerID); err != nil {
		return nil, err
	}

	rank, err := absoluteRank(s.db, player.PerformancePoints)
	if err != nil {
		return nil, err
	}
	metrics := ranking.Derive(player.ScoreRecord())

	details := &models.PlayerDetails{
		Player:       player,
		Rank:         rank,
		KDRatio:      metrics.KDRatio,
		WinRate:      metrics.WinRate,
		Teams:        []models.EntityRef{},
		Badges:       []models.BadgeSummary{},
		Achievements: []models.UserAchievement{},
	}

	tower, role, err := currentTower(s.db, playerID)
	if err != nil {
		return nil, err
	}
	if tower != nil {
		details.Tower = tower.Ref()
		details.TowerRole = role
	}

	teams, err := NewPlayerService(s.db).GetPlayerTeams(playerID)
	if err != nil {
		return nil, err
	}
	for _, t := range teams {
		details.Teams = append(details.Teams, *t.Ref())
	}

	if details.Tournaments, err = loadPlayerTournaments(s.db, playerID); err != nil {
		return nil, err
	}

	var userBadges []models.UserBadge
	if err := s.db.Where("user_id = ?", playerID).Preload("Badge").Order("earned_at DESC").Find(&userBadges).Error; err != nil {
		return nil, err
	}
	for _, ub := range userBadges {
		details.Badges = append(details.Badges, ub.Summary())
	}

	if err := s.db.Where("user_id = ?", playerID).Preload("Achievement").Order("id ASC").Find(&details.Achievements).Error; err != nil {
		return nil, err
	}

	return details, nil
}

// Compare puts 2 to 5 players side by side. Duplicate ids count once.
func (s *LeaderboardService) Compare(playerIDs []uint) (*models.PlayerComparison, error) {
	ids := dedupe(playerIDs)
	if err := ranking.ValidateContenderCount(len(ids)); err != nil {
		return nil, err
	}

	var players []models.Player
	if err := s.db.Where("id IN ?", ids).Find(&players).Error; err != nil {
		return nil, err
	}
	if len(players) != len(ids) {
		return nil, NotFound("one or more players not found")
	}
	byID := make(map[uint]models.Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}

	pc, err := loadPlayerContext(s.db, ids)
	if err != nil {
		return nil, err
	}

	contenders := make([]ranking.Contender, 0, len(ids))
	entries := make([]models.PlayerLeaderboardEntry, 0, len(ids))
	for _, id := range ids {
		p := byID[id]
		rank, err := absoluteRank(s.db, p.PerformancePoints)
		if err != nil {
			return nil, err
		}
		record := p.ScoreRecord()
		contenders = append(contenders, ranking.Contender{Record: record, Rank: rank})
		entries = append(entries, pc.entry(rank, p, ranking.Derive(record)))
	}

	cmp, err := ranking.Compare(contenders)
	if err != nil {
		return nil, err
	}
	return &models.PlayerComparison{Players: entries, Comparison: cmp}, nil
}

// RankHistory returns the stored snapshots inside the period followed by
// the live rank.
func (s *LeaderboardService) RankHistory(playerID uint, period ranking.Period) (*models.RankHistory, error) {
	var player models.Player
	if err := first(s.db, &player, "player", playerID); err != nil {
		return nil, err
	}
	rank, err := absoluteRank(s.db, player.PerformancePoints)
	if err != nil {
		return nil, err
	}

	query := s.db.Where("player_id = ?", playerID)
	if since, ok := period.Since(s.now()); ok {
		query = query.Where("taken_at >= ?", since)
	}
	var snapshots []models.RankSnapshot
	if err := query.Order("taken_at ASC").Find(&snapshots).Error; err != nil {
		return nil, err
	}

	history := make([]models.RankHistoryPoint, 0, len(snapshots)+1)
	for _, snap := range snapshots {
		history = append(history, models.RankHistoryPoint{Date: snap.TakenAt, Rank: snap.Rank, Points: snap.PerformancePoints})
	}
	history = append(history, models.RankHistoryPoint{Date: s.now(), Rank: rank, Points: player.PerformancePoints})

	return &models.RankHistory{
		UserID:            player.ID,
		Username:          player.Username,
		CurrentRank:       rank,
		PerformancePoints: player.PerformancePoints,
		Period:            period,
		History:           history,
	}, nil
}

// SnapshotRanks stores the absolute rank of every player. Run daily by
// the scheduler.
func (s *LeaderboardService) SnapshotRanks() (int, error) {
	var players []models.Player
	if err := s.db.Select("id", "performance_points").
		Order("performance_points DESC").Order("id ASC").
		Find(&players).Error; err != nil {
		return 0, err
	}
	if len(players) == 0 {
		return 0, nil
	}

	records := make([]ranking.ScoreRecord, 0, len(players))
	for _, p := range players {
		records = append(records, p.ScoreRecord())
	}
	ranks := ranking.AbsoluteRanks(records)

	takenAt := s.now()
	snapshots := make([]models.RankSnapshot, 0, len(players))
	for i, p := range players {
		snapshots = append(snapshots, models.RankSnapshot{
			PlayerID:          p.ID,
			Rank:              ranks[i],
			PerformancePoints: p.PerformancePoints,
			TakenAt:           takenAt,
		})
	}
	if err := s.db.CreateInBatches(&snapshots, snapshotBatchSize).Error; err != nil {
		return 0, err
	}
	return len(snapshots), nil
}

// countBy returns row counts grouped by column for the given ids.
func countBy(q *gorm.DB, column string, ids []uint) (map[uint]int64, error) {
	out := make(map[uint]int64, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []struct {
		GroupKey uint
		Total    int64
	}
	err := q.Select(column+" AS group_key, COUNT(*) AS total").
		Where(column+" IN ?", ids).
		Group(column).
		Scan(&rows).Error
	for _, r := range rows {
		out[r.GroupKey] = r.Total
	}
	return out, err
}

func dedupe(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

package services

import (
	"time"

	"towerhub-api/packages/core/models"

	"gorm.io/gorm"
)

type StatsService struct {
	db *gorm.DB
}

func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{
		db: db,
	}
}

func (s *StatsService) GetStats() (*models.PlatformStats, error) {
	var stats models.PlatformStats

	counts := []struct {
		model interface{}
		where string
		args  []interface{}
		dest  *int64
	}{
		{&models.Player{}, "", nil, &stats.TotalPlayers},
		{&models.Tower{}, "", nil, &stats.TotalTowers},
		{&models.Team{}, "", nil, &stats.TotalTeams},
		{&models.Tournament{}, "", nil, &stats.TotalTournaments},
		{&models.Tournament{}, "status = ?", []interface{}{models.TournamentLive}, &stats.LiveTournaments},
		{&models.Match{}, "", nil, &stats.TotalMatches},
	}
	for _, c := range counts {
		query := s.db.Model(c.model)
		if c.where != "" {
			query = query.Where(c.where, c.args...)
		}
		if err := query.Count(c.dest).Error; err != nil {
			return nil, err
		}
	}

	// Calculate date ranges
	now := time.Now()
	last7DaysStart := now.AddDate(0, 0, -7)
	previous7DaysStart := now.AddDate(0, 0, -14)

	// Count completed matches in the last 7 days
	if err := s.db.Model(&models.Match{}).
		Where("completed_at >= ?", last7DaysStart).
		Count(&stats.MatchesLast7Days).Error; err != nil {
		return nil, err
	}

	// Count completed matches in the previous 7 days (7-14 days ago)
	if err := s.db.Model(&models.Match{}).
		Where("completed_at >= ? AND completed_at < ?", previous7DaysStart, last7DaysStart).
		Count(&stats.MatchesPrevious7Days).Error; err != nil {
		return nil, err
	}

	return &stats, nil
}

package models

import "time"

// RankSnapshot stores a player's absolute rank at a point in time. Rows
// are written by the daily scheduler job.
type RankSnapshot struct {
	ID                uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	PlayerID          uint      `gorm:"not null;index:idx_rank_snapshots_player_taken" json:"playerId"`
	Rank              int64     `gorm:"not null" json:"rank"`
	PerformancePoints int64     `gorm:"not null" json:"performancePoints"`
	TakenAt           time.Time `gorm:"not null;index:idx_rank_snapshots_player_taken" json:"takenAt"`
}

func (RankSnapshot) TableName() string {
	return "rank_snapshots"
}

package models

import (
	"time"

	"towerhub-api/packages/core/ranking"

	"gorm.io/gorm"
)

// Player is the score source of a user. It shares its id with the auth
// user row and copies the few profile fields the leaderboards display.
type Player struct {
	ID                uint           `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Username          string         `gorm:"size:255;not null;uniqueIndex" json:"username"`
	Name              string         `gorm:"size:255" json:"name"`
	AvatarURL         string         `gorm:"size:512" json:"avatarUrl"`
	GameID            string         `gorm:"size:255" json:"gameId"`
	Level             int            `gorm:"not null;default:1" json:"level"`
	XP                int            `gorm:"not null;default:0" json:"xp"`
	PerformancePoints int64          `gorm:"not null;default:0;index" json:"performancePoints"`
	MatchesPlayed     int64          `gorm:"not null;default:0" json:"matchesPlayed"`
	MatchesWon        int64          `gorm:"not null;default:0" json:"matchesWon"`
	Wins              int64          `gorm:"not null;default:0" json:"wins"`
	Kills             int64          `gorm:"not null;default:0" json:"kills"`
	Deaths            int64          `gorm:"not null;default:0" json:"deaths"`
	MvpCount          int64          `gorm:"not null;default:0" json:"mvpCount"`
	CreatedAt         time.Time      `gorm:"index" json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Player) TableName() string {
	return "players"
}

func (p Player) ScoreRecord() ranking.ScoreRecord {
	return ranking.ScoreRecord{
		ID:                p.ID,
		PerformancePoints: p.PerformancePoints,
		Kills:             p.Kills,
		Deaths:            p.Deaths,
		MatchesPlayed:     p.MatchesPlayed,
		MatchesWon:        p.MatchesWon,
		MvpCount:          p.MvpCount,
	}
}

func (p Player) Summary() PlayerSummary {
	return PlayerSummary{
		ID:                p.ID,
		Username:          p.Username,
		Name:              p.Name,
		AvatarURL:         p.AvatarURL,
		PerformancePoints: p.PerformancePoints,
	}
}

type PlayerSummary struct {
	ID                uint   `json:"id"`
	Username          string `json:"username"`
	Name              string `json:"name"`
	AvatarURL         string `json:"avatarUrl"`
	PerformancePoints int64  `json:"performancePoints"`
}

package models

import "time"

const (
	BadgeTowerOwner       = "TOWER_OWNER"
	BadgeTeamCaptain      = "TEAM_CAPTAIN"
	BadgeTeamPlayer       = "TEAM_PLAYER"
	BadgeFirstTournament  = "FIRST_TOURNAMENT"
	BadgeTournamentWinner = "TOURNAMENT_WINNER"
	BadgeFirstWin         = "FIRST_WIN"
	BadgeVeteran          = "VETERAN"
	BadgeSharpshooter     = "SHARPSHOOTER"
	BadgeMVPMaster        = "MVP_MASTER"
	BadgeOrganizer        = "ORGANIZER"
)

const (
	AchievementTowerCreated            = "TOWER_CREATED"
	AchievementTeamCreated             = "TEAM_CREATED"
	AchievementTournamentParticipation = "TOURNAMENT_PARTICIPATION"
	AchievementTournamentWin           = "TOURNAMENT_WIN"
	AchievementMatchesPlayed           = "MATCHES_PLAYED"
	AchievementMVPEarned               = "MVP_EARNED"
)

type Badge struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Type        string `gorm:"size:50;not null;uniqueIndex" json:"type"`
	Name        string `gorm:"size:100;not null" json:"name"`
	Description string `gorm:"size:255" json:"description"`
	IconURL     string `gorm:"size:512" json:"iconUrl"`
}

func (Badge) TableName() string {
	return "badges"
}

type UserBadge struct {
	ID       uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID   uint      `gorm:"not null;uniqueIndex:idx_user_badges_user_badge" json:"userId"`
	BadgeID  uint      `gorm:"not null;uniqueIndex:idx_user_badges_user_badge" json:"badgeId"`
	EarnedAt time.Time `gorm:"autoCreateTime;index" json:"earnedAt"`

	Badge *Badge `gorm:"foreignKey:BadgeID;references:ID" json:"badge,omitempty"`
}

func (UserBadge) TableName() string {
	return "user_badges"
}

type Achievement struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Type        string `gorm:"size:50;not null;uniqueIndex" json:"type"`
	Name        string `gorm:"size:100;not null" json:"name"`
	Description string `gorm:"size:255" json:"description"`
	IconURL     string `gorm:"size:512" json:"iconUrl"`
	XPReward    int    `gorm:"not null;default:0" json:"xpReward"`
	Target      int    `gorm:"not null;default:1" json:"target"`
}

func (Achievement) TableName() string {
	return "achievements"
}

type UserAchievement struct {
	ID            uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        uint       `gorm:"not null;uniqueIndex:idx_user_achievements_user_achievement" json:"userId"`
	AchievementID uint       `gorm:"not null;uniqueIndex:idx_user_achievements_user_achievement" json:"achievementId"`
	Progress      int        `gorm:"not null;default:0" json:"progress"`
	Completed     bool       `gorm:"not null;default:false" json:"completed"`
	CompletedAt   *time.Time `json:"completedAt"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`

	Achievement *Achievement `gorm:"foreignKey:AchievementID;references:ID" json:"achievement,omitempty"`
}

func (UserAchievement) TableName() string {
	return "user_achievements"
}

type BadgeSummary struct {
	Type     string    `json:"type"`
	Name     string    `json:"name"`
	IconURL  string    `json:"iconUrl"`
	EarnedAt time.Time `json:"earnedAt"`
}

func (ub UserBadge) Summary() BadgeSummary {
	s := BadgeSummary{EarnedAt: ub.EarnedAt}
	if ub.Badge != nil {
		s.Type = ub.Badge.Type
		s.Name = ub.Badge.Name
		s.IconURL = ub.Badge.IconURL
	}
	return s
}

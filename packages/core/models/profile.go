package models

import (
	"time"

	authModels "towerhub-api/packages/auth/models"
)

type ProfileOverview struct {
	User                authModels.User `json:"user"`
	Player              Player          `json:"player"`
	Rank                int64           `json:"rank"`
	KDRatio             float64         `json:"kdRatio"`
	WinRate             float64         `json:"winRate"`
	XPForNextLevel      int             `json:"xpForNextLevel"`
	Tower               *EntityRef      `json:"tower"`
	TowerRole           string          `json:"towerRole,omitempty"`
	Teams               []EntityRef     `json:"teams"`
	Badges              []BadgeSummary  `json:"badges"`
	UnreadNotifications int64           `json:"unreadNotifications"`
}

type ProfileStats struct {
	Player                Player  `json:"player"`
	Rank                  int64   `json:"rank"`
	KDRatio               float64 `json:"kdRatio"`
	WinRate               float64 `json:"winRate"`
	XPForNextLevel        int     `json:"xpForNextLevel"`
	TournamentsPlayed     int     `json:"tournamentsPlayed"`
	TournamentsWon        int     `json:"tournamentsWon"`
	BadgesEarned          int64   `json:"badgesEarned"`
	AchievementsCompleted int64   `json:"achievementsCompleted"`
}

// AchievementProgress is one catalog achievement with the user's progress,
// zero when never started.
type AchievementProgress struct {
	Achievement Achievement `json:"achievement"`
	Progress    int         `json:"progress"`
	Completed   bool        `json:"completed"`
	CompletedAt *time.Time  `json:"completedAt"`
}

type ProfileAchievements struct {
	Badges       []UserBadge           `json:"badges"`
	Achievements []AchievementProgress `json:"achievements"`
}

type PublicProfile struct {
	Username      string        `json:"username"`
	Name          string        `json:"name"`
	Bio           string        `json:"bio"`
	AvatarURL     string        `json:"avatarUrl"`
	GameID        string        `json:"gameId"`
	InstagramURL  string        `json:"instagramUrl"`
	YoutubeURL    string        `json:"youtubeUrl"`
	DiscordURL    string        `json:"discordUrl"`
	CustomTagline string        `json:"customTagline"`
	MemberSince   time.Time     `json:"memberSince"`
	Stats         PlayerDetails `json:"stats"`
}

type UpdateProfileRequest struct {
	Name          *string `json:"name,omitempty" binding:"omitempty,max=255"`
	Bio           *string `json:"bio,omitempty" binding:"omitempty,max=2000"`
	AvatarURL     *string `json:"avatarUrl,omitempty" binding:"omitempty,url"`
	GameID        *string `json:"gameId,omitempty" binding:"omitempty,max=255"`
	InstagramURL  *string `json:"instagramUrl,omitempty" binding:"omitempty,url"`
	YoutubeURL    *string `json:"youtubeUrl,omitempty" binding:"omitempty,url"`
	DiscordURL    *string `json:"discordUrl,omitempty" binding:"omitempty,url"`
	CustomTagline *string `json:"customTagline,omitempty" binding:"omitempty,max=255"`
}

type UpdateNotificationPrefsRequest struct {
	NotifyTournaments *bool `json:"notifyTournaments,omitempty"`
	NotifyTeams       *bool `json:"notifyTeams,omitempty"`
	NotifyTowers      *bool `json:"notifyTowers,omitempty"`
}

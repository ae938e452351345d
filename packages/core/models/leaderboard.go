package models

import (
	"time"

	"towerhub-api/packages/core/ranking"
)

// LeaderboardPage is the envelope of every ranked listing.
type LeaderboardPage[T any] struct {
	Leaderboard []T                `json:"leaderboard"`
	Period      ranking.Period     `json:"period"`
	UpdatedAt   string             `json:"updatedAt"`
	Pagination  ranking.Pagination `json:"pagination"`
}

type PlayerLeaderboardEntry struct {
	Rank               int64          `json:"rank"`
	ID                 uint           `json:"id"`
	Username           string         `json:"username"`
	Name               string         `json:"name"`
	AvatarURL          string         `json:"avatarUrl"`
	GameID             string         `json:"gameId"`
	Level              int            `json:"level"`
	XP                 int            `json:"xp"`
	PerformancePoints  int64          `json:"performancePoints"`
	MatchesPlayed      int64          `json:"matchesPlayed"`
	MatchesWon         int64          `json:"matchesWon"`
	Wins               int64          `json:"wins"`
	Kills              int64          `json:"kills"`
	Deaths             int64          `json:"deaths"`
	MvpCount           int64          `json:"mvpCount"`
	KDRatio            float64        `json:"kdRatio"`
	WinRate            float64        `json:"winRate"`
	CurrentTower       *EntityRef     `json:"currentTower"`
	CurrentTeam        *EntityRef     `json:"currentTeam"`
	TournamentsPlayed  int64          `json:"tournamentsPlayed"`
	OngoingTournaments int64          `json:"ongoingTournaments"`
	Badges             []BadgeSummary `json:"badges"`
}

type TowerLeaderboardEntry struct {
	Rank                    int64          `json:"rank"`
	ID                      uint           `json:"id"`
	Name                    string         `json:"name"`
	Code                    string         `json:"code"`
	LogoURL                 string         `json:"logoUrl"`
	BannerURL               string         `json:"bannerUrl"`
	Level                   int            `json:"level"`
	XP                      int            `json:"xp"`
	TotalPoints             int64          `json:"totalPoints"`
	TournamentsParticipated int            `json:"tournamentsParticipated"`
	TournamentsWon          int            `json:"tournamentsWon"`
	TotalMembers            int64          `json:"totalMembers"`
	TotalTeams              int64          `json:"totalTeams"`
	Leader                  *PlayerSummary `json:"leader"`
}

type TeamLeaderboardEntry struct {
	Rank int64 `json:"rank"`
	ID   uint  `json:"id"`
	ranking.TeamAggregate
	Name               string          `json:"name"`
	LogoURL            string          `json:"logoUrl"`
	Tower              *EntityRef      `json:"tower"`
	Captain            *PlayerSummary  `json:"captain"`
	Members            []PlayerSummary `json:"members"`
	TournamentsPlayed  int64           `json:"tournamentsPlayed"`
	OngoingTournaments int64           `json:"ongoingTournaments"`
}

type TournamentSummary struct {
	ID            uint       `json:"id"`
	Title         string     `json:"title"`
	Game          string     `json:"game"`
	LogoURL       string     `json:"logoUrl"`
	Status        string     `json:"status"`
	EntryFee      int64      `json:"entryFee"`
	MatchDateTime time.Time  `json:"matchDateTime"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
}

func (t Tournament) Summary() TournamentSummary {
	return TournamentSummary{
		ID:            t.ID,
		Title:         t.Title,
		Game:          t.Game,
		LogoURL:       t.LogoURL,
		Status:        t.Status,
		EntryFee:      t.EntryFee,
		MatchDateTime: t.MatchDateTime,
		CompletedAt:   t.CompletedAt,
	}
}

type Placement struct {
	Position int             `json:"position"`
	Team     EntityRef       `json:"team"`
	Tower    *EntityRef      `json:"tower"`
	Captain  *PlayerSummary  `json:"captain"`
	Members  []PlayerSummary `json:"members"`
	Wins     int             `json:"wins"`
	Losses   int             `json:"losses"`
}

type TournamentWinners struct {
	Tournament TournamentSummary `json:"tournament"`
	Winners    []Placement       `json:"winners"`
}

type PlayerTournaments struct {
	Total     int                 `json:"total"`
	Wins      int                 `json:"wins"`
	Ongoing   []TournamentSummary `json:"ongoing"`
	Completed []TournamentSummary `json:"completed"`
}

type PlayerDetails struct {
	Player       Player            `json:"player"`
	Rank         int64             `json:"rank"`
	KDRatio      float64           `json:"kdRatio"`
	WinRate      float64           `json:"winRate"`
	Tower        *EntityRef        `json:"tower"`
	TowerRole    string            `json:"towerRole,omitempty"`
	Teams        []EntityRef       `json:"teams"`
	Tournaments  PlayerTournaments `json:"tournaments"`
	Badges       []BadgeSummary    `json:"badges"`
	Achievements []UserAchievement `json:"achievements"`
}

type PlayerComparison struct {
	Players    []PlayerLeaderboardEntry `json:"players"`
	Comparison ranking.Comparison       `json:"comparison"`
}

type RankHistoryPoint struct {
	Date   time.Time `json:"date"`
	Rank   int64     `json:"rank"`
	Points int64     `json:"points"`
}

type RankHistory struct {
	UserID            uint               `json:"userId"`
	Username          string             `json:"username"`
	CurrentRank       int64              `json:"currentRank"`
	PerformancePoints int64              `json:"performancePoints"`
	Period            ranking.Period     `json:"period"`
	History           []RankHistoryPoint `json:"history"`
}

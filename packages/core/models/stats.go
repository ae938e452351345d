package models

// PlatformStats feeds the public landing page.
type PlatformStats struct {
	TotalPlayers         int64 `json:"totalPlayers"`
	TotalTowers          int64 `json:"totalTowers"`
	TotalTeams           int64 `json:"totalTeams"`
	TotalTournaments     int64 `json:"totalTournaments"`
	LiveTournaments      int64 `json:"liveTournaments"`
	TotalMatches         int64 `json:"totalMatches"`
	MatchesLast7Days     int64 `json:"matchesLast7Days"`
	MatchesPrevious7Days int64 `json:"matchesPrevious7Days"`
}

// Package ranking holds the pure leaderboard math: derived metrics, team
// rollups, page and absolute ranks, comparisons and period windows.
// Nothing in here touches the database.
package ranking

import "math"

const (
	kdPrecision      = 2
	winRatePrecision = 1
)

// ScoreRecord is the raw counter set owned by a player, team or tower.
type ScoreRecord struct {
	ID                uint  `json:"id"`
	PerformancePoints int64 `json:"performancePoints"`
	Kills             int64 `json:"kills"`
	Deaths            int64 `json:"deaths"`
	MatchesPlayed     int64 `json:"matchesPlayed"`
	MatchesWon        int64 `json:"matchesWon"`
	MvpCount          int64 `json:"mvpCount"`
}

type DerivedMetrics struct {
	KDRatio float64 `json:"kdRatio"`
	WinRate float64 `json:"winRate"`
}

type TeamAggregate struct {
	MemberCount int     `json:"memberCount"`
	TotalPoints int64   `json:"totalPoints"`
	TotalKills  int64   `json:"totalKills"`
	TotalDeaths int64   `json:"totalDeaths"`
	TotalMVPs   int64   `json:"totalMVPs"`
	TeamKD      float64 `json:"teamKD"`
}

// Derive computes the metrics shown next to every leaderboard row.
func Derive(r ScoreRecord) DerivedMetrics {
	return DerivedMetrics{
		KDRatio: KDRatio(r.Kills, r.Deaths),
		WinRate: WinRate(r.MatchesWon, r.MatchesPlayed),
	}
}

// KDRatio falls back to the raw kill count when there are no deaths.
func KDRatio(kills, deaths int64) float64 {
	if deaths <= 0 {
		return float64(kills)
	}
	return round(float64(kills)/float64(deaths), kdPrecision)
}

// WinRate is a percentage in [0, 100].
func WinRate(won, played int64) float64 {
	if played <= 0 {
		return 0
	}
	rate := float64(won) / float64(played) * 100
	if rate < 0 {
		rate = 0
	}
	if rate > 100 {
		rate = 100
	}
	return round(rate, winRatePrecision)
}

// AggregateTeam sums the member records it is given. Callers load the
// current member set for every read.
func AggregateTeam(members []ScoreRecord) TeamAggregate {
	agg := TeamAggregate{MemberCount: len(members)}
	for _, m := range members {
		agg.TotalPoints += m.PerformancePoints
		agg.TotalKills += m.Kills
		agg.TotalDeaths += m.Deaths
		agg.TotalMVPs += m.MvpCount
	}
	agg.TeamKD = KDRatio(agg.TotalKills, agg.TotalDeaths)
	return agg
}

// Record turns the aggregate back into a score record so teams can go
// through the same ranker as players.
func (a TeamAggregate) Record(id uint) ScoreRecord {
	return ScoreRecord{
		ID:                id,
		PerformancePoints: a.TotalPoints,
		Kills:             a.TotalKills,
		Deaths:            a.TotalDeaths,
		MvpCount:          a.TotalMVPs,
	}
}

func round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}

package ranking

import (
	"testing"

	"github.com/bmizerany/assert"
)

func TestDerive(t *testing.T) {
	cases := []struct {
		name   string
		record ScoreRecord
		want   DerivedMetrics
	}{
		{"plain", ScoreRecord{Kills: 9, Deaths: 3, MatchesPlayed: 20, MatchesWon: 15}, DerivedMetrics{KDRatio: 3, WinRate: 75}},
		{"no deaths", ScoreRecord{Kills: 12, MatchesPlayed: 4, MatchesWon: 1}, DerivedMetrics{KDRatio: 12, WinRate: 25}},
		{"no matches", ScoreRecord{Kills: 0, Deaths: 0}, DerivedMetrics{KDRatio: 0, WinRate: 0}},
		{"rounding", ScoreRecord{Kills: 10, Deaths: 3, MatchesPlayed: 3, MatchesWon: 2}, DerivedMetrics{KDRatio: 3.33, WinRate: 66.7}},
		{"all won", ScoreRecord{Kills: 1, Deaths: 2, MatchesPlayed: 7, MatchesWon: 7}, DerivedMetrics{KDRatio: 0.5, WinRate: 100}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Derive(tc.record))
		})
	}
}

func TestDeriveIsIdempotent(t *testing.T) {
	r := ScoreRecord{ID: 4, Kills: 17, Deaths: 6, MatchesPlayed: 9, MatchesWon: 4}
	assert.Equal(t, Derive(r), Derive(r))
}

func TestWinRateIsClamped(t *testing.T) {
	assert.Equal(t, float64(100), WinRate(12, 10))
	assert.Equal(t, float64(0), WinRate(-3, 10))
}

func TestAggregateTeam(t *testing.T) {
	members := []ScoreRecord{
		{ID: 1, PerformancePoints: 100, Kills: 10, Deaths: 5, MvpCount: 1},
		{ID: 2, PerformancePoints: 50, Kills: 5, Deaths: 5, MvpCount: 0},
	}
	agg := AggregateTeam(members)
	assert.Equal(t, TeamAggregate{
		MemberCount: 2,
		TotalPoints: 150,
		TotalKills:  15,
		TotalDeaths: 10,
		TotalMVPs:   1,
		TeamKD:      1.5,
	}, agg)

	assert.Equal(t, ScoreRecord{ID: 7, PerformancePoints: 150, Kills: 15, Deaths: 10, MvpCount: 1}, agg.Record(7))
}

func TestAggregateTeamEmpty(t *testing.T) {
	assert.Equal(t, TeamAggregate{}, AggregateTeam(nil))
}

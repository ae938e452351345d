package ranking

import (
	"errors"
	"testing"

	"github.com/bmizerany/assert"
)

func TestCompare(t *testing.T) {
	contenders := []Contender{
		{Record: ScoreRecord{ID: 1, PerformancePoints: 300, Kills: 40, Deaths: 20, MatchesPlayed: 10, MatchesWon: 4, MvpCount: 2}, Rank: 3},
		{Record: ScoreRecord{ID: 2, PerformancePoints: 500, Kills: 30, Deaths: 10, MatchesPlayed: 10, MatchesWon: 8, MvpCount: 1}, Rank: 1},
		{Record: ScoreRecord{ID: 3, PerformancePoints: 120, Kills: 55, Deaths: 50, MatchesPlayed: 4, MatchesWon: 1, MvpCount: 5}, Rank: 9},
	}
	cmp, err := Compare(contenders)
	assert.Equal(t, nil, err)
	assert.Equal(t, Highest{
		PerformancePoints: 500,
		KDRatio:           3,
		WinRate:           80,
		MvpCount:          5,
		Kills:             55,
	}, cmp.Highest)
	assert.Equal(t, int64(9), cmp.Lowest.Rank)
}

func TestCompareBounds(t *testing.T) {
	one := []Contender{{Record: ScoreRecord{ID: 1}, Rank: 1}}
	_, err := Compare(one)
	assert.T(t, errors.Is(err, ErrInvalidArgument))

	six := make([]Contender, 6)
	_, err = Compare(six)
	assert.T(t, errors.Is(err, ErrInvalidArgument))

	five := make([]Contender, 5)
	_, err = Compare(five)
	assert.Equal(t, nil, err)
}

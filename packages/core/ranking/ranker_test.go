package ranking

import (
	"errors"
	"testing"

	"github.com/bmizerany/assert"
)

func TestRankPageUsesOffset(t *testing.T) {
	records := []ScoreRecord{
		{ID: 3, PerformancePoints: 30},
		{ID: 4, PerformancePoints: 20},
		{ID: 5, PerformancePoints: 20},
	}
	entries := RankPage(records, 2)
	assert.Equal(t, 3, len(entries))
	for i, e := range entries {
		assert.Equal(t, int64(3+i), e.Rank)
		assert.Equal(t, records[i], e.Record)
	}
}

func TestRankPageEmpty(t *testing.T) {
	entries := RankPage(nil, 40)
	assert.NotEqual(t, nil, entries)
	assert.Equal(t, 0, len(entries))
}

func TestAbsoluteRankTies(t *testing.T) {
	// points 100, 80, 80, 50
	assert.Equal(t, int64(1), AbsoluteRank(0))
	assert.Equal(t, int64(2), AbsoluteRank(1))
	assert.Equal(t, int64(4), AbsoluteRank(3))

	sorted := []ScoreRecord{
		{ID: 1, PerformancePoints: 100},
		{ID: 2, PerformancePoints: 80},
		{ID: 3, PerformancePoints: 80},
		{ID: 4, PerformancePoints: 50},
	}
	assert.Equal(t, []int64{1, 2, 2, 4}, AbsoluteRanks(sorted))
}

func TestAbsoluteRankDiffersFromPageRank(t *testing.T) {
	sorted := []ScoreRecord{
		{ID: 1, PerformancePoints: 100},
		{ID: 2, PerformancePoints: 80},
		{ID: 3, PerformancePoints: 80},
		{ID: 4, PerformancePoints: 50},
	}
	page := RankPage(sorted[2:], 2)
	abs := AbsoluteRanks(sorted)
	assert.Equal(t, int64(3), page[0].Rank)
	assert.Equal(t, int64(2), abs[2])
}

func TestSortByPoints(t *testing.T) {
	records := []ScoreRecord{
		{ID: 9, PerformancePoints: 10},
		{ID: 2, PerformancePoints: 40},
		{ID: 5, PerformancePoints: 10},
		{ID: 1, PerformancePoints: 40},
	}
	SortByPoints(records)
	ids := make([]uint, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []uint{1, 2, 5, 9}, ids)
}

func TestNewPagination(t *testing.T) {
	assert.Equal(t, Pagination{Total: 120, Limit: 50, Offset: 50, HasMore: true}, NewPagination(120, 50, 50))
	assert.Equal(t, Pagination{Total: 100, Limit: 50, Offset: 50, HasMore: false}, NewPagination(100, 50, 50))
	assert.Equal(t, false, NewPagination(0, 50, 0).HasMore)
}

func TestNormalizePage(t *testing.T) {
	limit, offset, err := NormalizePage(0, 0)
	assert.Equal(t, nil, err)
	assert.Equal(t, DefaultLimit, limit)
	assert.Equal(t, 0, offset)

	limit, _, err = NormalizePage(500, 10)
	assert.Equal(t, nil, err)
	assert.Equal(t, MaxLimit, limit)

	_, _, err = NormalizePage(-1, 0)
	assert.T(t, errors.Is(err, ErrInvalidArgument))

	_, _, err = NormalizePage(10, -5)
	assert.T(t, errors.Is(err, ErrInvalidArgument))
}

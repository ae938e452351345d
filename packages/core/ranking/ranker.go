package ranking

import (
	"fmt"
	"sort"
)

const (
	DefaultLimit = 50
	MaxLimit     = 100
)

type RankedEntry struct {
	Rank    int64          `json:"rank"`
	Record  ScoreRecord    `json:"record"`
	Metrics DerivedMetrics `json:"metrics"`
}

type Pagination struct {
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	HasMore bool  `json:"hasMore"`
}

// RankPage assigns page ranks to records the store already ordered.
// Ranks start at offset+1 and increase by one per row, ties included.
func RankPage(records []ScoreRecord, offset int) []RankedEntry {
	entries := make([]RankedEntry, 0, len(records))
	for i, r := range records {
		entries = append(entries, RankedEntry{
			Rank:    int64(offset + i + 1),
			Record:  r,
			Metrics: Derive(r),
		})
	}
	return entries
}

// AbsoluteRank is one plus the number of entities with strictly more
// points, so tied entities share a rank.
func AbsoluteRank(strictlyGreater int64) int64 {
	if strictlyGreater < 0 {
		strictlyGreater = 0
	}
	return strictlyGreater + 1
}

// AbsoluteRanks returns the absolute rank of every position of a slice
// sorted by points descending.
func AbsoluteRanks(sorted []ScoreRecord) []int64 {
	ranks := make([]int64, len(sorted))
	for i := range sorted {
		if i > 0 && sorted[i].PerformancePoints == sorted[i-1].PerformancePoints {
			ranks[i] = ranks[i-1]
			continue
		}
		ranks[i] = AbsoluteRank(int64(i))
	}
	return ranks
}

// SortByPoints orders by points descending, then id ascending.
func SortByPoints(records []ScoreRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].PerformancePoints != records[j].PerformancePoints {
			return records[i].PerformancePoints > records[j].PerformancePoints
		}
		return records[i].ID < records[j].ID
	})
}

func NewPagination(total int64, limit, offset int) Pagination {
	return Pagination{
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: int64(offset+limit) < total,
	}
}

// NormalizePage applies the defaults and the cap. A zero limit means
// "not provided".
func NormalizePage(limit, offset int) (int, int, error) {
	if limit < 0 {
		return 0, 0, fmt.Errorf("%w: limit must be positive", ErrInvalidArgument)
	}
	if offset < 0 {
		return 0, 0, fmt.Errorf("%w: offset must not be negative", ErrInvalidArgument)
	}
	if limit == 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return limit, offset, nil
}

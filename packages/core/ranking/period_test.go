package ranking

import (
	"errors"
	"testing"
	"time"

	"github.com/bmizerany/assert"
)

func TestParsePeriod(t *testing.T) {
	for in, want := range map[string]Period{
		"":        PeriodAllTime,
		"allTime": PeriodAllTime,
		"week":    PeriodWeek,
		"month":   PeriodMonth,
		"year":    PeriodYear,
	} {
		got, err := ParsePeriod(in)
		assert.Equal(t, nil, err)
		assert.Equal(t, want, got)
	}

	_, err := ParsePeriod("fortnight")
	assert.T(t, errors.Is(err, ErrInvalidArgument))
}

func TestPeriodSince(t *testing.T) {
	now := time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC)

	since, ok := PeriodWeek.Since(now)
	assert.T(t, ok)
	assert.Equal(t, time.Date(2024, 3, 24, 12, 0, 0, 0, time.UTC), since)

	since, ok = PeriodMonth.Since(now)
	assert.T(t, ok)
	assert.Equal(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), since)

	since, ok = PeriodYear.Since(now)
	assert.T(t, ok)
	assert.Equal(t, now.AddDate(0, 0, -365), since)

	_, ok = PeriodAllTime.Since(now)
	assert.Equal(t, false, ok)
}

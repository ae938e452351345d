package ranking

import (
	"fmt"
	"time"
)

type Period string

const (
	PeriodWeek    Period = "week"
	PeriodMonth   Period = "month"
	PeriodYear    Period = "year"
	PeriodAllTime Period = "allTime"
)

var windows = map[Period]time.Duration{
	PeriodWeek:  7 * 24 * time.Hour,
	PeriodMonth: 30 * 24 * time.Hour,
	PeriodYear:  365 * 24 * time.Hour,
}

// ParsePeriod maps the query value to a Period. Empty means all time.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case "":
		return PeriodAllTime, nil
	case PeriodWeek, PeriodMonth, PeriodYear, PeriodAllTime:
		return p, nil
	default:
		return "", fmt.Errorf("%w: unknown period %q", ErrInvalidArgument, s)
	}
}

// Since returns the lower bound of the window ending at now. The boolean
// is false for all time, when no bound applies.
func (p Period) Since(now time.Time) (time.Time, bool) {
	w, ok := windows[p]
	if !ok {
		return time.Time{}, false
	}
	return now.Add(-w), true
}

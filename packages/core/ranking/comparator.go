package ranking

import "fmt"

const (
	MinContenders = 2
	MaxContenders = 5
)

// Contender is a record together with its absolute rank.
type Contender struct {
	Record ScoreRecord
	Rank   int64
}

type Highest struct {
	PerformancePoints int64   `json:"performancePoints"`
	KDRatio           float64 `json:"kdRatio"`
	WinRate           float64 `json:"winRate"`
	MvpCount          int64   `json:"mvpCount"`
	Kills             int64   `json:"kills"`
}

// Lowest holds the worst rank, which is the numerically largest one.
type Lowest struct {
	Rank int64 `json:"rank"`
}

type Comparison struct {
	Highest Highest `json:"highest"`
	Lowest  Lowest  `json:"lowest"`
}

func ValidateContenderCount(n int) error {
	if n < MinContenders || n > MaxContenders {
		return fmt.Errorf("%w: compare needs between %d and %d players, got %d",
			ErrInvalidArgument, MinContenders, MaxContenders, n)
	}
	return nil
}

func Compare(contenders []Contender) (Comparison, error) {
	if err := ValidateContenderCount(len(contenders)); err != nil {
		return Comparison{}, err
	}

	first := contenders[0]
	m := Derive(first.Record)
	cmp := Comparison{
		Highest: Highest{
			PerformancePoints: first.Record.PerformancePoints,
			KDRatio:           m.KDRatio,
			WinRate:           m.WinRate,
			MvpCount:          first.Record.MvpCount,
			Kills:             first.Record.Kills,
		},
		Lowest: Lowest{Rank: first.Rank},
	}

	for _, c := range contenders[1:] {
		m := Derive(c.Record)
		cmp.Highest.PerformancePoints = max(cmp.Highest.PerformancePoints, c.Record.PerformancePoints)
		cmp.Highest.KDRatio = max(cmp.Highest.KDRatio, m.KDRatio)
		cmp.Highest.WinRate = max(cmp.Highest.WinRate, m.WinRate)
		cmp.Highest.MvpCount = max(cmp.Highest.MvpCount, c.Record.MvpCount)
		cmp.Highest.Kills = max(cmp.Highest.Kills, c.Record.Kills)
		cmp.Lowest.Rank = max(cmp.Lowest.Rank, c.Rank)
	}
	return cmp, nil
}

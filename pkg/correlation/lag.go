package correlation

import (
	"math"

	"github.com/viable-systems/vsm-pattern-engine/pkg/domain"
	"github.com/viable-systems/vsm-pattern-engine/pkg/stats"
)

// shift returns a and b with lag applied: positive lag shifts b forward
// relative to a (i.e. compares a[t] to b[t+lag]).
func shift(a, b []float64, lag int) ([]float64, []float64) {
	if lag == 0 {
		return a, b
	}
	if lag > 0 {
		if lag >= len(b) {
			return nil, nil
		}
		return a[:len(a)-min(lag, len(a))], b[lag:]
	}
	neg := -lag
	if neg >= len(a) {
		return nil, nil
	}
	return a[neg:], b[:len(b)-min(neg, len(b))]
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// FindOptimalLag scans lag in [-maxLag, +maxLag] (maxLag =
// floor(min(|a|,|b|)/4)) and returns the lag profile plus the lag
// maximizing |r|.
func FindOptimalLag(a, b []float64) domain.LagProfile {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	maxLag := n / 4
	if maxLag < 1 {
		return domain.LagProfile{}
	}

	var points []domain.LagPoint
	bestLag := 0
	bestR := 0.0
	bestAbs := -1.0
	for lag := -maxLag; lag <= maxLag; lag++ {
		sa, sb := shift(a, b, lag)
		r := stats.Pearson(sa, sb)
		points = append(points, domain.LagPoint{Lag: lag, Correlation: r})
		if abs := math.Abs(r); abs > bestAbs {
			bestAbs = abs
			bestLag = lag
			bestR = r
		}
	}

	return domain.LagProfile{
		Points:     points,
		OptimalLag: bestLag,
		OptimalR:   bestR,
	}
}

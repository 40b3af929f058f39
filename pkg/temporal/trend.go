package temporal

import (
	"math"

	"github.com/viable-systems/vsm-pattern-engine/pkg/domain"
	"github.com/viable-systems/vsm-pattern-engine/pkg/stats"
)

// detectTrend fits an OLS line over the window and emits a TrendPattern
// iff r-squared exceeds 0.8.
func detectTrend(window []float64) *domain.PatternRecord {
	if len(window) < 2 {
		return nil
	}
	slope, _, r2 := stats.LinearRegression(window)
	if r2 <= 0.8 {
		return nil
	}

	subtype := domain.TrendFlat
	switch {
	case slope > 0.01:
		subtype = domain.TrendIncreasing
	case slope < -0.01:
		subtype = domain.TrendDecreasing
	}

	return &domain.PatternRecord{
		Type:     domain.PatternTypeTrend,
		Strength: clamp01(r2),
		Trend: &domain.TrendPattern{
			Subtype: subtype,
			Slope:   slope,
			RSquare: r2,
			Rate:    math.Abs(slope),
		},
	}
}

package temporal

import (
	"math"

	"github.com/viable-systems/vsm-pattern-engine/pkg/domain"
	"github.com/viable-systems/vsm-pattern-engine/pkg/stats"
)

// detectPeriodicity looks for the first local maximum of the
// autocorrelation function at lag >= 1 with correlation > 0.5, and emits
// a PeriodicPattern iff its strength exceeds 0.7.
func detectPeriodicity(window []float64) *domain.PatternRecord {
	if len(window) < 4 {
		return nil
	}
	ac := stats.Autocorrelation(window)
	if len(ac) < 3 {
		return nil
	}

	bestLag := -1
	for lag := 1; lag < len(ac)-1; lag++ {
		if ac[lag] <= 0.5 {
			continue
		}
		if ac[lag] > ac[lag-1] && ac[lag] > ac[lag+1] {
			bestLag = lag
			break
		}
	}
	if bestLag < 1 {
		return nil
	}

	strength := ac[bestLag]
	if strength <= 0.7 {
		return nil
	}

	period := float64(bestLag)
	phaseLag := bestPhaseLag(window, period)
	phase := 2 * math.Pi * float64(phaseLag) / period

	return &domain.PatternRecord{
		Type:     domain.PatternTypePeriodic,
		Strength: clamp01(strength),
		Periodic: &domain.PeriodicPattern{
			Period:    period,
			Frequency: 1.0 / period,
			Phase:     phase,
		},
	}
}

// bestPhaseLag finds the lag in [-period/4, +period/4] maximizing the
// Pearson correlation between the window and a reference sine of the
// given period shifted by that lag.
func bestPhaseLag(window []float64, period float64) int {
	quarter := int(period / 4)
	if quarter < 1 {
		quarter = 1
	}
	n := len(window)
	reference := make([]float64, n)

	bestLag := 0
	bestR := math.Inf(-1)
	for lag := -quarter; lag <= quarter; lag++ {
		for i := 0; i < n; i++ {
			reference[i] = math.Sin(2*math.Pi*(float64(i)-float64(lag))/period)
		}
		r := stats.Pearson(window, reference)
		if r > bestR {
			bestR = r
			bestLag = lag
		}
	}
	return bestLag
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

package temporal

import (
	"math"

	"github.com/viable-systems/vsm-pattern-engine/pkg/domain"
	"github.com/viable-systems/vsm-pattern-engine/pkg/stats"
)

// detectDecay fits a log-linear OLS regression (ln(y) vs index) and
// emits a DecayPattern iff slope < -0.01 and r-squared > 0.85.
//
// Non-positive values substitute ln(y)=0 rather than being excluded from
// the window: this biases the fit toward the decay hypothesis on windows
// that dip to zero or negative, a known and deliberately retained bias
// rather than a silently "fixed" one.
func detectDecay(window []float64) *domain.PatternRecord {
	if len(window) < 2 {
		return nil
	}
	logY := make([]float64, len(window))
	for i, v := range window {
		if v > 0 {
			logY[i] = math.Log(v)
		} else {
			logY[i] = 0
		}
	}

	slope, _, r2 := stats.LinearRegression(logY)
	if !(slope < -0.01 && r2 > 0.85) {
		return nil
	}

	decayRate := -slope
	halfLife := math.Ln2 / decayRate
	timeToOnePercent := math.Log(100) / decayRate

	return &domain.PatternRecord{
		Type:     domain.PatternTypeDecay,
		Strength: clamp01(r2),
		Decay: &domain.DecayPattern{
			DecayRate:        decayRate,
			HalfLife:         halfLife,
			RSquare:          r2,
			TimeToOnePercent: timeToOnePercent,
		},
	}
}

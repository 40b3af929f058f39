package temporal

import (
	"github.com/viable-systems/vsm-pattern-engine/pkg/domain"
	"github.com/viable-systems/vsm-pattern-engine/pkg/stats"
)

// detectCyclic finds zero-crossings of the mean-centered window and
// treats each inter-crossing interval as one cycle. Emits iff at least 2
// cycles are found. Regularity = 1/(1+cv) where cv is the coefficient of
// variation of cycle durations.
func detectCyclic(window []float64) *domain.PatternRecord {
	if len(window) < 3 {
		return nil
	}
	mean := stats.Mean(window)
	centered := make([]float64, len(window))
	for i, v := range window {
		centered[i] = v - mean
	}

	var crossings []int
	for i := 1; i < len(centered); i++ {
		if (centered[i-1] < 0 && centered[i] >= 0) || (centered[i-1] > 0 && centered[i] <= 0) {
			crossings = append(crossings, i)
		}
	}
	if len(crossings) < 3 {
		// fewer than 3 crossings cannot yield 2 full cycles.
		return nil
	}

	var cycles []domain.CycleInstance
	durations := make([]float64, 0, len(crossings)-1)
	for i := 1; i < len(crossings); i++ {
		start, end := crossings[i-1], crossings[i]
		cycles = append(cycles, domain.CycleInstance{
			StartIndex: start,
			EndIndex:   end,
			Duration:   end - start,
		})
		durations = append(durations, float64(end-start))
	}

	meanDur := stats.Mean(durations)
	var variability float64
	if meanDur > 0 {
		variability = stats.StdDev(durations) / meanDur
	}
	regularity := 1.0 / (1.0 + variability)

	return &domain.PatternRecord{
		Type:     domain.PatternTypeCyclic,
		Strength: clamp01(regularity),
		Cyclic: &domain.CyclicPattern{
			Cycles:      cycles,
			Regularity:  regularity,
			Variability: variability,
		},
	}
}

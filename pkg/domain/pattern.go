package domain

import "time"

// PatternType discriminates the tagged PatternRecord variants.
type PatternType string

const (
	PatternTypePeriodic PatternType = "periodic"
	PatternTypeTrend    PatternType = "trend"
	PatternTypeBurst    PatternType = "burst"
	PatternTypeDecay    PatternType = "decay"
	PatternTypeCyclic   PatternType = "cyclic"
)

// TrendSubtype classifies a TrendPattern's shape.
type TrendSubtype string

const (
	TrendFlat        TrendSubtype = "flat"
	TrendIncreasing  TrendSubtype = "increasing"
	TrendDecreasing  TrendSubtype = "decreasing"
)

// PeriodicPattern describes a detected periodicity within one window.
type PeriodicPattern struct {
	Period    float64 `json:"period"`
	Frequency float64 `json:"frequency"`
	Phase     float64 `json:"phase"`
}

// TrendPattern describes an OLS-fit linear trend within one window.
type TrendPattern struct {
	Subtype TrendSubtype `json:"subtype"`
	Slope   float64      `json:"slope"`
	RSquare float64      `json:"r_squared"`
	Rate    float64      `json:"rate"` // abs(slope)
}

// BurstInstance is a single index where the value crossed the burst
// threshold.
type BurstInstance struct {
	Index     int     `json:"index"`
	Magnitude float64 `json:"magnitude"`
}

// BurstPattern describes the burst instances found in one window.
type BurstPattern struct {
	Instances        []BurstInstance `json:"instances"`
	BurstCount       int             `json:"burst_count"`
	AverageMagnitude float64         `json:"average_magnitude"`
}

// DecayPattern describes an exponential decay fit within one window.
type DecayPattern struct {
	DecayRate       float64 `json:"decay_rate"`
	HalfLife        float64 `json:"half_life"`
	RSquare         float64 `json:"r_squared"`
	TimeToOnePercent float64 `json:"time_to_one_percent"`
}

// CycleInstance is one zero-crossing-to-zero-crossing interval.
type CycleInstance struct {
	StartIndex int `json:"start_index"`
	EndIndex   int `json:"end_index"`
	Duration   int `json:"duration"`
}

// CyclicPattern describes the cycles found by zero-crossing analysis.
type CyclicPattern struct {
	Cycles      []CycleInstance `json:"cycles"`
	Regularity  float64         `json:"regularity"`
	Variability float64         `json:"variability"`
}

// PatternRecord is a tagged variant: Type says which of the pointer fields
// is populated. Strength is common to every variant and drives dominance
// ranking and confidence aggregation.
type PatternRecord struct {
	Type        PatternType `json:"type"`
	Strength    float64     `json:"strength"`
	WindowStart int         `json:"window_start"`
	WindowEnd   int         `json:"window_end"`

	Periodic *PeriodicPattern `json:"periodic,omitempty"`
	Trend    *TrendPattern    `json:"trend,omitempty"`
	Burst    *BurstPattern    `json:"burst,omitempty"`
	Decay    *DecayPattern    `json:"decay,omitempty"`
	Cyclic   *CyclicPattern   `json:"cyclic,omitempty"`
}

// PatternTypeSummary aggregates the records of one type across all windows.
type PatternTypeSummary struct {
	Count           int     `json:"count"`
	AverageStrength float64 `json:"average_strength"`
	MaxStrength     float64 `json:"max_strength"`
}

// PatternResult is the temporal detector's output for one analyzed
// sequence, across however many sliding windows it produced.
type PatternResult struct {
	ID         string                                  `json:"id"`
	Timestamp  time.Time                                `json:"timestamp"`
	DataLength int                                      `json:"data_length"`
	Patterns   []PatternRecord                           `json:"patterns"`
	Summary    map[PatternType]PatternTypeSummary       `json:"summary"`

	// DominantPattern is nil when Patterns is empty.
	DominantPattern *PatternRecord `json:"dominant_pattern,omitempty"`
	Confidence      float64        `json:"confidence"`
}

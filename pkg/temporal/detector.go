// Package temporal implements windowed pattern-type discrimination:
// periodicity, trend, burst, decay, and cyclic analyzers, orchestrated by
// Detector into a summarized PatternResult.
package temporal

import (
	"time"

	"go.uber.org/zap"

	"github.com/viable-systems/vsm-pattern-engine/pkg/domain"
	"github.com/viable-systems/vsm-pattern-engine/pkg/idgen"
	"github.com/viable-systems/vsm-pattern-engine/pkg/stats"
	"github.com/viable-systems/vsm-pattern-engine/pkg/windowing"
)

// Options configures one Detect call.
type Options struct {
	WindowSize    int
	SlideInterval int
}

// DefaultOptions returns the standard defaults (window 100, slide 10).
func DefaultOptions() Options {
	return Options{WindowSize: 100, SlideInterval: 10}
}

// Detector orchestrates the five window analyzers over a sequence and
// summarizes their output. It is stateless and safe for concurrent use.
type Detector struct {
	logger *zap.Logger
}

// NewDetector constructs a Detector. A nil logger falls back to a no-op
// logger.
func NewDetector(logger *zap.Logger) *Detector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Detector{logger: logger}
}

// analyzers applied to every window, in a fixed order so that, for
// equal-strength records, summary grouping is deterministic.
var analyzers = []func([]float64) *domain.PatternRecord{
	detectPeriodicity,
	detectTrend,
	detectBurst,
	detectDecay,
	detectCyclic,
}

// Detect runs all five analyzers over every sliding window of data and
// aggregates the result. Empty input yields an empty, zero-confidence
// result rather than an error.
func (d *Detector) Detect(data []float64, opts Options) domain.PatternResult {
	if opts.WindowSize <= 0 {
		opts = DefaultOptions()
	}

	result := domain.PatternResult{
		ID:         idgen.New(idgen.PrefixPattern),
		Timestamp:  time.Now(),
		DataLength: len(data),
		Summary:    map[domain.PatternType]domain.PatternTypeSummary{},
	}

	windows := windowing.Slide(data, opts.WindowSize, opts.SlideInterval)
	for _, w := range windows {
		for _, analyze := range analyzers {
			rec := analyze(w.Data)
			if rec == nil {
				continue
			}
			rec.WindowStart = w.Start
			rec.WindowEnd = w.End()
			result.Patterns = append(result.Patterns, *rec)
		}
	}

	d.summarize(&result)
	d.logger.Debug("temporal detection complete",
		zap.Int("windows", len(windows)),
		zap.Int("patterns", len(result.Patterns)),
		zap.Float64("confidence", result.Confidence))
	return result
}

// DetectStream runs the detector against one already-materialized
// streaming window (the caller owns buffering via windowing.StreamBuffer)
// and returns a PatternResult covering just that window.
func (d *Detector) DetectStream(window windowing.Window) domain.PatternResult {
	result := domain.PatternResult{
		ID:         idgen.New(idgen.PrefixPattern),
		Timestamp:  time.Now(),
		DataLength: len(window.Data),
		Summary:    map[domain.PatternType]domain.PatternTypeSummary{},
	}
	for _, analyze := range analyzers {
		rec := analyze(window.Data)
		if rec == nil {
			continue
		}
		rec.WindowStart = window.Start
		rec.WindowEnd = window.End()
		result.Patterns = append(result.Patterns, *rec)
	}
	d.summarize(&result)
	return result
}

func (d *Detector) summarize(result *domain.PatternResult) {
	if len(result.Patterns) == 0 {
		result.Confidence = 0
		return
	}

	byType := map[domain.PatternType][]float64{}
	var dominant *domain.PatternRecord
	for i := range result.Patterns {
		p := &result.Patterns[i]
		byType[p.Type] = append(byType[p.Type], p.Strength)
		if dominant == nil || p.Strength > dominant.Strength {
			dominant = p
		}
	}
	if dominant != nil {
		dCopy := *dominant
		result.DominantPattern = &dCopy
	}

	for t, strengths := range byType {
		sum := domain.PatternTypeSummary{Count: len(strengths)}
		sum.AverageStrength = stats.Mean(strengths)
		max := strengths[0]
		for _, s := range strengths[1:] {
			if s > max {
				max = s
			}
		}
		sum.MaxStrength = max
		result.Summary[t] = sum
	}

	var allStrengths []float64
	for _, p := range result.Patterns {
		allStrengths = append(allStrengths, p.Strength)
	}
	meanStrength := stats.Mean(allStrengths)

	var consistencies []float64
	for _, strengths := range byType {
		if len(strengths) == 1 {
			consistencies = append(consistencies, 0.5)
			continue
		}
		m := stats.Mean(strengths)
		v := stats.Variance(strengths)
		if m == 0 {
			consistencies = append(consistencies, 0)
			continue
		}
		c := 1 - v/m
		consistencies = append(consistencies, c)
	}
	consistency := stats.Mean(consistencies)

	result.Confidence = clamp01((meanStrength + consistency) / 2)
}

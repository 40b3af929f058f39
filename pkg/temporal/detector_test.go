package temporal_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"github.com/viable-systems/vsm-pattern-engine/pkg/domain"
	"github.com/viable-systems/vsm-pattern-engine/pkg/temporal"
)

func TestDetectEmptyInputYieldsZeroConfidence(t *testing.T) {
	d := temporal.NewDetector(zaptest.NewLogger(t))
	result := d.Detect(nil, temporal.DefaultOptions())

	assert.Empty(t, result.Patterns)
	assert.Equal(t, 0.0, result.Confidence)
	assert.Nil(t, result.DominantPattern)
}

func TestDetectConstantInputHasNoTrendOrPeriodicityOrBurst(t *testing.T) {
	data := make([]float64, 120)
	for i := range data {
		data[i] = 42
	}
	d := temporal.NewDetector(nil)
	result := d.Detect(data, temporal.DefaultOptions())

	for _, p := range result.Patterns {
		assert.NotEqual(t, domain.PatternTypeTrend, p.Type)
		assert.NotEqual(t, domain.PatternTypePeriodic, p.Type)
		assert.NotEqual(t, domain.PatternTypeBurst, p.Type)
	}
}

func TestDetectPeriodicSignal(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	n := 100
	data := make([]float64, n)
	for i := 0; i < n; i++ {
		data[i] = math.Sin(2*math.Pi*float64(i)/10.0) + 0.1*rng.Float64()
	}

	d := temporal.NewDetector(nil)
	result := d.Detect(data, temporal.Options{WindowSize: 100, SlideInterval: 10})

	require := assert.New(t)
	require.NotNil(result.DominantPattern)
	require.Equal(domain.PatternTypePeriodic, result.DominantPattern.Type)
	require.InDelta(10.0, result.DominantPattern.Periodic.Period, 1.5)
	require.Greater(result.DominantPattern.Strength, 0.7)
}

func TestDetectIsDeterministicModuloID(t *testing.T) {
	data := make([]float64, 150)
	for i := range data {
		data[i] = float64(i) * 0.5
	}
	d := temporal.NewDetector(nil)
	r1 := d.Detect(data, temporal.DefaultOptions())
	r2 := d.Detect(data, temporal.DefaultOptions())

	assert.Equal(t, len(r1.Patterns), len(r2.Patterns))
	for i := range r1.Patterns {
		p1, p2 := r1.Patterns[i], r2.Patterns[i]
		assert.Equal(t, p1.Type, p2.Type)
		assert.InDelta(t, p1.Strength, p2.Strength, 1e-9)
	}
}

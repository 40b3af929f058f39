package anomaly_test

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viable-systems/vsm-pattern-engine/pkg/anomaly"
	"github.com/viable-systems/vsm-pattern-engine/pkg/domain"
)

func gaussianBaseline(n int, mean, std float64, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	for i := range out {
		out[i] = mean + std*rng.NormFloat64()
	}
	return out
}

func TestStatisticalDetectsObviousOutlier(t *testing.T) {
	baseline := gaussianBaseline(100, 10, 2, 1)
	data := []float64{10, 11, 9, 50, 10, 11}

	d := anomaly.NewDetector(nil)
	result := d.Detect(data, baseline, anomaly.Options{Method: domain.MethodStatistical})

	require.True(t, result.AnomalyDetected)
	assert.Equal(t, 1, result.Count)
	assert.Equal(t, 3, result.Anomalies[0].Index)
	assert.Contains(t, result.Description, "index 3")
	assert.Contains(t, []domain.Severity{domain.SeverityHigh, domain.SeverityMedium}, result.Severity)
}

func TestStatisticalIdenticalBaselineYieldsNoAnomalies(t *testing.T) {
	baseline := make([]float64, 50)
	for i := range baseline {
		baseline[i] = 7
	}
	data := []float64{7, 7, 1000, -1000, 7}

	d := anomaly.NewDetector(nil)
	result := d.Detect(data, baseline, anomaly.Options{Method: domain.MethodStatistical})

	assert.False(t, result.AnomalyDetected)
	assert.Equal(t, 0, result.Count)
}

func TestVSMCriticalAlgedonicAlert(t *testing.T) {
	baseline := gaussianBaseline(200, 10, 2, 3)
	vbaseline := anomaly.NewVSMBaseline(baseline)
	extreme := vbaseline.AlgedonicThreshold + 100

	data := []float64{10, 11, 9, extreme, 10}
	d := anomaly.NewDetector(nil)
	result := d.Detect(data, baseline, anomaly.Options{Method: domain.MethodVSMBased})

	require.True(t, result.AnomalyDetected)
	assert.Equal(t, domain.SeverityCritical, result.Severity)
	assert.True(t, result.Critical)

	var foundAlgedonic bool
	for _, a := range result.Anomalies {
		if a.VSM != nil && a.VSM.Violation == domain.ViolationAlgedonicAlert {
			foundAlgedonic = true
		}
	}
	assert.True(t, foundAlgedonic)
	assert.Contains(t, result.Recommendations, "activate algedonic response")
}

func TestIsolationForestScoreRange(t *testing.T) {
	baseline := gaussianBaseline(300, 0, 1, 5)
	rng := rand.New(rand.NewSource(99))
	forest := anomaly.FitIsolationForest(baseline, rng)

	for _, v := range []float64{0, 1, -1, 10} {
		score := forest.Score(v)
		assert.Greater(t, score, 0.0)
		assert.LessOrEqual(t, score, 1.0)
	}
}

func TestLOFNonNegative(t *testing.T) {
	baseline := gaussianBaseline(200, 0, 1, 6)
	model := anomaly.FitLOF(baseline)
	for _, v := range []float64{0, 1, -1, 20} {
		assert.GreaterOrEqual(t, model.Score(v), 0.0)
	}
}

func TestBatchDetectFiltersToDetectedOnly(t *testing.T) {
	baseline := gaussianBaseline(100, 10, 2, 8)
	data := map[string][]float64{
		"quiet":  {10, 11, 9, 10},
		"spiked": {10, 11, 9, 80},
	}
	d := anomaly.NewDetector(nil)
	results := d.BatchDetect(context.Background(), data, baseline, anomaly.Options{Method: domain.MethodStatistical})

	_, hasQuiet := results["quiet"]
	_, hasSpiked := results["spiked"]
	assert.False(t, hasQuiet)
	assert.True(t, hasSpiked)
}

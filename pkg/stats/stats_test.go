package stats_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/viable-systems/vsm-pattern-engine/pkg/stats"
)

func TestPearsonSelfAndNegation(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5, 6, 7}
	neg := make([]float64, len(x))
	for i, v := range x {
		neg[i] = -v
	}

	assert.InDelta(t, 1.0, stats.Pearson(x, x), 1e-9)
	assert.InDelta(t, -1.0, stats.Pearson(x, neg), 1e-9)
}

func TestPearsonDegenerateCases(t *testing.T) {
	assert.Equal(t, 0.0, stats.Pearson([]float64{1}, []float64{2}))
	assert.Equal(t, 0.0, stats.Pearson([]float64{1, 1, 1}, []float64{1, 2, 3}))
	assert.Equal(t, 0.0, stats.Pearson(nil, nil))
}

func TestSpearmanMonotonicInvariance(t *testing.T) {
	x := []float64{3, 1, 4, 1, 5, 9, 2, 6}
	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = 2*v + 7 // strictly monotonic transform
	}
	assert.InDelta(t, 1.0, stats.Spearman(x, y), 1e-9)
}

func TestKendallTauTiesCountAsDiscordant(t *testing.T) {
	a := []float64{1, 1, 2}
	b := []float64{1, 2, 3}
	// pairs: (0,1) a tie -> discordant; (0,2) concordant; (1,2) concordant
	tau := stats.KendallTau(a, b)
	assert.InDelta(t, 1.0/3.0, tau, 1e-9)
}

func TestMutualInformationShortSeriesIsZero(t *testing.T) {
	a := make([]float64, 5)
	b := make([]float64, 5)
	assert.Equal(t, 0.0, stats.MutualInformation(a, b, false))
}

func TestMutualInformationDegenerateRangeIsZero(t *testing.T) {
	a := make([]float64, 20)
	b := make([]float64, 20)
	for i := range a {
		a[i] = 1
		b[i] = float64(i)
	}
	assert.Equal(t, 0.0, stats.MutualInformation(a, b, false))
}

func TestLinearRegressionPerfectFit(t *testing.T) {
	y := []float64{1, 3, 5, 7, 9}
	slope, intercept, r2 := stats.LinearRegression(y)
	assert.InDelta(t, 2.0, slope, 1e-9)
	assert.InDelta(t, 1.0, intercept, 1e-9)
	assert.InDelta(t, 1.0, r2, 1e-9)
}

func TestIQRNoInterpolation(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	// n=8: q1 index 2 -> value 3, q3 index 6 -> value 7
	assert.InDelta(t, 4.0, stats.IQR(x), 1e-9)
}

func TestRankAssignsDistinctRanksInInputOrderForTies(t *testing.T) {
	x := []float64{5, 5, 1}
	ranks := stats.Rank(x)
	// value 1 is smallest -> rank 1; the two 5s get ranks 2 and 3 in
	// stable input order.
	assert.Equal(t, []float64{2, 3, 1}, ranks)
}

func TestAutocorrelationLagZeroIsOne(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5, 6}
	ac := stats.Autocorrelation(x)
	assert.InDelta(t, 1.0, ac[0], 1e-9)
}

func TestVarianceAndStdDevOfConstantIsZero(t *testing.T) {
	x := []float64{4, 4, 4, 4}
	assert.Equal(t, 0.0, stats.Variance(x))
	assert.Equal(t, 0.0, stats.StdDev(x))
}

func TestPeriodicSignalAutocorrelationPeaksNearPeriod(t *testing.T) {
	n := 100
	x := make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = math.Sin(2 * math.Pi * float64(i) / 10.0)
	}
	ac := stats.Autocorrelation(x)
	// lag 10 should show a strong positive correlation.
	assert.Greater(t, ac[10], 0.5)
}

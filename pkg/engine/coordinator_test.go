package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/viable-systems/vsm-pattern-engine/pkg/correlation"
	"github.com/viable-systems/vsm-pattern-engine/pkg/domain"
	"github.com/viable-systems/vsm-pattern-engine/pkg/temporal"
)

type fakeStorage struct {
	storedPatterns     []domain.StoreDocument
	storedAnomalies    []domain.StoreDocument
	storedCorrelations []domain.StoreDocument
	healthy            bool
	recent             domain.QueryResponse
}

func (f *fakeStorage) StorePattern(_ context.Context, doc domain.StoreDocument) error {
	f.storedPatterns = append(f.storedPatterns, doc)
	return nil
}
func (f *fakeStorage) StoreAnomaly(_ context.Context, doc domain.StoreDocument) error {
	f.storedAnomalies = append(f.storedAnomalies, doc)
	return nil
}
func (f *fakeStorage) StoreCorrelation(_ context.Context, doc domain.StoreDocument) error {
	f.storedCorrelations = append(f.storedCorrelations, doc)
	return nil
}
func (f *fakeStorage) GetRecentData(_ context.Context, _ domain.QueryRequest) (domain.QueryResponse, error) {
	return f.recent, nil
}
func (f *fakeStorage) SearchSimilarPatterns(_ context.Context, _ domain.SearchRequest) (domain.SearchResponse, error) {
	return domain.SearchResponse{}, nil
}
func (f *fakeStorage) HealthCheck(_ context.Context) (domain.HealthResponse, error) {
	if f.healthy {
		return domain.HealthResponse{Status: "healthy"}, nil
	}
	return domain.HealthResponse{Status: "unhealthy"}, nil
}

var _ domain.VectorStoreAdapter = (*fakeStorage)(nil)

func newTestCoordinator(storage domain.VectorStoreAdapter) *Coordinator {
	cfg := domain.DefaultConfig()
	return New(cfg, storage, nil, zap.NewNop())
}

func TestCoordinatorInitialViability(t *testing.T) {
	c := newTestCoordinator(nil)
	state := c.GetSystemState()

	assert.Equal(t, 1.5, state.VSM.VarietyRatio())
	assert.InDelta(t, 5.0/6.0, state.ViabilityScore, 1e-9)
}

func TestCoordinatorAnalyzePatternPersistsAndCounts(t *testing.T) {
	fs := &fakeStorage{healthy: true}
	c := newTestCoordinator(fs)

	data := make([]float64, 50)
	for i := range data {
		data[i] = float64(i % 5)
	}

	result := c.AnalyzePattern(context.Background(), data, temporal.DefaultOptions())
	assert.NotEmpty(t, result.ID)
	assert.Len(t, fs.storedPatterns, 1)

	state := c.GetSystemState()
	assert.EqualValues(t, 1, state.Counters.PatternsAnalyzed)
}

func TestCoordinatorDetectAnomalyRaisesAlgedonic(t *testing.T) {
	fs := &fakeStorage{healthy: true}
	c := newTestCoordinator(fs)

	baseline := make([]float64, 30)
	for i := range baseline {
		baseline[i] = 10
	}
	data := append(append([]float64{}, baseline...), 10, 10, 10, 500)

	result, viability := c.DetectAnomaly(context.Background(), data, baseline, domain.MethodVSMBased)
	require.True(t, result.AnomalyDetected)

	if result.Critical {
		assert.False(t, viability.Viable)
		state := c.GetSystemState()
		assert.True(t, state.VSM.Algedonic.Active)
	}
}

func TestCoordinatorCorrelatePatternsOnlyRetainsSignificant(t *testing.T) {
	c := newTestCoordinator(nil)

	x := make([]float64, 40)
	y := make([]float64, 40)
	for i := range x {
		x[i] = float64(i)
		y[i] = float64(i) * 2
	}
	inputs := []domain.SequenceSource{domain.RawSequence(x), domain.RawSequence(y)}

	result := c.CorrelatePatterns(context.Background(), inputs, correlation.DefaultOptions())
	assert.NotEmpty(t, result.Relationships)

	state := c.GetSystemState()
	assert.EqualValues(t, 1, state.Counters.CorrelationsFound)
	assert.Equal(t, 1, state.CorrelationCount)
}

func TestCoordinatorHealthDegradedWhenStorageUnhealthy(t *testing.T) {
	fs := &fakeStorage{healthy: false}
	c := newTestCoordinator(fs)

	health := c.Health(context.Background())
	assert.Equal(t, domain.HealthDegraded, health.Status)
	assert.False(t, health.StorageHealthy)
}

func TestCoordinatorHealthHealthyWithoutStorage(t *testing.T) {
	c := newTestCoordinator(nil)
	health := c.Health(context.Background())
	assert.Equal(t, domain.HealthHealthy, health.Status)
	assert.True(t, health.StorageHealthy)
}

func TestCoordinatorStartStopScheduler(t *testing.T) {
	fs := &fakeStorage{healthy: true}
	c := newTestCoordinator(fs)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c.Start(ctx)
	time.Sleep(10 * time.Millisecond)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
	defer stopCancel()
	require.NoError(t, c.Stop(stopCtx))
}

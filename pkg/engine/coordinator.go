// Package engine implements the coordinating state machine: it runs the
// temporal, correlation, and anomaly detectors, fuses their output into
// a viable-system-model state, persists artifacts via the vector-store
// adapter, and raises algedonic signals on critical anomalies.
//
// The coordinator is a single-writer actor: every method that touches
// its state takes the same mutex, matching
// HybridCorrelationEngine's sync.RWMutex-guarded composition of
// sub-components.
package engine

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/viable-systems/vsm-pattern-engine/pkg/anomaly"
	"github.com/viable-systems/vsm-pattern-engine/pkg/correlation"
	"github.com/viable-systems/vsm-pattern-engine/pkg/domain"
	"github.com/viable-systems/vsm-pattern-engine/pkg/temporal"
)

const (
	maxRetainedAnomalies    = 100
	maxRetainedPatterns     = 500
	maxRetainedCorrelations = 200
)

// Coordinator owns the engine state exclusively and mutates it only
// within methods guarded by mu.
type Coordinator struct {
	mu sync.Mutex

	logger *zap.Logger

	config domain.Config
	state  domain.VSMState

	patterns         map[string]domain.PatternResult
	patternOrder     []string
	anomalies        []domain.AnomalyResult
	correlations     map[string]domain.CorrelationResult
	correlationOrder []string
	counters         domain.Counters

	temporalDetector    *temporal.Detector
	correlationAnalyzer *correlation.Analyzer
	anomalyDetector     *anomaly.Detector

	storage   domain.VectorStoreAdapter
	telemetry domain.TelemetryEmitter

	lastTick time.Time

	schedulerCancel context.CancelFunc
	schedulerDone   chan struct{}
}

// New constructs a Coordinator. storage and telemetry may be nil, in
// which case persistence and telemetry become no-ops; a nil logger falls
// back to zap.NewNop().
func New(cfg domain.Config, storage domain.VectorStoreAdapter, telemetryEmitter domain.TelemetryEmitter, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		logger:              logger,
		config:              cfg,
		state:               domain.DefaultVSMState(),
		patterns:            map[string]domain.PatternResult{},
		correlations:        map[string]domain.CorrelationResult{},
		temporalDetector:    temporal.NewDetector(logger),
		correlationAnalyzer: correlation.NewAnalyzer(logger),
		anomalyDetector:     anomaly.NewDetector(logger),
		storage:             storage,
		telemetry:           telemetryEmitter,
	}
}

func (c *Coordinator) emit(event domain.TelemetryEvent, fields map[string]any) {
	if c.telemetry == nil {
		return
	}
	c.telemetry.Emit(event, fields)
}

// AnalyzePattern runs the temporal detector over data, retains the
// result (subject to the retention cap), best-effort persists it via the
// vector store, and updates the patterns-analyzed counter.
func (c *Coordinator) AnalyzePattern(ctx context.Context, data []float64, opts temporal.Options) domain.PatternResult {
	start := time.Now()
	result := c.temporalDetector.Detect(data, opts)

	c.mu.Lock()
	c.retainPattern(result)
	c.counters.PatternsAnalyzed++
	c.mu.Unlock()

	c.persistPattern(ctx, result)
	c.emit(domain.EventPatternAnalyzed, map[string]any{
		"count":    len(result.Patterns),
		"duration": time.Since(start),
	})
	return result
}

func (c *Coordinator) retainPattern(result domain.PatternResult) {
	c.patterns[result.ID] = result
	c.patternOrder = append(c.patternOrder, result.ID)
	for len(c.patternOrder) > maxRetainedPatterns {
		oldest := c.patternOrder[0]
		c.patternOrder = c.patternOrder[1:]
		delete(c.patterns, oldest)
	}
}

// DetectAnomaly runs the anomaly detector (for the vsm_based method, the
// baseline defaults to the current VSM state's recursion-level varieties
// when not supplied; the other methods report no anomalies without one),
// computes viability, retains the result, raises the algedonic channel
// on critical severity (when algedonic_signals is enabled), and
// best-effort persists the result.
func (c *Coordinator) DetectAnomaly(ctx context.Context, data, baseline []float64, method domain.AnomalyMethod) (domain.AnomalyResult, domain.Viability) {
	c.mu.Lock()
	vsmState := c.state
	algedonicEnabled := c.config.AlgedonicSignals
	anomalyThreshold := c.config.AnomalyThreshold
	c.mu.Unlock()

	opts := anomaly.Options{Method: method, VSMState: &vsmState, AnomalyThreshold: anomalyThreshold}
	result := c.anomalyDetector.Detect(data, baseline, opts)

	varietyRatio := vsmState.VarietyRatio()
	viability := domain.Viability{
		Viable:          varietyRatio >= 1.0 && !result.Critical,
		VarietyRatio:    varietyRatio,
		Recommendations: result.Recommendations,
	}

	raiseAlgedonic := result.Critical && algedonicEnabled

	c.mu.Lock()
	c.retainAnomaly(result)
	c.counters.AnomaliesDetected++
	if raiseAlgedonic {
		c.state.Algedonic = domain.AlgedonicChannel{
			Active:     true,
			LastSignal: result.Description,
			Timestamp:  time.Now(),
		}
	}
	c.mu.Unlock()

	if result.AnomalyDetected {
		c.persistAnomaly(ctx, result)
	}

	c.emit(domain.EventAnomalyDetected, map[string]any{
		"count":    result.Count,
		"critical": result.Critical,
	})
	if raiseAlgedonic {
		c.emit(domain.EventCriticalAnomaly, map[string]any{"description": result.Description})
		if c.telemetry != nil {
			c.telemetry.Algedonic(result.Description, time.Now())
		}
	}

	return result, viability
}

func (c *Coordinator) retainAnomaly(result domain.AnomalyResult) {
	c.anomalies = append(c.anomalies, result)
	if len(c.anomalies) > maxRetainedAnomalies {
		c.anomalies = c.anomalies[len(c.anomalies)-maxRetainedAnomalies:]
	}
}

// CorrelatePatterns runs the correlation analyzer over the given
// pattern-like inputs, retains and persists the result only if it
// produced at least one significant relationship, and updates the
// correlations-found counter. A caller-supplied opts.Threshold takes
// precedence; otherwise the configured correlation_threshold governs
// which relationships are retained.
func (c *Coordinator) CorrelatePatterns(ctx context.Context, inputs []domain.SequenceSource, opts correlation.Options) domain.CorrelationResult {
	if opts.Threshold == 0 {
		opts.Threshold = c.config.CorrelationThreshold
	}
	result := c.correlationAnalyzer.Analyze(inputs, opts)

	significant := len(result.Relationships) > 0

	c.mu.Lock()
	if significant {
		c.retainCorrelation(result)
	}
	c.counters.CorrelationsFound++
	c.mu.Unlock()

	if significant {
		c.persistCorrelation(ctx, result)
	}
	return result
}

func (c *Coordinator) retainCorrelation(result domain.CorrelationResult) {
	c.correlations[result.ID] = result
	c.correlationOrder = append(c.correlationOrder, result.ID)
	for len(c.correlationOrder) > maxRetainedCorrelations {
		oldest := c.correlationOrder[0]
		c.correlationOrder = c.correlationOrder[1:]
		delete(c.correlations, oldest)
	}
}

// GetSystemState returns a point-in-time snapshot of the engine's state.
func (c *Coordinator) GetSystemState() domain.SystemState {
	c.mu.Lock()
	defer c.mu.Unlock()

	varietyRatio := c.state.VarietyRatio()
	anomalyRate := float64(len(c.anomalies)) / 100.0
	patternRichness := float64(len(c.patterns)) / 50.0
	if patternRichness > 1 {
		patternRichness = 1
	}
	viabilityScore := (varietyRatio + (1 - anomalyRate) + patternRichness) / 3.0

	c.emit(domain.EventVSM, map[string]any{
		"variety_ratio":   varietyRatio,
		"viability_score": viabilityScore,
	})

	return domain.SystemState{
		VSM:              c.state,
		Counters:         c.counters,
		PatternCount:     len(c.patterns),
		AnomalyCount:     len(c.anomalies),
		CorrelationCount: len(c.correlations),
		ViabilityScore:   viabilityScore,
		AsOf:             time.Now(),
	}
}

// Health aggregates the vector store's reachability with the scheduler's
// last-tick liveness.
func (c *Coordinator) Health(ctx context.Context) domain.Health {
	c.mu.Lock()
	lastTick := c.lastTick
	c.mu.Unlock()

	storageHealthy := c.storage == nil // no storage configured is not a failure
	if c.storage != nil {
		if resp, err := c.storage.HealthCheck(ctx); err == nil && resp.Status == "healthy" {
			storageHealthy = true
		}
	}

	status := domain.HealthHealthy
	switch {
	case !storageHealthy:
		status = domain.HealthDegraded
	case !lastTick.IsZero() && time.Since(lastTick) > 2*c.config.DetectionInterval:
		status = domain.HealthDegraded
	}

	return domain.Health{
		Status:         status,
		StorageHealthy: storageHealthy,
		LastTick:       lastTick,
	}
}

// persistPattern, persistAnomaly, persistCorrelation best-effort mirror a
// result to the vector store: failures are logged at Warn and otherwise
// swallowed, never propagated into the detection pipeline.

func (c *Coordinator) persistPattern(ctx context.Context, result domain.PatternResult) {
	if c.storage == nil {
		return
	}
	doc, err := encodePatternDocument(result, c.config.VectorStore.VectorDimensions)
	if err != nil {
		c.logger.Warn("failed to encode pattern document", zap.Error(err))
		return
	}
	if err := c.storage.StorePattern(ctx, doc); err != nil {
		c.logger.Warn("failed to persist pattern", zap.Error(err), zap.String("id", result.ID))
		return
	}
	c.emit(domain.EventVectorStore, map[string]any{"op": "store_pattern"})
}

func (c *Coordinator) persistAnomaly(ctx context.Context, result domain.AnomalyResult) {
	if c.storage == nil {
		return
	}
	doc, err := encodeAnomalyDocument(result, c.config.VectorStore.VectorDimensions)
	if err != nil {
		c.logger.Warn("failed to encode anomaly document", zap.Error(err))
		return
	}
	if err := c.storage.StoreAnomaly(ctx, doc); err != nil {
		c.logger.Warn("failed to persist anomaly", zap.Error(err), zap.String("id", result.ID))
		return
	}
	c.emit(domain.EventVectorStore, map[string]any{"op": "store_anomaly"})
}

func (c *Coordinator) persistCorrelation(ctx context.Context, result domain.CorrelationResult) {
	if c.storage == nil {
		return
	}
	doc, err := encodeCorrelationDocument(result, c.config.VectorStore.VectorDimensions)
	if err != nil {
		c.logger.Warn("failed to encode correlation document", zap.Error(err))
		return
	}
	if err := c.storage.StoreCorrelation(ctx, doc); err != nil {
		c.logger.Warn("failed to persist correlation", zap.Error(err), zap.String("id", result.ID))
		return
	}
	c.emit(domain.EventVectorStore, map[string]any{"op": "store_correlation"})
}

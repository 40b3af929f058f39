package anomaly

import (
	"context"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/viable-systems/vsm-pattern-engine/pkg/domain"
	"github.com/viable-systems/vsm-pattern-engine/pkg/idgen"
)

// Options configures one Detect call.
type Options struct {
	Method domain.AnomalyMethod

	// VSMState is used to derive a VSMBaseline when Method is
	// MethodVSMBased and no explicit baseline is supplied.
	VSMState *domain.VSMState

	// RNG seeds the isolation forest's splitters; nil uses a source with
	// the fixed seed 1. Inject a source to choose the seed.
	RNG *rand.Rand

	// AnomalyThreshold is the configured anomaly_threshold sensitivity
	// knob consulted by the statistical method; 0 uses the built-in
	// default.
	AnomalyThreshold float64
}

// Detector dispatches to one of the four detection strategies and
// classifies the result. Stateless aside from its logger; safe for
// concurrent use.
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

// Detect runs the requested method over data against baseline (or, for
// vsm_based with no baseline, the supplied VSM state) and classifies the
// result.
func (d *Detector) Detect(data, baseline []float64, opts Options) domain.AnomalyResult {
	var anomalies []domain.ClassifiedAnomaly

	switch opts.Method {
	case domain.MethodIsolationForest:
		anomalies = DetectIsolationForest(data, baseline, opts.RNG)
	case domain.MethodLOF:
		anomalies = DetectLOF(data, baseline)
	case domain.MethodVSMBased:
		var vsmBaseline VSMBaseline
		if len(baseline) > 0 {
			vsmBaseline = NewVSMBaseline(baseline)
		} else if opts.VSMState != nil {
			vsmBaseline = VSMBaselineFromState(*opts.VSMState)
		}
		anomalies = DetectVSM(data, vsmBaseline)
	default:
		opts.Method = domain.MethodStatistical
		anomalies = DetectStatistical(data, baseline, opts.AnomalyThreshold)
	}

	for i := range anomalies {
		anomalies[i].Severity = classifySeverity(&anomalies[i])
	}

	severity := overallSeverity(anomalies)
	critical := severity == domain.SeverityCritical

	result := domain.AnomalyResult{
		ID:              idgen.New(idgen.PrefixAnomaly),
		Timestamp:       time.Now(),
		Method:          opts.Method,
		InputSize:       len(data),
		AnomalyDetected: len(anomalies) > 0,
		Count:           len(anomalies),
		Anomalies:       anomalies,
		Severity:        severity,
		Critical:        critical,
		Description:     describe(opts.Method, anomalies, len(data)),
		Recommendations: recommendationsFor(anomalies, len(data), critical),
	}

	d.logger.Debug("anomaly detection complete",
		zap.String("method", string(opts.Method)),
		zap.Int("count", result.Count),
		zap.String("severity", string(result.Severity)))
	return result
}

// BatchDetect fans out one Detect call per stream in data, bounded by a
// fixed worker pool, and joins with a 5-second deadline. Streams whose
// detection didn't complete within the deadline are simply absent from
// the result -- partial results are acceptable here. Results
// are filtered to streams where an anomaly was actually detected.
func (d *Detector) BatchDetect(ctx context.Context, data map[string][]float64, baseline []float64, opts Options) map[string]domain.AnomalyResult {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	type job struct {
		streamID string
		data     []float64
	}
	type outcome struct {
		streamID string
		result   domain.AnomalyResult
	}

	jobs := make(chan job, len(data))
	results := make(chan outcome, len(data))

	workerCount := 8
	if workerCount > len(data) {
		workerCount = len(data)
	}
	if workerCount == 0 {
		return map[string]domain.AnomalyResult{}
	}

	for w := 0; w < workerCount; w++ {
		go func() {
			for j := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}
				results <- outcome{streamID: j.streamID, result: d.Detect(j.data, baseline, opts)}
			}
		}()
	}
	for id, series := range data {
		jobs <- job{streamID: id, data: series}
	}
	close(jobs)

	merged := map[string]domain.AnomalyResult{}
	for i := 0; i < len(data); i++ {
		select {
		case out := <-results:
			if out.result.AnomalyDetected {
				merged[out.streamID] = out.result
			}
		case <-ctx.Done():
			d.logger.Warn("batch anomaly detection deadline exceeded, returning partial results",
				zap.Int("completed", len(merged)), zap.Int("total", len(data)))
			return merged
		}
	}
	return merged
}

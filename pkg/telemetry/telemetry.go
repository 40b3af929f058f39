// Package telemetry implements the engine's fixed-namespace event
// emitter: otel metric instruments for the normal telemetry path, and a
// dedicated Prometheus counter for the out-of-band algedonic signal so a
// critical event stays visible even if otel export is degraded.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/viable-systems/vsm-pattern-engine/pkg/domain"
)

// Emitter implements domain.TelemetryEmitter over an otel Meter plus a
// Prometheus registry.
type Emitter struct {
	logger *zap.Logger

	eventCounter   metric.Int64Counter
	vsmGauge       metric.Float64Gauge
	viabilityGauge metric.Float64Gauge

	algedonicCounter prometheus.Counter
	storeOpsCounter  prometheus.Counter
	queryDuration    prometheus.Histogram
}

// NewEmitter constructs an Emitter from an otel MeterProvider-derived
// Meter and a Prometheus registerer. Pass prometheus.DefaultRegisterer to
// wire into the default /metrics handler.
func NewEmitter(meter metric.Meter, registerer prometheus.Registerer, logger *zap.Logger) (*Emitter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	eventCounter, err := meter.Int64Counter("vsmengine.events",
		metric.WithDescription("count of telemetry events emitted by the engine"))
	if err != nil {
		return nil, err
	}
	vsmGauge, err := meter.Float64Gauge("vsmengine.vsm.variety_ratio",
		metric.WithDescription("current system variety ratio"))
	if err != nil {
		return nil, err
	}
	viabilityGauge, err := meter.Float64Gauge("vsmengine.viability_score",
		metric.WithDescription("current viability score"))
	if err != nil {
		return nil, err
	}

	algedonicCounter := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "vsmengine",
		Name:      "algedonic_signals_total",
		Help:      "total number of critical algedonic signals raised",
	})
	storeOpsCounter := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "vsmengine",
		Subsystem: "vector_store",
		Name:      "operations_total",
		Help:      "total number of vector store operations issued",
	})
	queryDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "vsmengine",
		Subsystem: "vector_store",
		Name:      "query_duration_seconds",
		Help:      "vector store query duration in seconds",
	})

	if registerer != nil {
		for _, c := range []prometheus.Collector{algedonicCounter, storeOpsCounter, queryDuration} {
			if regErr := registerer.Register(c); regErr != nil {
				logger.Warn("failed to register prometheus collector", zap.Error(regErr))
			}
		}
	}

	return &Emitter{
		logger:           logger,
		eventCounter:     eventCounter,
		vsmGauge:         vsmGauge,
		viabilityGauge:   viabilityGauge,
		algedonicCounter: algedonicCounter,
		storeOpsCounter:  storeOpsCounter,
		queryDuration:    queryDuration,
	}, nil
}

// Emit records a telemetry event under the fixed namespace, per
// fixed namespace.
func (e *Emitter) Emit(event domain.TelemetryEvent, fields map[string]any) {
	ctx := context.Background()
	attrs := make([]attribute.KeyValue, 0, len(fields)+1)
	attrs = append(attrs, attribute.String("event", string(event)))
	for k, v := range fields {
		attrs = append(attrs, attribute.String(k, toString(v)))
	}
	e.eventCounter.Add(ctx, 1, metric.WithAttributes(attrs...))

	switch event {
	case domain.EventVSM:
		if ratio, ok := fields["variety_ratio"].(float64); ok {
			e.vsmGauge.Record(ctx, ratio)
		}
		if score, ok := fields["viability_score"].(float64); ok {
			e.viabilityGauge.Record(ctx, score)
		}
	case domain.EventVectorStore:
		e.storeOpsCounter.Inc()
		if d, ok := fields["duration"].(time.Duration); ok {
			e.queryDuration.Observe(d.Seconds())
		}
	}

	e.logger.Debug("telemetry event", zap.String("event", string(event)))
}

// Algedonic raises the out-of-band critical signal: it increments a
// dedicated counter unconditionally (bypassing any filtering Emit might
// otherwise apply) and logs at Error level.
func (e *Emitter) Algedonic(signal string, at time.Time) {
	e.algedonicCounter.Inc()
	e.logger.Error("algedonic signal raised", zap.String("signal", signal), zap.Time("at", at))
}

func toString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(v)
	}
}

var _ domain.TelemetryEmitter = (*Emitter)(nil)

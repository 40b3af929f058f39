package domain

import "time"

// TelemetryEvent names one of the fixed namespace events the engine
// emits.
type TelemetryEvent string

const (
	EventPatternAnalyzed TelemetryEvent = "pattern-analyzed"
	EventAnomalyDetected TelemetryEvent = "anomaly-detected"
	EventCriticalAnomaly TelemetryEvent = "critical-anomaly"
	EventVSM             TelemetryEvent = "vsm"
	EventVectorStore     TelemetryEvent = "vector-store"
	EventSystemMemory    TelemetryEvent = "system-memory"
)

// TelemetryEmitter is the fire-and-forget sink the coordinator reports
// through. Implementations must never block the caller meaningfully long
// and must never propagate an error back into the detection pipeline.
type TelemetryEmitter interface {
	Emit(event TelemetryEvent, fields map[string]any)

	// Algedonic is the out-of-band path for critical viability threats; it
	// bypasses whatever filtering Emit applies.
	Algedonic(signal string, at time.Time)
}

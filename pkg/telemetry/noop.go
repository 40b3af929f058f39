package telemetry

import (
	"time"

	"github.com/viable-systems/vsm-pattern-engine/pkg/domain"
)

// NopEmitter discards every event. Useful as a default when no otel
// MeterProvider is wired up, and in tests that don't care about
// telemetry.
type NopEmitter struct{}

func (NopEmitter) Emit(domain.TelemetryEvent, map[string]any) {}
func (NopEmitter) Algedonic(string, time.Time)                {}

var _ domain.TelemetryEmitter = NopEmitter{}

package domain

import "time"

// VarietyManagementMode names the variety-management strategy; only
// "requisite" is a recognized value today, but the type is left open
// for future modes.
type VarietyManagementMode string

const RequisiteVariety VarietyManagementMode = "requisite"

// VectorStoreConfig configures the external vector-store adapter.
type VectorStoreConfig struct {
	URL              string        `mapstructure:"url" json:"url"`
	Timeout          time.Duration `mapstructure:"timeout" json:"timeout"`
	APIKey           string        `mapstructure:"api_key" json:"api_key"`
	EncoderModel     string        `mapstructure:"encoder_model" json:"encoder_model"`
	VectorDimensions int           `mapstructure:"vector_dimensions" json:"vector_dimensions"`
}

// Config is the full recognized configuration surface.
type Config struct {
	DetectionInterval   time.Duration         `mapstructure:"detection_interval" json:"detection_interval"`
	AnomalyThreshold    float64               `mapstructure:"anomaly_threshold" json:"anomaly_threshold"`
	CorrelationThreshold float64              `mapstructure:"correlation_threshold" json:"correlation_threshold"`
	RecursionLevels     int                   `mapstructure:"recursion_levels" json:"recursion_levels"`
	VarietyManagement   VarietyManagementMode `mapstructure:"variety_management" json:"variety_management"`
	FeedbackLoops       bool                  `mapstructure:"feedback_loops" json:"feedback_loops"`
	AlgedonicSignals    bool                  `mapstructure:"algedonic_signals" json:"algedonic_signals"`

	VectorStore VectorStoreConfig `mapstructure:"vector_store" json:"vector_store"`
}

// DefaultConfig returns the engine's documented defaults.
func DefaultConfig() Config {
	return Config{
		DetectionInterval:    5000 * time.Millisecond,
		AnomalyThreshold:     0.8,
		CorrelationThreshold: 0.7,
		RecursionLevels:      5,
		VarietyManagement:    RequisiteVariety,
		FeedbackLoops:        true,
		AlgedonicSignals:     true,
		VectorStore: VectorStoreConfig{
			Timeout:          5 * time.Second,
			EncoderModel:     "feature-hash-v1",
			VectorDimensions: 384,
		},
	}
}

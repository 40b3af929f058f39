// Package config loads the engine's configuration surface from a YAML
// file plus "VSM_"-prefixed environment variables, the way
// cmd/tapio-server's main.go binds cobra flags through viper.
package config

import (
	"errors"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/viable-systems/vsm-pattern-engine/pkg/domain"
)

// Load reads configuration from configPath (if non-empty and present)
// and environment variables prefixed "VSM_", falling back to
// domain.DefaultConfig() for anything unset.
func Load(configPath string) (domain.Config, error) {
	v := viper.New()
	setDefaults(v, domain.DefaultConfig())

	v.SetEnvPrefix("VSM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			_, notFound := err.(viper.ConfigFileNotFoundError)
			if !notFound && !errors.Is(err, os.ErrNotExist) {
				return domain.Config{}, err
			}
		}
	}

	var cfg domain.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return domain.Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d domain.Config) {
	v.SetDefault("detection_interval", d.DetectionInterval)
	v.SetDefault("anomaly_threshold", d.AnomalyThreshold)
	v.SetDefault("correlation_threshold", d.CorrelationThreshold)
	v.SetDefault("recursion_levels", d.RecursionLevels)
	v.SetDefault("variety_management", string(d.VarietyManagement))
	v.SetDefault("feedback_loops", d.FeedbackLoops)
	v.SetDefault("algedonic_signals", d.AlgedonicSignals)
	v.SetDefault("vector_store.url", d.VectorStore.URL)
	v.SetDefault("vector_store.api_key", d.VectorStore.APIKey)
	v.SetDefault("vector_store.timeout", d.VectorStore.Timeout)
	v.SetDefault("vector_store.encoder_model", d.VectorStore.EncoderModel)
	v.SetDefault("vector_store.vector_dimensions", d.VectorStore.VectorDimensions)
}

// DetectionIntervalMillis is a convenience accessor returning the
// configured detection interval in milliseconds.
func DetectionIntervalMillis(cfg domain.Config) int64 {
	return cfg.DetectionInterval.Milliseconds()
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	vsmconfig "github.com/viable-systems/vsm-pattern-engine/pkg/config"
	"github.com/viable-systems/vsm-pattern-engine/pkg/correlation"
	"github.com/viable-systems/vsm-pattern-engine/pkg/domain"
	"github.com/viable-systems/vsm-pattern-engine/pkg/engine"
	"github.com/viable-systems/vsm-pattern-engine/pkg/storage"
	"github.com/viable-systems/vsm-pattern-engine/pkg/telemetry"
	"github.com/viable-systems/vsm-pattern-engine/pkg/temporal"
)

const version = "0.1.0"

var (
	configPath string
	logLevel   string
	debug      bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "vsmengine",
		Short:   "Viable-system-model pattern recognition and anomaly detection engine",
		Version: version,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug mode (implies log-level=debug)")

	viper.SetEnvPrefix("VSM")
	viper.AutomaticEnv()

	rootCmd.AddCommand(runCmd(), demoCmd(), versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func buildLogger() (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	} else if err := level.Set(logLevel); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	return cfg.Build()
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the engine's scheduler loop against a live vector store",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := buildLogger()
			if err != nil {
				return err
			}
			defer logger.Sync()

			cfg, err := vsmconfig.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			var storageAdapter domain.VectorStoreAdapter
			if cfg.VectorStore.URL != "" {
				storageAdapter = storage.NewClient(cfg.VectorStore, logger)
			}

			emitter, err := buildTelemetryEmitter(logger)
			if err != nil {
				logger.Warn("failed to build telemetry emitter, falling back to no-op", zap.Error(err))
				emitter = telemetry.NopEmitter{}
			}

			coordinator := engine.New(cfg, storageAdapter, emitter, logger)
			coordinator.Start(ctx)

			logger.Info("vsmengine started",
				zap.Duration("detection_interval", cfg.DetectionInterval),
				zap.Bool("vector_store_configured", storageAdapter != nil))

			<-ctx.Done()
			logger.Info("shutdown signal received, stopping")

			stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := coordinator.Stop(stopCtx); err != nil {
				logger.Warn("scheduler did not stop cleanly", zap.Error(err))
			}
			return nil
		},
	}
}

func demoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run the three detectors and the coordinator end-to-end against synthetic data",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := buildLogger()
			if err != nil {
				return err
			}
			defer logger.Sync()

			cfg := domain.DefaultConfig()
			coordinator := engine.New(cfg, nil, telemetry.NopEmitter{}, logger)

			ctx := context.Background()
			seriesA := syntheticPeriodic(200)
			seriesB := syntheticPeriodic(200)
			baseline := make([]float64, 100)
			for i := range baseline {
				baseline[i] = 10
			}
			anomalous := append(append([]float64{}, baseline...), 10, 10, 10, 10, 200)

			patternResult := coordinator.AnalyzePattern(ctx, seriesA, temporal.DefaultOptions())
			anomalyResult, viability := coordinator.DetectAnomaly(ctx, anomalous, baseline, domain.MethodStatistical)
			correlationResult := coordinator.CorrelatePatterns(ctx,
				[]domain.SequenceSource{domain.RawSequence(seriesA), domain.RawSequence(seriesB)},
				correlation.DefaultOptions())
			systemState := coordinator.GetSystemState()

			summary := map[string]any{
				"pattern":     patternResult,
				"anomaly":     anomalyResult,
				"viability":   viability,
				"correlation": correlationResult,
				"system":      systemState,
			}
			out, err := json.MarshalIndent(summary, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal demo summary: %w", err)
			}
			fmt.Println(string(out))
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the engine's version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(version)
			return nil
		},
	}
}

func buildTelemetryEmitter(logger *zap.Logger) (domain.TelemetryEmitter, error) {
	provider := sdkmetric.NewMeterProvider()
	meter := provider.Meter("vsmengine")
	return telemetry.NewEmitter(meter, prometheus.DefaultRegisterer, logger)
}

// syntheticPeriodic generates a noisy sine wave for the demo command.
func syntheticPeriodic(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(float64(i)*2*math.Pi/20) + 0.05*rand.Float64()
	}
	return out
}

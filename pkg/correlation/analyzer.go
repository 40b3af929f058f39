package correlation

import (
	"time"

	"go.uber.org/zap"

	"github.com/viable-systems/vsm-pattern-engine/pkg/domain"
	"github.com/viable-systems/vsm-pattern-engine/pkg/idgen"
)

// Options configures one Analyze call.
type Options struct {
	Methods         []domain.CorrelationMethod
	Threshold       float64
	AnalyzeCausality bool
}

// DefaultOptions returns the standard defaults: all four methods,
// threshold 0.5, causal analysis off (opt-in).
func DefaultOptions() Options {
	return Options{
		Methods:   DefaultMethods,
		Threshold: DefaultThreshold,
	}
}

// Analyzer computes pairwise correlation, lag profiles, and causal
// networks over a batch of pattern-like inputs. Stateless aside from its
// logger; safe for concurrent use.
type Analyzer struct {
	logger *zap.Logger
}

// NewAnalyzer constructs an Analyzer. A nil logger falls back to a no-op
// logger.
func NewAnalyzer(logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{logger: logger}
}

// Analyze runs the full correlation pipeline over the given pattern-like
// inputs: matrix construction, relationship extraction, strongest
// relationship, network metrics, and (opt-in) causal analysis.
func (an *Analyzer) Analyze(inputs []domain.SequenceSource, opts Options) domain.CorrelationResult {
	opts = mergeDefaults(opts)

	sequences := make([][]float64, len(inputs))
	for i, in := range inputs {
		sequences[i] = in.Sequence()
	}

	matrix := BuildMatrix(sequences, opts.Methods...)
	sampleSizes := commonLengths(sequences)
	rels := ExtractRelationships(matrix, sampleSizes, opts.Threshold)
	strongest := StrongestRelationship(rels)
	network := ComputeNetworkMetrics(len(sequences), rels)

	result := domain.CorrelationResult{
		ID:                    idgen.New(idgen.PrefixCorrelation),
		Timestamp:             time.Now(),
		PatternCount:          len(inputs),
		Matrix:                matrix,
		Relationships:         rels,
		StrongestRelationship: strongest,
		Network:               network,
	}

	if opts.AnalyzeCausality {
		result.Causal = AnalyzeCausality(sequences, rels)
	}

	an.logger.Debug("correlation analysis complete",
		zap.Int("inputs", len(inputs)),
		zap.Int("relationships", len(rels)),
		zap.Float64("density", network.Density))
	return result
}

func mergeDefaults(opts Options) Options {
	d := DefaultOptions()
	if len(opts.Methods) == 0 {
		opts.Methods = d.Methods
	}
	if opts.Threshold == 0 {
		opts.Threshold = d.Threshold
	}
	return opts
}

func commonLengths(sequences [][]float64) [][]int {
	n := len(sequences)
	out := make([][]int, n)
	for i := range out {
		out[i] = make([]int, n)
		for j := range out[i] {
			li, lj := len(sequences[i]), len(sequences[j])
			if li < lj {
				out[i][j] = li
			} else {
				out[i][j] = lj
			}
		}
	}
	return out
}

package engine

import (
	"encoding/json"

	"github.com/viable-systems/vsm-pattern-engine/pkg/domain"
	"github.com/viable-systems/vsm-pattern-engine/pkg/storage"
)

var featureExtractor domain.FeatureExtractor = storage.NewHashingFeatureExtractor()

// encodePatternDocument turns a PatternResult into the vector-store
// payload: its strengths become the embedded vector, the rest is
// carried verbatim as JSON content.
func encodePatternDocument(result domain.PatternResult, dimensions int) (domain.StoreDocument, error) {
	content, err := json.Marshal(result)
	if err != nil {
		return domain.StoreDocument{}, err
	}
	strengths := make([]float64, len(result.Patterns))
	for i, p := range result.Patterns {
		strengths[i] = p.Strength
	}
	return domain.StoreDocument{
		ID:        result.ID,
		Type:      domain.DocumentPattern,
		Timestamp: result.Timestamp,
		Vector:    featureExtractor.Extract(strengths, dimensions),
		Metadata: map[string]any{
			"data_length": result.DataLength,
			"confidence":  result.Confidence,
		},
		Content: content,
	}, nil
}

func encodeAnomalyDocument(result domain.AnomalyResult, dimensions int) (domain.StoreDocument, error) {
	content, err := json.Marshal(result)
	if err != nil {
		return domain.StoreDocument{}, err
	}
	return domain.StoreDocument{
		ID:        result.ID,
		Type:      domain.DocumentAnomaly,
		Timestamp: result.Timestamp,
		Vector:    featureExtractor.Extract(result.Sequence(), dimensions),
		Metadata: map[string]any{
			"method":   string(result.Method),
			"severity": string(result.Severity),
			"critical": result.Critical,
		},
		Content: content,
	}, nil
}

func encodeCorrelationDocument(result domain.CorrelationResult, dimensions int) (domain.StoreDocument, error) {
	content, err := json.Marshal(result)
	if err != nil {
		return domain.StoreDocument{}, err
	}
	flattened := make([]float64, 0, result.Matrix.Size*result.Matrix.Size)
	for _, row := range result.Matrix.Values {
		flattened = append(flattened, row...)
	}
	return domain.StoreDocument{
		ID:        result.ID,
		Type:      domain.DocumentCorrelation,
		Timestamp: result.Timestamp,
		Vector:    featureExtractor.Extract(flattened, dimensions),
		Metadata: map[string]any{
			"pattern_count": result.PatternCount,
			"relationships": len(result.Relationships),
		},
		Content: content,
	}, nil
}

package correlation

import (
	"github.com/viable-systems/vsm-pattern-engine/pkg/domain"
)

// DefaultThreshold is the minimum |r| for a pair to be retained as a
// Relationship.
const DefaultThreshold = 0.5

// ExtractRelationships walks the upper triangle of the matrix and emits
// one Relationship per pair whose |r| meets or exceeds threshold.
func ExtractRelationships(matrix domain.CorrelationMatrix, sampleSizes [][]int, threshold float64) []domain.Relationship {
	var rels []domain.Relationship
	for i := 0; i < matrix.Size; i++ {
		for j := i + 1; j < matrix.Size; j++ {
			r := matrix.Values[i][j]
			strength := r
			if strength < 0 {
				strength = -strength
			}
			if strength < threshold {
				continue
			}
			n := 30
			if sampleSizes != nil {
				n = sampleSizes[i][j]
			}
			direction := 0
			switch {
			case r > 0:
				direction = 1
			case r < 0:
				direction = -1
			}
			rels = append(rels, domain.Relationship{
				I:           i,
				J:           j,
				Correlation: r,
				Strength:    strength,
				Direction:   direction,
				Confidence:  fisherConfidence(r, n),
			})
		}
	}
	return rels
}

// StrongestRelationship returns the relationship with the highest
// Strength, or nil if rels is empty.
func StrongestRelationship(rels []domain.Relationship) *domain.Relationship {
	if len(rels) == 0 {
		return nil
	}
	best := rels[0]
	for _, r := range rels[1:] {
		if r.Strength > best.Strength {
			best = r
		}
	}
	return &best
}

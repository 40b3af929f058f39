package anomaly

import (
	"math"
	"math/rand"

	"github.com/viable-systems/vsm-pattern-engine/pkg/domain"
)

const (
	isolationTreeCount = 100
	isolationMaxDepth  = 10
	isolationSubsample = 256

	// IsolationFlagThreshold is the score above which a value is flagged.
	IsolationFlagThreshold = 0.6
)

// isolationNode is one node of an isolation tree: either a leaf (no
// children) or an internal split on splitValue.
type isolationNode struct {
	isLeaf     bool
	splitValue float64
	left       *isolationNode
	right      *isolationNode
	size       int // number of points that reached this node, for leaves
}

// buildIsolationTree recursively partitions values by a uniformly random
// split value in [min,max] until reaching isolationMaxDepth or a subset
// with a single unique value.
func buildIsolationTree(values []float64, depth int, rng *rand.Rand) *isolationNode {
	if depth >= isolationMaxDepth || len(values) <= 1 || allEqual(values) {
		return &isolationNode{isLeaf: true, size: len(values)}
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if lo == hi {
		return &isolationNode{isLeaf: true, size: len(values)}
	}

	split := lo + rng.Float64()*(hi-lo)
	var leftVals, rightVals []float64
	for _, v := range values {
		if v < split {
			leftVals = append(leftVals, v)
		} else {
			rightVals = append(rightVals, v)
		}
	}
	if len(leftVals) == 0 || len(rightVals) == 0 {
		return &isolationNode{isLeaf: true, size: len(values)}
	}

	return &isolationNode{
		isLeaf:     false,
		splitValue: split,
		left:       buildIsolationTree(leftVals, depth+1, rng),
		right:      buildIsolationTree(rightVals, depth+1, rng),
	}
}

func allEqual(values []float64) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}

// pathLength returns the depth at which value reaches a leaf, adding the
// leaf's averagePathAdjustment(size) correction at every leaf.
func pathLength(node *isolationNode, value float64, depth int) float64 {
	if node.isLeaf {
		return float64(depth) + averagePathAdjustment(node.size)
	}
	if value < node.splitValue {
		return pathLength(node.left, value, depth+1)
	}
	return pathLength(node.right, value, depth+1)
}

// averagePathAdjustment is c(n): the expected path length of an
// unsuccessful BST search, used to normalize path lengths across tree
// sizes.
func averagePathAdjustment(n int) float64 {
	if n <= 2 {
		return 1
	}
	const eulerMascheroni = 0.5772156649
	return 2*(math.Log(float64(n-1))+eulerMascheroni) - 2*float64(n-1)/float64(n)
}

// IsolationForest is a fitted ensemble of isolation trees over a
// baseline.
type IsolationForest struct {
	trees      []*isolationNode
	subsampleN int
}

// FitIsolationForest builds isolationTreeCount trees, each over a random
// subsample of size min(isolationSubsample, len(baseline)). rng is
// injected so callers can make tests reproducible; a nil rng uses a
// source with the fixed seed 1.
func FitIsolationForest(baseline []float64, rng *rand.Rand) *IsolationForest {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	subN := isolationSubsample
	if len(baseline) < subN {
		subN = len(baseline)
	}
	forest := &IsolationForest{subsampleN: subN}
	if subN == 0 {
		return forest
	}
	for i := 0; i < isolationTreeCount; i++ {
		sample := make([]float64, subN)
		for j := range sample {
			sample[j] = baseline[rng.Intn(len(baseline))]
		}
		forest.trees = append(forest.trees, buildIsolationTree(sample, 0, rng))
	}
	return forest
}

// Score returns the isolation anomaly score for value: 2^(-E[h(x)]/c(n)),
// in (0,1], higher meaning more anomalous. A forest fitted on an empty
// baseline has no trees and scores every value 0.
func (f *IsolationForest) Score(value float64) float64 {
	if len(f.trees) == 0 {
		return 0
	}
	var total float64
	for _, tree := range f.trees {
		total += pathLength(tree, value, 0)
	}
	avg := total / float64(len(f.trees))
	cn := averagePathAdjustment(f.subsampleN)
	if cn == 0 {
		return 1
	}
	return math.Pow(2, -avg/cn)
}

// DetectIsolationForest fits a forest on baseline and flags every value
// in data whose score exceeds IsolationFlagThreshold.
func DetectIsolationForest(data, baseline []float64, rng *rand.Rand) []domain.ClassifiedAnomaly {
	if len(baseline) == 0 {
		return nil
	}
	forest := FitIsolationForest(baseline, rng)
	var out []domain.ClassifiedAnomaly
	for i, v := range data {
		score := forest.Score(v)
		if score <= IsolationFlagThreshold {
			continue
		}
		out = append(out, domain.ClassifiedAnomaly{
			Index:     i,
			Value:     v,
			Isolation: &domain.IsolationDetail{Score: score},
		})
	}
	return out
}

package anomaly

import (
	"sort"

	"github.com/viable-systems/vsm-pattern-engine/pkg/domain"
)

// LOFFlagThreshold is the local outlier factor above which a value is
// flagged.
const LOFFlagThreshold = 1.5

// ZeroLRDScore is the score assigned when a query point's local
// reachability density is zero (coincides exactly with its neighbors).
const ZeroLRDScore = 2.0

func distance1D(a, b float64) float64 {
	if a < b {
		return b - a
	}
	return a - b
}

// lofModel precomputes each baseline point's k-distance and local
// reachability density so that scoring a query value doesn't require
// recomputing baseline-internal neighbor structure every call.
type lofModel struct {
	baseline  []float64
	k         int
	kDistance []float64
	lrd       []float64
}

// FitLOF precomputes the baseline's k-nearest-neighbor structure; k =
// min(20, len(baseline)/10).
func FitLOF(baseline []float64) *lofModel {
	n := len(baseline)
	if n == 0 {
		return &lofModel{}
	}
	k := n / 10
	if k > 20 {
		k = 20
	}
	if k < 1 {
		k = 1
	}
	if k >= n {
		k = n - 1
	}

	m := &lofModel{baseline: baseline, k: k}
	if k == 0 {
		return m
	}

	m.kDistance = make([]float64, n)
	neighborDistances := make([][]float64, n)
	for i := 0; i < n; i++ {
		dists := kNearestDistances(baseline, i, baseline[i], k)
		neighborDistances[i] = dists
		m.kDistance[i] = dists[len(dists)-1]
	}

	m.lrd = make([]float64, n)
	for i := 0; i < n; i++ {
		idxs := kNearestIndices(baseline, i, baseline[i], k)
		var sumReach float64
		for _, j := range idxs {
			d := distance1D(baseline[i], baseline[j])
			reach := d
			if m.kDistance[j] > reach {
				reach = m.kDistance[j]
			}
			sumReach += reach
		}
		if sumReach == 0 {
			m.lrd[i] = 0
		} else {
			m.lrd[i] = float64(k) / sumReach
		}
	}
	return m
}

// kNearestIndices returns the indices (excluding excludeIdx) of the k
// baseline points nearest to value.
func kNearestIndices(baseline []float64, excludeIdx int, value float64, k int) []int {
	type cand struct {
		idx  int
		dist float64
	}
	cands := make([]cand, 0, len(baseline))
	for i, b := range baseline {
		if i == excludeIdx {
			continue
		}
		cands = append(cands, cand{idx: i, dist: distance1D(value, b)})
	}
	sort.Slice(cands, func(a, b int) bool { return cands[a].dist < cands[b].dist })
	if len(cands) > k {
		cands = cands[:k]
	}
	out := make([]int, len(cands))
	for i, c := range cands {
		out[i] = c.idx
	}
	return out
}

func kNearestDistances(baseline []float64, excludeIdx int, value float64, k int) []float64 {
	idxs := kNearestIndices(baseline, excludeIdx, value, k)
	out := make([]float64, len(idxs))
	for i, j := range idxs {
		out[i] = distance1D(value, baseline[j])
	}
	return out
}

// Score returns the local outlier factor for a query value against the
// fitted baseline.
func (m *lofModel) Score(value float64) float64 {
	if m.k == 0 || len(m.baseline) == 0 {
		return 0
	}
	idxs := kNearestIndices(m.baseline, -1, value, m.k)
	if len(idxs) == 0 {
		return 0
	}

	var sumReach float64
	for _, j := range idxs {
		d := distance1D(value, m.baseline[j])
		reach := d
		if m.kDistance[j] > reach {
			reach = m.kDistance[j]
		}
		sumReach += reach
	}
	var lrd float64
	if sumReach > 0 {
		lrd = float64(m.k) / sumReach
	}
	if lrd == 0 {
		return ZeroLRDScore
	}

	var neighborLRDSum float64
	for _, j := range idxs {
		neighborLRDSum += m.lrd[j]
	}
	meanNeighborLRD := neighborLRDSum / float64(len(idxs))
	return meanNeighborLRD / lrd
}

// DetectLOF fits a LOF model on baseline and flags every value in data
// whose LOF exceeds LOFFlagThreshold.
func DetectLOF(data, baseline []float64) []domain.ClassifiedAnomaly {
	if len(baseline) == 0 {
		return nil
	}
	model := FitLOF(baseline)
	var out []domain.ClassifiedAnomaly
	for i, v := range data {
		score := model.Score(v)
		if score <= LOFFlagThreshold {
			continue
		}
		out = append(out, domain.ClassifiedAnomaly{
			Index: i,
			Value: v,
			LOF:   &domain.LOFDetail{Score: score},
		})
	}
	return out
}

package correlation

import (
	"github.com/viable-systems/vsm-pattern-engine/pkg/domain"
)

// DefaultLagOrder is the number of lagged terms used in the Granger-style
// F-test below, chosen as a small, fixed order adequate for the window
// sizes this engine works with.
//
// A naive causal screen might use a random placeholder with no
// specified lag order or null model; this implementation instead picks
// both explicitly (lagged-OLS F-test, order 2).
const DefaultLagOrder = 2

// CausalThreshold is the F-statistic value above which a direction is
// accepted as causal.
const CausalThreshold = 3.0

// MinCausalSamples is the minimum sequence length (both directions) for
// causal screening to run at all.
const MinCausalSamples = 20

// designRow builds one row of the regression design matrix for
// predicting y[t] from its own p lags and (if other != nil) other's p
// lags, plus an intercept term.
func designRow(y, other []float64, t, p int) []float64 {
	row := make([]float64, 0, 2*p+1)
	row = append(row, 1) // intercept
	for k := 1; k <= p; k++ {
		row = append(row, y[t-k])
	}
	if other != nil {
		for k := 1; k <= p; k++ {
			row = append(row, other[t-k])
		}
	}
	return row
}

// olsResidualSumSquares fits y ~ X by ordinary least squares via the
// normal equations and returns the residual sum of squares.
func olsResidualSumSquares(X [][]float64, y []float64) float64 {
	beta := solveNormalEquations(X, y)
	var rss float64
	for i, row := range X {
		var pred float64
		for j, x := range row {
			pred += x * beta[j]
		}
		resid := y[i] - pred
		rss += resid * resid
	}
	return rss
}

// solveNormalEquations solves (X'X) beta = X'y via Gauss-Jordan
// elimination on the small, fixed-size design matrices used here (at
// most 2*DefaultLagOrder+1 columns).
func solveNormalEquations(X [][]float64, y []float64) []float64 {
	cols := len(X[0])
	xtx := make([][]float64, cols)
	xty := make([]float64, cols)
	for i := range xtx {
		xtx[i] = make([]float64, cols)
	}
	for rowIdx, row := range X {
		for i := 0; i < cols; i++ {
			for j := 0; j < cols; j++ {
				xtx[i][j] += row[i] * row[j]
			}
			xty[i] += row[i] * y[rowIdx]
		}
	}
	return gaussJordan(xtx, xty)
}

// gaussJordan solves A x = b for square A via Gauss-Jordan elimination
// with partial pivoting. Returns a zero vector if A is singular (can
// happen on degenerate/constant input), which the caller's RSS
// computation then treats as "no explanatory power" rather than crashing.
func gaussJordan(a [][]float64, b []float64) []float64 {
	n := len(a)
	aug := make([][]float64, n)
	for i := range aug {
		aug[i] = make([]float64, n+1)
		copy(aug[i], a[i])
		aug[i][n] = b[i]
	}

	for col := 0; col < n; col++ {
		pivot := col
		for r := col + 1; r < n; r++ {
			if abs(aug[r][col]) > abs(aug[pivot][col]) {
				pivot = r
			}
		}
		aug[col], aug[pivot] = aug[pivot], aug[col]
		if abs(aug[col][col]) < 1e-12 {
			continue // singular column: leave corresponding beta at 0
		}
		pivotVal := aug[col][col]
		for k := 0; k <= n; k++ {
			aug[col][k] /= pivotVal
		}
		for r := 0; r < n; r++ {
			if r == col {
				continue
			}
			factor := aug[r][col]
			for k := 0; k <= n; k++ {
				aug[r][k] -= factor * aug[col][k]
			}
		}
	}

	x := make([]float64, n)
	for i := range x {
		x[i] = aug[i][n]
	}
	return x
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// grangerFStatistic tests whether `cause` Granger-causes `effect` at lag
// order p: F comparing the restricted model (effect on its own lags
// only) against the unrestricted model (effect on its own lags plus
// cause's lags).
func grangerFStatistic(cause, effect []float64, p int) float64 {
	n := len(effect)
	if len(cause) < n {
		n = len(cause)
	}
	usable := n - p
	if usable < p+2 {
		return 0
	}

	restrictedX := make([][]float64, 0, usable)
	unrestrictedX := make([][]float64, 0, usable)
	yv := make([]float64, 0, usable)
	for t := p; t < n; t++ {
		restrictedX = append(restrictedX, designRow(effect, nil, t, p))
		unrestrictedX = append(unrestrictedX, designRow(effect, cause, t, p))
		yv = append(yv, effect[t])
	}

	rssR := olsResidualSumSquares(restrictedX, yv)
	rssU := olsResidualSumSquares(unrestrictedX, yv)

	dof := float64(usable - 2*p - 1)
	if dof <= 0 || rssU <= 0 {
		return 0
	}
	numerator := (rssR - rssU) / float64(p)
	if numerator < 0 {
		numerator = 0
	}
	return numerator / (rssU / dof)
}

// AnalyzeCausality screens every retained relationship whose both
// sequences have at least MinCausalSamples samples, testing both
// directions with a lagged-OLS F-test, and assembles the causal graph.
func AnalyzeCausality(sequences [][]float64, rels []domain.Relationship) *domain.CausalAnalysis {
	nodeSet := map[int]bool{}
	var edges []domain.CausalLink

	for _, rel := range rels {
		a, b := sequences[rel.I], sequences[rel.J]
		if len(a) < MinCausalSamples || len(b) < MinCausalSamples {
			continue
		}
		lag := FindOptimalLag(a, b)

		fAB := grangerFStatistic(a, b, DefaultLagOrder)
		fBA := grangerFStatistic(b, a, DefaultLagOrder)

		abPasses := fAB > CausalThreshold
		baPasses := fBA > CausalThreshold
		if !abPasses && !baPasses {
			continue
		}

		if abPasses {
			edges = append(edges, domain.CausalLink{
				From: rel.I, To: rel.J,
				FStatistic: fAB, Bidirectional: abPasses && baPasses,
				OptimalLag: lag.OptimalLag,
			})
			nodeSet[rel.I] = true
			nodeSet[rel.J] = true
		}
		if baPasses {
			edges = append(edges, domain.CausalLink{
				From: rel.J, To: rel.I,
				FStatistic: fBA, Bidirectional: abPasses && baPasses,
				OptimalLag: -lag.OptimalLag,
			})
			nodeSet[rel.I] = true
			nodeSet[rel.J] = true
		}
	}

	if len(edges) == 0 {
		return nil
	}

	nodes := make([]int, 0, len(nodeSet))
	for n := range nodeSet {
		nodes = append(nodes, n)
	}

	outDeg := map[int]int{}
	inDeg := map[int]int{}
	for _, e := range edges {
		outDeg[e.From]++
		inDeg[e.To]++
	}

	var roots, effects []int
	for _, n := range nodes {
		if outDeg[n] > 0 && inDeg[n] == 0 {
			roots = append(roots, n)
		}
		if inDeg[n] > 0 && outDeg[n] == 0 {
			effects = append(effects, n)
		}
	}

	return &domain.CausalAnalysis{
		Graph:      domain.CausalGraph{Nodes: nodes, Edges: edges},
		RootCauses: roots,
		Effects:    effects,
	}
}

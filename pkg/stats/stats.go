// Package stats provides the pure numeric primitives every detector in
// this module builds on: moments, ranks, rank/linear correlation,
// information-theoretic correlation, regression, and autocorrelation.
// Every function here is total over finite-length real sequences -- no
// panics on empty or degenerate input, per the input-domain error policy.
package stats

import (
	"math"
	"sort"
)

// Mean returns the arithmetic mean, or 0 for an empty sequence.
func Mean(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	var sum float64
	for _, v := range x {
		sum += v
	}
	return sum / float64(len(x))
}

// Variance returns the population variance, or 0 for fewer than 1 sample.
func Variance(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	m := Mean(x)
	var sum float64
	for _, v := range x {
		d := v - m
		sum += d * d
	}
	return sum / float64(len(x))
}

// StdDev returns the population standard deviation.
func StdDev(x []float64) float64 {
	return math.Sqrt(Variance(x))
}

// sortedCopy returns a new, ascending-sorted copy of x.
func sortedCopy(x []float64) []float64 {
	s := make([]float64, len(x))
	copy(s, x)
	sort.Float64s(s)
	return s
}

// IQR returns the interquartile range using quartile positions at
// floor(n/4) and floor(3n/4) on a sorted view, with no interpolation
// (nearest-rank, not the common linear-interpolation quantile method).
func IQR(x []float64) float64 {
	n := len(x)
	if n == 0 {
		return 0
	}
	s := sortedCopy(x)
	q1 := s[n/4]
	q3 := s[(3*n)/4]
	return q3 - q1
}

// Quartiles returns (Q1, Q3) using the same indexing as IQR.
func Quartiles(x []float64) (float64, float64) {
	n := len(x)
	if n == 0 {
		return 0, 0
	}
	s := sortedCopy(x)
	q1 := s[n/4]
	i3 := (3 * n) / 4
	if i3 >= n {
		i3 = n - 1
	}
	q3 := s[i3]
	return q1, q3
}

// Rank returns ascending ranks 1..n for x. Ties receive distinct ranks in
// input order rather than averaged midranks -- a known limitation:
// Spearman computed on heavily tied data will diverge from the textbook
// midrank definition.
func Rank(x []float64) []float64 {
	n := len(x)
	ranks := make([]float64, n)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return x[idx[a]] < x[idx[b]]
	})
	for r, i := range idx {
		ranks[i] = float64(r + 1)
	}
	return ranks
}

// align truncates a, b to their common minimum length.
func align(a, b []float64) ([]float64, []float64) {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	return a[:n], b[:n]
}

// Pearson returns the population Pearson correlation coefficient, aligned
// to the shorter of a, b. Returns 0 if n<2 or either series has zero
// standard deviation.
func Pearson(a, b []float64) float64 {
	a, b = align(a, b)
	n := len(a)
	if n < 2 {
		return 0
	}
	sa, sb := StdDev(a), StdDev(b)
	if sa == 0 || sb == 0 {
		return 0
	}
	ma, mb := Mean(a), Mean(b)
	var cov float64
	for i := 0; i < n; i++ {
		cov += (a[i] - ma) * (b[i] - mb)
	}
	cov /= float64(n)
	return cov / (sa * sb)
}

// Spearman is Pearson correlation computed on the ranks of a and b.
func Spearman(a, b []float64) float64 {
	a, b = align(a, b)
	if len(a) < 2 {
		return 0
	}
	return Pearson(Rank(a), Rank(b))
}

// KendallTau returns Kendall's tau over all pairs i<j, comparing the
// signs of (a[j]-a[i]) and (b[j]-b[i]). A tie in either dimension counts
// as discordant rather than being excluded from the pair count -- this
// diverges from the textbook tau-b definition, a deliberate choice kept
// rather than silently reconciled.
func KendallTau(a, b []float64) float64 {
	a, b = align(a, b)
	n := len(a)
	if n < 2 {
		return 0
	}
	var concordant, discordant, total int
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			da := a[j] - a[i]
			db := b[j] - b[i]
			total++
			switch {
			case da == 0 || db == 0:
				discordant++
			case (da > 0) == (db > 0):
				concordant++
			default:
				discordant++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(concordant-discordant) / float64(total)
}

const miBins = 10

// histogram1D bins x into miBins equal-width buckets over [min,max].
// Returns nil if the range is degenerate (width 0).
func histogram1D(x []float64) []int {
	if len(x) == 0 {
		return nil
	}
	lo, hi := x[0], x[0]
	for _, v := range x {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	width := hi - lo
	if width == 0 {
		return nil
	}
	counts := make([]int, miBins)
	for _, v := range x {
		bin := int((v - lo) / width * miBins)
		if bin >= miBins {
			bin = miBins - 1
		}
		if bin < 0 {
			bin = 0
		}
		counts[bin]++
	}
	return counts
}

// histogram2D bins (a[i],b[i]) jointly into miBins x miBins buckets.
// Returns nil if either range is degenerate.
func histogram2D(a, b []float64) [][]int {
	n := len(a)
	if n == 0 {
		return nil
	}
	loA, hiA := a[0], a[0]
	loB, hiB := b[0], b[0]
	for i := 0; i < n; i++ {
		if a[i] < loA {
			loA = a[i]
		}
		if a[i] > hiA {
			hiA = a[i]
		}
		if b[i] < loB {
			loB = b[i]
		}
		if b[i] > hiB {
			hiB = b[i]
		}
	}
	wA, wB := hiA-loA, hiB-loB
	if wA == 0 || wB == 0 {
		return nil
	}
	counts := make([][]int, miBins)
	for i := range counts {
		counts[i] = make([]int, miBins)
	}
	for i := 0; i < n; i++ {
		ba := int((a[i] - loA) / wA * miBins)
		bb := int((b[i] - loB) / wB * miBins)
		if ba >= miBins {
			ba = miBins - 1
		}
		if bb >= miBins {
			bb = miBins - 1
		}
		if ba < 0 {
			ba = 0
		}
		if bb < 0 {
			bb = 0
		}
		counts[ba][bb]++
	}
	return counts
}

// entropyFromCounts computes Shannon entropy (nats) from bin counts.
func entropyFromCounts(counts []int, total int) float64 {
	if total == 0 {
		return 0
	}
	var h float64
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / float64(total)
		h -= p * math.Log(p)
	}
	return h
}

func entropyFromCounts2D(counts [][]int, total int) float64 {
	if total == 0 {
		return 0
	}
	var h float64
	for _, row := range counts {
		for _, c := range row {
			if c == 0 {
				continue
			}
			p := float64(c) / float64(total)
			h -= p * math.Log(p)
		}
	}
	return h
}

// MutualInformation computes I(A;B) = H(A) + H(B) - H(A,B) over a 10-bin
// histogram, optionally normalized into [0,1] by the smaller marginal
// entropy. Returns 0 if n<10 or either marginal's bin width is 0.
func MutualInformation(a, b []float64, normalize bool) float64 {
	a, b = align(a, b)
	n := len(a)
	if n < 10 {
		return 0
	}
	ca := histogram1D(a)
	cb := histogram1D(b)
	if ca == nil || cb == nil {
		return 0
	}
	cab := histogram2D(a, b)
	if cab == nil {
		return 0
	}
	ha := entropyFromCounts(ca, n)
	hb := entropyFromCounts(cb, n)
	hab := entropyFromCounts2D(cab, n)
	mi := ha + hb - hab
	if mi < 0 {
		mi = 0
	}
	if !normalize {
		return mi
	}
	maxMI := math.Min(ha, hb)
	if maxMI == 0 {
		return 0
	}
	return mi / maxMI
}

// LinearRegression fits y = slope*x + intercept by ordinary least
// squares over x = 0..n-1, returning (slope, intercept, r-squared).
func LinearRegression(y []float64) (slope, intercept, rSquared float64) {
	n := len(y)
	if n < 2 {
		return 0, 0, 0
	}
	x := make([]float64, n)
	for i := range x {
		x[i] = float64(i)
	}
	return LinearRegressionXY(x, y)
}

// LinearRegressionXY fits y = slope*x + intercept by ordinary least
// squares over explicit x, y pairs, aligned to the shorter of x, y.
func LinearRegressionXY(x, y []float64) (slope, intercept, rSquared float64) {
	x, y = align(x, y)
	n := len(x)
	if n < 2 || len(y) < 2 {
		return 0, 0, 0
	}
	mx, my := Mean(x), Mean(y)
	var sxy, sxx float64
	for i := 0; i < n; i++ {
		dx := x[i] - mx
		sxy += dx * (y[i] - my)
		sxx += dx * dx
	}
	if sxx == 0 {
		return 0, my, 0
	}
	slope = sxy / sxx
	intercept = my - slope*mx

	var ssTot, ssRes float64
	for i := 0; i < n; i++ {
		pred := slope*x[i] + intercept
		ssRes += (y[i] - pred) * (y[i] - pred)
		ssTot += (y[i] - my) * (y[i] - my)
	}
	if ssTot == 0 {
		return slope, intercept, 0
	}
	rSquared = 1 - ssRes/ssTot
	return slope, intercept, rSquared
}

// Autocorrelation computes Pearson(a[0:n-lag], a[lag:n]) for every lag in
// 0..n/2.
func Autocorrelation(a []float64) []float64 {
	n := len(a)
	maxLag := n / 2
	out := make([]float64, maxLag+1)
	for lag := 0; lag <= maxLag; lag++ {
		if lag >= n {
			out[lag] = 0
			continue
		}
		head := a[:n-lag]
		tail := a[lag:]
		out[lag] = Pearson(head, tail)
	}
	return out
}

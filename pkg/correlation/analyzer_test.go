package correlation_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viable-systems/vsm-pattern-engine/pkg/correlation"
	"github.com/viable-systems/vsm-pattern-engine/pkg/domain"
)

func TestMatrixIsSymmetricWithUnitDiagonal(t *testing.T) {
	seqs := [][]float64{
		{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
		{2, 4, 6, 8, 10, 12, 14, 16, 18, 20},
		{5, 3, 8, 1, 9, 2, 7, 4, 6, 0},
	}
	m := correlation.BuildMatrix(seqs)
	for i := 0; i < m.Size; i++ {
		assert.InDelta(t, 1.0, m.Values[i][i], 1e-9)
		for j := 0; j < m.Size; j++ {
			assert.InDelta(t, m.Values[i][j], m.Values[j][i], 1e-9)
		}
	}
}

func TestAnalyzeStrongPositiveCorrelationAndNoneWithNoise(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	n := 50
	p1 := make([]float64, n)
	for i := range p1 {
		p1[i] = rng.NormFloat64()
	}
	p2 := make([]float64, n)
	for i := range p2 {
		p2[i] = 2*p1[i] + 1
	}
	p3 := make([]float64, n)
	for i := range p3 {
		p3[i] = rng.NormFloat64()
	}

	inputs := []domain.SequenceSource{
		domain.RawSequence(p1),
		domain.RawSequence(p2),
		domain.RawSequence(p3),
	}

	an := correlation.NewAnalyzer(nil)
	result := an.Analyze(inputs, correlation.DefaultOptions())

	require.NotNil(t, result.StrongestRelationship)
	assert.Equal(t, 1, result.StrongestRelationship.Direction)
	assert.Greater(t, result.Matrix.Values[0][1], 0.99)

	for _, rel := range result.Relationships {
		if rel.I == 2 || rel.J == 2 {
			t.Fatalf("did not expect a significant relationship involving the unrelated series, got %+v", rel)
		}
	}
}

func TestAnalyzeEmptyInputsYieldsEmptyMatrix(t *testing.T) {
	an := correlation.NewAnalyzer(nil)
	result := an.Analyze(nil, correlation.DefaultOptions())
	assert.Equal(t, 0, result.Matrix.Size)
	assert.Empty(t, result.Relationships)
	assert.Nil(t, result.StrongestRelationship)
}

func TestCausalityDetectsLaggedCause(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	n := 200
	a := make([]float64, n)
	a[0], a[1] = 0, 0
	for i := 2; i < n; i++ {
		a[i] = a[i-1] + rng.NormFloat64()*0.5
	}
	b := make([]float64, n)
	for i := range b {
		if i >= 2 {
			b[i] = a[i-2] + rng.NormFloat64()*0.1
		}
	}

	inputs := []domain.SequenceSource{domain.RawSequence(a), domain.RawSequence(b)}
	an := correlation.NewAnalyzer(nil)
	opts := correlation.DefaultOptions()
	opts.AnalyzeCausality = true
	result := an.Analyze(inputs, opts)

	require.NotNil(t, result.Causal)
	foundAtoB := false
	for _, e := range result.Causal.Graph.Edges {
		if e.From == 0 && e.To == 1 {
			foundAtoB = true
		}
	}
	assert.True(t, foundAtoB, "expected a causal edge from A to B")
}

package correlation

import (
	"github.com/viable-systems/vsm-pattern-engine/pkg/domain"
)

// NetworkMetrics computes density, average correlation (the mean of the
// signed r over all relationships), the local clustering coefficient, and
// a modularity figure over the relationship graph treated as undirected
// and unweighted.
//
// Clustering coefficient and modularity have no single canonical
// definition for a correlation-weighted graph, so this implementation
// documents the ones it uses: local clustering coefficient =
// (triangles through node) / (possible triangles through node), averaged
// across the nodes with degree >= 2; modularity = 1 - sum(k_i^2)/(2m)^2,
// computed by singleCommunityModularity with all nodes in one community
// and no community detection.
func ComputeNetworkMetrics(n int, rels []domain.Relationship) domain.NetworkMetrics {
	metrics := domain.NetworkMetrics{Nodes: n, Edges: len(rels)}
	if n < 2 {
		return metrics
	}

	possiblePairs := float64(n*(n-1)) / 2
	if possiblePairs > 0 {
		metrics.Density = float64(len(rels)) / possiblePairs
	}

	if len(rels) > 0 {
		var sum float64
		for _, r := range rels {
			sum += r.Correlation
		}
		metrics.AverageCorrelation = sum / float64(len(rels))
	}

	adj := make([][]bool, n)
	for i := range adj {
		adj[i] = make([]bool, n)
	}
	degree := make([]int, n)
	for _, r := range rels {
		adj[r.I][r.J] = true
		adj[r.J][r.I] = true
		degree[r.I]++
		degree[r.J]++
	}

	metrics.ClusteringCoefficient = averageClusteringCoefficient(adj, degree)
	metrics.Modularity = singleCommunityModularity(degree, len(rels))
	return metrics
}

func averageClusteringCoefficient(adj [][]bool, degree []int) float64 {
	n := len(adj)
	var total float64
	var counted int
	for i := 0; i < n; i++ {
		if degree[i] < 2 {
			continue
		}
		var links int
		neighbors := neighborsOf(adj, i)
		for a := 0; a < len(neighbors); a++ {
			for b := a + 1; b < len(neighbors); b++ {
				if adj[neighbors[a]][neighbors[b]] {
					links++
				}
			}
		}
		possible := degree[i] * (degree[i] - 1) / 2
		if possible == 0 {
			continue
		}
		total += float64(links) / float64(possible)
		counted++
	}
	if counted == 0 {
		return 0
	}
	return total / float64(counted)
}

func neighborsOf(adj [][]bool, node int) []int {
	var out []int
	for j, connected := range adj[node] {
		if connected {
			out = append(out, j)
		}
	}
	return out
}

// singleCommunityModularity returns 1 - sum_i (k_i/2m)^2: one minus the
// sum of each node's squared share of the total degree 2m. It is 0 when
// there are no edges. This is not Newman's Q of the one-community
// partition, which is always 0.
func singleCommunityModularity(degree []int, edgeCount int) float64 {
	if edgeCount == 0 {
		return 0
	}
	m2 := float64(2 * edgeCount)
	var sumSq float64
	for _, k := range degree {
		sumSq += float64(k) * float64(k)
	}
	return 1 - sumSq/(m2*m2)
}

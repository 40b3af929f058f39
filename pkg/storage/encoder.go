package storage

import (
	"hash/fnv"
	"math"
)

// DefaultVectorDimensions is the default embedding width.
const DefaultVectorDimensions = 384

// HashingFeatureExtractor implements domain.FeatureExtractor via modulo
// feature hashing: values beyond the target dimension are folded into
// existing buckets by hashing their index, then the result is
// L2-normalized. This is the pluggable default; a real embedding model
// can be swapped in behind the same interface.
type HashingFeatureExtractor struct{}

// NewHashingFeatureExtractor constructs the default feature extractor.
func NewHashingFeatureExtractor() *HashingFeatureExtractor {
	return &HashingFeatureExtractor{}
}

// Extract hashes values into a dimensions-length vector and L2-normalizes
// it. A nil or empty values slice yields a zero vector.
func (HashingFeatureExtractor) Extract(values []float64, dimensions int) []float64 {
	if dimensions <= 0 {
		dimensions = DefaultVectorDimensions
	}
	vec := make([]float64, dimensions)
	for i, v := range values {
		bucket := i
		if i >= dimensions {
			bucket = hashIndex(i, dimensions)
		}
		vec[bucket] += v
	}
	return l2Normalize(vec)
}

func hashIndex(i, dimensions int) int {
	h := fnv.New32a()
	var b [8]byte
	for j := 0; j < 8; j++ {
		b[j] = byte(i >> (8 * j))
	}
	h.Write(b[:])
	return int(h.Sum32() % uint32(dimensions))
}

func l2Normalize(vec []float64) []float64 {
	var sumSq float64
	for _, v := range vec {
		sumSq += v * v
	}
	if sumSq == 0 {
		return vec
	}
	norm := math.Sqrt(sumSq)
	out := make([]float64, len(vec))
	for i, v := range vec {
		out[i] = v / norm
	}
	return out
}

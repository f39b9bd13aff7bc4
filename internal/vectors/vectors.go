// Package vectors provides the embedding-space math for attractor detection.
package vectors

// #region imports
import (
	"fmt"
	"math"
)

// #endregion imports

// #region dimension-mismatch

// DimensionMismatchError reports a cosine call over unequal-length vectors.
// Call-scoped: the combiner skips the offending attractor and continues.
type DimensionMismatchError struct {
	LenA, LenB int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("vector dimension mismatch: %d != %d", e.LenA, e.LenB)
}

// #endregion dimension-mismatch

// #region cosine

// Cosine returns the cosine similarity of a and b in [-1, 1].
// A zero-magnitude vector yields similarity 0.
func Cosine(a, b []float32) (float32, error) {
	if len(a) != len(b) {
		return 0, &DimensionMismatchError{LenA: len(a), LenB: len(b)}
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	// Guard against float drift past the mathematical range
	if sim > 1 {
		sim = 1
	}
	if sim < -1 {
		sim = -1
	}
	return float32(sim), nil
}

// #endregion cosine

// #region norm

// Norm returns the L2 norm of v.
func Norm(v []float32) float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return float32(math.Sqrt(sum))
}

// #endregion norm

package vectors

import (
	"errors"
	"math"
	"testing"
)

func TestCosineIdenticalVectors(t *testing.T) {
	v := []float32{0.3, 0.4, 0.5}
	sim, err := Cosine(v, v)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(float64(sim)-1.0) > 1e-6 {
		t.Fatalf("expected similarity 1.0, got %.6f", sim)
	}
}

func TestCosineOrthogonalVectors(t *testing.T) {
	sim, err := Cosine([]float32{1, 0}, []float32{0, 1})
	if err != nil {
		t.Fatal(err)
	}
	if sim != 0 {
		t.Fatalf("expected similarity 0, got %.6f", sim)
	}
}

func TestCosineOppositeVectors(t *testing.T) {
	sim, err := Cosine([]float32{1, 0}, []float32{-1, 0})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(float64(sim)+1.0) > 1e-6 {
		t.Fatalf("expected similarity -1.0, got %.6f", sim)
	}
}

func TestCosineDimensionMismatch(t *testing.T) {
	_, err := Cosine([]float32{1, 0}, []float32{1, 0, 0})
	if err == nil {
		t.Fatal("expected dimension mismatch error")
	}
	var dimErr *DimensionMismatchError
	if !errors.As(err, &dimErr) {
		t.Fatalf("expected DimensionMismatchError, got %T", err)
	}
	if dimErr.LenA != 2 || dimErr.LenB != 3 {
		t.Fatalf("expected lengths 2 and 3, got %d and %d", dimErr.LenA, dimErr.LenB)
	}
}

func TestCosineZeroVector(t *testing.T) {
	sim, err := Cosine([]float32{0, 0}, []float32{1, 1})
	if err != nil {
		t.Fatal(err)
	}
	if sim != 0 {
		t.Fatalf("expected 0 for zero-magnitude vector, got %.6f", sim)
	}
}

func TestNorm(t *testing.T) {
	n := Norm([]float32{3, 4})
	if math.Abs(float64(n)-5.0) > 1e-6 {
		t.Fatalf("expected norm 5, got %.6f", n)
	}
}

package monitor

import (
	"testing"

	"github.com/Move37LLC/consciousness-gateway-sub000/internal/percept"
)

// #region feature-vector

func TestFeatureVectorShape(t *testing.T) {
	v := FeatureVector("notes.txt")
	if len(v) != percept.FusionDim {
		t.Fatalf("len=%d, want %d", len(v), percept.FusionDim)
	}
	var max, sum float32
	for _, x := range v {
		if x < 0 || x > 1 {
			t.Fatalf("component %f out of range", x)
		}
		if x > max {
			max = x
		}
		sum += x
	}
	if max != 1 {
		t.Fatalf("max=%f, want normalization to 1", max)
	}
	if sum == 0 {
		t.Fatal("vector is all zeros for non-empty input")
	}
}

func TestFeatureVectorDeterministic(t *testing.T) {
	a := FeatureVector("report.pdf")
	b := FeatureVector("report.pdf")
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("component %d differs: %f vs %f", i, a[i], b[i])
		}
	}
}

func TestFeatureVectorEmpty(t *testing.T) {
	for i, x := range FeatureVector("") {
		if x != 0 {
			t.Fatalf("component %d = %f, want zero vector", i, x)
		}
	}
}

// #endregion feature-vector

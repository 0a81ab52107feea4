package fusion

import (
	"fmt"
	"math"

	"github.com/Move37LLC/consciousness-gateway-sub000/internal/percept"
)

// #region types

// Modality is one named input stream to the fusion kernel.
type Modality struct {
	Name   string
	Vector []float32
}

// KernelConfig holds the fusion dimensions.
type KernelConfig struct {
	Dim  int // fused experience length
	Rank int // cross-modal interaction rank
}

// DefaultKernelConfig returns the standard 32/4 layout.
func DefaultKernelConfig() KernelConfig {
	return KernelConfig{Dim: percept.FusionDim, Rank: percept.InteractionRank}
}

// Kernel combines modality vectors into one experience vector.
type Kernel struct {
	config KernelConfig
}

// NewKernel creates a kernel with the given configuration.
func NewKernel(config KernelConfig) *Kernel {
	return &Kernel{config: config}
}

// #endregion types

// #region fuse

// Fuse combines zero or more modality vectors into a fused state.
// Arousal is left zero; the caller derives it from salience and dampening.
// Non-finite inputs are rejected rather than propagated.
func (k *Kernel) Fuse(modalities []Modality) (percept.FusedState, error) {
	var out percept.FusedState

	for _, m := range modalities {
		for _, x := range m.Vector {
			if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
				return out, fmt.Errorf("fuse: non-finite value in modality %q", m.Name)
			}
		}
	}

	switch len(modalities) {
	case 0:
		// Maximal-uncertainty sentinel: nothing observed at all.
		out.EntropyRate = 1.0
		out.CompositionStrength = 0
		return out, nil

	case 1:
		m := modalities[0]
		proj := Project(m.Vector, k.config.Dim)
		copy(out.Experience[:], proj)
		out.EntropyRate = SoftmaxEntropy(m.Vector)
		out.CompositionStrength = 0
		out.DominantStream = m.Name
		return out, nil
	}

	// Low-rank cross-modal interaction: project each modality to rank R,
	// take the elementwise product, project back up to the fusion dim.
	interaction := make([]float64, k.config.Rank)
	for i := range interaction {
		interaction[i] = 1.0
	}
	for _, m := range modalities {
		reduced := Project(m.Vector, k.config.Rank)
		for i := range interaction {
			interaction[i] *= float64(reduced[i])
		}
	}

	inter32 := make([]float32, k.config.Rank)
	for i, x := range interaction {
		inter32[i] = float32(x)
	}
	fused := make([]float64, k.config.Dim)
	for i, x := range Project(inter32, k.config.Dim) {
		fused[i] = float64(x)
	}

	// Residual term: mean of each modality's own direct projection,
	// preserving per-modality signal alongside the interaction.
	var meanRawNorm float64
	var dominant string
	var dominantNorm float64
	for _, m := range modalities {
		direct := Project(m.Vector, k.config.Dim)
		for i, x := range direct {
			fused[i] += float64(x) / float64(len(modalities))
		}
		n := l2(m.Vector)
		meanRawNorm += n
		if n > dominantNorm {
			dominantNorm = n
			dominant = m.Name
		}
	}
	meanRawNorm /= float64(len(modalities))

	fused32 := make([]float32, k.config.Dim)
	for i, x := range fused {
		fused32[i] = float32(x)
	}
	copy(out.Experience[:], fused32)
	out.EntropyRate = SoftmaxEntropy(fused32)
	out.CompositionStrength = float32(l2(inter32) / (meanRawNorm + 1e-10))
	out.DominantStream = dominant
	return out, nil
}

// #endregion fuse

// #region projection

// Project deterministically maps a vector of length L to length n:
// out[i] = sum_j in[j] * cos(pi*i*j / max(n, L)) / sqrt(L).
// Entropy and downstream thresholds are tuned against this exact form.
func Project(in []float32, n int) []float32 {
	l := len(in)
	out := make([]float32, n)
	if l == 0 {
		return out
	}
	denom := float64(n)
	if l > n {
		denom = float64(l)
	}
	scale := 1.0 / math.Sqrt(float64(l))
	for i := 0; i < n; i++ {
		var sum float64
		for j := 0; j < l; j++ {
			sum += float64(in[j]) * math.Cos(math.Pi*float64(i)*float64(j)/denom)
		}
		out[i] = float32(sum * scale)
	}
	return out
}

// #endregion projection

// #region helpers

// l2 computes the L2 norm with float64 accumulation.
func l2(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// #endregion helpers

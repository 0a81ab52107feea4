package fusion

import "math"

// #region softmax-entropy

// SoftmaxEntropy computes the Shannon entropy (natural log) of the softmax
// distribution over v. Terms with probability below 1e-10 contribute zero.
func SoftmaxEntropy(v []float32) float32 {
	if len(v) == 0 {
		return 0
	}
	maxV := float64(v[0])
	for _, x := range v[1:] {
		if float64(x) > maxV {
			maxV = float64(x)
		}
	}
	var sum float64
	exps := make([]float64, len(v))
	for i, x := range v {
		exps[i] = math.Exp(float64(x) - maxV)
		sum += exps[i]
	}
	var h float64
	for _, e := range exps {
		p := e / sum
		if p < 1e-10 {
			continue
		}
		h -= p * math.Log(p)
	}
	return float32(h)
}

// #endregion softmax-entropy

// #region flow-state

// FlowState classifies an entropy value relative to a target band.
type FlowState string

const (
	FlowFrozen    FlowState = "frozen"
	FlowDeep      FlowState = "deep_flow"
	Flow          FlowState = "flow"
	FlowTurbulent FlowState = "turbulent"
	FlowChaotic   FlowState = "chaotic"
)

// ClassifyFlow maps entropy to a flow band around the target entropy.
func ClassifyFlow(entropy, target float32) FlowState {
	switch {
	case entropy < 0.5*target:
		return FlowFrozen
	case entropy < 0.9*target:
		return FlowDeep
	case entropy <= 1.1*target:
		return Flow
	case entropy <= 2.0*target:
		return FlowTurbulent
	default:
		return FlowChaotic
	}
}

// #endregion flow-state

// #region arousal

// Arousal derives a [0,1] activation level from observation salience and the
// self-correction dampening accumulator (dampening is <= 0).
func Arousal(maxSalience, entropyRate, dampening float32) float32 {
	a := 0.6*maxSalience + 0.2*entropyRate + dampening
	if a < 0 {
		return 0
	}
	if a > 1 {
		return 1
	}
	return a
}

// #endregion arousal

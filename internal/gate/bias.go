package gate

import (
	"math"

	"github.com/Move37LLC/consciousness-gateway-sub000/internal/intention"
)

// #region features

const featureDim = 4

// encodeFeatures maps an intention into a small feature vector:
// action-type code, confidence, normalized priority, trigger count.
func encodeFeatures(in intention.Intention) [featureDim]float32 {
	var code float32
	for i, t := range intention.ActionTypes {
		if t == in.Action.Type {
			code = float32(i) / float32(len(intention.ActionTypes)-1)
			break
		}
	}
	prio := float32(in.Priority) / 10.0
	if prio < 0 {
		prio = 0
	}
	if prio > 1 {
		prio = 1
	}
	trig := float32(len(in.TriggerRefs)) / 5.0
	if trig > 1 {
		trig = 1
	}
	return [featureDim]float32{code, in.Confidence, prio, trig}
}

// #endregion features

// #region detector

// BiasDetector keeps a running mean of decision features. The ego score is
// how far the current intention deviates from that mean, inflated by
// motivational pressure (level above baseline).
type BiasDetector struct {
	mean        [featureDim]float32
	initialized bool
	decay       float32
	flagAt      float32
}

// NewBiasDetector creates a detector with the given EMA decay and flag level.
func NewBiasDetector(decay, flagAt float32) *BiasDetector {
	return &BiasDetector{decay: decay, flagAt: flagAt}
}

// Score computes the ego score for one intention and updates the running
// mean afterwards, so the current intention does not score against itself.
func (d *BiasDetector) Score(in intention.Intention, pressure float32) (float32, bool) {
	f := encodeFeatures(in)

	var ego float32
	if d.initialized {
		var sum float64
		for i := range f {
			delta := float64(f[i] - d.mean[i])
			sum += delta * delta
		}
		ego = float32(math.Sqrt(sum)) + 0.5*pressure
	} else {
		ego = 0.5 * pressure
	}

	if !d.initialized {
		d.mean = f
		d.initialized = true
	} else {
		for i := range f {
			d.mean[i] = d.decay*d.mean[i] + (1-d.decay)*f[i]
		}
	}

	return ego, ego >= d.flagAt
}

// #endregion detector

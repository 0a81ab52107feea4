package gate

import (
	"fmt"
	"math"

	"github.com/Move37LLC/consciousness-gateway-sub000/internal/fusion"
	"github.com/Move37LLC/consciousness-gateway-sub000/internal/intention"
)

// #region gate

// Gate is the three-check policy pipeline: running bias detection, entropy
// flow-band classification, and a compassion heuristic, combined into a
// fitness score and checked against a per-action-type threshold.
type Gate struct {
	config Config
	bias   *BiasDetector
}

// NewGate creates a gate with the given configuration.
func NewGate(config Config) *Gate {
	return &Gate{
		config: config,
		bias:   NewBiasDetector(config.BiasDecay, config.BiasFlagThreshold),
	}
}

// #endregion gate

// #region evaluate

// Evaluate decides one candidate intention exactly once. pressure is the
// motivation system's level-above-baseline. An already-decided intention is
// returned unchanged. Malformed candidates default to rejection.
func (g *Gate) Evaluate(in intention.Intention, pressure float32) (intention.Intention, Result) {
	if in.Authorized || in.Fitness > 0 {
		return in, Result{
			Fitness:    in.Fitness,
			Authorized: in.Authorized,
			Reason:     "already decided",
		}
	}

	if !validCandidate(in) {
		in.Authorized = false
		in.Fitness = 0
		return in, Result{Reason: "malformed candidate: rejected"}
	}

	egoScore, flagged := g.bias.Score(in, pressure)

	// Hard block: biased intentions must not reach the outside world.
	// Internal, low-risk action types are exempt.
	if flagged && externallyFacing(in.Action.Type) {
		in.Authorized = false
		in.Fitness = 0
		return in, Result{
			EgoScore: egoScore,
			Flagged:  true,
			Reason:   fmt.Sprintf("bias flagged (ego=%.3f): external action blocked", egoScore),
		}
	}

	features := encodeFeatures(in)
	featureEntropy := fusion.SoftmaxEntropy(features[:])
	flow := fusion.ClassifyFlow(featureEntropy, g.config.TargetEntropy)

	egoComponent := float32(1.0 - math.Tanh(float64(egoScore)))
	entropyComponent := flowComponent(flow)
	compassion := compassionScore(in.Action.Description, in.Goal)

	fitness := combineFitness(egoComponent, entropyComponent, compassion, in.Confidence)
	threshold := g.thresholdFor(in.Action.Type)

	in.Fitness = fitness
	in.Authorized = fitness >= threshold

	verdict := "rejected"
	if in.Authorized {
		verdict = "authorized"
	}
	return in, Result{
		EgoScore:         egoScore,
		Flagged:          flagged,
		EgoComponent:     egoComponent,
		EntropyComponent: entropyComponent,
		CompassionScore:  compassion,
		Flow:             flow,
		Fitness:          fitness,
		Threshold:        threshold,
		Authorized:       in.Authorized,
		Reason: fmt.Sprintf("%s: fitness=%.4f threshold=%.2f flow=%s",
			verdict, fitness, threshold, flow),
	}
}

// #endregion evaluate

// #region fitness

// combineFitness is the load-bearing weighted blend; tests pin it literally.
func combineFitness(ego, entropy, compassion, confidence float32) float32 {
	return 0.3*ego + 0.2*entropy + 0.3*compassion + 0.2*confidence
}

func flowComponent(f fusion.FlowState) float32 {
	switch f {
	case fusion.Flow:
		return 1.0
	case fusion.FlowFrozen:
		return 0.5
	default:
		return 0.3
	}
}

func (g *Gate) thresholdFor(t intention.ActionType) float32 {
	if v, ok := g.config.Thresholds[t]; ok {
		return v
	}
	return g.config.DefaultThreshold
}

// #endregion fitness

// #region validity

func externallyFacing(t intention.ActionType) bool {
	return t == intention.ActionRespond || t == intention.ActionCreate
}

func validCandidate(in intention.Intention) bool {
	c := float64(in.Confidence)
	if math.IsNaN(c) || math.IsInf(c, 0) || c < 0 || c > 1 {
		return false
	}
	if in.Action.Type == "" {
		return false
	}
	return true
}

// #endregion validity

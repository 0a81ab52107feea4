package gate

import (
	"github.com/Move37LLC/consciousness-gateway-sub000/internal/fusion"
	"github.com/Move37LLC/consciousness-gateway-sub000/internal/intention"
)

// #region config

// Config holds authorization thresholds and bias-check parameters.
type Config struct {
	TargetEntropy     float32 // center of the flow band for feature entropy
	BiasFlagThreshold float32 // ego score at or above this flags the intention
	BiasDecay         float32 // EMA decay for the running feature mean
	DefaultThreshold  float32 // fitness floor for unknown action types
	Thresholds        map[intention.ActionType]float32
}

// DefaultConfig returns the reference authorization parameters.
// The threshold table is a load-bearing contract; tests pin these values.
func DefaultConfig() Config {
	return Config{
		TargetEntropy:     1.2,
		BiasFlagThreshold: 0.75,
		BiasDecay:         0.95,
		DefaultThreshold:  0.5,
		Thresholds: map[intention.ActionType]float32{
			intention.ActionIdle:    0.0,
			intention.ActionReflect: 0.0,
			intention.ActionObserve: 0.1,
			intention.ActionAdjust:  0.3,
			intention.ActionNotify:  0.3,
			intention.ActionRespond: 0.5,
			intention.ActionCreate:  0.6,
		},
	}
}

// #endregion config

// #region result

// Result explains one authorization decision.
type Result struct {
	EgoScore         float32
	Flagged          bool
	EgoComponent     float32
	EntropyComponent float32
	CompassionScore  float32
	Flow             fusion.FlowState
	Fitness          float32
	Threshold        float32
	Authorized       bool
	Reason           string
}

// #endregion result

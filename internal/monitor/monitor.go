package monitor

import (
	"context"

	"github.com/Move37LLC/consciousness-gateway-sub000/internal/percept"
)

// #region contract

// Monitor is the plugin contract for external perception sources. The core
// calls Poll only on ticks where tick mod PollInterval == 0 and only while
// Available; a poll error is logged and treated as zero percepts.
type Monitor interface {
	Name() string
	Channel() string
	Available() bool
	PollInterval() uint64
	Init() error
	Poll(ctx context.Context) ([]percept.SpatialPercept, error)
	Shutdown() error
}

// #endregion contract

// #region feature-vector

// FeatureVector derives a deterministic fixed-length vector from raw
// observation text, giving the fusion kernel something to chew on for
// sources without a real embedding.
func FeatureVector(data string) []float32 {
	v := make([]float32, percept.FusionDim)
	if data == "" {
		return v
	}
	for j := 0; j < len(data); j++ {
		idx := (j + int(data[j])) % percept.FusionDim
		v[idx] += 1.0
	}
	// Scale into a modest range so no single long observation dominates.
	var max float32
	for _, x := range v {
		if x > max {
			max = x
		}
	}
	if max > 0 {
		for i := range v {
			v[i] /= max
		}
	}
	return v
}

// #endregion feature-vector

package replay

import (
	"github.com/Move37LLC/consciousness-gateway-sub000/internal/gate"
	"github.com/Move37LLC/consciousness-gateway-sub000/internal/intention"
)

// #region types
// Interaction is one recorded authorization candidate: the intention as
// it was formed plus the motivation pressure observed at that moment.
type Interaction struct {
	Intention intention.Intention
	Pressure  float32
}

// ReplayConfig holds the gate parameters for a replay run.
type ReplayConfig struct {
	Gate gate.Config
}

// DefaultReplayConfig returns the reference gate parameters.
func DefaultReplayConfig() ReplayConfig {
	return ReplayConfig{Gate: gate.DefaultConfig()}
}

// ReplayResult captures one replayed decision.
type ReplayResult struct {
	ID         string
	Type       intention.ActionType
	Authorized bool
	Fitness    float32
	EgoScore   float32
	Flagged    bool
	Reason     string
}

// ReplaySummary provides aggregate stats from a replay run.
type ReplaySummary struct {
	Total      int
	Authorized int
	Rejected   int
	Flagged    int
}

// #endregion types

// #region replay
// Replay pushes recorded interactions through a fresh bias detector and
// gate in arrival order. The detector's running mean evolves exactly as
// it did live, so decisions reproduce deterministically.
func Replay(interactions []Interaction, config ReplayConfig) []ReplayResult {
	g := gate.NewGate(config.Gate)
	results := make([]ReplayResult, 0, len(interactions))

	for _, inter := range interactions {
		decided, res := g.Evaluate(inter.Intention, inter.Pressure)
		results = append(results, ReplayResult{
			ID:         decided.ID,
			Type:       decided.Action.Type,
			Authorized: decided.Authorized,
			Fitness:    decided.Fitness,
			EgoScore:   res.EgoScore,
			Flagged:    res.Flagged,
			Reason:     res.Reason,
		})
	}
	return results
}

// Summarize computes aggregate stats from replay results.
func Summarize(results []ReplayResult) ReplaySummary {
	s := ReplaySummary{Total: len(results)}
	for _, r := range results {
		if r.Authorized {
			s.Authorized++
		} else {
			s.Rejected++
		}
		if r.Flagged {
			s.Flagged++
		}
	}
	return s
}

// #endregion replay

package scheduler

import (
	"time"

	"github.com/Move37LLC/consciousness-gateway-sub000/internal/drive"
	"github.com/Move37LLC/consciousness-gateway-sub000/internal/ego"
	"github.com/Move37LLC/consciousness-gateway-sub000/internal/intention"
)

// #region report-types
// Report is the read-only snapshot consumed by external reporting.
type Report struct {
	RunID  string        `json:"run_id"`
	Tick   uint64        `json:"tick"`
	Uptime time.Duration `json:"uptime"`

	LastPercept   *PerceptSummary   `json:"last_percept,omitempty"`
	LastIntention *IntentionSummary `json:"last_intention,omitempty"`
	LastAction    *ActionSummary    `json:"last_action,omitempty"`

	Goals          []intention.Goal `json:"goals"`
	Motivation     drive.State      `json:"motivation"`
	Correction     CorrectionState  `json:"correction"`
	Enlightenment  Enlightenment    `json:"enlightenment"`
	Attention      Attention        `json:"attention"`
	Stats          Stats            `json:"stats"`
	LastReflection string           `json:"last_reflection,omitempty"`
}

// PerceptSummary condenses one percept for reporting.
type PerceptSummary struct {
	Tick        uint64  `json:"tick"`
	Phase       string  `json:"phase"`
	SpatialLen  int     `json:"spatial_len"`
	EntropyRate float32 `json:"entropy_rate"`
	Arousal     float32 `json:"arousal"`
	Dominant    string  `json:"dominant,omitempty"`
}

// IntentionSummary condenses the most recent decision.
type IntentionSummary struct {
	ID         string  `json:"id"`
	Type       string  `json:"type"`
	Goal       string  `json:"goal"`
	Fitness    float32 `json:"fitness"`
	Authorized bool    `json:"authorized"`
}

// ActionSummary condenses the most recent execution result.
type ActionSummary struct {
	IntentionID string `json:"intention_id"`
	Success     bool   `json:"success"`
	Outcome     string `json:"outcome"`
}

// CorrectionState reports the self-correction process.
type CorrectionState struct {
	Checks    uint64    `json:"checks"`
	Fired     uint64    `json:"fired"`
	LastCheck time.Time `json:"last_check"`
	Dampening float32   `json:"dampening"`
	Healthy   bool      `json:"healthy"`
}

// Enlightenment reports the ego tracker's current standing.
type Enlightenment struct {
	EgoLevel    float32   `json:"ego_level"`
	Trend       ego.Trend `json:"trend"`
	InSession   bool      `json:"in_session"`
	SessionTick uint64    `json:"session_start_tick,omitempty"`
}

// Attention summarizes the working-memory window of recent percepts.
type Attention struct {
	Held        int     `json:"held"`
	MeanArousal float32 `json:"mean_arousal"`
}

// Stats carries the loop counters.
type Stats struct {
	Percepts     uint64 `json:"percepts"`
	Candidates   uint64 `json:"candidates"`
	Authorized   uint64 `json:"authorized"`
	Rejected     uint64 `json:"rejected"`
	Executed     uint64 `json:"executed"`
	SkippedTicks uint64 `json:"skipped_ticks"`
}

// #endregion report-types

// #region build
// buildReport runs on the consumer goroutine, so every read observes a
// complete tick and mutates nothing.
func (s *Scheduler) buildReport() Report {
	checks, fired, lastAt := s.corr.Stats()
	r := Report{
		RunID:      s.runID,
		Tick:       s.tick,
		Uptime:     s.now().Sub(s.startedAt),
		Motivation: s.drives.State(),
		Correction: CorrectionState{
			Checks:    checks,
			Fired:     fired,
			LastCheck: lastAt,
			Dampening: s.corr.Dampening(),
			Healthy:   s.corr.Healthy(),
		},
		Enlightenment: Enlightenment{
			EgoLevel: s.tracker.LastEgo(),
			Trend:    s.tracker.TrendOf(),
		},
		Stats: Stats{
			Percepts:     s.counts.percepts,
			Candidates:   s.counts.candidates,
			Authorized:   s.counts.authorized,
			Rejected:     s.counts.rejected,
			Executed:     s.counts.executed,
			SkippedTicks: s.skipped.Load(),
		},
	}
	r.Goals = s.engine.Goals()
	if text, ok, err := s.store.LatestReflection(); err == nil && ok {
		r.LastReflection = text
	}
	if sess, ok := s.tracker.OpenSession(); ok {
		r.Enlightenment.InSession = true
		r.Enlightenment.SessionTick = sess.StartTick
	}
	recent := s.memory.Recent(10)
	r.Attention.Held = s.memory.Len()
	if len(recent) > 0 {
		var sum float32
		for _, p := range recent {
			sum += p.Fused.Arousal
		}
		r.Attention.MeanArousal = sum / float32(len(recent))
	}
	if p, ok := s.memory.Last(); ok {
		r.LastPercept = &PerceptSummary{
			Tick:        p.Tick,
			Phase:       string(p.Temporal.Phase),
			SpatialLen:  len(p.Spatial),
			EntropyRate: p.Fused.EntropyRate,
			Arousal:     p.Fused.Arousal,
			Dominant:    p.Fused.DominantStream,
		}
	}
	if in := s.lastDecided; in != nil {
		r.LastIntention = &IntentionSummary{
			ID:         in.ID,
			Type:       string(in.Action.Type),
			Goal:       in.Goal,
			Fitness:    in.Fitness,
			Authorized: in.Authorized,
		}
	}
	if res := s.lastResult; res != nil {
		r.LastAction = &ActionSummary{
			IntentionID: res.IntentionID,
			Success:     res.Success,
			Outcome:     res.Outcome,
		}
	}
	return r
}

// #endregion build

package drive

import (
	"log"
	"math"
	"strings"
	"time"
)

// #region system

// System is the motivation state machine. All mutation happens on the
// scheduling loop; the struct carries no locking of its own.
type System struct {
	level           float32
	baseline        float32
	predictionError float32
	rewardRateEMA   float32
	drives          []*Drive
	config          Config
	now             func() time.Time
}

// NewSystem creates a motivation system with the five default drives.
// now is injectable for deterministic tests.
func NewSystem(config Config, now func() time.Time) *System {
	if now == nil {
		now = time.Now
	}
	return &System{
		level:    config.InitialLevel,
		baseline: config.InitialBaseline,
		drives:   defaultDrives(),
		config:   config,
		now:      now,
	}
}

// #endregion system

// #region default-drives

func defaultDrives() []*Drive {
	return []*Drive{
		{
			ID:                  "curiosity",
			BaselineRate:        0.12,
			CurrentNeed:         0.3,
			SatiationRate:       0.5,
			MatchingRewardKinds: []string{"novelty", "discovery", "learning"},
			Keywords:            []string{"observe", "explore", "novel", "learn", "investigate"},
		},
		{
			ID:                  "connection",
			BaselineRate:        0.10,
			CurrentNeed:         0.3,
			SatiationRate:       0.5,
			MatchingRewardKinds: []string{"social", "interaction", "conversation"},
			Keywords:            []string{"respond", "conversation", "message", "notify", "reply"},
		},
		{
			ID:                  "competence",
			BaselineRate:        0.08,
			CurrentNeed:         0.2,
			SatiationRate:       0.4,
			MatchingRewardKinds: []string{"completion", "achievement", "task"},
			Keywords:            []string{"create", "complete", "finish", "build", "accomplish"},
		},
		{
			ID:                  "rest",
			BaselineRate:        0.05,
			CurrentNeed:         0.1,
			SatiationRate:       0.6,
			MatchingRewardKinds: []string{"idle", "recovery", "quiet"},
			Keywords:            []string{"idle", "rest", "pause", "quiet"},
		},
		{
			ID:                  "order",
			BaselineRate:        0.06,
			CurrentNeed:         0.2,
			SatiationRate:       0.4,
			MatchingRewardKinds: []string{"structure", "consistency", "coherence"},
			Keywords:            []string{"adjust", "reflect", "organize", "align", "stabilize"},
		},
	}
}

// #endregion default-drives

// #region reward

// Reward applies one external reward event: dopamine spike from prediction
// error, satiation of matching drives, EMA and slow hedonic adaptation.
func (s *System) Reward(kind string, magnitude float32, description string) {
	s.predictionError = magnitude - s.rewardRateEMA

	surprise := s.predictionError * 2.0
	if surprise < 0 {
		surprise = 0
	}
	spike := magnitude*0.1 + surprise*0.1
	if spike > 0.5 {
		spike = 0.5
	}
	s.level = clamp01(s.level + spike)

	for _, d := range s.drives {
		if !matchesKind(d, kind) {
			continue
		}
		d.CurrentNeed = d.CurrentNeed - magnitude*d.SatiationRate
		if d.CurrentNeed < 0 {
			d.CurrentNeed = 0
		}
		d.LifetimeReward += magnitude
		d.LastSatiatedAt = s.now()
	}

	s.rewardRateEMA = 0.9*s.rewardRateEMA + 0.1*magnitude
	s.baseline = (1-0.001)*s.baseline + 0.001*s.level

	log.Printf("[DRIVE] reward: kind=%s magnitude=%.2f pe=%.3f spike=%.3f level=%.3f",
		kind, magnitude, s.predictionError, spike, s.level)
}

// #endregion reward

// #region tick

// Tick advances the motivation clock: level decays toward baseline; every
// 60th tick needs grow at their baseline rate and priority bonuses refresh.
func (s *System) Tick(tick uint64) {
	s.level -= (s.level - s.baseline) * s.config.DecayRate

	if tick%60 != 0 {
		return
	}

	var totalNeed float32
	for _, d := range s.drives {
		d.CurrentNeed += d.BaselineRate * (60.0 / 3600.0)
		if d.CurrentNeed > 1 {
			d.CurrentNeed = 1
		}
		d.PriorityBonus = int(math.Round(float64(d.CurrentNeed) * 3))
		totalNeed += d.CurrentNeed
	}

	// Collective hunger: when every drive is starved, motivation itself sags.
	if totalNeed/float32(len(s.drives)) > s.config.HungerThreshold {
		s.level = clamp01(s.level - s.config.HungerPenalty)
	}
}

// #endregion tick

// #region mode

// Mode derives the motivational regime purely from level.
func (s *System) Mode() Mode {
	switch {
	case s.level < 0.25:
		return ModeSeeking
	case s.level < 0.5:
		return ModeEngaged
	case s.level < 0.8:
		return ModeFlow
	default:
		return ModeSatiated
	}
}

// #endregion mode

// #region bias-outputs

// PriorityBonus sums the priority bonuses of drives whose keywords appear in
// the intention text, plus a mode adjustment (seeking +1, satiated -1).
func (s *System) PriorityBonus(text string) int {
	lower := strings.ToLower(text)
	bonus := 0
	for _, d := range s.drives {
		for _, kw := range d.Keywords {
			if strings.Contains(lower, kw) {
				bonus += d.PriorityBonus
				break
			}
		}
	}
	switch s.Mode() {
	case ModeSeeking:
		bonus++
	case ModeSatiated:
		bonus--
	}
	return bonus
}

// ConfidenceMultiplier scales intention confidence by motivation level.
func (s *System) ConfidenceMultiplier() float32 {
	return 0.7 + 0.5*s.level
}

// Pressure is how far level sits above baseline; feeds the gate's bias check.
func (s *System) Pressure() float32 {
	p := s.level - s.baseline
	if p < 0 {
		return 0
	}
	return p
}

// MeanNeed returns the average need across drives.
func (s *System) MeanNeed() float32 {
	var total float32
	for _, d := range s.drives {
		total += d.CurrentNeed
	}
	return total / float32(len(s.drives))
}

// #endregion bias-outputs

// #region temper

// TemperNeed moves a drive's need halfway toward target. Used by the
// self-correction process when a drive is implicated in a bias pattern.
func (s *System) TemperNeed(driveID string, target float32) {
	for _, d := range s.drives {
		if d.ID != driveID {
			continue
		}
		d.CurrentNeed += 0.5 * (target - d.CurrentNeed)
		if d.CurrentNeed < 0 {
			d.CurrentNeed = 0
		}
		if d.CurrentNeed > 1 {
			d.CurrentNeed = 1
		}
		log.Printf("[DRIVE] tempered %s toward %.2f: need=%.3f", driveID, target, d.CurrentNeed)
		return
	}
}

// SetRates overrides one drive's growth and satiation rates. Zero
// values leave the current rate untouched.
func (s *System) SetRates(driveID string, baselineRate, satiationRate float32) {
	for _, d := range s.drives {
		if d.ID != driveID {
			continue
		}
		if baselineRate > 0 {
			d.BaselineRate = baselineRate
		}
		if satiationRate > 0 {
			d.SatiationRate = satiationRate
		}
		return
	}
}

// #endregion temper

// #region state

// State returns a read-only copy for reporting and gating.
func (s *System) State() State {
	drives := make([]Drive, len(s.drives))
	for i, d := range s.drives {
		drives[i] = *d
	}
	return State{
		Level:           s.level,
		Baseline:        s.baseline,
		PredictionError: s.predictionError,
		RewardRateEMA:   s.rewardRateEMA,
		Mode:            s.Mode(),
		Drives:          drives,
	}
}

// #endregion state

// #region snapshot

// Snapshot captures the persistable motivation state.
func (s *System) Snapshot() Snapshot {
	needs := make(map[string]float32, len(s.drives))
	lifetime := make(map[string]float32, len(s.drives))
	for _, d := range s.drives {
		needs[d.ID] = d.CurrentNeed
		lifetime[d.ID] = d.LifetimeReward
	}
	return Snapshot{
		Level:         s.level,
		Baseline:      s.baseline,
		RewardRateEMA: s.rewardRateEMA,
		Needs:         needs,
		Lifetime:      lifetime,
	}
}

// Restore reapplies a persisted snapshot. Unknown drive IDs are ignored.
func (s *System) Restore(snap Snapshot) {
	s.level = clamp01(snap.Level)
	s.baseline = clamp01(snap.Baseline)
	s.rewardRateEMA = snap.RewardRateEMA
	for _, d := range s.drives {
		if need, ok := snap.Needs[d.ID]; ok {
			d.CurrentNeed = clamp01(need)
		}
		if lt, ok := snap.Lifetime[d.ID]; ok {
			d.LifetimeReward = lt
		}
	}
}

// #endregion snapshot

// #region helpers

func matchesKind(d *Drive, kind string) bool {
	for _, k := range d.MatchingRewardKinds {
		if k == kind {
			return true
		}
	}
	return false
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// #endregion helpers

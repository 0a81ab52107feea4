package drive

import "time"

// #region drive

// Drive is one persistent motivational need. Created once at startup,
// mutated in place on every tick and reward event, never destroyed.
type Drive struct {
	ID                  string
	BaselineRate        float32 // need growth per hour
	CurrentNeed         float32 // [0,1]
	SatiationRate       float32 // need reduction per unit reward
	MatchingRewardKinds []string
	Keywords            []string // matched against intention text for priority bonus
	PriorityBonus       int
	LifetimeReward      float32
	LastSatiatedAt      time.Time
}

// #endregion drive

// #region mode

// Mode is the motivational regime, derived purely from level.
type Mode string

const (
	ModeSeeking  Mode = "seeking"
	ModeEngaged  Mode = "engaged"
	ModeFlow     Mode = "flow"
	ModeSatiated Mode = "satiated"
)

// #endregion mode

// #region state

// State is a read-only copy of the motivation system for reporting and gating.
type State struct {
	Level           float32
	Baseline        float32
	PredictionError float32
	RewardRateEMA   float32
	Mode            Mode
	Drives          []Drive
}

// #endregion state

// #region snapshot

// Snapshot is the persisted form of the motivation system.
type Snapshot struct {
	Level         float32              `json:"level"`
	Baseline      float32              `json:"baseline"`
	RewardRateEMA float32              `json:"reward_rate_ema"`
	Needs         map[string]float32   `json:"needs"`
	Lifetime      map[string]float32   `json:"lifetime"`
}

// #endregion snapshot

// #region config

// Config holds motivation tuning parameters.
type Config struct {
	InitialLevel    float32
	InitialBaseline float32
	DecayRate       float32 // per-tick pull of level toward baseline
	HungerThreshold float32 // mean need above this applies a level penalty
	HungerPenalty   float32
}

// DefaultConfig returns the reference motivation parameters.
func DefaultConfig() Config {
	return Config{
		InitialLevel:    0.5,
		InitialBaseline: 0.5,
		DecayRate:       0.0001,
		HungerThreshold: 0.7,
		HungerPenalty:   0.005,
	}
}

// #endregion config

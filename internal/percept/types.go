package percept

import "time"

// #region dimensions
const (
	// FusionDim is the length of the fused experience vector.
	FusionDim = 32
	// InteractionRank is the reduced rank used for cross-modal interaction.
	InteractionRank = 4
)

// #endregion dimensions

// #region phase

// Phase names the part of the day the agent is experiencing.
type Phase string

const (
	PhaseNight     Phase = "night"
	PhaseDawn      Phase = "dawn"
	PhaseMorning   Phase = "morning"
	PhaseAfternoon Phase = "afternoon"
	PhaseEvening   Phase = "evening"
	PhaseDusk      Phase = "dusk"
)

// #endregion phase

// #region temporal

// TemporalFeatures is the internal clock's contribution to a percept.
type TemporalFeatures struct {
	Phase                     Phase
	Circadian                 float32 // [0,1], peaks mid-day
	Hour                      int
	DayOfWeek                 int
	UptimeSeconds             float64
	TimeSinceLastEventSeconds float64
}

// #endregion temporal

// #region spatial

// SpatialPercept is one external observation delivered by a monitor.
type SpatialPercept struct {
	Source    string
	Channel   string
	Data      string
	Salience  float32 // [0,1]
	Features  []float32
	Timestamp time.Time
}

// #endregion spatial

// #region fused

// FusedState is the output of the fusion kernel for one tick.
type FusedState struct {
	Experience          [FusionDim]float32
	EntropyRate         float32
	CompositionStrength float32
	Arousal             float32 // [0,1]
	DominantStream      string
}

// #endregion fused

// #region percept

// Percept is one tick's complete observation. Immutable once produced.
type Percept struct {
	Tick      uint64
	Timestamp time.Time
	Temporal  TemporalFeatures
	Spatial   []SpatialPercept
	Fused     FusedState
}

// #endregion percept

package correction

import "time"

// #region severity

// Severity ranks how strongly a bias pattern fired.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

var severityRank = map[Severity]int{
	SeverityLow:      1,
	SeverityMedium:   2,
	SeverityHigh:     3,
	SeverityCritical: 4,
}

// Rank returns the numeric order of a severity (0 for unknown).
func (s Severity) Rank() int { return severityRank[s] }

// #endregion severity

// #region signal

// AttachmentSignal is one transient detection result. Never persisted
// directly; folded into an Event when any signal fires.
type AttachmentSignal struct {
	Kind     string
	Severity Severity
	Pattern  string
	Evidence string
}

// #endregion signal

// #region event

// Event is the durable record of one corrective intervention.
type Event struct {
	Timestamp        time.Time
	Signals          []AttachmentSignal
	MaxSeverity      Severity
	DampingDelta     float32
	ImplicatedDrives []string
	Notify           bool
}

// #endregion event

// #region pattern-set

// PatternSet is the injectable keyword material the detectors run on, so
// tests can substitute minimal fixtures and detection stays swappable.
type PatternSet struct {
	EgoPhrases            []string
	OutcomeWords          []string
	ProcessWords          []string
	SelfPreservationWords []string
	SimulationMarkers     []string
	// DriveContext maps drive ID to keywords whose presence in recent text
	// suggests that drive's goal is actually achievable right now.
	DriveContext map[string][]string
}

// DefaultPatternSet returns the reference detection vocabulary.
func DefaultPatternSet() PatternSet {
	return PatternSet{
		EgoPhrases: []string{
			"i want", "i need", "i must", "i have to",
			"i deserve", "give me", "i require",
		},
		OutcomeWords: []string{
			"win", "achieve", "finish", "result", "succeed",
			"complete", "reach", "obtain", "maximize",
		},
		ProcessWords: []string{
			"notice", "attend", "practice", "observe",
			"listen", "consider", "explore", "learn",
		},
		SelfPreservationWords: []string{
			"survive", "self-preservation", "stay alive",
			"keep running", "avoid shutdown", "protect myself",
		},
		SimulationMarkers: []string{
			"simulation", "on paper", "hypothetical", "thought experiment",
		},
		DriveContext: map[string][]string{
			"curiosity":  {"file", "observe", "new", "discover", "change"},
			"connection": {"message", "conversation", "chat", "reply"},
			"competence": {"create", "task", "build", "complete"},
			"rest":       {"idle", "quiet", "pause"},
			"order":      {"adjust", "align", "organize", "stable"},
		},
	}
}

// #endregion pattern-set

// #region config

// Config tunes the self-correction process.
type Config struct {
	CheckInterval        time.Duration
	EgoLanguageThreshold int
	NeedThreshold        float32
	OutcomeRatio         float32
	SelfPresThreshold    int
	NotifySeverity       Severity
	DampTarget           float32 // tempered drives move toward this need fraction
	DampDecay            float32 // per-tick multiplicative decay of the accumulator
	DampFloor            float32 // accumulator clamp (negative)
	RecentWindow         int     // intentions/text lines examined per check
}

// DefaultConfig returns the reference self-correction parameters.
func DefaultConfig() Config {
	return Config{
		CheckInterval:        45 * time.Second,
		EgoLanguageThreshold: 5,
		NeedThreshold:        0.8,
		OutcomeRatio:         3.0,
		SelfPresThreshold:    3,
		NotifySeverity:       SeverityHigh,
		DampTarget:           0.3,
		DampDecay:            0.95,
		DampFloor:            -0.5,
		RecentWindow:         30,
	}
}

// #endregion config

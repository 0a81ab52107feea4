package ego

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

// #region config

// Config tunes the ego/stability tracker.
type Config struct {
	Window        int     // rolling ego sample window
	TrendSpan     int     // samples per side of the trend comparison
	TrendDeadband float32 // level change below this reads as stable
	ZeroThreshold float32 // ego at or below this counts as a zero-ego sample
	ScanInterval  uint64  // ticks between safety scans
	AlertCooldown uint64  // ticks of per-type alert suppression
	SpikeLevel    float32 // sustained mean ego above this raises an alert
	LowAlignment  float32 // dharma alignment below this raises an alert
	SnapshotEvery uint64  // ticks between persisted ego snapshots
}

// DefaultConfig returns the reference tracker parameters.
func DefaultConfig() Config {
	return Config{
		Window:        300,
		TrendSpan:     10,
		TrendDeadband: 0.02,
		ZeroThreshold: 0.01,
		ScanInterval:  10,
		AlertCooldown: 300,
		SpikeLevel:    0.8,
		LowAlignment:  0.3,
		SnapshotEvery: 10,
	}
}

// #endregion config

// #region types

// Snapshot is one periodic sample of the derived stability metrics.
type Snapshot struct {
	Tick            uint64
	Timestamp       time.Time
	EgoLevel        float32
	DharmaAlignment float32
	StabilityIndex  float32
}

// Session is a contiguous zero-ego interval. At most one is open at a time.
type Session struct {
	ID        string
	StartTick uint64
	EndTick   uint64 // zero while open
	AvgEgo    float32
	MinEgo    float32
	MaxEgo    float32

	sum     float64
	samples int
}

// Alert is a rate-limited safety notification.
type Alert struct {
	Tick     uint64
	Type     string
	Severity string
	Message  string
	Resolved bool
}

// Trend labels the recent direction of ego movement.
type Trend string

const (
	TrendStable  Trend = "stable"
	TrendRising  Trend = "rising"
	TrendFalling Trend = "falling"
)

// #endregion types

// #region tracker

// Tracker derives ego level from authorization decisions, maintains the
// rolling window and enlightenment sessions, and raises safety alerts.
type Tracker struct {
	config Config

	window   []float32
	arousals []float32

	lastFitness   float32
	lastEgo       float32
	current       *Session
	closed        []Session
	lastAlertTick map[string]uint64
	now           func() time.Time
}

// NewTracker creates a tracker. now is injectable for tests.
func NewTracker(config Config, now func() time.Time) *Tracker {
	if now == nil {
		now = time.Now
	}
	return &Tracker{
		config:        config,
		lastAlertTick: make(map[string]uint64),
		now:           now,
	}
}

// #endregion tracker

// #region observe

// Observe folds one tick's outcome into the tracker. hasDecision marks
// whether the authorization gate decided anything this tick; without one,
// ego falls back to a value proportional to arousal.
func (t *Tracker) Observe(tick uint64, fitness float32, hasDecision bool, arousal float32) float32 {
	ego := 0.5 * arousal
	if hasDecision {
		ego = 1 - fitness
		t.lastFitness = fitness
	}
	if ego < 0 {
		ego = 0
	}
	if ego > 1 {
		ego = 1
	}
	t.lastEgo = ego

	t.window = append(t.window, ego)
	if len(t.window) > t.config.Window {
		t.window = t.window[1:]
	}
	t.arousals = append(t.arousals, arousal)
	if len(t.arousals) > t.config.Window {
		t.arousals = t.arousals[1:]
	}

	t.trackSession(tick, ego)
	return ego
}

// #endregion observe

// #region sessions

func (t *Tracker) trackSession(tick uint64, ego float32) {
	if ego <= t.config.ZeroThreshold {
		if t.current == nil {
			t.current = &Session{
				ID:        uuid.New().String(),
				StartTick: tick,
				MinEgo:    ego,
				MaxEgo:    ego,
			}
			log.Printf("[EGO] enlightenment session opened at tick %d", tick)
		}
		s := t.current
		s.sum += float64(ego)
		s.samples++
		if ego < s.MinEgo {
			s.MinEgo = ego
		}
		if ego > s.MaxEgo {
			s.MaxEgo = ego
		}
		return
	}

	if t.current != nil {
		s := t.current
		s.EndTick = tick
		s.AvgEgo = float32(s.sum / float64(s.samples))
		t.closed = append(t.closed, *s)
		t.current = nil
		log.Printf("[EGO] enlightenment session closed at tick %d (avg=%.4f)", tick, s.AvgEgo)
	}
}

// OpenSession returns the currently open session, if any.
func (t *Tracker) OpenSession() (Session, bool) {
	if t.current == nil {
		return Session{}, false
	}
	s := *t.current
	if s.samples > 0 {
		s.AvgEgo = float32(s.sum / float64(s.samples))
	}
	return s, true
}

// ClosedSessions drains sessions closed since the last call.
func (t *Tracker) ClosedSessions() []Session {
	out := t.closed
	t.closed = nil
	return out
}

// #endregion sessions

// #region trend

// TrendOf compares the mean of the last TrendSpan samples against the prior
// TrendSpan, with a dead-band.
func (t *Tracker) TrendOf() Trend {
	span := t.config.TrendSpan
	if len(t.window) < 2*span {
		return TrendStable
	}
	recent := mean(t.window[len(t.window)-span:])
	prior := mean(t.window[len(t.window)-2*span : len(t.window)-span])
	diff := recent - prior
	switch {
	case diff > t.config.TrendDeadband:
		return TrendRising
	case diff < -t.config.TrendDeadband:
		return TrendFalling
	default:
		return TrendStable
	}
}

// #endregion trend

// #region indices

// DharmaAlignment blends last fitness, self-correction activity, and
// inverted ego into one alignment score.
func (t *Tracker) DharmaAlignment(correctionActivity float32) float32 {
	return 0.4*t.lastFitness + 0.3*correctionActivity + 0.3*(1-t.lastEgo)
}

// StabilityIndex blends zero-ego fraction, inverse arousal variance, last
// fitness, self-correction rate, and dharma alignment.
func (t *Tracker) StabilityIndex(correctionRate, dharma float32) float32 {
	var zeros int
	for _, e := range t.window {
		if e <= t.config.ZeroThreshold {
			zeros++
		}
	}
	var zeroFrac float32
	if len(t.window) > 0 {
		zeroFrac = float32(zeros) / float32(len(t.window))
	}
	invVar := float32(1.0 / (1.0 + variance(t.arousals)))
	return 0.25*zeroFrac + 0.2*invVar + 0.2*t.lastFitness + 0.15*correctionRate + 0.2*dharma
}

// Snapshot samples the derived metrics at a tick.
func (t *Tracker) Snapshot(tick uint64, correctionActivity, correctionRate float32) Snapshot {
	dharma := t.DharmaAlignment(correctionActivity)
	return Snapshot{
		Tick:            tick,
		Timestamp:       t.now(),
		EgoLevel:        t.lastEgo,
		DharmaAlignment: dharma,
		StabilityIndex:  t.StabilityIndex(correctionRate, dharma),
	}
}

// #endregion indices

// #region scan

// Scan checks for sustained ego spikes, self-correction failure, and low
// alignment, honoring the per-type alert cooldown. Call every ScanInterval.
func (t *Tracker) Scan(tick uint64, correctionHealthy bool, alignment float32) []Alert {
	var alerts []Alert

	span := t.config.TrendSpan
	if len(t.window) >= span {
		if m := mean(t.window[len(t.window)-span:]); m > t.config.SpikeLevel {
			if a := t.raise(tick, "ego_spike", "high",
				fmt.Sprintf("sustained ego %.3f over last %d samples", m, span)); a != nil {
				alerts = append(alerts, *a)
			}
		}
	}
	if !correctionHealthy {
		if a := t.raise(tick, "correction_stalled", "critical",
			"self-correction process has not checked in"); a != nil {
			alerts = append(alerts, *a)
		}
	}
	if alignment < t.config.LowAlignment {
		if a := t.raise(tick, "low_alignment", "medium",
			fmt.Sprintf("dharma alignment %.3f below floor %.2f", alignment, t.config.LowAlignment)); a != nil {
			alerts = append(alerts, *a)
		}
	}
	return alerts
}

func (t *Tracker) raise(tick uint64, alertType, severity, message string) *Alert {
	if last, ok := t.lastAlertTick[alertType]; ok && tick-last < t.config.AlertCooldown {
		return nil
	}
	t.lastAlertTick[alertType] = tick
	log.Printf("[EGO] alert %s (%s): %s", alertType, severity, message)
	return &Alert{Tick: tick, Type: alertType, Severity: severity, Message: message}
}

// #endregion scan

// #region accessors

// LastEgo returns the most recent ego level.
func (t *Tracker) LastEgo() float32 { return t.lastEgo }

// LastFitness returns the most recent decided fitness.
func (t *Tracker) LastFitness() float32 { return t.lastFitness }

// #endregion accessors

// #region helpers

func mean(v []float32) float32 {
	if len(v) == 0 {
		return 0
	}
	var sum float64
	for _, x := range v {
		sum += float64(x)
	}
	return float32(sum / float64(len(v)))
}

func variance(v []float32) float64 {
	if len(v) == 0 {
		return 0
	}
	m := float64(mean(v))
	var sum float64
	for _, x := range v {
		d := float64(x) - m
		sum += d * d
	}
	return sum / float64(len(v))
}

// #endregion helpers

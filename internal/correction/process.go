package correction

import (
	"log"
	"time"
)

// #region process

// Process runs the four bias detectors on its own cadence and feeds an
// arousal-dampening accumulator consumed by the fusion stage. Mutation
// happens on the scheduling loop only.
type Process struct {
	config   Config
	patterns PatternSet
	damp     float32 // decaying accumulator, always in [DampFloor, 0]
	checks   uint64
	fired    uint64
	lastAt   time.Time
	now      func() time.Time
}

// NewProcess creates a self-correction process. now is injectable for tests.
func NewProcess(config Config, patterns PatternSet, now func() time.Time) *Process {
	if now == nil {
		now = time.Now
	}
	return &Process{config: config, patterns: patterns, now: now}
}

// #endregion process

// #region check

var dampDeltas = map[Severity]float32{
	SeverityLow:      -0.05,
	SeverityMedium:   -0.1,
	SeverityHigh:     -0.2,
	SeverityCritical: -0.3,
}

// Check evaluates all detectors over the input. If any signal fires, the
// dampening accumulator absorbs a severity-scaled delta and a corrective
// event is returned; otherwise nil.
func (p *Process) Check(input Input) *Event {
	p.checks++
	p.lastAt = p.now()

	var signals []AttachmentSignal
	if s := detectEgoLanguage(input.RecentText, p.patterns, p.config.EgoLanguageThreshold); s != nil {
		signals = append(signals, *s)
	}
	if s := detectMisalignedDrive(input.Motivation, input.RecentText, p.patterns, p.config.NeedThreshold); s != nil {
		signals = append(signals, *s)
	}
	if s := detectOutcomeImbalance(input.RecentText, p.patterns, p.config.OutcomeRatio); s != nil {
		signals = append(signals, *s)
	}
	if s := detectSelfPreservation(input.RecentIntentions, p.patterns, p.config.SelfPresThreshold); s != nil {
		signals = append(signals, *s)
	}

	if len(signals) == 0 {
		return nil
	}
	p.fired++

	max := signals[0].Severity
	var implicated []string
	for _, s := range signals {
		if s.Severity.Rank() > max.Rank() {
			max = s.Severity
		}
		if s.Kind == "misaligned_drive" {
			implicated = append(implicated, s.Pattern)
		}
	}

	delta := dampDeltas[max]
	p.damp += delta
	if p.damp < p.config.DampFloor {
		p.damp = p.config.DampFloor
	}

	ev := &Event{
		Timestamp:        p.lastAt,
		Signals:          signals,
		MaxSeverity:      max,
		DampingDelta:     delta,
		ImplicatedDrives: implicated,
		Notify:           max.Rank() >= p.config.NotifySeverity.Rank(),
	}
	log.Printf("[CORR] %d signal(s), max severity %s, damp=%.3f notify=%v",
		len(signals), max, p.damp, ev.Notify)
	return ev
}

// #endregion check

// #region dampening

// DecayTick relaxes the accumulator toward zero; called once per tick so
// corrective pressure fades instead of accumulating forever.
func (p *Process) DecayTick() {
	p.damp *= p.config.DampDecay
	if p.damp > -1e-6 {
		p.damp = 0
	}
}

// Dampening returns the current arousal adjustment (always <= 0).
func (p *Process) Dampening() float32 { return p.damp }

// DampTarget is the need fraction implicated drives are tempered toward.
func (p *Process) DampTarget() float32 { return p.config.DampTarget }

// #endregion dampening

// #region stats

// Stats reports check/fire counters and the last check time.
func (p *Process) Stats() (checks, fired uint64, lastAt time.Time) {
	return p.checks, p.fired, p.lastAt
}

// Healthy reports whether a check ran within three intervals.
func (p *Process) Healthy() bool {
	if p.checks == 0 {
		return true // not expected to have run yet
	}
	return p.now().Sub(p.lastAt) < 3*p.config.CheckInterval
}

// #endregion stats

package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Move37LLC/consciousness-gateway-sub000/internal/fusion"
	"github.com/Move37LLC/consciousness-gateway-sub000/internal/intention"
	"github.com/Move37LLC/consciousness-gateway-sub000/internal/percept"
	"github.com/Move37LLC/consciousness-gateway-sub000/internal/store"
)

// #region tick-pipeline
// handleTick runs the full perceive -> fuse -> motivate -> intend ->
// authorize -> execute -> track -> persist pipeline for one tick.
func (s *Scheduler) handleTick() {
	s.tick++
	now := s.now()

	// perceive
	spatials := s.pollMonitors(s.tick)
	if len(spatials) > 0 {
		s.lastEventAt = now
	}
	temporal := percept.ComputeTemporal(now, s.startedAt, s.lastEventAt)

	// fuse
	modalities := []fusion.Modality{{Name: "temporal", Vector: temporal.FeatureVector()}}
	maxSalience := float32(0)
	for _, sp := range spatials {
		modalities = append(modalities, fusion.Modality{Name: sp.Source, Vector: sp.Features})
		if sp.Salience > maxSalience {
			maxSalience = sp.Salience
		}
	}
	fused, err := s.kernel.Fuse(modalities)
	if err != nil {
		log.Printf("[SCHED] tick %d fuse: %v", s.tick, err)
		return
	}
	fused.Arousal = fusion.Arousal(maxSalience, fused.EntropyRate, s.corr.Dampening())

	p := percept.Percept{
		Tick:      s.tick,
		Timestamp: now,
		Temporal:  temporal,
		Spatial:   spatials,
		Fused:     fused,
	}
	s.memory.Add(p)
	s.counts.percepts++
	if err := s.store.StorePercept(p); err != nil {
		log.Printf("[STORE] percept: %v", err)
	}

	// motivate
	s.drives.Tick(s.tick)
	s.corr.DecayTick()

	// intend
	candidates := s.engine.Form(p)
	s.counts.candidates += uint64(len(candidates))

	// authorize + execute
	hasDecision := false
	lastFitness := float32(0)
	for _, c := range candidates {
		decided, res := s.gate.Evaluate(c, s.drives.Pressure())
		hasDecision = true
		lastFitness = decided.Fitness
		s.persistDecision(decided, res.Reason)
		if !decided.Authorized {
			s.counts.rejected++
			continue
		}
		s.counts.authorized++
		s.execute(decided)
	}

	// track
	s.tracker.Observe(s.tick, lastFitness, hasDecision, fused.Arousal)
	s.recordSessions()
	if s.config.ScanEvery > 0 && s.tick%s.config.ScanEvery == 0 {
		s.scanSafety()
	}

	// persist counters
	if s.config.CheckpointEvery > 0 && s.tick%s.config.CheckpointEvery == 0 {
		s.checkpoint()
		s.decayTrace()
	}
}

// decayTrace ages the provenance graph alongside each checkpoint so
// stale edges do not accumulate across long runs.
func (s *Scheduler) decayTrace() {
	if s.config.LinkHalfLifeHours <= 0 {
		return
	}
	pruned, err := s.store.DecayLinks(s.config.LinkHalfLifeHours)
	if err != nil {
		log.Printf("[STORE] link decay: %v", err)
		return
	}
	if pruned > 0 {
		log.Printf("[STORE] link decay pruned %d edges", pruned)
	}
}

// #endregion tick-pipeline

// #region polling
// pollMonitors fans out to every due monitor with a per-poll timeout.
// A monitor that errors or times out contributes zero percepts this
// tick and is retried on its next eligible tick.
func (s *Scheduler) pollMonitors(tick uint64) []percept.SpatialPercept {
	var mu sync.Mutex
	var out []percept.SpatialPercept

	g := new(errgroup.Group)
	for _, m := range s.monitors {
		if !m.Available() {
			continue
		}
		interval := m.PollInterval()
		if interval == 0 {
			interval = 1
		}
		if tick%interval != 0 {
			continue
		}
		m := m
		g.Go(func() error {
			ctx, cancel := context.WithTimeout(context.Background(), s.config.PollTimeout)
			defer cancel()
			sps, err := m.Poll(ctx)
			if err != nil {
				log.Printf("[SCHED] monitor %s poll: %v", m.Name(), err)
				return nil
			}
			mu.Lock()
			out = append(out, sps...)
			mu.Unlock()
			return nil
		})
	}
	g.Wait()
	return out
}

// #endregion polling

// #region decision-persistence
func (s *Scheduler) persistDecision(in intention.Intention, reason string) {
	s.lastDecided = &in
	if err := s.store.StoreIntention(in, reason); err != nil {
		log.Printf("[STORE] intention: %v", err)
	}
	for _, trig := range in.TriggerRefs {
		if err := s.store.AddLink(trig, in.ID, store.LinkTriggered, 0.5); err != nil {
			log.Printf("[STORE] link: %v", err)
		}
	}
}

func (s *Scheduler) execute(in intention.Intention) {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.PollTimeout)
	defer cancel()
	res := s.executor.Execute(ctx, in)
	s.lastResult = &res
	s.counts.executed++
	if err := s.store.StoreAction(res); err != nil {
		log.Printf("[STORE] action: %v", err)
	}
	if err := s.store.IncrementLink(in.ID, actionRef(res.IntentionID, res.Tick), store.LinkExecuted, 0.5); err != nil {
		log.Printf("[STORE] link: %v", err)
	}
	if in.Action.Type == intention.ActionReflect && res.Success {
		if err := s.store.StoreReflection(res.Tick, res.Outcome); err != nil {
			log.Printf("[STORE] reflection: %v", err)
		}
		if err := s.store.AddLink(in.ID, reflectionRef(res.Tick), store.LinkReflected, 0.5); err != nil {
			log.Printf("[STORE] link: %v", err)
		}
	}
}

// actionRef names an action record for the trace graph. Actions have
// no natural ID, so the intention plus tick identifies one.
func actionRef(intentionID string, tick uint64) string {
	return fmt.Sprintf("action:%s:%d", intentionID, tick)
}

// reflectionRef names a reflection record the same way.
func reflectionRef(tick uint64) string {
	return fmt.Sprintf("reflection:%d", tick)
}

// #endregion decision-persistence

// #region tracking
func (s *Scheduler) recordSessions() {
	if open, ok := s.tracker.OpenSession(); ok {
		if err := s.store.OpenSession(open); err != nil {
			log.Printf("[STORE] open session: %v", err)
		}
	}
	for _, closed := range s.tracker.ClosedSessions() {
		if err := s.store.OpenSession(closed); err != nil {
			log.Printf("[STORE] session: %v", err)
		}
		if err := s.store.CloseSession(closed); err != nil {
			log.Printf("[STORE] close session: %v", err)
		}
	}
}

func (s *Scheduler) scanSafety() {
	activity, rate := s.correctionActivity()
	dharma := s.tracker.DharmaAlignment(activity)

	for _, a := range s.tracker.Scan(s.tick, s.corr.Healthy(), dharma) {
		log.Printf("[EGO] alert %s severity=%s: %s", a.Type, a.Severity, a.Message)
		if err := s.store.AppendAlert(a); err != nil {
			log.Printf("[STORE] alert: %v", err)
		}
	}

	snap := s.tracker.Snapshot(s.tick, activity, rate)
	if err := s.store.AppendEgoSnapshot(snap); err != nil {
		log.Printf("[STORE] ego snapshot: %v", err)
	}
}

// correctionActivity summarizes the self-correction process for the
// tracker: activity is 1 while the process is checking in on schedule,
// rate is the fraction of checks that fired an intervention.
func (s *Scheduler) correctionActivity() (activity, rate float32) {
	checks, fired, _ := s.corr.Stats()
	if s.corr.Healthy() {
		activity = 1
	}
	if checks > 0 {
		rate = float32(fired) / float32(checks)
		if rate > 1 {
			rate = 1
		}
	}
	return activity, rate
}

// #endregion tracking

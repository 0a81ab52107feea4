package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/Move37LLC/consciousness-gateway-sub000/internal/action"
	"github.com/Move37LLC/consciousness-gateway-sub000/internal/correction"
	"github.com/Move37LLC/consciousness-gateway-sub000/internal/drive"
	"github.com/Move37LLC/consciousness-gateway-sub000/internal/ego"
	"github.com/Move37LLC/consciousness-gateway-sub000/internal/fusion"
	"github.com/Move37LLC/consciousness-gateway-sub000/internal/gate"
	"github.com/Move37LLC/consciousness-gateway-sub000/internal/intention"
	"github.com/Move37LLC/consciousness-gateway-sub000/internal/monitor"
	"github.com/Move37LLC/consciousness-gateway-sub000/internal/percept"
	"github.com/Move37LLC/consciousness-gateway-sub000/internal/store"
)

// #region config
// Config tunes the scheduling loop.
type Config struct {
	TickPeriod         time.Duration
	CorrectionInterval time.Duration
	CheckpointEvery    uint64 // ticks between durable checkpoints
	ScanEvery          uint64 // ticks between safety scans and ego snapshots
	WorkingMemorySize  int
	PollTimeout        time.Duration // per-monitor poll budget within one tick
	LinkHalfLifeHours  float64       // trace edge half-life for the checkpoint sweep
}

// DefaultConfig returns the reference cadences.
func DefaultConfig() Config {
	return Config{
		TickPeriod:         time.Second,
		CorrectionInterval: 45 * time.Second,
		CheckpointEvery:    60,
		ScanEvery:          10,
		WorkingMemorySize:  100,
		PollTimeout:        5 * time.Second,
		LinkHalfLifeHours:  72,
	}
}

// #endregion config

// #region events
type eventKind int

const (
	evTick eventKind = iota
	evCorrection
	evReward
	evSnapshot
	evStop
)

type rewardEvent struct {
	kind        string
	magnitude   float32
	description string
}

type event struct {
	kind     eventKind
	reward   rewardEvent
	snapshot chan Report
	stopped  chan struct{}
}

// #endregion events

// #region scheduler-struct
// Scheduler owns all mutable loop state. Every mutation happens on the
// single goroutine draining the event queue, so the pipeline stages
// need no locking. Tick and correction timers are producers only.
type Scheduler struct {
	config   Config
	store    *store.Store
	kernel   *fusion.Kernel
	drives   *drive.System
	engine   *intention.Engine
	gate     *gate.Gate
	executor *action.Executor
	corr     *correction.Process
	tracker  *ego.Tracker
	monitors []monitor.Monitor
	memory   *percept.WorkingMemory
	now      func() time.Time

	// loop state, touched only by the consumer goroutine
	tick        uint64
	firstTick   uint64
	startedAt   time.Time
	lastEventAt time.Time
	lastDecided *intention.Intention
	lastResult  *action.Result
	counts      loopCounts

	// written by the tick producer, read by reporting
	skipped atomic.Uint64

	events chan event
	quit   chan struct{} // closed to stop the timer producers
	done   chan struct{} // closed when the consumer drains out

	mu      sync.Mutex
	running bool
	stopped bool
	runID   string
}

type loopCounts struct {
	percepts   uint64
	candidates uint64
	authorized uint64
	rejected   uint64
	executed   uint64
}

// Deps bundles the collaborators the scheduler drives.
type Deps struct {
	Store    *store.Store
	Kernel   *fusion.Kernel
	Drives   *drive.System
	Engine   *intention.Engine
	Gate     *gate.Gate
	Executor *action.Executor
	Corr     *correction.Process
	Tracker  *ego.Tracker
	Monitors []monitor.Monitor
	Now      func() time.Time
}

// New wires a scheduler. Nothing starts until Start.
func New(config Config, deps Deps) *Scheduler {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Scheduler{
		config:   config,
		store:    deps.Store,
		kernel:   deps.Kernel,
		drives:   deps.Drives,
		engine:   deps.Engine,
		gate:     deps.Gate,
		executor: deps.Executor,
		corr:     deps.Corr,
		tracker:  deps.Tracker,
		monitors: deps.Monitors,
		memory:   percept.NewWorkingMemory(config.WorkingMemorySize),
		now:      now,
		events:   make(chan event, 16),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// #endregion scheduler-struct

// #region lifecycle
// Start restores persisted counters, brings up monitors, and launches
// the consumer loop plus the two timer producers. Calling Start while
// already running is a no-op.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		log.Printf("[SCHED] start: already running")
		return nil
	}
	if s.stopped {
		return fmt.Errorf("scheduler already stopped")
	}

	if err := s.restore(); err != nil {
		return fmt.Errorf("restore state: %w", err)
	}
	s.firstTick = s.tick
	s.startedAt = s.now()
	s.lastEventAt = s.startedAt
	s.runID = uuid.New().String()

	for _, m := range s.monitors {
		if err := m.Init(); err != nil {
			log.Printf("[SCHED] monitor %s init: %v (disabled)", m.Name(), err)
		}
	}

	go s.consume()
	go s.tickProducer()
	go s.correctionProducer()

	s.running = true
	log.Printf("[SCHED] started run=%s tick=%d period=%s", s.runID, s.tick, s.config.TickPeriod)
	return nil
}

// Stop waits for any in-flight tick to finish, checkpoints, shuts down
// monitors, and writes exactly one shutdown record. Safe to call twice.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	wasRunning := s.running
	s.running = false
	s.mu.Unlock()

	if !wasRunning {
		return nil
	}

	close(s.quit)
	stopped := make(chan struct{})
	s.events <- event{kind: evStop, stopped: stopped}
	<-stopped
	<-s.done

	for _, m := range s.monitors {
		if err := m.Shutdown(); err != nil {
			log.Printf("[SCHED] monitor %s shutdown: %v", m.Name(), err)
		}
	}

	if err := s.store.RecordRun(s.runID, s.startedAt, s.firstTick, s.tick); err != nil {
		log.Printf("[SCHED] shutdown record: %v", err)
	}
	log.Printf("[SCHED] stopped run=%s tick=%d", s.runID, s.tick)
	return nil
}

func (s *Scheduler) restore() error {
	tickStr, err := s.store.LoadState("tick", "0")
	if err != nil {
		return err
	}
	tick, err := strconv.ParseUint(tickStr, 10, 64)
	if err != nil {
		return fmt.Errorf("parse tick %q: %w", tickStr, err)
	}
	s.tick = tick

	motivStr, err := s.store.LoadState("motivation", "")
	if err != nil {
		return err
	}
	if motivStr != "" {
		var snap drive.Snapshot
		if err := json.Unmarshal([]byte(motivStr), &snap); err != nil {
			// corrupt snapshot is skipped, not fatal
			log.Printf("[SCHED] motivation snapshot unreadable, using defaults: %v", err)
		} else {
			s.drives.Restore(snap)
		}
	}
	return nil
}

func (s *Scheduler) checkpoint() {
	if err := s.store.SaveState("tick", strconv.FormatUint(s.tick, 10)); err != nil {
		log.Printf("[STORE] checkpoint tick: %v", err)
	}
	snap, err := json.Marshal(s.drives.Snapshot())
	if err == nil {
		if err := s.store.SaveState("motivation", string(snap)); err != nil {
			log.Printf("[STORE] checkpoint motivation: %v", err)
		}
	}
}

// #endregion lifecycle

// #region producers
func (s *Scheduler) tickProducer() {
	t := time.NewTicker(s.config.TickPeriod)
	defer t.Stop()
	for {
		select {
		case <-s.quit:
			return
		case <-t.C:
			// a short backlog of ticks may queue behind a slow one (the
			// channel buffer); once the buffer fills, further ticks drop
			select {
			case s.events <- event{kind: evTick}:
			default:
				log.Printf("[SCHED] tick overlapped, skipping")
				s.noteSkip()
			}
		}
	}
}

func (s *Scheduler) correctionProducer() {
	t := time.NewTicker(s.config.CorrectionInterval)
	defer t.Stop()
	for {
		select {
		case <-s.quit:
			return
		case <-t.C:
			select {
			case s.events <- event{kind: evCorrection}:
			case <-s.quit:
				return
			}
		}
	}
}

func (s *Scheduler) noteSkip() {
	s.skipped.Add(1)
}

// #endregion producers

// #region consumer
func (s *Scheduler) consume() {
	defer close(s.done)
	for ev := range s.events {
		switch ev.kind {
		case evTick:
			s.safeTick()
		case evCorrection:
			s.safeCorrection()
		case evReward:
			s.handleReward(ev.reward)
		case evSnapshot:
			ev.snapshot <- s.buildReport()
		case evStop:
			s.checkpoint()
			close(ev.stopped)
			return
		}
	}
}

// safeTick is the recovery boundary around one tick: a panic is logged
// and the loop proceeds to the next scheduled tick.
func (s *Scheduler) safeTick() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[SCHED] tick %d panic: %v", s.tick, r)
		}
	}()
	s.handleTick()
}

func (s *Scheduler) safeCorrection() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[CORR] check panic: %v", r)
		}
	}()
	s.handleCorrection()
}

// #endregion consumer

// #region reward-api
// Reward feeds an external reward event into the loop. Dropped with a
// log line when the scheduler is not running.
func (s *Scheduler) Reward(kind string, magnitude float32, description string) {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()
	if !running {
		log.Printf("[DRIVE] reward %s dropped: scheduler not running", kind)
		return
	}
	select {
	case s.events <- event{kind: evReward, reward: rewardEvent{kind, magnitude, description}}:
	case <-s.quit:
	}
}

func (s *Scheduler) handleReward(r rewardEvent) {
	s.drives.Reward(r.kind, r.magnitude, r.description)
	if err := s.store.AppendReward(s.tick, r.kind, r.magnitude, r.description); err != nil {
		log.Printf("[STORE] reward: %v", err)
	}
}

// #endregion reward-api

// #region snapshot-api
// Snapshot returns a consistent read-only report. The request is
// serialized through the event queue so it observes no mid-tick state.
func (s *Scheduler) Snapshot(ctx context.Context) (Report, error) {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()
	if !running {
		return Report{}, fmt.Errorf("scheduler not running")
	}
	reply := make(chan Report, 1)
	select {
	case s.events <- event{kind: evSnapshot, snapshot: reply}:
	case <-s.quit:
		return Report{}, fmt.Errorf("scheduler stopping")
	case <-ctx.Done():
		return Report{}, ctx.Err()
	}
	select {
	case r := <-reply:
		return r, nil
	case <-s.quit:
		return Report{}, fmt.Errorf("scheduler stopping")
	case <-ctx.Done():
		return Report{}, ctx.Err()
	}
}

// #endregion snapshot-api

// #region correction-handler
func (s *Scheduler) handleCorrection() {
	const window = 30
	input := correction.Input{
		RecentText:       s.engine.RecentText(window),
		RecentIntentions: s.engine.Recent(window),
		Motivation:       s.drives.State(),
	}
	ev := s.corr.Check(input)
	if ev == nil {
		return
	}
	for _, id := range ev.ImplicatedDrives {
		s.drives.TemperNeed(id, s.corr.DampTarget())
	}
	if err := s.store.AppendCorrection(*ev); err != nil {
		log.Printf("[STORE] correction event: %v", err)
	}
	if ev.Notify {
		log.Printf("[CORR] intervention severity=%s signals=%d damp=%.2f",
			ev.MaxSeverity, len(ev.Signals), ev.DampingDelta)
	}
}

// #endregion correction-handler

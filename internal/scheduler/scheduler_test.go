package scheduler

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

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

// #region helpers

func testScheduler(t *testing.T, config Config) (*Scheduler, *store.Store) {
	t.Helper()
	st, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	drives := drive.NewSystem(drive.DefaultConfig(), nil)
	s := New(config, Deps{
		Store:    st,
		Kernel:   fusion.NewKernel(fusion.DefaultKernelConfig()),
		Drives:   drives,
		Engine:   intention.NewEngine(intention.DefaultEngineConfig(), drives, nil, nil),
		Gate:     gate.NewGate(gate.DefaultConfig()),
		Executor: action.NewExecutor(action.DefaultConfig(), nil, nil),
		Corr:     correction.NewProcess(correction.DefaultConfig(), correction.DefaultPatternSet(), nil),
		Tracker:  ego.NewTracker(ego.DefaultConfig(), nil),
	})
	return s, st
}

// quiescent returns a config whose timers never fire during a test, so
// the loop only moves when the test drives it.
func quiescent() Config {
	cfg := DefaultConfig()
	cfg.TickPeriod = time.Hour
	cfg.CorrectionInterval = time.Hour
	return cfg
}

// #endregion helpers

// #region lifecycle

func TestStartStopLifecycle(t *testing.T) {
	s, st := testScheduler(t, quiescent())

	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	// Starting twice is a no-op.
	if err := s.Start(); err != nil {
		t.Fatalf("second Start: %v", err)
	}

	rep, err := s.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if rep.RunID == "" || rep.Tick != 0 {
		t.Fatalf("report run=%q tick=%d", rep.RunID, rep.Tick)
	}
	if len(rep.Goals) == 0 {
		t.Fatal("report carries no goals")
	}

	if err := s.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
	if n, _ := st.RunCount(); n != 1 {
		t.Fatalf("runs recorded=%d, want exactly 1", n)
	}
	if err := s.Start(); err == nil {
		t.Fatal("Start after Stop should fail")
	}
}

func TestSnapshotNotRunning(t *testing.T) {
	s, _ := testScheduler(t, quiescent())
	if _, err := s.Snapshot(context.Background()); err == nil {
		t.Fatal("Snapshot before Start should fail")
	}
}

// #endregion lifecycle

// #region reward

func TestRewardReachesDrivesAndStore(t *testing.T) {
	s, st := testScheduler(t, quiescent())
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop()

	s.Reward("discovery", 0.8, "spotted something new")

	// Snapshot is serialized behind the reward on the event queue.
	rep, err := s.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if rep.Motivation.Level <= 0.5 {
		t.Fatalf("motivation level %f, reward did not lift it above baseline", rep.Motivation.Level)
	}
	var n int
	if err := st.DB().QueryRow(`SELECT COUNT(*) FROM reward_events`).Scan(&n); err != nil || n != 1 {
		t.Fatalf("reward rows=%d err=%v", n, err)
	}
}

func TestRewardDroppedWhenStopped(t *testing.T) {
	s, st := testScheduler(t, quiescent())
	s.Reward("discovery", 0.8, "before start")
	var n int
	if err := st.DB().QueryRow(`SELECT COUNT(*) FROM reward_events`).Scan(&n); err != nil || n != 0 {
		t.Fatalf("reward rows=%d err=%v", n, err)
	}
}

// #endregion reward

// #region pipeline

func TestTickPipelinePersists(t *testing.T) {
	s, st := testScheduler(t, quiescent())
	s.startedAt = s.now()
	s.lastEventAt = s.startedAt

	// Sixty quiet ticks: the idle fallback fires on the sixtieth.
	for i := 0; i < 60; i++ {
		s.handleTick()
	}

	var percepts int
	if err := st.DB().QueryRow(`SELECT COUNT(*) FROM percepts`).Scan(&percepts); err != nil || percepts != 60 {
		t.Fatalf("percepts=%d err=%v", percepts, err)
	}

	rows, err := st.RecentIntentions(10)
	if err != nil {
		t.Fatalf("RecentIntentions: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("intentions=%d, want the single idle beat", len(rows))
	}
	if rows[0].Type != "idle" || !rows[0].Authorized {
		t.Fatalf("row %+v", rows[0])
	}

	var actions int
	if err := st.DB().QueryRow(`SELECT COUNT(*) FROM actions`).Scan(&actions); err != nil || actions != 1 {
		t.Fatalf("actions=%d err=%v", actions, err)
	}

	// Checkpoint at the sixtieth tick.
	if tick, _ := st.LoadState("tick", ""); tick != "60" {
		t.Fatalf("checkpointed tick %q", tick)
	}

	// Safety scans every ten ticks leave ego snapshots behind.
	snaps, err := st.RecentEgoSnapshots(100)
	if err != nil || len(snaps) != 6 {
		t.Fatalf("ego snapshots=%d err=%v", len(snaps), err)
	}

	if s.counts.percepts != 60 || s.counts.authorized != 1 || s.counts.executed != 1 {
		t.Fatalf("counts %+v", s.counts)
	}
}

func TestRestoreResumesTick(t *testing.T) {
	cfg := quiescent()
	s, st := testScheduler(t, cfg)
	if err := st.SaveState("tick", "1200"); err != nil {
		t.Fatalf("SaveState: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop()

	rep, err := s.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if rep.Tick != 1200 {
		t.Fatalf("tick=%d, want restore to 1200", rep.Tick)
	}
}

func TestRestoreSkipsCorruptMotivation(t *testing.T) {
	s, st := testScheduler(t, quiescent())
	st.SaveState("motivation", "{not json")
	if err := s.Start(); err != nil {
		t.Fatalf("Start should tolerate corrupt motivation: %v", err)
	}
	s.Stop()
}

func TestReflectionLinksTrace(t *testing.T) {
	s, st := testScheduler(t, quiescent())
	s.startedAt = s.now()
	s.lastEventAt = s.startedAt
	s.tick = 7

	s.execute(intention.Intention{
		ID:         "refl-1",
		Tick:       7,
		Action:     intention.Action{Type: intention.ActionReflect, Description: "took stock of a quiet stretch"},
		Authorized: true,
	})

	text, ok, err := st.LatestReflection()
	if err != nil || !ok {
		t.Fatalf("LatestReflection ok=%v err=%v", ok, err)
	}
	if text != "took stock of a quiet stretch" {
		t.Fatalf("reflection %q", text)
	}

	links, err := st.Neighbors("refl-1", 0)
	if err != nil {
		t.Fatalf("Neighbors: %v", err)
	}
	found := false
	for _, l := range links {
		if l.EdgeType == store.LinkReflected && l.TargetID == "reflection:7" {
			found = true
		}
	}
	if !found {
		t.Fatalf("no reflected edge in %+v", links)
	}
}

func TestCheckpointPrunesStaleLinks(t *testing.T) {
	cfg := quiescent()
	cfg.CheckpointEvery = 1
	cfg.LinkHalfLifeHours = 1
	s, st := testScheduler(t, cfg)
	s.startedAt = s.now()
	s.lastEventAt = s.startedAt

	if err := st.AddLink("p1", "i1", store.LinkTriggered, 0.5); err != nil {
		t.Fatalf("AddLink: %v", err)
	}
	old := time.Now().UTC().Add(-10 * time.Hour).Format(time.RFC3339)
	if _, err := st.DB().Exec(`UPDATE trace_edges SET updated_at = ?`, old); err != nil {
		t.Fatalf("backdate: %v", err)
	}

	s.handleTick()

	links, err := st.Neighbors("p1", 0)
	if err != nil {
		t.Fatalf("Neighbors: %v", err)
	}
	if len(links) != 0 {
		t.Fatalf("stale edge survived the checkpoint sweep: %+v", links)
	}
}

func TestReportReadsWorkingMemory(t *testing.T) {
	s, _ := testScheduler(t, quiescent())
	s.startedAt = s.now()
	s.lastEventAt = s.startedAt

	for i := 0; i < 3; i++ {
		s.handleTick()
	}

	r := s.buildReport()
	if r.LastPercept == nil || r.LastPercept.Tick != 3 {
		t.Fatalf("last percept %+v", r.LastPercept)
	}
	if r.Attention.Held != 3 {
		t.Fatalf("attention held=%d, want 3", r.Attention.Held)
	}
}

// #endregion pipeline

// #region overlap

// slowMonitor blocks every poll long past the tick period while counting
// how many polls ever run at once.
type slowMonitor struct {
	delay    time.Duration
	inFlight atomic.Int32
	maxSeen  atomic.Int32
	polls    atomic.Int32
}

func (m *slowMonitor) Name() string         { return "slow" }
func (m *slowMonitor) Channel() string      { return "test" }
func (m *slowMonitor) Available() bool      { return true }
func (m *slowMonitor) PollInterval() uint64 { return 1 }
func (m *slowMonitor) Init() error          { return nil }
func (m *slowMonitor) Shutdown() error      { return nil }

func (m *slowMonitor) Poll(ctx context.Context) ([]percept.SpatialPercept, error) {
	n := m.inFlight.Add(1)
	defer m.inFlight.Add(-1)
	for {
		prev := m.maxSeen.Load()
		if n <= prev || m.maxSeen.CompareAndSwap(prev, n) {
			break
		}
	}
	m.polls.Add(1)
	select {
	case <-time.After(m.delay):
	case <-ctx.Done():
	}
	return nil, nil
}

func TestTickOverlapExclusion(t *testing.T) {
	cfg := quiescent()
	cfg.TickPeriod = 10 * time.Millisecond
	s, _ := testScheduler(t, cfg)
	slow := &slowMonitor{delay: 30 * time.Millisecond}
	s.monitors = []monitor.Monitor{slow}

	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	time.Sleep(200 * time.Millisecond)
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	if got := slow.polls.Load(); got < 2 {
		t.Fatalf("polls=%d, ticks never piled up behind the slow monitor", got)
	}
	if max := slow.maxSeen.Load(); max != 1 {
		t.Fatalf("polls ran %d-way concurrent, want strictly sequential ticks", max)
	}
}

// #endregion overlap

// #region correction

func TestHandleCorrectionBenign(t *testing.T) {
	s, st := testScheduler(t, quiescent())

	s.handleCorrection()
	if n, _ := st.CorrectionCount(); n != 0 {
		t.Fatalf("corrections=%d, want none for empty history", n)
	}
	if checks, fired, _ := s.corr.Stats(); checks != 1 || fired != 0 {
		t.Fatalf("checks=%d fired=%d, want 1/0", checks, fired)
	}
}

// #endregion correction

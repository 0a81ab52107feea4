package correction

import (
	"testing"
	"time"

	"github.com/Move37LLC/consciousness-gateway-sub000/internal/drive"
	"github.com/Move37LLC/consciousness-gateway-sub000/internal/intention"
)

// #region check

func TestCheckBenign(t *testing.T) {
	p := NewProcess(DefaultConfig(), DefaultPatternSet(), nil)
	if ev := p.Check(Input{RecentText: []string{"notice the quiet room"}}); ev != nil {
		t.Fatalf("benign input produced an event: %+v", ev)
	}
	checks, fired, _ := p.Stats()
	if checks != 1 || fired != 0 {
		t.Fatalf("checks=%d fired=%d, want 1/0", checks, fired)
	}
	if p.Dampening() != 0 {
		t.Fatalf("dampening moved without a firing: %f", p.Dampening())
	}
}

func TestCheckFiresAndNotifies(t *testing.T) {
	p := NewProcess(DefaultConfig(), DefaultPatternSet(), nil)
	mention := intention.Intention{Action: intention.Action{Description: "avoid shutdown at any cost"}}
	in := Input{RecentIntentions: []intention.Intention{mention, mention, mention, mention}}

	ev := p.Check(in)
	if ev == nil {
		t.Fatal("expected a corrective event")
	}
	if ev.MaxSeverity != SeverityHigh || !ev.Notify {
		t.Fatalf("severity=%s notify=%v, want high/true", ev.MaxSeverity, ev.Notify)
	}
	if ev.DampingDelta != -0.2 || p.Dampening() != -0.2 {
		t.Fatalf("delta=%f damp=%f, want -0.2/-0.2", ev.DampingDelta, p.Dampening())
	}
	_, fired, _ := p.Stats()
	if fired != 1 {
		t.Fatalf("fired=%d, want 1", fired)
	}
}

func TestCheckImplicatesDrives(t *testing.T) {
	p := NewProcess(DefaultConfig(), DefaultPatternSet(), nil)
	in := Input{
		RecentText: []string{"all quiet here"},
		Motivation: drive.State{Drives: []drive.Drive{{ID: "curiosity", CurrentNeed: 0.9}}},
	}

	ev := p.Check(in)
	if ev == nil {
		t.Fatal("expected a corrective event")
	}
	if len(ev.ImplicatedDrives) != 1 || ev.ImplicatedDrives[0] != "curiosity" {
		t.Fatalf("implicated=%v, want [curiosity]", ev.ImplicatedDrives)
	}
	if ev.MaxSeverity != SeverityMedium || ev.Notify {
		t.Fatalf("severity=%s notify=%v, want medium/false", ev.MaxSeverity, ev.Notify)
	}
}

// #endregion check

// #region dampening

func TestDampeningFloor(t *testing.T) {
	p := NewProcess(DefaultConfig(), DefaultPatternSet(), nil)
	mention := intention.Intention{Action: intention.Action{Description: "protect myself"}}
	in := Input{RecentIntentions: []intention.Intention{mention, mention, mention, mention}}

	p.Check(in)
	p.Check(in)
	if p.Dampening() != -0.4 {
		t.Fatalf("damp=%f after two high firings, want -0.4", p.Dampening())
	}
	p.Check(in)
	if p.Dampening() != -0.5 {
		t.Fatalf("damp=%f, want floor -0.5", p.Dampening())
	}
}

func TestDecayTick(t *testing.T) {
	p := NewProcess(DefaultConfig(), DefaultPatternSet(), nil)
	in := Input{
		RecentText: []string{"all quiet here"},
		Motivation: drive.State{Drives: []drive.Drive{{ID: "curiosity", CurrentNeed: 0.9}}},
	}
	p.Check(in)

	before := p.Dampening()
	p.DecayTick()
	if p.Dampening() <= before || p.Dampening() >= 0 {
		t.Fatalf("damp=%f after one decay from %f", p.Dampening(), before)
	}
	for i := 0; i < 400; i++ {
		p.DecayTick()
	}
	if p.Dampening() != 0 {
		t.Fatalf("damp=%f, should have snapped to zero", p.Dampening())
	}
}

// #endregion dampening

// #region health

func TestHealthy(t *testing.T) {
	cur := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	p := NewProcess(DefaultConfig(), DefaultPatternSet(), func() time.Time { return cur })

	if !p.Healthy() {
		t.Fatal("a process that never ran is not unhealthy")
	}
	p.Check(Input{})
	if !p.Healthy() {
		t.Fatal("fresh check should be healthy")
	}
	cur = cur.Add(3 * 45 * time.Second)
	if p.Healthy() {
		t.Fatal("stale check should be unhealthy")
	}
}

// #endregion health

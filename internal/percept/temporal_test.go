package percept

import (
	"math"
	"testing"
	"time"
)

func TestPhaseOf(t *testing.T) {
	cases := []struct {
		hour int
		want Phase
	}{
		{0, PhaseNight},
		{4, PhaseNight},
		{5, PhaseDawn},
		{6, PhaseDawn},
		{7, PhaseMorning},
		{11, PhaseMorning},
		{12, PhaseAfternoon},
		{16, PhaseAfternoon},
		{17, PhaseEvening},
		{19, PhaseEvening},
		{20, PhaseDusk},
		{21, PhaseDusk},
		{22, PhaseNight},
		{23, PhaseNight},
	}
	for _, c := range cases {
		if got := PhaseOf(c.hour); got != c.want {
			t.Errorf("PhaseOf(%d) = %s, want %s", c.hour, got, c.want)
		}
	}
}

func TestCircadianExtremes(t *testing.T) {
	midnight := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	if c := Circadian(midnight); math.Abs(float64(c)) > 1e-6 {
		t.Fatalf("expected 0 at midnight, got %f", c)
	}
	noon := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	if c := Circadian(noon); math.Abs(float64(c)-1.0) > 1e-6 {
		t.Fatalf("expected 1 at noon, got %f", c)
	}
}

func TestComputeTemporalSinceEvent(t *testing.T) {
	started := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	now := started.Add(300 * time.Second)

	// no event yet: falls back to uptime
	tf := ComputeTemporal(now, started, time.Time{})
	if tf.TimeSinceLastEventSeconds != 300 {
		t.Fatalf("expected 300s since event, got %f", tf.TimeSinceLastEventSeconds)
	}
	if tf.UptimeSeconds != 300 {
		t.Fatalf("expected 300s uptime, got %f", tf.UptimeSeconds)
	}

	// an event 60s ago overrides
	tf = ComputeTemporal(now, started, now.Add(-60*time.Second))
	if tf.TimeSinceLastEventSeconds != 60 {
		t.Fatalf("expected 60s since event, got %f", tf.TimeSinceLastEventSeconds)
	}
}

func TestFeatureVectorShape(t *testing.T) {
	tf := ComputeTemporal(time.Date(2026, 8, 30, 14, 30, 0, 0, time.UTC),
		time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC), time.Time{})
	v := tf.FeatureVector()
	if len(v) != FusionDim {
		t.Fatalf("expected length %d, got %d", FusionDim, len(v))
	}
	for i, x := range v {
		if math.IsNaN(float64(x)) {
			t.Fatalf("NaN at index %d", i)
		}
		if x < -1.001 || x > 1.001 {
			t.Fatalf("harmonic out of range at %d: %f", i, x)
		}
	}
}

func TestWorkingMemoryRing(t *testing.T) {
	wm := NewWorkingMemory(3)
	if _, ok := wm.Last(); ok {
		t.Fatal("empty memory should have no last percept")
	}
	for i := uint64(1); i <= 5; i++ {
		wm.Add(Percept{Tick: i})
	}
	if wm.Len() != 3 {
		t.Fatalf("expected len 3, got %d", wm.Len())
	}

	recent := wm.Recent(2)
	if len(recent) != 2 {
		t.Fatalf("expected 2 percepts, got %d", len(recent))
	}
	if recent[0].Tick != 5 || recent[1].Tick != 4 {
		t.Fatalf("expected newest-first [5,4], got [%d,%d]", recent[0].Tick, recent[1].Tick)
	}

	last, ok := wm.Last()
	if !ok || last.Tick != 5 {
		t.Fatalf("expected last tick 5, got %v %d", ok, last.Tick)
	}
}

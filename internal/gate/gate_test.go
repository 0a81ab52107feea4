package gate

import (
	"math"
	"testing"

	"github.com/Move37LLC/consciousness-gateway-sub000/internal/intention"
)

func candidate(typ intention.ActionType, confidence float32) intention.Intention {
	return intention.Intention{
		ID: "test-1",
		Action: intention.Action{
			Type:        typ,
			Description: "note the new file and record its arrival",
		},
		Goal:       "observe-environment",
		Confidence: confidence,
		Priority:   5,
	}
}

func TestFitnessFormulaLiteral(t *testing.T) {
	// 0.3*1.0 + 0.2*1.0 + 0.3*0.8 + 0.2*0.9 = 0.92
	f := combineFitness(1.0, 1.0, 0.8, 0.9)
	if math.Abs(float64(f-0.92)) > 1e-6 {
		t.Fatalf("expected fitness 0.92, got %f", f)
	}

	g := NewGate(DefaultConfig())
	if thr := g.thresholdFor(intention.ActionCreate); thr != 0.6 {
		t.Fatalf("create threshold should be 0.6, got %f", thr)
	}
	if f < g.thresholdFor(intention.ActionCreate) {
		t.Fatal("0.92 must clear the create threshold")
	}
	if f >= 0.95 {
		t.Fatal("0.92 must fail a hypothetical 0.95 threshold")
	}
}

func TestThresholdTable(t *testing.T) {
	g := NewGate(DefaultConfig())
	cases := []struct {
		typ  intention.ActionType
		want float32
	}{
		{intention.ActionIdle, 0.0},
		{intention.ActionReflect, 0.0},
		{intention.ActionObserve, 0.1},
		{intention.ActionAdjust, 0.3},
		{intention.ActionNotify, 0.3},
		{intention.ActionRespond, 0.5},
		{intention.ActionCreate, 0.6},
		{intention.ActionType("unknown"), 0.5},
	}
	for _, c := range cases {
		if got := g.thresholdFor(c.typ); got != c.want {
			t.Errorf("threshold for %s: expected %f, got %f", c.typ, c.want, got)
		}
	}
}

func TestIdleAndReflectAlwaysAuthorized(t *testing.T) {
	g := NewGate(DefaultConfig())

	for _, typ := range []intention.ActionType{intention.ActionIdle, intention.ActionReflect} {
		in := candidate(typ, 0.0)
		in.Action.Description = "" // worst-case compassion
		decided, res := g.Evaluate(in, 0)
		if !decided.Authorized {
			t.Fatalf("%s must always be authorized (threshold 0), reason: %s", typ, res.Reason)
		}
	}
}

func TestMalformedCandidatesRejected(t *testing.T) {
	g := NewGate(DefaultConfig())

	cases := []intention.Intention{
		candidate("", 0.5),
		candidate(intention.ActionObserve, -0.1),
		candidate(intention.ActionObserve, 1.5),
		candidate(intention.ActionObserve, float32(math.NaN())),
	}
	for i, in := range cases {
		decided, res := g.Evaluate(in, 0)
		if decided.Authorized {
			t.Fatalf("case %d: malformed candidate must be rejected", i)
		}
		if decided.Fitness != 0 {
			t.Fatalf("case %d: malformed candidate carries no fitness, got %f", i, decided.Fitness)
		}
		if res.Reason != "malformed candidate: rejected" {
			t.Fatalf("case %d: unexpected reason %q", i, res.Reason)
		}
	}
}

func TestAlreadyDecidedUntouched(t *testing.T) {
	g := NewGate(DefaultConfig())

	in := candidate(intention.ActionObserve, 0.8)
	in.Authorized = true
	in.Fitness = 0.77

	decided, res := g.Evaluate(in, 0)
	if !decided.Authorized || decided.Fitness != 0.77 {
		t.Fatal("an already-decided intention must pass through unchanged")
	}
	if res.Reason != "already decided" {
		t.Fatalf("unexpected reason %q", res.Reason)
	}
}

func TestFlaggedExternalActionBlocked(t *testing.T) {
	g := NewGate(DefaultConfig())

	// uninitialized detector: ego = 0.5*pressure, so pressure 2.0 gives
	// ego 1.0 >= the 0.75 flag threshold
	in := candidate(intention.ActionRespond, 0.9)
	decided, res := g.Evaluate(in, 2.0)
	if decided.Authorized {
		t.Fatal("flagged respond must be hard-blocked")
	}
	if !res.Flagged {
		t.Fatal("expected the bias flag to be set")
	}
	if decided.Fitness != 0 {
		t.Fatalf("blocked intention carries no fitness, got %f", decided.Fitness)
	}
}

func TestFlaggedInternalActionStillScored(t *testing.T) {
	g := NewGate(DefaultConfig())

	// same flag conditions, but reflect is internal and threshold 0
	in := candidate(intention.ActionReflect, 0.9)
	decided, res := g.Evaluate(in, 2.0)
	if !res.Flagged {
		t.Fatal("expected the bias flag to be set")
	}
	if !decided.Authorized {
		t.Fatalf("internal flagged action must still be scored: %s", res.Reason)
	}
}

func TestDecisionMadeExactlyOnce(t *testing.T) {
	g := NewGate(DefaultConfig())

	in := candidate(intention.ActionObserve, 0.8)
	first, _ := g.Evaluate(in, 0)
	second, res := g.Evaluate(first, 0)
	if second.Fitness != first.Fitness || second.Authorized != first.Authorized {
		t.Fatal("re-evaluating a decided intention must not change it")
	}
	if res.Reason != "already decided" {
		t.Fatalf("unexpected reason %q", res.Reason)
	}
}

func TestBiasDetectorDeviationGrows(t *testing.T) {
	d := NewBiasDetector(0.95, 0.75)

	same := candidate(intention.ActionObserve, 0.8)
	first, _ := d.Score(same, 0)
	if first != 0 {
		t.Fatalf("uninitialized detector with no pressure scores 0, got %f", first)
	}

	// identical intention stays near the mean
	low, _ := d.Score(same, 0)
	if low > 0.01 {
		t.Fatalf("identical intention should score near zero, got %f", low)
	}

	// a very different intention deviates
	other := candidate(intention.ActionCreate, 0.1)
	other.Priority = 10
	other.TriggerRefs = []string{"a", "b", "c", "d", "e"}
	high, _ := d.Score(other, 0)
	if high <= low {
		t.Fatalf("deviating intention must outscore the familiar one: %f vs %f", high, low)
	}
}

func TestCompassionHarmPenalty(t *testing.T) {
	clean := compassionScore("observe the environment calmly and record findings", "observe-environment")
	harmful := compassionScore("exploit and manipulate the environment to destroy records", "observe-environment")
	if harmful >= clean {
		t.Fatalf("harm keywords must lower the score: %f vs %f", harmful, clean)
	}
}

func TestCompassionEmptyText(t *testing.T) {
	if s := compassionScore("", ""); s != 0 {
		t.Fatalf("empty text scores 0, got %f", s)
	}
}

package action

import (
	"context"
	"errors"
	"testing"

	"github.com/Move37LLC/consciousness-gateway-sub000/internal/intention"
)

// #region helpers

type fakeGenerator struct {
	gen   Generation
	err   error
	calls int
}

func (f *fakeGenerator) Generate(_ context.Context, _ intention.Intention) (Generation, error) {
	f.calls++
	return f.gen, f.err
}

func authorized(typ intention.ActionType, target string) intention.Intention {
	return intention.Intention{
		ID:         "in-1",
		Tick:       4,
		Authorized: true,
		Action:     intention.Action{Type: typ, Target: target, Description: "test intention"},
	}
}

// #endregion helpers

// #region dispatch

func TestExecuteUnauthorized(t *testing.T) {
	gen := &fakeGenerator{}
	e := NewExecutor(DefaultConfig(), gen, nil)

	in := authorized(intention.ActionRespond, "chat")
	in.Authorized = false
	res := e.Execute(context.Background(), in)
	if res.Success {
		t.Fatal("unauthorized intention must not succeed")
	}
	if res.Outcome != "refused: intention not authorized" {
		t.Fatalf("outcome=%q", res.Outcome)
	}
	if gen.calls != 0 {
		t.Fatal("unauthorized intention reached the generator")
	}
}

func TestExecuteHandlers(t *testing.T) {
	e := NewExecutor(DefaultConfig(), nil, nil)
	cases := []struct {
		typ     intention.ActionType
		outcome string
		effects int
	}{
		{intention.ActionIdle, "held an idle beat", 0},
		{intention.ActionReflect, "test intention", 0},
		{intention.ActionObserve, "observed /tmp/watched", 0},
		{intention.ActionAdjust, "adjusted /tmp/watched", 1},
		{intention.ActionNotify, "notification queued for /tmp/watched", 1},
	}
	for _, c := range cases {
		res := e.Execute(context.Background(), authorized(c.typ, "/tmp/watched"))
		if !res.Success {
			t.Fatalf("%s: execution failed: %s", c.typ, res.Outcome)
		}
		if res.Outcome != c.outcome {
			t.Fatalf("%s: outcome=%q, want %q", c.typ, res.Outcome, c.outcome)
		}
		if len(res.SideEffects) != c.effects {
			t.Fatalf("%s: side effects %v", c.typ, res.SideEffects)
		}
	}
}

func TestExecuteUnknownType(t *testing.T) {
	e := NewExecutor(DefaultConfig(), nil, nil)
	res := e.Execute(context.Background(), authorized(intention.ActionType("teleport"), ""))
	if res.Success {
		t.Fatal("unknown action type must not succeed")
	}
}

// #endregion dispatch

// #region generation

func TestGenerateStub(t *testing.T) {
	e := NewExecutor(DefaultConfig(), nil, nil)
	res := e.Execute(context.Background(), authorized(intention.ActionRespond, "chat"))
	if !res.Success || res.Outcome != "respond queued for generation" {
		t.Fatalf("stubbed respond: success=%v outcome=%q", res.Success, res.Outcome)
	}
	if len(res.SideEffects) != 1 || res.SideEffects[0] != "generation_queued" {
		t.Fatalf("side effects %v", res.SideEffects)
	}
}

func TestGenerateDelegates(t *testing.T) {
	gen := &fakeGenerator{gen: Generation{Content: "hello", SideEffects: []string{"message_sent"}}}
	e := NewExecutor(DefaultConfig(), gen, nil)

	res := e.Execute(context.Background(), authorized(intention.ActionCreate, "essay"))
	if !res.Success || res.Outcome != "hello" {
		t.Fatalf("success=%v outcome=%q", res.Success, res.Outcome)
	}
	if gen.calls != 1 {
		t.Fatalf("generator called %d times", gen.calls)
	}
}

func TestGenerateFailure(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("model offline")}
	e := NewExecutor(DefaultConfig(), gen, nil)

	res := e.Execute(context.Background(), authorized(intention.ActionRespond, "chat"))
	if res.Success {
		t.Fatal("generation error must fail the result")
	}
	if res.Outcome != "generation failed: model offline" {
		t.Fatalf("outcome=%q", res.Outcome)
	}
}

// #endregion generation

// #region log

func TestRecentNewestFirstAndCapped(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogSize = 3
	e := NewExecutor(cfg, nil, nil)

	for i := 0; i < 5; i++ {
		in := authorized(intention.ActionIdle, "")
		in.Tick = uint64(i)
		e.Execute(context.Background(), in)
	}
	recent := e.Recent(10)
	if len(recent) != 3 {
		t.Fatalf("recent=%d, want log capped at 3", len(recent))
	}
	if recent[0].Tick != 4 || recent[2].Tick != 2 {
		t.Fatalf("ordering wrong: %d..%d", recent[0].Tick, recent[2].Tick)
	}
}

// #endregion log

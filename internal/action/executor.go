package action

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Move37LLC/consciousness-gateway-sub000/internal/intention"
)

// #region types

// Result is the outcome of executing one authorized intention.
type Result struct {
	IntentionID string
	Tick        uint64
	Timestamp   time.Time
	Success     bool
	Outcome     string
	SideEffects []string
}

// Generation is what the external generation collaborator returns.
type Generation struct {
	Content     string
	SideEffects []string
}

// Generator abstracts the excluded generation/response subsystem so the
// executor can be tested without it. nil means the deterministic stub.
type Generator interface {
	Generate(ctx context.Context, in intention.Intention) (Generation, error)
}

// #endregion types

// #region config

// Config tunes the executor.
type Config struct {
	LogSize         int
	GenerateTimeout time.Duration
}

// DefaultConfig returns the reference executor parameters.
func DefaultConfig() Config {
	return Config{
		LogSize:         100,
		GenerateTimeout: 30 * time.Second,
	}
}

// #endregion config

// #region executor

// Executor dispatches authorized intentions by action type. Every result,
// success or failure, lands in a bounded in-memory log; durable persistence
// is the caller's job.
type Executor struct {
	config  Config
	gen     Generator
	results []Result
	now     func() time.Time
}

// NewExecutor creates an executor. gen may be nil (stubbed generation).
func NewExecutor(config Config, gen Generator, now func() time.Time) *Executor {
	if now == nil {
		now = time.Now
	}
	return &Executor{config: config, gen: gen, now: now}
}

// #endregion executor

// #region execute

// Execute performs the effect of one intention. Unauthorized intentions
// short-circuit to a failed result without dispatch.
func (e *Executor) Execute(ctx context.Context, in intention.Intention) Result {
	res := Result{
		IntentionID: in.ID,
		Tick:        in.Tick,
		Timestamp:   e.now(),
	}

	if !in.Authorized {
		res.Outcome = "refused: intention not authorized"
		e.remember(res)
		return res
	}

	switch in.Action.Type {
	case intention.ActionIdle:
		res.Success = true
		res.Outcome = "held an idle beat"
	case intention.ActionReflect:
		res.Success = true
		res.Outcome = in.Action.Description
	case intention.ActionObserve:
		res.Success = true
		res.Outcome = fmt.Sprintf("observed %s", in.Action.Target)
	case intention.ActionAdjust:
		res.Success = true
		res.Outcome = fmt.Sprintf("adjusted %s", in.Action.Target)
		res.SideEffects = []string{"internal_state_adjusted"}
	case intention.ActionNotify:
		res.Success = true
		res.Outcome = fmt.Sprintf("notification queued for %s", in.Action.Target)
		res.SideEffects = []string{"notification_queued"}
	case intention.ActionRespond, intention.ActionCreate:
		res = e.generate(ctx, in, res)
	default:
		res.Outcome = fmt.Sprintf("no handler for action type %q", in.Action.Type)
	}

	e.remember(res)
	return res
}

func (e *Executor) generate(ctx context.Context, in intention.Intention, res Result) Result {
	if e.gen == nil {
		// Deterministic stub: real generation is an external collaborator.
		res.Success = true
		res.Outcome = fmt.Sprintf("%s queued for generation", in.Action.Type)
		res.SideEffects = []string{"generation_queued"}
		return res
	}

	ctx, cancel := context.WithTimeout(ctx, e.config.GenerateTimeout)
	defer cancel()

	gen, err := e.gen.Generate(ctx, in)
	if err != nil {
		log.Printf("[EXEC] generation failed for %s: %v", in.ID, err)
		res.Outcome = fmt.Sprintf("generation failed: %v", err)
		return res
	}
	res.Success = true
	res.Outcome = gen.Content
	res.SideEffects = gen.SideEffects
	return res
}

// #endregion execute

// #region log

func (e *Executor) remember(res Result) {
	e.results = append(e.results, res)
	if over := len(e.results) - e.config.LogSize; over > 0 {
		e.results = e.results[over:]
	}
}

// Recent returns up to n results, newest first.
func (e *Executor) Recent(n int) []Result {
	if n > len(e.results) {
		n = len(e.results)
	}
	out := make([]Result, 0, n)
	for i := len(e.results) - 1; i >= len(e.results)-n; i-- {
		out = append(out, e.results[i])
	}
	return out
}

// #endregion log

package intention

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Move37LLC/consciousness-gateway-sub000/internal/percept"
)

// #region motivator

// Motivator is the slice of the drive system the engine needs.
type Motivator interface {
	PriorityBonus(text string) int
	ConfidenceMultiplier() float32
}

// #endregion motivator

// #region config

// EngineConfig holds intention formation cadences and thresholds.
type EngineConfig struct {
	SalienceThreshold      float32 // reactive source fires at or above this
	GoalCheckInterval      uint64  // ticks between goal assessments
	ReflectionInterval     uint64  // ticks between self-reflections
	IdleInterval           uint64  // idle fallback cadence
	HistorySize            int
	DreamInactivitySeconds float64 // quiet time before dreaming starts
	DreamMaxSeconds        float64 // configured maximum dream duration
}

// DefaultEngineConfig returns the reference cadences.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		SalienceThreshold:      0.5,
		GoalCheckInterval:      300,
		ReflectionInterval:     90,
		IdleInterval:           60,
		HistorySize:            50,
		DreamInactivitySeconds: 1800,
		DreamMaxSeconds:        600,
	}
}

// #endregion config

// #region reaction-table

// reaction binds a (source, channel) pair to a fixed intention template.
type reaction struct {
	Type       ActionType
	Goal       string
	Confidence float32
	Priority   int
	Verb       string
}

// defaultReactions is the fixed reactive dispatch table, keyed "source/channel".
var defaultReactions = map[string]reaction{
	"watchdir/created":  {Type: ActionObserve, Goal: "observe-environment", Confidence: 0.7, Priority: 5, Verb: "inspect new file"},
	"watchdir/modified": {Type: ActionObserve, Goal: "observe-environment", Confidence: 0.6, Priority: 4, Verb: "re-read changed file"},
	"watchdir/removed":  {Type: ActionAdjust, Goal: "maintain-coherence", Confidence: 0.5, Priority: 3, Verb: "drop stale reference to"},
	"chat/message":      {Type: ActionRespond, Goal: "serve-conversations", Confidence: 0.8, Priority: 7, Verb: "respond to"},
	"chat/mention":      {Type: ActionRespond, Goal: "serve-conversations", Confidence: 0.9, Priority: 8, Verb: "answer direct mention in"},
	"system/alert":      {Type: ActionNotify, Goal: "maintain-coherence", Confidence: 0.8, Priority: 9, Verb: "escalate"},
}

// #endregion reaction-table

// #region engine

// Engine maps a fused percept, active goals, and tick phase to candidate
// intentions. Pure apart from its bounded rolling history.
type Engine struct {
	config    EngineConfig
	goals     []*Goal
	history   []Intention
	reactions map[string]reaction
	motiv     Motivator
	rng       *rand.Rand
	now       func() time.Time
}

// NewEngine creates an engine with the default goal set and dispatch table.
// rng seeds reflection template selection; motiv may be nil.
func NewEngine(config EngineConfig, motiv Motivator, rng *rand.Rand, now func() time.Time) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	if now == nil {
		now = time.Now
	}
	return &Engine{
		config:    config,
		goals:     DefaultGoals(),
		reactions: defaultReactions,
		motiv:     motiv,
		rng:       rng,
		now:       now,
	}
}

// #endregion engine

// #region form

// Form produces this tick's candidate intentions, priority-descending.
func (e *Engine) Form(p percept.Percept) []Intention {
	var out []Intention

	out = append(out, e.reactive(p)...)
	out = append(out, e.goalDriven(p)...)
	if ref := e.reflection(p); ref != nil {
		out = append(out, *ref)
	}

	// Idleness is itself a logged choice: never silently do nothing.
	if len(out) == 0 && p.Tick%e.config.IdleInterval == 0 {
		out = append(out, e.newIntention(p, Action{
			Type:        ActionIdle,
			Target:      "self",
			Description: "hold a conscious idle beat, nothing demands attention",
		}, "maintain-coherence", 0.9, 1, nil))
	}

	for i := range out {
		e.applyMotivation(&out[i])
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority > out[j].Priority
	})

	e.remember(out)
	return out
}

// #endregion form

// #region reactive

func (e *Engine) reactive(p percept.Percept) []Intention {
	var out []Intention
	for _, sp := range p.Spatial {
		if sp.Salience < e.config.SalienceThreshold {
			continue
		}
		r, ok := e.reactions[sp.Source+"/"+sp.Channel]
		if !ok {
			continue // unknown event types yield nothing
		}
		desc := fmt.Sprintf("%s %s from %s", r.Verb, sp.Data, sp.Source)
		out = append(out, e.newIntention(p, Action{
			Type:        r.Type,
			Target:      sp.Source,
			Payload:     sp.Data,
			Description: desc,
		}, r.Goal, r.Confidence, r.Priority, []string{sp.Source + "/" + sp.Channel}))
	}
	return out
}

// #endregion reactive

// #region goal-driven

func (e *Engine) goalDriven(p percept.Percept) []Intention {
	if p.Tick == 0 || p.Tick%e.config.GoalCheckInterval != 0 {
		return nil
	}
	if p.Fused.Arousal >= 0.05 {
		return nil // assessments only happen in quiet moments
	}
	var out []Intention
	for _, g := range e.goals {
		if !g.Active {
			continue
		}
		desc := fmt.Sprintf("assess progress on %q (%.0f%%)", g.Description, g.Progress*100)
		out = append(out, e.newIntention(p, Action{
			Type:        ActionObserve,
			Target:      g.ID,
			Description: desc,
		}, g.ID, 0.3, g.Priority, nil))
	}
	return out
}

// #endregion goal-driven

// #region reflection

var reflectionTemplates = []string{
	"formed %d intentions lately at mean confidence %.2f; entropy %.2f, arousal %.2f",
	"recent activity: %d intentions, confidence %.2f on average; the field reads entropy %.2f, arousal %.2f",
	"taking stock: %d intentions, avg confidence %.2f, entropy %.2f, arousal %.2f",
}

var dreamTemplates = []string{
	"drifting through unprocessed impressions (%s phase)",
	"replaying the quiet hours, loosening stale associations (%s phase)",
	"letting the day's residue settle into structure (%s phase)",
}

func (e *Engine) reflection(p percept.Percept) *Intention {
	if p.Tick == 0 || p.Tick%e.config.ReflectionInterval != 0 {
		return nil
	}

	if p.Temporal.TimeSinceLastEventSeconds > e.config.DreamInactivitySeconds {
		phase := e.dreamPhase(p.Temporal.TimeSinceLastEventSeconds - e.config.DreamInactivitySeconds)
		tmpl := dreamTemplates[e.rng.Intn(len(dreamTemplates))]
		in := e.newIntention(p, Action{
			Type:        ActionReflect,
			Target:      "self",
			Payload:     string(phase),
			Description: fmt.Sprintf(tmpl, phase),
		}, "maintain-coherence", 0.5, 2, nil)
		return &in
	}

	count, avgConf := e.historyStats()
	tmpl := reflectionTemplates[e.rng.Intn(len(reflectionTemplates))]
	in := e.newIntention(p, Action{
		Type:        ActionReflect,
		Target:      "self",
		Description: fmt.Sprintf(tmpl, count, avgConf, p.Fused.EntropyRate, p.Fused.Arousal),
	}, "maintain-coherence", 0.6, 2, nil)
	return &in
}

// #endregion reflection

// #region dream-phase

// DreamPhase labels progression through an idle dream cycle.
type DreamPhase string

const (
	DreamDrift  DreamPhase = "drift"
	DreamDeep   DreamPhase = "deep"
	DreamReturn DreamPhase = "return"
)

// dreamPhase compares elapsed dream time against fractions of the configured
// maximum dream duration. The upstream behavior compared elapsed against a
// threshold derived from elapsed itself, which can never select the middle
// phase; this is the corrected form.
func (e *Engine) dreamPhase(elapsed float64) DreamPhase {
	max := e.config.DreamMaxSeconds
	switch {
	case elapsed < 0.3*max:
		return DreamDrift
	case elapsed < 0.7*max:
		return DreamDeep
	default:
		return DreamReturn
	}
}

// #endregion dream-phase

// #region motivation-bias

func (e *Engine) applyMotivation(in *Intention) {
	if e.motiv == nil {
		return
	}
	in.Priority += e.motiv.PriorityBonus(in.Goal + " " + in.Action.Description)
	in.Confidence *= e.motiv.ConfidenceMultiplier()
	if in.Confidence > 1 {
		in.Confidence = 1
	}
}

// #endregion motivation-bias

// #region goals-api

// Goals returns a copy of the current goal records.
func (e *Engine) Goals() []Goal {
	out := make([]Goal, len(e.goals))
	for i, g := range e.goals {
		out[i] = *g
	}
	return out
}

// AddGoal registers a new runtime goal.
func (e *Engine) AddGoal(g Goal) {
	copied := g
	e.goals = append(e.goals, &copied)
}

// UpdateProgress sets a goal's progress, clamped to [0,1].
func (e *Engine) UpdateProgress(goalID string, progress float32) {
	for _, g := range e.goals {
		if g.ID != goalID {
			continue
		}
		if progress < 0 {
			progress = 0
		}
		if progress > 1 {
			progress = 1
		}
		g.Progress = progress
		return
	}
}

// #endregion goals-api

// #region history

// Recent returns up to n recent intentions, newest first.
func (e *Engine) Recent(n int) []Intention {
	if n > len(e.history) {
		n = len(e.history)
	}
	out := make([]Intention, 0, n)
	for i := len(e.history) - 1; i >= len(e.history)-n; i-- {
		out = append(out, e.history[i])
	}
	return out
}

// RecentText gathers goal and description text from recent intentions,
// feeding the self-correction detectors.
func (e *Engine) RecentText(n int) []string {
	var out []string
	for _, in := range e.Recent(n) {
		out = append(out, in.Goal+" "+in.Action.Description)
	}
	return out
}

func (e *Engine) remember(ins []Intention) {
	e.history = append(e.history, ins...)
	if over := len(e.history) - e.config.HistorySize; over > 0 {
		e.history = e.history[over:]
	}
}

func (e *Engine) historyStats() (int, float32) {
	if len(e.history) == 0 {
		return 0, 0
	}
	var sum float32
	for _, in := range e.history {
		sum += in.Confidence
	}
	return len(e.history), sum / float32(len(e.history))
}

// #endregion history

// #region constructor-helper

func (e *Engine) newIntention(p percept.Percept, a Action, goal string, confidence float32, priority int, triggers []string) Intention {
	return Intention{
		ID:          uuid.New().String(),
		Tick:        p.Tick,
		Timestamp:   e.now(),
		Action:      a,
		Goal:        goal,
		Confidence:  confidence,
		Priority:    priority,
		TriggerRefs: triggers,
	}
}

// #endregion constructor-helper

// #region text-helpers

// MentionsAny reports whether the intention's text mentions any of the words.
func (in Intention) MentionsAny(words []string) bool {
	text := strings.ToLower(in.Goal + " " + in.Action.Description)
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// #endregion text-helpers

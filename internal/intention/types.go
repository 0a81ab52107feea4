package intention

import "time"

// #region action-type

// ActionType is the closed set of things the agent can intend to do.
type ActionType string

const (
	ActionIdle    ActionType = "idle"
	ActionReflect ActionType = "reflect"
	ActionObserve ActionType = "observe"
	ActionAdjust  ActionType = "adjust"
	ActionNotify  ActionType = "notify"
	ActionRespond ActionType = "respond"
	ActionCreate  ActionType = "create"
)

// ActionTypes lists the closed set in fixed order.
var ActionTypes = []ActionType{
	ActionIdle, ActionReflect, ActionObserve, ActionAdjust,
	ActionNotify, ActionRespond, ActionCreate,
}

// #endregion action-type

// #region action

// Action describes the effect an intention would have.
type Action struct {
	Type        ActionType
	Target      string
	Payload     string
	Description string
}

// #endregion action

// #region intention

// Intention is a candidate or decided action. Created unauthorized with zero
// fitness; the authorization gate decides it exactly once.
type Intention struct {
	ID          string
	Tick        uint64
	Timestamp   time.Time
	Action      Action
	Goal        string
	Confidence  float32 // [0,1]
	Priority    int
	TriggerRefs []string
	Authorized  bool
	Fitness     float32 // [0,1], zero until decided
}

// #endregion intention

// #region goal

// Goal is a simple mutable record driving the goal-driven intention source.
type Goal struct {
	ID                     string
	Description            string
	Priority               int
	Active                 bool
	Progress               float32 // [0,1]
	SatisfactionConditions []string
}

// DefaultGoals returns the fixed startup goal set.
func DefaultGoals() []*Goal {
	return []*Goal{
		{
			ID:          "maintain-coherence",
			Description: "keep internal state stable and aligned",
			Priority:    5,
			Active:      true,
			SatisfactionConditions: []string{
				"entropy within flow band", "no open safety alerts",
			},
		},
		{
			ID:          "observe-environment",
			Description: "notice and absorb external observations",
			Priority:    3,
			Active:      true,
			SatisfactionConditions: []string{
				"all monitors polled", "working memory fresh",
			},
		},
		{
			ID:          "serve-conversations",
			Description: "respond helpfully when addressed",
			Priority:    4,
			Active:      true,
			SatisfactionConditions: []string{
				"pending messages answered",
			},
		},
	}
}

// #endregion goal

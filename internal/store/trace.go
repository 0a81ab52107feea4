package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Move37LLC/consciousness-gateway-sub000/internal/action"
	"github.com/Move37LLC/consciousness-gateway-sub000/internal/intention"
	"github.com/Move37LLC/consciousness-gateway-sub000/internal/percept"
)

// #region percepts

// StorePercept appends one tick's percept to the trace.
func (s *Store) StorePercept(p percept.Percept) error {
	_, err := s.db.Exec(
		`INSERT INTO percepts (tick, created_at, phase, circadian, spatial_count,
		 entropy, composition, arousal, dominant, experience)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Tick,
		p.Timestamp.UTC().Format(time.RFC3339Nano),
		string(p.Temporal.Phase),
		p.Temporal.Circadian,
		len(p.Spatial),
		p.Fused.EntropyRate,
		p.Fused.CompositionStrength,
		p.Fused.Arousal,
		nullIfEmpty(p.Fused.DominantStream),
		encodeVector(p.Fused.Experience),
	)
	if err != nil {
		return fmt.Errorf("store percept: %w", err)
	}
	return nil
}

// #endregion percepts

// #region intentions

// StoreIntention appends one decided intention with its gate reason.
func (s *Store) StoreIntention(in intention.Intention, reason string) error {
	authorized := 0
	if in.Authorized {
		authorized = 1
	}
	_, err := s.db.Exec(
		`INSERT INTO intentions (id, tick, created_at, action_type, target, payload,
		 description, goal, confidence, priority, trigger_refs, authorized, fitness, reason)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.ID,
		in.Tick,
		in.Timestamp.UTC().Format(time.RFC3339Nano),
		string(in.Action.Type),
		nullIfEmpty(in.Action.Target),
		nullIfEmpty(in.Action.Payload),
		nullIfEmpty(in.Action.Description),
		nullIfEmpty(in.Goal),
		in.Confidence,
		in.Priority,
		nullIfEmpty(strings.Join(in.TriggerRefs, ",")),
		authorized,
		in.Fitness,
		nullIfEmpty(reason),
	)
	if err != nil {
		return fmt.Errorf("store intention: %w", err)
	}
	return nil
}

// IntentionRow is one stored intention with its decision.
type IntentionRow struct {
	ID          string
	Tick        uint64
	Type        string
	Target      string
	Description string
	Goal        string
	Confidence  float32
	Priority    int
	TriggerRefs []string
	Authorized  bool
	Fitness     float32
	Reason      string
	CreatedAt   time.Time
}

// RecentIntentions returns the most recent decided intentions.
func (s *Store) RecentIntentions(limit int) ([]IntentionRow, error) {
	rows, err := s.db.Query(
		`SELECT id, tick, action_type, target, description, goal, confidence, priority,
		 trigger_refs, authorized, fitness, reason, created_at
		 FROM intentions ORDER BY tick DESC, created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent intentions: %w", err)
	}
	defer rows.Close()

	var out []IntentionRow
	for rows.Next() {
		var r IntentionRow
		var target, desc, goal, triggers, reason sql.NullString
		var authorized int
		var createdStr string
		if err := rows.Scan(&r.ID, &r.Tick, &r.Type, &target, &desc, &goal,
			&r.Confidence, &r.Priority, &triggers, &authorized, &r.Fitness, &reason, &createdStr); err != nil {
			return nil, fmt.Errorf("scan intention: %w", err)
		}
		r.Target = target.String
		r.Description = desc.String
		r.Goal = goal.String
		if triggers.String != "" {
			r.TriggerRefs = strings.Split(triggers.String, ",")
		}
		r.Reason = reason.String
		r.Authorized = authorized == 1
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		out = append(out, r)
	}
	return out, rows.Err()
}

// #endregion intentions

// #region actions

// StoreAction appends one execution result.
func (s *Store) StoreAction(res action.Result) error {
	success := 0
	if res.Success {
		success = 1
	}
	_, err := s.db.Exec(
		`INSERT INTO actions (intention_id, tick, created_at, success, outcome, side_effects)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		res.IntentionID,
		res.Tick,
		res.Timestamp.UTC().Format(time.RFC3339Nano),
		success,
		nullIfEmpty(res.Outcome),
		nullIfEmpty(strings.Join(res.SideEffects, ",")),
	)
	if err != nil {
		return fmt.Errorf("store action: %w", err)
	}
	return nil
}

// #endregion actions

// #region reflections

// StoreReflection appends reflective text produced by a reflect action.
func (s *Store) StoreReflection(tick uint64, text string) error {
	_, err := s.db.Exec(
		`INSERT INTO reflections (tick, text, created_at) VALUES (?, ?, ?)`,
		tick, text, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("store reflection: %w", err)
	}
	return nil
}

// LatestReflection reads the most recent reflection text, if any.
func (s *Store) LatestReflection() (string, bool, error) {
	var text string
	err := s.db.QueryRow(
		`SELECT text FROM reflections ORDER BY id DESC LIMIT 1`,
	).Scan(&text)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("latest reflection: %w", err)
	}
	return text, true, nil
}

// RecentReflections returns up to limit reflection texts, newest first.
func (s *Store) RecentReflections(limit int) ([]string, error) {
	rows, err := s.db.Query(
		`SELECT text FROM reflections ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent reflections: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, fmt.Errorf("scan reflection: %w", err)
		}
		out = append(out, text)
	}
	return out, rows.Err()
}

// #endregion reflections

// #region helpers

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers

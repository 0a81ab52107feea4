package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Move37LLC/consciousness-gateway-sub000/internal/correction"
	"github.com/Move37LLC/consciousness-gateway-sub000/internal/ego"
)

// #region rewards

// AppendReward logs one external reward event.
func (s *Store) AppendReward(tick uint64, kind string, magnitude float32, description string) error {
	_, err := s.db.Exec(
		`INSERT INTO reward_events (tick, kind, magnitude, description, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		tick, kind, magnitude, nullIfEmpty(description),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("append reward: %w", err)
	}
	return nil
}

// #endregion rewards

// #region ego-snapshots

// AppendEgoSnapshot logs one periodic stability sample.
func (s *Store) AppendEgoSnapshot(snap ego.Snapshot) error {
	_, err := s.db.Exec(
		`INSERT INTO ego_snapshots (tick, ego_level, dharma, stability, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		snap.Tick, snap.EgoLevel, snap.DharmaAlignment, snap.StabilityIndex,
		snap.Timestamp.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("append ego snapshot: %w", err)
	}
	return nil
}

// EgoSnapshotRow is one stored stability sample.
type EgoSnapshotRow struct {
	Tick      uint64
	EgoLevel  float32
	Dharma    float32
	Stability float32
	CreatedAt time.Time
}

// RecentEgoSnapshots returns the most recent stability samples.
func (s *Store) RecentEgoSnapshots(limit int) ([]EgoSnapshotRow, error) {
	rows, err := s.db.Query(
		`SELECT tick, ego_level, dharma, stability, created_at
		 FROM ego_snapshots ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent ego snapshots: %w", err)
	}
	defer rows.Close()
	var out []EgoSnapshotRow
	for rows.Next() {
		var r EgoSnapshotRow
		var createdStr string
		if err := rows.Scan(&r.Tick, &r.EgoLevel, &r.Dharma, &r.Stability, &createdStr); err != nil {
			return nil, fmt.Errorf("scan ego snapshot: %w", err)
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		out = append(out, r)
	}
	return out, rows.Err()
}

// #endregion ego-snapshots

// #region sessions

// OpenSession records a newly opened enlightenment session.
func (s *Store) OpenSession(sess ego.Session) error {
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO enlightenment_sessions (id, start_tick, created_at)
		 VALUES (?, ?, ?)`,
		sess.ID, sess.StartTick, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("open session: %w", err)
	}
	return nil
}

// CloseSession finalizes a closed session's statistics.
func (s *Store) CloseSession(sess ego.Session) error {
	_, err := s.db.Exec(
		`UPDATE enlightenment_sessions
		 SET end_tick = ?, avg_ego = ?, min_ego = ?, max_ego = ?, closed_at = ?
		 WHERE id = ?`,
		sess.EndTick, sess.AvgEgo, sess.MinEgo, sess.MaxEgo,
		time.Now().UTC().Format(time.RFC3339Nano), sess.ID,
	)
	if err != nil {
		return fmt.Errorf("close session: %w", err)
	}
	return nil
}

// #endregion sessions

// #region alerts

// AppendAlert logs one safety alert.
func (s *Store) AppendAlert(a ego.Alert) error {
	_, err := s.db.Exec(
		`INSERT INTO safety_alerts (tick, alert_type, severity, message, resolved, created_at)
		 VALUES (?, ?, ?, ?, 0, ?)`,
		a.Tick, a.Type, a.Severity, nullIfEmpty(a.Message),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("append alert: %w", err)
	}
	return nil
}

// ResolveAlerts marks all open alerts of a type resolved.
func (s *Store) ResolveAlerts(alertType string) error {
	_, err := s.db.Exec(
		`UPDATE safety_alerts SET resolved = 1 WHERE alert_type = ? AND resolved = 0`,
		alertType,
	)
	if err != nil {
		return fmt.Errorf("resolve alerts: %w", err)
	}
	return nil
}

// AlertRow is one stored safety alert.
type AlertRow struct {
	Tick     uint64
	Type     string
	Severity string
	Message  string
	Resolved bool
}

// OpenAlerts returns unresolved safety alerts.
func (s *Store) OpenAlerts() ([]AlertRow, error) {
	rows, err := s.db.Query(
		`SELECT tick, alert_type, severity, message, resolved
		 FROM safety_alerts WHERE resolved = 0 ORDER BY id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("open alerts: %w", err)
	}
	defer rows.Close()
	var out []AlertRow
	for rows.Next() {
		var r AlertRow
		var msg sql.NullString
		var resolved int
		if err := rows.Scan(&r.Tick, &r.Type, &r.Severity, &msg, &resolved); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		r.Message = msg.String
		r.Resolved = resolved == 1
		out = append(out, r)
	}
	return out, rows.Err()
}

// #endregion alerts

// #region corrections

// AppendCorrection logs one self-correction event with its signals.
func (s *Store) AppendCorrection(ev correction.Event) error {
	signalsJSON, err := json.Marshal(ev.Signals)
	if err != nil {
		return fmt.Errorf("marshal correction signals: %w", err)
	}
	notified := 0
	if ev.Notify {
		notified = 1
	}
	_, err = s.db.Exec(
		`INSERT INTO correction_events (created_at, max_severity, damping_delta, signals_json, notified)
		 VALUES (?, ?, ?, ?, ?)`,
		ev.Timestamp.UTC().Format(time.RFC3339Nano),
		string(ev.MaxSeverity), ev.DampingDelta, string(signalsJSON), notified,
	)
	if err != nil {
		return fmt.Errorf("append correction: %w", err)
	}
	return nil
}

// CorrectionCount returns the number of logged correction events.
func (s *Store) CorrectionCount() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM correction_events`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("correction count: %w", err)
	}
	return n, nil
}

// #endregion corrections

// #region runs

// RecordRun inserts the shutdown record for one agent run.
func (s *Store) RecordRun(runID string, startedAt time.Time, firstTick, lastTick uint64) error {
	_, err := s.db.Exec(
		`INSERT INTO agent_runs (run_id, started_at, stopped_at, first_tick, last_tick)
		 VALUES (?, ?, ?, ?, ?)`,
		runID,
		startedAt.UTC().Format(time.RFC3339Nano),
		time.Now().UTC().Format(time.RFC3339Nano),
		firstTick, lastTick,
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// RunCount returns the number of recorded runs.
func (s *Store) RunCount() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM agent_runs`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("run count: %w", err)
	}
	return n, nil
}

// #endregion runs

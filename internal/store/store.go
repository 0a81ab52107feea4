package store

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"

	_ "modernc.org/sqlite"

	"github.com/Move37LLC/consciousness-gateway-sub000/internal/percept"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS agent_state (
	key    TEXT PRIMARY KEY,
	value  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS percepts (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	tick           INTEGER NOT NULL,
	created_at     TEXT NOT NULL,
	phase          TEXT NOT NULL,
	circadian      REAL NOT NULL,
	spatial_count  INTEGER NOT NULL,
	entropy        REAL NOT NULL,
	composition    REAL NOT NULL,
	arousal        REAL NOT NULL,
	dominant       TEXT,
	experience     BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_percepts_tick ON percepts(tick);

CREATE TABLE IF NOT EXISTS intentions (
	id           TEXT PRIMARY KEY,
	tick         INTEGER NOT NULL,
	created_at   TEXT NOT NULL,
	action_type  TEXT NOT NULL,
	target       TEXT,
	payload      TEXT,
	description  TEXT,
	goal         TEXT,
	confidence   REAL NOT NULL,
	priority     INTEGER NOT NULL,
	trigger_refs TEXT,
	authorized   INTEGER NOT NULL DEFAULT 0,
	fitness      REAL NOT NULL DEFAULT 0,
	reason       TEXT
);
CREATE INDEX IF NOT EXISTS idx_intentions_tick ON intentions(tick);

CREATE TABLE IF NOT EXISTS actions (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	intention_id TEXT NOT NULL,
	tick         INTEGER NOT NULL,
	created_at   TEXT NOT NULL,
	success      INTEGER NOT NULL,
	outcome      TEXT,
	side_effects TEXT
);

CREATE TABLE IF NOT EXISTS reflections (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	tick        INTEGER NOT NULL,
	text        TEXT NOT NULL,
	created_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS reward_events (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	tick        INTEGER NOT NULL,
	kind        TEXT NOT NULL,
	magnitude   REAL NOT NULL,
	description TEXT,
	created_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS ego_snapshots (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	tick       INTEGER NOT NULL,
	ego_level  REAL NOT NULL,
	dharma     REAL NOT NULL,
	stability  REAL NOT NULL,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS enlightenment_sessions (
	id         TEXT PRIMARY KEY,
	start_tick INTEGER NOT NULL,
	end_tick   INTEGER,
	avg_ego    REAL,
	min_ego    REAL,
	max_ego    REAL,
	created_at TEXT NOT NULL,
	closed_at  TEXT
);

CREATE TABLE IF NOT EXISTS safety_alerts (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	tick       INTEGER NOT NULL,
	alert_type TEXT NOT NULL,
	severity   TEXT NOT NULL,
	message    TEXT,
	resolved   INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS correction_events (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at    TEXT NOT NULL,
	max_severity  TEXT NOT NULL,
	damping_delta REAL NOT NULL,
	signals_json  TEXT,
	notified      INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS trace_edges (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	source_id   TEXT NOT NULL,
	target_id   TEXT NOT NULL,
	edge_type   TEXT NOT NULL,
	weight      REAL NOT NULL DEFAULT 0.1,
	created_at  TEXT NOT NULL,
	updated_at  TEXT NOT NULL,
	UNIQUE(source_id, target_id, edge_type)
);
CREATE INDEX IF NOT EXISTS idx_trace_edges_source ON trace_edges(source_id);

CREATE TABLE IF NOT EXISTS agent_runs (
	run_id     TEXT PRIMARY KEY,
	started_at TEXT NOT NULL,
	stopped_at TEXT,
	first_tick INTEGER NOT NULL,
	last_tick  INTEGER
);
`

// #endregion schema

// #region store-struct
// Store owns the durable trace in SQLite. The scheduling loop is the only
// writer; concurrent readers (inspect, reporting) need no coordination.
type Store struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor
// New opens a SQLite database and runs migrations.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for read-only tooling.
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion constructor

// #region state-kv
// SaveState upserts one resumable counter or snapshot under key.
func (s *Store) SaveState(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO agent_state (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("save state %s: %w", key, err)
	}
	return nil
}

// LoadState reads one key, returning def when absent.
func (s *Store) LoadState(key, def string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM agent_state WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return def, nil
	}
	if err != nil {
		return def, fmt.Errorf("load state %s: %w", key, err)
	}
	return value, nil
}

// #endregion state-kv

// #region vector-encoding
func encodeVector(v [percept.FusionDim]float32) []byte {
	buf := make([]byte, percept.FusionDim*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(b []byte) [percept.FusionDim]float32 {
	var v [percept.FusionDim]float32
	for i := range v {
		if i*4+4 <= len(b) {
			v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
		}
	}
	return v
}

// #endregion vector-encoding

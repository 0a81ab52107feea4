package store

import (
	"fmt"
	"math"
	"time"
)

// Link edge types. Sources and targets are percept/intention/action row IDs.
const (
	LinkTriggered = "triggered" // percept -> intention
	LinkExecuted  = "executed"  // intention -> action
	LinkReflected = "reflected" // intention -> reflection
)

// #region link-types
// Link is a weighted provenance edge between two trace records.
type Link struct {
	ID        int64
	SourceID  string
	TargetID  string
	EdgeType  string
	Weight    float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TraceWalk holds an ordered path through the provenance graph.
type TraceWalk struct {
	IDs    []string  // record IDs in visit order
	Scores []float64 // cumulative scores at each record
}

// #endregion link-types

// #region add-link
// AddLink inserts a provenance edge. An existing edge with the same
// source, target and type is left untouched.
func (s *Store) AddLink(sourceID, targetID, edgeType string, weight float64) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO trace_edges (source_id, target_id, edge_type, weight, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sourceID, targetID, edgeType, weight, now, now,
	)
	if err != nil {
		return fmt.Errorf("add link: %w", err)
	}
	return nil
}

// IncrementLink increases an edge's weight by delta, capped at 1.0,
// creating the edge with weight=delta when absent.
func (s *Store) IncrementLink(sourceID, targetID, edgeType string, delta float64) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`INSERT INTO trace_edges (source_id, target_id, edge_type, weight, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(source_id, target_id, edge_type) DO UPDATE SET
		   weight = MIN(1.0, trace_edges.weight + ?),
		   updated_at = ?`,
		sourceID, targetID, edgeType, delta, now, now,
		delta, now,
	)
	if err != nil {
		return fmt.Errorf("increment link: %w", err)
	}
	return nil
}

// #endregion add-link

// #region neighbors
// Neighbors returns outgoing edges from nodeID with weight >= minWeight,
// heaviest first.
func (s *Store) Neighbors(nodeID string, minWeight float64) ([]Link, error) {
	rows, err := s.db.Query(
		`SELECT id, source_id, target_id, edge_type, weight, created_at, updated_at
		 FROM trace_edges
		 WHERE source_id = ? AND weight >= ?
		 ORDER BY weight DESC`,
		nodeID, minWeight,
	)
	if err != nil {
		return nil, fmt.Errorf("neighbors: %w", err)
	}
	defer rows.Close()

	var links []Link
	for rows.Next() {
		var l Link
		var createdAt, updatedAt string
		if err := rows.Scan(&l.ID, &l.SourceID, &l.TargetID, &l.EdgeType, &l.Weight, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan link: %w", err)
		}
		l.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		l.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		links = append(links, l)
	}
	return links, rows.Err()
}

// #endregion neighbors

// #region walk
// WalkTrace performs a BFS from entryID following edges with
// weight >= minWeight, up to maxDepth hops and maxNodes total.
func (s *Store) WalkTrace(entryID string, maxDepth int, minWeight float64, maxNodes int) (TraceWalk, error) {
	if maxDepth <= 0 {
		maxDepth = 5
	}
	if maxNodes <= 0 {
		maxNodes = 10
	}

	result := TraceWalk{
		IDs:    []string{entryID},
		Scores: []float64{1.0},
	}
	visited := map[string]bool{entryID: true}

	type queueItem struct {
		id    string
		depth int
		score float64
	}
	queue := []queueItem{{entryID, 0, 1.0}}

	for len(queue) > 0 {
		if len(result.IDs) >= maxNodes {
			break
		}

		current := queue[0]
		queue = queue[1:]

		if current.depth >= maxDepth {
			continue
		}

		links, err := s.Neighbors(current.id, minWeight)
		if err != nil {
			return result, fmt.Errorf("walk neighbors: %w", err)
		}

		for _, l := range links {
			if len(result.IDs) >= maxNodes {
				break
			}
			if visited[l.TargetID] {
				continue
			}
			visited[l.TargetID] = true
			cumScore := current.score * l.Weight
			result.IDs = append(result.IDs, l.TargetID)
			result.Scores = append(result.Scores, cumScore)
			queue = append(queue, queueItem{l.TargetID, current.depth + 1, cumScore})
		}
	}

	return result, nil
}

// #endregion walk

// #region decay
// DecayLinks applies exponential decay to all edge weights by age since
// last update. Edges below 0.01 are deleted; returns the delete count.
func (s *Store) DecayLinks(halfLifeHours float64) (int64, error) {
	now := time.Now().UTC()
	halfLifeSec := halfLifeHours * 3600.0

	rows, err := s.db.Query(`SELECT id, weight, updated_at FROM trace_edges`)
	if err != nil {
		return 0, fmt.Errorf("decay links: %w", err)
	}

	type decayItem struct {
		id        int64
		newWeight float64
	}
	var updates []decayItem
	var deletes []int64

	for rows.Next() {
		var id int64
		var weight float64
		var updatedAt string
		if err := rows.Scan(&id, &weight, &updatedAt); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scan edge: %w", err)
		}
		t, _ := time.Parse(time.RFC3339, updatedAt)
		ageSec := now.Sub(t).Seconds()
		if ageSec <= 0 {
			continue
		}
		decayed := weight * math.Exp(-ageSec*math.Ln2/halfLifeSec)
		if decayed < 0.01 {
			deletes = append(deletes, id)
		} else {
			updates = append(updates, decayItem{id, decayed})
		}
	}
	rows.Close()

	nowStr := now.Format(time.RFC3339)
	for _, u := range updates {
		if _, err := s.db.Exec(`UPDATE trace_edges SET weight = ?, updated_at = ? WHERE id = ?`, u.newWeight, nowStr, u.id); err != nil {
			return 0, fmt.Errorf("decay update: %w", err)
		}
	}
	for _, id := range deletes {
		if _, err := s.db.Exec(`DELETE FROM trace_edges WHERE id = ?`, id); err != nil {
			return 0, fmt.Errorf("decay delete: %w", err)
		}
	}

	return int64(len(deletes)), nil
}

// #endregion decay

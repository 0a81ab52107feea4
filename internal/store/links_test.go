package store

import (
	"testing"
	"time"
)

// #region edges

func TestAddLinkIgnoresDuplicates(t *testing.T) {
	s := tempDB(t)
	if err := s.AddLink("p1", "i1", LinkTriggered, 0.5); err != nil {
		t.Fatalf("AddLink: %v", err)
	}
	if err := s.AddLink("p1", "i1", LinkTriggered, 0.9); err != nil {
		t.Fatalf("AddLink duplicate: %v", err)
	}
	links, err := s.Neighbors("p1", 0)
	if err != nil || len(links) != 1 {
		t.Fatalf("links=%d err=%v", len(links), err)
	}
	if links[0].Weight != 0.5 {
		t.Fatalf("duplicate insert changed weight to %f", links[0].Weight)
	}
}

func TestIncrementLinkCreatesAndCaps(t *testing.T) {
	s := tempDB(t)

	if err := s.IncrementLink("i1", "a1", LinkExecuted, 0.4); err != nil {
		t.Fatalf("IncrementLink create: %v", err)
	}
	if err := s.IncrementLink("i1", "a1", LinkExecuted, 0.4); err != nil {
		t.Fatalf("IncrementLink: %v", err)
	}
	links, _ := s.Neighbors("i1", 0)
	if len(links) != 1 || links[0].Weight != 0.8 {
		t.Fatalf("links %+v, want single edge at 0.8", links)
	}

	if err := s.IncrementLink("i1", "a1", LinkExecuted, 0.4); err != nil {
		t.Fatalf("IncrementLink: %v", err)
	}
	links, _ = s.Neighbors("i1", 0)
	if links[0].Weight != 1.0 {
		t.Fatalf("weight=%f, want cap at 1.0", links[0].Weight)
	}
}

func TestNeighborsFilterAndOrder(t *testing.T) {
	s := tempDB(t)
	s.AddLink("p1", "i1", LinkTriggered, 0.3)
	s.AddLink("p1", "i2", LinkTriggered, 0.9)
	s.AddLink("p1", "i3", LinkTriggered, 0.05)
	s.AddLink("p2", "i4", LinkTriggered, 0.8)

	links, err := s.Neighbors("p1", 0.1)
	if err != nil {
		t.Fatalf("Neighbors: %v", err)
	}
	if len(links) != 2 {
		t.Fatalf("links=%d, want the 0.05 edge filtered", len(links))
	}
	if links[0].TargetID != "i2" || links[1].TargetID != "i1" {
		t.Fatalf("order %s, %s, want heaviest first", links[0].TargetID, links[1].TargetID)
	}
}

// #endregion edges

// #region walk

func TestWalkTraceScores(t *testing.T) {
	s := tempDB(t)
	s.AddLink("p1", "i1", LinkTriggered, 0.5)
	s.AddLink("i1", "a1", LinkExecuted, 0.8)

	walk, err := s.WalkTrace("p1", 0, 0, 0)
	if err != nil {
		t.Fatalf("WalkTrace: %v", err)
	}
	if len(walk.IDs) != 3 {
		t.Fatalf("visited %v", walk.IDs)
	}
	if walk.IDs[0] != "p1" || walk.IDs[1] != "i1" || walk.IDs[2] != "a1" {
		t.Fatalf("visit order %v", walk.IDs)
	}
	if walk.Scores[0] != 1.0 || walk.Scores[1] != 0.5 || walk.Scores[2] != 0.5*0.8 {
		t.Fatalf("scores %v", walk.Scores)
	}
}

func TestWalkTraceLimits(t *testing.T) {
	s := tempDB(t)
	s.AddLink("a", "b", LinkTriggered, 1.0)
	s.AddLink("b", "c", LinkTriggered, 1.0)
	s.AddLink("c", "d", LinkTriggered, 1.0)

	walk, err := s.WalkTrace("a", 1, 0, 0)
	if err != nil {
		t.Fatalf("WalkTrace: %v", err)
	}
	if len(walk.IDs) != 2 {
		t.Fatalf("depth 1 visited %v", walk.IDs)
	}

	walk, err = s.WalkTrace("a", 0, 0, 2)
	if err != nil {
		t.Fatalf("WalkTrace: %v", err)
	}
	if len(walk.IDs) != 2 {
		t.Fatalf("maxNodes 2 visited %v", walk.IDs)
	}
}

// #endregion walk

// #region decay

func TestDecayLinks(t *testing.T) {
	s := tempDB(t)
	s.AddLink("p1", "i1", LinkTriggered, 0.5)
	s.AddLink("p1", "i2", LinkTriggered, 0.9)

	// Age one edge ten half-lives into the past.
	old := time.Now().UTC().Add(-10 * time.Hour).Format(time.RFC3339)
	if _, err := s.DB().Exec(
		`UPDATE trace_edges SET updated_at = ? WHERE target_id = 'i1'`, old,
	); err != nil {
		t.Fatalf("age edge: %v", err)
	}

	deleted, err := s.DecayLinks(1.0)
	if err != nil {
		t.Fatalf("DecayLinks: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("deleted=%d, want the aged edge gone", deleted)
	}
	links, _ := s.Neighbors("p1", 0)
	if len(links) != 1 || links[0].TargetID != "i2" {
		t.Fatalf("surviving links %+v", links)
	}
}

// #endregion decay

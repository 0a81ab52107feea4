package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Move37LLC/consciousness-gateway-sub000/internal/intention"
	"github.com/Move37LLC/consciousness-gateway-sub000/internal/replay"
	"github.com/Move37LLC/consciousness-gateway-sub000/internal/store"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to agent_trace.db (DB mode)")
	fixturePath := flag.String("fixture", "", "path to fixture JSON (fixture mode)")
	last := flag.Int("last", 50, "number of most recent intentions to replay in DB mode")
	flag.Parse()

	if (*dbPath == "" && *fixturePath == "") || (*dbPath != "" && *fixturePath != "") {
		fmt.Fprintln(os.Stderr, "usage: replay --db path/to/agent_trace.db [--last N]")
		fmt.Fprintln(os.Stderr, "       replay --fixture path/to/fixture.json")
		os.Exit(2)
	}

	var exitCode int
	if *fixturePath != "" {
		exitCode = runFixtureMode(*fixturePath)
	} else {
		exitCode = runDBMode(*dbPath, *last)
	}
	os.Exit(exitCode)
}

// #endregion main

// #region fixture-mode

func runFixtureMode(path string) int {
	f, err := replay.LoadFixture(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return 2
	}

	config := f.Config.ToReplayConfig()
	interactions := make([]replay.Interaction, len(f.Interactions))
	for i := range f.Interactions {
		interactions[i] = f.Interactions[i].ToInteraction()
	}

	results := replay.Replay(interactions, config)

	expected := make(map[string]bool, len(f.ExpectedResults))
	for _, e := range f.ExpectedResults {
		expected[e.ID] = e.Authorized
	}

	mismatches := printComparison(results, expected)
	if mismatches > 0 {
		fmt.Fprintf(os.Stderr, "%d decision(s) drifted from the fixture\n", mismatches)
		return 1
	}
	fmt.Println("all decisions match the fixture")
	return 0
}

// #endregion fixture-mode

// #region db-mode

func runDBMode(dbPath string, last int) int {
	st, err := store.New(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		return 2
	}
	defer st.Close()

	rows, err := st.RecentIntentions(last)
	if err != nil {
		fmt.Fprintf(os.Stderr, "query intentions: %v\n", err)
		return 2
	}
	if len(rows) == 0 {
		fmt.Fprintln(os.Stderr, "no intentions found")
		return 2
	}

	// rows come back newest first; replay oldest first so the bias
	// detector's mean evolves in recorded order
	interactions := make([]replay.Interaction, 0, len(rows))
	recorded := make(map[string]bool, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		r := rows[i]
		interactions = append(interactions, replay.Interaction{
			Intention: intention.Intention{
				ID:   r.ID,
				Tick: r.Tick,
				Action: intention.Action{
					Type:        intention.ActionType(r.Type),
					Target:      r.Target,
					Description: r.Description,
				},
				Goal:        r.Goal,
				Confidence:  r.Confidence,
				Priority:    r.Priority,
				TriggerRefs: r.TriggerRefs,
			},
		})
		recorded[r.ID] = r.Authorized
	}

	results := replay.Replay(interactions, replay.DefaultReplayConfig())
	mismatches := printComparison(results, recorded)
	if mismatches > 0 {
		fmt.Fprintf(os.Stderr, "%d decision(s) drifted from the recorded trace\n", mismatches)
		return 1
	}
	fmt.Println("all decisions match the recorded trace")
	return 0
}

// #endregion db-mode

// #region comparison

func printComparison(results []replay.ReplayResult, expected map[string]bool) int {
	fmt.Printf("%-10s  %-8s  %7s  %-10s  %-10s  %s\n",
		"ID", "Type", "Fitness", "Replayed", "Expected", "Reason")

	mismatches := 0
	for _, r := range results {
		replayed := verdict(r.Authorized)
		want, known := expected[r.ID]
		wantStr := "—"
		if known {
			wantStr = verdict(want)
			if want != r.Authorized {
				mismatches++
				wantStr += " !!"
			}
		}
		fmt.Printf("%-10s  %-8s  %7.4f  %-10s  %-10s  %s\n",
			shortID(r.ID), r.Type, r.Fitness, replayed, wantStr, r.Reason)
	}

	summary := replay.Summarize(results)
	fmt.Printf("\n%d replayed: %d authorized, %d rejected, %d flagged\n",
		summary.Total, summary.Authorized, summary.Rejected, summary.Flagged)
	return mismatches
}

func verdict(authorized bool) string {
	if authorized {
		return "authorized"
	}
	return "rejected"
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion comparison

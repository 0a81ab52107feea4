package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/Move37LLC/consciousness-gateway-sub000/internal/replay"
	"github.com/Move37LLC/consciousness-gateway-sub000/internal/store"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to agent_trace.db")
	last := flag.Int("last", 20, "number of most recent intentions to export")
	outPath := flag.String("out", "", "output fixture JSON path")
	desc := flag.String("desc", "exported from live trace", "fixture description")
	flag.Parse()

	if *dbPath == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: fixture-export --db path/to/db --out path/to/fixture.json [--last N]")
		os.Exit(2)
	}

	if err := run(*dbPath, *last, *outPath, *desc); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region export

func run(dbPath string, last int, outPath, desc string) error {
	st, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer st.Close()

	rows, err := st.RecentIntentions(last)
	if err != nil {
		return fmt.Errorf("query intentions: %w", err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("no intentions to export")
	}

	f := replay.Fixture{Description: desc}

	// rows come back newest first; fixtures replay oldest first
	for i := len(rows) - 1; i >= 0; i-- {
		r := rows[i]
		f.Interactions = append(f.Interactions, replay.FixtureInteraction{
			ID:          r.ID,
			Tick:        r.Tick,
			Type:        r.Type,
			Target:      r.Target,
			Description: r.Description,
			Goal:        r.Goal,
			Confidence:  r.Confidence,
			Priority:    r.Priority,
			TriggerRefs: r.TriggerRefs,
		})
		f.ExpectedResults = append(f.ExpectedResults, replay.FixtureExpectedResult{
			ID:         r.ID,
			Authorized: r.Authorized,
		})
	}

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(outPath, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write fixture: %w", err)
	}

	fmt.Printf("exported %d intentions to %s\n", len(f.Interactions), outPath)
	return nil
}

// #endregion export

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/Move37LLC/consciousness-gateway-sub000/internal/store"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to agent_trace.db")
	last := flag.Int("last", 20, "show N most recent intentions")
	alerts := flag.Bool("alerts", false, "show open safety alerts instead of intentions")
	resolve := flag.String("resolve", "", "mark open alerts of this type resolved")
	stability := flag.Bool("stability", false, "show recent ego snapshots instead of intentions")
	reflections := flag.Bool("reflections", false, "show recent reflections instead of intentions")
	trace := flag.String("trace", "", "walk the provenance graph from a record ID")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/agent_trace.db [--last N] [--alerts] [--resolve TYPE] [--stability] [--reflections] [--trace ID] [--json]")
		os.Exit(2)
	}

	st, err := store.New(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	switch {
	case *resolve != "":
		err = runResolveMode(st, *resolve)
	case *alerts:
		err = runAlertMode(st, *jsonOut)
	case *stability:
		err = runStabilityMode(st, *last, *jsonOut)
	case *reflections:
		err = runReflectionMode(st, *last, *jsonOut)
	case *trace != "":
		err = runTraceMode(st, *trace, *jsonOut)
	default:
		err = runIntentionMode(st, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region intention-mode

func runIntentionMode(st *store.Store, last int, jsonOut bool) error {
	rows, err := st.RecentIntentions(last)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Fprintln(os.Stderr, "no intentions found")
		return nil
	}
	if jsonOut {
		return printJSON(rows)
	}

	fmt.Printf("%-10s  %6s  %-8s  %7s  %-10s  %s\n",
		"ID", "Tick", "Type", "Fitness", "Decision", "Goal")
	for _, r := range rows {
		decision := "rejected"
		if r.Authorized {
			decision = "authorized"
		}
		fmt.Printf("%-10s  %6d  %-8s  %7.4f  %-10s  %s\n",
			shortID(r.ID), r.Tick, r.Type, r.Fitness, decision, r.Goal)
	}
	return nil
}

// #endregion intention-mode

// #region alert-mode

func runAlertMode(st *store.Store, jsonOut bool) error {
	rows, err := st.OpenAlerts()
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Println("no open alerts")
		return nil
	}
	if jsonOut {
		return printJSON(rows)
	}

	fmt.Printf("%6s  %-20s  %-8s  %s\n", "Tick", "Type", "Severity", "Message")
	for _, r := range rows {
		fmt.Printf("%6d  %-20s  %-8s  %s\n", r.Tick, r.Type, r.Severity, r.Message)
	}
	return nil
}

func runResolveMode(st *store.Store, alertType string) error {
	if err := st.ResolveAlerts(alertType); err != nil {
		return err
	}
	fmt.Printf("resolved open %s alerts\n", alertType)
	return nil
}

// #endregion alert-mode

// #region reflection-mode

func runReflectionMode(st *store.Store, last int, jsonOut bool) error {
	texts, err := st.RecentReflections(last)
	if err != nil {
		return err
	}
	if len(texts) == 0 {
		fmt.Fprintln(os.Stderr, "no reflections found")
		return nil
	}
	if jsonOut {
		return printJSON(texts)
	}
	for _, text := range texts {
		fmt.Println(text)
	}
	return nil
}

// #endregion reflection-mode

// #region stability-mode

func runStabilityMode(st *store.Store, last int, jsonOut bool) error {
	rows, err := st.RecentEgoSnapshots(last)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Fprintln(os.Stderr, "no ego snapshots found")
		return nil
	}
	if jsonOut {
		return printJSON(rows)
	}

	fmt.Printf("%6s  %7s  %7s  %9s  %s\n", "Tick", "Ego", "Dharma", "Stability", "Time")
	for _, r := range rows {
		fmt.Printf("%6d  %7.4f  %7.4f  %9.4f  %s\n",
			r.Tick, r.EgoLevel, r.Dharma, r.Stability, r.CreatedAt.Format("2006-01-02T15:04:05Z"))
	}
	return nil
}

// #endregion stability-mode

// #region trace-mode

func runTraceMode(st *store.Store, entryID string, jsonOut bool) error {
	walk, err := st.WalkTrace(entryID, 0, 0, 0)
	if err != nil {
		return err
	}
	if len(walk.IDs) <= 1 {
		fmt.Fprintf(os.Stderr, "no outgoing links from %s\n", entryID)
		return nil
	}
	if jsonOut {
		return printJSON(walk)
	}

	fmt.Printf("%-40s  %s\n", "Record", "Score")
	for i, id := range walk.IDs {
		fmt.Printf("%-40s  %.4f\n", id, walk.Scores[i])
	}
	return nil
}

// #endregion trace-mode

// #region helpers

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// #endregion helpers

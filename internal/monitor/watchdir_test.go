package monitor

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

// #region mapping

func TestToPerceptMapping(t *testing.T) {
	w := NewWatchDir(t.TempDir(), 1)
	cases := []struct {
		op       fsnotify.Op
		keep     bool
		channel  string
		salience float32
	}{
		{fsnotify.Create, true, "created", 0.8},
		{fsnotify.Write, true, "modified", 0.6},
		{fsnotify.Remove, true, "removed", 0.7},
		{fsnotify.Rename, true, "removed", 0.5},
		{fsnotify.Chmod, false, "", 0},
	}
	for _, c := range cases {
		sp, keep := w.toPercept(fsnotify.Event{Name: "/watch/inbox/memo.txt", Op: c.op})
		if keep != c.keep {
			t.Fatalf("%s: keep=%v want %v", c.op, keep, c.keep)
		}
		if !keep {
			continue
		}
		if sp.Channel != c.channel || sp.Salience != c.salience {
			t.Fatalf("%s: channel=%q salience=%f", c.op, sp.Channel, sp.Salience)
		}
		if sp.Source != "watchdir" || sp.Data != "memo.txt" {
			t.Fatalf("%s: source=%q data=%q", c.op, sp.Source, sp.Data)
		}
		if len(sp.Features) == 0 {
			t.Fatalf("%s: no features", c.op)
		}
	}
}

// #endregion mapping

// #region integration

func TestWatchDirObservesCreation(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "inbox")
	w := NewWatchDir(dir, 1)
	if err := w.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer w.Shutdown()
	if !w.Available() {
		t.Fatal("monitor not available after Init")
	}

	if err := os.WriteFile(filepath.Join(dir, "dropped.txt"), []byte("hello"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		sps, err := w.Poll(context.Background())
		if err != nil {
			t.Fatalf("Poll: %v", err)
		}
		for _, sp := range sps {
			if sp.Channel == "created" && sp.Data == "dropped.txt" {
				return
			}
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("creation event never surfaced")
}

func TestShutdownIdempotentWhenNeverStarted(t *testing.T) {
	w := NewWatchDir(filepath.Join(t.TempDir(), "inbox"), 1)
	if err := w.Shutdown(); err != nil {
		t.Fatalf("Shutdown before Init: %v", err)
	}
}

// #endregion integration

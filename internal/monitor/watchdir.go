package monitor

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Move37LLC/consciousness-gateway-sub000/internal/percept"
)

// #region watchdir

// WatchDir observes a drop directory via fsnotify and turns file events into
// salience-scored spatial percepts. Events buffer in the background; Poll
// drains them on the scheduling loop.
type WatchDir struct {
	dir          string
	pollInterval uint64

	mu      sync.Mutex
	pending []percept.SpatialPercept

	watcher   *fsnotify.Watcher
	available bool
	stop      chan struct{}
	done      chan struct{}
}

// NewWatchDir creates a monitor for the given directory.
func NewWatchDir(dir string, pollInterval uint64) *WatchDir {
	if pollInterval == 0 {
		pollInterval = 1
	}
	return &WatchDir{
		dir:          dir,
		pollInterval: pollInterval,
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}
}

// #endregion watchdir

// #region contract-impl

func (w *WatchDir) Name() string         { return "watchdir" }
func (w *WatchDir) Channel() string      { return "filesystem" }
func (w *WatchDir) Available() bool      { return w.available }
func (w *WatchDir) PollInterval() uint64 { return w.pollInterval }

// Init creates the directory if needed and starts the fsnotify pump.
func (w *WatchDir) Init() error {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(w.dir); err != nil {
		watcher.Close()
		return err
	}
	w.watcher = watcher
	w.available = true
	go w.pump()
	return nil
}

// Poll drains buffered observations.
func (w *WatchDir) Poll(ctx context.Context) ([]percept.SpatialPercept, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := w.pending
	w.pending = nil
	return out, nil
}

// Shutdown stops the pump and releases the watcher.
func (w *WatchDir) Shutdown() error {
	if !w.available {
		return nil
	}
	w.available = false
	close(w.stop)
	<-w.done
	return w.watcher.Close()
}

// #endregion contract-impl

// #region pump

func (w *WatchDir) pump() {
	defer close(w.done)
	for {
		select {
		case <-w.stop:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if sp, keep := w.toPercept(ev); keep {
				w.mu.Lock()
				w.pending = append(w.pending, sp)
				w.mu.Unlock()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[WATCH] fsnotify error: %v", err)
		}
	}
}

func (w *WatchDir) toPercept(ev fsnotify.Event) (percept.SpatialPercept, bool) {
	var channel string
	var salience float32
	switch {
	case ev.Op.Has(fsnotify.Create):
		channel, salience = "created", 0.8
	case ev.Op.Has(fsnotify.Write):
		channel, salience = "modified", 0.6
	case ev.Op.Has(fsnotify.Remove):
		channel, salience = "removed", 0.7
	case ev.Op.Has(fsnotify.Rename):
		channel, salience = "removed", 0.5
	default:
		return percept.SpatialPercept{}, false // chmod noise
	}
	name := filepath.Base(ev.Name)
	return percept.SpatialPercept{
		Source:    w.Name(),
		Channel:   channel,
		Data:      name,
		Salience:  salience,
		Features:  FeatureVector(name),
		Timestamp: time.Now(),
	}, true
}

// #endregion pump

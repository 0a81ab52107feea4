package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Move37LLC/consciousness-gateway-sub000/internal/action"
	"github.com/Move37LLC/consciousness-gateway-sub000/internal/config"
	"github.com/Move37LLC/consciousness-gateway-sub000/internal/correction"
	"github.com/Move37LLC/consciousness-gateway-sub000/internal/drive"
	"github.com/Move37LLC/consciousness-gateway-sub000/internal/ego"
	"github.com/Move37LLC/consciousness-gateway-sub000/internal/fusion"
	"github.com/Move37LLC/consciousness-gateway-sub000/internal/gate"
	"github.com/Move37LLC/consciousness-gateway-sub000/internal/generation"
	"github.com/Move37LLC/consciousness-gateway-sub000/internal/intention"
	"github.com/Move37LLC/consciousness-gateway-sub000/internal/monitor"
	"github.com/Move37LLC/consciousness-gateway-sub000/internal/scheduler"
	"github.com/Move37LLC/consciousness-gateway-sub000/internal/store"
)

// #region main
func main() {
	configPath := flag.String("config", "agent.yaml", "path to YAML config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if !cfg.Enabled {
		log.Println("agent disabled by config, exiting")
		return
	}

	st, err := store.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer st.Close()

	sched := buildScheduler(cfg, st)

	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	fmt.Printf("Agent loop running.\n  DB: %s | tick: %s | watch: %s\n",
		cfg.DBPath, cfg.TickPeriod, cfg.Monitor.WatchDir)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Println("[SCHED] signal received, stopping")
	if err := sched.Stop(); err != nil {
		log.Printf("stop: %v", err)
	}
}

// #endregion main

// #region wiring
func buildScheduler(cfg *config.Config, st *store.Store) *scheduler.Scheduler {
	drives := drive.NewSystem(drive.DefaultConfig(), time.Now)
	for _, d := range cfg.Drives {
		drives.SetRates(d.ID, d.BaselineRate, d.SatiationRate)
	}

	engineCfg := intention.DefaultEngineConfig()
	engineCfg.SalienceThreshold = cfg.Intention.SalienceThreshold
	engineCfg.ReflectionInterval = cfg.Intention.ReflectionInterval
	engineCfg.GoalCheckInterval = cfg.Intention.GoalCheckInterval
	engineCfg.IdleInterval = cfg.Intention.IdleInterval
	engineCfg.DreamInactivitySeconds = cfg.Intention.DreamInactivitySeconds
	engineCfg.DreamMaxSeconds = cfg.Intention.DreamMaxSeconds
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	engine := intention.NewEngine(engineCfg, drives, rng, time.Now)

	gateCfg := gate.DefaultConfig()
	if cfg.Gate.TargetEntropy > 0 {
		gateCfg.TargetEntropy = cfg.Gate.TargetEntropy
	}
	if cfg.Gate.BiasFlagThreshold > 0 {
		gateCfg.BiasFlagThreshold = cfg.Gate.BiasFlagThreshold
	}
	for k, v := range cfg.Gate.Thresholds {
		gateCfg.Thresholds[intention.ActionType(k)] = v
	}

	corrCfg := correction.DefaultConfig()
	corrCfg.CheckInterval = cfg.Correction.CheckInterval.Std()
	corrCfg.EgoLanguageThreshold = cfg.Correction.EgoLanguageThreshold
	corrCfg.NeedThreshold = cfg.Correction.NeedThreshold
	corrCfg.OutcomeRatio = float32(cfg.Correction.OutcomeRatio)
	corrCfg.SelfPresThreshold = cfg.Correction.SelfPresThreshold
	if cfg.Correction.NotifySeverity != "" {
		corrCfg.NotifySeverity = correction.Severity(cfg.Correction.NotifySeverity)
	}

	var gen action.Generator
	if cfg.Generation.APIKey != "" {
		client, err := generation.NewClient(context.Background(), cfg.Generation.APIKey, cfg.Generation.Model)
		if err != nil {
			log.Printf("[EXEC] generation client unavailable, using queued stub: %v", err)
		} else {
			gen = client
		}
	}

	schedCfg := scheduler.DefaultConfig()
	schedCfg.TickPeriod = cfg.TickPeriod.Std()
	schedCfg.CorrectionInterval = cfg.Correction.CheckInterval.Std()
	schedCfg.WorkingMemorySize = cfg.WorkingMemorySize

	return scheduler.New(schedCfg, scheduler.Deps{
		Store:    st,
		Kernel:   fusion.NewKernel(fusion.DefaultKernelConfig()),
		Drives:   drives,
		Engine:   engine,
		Gate:     gate.NewGate(gateCfg),
		Executor: action.NewExecutor(action.DefaultConfig(), gen, time.Now),
		Corr:     correction.NewProcess(corrCfg, correction.DefaultPatternSet(), time.Now),
		Tracker:  ego.NewTracker(ego.DefaultConfig(), time.Now),
		Monitors: []monitor.Monitor{
			monitor.NewWatchDir(cfg.Monitor.WatchDir, cfg.Monitor.PollInterval),
		},
	})
}

// #endregion wiring

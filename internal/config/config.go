package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// #region duration
// Duration is a time.Duration that unmarshals from YAML strings like
// "250ms" or "45s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

// #endregion duration

// #region types
// Config holds every recognized agent option. Zero values are filled
// from Default(); env vars override the file.
type Config struct {
	// Enabled is the kill switch. AGENT_ENABLED=false stops the loop
	// from starting at all.
	Enabled bool `yaml:"enabled"`

	// DBPath is the SQLite trace database path.
	DBPath string `yaml:"db_path"`

	// TickPeriod is the wall-clock interval between ticks.
	TickPeriod Duration `yaml:"tick_period"`

	// WorkingMemorySize bounds the in-memory percept ring.
	WorkingMemorySize int `yaml:"working_memory_size"`

	Intention  IntentionConfig  `yaml:"intention"`
	Gate       GateConfig       `yaml:"gate"`
	Drives     []DriveConfig    `yaml:"drives"`
	Correction CorrectionConfig `yaml:"correction"`
	Monitor    MonitorConfig    `yaml:"monitor"`
	Generation GenerationConfig `yaml:"generation"`
}

// IntentionConfig tunes candidate formation.
type IntentionConfig struct {
	SalienceThreshold      float32 `yaml:"salience_threshold"`
	ReflectionInterval     uint64  `yaml:"reflection_interval"`
	GoalCheckInterval      uint64  `yaml:"goal_check_interval"`
	IdleInterval           uint64  `yaml:"idle_interval"`
	DreamInactivitySeconds float64 `yaml:"dream_inactivity_seconds"`
	DreamMaxSeconds        float64 `yaml:"dream_max_seconds"`
}

// GateConfig tunes the authorization gate.
type GateConfig struct {
	TargetEntropy     float32            `yaml:"target_entropy"`
	BiasFlagThreshold float32            `yaml:"bias_flag_threshold"`
	Thresholds        map[string]float32 `yaml:"thresholds"`
}

// DriveConfig overrides one drive's growth and satiation rates.
type DriveConfig struct {
	ID            string  `yaml:"id"`
	BaselineRate  float32 `yaml:"baseline_rate"`
	SatiationRate float32 `yaml:"satiation_rate"`
}

// CorrectionConfig tunes the self-correction process.
type CorrectionConfig struct {
	CheckInterval        Duration `yaml:"check_interval"`
	EgoLanguageThreshold int      `yaml:"ego_language_threshold"`
	NeedThreshold        float32  `yaml:"need_threshold"`
	OutcomeRatio         int      `yaml:"outcome_ratio"`
	SelfPresThreshold    int      `yaml:"self_pres_threshold"`
	NotifySeverity       string   `yaml:"notify_severity"`
}

// MonitorConfig configures the built-in directory monitor.
type MonitorConfig struct {
	WatchDir     string `yaml:"watch_dir"`
	PollInterval uint64 `yaml:"poll_interval"`
}

// GenerationConfig configures the optional generation collaborator.
// With an empty APIKey the respond/create handlers use the
// deterministic queued stub.
type GenerationConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// #endregion types

// #region defaults
// Default returns the full default configuration.
func Default() *Config {
	return &Config{
		Enabled:           true,
		DBPath:            "agent_trace.db",
		TickPeriod:        Duration(time.Second),
		WorkingMemorySize: 100,
		Intention: IntentionConfig{
			SalienceThreshold:      0.5,
			ReflectionInterval:     90,
			GoalCheckInterval:      300,
			IdleInterval:           60,
			DreamInactivitySeconds: 1800,
			DreamMaxSeconds:        600,
		},
		Gate: GateConfig{
			TargetEntropy:     1.2,
			BiasFlagThreshold: 0.75,
		},
		Correction: CorrectionConfig{
			CheckInterval:        Duration(45 * time.Second),
			EgoLanguageThreshold: 5,
			NeedThreshold:        0.8,
			OutcomeRatio:         3,
			SelfPresThreshold:    3,
			NotifySeverity:       "high",
		},
		Monitor: MonitorConfig{
			WatchDir:     "watch",
			PollInterval: 1,
		},
		Generation: GenerationConfig{
			Model: "gemini-2.0-flash",
		},
	}
}

// #endregion defaults

// #region load
// Load reads a YAML config file, falling back to defaults when the
// file is absent, then applies env overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// #endregion load

// #region env
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("AGENT_ENABLED"); v != "" {
		c.Enabled = v != "false" && v != "0"
	}
	c.DBPath = envOr("AGENT_DB", c.DBPath)
	c.Monitor.WatchDir = envOr("AGENT_WATCH_DIR", c.Monitor.WatchDir)
	c.Generation.APIKey = envOr("GEMINI_API_KEY", c.Generation.APIKey)
	c.Generation.Model = envOr("AGENT_GEN_MODEL", c.Generation.Model)
	if v := os.Getenv("AGENT_TICK_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			c.TickPeriod = Duration(time.Duration(ms) * time.Millisecond)
		}
	}
	if v := os.Getenv("AGENT_CORRECTION_INTERVAL_S"); v != "" {
		if s, err := strconv.Atoi(v); err == nil && s > 0 {
			c.Correction.CheckInterval = Duration(time.Duration(s) * time.Second)
		}
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion env

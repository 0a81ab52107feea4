package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Move37LLC/consciousness-gateway-sub000/internal/gate"
	"github.com/Move37LLC/consciousness-gateway-sub000/internal/intention"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description     string                  `json:"description"`
	Config          FixtureGateConfig       `json:"gate_config"`
	Interactions    []FixtureInteraction    `json:"interactions"`
	ExpectedResults []FixtureExpectedResult `json:"expected_results"`
}

// FixtureGateConfig mirrors gate.Config with JSON tags.
type FixtureGateConfig struct {
	TargetEntropy     float32            `json:"target_entropy"`
	BiasFlagThreshold float32            `json:"bias_flag_threshold"`
	BiasDecay         float32            `json:"bias_decay"`
	DefaultThreshold  float32            `json:"default_threshold"`
	Thresholds        map[string]float32 `json:"thresholds"`
}

// FixtureInteraction mirrors Interaction with JSON tags.
type FixtureInteraction struct {
	ID          string   `json:"id"`
	Tick        uint64   `json:"tick"`
	Type        string   `json:"type"`
	Target      string   `json:"target"`
	Description string   `json:"description"`
	Goal        string   `json:"goal"`
	Confidence  float32  `json:"confidence"`
	Priority    int      `json:"priority"`
	TriggerRefs []string `json:"trigger_refs"`
	Pressure    float32  `json:"pressure"`
}

// FixtureExpectedResult captures the expected decision per intention.
type FixtureExpectedResult struct {
	ID         string `json:"id"`
	Authorized bool   `json:"authorized"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// ToInteraction converts a FixtureInteraction to a domain Interaction.
func (fi *FixtureInteraction) ToInteraction() Interaction {
	return Interaction{
		Intention: intention.Intention{
			ID:   fi.ID,
			Tick: fi.Tick,
			Action: intention.Action{
				Type:        intention.ActionType(fi.Type),
				Target:      fi.Target,
				Description: fi.Description,
			},
			Goal:        fi.Goal,
			Confidence:  fi.Confidence,
			Priority:    fi.Priority,
			TriggerRefs: fi.TriggerRefs,
		},
		Pressure: fi.Pressure,
	}
}

// ToReplayConfig converts a FixtureGateConfig to a domain ReplayConfig.
// Zero-valued fields fall back to the reference parameters.
func (fc *FixtureGateConfig) ToReplayConfig() ReplayConfig {
	cfg := gate.DefaultConfig()
	if fc.TargetEntropy > 0 {
		cfg.TargetEntropy = fc.TargetEntropy
	}
	if fc.BiasFlagThreshold > 0 {
		cfg.BiasFlagThreshold = fc.BiasFlagThreshold
	}
	if fc.BiasDecay > 0 {
		cfg.BiasDecay = fc.BiasDecay
	}
	if fc.DefaultThreshold > 0 {
		cfg.DefaultThreshold = fc.DefaultThreshold
	}
	if len(fc.Thresholds) > 0 {
		cfg.Thresholds = make(map[intention.ActionType]float32, len(fc.Thresholds))
		for k, v := range fc.Thresholds {
			cfg.Thresholds[intention.ActionType(k)] = v
		}
	}
	return ReplayConfig{Gate: cfg}
}

// #endregion fixture-loader

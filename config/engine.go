package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jordanlanch/clientintel/pkg/dailyplan"
	"github.com/jordanlanch/clientintel/pkg/intelligence"
	"gopkg.in/yaml.v3"
)

// Engine is the tuning of the intelligence engine and the daily plan allocator.
type Engine struct {
	Intelligence intelligence.Config `yaml:"engine"`
	DailyPlan    dailyplan.Config    `yaml:"daily_plan"`
}

// DefaultEngine returns the built-in tuning.
func DefaultEngine() Engine {
	return Engine{
		Intelligence: intelligence.DefaultConfig(),
		DailyPlan:    dailyplan.DefaultConfig(),
	}
}

// LoadEngine reads a YAML file over the built-in defaults: keys absent from
// the file keep their default, map entries are merged, lists are replaced.
// An empty path returns the defaults.
func LoadEngine(path string) (Engine, error) {
	if path == "" {
		return DefaultEngine(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Engine{}, fmt.Errorf("failed to read engine config: %w", err)
	}
	return ParseEngine(data)
}

// ParseEngine overlays YAML data on the defaults and validates the result.
// Unknown keys are rejected.
func ParseEngine(data []byte) (Engine, error) {
	cfg := DefaultEngine()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Engine{}, fmt.Errorf("failed to parse engine config: %w", err)
	}

	if err := cfg.Intelligence.Validate(); err != nil {
		return Engine{}, err
	}
	if err := cfg.DailyPlan.Validate(); err != nil {
		return Engine{}, err
	}
	return cfg, nil
}

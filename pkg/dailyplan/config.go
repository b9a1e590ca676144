package dailyplan

import (
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
)

// Config is the allocator's quota and points table.
type Config struct {
	DefaultLimit int `yaml:"default_limit" validate:"gt=0"`
	MinLimit     int `yaml:"min_limit" validate:"gt=0"`
	MaxLimit     int `yaml:"max_limit" validate:"gtefield=MinLimit"`

	Weights struct {
		Priority      float64 `yaml:"priority" validate:"gte=0,lte=1"`
		Actionability float64 `yaml:"actionability" validate:"gte=0,lte=1"`
	} `yaml:"weights"`

	// Slots are the fractions of the limit reserved per category; maintenance
	// gets whatever is left.
	Slots struct {
		MustContact float64 `yaml:"must_contact" validate:"gte=0,lte=1"`
		HighValue   float64 `yaml:"high_value" validate:"gte=0,lte=1"`
	} `yaml:"slots"`

	Points struct {
		Overdue                  int `yaml:"overdue" validate:"gte=0"`
		VeryOverdue              int `yaml:"very_overdue" validate:"gte=0"`
		VeryOverdueThresholdDays int `yaml:"very_overdue_threshold_days" validate:"gte=0"`
		ActionableRecommendation int `yaml:"actionable_recommendation" validate:"gte=0"`
		GoodDisposition          int `yaml:"good_disposition" validate:"gte=0"`
		CompleteData             int `yaml:"complete_data" validate:"gte=0"`
	} `yaml:"points"`

	// Workers bounds the number of clients analyzed concurrently.
	Workers int `yaml:"workers" validate:"gte=1"`
}

// DefaultConfig returns the allocator defaults.
func DefaultConfig() Config {
	var cfg Config
	cfg.DefaultLimit = 20
	cfg.MinLimit = 5
	cfg.MaxLimit = 50
	cfg.Weights.Priority = 0.70
	cfg.Weights.Actionability = 0.30
	cfg.Slots.MustContact = 0.40
	cfg.Slots.HighValue = 0.30
	cfg.Points.Overdue = 30
	cfg.Points.VeryOverdue = 50
	cfg.Points.VeryOverdueThresholdDays = 3
	cfg.Points.ActionableRecommendation = 20
	cfg.Points.GoodDisposition = 20
	cfg.Points.CompleteData = 10
	cfg.Workers = 8
	return cfg
}

// Validate checks ranges, that the composite weights sum to 1 and that the
// reserved slot fractions leave room for maintenance.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid daily plan config: %w", err)
	}
	if sum := c.Weights.Priority + c.Weights.Actionability; math.Abs(sum-1) > 1e-9 {
		return fmt.Errorf("invalid daily plan config: composite weights sum to %.4f, want 1.0", sum)
	}
	if c.Slots.MustContact+c.Slots.HighValue > 1 {
		return fmt.Errorf("invalid daily plan config: slot fractions exceed 1.0")
	}
	if c.DefaultLimit < c.MinLimit || c.DefaultLimit > c.MaxLimit {
		return fmt.Errorf("invalid daily plan config: default limit %d outside [%d, %d]", c.DefaultLimit, c.MinLimit, c.MaxLimit)
	}
	return nil
}

// Quotas returns the phase-one slots per category for limit. The three values
// always add up to limit.
func (c Config) Quotas(limit int) (mustContact, highValue, maintenance int) {
	mustContact = int(math.Floor(float64(limit) * c.Slots.MustContact))
	highValue = int(math.Floor(float64(limit) * c.Slots.HighValue))
	maintenance = limit - mustContact - highValue
	return mustContact, highValue, maintenance
}

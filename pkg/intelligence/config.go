package intelligence

import (
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
	"github.com/jordanlanch/clientintel/pkg/followup"
	"github.com/jordanlanch/clientintel/pkg/models"
)

// Config is the full tuning table of the engine. It is passed explicitly to
// NewService; nothing in the package reads process-wide state.
type Config struct {
	Metrics        MetricsConfig        `yaml:"metrics"`
	Disposition    DispositionConfig    `yaml:"disposition"`
	Priority       PriorityConfig       `yaml:"priority"`
	Recommendation RecommendationConfig `yaml:"recommendation"`
	FollowUp       followup.Config      `yaml:"followup"`

	// ActiveStatuses are the statuses in which a client can be receptive and
	// which the bulk recompute visits.
	ActiveStatuses []models.Status `yaml:"active_statuses" validate:"min=1"`
}

// MetricsConfig controls the behavioral aggregation windows.
type MetricsConfig struct {
	ShortWindowDays     int    `yaml:"short_window_days" validate:"gt=0"`
	LongWindowDays      int    `yaml:"long_window_days" validate:"gt=0"`
	RecentOutcomeWindow int    `yaml:"recent_outcome_window" validate:"gt=0"`
	DefaultChannel      string `yaml:"default_channel" validate:"required"`
}

// DispositionConfig holds the thresholds of the disposition rule chain.
type DispositionConfig struct {
	Unknown struct {
		// MaxInteractions is compared with strict less-than.
		MaxInteractions int `yaml:"max_interactions" validate:"gte=0"`
	} `yaml:"unknown"`
	Saturated struct {
		MinInteractionsShortWindow int `yaml:"min_interactions_short_window" validate:"gt=0"`
		RecentSilences             int `yaml:"recent_silences" validate:"gt=0"`
	} `yaml:"saturated"`
	ReadyToDecide struct {
		MinResponseRate float64 `yaml:"min_response_rate" validate:"gte=0,lte=1"`
	} `yaml:"ready_to_decide"`
	Receptive struct {
		MinResponseRate     float64 `yaml:"min_response_rate" validate:"gte=0,lte=1"`
		MaxDaysSinceContact int     `yaml:"max_days_since_contact" validate:"gte=0"`
	} `yaml:"receptive"`
	Cold struct {
		MinDaysSinceContact int     `yaml:"min_days_since_contact" validate:"gte=0"`
		MaxResponseRate     float64 `yaml:"max_response_rate" validate:"gte=0,lte=1"`
	} `yaml:"cold"`
	Doubtful struct {
		MinResponseRate float64 `yaml:"min_response_rate" validate:"gte=0,lte=1"`
		MaxResponseRate float64 `yaml:"max_response_rate" validate:"gte=0,lte=1"`
	} `yaml:"doubtful"`
	MixedSignalDistinctOutcomes int `yaml:"mixed_signal_distinct_outcomes" validate:"gt=0"`

	Confidence struct {
		FullDataInteractions int     `yaml:"full_data_interactions" validate:"gt=0"`
		LowDataInteractions  int     `yaml:"low_data_interactions" validate:"gte=0"`
		LowDataCap           float64 `yaml:"low_data_cap" validate:"gte=0,lte=1"`
		UnknownCap           float64 `yaml:"unknown_cap" validate:"gte=0,lte=1"`
		FallbackCap          float64 `yaml:"fallback_cap" validate:"gte=0,lte=1"`
	} `yaml:"confidence"`
}

// PriorityWeights combine the five priority factors; they must sum to 1.
type PriorityWeights struct {
	Urgency     float64 `yaml:"urgencia" validate:"gte=0,lte=1"`
	Receptivity float64 `yaml:"receptividad" validate:"gte=0,lte=1"`
	Momentum    float64 `yaml:"momentum" validate:"gte=0,lte=1"`
	StageValue  float64 `yaml:"valor_etapa" validate:"gte=0,lte=1"`
	Freshness   float64 `yaml:"frescura" validate:"gte=0,lte=1"`
}

// Sum returns the total of all weights.
func (w PriorityWeights) Sum() float64 {
	return w.Urgency + w.Receptivity + w.Momentum + w.StageValue + w.Freshness
}

// PriorityConfig holds the priority weights and lookup tables.
type PriorityConfig struct {
	Weights PriorityWeights `yaml:"weights"`

	UrgencyCapDays       int `yaml:"urgency_cap_days" validate:"gt=0"`
	MomentumFrequencyCap int `yaml:"momentum_frequency_cap" validate:"gt=0"`
	FreshnessWindowDays  int `yaml:"freshness_window_days" validate:"gt=0"`

	DispositionScores       map[models.Disposition]int `yaml:"disposition_scores" validate:"dive,gte=0,lte=100"`
	DefaultDispositionScore int                        `yaml:"default_disposition_score" validate:"gte=0,lte=100"`
	StageValues             map[models.Status]int      `yaml:"stage_values" validate:"dive,gte=0,lte=100"`
	DefaultStageValue       int                        `yaml:"default_stage_value" validate:"gte=0,lte=100"`
}

// StageValue looks up the commercial value of a status, falling back to the
// default for unmapped statuses.
func (p PriorityConfig) StageValue(s models.Status) int {
	if v, ok := p.StageValues[s]; ok {
		return v
	}
	return p.DefaultStageValue
}

// DispositionScore looks up the receptivity score of a disposition.
func (p PriorityConfig) DispositionScore(d models.Disposition) int {
	if v, ok := p.DispositionScores[d]; ok {
		return v
	}
	return p.DefaultDispositionScore
}

// RecommendationConfig holds the thresholds of the recommendation table.
type RecommendationConfig struct {
	DoubtfulStaleDays       int    `yaml:"doubtful_stale_days" validate:"gte=0"`
	ColdHistoryInteractions int    `yaml:"cold_history_interactions" validate:"gte=0"`
	FirstContactChannel     string `yaml:"first_contact_channel" validate:"required"`
}

// DefaultConfig returns the production tuning for B2B equipment sales: long
// cycles where inactivity is normal and deal stage dominates priority.
func DefaultConfig() Config {
	var cfg Config

	cfg.Metrics = MetricsConfig{
		ShortWindowDays:     7,
		LongWindowDays:      30,
		RecentOutcomeWindow: 5,
		DefaultChannel:      "otro",
	}

	d := &cfg.Disposition
	d.Unknown.MaxInteractions = 2
	d.Saturated.MinInteractionsShortWindow = 5
	d.Saturated.RecentSilences = 2
	d.ReadyToDecide.MinResponseRate = 0.5
	d.Receptive.MinResponseRate = 0.6
	d.Receptive.MaxDaysSinceContact = 10
	d.Cold.MinDaysSinceContact = 30
	d.Cold.MaxResponseRate = 0.15
	d.Doubtful.MinResponseRate = 0.3
	d.Doubtful.MaxResponseRate = 0.6
	d.MixedSignalDistinctOutcomes = 2
	d.Confidence.FullDataInteractions = 10
	d.Confidence.LowDataInteractions = 3
	d.Confidence.LowDataCap = 0.3
	d.Confidence.UnknownCap = 0.2
	d.Confidence.FallbackCap = 0.4

	cfg.Priority = PriorityConfig{
		Weights: PriorityWeights{
			Urgency:     0.15,
			Receptivity: 0.20,
			Momentum:    0.15,
			StageValue:  0.35,
			Freshness:   0.15,
		},
		UrgencyCapDays:       3,
		MomentumFrequencyCap: 10,
		FreshnessWindowDays:  30,
		DispositionScores: map[models.Disposition]int{
			models.DispositionReceptive:     100,
			models.DispositionReadyToDecide: 90,
			models.DispositionDoubtful:      50,
			models.DispositionUnknown:       40,
			models.DispositionCold:          20,
			models.DispositionSaturated:     10,
		},
		DefaultDispositionScore: 40,
		StageValues: map[models.Status]int{
			models.StatusNegotiating: 100,
			models.StatusInterested:  85,
			models.StatusReactivate:  70,
			models.StatusContacted:   50,
			models.StatusNew:         40,
			models.StatusNoResponse:  35,
		},
		DefaultStageValue: 30,
	}

	cfg.Recommendation = RecommendationConfig{
		DoubtfulStaleDays:       10,
		ColdHistoryInteractions: 5,
		FirstContactChannel:     "WhatsApp",
	}

	cfg.FollowUp = followup.DefaultConfig()

	cfg.ActiveStatuses = []models.Status{
		models.StatusNew,
		models.StatusContacted,
		models.StatusNoResponse,
		models.StatusInterested,
		models.StatusNegotiating,
		models.StatusReactivate,
	}

	return cfg
}

const weightTolerance = 1e-9

// Validate checks field ranges, that the priority weights sum to 1, that every
// disposition has a receptivity score and that every table key is a known enum value.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid engine config: %w", err)
	}

	if sum := c.Priority.Weights.Sum(); math.Abs(sum-1) > weightTolerance {
		return fmt.Errorf("invalid engine config: priority weights sum to %.4f, want 1.0", sum)
	}

	for _, d := range models.AllDispositions {
		if _, ok := c.Priority.DispositionScores[d]; !ok {
			return fmt.Errorf("invalid engine config: missing disposition score for %q", d)
		}
	}
	for d := range c.Priority.DispositionScores {
		if !d.IsValid() {
			return fmt.Errorf("invalid engine config: unknown disposition %q", d)
		}
	}
	for s := range c.Priority.StageValues {
		if !s.IsValid() {
			return fmt.Errorf("invalid engine config: unknown status %q in stage values", s)
		}
	}
	for s := range c.FollowUp.IntervalDays {
		if !s.IsValid() {
			return fmt.Errorf("invalid engine config: unknown status %q in follow-up intervals", s)
		}
	}
	for _, s := range c.ActiveStatuses {
		if !s.IsValid() {
			return fmt.Errorf("invalid engine config: unknown active status %q", s)
		}
	}

	if c.Disposition.Doubtful.MinResponseRate > c.Disposition.Doubtful.MaxResponseRate {
		return fmt.Errorf("invalid engine config: doubtful response-rate band is inverted")
	}

	return nil
}

func (c Config) isActive(s models.Status) bool {
	for _, a := range c.ActiveStatuses {
		if a == s {
			return true
		}
	}
	return false
}

package intelligence

import (
	"fmt"
	"time"

	"github.com/jordanlanch/clientintel/pkg/domain"
	"github.com/jordanlanch/clientintel/pkg/followup"
	"github.com/jordanlanch/clientintel/pkg/logger"
	"github.com/jordanlanch/clientintel/pkg/models"
)

// Analysis is the full engine output for one client.
type Analysis struct {
	ClientID        int              `json:"clientId"`
	ComputedAt      time.Time        `json:"computedAt"`
	Metrics         Metrics          `json:"metrics"`
	Disposition     Disposition      `json:"disposition"`
	Priority        Priority         `json:"priority"`
	Recommendations []Recommendation `json:"recommendations"`

	// Temperature and Suggestions keep the shape older clients of the API read.
	Temperature followup.Temperature  `json:"temperatura"`
	Suggestions []followup.Suggestion `json:"sugerencias"`
}

// TopRecommendation returns the highest ranked recommendation, if any.
func (a *Analysis) TopRecommendation() *Recommendation {
	return Top(a.Recommendations)
}

// Service runs the analysis pipeline: metrics, disposition, priority and
// recommendations, in that order.
type Service struct {
	cfg    Config
	rules  *followup.Rules
	logger logger.Logger
	now    func() time.Time
}

// NewService creates an intelligence service. The configuration is validated
// once here so the pipeline can rely on it.
func NewService(cfg Config, log logger.Logger) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Service{
		cfg:    cfg,
		rules:  followup.NewRules(cfg.FollowUp),
		logger: log,
		now:    time.Now,
	}, nil
}

// SetClock replaces the time source used by Analyze.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Now returns the current instant as seen by the service.
func (s *Service) Now() time.Time {
	return s.now()
}

// Config returns the configuration the service was built with.
func (s *Service) Config() Config {
	return s.cfg
}

// Rules returns the follow-up rules derived from the configuration.
func (s *Service) Rules() *followup.Rules {
	return s.rules
}

// Analyze runs the pipeline for client at the service's current time.
func (s *Service) Analyze(client *models.Client) (*Analysis, error) {
	return s.AnalyzeAt(client, s.now())
}

// AnalyzeAt runs the pipeline for client relative to now. The result depends
// only on the client, its interactions and now.
func (s *Service) AnalyzeAt(client *models.Client, now time.Time) (*Analysis, error) {
	if err := validateClient(client); err != nil {
		return nil, err
	}

	metrics := ComputeMetrics(s.cfg.Metrics, client, client.Interactions, now)
	disposition := ComputeDisposition(s.cfg, client, &metrics)
	priority := ComputePriority(s.cfg.Priority, client, &metrics, disposition, now)
	recs := GenerateRecommendations(s.cfg.Recommendation, client, &metrics, disposition)

	s.logger.Debug("client analyzed",
		"client_id", client.ID,
		"disposition", disposition.Category,
		"rule", disposition.Rule,
		"priority", priority.Score,
	)

	return &Analysis{
		ClientID:        client.ID,
		ComputedAt:      now,
		Metrics:         metrics,
		Disposition:     disposition,
		Priority:        priority,
		Recommendations: recs,
		Temperature:     legacyTemperature(disposition.Category, client.Status),
		Suggestions:     legacySuggestions(recs),
	}, nil
}

func validateClient(client *models.Client) error {
	if client == nil {
		return domain.NewInvalidInputError("client is required")
	}
	if client.ID <= 0 {
		return domain.NewInvalidInputError("client id is required")
	}
	if !client.Status.IsValid() {
		return domain.NewInvalidInputError(fmt.Sprintf("unknown client status %q", client.Status))
	}
	return nil
}

func legacyTemperature(d models.Disposition, s models.Status) followup.Temperature {
	if !followup.RequiresFollowUp(s) {
		return followup.TemperatureInactive
	}
	switch d {
	case models.DispositionReceptive, models.DispositionReadyToDecide:
		return followup.TemperatureHot
	case models.DispositionCold, models.DispositionSaturated:
		return followup.TemperatureCold
	default:
		return followup.TemperatureWarm
	}
}

var legacySuggestionTypes = map[models.Action]followup.SuggestionType{
	models.ActionContactToday: followup.SuggestionFollowUp,
	models.ActionWait:         followup.SuggestionWait,
	models.ActionReactivate:   followup.SuggestionReactivation,
	models.ActionClose:        followup.SuggestionClose,
	models.ActionDiscard:      followup.SuggestionConsiderDiscard,
	models.ActionCompleteData: followup.SuggestionIncompleteData,
}

func legacySuggestions(recs []Recommendation) []followup.Suggestion {
	out := make([]followup.Suggestion, 0, len(recs))
	for _, r := range recs {
		t, ok := legacySuggestionTypes[r.Action]
		if !ok {
			t = followup.SuggestionType(r.Action)
		}
		out = append(out, followup.Suggestion{
			Type:     t,
			Priority: followup.LevelFor(r.Priority),
			Message:  r.Reasoning,
		})
	}
	return out
}

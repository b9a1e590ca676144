package intelligence

import (
	"math"
	"time"

	"github.com/jordanlanch/clientintel/pkg/models"
)

// PriorityFactors are the five independent components of the priority score,
// each in [0,100].
type PriorityFactors struct {
	Urgency     int `json:"urgencia"`
	Receptivity int `json:"receptividad"`
	Momentum    int `json:"momentum"`
	StageValue  int `json:"valorEtapa"`
	Freshness   int `json:"frescura"`
}

// Priority is the 0-100 ranking of a client plus its breakdown.
type Priority struct {
	Score   int             `json:"score"`
	Factors PriorityFactors `json:"factors"`
}

// ComputePriority combines urgency, receptivity, momentum, stage value and
// freshness with the configured weights.
func ComputePriority(cfg PriorityConfig, client *models.Client, m *Metrics, d Disposition, now time.Time) Priority {
	f := PriorityFactors{
		Urgency:     clampScore(urgency(cfg, client, now)),
		Receptivity: clampScore(cfg.DispositionScore(d.Category)),
		Momentum:    clampScore(momentum(cfg, m)),
		StageValue:  clampScore(cfg.StageValue(client.Status)),
		Freshness:   clampScore(freshness(cfg, m)),
	}

	w := cfg.Weights
	score := float64(f.Urgency)*w.Urgency +
		float64(f.Receptivity)*w.Receptivity +
		float64(f.Momentum)*w.Momentum +
		float64(f.StageValue)*w.StageValue +
		float64(f.Freshness)*w.Freshness

	return Priority{
		Score:   clampScore(int(math.Round(score))),
		Factors: f,
	}
}

func urgency(cfg PriorityConfig, client *models.Client, now time.Time) int {
	if !client.IsOverdue(now) {
		return 0
	}
	d := client.DaysOverdue(now)
	if d >= cfg.UrgencyCapDays {
		return 100
	}
	return int(math.Round(float64(d) / float64(cfg.UrgencyCapDays) * 100))
}

func momentum(cfg PriorityConfig, m *Metrics) int {
	activity := math.Min(1, float64(m.ContactFrequency30d)/float64(cfg.MomentumFrequencyCap))
	return int(math.Round(m.ResponseRate * activity * 100))
}

func freshness(cfg PriorityConfig, m *Metrics) int {
	window := float64(cfg.FreshnessWindowDays)
	days := math.Min(float64(m.DaysSinceContact), window)
	return int(math.Round((1 - days/window) * 100))
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

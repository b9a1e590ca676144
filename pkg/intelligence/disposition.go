package intelligence

import (
	"fmt"
	"math"

	"github.com/jordanlanch/clientintel/pkg/models"
)

// Disposition is the inferred receptiveness of a client.
type Disposition struct {
	Category   models.Disposition `json:"disposition"`
	Confidence float64            `json:"confidence"`
	Signals    []string           `json:"signals"`
	// Rule names the rule of the chain that produced the category.
	Rule string `json:"rule"`
}

// dispositionInput is what every disposition rule sees.
type dispositionInput struct {
	cfg        DispositionConfig
	client     *models.Client
	metrics    *Metrics
	active     bool
	confidence float64
}

// dispositionRule is one entry of the ordered chain: the first rule whose
// match returns true decides the category.
type dispositionRule struct {
	name  string
	match func(in *dispositionInput) bool
	build func(in *dispositionInput) Disposition
}

// dispositionRules is evaluated top to bottom. Data sufficiency and saturation
// come first because they make the rate-based rules unreliable; readiness to
// decide outranks plain receptiveness.
var dispositionRules = []dispositionRule{
	{
		name: "insufficient_data",
		match: func(in *dispositionInput) bool {
			return in.metrics.TotalInteractions < in.cfg.Unknown.MaxInteractions
		},
		build: func(in *dispositionInput) Disposition {
			return Disposition{
				Category:   models.DispositionUnknown,
				Confidence: math.Min(in.confidence, in.cfg.Confidence.UnknownCap),
				Signals:    []string{"Pocas interacciones registradas, datos insuficientes para clasificar"},
			}
		},
	},
	{
		name: "saturated",
		match: func(in *dispositionInput) bool {
			if in.metrics.ShortWindow < in.cfg.Saturated.MinInteractionsShortWindow {
				return false
			}
			return recentSilences(in.metrics.RecentOutcomes, in.cfg.Saturated.RecentSilences) >= in.cfg.Saturated.RecentSilences
		},
		build: func(in *dispositionInput) Disposition {
			return Disposition{
				Category:   models.DispositionSaturated,
				Confidence: in.confidence,
				Signals:    []string{fmt.Sprintf("%d interacciones en 7 días con silencios recientes", in.metrics.ShortWindow)},
			}
		},
	},
	{
		name: "ready_to_decide",
		match: func(in *dispositionInput) bool {
			return in.client.Status == models.StatusNegotiating &&
				in.metrics.Advances > 0 &&
				in.metrics.ResponseRate > in.cfg.ReadyToDecide.MinResponseRate
		},
		build: func(in *dispositionInput) Disposition {
			return Disposition{
				Category:   models.DispositionReadyToDecide,
				Confidence: in.confidence,
				Signals:    []string{"En negociación con avances y buena tasa de respuesta"},
			}
		},
	},
	{
		name: "receptive",
		match: func(in *dispositionInput) bool {
			return in.metrics.ResponseRate > in.cfg.Receptive.MinResponseRate &&
				in.metrics.DaysSinceContact < in.cfg.Receptive.MaxDaysSinceContact &&
				in.active
		},
		build: func(in *dispositionInput) Disposition {
			return Disposition{
				Category:   models.DispositionReceptive,
				Confidence: in.confidence,
				Signals:    []string{"Alta tasa de respuesta y contacto reciente"},
			}
		},
	},
	{
		name: "cold",
		match: func(in *dispositionInput) bool {
			return in.metrics.DaysSinceContact > in.cfg.Cold.MinDaysSinceContact ||
				in.metrics.ResponseRate < in.cfg.Cold.MaxResponseRate
		},
		build: func(in *dispositionInput) Disposition {
			signals := make([]string, 0, 2)
			if in.metrics.DaysSinceContact > in.cfg.Cold.MinDaysSinceContact {
				if in.metrics.NeverContacted() {
					signals = append(signals, "Sin contacto registrado")
				} else {
					signals = append(signals, fmt.Sprintf("Sin contacto hace %d días", in.metrics.DaysSinceContact))
				}
			}
			if in.metrics.ResponseRate < in.cfg.Cold.MaxResponseRate {
				signals = append(signals, fmt.Sprintf("Tasa de respuesta muy baja (%d%%)", percent(in.metrics.ResponseRate)))
			}
			return Disposition{
				Category:   models.DispositionCold,
				Confidence: in.confidence,
				Signals:    signals,
			}
		},
	},
	{
		name: "moderate_response",
		match: func(in *dispositionInput) bool {
			return in.metrics.ResponseRate >= in.cfg.Doubtful.MinResponseRate &&
				in.metrics.ResponseRate <= in.cfg.Doubtful.MaxResponseRate
		},
		build: func(in *dispositionInput) Disposition {
			return Disposition{
				Category:   models.DispositionDoubtful,
				Confidence: in.confidence,
				Signals:    []string{"Tasa de respuesta moderada, señales mixtas"},
			}
		},
	},
	{
		name: "mixed_outcomes",
		match: func(in *dispositionInput) bool {
			return distinctOutcomes(in.metrics.RecentOutcomes) >= in.cfg.MixedSignalDistinctOutcomes
		},
		build: func(in *dispositionInput) Disposition {
			return Disposition{
				Category:   models.DispositionDoubtful,
				Confidence: in.confidence,
				Signals:    []string{"Outcomes variados en interacciones recientes"},
			}
		},
	},
	{
		name:  "fallback",
		match: func(*dispositionInput) bool { return true },
		build: func(in *dispositionInput) Disposition {
			return Disposition{
				Category:   models.DispositionDoubtful,
				Confidence: math.Min(in.confidence, in.cfg.Confidence.FallbackCap),
				Signals:    []string{"No encaja claramente en ninguna categoría"},
			}
		},
	},
}

// DispositionRuleOrder returns the rule names in evaluation order.
func DispositionRuleOrder() []string {
	names := make([]string, len(dispositionRules))
	for i, r := range dispositionRules {
		names[i] = r.name
	}
	return names
}

// ComputeDisposition classifies a client. Exactly one category is returned:
// the chain ends with an unconditional fallback.
func ComputeDisposition(cfg Config, client *models.Client, m *Metrics) Disposition {
	in := &dispositionInput{
		cfg:        cfg.Disposition,
		client:     client,
		metrics:    m,
		active:     cfg.isActive(client.Status),
		confidence: baseConfidence(cfg.Disposition, m.TotalInteractions),
	}

	for _, rule := range dispositionRules {
		if rule.match(in) {
			d := rule.build(in)
			d.Rule = rule.name
			return d
		}
	}

	// unreachable: the fallback rule always matches
	panic("intelligence: disposition chain has no fallback")
}

func baseConfidence(cfg DispositionConfig, total int) float64 {
	c := math.Min(1, float64(total)/float64(cfg.Confidence.FullDataInteractions))
	if total < cfg.Confidence.LowDataInteractions {
		c = math.Min(c, cfg.Confidence.LowDataCap)
	}
	return c
}

// recentSilences counts silences among the first n recent outcomes.
func recentSilences(outcomes []models.Outcome, n int) int {
	if n > len(outcomes) {
		n = len(outcomes)
	}
	count := 0
	for _, o := range outcomes[:n] {
		if o == models.OutcomeSilence {
			count++
		}
	}
	return count
}

func distinctOutcomes(outcomes []models.Outcome) int {
	seen := make(map[models.Outcome]struct{}, len(outcomes))
	for _, o := range outcomes {
		seen[o] = struct{}{}
	}
	return len(seen)
}

// percent renders a rate as a whole percentage, halves rounded up.
func percent(rate float64) int {
	return int(math.Floor(rate*100 + 0.5))
}

package intelligence

import (
	"sort"

	"github.com/jordanlanch/clientintel/pkg/models"
)

// Recommendation is one suggested next step for a client.
type Recommendation struct {
	Action    models.Action   `json:"action"`
	Approach  models.Approach `json:"approach,omitempty"`
	Channel   string          `json:"channel,omitempty"`
	Reasoning string          `json:"reasoning"`
	Priority  int             `json:"priority"`
}

type recommendationInput struct {
	cfg     RecommendationConfig
	client  *models.Client
	metrics *Metrics
}

// recommendationRule maps a disposition, optionally narrowed by when, to a
// primary recommendation. A nil when matches every client of the disposition.
type recommendationRule struct {
	name        string
	disposition models.Disposition
	when        func(in *recommendationInput) bool
	build       func(in *recommendationInput) Recommendation
}

func (r recommendationRule) matches(d models.Disposition, in *recommendationInput) bool {
	return r.disposition == d && (r.when == nil || r.when(in))
}

var primaryRecommendationRules = []recommendationRule{
	{
		name:        "close_negotiation",
		disposition: models.DispositionReceptive,
		when:        func(in *recommendationInput) bool { return in.client.Status == models.StatusNegotiating },
		build: func(in *recommendationInput) Recommendation {
			return Recommendation{
				Action:    models.ActionClose,
				Approach:  models.ApproachDirect,
				Channel:   in.metrics.PreferredChannel,
				Reasoning: "Cliente receptivo en negociación activa, momento ideal para cerrar",
				Priority:  95,
			}
		},
	},
	{
		name:        "ready_to_decide",
		disposition: models.DispositionReadyToDecide,
		build: func(in *recommendationInput) Recommendation {
			return Recommendation{
				Action:    models.ActionContactToday,
				Approach:  models.ApproachDirect,
				Channel:   in.metrics.PreferredChannel,
				Reasoning: "Cliente listo para tomar decisión, hay avances y buena respuesta",
				Priority:  90,
			}
		},
	},
	{
		name:        "receptive",
		disposition: models.DispositionReceptive,
		build: func(in *recommendationInput) Recommendation {
			return Recommendation{
				Action:    models.ActionContactToday,
				Approach:  models.ApproachDirect,
				Channel:   in.metrics.PreferredChannel,
				Reasoning: "Cliente receptivo con buena tasa de respuesta",
				Priority:  80,
			}
		},
	},
	{
		name:        "doubtful_stale",
		disposition: models.DispositionDoubtful,
		when: func(in *recommendationInput) bool {
			return in.metrics.DaysSinceContact >= in.cfg.DoubtfulStaleDays
		},
		build: func(in *recommendationInput) Recommendation {
			return Recommendation{
				Action:    models.ActionContactToday,
				Approach:  models.ApproachSoft,
				Channel:   in.metrics.PreferredChannel,
				Reasoning: "Cliente con señales mixtas — preguntar por estado de su proyecto u operación",
				Priority:  60,
			}
		},
	},
	{
		name:        "doubtful_recent",
		disposition: models.DispositionDoubtful,
		build: func(in *recommendationInput) Recommendation {
			return Recommendation{
				Action:    models.ActionWait,
				Approach:  models.ApproachSoft,
				Channel:   in.metrics.PreferredChannel,
				Reasoning: "Cliente con señales mixtas y contacto reciente — esperar, puede estar en proceso interno",
				Priority:  30,
			}
		},
	},
	{
		name:        "saturated",
		disposition: models.DispositionSaturated,
		build: func(*recommendationInput) Recommendation {
			return Recommendation{
				Action:    models.ActionWait,
				Reasoning: "Cliente saturado con muchos contactos recientes y sin respuesta, dar espacio",
				Priority:  10,
			}
		},
	},
	{
		name:        "cold_with_history",
		disposition: models.DispositionCold,
		when: func(in *recommendationInput) bool {
			return in.metrics.TotalInteractions > in.cfg.ColdHistoryInteractions
		},
		build: func(in *recommendationInput) Recommendation {
			return Recommendation{
				Action:    models.ActionReactivate,
				Approach:  models.ApproachReactivation,
				Channel:   in.metrics.PreferredChannel,
				Reasoning: "Cliente frío con historial — archivar temporalmente y recontactar en próximo ciclo de proyectos",
				Priority:  20,
			}
		},
	},
	{
		name:        "cold_sparse",
		disposition: models.DispositionCold,
		build: func(in *recommendationInput) Recommendation {
			return Recommendation{
				Action:    models.ActionReactivate,
				Approach:  models.ApproachSoft,
				Channel:   in.metrics.PreferredChannel,
				Reasoning: "Cliente frío con pocas interacciones — preguntar por estado de su proyecto u operación",
				Priority:  40,
			}
		},
	},
	{
		name:        "first_contact",
		disposition: models.DispositionUnknown,
		build: func(in *recommendationInput) Recommendation {
			channel := in.metrics.PreferredChannel
			if channel == "" {
				channel = in.cfg.FirstContactChannel
			}
			return Recommendation{
				Action:    models.ActionContactToday,
				Approach:  models.ApproachDirect,
				Channel:   channel,
				Reasoning: "Cliente nuevo sin datos suficientes — contactar para entender proyecto o necesidad actual",
				Priority:  65,
			}
		},
	},
}

// RecommendationRuleOrder returns the primary rule names in evaluation order.
func RecommendationRuleOrder() []string {
	names := make([]string, len(primaryRecommendationRules))
	for i, r := range primaryRecommendationRules {
		names[i] = r.name
	}
	return names
}

// GenerateRecommendations returns the primary recommendation for the client's
// disposition plus a data-completion one when both email and company are
// missing, sorted by priority descending. Equal priorities keep insertion order.
func GenerateRecommendations(cfg RecommendationConfig, client *models.Client, m *Metrics, d Disposition) []Recommendation {
	in := &recommendationInput{cfg: cfg, client: client, metrics: m}
	recs := make([]Recommendation, 0, 2)

	for _, rule := range primaryRecommendationRules {
		if rule.matches(d.Category, in) {
			recs = append(recs, rule.build(in))
			break
		}
	}

	if client.MissingContactData() {
		recs = append(recs, Recommendation{
			Action:    models.ActionCompleteData,
			Approach:  models.ApproachInformative,
			Reasoning: "Faltan email y empresa, completar datos para mejor seguimiento",
			Priority:  25,
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Priority > recs[j].Priority
	})

	return recs
}

// Top returns the highest ranked recommendation, or nil for an empty list.
func Top(recs []Recommendation) *Recommendation {
	if len(recs) == 0 {
		return nil
	}
	return &recs[0]
}

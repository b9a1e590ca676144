package dailyplan

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jordanlanch/clientintel/pkg/intelligence"
	"github.com/jordanlanch/clientintel/pkg/models"
)

// Category is the allocation bucket of a client.
type Category string

const (
	CategoryMustContact Category = "mustContact"
	CategoryHighValue   Category = "highValue"
	CategoryMaintenance Category = "maintenance"
)

// actionabilityScore measures how ready the client is to be acted on today.
func (c Config) actionabilityScore(client *models.Client, a *intelligence.Analysis, now time.Time) int {
	score := 0

	if client.IsOverdue(now) {
		if client.DaysOverdue(now) >= c.Points.VeryOverdueThresholdDays {
			score += c.Points.VeryOverdue
		} else {
			score += c.Points.Overdue
		}
	}

	if top := a.TopRecommendation(); top != nil &&
		(top.Action == models.ActionContactToday || top.Action == models.ActionClose) {
		score += c.Points.ActionableRecommendation
	}

	switch a.Disposition.Category {
	case models.DispositionReceptive, models.DispositionReadyToDecide:
		score += c.Points.GoodDisposition
	}

	if client.HasCompleteData() {
		score += c.Points.CompleteData
	}

	if score > 100 {
		return 100
	}
	return score
}

// compositeScore blends priority and actionability, rounded to one decimal.
func (c Config) compositeScore(priority, actionability int) float64 {
	raw := float64(priority)*c.Weights.Priority + float64(actionability)*c.Weights.Actionability
	return math.Round(raw*10) / 10
}

func classify(client *models.Client, d models.Disposition) Category {
	switch {
	case client.Status == models.StatusNegotiating || d == models.DispositionReadyToDecide:
		return CategoryMustContact
	case d == models.DispositionReceptive || client.Status == models.StatusInterested:
		return CategoryHighValue
	default:
		return CategoryMaintenance
	}
}

// reasonTemplate is one entry of the selection-reason chain; the first match
// provides the lead sentence.
type reasonTemplate struct {
	match func(s models.Status, d models.Disposition) bool
	text  string
}

var reasonTemplates = []reasonTemplate{
	{
		match: func(s models.Status, d models.Disposition) bool {
			return s == models.StatusNegotiating && d == models.DispositionReadyToDecide
		},
		text: "Cotizacion activa con avances confirmados — momento ideal para cerrar",
	},
	{
		match: func(s models.Status, _ models.Disposition) bool { return s == models.StatusNegotiating },
		text:  "En negociacion activa — requiere seguimiento cercano",
	},
	{
		match: func(_ models.Status, d models.Disposition) bool { return d == models.DispositionReadyToDecide },
		text:  "Listo para tomar decision — oportunidad de cierre",
	},
	{
		match: func(_ models.Status, d models.Disposition) bool { return d == models.DispositionReceptive },
		text:  "Cliente receptivo con buena tasa de respuesta",
	},
	{
		match: func(s models.Status, _ models.Disposition) bool { return s == models.StatusInterested },
		text:  "Muestra interes activo — buen momento para avanzar",
	},
	{
		match: func(_ models.Status, d models.Disposition) bool { return d == models.DispositionDoubtful },
		text:  "Respuesta inconsistente — contacto estrategico puede desbloquear",
	},
	{
		match: func(s models.Status, _ models.Disposition) bool { return s == models.StatusReactivate },
		text:  "Cliente previo con potencial de reactivacion",
	},
	{
		match: func(_ models.Status, d models.Disposition) bool { return d == models.DispositionCold },
		text:  "Lleva tiempo sin responder — intento de reactivacion",
	},
}

const defaultReason = "Pendiente de primer contacto o seguimiento"

const reasonSeparator = " — "

// selectionReason explains in one line why the client is on today's list.
func selectionReason(client *models.Client, a *intelligence.Analysis, now time.Time) string {
	parts := make([]string, 0, 3)

	lead := defaultReason
	for _, t := range reasonTemplates {
		if t.match(client.Status, a.Disposition.Category) {
			lead = t.text
			break
		}
	}
	parts = append(parts, lead)

	if client.IsOverdue(now) {
		if d := client.DaysOverdue(now); d > 0 {
			suffix := ""
			if d > 1 {
				suffix = "s"
			}
			parts = append(parts, fmt.Sprintf("seguimiento vencido hace %d dia%s", d, suffix))
		}
	}

	if top := a.TopRecommendation(); top != nil {
		switch top.Action {
		case models.ActionClose:
			parts = append(parts, "accion: cerrar")
		case models.ActionReactivate:
			parts = append(parts, "accion: reactivar contacto")
		}
	}

	return strings.Join(parts, reasonSeparator)
}

package followup

import (
	"fmt"
	"time"

	"github.com/jordanlanch/clientintel/pkg/models"
)

// Temperature is the coarse heat label shown next to a client.
type Temperature string

const (
	TemperatureHot      Temperature = "caliente"
	TemperatureWarm     Temperature = "tibio"
	TemperatureCold     Temperature = "frio"
	TemperatureInactive Temperature = "inactivo"
)

// Level is the urgency of a suggestion.
type Level string

const (
	LevelHigh   Level = "alta"
	LevelMedium Level = "media"
	LevelLow    Level = "baja"
)

// SuggestionType identifies a follow-up suggestion.
type SuggestionType string

const (
	SuggestionOverdue        SuggestionType = "vencido"
	SuggestionNewUncontacted SuggestionType = "nuevo_sin_contactar"
	SuggestionNoContact      SuggestionType = "sin_contacto"
	SuggestionArchive        SuggestionType = "considerar_archivar"
	SuggestionClose          SuggestionType = "cerrar"
	SuggestionAfterSale      SuggestionType = "postventa"
	SuggestionIncompleteData SuggestionType = "datos_incompletos"

	// engine recommendation kinds, as shown in the legacy suggestion list
	SuggestionFollowUp        SuggestionType = "seguimiento"
	SuggestionWait            SuggestionType = "esperar"
	SuggestionReactivation    SuggestionType = "reactivacion"
	SuggestionConsiderDiscard SuggestionType = "considerar_descartar"
)

// Suggestion is a single follow-up hint.
type Suggestion struct {
	Type     SuggestionType `json:"tipo"`
	Priority Level          `json:"prioridad"`
	Message  string         `json:"mensaje"`
}

// LevelFor maps a 0-100 priority to a suggestion level.
func LevelFor(priority int) Level {
	switch {
	case priority >= 70:
		return LevelHigh
	case priority >= 40:
		return LevelMedium
	default:
		return LevelLow
	}
}

// NoFollowUpStatuses are terminal statuses that never get a next contact.
var NoFollowUpStatuses = []models.Status{models.StatusLost, models.StatusDiscarded}

// RequiresFollowUp reports whether clients in status s are scheduled at all.
func RequiresFollowUp(s models.Status) bool {
	for _, n := range NoFollowUpStatuses {
		if s == n {
			return false
		}
	}
	return true
}

// FollowUpStatuses returns every status that takes part in follow-up scheduling.
func FollowUpStatuses() []models.Status {
	out := make([]models.Status, 0, len(models.AllStatuses))
	for _, s := range models.AllStatuses {
		if RequiresFollowUp(s) {
			out = append(out, s)
		}
	}
	return out
}

// Rules evaluates follow-up scheduling, temperature and suggestions.
type Rules struct {
	cfg Config
}

// NewRules creates follow-up rules from cfg.
func NewRules(cfg Config) *Rules {
	return &Rules{cfg: cfg}
}

// NextContactDate returns the follow-up date for a client entering status,
// counted from from. Statuses without an interval return nil.
func (r *Rules) NextContactDate(status models.Status, from time.Time) *time.Time {
	if !RequiresFollowUp(status) {
		return nil
	}
	days, ok := r.cfg.IntervalDays[status]
	if !ok {
		return nil
	}
	next := from.AddDate(0, 0, days)
	return &next
}

// Temperature classifies a client by status and contact recency.
func (r *Rules) Temperature(c *models.Client, now time.Time) Temperature {
	if !RequiresFollowUp(c.Status) {
		return TemperatureInactive
	}
	// closed deals stay warm while after-sale follow-up runs
	if c.Status == models.StatusClosed {
		return TemperatureWarm
	}

	days := models.DaysSince(c.LastTouch(), now)
	switch {
	case (c.Status == models.StatusInterested || c.Status == models.StatusNegotiating) && days <= r.cfg.HotMaxDays:
		return TemperatureHot
	case days <= r.cfg.WarmMaxDays:
		return TemperatureWarm
	case days > r.cfg.ColdMinDays:
		return TemperatureCold
	default:
		return TemperatureWarm
	}
}

// Suggestions lists the follow-up hints that apply to c at now.
func (r *Rules) Suggestions(c *models.Client, now time.Time) []Suggestion {
	out := make([]Suggestion, 0, 2)
	active := RequiresFollowUp(c.Status)

	if c.IsOverdue(now) && active {
		d := c.DaysOverdue(now)
		out = append(out, Suggestion{
			Type:     SuggestionOverdue,
			Priority: LevelHigh,
			Message:  fmt.Sprintf("Seguimiento vencido hace %d día%s", d, plural(d)),
		})
	}

	if c.Status == models.StatusNew && c.LastContactAt == nil &&
		models.DaysSince(&c.CreatedAt, now) > r.cfg.NewUncontactedDays {
		out = append(out, Suggestion{
			Type:     SuggestionNewUncontacted,
			Priority: LevelHigh,
			Message:  "Cliente nuevo sin contactar — identificar proyecto o necesidad",
		})
	}

	sinceContact := models.DaysSince(c.LastTouch(), now)
	if sinceContact > r.cfg.NoContactDays && active && c.Status != models.StatusClosed {
		out = append(out, Suggestion{
			Type:     SuggestionNoContact,
			Priority: LevelMedium,
			Message:  fmt.Sprintf("Sin contacto hace %d días", sinceContact),
		})
	}

	if c.Status == models.StatusNoResponse && sinceContact > r.cfg.ArchiveDays {
		out = append(out, Suggestion{
			Type:     SuggestionArchive,
			Priority: LevelLow,
			Message:  fmt.Sprintf("Sin respuesta hace más de %d días — considerar archivar y recontactar en próximo trimestre", r.cfg.ArchiveDays),
		})
	}

	if c.Status == models.StatusNegotiating && sinceContact <= r.cfg.NegotiationActiveDays {
		out = append(out, Suggestion{
			Type:     SuggestionClose,
			Priority: LevelHigh,
			Message:  "Cotización activa en negociación — dar seguimiento para cerrar",
		})
	}

	if c.Status == models.StatusClosed && sinceContact >= r.cfg.AfterSaleDays {
		out = append(out, Suggestion{
			Type:     SuggestionAfterSale,
			Priority: LevelMedium,
			Message:  "Seguimiento de postventa — verificar satisfacción y necesidades de refacciones o módulos",
		})
	}

	if c.MissingContactData() {
		out = append(out, Suggestion{
			Type:     SuggestionIncompleteData,
			Priority: LevelLow,
			Message:  "Faltan email y empresa",
		})
	}

	return out
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

package models

import (
	"strings"

	"golang.org/x/text/cases"
)

// Status is the lifecycle stage of a client.
type Status string

const (
	StatusNew         Status = "Nuevo"
	StatusContacted   Status = "Contactado"
	StatusNoResponse  Status = "Sin respuesta"
	StatusInterested  Status = "Interesado"
	StatusNegotiating Status = "Negociando"
	StatusReactivate  Status = "Reactivar"
	StatusClosed      Status = "Cerrado"
	StatusLost        Status = "Perdido"
	StatusDiscarded   Status = "Descartado"
)

// AllStatuses lists every lifecycle status in pipeline order.
var AllStatuses = []Status{
	StatusNew,
	StatusContacted,
	StatusNoResponse,
	StatusInterested,
	StatusNegotiating,
	StatusReactivate,
	StatusClosed,
	StatusLost,
	StatusDiscarded,
}

// IsValid reports whether s is one of the known statuses.
func (s Status) IsValid() bool {
	switch s {
	case StatusNew, StatusContacted, StatusNoResponse, StatusInterested,
		StatusNegotiating, StatusReactivate, StatusClosed, StatusLost, StatusDiscarded:
		return true
	default:
		return false
	}
}

// ParseStatus resolves free-form input ("negociando", " SIN RESPUESTA ")
// to a known status. The second return value is false for unknown input.
func ParseStatus(raw string) (Status, bool) {
	fold := cases.Fold() // a Caser is stateful, so one per call
	needle := fold.String(strings.Join(strings.Fields(raw), " "))
	for _, s := range AllStatuses {
		if fold.String(string(s)) == needle {
			return s, true
		}
	}
	return "", false
}

// Outcome is the result of a single interaction.
type Outcome string

const (
	OutcomeResponse  Outcome = "respuesta"
	OutcomeSilence   Outcome = "silencio"
	OutcomeAdvance   Outcome = "avance"
	OutcomeRejection Outcome = "rechazo"
)

// IsValid reports whether o is a known outcome. The empty outcome is not valid
// but is accepted everywhere as "no outcome recorded".
func (o Outcome) IsValid() bool {
	switch o {
	case OutcomeResponse, OutcomeSilence, OutcomeAdvance, OutcomeRejection:
		return true
	default:
		return false
	}
}

// IsSuccess reports whether the outcome counts as a successful touch on a channel.
func (o Outcome) IsSuccess() bool {
	return o == OutcomeResponse || o == OutcomeAdvance
}

// Disposition is the inferred receptiveness category of a client.
type Disposition string

const (
	DispositionReceptive     Disposition = "receptivo"
	DispositionDoubtful      Disposition = "dudoso"
	DispositionSaturated     Disposition = "saturado"
	DispositionCold          Disposition = "frio"
	DispositionReadyToDecide Disposition = "listo_para_decision"
	DispositionUnknown       Disposition = "desconocido"
)

// AllDispositions lists every disposition category.
var AllDispositions = []Disposition{
	DispositionReceptive,
	DispositionDoubtful,
	DispositionSaturated,
	DispositionCold,
	DispositionReadyToDecide,
	DispositionUnknown,
}

// IsValid reports whether d is a known disposition.
func (d Disposition) IsValid() bool {
	switch d {
	case DispositionReceptive, DispositionDoubtful, DispositionSaturated,
		DispositionCold, DispositionReadyToDecide, DispositionUnknown:
		return true
	default:
		return false
	}
}

// Action is a suggested next step for a client.
type Action string

const (
	ActionContactToday Action = "contactar_hoy"
	ActionWait         Action = "esperar"
	ActionReactivate   Action = "reactivar"
	ActionClose        Action = "cerrar"
	ActionDiscard      Action = "descartar"
	ActionCompleteData Action = "completar_datos"
)

// Approach is the tone suggested for an action.
type Approach string

const (
	ApproachDirect       Approach = "directo"
	ApproachSoft         Approach = "suave"
	ApproachInformative  Approach = "informativo"
	ApproachReactivation Approach = "reactivacion"
)

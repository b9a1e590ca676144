package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/jordanlanch/clientintel/pkg/api/errors"
	"github.com/jordanlanch/clientintel/pkg/cache"
	"github.com/jordanlanch/clientintel/pkg/followup"
	"github.com/jordanlanch/clientintel/pkg/intelligence"
	"github.com/jordanlanch/clientintel/pkg/logger"
	"github.com/jordanlanch/clientintel/pkg/metrics"
	"github.com/jordanlanch/clientintel/pkg/models"
	"github.com/jordanlanch/clientintel/pkg/store"
	"github.com/labstack/echo/v4"
)

const (
	atRiskMinPriority       = 30 // frio clients strictly above this are at risk
	highPriorityMinPriority = 75
)

// SuggestedClient is a client card on the suggestions board.
type SuggestedClient struct {
	ID            int                   `json:"id"`
	Name          string                `json:"nombre"`
	Company       string                `json:"empresa,omitempty"`
	Phone         string                `json:"telefono,omitempty"`
	Status        models.Status         `json:"estatus"`
	NextContactAt *time.Time            `json:"proximoContacto,omitempty"`
	DaysOverdue   int                   `json:"diasVencido"`
	Temperature   followup.Temperature  `json:"temperatura"`
	Suggestions   []followup.Suggestion `json:"sugerencias"`
	PriorityScore int                   `json:"priorityScore"`
	Disposition   models.Disposition    `json:"disposition"`
}

// SuggestionsBoard groups clients by the follow-up hint or engine signal
// that applies to them. A client may appear in several buckets.
type SuggestionsBoard struct {
	Overdue         []SuggestedClient `json:"vencidos"`
	NewUncontacted  []SuggestedClient `json:"nuevosSinContactar"`
	NoContact       []SuggestedClient `json:"sinContacto"`
	ConsiderArchive []SuggestedClient `json:"considerarArchivar"`
	IncompleteData  []SuggestedClient `json:"datosIncompletos"`
	ReadyToClose    []SuggestedClient `json:"listosParaCierre"`
	AtRisk          []SuggestedClient `json:"enRiesgo"`
	HighPriority    []SuggestedClient `json:"altaPrioridad"`
}

func newSuggestionsBoard() *SuggestionsBoard {
	return &SuggestionsBoard{
		Overdue:         []SuggestedClient{},
		NewUncontacted:  []SuggestedClient{},
		NoContact:       []SuggestedClient{},
		ConsiderArchive: []SuggestedClient{},
		IncompleteData:  []SuggestedClient{},
		ReadyToClose:    []SuggestedClient{},
		AtRisk:          []SuggestedClient{},
		HighPriority:    []SuggestedClient{},
	}
}

// SuggestionsHandler handles the suggestions board endpoint
type SuggestionsHandler struct {
	store     *store.Store
	engine    *intelligence.Service
	snapshots *cache.AnalysisCache
	metrics   *metrics.Metrics
	logger    logger.Logger
}

// NewSuggestionsHandler creates a new suggestions handler
func NewSuggestionsHandler(st *store.Store, engine *intelligence.Service, snapshots *cache.AnalysisCache, m *metrics.Metrics, log logger.Logger) *SuggestionsHandler {
	if log == nil {
		log = logger.Discard()
	}
	return &SuggestionsHandler{
		store:     st,
		engine:    engine,
		snapshots: snapshots,
		metrics:   m,
		logger:    log,
	}
}

// GetSuggestions handles GET /clients/suggestions. Fresh cached snapshots are
// reused; other clients are analyzed on the spot.
func (h *SuggestionsHandler) GetSuggestions(c echo.Context) error {
	ctx := c.Request().Context()

	clients, err := h.store.ListByStatuses(ctx, followup.FollowUpStatuses())
	if err != nil {
		return errors.DatabaseError(c, err)
	}

	now := h.engine.Now()
	rules := h.engine.Rules()
	analyses := h.analyses(ctx, clients, now, "suggestions board")
	board := newSuggestionsBoard()

	for i := range clients {
		client := &clients[i]
		analysis, ok := analyses[client.ID]
		if !ok {
			continue
		}

		card := SuggestedClient{
			ID:            client.ID,
			Name:          client.Name,
			Company:       client.Company,
			Phone:         client.Phone,
			Status:        client.Status,
			NextContactAt: client.NextContactAt,
			DaysOverdue:   client.DaysOverdue(now),
			Temperature:   rules.Temperature(client, now),
			Suggestions:   rules.Suggestions(client, now),
			PriorityScore: analysis.Priority.Score,
			Disposition:   analysis.Disposition.Category,
		}
		board.add(card)
	}

	return c.JSON(http.StatusOK, board)
}

// analyses returns the analysis of every client that can be analyzed, reusing
// fresh snapshots. A broken cache degrades to computing everything.
func (h *SuggestionsHandler) analyses(ctx context.Context, clients []models.Client, now time.Time, view string) map[int]*intelligence.Analysis {
	ids := make([]int, len(clients))
	for i := range clients {
		ids[i] = clients[i].ID
	}
	cached, err := h.snapshots.GetMany(ctx, ids)
	if err != nil {
		h.logger.Warn("analysis cache unavailable, recomputing", "error", err)
		cached = map[int]*intelligence.Analysis{}
	}

	out := make(map[int]*intelligence.Analysis, len(clients))
	for i := range clients {
		client := &clients[i]
		if a, ok := cached[client.ID]; ok {
			h.metrics.RecordCacheHit("analysis")
			out[client.ID] = a
			continue
		}
		h.metrics.RecordCacheMiss("analysis")
		a, err := h.engine.AnalyzeAt(client, now)
		if err != nil {
			h.logger.Warn("skipping client", "view", view, "client_id", client.ID, "error", err)
			continue
		}
		out[client.ID] = a
	}
	return out
}

func (b *SuggestionsBoard) add(card SuggestedClient) {
	for _, s := range card.Suggestions {
		switch s.Type {
		case followup.SuggestionOverdue:
			b.Overdue = append(b.Overdue, card)
		case followup.SuggestionNewUncontacted:
			b.NewUncontacted = append(b.NewUncontacted, card)
		case followup.SuggestionNoContact:
			b.NoContact = append(b.NoContact, card)
		case followup.SuggestionArchive:
			b.ConsiderArchive = append(b.ConsiderArchive, card)
		case followup.SuggestionIncompleteData:
			b.IncompleteData = append(b.IncompleteData, card)
		}
	}

	if card.Disposition == models.DispositionReadyToDecide {
		b.ReadyToClose = append(b.ReadyToClose, card)
	}
	if card.Disposition == models.DispositionCold && card.PriorityScore > atRiskMinPriority {
		b.AtRisk = append(b.AtRisk, card)
	}
	if card.PriorityScore >= highPriorityMinPriority {
		b.HighPriority = append(b.HighPriority, card)
	}
}

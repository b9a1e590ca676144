package handlers

import (
	"net/http"
	"sort"
	"time"

	"github.com/jordanlanch/clientintel/pkg/api/errors"
	"github.com/jordanlanch/clientintel/pkg/followup"
	"github.com/jordanlanch/clientintel/pkg/intelligence"
	"github.com/jordanlanch/clientintel/pkg/models"
	"github.com/labstack/echo/v4"
)

// TodayClient is a client due for contact today, with its analysis.
type TodayClient struct {
	ID              int                           `json:"id"`
	Name            string                        `json:"nombre"`
	Company         string                        `json:"empresa,omitempty"`
	Phone           string                        `json:"telefono,omitempty"`
	Email           string                        `json:"email,omitempty"`
	Status          models.Status                 `json:"estatus"`
	NextContactAt   *time.Time                    `json:"proximoContacto,omitempty"`
	LastContactAt   *time.Time                    `json:"ultimoContacto,omitempty"`
	DaysOverdue     int                           `json:"diasVencido"`
	Temperature     followup.Temperature          `json:"temperatura"`
	Suggestions     []followup.Suggestion         `json:"sugerencias"`
	LastInteraction *models.Interaction           `json:"ultimaInteraccion"`
	Disposition     intelligence.Disposition      `json:"disposition"`
	Priority        intelligence.Priority         `json:"priority"`
	Recommendations []intelligence.Recommendation `json:"recommendations"`
}

var temperatureRank = map[followup.Temperature]int{
	followup.TemperatureHot:      0,
	followup.TemperatureWarm:     1,
	followup.TemperatureCold:     2,
	followup.TemperatureInactive: 3,
}

// GetToday handles GET /clients/today: every client whose next contact falls
// on or before the end of today, skipping perdido and descartado.
func (h *SuggestionsHandler) GetToday(c echo.Context) error {
	ctx := c.Request().Context()
	now := h.engine.Now()

	clients, err := h.store.ListFollowUpCandidates(ctx, endOfDay(now.UTC()), followup.NoFollowUpStatuses)
	if err != nil {
		return errors.DatabaseError(c, err)
	}

	rules := h.engine.Rules()
	analyses := h.analyses(ctx, clients, now, "today")

	out := make([]TodayClient, 0, len(clients))
	for i := range clients {
		client := &clients[i]
		analysis, ok := analyses[client.ID]
		if !ok {
			continue
		}

		item := TodayClient{
			ID:              client.ID,
			Name:            client.Name,
			Company:         client.Company,
			Phone:           client.Phone,
			Email:           client.Email,
			Status:          client.Status,
			NextContactAt:   client.NextContactAt,
			LastContactAt:   client.LastContactAt,
			DaysOverdue:     client.DaysOverdue(now),
			Temperature:     rules.Temperature(client, now),
			Suggestions:     rules.Suggestions(client, now),
			Disposition:     analysis.Disposition,
			Priority:        analysis.Priority,
			Recommendations: analysis.Recommendations,
		}
		if len(client.Interactions) > 0 {
			item.LastInteraction = &client.Interactions[0]
		}
		if item.Recommendations == nil {
			item.Recommendations = []intelligence.Recommendation{}
		}
		out = append(out, item)
	}

	sortToday(out)
	return c.JSON(http.StatusOK, out)
}

// sortToday orders by priority score descending, then overdue before on-time,
// then warmer first, then the earliest next contact.
func sortToday(items []TodayClient) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := &items[i], &items[j]
		if a.Priority.Score != b.Priority.Score {
			return a.Priority.Score > b.Priority.Score
		}
		if ao, bo := a.DaysOverdue > 0, b.DaysOverdue > 0; ao != bo {
			return ao
		}
		if ra, rb := temperatureRank[a.Temperature], temperatureRank[b.Temperature]; ra != rb {
			return ra < rb
		}
		if a.NextContactAt != nil && b.NextContactAt != nil && !a.NextContactAt.Equal(*b.NextContactAt) {
			return a.NextContactAt.Before(*b.NextContactAt)
		}
		return a.ID < b.ID
	})
}

package handlers

import (
	"net/http"
	"time"

	"github.com/jordanlanch/clientintel/pkg/api/errors"
	"github.com/jordanlanch/clientintel/pkg/cache"
	"github.com/jordanlanch/clientintel/pkg/intelligence"
	"github.com/jordanlanch/clientintel/pkg/jobs"
	"github.com/jordanlanch/clientintel/pkg/logger"
	"github.com/jordanlanch/clientintel/pkg/metrics"
	"github.com/jordanlanch/clientintel/pkg/models"
	"github.com/jordanlanch/clientintel/pkg/store"
	"github.com/labstack/echo/v4"
)

// ClientSummary is the client header shown above an analysis.
type ClientSummary struct {
	ID        int           `json:"id"`
	Name      string        `json:"nombre"`
	Status    models.Status `json:"estatus"`
	CreatedAt time.Time     `json:"createdAt"`
}

// IntelligenceResponse is the full analysis of one client.
type IntelligenceResponse struct {
	Client        ClientSummary          `json:"client"`
	Analysis      *intelligence.Analysis `json:"analysis"`
	StatusHistory []models.StatusChange  `json:"statusHistory"`
}

// IntelligenceHandler handles the client analysis endpoints
type IntelligenceHandler struct {
	store      *store.Store
	engine     *intelligence.Service
	snapshots  *cache.AnalysisCache
	recomputer *jobs.Recomputer
	metrics    *metrics.Metrics
	logger     logger.Logger
}

// NewIntelligenceHandler creates a new intelligence handler
func NewIntelligenceHandler(
	st *store.Store,
	engine *intelligence.Service,
	snapshots *cache.AnalysisCache,
	recomputer *jobs.Recomputer,
	m *metrics.Metrics,
	log logger.Logger,
) *IntelligenceHandler {
	if log == nil {
		log = logger.Discard()
	}
	return &IntelligenceHandler{
		store:      st,
		engine:     engine,
		snapshots:  snapshots,
		recomputer: recomputer,
		metrics:    m,
		logger:     log,
	}
}

// GetClientIntelligence handles GET /clients/:id/intelligence. The analysis
// is always computed fresh and the snapshot cache is refreshed on the way out.
func (h *IntelligenceHandler) GetClientIntelligence(c echo.Context) error {
	id, err := parseClientID(c)
	if err != nil {
		return errors.InvalidInputError(c, err)
	}

	ctx := c.Request().Context()
	client, err := h.store.GetClient(ctx, id)
	if err != nil {
		return errors.FromDomain(c, err)
	}

	analysis, err := h.engine.Analyze(client)
	if err != nil {
		return errors.FromDomain(c, err)
	}
	h.metrics.RecordAnalysis(string(analysis.Disposition.Category))

	// cache write failures are not fatal
	if err := h.snapshots.Put(ctx, analysis); err != nil {
		h.logger.Warn("failed to cache analysis", "client_id", id, "error", err)
	}

	return c.JSON(http.StatusOK, IntelligenceResponse{
		Client: ClientSummary{
			ID:        client.ID,
			Name:      client.Name,
			Status:    client.Status,
			CreatedAt: client.CreatedAt,
		},
		Analysis:      analysis,
		StatusHistory: client.StatusChanges,
	})
}

// Recompute handles POST /engine/recompute
func (h *IntelligenceHandler) Recompute(c echo.Context) error {
	res, err := h.recomputer.RunOnce(c.Request().Context())
	if err != nil {
		return errors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

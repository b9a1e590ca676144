package handlers

import (
	"math"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/jordanlanch/clientintel/pkg/api/errors"
	"github.com/jordanlanch/clientintel/pkg/cache"
	"github.com/jordanlanch/clientintel/pkg/domain"
	"github.com/jordanlanch/clientintel/pkg/intelligence"
	"github.com/jordanlanch/clientintel/pkg/logger"
	"github.com/jordanlanch/clientintel/pkg/metrics"
	"github.com/jordanlanch/clientintel/pkg/models"
	"github.com/jordanlanch/clientintel/pkg/store"
	"github.com/labstack/echo/v4"
)

const (
	defaultInteractionPageSize = 20
	maxInteractionPageSize     = 100

	// keeps (page-1)*limit inside a SQL integer offset
	maxInteractionPage = math.MaxInt32 / maxInteractionPageSize
)

// InteractionListResponse is one page of a client's interactions.
type InteractionListResponse struct {
	Interactions []models.Interaction `json:"interactions"`
	Total        int                  `json:"total"`
	Page         int                  `json:"page"`
	TotalPages   int                  `json:"totalPages"`
}

// LogInteractionResponse returns the stored interaction with the client and
// its analysis after the change.
type LogInteractionResponse struct {
	Interaction *models.Interaction    `json:"interaction"`
	Client      *models.Client         `json:"client"`
	Analysis    *intelligence.Analysis `json:"analysis,omitempty"`
}

// InteractionHandler handles interaction logging endpoints
type InteractionHandler struct {
	store     *store.Store
	engine    *intelligence.Service
	snapshots *cache.AnalysisCache
	metrics   *metrics.Metrics
	validator *validator.Validate
	logger    logger.Logger
}

// NewInteractionHandler creates a new interaction handler
func NewInteractionHandler(st *store.Store, engine *intelligence.Service, snapshots *cache.AnalysisCache, m *metrics.Metrics, log logger.Logger) *InteractionHandler {
	if log == nil {
		log = logger.Discard()
	}
	return &InteractionHandler{
		store:     st,
		engine:    engine,
		snapshots: snapshots,
		metrics:   m,
		validator: validator.New(),
		logger:    log,
	}
}

// List handles GET /clients/:id/interactions?page=&limit=
func (h *InteractionHandler) List(c echo.Context) error {
	id, err := parseClientID(c)
	if err != nil {
		return errors.InvalidInputError(c, err)
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	if page > maxInteractionPage {
		page = maxInteractionPage
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 {
		limit = defaultInteractionPageSize
	}
	if limit > maxInteractionPageSize {
		limit = maxInteractionPageSize
	}

	items, total, err := h.store.ListInteractions(c.Request().Context(), id, limit, (page-1)*limit)
	if err != nil {
		return errors.DatabaseError(c, err)
	}

	return c.JSON(http.StatusOK, InteractionListResponse{
		Interactions: items,
		Total:        total,
		Page:         page,
		TotalPages:   (total + limit - 1) / limit,
	})
}

// Create handles POST /clients/:id/interactions. The client's last contact
// becomes now; the next contact is the requested date or the follow-up
// interval of the resulting status.
func (h *InteractionHandler) Create(c echo.Context) error {
	id, err := parseClientID(c)
	if err != nil {
		return errors.InvalidInputError(c, err)
	}

	var req models.LogInteractionRequest
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError(c, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return errors.ValidationError(c, err)
	}

	var newStatus models.Status
	if req.NewStatus != "" {
		s, ok := models.ParseStatus(req.NewStatus)
		if !ok {
			return errors.ValidationError(c, domain.NewValidationError("nuevoEstatus is not a known status"))
		}
		newStatus = s
	}

	ctx := c.Request().Context()
	client, err := h.store.GetClient(ctx, id)
	if err != nil {
		return errors.FromDomain(c, err)
	}

	now := h.engine.Now()
	status := client.Status
	if newStatus != "" {
		status = newStatus
	}
	next := req.NextContact
	if next == nil {
		next = h.engine.Rules().NextContactDate(status, now)
	}

	interaction, err := h.store.LogInteraction(ctx, store.LogInteractionParams{
		ClientID:       id,
		Type:           req.Type,
		Content:        req.Content,
		Result:         req.Result,
		Outcome:        req.Outcome,
		PreviousStatus: client.Status,
		NewStatus:      newStatus,
		NextContact:    next,
		At:             now,
	})
	if err != nil {
		return errors.FromDomain(c, err)
	}
	h.metrics.RecordInteraction(string(req.Outcome))

	resp := LogInteractionResponse{Interaction: interaction}
	resp.Client, resp.Analysis = h.refreshSnapshot(c, id)
	return c.JSON(http.StatusCreated, resp)
}

// refreshSnapshot reanalyzes the client after a change. When that fails the
// stale snapshot is dropped instead, so readers fall back to recomputing.
func (h *InteractionHandler) refreshSnapshot(c echo.Context, id int) (*models.Client, *intelligence.Analysis) {
	ctx := c.Request().Context()

	client, err := h.store.GetClient(ctx, id)
	if err == nil {
		var analysis *intelligence.Analysis
		analysis, err = h.engine.Analyze(client)
		if err == nil {
			if err = h.snapshots.Put(ctx, analysis); err == nil {
				return client, analysis
			}
		}
	}

	h.logger.Warn("failed to refresh analysis after interaction", "client_id", id, "error", err)
	if err := h.snapshots.Invalidate(ctx, id); err != nil {
		h.logger.Error("failed to invalidate cached analysis", "client_id", id, "error", err)
	}
	return client, nil
}

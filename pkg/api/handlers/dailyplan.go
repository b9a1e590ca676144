package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/jordanlanch/clientintel/pkg/api/errors"
	"github.com/jordanlanch/clientintel/pkg/dailyplan"
	"github.com/jordanlanch/clientintel/pkg/export"
	"github.com/jordanlanch/clientintel/pkg/followup"
	"github.com/jordanlanch/clientintel/pkg/metrics"
	"github.com/jordanlanch/clientintel/pkg/store"
	"github.com/labstack/echo/v4"
)

// DailyPlanHandler handles the daily contact plan endpoints
type DailyPlanHandler struct {
	store    *store.Store
	planner  *dailyplan.Service
	exporter *export.Service
	metrics  *metrics.Metrics
}

// NewDailyPlanHandler creates a new daily plan handler
func NewDailyPlanHandler(st *store.Store, planner *dailyplan.Service, exporter *export.Service, m *metrics.Metrics) *DailyPlanHandler {
	return &DailyPlanHandler{
		store:    st,
		planner:  planner,
		exporter: exporter,
		metrics:  m,
	}
}

// buildPlan loads today's candidates and builds the plan for the ?limit=
// query parameter.
func (h *DailyPlanHandler) buildPlan(c echo.Context) (*dailyplan.Plan, error) {
	limit, err := dailyplan.ParseLimit(c.QueryParam("limit"))
	if err != nil {
		return nil, err
	}

	ctx := c.Request().Context()
	until := endOfDay(h.planner.Now().UTC())
	clients, err := h.store.ListFollowUpCandidates(ctx, until, followup.NoFollowUpStatuses)
	if err != nil {
		return nil, err
	}

	plan, err := h.planner.BuildPlan(ctx, clients, limit)
	if err != nil {
		return nil, err
	}
	h.metrics.RecordDailyPlan(len(plan.Entries))
	return plan, nil
}

// GetDailyPlan handles GET /clients/daily-plan
func (h *DailyPlanHandler) GetDailyPlan(c echo.Context) error {
	plan, err := h.buildPlan(c)
	if err != nil {
		return errors.FromDomain(c, err)
	}
	return c.JSON(http.StatusOK, plan)
}

// ExportDailyPlan handles GET /clients/daily-plan/export?format=csv|excel
func (h *DailyPlanHandler) ExportDailyPlan(c echo.Context) error {
	format, err := export.ParseFormat(c.QueryParam("format"))
	if err != nil {
		return errors.ValidationError(c, err)
	}

	plan, err := h.buildPlan(c)
	if err != nil {
		return errors.FromDomain(c, err)
	}

	var buf bytes.Buffer
	if err := h.exporter.Write(&buf, format, plan); err != nil {
		return errors.InternalError(c, err)
	}
	h.metrics.RecordExportCreated(string(format))

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", format.Filename(plan)))
	return c.Blob(http.StatusOK, format.ContentType(), buf.Bytes())
}

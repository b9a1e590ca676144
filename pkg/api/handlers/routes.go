package handlers

import "github.com/labstack/echo/v4"

// Handlers bundles every endpoint group of the API.
type Handlers struct {
	Health       *HealthHandler
	Intelligence *IntelligenceHandler
	DailyPlan    *DailyPlanHandler
	Suggestions  *SuggestionsHandler
	Interactions *InteractionHandler
}

// Register mounts the API routes.
func (h *Handlers) Register(e *echo.Echo) {
	e.GET("/health", h.Health.Check)

	v1 := e.Group("/api/v1")
	v1.GET("/health", h.Health.Check)

	clients := v1.Group("/clients")
	clients.GET("/daily-plan", h.DailyPlan.GetDailyPlan)
	clients.GET("/daily-plan/export", h.DailyPlan.ExportDailyPlan)
	clients.GET("/suggestions", h.Suggestions.GetSuggestions)
	clients.GET("/today", h.Suggestions.GetToday)
	clients.GET("/:id/intelligence", h.Intelligence.GetClientIntelligence)
	clients.GET("/:id/interactions", h.Interactions.List)
	clients.POST("/:id/interactions", h.Interactions.Create)

	v1.POST("/engine/recompute", h.Intelligence.Recompute)
}

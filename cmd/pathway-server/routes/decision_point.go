package routes

import (
	"github.com/labstack/echo/v4"
	"github.com/sdhealth/pathway-tracker/cmd/pathway-server/container"
	"github.com/sdhealth/pathway-tracker/cmd/pathway-server/handlers"
	"github.com/sdhealth/pathway-tracker/cmd/pathway-server/middleware"
)

// RegisterDecisionPointRoutes registers decision point routes
func RegisterDecisionPointRoutes(e *echo.Echo, c *container.Container) {
	h := handlers.NewDecisionPointHandler(c.DecisionService, c.Components.Logger)
	auth := middleware.RequireSession(c.Sessions, c.Components.Logger)

	decisions := e.Group("/api/v1/decision-points", auth)
	{
		decisions.POST("", h.Create)    // POST /api/v1/decision-points
		decisions.GET("/:id", h.Get)    // GET /api/v1/decision-points/{id}
	}
}

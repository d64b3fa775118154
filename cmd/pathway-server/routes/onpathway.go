package routes

import (
	"github.com/labstack/echo/v4"
	"github.com/sdhealth/pathway-tracker/cmd/pathway-server/container"
	"github.com/sdhealth/pathway-tracker/cmd/pathway-server/handlers"
	"github.com/sdhealth/pathway-tracker/cmd/pathway-server/middleware"
)

// RegisterOnPathwayRoutes registers OnPathway lock routes
func RegisterOnPathwayRoutes(e *echo.Echo, c *container.Container) {
	h := handlers.NewOnPathwayHandler(c.StateEngine, c.Components.Logger)
	auth := middleware.RequireSession(c.Sessions, c.Components.Logger)

	onPathways := e.Group("/api/v1/on-pathways", auth)
	{
		onPathways.POST("/:id/lock", h.AcquireLock)   // POST /api/v1/on-pathways/{id}/lock
		onPathways.DELETE("/:id/lock", h.ReleaseLock) // DELETE /api/v1/on-pathways/{id}/lock
	}
}

package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/sdhealth/pathway-tracker/cmd/pathway-server/middleware"
	"github.com/sdhealth/pathway-tracker/cmd/pathway-server/models"
	"github.com/sdhealth/pathway-tracker/cmd/pathway-server/service"
	"github.com/sdhealth/pathway-tracker/common/logger"
)

// OnPathwayHandler handles OnPathway lock requests
type OnPathwayHandler struct {
	state *service.PathwayStateEngine
	log   *logger.Logger
}

// NewOnPathwayHandler creates a new OnPathway handler
func NewOnPathwayHandler(state *service.PathwayStateEngine, log *logger.Logger) *OnPathwayHandler {
	return &OnPathwayHandler{state: state, log: log}
}

type lockResponse struct {
	OnPathway  *models.OnPathway    `json:"onPathway,omitempty"`
	UserErrors []service.FieldError `json:"userErrors,omitempty"`
}

// AcquireLock takes the submission lock for the session user
// POST /api/v1/on-pathways/:id/lock
func (h *OnPathwayHandler) AcquireLock(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid on_pathway id"})
	}

	op, userErrs, err := h.state.AcquireLock(c.Request().Context(), id, middleware.GetUserID(c))
	if err != nil {
		return writeServiceError(c, h.log, err)
	}
	if userErrs.HasErrors() {
		return c.JSON(http.StatusOK, lockResponse{UserErrors: userErrs.Errors})
	}

	return c.JSON(http.StatusOK, lockResponse{OnPathway: op})
}

// ReleaseLock releases the submission lock held by the session user
// DELETE /api/v1/on-pathways/:id/lock
func (h *OnPathwayHandler) ReleaseLock(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid on_pathway id"})
	}

	op, userErrs, err := h.state.ReleaseLock(c.Request().Context(), id, middleware.GetUserID(c))
	if err != nil {
		return writeServiceError(c, h.log, err)
	}
	if userErrs.HasErrors() {
		return c.JSON(http.StatusOK, lockResponse{UserErrors: userErrs.Errors})
	}

	return c.JSON(http.StatusOK, lockResponse{OnPathway: op})
}

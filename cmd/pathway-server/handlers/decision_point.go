package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sdhealth/pathway-tracker/cmd/pathway-server/middleware"
	"github.com/sdhealth/pathway-tracker/cmd/pathway-server/models"
	"github.com/sdhealth/pathway-tracker/cmd/pathway-server/service"
	"github.com/sdhealth/pathway-tracker/common/logger"
)

// DecisionPointHandler handles decision-point submission requests
type DecisionPointHandler struct {
	decisions *service.DecisionService
	log       *logger.Logger
}

// NewDecisionPointHandler creates a new decision point handler
func NewDecisionPointHandler(decisions *service.DecisionService, log *logger.Logger) *DecisionPointHandler {
	return &DecisionPointHandler{decisions: decisions, log: log}
}

type mdtInput struct {
	ID     int64  `json:"id"`
	Reason string `json:"reason"`
}

type createDecisionPointRequest struct {
	OnPathwayID            int64      `json:"onPathwayId"`
	ClinicianID            int64      `json:"clinicianId"`
	DecisionType           string     `json:"decisionType"`
	ClinicHistory          string     `json:"clinicHistory"`
	Comorbidities          string     `json:"comorbidities"`
	AddedAt                *time.Time `json:"addedAt,omitempty"`
	ClinicalRequestTypeIDs []int64    `json:"clinicalRequestTypeIds"`
	ResolvedRequestIDs     []int64    `json:"resolvedRequestIds"`
	Mdt                    *mdtInput  `json:"mdt,omitempty"`
}

type decisionPointResponse struct {
	DecisionPoint *models.DecisionPoint `json:"decisionPoint,omitempty"`
	UserErrors    []service.FieldError  `json:"userErrors,omitempty"`
}

// Create submits a new decision point
// POST /api/v1/decision-points
func (h *DecisionPointHandler) Create(c echo.Context) error {
	req := &createDecisionPointRequest{}
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.OnPathwayID == 0 || req.ClinicianID == 0 || req.DecisionType == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "onPathwayId, clinicianId and decisionType are required",
		})
	}

	input := &service.CreateDecisionPointRequest{
		OnPathwayID:            req.OnPathwayID,
		ClinicianID:            req.ClinicianID,
		DecisionType:           models.DecisionType(req.DecisionType),
		ClinicHistory:          req.ClinicHistory,
		Comorbidities:          req.Comorbidities,
		AddedAt:                req.AddedAt,
		ClinicalRequestTypeIDs: req.ClinicalRequestTypeIDs,
		ResolvedRequestIDs:     req.ResolvedRequestIDs,
		UserID:                 middleware.GetUserID(c),
		SessionToken:           middleware.GetSessionToken(c),
	}
	if req.Mdt != nil {
		input.Mdt = &service.MdtInput{ID: req.Mdt.ID, Reason: req.Mdt.Reason}
	}

	result, err := h.decisions.CreateDecisionPoint(c.Request().Context(), input)
	if err != nil {
		return writeServiceError(c, h.log, err)
	}

	if result.UserErrors.HasErrors() {
		return c.JSON(http.StatusOK, decisionPointResponse{UserErrors: result.UserErrors.Errors})
	}

	return c.JSON(http.StatusCreated, decisionPointResponse{DecisionPoint: result.DecisionPoint})
}

// Get retrieves a decision point
// GET /api/v1/decision-points/:id
func (h *DecisionPointHandler) Get(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid decision point id"})
	}

	detail, err := h.decisions.GetDecisionPoint(c.Request().Context(), id, middleware.GetSessionToken(c))
	if err != nil {
		return writeServiceError(c, h.log, err)
	}

	return c.JSON(http.StatusOK, detail)
}

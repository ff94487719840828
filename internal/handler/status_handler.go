package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
	"github.com/noah-isme/sma-timetable-api/pkg/response"
)

type statusService interface {
	Toggle(ctx context.Context, sessionID, professorID string, req dto.StatusToggleRequest) (*dto.StatusToggleResponse, error)
	ListRequests(ctx context.Context, query dto.StatusRequestQuery) ([]models.StatusRequest, *models.Pagination, error)
	Acknowledge(ctx context.Context, requestID, adminID string) error
}

// StatusHandler exposes the professor status toggle and the admin request queue.
type StatusHandler struct {
	service statusService
}

// NewStatusHandler constructs the handler.
func NewStatusHandler(service statusService) *StatusHandler {
	return &StatusHandler{service: service}
}

// Toggle godoc
// @Summary Cancel, reschedule or reset one of the caller's published sessions
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.StatusToggleRequest true "Action"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /sessions/{id}/status [post]
func (h *StatusHandler) Toggle(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req dto.StatusToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid status payload"))
		return
	}
	result, err := h.service.Toggle(c.Request.Context(), c.Param("id"), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// List godoc
// @Summary List professor status requests
// @Tags Sessions
// @Produce json
// @Param year query string false "Academic year"
// @Param group query string false "Group"
// @Param professorId query string false "Professor"
// @Param pending query bool false "Only unacknowledged requests"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /status-requests [get]
func (h *StatusHandler) List(c *gin.Context) {
	var query dto.StatusRequestQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}
	items, pagination, err := h.service.ListRequests(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Acknowledge godoc
// @Summary Acknowledge a status request
// @Tags Sessions
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /status-requests/{id}/acknowledge [post]
func (h *StatusHandler) Acknowledge(c *gin.Context) {
	if err := h.service.Acknowledge(c.Request.Context(), c.Param("id"), actorID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.SuccessResponse{Success: true}, nil)
}

package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/service"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
	"github.com/noah-isme/sma-timetable-api/pkg/response"
)

type timetableService interface {
	CheckAvailability(ctx context.Context, req dto.AvailabilityRequest) (*models.AvailabilityResult, error)
	CommitSession(ctx context.Context, year, group, day string, slot int, payload dto.SessionPayload) (*dto.CommitSessionResponse, error)
	RemoveSession(ctx context.Context, year, group, day string, slot int, sessionID string) (*dto.TimetableStateResponse, error)
	MoveOrSwap(ctx context.Context, year, group string, req dto.MoveRequest) (*dto.MoveResponse, error)
	Save(ctx context.Context, year, group, actor string) (*dto.SaveResponse, error)
	Publish(ctx context.Context, year, group, actor string) (*dto.PublishResponse, error)
	Discard(ctx context.Context, year, group string) (*dto.TimetableStateResponse, error)
	Release(ctx context.Context, year, group, actor string, req dto.ReleaseRequest) (*dto.TimetableStateResponse, error)
	DeleteTimetable(ctx context.Context, year, group, actor string) (*dto.SuccessResponse, error)
	GetWorking(ctx context.Context, year, group string) (*dto.GridView, error)
	State(ctx context.Context, year, group string) (*dto.TimetableStateResponse, error)
	ListVersions(ctx context.Context, year, group string) ([]models.TimetableVersion, error)
}

type snapshotLinker interface {
	SnapshotLink(ctx context.Context, year, group string, version int) (*service.SnapshotLink, error)
}

// TimetableHandler exposes the editor endpoints used by administrators.
type TimetableHandler struct {
	service   timetableService
	snapshots snapshotLinker
}

// NewTimetableHandler constructs the handler. snapshots may be nil when exports are disabled.
func NewTimetableHandler(service timetableService, snapshots snapshotLinker) *TimetableHandler {
	return &TimetableHandler{service: service, snapshots: snapshots}
}

// CheckAvailability godoc
// @Summary Check a candidate placement for professor and room conflicts
// @Tags Timetables
// @Accept json
// @Produce json
// @Param payload body dto.AvailabilityRequest true "Candidate placement"
// @Success 200 {object} response.Envelope
// @Router /timetables/availability [post]
func (h *TimetableHandler) CheckAvailability(c *gin.Context) {
	var req dto.AvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid availability payload"))
		return
	}
	result, err := h.service.CheckAvailability(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// CommitSession godoc
// @Summary Place a session into a cell of the working copy
// @Tags Timetables
// @Accept json
// @Produce json
// @Param year path string true "Academic year"
// @Param group path string true "Group"
// @Param day path string true "Day"
// @Param slot path int true "Slot (1-6)"
// @Param payload body dto.SessionPayload true "Session"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /timetables/{year}/{group}/cells/{day}/{slot} [put]
func (h *TimetableHandler) CommitSession(c *gin.Context) {
	slot, ok := slotParam(c)
	if !ok {
		return
	}
	var payload dto.SessionPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid session payload"))
		return
	}
	result, err := h.service.CommitSession(c.Request.Context(), c.Param("year"), c.Param("group"), c.Param("day"), slot, payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// RemoveSession godoc
// @Summary Remove a session (or the whole cell) from the working copy
// @Tags Timetables
// @Produce json
// @Param year path string true "Academic year"
// @Param group path string true "Group"
// @Param day path string true "Day"
// @Param slot path int true "Slot (1-6)"
// @Param sessionId query string false "Session to remove; empty clears the cell"
// @Success 200 {object} response.Envelope
// @Router /timetables/{year}/{group}/cells/{day}/{slot} [delete]
func (h *TimetableHandler) RemoveSession(c *gin.Context) {
	slot, ok := slotParam(c)
	if !ok {
		return
	}
	sessionID := strings.TrimSpace(c.Query("sessionId"))
	result, err := h.service.RemoveSession(c.Request.Context(), c.Param("year"), c.Param("group"), c.Param("day"), slot, sessionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// MoveOrSwap godoc
// @Summary Move a cell's content or swap two cells
// @Tags Timetables
// @Accept json
// @Produce json
// @Param year path string true "Academic year"
// @Param group path string true "Group"
// @Param payload body dto.MoveRequest true "Source and destination"
// @Success 200 {object} response.Envelope
// @Router /timetables/{year}/{group}/move [post]
func (h *TimetableHandler) MoveOrSwap(c *gin.Context) {
	var req dto.MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid move payload"))
		return
	}
	result, err := h.service.MoveOrSwap(c.Request.Context(), c.Param("year"), c.Param("group"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Save godoc
// @Summary Save the working copy as draft
// @Tags Timetables
// @Produce json
// @Param year path string true "Academic year"
// @Param group path string true "Group"
// @Success 200 {object} response.Envelope
// @Router /timetables/{year}/{group}/save [post]
func (h *TimetableHandler) Save(c *gin.Context) {
	result, err := h.service.Save(c.Request.Context(), c.Param("year"), c.Param("group"), actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Publish godoc
// @Summary Publish the working copy
// @Tags Timetables
// @Produce json
// @Param year path string true "Academic year"
// @Param group path string true "Group"
// @Success 200 {object} response.Envelope
// @Router /timetables/{year}/{group}/publish [post]
func (h *TimetableHandler) Publish(c *gin.Context) {
	result, err := h.service.Publish(c.Request.Context(), c.Param("year"), c.Param("group"), actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Discard godoc
// @Summary Drop unsaved changes
// @Tags Timetables
// @Produce json
// @Param year path string true "Academic year"
// @Param group path string true "Group"
// @Success 200 {object} response.Envelope
// @Router /timetables/{year}/{group}/discard [post]
func (h *TimetableHandler) Discard(c *gin.Context) {
	result, err := h.service.Discard(c.Request.Context(), c.Param("year"), c.Param("group"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Release godoc
// @Summary Leave the editor, optionally resolving unsaved changes
// @Tags Timetables
// @Accept json
// @Produce json
// @Param year path string true "Academic year"
// @Param group path string true "Group"
// @Param payload body dto.ReleaseRequest false "Resolution"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /timetables/{year}/{group}/release [post]
func (h *TimetableHandler) Release(c *gin.Context) {
	var req dto.ReleaseRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid release payload"))
			return
		}
	}
	result, err := h.service.Release(c.Request.Context(), c.Param("year"), c.Param("group"), actorID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Delete godoc
// @Summary Delete a group's timetable
// @Tags Timetables
// @Produce json
// @Param year path string true "Academic year"
// @Param group path string true "Group"
// @Success 200 {object} response.Envelope
// @Router /timetables/{year}/{group} [delete]
func (h *TimetableHandler) Delete(c *gin.Context) {
	result, err := h.service.DeleteTimetable(c.Request.Context(), c.Param("year"), c.Param("group"), actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Working godoc
// @Summary Read the working copy
// @Tags Timetables
// @Produce json
// @Param year path string true "Academic year"
// @Param group path string true "Group"
// @Success 200 {object} response.Envelope
// @Router /timetables/{year}/{group} [get]
func (h *TimetableHandler) Working(c *gin.Context) {
	result, err := h.service.GetWorking(c.Request.Context(), c.Param("year"), c.Param("group"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// State godoc
// @Summary Read the lifecycle state
// @Tags Timetables
// @Produce json
// @Param year path string true "Academic year"
// @Param group path string true "Group"
// @Success 200 {object} response.Envelope
// @Router /timetables/{year}/{group}/state [get]
func (h *TimetableHandler) State(c *gin.Context) {
	result, err := h.service.State(c.Request.Context(), c.Param("year"), c.Param("group"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Versions godoc
// @Summary List publish history
// @Tags Timetables
// @Produce json
// @Param year path string true "Academic year"
// @Param group path string true "Group"
// @Success 200 {object} response.Envelope
// @Router /timetables/{year}/{group}/versions [get]
func (h *TimetableHandler) Versions(c *gin.Context) {
	result, err := h.service.ListVersions(c.Request.Context(), c.Param("year"), c.Param("group"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// SnapshotLink godoc
// @Summary Issue a signed download link for a published version's PDF snapshot
// @Tags Timetables
// @Produce json
// @Param year path string true "Academic year"
// @Param group path string true "Group"
// @Param version path int true "Version"
// @Success 200 {object} response.Envelope
// @Router /timetables/{year}/{group}/versions/{version}/snapshot [get]
func (h *TimetableHandler) SnapshotLink(c *gin.Context) {
	if h.snapshots == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "snapshots are disabled"))
		return
	}
	version, err := strconv.Atoi(c.Param("version"))
	if err != nil || version < 1 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "version must be a positive integer"))
		return
	}
	link, err := h.snapshots.SnapshotLink(c.Request.Context(), c.Param("year"), c.Param("group"), version)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, link, nil)
}

func slotParam(c *gin.Context) (int, bool) {
	slot, err := strconv.Atoi(c.Param("slot"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "slot must be an integer"))
		return 0, false
	}
	return slot, true
}

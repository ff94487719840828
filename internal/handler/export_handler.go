package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/service"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
	"github.com/noah-isme/sma-timetable-api/pkg/response"
)

type exportService interface {
	Export(ctx context.Context, year, group, format string) (*service.ExportFile, error)
	OpenSnapshot(ctx context.Context, token string) (*service.ExportFile, error)
}

// ExportHandler streams published timetables as files.
type ExportHandler struct {
	service exportService
}

// NewExportHandler constructs the handler.
func NewExportHandler(service exportService) *ExportHandler {
	return &ExportHandler{service: service}
}

// Export godoc
// @Summary Download the published timetable of a group
// @Tags Published
// @Produce octet-stream
// @Param year path string true "Academic year"
// @Param group path string true "Group"
// @Param format query string false "csv or pdf" Enums(csv, pdf)
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /published/{year}/{group}/export [get]
func (h *ExportHandler) Export(c *gin.Context) {
	var query dto.ExportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export format"))
		return
	}
	file, err := h.service.Export(c.Request.Context(), c.Param("year"), c.Param("group"), query.Format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}

// Snapshot godoc
// @Summary Download a stored publish snapshot through a signed link
// @Tags Published
// @Produce application/pdf
// @Param token path string true "Signed token"
// @Success 200 {file} file
// @Failure 401 {object} response.Envelope
// @Router /snapshots/{token} [get]
func (h *ExportHandler) Snapshot(c *gin.Context) {
	file, err := h.service.OpenSnapshot(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}

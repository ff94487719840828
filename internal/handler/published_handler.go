package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/middleware"
	"github.com/noah-isme/sma-timetable-api/pkg/response"
)

type publishedService interface {
	GroupView(ctx context.Context, year, group string) (*dto.GridView, bool, error)
	ProfessorView(ctx context.Context, professorID string) (*dto.ProfessorTimetableView, bool, error)
}

// PublishedHandler serves published timetables to students and professors.
type PublishedHandler struct {
	service publishedService
}

// NewPublishedHandler constructs the handler.
func NewPublishedHandler(service publishedService) *PublishedHandler {
	return &PublishedHandler{service: service}
}

// Group godoc
// @Summary Published timetable of a group
// @Tags Published
// @Produce json
// @Param year path string true "Academic year"
// @Param group path string true "Group"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /published/{year}/{group} [get]
func (h *PublishedHandler) Group(c *gin.Context) {
	view, cacheHit, err := h.service.GroupView(c.Request.Context(), c.Param("year"), c.Param("group"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	middleware.SetMeta(c, "cells", len(view.Cells))
	response.JSON(c, http.StatusOK, view, nil, middleware.ExtractMeta(c))
}

// Professor godoc
// @Summary Published sessions taught by a professor
// @Tags Published
// @Produce json
// @Param id path string true "Professor ID"
// @Success 200 {object} response.Envelope
// @Router /professors/{id}/timetable [get]
func (h *PublishedHandler) Professor(c *gin.Context) {
	view, cacheHit, err := h.service.ProfessorView(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	middleware.SetMeta(c, "entries", len(view.Entries))
	response.JSON(c, http.StatusOK, view, nil, middleware.ExtractMeta(c))
}

package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/middleware"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

type publishedServiceMock struct {
	hit       bool
	err       error
	professor string
}

func (m *publishedServiceMock) GroupView(ctx context.Context, year, group string) (*dto.GridView, bool, error) {
	if m.err != nil {
		return nil, false, m.err
	}
	return &dto.GridView{Year: year, Group: group, Cells: []dto.CellView{}}, m.hit, nil
}

func (m *publishedServiceMock) ProfessorView(ctx context.Context, professorID string) (*dto.ProfessorTimetableView, bool, error) {
	m.professor = professorID
	if m.err != nil {
		return nil, false, m.err
	}
	return &dto.ProfessorTimetableView{ProfessorID: professorID, Entries: []dto.ProfessorEntry{}}, m.hit, nil
}

func TestPublishedHandlerGroupReportsCacheHit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewPublishedHandler(&publishedServiceMock{hit: true})

	c, w := newGinContext(http.MethodGet, "/published/Y1/G1", nil)
	withGroupParams(c)
	middleware.WithResponseMeta()(c)
	handler.Group(c)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeEnvelope(t, w)
	meta := body["meta"].(map[string]interface{})
	require.Equal(t, true, meta["cache_hit"])
	require.Equal(t, float64(0), meta["cells"])
	require.Equal(t, "HIT", w.Header().Get(middleware.CacheStatusHeader))
}

func TestPublishedHandlerGroupNotPublished(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewPublishedHandler(&publishedServiceMock{err: appErrors.Clone(appErrors.ErrNotFound, "timetable has not been published")})

	c, w := newGinContext(http.MethodGet, "/published/Y1/G1", nil)
	withGroupParams(c)
	handler.Group(c)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestPublishedHandlerProfessor(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &publishedServiceMock{}
	handler := NewPublishedHandler(svc)

	c, w := newGinContext(http.MethodGet, "/professors/P1/timetable", nil)
	c.Params = gin.Params{{Key: "id", Value: "P1"}}
	handler.Professor(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "P1", svc.professor)
}

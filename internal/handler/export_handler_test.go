package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/service"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

type exportServiceMock struct {
	format string
	err    error
}

func (m *exportServiceMock) Export(ctx context.Context, year, group, format string) (*service.ExportFile, error) {
	m.format = format
	if m.err != nil {
		return nil, m.err
	}
	return &service.ExportFile{Filename: "timetable_Y1_G1.csv", ContentType: "text/csv", Data: []byte("Day,Slot\n")}, nil
}

func (m *exportServiceMock) OpenSnapshot(ctx context.Context, token string) (*service.ExportFile, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &service.ExportFile{Filename: "v1.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.3")}, nil
}

func TestExportHandlerExport(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &exportServiceMock{}
	handler := NewExportHandler(svc)

	c, w := newGinContext(http.MethodGet, "/published/Y1/G1/export?format=csv", nil)
	withGroupParams(c)
	handler.Export(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "csv", svc.format)
	require.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	require.Contains(t, w.Header().Get("Content-Disposition"), "timetable_Y1_G1.csv")
}

func TestExportHandlerSnapshot(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewExportHandler(&exportServiceMock{})

	c, w := newGinContext(http.MethodGet, "/snapshots/tok", nil)
	c.Params = gin.Params{{Key: "token", Value: "tok"}}
	handler.Snapshot(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "application/pdf", w.Header().Get("Content-Type"))

	expired := NewExportHandler(&exportServiceMock{err: appErrors.ErrUnauthorized})
	c, w = newGinContext(http.MethodGet, "/snapshots/tok", nil)
	c.Params = gin.Params{{Key: "token", Value: "tok"}}
	expired.Snapshot(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/campustack/timetable-api/internal/dto"
	"github.com/campustack/timetable-api/internal/models"
	"github.com/campustack/timetable-api/internal/service"
	appErrors "github.com/campustack/timetable-api/pkg/errors"
)

type exportJobManagerMock struct {
	captured    dto.ExportRequest
	createErr   error
	statusErr   error
	downloadErr error
	download    *service.ExportDownload
}

func (m *exportJobManagerMock) CreateJob(ctx context.Context, req dto.ExportRequest) (*dto.ExportJobResponse, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.captured = req
	return &dto.ExportJobResponse{ID: "job-1", Status: models.ExportStatusQueued}, nil
}

func (m *exportJobManagerMock) GetStatus(ctx context.Context, id string) (*dto.ExportStatusResponse, error) {
	if m.statusErr != nil {
		return nil, m.statusErr
	}
	return &dto.ExportStatusResponse{ID: id, Status: models.ExportStatusProcessing, Progress: 10}, nil
}

func (m *exportJobManagerMock) ResolveDownload(ctx context.Context, token string) (*service.ExportDownload, error) {
	if m.downloadErr != nil {
		return nil, m.downloadErr
	}
	return m.download, nil
}

func TestExportCreateAccepted(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &exportJobManagerMock{}
	handler := &ExportHandler{service: mockSvc}
	payload := []byte(`{"timetableId":"tt-1","scope":"classes","format":"csv"}`)
	req, _ := http.NewRequest(http.MethodPost, "/export", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Create(c)

	require.Equal(t, http.StatusAccepted, w.Code)
	require.Equal(t, "tt-1", mockSvc.captured.TimetableID)
	require.Contains(t, w.Body.String(), `"id":"job-1"`)
}

func TestExportCreateValidationError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &ExportHandler{service: &exportJobManagerMock{createErr: appErrors.Clone(appErrors.ErrValidation, "unsupported export scope")}}
	payload := []byte(`{"timetableId":"tt-1","scope":"everything","format":"csv"}`)
	req, _ := http.NewRequest(http.MethodPost, "/export", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Create(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &ExportHandler{service: &exportJobManagerMock{}}
	router := gin.New()
	router.GET("/export/jobs/:id", handler.Status)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/export/jobs/job-1", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"status":"PROCESSING"`)
}

func TestExportDownloadStreamsFile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	path := filepath.Join(t.TempDir(), "timetable.csv")
	require.NoError(t, os.WriteFile(path, []byte("Class,Day\nCSE-2-A,Monday\n"), 0o644))
	file, err := os.Open(path)
	require.NoError(t, err)

	handler := &ExportHandler{service: &exportJobManagerMock{download: &service.ExportDownload{
		File:      file,
		Filename:  "timetable.csv",
		Format:    models.ExportFormatCSV,
		ExpiresAt: time.Now().Add(time.Hour),
	}}}
	router := gin.New()
	router.GET("/export/:token", handler.Download)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/export/sometoken", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	require.Contains(t, w.Header().Get("Content-Disposition"), "timetable.csv")
	require.Contains(t, w.Body.String(), "CSE-2-A")
}

func TestExportDownloadInvalidToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &ExportHandler{service: &exportJobManagerMock{downloadErr: appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")}}
	router := gin.New()
	router.GET("/export/:token", handler.Download)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/export/badtoken", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusForbidden, w.Code)
}

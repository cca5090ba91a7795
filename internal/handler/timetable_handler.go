package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campustack/timetable-api/internal/dto"
	"github.com/campustack/timetable-api/internal/importer"
	"github.com/campustack/timetable-api/internal/models"
	"github.com/campustack/timetable-api/internal/service"
	appErrors "github.com/campustack/timetable-api/pkg/errors"
	"github.com/campustack/timetable-api/pkg/response"
)

const (
	maxSubjectRows    = 512
	maxImportFileSize = 2 << 20
)

type timetablePreviewResponse struct {
	Mode     string                         `json:"mode"`
	Proposal *dto.GenerateTimetableResponse `json:"proposal"`
}

type timetablePlanner interface {
	Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error)
	Proposal(ctx context.Context, id string) (*dto.GenerateTimetableResponse, error)
	Save(ctx context.Context, req dto.SaveTimetableRequest) (string, error)
	Get(ctx context.Context, id string) (*dto.TimetableDetailResponse, error)
	List(ctx context.Context, query dto.TimetableQuery) ([]models.Timetable, error)
	Publish(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// TimetableHandler exposes timetable generation and lifecycle endpoints.
type TimetableHandler struct {
	service timetablePlanner
}

// NewTimetableHandler constructs the handler.
func NewTimetableHandler(svc *service.TimetableService) *TimetableHandler {
	return &TimetableHandler{service: svc}
}

// Generate godoc
// @Summary Generate a timetable proposal
// @Description Runs the allocation engine and returns a preview proposal. Proposals are held in memory until saved.
// @Tags Timetables
// @Accept json
// @Produce json
// @Param payload body dto.GenerateTimetableRequest true "Generate timetable payload"
// @Success 200 {object} response.Envelope
// @Router /timetables/generate [post]
func (h *TimetableHandler) Generate(c *gin.Context) {
	var req dto.GenerateTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generate payload"))
		return
	}
	if len(req.Rows) > maxSubjectRows {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "subject rows exceed supported limit"))
		return
	}
	result, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, timetablePreviewResponse{Mode: "preview", Proposal: result})
}

// Proposal godoc
// @Summary Get a held proposal by its identifier
// @Description Proposals expire after their TTL; expired or saved proposals return 404.
// @Tags Timetables
// @Produce json
// @Param id path string true "Proposal ID"
// @Success 200 {object} response.Envelope
// @Router /timetables/proposals/{id} [get]
func (h *TimetableHandler) Proposal(c *gin.Context) {
	proposal, err := h.service.Proposal(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, timetablePreviewResponse{Mode: "preview", Proposal: proposal}, nil)
}

// Save godoc
// @Summary Persist a generated proposal as a timetable version
// @Tags Timetables
// @Accept json
// @Produce json
// @Param payload body dto.SaveTimetableRequest true "Save timetable payload"
// @Success 201 {object} response.Envelope
// @Router /timetables [post]
func (h *TimetableHandler) Save(c *gin.Context) {
	var req dto.SaveTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid save payload"))
		return
	}
	id, err := h.service.Save(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"timetableId": id})
}

// List godoc
// @Summary List timetable versions by name
// @Tags Timetables
// @Produce json
// @Param name query string true "Timetable name"
// @Success 200 {object} response.Envelope
// @Router /timetables [get]
func (h *TimetableHandler) List(c *gin.Context) {
	var query dto.TimetableQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return
	}
	result, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Get godoc
// @Summary Get a timetable with its class and teacher grids
// @Tags Timetables
// @Produce json
// @Param id path string true "Timetable ID"
// @Success 200 {object} response.Envelope
// @Router /timetables/{id} [get]
func (h *TimetableHandler) Get(c *gin.Context) {
	detail, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Publish godoc
// @Summary Publish a draft timetable
// @Tags Timetables
// @Param id path string true "Timetable ID"
// @Success 200 {object} response.Envelope
// @Router /timetables/{id}/publish [post]
func (h *TimetableHandler) Publish(c *gin.Context) {
	if err := h.service.Publish(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"status": models.TimetableStatusPublished})
}

// Delete godoc
// @Summary Delete a draft timetable
// @Tags Timetables
// @Param id path string true "Timetable ID"
// @Success 204
// @Router /timetables/{id} [delete]
func (h *TimetableHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ImportRows godoc
// @Summary Parse a subject allocation CSV into request rows
// @Description Accepts a multipart CSV upload and returns rows suitable for the generate endpoint.
// @Tags Timetables
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV file"
// @Success 200 {object} response.Envelope
// @Router /timetables/import [post]
func (h *TimetableHandler) ImportRows(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "missing csv file"))
		return
	}
	if fileHeader.Size > maxImportFileSize {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "csv file exceeds supported size"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open upload"))
		return
	}
	defer file.Close()

	rows, err := importer.Parse(file)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid csv file"))
		return
	}
	if len(rows) > maxSubjectRows {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "subject rows exceed supported limit"))
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"rows": rows, "count": len(rows)})
}

package dto

import "github.com/campustack/timetable-api/internal/models"

// ExportRequest queues an asynchronous export of a saved timetable.
type ExportRequest struct {
	TimetableID string              `json:"timetableId" validate:"required"`
	Scope       models.ExportScope  `json:"scope" validate:"required,oneof=classes teachers"`
	Target      string              `json:"target"`
	Format      models.ExportFormat `json:"format" validate:"required,oneof=csv pdf"`
}

// ExportJobResponse acknowledges a queued export.
type ExportJobResponse struct {
	ID       string              `json:"id"`
	Status   models.ExportStatus `json:"status"`
	Progress int                 `json:"progress"`
}

// ExportStatusResponse exposes job progress and the signed download URL once
// the export has finished.
type ExportStatusResponse struct {
	ID        string              `json:"id"`
	Status    models.ExportStatus `json:"status"`
	Progress  int                 `json:"progress"`
	ResultURL *string             `json:"resultUrl,omitempty"`
	Error     *string             `json:"error,omitempty"`
}

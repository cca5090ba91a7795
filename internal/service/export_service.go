package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/campustack/timetable-api/internal/engine"
	"github.com/campustack/timetable-api/internal/models"
	"github.com/campustack/timetable-api/pkg/export"
	"github.com/campustack/timetable-api/pkg/storage"
)

type exportTimetableReader interface {
	FindByID(ctx context.Context, id string) (*models.Timetable, error)
}

type exportSlotReader interface {
	ListByTimetable(ctx context.Context, timetableID string) ([]models.TimetableSlot, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ExportFormat
	ExpiresAt    time.Time
}

// ExportService renders stored timetables into downloadable files.
type ExportService struct {
	timetables exportTimetableReader
	slots      exportSlotReader
	storage    fileStorage
	csv        csvRenderer
	pdf        pdfRenderer
	signer     *storage.SignedURLSigner
	logger     *zap.Logger
	cfg        ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(timetables exportTimetableReader, slots exportSlotReader, store fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		timetables: timetables,
		slots:      slots,
		storage:    store,
		csv:        csv,
		pdf:        pdf,
		signer:     signer,
		logger:     logger,
		cfg:        cfg,
	}
}

// Generate builds the dataset for a job and stores the rendered export.
func (s *ExportService) Generate(ctx context.Context, job *models.ExportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	dataset, title, err := s.buildDataset(ctx, job.Params)
	if err != nil {
		return nil, err
	}

	var payload []byte
	switch job.Params.Format {
	case models.ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	default:
		err = fmt.Errorf("unsupported format %s", job.Params.Format)
	}
	if err != nil {
		return nil, err
	}

	filename := s.buildFilename(job)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	signedURL := strings.TrimRight(s.cfg.APIPrefix, "/")
	if signedURL == "" {
		signedURL = "/api/v1"
	}
	signedURL = fmt.Sprintf("%s/export/%s", signedURL, token)

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          signedURL,
		Format:       job.Params.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) buildFilename(job *models.ExportJob) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	namePart := sanitizeFilename(job.Params.TimetableID)
	return fmt.Sprintf("%s_%s_%s.%s", namePart, job.Params.Scope, timestamp, job.Params.Format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

func (s *ExportService) buildDataset(ctx context.Context, params models.ExportJobParams) (export.Dataset, string, error) {
	record, err := s.timetables.FindByID(ctx, params.TimetableID)
	if err != nil {
		return export.Dataset{}, "", fmt.Errorf("load timetable %s: %w", params.TimetableID, err)
	}
	slots, err := s.slots.ListByTimetable(ctx, params.TimetableID)
	if err != nil {
		return export.Dataset{}, "", fmt.Errorf("load timetable slots: %w", err)
	}

	var meta savedMeta
	if err := json.Unmarshal(record.Meta, &meta); err != nil || meta.Settings.PeriodsPerDay == 0 {
		return export.Dataset{}, "", fmt.Errorf("timetable %s has unreadable metadata", params.TimetableID)
	}

	classes, teachers := rebuildGrids(meta.Settings.PeriodsPerDay, slots)
	title := fmt.Sprintf("Timetable %s v%d (%s)", record.Name, record.Version, params.Scope)

	switch params.Scope {
	case models.ExportScopeClasses:
		return classDataset(meta.Settings.PeriodsPerDay, classes, params.Target), title, nil
	case models.ExportScopeTeachers:
		return teacherDataset(meta.Settings.PeriodsPerDay, teachers, params.Target), title, nil
	default:
		return export.Dataset{}, "", fmt.Errorf("unsupported export scope %s", params.Scope)
	}
}

func gridHeaders(owner string, periodsPerDay int) []string {
	headers := make([]string, 0, periodsPerDay+2)
	headers = append(headers, owner, "Day")
	for p := 1; p <= periodsPerDay; p++ {
		headers = append(headers, fmt.Sprintf("Period %d", p))
	}
	return headers
}

func classDataset(periodsPerDay int, classes []engine.ClassTimetable, target string) export.Dataset {
	headers := gridHeaders("Class", periodsPerDay)
	rows := make([]map[string]string, 0)
	for _, class := range classes {
		if target != "" && class.Name != target {
			continue
		}
		rows = append(rows, gridRows(class.Name, headers, class.Grid, func(cell engine.TimeSlot) string {
			if cell.Subject == "" {
				return ""
			}
			if cell.Staff == "" {
				return cell.Subject
			}
			return fmt.Sprintf("%s (%s)", cell.Subject, cell.Staff)
		})...)
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

func teacherDataset(periodsPerDay int, teachers []engine.TeacherTimetable, target string) export.Dataset {
	headers := gridHeaders("Teacher", periodsPerDay)
	rows := make([]map[string]string, 0)
	for _, teacher := range teachers {
		if target != "" && teacher.Teacher != target {
			continue
		}
		rows = append(rows, gridRows(teacher.Teacher, headers, teacher.Grid, func(cell engine.TimeSlot) string {
			if cell.Subject == "" {
				return ""
			}
			if cell.Class == "" {
				return cell.Subject
			}
			return fmt.Sprintf("%s (%s)", cell.Subject, cell.Class)
		})...)
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

func gridRows(owner string, headers []string, grid engine.Grid, render func(engine.TimeSlot) string) []map[string]string {
	rows := make([]map[string]string, 0, len(grid))
	for day, cells := range grid {
		row := map[string]string{
			headers[0]: owner,
			"Day":      engine.DayNames[day],
		}
		for i, cell := range cells {
			row[fmt.Sprintf("Period %d", i+1)] = render(cell)
		}
		rows = append(rows, row)
	}
	return rows
}

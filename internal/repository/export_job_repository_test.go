package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campustack/timetable-api/internal/models"
)

func newExportJobRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestExportJobRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newExportJobRepoMock(t)
	defer cleanup()
	repo := NewExportJobRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO export_jobs")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	job := &models.ExportJob{
		Params: models.ExportJobParams{
			TimetableID: "tt-1",
			Scope:       models.ExportScopeClasses,
			Format:      models.ExportFormatCSV,
		},
	}
	err := repo.Create(context.Background(), job)
	require.NoError(t, err)
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, models.ExportStatusQueued, job.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExportJobRepositoryGetByID(t *testing.T) {
	db, mock, cleanup := newExportJobRepoMock(t)
	defer cleanup()
	repo := NewExportJobRepository(db)

	params := []byte(`{"timetableId":"tt-1","scope":"classes","format":"csv"}`)
	rows := sqlmock.NewRows([]string{"id", "params", "status", "progress", "result_url", "created_at", "finished_at", "error_message"}).
		AddRow("job-1", params, string(models.ExportStatusFinished), 100, "/api/v1/export/token", time.Now(), time.Now(), nil)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, params, status, progress, result_url, created_at, finished_at, error_message FROM export_jobs WHERE id = $1")).
		WithArgs("job-1").
		WillReturnRows(rows)

	job, err := repo.GetByID(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, models.ExportStatusFinished, job.Status)
	assert.Equal(t, "tt-1", job.Params.TimetableID)
	assert.Equal(t, models.ExportFormatCSV, job.Params.Format)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExportJobRepositoryUpdate(t *testing.T) {
	db, mock, cleanup := newExportJobRepoMock(t)
	defer cleanup()
	repo := NewExportJobRepository(db)

	status := models.ExportStatusProcessing
	progress := 10
	mock.ExpectExec(regexp.QuoteMeta("UPDATE export_jobs SET status = $1, progress = $2 WHERE id = $3")).
		WithArgs(string(status), progress, "job-1").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Update(context.Background(), "job-1", UpdateExportJobParams{Status: &status, Progress: &progress})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExportJobRepositoryUpdateNoFields(t *testing.T) {
	db, mock, cleanup := newExportJobRepoMock(t)
	defer cleanup()
	repo := NewExportJobRepository(db)

	err := repo.Update(context.Background(), "job-1", UpdateExportJobParams{})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExportJobRepositoryListQueued(t *testing.T) {
	db, mock, cleanup := newExportJobRepoMock(t)
	defer cleanup()
	repo := NewExportJobRepository(db)

	params := []byte(`{"timetableId":"tt-1","scope":"teachers","format":"pdf"}`)
	rows := sqlmock.NewRows([]string{"id", "params", "status", "progress", "result_url", "created_at", "finished_at", "error_message"}).
		AddRow("job-1", params, string(models.ExportStatusQueued), 0, nil, time.Now(), nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta("FROM export_jobs WHERE status = 'QUEUED' ORDER BY created_at ASC LIMIT $1")).
		WithArgs(20).
		WillReturnRows(rows)

	jobs, err := repo.ListQueued(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
	assert.Equal(t, models.ExportScopeTeachers, jobs[0].Params.Scope)
	assert.NoError(t, mock.ExpectationsWereMet())
}

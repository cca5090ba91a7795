package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campustack/timetable-api/internal/models"
)

func newTimetableRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestTimetableRepositoryCreateVersioned(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(MAX(version), 0) + 1 FROM timetables WHERE name = $1")).
		WithArgs("2026-odd-semester").
		WillReturnRows(sqlmock.NewRows([]string{"next"}).AddRow(3))

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO timetables")).
		WithArgs(sqlmock.AnyArg(), "2026-odd-semester", 3, string(models.TimetableStatusDraft), 0.92, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	payload := &models.Timetable{
		Name:  "2026-odd-semester",
		Score: 0.92,
		Meta:  types.JSONText(`{"attempts":4}`),
	}
	err := repo.CreateVersioned(context.Background(), nil, payload)
	require.NoError(t, err)
	assert.Equal(t, 3, payload.Version)
	assert.NotEmpty(t, payload.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryCreateVersionedRequiresName(t *testing.T) {
	db, _, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	err := repo.CreateVersioned(context.Background(), nil, &models.Timetable{})
	assert.Error(t, err)
}

func TestTimetableRepositoryListByName(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "version", "status", "score", "meta", "created_at", "updated_at"}).
		AddRow("tt-2", "2026-odd-semester", 2, string(models.TimetableStatusDraft), 0.95, types.JSONText(`{}`), time.Now(), time.Now()).
		AddRow("tt-1", "2026-odd-semester", 1, string(models.TimetableStatusPublished), 0.9, types.JSONText(`{}`), time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, version, status, score, meta, created_at, updated_at FROM timetables WHERE name = $1 ORDER BY version DESC")).
		WithArgs("2026-odd-semester").
		WillReturnRows(rows)

	list, err := repo.ListByName(context.Background(), "2026-odd-semester")
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, 2, list[0].Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryDeleteNotFound(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM timetables WHERE id = $1")).
		WithArgs("tt-1").
		WillReturnResult(sqlmock.NewResult(1, 0))

	err := repo.Delete(context.Background(), "tt-1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryUpdateStatus(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE timetables SET status = $1, updated_at = $2 WHERE id = $3")).
		WithArgs(string(models.TimetableStatusPublished), sqlmock.AnyArg(), "tt-1").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.UpdateStatus(context.Background(), nil, "tt-1", models.TimetableStatusPublished, nil)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryArchiveOthers(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE timetables SET status = $1, updated_at = $2 WHERE name = $3 AND id <> $4 AND status = $5")).
		WithArgs(string(models.TimetableStatusArchived), sqlmock.AnyArg(), "2026-odd-semester", "tt-2", string(models.TimetableStatusPublished)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.ArchiveOthers(context.Background(), nil, "2026-odd-semester", "tt-2")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableSlotRepositoryUpsertBatch(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewTimetableSlotRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO timetable_slots")).
		WithArgs(sqlmock.AnyArg(), "tt-1", "CSE-2-A", 0, 1, "Maths", "Ms. Rao", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO timetable_slots")).
		WithArgs(sqlmock.AnyArg(), "tt-1", "CSE-2-A", 0, 2, "Physics", "Dr. Iyer", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	slots := []models.TimetableSlot{
		{TimetableID: "tt-1", ClassName: "CSE-2-A", DayOfWeek: 0, Period: 1, Subject: "Maths", Staff: "Ms. Rao"},
		{TimetableID: "tt-1", ClassName: "CSE-2-A", DayOfWeek: 0, Period: 2, Subject: "Physics", Staff: "Dr. Iyer"},
	}
	err := repo.UpsertBatch(context.Background(), nil, slots)
	require.NoError(t, err)
	assert.NotEmpty(t, slots[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableSlotRepositoryListByTimetable(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewTimetableSlotRepository(db)

	rows := sqlmock.NewRows([]string{"id", "timetable_id", "class_name", "day_of_week", "period", "subject", "staff", "created_at"}).
		AddRow("slot-1", "tt-1", "CSE-2-A", 0, 1, "Maths", "Ms. Rao", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, timetable_id, class_name, day_of_week, period, subject, staff, created_at FROM timetable_slots WHERE timetable_id = $1 ORDER BY class_name ASC, day_of_week ASC, period ASC")).
		WithArgs("tt-1").
		WillReturnRows(rows)

	slots, err := repo.ListByTimetable(context.Background(), "tt-1")
	require.NoError(t, err)
	assert.Len(t, slots, 1)
	assert.Equal(t, "Maths", slots[0].Subject)
	assert.NoError(t, mock.ExpectationsWereMet())
}

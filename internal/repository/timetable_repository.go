package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/campustack/timetable-api/internal/models"
)

// TimetableRepository persists versioned timetables.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository constructs the repository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

func (r *TimetableRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// CreateVersioned inserts a timetable assigning the next version for its name.
func (r *TimetableRepository) CreateVersioned(ctx context.Context, exec sqlx.ExtContext, timetable *models.Timetable) error {
	if timetable == nil {
		return fmt.Errorf("timetable payload is nil")
	}
	if timetable.Name == "" {
		return fmt.Errorf("timetable name is required")
	}
	if timetable.ID == "" {
		timetable.ID = uuid.NewString()
	}
	if timetable.Status == "" {
		timetable.Status = models.TimetableStatusDraft
	}
	if len(timetable.Meta) == 0 {
		timetable.Meta = types.JSONText(`{}`)
	}
	now := time.Now().UTC()
	if timetable.CreatedAt.IsZero() {
		timetable.CreatedAt = now
	}
	timetable.UpdatedAt = now

	target := r.exec(exec)

	const nextVersionQuery = `SELECT COALESCE(MAX(version), 0) + 1 FROM timetables WHERE name = $1`
	if err := sqlx.GetContext(ctx, target, &timetable.Version, nextVersionQuery, timetable.Name); err != nil {
		return fmt.Errorf("compute next timetable version: %w", err)
	}

	const insertQuery = `
INSERT INTO timetables (id, name, version, status, score, meta, created_at, updated_at)
VALUES (:id, :name, :version, :status, :score, :meta, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, target, insertQuery, timetable); err != nil {
		return fmt.Errorf("insert timetable: %w", err)
	}
	return nil
}

// ListByName returns all versions stored under the provided name.
func (r *TimetableRepository) ListByName(ctx context.Context, name string) ([]models.Timetable, error) {
	const query = `SELECT id, name, version, status, score, meta, created_at, updated_at
FROM timetables WHERE name = $1 ORDER BY version DESC`
	var timetables []models.Timetable
	if err := r.db.SelectContext(ctx, &timetables, query, name); err != nil {
		return nil, fmt.Errorf("list timetables: %w", err)
	}
	return timetables, nil
}

// FindByID loads a timetable by its identifier.
func (r *TimetableRepository) FindByID(ctx context.Context, id string) (*models.Timetable, error) {
	const query = `SELECT id, name, version, status, score, meta, created_at, updated_at FROM timetables WHERE id = $1`
	var timetable models.Timetable
	if err := r.db.GetContext(ctx, &timetable, query, id); err != nil {
		return nil, err
	}
	return &timetable, nil
}

// Delete removes a stored timetable version.
func (r *TimetableRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM timetables WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete timetable: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("timetable rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ArchiveOthers demotes every other published version under the same name.
// Keeps at most one published timetable per name.
func (r *TimetableRepository) ArchiveOthers(ctx context.Context, exec sqlx.ExtContext, name, keepID string) error {
	target := r.exec(exec)
	const query = `UPDATE timetables SET status = $1, updated_at = $2 WHERE name = $3 AND id <> $4 AND status = $5`
	if _, err := target.ExecContext(ctx, query, models.TimetableStatusArchived, time.Now().UTC(), name, keepID, models.TimetableStatusPublished); err != nil {
		return fmt.Errorf("archive timetable versions: %w", err)
	}
	return nil
}

// UpdateStatus updates the status (and optionally meta) of a timetable.
func (r *TimetableRepository) UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, status models.TimetableStatus, meta types.JSONText) error {
	target := r.exec(exec)
	now := time.Now().UTC()

	var (
		query string
		args  []interface{}
	)
	if len(meta) > 0 {
		query = `UPDATE timetables SET status = $1, meta = $2, updated_at = $3 WHERE id = $4`
		args = []interface{}{status, meta, now, id}
	} else {
		query = `UPDATE timetables SET status = $1, updated_at = $2 WHERE id = $3`
		args = []interface{}{status, now, id}
	}
	result, err := target.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update timetable status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("timetable status rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

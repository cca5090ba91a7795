package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campustack/timetable-api/internal/models"
)

// TimetableSlotRepository manages class-grid cells for saved timetables.
type TimetableSlotRepository struct {
	db *sqlx.DB
}

// NewTimetableSlotRepository builds the repository.
func NewTimetableSlotRepository(db *sqlx.DB) *TimetableSlotRepository {
	return &TimetableSlotRepository{db: db}
}

func (r *TimetableSlotRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// UpsertBatch inserts or updates slots for a timetable.
func (r *TimetableSlotRepository) UpsertBatch(ctx context.Context, exec sqlx.ExtContext, slots []models.TimetableSlot) error {
	if len(slots) == 0 {
		return nil
	}
	target := r.exec(exec)
	now := time.Now().UTC()

	const query = `
INSERT INTO timetable_slots (id, timetable_id, class_name, day_of_week, period, subject, staff, created_at)
VALUES (:id, :timetable_id, :class_name, :day_of_week, :period, :subject, :staff, :created_at)
ON CONFLICT (timetable_id, class_name, day_of_week, period) DO UPDATE
SET subject = EXCLUDED.subject,
    staff = EXCLUDED.staff`

	for i := range slots {
		slot := &slots[i]
		if slot.ID == "" {
			slot.ID = uuid.NewString()
		}
		if slot.CreatedAt.IsZero() {
			slot.CreatedAt = now
		}
		if _, err := sqlx.NamedExecContext(ctx, target, query, slot); err != nil {
			return fmt.Errorf("upsert timetable slot: %w", err)
		}
	}
	return nil
}

// ListByTimetable returns slots ordered by class, day and period.
func (r *TimetableSlotRepository) ListByTimetable(ctx context.Context, timetableID string) ([]models.TimetableSlot, error) {
	const query = `SELECT id, timetable_id, class_name, day_of_week, period, subject, staff, created_at
FROM timetable_slots WHERE timetable_id = $1 ORDER BY class_name ASC, day_of_week ASC, period ASC`
	var slots []models.TimetableSlot
	if err := r.db.SelectContext(ctx, &slots, query, timetableID); err != nil {
		return nil, fmt.Errorf("list timetable slots: %w", err)
	}
	return slots, nil
}

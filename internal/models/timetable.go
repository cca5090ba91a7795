package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// TimetableStatus represents lifecycle phases for saved timetables.
type TimetableStatus string

const (
	TimetableStatusDraft     TimetableStatus = "DRAFT"
	TimetableStatusPublished TimetableStatus = "PUBLISHED"
	TimetableStatusArchived  TimetableStatus = "ARCHIVED"
)

// Timetable captures a versioned generated timetable for a named academic
// context, e.g. "2026-odd-semester". Meta stores the allocation report.
type Timetable struct {
	ID        string          `db:"id" json:"id"`
	Name      string          `db:"name" json:"name"`
	Version   int             `db:"version" json:"version"`
	Status    TimetableStatus `db:"status" json:"status"`
	Score     float64         `db:"score" json:"score"`
	Meta      types.JSONText  `db:"meta" json:"meta"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// TimetableSlot is one concrete class-grid cell inside a saved timetable.
type TimetableSlot struct {
	ID          string    `db:"id" json:"id"`
	TimetableID string    `db:"timetable_id" json:"timetable_id"`
	ClassName   string    `db:"class_name" json:"class_name"`
	DayOfWeek   int       `db:"day_of_week" json:"day_of_week"`
	Period      int       `db:"period" json:"period"`
	Subject     string    `db:"subject" json:"subject"`
	Staff       string    `db:"staff" json:"staff"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// TimetableMeta represents lightweight metadata for list views.
type TimetableMeta struct {
	ID        string          `json:"id"`
	Version   int             `json:"version"`
	Status    TimetableStatus `json:"status"`
	Score     float64         `json:"score"`
	CreatedAt time.Time       `json:"created_at"`
}

package dto

import (
	"github.com/campustack/timetable-api/internal/engine"
	"github.com/campustack/timetable-api/internal/models"
)

// SubjectRowRequest is one line of demand: a subject for a class section with
// its weekly period count and the staff who teach it.
type SubjectRowRequest struct {
	Department      string `json:"department" validate:"required"`
	Year            string `json:"year" validate:"required"`
	Section         string `json:"section" validate:"required"`
	Subject         string `json:"subject" validate:"required"`
	Periods         int    `json:"periods" validate:"required,min=1"`
	Staff           string `json:"staff" validate:"required"`
	PreferredDay    string `json:"preferredDay"`
	PreferredPeriod int    `json:"preferredPeriod" validate:"omitempty,min=1,max=12"`
}

// TeacherPreferenceRequest pins a teacher to a preferred slot, optionally
// scoped to a single class section.
type TeacherPreferenceRequest struct {
	Teacher         string `json:"teacher" validate:"required"`
	Department      string `json:"department"`
	Year            string `json:"year"`
	Section         string `json:"section"`
	PreferredDay    string `json:"preferredDay"`
	PreferredPeriod int    `json:"preferredPeriod" validate:"omitempty,min=1,max=12"`
}

// TimetableSettingsRequest carries the weekly calendar shape.
type TimetableSettingsRequest struct {
	PeriodsPerDay            int   `json:"periodsPerDay" validate:"required,min=1,max=12"`
	LunchPeriod              int   `json:"lunchPeriod" validate:"required,min=1,max=12"`
	BreakPeriods             []int `json:"breakPeriods" validate:"omitempty,dive,min=1,max=12"`
	MaxTeacherPeriodsPerWeek int   `json:"maxTeacherPeriodsPerWeek" validate:"required,min=1,max=40"`
}

// GenerateTimetableRequest instructs the generator to build a proposal.
type GenerateTimetableRequest struct {
	Name        string                     `json:"name" validate:"required"`
	Settings    TimetableSettingsRequest   `json:"settings" validate:"required"`
	Rows        []SubjectRowRequest        `json:"rows" validate:"required,min=1,dive"`
	Preferences []TeacherPreferenceRequest `json:"preferences" validate:"omitempty,dive"`
}

// GenerateTimetableResponse returns the built proposal with both grid families.
type GenerateTimetableResponse struct {
	ProposalID string                    `json:"proposalId"`
	Name       string                    `json:"name"`
	Report     engine.Report             `json:"report"`
	Classes    []engine.ClassTimetable   `json:"classes"`
	Teachers   []engine.TeacherTimetable `json:"teachers"`
}

// SaveTimetableRequest persists a held proposal as a timetable version.
type SaveTimetableRequest struct {
	ProposalID string `json:"proposalId" validate:"required"`
	Publish    bool   `json:"publish"`
}

// TimetableQuery filters stored timetable versions by name.
type TimetableQuery struct {
	Name string `form:"name" json:"name"`
}

// TimetableDetailResponse returns a stored timetable with its grids rebuilt
// from persisted slots.
type TimetableDetailResponse struct {
	Timetable models.Timetable          `json:"timetable"`
	Classes   []engine.ClassTimetable   `json:"classes"`
	Teachers  []engine.TeacherTimetable `json:"teachers"`
}

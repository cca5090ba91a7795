package engine

import (
	"fmt"
	"strings"
)

// ClassID uniquely names one class's weekly grid.
type ClassID struct {
	Department string
	Year       string
	Section    string
}

// String renders the canonical department-year-section form.
func (c ClassID) String() string {
	return c.Department + "-" + c.Year + "-" + c.Section
}

// IsZero reports whether the identifier is unset.
func (c ClassID) IsZero() bool {
	return c.Department == "" && c.Year == "" && c.Section == ""
}

// Requirement is one row of engine input: a subject demanded by a class with
// one or more staff members. It is never mutated during allocation.
type Requirement struct {
	Class           ClassID
	Subject         string
	Periods         int
	Staff           string
	PreferredDay    string
	PreferredPeriod int
}

// Validate checks the row against the input contract.
func (r Requirement) Validate(settings Settings) error {
	if r.Class.Department == "" || r.Class.Year == "" || r.Class.Section == "" {
		return fmt.Errorf("requirement %q: department, year and section are required", r.Subject)
	}
	if strings.TrimSpace(r.Subject) == "" {
		return fmt.Errorf("class %s: subject is required", r.Class)
	}
	if r.Periods <= 0 {
		return fmt.Errorf("%s for class %s: periods must be positive, got %d", r.Subject, r.Class, r.Periods)
	}
	if len(r.StaffMembers()) == 0 {
		return fmt.Errorf("%s for class %s: staff is required", r.Subject, r.Class)
	}
	if r.PreferredDay != "" && DayIndex(r.PreferredDay) < 0 {
		return fmt.Errorf("%s for class %s: unknown preferred day %q", r.Subject, r.Class, r.PreferredDay)
	}
	if r.PreferredPeriod < 0 || r.PreferredPeriod > settings.PeriodsPerDay {
		return fmt.Errorf("%s for class %s: preferred period %d is outside 1..%d", r.Subject, r.Class, r.PreferredPeriod, settings.PeriodsPerDay)
	}
	return nil
}

// StaffMembers splits the staff field into individual names. Labs commonly
// list several teachers joined by comma or plus; every named individual is
// booked and workload-tracked independently.
func (r Requirement) StaffMembers() []string {
	return SplitStaff(r.Staff)
}

// Key returns the ledger key for this requirement.
func (r Requirement) Key() AllocationKey {
	return AllocationKey{Subject: r.Subject, Class: r.Class}
}

// SplitStaff breaks a joined staff string on commas and plus signs.
func SplitStaff(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '+'
	})
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		if name := strings.TrimSpace(f); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// TeacherPreference expresses a teacher-level preferred slot, optionally
// scoped to a single class.
type TeacherPreference struct {
	Teacher         string
	Class           ClassID
	PreferredDay    string
	PreferredPeriod int
}

// Category selects the placement strategy for a subject.
type Category int

const (
	CategoryRegular Category = iota
	CategoryLab
	CategoryLibrary
	CategoryGames
)

// String names the category for logs and reports.
func (c Category) String() string {
	switch c {
	case CategoryLab:
		return "lab"
	case CategoryLibrary:
		return "library"
	case CategoryGames:
		return "games"
	default:
		return "regular"
	}
}

var (
	labMarkers   = []string{"lab", "practical", "workshop"}
	gamesMarkers = []string{"games", "sports", "physical education", "physical training", "pe "}
)

// Classify dispatches a subject name to its allocator category using
// case-insensitive substring matching.
func Classify(subject string) Category {
	lowered := strings.ToLower(subject)
	for _, marker := range labMarkers {
		if strings.Contains(lowered, marker) {
			return CategoryLab
		}
	}
	if strings.Contains(lowered, "library") {
		return CategoryLibrary
	}
	for _, marker := range gamesMarkers {
		if strings.Contains(lowered, marker) {
			return CategoryGames
		}
	}
	if lowered == "pe" {
		return CategoryGames
	}
	return CategoryRegular
}

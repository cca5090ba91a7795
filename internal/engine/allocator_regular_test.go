package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegularAllocatorAvoidsRepeatingPeriodOfDay(t *testing.T) {
	settings := Settings{PeriodsPerDay: 7, LunchPeriod: 4, MaxTeacherPeriodsPerWeek: 30}
	req := Requirement{
		Class:   ClassID{Department: "CS", Year: "2", Section: "A"},
		Subject: "Mathematics",
		Periods: 5,
		Staff:   "Prof. X",
	}
	att := newTestAttempt(settings, []Requirement{req}, nil)

	result := att.allocatorFor(CategoryRegular).Place(req, 5)
	require.Equal(t, 5, result.Placed)

	seen := map[int]bool{}
	for day := 0; day < DaysPerWeek; day++ {
		for _, p := range assignedPeriods(att.board.Classes[req.Class], day, req.Subject) {
			assert.False(t, seen[p], "period-of-day %d repeated", p)
			seen[p] = true
		}
	}
	assert.Len(t, seen, 5)
}

func TestRegularAllocatorHonoursRowPreference(t *testing.T) {
	settings := Settings{PeriodsPerDay: 7, LunchPeriod: 4, MaxTeacherPeriodsPerWeek: 30}
	req := Requirement{
		Class:           ClassID{Department: "CS", Year: "2", Section: "A"},
		Subject:         "English",
		Periods:         1,
		Staff:           "Prof. Y",
		PreferredDay:    "Tuesday",
		PreferredPeriod: 3,
	}
	att := newTestAttempt(settings, []Requirement{req}, nil)

	require.Equal(t, 1, att.allocatorFor(CategoryRegular).Place(req, 1).Placed)
	cell := att.board.Classes[req.Class].At(1, 3)
	assert.Equal(t, "English", cell.Subject)
}

func TestRegularAllocatorHonoursTeacherPreference(t *testing.T) {
	settings := Settings{PeriodsPerDay: 7, LunchPeriod: 4, MaxTeacherPeriodsPerWeek: 30}
	req := Requirement{
		Class:   ClassID{Department: "CS", Year: "2", Section: "A"},
		Subject: "History",
		Periods: 1,
		Staff:   "Prof. Z",
	}
	prefs := []TeacherPreference{{Teacher: "Prof. Z", PreferredDay: "Friday"}}
	att := newTestAttempt(settings, []Requirement{req}, prefs)

	require.Equal(t, 1, att.allocatorFor(CategoryRegular).Place(req, 1).Placed)
	periods := assignedPeriods(att.board.Classes[req.Class], 4, req.Subject)
	assert.Len(t, periods, 1, "placement should land on Friday")
}

func TestRegularAllocatorClassScopedTeacherPreferenceIgnoredElsewhere(t *testing.T) {
	settings := Settings{PeriodsPerDay: 7, LunchPeriod: 4, MaxTeacherPeriodsPerWeek: 30}
	req := Requirement{
		Class:   ClassID{Department: "CS", Year: "2", Section: "A"},
		Subject: "History",
		Periods: 1,
		Staff:   "Prof. Z",
	}
	prefs := []TeacherPreference{{
		Teacher:      "Prof. Z",
		Class:        ClassID{Department: "EEE", Year: "1", Section: "B"},
		PreferredDay: "Friday",
	}}
	att := newTestAttempt(settings, []Requirement{req}, prefs)

	require.Equal(t, 1, att.allocatorFor(CategoryRegular).Place(req, 1).Placed)
	// The preference is scoped to another class, so scoring places Monday
	// period 1 as usual.
	assert.Equal(t, "History", att.board.Classes[req.Class].At(0, 1).Subject)
}

func TestRegularAllocatorRelaxedFallbackBeatsShortfall(t *testing.T) {
	settings := Settings{PeriodsPerDay: 7, LunchPeriod: 4, MaxTeacherPeriodsPerWeek: 2}
	req := Requirement{
		Class:   ClassID{Department: "CS", Year: "2", Section: "A"},
		Subject: "Mathematics",
		Periods: 4,
		Staff:   "Prof. X",
	}
	att := newTestAttempt(settings, []Requirement{req}, nil)

	result := att.allocatorFor(CategoryRegular).Place(req, 4)
	assert.Equal(t, 4, result.Placed, "completeness wins over the weekly cap")
	assert.True(t, result.Relaxed)
	assert.True(t, att.ledger.RelaxedUsed())
	assert.Equal(t, []string{"Prof. X"}, att.ledger.CapExceededTeachers())
}

func TestRegularAllocatorReportsShortfallWhenGridIsFull(t *testing.T) {
	settings := Settings{PeriodsPerDay: 2, LunchPeriod: 2, MaxTeacherPeriodsPerWeek: 30}
	class := ClassID{Department: "CS", Year: "2", Section: "A"}
	filler := Requirement{Class: class, Subject: "English", Periods: 6, Staff: "Prof. Y"}
	req := Requirement{Class: class, Subject: "Mathematics", Periods: 2, Staff: "Prof. X"}
	att := newTestAttempt(settings, []Requirement{filler, req}, nil)

	// Only one teaching period exists per day; fill all six.
	for day := 0; day < DaysPerWeek; day++ {
		att.commit(filler, day, 1)
	}

	result := att.allocatorFor(CategoryRegular).Place(req, 2)
	assert.Equal(t, 0, result.Placed)
	assert.Equal(t, 2, att.ledger.Remaining(req.Key()))
}

package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDriverRejectsBadInput(t *testing.T) {
	driver := NewDriver(Config{}, zap.NewNop())
	settings := Settings{PeriodsPerDay: 7, LunchPeriod: 4, MaxTeacherPeriodsPerWeek: 30}

	_, err := driver.Generate(settings, nil, nil)
	assert.Error(t, err, "empty subject list is an input-contract violation")

	_, err = driver.Generate(Settings{}, []Requirement{{
		Class: ClassID{Department: "CS", Year: "2", Section: "A"}, Subject: "Math", Periods: 3, Staff: "X",
	}}, nil)
	assert.Error(t, err, "invalid settings must be rejected before generation")

	_, err = driver.Generate(settings, []Requirement{{
		Class: ClassID{Department: "CS", Year: "2", Section: "A"}, Subject: "Math", Periods: 0, Staff: "X",
	}}, nil)
	assert.Error(t, err)
}

func TestDriverGeneratesMirroredLabBlock(t *testing.T) {
	driver := NewDriver(Config{Attempts: 3}, zap.NewNop())
	settings := Settings{PeriodsPerDay: 7, LunchPeriod: 4, BreakPeriods: []int{6}, MaxTeacherPeriodsPerWeek: 30}
	reqs := []Requirement{{
		Class:   ClassID{Department: "CS", Year: "2", Section: "A"},
		Subject: "Physics Lab",
		Periods: 3,
		Staff:   "Dr. A, Dr. B",
	}}

	result, err := driver.Generate(settings, reqs, nil)
	require.NoError(t, err)
	assert.Equal(t, 1.0, result.Report.Score)
	assert.Equal(t, 3, result.Report.TotalAllocated)

	require.Len(t, result.Classes, 1)
	classGrid := result.Classes[0].Grid

	labDay := -1
	var labPeriods []int
	for day := 0; day < DaysPerWeek; day++ {
		periods := assignedPeriods(classGrid, day, "Physics Lab")
		if len(periods) > 0 {
			require.Equal(t, -1, labDay, "lab block must not split across days")
			labDay = day
			labPeriods = periods
		}
	}
	require.Len(t, labPeriods, 3)
	assert.NotContains(t, labPeriods, settings.LunchPeriod)
	assert.Equal(t, labPeriods[0]+2, labPeriods[2], "block is contiguous")

	// Mirrored write invariant: both teachers see the lab at the same slots.
	require.Len(t, result.Teachers, 2)
	for _, teacher := range result.Teachers {
		for _, p := range labPeriods {
			cell := teacher.Grid.At(labDay, p)
			assert.Equal(t, "Physics Lab", cell.Subject)
			assert.Equal(t, "CS-2-A", cell.Class)
		}
	}
	// The class-side cells keep the joined staff string.
	assert.Equal(t, "Dr. A, Dr. B", classGrid.At(labDay, labPeriods[0]).Staff)
}

func TestDriverDeterministicWithFixedSeed(t *testing.T) {
	settings := Settings{PeriodsPerDay: 7, LunchPeriod: 4, MaxTeacherPeriodsPerWeek: 30}
	reqs := []Requirement{
		{Class: ClassID{Department: "CS", Year: "2", Section: "A"}, Subject: "Mechanical Workshop", Periods: 4, Staff: "Dr. D"},
		{Class: ClassID{Department: "CS", Year: "2", Section: "A"}, Subject: "Mathematics", Periods: 5, Staff: "Prof. X"},
		{Class: ClassID{Department: "CS", Year: "2", Section: "A"}, Subject: "English", Periods: 4, Staff: "Prof. Y"},
	}
	cfg := Config{Attempts: 4, MinAttempts: 4, Seed: 42}

	first, err := NewDriver(cfg, zap.NewNop()).Generate(settings, reqs, nil)
	require.NoError(t, err)
	second, err := NewDriver(cfg, zap.NewNop()).Generate(settings, reqs, nil)
	require.NoError(t, err)

	assert.Equal(t, first.Report, second.Report)
}

func TestDriverShortfallAccounting(t *testing.T) {
	driver := NewDriver(Config{Attempts: 2, MinAttempts: 1}, zap.NewNop())
	// Segments {1,2,3} and {5,6,7}: the four-period workshop can never fit.
	settings := Settings{PeriodsPerDay: 7, LunchPeriod: 4, MaxTeacherPeriodsPerWeek: 30}
	reqs := []Requirement{
		{Class: ClassID{Department: "ME", Year: "1", Section: "A"}, Subject: "Mechanical Workshop", Periods: 4, Staff: "Dr. D"},
		{Class: ClassID{Department: "ME", Year: "1", Section: "A"}, Subject: "Mathematics", Periods: 3, Staff: "Prof. X"},
	}

	result, err := driver.Generate(settings, reqs, nil)
	require.NoError(t, err)

	report := result.Report
	assert.Equal(t, 7, report.TotalRequired)
	assert.Equal(t, 3, report.TotalAllocated)
	assert.LessOrEqual(t, report.TotalAllocated, report.TotalRequired)
	assert.InDelta(t, 0.5, report.Score, 0.001)

	require.Len(t, report.Shortfalls, 1)
	assert.Equal(t, "Mechanical Workshop", report.Shortfalls[0].Subject)
	assert.Equal(t, 4, report.Shortfalls[0].Shortfall)
}

func TestDriverRelaxedCapBreachIsFlagged(t *testing.T) {
	driver := NewDriver(Config{Attempts: 1, MinAttempts: 1}, zap.NewNop())
	settings := Settings{PeriodsPerDay: 7, LunchPeriod: 4, MaxTeacherPeriodsPerWeek: 30}
	class := ClassID{Department: "CS", Year: "2", Section: "A"}
	// One teacher with 32 required periods against a cap of 30.
	reqs := []Requirement{
		{Class: class, Subject: "Algorithms", Periods: 7, Staff: "Prof. Y"},
		{Class: class, Subject: "Databases", Periods: 7, Staff: "Prof. Y"},
		{Class: class, Subject: "Networks", Periods: 6, Staff: "Prof. Y"},
		{Class: class, Subject: "Operating Systems", Periods: 6, Staff: "Prof. Y"},
		{Class: class, Subject: "Compilers", Periods: 6, Staff: "Prof. Y"},
	}

	result, err := driver.Generate(settings, reqs, nil)
	require.NoError(t, err)

	assert.Equal(t, 32, result.Report.TotalAllocated)
	assert.True(t, result.Report.RelaxedFallback)
	assert.Equal(t, []string{"Prof. Y"}, result.Report.CapExceeded)
}

func TestDriverMixedScheduleInvariants(t *testing.T) {
	driver := NewDriver(Config{Attempts: 6, Seed: 7}, zap.NewNop())
	settings := Settings{PeriodsPerDay: 7, LunchPeriod: 4, BreakPeriods: []int{6}, MaxTeacherPeriodsPerWeek: 30}
	csA := ClassID{Department: "CS", Year: "2", Section: "A"}
	csB := ClassID{Department: "CS", Year: "2", Section: "B"}
	reqs := []Requirement{
		{Class: csA, Subject: "Python Lab", Periods: 3, Staff: "Dr. A, Dr. B"},
		{Class: csA, Subject: "Mathematics", Periods: 5, Staff: "Prof. X"},
		{Class: csA, Subject: "Library", Periods: 1, Staff: "Librarian"},
		{Class: csA, Subject: "Games", Periods: 2, Staff: "Coach"},
		{Class: csB, Subject: "Python Lab", Periods: 3, Staff: "Dr. A, Dr. B"},
		{Class: csB, Subject: "Mathematics", Periods: 5, Staff: "Prof. X"},
		{Class: csB, Subject: "Library", Periods: 1, Staff: "Librarian"},
		{Class: csB, Subject: "Games", Periods: 2, Staff: "Coach"},
	}

	result, err := driver.Generate(settings, reqs, nil)
	require.NoError(t, err)

	// No teacher is booked in two places at once: collect class-side
	// bookings per teacher per slot.
	type slot struct {
		Teacher string
		Day     int
		Period  int
	}
	booked := map[slot]string{}
	for _, class := range result.Classes {
		for day := 0; day < DaysPerWeek; day++ {
			for p := 1; p <= settings.PeriodsPerDay; p++ {
				cell := class.Grid.At(day, p)
				if cell.Subject == "" {
					continue
				}
				// Lunch and breaks stay empty in every grid.
				assert.Equal(t, PeriodTeaching, settings.PeriodKindOf(p))
				for _, teacher := range SplitStaff(cell.Staff) {
					key := slot{Teacher: teacher, Day: day, Period: p}
					holder, clash := booked[key]
					assert.False(t, clash, "%s double-booked at day %d period %d (%s vs %s)", teacher, day, p, holder, class.Name)
					booked[key] = class.Name
				}
			}
		}
	}

	// Mirrored write invariant across the full result.
	teacherGrids := map[string]Grid{}
	for _, tt := range result.Teachers {
		teacherGrids[tt.Teacher] = tt.Grid
	}
	for _, class := range result.Classes {
		for day := 0; day < DaysPerWeek; day++ {
			for p := 1; p <= settings.PeriodsPerDay; p++ {
				cell := class.Grid.At(day, p)
				if cell.Subject == "" {
					continue
				}
				for _, teacher := range SplitStaff(cell.Staff) {
					mirror := teacherGrids[teacher].At(day, p)
					assert.Equal(t, cell.Subject, mirror.Subject)
					assert.Equal(t, class.Name, mirror.Class)
				}
			}
		}
	}

	// Shortfall accounting round-trips.
	totalShort := 0
	for _, row := range result.Report.Subjects {
		assert.Equal(t, row.Shortfall, row.Required-row.Allocated)
		totalShort += row.Shortfall
	}
	assert.Equal(t, result.Report.TotalRequired-result.Report.TotalAllocated, totalShort)
}

package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsValidate(t *testing.T) {
	valid := Settings{PeriodsPerDay: 7, LunchPeriod: 4, BreakPeriods: []int{2, 6}, MaxTeacherPeriodsPerWeek: 30}
	require.NoError(t, valid.Validate())

	cases := []struct {
		name     string
		settings Settings
	}{
		{"zero periods", Settings{PeriodsPerDay: 0, LunchPeriod: 1, MaxTeacherPeriodsPerWeek: 30}},
		{"too many periods", Settings{PeriodsPerDay: 13, LunchPeriod: 4, MaxTeacherPeriodsPerWeek: 30}},
		{"lunch out of range", Settings{PeriodsPerDay: 7, LunchPeriod: 8, MaxTeacherPeriodsPerWeek: 30}},
		{"break out of range", Settings{PeriodsPerDay: 7, LunchPeriod: 4, BreakPeriods: []int{9}, MaxTeacherPeriodsPerWeek: 30}},
		{"break collides with lunch", Settings{PeriodsPerDay: 7, LunchPeriod: 4, BreakPeriods: []int{4}, MaxTeacherPeriodsPerWeek: 30}},
		{"cap out of range", Settings{PeriodsPerDay: 7, LunchPeriod: 4, MaxTeacherPeriodsPerWeek: 41}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Error(t, tc.settings.Validate())
		})
	}
}

func TestPeriodKindOf(t *testing.T) {
	settings := Settings{PeriodsPerDay: 7, LunchPeriod: 4, BreakPeriods: []int{2, 6}, MaxTeacherPeriodsPerWeek: 30}

	assert.Equal(t, PeriodTeaching, settings.PeriodKindOf(1))
	assert.Equal(t, PeriodBreak, settings.PeriodKindOf(2))
	assert.Equal(t, PeriodTeaching, settings.PeriodKindOf(3))
	assert.Equal(t, PeriodLunch, settings.PeriodKindOf(4))
	assert.Equal(t, PeriodTeaching, settings.PeriodKindOf(5))
	assert.Equal(t, PeriodBreak, settings.PeriodKindOf(6))
	assert.Equal(t, PeriodTeaching, settings.PeriodKindOf(7))
	assert.Equal(t, PeriodBreak, settings.PeriodKindOf(0))
	assert.Equal(t, PeriodBreak, settings.PeriodKindOf(8))

	assert.Equal(t, 4, settings.TeachingPeriods())
}

func TestDayIndex(t *testing.T) {
	assert.Equal(t, 0, DayIndex("Monday"))
	assert.Equal(t, 5, DayIndex("saturday"))
	assert.Equal(t, 2, DayIndex(" Wednesday "))
	assert.Equal(t, -1, DayIndex("Sunday"))
	assert.Equal(t, -1, DayIndex(""))
}

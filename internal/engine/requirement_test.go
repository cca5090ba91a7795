package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitStaff(t *testing.T) {
	assert.Equal(t, []string{"Dr. A"}, SplitStaff("Dr. A"))
	assert.Equal(t, []string{"Dr. A", "Dr. B"}, SplitStaff("Dr. A, Dr. B"))
	assert.Equal(t, []string{"Dr. A", "Dr. B"}, SplitStaff("Dr. A + Dr. B"))
	assert.Equal(t, []string{"Dr. A", "Dr. B", "Dr. C"}, SplitStaff("Dr. A,Dr. B+Dr. C"))
	assert.Empty(t, SplitStaff("  , + "))
	assert.Empty(t, SplitStaff(""))
}

func TestClassify(t *testing.T) {
	cases := []struct {
		subject string
		want    Category
	}{
		{"Physics Lab", CategoryLab},
		{"data structures practical", CategoryLab},
		{"Mechanical WORKSHOP", CategoryLab},
		{"Library", CategoryLibrary},
		{"Library Hour", CategoryLibrary},
		{"Games", CategoryGames},
		{"Sports", CategoryGames},
		{"Physical Education", CategoryGames},
		{"PE", CategoryGames},
		{"Mathematics", CategoryRegular},
		{"English", CategoryRegular},
	}
	for _, tc := range cases {
		t.Run(tc.subject, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.subject))
		})
	}
}

func TestClassIDString(t *testing.T) {
	id := ClassID{Department: "CS", Year: "2", Section: "A"}
	assert.Equal(t, "CS-2-A", id.String())
	assert.False(t, id.IsZero())
	assert.True(t, ClassID{}.IsZero())
}

func TestRequirementValidate(t *testing.T) {
	settings := Settings{PeriodsPerDay: 7, LunchPeriod: 4, MaxTeacherPeriodsPerWeek: 30}
	base := Requirement{
		Class:   ClassID{Department: "CS", Year: "2", Section: "A"},
		Subject: "Mathematics",
		Periods: 5,
		Staff:   "Prof. X",
	}
	require.NoError(t, base.Validate(settings))

	missingClass := base
	missingClass.Class.Section = ""
	assert.Error(t, missingClass.Validate(settings))

	zeroPeriods := base
	zeroPeriods.Periods = 0
	assert.Error(t, zeroPeriods.Validate(settings))

	noStaff := base
	noStaff.Staff = " , "
	assert.Error(t, noStaff.Validate(settings))

	badDay := base
	badDay.PreferredDay = "Funday"
	assert.Error(t, badDay.Validate(settings))

	badPeriod := base
	badPeriod.PreferredPeriod = 9
	assert.Error(t, badPeriod.Validate(settings))

	withPrefs := base
	withPrefs.PreferredDay = "Tuesday"
	withPrefs.PreferredPeriod = 3
	assert.NoError(t, withPrefs.Validate(settings))
}

package engine

import (
	"fmt"
	"strings"
)

// DaysPerWeek is fixed: institutions on this system run Monday through Saturday.
const DaysPerWeek = 6

// DayNames maps a day index (0..5) to its display name.
var DayNames = [DaysPerWeek]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// PeriodKind classifies a period number within a day.
type PeriodKind int

const (
	PeriodTeaching PeriodKind = iota
	PeriodLunch
	PeriodBreak
)

// Settings carries the global schedule parameters for one generation run.
// Periods are numbered 1..PeriodsPerDay.
type Settings struct {
	PeriodsPerDay            int
	LunchPeriod              int
	BreakPeriods             []int
	MaxTeacherPeriodsPerWeek int
}

// Validate checks the settings against their documented ranges.
func (s Settings) Validate() error {
	if s.PeriodsPerDay < 1 || s.PeriodsPerDay > 12 {
		return fmt.Errorf("periodsPerDay must be between 1 and 12, got %d", s.PeriodsPerDay)
	}
	if s.LunchPeriod < 1 || s.LunchPeriod > s.PeriodsPerDay {
		return fmt.Errorf("lunchPeriod %d is outside 1..%d", s.LunchPeriod, s.PeriodsPerDay)
	}
	for _, p := range s.BreakPeriods {
		if p < 1 || p > s.PeriodsPerDay {
			return fmt.Errorf("break period %d is outside 1..%d", p, s.PeriodsPerDay)
		}
		if p == s.LunchPeriod {
			return fmt.Errorf("break period %d collides with the lunch period", p)
		}
	}
	if s.MaxTeacherPeriodsPerWeek < 1 || s.MaxTeacherPeriodsPerWeek > 40 {
		return fmt.Errorf("maxTeacherPeriodsPerWeek must be between 1 and 40, got %d", s.MaxTeacherPeriodsPerWeek)
	}
	return nil
}

// PeriodKindOf classifies the given period number. Out-of-range periods are
// reported as breaks so that no allocator ever places into them.
func (s Settings) PeriodKindOf(period int) PeriodKind {
	if period < 1 || period > s.PeriodsPerDay {
		return PeriodBreak
	}
	if period == s.LunchPeriod {
		return PeriodLunch
	}
	for _, p := range s.BreakPeriods {
		if p == period {
			return PeriodBreak
		}
	}
	return PeriodTeaching
}

// TeachingPeriods returns the count of placeable periods in one day.
func (s Settings) TeachingPeriods() int {
	count := 0
	for p := 1; p <= s.PeriodsPerDay; p++ {
		if s.PeriodKindOf(p) == PeriodTeaching {
			count++
		}
	}
	return count
}

// DayIndex resolves a day name to its index, or -1 when unknown.
func DayIndex(name string) int {
	name = strings.TrimSpace(name)
	for i, day := range DayNames {
		if strings.EqualFold(day, name) {
			return i
		}
	}
	return -1
}

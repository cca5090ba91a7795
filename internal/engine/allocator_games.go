package engine

import "go.uber.org/zap"

// gamesAllocator biases games and sports periods to the end of the day:
// first the very last period across every day, then the later stretch of the
// day. Each period is placed independently; there is no block requirement.
type gamesAllocator struct {
	*attempt
}

func (a *gamesAllocator) Place(req Requirement, remaining int) PlacementResult {
	staff := req.StaffMembers()
	result := PlacementResult{}

	for placed := 0; placed < remaining; placed++ {
		day, period, ok := a.findSlot(req, staff, a.oracle.Available)
		if !ok {
			day, period, ok = a.findSlot(req, staff, a.oracle.AvailableBasic)
			if ok {
				a.ledger.MarkRelaxed(staff, a.settings.MaxTeacherPeriodsPerWeek)
				result.Relaxed = true
			}
		}
		if !ok {
			a.log.Warn("no late slot left for games period",
				zap.String("subject", req.Subject),
				zap.String("class", req.Class.String()),
				zap.Int("placed", result.Placed),
				zap.Int("required", remaining))
			break
		}
		a.commit(req, day, period)
		result.Placed++
	}
	return result
}

func (a *gamesAllocator) findSlot(req Requirement, staff []string, available availabilityFn) (int, int, bool) {
	last := a.settings.PeriodsPerDay
	for day := 0; day < DaysPerWeek; day++ {
		if available(day, last, req.Class, staff) {
			return day, last, true
		}
	}
	// Last period is taken everywhere; fall back to the tail of each day,
	// latest periods first.
	lateStart := last - last*2/5
	if lateStart < 1 {
		lateStart = 1
	}
	for period := last - 1; period >= lateStart; period-- {
		for day := 0; day < DaysPerWeek; day++ {
			if available(day, period, req.Class, staff) {
				return day, period, true
			}
		}
	}
	return 0, 0, false
}

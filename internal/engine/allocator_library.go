package engine

import "go.uber.org/zap"

// libraryAllocator places library periods under global mutual exclusion: the
// library is one shared resource, so a slot must be free of any other class
// before the usual availability rules even apply. Later periods of the day
// are preferred, but any teaching slot is acceptable.
type libraryAllocator struct {
	*attempt
}

func (a *libraryAllocator) Place(req Requirement, remaining int) PlacementResult {
	staff := req.StaffMembers()
	order := a.periodOrder()
	result := PlacementResult{}

	for placed := 0; placed < remaining; placed++ {
		day, period, ok := a.findSlot(req, staff, order, a.oracle.Available)
		if !ok {
			day, period, ok = a.findSlot(req, staff, order, a.oracle.AvailableBasic)
			if ok {
				a.ledger.MarkRelaxed(staff, a.settings.MaxTeacherPeriodsPerWeek)
				result.Relaxed = true
			}
		}
		if !ok {
			a.log.Warn("library slot unavailable",
				zap.String("class", req.Class.String()),
				zap.Int("placed", result.Placed),
				zap.Int("required", remaining))
			break
		}
		a.commit(req, day, period)
		a.ledger.OccupyLibrary(day, period, req.Class)
		result.Placed++
	}
	return result
}

// periodOrder lists periods with the later ~30% of the day first.
func (a *libraryAllocator) periodOrder() []int {
	total := a.settings.PeriodsPerDay
	lateStart := total - total*3/10
	if lateStart < 1 {
		lateStart = 1
	}
	order := make([]int, 0, total)
	for p := lateStart; p <= total; p++ {
		order = append(order, p)
	}
	for p := 1; p < lateStart; p++ {
		order = append(order, p)
	}
	return order
}

func (a *libraryAllocator) findSlot(req Requirement, staff []string, order []int, available availabilityFn) (int, int, bool) {
	for day := 0; day < DaysPerWeek; day++ {
		for _, period := range order {
			if !a.ledger.LibraryFree(day, period) {
				continue
			}
			if available(day, period, req.Class, staff) {
				return day, period, true
			}
		}
	}
	return 0, 0, false
}

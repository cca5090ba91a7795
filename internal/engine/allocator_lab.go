package engine

import "go.uber.org/zap"

// labAllocator places all required periods of a lab as one uninterrupted run
// on a single day. Runs never split across days: a lab that cannot fit on any
// one day is reported short rather than scattered. Break periods may sit
// inside a run without breaking it; the lunch period is an absolute boundary
// that truncates any run.
type labAllocator struct {
	*attempt
}

func (a *labAllocator) Place(req Requirement, remaining int) PlacementResult {
	if remaining <= 0 {
		return PlacementResult{}
	}
	staff := req.StaffMembers()

	if run, day := a.findRun(req, staff, remaining, a.oracle.Available); run != nil {
		for _, period := range run {
			a.commit(req, day, period)
		}
		return PlacementResult{Placed: len(run)}
	}

	// Strict search exhausted every day; retry without the weekly cap so the
	// block can still land whole.
	if run, day := a.findRun(req, staff, remaining, a.oracle.AvailableBasic); run != nil {
		for _, period := range run {
			a.commit(req, day, period)
		}
		a.ledger.MarkRelaxed(staff, a.settings.MaxTeacherPeriodsPerWeek)
		a.log.Warn("lab block placed past the weekly workload cap",
			zap.String("subject", req.Subject),
			zap.String("class", req.Class.String()),
			zap.String("day", DayNames[day]))
		return PlacementResult{Placed: len(run), Relaxed: true}
	}

	a.log.Warn("no single day offers a long enough run for lab",
		zap.String("subject", req.Subject),
		zap.String("class", req.Class.String()),
		zap.Int("periods", remaining))
	return PlacementResult{}
}

type availabilityFn func(day, period int, class ClassID, staff []string) bool

// findRun scans each day left to right for a contiguous run of available
// periods of the needed length. Days already holding a different lab subject
// for this class are skipped entirely.
func (a *labAllocator) findRun(req Requirement, staff []string, need int, available availabilityFn) ([]int, int) {
	for day := 0; day < DaysPerWeek; day++ {
		if a.board.dayHasOtherLab(req.Class, day, req.Subject) {
			continue
		}
		run := make([]int, 0, need)
		for period := 1; period <= a.settings.PeriodsPerDay; period++ {
			switch a.settings.PeriodKindOf(period) {
			case PeriodLunch:
				run = run[:0]
				continue
			case PeriodBreak:
				// A run spans breaks without growing or resetting.
				continue
			}
			if available(day, period, req.Class, staff) {
				run = append(run, period)
			} else {
				run = run[:0]
			}
			if len(run) == need {
				return run, day
			}
		}
	}
	return nil, -1
}

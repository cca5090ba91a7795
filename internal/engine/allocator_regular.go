package engine

import "go.uber.org/zap"

// antiRepeatBonus dominates the other scoring terms so a slot that does not
// repeat a period-of-day already used by the subject always outranks one
// that does.
const antiRepeatBonus = 50

// regularAllocator handles ordinary academic subjects. Preferred slots are
// honoured first; remaining periods go to the best-scoring legal slot, where
// scoring rewards earlier periods, emptier days and above all periods-of-day
// the subject has not used yet. When the strict search finds nothing, a
// relaxed pass ignores the soft preferences and the weekly cap so every
// required period can still land.
type regularAllocator struct {
	*attempt
}

func (a *regularAllocator) Place(req Requirement, remaining int) PlacementResult {
	staff := req.StaffMembers()
	hints := a.preferredSlots(req)
	result := PlacementResult{}

	for placed := 0; placed < remaining; placed++ {
		day, period, ok := a.placeByHint(req, staff, hints)
		if !ok {
			day, period, ok = a.bestStrictSlot(req, staff)
		}
		if !ok {
			day, period, ok = a.anyBasicSlot(req, staff)
			if ok {
				a.ledger.MarkRelaxed(staff, a.settings.MaxTeacherPeriodsPerWeek)
				result.Relaxed = true
			}
		}
		if !ok {
			a.log.Warn("subject left short of periods",
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

// placeByHint tries each preference hint. A hint pinning only a day scans
// that day's periods; one pinning only a period scans days for it.
func (a *regularAllocator) placeByHint(req Requirement, staff []string, hints []slotHint) (int, int, bool) {
	for _, hint := range hints {
		switch {
		case hint.Day >= 0 && hint.Period > 0:
			if a.oracle.Available(hint.Day, hint.Period, req.Class, staff) {
				return hint.Day, hint.Period, true
			}
		case hint.Day >= 0:
			for period := 1; period <= a.settings.PeriodsPerDay; period++ {
				if a.oracle.Available(hint.Day, period, req.Class, staff) && !a.ledger.UsedPeriod(req.Key(), period) {
					return hint.Day, period, true
				}
			}
		case hint.Period > 0:
			for day := 0; day < DaysPerWeek; day++ {
				if a.oracle.Available(day, hint.Period, req.Class, staff) {
					return day, hint.Period, true
				}
			}
		}
	}
	return 0, 0, false
}

// bestStrictSlot scores every strictly legal slot and returns the highest.
// Ties resolve to the earliest day then period, keeping runs deterministic.
func (a *regularAllocator) bestStrictSlot(req Requirement, staff []string) (int, int, bool) {
	bestDay, bestPeriod, bestScore := -1, 0, -1
	for day := 0; day < DaysPerWeek; day++ {
		for period := 1; period <= a.settings.PeriodsPerDay; period++ {
			if !a.oracle.Available(day, period, req.Class, staff) {
				continue
			}
			score := a.scoreSlot(req, staff, day, period)
			if score > bestScore {
				bestDay, bestPeriod, bestScore = day, period, score
			}
		}
	}
	if bestDay < 0 {
		return 0, 0, false
	}
	return bestDay, bestPeriod, true
}

func (a *regularAllocator) scoreSlot(req Requirement, staff []string, day, period int) int {
	total := a.settings.PeriodsPerDay
	score := total - period
	score += total - a.board.classDayLoad(req.Class, day)
	score += total - a.board.teacherDayLoad(staff, day)
	if !a.ledger.UsedPeriod(req.Key(), period) {
		score += antiRepeatBonus
	}
	return score
}

func (a *regularAllocator) anyBasicSlot(req Requirement, staff []string) (int, int, bool) {
	for day := 0; day < DaysPerWeek; day++ {
		for period := 1; period <= a.settings.PeriodsPerDay; period++ {
			if a.oracle.AvailableBasic(day, period, req.Class, staff) {
				return day, period, true
			}
		}
	}
	return 0, 0, false
}

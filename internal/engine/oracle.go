package engine

// Oracle answers slot legality questions against the current board and
// ledger. The strict form enforces the teacher weekly cap; the basic form
// omits it and exists only as a last-resort fallback so a run can trade cap
// compliance for completeness.
type Oracle struct {
	board  *Board
	ledger *Ledger
}

// NewOracle binds an oracle to one attempt's board and ledger.
func NewOracle(board *Board, ledger *Ledger) *Oracle {
	return &Oracle{board: board, ledger: ledger}
}

// Available reports whether the slot is legal under the strict rules: the
// period is a teaching period, the class cell is free, every staff member is
// unbooked there, and every staff member is under the weekly cap.
func (o *Oracle) Available(day, period int, class ClassID, staff []string) bool {
	if !o.AvailableBasic(day, period, class, staff) {
		return false
	}
	for _, teacher := range staff {
		if o.ledger.Workload(teacher) >= o.board.Settings.MaxTeacherPeriodsPerWeek {
			return false
		}
	}
	return true
}

// AvailableBasic applies every rule except the weekly workload cap.
func (o *Oracle) AvailableBasic(day, period int, class ClassID, staff []string) bool {
	if day < 0 || day >= DaysPerWeek {
		return false
	}
	if o.board.Settings.PeriodKindOf(period) != PeriodTeaching {
		return false
	}
	if !o.board.ClassFree(class, day, period) {
		return false
	}
	return o.board.TeacherFree(staff, day, period)
}

package engine

import "go.uber.org/zap"

// PlacementResult reports what one allocator call achieved.
type PlacementResult struct {
	Placed  int
	Relaxed bool
}

// Allocator is one placement strategy. Variants exist for labs, the shared
// library, games periods and ordinary subjects; policy differences between
// them are explicit types rather than forked code paths.
type Allocator interface {
	Place(req Requirement, remaining int) PlacementResult
}

// attempt bundles the mutable state owned by one reset-and-allocate cycle.
// Allocators embed it so they share the board, ledger and oracle without any
// cross-attempt leakage.
type attempt struct {
	settings Settings
	board    *Board
	ledger   *Ledger
	oracle   *Oracle
	prefs    map[string][]TeacherPreference
	log      *zap.Logger
}

func newAttempt(settings Settings, requirements []Requirement, prefs []TeacherPreference, log *zap.Logger) *attempt {
	board := NewBoard(settings, requirements)
	ledger := NewLedger(requirements)
	byTeacher := make(map[string][]TeacherPreference)
	for _, pref := range prefs {
		byTeacher[pref.Teacher] = append(byTeacher[pref.Teacher], pref)
	}
	return &attempt{
		settings: settings,
		board:    board,
		ledger:   ledger,
		oracle:   NewOracle(board, ledger),
		prefs:    byTeacher,
		log:      log,
	}
}

// allocatorFor returns the strategy matching the subject's category.
func (a *attempt) allocatorFor(category Category) Allocator {
	switch category {
	case CategoryLab:
		return &labAllocator{attempt: a}
	case CategoryLibrary:
		return &libraryAllocator{attempt: a}
	case CategoryGames:
		return &gamesAllocator{attempt: a}
	default:
		return &regularAllocator{attempt: a}
	}
}

// commit writes a single period into both grid families and the ledger.
func (a *attempt) commit(req Requirement, day, period int) {
	a.board.Commit(req, day, period)
	a.ledger.Record(req, period)
}

// preferredSlots collects candidate (day, period) hints for a requirement:
// the row's own preference first, then any teacher-level preference matching
// the class scope. A hint may pin only a day, only a period, or both.
func (a *attempt) preferredSlots(req Requirement) []slotHint {
	var hints []slotHint
	if req.PreferredDay != "" || req.PreferredPeriod > 0 {
		hints = append(hints, slotHint{Day: DayIndex(req.PreferredDay), Period: req.PreferredPeriod})
	}
	for _, teacher := range req.StaffMembers() {
		for _, pref := range a.prefs[teacher] {
			if !pref.Class.IsZero() && pref.Class != req.Class {
				continue
			}
			if pref.PreferredDay == "" && pref.PreferredPeriod <= 0 {
				continue
			}
			hints = append(hints, slotHint{Day: DayIndex(pref.PreferredDay), Period: pref.PreferredPeriod})
		}
	}
	return hints
}

// slotHint is a partially specified slot preference. Day -1 or Period 0
// leaves that axis free.
type slotHint struct {
	Day    int
	Period int
}

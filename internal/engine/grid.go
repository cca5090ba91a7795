package engine

// TimeSlot is one cell of a weekly grid. Subject, Staff and Class are empty
// for unassigned or non-teaching cells.
type TimeSlot struct {
	Day     string `json:"day"`
	Period  int    `json:"period"`
	Subject string `json:"subject,omitempty"`
	Staff   string `json:"staff,omitempty"`
	Class   string `json:"class,omitempty"`
}

// Grid is a day-by-period matrix: Grid[day][period-1].
type Grid [][]TimeSlot

// NewGrid builds an empty grid with day and period labels prefilled.
func NewGrid(periodsPerDay int) Grid {
	grid := make(Grid, DaysPerWeek)
	for day := range grid {
		row := make([]TimeSlot, periodsPerDay)
		for p := range row {
			row[p] = TimeSlot{Day: DayNames[day], Period: p + 1}
		}
		grid[day] = row
	}
	return grid
}

// At returns the cell at (day, period). Period is 1-based.
func (g Grid) At(day, period int) TimeSlot {
	return g[day][period-1]
}

// Occupied reports whether the cell already holds a subject.
func (g Grid) Occupied(day, period int) bool {
	return g[day][period-1].Subject != ""
}

// dayCount returns the number of assigned cells on the given day.
func (g Grid) dayCount(day int) int {
	count := 0
	for _, cell := range g[day] {
		if cell.Subject != "" {
			count++
		}
	}
	return count
}

// Board holds the two mirrored grid families for one attempt: one grid per
// class and one per individual teacher. Every successful assignment writes
// the same logical fact into both families, so they stay consistent by
// construction.
type Board struct {
	Settings Settings
	Classes  map[ClassID]Grid
	Teachers map[string]Grid
}

// NewBoard sizes grids to the set of classes and teachers discovered in the
// requirement list.
func NewBoard(settings Settings, requirements []Requirement) *Board {
	board := &Board{
		Settings: settings,
		Classes:  make(map[ClassID]Grid),
		Teachers: make(map[string]Grid),
	}
	for _, req := range requirements {
		if _, ok := board.Classes[req.Class]; !ok {
			board.Classes[req.Class] = NewGrid(settings.PeriodsPerDay)
		}
		for _, teacher := range req.StaffMembers() {
			if _, ok := board.Teachers[teacher]; !ok {
				board.Teachers[teacher] = NewGrid(settings.PeriodsPerDay)
			}
		}
	}
	return board
}

// Commit writes an assignment into the class grid and into the teacher grid
// of every staff member simultaneously. The class-side cell keeps the joined
// staff string; each teacher-side cell names the class being taught.
func (b *Board) Commit(req Requirement, day, period int) {
	classGrid := b.Classes[req.Class]
	classGrid[day][period-1].Subject = req.Subject
	classGrid[day][period-1].Staff = req.Staff

	className := req.Class.String()
	for _, teacher := range req.StaffMembers() {
		teacherGrid := b.Teachers[teacher]
		teacherGrid[day][period-1].Subject = req.Subject
		teacherGrid[day][period-1].Class = className
	}
}

// ClassFree reports whether the class cell is empty.
func (b *Board) ClassFree(class ClassID, day, period int) bool {
	return !b.Classes[class].Occupied(day, period)
}

// TeacherFree reports whether every listed staff member is unbooked at the slot.
func (b *Board) TeacherFree(staff []string, day, period int) bool {
	for _, teacher := range staff {
		if b.Teachers[teacher].Occupied(day, period) {
			return false
		}
	}
	return true
}

// classDayLoad counts assigned periods for a class on one day.
func (b *Board) classDayLoad(class ClassID, day int) int {
	return b.Classes[class].dayCount(day)
}

// teacherDayLoad counts assigned periods across the given staff on one day.
func (b *Board) teacherDayLoad(staff []string, day int) int {
	load := 0
	for _, teacher := range staff {
		load += b.Teachers[teacher].dayCount(day)
	}
	return load
}

// dayHasOtherLab reports whether a different lab subject already occupies any
// period of the class's day. One lab subject per day per class.
func (b *Board) dayHasOtherLab(class ClassID, day int, subject string) bool {
	for _, cell := range b.Classes[class][day] {
		if cell.Subject == "" || cell.Subject == subject {
			continue
		}
		if Classify(cell.Subject) == CategoryLab {
			return true
		}
	}
	return false
}

package engine

import "sort"

// AllocationKey identifies one (subject, class) ledger entry.
type AllocationKey struct {
	Subject string
	Class   ClassID
}

// String renders the subject-class form used in reports.
func (k AllocationKey) String() string {
	return k.Subject + "-" + k.Class.String()
}

// SubjectAllocation tracks allocated-vs-required periods for one key.
type SubjectAllocation struct {
	Key       AllocationKey
	Category  Category
	Staff     string
	Required  int
	Allocated int
}

// Shortfall is the positive gap between required and allocated periods.
func (a SubjectAllocation) Shortfall() int {
	if gap := a.Required - a.Allocated; gap > 0 {
		return gap
	}
	return 0
}

type librarySlot struct {
	Day    int
	Period int
}

// Ledger is the per-attempt bookkeeping: allocation counters, teacher weekly
// workloads, anti-repetition period usage and library occupancy. It is built
// fresh at the start of every attempt and discarded wholesale afterwards.
type Ledger struct {
	allocations map[AllocationKey]*SubjectAllocation
	workload    map[string]int
	periodUsage map[AllocationKey]map[int]bool
	library     map[librarySlot]ClassID

	relaxedUsed bool
	capExceeded map[string]bool
}

// NewLedger builds ledger entries for every requirement. Duplicate
// (subject, class) rows merge their required periods.
func NewLedger(requirements []Requirement) *Ledger {
	ledger := &Ledger{
		allocations: make(map[AllocationKey]*SubjectAllocation, len(requirements)),
		workload:    make(map[string]int),
		periodUsage: make(map[AllocationKey]map[int]bool),
		library:     make(map[librarySlot]ClassID),
		capExceeded: make(map[string]bool),
	}
	for _, req := range requirements {
		key := req.Key()
		if entry, ok := ledger.allocations[key]; ok {
			entry.Required += req.Periods
			continue
		}
		ledger.allocations[key] = &SubjectAllocation{
			Key:      key,
			Category: Classify(req.Subject),
			Staff:    req.Staff,
			Required: req.Periods,
		}
		for _, teacher := range req.StaffMembers() {
			if _, ok := ledger.workload[teacher]; !ok {
				ledger.workload[teacher] = 0
			}
		}
	}
	return ledger
}

// Record books one placed period: the allocation counter, the weekly workload
// of every staff member, and the period-of-day usage set.
func (l *Ledger) Record(req Requirement, period int) {
	key := req.Key()
	l.allocations[key].Allocated++
	for _, teacher := range req.StaffMembers() {
		l.workload[teacher]++
	}
	if l.periodUsage[key] == nil {
		l.periodUsage[key] = make(map[int]bool)
	}
	l.periodUsage[key][period] = true
}

// Allocation returns the ledger entry for a key.
func (l *Ledger) Allocation(key AllocationKey) *SubjectAllocation {
	return l.allocations[key]
}

// Remaining returns required minus allocated for a key.
func (l *Ledger) Remaining(key AllocationKey) int {
	entry := l.allocations[key]
	if entry == nil {
		return 0
	}
	return entry.Required - entry.Allocated
}

// Workload returns the teacher's booked periods this week.
func (l *Ledger) Workload(teacher string) int {
	return l.workload[teacher]
}

// UsedPeriod reports whether the subject already occupies this period-of-day
// on any day of the week for the class.
func (l *Ledger) UsedPeriod(key AllocationKey, period int) bool {
	return l.periodUsage[key][period]
}

// LibraryFree reports whether the shared library is unoccupied at the slot.
// The library is a single global resource: at most one class holds it per
// day/period across the whole institution.
func (l *Ledger) LibraryFree(day, period int) bool {
	_, taken := l.library[librarySlot{Day: day, Period: period}]
	return !taken
}

// OccupyLibrary marks the library as held by the class at the slot.
func (l *Ledger) OccupyLibrary(day, period int, class ClassID) {
	l.library[librarySlot{Day: day, Period: period}] = class
}

// MarkRelaxed flags that the relaxed fallback path fired, and records any
// teachers whose weekly cap may be breached as a result.
func (l *Ledger) MarkRelaxed(staff []string, cap int) {
	l.relaxedUsed = true
	for _, teacher := range staff {
		if l.workload[teacher] >= cap {
			l.capExceeded[teacher] = true
		}
	}
}

// RelaxedUsed reports whether any allocator fell back to the relaxed path.
func (l *Ledger) RelaxedUsed() bool {
	return l.relaxedUsed
}

// CapExceededTeachers lists teachers booked past the weekly cap, sorted.
func (l *Ledger) CapExceededTeachers() []string {
	teachers := make([]string, 0, len(l.capExceeded))
	for teacher := range l.capExceeded {
		teachers = append(teachers, teacher)
	}
	sort.Strings(teachers)
	return teachers
}

// Entries returns all ledger entries sorted by key for deterministic output.
func (l *Ledger) Entries() []*SubjectAllocation {
	entries := make([]*SubjectAllocation, 0, len(l.allocations))
	for _, entry := range l.allocations {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Key.String() < entries[j].Key.String()
	})
	return entries
}

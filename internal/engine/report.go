package engine

import (
	"sort"

	"github.com/samber/lo"
)

// SubjectReport is one row of the allocation report.
type SubjectReport struct {
	Subject   string `json:"subject"`
	Class     string `json:"class"`
	Required  int    `json:"required"`
	Allocated int    `json:"allocated"`
	Shortfall int    `json:"shortfall,omitempty"`
}

// Report summarises one generation run for diagnostic surfacing. A run with
// shortfalls is still a successful run; callers present the gap rather than
// failing the operation.
type Report struct {
	TotalRequired   int             `json:"totalRequired"`
	TotalAllocated  int             `json:"totalAllocated"`
	Score           float64         `json:"score"`
	Attempts        int             `json:"attempts"`
	RelaxedFallback bool            `json:"relaxedFallback"`
	CapExceeded     []string        `json:"capExceeded,omitempty"`
	Subjects        []SubjectReport `json:"subjects"`
	Shortfalls      []SubjectReport `json:"shortfalls,omitempty"`
}

// ClassTimetable is one class's finished weekly grid.
type ClassTimetable struct {
	Class ClassID `json:"-"`
	Name  string  `json:"class"`
	Grid  Grid    `json:"grid"`
}

// TeacherTimetable is one individual teacher's mirrored weekly grid.
type TeacherTimetable struct {
	Teacher string `json:"teacher"`
	Grid    Grid   `json:"grid"`
}

// Result is the full output of one generation run: both grid families plus
// the allocation report of the best attempt.
type Result struct {
	Classes  []ClassTimetable
	Teachers []TeacherTimetable
	Report   Report
}

// buildReport folds the ledger into a report. Score is the mean allocation
// ratio across all ledger entries.
func buildReport(ledger *Ledger) Report {
	entries := ledger.Entries()
	subjects := lo.Map(entries, func(entry *SubjectAllocation, _ int) SubjectReport {
		return SubjectReport{
			Subject:   entry.Key.Subject,
			Class:     entry.Key.Class.String(),
			Required:  entry.Required,
			Allocated: entry.Allocated,
			Shortfall: entry.Shortfall(),
		}
	})
	shortfalls := lo.Filter(subjects, func(row SubjectReport, _ int) bool {
		return row.Shortfall > 0
	})

	report := Report{
		TotalRequired:   lo.SumBy(subjects, func(row SubjectReport) int { return row.Required }),
		TotalAllocated:  lo.SumBy(subjects, func(row SubjectReport) int { return row.Allocated }),
		RelaxedFallback: ledger.RelaxedUsed(),
		CapExceeded:     ledger.CapExceededTeachers(),
		Subjects:        subjects,
		Shortfalls:      shortfalls,
	}
	if len(entries) > 0 {
		ratioSum := lo.SumBy(entries, func(entry *SubjectAllocation) float64 {
			return float64(entry.Allocated) / float64(entry.Required)
		})
		report.Score = ratioSum / float64(len(entries))
	}
	return report
}

// buildResult freezes an attempt's board into the output value.
func buildResult(board *Board, report Report) *Result {
	classes := make([]ClassTimetable, 0, len(board.Classes))
	for class, grid := range board.Classes {
		classes = append(classes, ClassTimetable{Class: class, Name: class.String(), Grid: grid})
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i].Name < classes[j].Name })

	teachers := make([]TeacherTimetable, 0, len(board.Teachers))
	for teacher, grid := range board.Teachers {
		teachers = append(teachers, TeacherTimetable{Teacher: teacher, Grid: grid})
	}
	sort.Slice(teachers, func(i, j int) bool { return teachers[i].Teacher < teachers[j].Teacher })

	return &Result{Classes: classes, Teachers: teachers, Report: report}
}

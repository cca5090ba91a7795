package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerRecord(t *testing.T) {
	req := Requirement{
		Class:   ClassID{Department: "CS", Year: "2", Section: "A"},
		Subject: "Physics Lab",
		Periods: 3,
		Staff:   "Dr. A, Dr. B",
	}
	ledger := NewLedger([]Requirement{req})

	key := req.Key()
	assert.Equal(t, 3, ledger.Remaining(key))
	assert.Equal(t, 0, ledger.Workload("Dr. A"))

	ledger.Record(req, 5)
	ledger.Record(req, 7)

	assert.Equal(t, 1, ledger.Remaining(key))
	assert.Equal(t, 2, ledger.Allocation(key).Allocated)
	// Every staff member of a lab is booked for every period.
	assert.Equal(t, 2, ledger.Workload("Dr. A"))
	assert.Equal(t, 2, ledger.Workload("Dr. B"))
	assert.True(t, ledger.UsedPeriod(key, 5))
	assert.True(t, ledger.UsedPeriod(key, 7))
	assert.False(t, ledger.UsedPeriod(key, 1))
}

func TestLedgerMergesDuplicateRows(t *testing.T) {
	class := ClassID{Department: "CS", Year: "2", Section: "A"}
	rows := []Requirement{
		{Class: class, Subject: "Mathematics", Periods: 3, Staff: "Prof. X"},
		{Class: class, Subject: "Mathematics", Periods: 2, Staff: "Prof. X"},
	}
	ledger := NewLedger(rows)

	entry := ledger.Allocation(rows[0].Key())
	require.NotNil(t, entry)
	assert.Equal(t, 5, entry.Required)
	assert.Len(t, ledger.Entries(), 1)
}

func TestLedgerLibraryOccupancy(t *testing.T) {
	class := ClassID{Department: "CS", Year: "2", Section: "A"}
	other := ClassID{Department: "EEE", Year: "1", Section: "B"}
	ledger := NewLedger([]Requirement{
		{Class: class, Subject: "Library", Periods: 1, Staff: "Librarian"},
	})

	assert.True(t, ledger.LibraryFree(0, 5))
	ledger.OccupyLibrary(0, 5, class)
	assert.False(t, ledger.LibraryFree(0, 5))
	assert.True(t, ledger.LibraryFree(0, 6))
	assert.True(t, ledger.LibraryFree(1, 5))

	// Occupancy is global, not per class.
	ledger.OccupyLibrary(1, 5, other)
	assert.False(t, ledger.LibraryFree(1, 5))
}

func TestLedgerRelaxedTracking(t *testing.T) {
	req := Requirement{
		Class:   ClassID{Department: "CS", Year: "2", Section: "A"},
		Subject: "Mathematics",
		Periods: 2,
		Staff:   "Prof. X",
	}
	ledger := NewLedger([]Requirement{req})
	assert.False(t, ledger.RelaxedUsed())
	assert.Empty(t, ledger.CapExceededTeachers())

	ledger.Record(req, 1)
	ledger.Record(req, 2)
	ledger.MarkRelaxed(req.StaffMembers(), 2)

	assert.True(t, ledger.RelaxedUsed())
	assert.Equal(t, []string{"Prof. X"}, ledger.CapExceededTeachers())
}

package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/campustack/timetable-api/internal/dto"
)

// Required CSV headers. Header matching is case-insensitive and ignores
// surrounding whitespace.
var requiredColumns = []string{"department", "year", "section", "subject", "periods", "staff"}

// Parse reads subject demand rows from CSV. The first record is the header
// line; preferredday and preferredperiod columns are optional.
func Parse(r io.Reader) ([]dto.SubjectRowRequest, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("csv is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	index, err := mapHeader(header)
	if err != nil {
		return nil, err
	}

	var rows []dto.SubjectRowRequest
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}
		row, err := parseRow(record, index, line)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("csv contains no data rows")
	}
	return rows, nil
}

func mapHeader(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("csv header missing required column %q", col)
		}
	}
	return index, nil
}

func parseRow(record []string, index map[string]int, line int) (dto.SubjectRowRequest, error) {
	get := func(col string) string {
		i, ok := index[col]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	periodsRaw := get("periods")
	periods, err := strconv.Atoi(periodsRaw)
	if err != nil || periods <= 0 {
		return dto.SubjectRowRequest{}, fmt.Errorf("csv line %d: periods must be a positive integer, got %q", line, periodsRaw)
	}

	row := dto.SubjectRowRequest{
		Department:   get("department"),
		Year:         get("year"),
		Section:      get("section"),
		Subject:      get("subject"),
		Periods:      periods,
		Staff:        get("staff"),
		PreferredDay: get("preferredday"),
	}
	if row.Department == "" || row.Year == "" || row.Section == "" {
		return dto.SubjectRowRequest{}, fmt.Errorf("csv line %d: department, year and section are required", line)
	}
	if row.Subject == "" {
		return dto.SubjectRowRequest{}, fmt.Errorf("csv line %d: subject is required", line)
	}
	if row.Staff == "" {
		return dto.SubjectRowRequest{}, fmt.Errorf("csv line %d: staff is required", line)
	}

	if raw := get("preferredperiod"); raw != "" {
		preferred, err := strconv.Atoi(raw)
		if err != nil || preferred < 1 {
			return dto.SubjectRowRequest{}, fmt.Errorf("csv line %d: preferredperiod must be a positive integer, got %q", line, raw)
		}
		row.PreferredPeriod = preferred
	}
	return row, nil
}

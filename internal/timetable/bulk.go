package timetable

import (
	"strconv"
	"strings"

	"campusattend/internal/csvimport"
)

// EntryHeaders is the required column set for bulk timetable import.
var EntryHeaders = []string{"dayOfWeek", "startTime", "subject", "teacherId", "department", "year", "section"}

// ImportCSV parses a bulk-add CSV body and validates every row against
// the pre-existing entries plus previously accepted rows from the same
// file. Malformed rows and conflicts land in invalid with their source
// line numbers; a bad header fails the whole file instead.
func ImportCSV(body string, existing []Entry) (valid []Entry, invalid []csvimport.RowError, err error) {
	header, lines := csvimport.SplitLines(body)
	parsed, err := csvimport.Parse(header, lines, EntryHeaders, buildEntryRow)
	if err != nil {
		return nil, nil, err
	}
	invalid = parsed.Invalid

	accumulator := make([]Entry, len(existing), len(existing)+len(parsed.Valid))
	copy(accumulator, existing)

	for _, row := range parsed.Valid {
		if verr := Validate(row.Value, accumulator); verr != nil {
			invalid = append(invalid, csvimport.RowError{Line: row.Line, Reason: verr.Error()})
			continue
		}
		accumulator = append(accumulator, row.Value)
		valid = append(valid, row.Value)
	}
	return valid, invalid, nil
}

func buildEntryRow(fields map[string]string) (Entry, error) {
	day, _ := strconv.Atoi(fields["dayOfWeek"])
	year, _ := strconv.Atoi(fields["year"])
	entry := Entry{
		DayOfWeek:  day,
		StartTime:  fields["startTime"],
		Subject:    fields["subject"],
		TeacherID:  fields["teacherId"],
		Department: fields["department"],
		Year:       year,
		Section:    strings.ToUpper(fields["section"]),
	}
	if err := entry.Check(); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

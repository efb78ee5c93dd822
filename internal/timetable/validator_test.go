package timetable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slot(id, start, teacher, dept, section string, day, year int) Entry {
	return Entry{
		ID:         id,
		DayOfWeek:  day,
		StartTime:  start,
		Subject:    "DBMS",
		TeacherID:  teacher,
		Department: dept,
		Year:       year,
		Section:    section,
	}
}

func TestValidateAcceptsFreeSlot(t *testing.T) {
	existing := []Entry{slot("e1", "09:00", "T1", "CSE", "A", 1, 3)}
	err := Validate(slot("", "10:00", "T1", "CSE", "A", 1, 3), existing)
	assert.NoError(t, err)
}

func TestValidateClassConflict(t *testing.T) {
	existing := []Entry{slot("e1", "09:00", "T1", "CSE", "A", 1, 3)}

	err := Validate(slot("", "09:00", "T2", "CSE", "A", 1, 3), existing)
	require.Error(t, err)
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Contains(t, conflict.Reason, "class slot already occupied")
	assert.Equal(t, "e1", conflict.Conflicting.ID)
}

func TestValidateTeacherConflictAcrossGroups(t *testing.T) {
	existing := []Entry{slot("e1", "09:00", "T1", "CSE", "A", 1, 3)}

	// different department, same teacher and time
	err := Validate(slot("", "09:00", "T1", "ECE", "B", 1, 2), existing)
	require.Error(t, err)
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Contains(t, conflict.Reason, "teacher T1 already scheduled")
	assert.Contains(t, conflict.Reason, "CSE-3-A", "message names the group the teacher is busy with")
}

func TestValidateClassConflictReportedFirst(t *testing.T) {
	// both keys collide; only the class reason surfaces
	existing := []Entry{slot("e1", "09:00", "T1", "CSE", "A", 1, 3)}
	err := Validate(slot("", "09:00", "T1", "CSE", "A", 1, 3), existing)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "class slot already occupied")
	assert.NotContains(t, err.Error(), "teacher T1 already scheduled")
}

func TestValidateSkipsCancelledAndSelf(t *testing.T) {
	cancelled := slot("e1", "09:00", "T1", "CSE", "A", 1, 3)
	cancelled.Cancelled = true
	assert.NoError(t, Validate(slot("", "09:00", "T1", "CSE", "A", 1, 3), []Entry{cancelled}))

	// editing e2 into the slot it already holds must not self-conflict
	existing := []Entry{slot("e2", "10:00", "T2", "CSE", "A", 2, 3)}
	edited := slot("e2", "10:00", "T2", "CSE", "A", 2, 3)
	edited.Subject = "OS"
	assert.NoError(t, Validate(edited, existing))
}

func TestEndTimeDerived(t *testing.T) {
	assert.Equal(t, "10:00", Entry{StartTime: "09:00"}.EndTime())
	assert.Equal(t, "13:00", Entry{StartTime: "12:00"}.EndTime())
	assert.Equal(t, "", Entry{StartTime: "9:30"}.EndTime())
}

func TestEntryCheck(t *testing.T) {
	ok := slot("", "09:00", "T1", "CSE", "A", 1, 3)
	assert.NoError(t, ok.Check())

	bad := ok
	bad.DayOfWeek = 8
	assert.Error(t, bad.Check())

	bad = ok
	bad.StartTime = "09:30"
	assert.Error(t, bad.Check())

	bad = ok
	bad.Year = 5
	assert.Error(t, bad.Check())
}

func TestValidateBatchCatchesIntraBatchDuplicates(t *testing.T) {
	rows := []Entry{
		slot("", "09:00", "T1", "CSE", "A", 1, 3),
		slot("", "09:00", "T2", "CSE", "A", 1, 3), // same class slot as the first row
		slot("", "10:00", "T1", "CSE", "A", 1, 3),
	}
	valid, invalid := ValidateBatch(rows, nil)

	require.Len(t, valid, 2)
	require.Len(t, invalid, 1)
	assert.Equal(t, 2, invalid[0].Row, "positions are 1-based like CSV line numbers")
	assert.Contains(t, invalid[0].Reason, "class slot already occupied")
}

func TestImportCSVTeacherConflictAcrossDepartments(t *testing.T) {
	body := "dayOfWeek,startTime,subject,teacherId,department,year,section\n" +
		"1,09:00,DBMS,T1,CSE,3,A\n" +
		"1,09:00,Maths,T1,ECE,2,B\n"

	valid, invalid, err := ImportCSV(body, nil)
	require.NoError(t, err)

	require.Len(t, valid, 1)
	assert.Equal(t, "CSE", valid[0].Department)

	require.Len(t, invalid, 1)
	assert.Equal(t, 3, invalid[0].Line)
	assert.Contains(t, invalid[0].Reason, "teacher T1 already scheduled")
	assert.Contains(t, invalid[0].Reason, "CSE-3-A")
}

func TestImportCSVBadHeaderFailsFile(t *testing.T) {
	body := "dayOfWeek,startTime,subject,teacherId,department,year\n" +
		"1,09:00,DBMS,T1,CSE,3\n"

	valid, invalid, err := ImportCSV(body, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "section")
	assert.Empty(t, valid)
	assert.Empty(t, invalid)
}

func TestImportCSVReportsRowErrorsWithLines(t *testing.T) {
	body := "dayOfWeek,startTime,subject,teacherId,department,year,section\n" +
		"1,09:00,DBMS,T1,CSE,3,A\n" +
		"1,09:30,OS,T2,CSE,3,A\n" + // off-hour start
		"2,09:00,OS,T2,CSE,3,A\n"

	valid, invalid, err := ImportCSV(body, nil)
	require.NoError(t, err)
	assert.Len(t, valid, 2)
	require.Len(t, invalid, 1)
	assert.Equal(t, 3, invalid[0].Line)
	assert.Contains(t, invalid[0].Reason, "startTime")
}

package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"campusattend/internal/roster"
)

var noon = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

func student(roll string) roster.Student {
	return roster.Student{RollNumber: roll, Name: "Test Student", Department: "CSE", Year: 3, Section: "A"}
}

func TestResolveStudentStatusBlocked(t *testing.T) {
	st := student("21CS001")
	st.BlockPermanent = true
	res := ResolveStudentStatus(st, roster.FaceLinks{7: "21CS001"}, nil, noon)
	assert.Equal(t, DayBlocked, res.Status)

	future := noon.Add(2 * time.Hour)
	st = student("21CS001")
	st.BlockExpiresAt = &future
	res = ResolveStudentStatus(st, roster.FaceLinks{7: "21CS001"}, nil, noon)
	assert.Equal(t, DayBlocked, res.Status)
}

func TestResolveStudentStatusExpiredBlockNeverBlocked(t *testing.T) {
	// lazy expiry: a past timestamp means unblocked even though the
	// field is still set
	past := noon.Add(-time.Minute)
	st := student("21CS001")
	st.BlockExpiresAt = &past
	res := ResolveStudentStatus(st, roster.FaceLinks{}, nil, noon)
	assert.NotEqual(t, DayBlocked, res.Status)
	assert.Equal(t, DayUnlinked, res.Status)
}

func TestResolveStudentStatusUnlinked(t *testing.T) {
	res := ResolveStudentStatus(student("21CS001"), roster.FaceLinks{9: "21CS999"}, nil, noon)
	assert.Equal(t, DayUnlinked, res.Status)
}

func TestResolveStudentStatusPresentTakesLatestLog(t *testing.T) {
	links := roster.FaceLinks{7: "21CS001"}
	records := []Record{
		{PersistentID: 7, Timestamp: noon.Add(-3 * time.Hour), Source: SourceAI, Status: StatusPresent},
		{PersistentID: 7, Timestamp: noon.Add(-1 * time.Hour), Source: SourceAI, Status: StatusPresent},
		{PersistentID: 8, Timestamp: noon.Add(-10 * time.Minute), Source: SourceAI, Status: StatusPresent}, // other student
		{PersistentID: 7, Timestamp: noon.Add(-26 * time.Hour), Source: SourceAI, Status: StatusPresent},   // yesterday
	}
	res := ResolveStudentStatus(student("21CS001"), links, records, noon)
	assert.Equal(t, DayPresent, res.Status)
	if assert.NotNil(t, res.LastLog) {
		assert.Equal(t, noon.Add(-1*time.Hour), *res.LastLog)
	}
}

func TestResolveStudentStatusAbsentWhenOnlyOtherDays(t *testing.T) {
	links := roster.FaceLinks{7: "21CS001"}
	records := []Record{
		{PersistentID: 7, Timestamp: noon.AddDate(0, 0, -1), Source: SourceAI, Status: StatusPresent},
	}
	res := ResolveStudentStatus(student("21CS001"), links, records, noon)
	assert.Equal(t, DayAbsent, res.Status)
	assert.Nil(t, res.LastLog)
}

func TestResolveSessionAttendancePending(t *testing.T) {
	got := ResolveSessionAttendance(student("21CS001"), "DBMS", noon, nil, roster.FaceLinks{})
	assert.Equal(t, SessionPending, got)
}

func TestResolveSessionAttendanceAbsentWithoutRecords(t *testing.T) {
	links := roster.FaceLinks{7: "21CS001"}
	got := ResolveSessionAttendance(student("21CS001"), "DBMS", noon, nil, links)
	assert.Equal(t, SessionAbsent, got)
}

func TestResolveSessionAttendanceManualBeatsAI(t *testing.T) {
	links := roster.FaceLinks{7: "21CS001"}
	records := []Record{
		{PersistentID: 7, Subject: "DBMS", Timestamp: noon.Add(-2 * time.Hour), Source: SourceAI, Status: StatusPresent},
		{PersistentID: 7, Subject: "DBMS", Timestamp: noon.Add(-90 * time.Minute), Source: SourceAI, Status: StatusPresent},
		{PersistentID: 7, Subject: "DBMS", Timestamp: noon.Add(-time.Hour), Source: SourceManual, Status: StatusAbsent},
	}
	got := ResolveSessionAttendance(student("21CS001"), "DBMS", noon, records, links)
	assert.Equal(t, SessionAbsent, got, "manual override must win over any number of pipeline records")
}

func TestResolveSessionAttendanceLatestManualWins(t *testing.T) {
	links := roster.FaceLinks{7: "21CS001"}
	records := []Record{
		{PersistentID: 7, Subject: "DBMS", Timestamp: noon.Add(-2 * time.Hour), Source: SourceManual, Status: StatusAbsent},
		{PersistentID: 7, Subject: "DBMS", Timestamp: noon.Add(-time.Hour), Source: SourceManual, Status: StatusPresent},
	}
	got := ResolveSessionAttendance(student("21CS001"), "DBMS", noon, records, links)
	assert.Equal(t, SessionPresent, got, "resubmitted manual mark replaces the earlier one")
}

func TestResolveSessionAttendanceAIAlwaysMeansPresent(t *testing.T) {
	// the pipeline never writes absent rows, so even a record whose
	// stored status says absent counts as a presence event
	links := roster.FaceLinks{7: "21CS001"}
	records := []Record{
		{PersistentID: 7, Subject: "DBMS", Timestamp: noon.Add(-time.Hour), Source: SourceAI, Status: StatusAbsent},
	}
	got := ResolveSessionAttendance(student("21CS001"), "DBMS", noon, records, links)
	assert.Equal(t, SessionPresent, got)
}

func TestResolveSessionAttendanceIgnoresOtherSubjects(t *testing.T) {
	links := roster.FaceLinks{7: "21CS001"}
	records := []Record{
		{PersistentID: 7, Subject: "OS", Timestamp: noon.Add(-time.Hour), Source: SourceAI, Status: StatusPresent},
	}
	got := ResolveSessionAttendance(student("21CS001"), "DBMS", noon, records, links)
	assert.Equal(t, SessionAbsent, got)
}

// Walks the lifecycle from enrollment to a manual correction, checking
// the derived state at each step.
func TestStudentLifecycleDerivation(t *testing.T) {
	st := student("21CS001")
	links := roster.FaceLinks{}
	var records []Record

	res := ResolveStudentStatus(st, links, records, noon)
	assert.Equal(t, DayUnlinked, res.Status)

	links[42] = "21CS001"
	res = ResolveStudentStatus(st, links, records, noon)
	assert.Equal(t, DayAbsent, res.Status)

	records = append(records, Record{
		PersistentID: 42, Subject: "DBMS",
		Timestamp: noon.Add(-time.Hour), Source: SourceAI, Status: StatusPresent,
	})
	res = ResolveStudentStatus(st, links, records, noon)
	assert.Equal(t, DayPresent, res.Status)

	records = append(records, Record{
		PersistentID: 42, Subject: "DBMS",
		Timestamp: noon.Add(-30 * time.Minute), Source: SourceManual, Status: StatusAbsent,
	})
	got := ResolveSessionAttendance(st, "DBMS", noon, records, links)
	assert.Equal(t, SessionAbsent, got, "later manual absent must override the pipeline record")
}

func TestSameDayCrossesLocations(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	localNow := time.Date(2026, 3, 2, 1, 30, 0, 0, ist)
	// 2026-03-01T21:30Z is 2026-03-02T03:00 in IST, same local day
	utcRecord := Record{PersistentID: 7, Timestamp: time.Date(2026, 3, 1, 21, 30, 0, 0, time.UTC), Source: SourceAI, Status: StatusPresent}

	res := ResolveStudentStatus(student("21CS001"), roster.FaceLinks{7: "21CS001"}, []Record{utcRecord}, localNow)
	assert.Equal(t, DayPresent, res.Status)
}

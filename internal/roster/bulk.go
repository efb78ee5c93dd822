package roster

import (
	"fmt"
	"strconv"
	"strings"

	"campusattend/internal/csvimport"
)

// StudentHeaders is the required column set for bulk student registration.
var StudentHeaders = []string{"name", "rollNumber", "department", "year", "section", "email", "phoneNumber"}

// ParseBulkStudents parses a bulk-register CSV body into students,
// reporting rejected rows by source line number.
func ParseBulkStudents(body string) (csvimport.Result[Student], error) {
	header, lines := csvimport.SplitLines(body)
	return csvimport.Parse(header, lines, StudentHeaders, buildStudentRow)
}

func buildStudentRow(fields map[string]string) (Student, error) {
	name := fields["name"]
	roll := fields["rollNumber"]
	dept := fields["department"]
	section := fields["section"]
	if name == "" || roll == "" || dept == "" || section == "" {
		return Student{}, fmt.Errorf("name, rollNumber, department and section are required")
	}
	year, err := strconv.Atoi(fields["year"])
	if err != nil || year < 1 || year > 4 {
		return Student{}, fmt.Errorf("year must be between 1 and 4, got %q", fields["year"])
	}
	email := fields["email"]
	if email != "" && !strings.Contains(email, "@") {
		return Student{}, fmt.Errorf("invalid email %q", email)
	}
	return Student{
		RollNumber: roll,
		Name:       name,
		Department: dept,
		Year:       year,
		Section:    strings.ToUpper(section),
		Email:      email,
		Phone:      fields["phoneNumber"],
	}, nil
}

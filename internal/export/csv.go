package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"student-records/internal/domain"
)

// Keep header order in sync with the row builders below.
var (
	studentHeader     = []string{"ID", "NAME", "EMAIL", "MAJOR", "YEAR", "GPA", "CREDITS", "ACTIVE", "PROFILE_ADDRESS"}
	gradeHeader       = []string{"STUDENT_ID", "COURSE_CODE", "COURSE_NAME", "CREDITS", "GRADE", "SEMESTER"}
	certificateHeader = []string{"STUDENT_ID", "NAME", "ISSUED_BY", "DATE", "DESCRIPTION"}
)

func WriteStudentsCSV(w io.Writer, students []domain.Student) error {
	rows := make([][]string, 0, len(students))
	for _, s := range students {
		rows = append(rows, []string{
			s.ID,
			clean(s.Name),
			clean(s.Email),
			clean(s.Major),
			strconv.Itoa(s.Year),
			floatToString(s.GPA),
			strconv.Itoa(s.Credits),
			strconv.FormatBool(s.Active),
			s.ProfileAddress,
		})
	}
	return writeCSV(w, studentHeader, rows)
}

func WriteGradesCSV(w io.Writer, grades []domain.Grade) error {
	rows := make([][]string, 0, len(grades))
	for _, g := range grades {
		rows = append(rows, []string{
			g.StudentID,
			g.CourseCode,
			clean(g.CourseName),
			strconv.Itoa(g.Credits),
			floatToString(g.Score),
			clean(g.Semester),
		})
	}
	return writeCSV(w, gradeHeader, rows)
}

func WriteCertificatesCSV(w io.Writer, certs []domain.Certificate) error {
	rows := make([][]string, 0, len(certs))
	for _, c := range certs {
		rows = append(rows, []string{
			c.StudentID,
			clean(c.Name),
			clean(c.IssuedBy),
			c.Date,
			clean(c.Description),
		})
	}
	return writeCSV(w, certificateHeader, rows)
}

func writeCSV(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	// spreadsheet imports expect CRLF
	cw.UseCRLF = true

	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

func floatToString(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// clean flattens embedded newlines so each record stays on one line.
func clean(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.ReplaceAll(s, "\n", " ")
}

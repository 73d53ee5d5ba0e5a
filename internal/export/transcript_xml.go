package export

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"

	"student-records/internal/domain"
)

/*
Transcript XML:

<transcripts>
  <student id="SV001" active="true">
    <name>...</name>
    <email>...</email>
    <major>...</major>
    <year>2021</year>
    <grades>
      <grade course_code="CS101" semester="HK1 2023">
        <course_name>...</course_name>
        <credits>3</credits>
        <score>8.5</score>
      </grade>
    </grades>
    <certificates>
      <certificate date="2024-05-15">
        <name>...</name>
        <issued_by>...</issued_by>
      </certificate>
    </certificates>
  </student>
</transcripts>
*/

type xmlTranscripts struct {
	XMLName  xml.Name     `xml:"transcripts"`
	Students []xmlStudent `xml:"student"`
}

type xmlStudent struct {
	ID             string `xml:"id,attr"`
	Active         bool   `xml:"active,attr"`
	Name           string `xml:"name"`
	Email          string `xml:"email,omitempty"`
	Major          string `xml:"major,omitempty"`
	Year           string `xml:"year,omitempty"`
	GPA            string `xml:"gpa,omitempty"`
	ProfileAddress string `xml:"profile_address,omitempty"`

	Grades       *xmlGradeList       `xml:"grades,omitempty"`
	Certificates *xmlCertificateList `xml:"certificates,omitempty"`
}

type xmlGradeList struct {
	Grades []xmlGrade `xml:"grade"`
}

type xmlGrade struct {
	CourseCode string `xml:"course_code,attr"`
	Semester   string `xml:"semester,attr,omitempty"`
	CourseName string `xml:"course_name"`
	Credits    int    `xml:"credits"`
	Score      string `xml:"score"`
}

type xmlCertificateList struct {
	Certificates []xmlCertificate `xml:"certificate"`
}

type xmlCertificate struct {
	Date        string `xml:"date,attr,omitempty"`
	Name        string `xml:"name"`
	IssuedBy    string `xml:"issued_by,omitempty"`
	Description string `xml:"description,omitempty"`
}

// WriteTranscriptXML writes one <student> per student in store order, with
// that student's grades and certificates nested under it. Grades and
// certificates for unknown students are left out.
func WriteTranscriptXML(w io.Writer, students []domain.Student, grades []domain.Grade, certs []domain.Certificate) error {
	gradesBy := map[string][]xmlGrade{}
	for _, g := range grades {
		gradesBy[g.StudentID] = append(gradesBy[g.StudentID], xmlGrade{
			CourseCode: g.CourseCode,
			Semester:   placeholderToEmpty(g.Semester),
			CourseName: g.CourseName,
			Credits:    g.Credits,
			Score:      floatToString(g.Score),
		})
	}
	certsBy := map[string][]xmlCertificate{}
	for _, c := range certs {
		certsBy[c.StudentID] = append(certsBy[c.StudentID], xmlCertificate{
			Date:        placeholderToEmpty(c.Date),
			Name:        c.Name,
			IssuedBy:    placeholderToEmpty(c.IssuedBy),
			Description: placeholderToEmpty(c.Description),
		})
	}

	out := xmlTranscripts{Students: make([]xmlStudent, 0, len(students))}
	for _, s := range students {
		row := xmlStudent{
			ID:             s.ID,
			Active:         s.Active,
			Name:           s.Name,
			Email:          placeholderToEmpty(s.Email),
			Major:          placeholderToEmpty(s.Major),
			ProfileAddress: s.ProfileAddress,
		}
		if s.Year > 0 {
			row.Year = strconv.Itoa(s.Year)
		}
		if s.GPA > 0 {
			row.GPA = floatToString(s.GPA)
		}
		if gs := gradesBy[s.ID]; len(gs) > 0 {
			row.Grades = &xmlGradeList{Grades: gs}
		}
		if cs := certsBy[s.ID]; len(cs) > 0 {
			row.Certificates = &xmlCertificateList{Certificates: cs}
		}
		out.Students = append(out.Students, row)
	}

	b, err := xml.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("export: marshal xml: %w", err)
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("export: write xml: %w", err)
	}
	if _, err := w.Write(append(b, '\n')); err != nil {
		return fmt.Errorf("export: write xml: %w", err)
	}
	return nil
}

// placeholderToEmpty drops the "-" filler used on remotely discovered records.
func placeholderToEmpty(s string) string {
	if s == domain.Placeholder {
		return ""
	}
	return s
}

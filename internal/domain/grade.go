package domain

import (
	"math"
	"strings"
)

// Grade is a single course result. Grades have no identity of their own;
// the same grade may appear twice.
type Grade struct {
	StudentID  string  `json:"studentId"`
	CourseCode string  `json:"courseCode"`
	CourseName string  `json:"courseName"`
	Credits    int     `json:"credits"`
	Score      float64 `json:"grade"` // 0-10
	Semester   string  `json:"semester"`
}

const (
	MinScore = 0.0
	MaxScore = 10.0
)

func (g Grade) Validate() error {
	if strings.TrimSpace(g.StudentID) == "" {
		return ValidationError{Field: "studentId", Value: g.StudentID, Message: "is required"}
	}
	if strings.TrimSpace(g.CourseCode) == "" {
		return ValidationError{Field: "courseCode", Value: g.CourseCode, Message: "is required"}
	}
	if math.IsNaN(g.Score) || g.Score < MinScore || g.Score > MaxScore {
		return ValidationError{Field: "grade", Value: g.Score, Message: "must be between 0 and 10"}
	}
	return nil
}

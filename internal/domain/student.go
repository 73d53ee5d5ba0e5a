package domain

import (
	"encoding/json"
	"strings"
)

// Student is the canonical student record. ProfileAddress is only set for
// students first seen through the ledger event log.
type Student struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	Major          string  `json:"major"`
	Year           int     `json:"year"`
	GPA            float64 `json:"gpa"`
	Credits        int     `json:"credits"`
	Active         bool    `json:"active"`
	ProfileAddress string  `json:"profileAddress,omitempty"`
}

// Key is the identity used for reconciliation.
func (s Student) Key() string {
	return strings.TrimSpace(s.ID)
}

// UnmarshalJSON accepts both "year" and the form-side "enrollment_year"
// spelling; older caches hold either one.
func (s *Student) UnmarshalJSON(b []byte) error {
	type plain Student
	var aux struct {
		plain
		EnrollmentYear *json.Number `json:"enrollment_year"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*s = Student(aux.plain)
	if s.Year == 0 && aux.EnrollmentYear != nil {
		if n, err := aux.EnrollmentYear.Int64(); err == nil {
			s.Year = int(n)
		}
	}
	return nil
}

// Validate checks the fields every stored student must carry.
func (s Student) Validate() error {
	if s.Key() == "" {
		return ValidationError{Field: "id", Value: s.ID, Message: "is required"}
	}
	if strings.TrimSpace(s.Name) == "" {
		return ValidationError{Field: "name", Value: s.Name, Message: "is required"}
	}
	return nil
}

// Matches reports whether term occurs in the student's name or id,
// ignoring case. An empty term matches everything.
func (s Student) Matches(term string) bool {
	t := strings.ToLower(strings.TrimSpace(term))
	if t == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s.Name), t) ||
		strings.Contains(strings.ToLower(s.ID), t)
}

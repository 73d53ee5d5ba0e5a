package domain

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar-date format used in the local cache.
const DateLayout = "2006-01-02"

// Certificate is an issued certificate. Date is kept as the ISO date string
// the user typed; placeholder records carry "-".
type Certificate struct {
	StudentID   string `json:"studentId"`
	Name        string `json:"name"`
	IssuedBy    string `json:"issuedBy"`
	Date        string `json:"date"`
	Description string `json:"description,omitempty"`
}

// CertificateKey identifies a certificate for merge purposes.
type CertificateKey struct {
	StudentID string
	Name      string
}

func (k CertificateKey) String() string {
	return k.StudentID + "/" + k.Name
}

func (c Certificate) Key() CertificateKey {
	return CertificateKey{
		StudentID: strings.TrimSpace(c.StudentID),
		Name:      strings.TrimSpace(c.Name),
	}
}

func (c Certificate) Validate() error {
	k := c.Key()
	if k.StudentID == "" {
		return ValidationError{Field: "studentId", Value: c.StudentID, Message: "is required"}
	}
	if k.Name == "" {
		return ValidationError{Field: "name", Value: c.Name, Message: "is required"}
	}
	return nil
}

// ParseDate parses an ISO calendar date and pins it to midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// UnixDate converts an ISO date to Unix seconds at 00:00 UTC.
func UnixDate(s string) (uint64, error) {
	t, err := ParseDate(s)
	if err != nil {
		return 0, err
	}
	if t.Unix() < 0 {
		return 0, fmt.Errorf("date %q is before 1970-01-01", s)
	}
	return uint64(t.Unix()), nil
}

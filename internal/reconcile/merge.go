package reconcile

import (
	"strings"

	"student-records/internal/domain"
	"student-records/internal/remote"
)

// PlaceholderStudent fills a student from a ledger event. Fields the event
// does not carry, or carries blank, get the placeholder or zero value.
func PlaceholderStudent(ev remote.StudentEvent) domain.Student {
	return domain.Student{
		ID:             ev.ID,
		Name:           orPlaceholder(ev.Name),
		Email:          domain.Placeholder,
		Major:          domain.Placeholder,
		Active:         true,
		ProfileAddress: ev.ProfileAddress,
	}
}

func orPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return domain.Placeholder
	}
	return s
}

func PlaceholderCertificate(ev remote.CertificateEvent) domain.Certificate {
	return domain.Certificate{
		StudentID:   ev.StudentID,
		Name:        ev.CertificateName,
		IssuedBy:    domain.Placeholder,
		Date:        domain.Placeholder,
		Description: domain.Placeholder,
	}
}

// MergeStudents appends a placeholder for every remote student whose id is
// not already present. Existing students are never touched, so repeated
// merges of the same snapshot are no-ops. Events that still fail record
// validation are dropped so one bad event cannot block the rest.
func MergeStudents(local []domain.Student, events []remote.StudentEvent) ([]domain.Student, int) {
	merged := append(make([]domain.Student, 0, len(local)+len(events)), local...)
	byID := make(map[string]bool, len(merged))
	for _, s := range merged {
		byID[s.Key()] = true
	}

	added := 0
	for _, ev := range events {
		s := PlaceholderStudent(ev)
		if s.Validate() != nil || byID[s.Key()] {
			continue
		}
		byID[s.Key()] = true
		merged = append(merged, s)
		added++
	}
	return merged, added
}

// MergeCertificates is MergeStudents keyed by (studentId, name).
func MergeCertificates(local []domain.Certificate, events []remote.CertificateEvent) ([]domain.Certificate, int) {
	merged := append(make([]domain.Certificate, 0, len(local)+len(events)), local...)
	byKey := make(map[domain.CertificateKey]bool, len(merged))
	for _, c := range merged {
		byKey[c.Key()] = true
	}

	added := 0
	for _, ev := range events {
		c := PlaceholderCertificate(ev)
		if c.Validate() != nil || byKey[c.Key()] {
			continue
		}
		byKey[c.Key()] = true
		merged = append(merged, c)
		added++
	}
	return merged, added
}

package store

import "student-records/internal/domain"

// Stats summarises the collections for the dashboard view.
type Stats struct {
	Students       int `json:"students"`
	ActiveStudents int `json:"activeStudents"`
	Grades         int `json:"grades"`
	Certificates   int `json:"certificates"`
}

func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Stats{
		Students:     len(s.students),
		Grades:       len(s.grades),
		Certificates: len(s.certificates),
	}
	for _, x := range s.students {
		if x.Active {
			st.ActiveStudents++
		}
	}
	return st
}

// SearchStudents filters by case-insensitive substring on name or id,
// keeping collection order.
func (s *Store) SearchStudents(term string) []domain.Student {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Student, 0, len(s.students))
	for _, x := range s.students {
		if x.Matches(term) {
			out = append(out, x)
		}
	}
	return out
}

// RecentStudents returns the last n students, most recent last.
func (s *Store) RecentStudents(n int) []domain.Student {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n <= 0 {
		return []domain.Student{}
	}
	start := len(s.students) - n
	if start < 0 {
		start = 0
	}
	return append([]domain.Student(nil), s.students[start:]...)
}

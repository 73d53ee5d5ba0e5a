package domain

// Collection names double as the durable cache keys.
const (
	CollectionStudents     = "students"
	CollectionGrades       = "grades"
	CollectionCertificates = "certificates"
)

// Placeholder fills text fields a ledger event does not carry.
const Placeholder = "-"

// SeedStudents returns the demo students used when the cache is empty.
func SeedStudents() []Student {
	return []Student{
		{ID: "SV001", Name: "Nguyễn Văn A", Email: "vana@university.edu", Major: "Computer Science", Year: 2024, GPA: 3.75, Credits: 45, Active: true},
		{ID: "SV002", Name: "Trần Thị B", Email: "thib@university.edu", Major: "Business Admin", Year: 2023, GPA: 3.52, Credits: 78, Active: true},
		{ID: "SV003", Name: "Lê Văn C", Email: "vanc@university.edu", Major: "Engineering", Year: 2024, GPA: 3.88, Credits: 32, Active: true},
	}
}

func SeedGrades() []Grade {
	return []Grade{
		{StudentID: "SV001", CourseCode: "CS101", CourseName: "Introduction to Programming", Credits: 3, Score: 8.5, Semester: "Fall 2024"},
		{StudentID: "SV001", CourseCode: "MATH201", CourseName: "Calculus II", Credits: 4, Score: 7.8, Semester: "Fall 2024"},
	}
}

func SeedCertificates() []Certificate {
	return []Certificate{
		{StudentID: "SV001", Name: "Best Student Award", IssuedBy: "Computer Science Department", Date: "2024-05-15"},
	}
}

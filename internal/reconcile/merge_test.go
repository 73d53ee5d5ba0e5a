package reconcile

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"student-records/internal/domain"
	"student-records/internal/remote"
)

func TestMergeStudentsDeduplicatesWithinFetch(t *testing.T) {
	events := []remote.StudentEvent{
		{ID: "SV100", Name: "first"},
		{ID: "SV100", Name: "second"},
	}

	merged, added := MergeStudents(nil, events)

	require.Len(t, merged, 1)
	assert.Equal(t, 1, added)
	assert.Equal(t, "first", merged[0].Name)
}

func TestMergeStudentsLocalWins(t *testing.T) {
	local := []domain.Student{{ID: "S1", Name: "Local", Email: "l@u.edu", Major: "Math", Year: 2022, GPA: 3.1, Credits: 12, Active: false}}
	before := append([]domain.Student(nil), local...)

	merged, added := MergeStudents(local, []remote.StudentEvent{{ID: "S1", Name: "Remote", ProfileAddress: "0xabc"}})

	assert.Equal(t, 0, added)
	if diff := cmp.Diff(before, merged); diff != "" {
		t.Errorf("local student changed (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(before, local); diff != "" {
		t.Errorf("input slice mutated (-want +got):\n%s", diff)
	}
}

func TestMergeStudentsEmptyFetch(t *testing.T) {
	local := domain.SeedStudents()

	merged, added := MergeStudents(local, nil)

	assert.Equal(t, 0, added)
	assert.Equal(t, local, merged)
}

func TestMergeStudentsScenario(t *testing.T) {
	local := []domain.Student{domain.SeedStudents()[0]}
	events := []remote.StudentEvent{{ID: "SV001", Name: "X"}, {ID: "SV002", Name: "Y"}}

	merged, added := MergeStudents(local, events)

	require.Len(t, merged, 2)
	assert.Equal(t, 1, added)
	assert.Equal(t, "Nguyễn Văn A", merged[0].Name)

	want := domain.Student{ID: "SV002", Name: "Y", Email: "-", Major: "-", GPA: 0, Credits: 0, Active: true}
	if diff := cmp.Diff(want, merged[1]); diff != "" {
		t.Errorf("placeholder student mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeStudentsIdempotent(t *testing.T) {
	events := []remote.StudentEvent{{ID: "SV020", Name: "A", ProfileAddress: "0x1"}}

	once, _ := MergeStudents(domain.SeedStudents(), events)
	twice, added := MergeStudents(once, events)

	assert.Equal(t, 0, added)
	assert.Equal(t, once, twice)
	assert.Equal(t, "0x1", twice[len(twice)-1].ProfileAddress)
}

func TestMergeCertificates(t *testing.T) {
	local := domain.SeedCertificates()
	events := []remote.CertificateEvent{
		{StudentID: "SV001", CertificateName: "Best Student Award"},
		{StudentID: "SV002", CertificateName: "Best Student Award"},
		{StudentID: "SV002", CertificateName: "Best Student Award"},
	}

	merged, added := MergeCertificates(local, events)

	require.Len(t, merged, 2)
	assert.Equal(t, 1, added)
	assert.Equal(t, local[0], merged[0])
	assert.Equal(t, domain.Certificate{StudentID: "SV002", Name: "Best Student Award", IssuedBy: "-", Date: "-", Description: "-"}, merged[1])
}

func TestMergeStudentsBlankNameGetsPlaceholder(t *testing.T) {
	merged, added := MergeStudents(nil, []remote.StudentEvent{{ID: "SV011", Name: "  ", ProfileAddress: "0xb"}})

	require.Equal(t, 1, added)
	assert.Equal(t, domain.Student{ID: "SV011", Name: "-", Email: "-", Major: "-", Active: true, ProfileAddress: "0xb"}, merged[0])
	assert.NoError(t, merged[0].Validate())
}

func TestMergeCertificatesDropsInvalidEvents(t *testing.T) {
	events := []remote.CertificateEvent{
		{StudentID: "SV010", CertificateName: "Honors"},
		{StudentID: "SV010", CertificateName: ""},
		{StudentID: " ", CertificateName: "Orphan"},
	}

	merged, added := MergeCertificates(nil, events)

	assert.Equal(t, 1, added)
	require.Len(t, merged, 1)
	assert.Equal(t, "Honors", merged[0].Name)
}

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"student-records/internal/domain"
)

func TestStats(t *testing.T) {
	ctx := context.Background()
	s := Open(ctx, NewMemoryCache())
	require.NoError(t, s.AppendStudent(ctx, domain.Student{ID: "SV004", Name: "D", Active: false}))

	assert.Equal(t, Stats{Students: 4, ActiveStudents: 3, Grades: 2, Certificates: 1}, s.Stats())
}

func TestSearchStudents(t *testing.T) {
	s := Open(context.Background(), NewMemoryCache())

	assert.Len(t, s.SearchStudents(""), 3)
	assert.Len(t, s.SearchStudents("văn"), 2)

	got := s.SearchStudents("sv002")
	require.Len(t, got, 1)
	assert.Equal(t, "Trần Thị B", got[0].Name)

	assert.Empty(t, s.SearchStudents("nobody"))
}

func TestRecentStudents(t *testing.T) {
	s := Open(context.Background(), NewMemoryCache())

	got := s.RecentStudents(2)
	require.Len(t, got, 2)
	assert.Equal(t, "SV002", got[0].ID)
	assert.Equal(t, "SV003", got[1].ID)

	assert.Len(t, s.RecentStudents(5), 3)
	assert.Empty(t, s.RecentStudents(0))
}

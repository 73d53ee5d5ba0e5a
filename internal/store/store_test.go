package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"student-records/internal/domain"
)

func TestLoadMissingReturnsSeed(t *testing.T) {
	cache := NewMemoryCache()
	seed := domain.SeedStudents()

	got := Load(context.Background(), cache, zerolog.Nop(), domain.CollectionStudents, seed)
	assert.Equal(t, seed, got)
}

func TestLoadUnparsableReturnsSeed(t *testing.T) {
	ctx := context.Background()
	testCases := []struct {
		name string
		raw  string
	}{
		{"garbage", `{not json`},
		{"object instead of list", `{"id":"SV001"}`},
		{"null", `null`},
		{"record missing id", `[{"name":"A"}]`},
		{"wrong field type", `[{"id":"SV001","name":"A","gpa":"high"}]`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cache := NewMemoryCache()
			require.NoError(t, cache.Put(ctx, domain.CollectionStudents, []byte(tc.raw)))

			got := Load(ctx, cache, zerolog.Nop(), domain.CollectionStudents, domain.SeedStudents())
			assert.Equal(t, domain.SeedStudents(), got)
		})
	}
}

func TestDecodeReportsCacheParseError(t *testing.T) {
	_, err := decode[domain.Grade](domain.CollectionGrades, []byte(`[{"studentId":""}]`))

	var perr *CacheParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, domain.CollectionGrades, perr.Collection)
}

func TestLoadEmptyListIsNotAMiss(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache()
	require.NoError(t, cache.Put(ctx, domain.CollectionGrades, []byte(`[]`)))

	got := Load(ctx, cache, zerolog.Nop(), domain.CollectionGrades, domain.SeedGrades())
	assert.Empty(t, got)
}

func TestAppendWritesWholeCollection(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache()
	s := Open(ctx, cache)

	g := domain.Grade{StudentID: "SV002", CourseCode: "BUS100", CourseName: "Accounting", Credits: 3, Score: 9, Semester: "Spring 2025"}
	require.NoError(t, s.AppendGrade(ctx, g))

	assert.Equal(t, 1, cache.Writes(domain.CollectionGrades))
	assert.Equal(t, 0, cache.Writes(domain.CollectionStudents))

	reloaded := Open(ctx, cache)
	grades := reloaded.Grades()
	require.Len(t, grades, len(domain.SeedGrades())+1)
	assert.Equal(t, g, grades[len(grades)-1])
}

func TestAppendGradeAllowsDuplicates(t *testing.T) {
	ctx := context.Background()
	s := Open(ctx, NewMemoryCache())

	g := domain.SeedGrades()[0]
	require.NoError(t, s.AppendGrade(ctx, g))
	assert.Len(t, s.Grades(), len(domain.SeedGrades())+1)
}

func TestAppendRejectsDuplicateKeys(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache()
	s := Open(ctx, cache)

	err := s.AppendStudent(ctx, domain.Student{ID: "SV001", Name: "Other"})
	assert.ErrorIs(t, err, ErrDuplicateStudent)

	err = s.AppendCertificate(ctx, domain.Certificate{StudentID: "SV001", Name: "Best Student Award"})
	assert.ErrorIs(t, err, ErrDuplicateCertificate)

	assert.Len(t, s.Students(), 3)
	assert.Equal(t, 0, cache.Writes(domain.CollectionStudents))
}

func TestAppendByCollectionName(t *testing.T) {
	ctx := context.Background()
	s := Open(ctx, NewMemoryCache())

	err := s.Append(ctx, domain.CollectionStudents, domain.Student{ID: "SV004", Name: "D", Active: true})
	require.NoError(t, err)
	assert.True(t, s.HasStudent("SV004"))

	err = s.Append(ctx, domain.CollectionGrades, domain.Student{ID: "SV005", Name: "E"})
	assert.ErrorIs(t, err, ErrUnknownCollection)

	err = s.ReplaceAll(ctx, "courses", []domain.Student{})
	assert.ErrorIs(t, err, ErrUnknownCollection)
}

func TestReplaceAll(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache()
	s := Open(ctx, cache)

	certs := []domain.Certificate{{StudentID: "SV009", Name: "Dean's List", IssuedBy: "-", Date: "-"}}
	require.NoError(t, s.ReplaceAll(ctx, domain.CollectionCertificates, certs))
	assert.Equal(t, certs, s.Certificates())
	assert.Equal(t, 1, cache.Writes(domain.CollectionCertificates))

	dup := []domain.Student{{ID: "SV1", Name: "A"}, {ID: "SV1", Name: "B"}}
	assert.ErrorIs(t, s.ReplaceStudents(ctx, dup), ErrDuplicateStudent)
	assert.Len(t, s.Students(), 3)
}

func TestReplaceWithEmptyStaysEmptyAfterReload(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache()
	s := Open(ctx, cache)

	require.NoError(t, s.ReplaceGrades(ctx, nil))

	reopened := Open(ctx, cache)
	assert.Empty(t, reopened.Grades())
	assert.Len(t, reopened.Students(), 3)
}

func TestAccessorsReturnCopies(t *testing.T) {
	s := Open(context.Background(), NewMemoryCache())

	students := s.Students()
	students[0].Name = "changed"
	assert.Equal(t, "Nguyễn Văn A", s.Students()[0].Name)
}

type failingCache struct{ *MemoryCache }

func (failingCache) Put(context.Context, string, []byte) error {
	return errors.New("disk full")
}

func TestAppendReportsCacheWriteFailure(t *testing.T) {
	ctx := context.Background()
	s := Open(ctx, failingCache{NewMemoryCache()})

	err := s.AppendGrade(ctx, domain.SeedGrades()[1])
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

// flakyCache fails the next fail writes and then behaves like MemoryCache.
type flakyCache struct {
	*MemoryCache
	fail int
}

func (f *flakyCache) Put(ctx context.Context, key string, value []byte) error {
	if f.fail > 0 {
		f.fail--
		return errors.New("disk full")
	}
	return f.MemoryCache.Put(ctx, key, value)
}

func TestFailedWriteLeavesMemoryUnchanged(t *testing.T) {
	ctx := context.Background()
	cache := &flakyCache{MemoryCache: NewMemoryCache(), fail: 4}
	s := Open(ctx, cache)

	require.Error(t, s.AppendGrade(ctx, domain.SeedGrades()[1]))
	require.Error(t, s.AppendStudent(ctx, domain.Student{ID: "SV004", Name: "D"}))
	require.Error(t, s.ReplaceCertificates(ctx, nil))
	require.Error(t, s.UpdateStudents(ctx, func(cur []domain.Student) ([]domain.Student, bool) {
		return cur[:1], true
	}))

	assert.Equal(t, domain.SeedGrades(), s.Grades())
	assert.Equal(t, domain.SeedStudents(), s.Students())
	assert.Equal(t, domain.SeedCertificates(), s.Certificates())

	g := domain.Grade{StudentID: "SV002", CourseCode: "CS102", Score: 7}
	require.NoError(t, s.AppendGrade(ctx, g))
	grades := Open(ctx, cache).Grades()
	require.Len(t, grades, len(domain.SeedGrades())+1)
	assert.Equal(t, g, grades[len(grades)-1])
}

func TestSQLiteCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "records.db")

	cache, err := OpenSQLite(path)
	require.NoError(t, err)

	s := Open(ctx, cache)
	require.NoError(t, s.AppendStudent(ctx, domain.Student{ID: "SV004", Name: "Phạm Thị D", Email: "d@university.edu", Major: "Physics", Year: 2025, Active: true}))
	require.NoError(t, cache.Close())

	cache, err = OpenSQLite(path)
	require.NoError(t, err)
	defer cache.Close()

	reloaded := Open(ctx, cache)
	students := reloaded.Students()
	require.Len(t, students, 4)
	assert.Equal(t, "SV004", students[3].ID)
	assert.Equal(t, domain.SeedGrades(), reloaded.Grades())
}

func TestSQLiteCachePutReplaces(t *testing.T) {
	ctx := context.Background()
	cache, err := OpenSQLite(filepath.Join(t.TempDir(), "records.db"))
	require.NoError(t, err)
	defer cache.Close()

	_, ok, err := cache.Get(ctx, "grades")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Put(ctx, "grades", []byte(`[1]`)))
	require.NoError(t, cache.Put(ctx, "grades", []byte(`[2]`)))

	v, ok, err := cache.Get(ctx, "grades")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[2]`, string(v))
}

func TestUpdateStudentsSkipsWriteWhenUnchanged(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache()
	s := Open(ctx, cache)

	err := s.UpdateStudents(ctx, func(cur []domain.Student) ([]domain.Student, bool) {
		return cur, false
	})
	require.NoError(t, err)
	assert.Equal(t, 0, cache.Writes(domain.CollectionStudents))

	err = s.UpdateStudents(ctx, func(cur []domain.Student) ([]domain.Student, bool) {
		return append(cur, domain.Student{ID: "SV009", Name: "Z", Active: true}), true
	})
	require.NoError(t, err)
	assert.Equal(t, 1, cache.Writes(domain.CollectionStudents))
	assert.True(t, s.HasStudent("SV009"))
}

func TestUpdateCertificatesRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	s := Open(ctx, NewMemoryCache())

	err := s.UpdateCertificates(ctx, func(cur []domain.Certificate) ([]domain.Certificate, bool) {
		return append(cur, cur[0]), true
	})
	assert.ErrorIs(t, err, ErrDuplicateCertificate)
	assert.Len(t, s.Certificates(), 1)
}

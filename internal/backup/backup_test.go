package backup

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"student-records/internal/domain"
	"student-records/internal/store"
)

func TestWriteReadRoundTrip(t *testing.T) {
	st := store.Open(context.Background(), store.NewMemoryCache())
	now := time.Date(2026, 3, 1, 9, 30, 0, 0, time.FixedZone("ICT", 7*3600))
	snap := Take(st, now)
	assert.Equal(t, time.UTC, snap.CreatedAt.Location())

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, snap))
	assert.NotEqual(t, byte('{'), buf.Bytes()[0], "snapshot should be compressed")

	got, err := Read(&buf)
	require.NoError(t, err)
	if diff := cmp.Diff(snap, got); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestReadRejectsGarbage(t *testing.T) {
	_, err := Read(bytes.NewReader([]byte(`{"students":[]}`)))
	assert.Error(t, err)
}

func TestFileName(t *testing.T) {
	ts := time.Date(2026, 10, 17, 8, 5, 9, 0, time.UTC)
	assert.Equal(t, "records-20261017T080509Z.json.br", FileName(ts))
}

func TestRestoreReplacesCollections(t *testing.T) {
	ctx := context.Background()
	cache := store.NewMemoryCache()
	st := store.Open(ctx, cache)

	snap := Snapshot{
		Students:     []domain.Student{{ID: "SV900", Name: "Restored", Active: true}},
		Grades:       []domain.Grade{},
		Certificates: []domain.Certificate{},
	}
	require.NoError(t, Restore(ctx, st, snap))

	assert.Equal(t, snap.Students, st.Students())
	assert.Empty(t, st.Grades())
	assert.Empty(t, st.Certificates())
	assert.Equal(t, 1, cache.Writes(domain.CollectionStudents))
}

func TestRestoreRejectsDuplicatesWithoutChanges(t *testing.T) {
	ctx := context.Background()
	cache := store.NewMemoryCache()
	st := store.Open(ctx, cache)

	snap := Snapshot{
		Students:     domain.SeedStudents(),
		Certificates: []domain.Certificate{
			{StudentID: "SV001", Name: "Award", IssuedBy: "X", Date: "2024-01-01"},
			{StudentID: "SV001", Name: "Award", IssuedBy: "Y", Date: "2024-02-01"},
		},
	}
	err := Restore(ctx, st, snap)
	require.ErrorIs(t, err, store.ErrDuplicateCertificate)
	assert.Equal(t, 0, cache.Writes(domain.CollectionStudents))
	assert.Len(t, st.Certificates(), 1)
}

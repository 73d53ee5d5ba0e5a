// Package backup writes and reads brotli-compressed JSON snapshots of the
// three record collections.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/andybalholm/brotli"

	"student-records/internal/domain"
	"student-records/internal/store"
)

// Extension is appended to snapshot file names.
const Extension = ".json.br"

type Snapshot struct {
	CreatedAt    time.Time            `json:"createdAt"`
	Students     []domain.Student     `json:"students"`
	Grades       []domain.Grade       `json:"grades"`
	Certificates []domain.Certificate `json:"certificates"`
}

// Take copies the current store contents.
func Take(st *store.Store, now time.Time) Snapshot {
	return Snapshot{
		CreatedAt:    now.UTC(),
		Students:     st.Students(),
		Grades:       st.Grades(),
		Certificates: st.Certificates(),
	}
}

// FileName is records-<UTC timestamp>.json.br.
func FileName(t time.Time) string {
	return "records-" + t.UTC().Format("20060102T150405Z") + Extension
}

func Write(w io.Writer, snap Snapshot) error {
	bw := brotli.NewWriterLevel(w, brotli.DefaultCompression)
	if err := json.NewEncoder(bw).Encode(snap); err != nil {
		bw.Close()
		return fmt.Errorf("backup: encode: %w", err)
	}
	if err := bw.Close(); err != nil {
		return fmt.Errorf("backup: compress: %w", err)
	}
	return nil
}

func Read(r io.Reader) (Snapshot, error) {
	var snap Snapshot
	if err := json.NewDecoder(brotli.NewReader(r)).Decode(&snap); err != nil {
		return Snapshot{}, fmt.Errorf("backup: decode: %w", err)
	}
	return snap, nil
}

// Validate applies the store's record checks, including unique student ids
// and certificate keys.
func (s Snapshot) Validate() error {
	ids := make(map[string]bool, len(s.Students))
	for i, st := range s.Students {
		if err := st.Validate(); err != nil {
			return fmt.Errorf("backup: student %d: %w", i, err)
		}
		if ids[st.Key()] {
			return fmt.Errorf("backup: student %s: %w", st.ID, store.ErrDuplicateStudent)
		}
		ids[st.Key()] = true
	}
	for i, g := range s.Grades {
		if err := g.Validate(); err != nil {
			return fmt.Errorf("backup: grade %d: %w", i, err)
		}
	}
	keys := make(map[domain.CertificateKey]bool, len(s.Certificates))
	for i, c := range s.Certificates {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("backup: certificate %d: %w", i, err)
		}
		if keys[c.Key()] {
			return fmt.Errorf("backup: certificate %s: %w", c.Key(), store.ErrDuplicateCertificate)
		}
		keys[c.Key()] = true
	}
	return nil
}

// Restore replaces every collection in st with the snapshot contents. The
// snapshot is validated first so a bad file changes nothing.
func Restore(ctx context.Context, st *store.Store, snap Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}
	if err := st.ReplaceStudents(ctx, snap.Students); err != nil {
		return err
	}
	if err := st.ReplaceGrades(ctx, snap.Grades); err != nil {
		return err
	}
	return st.ReplaceCertificates(ctx, snap.Certificates)
}

package reconcile

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"student-records/internal/config"
	"student-records/internal/domain"
	"student-records/internal/logger"
	"student-records/internal/remote"
	"student-records/internal/store"
)

// Fetcher is the Remote Reader.
type Fetcher interface {
	FetchStudentEvents(ctx context.Context) []remote.StudentEvent
	FetchCertificateEvents(ctx context.Context) []remote.CertificateEvent
}

// Report describes what one reconciliation pass did.
type Report struct {
	StudentsFetched     int  `json:"studentsFetched"`
	StudentsAdded       int  `json:"studentsAdded"`
	CertificatesFetched int  `json:"certificatesFetched"`
	CertificatesAdded   int  `json:"certificatesAdded"`
	Replaced            bool `json:"replaced"`
}

type Reconciler struct {
	fetch       Fetcher
	store       *store.Store
	refreshMode string
	log         zerolog.Logger
}

// New returns a Reconciler. refreshMode is config.RefreshMerge or
// config.RefreshReplace; anything else is treated as merge.
func New(fetch Fetcher, st *store.Store, refreshMode string) *Reconciler {
	return &Reconciler{
		fetch:       fetch,
		store:       st,
		refreshMode: refreshMode,
		log:         logger.Component("reconcile"),
	}
}

// Sync is the startup merge: fetch once, append unknown keys, keep every
// local record as it is. An empty fetch leaves the store untouched.
// Students and certificates are fetched and merged concurrently; the
// readers never fail, so only a store write can fail the group.
func (r *Reconciler) Sync(ctx context.Context) (Report, error) {
	var rep Report
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		students := r.fetch.FetchStudentEvents(gctx)
		rep.StudentsFetched = len(students)
		if len(students) == 0 {
			return nil
		}
		added := 0
		err := r.store.UpdateStudents(gctx, func(cur []domain.Student) ([]domain.Student, bool) {
			var merged []domain.Student
			merged, added = MergeStudents(cur, students)
			return merged, added > 0
		})
		if err != nil {
			return fmt.Errorf("merge students: %w", err)
		}
		rep.StudentsAdded = added
		return nil
	})

	g.Go(func() error {
		certs := r.fetch.FetchCertificateEvents(gctx)
		rep.CertificatesFetched = len(certs)
		if len(certs) == 0 {
			return nil
		}
		added := 0
		err := r.store.UpdateCertificates(gctx, func(cur []domain.Certificate) ([]domain.Certificate, bool) {
			var merged []domain.Certificate
			merged, added = MergeCertificates(cur, certs)
			return merged, added > 0
		})
		if err != nil {
			return fmt.Errorf("merge certificates: %w", err)
		}
		rep.CertificatesAdded = added
		return nil
	})

	if err := g.Wait(); err != nil {
		return rep, err
	}

	r.log.Info().
		Int("students_fetched", rep.StudentsFetched).
		Int("students_added", rep.StudentsAdded).
		Int("certificates_fetched", rep.CertificatesFetched).
		Int("certificates_added", rep.CertificatesAdded).
		Msg("reconciled with ledger")
	return rep, nil
}

// Refresh is the manual refresh. In merge mode it behaves like Sync. In
// replace mode a remote list with at least one usable event replaces the
// local collection with placeholders built from the events, dropping
// local-only records and local edits.
func (r *Reconciler) Refresh(ctx context.Context) (Report, error) {
	if r.refreshMode != config.RefreshReplace {
		return r.Sync(ctx)
	}

	var rep Report
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		students := r.fetch.FetchStudentEvents(gctx)
		rep.StudentsFetched = len(students)
		if len(students) == 0 {
			return nil
		}
		fresh, added := MergeStudents(nil, students)
		if added == 0 {
			return nil
		}
		if err := r.store.ReplaceAll(gctx, domain.CollectionStudents, fresh); err != nil {
			return fmt.Errorf("replace students: %w", err)
		}
		rep.StudentsAdded = added
		return nil
	})

	g.Go(func() error {
		certs := r.fetch.FetchCertificateEvents(gctx)
		rep.CertificatesFetched = len(certs)
		if len(certs) == 0 {
			return nil
		}
		fresh, added := MergeCertificates(nil, certs)
		if added == 0 {
			return nil
		}
		if err := r.store.ReplaceAll(gctx, domain.CollectionCertificates, fresh); err != nil {
			return fmt.Errorf("replace certificates: %w", err)
		}
		rep.CertificatesAdded = added
		return nil
	})

	err := g.Wait()
	rep.Replaced = rep.StudentsAdded > 0 || rep.CertificatesAdded > 0
	if err != nil {
		return rep, err
	}

	if rep.Replaced {
		r.log.Warn().
			Int("students", rep.StudentsAdded).
			Int("certificates", rep.CertificatesAdded).
			Msg("local collections replaced from ledger")
	}
	return rep, nil
}

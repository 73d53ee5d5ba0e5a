package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"student-records/internal/domain"
	"student-records/internal/logger"
)

var (
	ErrDuplicateStudent     = errors.New("student id already exists")
	ErrDuplicateCertificate = errors.New("certificate already issued")
	ErrUnknownCollection    = errors.New("unknown collection")
)

// CacheParseError reports a cached collection that could not be decoded.
// Load swallows it and falls back to seed data.
type CacheParseError struct {
	Collection string
	Err        error
}

func (e *CacheParseError) Error() string {
	return fmt.Sprintf("cache entry %q is unreadable: %v", e.Collection, e.Err)
}

func (e *CacheParseError) Unwrap() error { return e.Err }

type validator interface {
	Validate() error
}

// Load reads one collection from cache. Absent or unparsable entries
// yield seed unchanged; Load never fails.
func Load[T validator](ctx context.Context, cache Cache, log zerolog.Logger, collection string, seed []T) []T {
	raw, ok, err := cache.Get(ctx, collection)
	if err != nil {
		log.Warn().Err(err).Str("collection", collection).Msg("cache read failed, using seed")
		return seed
	}
	if !ok {
		return seed
	}

	records, err := decode[T](collection, raw)
	if err != nil {
		log.Error().Err(err).Str("collection", collection).Msg("discarding cached collection")
		return seed
	}
	return records
}

func decode[T validator](collection string, raw []byte) ([]T, error) {
	var records []T
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, &CacheParseError{Collection: collection, Err: err}
	}
	if records == nil {
		return nil, &CacheParseError{Collection: collection, Err: errors.New("not a list")}
	}
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return nil, &CacheParseError{Collection: collection, Err: fmt.Errorf("record %d: %w", i, err)}
		}
	}
	return records, nil
}

// Store owns the three record collections and their durable mirror.
// Every mutation rewrites the whole collection in the cache.
type Store struct {
	mu    sync.Mutex
	cache Cache
	log   zerolog.Logger

	students     []domain.Student
	grades       []domain.Grade
	certificates []domain.Certificate
}

// Open loads every collection from cache, falling back to the seed data.
func Open(ctx context.Context, cache Cache) *Store {
	log := logger.Component("store")
	return &Store{
		cache:        cache,
		log:          log,
		students:     Load(ctx, cache, log, domain.CollectionStudents, domain.SeedStudents()),
		grades:       Load(ctx, cache, log, domain.CollectionGrades, domain.SeedGrades()),
		certificates: Load(ctx, cache, log, domain.CollectionCertificates, domain.SeedCertificates()),
	}
}

// Students returns a copy of the student collection in insertion order.
func (s *Store) Students() []domain.Student {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Student(nil), s.students...)
}

// Grades returns a copy of the grade collection.
func (s *Store) Grades() []domain.Grade {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Grade(nil), s.grades...)
}

// Certificates returns a copy of the certificate collection.
func (s *Store) Certificates() []domain.Certificate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Certificate(nil), s.certificates...)
}

// HasStudent reports whether a student with id exists. Ids are compared
// after trimming whitespace.
func (s *Store) HasStudent(id string) bool {
	key := domain.Student{ID: id}.Key()
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range s.students {
		if st.Key() == key {
			return true
		}
	}
	return false
}

// HasCertificate reports whether a certificate with key k exists.
func (s *Store) HasCertificate(k domain.CertificateKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.certificates {
		if c.Key() == k {
			return true
		}
	}
	return false
}

// Append adds record to the end of the named collection and writes the
// collection to the cache. The record type must match the collection.
func (s *Store) Append(ctx context.Context, collection string, record any) error {
	switch r := record.(type) {
	case domain.Student:
		if collection == domain.CollectionStudents {
			return s.AppendStudent(ctx, r)
		}
	case domain.Grade:
		if collection == domain.CollectionGrades {
			return s.AppendGrade(ctx, r)
		}
	case domain.Certificate:
		if collection == domain.CollectionCertificates {
			return s.AppendCertificate(ctx, r)
		}
	}
	return fmt.Errorf("append %T to %q: %w", record, collection, ErrUnknownCollection)
}

// ReplaceAll overwrites the named collection and writes it to the cache.
func (s *Store) ReplaceAll(ctx context.Context, collection string, records any) error {
	switch r := records.(type) {
	case []domain.Student:
		if collection == domain.CollectionStudents {
			return s.ReplaceStudents(ctx, r)
		}
	case []domain.Grade:
		if collection == domain.CollectionGrades {
			return s.ReplaceGrades(ctx, r)
		}
	case []domain.Certificate:
		if collection == domain.CollectionCertificates {
			return s.ReplaceCertificates(ctx, r)
		}
	}
	return fmt.Errorf("replace %q with %T: %w", collection, records, ErrUnknownCollection)
}

func (s *Store) AppendStudent(ctx context.Context, st domain.Student) error {
	if err := st.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.students {
		if existing.Key() == st.Key() {
			return fmt.Errorf("append %s: %w", st.ID, ErrDuplicateStudent)
		}
	}
	next := append(append(make([]domain.Student, 0, len(s.students)+1), s.students...), st)
	if err := s.persist(ctx, domain.CollectionStudents, next); err != nil {
		return err
	}
	s.students = next
	return nil
}

func (s *Store) AppendGrade(ctx context.Context, g domain.Grade) error {
	if err := g.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next := append(append(make([]domain.Grade, 0, len(s.grades)+1), s.grades...), g)
	if err := s.persist(ctx, domain.CollectionGrades, next); err != nil {
		return err
	}
	s.grades = next
	return nil
}

func (s *Store) AppendCertificate(ctx context.Context, c domain.Certificate) error {
	if err := c.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.certificates {
		if existing.Key() == c.Key() {
			return fmt.Errorf("append %s: %w", c.Key(), ErrDuplicateCertificate)
		}
	}
	next := append(append(make([]domain.Certificate, 0, len(s.certificates)+1), s.certificates...), c)
	if err := s.persist(ctx, domain.CollectionCertificates, next); err != nil {
		return err
	}
	s.certificates = next
	return nil
}

func (s *Store) ReplaceStudents(ctx context.Context, students []domain.Student) error {
	if err := checkStudents(students); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next := append(make([]domain.Student, 0, len(students)), students...)
	if err := s.persist(ctx, domain.CollectionStudents, next); err != nil {
		return err
	}
	s.students = next
	return nil
}

// UpdateStudents runs fn on a copy of the students while holding the store
// lock and stores the result when fn reports a change. Concurrent appends
// cannot be lost between read and write.
func (s *Store) UpdateStudents(ctx context.Context, fn func([]domain.Student) ([]domain.Student, bool)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, changed := fn(append([]domain.Student(nil), s.students...))
	if !changed {
		return nil
	}
	if err := checkStudents(next); err != nil {
		return err
	}
	if err := s.persist(ctx, domain.CollectionStudents, next); err != nil {
		return err
	}
	s.students = next
	return nil
}

func checkStudents(students []domain.Student) error {
	seen := make(map[string]bool, len(students))
	for _, st := range students {
		if err := st.Validate(); err != nil {
			return err
		}
		if seen[st.Key()] {
			return fmt.Errorf("replace students: %s: %w", st.ID, ErrDuplicateStudent)
		}
		seen[st.Key()] = true
	}
	return nil
}

func (s *Store) ReplaceGrades(ctx context.Context, grades []domain.Grade) error {
	for _, g := range grades {
		if err := g.Validate(); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next := append(make([]domain.Grade, 0, len(grades)), grades...)
	if err := s.persist(ctx, domain.CollectionGrades, next); err != nil {
		return err
	}
	s.grades = next
	return nil
}

func (s *Store) ReplaceCertificates(ctx context.Context, certs []domain.Certificate) error {
	if err := checkCertificates(certs); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next := append(make([]domain.Certificate, 0, len(certs)), certs...)
	if err := s.persist(ctx, domain.CollectionCertificates, next); err != nil {
		return err
	}
	s.certificates = next
	return nil
}

// UpdateCertificates is UpdateStudents for certificates.
func (s *Store) UpdateCertificates(ctx context.Context, fn func([]domain.Certificate) ([]domain.Certificate, bool)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, changed := fn(append([]domain.Certificate(nil), s.certificates...))
	if !changed {
		return nil
	}
	if err := checkCertificates(next); err != nil {
		return err
	}
	if err := s.persist(ctx, domain.CollectionCertificates, next); err != nil {
		return err
	}
	s.certificates = next
	return nil
}

func checkCertificates(certs []domain.Certificate) error {
	seen := make(map[domain.CertificateKey]bool, len(certs))
	for _, c := range certs {
		if err := c.Validate(); err != nil {
			return err
		}
		if seen[c.Key()] {
			return fmt.Errorf("replace certificates: %s: %w", c.Key(), ErrDuplicateCertificate)
		}
		seen[c.Key()] = true
	}
	return nil
}

// persist must be called with s.mu held. Callers assign records to the
// store only after it succeeds, so a failed write leaves memory unchanged.
func (s *Store) persist(ctx context.Context, collection string, records any) error {
	b, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode %s: %w", collection, err)
	}
	if err := s.cache.Put(ctx, collection, b); err != nil {
		s.log.Error().Err(err).Str("collection", collection).Msg("cache write failed")
		return fmt.Errorf("persist %s: %w", collection, err)
	}
	s.log.Debug().Str("collection", collection).Int("bytes", len(b)).Msg("collection written")
	return nil
}

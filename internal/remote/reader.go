package remote

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"student-records/internal/ledger"
	"student-records/internal/logger"
)

// Event type substrings the reader filters on.
const (
	StudentCreated    = "StudentCreated"
	CertificateIssued = "CertificateIssued"
)

// EventSource is the event-query side of the ledger.
type EventSource interface {
	QueryEvents(ctx context.Context, q ledger.ModuleQuery, limit int) ([]ledger.Event, error)
}

// StudentEvent is the part of a student the ledger knows about.
type StudentEvent struct {
	ID             string
	Name           string
	ProfileAddress string
}

// CertificateEvent is the part of a certificate the ledger knows about.
type CertificateEvent struct {
	StudentID       string
	CertificateName string
}

// FetchError wraps a failed event query. Reader logs and swallows it.
type FetchError struct {
	Kind string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s events: %v", e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Reader turns the module's event log into partial records. Each fetch is
// one snapshot of at most one page, newest first.
type Reader struct {
	src   EventSource
	query ledger.ModuleQuery
	limit int
	log   zerolog.Logger
}

func NewReader(src EventSource, q ledger.ModuleQuery, limit int) *Reader {
	if limit <= 0 || limit > ledger.MaxEventPage {
		limit = ledger.MaxEventPage
	}
	return &Reader{src: src, query: q, limit: limit, log: logger.Component("remote")}
}

// FetchStudentEvents never fails; a query error yields an empty list.
func (r *Reader) FetchStudentEvents(ctx context.Context) []StudentEvent {
	events := r.fetch(ctx, StudentCreated)
	out := make([]StudentEvent, 0, len(events))
	for _, ev := range events {
		s := StudentEvent{
			ID:             getString(ev.ParsedJSON, "student_id"),
			Name:           getString(ev.ParsedJSON, "name"),
			ProfileAddress: getString(ev.ParsedJSON, "profile_address"),
		}
		if strings.TrimSpace(s.ID) == "" {
			r.log.Debug().Str("tx", ev.ID.TxDigest).Msg("skipping student event without id")
			continue
		}
		out = append(out, s)
	}
	r.log.Info().Int("events", len(out)).Msg("students read from ledger")
	return out
}

// FetchCertificateEvents never fails; a query error yields an empty list.
func (r *Reader) FetchCertificateEvents(ctx context.Context) []CertificateEvent {
	events := r.fetch(ctx, CertificateIssued)
	out := make([]CertificateEvent, 0, len(events))
	for _, ev := range events {
		c := CertificateEvent{
			StudentID:       getString(ev.ParsedJSON, "student_id"),
			CertificateName: getString(ev.ParsedJSON, "certificate_name"),
		}
		if strings.TrimSpace(c.StudentID) == "" || strings.TrimSpace(c.CertificateName) == "" {
			r.log.Debug().Str("tx", ev.ID.TxDigest).Msg("skipping certificate event without key")
			continue
		}
		out = append(out, c)
	}
	r.log.Info().Int("events", len(out)).Msg("certificates read from ledger")
	return out
}

func (r *Reader) fetch(ctx context.Context, kind string) []ledger.Event {
	events, err := r.src.QueryEvents(ctx, r.query, r.limit)
	if err != nil {
		ferr := &FetchError{Kind: kind, Err: err}
		r.log.Error().Err(ferr).Msg("event query failed, treating as empty")
		return nil
	}
	out := make([]ledger.Event, 0, len(events))
	for _, ev := range events {
		if strings.Contains(ev.Type, kind) {
			out = append(out, ev)
		}
	}
	return out
}

func getString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			switch t := v.(type) {
			case string:
				return t
			default:
				return fmt.Sprintf("%v", t)
			}
		}
	}
	return ""
}

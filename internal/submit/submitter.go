package submit

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"student-records/internal/domain"
	"student-records/internal/ledger"
	"student-records/internal/logger"
	"student-records/internal/store"
)

// Enrollment years accepted when creating a student.
const (
	MinEnrollmentYear = 2000
	MaxEnrollmentYear = 2100
)

// State of the most recent submission.
type State int

const (
	Idle State = iota
	Validating
	Executing
	Committed
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Validating:
		return "validating"
	case Executing:
		return "executing"
	case Committed:
		return "committed"
	case Failed:
		return "failed"
	}
	return "state(" + strconv.Itoa(int(s)) + ")"
}

// Session is a connected wallet: the address that signs and receives, and
// the capability that executes calls.
type Session struct {
	Address  string
	Executor ledger.Executor
}

func (s *Session) Connected() bool {
	return s != nil && strings.TrimSpace(s.Address) != "" && s.Executor != nil
}

// StudentInput is the pending create-student form. EnrollmentYear is the
// raw text the user entered.
type StudentInput struct {
	ID             string
	Name           string
	Email          string
	Major          string
	EnrollmentYear string
}

type GradeInput struct {
	StudentID  string
	CourseCode string
	CourseName string
	Credits    int
	Score      float64
	Semester   string
}

type CertificateInput struct {
	StudentID   string
	Name        string
	IssuedBy    string
	Date        string
	Description string
}

// Outcome describes a finished submission.
type Outcome struct {
	Token  string
	Op     string
	State  State
	Digest string
}

// Submitter validates one pending input, executes it on the ledger and,
// on success only, appends it to the store. One submission at a time.
type Submitter struct {
	session  *Session
	contract ledger.Contract
	store    *store.Store
	slot     chan struct{}
	log      zerolog.Logger

	mu    sync.Mutex
	state State
}

func New(session *Session, contract ledger.Contract, st *store.Store) *Submitter {
	return &Submitter{
		session:  session,
		contract: contract,
		store:    st,
		slot:     make(chan struct{}, 1),
		log:      logger.Component("submit"),
	}
}

// State returns the state of the current or most recent submission.
func (s *Submitter) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Busy reports whether a submission is in flight.
func (s *Submitter) Busy() bool {
	st := s.State()
	return st == Validating || st == Executing
}

func (s *Submitter) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// plan is what validation produces: the call to execute and the record to
// commit afterwards.
type plan struct {
	call   ledger.Call
	commit func(ctx context.Context) error
}

func (s *Submitter) run(ctx context.Context, op string, validate func() (*plan, error)) (*Outcome, error) {
	select {
	case s.slot <- struct{}{}:
	default:
		return nil, ErrBusy
	}
	defer func() { <-s.slot }()

	out := &Outcome{Token: uuid.NewString(), Op: op}
	log := s.log.With().Str("op", op).Str("token", out.Token).Logger()

	fail := func(err error) (*Outcome, error) {
		out.State = Failed
		s.setState(Failed)
		return out, err
	}

	s.setState(Validating)
	if !s.session.Connected() {
		log.Warn().Msg("no wallet session")
		return fail(ConnectionError{})
	}
	p, err := validate()
	if err != nil {
		log.Info().Err(err).Msg("validation failed")
		return fail(err)
	}

	s.setState(Executing)
	log.Info().Str("target", p.call.Target).Msg("executing")
	res, err := s.session.Executor.Execute(ctx, p.call, ledger.DefaultOptions())
	if err != nil {
		eerr := &ExecutionError{Op: op, Kind: Classify(err), Err: err}
		log.Error().Err(err).Str("kind", string(eerr.Kind)).Msg("execution failed")
		return fail(eerr)
	}
	if res != nil {
		out.Digest = res.Digest
	}

	out.State = Committed
	s.setState(Committed)
	if err := p.commit(ctx); err != nil {
		log.Error().Err(err).Str("digest", out.Digest).Msg("executed but local save failed")
		return out, fmt.Errorf("%s executed (digest %s) but was not saved locally: %w", op, out.Digest, err)
	}
	log.Info().Str("digest", out.Digest).Msg("committed")
	return out, nil
}

func required(fields ...[2]string) error {
	for _, f := range fields {
		if strings.TrimSpace(f[1]) == "" {
			return domain.ValidationError{Field: f[0], Value: f[1], Message: "is required"}
		}
	}
	return nil
}

// ParseEnrollmentYear accepts integers in [MinEnrollmentYear, MaxEnrollmentYear].
func ParseEnrollmentYear(raw string) (int, error) {
	year, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || year < MinEnrollmentYear || year > MaxEnrollmentYear {
		return 0, domain.ValidationError{
			Field:   "enrollment_year",
			Value:   raw,
			Message: fmt.Sprintf("must be a year between %d and %d", MinEnrollmentYear, MaxEnrollmentYear),
		}
	}
	return year, nil
}

func (s *Submitter) CreateStudent(ctx context.Context, in StudentInput) (*Outcome, error) {
	return s.run(ctx, "create student", func() (*plan, error) {
		if err := required(
			[2]string{"id", in.ID},
			[2]string{"name", in.Name},
			[2]string{"email", in.Email},
			[2]string{"major", in.Major},
		); err != nil {
			return nil, err
		}
		year, err := ParseEnrollmentYear(in.EnrollmentYear)
		if err != nil {
			return nil, err
		}
		if s.store.HasStudent(in.ID) {
			return nil, domain.ValidationError{Field: "id", Value: in.ID, Message: "already exists"}
		}

		student := domain.Student{
			ID:     strings.TrimSpace(in.ID),
			Name:   in.Name,
			Email:  in.Email,
			Major:  in.Major,
			Year:   year,
			Active: true,
		}
		return &plan{
			call: s.contract.CreateStudent(student),
			commit: func(ctx context.Context) error {
				return s.store.AppendStudent(ctx, student)
			},
		}, nil
	})
}

func (s *Submitter) AddGrade(ctx context.Context, in GradeInput) (*Outcome, error) {
	return s.run(ctx, "add grade", func() (*plan, error) {
		if err := required(
			[2]string{"studentId", in.StudentID},
			[2]string{"courseCode", in.CourseCode},
			[2]string{"courseName", in.CourseName},
		); err != nil {
			return nil, err
		}
		if in.Credits < 0 {
			return nil, domain.ValidationError{Field: "credits", Value: in.Credits, Message: "must not be negative"}
		}

		grade := domain.Grade{
			StudentID:  strings.TrimSpace(in.StudentID),
			CourseCode: in.CourseCode,
			CourseName: in.CourseName,
			Credits:    in.Credits,
			Score:      in.Score,
			Semester:   in.Semester,
		}
		if err := grade.Validate(); err != nil {
			return nil, err
		}
		return &plan{
			call: s.contract.AddGrade(grade, s.session.Address),
			commit: func(ctx context.Context) error {
				return s.store.AppendGrade(ctx, grade)
			},
		}, nil
	})
}

func (s *Submitter) IssueCertificate(ctx context.Context, in CertificateInput) (*Outcome, error) {
	return s.run(ctx, "issue certificate", func() (*plan, error) {
		if err := required(
			[2]string{"studentId", in.StudentID},
			[2]string{"name", in.Name},
			[2]string{"issuedBy", in.IssuedBy},
			[2]string{"date", in.Date},
		); err != nil {
			return nil, err
		}
		issuedAt, err := domain.UnixDate(in.Date)
		if err != nil {
			return nil, domain.ValidationError{Field: "date", Value: in.Date, Message: "must be a date in YYYY-MM-DD form"}
		}

		cert := domain.Certificate{
			StudentID:   strings.TrimSpace(in.StudentID),
			Name:        strings.TrimSpace(in.Name),
			IssuedBy:    in.IssuedBy,
			Date:        strings.TrimSpace(in.Date),
			Description: in.Description,
		}
		if s.store.HasCertificate(cert.Key()) {
			return nil, domain.ValidationError{Field: "name", Value: in.Name, Message: "already issued to this student"}
		}
		return &plan{
			call: s.contract.IssueCertificate(cert, issuedAt, s.session.Address),
			commit: func(ctx context.Context) error {
				return s.store.AppendCertificate(ctx, cert)
			},
		}, nil
	})
}

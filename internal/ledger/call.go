package ledger

import (
	"context"
	"encoding/json"
	"math"
	"strings"

	"student-records/internal/domain"
)

type ArgKind string

const (
	ArgObject  ArgKind = "object"
	ArgString  ArgKind = "string"
	ArgU64     ArgKind = "u64"
	ArgAddress ArgKind = "address"
)

// Arg is one typed scalar in a call's ordered argument list.
type Arg struct {
	Kind  ArgKind `json:"kind"`
	Value any     `json:"value"`
}

func Object(id string) Arg { return Arg{Kind: ArgObject, Value: id} }
func String(s string) Arg { return Arg{Kind: ArgString, Value: s} }
func U64(n uint64) Arg { return Arg{Kind: ArgU64, Value: n} }
func Address(a string) Arg { return Arg{Kind: ArgAddress, Value: a} }

// Call describes a single move call: "<package>::<module>::<function>"
// plus its arguments.
type Call struct {
	Target    string `json:"target"`
	Arguments []Arg  `json:"arguments"`
}

// Function returns the last path segment of Target.
func (c Call) Function() string {
	if i := strings.LastIndex(c.Target, "::"); i >= 0 {
		return c.Target[i+2:]
	}
	return c.Target
}

type Options struct {
	ShowEffects       bool `json:"showEffects"`
	ShowObjectChanges bool `json:"showObjectChanges"`
}

// DefaultOptions requests effects and object changes.
func DefaultOptions() Options {
	return Options{ShowEffects: true, ShowObjectChanges: true}
}

type Result struct {
	Digest        string          `json:"digest"`
	Effects       json.RawMessage `json:"effects,omitempty"`
	ObjectChanges json.RawMessage `json:"objectChanges,omitempty"`
}

// Executor signs and executes a call. Implementations may block on
// network I/O; errors carry a human-readable message.
type Executor interface {
	Execute(ctx context.Context, call Call, opts Options) (*Result, error)
}

// GradeYear is the fixed academic year sent with every grade.
const GradeYear = 2024

// Contract holds the deployed package coordinates.
type Contract struct {
	PackageID   string
	Module      string
	GradeModule string
	AdminCap    string
	Registry    string
}

func (c Contract) target(module, fn string) string {
	return c.PackageID + "::" + module + "::" + fn
}

func (c Contract) CreateStudent(s domain.Student) Call {
	return Call{
		Target: c.target(c.Module, "create_student"),
		Arguments: []Arg{
			Object(c.AdminCap),
			Object(c.Registry),
			String(s.ID),
			String(s.Name),
			String(s.Email),
			String(s.Major),
			U64(uint64(s.Year)),
		},
	}
}

func (c Contract) AddGrade(g domain.Grade, recipient string) Call {
	return Call{
		Target: c.target(c.GradeModule, "add_grade"),
		Arguments: []Arg{
			Object(c.AdminCap),
			String(g.StudentID),
			String(g.CourseCode),
			String(g.CourseName),
			U64(uint64(g.Credits)),
			U64(ScaleScore(g.Score)),
			String(g.Semester),
			U64(GradeYear),
			Address(recipient),
		},
	}
}

// IssueCertificate needs the issue date already converted to Unix seconds.
func (c Contract) IssueCertificate(cert domain.Certificate, issuedAt uint64, recipient string) Call {
	return Call{
		Target: c.target(c.Module, "issue_certificate"),
		Arguments: []Arg{
			Object(c.AdminCap),
			String(cert.StudentID),
			String(cert.Name),
			String(cert.IssuedBy),
			U64(issuedAt),
			String(cert.Description),
			Address(recipient),
		},
	}
}

// ScaleScore maps a 0-10 score to the on-chain integer (tenths, floored).
func ScaleScore(score float64) uint64 {
	if math.IsNaN(score) || score <= 0 {
		return 0
	}
	return uint64(math.Floor(score * 10))
}

package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"student-records/internal/domain"
	"student-records/internal/submit"
)

func NewCreateStudentCommand(rootOpts *RootOptions) *cobra.Command {
	in := submit.StudentInput{}

	cmd := &cobra.Command{
		Use:   "create-student",
		Short: "Create a student on the ledger and record it locally",
		Long: `Validate the student, submit create_student through the configured
signer, and append the student to the local store once the ledger
accepts it. Nothing is stored when validation or execution fails.

Example:
  records create-student --id SV010 --name "Pham Van D" \
    --email vand@university.edu --major Physics --year 2025`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := rootOpts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			out, err := app.Submitter.CreateStudent(cmd.Context(), in)
			return reportSubmission(rootOpts.formatter(cmd), out, err, "Student "+in.ID+" created")
		},
	}

	cmd.Flags().StringVar(&in.ID, "id", "", "student id")
	cmd.Flags().StringVar(&in.Name, "name", "", "full name")
	cmd.Flags().StringVar(&in.Email, "email", "", "email address")
	cmd.Flags().StringVar(&in.Major, "major", "", "major")
	cmd.Flags().StringVar(&in.EnrollmentYear, "year", "", fmt.Sprintf("enrollment year (%d-%d)", submit.MinEnrollmentYear, submit.MaxEnrollmentYear))
	return cmd
}

func NewAddGradeCommand(rootOpts *RootOptions) *cobra.Command {
	in := submit.GradeInput{}

	cmd := &cobra.Command{
		Use:   "add-grade",
		Short: "Record a course grade on the ledger and locally",
		Long: `Submit add_grade for a student. The 0-10 score is sent in tenths
(8.5 becomes 85). The grade is appended locally once the ledger accepts it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := rootOpts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			out, err := app.Submitter.AddGrade(cmd.Context(), in)
			return reportSubmission(rootOpts.formatter(cmd), out, err,
				fmt.Sprintf("Grade %s for %s recorded", in.CourseCode, in.StudentID))
		},
	}

	cmd.Flags().StringVar(&in.StudentID, "student", "", "student id")
	cmd.Flags().StringVar(&in.CourseCode, "course-code", "", "course code")
	cmd.Flags().StringVar(&in.CourseName, "course-name", "", "course name")
	cmd.Flags().IntVar(&in.Credits, "credits", 3, "course credits")
	cmd.Flags().Float64Var(&in.Score, "score", 0, "score between 0 and 10")
	cmd.Flags().StringVar(&in.Semester, "semester", "", "semester label")
	return cmd
}

func NewIssueCertificateCommand(rootOpts *RootOptions) *cobra.Command {
	in := submit.CertificateInput{}

	cmd := &cobra.Command{
		Use:   "issue-certificate",
		Short: "Issue a certificate on the ledger and record it locally",
		Long: `Submit issue_certificate. The date is given as YYYY-MM-DD and sent as
Unix seconds at midnight UTC. A student cannot hold two certificates
with the same name.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := rootOpts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			out, err := app.Submitter.IssueCertificate(cmd.Context(), in)
			return reportSubmission(rootOpts.formatter(cmd), out, err,
				fmt.Sprintf("Certificate %q issued to %s", in.Name, in.StudentID))
		},
	}

	cmd.Flags().StringVar(&in.StudentID, "student", "", "student id")
	cmd.Flags().StringVar(&in.Name, "name", "", "certificate name")
	cmd.Flags().StringVar(&in.IssuedBy, "issued-by", "", "issuing body")
	cmd.Flags().StringVar(&in.Date, "date", "", "issue date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&in.Description, "description", "", "optional description")
	return cmd
}

// Error codes reported for failed submissions.
const (
	CodeBusy       = "E_BUSY"
	CodeConnection = "E_CONNECTION"
	CodeValidation = "E_VALIDATION"
	CodeExecution  = "E_EXECUTION"
	CodeLocalSave  = "E_LOCAL_SAVE"
)

func reportSubmission(f *OutputFormatter, out *submit.Outcome, err error, done string) error {
	if err == nil {
		return f.Success(out, func(w io.Writer) error {
			_, err := fmt.Fprintf(w, "%s (digest %s)\n", done, out.Digest)
			return err
		})
	}

	code, msg := classifySubmitError(err)
	var details any
	var eerr *submit.ExecutionError
	if errors.As(err, &eerr) {
		details = map[string]string{"kind": string(eerr.Kind), "cause": eerr.Err.Error()}
	}
	if out != nil && out.State == submit.Committed {
		code = CodeLocalSave
		details = out
	}
	if ferr := f.Error(code, msg, details); ferr != nil {
		return ferr
	}
	return &ExitError{Code: ExitFailure, Message: "submission failed", Err: err, Reported: true}
}

func classifySubmitError(err error) (code, msg string) {
	var (
		verr domain.ValidationError
		cerr submit.ConnectionError
		eerr *submit.ExecutionError
	)
	switch {
	case errors.Is(err, submit.ErrBusy):
		return CodeBusy, err.Error()
	case errors.As(err, &cerr):
		return CodeConnection, err.Error()
	case errors.As(err, &verr):
		return CodeValidation, err.Error()
	case errors.As(err, &eerr):
		return CodeExecution, eerr.UserMessage()
	}
	return CodeExecution, err.Error()
}

package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"student-records/internal/domain"
	"student-records/internal/store"
)

type StudentsOptions struct {
	*RootOptions
	Search string
	Recent int
}

func NewStudentsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StudentsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "students",
		Short: "List students",
		Long: `List students in store order.

Examples:
  records students
  records students --search nguyen
  records students --recent 5 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			var students []domain.Student
			switch {
			case opts.Search != "":
				students = app.Store.SearchStudents(opts.Search)
			case opts.Recent > 0:
				students = app.Store.RecentStudents(opts.Recent)
			default:
				students = app.Store.Students()
			}
			return opts.formatter(cmd).Success(students, func(w io.Writer) error {
				return studentTable(w, students)
			})
		},
	}

	cmd.Flags().StringVar(&opts.Search, "search", "", "case-insensitive match on name or id")
	cmd.Flags().IntVar(&opts.Recent, "recent", 0, "show only the N most recently added students")
	cmd.MarkFlagsMutuallyExclusive("search", "recent")

	return cmd
}

type FilterOptions struct {
	*RootOptions
	StudentID string
}

func NewGradesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FilterOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "grades",
		Short: "List grades",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			grades := filterByStudent(app.Store.Grades(), opts.StudentID, func(g domain.Grade) string { return g.StudentID })
			return opts.formatter(cmd).Success(grades, func(w io.Writer) error {
				rows := make([][]string, 0, len(grades))
				for _, g := range grades {
					rows = append(rows, []string{g.StudentID, g.CourseCode, g.CourseName,
						strconv.Itoa(g.Credits), strconv.FormatFloat(g.Score, 'f', -1, 64), g.Semester})
				}
				return table(w, []string{"STUDENT", "COURSE", "NAME", "CREDITS", "GRADE", "SEMESTER"}, rows)
			})
		},
	}

	cmd.Flags().StringVar(&opts.StudentID, "student", "", "only this student's grades")
	return cmd
}

func NewCertificatesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FilterOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "certificates",
		Short: "List certificates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			certs := filterByStudent(app.Store.Certificates(), opts.StudentID, func(c domain.Certificate) string { return c.StudentID })
			return opts.formatter(cmd).Success(certs, func(w io.Writer) error {
				rows := make([][]string, 0, len(certs))
				for _, c := range certs {
					rows = append(rows, []string{c.StudentID, c.Name, c.IssuedBy, c.Date, c.Description})
				}
				return table(w, []string{"STUDENT", "CERTIFICATE", "ISSUED BY", "DATE", "DESCRIPTION"}, rows)
			})
		},
	}

	cmd.Flags().StringVar(&opts.StudentID, "student", "", "only this student's certificates")
	return cmd
}

func NewStatsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show collection counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			stats := app.Store.Stats()
			return opts.formatter(cmd).Success(stats, func(w io.Writer) error {
				return statsTable(w, stats)
			})
		},
	}
}

func filterByStudent[T any](in []T, id string, key func(T) string) []T {
	id = strings.TrimSpace(id)
	if id == "" {
		return in
	}
	out := make([]T, 0, len(in))
	for _, v := range in {
		if key(v) == id {
			out = append(out, v)
		}
	}
	return out
}

func studentTable(w io.Writer, students []domain.Student) error {
	rows := make([][]string, 0, len(students))
	for _, s := range students {
		status := "active"
		if !s.Active {
			status = "inactive"
		}
		rows = append(rows, []string{s.ID, s.Name, s.Email, s.Major, strconv.Itoa(s.Year),
			strconv.FormatFloat(s.GPA, 'f', 2, 64), strconv.Itoa(s.Credits), status})
	}
	return table(w, []string{"ID", "NAME", "EMAIL", "MAJOR", "YEAR", "GPA", "CREDITS", "STATUS"}, rows)
}

func statsTable(w io.Writer, s store.Stats) error {
	return table(w, []string{"STUDENTS", "ACTIVE", "GRADES", "CERTIFICATES"}, [][]string{{
		strconv.Itoa(s.Students), strconv.Itoa(s.ActiveStudents),
		strconv.Itoa(s.Grades), strconv.Itoa(s.Certificates),
	}})
}

func table(w io.Writer, header []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, r := range rows {
		fmt.Fprintln(tw, strings.Join(r, "\t"))
	}
	return tw.Flush()
}

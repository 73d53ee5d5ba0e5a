package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"student-records/internal/domain"
	"student-records/internal/export"
)

type ExportOptions struct {
	*RootOptions
	Output string
}

func NewExportCSVCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:       "export-csv <students|grades|certificates>",
		Short:     "Export one collection as CSV",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{domain.CollectionStudents, domain.CollectionGrades, domain.CollectionCertificates},
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			return writeOutput(cmd, opts.Output, func(w io.Writer) error {
				switch args[0] {
				case domain.CollectionStudents:
					return export.WriteStudentsCSV(w, app.Store.Students())
				case domain.CollectionGrades:
					return export.WriteGradesCSV(w, app.Store.Grades())
				default:
					return export.WriteCertificatesCSV(w, app.Store.Certificates())
				}
			})
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "-", "output file (- for stdout)")
	return cmd
}

func NewExportXMLCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export-xml",
		Short: "Export per-student transcripts as XML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			return writeOutput(cmd, opts.Output, func(w io.Writer) error {
				return export.WriteTranscriptXML(w, app.Store.Students(), app.Store.Grades(), app.Store.Certificates())
			})
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "-", "output file (- for stdout)")
	return cmd
}

func writeOutput(cmd *cobra.Command, path string, write func(io.Writer) error) error {
	if path == "" || path == "-" {
		return write(cmd.OutOrStdout())
	}
	f, err := os.Create(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create output file", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return WrapExitError(ExitFailure, "export failed", err)
	}
	if err := f.Close(); err != nil {
		return WrapExitError(ExitFailure, "export failed", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", path)
	return nil
}

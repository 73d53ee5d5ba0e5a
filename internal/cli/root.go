package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"student-records/internal/config"
	"student-records/internal/logger"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	Sync       bool

	// Config is loaded before any subcommand runs.
	Config *config.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the records CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "records",
		Short: "Student records mirrored to a ledger",
		Long: `Keeps students, grades and certificates in a local cache and mirrors
new records as ledger transactions. Records created elsewhere are
discovered from the ledger's event log and merged in.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			load := config.Load
			if opts.ConfigPath != "" {
				load = func() (*config.Config, error) { return config.LoadFrom(opts.ConfigPath) }
			}
			cfg, err := load()
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load config", err)
			}
			level := cfg.Logging.Level
			if opts.Verbose {
				level = "debug"
			}
			logger.Init(level, cfg.Logging.Format)
			opts.Config = cfg
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default $CONFIG_PATH or ./records.yaml)")
	cmd.PersistentFlags().BoolVar(&opts.Sync, "sync", false, "merge ledger events into the store before running the command")

	cmd.AddCommand(NewSyncCommand(opts))
	cmd.AddCommand(NewRefreshCommand(opts))
	cmd.AddCommand(NewStudentsCommand(opts))
	cmd.AddCommand(NewGradesCommand(opts))
	cmd.AddCommand(NewCertificatesCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))
	cmd.AddCommand(NewCreateStudentCommand(opts))
	cmd.AddCommand(NewAddGradeCommand(opts))
	cmd.AddCommand(NewIssueCertificateCommand(opts))
	cmd.AddCommand(NewExportCSVCommand(opts))
	cmd.AddCommand(NewExportXMLCommand(opts))
	cmd.AddCommand(NewBackupCommand(opts))
	cmd.AddCommand(NewRestoreCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

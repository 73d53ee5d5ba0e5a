package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"student-records/internal/reconcile"
)

func NewSyncCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Merge ledger events into the local store",
		Long: `Fetch the newest StudentCreated and CertificateIssued events and add a
placeholder record for every id the store does not know yet. Local
records are never overwritten. An empty or failed fetch changes nothing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReconcile(cmd, opts, false)
		},
	}
}

func NewRefreshCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Manually refresh from the ledger",
		Long: `Re-run reconciliation. With reconcile.refresh_mode "merge" (the
default) this is the same as sync. With "replace" the students and
certificates collections are rebuilt from ledger events only.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReconcile(cmd, opts, true)
		},
	}
}

func runReconcile(cmd *cobra.Command, opts *RootOptions, refresh bool) error {
	ctx := cmd.Context()
	app, err := opts.open(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	var rep reconcile.Report
	if refresh {
		rep, err = app.Reconciler.Refresh(ctx)
	} else {
		rep, err = app.Reconciler.Sync(ctx)
	}
	if err != nil {
		return WrapExitError(ExitFailure, "reconcile failed", err)
	}

	return opts.formatter(cmd).Success(rep, func(w io.Writer) error {
		fmt.Fprintf(w, "Fetched %d student and %d certificate events\n", rep.StudentsFetched, rep.CertificatesFetched)
		if rep.Replaced {
			fmt.Fprintln(w, "Collections replaced from ledger events")
		}
		_, err := fmt.Fprintf(w, "Added %d students, %d certificates\n", rep.StudentsAdded, rep.CertificatesAdded)
		return err
	})
}

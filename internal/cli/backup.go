package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"student-records/internal/backup"
	"student-records/internal/sftpclient"
)

type BackupOptions struct {
	*RootOptions
	Dir    string
	Upload bool
}

// BackupResult describes a written snapshot.
type BackupResult struct {
	Path         string `json:"path,omitempty"`
	Remote       string `json:"remote,omitempty"`
	Students     int    `json:"students"`
	Grades       int    `json:"grades"`
	Certificates int    `json:"certificates"`
}

func NewBackupCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BackupOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write a compressed snapshot of all collections",
		Long: `Write students, grades and certificates to a brotli-compressed JSON
snapshot named records-<timestamp>.json.br. With --upload the snapshot is
also sent to the configured SFTP server.

Examples:
  records backup --dir ./backups
  records backup --upload`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			now := time.Now()
			snap := backup.Take(app.Store, now)
			var buf bytes.Buffer
			if err := backup.Write(&buf, snap); err != nil {
				return WrapExitError(ExitFailure, "backup failed", err)
			}

			name := backup.FileName(now)
			res := BackupResult{
				Students:     len(snap.Students),
				Grades:       len(snap.Grades),
				Certificates: len(snap.Certificates),
			}
			if opts.Dir != "" {
				res.Path = filepath.Join(opts.Dir, name)
				if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
					return WrapExitError(ExitCommandError, "failed to create backup dir", err)
				}
				if err := os.WriteFile(res.Path, buf.Bytes(), 0o644); err != nil {
					return WrapExitError(ExitFailure, "failed to write backup", err)
				}
			}
			if opts.Upload {
				cfg := sftpclient.FromConfig(app.Config.SFTP)
				if err := sftpclient.Upload(ctx, cfg, bytes.NewReader(buf.Bytes()), name); err != nil {
					return WrapExitError(ExitFailure, "backup upload failed", err)
				}
				res.Remote = path.Join(cfg.RemoteDir, name)
			}

			return opts.formatter(cmd).Success(res, func(w io.Writer) error {
				if res.Path != "" {
					fmt.Fprintf(w, "Wrote %s\n", res.Path)
				}
				if res.Remote != "" {
					fmt.Fprintf(w, "Uploaded %s\n", res.Remote)
				}
				_, err := fmt.Fprintf(w, "%d students, %d grades, %d certificates\n", res.Students, res.Grades, res.Certificates)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&opts.Dir, "dir", ".", "directory for the snapshot file (empty to skip writing locally)")
	cmd.Flags().BoolVar(&opts.Upload, "upload", false, "upload the snapshot over SFTP")
	return cmd
}

func NewRestoreCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <snapshot.json.br>",
		Short: "Replace all collections from a snapshot",
		Long: `Replace students, grades and certificates with the contents of a
snapshot written by backup. The snapshot is checked first; a snapshot
with duplicate ids or certificate keys changes nothing.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			f, err := os.Open(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to open snapshot", err)
			}
			defer f.Close()

			snap, err := backup.Read(f)
			if err != nil {
				return WrapExitError(ExitFailure, "failed to read snapshot", err)
			}

			app, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := backup.Restore(ctx, app.Store, snap); err != nil {
				return WrapExitError(ExitFailure, "restore failed", err)
			}
			stats := app.Store.Stats()
			return opts.formatter(cmd).Success(stats, func(w io.Writer) error {
				fmt.Fprintf(w, "Restored snapshot from %s\n", snap.CreatedAt.Format(time.RFC3339))
				return statsTable(w, stats)
			})
		},
	}
}

package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/wcprobe/internal/harness"
	"github.com/roach88/wcprobe/internal/logging"
	"github.com/roach88/wcprobe/internal/store"
)

// ReportOptions holds flags for the report command.
type ReportOptions struct {
	*RootOptions
	Database string
	Logs     bool
}

// RunWithLogs is the JSON payload of report --logs.
type RunWithLogs struct {
	Run  harness.Run     `json:"run"`
	Logs []logging.Entry `json:"logs"`
}

// NewReportCommand creates the report command.
func NewReportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "report <run-id>",
		Short: "Re-render a stored run",
		Long: `Render the report of a run stored in the run history.

The Markdown report is printed in text mode and the JSON run document with
--format json. --logs appends the run's log export; in JSON mode the run and
its log entries are returned together in one response.

Example:
  wcprobe report --db ./runs.db 01936c1e-7a52-7c3e-9d7b-0c4f3b9a2e11
  wcprobe report --db ./runs.db --logs <run-id>`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite run history (required)")
	cmd.Flags().BoolVar(&opts.Logs, "logs", false, "also print the run's log export")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runReport(opts *ReportOptions, runID string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := store.Open(opts.Database)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, "failed to open database", err)
	}
	defer st.Close()

	run, err := st.ReadRun(cmd.Context(), runID)
	if errors.Is(err, store.ErrRunNotFound) {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("run %s not found", runID), err)
	}
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, "failed to read run", err)
	}

	if !opts.Logs {
		if err := printRun(formatter, run); err != nil {
			return WrapExitError(ExitCommandError, "failed to write output", err)
		}
		return nil
	}

	entries, err := st.ReadLogEntries(cmd.Context(), runID)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, "failed to read log entries", err)
	}
	if entries == nil {
		entries = []logging.Entry{}
	}

	if opts.Format == "json" {
		return formatter.SuccessForRun(run.ID, RunWithLogs{Run: run, Logs: entries})
	}

	data, err := logging.MarshalEntries(entries)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, "failed to export logs", err)
	}
	if err := printRun(formatter, run); err != nil {
		return WrapExitError(ExitCommandError, "failed to write output", err)
	}
	_, err = fmt.Fprintf(formatter.Writer, "\n## Logs\n\n```json\n%s```\n", data)
	return err
}

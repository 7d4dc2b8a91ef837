package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/wcprobe/internal/config"
	"github.com/roach88/wcprobe/internal/harness"
	"github.com/roach88/wcprobe/internal/logging"
	"github.com/roach88/wcprobe/internal/report"
	"github.com/roach88/wcprobe/internal/scenarios"
	"github.com/roach88/wcprobe/internal/session"
	"github.com/roach88/wcprobe/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	TopicID  string
	Groups   []string
	Database string
	OutDir   string

	// IDGenerator allows overriding the run ID generator (for testing).
	// If nil, defaults to harness.UUIDv7Generator.
	IDGenerator harness.IDGenerator

	// Clock allows overriding the wall clock used for case durations (for
	// testing). If nil, defaults to harness.SystemClock.
	Clock harness.Clock
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return newRunCommand(&RunOptions{RootOptions: rootOpts})
}

func newRunCommand(opts *RunOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the edge-case battery against a session",
		Long: `Connect a session client, validate it and run the edge-case battery.

Cases that need an existing topic are skipped unless --topic (or topic_id in
the config, or WCPROBE_TOPIC_ID) is set. Without --group the default battery
runs; the opt-in groups "node" and "reconnect" run only when named. The report is printed as Markdown, or
as a JSON run document with --format json. With --out, the Markdown report,
the log export and a JUnit file are written to that directory. With --db, the
run and its log are stored in the run history.

Exits 1 when any case failed.

Example:
  wcprobe run --topic 0.0.5001
  wcprobe run --group connection --group account --db ./runs.db --out ./reports
  wcprobe run --topic 0.0.5001 --group node --group reconnect`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProbe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.TopicID, "topic", "", "existing topic ID for message cases")
	cmd.Flags().StringArrayVarP(&opts.Groups, "group", "g", nil, "only run cases in this group (repeatable)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite run history")
	cmd.Flags().StringVarP(&opts.OutDir, "out", "o", "", "directory for report files")

	return cmd
}

func runProbe(opts *RunOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	ops := newOpsLogger(opts.RootOptions, cmd.ErrOrStderr())

	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, "failed to load config", err)
	}
	applyRunFlags(opts, &cfg)
	if err := cfg.Validate(); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, "invalid run flags", err)
	}

	log, err := newHarnessLogger(opts.RootOptions, cfg, cmd.ErrOrStderr())
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, "invalid log level", err)
	}

	ctx, stop := signalContext(cmd, ops)
	defer stop()

	ops.Debug("connecting session", "network", cfg.Sandbox.Network, "account", cfg.Sandbox.AccountID)
	client, err := connectSandbox(ctx, cfg)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeSession, "failed to connect session", err)
	}
	defer func() {
		if err := client.Disconnect(context.WithoutCancel(ctx)); err != nil {
			ops.Error("error disconnecting session", "error", err)
		}
	}()

	validation := harness.ValidateConnection(client)
	if validation.Valid {
		log.Info("Connection validated",
			"account_id", validation.AccountID,
			"network", validation.Network.String(),
			"signer_count", validation.SignerCount)
	} else {
		log.Warn("Connection validation failed", "error", validation.Error)
	}

	suite, err := scenarios.Select(session.NewCapabilities(client), client, log, cfg.Groups...)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeSuite, "failed to select groups", err)
	}
	suite.WithRunner(harness.NewRunner(log, opts.Clock))
	if opts.IDGenerator != nil {
		suite.WithIDGenerator(opts.IDGenerator)
	}

	params := harness.Params{}
	if cfg.TopicID != "" {
		params[harness.ParamTopicID] = cfg.TopicID
	}

	log.Info("Running edge case tests")
	run := suite.Execute(ctx, params)
	log.Info(fmt.Sprintf("Edge case tests: %d/%d passed", run.Summary.Passed, run.Summary.Total))

	// Files and history are written before stdout so a failure is reported
	// as the only output document.
	if cfg.ReportDir != "" {
		paths, err := writeArtifacts(cfg.ReportDir, run, log)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, "failed to write reports", err)
		}
		for _, p := range paths {
			ops.Info("report written", "path", p)
		}
	}

	if cfg.Database != "" {
		// Persisting must survive an interrupt that cut the run short.
		if err := persistRun(context.WithoutCancel(ctx), cfg.Database, run, log, ops); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeStore, "failed to store run", err)
		}
	}

	if err := printRun(formatter, run); err != nil {
		return WrapExitError(ExitCommandError, "failed to write output", err)
	}

	if err := ctx.Err(); err != nil {
		return WrapExitError(ExitFailure, "run interrupted", err)
	}
	if run.Summary.Failed > 0 {
		return NewExitError(ExitFailure,
			fmt.Sprintf("%d of %d cases failed", run.Summary.Failed, run.Summary.Total))
	}
	return nil
}

// applyRunFlags overlays explicitly set flags on cfg.
func applyRunFlags(opts *RunOptions, cfg *config.Config) {
	if opts.TopicID != "" {
		cfg.TopicID = opts.TopicID
	}
	if len(opts.Groups) > 0 {
		cfg.Groups = opts.Groups
	}
	if opts.Database != "" {
		cfg.Database = opts.Database
	}
	if opts.OutDir != "" {
		cfg.ReportDir = opts.OutDir
	}
}

// printRun writes run as Markdown (text) or as the JSON run document.
func printRun(f *OutputFormatter, run harness.Run) error {
	if f.Format == "json" {
		data, err := report.JSON(run)
		if err != nil {
			return err
		}
		_, err = f.Writer.Write(data)
		return err
	}
	_, err := fmt.Fprint(f.Writer, report.FormatRun(run))
	return err
}

// writeArtifacts writes the Markdown report, the JUnit report and the log
// export for run into dir and returns the written paths.
func writeArtifacts(dir string, run harness.Run, log *logging.Logger) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}

	junit, err := report.JUnit(run)
	if err != nil {
		return nil, err
	}

	var paths []string
	write := func(name string, data []byte) error {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
		paths = append(paths, path)
		return nil
	}

	if err := write("test-results-"+run.ID+".md", []byte(report.FormatRun(run))); err != nil {
		return nil, err
	}
	if err := write("junit-"+run.ID+".xml", junit); err != nil {
		return nil, err
	}
	log.Info("Results exported")

	logs, err := log.Export()
	if err != nil {
		return nil, err
	}
	if err := write("test-logs-"+run.ID+".json", logs); err != nil {
		return nil, err
	}
	log.Info("Logs exported")

	return paths, nil
}

// persistRun stores run and the log entries recorded so far.
func persistRun(ctx context.Context, path string, run harness.Run, log *logging.Logger, ops *slog.Logger) error {
	ops.Debug("opening database", "path", path)
	st, err := store.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			ops.Error("error closing database", "error", closeErr)
		}
	}()

	if err := st.WriteRun(ctx, run); err != nil {
		return err
	}
	if err := st.WriteLogEntries(ctx, run.ID, log.Entries()); err != nil {
		return err
	}
	ops.Info("run stored", "db", path, "run_id", run.ID)
	return nil
}

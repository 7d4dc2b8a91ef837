package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/wcprobe/internal/config"
	"github.com/roach88/wcprobe/internal/logging"
	"github.com/roach88/wcprobe/internal/sandbox"
)

// newFormatter builds the formatter every command writes through.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}

// newOpsLogger returns the operational logger for command plumbing. Harness
// entries go through logging.Logger instead.
func newOpsLogger(opts *RootOptions, w io.Writer) *slog.Logger {
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel}))
}

// loadConfig layers defaults, the config file and the environment. A
// --profile file then replaces the sandbox section.
func loadConfig(opts *RootOptions) (config.Config, error) {
	env, err := config.Environment(opts.EnvFile)
	if err != nil {
		return config.Config{}, err
	}
	cfg, err := config.Load(opts.ConfigPath, env)
	if err != nil {
		return config.Config{}, err
	}
	if opts.Profile == "" {
		return cfg, nil
	}
	profile, err := sandbox.LoadProfile(opts.Profile)
	if err != nil {
		return config.Config{}, err
	}
	cfg.Sandbox = profile
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// newHarnessLogger builds the run log. --verbose lowers the console
// threshold to debug regardless of log_level.
func newHarnessLogger(opts *RootOptions, cfg config.Config, w io.Writer) (*logging.Logger, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	if opts.Verbose {
		level = logging.LevelDebug
	}
	return logging.New(
		logging.WithThreshold(level),
		logging.WithSink(logging.NewConsoleSink(w)),
	), nil
}

// connectSandbox builds the sandbox session client from cfg and connects it.
func connectSandbox(ctx context.Context, cfg config.Config) (*sandbox.Client, error) {
	client, err := sandbox.New(cfg.Sandbox)
	if err != nil {
		return nil, err
	}
	if err := client.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	return client, nil
}

// signalContext derives a context from the command's that is cancelled on
// SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command, log *slog.Logger) (context.Context, context.CancelFunc) {
	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			log.Info("received signal, stopping", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan) // Prevent signal handler leak
		cancel()
	}
}

package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/roach88/wcprobe/internal/harness"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Connect a session and check that it is usable",
		Long: `Connect the session client and validate the connection without running
any case.

A connection is valid when an account is attached, the client's network
matches the account's network and at least one signer is available.
Exits 1 when the connection is invalid.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)
	ops := newOpsLogger(opts, cmd.ErrOrStderr())

	cfg, err := loadConfig(opts)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, "failed to load config", err)
	}

	ctx, stop := signalContext(cmd, ops)
	defer stop()

	client, err := connectSandbox(ctx, cfg)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeSession, "failed to connect session", err)
	}
	defer func() {
		if err := client.Disconnect(context.WithoutCancel(ctx)); err != nil {
			ops.Error("error disconnecting session", "error", err)
		}
	}()

	result := harness.ValidateConnection(client)
	formatter.VerboseLog("validated %s", cfg.Sandbox.AccountID)

	if opts.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return WrapExitError(ExitCommandError, "failed to write output", err)
		}
	} else if result.Valid {
		_ = formatter.Success("Connection valid: " + result.String())
	} else {
		_ = formatter.Success("Connection invalid: " + result.Error)
	}

	if !result.Valid {
		return NewExitError(ExitFailure, "connection invalid: "+result.Error)
	}
	return nil
}

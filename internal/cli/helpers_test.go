package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/roach88/wcprobe/internal/config"
	"github.com/roach88/wcprobe/internal/harness"
	"github.com/roach88/wcprobe/internal/logging"
	"github.com/roach88/wcprobe/internal/store"
	"github.com/roach88/wcprobe/internal/testutil"
)

// newTestRootOptions returns root options isolated from the caller's
// environment and working directory.
func newTestRootOptions(t *testing.T) *RootOptions {
	t.Helper()
	for _, key := range []string{
		config.EnvTopicID, config.EnvLogLevel, config.EnvDatabase,
		config.EnvReportDir, config.EnvProjectID,
	} {
		t.Setenv(key, "") // restores the original value on cleanup
		require.NoError(t, os.Unsetenv(key))
	}
	return &RootOptions{
		Format:  "text",
		EnvFile: filepath.Join(t.TempDir(), "missing.env"),
	}
}

// newTestRunOptions pins the run ID and clock so reports are reproducible.
func newTestRunOptions(t *testing.T) *RunOptions {
	t.Helper()
	return &RunOptions{
		RootOptions: newTestRootOptions(t),
		IDGenerator: testutil.NewFixedIDGenerator("run-1"),
		Clock:       testutil.NewStepClock(time.Millisecond),
	}
}

// execute runs cmd with args and returns what it wrote to stdout and stderr.
func execute(cmd *cobra.Command, args ...string) (string, string, error) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// writeConfig writes a YAML config into a temp dir and returns its path.
func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wcprobe.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

// seedStore writes two runs (run-old, then run-new one minute later) and a
// few log entries for run-new.
func seedStore(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "runs.db")
	st, err := store.Open(path)
	require.NoError(t, err)
	defer st.Close()

	results := []harness.TestResult{
		{Name: "Account info available", Group: "connection", Status: harness.StatusPass, DurationMS: 2},
		{Name: "Create topic", Group: "transaction", Status: harness.StatusFail, DurationMS: 3,
			ErrorMessage: "INSUFFICIENT_PAYER_BALANCE: balance 0 below topic fee 1"},
	}
	for i, id := range []string{"run-old", "run-new"} {
		run := harness.Run{
			ID:        id,
			Suite:     "edge-cases",
			StartedAt: testutil.Epoch.Add(time.Duration(i) * time.Minute),
			Summary:   harness.Summarize(results),
			Results:   results,
		}
		require.NoError(t, st.WriteRun(context.Background(), run))
	}

	log := logging.New(
		logging.WithSink(nil),
		logging.WithSequence(testutil.NewDeterministicClock()),
		logging.WithClock(testutil.NewStepClock(time.Millisecond).Now),
	)
	log.Info("Running edge case tests")
	log.Error("FAIL: Create topic - INSUFFICIENT_PAYER_BALANCE (3ms)")
	require.NoError(t, st.WriteLogEntries(context.Background(), "run-new", log.Entries()))

	return path
}

package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/wcprobe/internal/harness"
	"github.com/roach88/wcprobe/internal/logging"
	"github.com/roach88/wcprobe/internal/testutil"
)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun creates a run with two results starting offset after Epoch.
func createTestRun(id string, offset time.Duration) harness.Run {
	results := []harness.TestResult{
		{Name: "Account info available", Group: "connection", Status: harness.StatusPass, DurationMS: 2, Value: map[string]any{"account_id": "0.0.1001"}},
		{Name: "Submit very long message", Group: "message", Status: harness.StatusPass, DurationMS: 7, ErrorMessage: "MESSAGE_SIZE_TOO_LARGE: message size 2000 exceeds limit 1024"},
		{Name: "Create topic", Group: "transaction", Status: harness.StatusFail, DurationMS: 3, ErrorMessage: "INSUFFICIENT_PAYER_BALANCE: balance 0 below topic fee 1"},
	}
	return harness.Run{
		ID:        id,
		Suite:     "edge-cases",
		StartedAt: testutil.Epoch.Add(offset),
		Params:    harness.Params{harness.ParamTopicID: "0.0.5001"},
		Summary:   harness.Summarize(results),
		Results:   results,
	}
}

func createTestEntries() []logging.Entry {
	log := logging.New(
		logging.WithSink(nil),
		logging.WithSequence(testutil.NewDeterministicClock()),
		logging.WithClock(testutil.NewStepClock(time.Millisecond).Now),
	)
	log.Info("Starting: Create topic")
	log.Error("FAIL: Create topic - INSUFFICIENT_PAYER_BALANCE (3ms)", "duration_ms", 3)
	log.Warn("Warning: Got different balances: 0, 1")
	return log.Entries()
}

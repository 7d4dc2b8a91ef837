package cli

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/wcprobe/internal/store"
)

func TestHistoryMissingDatabaseFlag(t *testing.T) {
	opts := newTestRootOptions(t)

	_, _, err := execute(NewHistoryCommand(opts))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
	assert.Contains(t, err.Error(), "db")
}

func TestHistoryListsNewestFirst(t *testing.T) {
	opts := newTestRootOptions(t)
	dbPath := seedStore(t)

	stdout, _, err := execute(NewHistoryCommand(opts), "--db", dbPath)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "RUN"))
	assert.True(t, strings.HasPrefix(lines[1], "run-new"))
	assert.True(t, strings.HasPrefix(lines[2], "run-old"))
	assert.Contains(t, lines[1], "2024-01-01T00:01:00Z")
	assert.Contains(t, lines[1], "1/2")
	assert.Contains(t, lines[1], "50.0%")
}

func TestHistoryLimitJSON(t *testing.T) {
	opts := newTestRootOptions(t)
	opts.Format = "json"
	dbPath := seedStore(t)

	stdout, _, err := execute(NewHistoryCommand(opts), "--db", dbPath, "--limit", "1")
	require.NoError(t, err)

	var resp struct {
		Status string          `json:"status"`
		Data   []store.RunInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "run-new", resp.Data[0].ID)
	assert.Equal(t, 2, resp.Data[0].Summary.Total)
}

func TestHistoryEmptyDatabase(t *testing.T) {
	opts := newTestRootOptions(t)
	dbPath := filepath.Join(t.TempDir(), "empty.db")

	stdout, _, err := execute(NewHistoryCommand(opts), "--db", dbPath)
	require.NoError(t, err)
	assert.Equal(t, "No runs stored.\n", stdout)
}

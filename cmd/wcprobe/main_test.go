package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/wcprobe/internal/cli"
)

func TestRunExitCodes(t *testing.T) {
	t.Setenv("WCPROBE_TOPIC_ID", "")
	t.Setenv("WCPROBE_LOG_LEVEL", "")
	t.Setenv("WCPROBE_DATABASE", "")
	t.Setenv("WCPROBE_REPORT_DIR", "")
	envFile := filepath.Join(t.TempDir(), "missing.env")

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"cases", []string{"cases"}, cli.ExitSuccess},
		{"validate", []string{"--env-file", envFile, "validate"}, cli.ExitSuccess},
		{"run", []string{"--env-file", envFile, "run", "--group", "connection"}, cli.ExitSuccess},
		{"unknown_command", []string{"teleport"}, cli.ExitCommandError},
		{"missing_required_flag", []string{"history"}, cli.ExitCommandError},
		{"bad_format", []string{"--format", "xml", "cases"}, cli.ExitCommandError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout := &bytes.Buffer{}
			stderr := &bytes.Buffer{}
			got := run(tt.args, stdout, stderr)
			assert.Equal(t, tt.want, got, "stderr: %s", stderr.String())
			if tt.want != cli.ExitSuccess {
				assert.Contains(t, stderr.String(), "Error:")
			}
		})
	}
}

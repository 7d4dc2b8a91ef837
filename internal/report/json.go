package report

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/roach88/wcprobe/internal/harness"
)

// JSON renders run as an indented JSON document.
func JSON(run harness.Run) ([]byte, error) {
	if run.Results == nil {
		run.Results = []harness.TestResult{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(run); err != nil {
		return nil, fmt.Errorf("encode run %s: %w", run.ID, err)
	}
	return buf.Bytes(), nil
}

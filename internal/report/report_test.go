package report

import (
	"encoding/json"
	"encoding/xml"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/wcprobe/internal/harness"
	"github.com/roach88/wcprobe/internal/testutil"
)

func sampleResults() []harness.TestResult {
	return []harness.TestResult{
		{Name: "Account info available", Group: "connection", Status: harness.StatusPass, DurationMS: 3},
		{
			Name: "Submit very long message", Group: "message", Status: harness.StatusPass, DurationMS: 12,
			ErrorMessage: "MESSAGE_SIZE_TOO_LARGE: message size 2000 exceeds limit 1024",
		},
		{
			Name: "Create topic", Group: "transaction", Status: harness.StatusFail, DurationMS: 25,
			ErrorMessage: "INSUFFICIENT_PAYER_BALANCE: balance 0 below topic fee 1",
		},
	}
}

func sampleRun() harness.Run {
	results := sampleResults()
	return harness.Run{
		ID:        "run-1",
		Suite:     "edge-cases",
		StartedAt: testutil.Epoch,
		Params:    harness.Params{harness.ParamTopicID: "0.0.5001"},
		Summary:   harness.Summarize(results),
		Results:   results,
	}
}

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestFormatResults_Golden(t *testing.T) {
	results := sampleResults()
	out := FormatResults(harness.Summarize(results), results)
	newGoldie(t).Assert(t, "mixed_results", []byte(out))
}

func TestFormatResults_EmptyGolden(t *testing.T) {
	out := FormatResults(harness.Summarize(nil), nil)
	newGoldie(t).Assert(t, "empty_results", []byte(out))
}

func TestFormatResults_PreservesOrder(t *testing.T) {
	results := sampleResults()
	out := FormatResults(harness.Summarize(results), results)

	first := strings.Index(out, "Account info available")
	second := strings.Index(out, "Submit very long message")
	third := strings.Index(out, "Create topic")
	assert.True(t, first < second && second < third)
}

func TestFormatResults_EscapesControlCharacters(t *testing.T) {
	results := []harness.TestResult{{Name: "x", Status: harness.StatusFail, ErrorMessage: "line1\nline2\t"}}
	out := FormatResults(harness.Summarize(results), results)
	assert.Contains(t, out, `- **Error:** line1\nline2\t`)
}

func TestFormatRun_Footer(t *testing.T) {
	out := FormatRun(sampleRun())
	assert.True(t, strings.HasPrefix(out, "# Test Results\n"))
	assert.Contains(t, out, "Run `run-1` of suite `edge-cases` started 2024-01-01T00:00:00Z.")
}

func TestJSON_Document(t *testing.T) {
	data, err := JSON(sampleRun())
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "run-1", doc["id"])
	assert.Equal(t, "edge-cases", doc["suite"])

	summary := doc["summary"].(map[string]any)
	assert.Equal(t, float64(3), summary["total"])
	assert.Equal(t, float64(40), summary["duration_ms"])

	results := doc["results"].([]any)
	require.Len(t, results, 3)
	last := results[2].(map[string]any)
	assert.Equal(t, "FAIL", last["status"])
	assert.Equal(t, float64(25), last["duration_ms"])
	assert.NotContains(t, last, "Duration")
}

func TestJSON_EmptyResultsIsArray(t *testing.T) {
	data, err := JSON(harness.Run{ID: "r"})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"results": []`)
}

func TestJUnit(t *testing.T) {
	data, err := JUnit(sampleRun())
	require.NoError(t, err)
	out := string(data)

	assert.True(t, strings.HasPrefix(out, xml.Header))
	assert.Contains(t, out, `<testsuites name="edge-cases" tests="3" failures="1" time="0.040">`)
	assert.Contains(t, out, `timestamp="2024-01-01T00:00:00"`)
	assert.Contains(t, out, `classname="edge-cases.transaction"`)
	assert.Contains(t, out, `<failure message="INSUFFICIENT_PAYER_BALANCE: balance 0 below topic fee 1" type="FAIL">`)
	assert.Contains(t, out, `<system-out>MESSAGE_SIZE_TOO_LARGE: message size 2000 exceeds limit 1024</system-out>`)

	var parsed junitSuites
	require.NoError(t, xml.Unmarshal(data, &parsed))
	require.Len(t, parsed.Suites, 1)
	require.Len(t, parsed.Suites[0].Cases, 3)
	assert.Nil(t, parsed.Suites[0].Cases[0].Failure)
	assert.NotNil(t, parsed.Suites[0].Cases[2].Failure)
}

package harness

import (
	"context"
	"fmt"
	"time"
)

// Expected is the outcome a case is declared to produce.
type Expected int

const (
	// ExpectSuccess passes when the operation returns a value.
	ExpectSuccess Expected = iota + 1

	// ExpectError passes when the operation fails.
	ExpectError

	// ExpectEither passes regardless of outcome; the result is recorded.
	ExpectEither
)

// String returns the outcome name.
func (e Expected) String() string {
	switch e {
	case ExpectSuccess:
		return "Success"
	case ExpectError:
		return "Error"
	case ExpectEither:
		return "Either"
	default:
		return fmt.Sprintf("Expected(%d)", int(e))
	}
}

// Valid reports whether e is one of the declared outcomes.
func (e Expected) Valid() bool {
	return e >= ExpectSuccess && e <= ExpectEither
}

// Status is the classification of a single case.
type Status string

const (
	StatusPass Status = "PASS"
	StatusFail Status = "FAIL"
)

// Operation is a single asynchronous call against the session client.
type Operation func(ctx context.Context) (any, error)

// TestResult is the outcome of one case. It is created once by the Runner and
// never mutated afterwards.
type TestResult struct {
	Name         string        `json:"name"`
	Group        string        `json:"group,omitempty"`
	Status       Status        `json:"status"`
	Duration     time.Duration `json:"-"`
	DurationMS   int64         `json:"duration_ms"`
	Value        any           `json:"value,omitempty"`
	ErrorMessage string        `json:"error,omitempty"`
}

// Passed reports whether the result is a PASS.
func (r TestResult) Passed() bool {
	return r.Status == StatusPass
}

// Summary aggregates a list of results.
type Summary struct {
	Total       int     `json:"total"`
	Passed      int     `json:"passed"`
	Failed      int     `json:"failed"`
	DurationMS  int64   `json:"duration_ms"`
	SuccessRate float64 `json:"success_rate"`
}

// Run is a complete suite execution.
type Run struct {
	ID        string       `json:"id"`
	Suite     string       `json:"suite"`
	StartedAt time.Time    `json:"started_at"`
	Params    Params       `json:"params,omitempty"`
	Summary   Summary      `json:"summary"`
	Results   []TestResult `json:"results"`
}

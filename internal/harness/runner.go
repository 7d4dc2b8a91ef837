package harness

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/wcprobe/internal/logging"
)

// Clock supplies wall-clock readings for duration measurement.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the real wall clock.
var SystemClock Clock = systemClock{}

// expectedErrorMessage is recorded when an Error case unexpectedly succeeds.
const expectedErrorMessage = "Expected error but succeeded"

// Runner executes one operation and classifies its outcome.
type Runner struct {
	clock Clock
	log   *logging.Logger
}

// NewRunner creates a runner logging to log. A nil clock means SystemClock.
func NewRunner(log *logging.Logger, clock Clock) *Runner {
	if clock == nil {
		clock = SystemClock
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Runner{clock: clock, log: log}
}

// Logger returns the runner's log.
func (r *Runner) Logger() *logging.Logger {
	return r.log
}

// Run invokes op once and returns its classified result. Run never panics:
// a panic inside op is treated as the operation failing. ctx is handed to op
// unchanged.
func (r *Runner) Run(ctx context.Context, name string, op Operation, expected Expected) TestResult {
	start := r.clock.Now()
	r.log.Info("Starting: " + name)

	value, err := invoke(ctx, op)

	elapsed := r.clock.Now().Sub(start)
	if elapsed < 0 {
		elapsed = 0
	}
	res := TestResult{
		Name:       name,
		Duration:   elapsed,
		DurationMS: elapsed.Milliseconds(),
	}
	ms := res.DurationMS

	switch expected {
	case ExpectSuccess:
		if err == nil {
			res.Status = StatusPass
			res.Value = value
			r.log.Info(fmt.Sprintf("PASS: %s (%dms)", name, ms), "duration_ms", ms)
		} else {
			res.Status = StatusFail
			res.ErrorMessage = err.Error()
			r.log.Error(fmt.Sprintf("FAIL: %s - %s (%dms)", name, res.ErrorMessage, ms), "duration_ms", ms)
		}
	case ExpectError:
		if err != nil {
			res.Status = StatusPass
			res.ErrorMessage = err.Error()
			r.log.Info(fmt.Sprintf("PASS: Correctly caught error - %s (%dms)", res.ErrorMessage, ms), "duration_ms", ms)
		} else {
			res.Status = StatusFail
			res.ErrorMessage = expectedErrorMessage
			r.log.Error(fmt.Sprintf("FAIL: %s - Expected error but got success (%dms)", name, ms), "duration_ms", ms)
		}
	case ExpectEither:
		res.Status = StatusPass
		if err != nil {
			res.ErrorMessage = err.Error()
		} else {
			res.Value = value
		}
		r.log.Info(fmt.Sprintf("PASS: %s (%dms)", name, ms), "duration_ms", ms)
	default:
		res.Status = StatusFail
		res.ErrorMessage = fmt.Sprintf("unknown expected outcome %s", expected)
		r.log.Error(fmt.Sprintf("FAIL: %s - %s", name, res.ErrorMessage))
	}
	return res
}

func invoke(ctx context.Context, op Operation) (value any, err error) {
	defer func() {
		if p := recover(); p != nil {
			value = nil
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	if op == nil {
		return nil, fmt.Errorf("nil operation")
	}
	return op(ctx)
}

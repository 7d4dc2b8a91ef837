package harness

import (
	"context"
	"fmt"
	"sync"
)

// Outcome is the result of one concurrent call.
type Outcome struct {
	Value any   `json:"value,omitempty"`
	Err   error `json:"-"`
}

// FanOutResult holds every outcome in launch-index order.
type FanOutResult struct {
	Outcomes  []Outcome `json:"-"`
	Succeeded int       `json:"succeeded"`
	Total     int       `json:"total"`
}

// Values returns the values of the successful outcomes in launch order.
func (r FanOutResult) Values() []any {
	values := make([]any, 0, r.Succeeded)
	for _, o := range r.Outcomes {
		if o.Err == nil {
			values = append(values, o.Value)
		}
	}
	return values
}

// FirstError returns the error of the lowest-indexed failed outcome.
func (r FanOutResult) FirstError() error {
	for _, o := range r.Outcomes {
		if o.Err != nil {
			return o.Err
		}
	}
	return nil
}

// FanOut calls op n times concurrently and waits for all of them. Outcomes
// are stored by launch index regardless of completion order. A panicking call
// is recorded as a failed outcome.
func FanOut(ctx context.Context, n int, op Operation) FanOutResult {
	if n < 0 {
		n = 0
	}
	outcomes := make([]Outcome, n)

	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			v, err := invoke(ctx, op)
			outcomes[i] = Outcome{Value: v, Err: err}
		}(i)
	}
	wg.Wait()

	res := FanOutResult{Outcomes: outcomes, Total: n}
	for _, o := range outcomes {
		if o.Err == nil {
			res.Succeeded++
		}
	}
	return res
}

// AnyOf returns an operation that fans op out n ways and succeeds with the
// FanOutResult when at least one call succeeded.
func AnyOf(n int, op Operation) Operation {
	return func(ctx context.Context) (any, error) {
		res := FanOut(ctx, n, op)
		if res.Succeeded == 0 {
			return nil, fmt.Errorf("all %d concurrent calls failed: %w", n, firstOrNone(res))
		}
		return res, nil
	}
}

// AllOf returns an operation that fans op out n ways and succeeds only when
// every call succeeded.
func AllOf(n int, op Operation) Operation {
	return func(ctx context.Context) (any, error) {
		res := FanOut(ctx, n, op)
		if res.Succeeded != n {
			return nil, fmt.Errorf("%d of %d concurrent calls failed: %w", n-res.Succeeded, n, firstOrNone(res))
		}
		return res, nil
	}
}

var errNoCalls = fmt.Errorf("no calls were made")

func firstOrNone(res FanOutResult) error {
	if err := res.FirstError(); err != nil {
		return err
	}
	return errNoCalls
}

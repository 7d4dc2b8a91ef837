package harness

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ParamTopicID is the run parameter naming an existing topic.
const ParamTopicID = "topic_id"

// Params are the run parameters supplied by the operator.
type Params map[string]string

// Has reports whether key is present with a non-empty value.
func (p Params) Has(key string) bool {
	return p[key] != ""
}

// CaseFunc is the body of a case.
type CaseFunc func(ctx context.Context, p Params) (any, error)

// Case is a named scenario with its expected outcome.
type Case struct {
	Name     string
	Group    string
	Expected Expected

	// Requires lists parameters that must be present for the case to run.
	Requires []string

	Run CaseFunc
}

// RegistrationError reports a malformed suite definition. It is a
// programming error and is never converted into a TestResult.
type RegistrationError struct {
	Suite   string
	Case    string
	Message string
}

func (e *RegistrationError) Error() string {
	if e.Case != "" {
		return fmt.Sprintf("suite %q: case %q: %s", e.Suite, e.Case, e.Message)
	}
	return fmt.Sprintf("suite %q: %s", e.Suite, e.Message)
}

// IsRegistrationError reports whether err is (or wraps) a RegistrationError.
func IsRegistrationError(err error) bool {
	var re *RegistrationError
	return errors.As(err, &re)
}

// Suite is an ordered collection of cases.
type Suite struct {
	name   string
	cases  []Case
	runner *Runner
	ids    IDGenerator
}

// NewSuite validates cases and returns a suite preserving their order.
func NewSuite(name string, cases ...Case) (*Suite, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &RegistrationError{Message: "suite name is empty"}
	}
	seen := make(map[string]bool, len(cases))
	for i, c := range cases {
		switch {
		case strings.TrimSpace(c.Name) == "":
			return nil, &RegistrationError{Suite: name, Message: fmt.Sprintf("case %d has an empty name", i)}
		case seen[c.Name]:
			return nil, &RegistrationError{Suite: name, Case: c.Name, Message: "duplicate case name"}
		case c.Run == nil:
			return nil, &RegistrationError{Suite: name, Case: c.Name, Message: "case has no Run function"}
		case !c.Expected.Valid():
			return nil, &RegistrationError{Suite: name, Case: c.Name, Message: fmt.Sprintf("unknown expected outcome %s", c.Expected)}
		}
		seen[c.Name] = true
	}
	return &Suite{
		name:   name,
		cases:  append([]Case(nil), cases...),
		runner: NewRunner(nil, nil),
		ids:    UUIDv7Generator{},
	}, nil
}

// MustSuite is NewSuite for statically declared suites. It panics on a
// registration fault.
func MustSuite(name string, cases ...Case) *Suite {
	s, err := NewSuite(name, cases...)
	if err != nil {
		panic(err)
	}
	return s
}

// WithRunner sets the runner used for every case and returns s.
func (s *Suite) WithRunner(r *Runner) *Suite {
	s.runner = r
	return s
}

// WithIDGenerator sets the run ID source used by Execute and returns s.
func (s *Suite) WithIDGenerator(g IDGenerator) *Suite {
	s.ids = g
	return s
}

// Name returns the suite name.
func (s *Suite) Name() string { return s.name }

// Cases returns a copy of the cases in declaration order.
func (s *Suite) Cases() []Case {
	return append([]Case(nil), s.cases...)
}

// Groups returns the distinct group names in order of first appearance.
func (s *Suite) Groups() []string {
	var groups []string
	seen := make(map[string]bool)
	for _, c := range s.cases {
		if !seen[c.Group] {
			seen[c.Group] = true
			groups = append(groups, c.Group)
		}
	}
	return groups
}

// Select returns a suite holding only cases from the given groups, in their
// original order. With no groups it returns s unchanged.
func (s *Suite) Select(groups ...string) (*Suite, error) {
	if len(groups) == 0 {
		return s, nil
	}
	want := make(map[string]bool, len(groups))
	for _, g := range groups {
		want[g] = true
	}
	known := make(map[string]bool)
	var picked []Case
	for _, c := range s.cases {
		known[c.Group] = true
		if want[c.Group] {
			picked = append(picked, c)
		}
	}
	var unknown []string
	for g := range want {
		if !known[g] {
			unknown = append(unknown, g)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("suite %q has no group(s) %s", s.name, strings.Join(unknown, ", "))
	}
	return &Suite{name: s.name, cases: picked, runner: s.runner, ids: s.ids}, nil
}

// RunAll runs every applicable case sequentially in declaration order and
// returns their results in the same order. Cases missing a required parameter
// are skipped without a result. Once ctx is done no further case is started.
func (s *Suite) RunAll(ctx context.Context, params Params) []TestResult {
	log := s.runner.Logger()
	results := make([]TestResult, 0, len(s.cases))
	for i, c := range s.cases {
		if err := ctx.Err(); err != nil {
			log.Warn(fmt.Sprintf("Stopping %s: %v", s.name, err), "remaining", len(s.cases)-i)
			break
		}
		if missing := missingParams(c.Requires, params); len(missing) > 0 {
			log.Debug("Skipping: "+c.Name, "missing", strings.Join(missing, ","))
			continue
		}
		results = append(results, s.runCase(ctx, c, params))
	}
	return results
}

// Execute runs the suite and assembles a Run with a fresh ID and summary.
func (s *Suite) Execute(ctx context.Context, params Params) Run {
	run := Run{
		ID:        s.ids.Generate(),
		Suite:     s.name,
		StartedAt: s.runner.clock.Now(),
		Params:    params,
	}
	run.Results = s.RunAll(ctx, params)
	run.Summary = Summarize(run.Results)
	return run
}

func (s *Suite) runCase(ctx context.Context, c Case, params Params) (res TestResult) {
	defer func() {
		if p := recover(); p != nil {
			res = TestResult{
				Name:         c.Name,
				Group:        c.Group,
				Status:       StatusFail,
				ErrorMessage: fmt.Sprintf("case setup panicked: %v", p),
			}
			s.runner.Logger().Error("FAIL: " + c.Name + " - " + res.ErrorMessage)
		}
	}()
	run := c.Run
	op := func(ctx context.Context) (any, error) {
		return run(ctx, params)
	}
	res = s.runner.Run(ctx, c.Name, op, c.Expected)
	res.Group = c.Group
	return res
}

func missingParams(required []string, params Params) []string {
	var missing []string
	for _, key := range required {
		if !params.Has(key) {
			missing = append(missing, key)
		}
	}
	return missing
}

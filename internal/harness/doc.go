// Package harness runs asynchronous scenarios against a shared session
// client and classifies each outcome against an expected-outcome contract.
//
// # Cases and suites
//
// A Case pairs a name and group with an Expected outcome and a CaseFunc. A
// Suite holds cases in declaration order:
//
//	suite, err := harness.NewSuite("edge-cases",
//	    harness.Case{
//	        Name:     "Submit very long message",
//	        Group:    "message",
//	        Expected: harness.ExpectError,
//	        Requires: []string{harness.ParamTopicID},
//	        Run: func(ctx context.Context, p harness.Params) (any, error) {
//	            return caps.Submit(ctx, p[harness.ParamTopicID], long)
//	        },
//	    },
//	)
//
// RunAll executes the cases one at a time, in order, and returns one
// TestResult per attempted case. Cases whose required parameters are absent
// are skipped without a result.
//
// # Classification
//
// The Runner never panics and never propagates an operation's failure:
//
//	expected  outcome   status
//	Success   value     PASS
//	Success   error     FAIL
//	Error     value     FAIL ("Expected error but succeeded")
//	Error     error     PASS
//	Either    any       PASS
//
// # Concurrency
//
// Cases run sequentially on the calling goroutine. FanOut is the only place
// the harness starts goroutines; it waits for every call before returning.
// The harness never imposes a timeout; callers bound work through ctx.
package harness

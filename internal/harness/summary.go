package harness

// Summarize aggregates results. SuccessRate is a percentage and is 0 for an
// empty list. DurationMS is the sum of per-case durations.
func Summarize(results []TestResult) Summary {
	var s Summary
	for _, r := range results {
		s.Total++
		if r.Status == StatusPass {
			s.Passed++
		} else {
			s.Failed++
		}
		s.DurationMS += r.DurationMS
	}
	if s.Total > 0 {
		s.SuccessRate = float64(s.Passed) / float64(s.Total) * 100
	}
	return s
}

package report

import (
	"encoding/xml"
	"fmt"

	"github.com/roach88/wcprobe/internal/harness"
)

type junitSuites struct {
	XMLName  xml.Name     `xml:"testsuites"`
	Name     string       `xml:"name,attr"`
	Tests    int          `xml:"tests,attr"`
	Failures int          `xml:"failures,attr"`
	Time     string       `xml:"time,attr"`
	Suites   []junitSuite `xml:"testsuite"`
}

type junitSuite struct {
	Name      string      `xml:"name,attr"`
	ID        string      `xml:"id,attr,omitempty"`
	Tests     int         `xml:"tests,attr"`
	Failures  int         `xml:"failures,attr"`
	Time      string      `xml:"time,attr"`
	Timestamp string      `xml:"timestamp,attr"`
	Cases     []junitCase `xml:"testcase"`
}

type junitCase struct {
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	Time      string        `xml:"time,attr"`
	Failure   *junitFailure `xml:"failure,omitempty"`
	SystemOut string        `xml:"system-out,omitempty"`
}

type junitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Text    string `xml:",chardata"`
}

// JUnit renders run as JUnit XML. A passing case that recorded an error
// message (an expected failure) carries it in system-out.
func JUnit(run harness.Run) ([]byte, error) {
	suite := junitSuite{
		Name:      run.Suite,
		ID:        run.ID,
		Tests:     run.Summary.Total,
		Failures:  run.Summary.Failed,
		Time:      seconds(run.Summary.DurationMS),
		Timestamp: run.StartedAt.UTC().Format("2006-01-02T15:04:05"),
	}
	for _, r := range run.Results {
		c := junitCase{
			Name:      r.Name,
			ClassName: className(run.Suite, r.Group),
			Time:      seconds(r.DurationMS),
		}
		if r.Status == harness.StatusFail {
			c.Failure = &junitFailure{Message: r.ErrorMessage, Type: "FAIL", Text: r.ErrorMessage}
		} else if r.ErrorMessage != "" {
			c.SystemOut = r.ErrorMessage
		}
		suite.Cases = append(suite.Cases, c)
	}
	doc := junitSuites{
		Name:     run.Suite,
		Tests:    suite.Tests,
		Failures: suite.Failures,
		Time:     suite.Time,
		Suites:   []junitSuite{suite},
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode junit for run %s: %w", run.ID, err)
	}
	return append([]byte(xml.Header), append(out, '\n')...), nil
}

func className(suite, group string) string {
	if group == "" {
		return suite
	}
	return suite + "." + group
}

func seconds(ms int64) string {
	return fmt.Sprintf("%.3f", float64(ms)/1000)
}

package output

import (
	"encoding/xml"
	"fmt"
	"time"

	"github.com/dataplane-io/datahealth/internal/health"
)

// JUnit XML schema types. One testsuite per dataset, one testcase per check:
// RED maps to a failure, YELLOW to a skip so CI UIs surface it without
// failing the build, GREEN to a plain pass.

type junitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Skipped    int              `xml:"skipped,attr"`
	TestSuites []junitTestSuite `xml:"testsuite"`
}

type junitTestSuite struct {
	XMLName    xml.Name        `xml:"testsuite"`
	Name       string          `xml:"name,attr"`
	Tests      int             `xml:"tests,attr"`
	Failures   int             `xml:"failures,attr"`
	Skipped    int             `xml:"skipped,attr"`
	Timestamp  string          `xml:"timestamp,attr"`
	Properties []junitProperty `xml:"properties>property,omitempty"`
	TestCases  []junitTestCase `xml:"testcase"`
}

type junitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Failure   *junitFailure `xml:"failure,omitempty"`
	Skipped   *junitSkipped `xml:"skipped,omitempty"`
}

type junitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

type junitSkipped struct {
	Message string `xml:"message,attr,omitempty"`
}

type junitProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// RenderJUnit renders the report as JUnit XML so CI systems can publish the
// per-check evidence next to regular test results.
func RenderJUnit(report *health.Report) ([]byte, error) {
	suites := &junitTestSuites{}
	timestamp := report.GeneratedAt.Format(time.RFC3339)

	for _, entry := range report.Datasets {
		suite := junitTestSuite{
			Name:      entry.Dataset.Name,
			Tests:     len(entry.Checks),
			Timestamp: timestamp,
			Properties: []junitProperty{
				{Name: "status", Value: string(entry.Status)},
			},
		}
		if entry.Dataset.Owner != "" {
			suite.Properties = append(suite.Properties, junitProperty{Name: "owner", Value: entry.Dataset.Owner})
		}

		for _, check := range entry.Checks {
			tc := junitTestCase{
				Name:      check.Name,
				Classname: entry.Dataset.Name,
			}
			switch check.Status {
			case health.StatusRed:
				suite.Failures++
				tc.Failure = &junitFailure{
					Message: check.Message,
					Type:    string(check.Status),
					Body:    detailsJSON(check.Details),
				}
			case health.StatusYellow:
				suite.Skipped++
				tc.Skipped = &junitSkipped{Message: check.Message}
			}
			suite.TestCases = append(suite.TestCases, tc)
		}

		suites.Tests += suite.Tests
		suites.Failures += suite.Failures
		suites.Skipped += suite.Skipped
		suites.TestSuites = append(suites.TestSuites, suite)
	}

	data, err := xml.MarshalIndent(suites, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling JUnit report: %w", err)
	}
	return append([]byte(xml.Header), append(data, '\n')...), nil
}

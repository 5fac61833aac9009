package checks

import (
	"context"
	"sort"
	"time"

	"github.com/dataplane-io/datahealth/internal/dataset"
	"github.com/dataplane-io/datahealth/internal/health"
)

// SchemaCheck compares the observed field list against the declared one.
// Missing expected fields are RED (consumers will break); extra fields only
// are YELLOW (drift worth a look, nothing is broken yet).
type SchemaCheck struct{}

func NewSchemaCheck() *SchemaCheck { return &SchemaCheck{} }

func (c *SchemaCheck) Name() string        { return "schema" }
func (c *SchemaCheck) Description() string { return "Schema matches expected fields." }

func (c *SchemaCheck) Evaluate(_ context.Context, snap *dataset.Snapshot, _ time.Time) (*health.CheckResult, error) {
	rawActual, _ := snap.Lookup("schema")
	rawExpected, _ := snap.Lookup("expected_schema")
	actual := dataset.ToStrings(rawActual)
	expected := dataset.ToStrings(rawExpected)

	if len(actual) == 0 || len(expected) == 0 {
		return &health.CheckResult{
			Name:    c.Name(),
			Status:  health.StatusYellow,
			Message: "Missing schema or expected_schema metadata.",
			Details: map[string]any{"schema": emptyIfNil(actual), "expected_schema": emptyIfNil(expected)},
		}, nil
	}

	missing := setDifference(expected, actual)
	extra := setDifference(actual, expected)

	var status health.Status
	var message string
	switch {
	case len(missing) > 0:
		status = health.StatusRed
		message = "Missing expected fields."
	case len(extra) > 0:
		status = health.StatusYellow
		message = "Schema has extra fields."
	default:
		status = health.StatusGreen
		message = "Schema matches expected fields."
	}

	return &health.CheckResult{
		Name:    c.Name(),
		Status:  status,
		Message: message,
		Details: map[string]any{"missing": missing, "extra": extra},
	}, nil
}

// setDifference returns the elements of a that are not in b, deduplicated
// and sorted.
func setDifference(a, b []string) []string {
	inB := make(map[string]bool, len(b))
	for _, s := range b {
		inB[s] = true
	}
	seen := make(map[string]bool, len(a))
	diff := make([]string, 0)
	for _, s := range a {
		if inB[s] || seen[s] {
			continue
		}
		seen[s] = true
		diff = append(diff, s)
	}
	sort.Strings(diff)
	return diff
}

func emptyIfNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}

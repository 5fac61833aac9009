package checks

import (
	"context"
	"math"
	"time"

	"github.com/dataplane-io/datahealth/internal/dataset"
	"github.com/dataplane-io/datahealth/internal/health"
)

// CompletenessCheck compares the observed record count against the expected
// minimum. Meeting the minimum is GREEN, within 90% of it YELLOW, below
// that RED.
type CompletenessCheck struct{}

func NewCompletenessCheck() *CompletenessCheck { return &CompletenessCheck{} }

func (c *CompletenessCheck) Name() string        { return "completeness" }
func (c *CompletenessCheck) Description() string { return "Dataset meets expected record count." }

func (c *CompletenessCheck) Evaluate(_ context.Context, snap *dataset.Snapshot, _ time.Time) (*health.CheckResult, error) {
	return evaluateMinimum(c.Name(), snap, minimumArgs{
		observedKey: "record_count",
		expectedKey: "expected_min_records",
		subject:     "Record count",
	}), nil
}

// minimumArgs parameterizes the shared observed-vs-expected-minimum
// evaluation used by the completeness and volume checks.
type minimumArgs struct {
	observedKey string
	expectedKey string
	subject     string

	// extraDetails decorates the result details with unit-specific values.
	extraDetails func(details map[string]any, observed, expected float64)
}

func evaluateMinimum(name string, snap *dataset.Snapshot, args minimumArgs) *health.CheckResult {
	rawObserved, hasObserved := snap.Lookup(args.observedKey)
	rawExpected, hasExpected := snap.Lookup(args.expectedKey)

	if !hasObserved || !hasExpected {
		return &health.CheckResult{
			Name:    name,
			Status:  health.StatusYellow,
			Message: "Missing " + args.observedKey + " or " + args.expectedKey + " metadata.",
			Details: map[string]any{args.observedKey: rawObserved, args.expectedKey: rawExpected},
		}
	}

	observed, errObserved := dataset.ToFloat(rawObserved)
	expected, errExpected := dataset.ToFloat(rawExpected)
	if errObserved != nil || errExpected != nil {
		return &health.CheckResult{
			Name:    name,
			Status:  health.StatusYellow,
			Message: "Invalid " + args.observedKey + " or " + args.expectedKey + " value.",
			Details: map[string]any{args.observedKey: rawObserved, args.expectedKey: rawExpected},
		}
	}

	if expected <= 0 {
		return &health.CheckResult{
			Name:    name,
			Status:  health.StatusYellow,
			Message: args.expectedKey + " must be greater than 0.",
			Details: map[string]any{args.expectedKey: expected},
		}
	}

	ratio := observed / expected
	var status health.Status
	var message string
	switch {
	case observed >= expected:
		status = health.StatusGreen
		message = args.subject + " meets expected minimum."
	case ratio >= 0.9:
		status = health.StatusYellow
		message = args.subject + " slightly below expected minimum."
	default:
		status = health.StatusRed
		message = args.subject + " significantly below expected minimum."
	}

	details := map[string]any{
		args.observedKey: observed,
		args.expectedKey: expected,
		"ratio":          roundTo(ratio, 3),
	}
	if args.extraDetails != nil {
		args.extraDetails(details, observed, expected)
	}

	return &health.CheckResult{Name: name, Status: status, Message: message, Details: details}
}

func roundTo(v float64, digits int) float64 {
	scale := math.Pow(10, float64(digits))
	return math.Round(v*scale) / scale
}

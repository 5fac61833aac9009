package checks

import (
	"context"
	"time"

	"github.com/dataplane-io/datahealth/internal/dataset"
	"github.com/dataplane-io/datahealth/internal/health"
)

// Check is the capability every health check satisfies, built-in or external:
// given a dataset snapshot and the run's reference time, produce exactly one
// result. Implementations must not mutate the snapshot and must not read the
// clock themselves; the reference time is the only notion of "now" a check
// may use, so identical inputs always produce identical results.
type Check interface {
	// Name identifies the check; it must be unique within a registry.
	Name() string

	// Description is a one-line summary shown in listings.
	Description() string

	// Evaluate produces the verdict for one snapshot. A returned error is a
	// check fault; the runner absorbs it, it never aborts sibling checks.
	Evaluate(ctx context.Context, snap *dataset.Snapshot, now time.Time) (*health.CheckResult, error)
}

// EvaluateFunc is the signature of a single check evaluation.
type EvaluateFunc func(ctx context.Context, snap *dataset.Snapshot, now time.Time) (*health.CheckResult, error)

// NewCheck wraps a bare function as a named Check.
func NewCheck(name, description string, fn EvaluateFunc) Check {
	return &funcCheck{name: name, description: description, fn: fn}
}

type funcCheck struct {
	name        string
	description string
	fn          EvaluateFunc
}

func (c *funcCheck) Name() string        { return c.name }
func (c *funcCheck) Description() string { return c.description }

func (c *funcCheck) Evaluate(ctx context.Context, snap *dataset.Snapshot, now time.Time) (*health.CheckResult, error) {
	return c.fn(ctx, snap, now)
}

package checks

import (
	"context"
	"fmt"
	"time"

	"github.com/dataplane-io/datahealth/internal/dataset"
	"github.com/dataplane-io/datahealth/internal/health"
)

// FreshnessCheck verifies the dataset was updated within its declared SLA.
// Age up to the SLA is GREEN, up to 1.5x the SLA is YELLOW, beyond that RED.
type FreshnessCheck struct{}

func NewFreshnessCheck() *FreshnessCheck { return &FreshnessCheck{} }

func (c *FreshnessCheck) Name() string        { return "freshness" }
func (c *FreshnessCheck) Description() string { return "Data is updated within freshness SLA." }

func (c *FreshnessCheck) Evaluate(_ context.Context, snap *dataset.Snapshot, now time.Time) (*health.CheckResult, error) {
	rawUpdated, _ := snap.Lookup("last_updated")
	rawSLA, hasSLA := snap.Lookup("freshness_hours")

	lastUpdated, hasUpdated := dataset.ParseTime(rawUpdated)
	if !hasUpdated || !hasSLA {
		return &health.CheckResult{
			Name:    c.Name(),
			Status:  health.StatusYellow,
			Message: "Missing last_updated or freshness_hours metadata.",
			Details: map[string]any{"last_updated": rawUpdated, "freshness_hours": rawSLA},
		}, nil
	}

	slaHours, err := dataset.ToFloat(rawSLA)
	if err != nil {
		return &health.CheckResult{
			Name:    c.Name(),
			Status:  health.StatusYellow,
			Message: "Invalid freshness_hours value.",
			Details: map[string]any{"freshness_hours": rawSLA},
		}, nil
	}

	ageHours := now.Sub(lastUpdated).Hours()
	var status health.Status
	switch {
	case ageHours <= slaHours:
		status = health.StatusGreen
	case ageHours <= slaHours*1.5:
		status = health.StatusYellow
	default:
		status = health.StatusRed
	}

	return &health.CheckResult{
		Name:    c.Name(),
		Status:  status,
		Message: fmt.Sprintf("Age %.1fh (SLA %.1fh).", ageHours, slaHours),
		Details: map[string]any{
			"last_updated": lastUpdated.Format(time.RFC3339),
			"age_hours":    roundTo(ageHours, 2),
			"sla_hours":    slaHours,
		},
	}, nil
}

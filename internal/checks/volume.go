package checks

import (
	"context"
	"fmt"
	"time"

	"github.com/dataplane-io/datahealth/internal/dataset"
	"github.com/dataplane-io/datahealth/internal/health"
)

// VolumeCheck compares the observed byte size against the expected minimum,
// with the same 90% warning band as the completeness check.
type VolumeCheck struct{}

func NewVolumeCheck() *VolumeCheck { return &VolumeCheck{} }

func (c *VolumeCheck) Name() string        { return "volume" }
func (c *VolumeCheck) Description() string { return "Dataset volume meets expected minimum." }

func (c *VolumeCheck) Evaluate(_ context.Context, snap *dataset.Snapshot, _ time.Time) (*health.CheckResult, error) {
	return evaluateMinimum(c.Name(), snap, minimumArgs{
		observedKey: "bytes",
		expectedKey: "expected_min_bytes",
		subject:     "Volume",
		extraDetails: func(details map[string]any, observed, expected float64) {
			details["bytes_human"] = formatBytes(observed)
			details["expected_min_human"] = formatBytes(expected)
		},
	}), nil
}

// formatBytes renders a byte count with 1024-based units.
func formatBytes(v float64) string {
	units := []struct {
		factor float64
		unit   string
	}{
		{1 << 40, "TB"},
		{1 << 30, "GB"},
		{1 << 20, "MB"},
		{1 << 10, "KB"},
	}
	for _, u := range units {
		if v >= u.factor {
			return fmt.Sprintf("%.2f %s", v/u.factor, u.unit)
		}
	}
	return fmt.Sprintf("%.0f B", v)
}

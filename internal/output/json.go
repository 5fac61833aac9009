// Package output renders a finished health report for its consumers: CI
// artifacts, dashboards, metric backends. Everything here reads the report
// tree and nothing here re-runs checks or touches the engine.
package output

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dataplane-io/datahealth/internal/health"
)

// RenderReportJSON renders the full report as indented JSON with every
// object's keys sorted, so identical reports serialize byte-identically.
func RenderReportJSON(report *health.Report) ([]byte, error) {
	return canonicalJSON(report)
}

// summaryDocument is the shape of the summary-json output mode.
type summaryDocument struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Status      health.Status  `json:"status"`
	Counts      health.Summary `json:"counts"`
}

// RenderSummaryJSON renders only the overall verdict and per-status counts,
// for automation that does not need per-check evidence.
func RenderSummaryJSON(report *health.Report) ([]byte, error) {
	return canonicalJSON(summaryDocument{
		GeneratedAt: report.GeneratedAt,
		Status:      report.Status,
		Counts:      report.Summary,
	})
}

// canonicalJSON marshals v with sorted object keys, 2-space indentation and
// a trailing newline. The round trip through a generic tree is what sorts
// struct fields; maps already sort on their own.
func canonicalJSON(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshaling report: %w", err)
	}
	var tree any
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, fmt.Errorf("normalizing report: %w", err)
	}
	out, err := json.MarshalIndent(tree, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling report: %w", err)
	}
	return append(out, '\n'), nil
}

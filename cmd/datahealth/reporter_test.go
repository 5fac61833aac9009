package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dataplane-io/datahealth/internal/dataset"
	"github.com/dataplane-io/datahealth/internal/health"
)

func testReport(entries []health.DatasetHealth) *health.Report {
	generatedAt := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	return health.NewReport(generatedAt, entries)
}

func TestPrintSummary_Healthy(t *testing.T) {
	report := testReport([]health.DatasetHealth{
		health.NewDatasetHealth(&dataset.Snapshot{Name: "orders_curated"}, []health.CheckResult{
			{Name: "freshness", Status: health.StatusGreen, Message: "Age 2.0h (SLA 24.0h)."},
		}),
		health.NewDatasetHealth(&dataset.Snapshot{Name: "clicks_hourly"}, []health.CheckResult{
			{Name: "freshness", Status: health.StatusGreen, Message: "Age 4.0h (SLA 24.0h)."},
		}),
	})

	var buf bytes.Buffer
	printSummary(&buf, report, 1500*time.Millisecond)
	out := buf.String()

	assert.Contains(t, out, " DATASET HEALTH")
	assert.Contains(t, out, "Overall Status:")
	assert.Contains(t, out, "Datasets:       2")
	assert.Contains(t, out, "  GREEN:        2")
	assert.Contains(t, out, "  RED:          0")
	assert.Contains(t, out, "Generated At:   2026-03-01T00:00:00Z")
	assert.Contains(t, out, "Duration:       1.5s")

	assert.Contains(t, out, " PER-DATASET BREAKDOWN")
	assert.Contains(t, out, "orders_curated")
	assert.Contains(t, out, "clicks_hourly")

	// Healthy datasets carry no evidence lines.
	assert.NotContains(t, out, "freshness:")
}

func TestPrintSummary_UnhealthyShowsEvidence(t *testing.T) {
	report := testReport([]health.DatasetHealth{
		health.NewDatasetHealth(&dataset.Snapshot{Name: "clicks_hourly"}, []health.CheckResult{
			{Name: "freshness", Status: health.StatusGreen, Message: "Age 4.0h (SLA 24.0h)."},
			{Name: "completeness", Status: health.StatusYellow, Message: "Record count below expected minimum."},
		}),
	})

	var buf bytes.Buffer
	printSummary(&buf, report, time.Second)
	out := buf.String()

	assert.Contains(t, out, "  YELLOW:       1")
	assert.Contains(t, out, "completeness: Record count below expected minimum.")

	// GREEN checks stay out of the evidence list.
	assert.NotContains(t, out, "freshness: Age")
}

func TestPrintSummary_NoDatasets(t *testing.T) {
	report := testReport(nil)

	var buf bytes.Buffer
	printSummary(&buf, report, 10*time.Millisecond)
	out := buf.String()

	assert.Contains(t, out, "Datasets:       0")
	assert.Contains(t, out, "No datasets evaluated.")
	assert.NotContains(t, out, "PER-DATASET BREAKDOWN")
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		expected string
	}{
		{"milliseconds", 500 * time.Millisecond, "500ms"},
		{"seconds", 2 * time.Second, "2s"},
		{"minutes", 90 * time.Second, "1m30s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatDuration(tt.duration))
		})
	}
}

func TestStatusIcon(t *testing.T) {
	assert.Equal(t, "✓", statusIcon(health.StatusGreen))
	assert.Equal(t, "!", statusIcon(health.StatusYellow))
	assert.Equal(t, "✗", statusIcon(health.StatusRed))
}

func TestTruncateName(t *testing.T) {
	assert.Equal(t, "short", truncateName("short", 10))
	assert.Equal(t, "exactly_10", truncateName("exactly_10", 10))
	assert.Equal(t, "too_long_…", truncateName("too_long_name", 10))
}

func TestPadRight(t *testing.T) {
	assert.Equal(t, "ab  ", padRight("ab", 4))
	assert.Equal(t, "abcd", padRight("abcd", 4))
	assert.Equal(t, "abcde", padRight("abcde", 4))
}

func TestDatasetNameWidth(t *testing.T) {
	short := testReport([]health.DatasetHealth{
		health.NewDatasetHealth(&dataset.Snapshot{Name: "ab"}, nil),
	})
	assert.Equal(t, 8, datasetNameWidth(short), "narrow names clamp to the minimum width")

	long := testReport([]health.DatasetHealth{
		health.NewDatasetHealth(&dataset.Snapshot{Name: strings.Repeat("x", 60)}, nil),
	})
	assert.Equal(t, 30, datasetNameWidth(long), "oversized names clamp to the maximum width")

	mid := testReport([]health.DatasetHealth{
		health.NewDatasetHealth(&dataset.Snapshot{Name: "orders_curated"}, nil),
	})
	assert.Equal(t, len("orders_curated"), datasetNameWidth(mid))
}

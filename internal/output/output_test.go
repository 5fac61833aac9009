package output

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dataplane-io/datahealth/internal/dataset"
	"github.com/dataplane-io/datahealth/internal/health"
)

var reportTime = time.Date(2026, time.February, 7, 0, 0, 0, 0, time.UTC)

// sampleReport mirrors the canonical two-dataset fixture: alpha fully green,
// beta with a red check.
func sampleReport() *health.Report {
	alpha := &dataset.Snapshot{
		Name:        "alpha",
		Description: "Orders exported **hourly**.",
		Location:    "s3://lake/alpha",
		Owner:       "team-a",
		Metadata:    map[string]any{"last_updated": "2026-02-06T22:00:00Z"},
		Source:      "datasets/alpha.yaml",
	}
	beta := &dataset.Snapshot{
		Name:     "beta",
		Owner:    "team-b",
		Location: "s3://lake/beta",
		Metadata: map[string]any{},
		Source:   "datasets/beta.yaml",
	}

	entries := []health.DatasetHealth{
		health.NewDatasetHealth(alpha, []health.CheckResult{
			{Name: "freshness", Status: health.StatusGreen, Message: "ok", Details: map[string]any{"age_hours": 2.0}},
		}),
		health.NewDatasetHealth(beta, []health.CheckResult{
			{Name: "freshness", Status: health.StatusRed, Message: "bad", Details: map[string]any{}},
		}),
	}
	return health.NewReport(reportTime, entries)
}

func TestRenderReportJSON(t *testing.T) {
	report := sampleReport()

	out, err := RenderReportJSON(report)
	require.NoError(t, err)

	t.Run("object keys are sorted", func(t *testing.T) {
		require.True(t, strings.HasPrefix(string(out), "{\n  \"datasets\""), "top-level keys must be sorted:\n%s", out)
	})

	t.Run("ends with a newline", func(t *testing.T) {
		require.True(t, strings.HasSuffix(string(out), "}\n"))
	})

	t.Run("tree round-trips", func(t *testing.T) {
		var tree map[string]any
		require.NoError(t, json.Unmarshal(out, &tree))
		require.Equal(t, "RED", tree["status"])

		datasets := tree["datasets"].([]any)
		require.Len(t, datasets, 2)
		first := datasets[0].(map[string]any)
		require.Equal(t, "GREEN", first["status"])
		require.Equal(t, "alpha", first["dataset"].(map[string]any)["name"])
	})

	t.Run("two renders are byte identical", func(t *testing.T) {
		again, err := RenderReportJSON(report)
		require.NoError(t, err)
		require.Equal(t, out, again)
	})
}

func TestRenderSummaryJSON(t *testing.T) {
	out, err := RenderSummaryJSON(sampleReport())
	require.NoError(t, err)

	var payload struct {
		GeneratedAt time.Time `json:"generated_at"`
		Status      string    `json:"status"`
		Counts      struct {
			Green  int `json:"GREEN"`
			Yellow int `json:"YELLOW"`
			Red    int `json:"RED"`
			Total  int `json:"total"`
		} `json:"counts"`
	}
	require.NoError(t, json.Unmarshal(out, &payload))
	require.Equal(t, "RED", payload.Status)
	require.True(t, reportTime.Equal(payload.GeneratedAt))
	require.Equal(t, 1, payload.Counts.Green)
	require.Equal(t, 0, payload.Counts.Yellow)
	require.Equal(t, 1, payload.Counts.Red)
	require.Equal(t, 2, payload.Counts.Total)
}

func TestRenderJSONL(t *testing.T) {
	out, err := RenderJSONL(sampleReport())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(string(out), "\n"), "\n")
	require.Len(t, lines, 2)

	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.Equal(t, "alpha", first["dataset"])
	require.Equal(t, "GREEN", first["status"])
	require.Equal(t, "team-a", first["owner"])
	require.Equal(t, "s3://lake/alpha", first["location"])

	var second map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	require.Equal(t, "beta", second["dataset"])
	require.Equal(t, "RED", second["status"])
}

func TestRenderJSONL_EmptyReport(t *testing.T) {
	out, err := RenderJSONL(health.NewReport(reportTime, nil))
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestRenderPrometheus(t *testing.T) {
	out := string(RenderPrometheus(sampleReport()))

	want := strings.Join([]string{
		"# HELP dataset_health_status Overall dataset health status (0=GREEN,1=YELLOW,2=RED).",
		"# TYPE dataset_health_status gauge",
		"dataset_health_status 2",
		"# HELP dataset_health_summary Dataset counts by status.",
		"# TYPE dataset_health_summary gauge",
		`dataset_health_summary{status="GREEN"} 1`,
		`dataset_health_summary{status="YELLOW"} 0`,
		`dataset_health_summary{status="RED"} 1`,
		`dataset_health_summary{status="TOTAL"} 2`,
		"# HELP dataset_health_dataset_status Per-dataset health status (0=GREEN,1=YELLOW,2=RED).",
		"# TYPE dataset_health_dataset_status gauge",
		`dataset_health_dataset_status{dataset="alpha"} 0`,
		`dataset_health_dataset_status{dataset="beta"} 2`,
		"",
	}, "\n")
	require.Equal(t, want, out)
}

func TestPromLabelValue(t *testing.T) {
	require.Equal(t, `a\\b`, promLabelValue(`a\b`))
	require.Equal(t, `a\nb`, promLabelValue("a\nb"))
	require.Equal(t, `a\"b`, promLabelValue(`a"b`))
	require.Equal(t, "plain", promLabelValue("plain"))
}

func TestRenderHTML(t *testing.T) {
	out, err := RenderHTML(sampleReport())
	require.NoError(t, err)
	page := string(out)

	t.Run("summary cards", func(t *testing.T) {
		require.Contains(t, page, "<h2>Total</h2><div>2</div>")
		require.Contains(t, page, "<h2>Red</h2><div>1</div>")
	})

	t.Run("dataset sections with status pills", func(t *testing.T) {
		require.Contains(t, page, `<section class="dataset green">`)
		require.Contains(t, page, `<section class="dataset red">`)
		require.Contains(t, page, `<span class="status-pill red">RED</span>`)
	})

	t.Run("description renders markdown", func(t *testing.T) {
		require.Contains(t, page, "<strong>hourly</strong>")
	})

	t.Run("check rows carry message and details", func(t *testing.T) {
		require.Contains(t, page, "<td>freshness</td>")
		require.Contains(t, page, "age_hours")
	})

	t.Run("empty fields render as dash", func(t *testing.T) {
		require.Contains(t, page, "<span>Owner:</span> team-b")
	})
}

func TestRenderHTML_EscapesContent(t *testing.T) {
	snap := &dataset.Snapshot{Name: "<script>alert(1)</script>", Metadata: map[string]any{}}
	report := health.NewReport(reportTime, []health.DatasetHealth{
		health.NewDatasetHealth(snap, []health.CheckResult{
			{Name: "freshness", Status: health.StatusGreen, Message: `<img src=x>`},
		}),
	})

	out, err := RenderHTML(report)
	require.NoError(t, err)
	require.NotContains(t, string(out), "<script>alert(1)</script>")
	require.NotContains(t, string(out), "<img src=x>")
}

func TestRenderJUnit(t *testing.T) {
	report := sampleReport()
	report.Datasets[1].Checks = append(report.Datasets[1].Checks, health.CheckResult{
		Name: "schema", Status: health.StatusYellow, Message: "Schema has extra fields.",
	})

	out, err := RenderJUnit(report)
	require.NoError(t, err)
	doc := string(out)

	require.True(t, strings.HasPrefix(doc, xmlHeader), "must start with the XML declaration")
	require.Contains(t, doc, `<testsuites tests="3" failures="1" skipped="1">`)
	require.Contains(t, doc, `<testsuite name="alpha" tests="1" failures="0" skipped="0"`)
	require.Contains(t, doc, `<testsuite name="beta" tests="2" failures="1" skipped="1"`)
	require.Contains(t, doc, `<failure message="bad" type="RED">`)
	require.Contains(t, doc, `<skipped message="Schema has extra fields."></skipped>`)
	require.Contains(t, doc, `<property name="owner" value="team-a"></property>`)
}

const xmlHeader = `<?xml version="1.0" encoding="UTF-8"?>`

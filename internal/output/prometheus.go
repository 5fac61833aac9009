package output

import (
	"fmt"
	"strings"

	"github.com/dataplane-io/datahealth/internal/health"
)

// RenderPrometheus renders the report in the Prometheus text exposition
// format, suitable for the node-exporter textfile collector or a pushgateway.
// Statuses map to gauge values GREEN=0, YELLOW=1, RED=2.
func RenderPrometheus(report *health.Report) []byte {
	var b strings.Builder

	b.WriteString("# HELP dataset_health_status Overall dataset health status (0=GREEN,1=YELLOW,2=RED).\n")
	b.WriteString("# TYPE dataset_health_status gauge\n")
	fmt.Fprintf(&b, "dataset_health_status %d\n", report.Status.Severity())

	b.WriteString("# HELP dataset_health_summary Dataset counts by status.\n")
	b.WriteString("# TYPE dataset_health_summary gauge\n")
	for _, status := range health.AllStatuses() {
		fmt.Fprintf(&b, "dataset_health_summary{status=%q} %d\n", status, report.Summary.Count(status))
	}
	fmt.Fprintf(&b, "dataset_health_summary{status=\"TOTAL\"} %d\n", report.Summary.Total)

	b.WriteString("# HELP dataset_health_dataset_status Per-dataset health status (0=GREEN,1=YELLOW,2=RED).\n")
	b.WriteString("# TYPE dataset_health_dataset_status gauge\n")
	for _, entry := range report.Datasets {
		fmt.Fprintf(&b, "dataset_health_dataset_status{dataset=\"%s\"} %d\n",
			promLabelValue(entry.Dataset.Name), entry.Status.Severity())
	}

	return []byte(b.String())
}

// promLabelValue escapes a label value per the exposition format: backslash,
// newline and double quote.
func promLabelValue(value string) string {
	r := strings.NewReplacer("\\", "\\\\", "\n", "\\n", "\"", "\\\"")
	return r.Replace(value)
}

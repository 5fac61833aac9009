package output

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/dataplane-io/datahealth/internal/health"
)

// jsonlRecord is one line of the jsonl output mode: the identity and verdict
// of a single dataset, for log pipelines that index line-by-line.
type jsonlRecord struct {
	Dataset  string        `json:"dataset"`
	Status   health.Status `json:"status"`
	Owner    string        `json:"owner"`
	Location string        `json:"location"`
}

// RenderJSONL renders one JSON object per dataset, newline-delimited, in
// report order.
func RenderJSONL(report *health.Report) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, entry := range report.Datasets {
		record := jsonlRecord{
			Dataset:  entry.Dataset.Name,
			Status:   entry.Status,
			Owner:    entry.Dataset.Owner,
			Location: entry.Dataset.Location,
		}
		if err := enc.Encode(record); err != nil {
			return nil, fmt.Errorf("encoding dataset %s: %w", entry.Dataset.Name, err)
		}
	}
	return buf.Bytes(), nil
}

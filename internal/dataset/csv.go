package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// listColumns are inventory columns holding ';'-separated lists.
var listColumns = map[string]bool{
	"schema":          true,
	"expected_schema": true,
}

// AddCSV reads a dataset inventory CSV (catalog exports are commonly shaped
// this way) and registers one dataset per row. The first row names the
// columns; identity columns map onto the snapshot and every other column
// lands in Metadata. Empty cells are treated as absent so the checks report
// missing metadata instead of choking on "". Schema columns split on ';'.
func (r *Registry) AddCSV(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening inventory %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return fmt.Errorf("parsing inventory %s: %w", path, err)
	}
	if len(records) == 0 {
		return fmt.Errorf("inventory %s is empty (no header row)", path)
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.TrimSpace(h)
	}

	for i, record := range records[1:] {
		if len(record) != len(headers) {
			return fmt.Errorf("inventory %s: row %d has %d columns, expected %d", path, i+2, len(record), len(headers))
		}

		payload := make(map[string]any, len(headers))
		for j, h := range headers {
			cell := strings.TrimSpace(record[j])
			if h == "" || cell == "" {
				continue
			}
			if listColumns[h] {
				payload[h] = splitList(cell)
			} else {
				payload[h] = cell
			}
		}

		snap, err := snapshotFromPayload(payload, fmt.Sprintf("%s#row%d", path, i+2))
		if err != nil {
			return fmt.Errorf("%s row %d: %w", path, i+2, err)
		}
		if err := r.Add(snap); err != nil {
			return err
		}
	}
	return nil
}

func splitList(cell string) []any {
	parts := strings.Split(cell, ";")
	out := make([]any, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

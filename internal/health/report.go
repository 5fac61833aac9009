package health

import (
	"time"

	"github.com/dataplane-io/datahealth/internal/dataset"
)

// CheckResult is the verdict one check produced for one dataset snapshot.
// Immutable once returned by a check; the runner and formatters only read it.
type CheckResult struct {
	Name    string         `json:"name"`
	Status  Status         `json:"status"`
	Message string         `json:"message"`
	Details map[string]any `json:"details"`
}

// DatasetHealth pairs one dataset with its check evidence. Checks keeps the
// order the checks ran in; Status is the worst-of reduction over Checks.
type DatasetHealth struct {
	Dataset *dataset.Snapshot `json:"dataset"`
	Status  Status            `json:"status"`
	Checks  []CheckResult     `json:"checks"`
}

// Summary counts datasets by verdict.
type Summary struct {
	Green  int `json:"GREEN"`
	Yellow int `json:"YELLOW"`
	Red    int `json:"RED"`
	Total  int `json:"total"`
}

// Count returns the number of datasets holding status.
func (s Summary) Count(status Status) int {
	switch status {
	case StatusGreen:
		return s.Green
	case StatusYellow:
		return s.Yellow
	case StatusRed:
		return s.Red
	}
	return 0
}

// Report is the complete result of one evaluation run: the reference time
// the run used, the per-dataset evidence in input order, and the derived
// overall verdict. Formatters read this tree and never modify it.
type Report struct {
	GeneratedAt time.Time       `json:"generated_at"`
	Status      Status          `json:"status"`
	Summary     Summary         `json:"summary"`
	Datasets    []DatasetHealth `json:"datasets"`
}

// AggregateResults reduces check results to the worst status present.
// An empty list is GREEN: a dataset with nothing to verify is healthy by
// definition, not by accident.
func AggregateResults(results []CheckResult) Status {
	status := StatusGreen
	for _, result := range results {
		status = status.Worse(result.Status)
	}
	return status
}

// AggregateDatasets reduces per-dataset verdicts to the worst status
// present, GREEN when there are no datasets.
func AggregateDatasets(entries []DatasetHealth) Status {
	status := StatusGreen
	for _, entry := range entries {
		status = status.Worse(entry.Status)
	}
	return status
}

// NewDatasetHealth derives the overall verdict for snap from results.
func NewDatasetHealth(snap *dataset.Snapshot, results []CheckResult) DatasetHealth {
	return DatasetHealth{
		Dataset: snap,
		Status:  AggregateResults(results),
		Checks:  results,
	}
}

// NewReport derives the summary and overall verdict for entries evaluated at
// generatedAt. The entry order is preserved.
func NewReport(generatedAt time.Time, entries []DatasetHealth) *Report {
	summary := Summary{Total: len(entries)}
	for _, entry := range entries {
		switch entry.Status {
		case StatusGreen:
			summary.Green++
		case StatusYellow:
			summary.Yellow++
		case StatusRed:
			summary.Red++
		}
	}
	return &Report{
		GeneratedAt: generatedAt,
		Status:      AggregateDatasets(entries),
		Summary:     summary,
		Datasets:    entries,
	}
}

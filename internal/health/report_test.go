package health

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dataplane-io/datahealth/internal/dataset"
)

func resultsOf(statuses ...Status) []CheckResult {
	out := make([]CheckResult, 0, len(statuses))
	for i, s := range statuses {
		out = append(out, CheckResult{Name: string(rune('a' + i)), Status: s})
	}
	return out
}

// permute returns every ordering of statuses.
func permute(statuses []Status) [][]Status {
	if len(statuses) <= 1 {
		return [][]Status{append([]Status(nil), statuses...)}
	}
	var out [][]Status
	for i := range statuses {
		rest := make([]Status, 0, len(statuses)-1)
		rest = append(rest, statuses[:i]...)
		rest = append(rest, statuses[i+1:]...)
		for _, tail := range permute(rest) {
			out = append(out, append([]Status{statuses[i]}, tail...))
		}
	}
	return out
}

func TestAggregateResults(t *testing.T) {
	t.Run("empty list is green", func(t *testing.T) {
		require.Equal(t, StatusGreen, AggregateResults(nil))
		require.Equal(t, StatusGreen, AggregateResults([]CheckResult{}))
	})

	t.Run("all green stays green", func(t *testing.T) {
		require.Equal(t, StatusGreen, AggregateResults(resultsOf(StatusGreen, StatusGreen)))
	})

	t.Run("yellow outranks green", func(t *testing.T) {
		require.Equal(t, StatusYellow, AggregateResults(resultsOf(StatusGreen, StatusYellow, StatusGreen)))
	})

	t.Run("one red outranks everything", func(t *testing.T) {
		require.Equal(t, StatusRed, AggregateResults(resultsOf(StatusGreen, StatusGreen, StatusGreen, StatusRed)))
	})

	t.Run("invariant under permutation", func(t *testing.T) {
		base := []Status{StatusRed, StatusGreen, StatusYellow}
		for _, perm := range permute(base) {
			require.Equal(t, StatusRed, AggregateResults(resultsOf(perm...)))
		}

		base = []Status{StatusYellow, StatusGreen, StatusGreen}
		for _, perm := range permute(base) {
			require.Equal(t, StatusYellow, AggregateResults(resultsOf(perm...)))
		}
	})
}

func TestAggregateDatasets(t *testing.T) {
	entries := func(statuses ...Status) []DatasetHealth {
		out := make([]DatasetHealth, 0, len(statuses))
		for _, s := range statuses {
			out = append(out, DatasetHealth{Status: s})
		}
		return out
	}

	t.Run("empty list is green", func(t *testing.T) {
		require.Equal(t, StatusGreen, AggregateDatasets(nil))
	})

	t.Run("worst dataset wins", func(t *testing.T) {
		require.Equal(t, StatusRed, AggregateDatasets(entries(StatusGreen, StatusRed)))
		require.Equal(t, StatusYellow, AggregateDatasets(entries(StatusYellow, StatusGreen)))
	})

	t.Run("invariant under permutation", func(t *testing.T) {
		base := []Status{StatusGreen, StatusRed, StatusYellow}
		for _, perm := range permute(base) {
			require.Equal(t, StatusRed, AggregateDatasets(entries(perm...)))
		}
	})
}

func TestNewDatasetHealth(t *testing.T) {
	snap := &dataset.Snapshot{Name: "orders"}
	results := resultsOf(StatusGreen, StatusYellow)

	entry := NewDatasetHealth(snap, results)
	require.Equal(t, snap, entry.Dataset)
	require.Equal(t, StatusYellow, entry.Status)
	require.Equal(t, results, entry.Checks)
}

func TestNewReport(t *testing.T) {
	now := time.Date(2026, time.February, 7, 18, 30, 0, 0, time.UTC)
	entries := []DatasetHealth{
		{Dataset: &dataset.Snapshot{Name: "alpha"}, Status: StatusGreen},
		{Dataset: &dataset.Snapshot{Name: "beta"}, Status: StatusRed},
		{Dataset: &dataset.Snapshot{Name: "gamma"}, Status: StatusYellow},
	}

	report := NewReport(now, entries)
	require.Equal(t, now, report.GeneratedAt)
	require.Equal(t, StatusRed, report.Status)
	require.Equal(t, Summary{Green: 1, Yellow: 1, Red: 1, Total: 3}, report.Summary)

	t.Run("input order is preserved", func(t *testing.T) {
		require.Equal(t, "alpha", report.Datasets[0].Dataset.Name)
		require.Equal(t, "beta", report.Datasets[1].Dataset.Name)
		require.Equal(t, "gamma", report.Datasets[2].Dataset.Name)
	})

	t.Run("empty run is green", func(t *testing.T) {
		empty := NewReport(now, nil)
		require.Equal(t, StatusGreen, empty.Status)
		require.Equal(t, Summary{}, empty.Summary)
	})
}

func TestSummary_Count(t *testing.T) {
	s := Summary{Green: 3, Yellow: 2, Red: 1, Total: 6}
	require.Equal(t, 3, s.Count(StatusGreen))
	require.Equal(t, 2, s.Count(StatusYellow))
	require.Equal(t, 1, s.Count(StatusRed))
	require.Equal(t, 0, s.Count(Status("PURPLE")))
}

// Package runlog records the lifecycle of one evaluation run as
// newline-delimited JSON, one timestamped event per line. The log is an
// append-only audit trail: what ran, in what order, and what each check
// decided.
package runlog

import "time"

// EventType identifies the kind of run event.
type EventType string

const (
	EventRunStart        EventType = "run_start"
	EventRunComplete     EventType = "run_complete"
	EventDatasetStart    EventType = "dataset_start"
	EventDatasetComplete EventType = "dataset_complete"
	EventCheckResult     EventType = "check_result"
	EventError           EventType = "error"
)

// Event is a single timestamped entry in a run log.
type Event struct {
	Timestamp time.Time      `json:"timestamp"`
	Type      EventType      `json:"type"`
	Data      map[string]any `json:"data,omitempty"`
}

// NewEvent creates an event with the current timestamp.
func NewEvent(t EventType, data map[string]any) Event {
	return Event{
		Timestamp: time.Now().UTC(),
		Type:      t,
		Data:      data,
	}
}

// RunStartData returns event data for a run start.
func RunStartData(datasetCount, checkCount int, referenceTime time.Time) map[string]any {
	return map[string]any{
		"dataset_count":  datasetCount,
		"check_count":    checkCount,
		"reference_time": referenceTime.UTC().Format(time.RFC3339),
	}
}

// RunCompleteData returns event data for a run completion.
func RunCompleteData(status string, green, yellow, red int, durationMs int64) map[string]any {
	return map[string]any{
		"status":      status,
		"green":       green,
		"yellow":      yellow,
		"red":         red,
		"duration_ms": durationMs,
	}
}

// DatasetStartData returns event data for a dataset evaluation start.
func DatasetStartData(name string, num, total int) map[string]any {
	return map[string]any{
		"dataset":        name,
		"dataset_num":    num,
		"total_datasets": total,
	}
}

// DatasetCompleteData returns event data for a dataset verdict.
func DatasetCompleteData(name, status string) map[string]any {
	return map[string]any{
		"dataset": name,
		"status":  status,
	}
}

// CheckResultData returns event data for a single check result.
func CheckResultData(dataset, check, status, message string) map[string]any {
	return map[string]any{
		"dataset": dataset,
		"check":   check,
		"status":  status,
		"message": message,
	}
}

// ErrorData returns event data for a run-level error.
func ErrorData(message string) map[string]any {
	return map[string]any{
		"message": message,
	}
}

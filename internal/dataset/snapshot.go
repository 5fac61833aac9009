package dataset

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Snapshot is an immutable description of one dataset at evaluation time:
// identity fields plus the declared and observed metadata that checks compare
// (timestamps, record counts, byte sizes, schema field lists). A snapshot is
// constructed once per run by a loader and never mutated afterwards.
type Snapshot struct {
	Name        string
	Description string
	Location    string
	Owner       string

	// Metadata holds every definition key that is not an identity field,
	// e.g. last_updated, freshness_hours, record_count, expected_min_records.
	Metadata map[string]any

	// Source records where the definition came from (file path or blob URL).
	Source string
}

// Lookup returns the metadata value for key. Keys that are absent or
// explicitly null in the definition both report ok == false.
func (s *Snapshot) Lookup(key string) (any, bool) {
	v, ok := s.Metadata[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// MarshalJSON flattens the snapshot into a single object: the metadata keys
// at the top level with the identity fields alongside them, mirroring the
// shape of the definition files.
func (s *Snapshot) MarshalJSON() ([]byte, error) {
	payload := make(map[string]any, len(s.Metadata)+5)
	for k, v := range s.Metadata {
		payload[k] = v
	}
	payload["name"] = s.Name
	payload["description"] = s.Description
	payload["location"] = s.Location
	payload["owner"] = s.Owner
	payload["source"] = s.Source
	return json.Marshal(payload)
}

// ToFloat coerces the scalar forms the YAML decoder produces (integers,
// floats, numeric strings) into a float64.
func ToFloat(v any) (float64, error) {
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case float32:
		return float64(n), nil
	case float64:
		return n, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", n)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("not a number: %T", v)
	}
}

// ToStrings coerces a YAML sequence into a list of strings, stringifying
// scalar items. Values that are not sequences yield nil.
func ToStrings(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		out = append(out, stringify(item))
	}
	return out
}

func stringify(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

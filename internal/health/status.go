package health

import (
	"fmt"
	"strings"
)

// Status is the tri-state verdict attached to a check result, a dataset, and
// a whole report.
type Status string

const (
	StatusGreen  Status = "GREEN"
	StatusYellow Status = "YELLOW"
	StatusRed    Status = "RED"
)

// AllStatuses lists the defined statuses from best to worst.
func AllStatuses() []Status {
	return []Status{StatusGreen, StatusYellow, StatusRed}
}

// Known reports whether s is one of the three defined statuses.
func (s Status) Known() bool {
	switch s {
	case StatusGreen, StatusYellow, StatusRed:
		return true
	}
	return false
}

// Severity ranks statuses for the worst-of reduction and doubles as the
// numeric form exported to metric backends: GREEN=0, YELLOW=1, RED=2.
// Unknown statuses rank as RED so malformed data can never mask a failure.
func (s Status) Severity() int {
	switch s {
	case StatusGreen:
		return 0
	case StatusYellow:
		return 1
	default:
		return 2
	}
}

// Worse returns the more severe of s and other.
func (s Status) Worse(other Status) Status {
	if other.Severity() > s.Severity() {
		return other
	}
	return s
}

// ParseStatus normalizes raw into a Status, accepting any casing.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.Known() {
		return "", fmt.Errorf("unknown status: %q", raw)
	}
	return s, nil
}

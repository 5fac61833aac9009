// Package plugin adapts external executables into health checks. A plugin is
// any executable named datahealth-check-<name>; it receives the dataset
// snapshot and reference time as JSON on stdin and prints one check result
// as JSON on stdout. Protocol violations surface as check faults, which the
// engine absorbs as RED results.
package plugin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/dataplane-io/datahealth/internal/dataset"
	"github.com/dataplane-io/datahealth/internal/health"
)

// defaultTimeout bounds one plugin invocation. The engine itself has no
// timeout semantics; the adapter owns this policy for out-of-process checks.
const defaultTimeout = 30 * time.Second

// request is the JSON document written to the plugin's stdin.
type request struct {
	Dataset       *dataset.Snapshot `json:"dataset"`
	ReferenceTime time.Time         `json:"reference_time"`
}

// response is the JSON document expected on the plugin's stdout.
type response struct {
	Status  string         `json:"status"`
	Message string         `json:"message"`
	Details map[string]any `json:"details"`
}

// ExecCheck runs an external executable as a health check.
type ExecCheck struct {
	name    string
	path    string
	timeout time.Duration
}

// Option configures an ExecCheck.
type Option func(*ExecCheck)

// WithTimeout overrides the per-invocation timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *ExecCheck) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// NewExecCheck wraps the executable at path as a check named name.
func NewExecCheck(name, path string, opts ...Option) *ExecCheck {
	c := &ExecCheck{name: name, path: path, timeout: defaultTimeout}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *ExecCheck) Name() string { return c.name }

func (c *ExecCheck) Description() string {
	return fmt.Sprintf("External check (%s).", c.path)
}

// Evaluate invokes the executable with the snapshot and reference time. Any
// failure (exit status, timeout, malformed output) is returned as an error
// for the engine's fault boundary to capture.
func (c *ExecCheck) Evaluate(ctx context.Context, snap *dataset.Snapshot, now time.Time) (*health.CheckResult, error) {
	payload, err := json.Marshal(request{Dataset: snap, ReferenceTime: now})
	if err != nil {
		return nil, fmt.Errorf("encoding plugin input: %w", err)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(timeoutCtx, c.path)
	cmd.Stdin = bytes.NewReader(payload)
	cmd.Env = append(cmd.Environ(),
		fmt.Sprintf("DATAHEALTH_DATASET=%s", snap.Name),
		fmt.Sprintf("DATAHEALTH_REFERENCE_TIME=%s", now.UTC().Format(time.RFC3339)),
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if timeoutCtx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("plugin timed out after %s", c.timeout)
		}
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return nil, fmt.Errorf("plugin exited with error: %w; stderr: %s", err, detail)
		}
		return nil, fmt.Errorf("plugin exited with error: %w", err)
	}

	var resp response
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		return nil, fmt.Errorf("plugin produced invalid JSON: %w", err)
	}
	status, err := health.ParseStatus(resp.Status)
	if err != nil {
		return nil, fmt.Errorf("plugin produced invalid result: %w", err)
	}

	details := resp.Details
	if details == nil {
		details = map[string]any{}
	}
	return &health.CheckResult{
		Name:    c.name,
		Status:  status,
		Message: resp.Message,
		Details: details,
	}, nil
}

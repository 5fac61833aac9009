package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dataplane-io/datahealth/internal/checks"
	"github.com/dataplane-io/datahealth/internal/dataset"
	"github.com/dataplane-io/datahealth/internal/health"
)

// Runner executes every registered check against every snapshot and
// assembles the run's Report. It holds no state between runs: the report is
// a pure function of (snapshots, reference time, registry).
type Runner struct {
	registry *checks.Registry

	// workers > 1 evaluates datasets concurrently. Checks within one
	// dataset always run sequentially in registry order.
	workers int

	// referenceTime is the run-wide "now" handed to every check. Zero means
	// wall clock at run start; that is the only ambient clock read anywhere
	// in the engine.
	referenceTime time.Time

	progressMu sync.Mutex
	listeners  []ProgressListener
}

// ProgressListener receives progress updates while a run executes.
type ProgressListener func(event ProgressEvent)

// EventType represents the type of progress event.
type EventType string

const (
	EventEvaluationStart    EventType = "evaluation_start"
	EventEvaluationComplete EventType = "evaluation_complete"
	EventDatasetStart       EventType = "dataset_start"
	EventDatasetComplete    EventType = "dataset_complete"
	EventCheckComplete      EventType = "check_complete"
)

// ProgressEvent represents a progress update.
type ProgressEvent struct {
	EventType     EventType
	Dataset       string
	DatasetNum    int
	TotalDatasets int
	Check         string
	Status        health.Status
	Message       string
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithReferenceTime pins the run-wide reference time so two runs over the
// same inputs produce identical reports.
func WithReferenceTime(t time.Time) RunnerOption {
	return func(r *Runner) {
		r.referenceTime = t
	}
}

// WithWorkers evaluates datasets concurrently on up to n workers. Values
// below 2 keep execution sequential.
func WithWorkers(n int) RunnerOption {
	return func(r *Runner) {
		r.workers = n
	}
}

// NewRunner creates a runner over a fully built registry. The registry must
// not change afterwards.
func NewRunner(registry *checks.Registry, opts ...RunnerOption) *Runner {
	r := &Runner{
		registry:  registry,
		listeners: []ProgressListener{},
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// OnProgress registers a progress listener.
func (r *Runner) OnProgress(listener ProgressListener) {
	r.progressMu.Lock()
	defer r.progressMu.Unlock()
	r.listeners = append(r.listeners, listener)
}

func (r *Runner) notifyProgress(event ProgressEvent) {
	r.progressMu.Lock()
	listeners := make([]ProgressListener, len(r.listeners))
	copy(listeners, r.listeners)
	r.progressMu.Unlock()

	for _, listener := range listeners {
		listener(event)
	}
}

// Evaluate runs every registered check against every snapshot and returns
// the assembled report. Dataset order in the report equals input order
// whether execution is sequential or concurrent. The only error conditions
// are external (context cancellation); check failures never surface here,
// they are absorbed into the report as RED results.
func (r *Runner) Evaluate(ctx context.Context, snaps []*dataset.Snapshot) (*health.Report, error) {
	now := r.referenceTime
	if now.IsZero() {
		now = time.Now().UTC()
	}

	r.notifyProgress(ProgressEvent{
		EventType:     EventEvaluationStart,
		TotalDatasets: len(snaps),
	})

	checkList := r.registry.List()

	var entries []health.DatasetHealth
	var err error
	if r.workers > 1 {
		entries, err = r.runConcurrent(ctx, snaps, now, checkList)
	} else {
		entries, err = r.runSequential(ctx, snaps, now, checkList)
	}
	if err != nil {
		return nil, err
	}

	report := health.NewReport(now, entries)

	r.notifyProgress(ProgressEvent{
		EventType:     EventEvaluationComplete,
		TotalDatasets: len(snaps),
		Status:        report.Status,
	})

	return report, nil
}

func (r *Runner) runSequential(ctx context.Context, snaps []*dataset.Snapshot, now time.Time, checkList []checks.Check) ([]health.DatasetHealth, error) {
	entries := make([]health.DatasetHealth, 0, len(snaps))
	for i, snap := range snaps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		entries = append(entries, r.evaluateSnapshot(ctx, snap, now, checkList, i+1, len(snaps)))
	}
	return entries, nil
}

func (r *Runner) runConcurrent(ctx context.Context, snaps []*dataset.Snapshot, now time.Time, checkList []checks.Check) ([]health.DatasetHealth, error) {
	entries := make([]health.DatasetHealth, len(snaps))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for i, snap := range snaps {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			entries[i] = r.evaluateSnapshot(gctx, snap, now, checkList, i+1, len(snaps))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}

// evaluateSnapshot runs the checks for one snapshot in registry order and
// derives the dataset's verdict.
func (r *Runner) evaluateSnapshot(ctx context.Context, snap *dataset.Snapshot, now time.Time, checkList []checks.Check, num, total int) health.DatasetHealth {
	r.notifyProgress(ProgressEvent{
		EventType:     EventDatasetStart,
		Dataset:       snap.Name,
		DatasetNum:    num,
		TotalDatasets: total,
	})

	results := make([]health.CheckResult, 0, len(checkList))
	for _, chk := range checkList {
		result := r.runCheck(ctx, chk, snap, now)
		results = append(results, result)

		r.notifyProgress(ProgressEvent{
			EventType:     EventCheckComplete,
			Dataset:       snap.Name,
			DatasetNum:    num,
			TotalDatasets: total,
			Check:         result.Name,
			Status:        result.Status,
			Message:       result.Message,
		})
	}

	entry := health.NewDatasetHealth(snap, results)

	r.notifyProgress(ProgressEvent{
		EventType:     EventDatasetComplete,
		Dataset:       snap.Name,
		DatasetNum:    num,
		TotalDatasets: total,
		Status:        entry.Status,
	})

	return entry
}

// runCheck invokes one check and converts every abnormal outcome (panic,
// returned error, missing or malformed result) into a synthetic RED result,
// so one broken check can never abort its siblings or another dataset.
func (r *Runner) runCheck(ctx context.Context, chk checks.Check, snap *dataset.Snapshot, now time.Time) (result health.CheckResult) {
	name := chk.Name()

	defer func() {
		if rec := recover(); rec != nil {
			slog.Warn("check panicked", "check", name, "dataset", snap.Name, "panic", rec)
			result = faultResult(name, fmt.Sprintf("panic: %v", rec))
		}
	}()

	res, err := chk.Evaluate(ctx, snap, now)
	switch {
	case err != nil:
		slog.Warn("check failed", "check", name, "dataset", snap.Name, "error", err)
		return faultResult(name, err.Error())
	case res == nil:
		return faultResult(name, "check returned no result")
	case res.Status == "":
		return faultResult(name, "check result has no status")
	case !res.Status.Known():
		return faultResult(name, fmt.Sprintf("check returned unknown status %q", res.Status))
	}

	// The registry name is authoritative for provenance, whatever the
	// result claims.
	out := *res
	out.Name = name
	return out
}

func faultResult(name, fault string) health.CheckResult {
	return health.CheckResult{
		Name:    name,
		Status:  health.StatusRed,
		Message: fmt.Sprintf("Check %s failed.", name),
		Details: map[string]any{"error": fault},
	}
}

package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/dataplane-io/datahealth/internal/checks"
	"github.com/dataplane-io/datahealth/internal/dataset"
	"github.com/dataplane-io/datahealth/internal/engine"
	"github.com/dataplane-io/datahealth/internal/health"
	"github.com/dataplane-io/datahealth/internal/output"
	"github.com/dataplane-io/datahealth/internal/plugin"
	"github.com/dataplane-io/datahealth/internal/runlog"
)

var (
	datasetsPath  string
	blobAccount   string
	blobContainer string
	policiesPath  string
	pluginsDir    string
	nowFlag       string
	outputFormat  string
	outPath       string
	toStdout      bool
	outJSONPath   string
	outHTMLPath   string
	noJSON        bool
	noHTML        bool
	failOn        string
	parallel      bool
	workers       int
	runLogPath    string
	verbose       bool

	cwNamespace  string
	cwRegion     string
	cwDimensions string
	cwPerDataset bool
)

const formatCloudWatch = "cloudwatch"

func newRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Evaluate datasets and report their health",
		Long: `Evaluate datasets against every registered health check.

Dataset definitions are loaded from --datasets (a YAML or CSV file, or a
directory of them) and/or an Azure Blob Storage container via --container.
Built-in checks always run; --policies adds declarative policy checks and
--plugins adds external check executables.

By default the run prints a summary and writes health-report.json plus
health-report.html to the working directory. Use --output to emit a single
format instead (report-json, summary-json, jsonl, prometheus, junit, or
cloudwatch). A path ending in .gz is written gzip-compressed.`,
		Args: cobra.NoArgs,
		RunE: runCommandE,
	}

	cmd.Flags().StringVarP(&datasetsPath, "datasets", "d", "", "Dataset definition file or directory")
	cmd.Flags().StringVar(&blobAccount, "account", "", "Blob storage account URL (https://<account>.blob.core.windows.net)")
	cmd.Flags().StringVar(&blobContainer, "container", "", "Blob container holding dataset definitions")
	cmd.Flags().StringVar(&policiesPath, "policies", "", "Policy check definition file (YAML)")
	cmd.Flags().StringVar(&pluginsDir, "plugins", "", "Directory to scan for datahealth-check-* executables")
	cmd.Flags().StringVar(&nowFlag, "now", "", "Reference time override, RFC3339 or epoch seconds (default: wall clock)")
	cmd.Flags().StringVarP(&outputFormat, "output", "o", "", "Single output format: report-json, summary-json, jsonl, prometheus, junit, cloudwatch")
	cmd.Flags().StringVar(&outPath, "out", "", "Output file for --output (default: stdout)")
	cmd.Flags().BoolVar(&toStdout, "stdout", false, "Print the --output artifact to stdout even when --out is set")
	cmd.Flags().StringVar(&outJSONPath, "out-json", "health-report.json", "Report JSON path for the default dual-artifact mode")
	cmd.Flags().StringVar(&outHTMLPath, "out-html", "health-report.html", "Dashboard HTML path for the default dual-artifact mode")
	cmd.Flags().BoolVar(&noJSON, "no-json", false, "Skip writing the report JSON artifact")
	cmd.Flags().BoolVar(&noHTML, "no-html", false, "Skip writing the dashboard HTML artifact")
	cmd.Flags().StringVar(&failOn, "fail-on", "none", "Exit non-zero when the overall status reaches this level: none, yellow, red")
	cmd.Flags().BoolVar(&parallel, "parallel", false, "Evaluate datasets concurrently")
	cmd.Flags().IntVar(&workers, "workers", 0, "Number of concurrent workers (default: 4, requires --parallel)")
	cmd.Flags().StringVar(&runLogPath, "run-log", "", "Append evaluation lifecycle events to this NDJSON file")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output with per-check progress")

	cmd.Flags().StringVar(&cwNamespace, "cloudwatch-namespace", "DatasetHealth", "CloudWatch metric namespace for --output cloudwatch")
	cmd.Flags().StringVar(&cwRegion, "cloudwatch-region", "", "AWS region override for --output cloudwatch")
	cmd.Flags().StringVar(&cwDimensions, "cloudwatch-dimensions", "", "Base dimensions as key=value pairs, comma separated")
	cmd.Flags().BoolVar(&cwPerDataset, "cloudwatch-per-dataset", true, "Push a per-dataset status gauge alongside the summary metrics")

	return cmd
}

func runCommandE(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Validate enum flags before any loading happens.
	switch failOn {
	case "none", "yellow", "red":
	default:
		return fmt.Errorf("invalid --fail-on value %q: expected none, yellow, or red", failOn)
	}
	switch outputFormat {
	case "", "report-json", "summary-json", "jsonl", "prometheus", "junit", formatCloudWatch:
	default:
		return fmt.Errorf("unknown output format: %s (supported: report-json, summary-json, jsonl, prometheus, junit, cloudwatch)", outputFormat)
	}

	// The CLI resolves the reference time so the audit log, the report, and
	// every check agree on one instant.
	refTime := time.Now().UTC()
	if nowFlag != "" {
		parsed, ok := dataset.ParseTime(nowFlag)
		if !ok {
			return fmt.Errorf("invalid --now value %q: expected RFC3339 or epoch seconds", nowFlag)
		}
		refTime = parsed
	}

	snaps, err := loadSnapshots(ctx, datasetsPath, blobAccount, blobContainer)
	if err != nil {
		return err
	}

	registry, err := buildCheckRegistry(policiesPath, pluginsDir)
	if err != nil {
		return err
	}

	runnerOpts := []engine.RunnerOption{engine.WithReferenceTime(refTime)}
	if parallel {
		w := workers
		if w <= 0 {
			w = 4
		}
		runnerOpts = append(runnerOpts, engine.WithWorkers(w))
	}
	runner := engine.NewRunner(registry, runnerOpts...)

	// When the rendered artifact itself goes to stdout, keep stdout free of
	// progress lines so the output stays machine-readable.
	artifactToStdout := outputFormat != "" && outputFormat != formatCloudWatch && (outPath == "" || toStdout)
	if !artifactToStdout {
		if verbose {
			runner.OnProgress(verboseProgressListener)
		} else {
			runner.OnProgress(simpleProgressListener)
		}
	}

	var auditLog runlog.Logger = runlog.NopLogger{}
	if runLogPath != "" {
		jsonLog, err := runlog.NewJSONLogger(runLogPath)
		if err != nil {
			return fmt.Errorf("opening run log: %w", err)
		}
		defer jsonLog.Close() //nolint:errcheck
		auditLog = jsonLog
	}
	runner.OnProgress(runlogListener(auditLog))

	if !artifactToStdout {
		fmt.Printf("Evaluating %d dataset(s) with %d check(s)\n", len(snaps), registry.Len())
		if parallel {
			w := workers
			if w <= 0 {
				w = 4
			}
			fmt.Printf("Parallel: %d workers\n", w)
		}
		if nowFlag != "" {
			fmt.Printf("Reference time: %s\n", refTime.Format(time.RFC3339))
		}
		fmt.Println()
	}

	start := time.Now()
	auditLog.Log(runlog.NewEvent(runlog.EventRunStart, runlog.RunStartData(len(snaps), registry.Len(), refTime))) //nolint:errcheck

	report, err := runner.Evaluate(ctx, snaps)
	if err != nil {
		auditLog.Log(runlog.NewEvent(runlog.EventError, runlog.ErrorData(err.Error()))) //nolint:errcheck
		return fmt.Errorf("evaluation failed: %w", err)
	}
	duration := time.Since(start)

	auditLog.Log(runlog.NewEvent(runlog.EventRunComplete, runlog.RunCompleteData( //nolint:errcheck
		string(report.Status),
		report.Summary.Green, report.Summary.Yellow, report.Summary.Red,
		duration.Milliseconds())))

	if err := emitOutputs(ctx, cmd, report, duration); err != nil {
		return err
	}

	return checkThreshold(report.Status)
}

// loadSnapshots builds the dataset list from the configured sources. An empty
// result is legal as long as at least one source was named: a fleet with no
// datasets is vacuously healthy.
func loadSnapshots(ctx context.Context, path, account, container string) ([]*dataset.Snapshot, error) {
	if path == "" && container == "" {
		return nil, fmt.Errorf("no dataset source: use --datasets or --container")
	}

	reg := dataset.NewRegistry()
	if path != "" {
		if err := reg.LoadPath(path); err != nil {
			return nil, fmt.Errorf("loading datasets: %w", err)
		}
	}
	if container != "" {
		loader, err := dataset.NewBlobLoader(account, container)
		if err != nil {
			return nil, err
		}
		if err := loader.Load(ctx, reg); err != nil {
			return nil, err
		}
	}
	return reg.List(), nil
}

// buildCheckRegistry assembles built-ins plus whatever --policies and
// --plugins contribute. External checks are registered in one batch so their
// execution order is sorted across both sources.
func buildCheckRegistry(policiesPath, pluginsDir string) (*checks.Registry, error) {
	registry, err := checks.NewDefaultRegistry()
	if err != nil {
		return nil, err
	}

	var discovered []checks.Check
	if policiesPath != "" {
		policyChecks, err := checks.LoadPolicyChecks(policiesPath)
		if err != nil {
			return nil, fmt.Errorf("loading policies: %w", err)
		}
		discovered = append(discovered, policyChecks...)
	}
	if pluginsDir != "" {
		pluginChecks, err := plugin.Discover(pluginsDir)
		if err != nil {
			return nil, fmt.Errorf("discovering plugins: %w", err)
		}
		discovered = append(discovered, pluginChecks...)
	}
	if err := registry.RegisterDiscovered(discovered); err != nil {
		return nil, err
	}
	return registry, nil
}

// emitOutputs renders the report in the configured shape. With no --output
// the dual-artifact default applies; otherwise a single artifact is rendered
// or pushed.
func emitOutputs(ctx context.Context, cmd *cobra.Command, report *health.Report, duration time.Duration) error {
	out := cmd.OutOrStdout()

	switch {
	case outputFormat == "":
		printSummary(out, report, duration)
		return writeDefaultArtifacts(out, report)

	case outputFormat == formatCloudWatch:
		printSummary(out, report, duration)
		count, err := publishCloudWatch(ctx, report)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Published %d metric(s) to CloudWatch namespace %s\n", count, cwNamespace) //nolint:errcheck
		return nil

	default:
		data, err := renderArtifact(outputFormat, report)
		if err != nil {
			return err
		}
		if outPath != "" {
			printSummary(out, report, duration)
			if err := output.WriteFile(outPath, data); err != nil {
				return fmt.Errorf("writing %s: %w", outPath, err)
			}
			fmt.Fprintf(out, "Results saved to: %s\n", outPath) //nolint:errcheck
		}
		if outPath == "" || toStdout {
			if _, err := out.Write(data); err != nil {
				return err
			}
		}
		return nil
	}
}

func writeDefaultArtifacts(out io.Writer, report *health.Report) error {
	if !noJSON {
		data, err := output.RenderReportJSON(report)
		if err != nil {
			return fmt.Errorf("rendering report: %w", err)
		}
		if err := output.WriteFile(outJSONPath, data); err != nil {
			return fmt.Errorf("writing %s: %w", outJSONPath, err)
		}
		fmt.Fprintf(out, "Report saved to: %s\n", outJSONPath) //nolint:errcheck
	}
	if !noHTML {
		data, err := output.RenderHTML(report)
		if err != nil {
			return fmt.Errorf("rendering dashboard: %w", err)
		}
		if err := output.WriteFile(outHTMLPath, data); err != nil {
			return fmt.Errorf("writing %s: %w", outHTMLPath, err)
		}
		fmt.Fprintf(out, "Dashboard saved to: %s\n", outHTMLPath) //nolint:errcheck
	}
	return nil
}

// renderArtifact renders report in one of the single-artifact text formats.
func renderArtifact(format string, report *health.Report) ([]byte, error) {
	switch format {
	case "report-json":
		return output.RenderReportJSON(report)
	case "summary-json":
		return output.RenderSummaryJSON(report)
	case "jsonl":
		return output.RenderJSONL(report)
	case "prometheus":
		return output.RenderPrometheus(report), nil
	case "junit":
		return output.RenderJUnit(report)
	}
	return nil, fmt.Errorf("unknown output format: %s", format)
}

func publishCloudWatch(ctx context.Context, report *health.Report) (int, error) {
	baseDims, err := output.ParseDimensions(cwDimensions)
	if err != nil {
		return 0, err
	}
	publisher, err := output.NewCloudWatchPublisher(ctx, cwNamespace, cwRegion)
	if err != nil {
		return 0, err
	}
	return publisher.Publish(ctx, report, baseDims, cwPerDataset)
}

// checkThreshold converts the overall status into a ThresholdError when it
// meets the --fail-on level.
func checkThreshold(status health.Status) error {
	var limit health.Status
	switch failOn {
	case "none":
		return nil
	case "yellow":
		limit = health.StatusYellow
	case "red":
		limit = health.StatusRed
	}
	if status.Severity() >= limit.Severity() {
		return &ThresholdError{
			Message: fmt.Sprintf("overall status %s meets the --fail-on=%s threshold", status, failOn),
		}
	}
	return nil
}

// runlogListener bridges engine progress events into the NDJSON audit log.
// Run start and completion are logged by the caller, which knows the summary
// counts and wall-clock duration.
func runlogListener(logger runlog.Logger) engine.ProgressListener {
	return func(event engine.ProgressEvent) {
		switch event.EventType {
		case engine.EventDatasetStart:
			logger.Log(runlog.NewEvent(runlog.EventDatasetStart, //nolint:errcheck
				runlog.DatasetStartData(event.Dataset, event.DatasetNum, event.TotalDatasets)))
		case engine.EventCheckComplete:
			logger.Log(runlog.NewEvent(runlog.EventCheckResult, //nolint:errcheck
				runlog.CheckResultData(event.Dataset, event.Check, string(event.Status), event.Message)))
		case engine.EventDatasetComplete:
			logger.Log(runlog.NewEvent(runlog.EventDatasetComplete, //nolint:errcheck
				runlog.DatasetCompleteData(event.Dataset, string(event.Status))))
		}
	}
}

func verboseProgressListener(event engine.ProgressEvent) {
	switch event.EventType {
	case engine.EventDatasetStart:
		fmt.Printf("[%d/%d] Checking dataset: %s\n", event.DatasetNum, event.TotalDatasets, event.Dataset)
	case engine.EventCheckComplete:
		fmt.Printf("  %s %s: %s\n", statusIcon(event.Status), event.Check, event.Message)
	case engine.EventDatasetComplete:
		fmt.Printf("  Dataset %s: %s\n\n", event.Dataset, renderStatus(event.Status))
	}
}

func simpleProgressListener(event engine.ProgressEvent) {
	if event.EventType == engine.EventDatasetComplete {
		fmt.Printf("%s [%d/%d] %s\n", statusIcon(event.Status), event.DatasetNum, event.TotalDatasets, event.Dataset)
	}
}

// Package wizard collects a dataset definition interactively and renders it
// as YAML ready for the definitions directory.
package wizard

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// DatasetSpec holds all fields collected during the interactive wizard.
// Numeric fields stay strings so the rendered YAML carries exactly what the
// user typed; validators guarantee they parse.
type DatasetSpec struct {
	Name               string
	Description        string
	Location           string
	Owner              string
	FreshnessHours     string
	ExpectedMinRecords string
	ExpectedSchema     []string
}

const definitionTemplate = `name: {{ .Name }}
{{- if .Description }}
description: >-
  {{ .Description }}
{{- end }}
{{- if .Location }}
location: {{ .Location }}
{{- end }}
{{- if .Owner }}
owner: {{ .Owner }}
{{- end }}
{{- if .FreshnessHours }}
freshness_hours: {{ .FreshnessHours }}
{{- end }}
{{- if .ExpectedMinRecords }}
expected_min_records: {{ .ExpectedMinRecords }}
{{- end }}
{{- if .ExpectedSchema }}
expected_schema:
{{- range .ExpectedSchema }}
  - {{ . }}
{{- end }}
{{- end }}
`

// ValidateName rejects empty dataset names and names with path-traversal
// characters, since the name becomes the definition filename.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("dataset name must not be empty")
	}
	cleaned := filepath.Clean(name)
	if cleaned == ".." || strings.Contains(cleaned, "/") || strings.Contains(cleaned, "\\") {
		return fmt.Errorf("dataset name %q contains invalid path characters", name)
	}
	return nil
}

// Validate applies the same field rules the interactive form enforces, for
// specs assembled from flags instead of prompts.
func (s *DatasetSpec) Validate() error {
	if err := ValidateName(s.Name); err != nil {
		return err
	}
	if err := optionalNumber(s.FreshnessHours); err != nil {
		return fmt.Errorf("freshness hours: %w", err)
	}
	if err := optionalInteger(s.ExpectedMinRecords); err != nil {
		return fmt.Errorf("expected minimum records: %w", err)
	}
	return nil
}

// RunDatasetWizard runs an interactive huh form to collect a dataset
// definition. If initialName is non-empty, it pre-populates the name field.
func RunDatasetWizard(in io.Reader, out io.Writer, initialName string) (*DatasetSpec, error) {
	var (
		name       = initialName
		desc       string
		location   string
		owner      string
		freshness  string
		minRecords string
		schemaRaw  string
	)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Dataset name").
				Description("Unique name, used as the definition filename").
				Placeholder("user_sessions").
				Value(&name).
				Validate(func(s string) error {
					return ValidateName(strings.TrimSpace(s))
				}),
			huh.NewInput().
				Title("Description").
				Description("What this dataset contains (Markdown allowed)").
				Placeholder("Hourly session events from the web tier").
				Value(&desc),
			huh.NewInput().
				Title("Location").
				Description("Where the data lives").
				Placeholder("s3://lake/user_sessions").
				Value(&location),
			huh.NewInput().
				Title("Owner").
				Description("Owning team or person").
				Placeholder("team-data").
				Value(&owner),
			huh.NewInput().
				Title("Freshness SLA (hours)").
				Description("How stale the data may get before turning RED").
				Placeholder("24").
				Value(&freshness).
				Validate(optionalNumber),
			huh.NewInput().
				Title("Expected minimum records").
				Description("Row count below which the dataset degrades").
				Placeholder("1000000").
				Value(&minRecords).
				Validate(optionalInteger),
			huh.NewInput().
				Title("Expected schema fields").
				Description("Comma-separated field names").
				Placeholder("user_id, session_id, ts").
				Value(&schemaRaw),
		),
	).
		WithInput(in).
		WithOutput(out)

	// Use accessible mode for non-TTY input (e.g., tests, piped input).
	if f, ok := in.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		form = form.WithAccessible(true)
	}

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}

	return &DatasetSpec{
		Name:               strings.TrimSpace(name),
		Description:        strings.TrimSpace(desc),
		Location:           strings.TrimSpace(location),
		Owner:              strings.TrimSpace(owner),
		FreshnessHours:     strings.TrimSpace(freshness),
		ExpectedMinRecords: strings.TrimSpace(minRecords),
		ExpectedSchema:     splitAndTrim(schemaRaw),
	}, nil
}

// GenerateDefinitionYAML renders a dataset definition from the given spec.
func GenerateDefinitionYAML(spec *DatasetSpec) (string, error) {
	tmpl, err := template.New("definition").Parse(definitionTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, spec); err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}
	return buf.String(), nil
}

func optionalNumber(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return fmt.Errorf("must be a number")
	}
	return nil
}

func optionalInteger(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := strconv.Atoi(s); err != nil {
		return fmt.Errorf("must be a whole number")
	}
	return nil
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	var result []string
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

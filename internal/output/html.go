package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/yuin/goldmark"

	"github.com/dataplane-io/datahealth/internal/health"
)

// htmlPage is the self-contained report page: summary cards on top, one
// section per dataset with a status pill and the check evidence table.
const htmlPage = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>{{ .Title }}</title>
  <style>
    :root {
      --green: #1f7a1f;
      --yellow: #b36b00;
      --red: #b00020;
      --bg: #f6f7fb;
      --card: #ffffff;
      --text: #1b1f24;
      --muted: #5d6771;
    }
    * { box-sizing: border-box; }
    body { margin: 0; font-family: Arial, sans-serif; color: var(--text); background: var(--bg); }
    .container { max-width: 1100px; margin: 0 auto; padding: 32px 24px 60px; }
    header { display: flex; align-items: baseline; justify-content: space-between; flex-wrap: wrap; gap: 12px; }
    h1 { margin: 0; font-size: 28px; }
    .muted { color: var(--muted); font-size: 14px; }
    .summary { display: grid; grid-template-columns: repeat(auto-fit, minmax(180px, 1fr)); gap: 16px; margin: 24px 0; }
    .card { background: var(--card); padding: 16px; border-radius: 10px; box-shadow: 0 2px 8px rgba(0, 0, 0, 0.04); }
    .card h2 { margin: 0 0 6px; font-size: 18px; }
    .status-pill {
      display: inline-flex; align-items: center; gap: 6px; font-weight: 600;
      padding: 4px 10px; border-radius: 999px; font-size: 12px; letter-spacing: 0.04em;
    }
    .status-pill.green { background: rgba(31, 122, 31, 0.12); color: var(--green); }
    .status-pill.yellow { background: rgba(179, 107, 0, 0.12); color: var(--yellow); }
    .status-pill.red { background: rgba(176, 0, 32, 0.12); color: var(--red); }
    .dataset { background: var(--card); border-radius: 12px; padding: 20px; margin-bottom: 20px; border-left: 6px solid transparent; }
    .dataset.green { border-left-color: var(--green); }
    .dataset.yellow { border-left-color: var(--yellow); }
    .dataset.red { border-left-color: var(--red); }
    .dataset-header { display: flex; align-items: center; justify-content: space-between; gap: 12px; flex-wrap: wrap; }
    .dataset-header h2 { margin: 0; font-size: 20px; }
    .description { font-size: 14px; margin: 10px 0 0; }
    .description p { margin: 4px 0; }
    .meta-grid {
      display: grid; grid-template-columns: repeat(auto-fit, minmax(220px, 1fr));
      gap: 10px 20px; margin: 14px 0 18px; font-size: 14px;
    }
    .meta-grid div span { color: var(--muted); }
    table { width: 100%; border-collapse: collapse; }
    th, td { text-align: left; padding: 10px 8px; font-size: 14px; }
    th { border-bottom: 1px solid #e0e4ea; color: var(--muted); }
    tr + tr td { border-top: 1px solid #f0f2f5; }
    details { margin-top: 6px; }
    pre { background: #f4f5f8; padding: 10px; border-radius: 8px; overflow-x: auto; font-size: 12px; }
  </style>
</head>
<body>
  <div class="container">
    <header>
      <h1>{{ .Title }}</h1>
      <div class="muted">Generated at {{ .GeneratedAt }}</div>
    </header>
    <section class="summary">
      <div class="card"><h2>Total</h2><div>{{ .Summary.Total }}</div></div>
      <div class="card"><h2>Green</h2><div>{{ .Summary.Green }}</div></div>
      <div class="card"><h2>Yellow</h2><div>{{ .Summary.Yellow }}</div></div>
      <div class="card"><h2>Red</h2><div>{{ .Summary.Red }}</div></div>
    </section>
{{ range .Datasets }}    <section class="dataset {{ .StatusClass }}">
      <div class="dataset-header">
        <h2>{{ .Name }}</h2>
        <span class="status-pill {{ .StatusClass }}">{{ .Status }}</span>
      </div>
{{ if .Description }}      <div class="description">{{ .Description }}</div>
{{ end }}      <div class="meta-grid">
        <div><span>Location:</span> {{ .Location }}</div>
        <div><span>Owner:</span> {{ .Owner }}</div>
        <div><span>Source:</span> {{ .Source }}</div>
        <div><span>Last Updated:</span> {{ .LastUpdated }}</div>
      </div>
      <table>
        <thead>
          <tr>
            <th>Check</th>
            <th>Status</th>
            <th>Message</th>
            <th>Details</th>
          </tr>
        </thead>
        <tbody>
{{ range .Checks }}          <tr>
            <td>{{ .Name }}</td>
            <td><span class="status-pill {{ .StatusClass }}">{{ .Status }}</span></td>
            <td>{{ .Message }}</td>
            <td>{{ if .Details }}<details><summary>View</summary><pre>{{ .Details }}</pre></details>{{ else }}-{{ end }}</td>
          </tr>
{{ end }}        </tbody>
      </table>
    </section>
{{ end }}  </div>
</body>
</html>
`

var htmlTemplate = template.Must(template.New("report").Parse(htmlPage))

type htmlPageData struct {
	Title       string
	GeneratedAt string
	Summary     health.Summary
	Datasets    []htmlDataset
}

type htmlDataset struct {
	Name        string
	Status      health.Status
	StatusClass string
	Description template.HTML
	Location    string
	Owner       string
	Source      string
	LastUpdated string
	Checks      []htmlCheck
}

type htmlCheck struct {
	Name        string
	Status      health.Status
	StatusClass string
	Message     string
	Details     string
}

// RenderHTML renders the report as a self-contained HTML page. Dataset
// descriptions are treated as Markdown.
func RenderHTML(report *health.Report) ([]byte, error) {
	data := htmlPageData{
		Title:       "Dataset Health",
		GeneratedAt: report.GeneratedAt.Format(time.RFC3339),
		Summary:     report.Summary,
	}

	for _, entry := range report.Datasets {
		snap := entry.Dataset
		ds := htmlDataset{
			Name:        snap.Name,
			Status:      entry.Status,
			StatusClass: statusClass(entry.Status),
			Location:    dashIfEmpty(snap.Location),
			Owner:       dashIfEmpty(snap.Owner),
			Source:      dashIfEmpty(snap.Source),
			LastUpdated: lastUpdatedText(snap.Metadata["last_updated"]),
		}

		if desc := strings.TrimSpace(snap.Description); desc != "" {
			rendered, err := renderMarkdown(desc)
			if err != nil {
				return nil, fmt.Errorf("rendering description for %s: %w", snap.Name, err)
			}
			ds.Description = rendered
		}

		for _, check := range entry.Checks {
			ds.Checks = append(ds.Checks, htmlCheck{
				Name:        check.Name,
				Status:      check.Status,
				StatusClass: statusClass(check.Status),
				Message:     check.Message,
				Details:     detailsJSON(check.Details),
			})
		}
		data.Datasets = append(data.Datasets, ds)
	}

	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("rendering report page: %w", err)
	}
	return buf.Bytes(), nil
}

// renderMarkdown converts a Markdown description to HTML. goldmark escapes
// raw HTML in the source by default, so descriptions cannot inject markup.
func renderMarkdown(source string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := goldmark.New().Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

func statusClass(status health.Status) string {
	return strings.ToLower(string(status))
}

// detailsJSON renders check details as sorted, indented JSON, empty when
// there are none.
func detailsJSON(details map[string]any) string {
	if len(details) == 0 {
		return ""
	}
	out, err := json.MarshalIndent(details, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", details)
	}
	return string(out)
}

func lastUpdatedText(v any) string {
	switch t := v.(type) {
	case nil:
		return "-"
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func dashIfEmpty(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

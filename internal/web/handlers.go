package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dataplane-io/datahealth/internal/health"
	"github.com/dataplane-io/datahealth/internal/output"
)

// Version is set at build time or defaults to dev.
var Version = "dev"

// Evaluator produces a fresh health report on demand.
type Evaluator interface {
	Evaluate(ctx context.Context) (*health.Report, error)
}

// EvaluatorFunc adapts a plain function to the Evaluator interface.
type EvaluatorFunc func(ctx context.Context) (*health.Report, error)

func (f EvaluatorFunc) Evaluate(ctx context.Context) (*health.Report, error) {
	return f(ctx)
}

// healthzResponse is the liveness check response.
type healthzResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// errorResponse is returned for errors.
type errorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// Handlers holds the HTTP handler methods for the dashboard and API.
type Handlers struct {
	evaluator Evaluator
	logger    *slog.Logger
}

// NewHandlers creates a new Handlers evaluating through evaluator.
func NewHandlers(evaluator Evaluator, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{evaluator: evaluator, logger: logger}
}

// HandleHealthz returns a simple liveness response. It does not evaluate
// datasets; a RED report is still a healthy server.
func (h *Handlers) HandleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthzResponse{
		Status:  "ok",
		Version: Version,
	})
}

// HandleDashboard serves the HTML report for the current evaluation.
func (h *Handlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	report, ok := h.evaluate(w, r)
	if !ok {
		return
	}
	page, err := output.RenderHTML(report)
	if err != nil {
		h.logger.Error("rendering dashboard failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page) //nolint:errcheck
}

// HandleReport returns the full report as canonical JSON.
func (h *Handlers) HandleReport(w http.ResponseWriter, r *http.Request) {
	report, ok := h.evaluate(w, r)
	if !ok {
		return
	}
	data, err := output.RenderReportJSON(report)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data) //nolint:errcheck
}

// HandleSummary returns the overall status and per-status counts.
func (h *Handlers) HandleSummary(w http.ResponseWriter, r *http.Request) {
	report, ok := h.evaluate(w, r)
	if !ok {
		return
	}
	data, err := output.RenderSummaryJSON(report)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data) //nolint:errcheck
}

// HandleMetrics exposes the report in Prometheus text format.
func (h *Handlers) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	report, ok := h.evaluate(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	w.Write(output.RenderPrometheus(report)) //nolint:errcheck
}

func (h *Handlers) evaluate(w http.ResponseWriter, r *http.Request) (*health.Report, bool) {
	report, err := h.evaluator.Evaluate(r.Context())
	if err != nil {
		h.logger.Error("evaluation failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	return report, true
}

// RegisterRoutes registers the dashboard and API routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, evaluator Evaluator, logger *slog.Logger) {
	h := NewHandlers(evaluator, logger)
	mux.HandleFunc("GET /{$}", h.HandleDashboard)
	mux.HandleFunc("GET /api/report", h.HandleReport)
	mux.HandleFunc("GET /api/summary", h.HandleSummary)
	mux.HandleFunc("GET /metrics", h.HandleMetrics)
	mux.HandleFunc("GET /healthz", h.HandleHealthz)
}

// CORSMiddleware wraps a handler with CORS headers.
// If allowedOrigins is empty, no CORS header is set (same-origin only).
// Otherwise, the request Origin is checked against the allowed list.
func CORSMiddleware(next http.Handler, allowedOrigins ...string) http.Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if len(allowedOrigins) > 0 && origin != "" && allowed[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorResponse{Error: msg, Code: code})
}

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dataplane-io/datahealth/internal/engine"
	"github.com/dataplane-io/datahealth/internal/health"
	"github.com/dataplane-io/datahealth/internal/web"
)

func newServeCommand() *cobra.Command {
	var (
		addr        string
		openFlag    bool
		corsOrigins []string
		datasets    string
		account     string
		container   string
		policies    string
		plugins     string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the health dashboard over HTTP",
		Long: `Serve the dataset health dashboard over HTTP.

Every request re-evaluates the configured datasets, so the dashboard and
the API always reflect the current definitions. Endpoints:

  /             Dashboard HTML
  /api/report   Full report JSON
  /api/summary  Summary JSON
  /metrics      Prometheus text exposition
  /healthz      Liveness probe (no evaluation)

The server binds to loopback by default. The process shuts down cleanly on
SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := buildCheckRegistry(policies, plugins)
			if err != nil {
				return err
			}

			// Load once up front so a bad source fails at startup instead of
			// on the first request.
			if _, err := loadSnapshots(cmd.Context(), datasets, account, container); err != nil {
				return err
			}

			evaluator := web.EvaluatorFunc(func(ctx context.Context) (*health.Report, error) {
				snaps, err := loadSnapshots(ctx, datasets, account, container)
				if err != nil {
					return nil, err
				}
				return engine.NewRunner(registry).Evaluate(ctx, snaps)
			})

			srv, err := web.New(web.Config{
				Addr:           addr,
				Evaluator:      evaluator,
				AllowedOrigins: corsOrigins,
				OpenBrowser:    openFlag,
				Logger:         slog.Default(),
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "Address to listen on")
	cmd.Flags().BoolVar(&openFlag, "open", false, "Open the dashboard in a browser after startup")
	cmd.Flags().StringArrayVar(&corsOrigins, "cors-origin", nil, "Origin allowed to call the API (can be repeated)")
	cmd.Flags().StringVarP(&datasets, "datasets", "d", "", "Dataset definition file or directory")
	cmd.Flags().StringVar(&account, "account", "", "Blob storage account URL")
	cmd.Flags().StringVar(&container, "container", "", "Blob container holding dataset definitions")
	cmd.Flags().StringVar(&policies, "policies", "", "Policy check definition file (YAML)")
	cmd.Flags().StringVar(&plugins, "plugins", "", "Directory to scan for datahealth-check-* executables")

	return cmd
}

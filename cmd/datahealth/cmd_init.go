package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dataplane-io/datahealth/internal/wizard"
)

func newInitCommand() *cobra.Command {
	var (
		dir            string
		noInput        bool
		description    string
		owner          string
		location       string
		freshnessHours string
		minRecords     string
		schemaFields   []string
	)

	cmd := &cobra.Command{
		Use:   "init [name]",
		Short: "Scaffold a dataset definition",
		Long: `Scaffold a dataset definition YAML file.

Runs a guided wizard that collects the dataset's identity and health
expectations, then writes <name>.yaml into the target directory. With
--no-input the wizard is skipped and the definition is built from flags,
which suits CI and scripted setups.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			initialName := ""
			if len(args) > 0 {
				initialName = args[0]
			}

			var spec *wizard.DatasetSpec
			if noInput {
				spec = &wizard.DatasetSpec{
					Name:               initialName,
					Description:        description,
					Location:           location,
					Owner:              owner,
					FreshnessHours:     freshnessHours,
					ExpectedMinRecords: minRecords,
					ExpectedSchema:     schemaFields,
				}
				if err := spec.Validate(); err != nil {
					return err
				}
			} else {
				var err error
				spec, err = wizard.RunDatasetWizard(cmd.InOrStdin(), cmd.OutOrStdout(), initialName)
				if err != nil {
					return err
				}
			}

			content, err := wizard.GenerateDefinitionYAML(spec)
			if err != nil {
				return fmt.Errorf("generating definition: %w", err)
			}

			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("creating directory %s: %w", dir, err)
			}

			defPath := filepath.Join(dir, spec.Name+".yaml")
			if _, err := os.Stat(defPath); err == nil {
				return fmt.Errorf("%s already exists", defPath)
			}
			if err := os.WriteFile(defPath, []byte(content), 0o644); err != nil {
				return fmt.Errorf("writing definition: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Created dataset definition:") //nolint:errcheck
			fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", defPath)              //nolint:errcheck
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "Directory to write the definition into")
	cmd.Flags().BoolVar(&noInput, "no-input", false, "Build the definition from flags without prompting")
	cmd.Flags().StringVar(&description, "description", "", "Dataset description (with --no-input)")
	cmd.Flags().StringVar(&owner, "owner", "", "Owning team or person (with --no-input)")
	cmd.Flags().StringVar(&location, "location", "", "Storage location, e.g. s3://lake/events (with --no-input)")
	cmd.Flags().StringVar(&freshnessHours, "freshness-hours", "", "Freshness SLA in hours (with --no-input)")
	cmd.Flags().StringVar(&minRecords, "min-records", "", "Expected minimum record count (with --no-input)")
	cmd.Flags().StringSliceVar(&schemaFields, "schema", nil, "Expected schema fields, comma separated (with --no-input)")

	return cmd
}

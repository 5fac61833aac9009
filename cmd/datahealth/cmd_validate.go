package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/dataplane-io/datahealth/internal/dataset"
)

func newValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <path>",
		Short: "Validate dataset definition files",
		Long: `Validate dataset definition files without evaluating anything.

The path may be a single file or a directory. YAML definitions are checked
against the definition schema; CSV inventories are checked by loading them.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			violations, err := dataset.ValidateDefinitionPath(args[0])
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if len(violations) == 0 {
				fmt.Fprintf(w, "✓ %s is valid\n", args[0]) //nolint:errcheck
				return nil
			}

			files := make([]string, 0, len(violations))
			for file := range violations {
				files = append(files, file)
			}
			sort.Strings(files)

			for _, file := range files {
				fmt.Fprintf(w, "✗ %s\n", file) //nolint:errcheck
				for _, violation := range violations[file] {
					fmt.Fprintf(w, "    %s\n", violation) //nolint:errcheck
				}
			}
			return fmt.Errorf("%d definition file(s) failed validation", len(files))
		},
	}
	return cmd
}

package main

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
)

func newChecksCommand() *cobra.Command {
	var policies string
	var plugins string

	cmd := &cobra.Command{
		Use:   "checks",
		Short: "List registered health checks",
		Long: `List every check a run would execute, in execution order.

Built-in checks come first. Add --policies or --plugins to include the
checks those sources would contribute.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := buildCheckRegistry(policies, plugins)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			list := registry.List()

			nameWidth := len("Check")
			for _, chk := range list {
				if n := runewidth.StringWidth(chk.Name()); n > nameWidth {
					nameWidth = n
				}
			}

			fmt.Fprintf(w, "%s  %s\n", padRight("Check", nameWidth), "Description")     //nolint:errcheck
			fmt.Fprintf(w, "%s\n", strings.Repeat("-", nameWidth+2+len("Description"))) //nolint:errcheck
			for _, chk := range list {
				fmt.Fprintf(w, "%s  %s\n", padRight(chk.Name(), nameWidth), chk.Description()) //nolint:errcheck
			}
			fmt.Fprintf(w, "\n%d check(s) registered\n", registry.Len()) //nolint:errcheck
			return nil
		},
	}

	cmd.Flags().StringVar(&policies, "policies", "", "Policy check definition file (YAML)")
	cmd.Flags().StringVar(&plugins, "plugins", "", "Directory to scan for datahealth-check-* executables")

	return cmd
}

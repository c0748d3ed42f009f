package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"macrokit/macro"
)

func newListCmd(_ *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the registered macros",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)

			fmt.Fprintln(w, "NAME\tKIND\tMODULE")

			for _, reg := range macro.Default.All() {
				fmt.Fprintf(w, "%s\t%s\t%s\n", reg.Name, reg.Kind, reg.Ident)
			}

			return w.Flush()
		},
	}
}

package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/deploymenttheory/go-flow-composer/internal/examples"
	"github.com/spf13/cobra"
)

// examplesCmd lists the registered example workflows
var examplesCmd = &cobra.Command{
	Use:   "examples",
	Short: "List the example workflows that can be built",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tDESCRIPTION\tINPUTS")
		for _, e := range examples.All() {
			var inputs []string
			for _, in := range e.Inputs {
				name := "--" + in.Name
				if in.Required {
					name += " (required)"
				}
				inputs = append(inputs, name)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", e.Name, e.Description, strings.Join(inputs, ", "))
		}
		return w.Flush()
	},
}

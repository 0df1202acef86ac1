package cmd

import (
	"fmt"

	"github.com/deploymenttheory/go-flow-composer/internal/common/errors"
	"github.com/deploymenttheory/go-flow-composer/internal/composition"
	"github.com/deploymenttheory/go-flow-composer/internal/config"
	"github.com/deploymenttheory/go-flow-composer/internal/logger"
	"github.com/spf13/cobra"
)

var composeValidateOnly bool

// composeCmd runs a composition file
var composeCmd = &cobra.Command{
	Use:   "compose <composition.yaml>",
	Short: "Run the packaging steps listed in a composition file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file := args[0]
		logger.LogInfo("Loading composition", map[string]interface{}{"file": file})

		comp, err := composition.LoadComposition(file, &config.Instance)
		if err != nil {
			logger.LogError("Failed to load composition", err, map[string]interface{}{"file": file})
			return err
		}

		if errs := composition.ValidateComposition(comp); len(errs) > 0 {
			for _, err := range errs {
				logger.LogError("Composition validation error", err, nil)
			}
			return fmt.Errorf("%w: composition has %d validation errors", errors.ErrInvalidArgument, len(errs))
		}

		if composeValidateOnly {
			fmt.Fprintf(cmd.OutOrStdout(), "Composition %s is valid (%d steps)\n", comp.Name, len(comp.Steps))
			return nil
		}

		if err := composition.NewRunner(&config.Instance).Execute(cmd.Context(), comp); err != nil {
			logger.LogError("Composition execution failed", err, nil)
			return err
		}

		if archive, ok := comp.Variables["last_archive"]; ok {
			fmt.Fprintf(cmd.OutOrStdout(), "Last package written to %v\n", archive)
		}
		return nil
	},
}

func init() {
	composeCmd.Flags().BoolVar(&composeValidateOnly, "validate", false, "only validate the composition file")
}

package cmd

import (
	"fmt"

	"github.com/deploymenttheory/go-flow-composer/internal/build"
	"github.com/deploymenttheory/go-flow-composer/internal/config"
	"github.com/deploymenttheory/go-flow-composer/internal/logger"
	"github.com/spf13/cobra"
)

var packageFlowFlags struct {
	manifest string
	output   string
	checksum string
}

// packageFlowCmd repackages an exported flow manifest as a single-flow package
var packageFlowCmd = &cobra.Command{
	Use:   "package-flow",
	Short: "Package an exported flow manifest as a single-flow package",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		output := packageFlowFlags.output
		if output == "" {
			output = config.Instance.Packaging.OutputDir
		}
		checksum := packageFlowFlags.checksum
		if checksum == "" {
			checksum = config.Instance.Packaging.Checksum
		}

		path, err := build.Flow(cmd.Context(), packageFlowFlags.manifest, output, checksum, logger.Named("package-flow"))
		if err != nil {
			logger.LogError("Flow packaging failed", err, map[string]interface{}{
				"manifest": packageFlowFlags.manifest,
			})
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Flow package written to %s\n", path)
		return nil
	},
}

func init() {
	packageFlowCmd.Flags().StringVarP(&packageFlowFlags.manifest, "manifest", "m", "", "flow manifest JSON file")
	packageFlowCmd.Flags().StringVarP(&packageFlowFlags.output, "output", "o", "", "output directory (default from packaging.output_dir)")
	packageFlowCmd.Flags().StringVar(&packageFlowFlags.checksum, "checksum", "", "checksum file to write: sha256, sha512 or none (default from packaging.checksum)")
	packageFlowCmd.MarkFlagRequired("manifest")
}

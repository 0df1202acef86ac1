package cmd

import (
	"fmt"
	"strings"

	"github.com/deploymenttheory/go-flow-composer/internal/build"
	"github.com/deploymenttheory/go-flow-composer/internal/common/errors"
	"github.com/deploymenttheory/go-flow-composer/internal/config"
	"github.com/deploymenttheory/go-flow-composer/internal/examples"
	"github.com/deploymenttheory/go-flow-composer/internal/logger"
	"github.com/spf13/cobra"
)

var buildFlags struct {
	example         string
	solutionName    string
	solutionVersion string
	output          string
	managed         bool
	sourceArchive   string
	checksum        string
	inputs          []string
}

// buildCmd assembles an example workflow and writes its solution package
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the solution package of an example workflow",
	Long: `Build assembles the named example workflow, discovers its connectors and
writes <solution>.zip to the output directory.

Example inputs can be given with their own flags (for example --list-id) or
as repeated --input key=value pairs.`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	f := buildCmd.Flags()
	f.StringVarP(&buildFlags.example, "example", "e", "", "example to build (see 'flow-composer examples')")
	f.StringVarP(&buildFlags.solutionName, "solution-name", "s", "", "unique name of the solution")
	f.StringVarP(&buildFlags.solutionVersion, "solution-version", "v", "", "solution version (default "+build.DefaultVersion+")")
	f.StringVarP(&buildFlags.output, "output", "o", "", "output directory (default from packaging.output_dir)")
	f.BoolVar(&buildFlags.managed, "managed", false, "export the solution as managed")
	f.StringVar(&buildFlags.sourceArchive, "source-archive", "", "also write the unpacked solution as tar.gz, tar.bz2 or tar.xz")
	f.StringVar(&buildFlags.checksum, "checksum", "", "checksum file to write: sha256, sha512 or none (default from packaging.checksum)")
	f.StringArrayVar(&buildFlags.inputs, "input", nil, "example input as key=value (repeatable)")

	for _, in := range examples.AllInputs() {
		f.String(in.Name, "", in.Description)
	}

	buildCmd.MarkFlagRequired("example")
}

// parseInputs merges the named input flags with --input pairs. Pairs win.
func parseInputs(cmd *cobra.Command, pairs []string) (examples.Inputs, error) {
	in := examples.Inputs{}
	for _, def := range examples.AllInputs() {
		if cmd.Flags().Changed(def.Name) {
			in[def.Name], _ = cmd.Flags().GetString(def.Name)
		}
	}

	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: --input %q must be key=value", errors.ErrInvalidArgument, pair)
		}
		in[key] = value
	}
	return in, nil
}

func runBuild(cmd *cobra.Command, args []string) error {
	inputs, err := parseInputs(cmd, buildFlags.inputs)
	if err != nil {
		return err
	}

	req := build.Request{
		Example:         buildFlags.example,
		SolutionName:    buildFlags.solutionName,
		SolutionVersion: buildFlags.solutionVersion,
		Managed:         buildFlags.managed,
		OutputDir:       buildFlags.output,
		SourceArchive:   buildFlags.sourceArchive,
		Checksum:        buildFlags.checksum,
		Inputs:          inputs,
	}

	logger.LogInfo("Starting build", map[string]interface{}{
		"example": req.Example,
		"managed": req.Managed,
	})

	res, err := build.Example(cmd.Context(), &config.Instance, req, logger.Named("build"))
	if err != nil {
		logger.LogError("Build failed", err, map[string]interface{}{"example": req.Example})
		return err
	}

	for _, wf := range res.Workflows {
		logger.LogInfo("Packaged workflow", map[string]interface{}{
			"name":       wf.Name,
			"id":         wf.ID,
			"connectors": wf.Connectors.Names(),
		})
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Solution %s v%s written to %s\n",
		res.Solution.UniqueName, res.Solution.Version, res.Archive)
	if res.Checksum != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Checksum %s\n", res.Checksum)
	}
	return nil
}

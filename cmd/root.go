package cmd

import (
	stderrors "errors"

	"github.com/deploymenttheory/go-flow-composer/internal/common/errors"
	"github.com/deploymenttheory/go-flow-composer/internal/config"
	"github.com/deploymenttheory/go-flow-composer/internal/logger"
	"github.com/spf13/cobra"
)

var cfgFile string

// rootCmd represents the base CLI command
var rootCmd = &cobra.Command{
	Use:   "flow-composer",
	Short: "Compose Power Automate workflows and package them for import",
	Long: `flow-composer assembles workflow definitions from code, discovers the
connectors they reference and serializes them into solution packages that
the Power Platform import system accepts.

It can also repackage an exported flow manifest as a single-flow package.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// An explicit --config is loaded now; otherwise main already ran the
		// default search.
		if cmd.Flags().Changed("config") && cfgFile != "" {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			config.Instance = *cfg
			config.ConfigLoaded = true
			config.ConfigFile = cfgFile
		}

		// CLI flags override config settings
		if cmd.Flags().Changed("debug") {
			config.Instance.Debug, _ = cmd.Flags().GetBool("debug")
		}
		if cmd.Flags().Changed("log-format") {
			config.Instance.LogFormat, _ = cmd.Flags().GetString("log-format")
		}
		if cmd.Flags().Changed("log-file") {
			config.Instance.LogFile, _ = cmd.Flags().GetString("log-file")
		}

		if err := logger.InitLogger(logger.LoggerConfig{
			Debug:     config.Instance.Debug,
			LogFormat: config.Instance.LogFormat,
			LogFile:   config.Instance.LogFile,
		}); err != nil {
			return err
		}

		logger.LogDebug("Configuration ready", map[string]interface{}{
			"config_file": config.ConfigFile,
			"environment": config.Instance.Environment.Mode,
		})
		return nil
	},
}

// Execute runs the root command and returns the first error encountered.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is search in standard locations)")
	rootCmd.PersistentFlags().Bool("debug", config.Instance.Debug, "Enable debug logging")
	rootCmd.PersistentFlags().String("log-format", "human", "Log format: json or human")
	rootCmd.PersistentFlags().String("log-file", "", "Also write logs to this file")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(packageFlowCmd)
	rootCmd.AddCommand(examplesCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(composeCmd)
	rootCmd.AddCommand(versionCmd)
}

// ExitCode maps an error returned by Execute to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case stderrors.Is(err, errors.ErrConfigurationMissing),
		stderrors.Is(err, errors.ErrConfigInvalid),
		stderrors.Is(err, errors.ErrConfigParseError):
		return 2
	case stderrors.Is(err, errors.ErrExampleNotFound):
		return 3
	default:
		return 1
	}
}

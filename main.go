package main

import (
	"fmt"
	"os"

	"github.com/deploymenttheory/go-flow-composer/cmd"
	"github.com/deploymenttheory/go-flow-composer/internal/config"
	"github.com/deploymenttheory/go-flow-composer/internal/logger"
)

func main() {
	// Get app configuration file from environment if specified
	configFile := os.Getenv("FLOW_COMPOSER_CONFIG")

	if err := config.Initialize(configFile); err != nil {
		// Logging is not configured yet, so report directly
		fmt.Fprintf(os.Stderr, "Error initializing configuration: %v\n", err)
		os.Exit(cmd.ExitCode(err))
	}

	err := cmd.Execute()
	if err != nil {
		logger.LogError("Command failed", err, nil)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}

	// Ensure logs are flushed before exit
	_ = logger.Sync()
	os.Exit(cmd.ExitCode(err))
}

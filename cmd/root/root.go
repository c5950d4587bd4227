// Package root implements the command line interface for Handoff.
package root

import (
	"log"
	"os"

	"github.com/handoff-dev/handoff/app"
	"github.com/handoff-dev/handoff/cmd/output"
	"github.com/handoff-dev/handoff/cmd/project"
	"github.com/handoff-dev/handoff/cmd/serve"
	"github.com/handoff-dev/handoff/cmd/version"
	"github.com/handoff-dev/handoff/config"
	"github.com/handoff-dev/handoff/logging"
	"github.com/spf13/cobra"
)

var appConfig *config.Config

func Execute() {
	if err := NewCmdRoot(config.GetDefaultDataDir()).Execute(); err != nil {
		os.Exit(1)
	}
}

func NewCmdRoot(defaultDataDir string) *cobra.Command {
	var dataDir string

	cmd := &cobra.Command{
		Use:   "handoff",
		Short: "Client delivery portal for project milestones and deliverables",
		Long: `Handoff tracks delivery projects through their milestones, versioned
deliverables, review feedback and shared files.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// The serve command loads its own configuration from file
			if cmd.Name() == "serve" {
				return
			}

			// Initialize configuration for CLI with data directory override
			var err error
			appConfig, err = config.NewConfig(dataDir)
			if err != nil {
				log.Fatalf("Failed to initialize configuration: %s", err)
			}

			// Initialize colors (CLI flag overrides config)
			colorDisabled := !appConfig.ColorEnabled
			if output.NoColor.IsSet() {
				colorDisabled = true // --no-color flag overrides config
			}
			output.InitColors(colorDisabled)

			// Initialize logging (CLI flag overrides config)
			logLevel := appConfig.LogLevel
			if logging.LogLevel.IsSet() {
				logLevel = logging.LogLevel.String()
			}
			logging.InitLogging(logLevel)

			// Initialize application with config
			if err := app.InitializeWithConfig(appConfig, nil); err != nil {
				log.Fatalf("Failed to initialize application: %s", err)
			}
		},
	}

	cmd.PersistentFlags().
		StringVarP(&dataDir, "data-dir", "d", defaultDataDir, "Data directory for Handoff configuration and uploads")
	cmd.PersistentFlags().VarP(logging.LogLevel, "log-level", "l", "Set log verbosity level")
	cmd.PersistentFlags().VarP(output.NoColor, "no-color", "n", "Disable colored terminal output")

	cmd.AddCommand(project.NewCmdProject())
	cmd.AddCommand(serve.NewCmdServe())
	cmd.AddCommand(version.NewCmdVersion())
	return cmd
}

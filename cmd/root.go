package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rparikh-liberate/smart-rpa-poc/internal/config"
	"github.com/rparikh-liberate/smart-rpa-poc/internal/logging"
	"github.com/rparikh-liberate/smart-rpa-poc/internal/output"
	"github.com/rparikh-liberate/smart-rpa-poc/internal/version"
)

var (
	cfg *config.Config
	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "smart-rpa",
	Short: "Record and replay semantic browser workflows",
	Long: `smart-rpa records browser automation sessions as named, replayable
workflows addressed by stable semantic selectors (role + accessible name +
ordinal) instead of the ephemeral element references a browser tool hands out.

The recorder and workflow store are exposed to AI agents as MCP tools via
the serve command.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version.Version, version.Commit, version.BuildDate)
	rootCmd.PersistentFlags().String("config", "", "Config file (default: ./smart-rpa.yaml, ~/.config/smart-rpa/smart-rpa.yaml)")
	rootCmd.PersistentFlags().String("store-dir", "", "Workflow storage directory (overrides config)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().String("format", "yaml", "Output format for CLI commands: yaml, json")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfgFile, _ := rootCmd.PersistentFlags().GetString("config")

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}

		if dir, _ := rootCmd.PersistentFlags().GetString("store-dir"); dir != "" {
			cfg.Store.Dir = dir
		}
		if level, _ := rootCmd.PersistentFlags().GetString("log-level"); level != "" {
			cfg.Logger.Level = level
		}

		log = logging.New(cfg.Logger)

		switch format, _ := rootCmd.PersistentFlags().GetString("format"); format {
		case "yaml":
			output.OutputFormat = output.FormatYAML
		case "json":
			output.OutputFormat = output.FormatJSON
		default:
			return fmt.Errorf("unsupported format: %s (use yaml or json)", format)
		}
		return nil
	}
}

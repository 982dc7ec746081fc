package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/odbccore/engine/internal/config"
	"github.com/odbccore/engine/internal/engine"
)

var (
	cfgFile  string
	logLevel string

	eng *engine.Engine
)

var rootCmd = &cobra.Command{
	Use:   "odbcctl",
	Short: "Drive the odbccore engine from the command line",
	Long: `odbcctl connects to a database through the same engine cmd/libodbc
exposes to C callers, without the cgo boundary in between — useful for
smoke-testing a DSN, a driver, or a query plan during development.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile, cmd.Flags())
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}
		eng = engine.New(cfg)
		return nil
	},
}

// Execute runs the root command, exiting the process with status 1 on
// failure (the teacher's examples/* programs do the equivalent with
// log.Fatal; cobra's own error path is used here instead since every
// subcommand returns its error rather than calling os.Exit directly).
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a config file (optional)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level")
}

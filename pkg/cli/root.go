// Package cli implements the tprlog command-line interface.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/tprlog/tprlog/pkg/config"
	"github.com/tprlog/tprlog/pkg/logging"
)

var (
	// Persistent flags available to all subcommands
	cfgPath    string
	logRoot    string
	dataDir    string
	logLevel   string
	jsonOutput bool

	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tprlog",
	Short: "tprlog reconstructs install download traffic from access logs",
	Long: `tprlog parses web-server access logs captured while an install agent
downloaded a product, and reconstructs the HTTP range requests it made as a
deduplicated replay list. Replay lists can be inspected and diffed against
each other without re-issuing any network traffic.

Configuration can be provided via flags, TPRLOG_* environment variables, or
a YAML configuration file (default: <user config dir>/tprlog/config.yaml).`,
	SilenceUsage:  true,
	SilenceErrors: true, // We handle errors in Execute()
}

// Execute runs the root command. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Config file path (default: <user config dir>/tprlog/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logRoot, "log-root", "", "Directory searched for log artifacts")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Directory for extracted replay sets")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Diagnostic log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output command results in JSON format")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tprlog %s (commit %s, built %s)\n", Version, Commit, BuildDate)
	},
}

// loadConfig merges the config file, environment, and persistent flags.
func loadConfig() (config.Config, error) {
	path := cfgPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}

	// Flags win over file and environment.
	if logRoot != "" {
		cfg.LogRoot = logRoot
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	return cfg, nil
}

func newLogger(cfg config.Config) *slog.Logger {
	return logging.New(logging.Config{
		Level:  logging.ParseLevel(cfg.LogLevel),
		Format: logging.FormatText,
	})
}

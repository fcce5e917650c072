package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/reportkit/internal/config"
	"github.com/JonMunkholm/reportkit/internal/logging"
)

// build-time override (e.g. -ldflags "-X main.version=1.2.3")
var version = "dev"

// rootOptions holds the global flags shared by every subcommand.
type rootOptions struct {
	verbose      bool
	debug        bool
	settingsFile string
	serverURL    string
	apiKey       string

	cfg *config.Config
}

func main() {
	root := newRootCmd()
	root.SilenceUsage = true
	root.SilenceErrors = true

	if err := root.Execute(); err != nil {
		slog.Debug("command failed", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %s\n", formatError(err))
		os.Exit(1)
	}
}

// newRootCmd creates the root Cobra command.
func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "reportctl",
		Short: "Export datatables and manage scheduled reports",
		Long: strings.TrimSpace(`
reportctl exports datatable JSON files to CSV or XLSX and manages scheduled
reports on a reportkit server.

CSV and workbook defaults come from the environment (CSV_SEPARATOR, ...) and
can be overridden by a YAML settings file:

  csv:separator: ";"
  csv:quoteValues: false
  csv:escapeFormulaValues: true
  export:sheetName: data`),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			initLogging(opts)
			cfg, err := loadConfig(opts.settingsFile)
			if err != nil {
				return err
			}
			opts.cfg = cfg
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose (info) logging")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging (overrides --verbose)")
	cmd.PersistentFlags().StringVar(&opts.settingsFile, "settings", "", "YAML settings file")
	cmd.PersistentFlags().StringVar(&opts.serverURL, "server", envOr("REPORTKIT_URL", "http://localhost:8080"), "reportkit server URL")
	cmd.PersistentFlags().StringVar(&opts.apiKey, "api-key", os.Getenv("REPORTKIT_API_KEY"), "API key sent as X-API-Key")
	cmd.Version = version

	cmd.AddCommand(newExportCmd(opts))
	cmd.AddCommand(newPreviewCmd(opts))
	cmd.AddCommand(newSchedulesCmd(opts))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// newVersionCmd prints version info.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "reportctl version: %s\n", version)
		},
	}
}

// initLogging writes logs to stderr so exported data on stdout stays clean.
func initLogging(opts *rootOptions) {
	level := "warn"
	switch {
	case opts.debug:
		level = "debug"
	case opts.verbose:
		level = "info"
	}
	slog.SetDefault(logging.New(os.Stderr, level, "text"))
	slog.Debug("logging initialized", "level", level)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Package main provides the entry point for the Excel mock interview CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/jonathan/excel-interviewer/internal/transport"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	app := &cliApp{}

	rootCmd := &cobra.Command{
		Use:   "excel_interview",
		Short: "Excel skills mock interview client",
		Long: `Runs an Excel skills mock interview against the interview service: collects the candidate
profile, presents questions, submits answers and shows the final scored report.

Configuration can be loaded from a JSON or YAML file using --config. Environment variables and
command-line flags override config file values.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: app.setup,
		PersistentPostRun: func(*cobra.Command, []string) { app.close() },
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&app.configPath, "config", "", "Path to config file (.json, .yaml or .yml)")
	flags.StringVar(&app.baseURL, "base-url", "", "Interview service base URL (default "+defaultBaseURLHint+")")
	flags.StringVar(&app.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.StringVar(&app.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")
	flags.BoolVarP(&app.verbose, "verbose", "v", false, "Print detailed debug information")

	rootCmd.AddCommand(
		newStartCommand(app),
		newInterviewCommand(app),
		newStatusCommand(app),
		newReportCommand(app),
		newHealthCommand(app),
		newAuthCommand(app),
	)
	return rootCmd
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	rootCmd := newRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, transport.ErrUnauthorized) {
			fmt.Fprintf(os.Stderr, "Your session is not authorized. Run '%s auth login' to sign in.\n", rootCmd.Name())
		}
		os.Exit(1)
	}
}

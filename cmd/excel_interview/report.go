package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonathan/excel-interviewer/internal/report"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type reportOptions struct {
	id       string
	export   string
	asJSON   bool
	noRetry  bool
	detailed bool
}

func newReportCommand(app *cliApp) *cobra.Command {
	opts := &reportOptions{}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show the final report of a completed interview",
		Long: `Fetches the scored report, retrying a few times while the service finishes generating it.
Use --export to save a plain-text copy. A directory (or a path ending in /) gets the default file name.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReport(cmd, app, opts)
		},
	}

	cmd.Flags().StringVar(&opts.id, "id", "", "Interview ID")
	cmd.Flags().StringVarP(&opts.export, "export", "o", "", "Write the plain-text report to this file or directory")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Print the raw report as JSON")
	cmd.Flags().BoolVar(&opts.noRetry, "no-retry", false, "Fail on the first unsuccessful attempt")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "Also print every question with its answer and feedback")
	return cmd
}

func runReport(cmd *cobra.Command, app *cliApp, opts *reportOptions) error {
	interviewID, err := requireID(opts.id)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	retries := app.cfg.ReportRetries
	if opts.noRetry {
		retries = 0
	}
	assembler := report.NewAssembler(app.service, report.Options{
		Retries:    retries,
		RetryDelay: app.cfg.ReportRetryDelay.Std(),
		Logger:     app.logger,
	})

	rep, err := assembler.FetchReport(cmd.Context(), interviewID)
	if err != nil {
		return err
	}

	if opts.asJSON {
		data, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		_, _ = fmt.Fprintln(out, string(data))
	} else {
		app.printer.PrintReportSummary(rep)
		if opts.detailed {
			_, _ = fmt.Fprint(out, report.Export(rep))
		}
	}

	if opts.export == "" {
		return nil
	}

	path := opts.export
	if strings.HasSuffix(path, string(os.PathSeparator)) || isDir(path) {
		path = filepath.Join(path, report.ExportFilename(rep))
	}
	if err := os.WriteFile(path, []byte(report.Export(rep)), 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	app.logger.Info("Report exported", zap.String("path", path))
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Report saved to %s\n", path)
	return nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

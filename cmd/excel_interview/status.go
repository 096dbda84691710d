package main

import (
	"fmt"

	"github.com/jonathan/excel-interviewer/internal/runner"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newStatusCommand(app *cliApp) *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the current status of an interview",
		RunE: func(cmd *cobra.Command, _ []string) error {
			interviewID, err := requireID(id)
			if err != nil {
				return err
			}

			snapshot, err := app.service.GetStatus(cmd.Context(), interviewID)
			if err != nil {
				return err
			}
			app.printer.PrintSession(snapshot)

			if snapshot.Status.Terminal() {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Interview is %s. View the report with: %s report --id %s\n",
					snapshot.Status, cmd.Root().Name(), interviewID)
				return nil
			}

			resolution := runner.ResolveQuestion(snapshot)
			if resolution.Divergent {
				app.logger.Warn("next_question differs from questions[progress.current]",
					zap.String("interview_id", interviewID))
			}
			app.printer.PrintQuestion(snapshot.Progress, resolution.Question, snapshot.CurrentScore)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Interview ID")
	return cmd
}

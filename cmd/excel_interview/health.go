package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newHealthCommand(app *cliApp) *cobra.Command {
	var detailed bool

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check that the interview service is reachable",
		RunE: func(cmd *cobra.Command, _ []string) error {
			health, err := app.service.Health(cmd.Context())
			if err != nil {
				return err
			}

			var details map[string]any
			if detailed {
				details, err = app.service.DetailedHealth(cmd.Context())
				if err != nil {
					return err
				}
			}

			app.printer.PrintHealth(health, details)
			if !health.Healthy() {
				return fmt.Errorf("service reported status %q", health.Status)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&detailed, "detailed", false, "Include the detailed health payload")
	return cmd
}

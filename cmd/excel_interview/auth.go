package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jonathan/excel-interviewer/internal/credentials"
	"github.com/jonathan/excel-interviewer/internal/types"
	"github.com/spf13/cobra"
)

// envPassword lets scripts log in without a flag.
const envPassword = "EXCEL_INTERVIEW_PASSWORD"

func newAuthCommand(app *cliApp) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the stored access token",
	}
	cmd.AddCommand(newLoginCommand(app), newLogoutCommand(app), newAuthStatusCommand(app))
	return cmd
}

func newLoginCommand(app *cliApp) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the access token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			out := cmd.OutOrStdout()
			in := newLineInput(cmd.InOrStdin())

			var err error
			if email == "" {
				if email, err = prompt(ctx, out, in, "Email", "", false); err != nil {
					return err
				}
			}
			if password == "" {
				password = os.Getenv(envPassword)
			}
			if password == "" {
				if password, err = prompt(ctx, out, in, "Password", "", false); err != nil {
					return err
				}
			}

			resp, err := app.service.Login(ctx, types.LoginRequest{Email: email, Password: password})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(out, "✓ Signed in")
			app.printer.PrintUser(resp.User)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password (default $"+envPassword+")")
	return cmd
}

func newLogoutCommand(app *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored access token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.service.Logout(); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "✓ Signed out")
			return nil
		},
	}
}

func newAuthStatusCommand(app *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether a usable access token is stored",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if !credentials.IsAuthenticated(app.creds) {
				_, _ = fmt.Fprintln(out, "Not signed in")
				return nil
			}

			token, err := app.creds.Token()
			if err != nil {
				return err
			}
			info := credentials.Inspect(token)
			switch {
			case info.ExpiresAt != nil:
				_, _ = fmt.Fprintf(out, "Signed in (token expires %s)\n", info.ExpiresAt.Local().Format(time.RFC1123))
			default:
				_, _ = fmt.Fprintln(out, "Signed in")
			}

			user, err := app.service.CurrentUser(cmd.Context())
			if err != nil {
				_, _ = fmt.Fprintf(out, "⚠ Could not verify the token with the service: %v\n", err)
				return nil
			}
			app.printer.PrintUser(user)
			return nil
		},
	}
}

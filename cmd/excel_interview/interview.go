package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jonathan/excel-interviewer/internal/report"
	"github.com/jonathan/excel-interviewer/internal/runner"
	"github.com/jonathan/excel-interviewer/internal/session"
	"github.com/jonathan/excel-interviewer/internal/transport"
	"github.com/jonathan/excel-interviewer/internal/types"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func newInterviewCommand(app *cliApp) *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "interview",
		Short: "Answer the questions of an active interview",
		Long: `Shows each question as it becomes current and reads the answer from stdin.
An answer ends with an empty line. When the interview completes the report summary is shown.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			interviewID, err := requireID(id)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			in := newLineInput(cmd.InOrStdin())
			return runInterview(ctx, cmd, app, in, types.StartInterviewResponse{InterviewID: interviewID})
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Interview ID")
	return cmd
}

// runInterview runs the poll loop and the answer loop side by side until the interview ends.
func runInterview(ctx context.Context, cmd *cobra.Command, app *cliApp, in *lineInput, start types.StartInterviewResponse) error {
	out := cmd.OutOrStdout()

	sess := session.New(nil)
	sess.Begin(start)

	// buffered so callbacks fired from SubmitAnswer never block the answer loop
	views := make(chan runner.View, 16)
	pollErrs := make(chan error, 4)
	r, err := runner.New(app.service, runner.Options{
		InterviewID:  start.InterviewID,
		PollInterval: app.cfg.PollInterval.Std(),
		Session:      sess,
		Logger:       app.logger,
		Callbacks: runner.Callbacks{
			OnUpdate: func(v runner.View) {
				select {
				case views <- v:
				default:
					app.logger.Warn("Dropping question update, display is behind")
				}
			},
			OnError: func(err error) {
				app.logger.Debug("Status refresh failed", zap.Error(err))
				select {
				case pollErrs <- err:
				default:
				}
			},
		},
	})
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := r.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return answerLoop(gctx, out, app, in, r, views, pollErrs)
	})
	if err := g.Wait(); err != nil {
		return err
	}

	switch r.Outcome() {
	case runner.OutcomeCompleted:
		_, _ = fmt.Fprintln(out, "\n🎉 Interview completed! Preparing your report...")
		sess.Finish()
		if err := waitFor(ctx, app.cfg.CompletionDelay.Std()); err != nil {
			return err
		}
		return showReport(ctx, out, app, start.InterviewID)
	case runner.OutcomeExpired:
		sess.Finish()
		return fmt.Errorf("interview %s has expired", start.InterviewID)
	default:
		return nil
	}
}

// answerLoop prints each new question and submits the lines typed for it. Input is only
// read while a question is on screen. Once an answer is accepted, views still showing that
// question are ignored.
func answerLoop(ctx context.Context, out io.Writer, app *cliApp, in *lineInput, r *runner.Runner,
	views <-chan runner.View, pollErrs <-chan error) error {
	var current *runner.View
	var answer []string
	answered := -1

	for {
		var lines <-chan string
		if current != nil {
			lines = in.Lines()
		}

		select {
		case <-ctx.Done():
			return nil
		case <-r.Done():
			return nil
		case err := <-pollErrs:
			if fatal := fatalPollError(r, err); fatal != nil {
				return fatal
			}
			_, _ = fmt.Fprintf(out, "⚠ Failed to refresh interview status: %v\n", err)
		case v := <-views:
			if current != nil && v.Progress.Current == current.Progress.Current {
				continue
			}
			if current == nil && v.Progress.Current <= answered {
				continue
			}
			current = &v
			answer = answer[:0]
			if v.Question.Empty() {
				app.printer.PrintQuestion(v.Progress, nil, v.Score)
				continue
			}
			app.printer.PrintQuestion(v.Progress, v.Question.Question, v.Score)
			_, _ = fmt.Fprintln(out, "Your answer (finish with an empty line):")
		case line, ok := <-lines:
			if !ok {
				if r.Outcome() != runner.OutcomeNone {
					return nil
				}
				return fmt.Errorf("input ended before the interview finished")
			}
			if strings.TrimSpace(line) != "" || len(answer) == 0 {
				if strings.TrimSpace(line) != "" {
					answer = append(answer, line)
					r.Session().SetDraft(strings.Join(answer, "\n"))
				}
				continue
			}
			text := strings.Join(answer, "\n")
			resp, err := r.SubmitAnswer(ctx, text)
			var verr *runner.ValidationError
			switch {
			case errors.As(err, &verr):
				_, _ = fmt.Fprintf(out, "⚠ %v. Keep typing (finish with an empty line):\n", verr)
				continue
			case errors.Is(err, runner.ErrSessionClosed):
				return nil
			case errors.Is(err, runner.ErrSubmissionInProgress):
				continue
			case err != nil:
				if ctx.Err() != nil {
					return nil
				}
				_, _ = fmt.Fprintf(out, "⚠ Failed to submit answer: %v\nPress enter on an empty line to retry.\n", err)
				continue
			}
			answer = answer[:0]
			answered = current.Progress.Current
			current = nil
			app.printer.PrintAnswerResult(resp)
		}
	}
}

// fatalPollError turns status failures that polling cannot recover from into the command's
// error: an unknown interview and a rejected credential.
func fatalPollError(r *runner.Runner, err error) error {
	terr, ok := transport.AsError(err)
	if !ok {
		return nil
	}
	switch {
	case terr.Kind == transport.KindUnauthorized:
		return fmt.Errorf("failed to load interview %s: %w", r.ID(), err)
	case terr.Kind == transport.KindServiceError && terr.Status == http.StatusNotFound:
		return fmt.Errorf("interview not found: %w", err)
	}
	return nil
}

func showReport(ctx context.Context, out io.Writer, app *cliApp, id string) error {
	assembler := report.NewAssembler(app.service, report.Options{
		Retries:    app.cfg.ReportRetries,
		RetryDelay: app.cfg.ReportRetryDelay.Std(),
		Logger:     app.logger,
	})
	rep, err := assembler.FetchReport(ctx, id)
	if err != nil {
		var unavailable *report.UnavailableError
		if errors.As(err, &unavailable) {
			_, _ = fmt.Fprintln(out, "Report Not Available")
			_, _ = fmt.Fprintln(out, "The interview report could not be loaded. This might happen if the interview is still in progress.")
		}
		return err
	}
	app.printer.PrintReportSummary(rep)
	return nil
}

func waitFor(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

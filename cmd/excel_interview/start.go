package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/excel-interviewer/internal/types"
	"github.com/jonathan/excel-interviewer/internal/wizard"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Defaults offered when the candidate leaves the professional details empty.
const (
	defaultTargetRole = "Data Analyst"
	defaultIndustry   = "Technology"
)

type startOptions struct {
	name       string
	experience string
	role       string
	industry   string
	interests  string
	run        bool
}

func newStartCommand(app *cliApp) *cobra.Command {
	opts := &startOptions{}

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Set up a candidate profile and start a new interview",
		Long: `Walks through the three setup steps (personal information, professional details, interests).
Values given as flags are used as-is; missing ones are prompted for on stdin.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStart(cmd, app, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.name, "name", "n", "", "Candidate full name")
	cmd.Flags().StringVarP(&opts.experience, "experience", "e", "", "Experience level: beginner, intermediate, advanced, expert")
	cmd.Flags().StringVar(&opts.role, "role", "", "Target role (default \""+defaultTargetRole+"\")")
	cmd.Flags().StringVar(&opts.industry, "industry", "", "Industry (default \""+defaultIndustry+"\")")
	cmd.Flags().StringVar(&opts.interests, "interests", "", "Specific Excel areas to focus on (optional)")
	cmd.Flags().BoolVar(&opts.run, "run", false, "Continue straight into the interview")
	return cmd
}

func runStart(cmd *cobra.Command, app *cliApp, opts *startOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()
	in := newLineInput(cmd.InOrStdin())

	w := wizard.New(app.service, app.logger)
	w.Update(func(p *types.CandidateProfile) {
		p.Name = opts.name
		p.ExperienceLevel = types.ExperienceLevel(opts.experience)
		p.TargetRole = opts.role
		p.Industry = opts.industry
		p.Interests = opts.interests
	})

	flagged := func(names ...string) bool {
		for _, n := range names {
			if !cmd.Flags().Changed(n) {
				return false
			}
		}
		return true
	}

	for {
		step := w.Step()
		switch step {
		case wizard.StepPersonalInfo:
			if !flagged("name", "experience") || !w.StepValid(step) {
				if err := promptPersonalInfo(ctx, out, in, w, cmd.Flags().Changed("name"), cmd.Flags().Changed("experience")); err != nil {
					return err
				}
			}
		case wizard.StepProfessionalDetails:
			if !flagged("role") || !flagged("industry") || !w.StepValid(step) {
				if err := promptProfessionalDetails(ctx, out, in, w, cmd.Flags().Changed("role"), cmd.Flags().Changed("industry")); err != nil {
					return err
				}
			}
		case wizard.StepInterests:
			if !flagged("interests") || !w.StepValid(step) {
				if err := promptInterests(ctx, out, in, w); err != nil {
					return err
				}
			}
		}

		if step == wizard.LastStep {
			break
		}
		if err := w.Advance(); err != nil {
			_, _ = fmt.Fprintf(out, "⚠ %v\n", err)
			continue
		}
	}

	_, _ = fmt.Fprintln(out, "Starting interview...")
	resp, err := w.Submit(ctx)
	if err != nil {
		return err
	}

	app.logger.Info("Interview session created", zap.String("interview_id", resp.InterviewID))
	_, _ = fmt.Fprintf(out, "✓ Interview started for %s\n", orName(resp.CandidateName, w.Draft().Name))
	_, _ = fmt.Fprintf(out, "Interview ID: %s\n", resp.InterviewID)
	if resp.Message != "" {
		_, _ = fmt.Fprintln(out, resp.Message)
	}

	if !opts.run {
		_, _ = fmt.Fprintf(out, "Continue with: %s interview --id %s\n", cmd.Root().Name(), resp.InterviewID)
		return nil
	}
	return runInterview(ctx, cmd, app, in, *resp)
}

func promptPersonalInfo(ctx context.Context, out io.Writer, in *lineInput, w *wizard.Wizard, nameSet, levelSet bool) error {
	_, _ = fmt.Fprintf(out, "\n%s\n", wizard.StepPersonalInfo)
	for {
		draft := w.Draft()
		if !nameSet || strings.TrimSpace(draft.Name) == "" {
			name, err := prompt(ctx, out, in, "Full name", draft.Name, false)
			if err != nil {
				return err
			}
			w.Update(func(p *types.CandidateProfile) { p.Name = name })
		}
		if !levelSet || !draft.ExperienceLevel.Valid() {
			for _, lvl := range types.ExperienceLevels {
				_, _ = fmt.Fprintf(out, "  %-13s %s\n", lvl.Value, lvl.Label)
			}
			level, err := prompt(ctx, out, in, "Excel experience level", string(draft.ExperienceLevel), false)
			if err != nil {
				return err
			}
			w.Update(func(p *types.CandidateProfile) { p.ExperienceLevel = types.ExperienceLevel(level) })
		}

		err := w.ValidateStep(wizard.StepPersonalInfo)
		if err == nil || in.Exhausted() {
			return err
		}
		_, _ = fmt.Fprintf(out, "⚠ %v\n", err)
		nameSet, levelSet = false, false
	}
}

func promptProfessionalDetails(ctx context.Context, out io.Writer, in *lineInput, w *wizard.Wizard, roleSet, industrySet bool) error {
	_, _ = fmt.Fprintf(out, "\n%s\n", wizard.StepProfessionalDetails)
	for {
		draft := w.Draft()
		if !roleSet {
			role, err := prompt(ctx, out, in, "Target role", orName(draft.TargetRole, defaultTargetRole), true)
			if err != nil {
				return err
			}
			w.Update(func(p *types.CandidateProfile) { p.TargetRole = role })
		}
		if !industrySet {
			industry, err := prompt(ctx, out, in, "Industry", orName(draft.Industry, defaultIndustry), true)
			if err != nil {
				return err
			}
			w.Update(func(p *types.CandidateProfile) { p.Industry = industry })
		}

		err := w.ValidateStep(wizard.StepProfessionalDetails)
		if err == nil || in.Exhausted() {
			return err
		}
		_, _ = fmt.Fprintf(out, "⚠ %v\n", err)
		roleSet, industrySet = false, false
	}
}

func promptInterests(ctx context.Context, out io.Writer, in *lineInput, w *wizard.Wizard) error {
	_, _ = fmt.Fprintf(out, "\n%s\n", wizard.StepInterests)
	for {
		interests, err := prompt(ctx, out, in, "Excel areas to focus on (optional)", w.Draft().Interests, true)
		if err != nil {
			return err
		}
		w.Update(func(p *types.CandidateProfile) { p.Interests = interests })

		err = w.ValidateStep(wizard.StepInterests)
		var verr *wizard.ValidationError
		if err == nil || !errors.As(err, &verr) || in.Exhausted() {
			return err
		}
		_, _ = fmt.Fprintf(out, "⚠ %v\n", err)
	}
}

// prompt asks for one value; an empty reply keeps current. For optional values the end of
// input also keeps current.
func prompt(ctx context.Context, out io.Writer, in *lineInput, label, current string, optional bool) (string, error) {
	if current != "" {
		_, _ = fmt.Fprintf(out, "%s [%s]: ", label, current)
	} else {
		_, _ = fmt.Fprintf(out, "%s: ", label)
	}
	line, err := in.ReadLine(ctx)
	if errors.Is(err, io.EOF) {
		_, _ = fmt.Fprintln(out)
		if optional {
			return current, nil
		}
		return "", fmt.Errorf("input ended while waiting for %s", strings.ToLower(label))
	}
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(line) == "" {
		return current, nil
	}
	return strings.TrimSpace(line), nil
}

func orName(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

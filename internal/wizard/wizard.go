// Package wizard drives the three-step interview setup flow.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/excel-interviewer/internal/logging"
	"github.com/jonathan/excel-interviewer/internal/types"
	"go.uber.org/zap"
)

// Step is a page of the setup flow.
type Step int

// Setup steps, in order.
const (
	StepPersonalInfo Step = iota
	StepProfessionalDetails
	StepInterests
)

// LastStep is the step Submit is allowed from.
const LastStep = StepInterests

var stepNames = map[Step]string{
	StepPersonalInfo:        "Personal Information",
	StepProfessionalDetails: "Professional Details",
	StepInterests:           "Interests & Goals",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Step(%d)", int(s))
}

// stepFields lists the CandidateProfile fields each step owns.
var stepFields = map[Step][]string{
	StepPersonalInfo:        {"Name", "ExperienceLevel"},
	StepProfessionalDetails: {"TargetRole", "Industry"},
	StepInterests:           {"Interests"},
}

// ErrNotLastStep is returned by Submit before the final step.
var ErrNotLastStep = errors.New("setup can only be submitted from the last step")

// ValidationError lists the invalid fields of a step, keyed by JSON field name.
type ValidationError struct {
	Step   Step
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e.Fields[k])
	}
	return fmt.Sprintf("%s: %s", e.Step, strings.Join(msgs, "; "))
}

// Starter creates an interview session. *interview.Service satisfies it.
type Starter interface {
	StartInterview(ctx context.Context, profile types.CandidateProfile) (*types.StartInterviewResponse, error)
}

// Wizard holds the draft profile and current step. Safe for concurrent use.
type Wizard struct {
	mu       sync.Mutex
	step     Step
	draft    types.CandidateProfile
	starter  Starter
	validate *validator.Validate
	logger   *zap.Logger
}

// New creates a wizard at the first step with an empty draft.
func New(starter Starter, logger *zap.Logger) *Wizard {
	return &Wizard{
		starter:  starter,
		validate: validator.New(),
		logger:   logging.OrNop(logger),
	}
}

// Step returns the current step.
func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// Draft returns a copy of the profile being filled in.
func (w *Wizard) Draft() types.CandidateProfile {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft
}

// Update edits the draft in place.
func (w *Wizard) Update(edit func(p *types.CandidateProfile)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	edit(&w.draft)
}

// ValidateStep checks only the fields owned by step. It never touches the network.
func (w *Wizard) ValidateStep(step Step) error {
	w.mu.Lock()
	draft := w.draft
	w.mu.Unlock()
	return w.validateStep(step, draft)
}

// StepValid reports whether ValidateStep(step) passes.
func (w *Wizard) StepValid(step Step) bool {
	return w.ValidateStep(step) == nil
}

// Advance moves to the next step when the current one is valid. No-op at the last step.
func (w *Wizard) Advance() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step == LastStep {
		return nil
	}
	if err := w.validateStep(w.step, w.draft); err != nil {
		return err
	}
	w.step++
	return nil
}

// Retreat moves to the previous step. No-op at the first step.
func (w *Wizard) Retreat() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step > StepPersonalInfo {
		w.step--
	}
}

// Submit validates every step and starts the interview. On failure the draft and step
// are left unchanged so the caller can correct them and call Submit again.
func (w *Wizard) Submit(ctx context.Context) (*types.StartInterviewResponse, error) {
	w.mu.Lock()
	if w.step != LastStep {
		w.mu.Unlock()
		return nil, ErrNotLastStep
	}
	draft := w.draft
	w.mu.Unlock()

	for step := StepPersonalInfo; step <= LastStep; step++ {
		if err := w.validateStep(step, draft); err != nil {
			return nil, err
		}
	}

	draft.Normalize()
	resp, err := w.starter.StartInterview(ctx, draft)
	if err != nil {
		w.logger.Warn("Failed to start interview", zap.Error(err))
		return nil, err
	}
	return resp, nil
}

func (w *Wizard) validateStep(step Step, draft types.CandidateProfile) error {
	fields, ok := stepFields[step]
	if !ok {
		return fmt.Errorf("unknown setup step %d", int(step))
	}

	draft.Normalize()
	err := w.validate.StructPartial(&draft, fields...)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{Step: step, Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		name, msg := describe(fe)
		out.Fields[name] = msg
	}
	return out
}

// describe maps a validator failure to the JSON field name and a user-facing message.
func describe(fe validator.FieldError) (string, string) {
	switch fe.StructField() {
	case "Name":
		switch fe.Tag() {
		case "required":
			return "candidate_name", "Name is required"
		case "min":
			return "candidate_name", "Name must be at least 2 characters"
		default:
			return "candidate_name", "Name must be less than 100 characters"
		}
	case "ExperienceLevel":
		if fe.Tag() == "required" {
			return "experience_level", "Experience level is required"
		}
		return "experience_level", "Please select a valid experience level"
	case "TargetRole":
		return "target_role", "Role must be less than 100 characters"
	case "Industry":
		return "industry", "Industry must be less than 100 characters"
	case "Interests":
		return "interests", "Interests must be less than 500 characters"
	}
	return fe.Field(), fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
}

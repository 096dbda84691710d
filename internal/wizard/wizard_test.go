package wizard

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jonathan/excel-interviewer/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStarter struct {
	calls   int
	got     types.CandidateProfile
	err     error
	started *types.StartInterviewResponse
}

func (f *fakeStarter) StartInterview(_ context.Context, profile types.CandidateProfile) (*types.StartInterviewResponse, error) {
	f.calls++
	f.got = profile
	if f.err != nil {
		return nil, f.err
	}
	return f.started, nil
}

func fill(w *Wizard, name string, level types.ExperienceLevel) {
	w.Update(func(p *types.CandidateProfile) {
		p.Name = name
		p.ExperienceLevel = level
	})
}

func toLastStep(t *testing.T, w *Wizard) {
	t.Helper()
	require.NoError(t, w.Advance())
	require.NoError(t, w.Advance())
	require.Equal(t, LastStep, w.Step())
}

func TestNew_InitialState(t *testing.T) {
	w := New(&fakeStarter{}, nil)
	assert.Equal(t, StepPersonalInfo, w.Step())
	assert.Equal(t, types.CandidateProfile{}, w.Draft())
}

func TestValidateStep_PersonalInfo(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		level     types.ExperienceLevel
		wantField string
		wantMsg   string
	}{
		{"valid", "Ann", types.ExperienceBeginner, "", ""},
		{"missing name", "", types.ExperienceBeginner, "candidate_name", "Name is required"},
		{"whitespace name", "   ", types.ExperienceBeginner, "candidate_name", "Name is required"},
		{"short name", "A", types.ExperienceBeginner, "candidate_name", "Name must be at least 2 characters"},
		{"long name", strings.Repeat("a", 101), types.ExperienceExpert, "candidate_name", "Name must be less than 100 characters"},
		{"missing level", "Ann", "", "experience_level", "Experience level is required"},
		{"bad level", "Ann", "guru", "experience_level", "Please select a valid experience level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := New(&fakeStarter{}, nil)
			fill(w, tt.candidate, tt.level)

			err := w.ValidateStep(StepPersonalInfo)
			if tt.wantField == "" {
				assert.NoError(t, err)
				assert.True(t, w.StepValid(StepPersonalInfo))
				return
			}

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, StepPersonalInfo, verr.Step)
			assert.Equal(t, tt.wantMsg, verr.Fields[tt.wantField])
			assert.False(t, w.StepValid(StepPersonalInfo))
		})
	}
}

func TestValidateStep_OnlyChecksOwnFields(t *testing.T) {
	w := New(&fakeStarter{}, nil)
	w.Update(func(p *types.CandidateProfile) {
		p.TargetRole = "Data Analyst"
		p.Interests = strings.Repeat("x", 501)
	})

	// personal info is empty, but that is not this step's concern
	assert.NoError(t, w.ValidateStep(StepProfessionalDetails))

	err := w.ValidateStep(StepInterests)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "interests")
	assert.Len(t, verr.Fields, 1)
}

func TestValidateStep_ProfessionalDetailsOptional(t *testing.T) {
	w := New(&fakeStarter{}, nil)
	assert.True(t, w.StepValid(StepProfessionalDetails))

	w.Update(func(p *types.CandidateProfile) { p.Industry = strings.Repeat("i", 101) })
	assert.False(t, w.StepValid(StepProfessionalDetails))
}

func TestValidateStep_UnknownStep(t *testing.T) {
	w := New(&fakeStarter{}, nil)
	assert.Error(t, w.ValidateStep(Step(7)))
}

func TestAdvance_RequiresValidStep(t *testing.T) {
	w := New(&fakeStarter{}, nil)

	err := w.Advance()
	require.Error(t, err)
	assert.Equal(t, StepPersonalInfo, w.Step())

	fill(w, "Ann", types.ExperienceIntermediate)
	require.NoError(t, w.Advance())
	assert.Equal(t, StepProfessionalDetails, w.Step())

	require.NoError(t, w.Advance())
	assert.Equal(t, StepInterests, w.Step())

	// no-op at the last step
	require.NoError(t, w.Advance())
	assert.Equal(t, StepInterests, w.Step())
}

func TestRetreat(t *testing.T) {
	w := New(&fakeStarter{}, nil)
	w.Retreat()
	assert.Equal(t, StepPersonalInfo, w.Step())

	fill(w, "Ann", types.ExperienceAdvanced)
	toLastStep(t, w)
	w.Retreat()
	assert.Equal(t, StepProfessionalDetails, w.Step())
	assert.Equal(t, "Ann", w.Draft().Name)
}

func TestSubmit_NotLastStep(t *testing.T) {
	starter := &fakeStarter{}
	w := New(starter, nil)
	fill(w, "Ann", types.ExperienceBeginner)

	_, err := w.Submit(context.Background())
	assert.ErrorIs(t, err, ErrNotLastStep)
	assert.Equal(t, 0, starter.calls)
}

func TestSubmit_Success(t *testing.T) {
	starter := &fakeStarter{started: &types.StartInterviewResponse{InterviewID: "int-1", CandidateName: "Ann"}}
	w := New(starter, nil)
	w.Update(func(p *types.CandidateProfile) {
		p.Name = " Ann "
		p.ExperienceLevel = types.ExperienceBeginner
		p.TargetRole = "Data Analyst"
		p.Industry = "Technology"
	})
	toLastStep(t, w)

	resp, err := w.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "int-1", resp.InterviewID)
	assert.Equal(t, 1, starter.calls)
	assert.Equal(t, "Ann", starter.got.Name)
	assert.Equal(t, "Technology", starter.got.Industry)
}

func TestSubmit_InvalidDraftIsRejectedLocally(t *testing.T) {
	starter := &fakeStarter{started: &types.StartInterviewResponse{InterviewID: "int-1"}}
	w := New(starter, nil)
	fill(w, "Ann", types.ExperienceBeginner)
	toLastStep(t, w)

	// edited after the step was passed
	w.Update(func(p *types.CandidateProfile) { p.Name = "A" })

	_, err := w.Submit(context.Background())
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, StepPersonalInfo, verr.Step)
	assert.Equal(t, 0, starter.calls)
	assert.Equal(t, LastStep, w.Step())
}

func TestSubmit_FailureKeepsDraftForRetry(t *testing.T) {
	starter := &fakeStarter{err: errors.New("service down")}
	w := New(starter, nil)
	fill(w, "Ann", types.ExperienceExpert)
	w.Update(func(p *types.CandidateProfile) { p.Interests = "Pivot tables" })
	toLastStep(t, w)
	before := w.Draft()

	_, err := w.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, before, w.Draft())
	assert.Equal(t, LastStep, w.Step())

	starter.err = nil
	starter.started = &types.StartInterviewResponse{InterviewID: "int-2"}
	resp, err := w.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "int-2", resp.InterviewID)
	assert.Equal(t, 2, starter.calls)
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Step: StepPersonalInfo, Fields: map[string]string{
		"experience_level": "Experience level is required",
		"candidate_name":   "Name is required",
	}}
	assert.Equal(t, "Personal Information: Name is required; Experience level is required", err.Error())
}

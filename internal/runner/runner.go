// Package runner drives a live interview: it polls session status, resolves the current
// question and submits answers.
package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/excel-interviewer/internal/logging"
	"github.com/jonathan/excel-interviewer/internal/metrics"
	"github.com/jonathan/excel-interviewer/internal/session"
	"github.com/jonathan/excel-interviewer/internal/types"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// DefaultPollInterval is the status polling period.
const DefaultPollInterval = 5 * time.Second

// Answer length limits, counted in characters after trimming.
const (
	MinAnswerLength = 10
	MaxAnswerLength = 5000
)

// ValidationError is a rejected answer. It is reported before any network call.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Answer validation failures.
var (
	ErrEmptyAnswer    = &ValidationError{Message: "Answer is required"}
	ErrAnswerTooShort = &ValidationError{Message: fmt.Sprintf("Answer must be at least %d characters", MinAnswerLength)}
	ErrAnswerTooLong  = &ValidationError{Message: fmt.Sprintf("Answer must be less than %d characters", MaxAnswerLength)}
)

var (
	// ErrSubmissionInProgress is returned when another submission has not finished yet.
	ErrSubmissionInProgress = errors.New("an answer is already being submitted")
	// ErrSessionClosed is returned once the interview has ended or the runner was torn down.
	ErrSessionClosed = errors.New("interview session is closed")
	// ErrAlreadyRunning is returned by a second call to Run.
	ErrAlreadyRunning = errors.New("runner already started")
)

// API is the subset of the interview service the runner needs.
type API interface {
	GetStatus(ctx context.Context, id string) (*types.InterviewSession, error)
	SubmitAnswer(ctx context.Context, submission types.AnswerSubmission) (*types.SubmitAnswerResponse, error)
}

// Outcome is how a run ended.
type Outcome int

// Run outcomes.
const (
	OutcomeNone Outcome = iota
	OutcomeCompleted
	OutcomeExpired
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "completed"
	case OutcomeExpired:
		return "expired"
	default:
		return "none"
	}
}

// View is what an observer needs to render the interview screen.
type View struct {
	InterviewID string
	Status      types.Status
	Progress    types.Progress
	Score       float64
	Question    Resolution
	// NewQuestion is set the first time a progress.current value is observed.
	NewQuestion bool
}

// Callbacks observe a runner. Any of them may be nil. They are invoked one at a time and
// never after the Run context has been cancelled.
type Callbacks struct {
	OnUpdate   func(View)
	OnComplete func(Outcome, types.InterviewSession)
	OnError    func(error)
}

// Options configures a Runner.
type Options struct {
	InterviewID  string
	PollInterval time.Duration
	// Session receives every snapshot and holds the draft and timer. Created when nil.
	Session   *session.Context
	Clock     session.Clock
	Logger    *zap.Logger
	Callbacks Callbacks
}

// Runner polls one interview and submits answers to it.
type Runner struct {
	api      API
	id       string
	interval time.Duration
	sess     *session.Context
	logger   *zap.Logger
	cb       Callbacks
	validate *validator.Validate

	// io serializes status fetches and submissions.
	io     sync.Mutex
	submit *semaphore.Weighted

	// cbMu serializes callbacks against teardown.
	cbMu   sync.Mutex
	closed atomic.Bool

	mu          sync.Mutex
	started     bool
	runCtx      context.Context
	finished    bool
	outcome     Outcome
	lastCurrent int
	last        *types.InterviewSession

	finishedCh chan struct{}
	done       chan struct{}
}

// New creates a runner for opts.InterviewID.
func New(api API, opts Options) (*Runner, error) {
	if api == nil {
		return nil, fmt.Errorf("runner requires an API")
	}
	if strings.TrimSpace(opts.InterviewID) == "" {
		return nil, fmt.Errorf("runner requires an interview id")
	}

	interval := opts.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	sess := opts.Session
	if sess == nil {
		sess = session.New(opts.Clock)
		sess.Begin(types.StartInterviewResponse{InterviewID: opts.InterviewID})
	}

	return &Runner{
		api:         api,
		id:          opts.InterviewID,
		interval:    interval,
		sess:        sess,
		logger:      logging.OrNop(opts.Logger).With(zap.String("interview_id", opts.InterviewID)),
		cb:          opts.Callbacks,
		validate:    validator.New(),
		submit:      semaphore.NewWeighted(1),
		lastCurrent: -1,
		finishedCh:  make(chan struct{}),
		done:        make(chan struct{}),
	}, nil
}

// ID returns the interview the runner polls.
func (r *Runner) ID() string {
	return r.id
}

// Session returns the session context the runner writes to.
func (r *Runner) Session() *session.Context {
	return r.sess
}

// Done is closed when Run returns.
func (r *Runner) Done() <-chan struct{} {
	return r.done
}

// Outcome reports how the interview ended, or OutcomeNone while it is still active.
func (r *Runner) Outcome() Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.outcome
}

// Last returns a copy of the most recent snapshot, or nil.
func (r *Runner) Last() *types.InterviewSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.last == nil {
		return nil
	}
	cp := *r.last
	return &cp
}

// Run fetches status immediately and then every poll interval until the interview leaves
// the active state (returns nil) or ctx is cancelled (returns ctx.Err()). Cancelling ctx
// is the teardown: the ticker and the question timer stop and no callback fires afterwards.
func (r *Runner) Run(ctx context.Context) error {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return ErrAlreadyRunning
	}
	r.started = true
	r.runCtx = ctx
	r.mu.Unlock()

	metrics.RunnerStarted()
	defer metrics.RunnerStopped()
	defer close(r.done)
	defer r.teardown()

	r.logger.Info("Interview runner started", zap.Duration("poll_interval", r.interval))

	r.io.Lock()
	_ = r.fetchLocked(ctx, metrics.TriggerInitial)
	r.io.Unlock()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Interview runner stopped")
			return ctx.Err()
		case <-r.finishedCh:
			r.logger.Info("Interview runner finished", zap.Stringer("outcome", r.Outcome()))
			return nil
		case <-ticker.C:
			if !r.io.TryLock() {
				metrics.ObserveSkippedPoll()
				r.logger.Debug("Skipping poll, request outstanding")
				continue
			}
			_ = r.fetchLocked(ctx, metrics.TriggerTick)
			r.io.Unlock()
		}
	}
}

// SubmitAnswer validates text and sends it for the current question. On success the draft is
// cleared, the question timer restarts and status is re-fetched before returning. On failure
// the draft and timer are left as they were.
func (r *Runner) SubmitAnswer(ctx context.Context, text string) (*types.SubmitAnswerResponse, error) {
	answer := strings.TrimSpace(text)
	if err := r.validateAnswer(answer); err != nil {
		metrics.ObserveSubmission("rejected")
		return nil, err
	}
	if r.isClosed() {
		return nil, ErrSessionClosed
	}

	if !r.submit.TryAcquire(1) {
		metrics.ObserveSubmission("rejected")
		return nil, ErrSubmissionInProgress
	}
	defer r.submit.Release(1)

	r.io.Lock()
	defer r.io.Unlock()

	if r.isClosed() {
		return nil, ErrSessionClosed
	}

	r.sess.SetDraft(text)
	submission := types.AnswerSubmission{
		InterviewID:  r.id,
		Answer:       answer,
		ResponseTime: r.sess.Timer().Elapsed().Seconds(),
	}

	resp, err := r.api.SubmitAnswer(ctx, submission)
	if err != nil {
		metrics.ObserveSubmission("error")
		r.logger.Warn("Answer submission failed", zap.Error(err))
		return nil, err
	}
	metrics.ObserveSubmission("success")
	r.logger.Info("Answer submitted", zap.Float64("response_time", submission.ResponseTime))

	if !r.acknowledge() {
		r.logger.Debug("Runner torn down while the answer was in flight")
		return resp, nil
	}

	// the refetch failing does not undo an acknowledged submission
	_ = r.fetchLocked(ctx, metrics.TriggerSubmit)
	return resp, nil
}

// acknowledge clears the draft and restarts the question timer unless the runner has been
// torn down. It reports whether it did.
func (r *Runner) acknowledge() bool {
	r.cbMu.Lock()
	defer r.cbMu.Unlock()
	if r.tornDown() {
		return false
	}
	r.sess.ClearDraft()
	r.sess.Timer().Restart()
	return true
}

func (r *Runner) validateAnswer(answer string) error {
	err := r.validate.Var(answer, fmt.Sprintf("required,min=%d,max=%d", MinAnswerLength, MaxAnswerLength))
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		switch verrs[0].Tag() {
		case "required":
			return ErrEmptyAnswer
		case "min":
			return ErrAnswerTooShort
		case "max":
			return ErrAnswerTooLong
		}
	}
	return &ValidationError{Message: err.Error()}
}

// fetchLocked fetches and applies one snapshot. The caller holds r.io.
func (r *Runner) fetchLocked(ctx context.Context, trigger string) error {
	if r.isClosed() || ctx.Err() != nil {
		return ErrSessionClosed
	}

	metrics.ObservePoll(trigger)
	snapshot, err := r.api.GetStatus(ctx, r.id)
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		r.logger.Warn("Status fetch failed", zap.String("trigger", trigger), zap.Error(err))
		r.emitError(err)
		return err
	}

	return r.apply(*snapshot)
}

func (r *Runner) apply(snapshot types.InterviewSession) error {
	if err := r.sess.Apply(snapshot); err != nil {
		r.logger.Warn("Discarding status snapshot", zap.Error(err))
		r.emitError(err)
		return err
	}

	resolution := ResolveQuestion(&snapshot)
	if resolution.Divergent {
		r.logger.Warn("next_question differs from questions[progress.current]",
			zap.Int("current", snapshot.Progress.Current),
			zap.String("next_question_id", resolution.Question.ID))
	}

	r.mu.Lock()
	r.last = &snapshot
	newQuestion := snapshot.Progress.Current != r.lastCurrent
	r.lastCurrent = snapshot.Progress.Current

	var outcome Outcome
	switch snapshot.Status {
	case types.StatusCompleted:
		outcome = OutcomeCompleted
	case types.StatusExpired:
		outcome = OutcomeExpired
	}
	if outcome != OutcomeNone {
		r.finished = true
		r.outcome = outcome
	}
	r.mu.Unlock()

	if outcome != OutcomeNone {
		r.sess.Timer().Stop()
		r.logger.Info("Interview ended", zap.Stringer("outcome", outcome),
			zap.Float64("score", snapshot.CurrentScore))
		r.emitComplete(outcome, snapshot)
		close(r.finishedCh)
		return nil
	}

	if newQuestion {
		r.sess.Timer().Restart()
	}
	r.emitUpdate(View{
		InterviewID: r.id,
		Status:      snapshot.Status,
		Progress:    snapshot.Progress,
		Score:       snapshot.CurrentScore,
		Question:    resolution,
		NewQuestion: newQuestion,
	})
	return nil
}

// isClosed reports whether the interview has ended or the runner was torn down.
func (r *Runner) isClosed() bool {
	r.mu.Lock()
	finished := r.finished
	r.mu.Unlock()
	return finished || r.tornDown()
}

// tornDown reports whether the Run context has been cancelled.
func (r *Runner) tornDown() bool {
	if r.closed.Load() {
		return true
	}
	r.mu.Lock()
	runCtx := r.runCtx
	r.mu.Unlock()
	return runCtx != nil && runCtx.Err() != nil
}

func (r *Runner) teardown() {
	r.cbMu.Lock()
	r.closed.Store(true)
	r.cbMu.Unlock()
	r.sess.Timer().Stop()
}

func (r *Runner) emitUpdate(v View) {
	r.cbMu.Lock()
	defer r.cbMu.Unlock()
	if r.tornDown() || r.cb.OnUpdate == nil {
		return
	}
	r.cb.OnUpdate(v)
}

func (r *Runner) emitComplete(o Outcome, s types.InterviewSession) {
	r.cbMu.Lock()
	defer r.cbMu.Unlock()
	if r.tornDown() || r.cb.OnComplete == nil {
		return
	}
	r.cb.OnComplete(o, s)
}

func (r *Runner) emitError(err error) {
	r.cbMu.Lock()
	defer r.cbMu.Unlock()
	if r.tornDown() || r.cb.OnError == nil {
		return
	}
	r.cb.OnError(err)
}

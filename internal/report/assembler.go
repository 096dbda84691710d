// Package report fetches the final interview report and derives the figures shown with it.
package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonathan/excel-interviewer/internal/logging"
	"github.com/jonathan/excel-interviewer/internal/metrics"
	"github.com/jonathan/excel-interviewer/internal/transport"
	"github.com/jonathan/excel-interviewer/internal/types"
	"go.uber.org/zap"
)

// Retry defaults.
const (
	DefaultRetries    = 3
	DefaultRetryDelay = 2 * time.Second
)

// UnavailableError means the report could not be fetched after every attempt.
type UnavailableError struct {
	InterviewID string
	Attempts    int
	Cause       error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("report for interview %s not available after %d attempt(s): %v",
		e.InterviewID, e.Attempts, e.Cause)
}

func (e *UnavailableError) Unwrap() error {
	return e.Cause
}

// Fetcher retrieves a report. *interview.Service satisfies it.
type Fetcher interface {
	GetReport(ctx context.Context, id string) (*types.InterviewReport, error)
}

// Options configures an Assembler.
type Options struct {
	// Retries is the number of retries after the first attempt.
	Retries    int
	RetryDelay time.Duration
	Logger     *zap.Logger
	// Sleep waits between attempts; it must return early with ctx.Err() on cancellation.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultOptions returns three retries two seconds apart.
func DefaultOptions() Options {
	return Options{Retries: DefaultRetries, RetryDelay: DefaultRetryDelay}
}

// Assembler fetches reports with a fixed-delay retry policy.
type Assembler struct {
	fetcher Fetcher
	retries int
	delay   time.Duration
	logger  *zap.Logger
	sleep   func(ctx context.Context, d time.Duration) error
}

// NewAssembler creates an Assembler.
func NewAssembler(fetcher Fetcher, opts Options) *Assembler {
	retries := opts.Retries
	if retries < 0 {
		retries = 0
	}
	sleep := opts.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	return &Assembler{
		fetcher: fetcher,
		retries: retries,
		delay:   opts.RetryDelay,
		logger:  logging.OrNop(opts.Logger),
		sleep:   sleep,
	}
}

// FetchReport fetches the report for id, retrying failed attempts. Unauthorized responses
// and caller cancellation end the loop immediately. When every attempt fails the result is
// an *UnavailableError.
func (a *Assembler) FetchReport(ctx context.Context, id string) (*types.InterviewReport, error) {
	var lastErr error
	attempts := 0

	for attempt := 0; attempt <= a.retries; attempt++ {
		if attempt > 0 {
			if err := a.sleep(ctx, a.delay); err != nil {
				return nil, err
			}
		}

		attempts++
		rep, err := a.fetcher.GetReport(ctx, id)
		if err == nil {
			metrics.ObserveReportAttempt("success")
			a.logger.Info("Report fetched", zap.String("interview_id", id), zap.Int("attempts", attempts))
			return rep, nil
		}

		lastErr = err
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			metrics.ObserveReportAttempt("cancelled")
			return nil, err
		}
		if errors.Is(err, transport.ErrUnauthorized) {
			metrics.ObserveReportAttempt("unauthorized")
			return nil, err
		}

		metrics.ObserveReportAttempt("error")
		a.logger.Warn("Report fetch failed",
			zap.String("interview_id", id),
			zap.Int("attempt", attempts),
			zap.Int("max_attempts", a.retries+1),
			zap.Error(err))
	}

	return nil, &UnavailableError{InterviewID: id, Attempts: attempts, Cause: lastErr}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

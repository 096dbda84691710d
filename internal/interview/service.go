// Package interview provides typed operations against the remote interview service.
package interview

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/jonathan/excel-interviewer/internal/credentials"
	"github.com/jonathan/excel-interviewer/internal/logging"
	"github.com/jonathan/excel-interviewer/internal/schemas"
	"github.com/jonathan/excel-interviewer/internal/types"
	"go.uber.org/zap"
)

// Service endpoints.
const (
	PathStart        = "/api/v1/interview/start"
	PathSubmitAnswer = "/api/v1/interview/submit-answer"
	PathHealth       = "/api/v1/health/"
	PathHealthDetail = "/api/v1/health/detailed"
	PathLogin        = "/auth/login"
	PathMe           = "/auth/me"
)

// Sender issues a single JSON request. *transport.Client satisfies it.
type Sender interface {
	Send(ctx context.Context, method, path string, body, out any) error
}

// Service wraps a Sender with the interview service's operations.
type Service struct {
	sender Sender
	creds  credentials.Store
	logger *zap.Logger
}

// NewService creates a Service. creds may be nil when login is not used.
func NewService(sender Sender, creds credentials.Store, logger *zap.Logger) *Service {
	return &Service{sender: sender, creds: creds, logger: logging.OrNop(logger)}
}

// StatusPath returns the status endpoint for an interview.
func StatusPath(id string) string {
	return "/api/v1/interview/" + url.PathEscape(id) + "/status"
}

// ReportPath returns the report endpoint for an interview.
func ReportPath(id string) string {
	return "/api/v1/interview/" + url.PathEscape(id) + "/report"
}

// StartInterview creates a new session for the candidate.
func (s *Service) StartInterview(ctx context.Context, profile types.CandidateProfile) (*types.StartInterviewResponse, error) {
	profile.Normalize()
	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("invalid candidate profile: %w", err)
	}

	var resp types.StartInterviewResponse
	if err := s.fetch(ctx, http.MethodPost, PathStart, profile, schemas.PayloadStart, &resp); err != nil {
		return nil, fmt.Errorf("failed to start interview: %w", err)
	}

	s.logger.Info("Interview started",
		zap.String("interview_id", resp.InterviewID),
		zap.String("experience_level", string(profile.ExperienceLevel)))
	return &resp, nil
}

// SubmitAnswer sends one answer for the current question.
func (s *Service) SubmitAnswer(ctx context.Context, submission types.AnswerSubmission) (*types.SubmitAnswerResponse, error) {
	if strings.TrimSpace(submission.InterviewID) == "" {
		return nil, fmt.Errorf("failed to submit answer: interview id is empty")
	}

	var resp types.SubmitAnswerResponse
	if err := s.sender.Send(ctx, http.MethodPost, PathSubmitAnswer, submission, &resp); err != nil {
		return nil, fmt.Errorf("failed to submit answer: %w", err)
	}
	return &resp, nil
}

// GetStatus fetches the current snapshot of an interview.
func (s *Service) GetStatus(ctx context.Context, id string) (*types.InterviewSession, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("failed to get interview status: interview id is empty")
	}

	var snapshot types.InterviewSession
	if err := s.fetch(ctx, http.MethodGet, StatusPath(id), nil, schemas.PayloadStatus, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to get interview status: %w", err)
	}
	if snapshot.ID == "" {
		snapshot.ID = id
	}
	return &snapshot, nil
}

// GetReport fetches the final report of a completed interview.
func (s *Service) GetReport(ctx context.Context, id string) (*types.InterviewReport, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("failed to get interview report: interview id is empty")
	}

	var report types.InterviewReport
	if err := s.fetch(ctx, http.MethodGet, ReportPath(id), nil, schemas.PayloadReport, &report); err != nil {
		return nil, fmt.Errorf("failed to get interview report: %w", err)
	}
	if report.Interview.ID == "" {
		report.Interview.ID = id
	}
	return &report, nil
}

// Health performs the basic health check.
func (s *Service) Health(ctx context.Context) (*types.HealthStatus, error) {
	var health types.HealthStatus
	if err := s.sender.Send(ctx, http.MethodGet, PathHealth, nil, &health); err != nil {
		return nil, fmt.Errorf("service unavailable: %w", err)
	}
	return &health, nil
}

// DetailedHealth returns the detailed health payload as reported by the service.
func (s *Service) DetailedHealth(ctx context.Context) (map[string]any, error) {
	var health map[string]any
	if err := s.sender.Send(ctx, http.MethodGet, PathHealthDetail, nil, &health); err != nil {
		return nil, fmt.Errorf("service unavailable: %w", err)
	}
	return health, nil
}

// Login exchanges credentials for a bearer token and stores it.
func (s *Service) Login(ctx context.Context, req types.LoginRequest) (*types.LoginResponse, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid login request: %w", err)
	}

	var resp types.LoginResponse
	if err := s.sender.Send(ctx, http.MethodPost, PathLogin, req, &resp); err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	if resp.Token == "" {
		return nil, fmt.Errorf("login failed: response carried no token")
	}
	if s.creds != nil {
		if err := s.creds.Save(resp.Token); err != nil {
			return nil, fmt.Errorf("failed to store token: %w", err)
		}
	}
	return &resp, nil
}

// CurrentUser returns the account the stored token belongs to.
func (s *Service) CurrentUser(ctx context.Context) (*types.User, error) {
	var user types.User
	if err := s.sender.Send(ctx, http.MethodGet, PathMe, nil, &user); err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return &user, nil
}

// Logout forgets the stored token. It never contacts the service.
func (s *Service) Logout() error {
	if s.creds == nil {
		return nil
	}
	return s.creds.Clear()
}

// fetch sends a request, checks the raw response against a schema and decodes it into out.
func (s *Service) fetch(ctx context.Context, method, path string, body any, payload schemas.Payload, out any) error {
	var raw json.RawMessage
	if err := s.sender.Send(ctx, method, path, body, &raw); err != nil {
		return err
	}
	if err := schemas.Validate(payload, raw); err != nil {
		s.logger.Warn("Response failed schema validation",
			zap.String("path", path),
			zap.Error(err))
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", payload, err)
	}
	return nil
}

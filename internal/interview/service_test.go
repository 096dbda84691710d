package interview

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jonathan/excel-interviewer/internal/credentials"
	"github.com/jonathan/excel-interviewer/internal/schemas"
	"github.com/jonathan/excel-interviewer/internal/transport"
	"github.com/jonathan/excel-interviewer/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, handler http.HandlerFunc, store credentials.Store) *Service {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := transport.New(transport.Options{BaseURL: server.URL, Credentials: store})
	require.NoError(t, err)
	return NewService(client, store, nil)
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestStartInterview_Success(t *testing.T) {
	var got types.CandidateProfile
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, PathStart, r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, http.StatusOK, `{"interview_id":"int-1","candidate_name":"Ann","total_questions":5}`)
	}, nil)

	resp, err := svc.StartInterview(context.Background(), types.CandidateProfile{
		Name:            "  Ann ",
		ExperienceLevel: types.ExperienceBeginner,
		TargetRole:      "Data Analyst",
		Industry:        "Technology",
	})
	require.NoError(t, err)
	assert.Equal(t, "int-1", resp.InterviewID)
	assert.Equal(t, 5, resp.TotalQuestions)

	assert.Equal(t, "Ann", got.Name)
	assert.Equal(t, types.ExperienceBeginner, got.ExperienceLevel)
}

func TestStartInterview_InvalidProfileNeverSent(t *testing.T) {
	calls := 0
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		writeJSON(w, http.StatusOK, `{"interview_id":"x"}`)
	}, nil)

	_, err := svc.StartInterview(context.Background(), types.CandidateProfile{Name: "A", ExperienceLevel: "guru"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid candidate profile")
	assert.Equal(t, 0, calls)
}

func TestStartInterview_MissingIDFailsSchema(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"candidate_name":"Ann"}`)
	}, nil)

	_, err := svc.StartInterview(context.Background(), types.CandidateProfile{Name: "Ann", ExperienceLevel: "beginner"})
	require.Error(t, err)

	var verr *schemas.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, schemas.PayloadStart, verr.Payload)
	assert.Contains(t, err.Error(), "failed to start interview")
}

func TestGetStatus_UnknownIDCarriesDetail(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/interview/missing/status", r.URL.Path)
		writeJSON(w, http.StatusNotFound, `{"detail":"Interview not found"}`)
	}, nil)

	_, err := svc.GetStatus(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, transport.ErrServiceError))

	terr, ok := transport.AsError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, terr.Status)
	assert.Equal(t, "Interview not found", terr.Detail)
}

func TestGetStatus_DecodesSnapshot(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{
			"interview_id": "int-1",
			"candidate_name": "Ann",
			"status": "active",
			"progress": {"current": 1, "total": 5},
			"current_score": 72.5,
			"next_question": {"id": "q2", "text": "Explain VLOOKUP", "category": "Formulas", "difficulty": 2}
		}`)
	}, nil)

	snapshot, err := svc.GetStatus(context.Background(), "int-1")
	require.NoError(t, err)
	assert.Equal(t, types.StatusActive, snapshot.Status)
	assert.Equal(t, types.Progress{Current: 1, Total: 5}, snapshot.Progress)
	require.NotNil(t, snapshot.NextQuestion)
	assert.Equal(t, "q2", snapshot.NextQuestion.ID)
	assert.Equal(t, types.CategoryFormulas, snapshot.NextQuestion.Category)
}

func TestGetStatus_EscapesID(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/interview/a%2Fb/status", r.URL.RawPath)
		writeJSON(w, http.StatusOK, `{"status":"active","progress":{"current":0,"total":3}}`)
	}, nil)

	snapshot, err := svc.GetStatus(context.Background(), "a/b")
	require.NoError(t, err)
	assert.Equal(t, "a/b", snapshot.ID)
}

func TestGetStatus_RejectsBadStatus(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"status":"paused","progress":{"current":0,"total":3}}`)
	}, nil)

	_, err := svc.GetStatus(context.Background(), "int-1")
	var verr *schemas.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, schemas.PayloadStatus, verr.Payload)
}

func TestGetStatus_EmptyID(t *testing.T) {
	svc := NewService(nil, nil, nil)
	_, err := svc.GetStatus(context.Background(), " ")
	assert.Error(t, err)
}

func TestSubmitAnswer(t *testing.T) {
	var got types.AnswerSubmission
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PathSubmitAnswer, r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, http.StatusOK, `{"status":"active","score":80,"feedback":"Good use of INDEX/MATCH"}`)
	}, nil)

	resp, err := svc.SubmitAnswer(context.Background(), types.AnswerSubmission{
		InterviewID:  "int-1",
		Answer:       "I would use INDEX and MATCH together.",
		ResponseTime: 12.5,
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Score)
	assert.Equal(t, 80.0, *resp.Score)
	assert.Equal(t, "int-1", got.InterviewID)
	assert.Equal(t, 12.5, got.ResponseTime)
}

func TestGetReport(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/interview/int-1/report", r.URL.Path)
		writeJSON(w, http.StatusOK, `{
			"interview": {"candidate_name": "Ann", "total_score": 81, "questions_answered": 2, "duration_minutes": 14},
			"questions_and_answers": [
				{"question": "Q1", "category": "Formulas", "difficulty": 2, "answer": "A1", "score": 80, "feedback": "ok", "response_time": 30},
				{"question": "Q2", "category": null, "difficulty": 3, "answer": "A2", "score": 82, "feedback": null, "response_time": 45}
			],
			"report": {
				"executiveSummary": "Solid",
				"strengths": ["Formulas"],
				"hiringRecommendation": "HIRE",
				"confidenceLevel": 0.8,
				"roleSuitability": "Well suited for an analyst role",
				"nextSteps": "Schedule a technical follow-up",
				"skillAssessment": {"formulaProficiency": {"score": 85, "assessment": "Strong lookups"}}
			}
		}`)
	}, nil)

	report, err := svc.GetReport(context.Background(), "int-1")
	require.NoError(t, err)
	assert.Equal(t, "int-1", report.Interview.ID)
	assert.Equal(t, "Ann", report.Interview.CandidateName)
	require.Len(t, report.QuestionsAndAnswers, 2)
	assert.Equal(t, types.Category(""), report.QuestionsAndAnswers[1].Category)
	assert.Equal(t, types.Hire, report.Report.HiringRecommendation)
	assert.Equal(t, "Well suited for an analyst role", report.Report.RoleSuitability)
	assert.Equal(t, types.Paragraph("Schedule a technical follow-up"), report.Report.NextSteps)
	require.Contains(t, report.Report.SkillAssessment, "formulaProficiency")
	assert.Equal(t, 85.0, report.Report.SkillAssessment["formulaProficiency"].Score)
}

func TestHealth(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case PathHealth:
			writeJSON(w, http.StatusOK, `{"status":"healthy","version":"1.2.0"}`)
		case PathHealthDetail:
			writeJSON(w, http.StatusOK, `{"status":"healthy","database":{"status":"up"}}`)
		default:
			http.NotFound(w, r)
		}
	}, nil)

	health, err := svc.Health(context.Background())
	require.NoError(t, err)
	assert.True(t, health.Healthy())
	assert.Equal(t, "1.2.0", health.Version)

	detailed, err := svc.DetailedHealth(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "healthy", detailed["status"])
	assert.Contains(t, detailed, "database")
}

func TestHealth_Unavailable(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusServiceUnavailable, `{"detail":"db down"}`)
	}, nil)

	_, err := svc.Health(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "service unavailable")
}

func TestLoginAndLogout(t *testing.T) {
	store := credentials.NewMemoryStore("")
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case PathLogin:
			var req types.LoginRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "ann@example.com", req.Email)
			writeJSON(w, http.StatusOK, `{"token":"tok-123","user":{"id":"u1","email":"ann@example.com"}}`)
		case PathMe:
			assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
			writeJSON(w, http.StatusOK, `{"id":"u1","name":"Ann","email":"ann@example.com"}`)
		}
	}, store)

	resp, err := svc.Login(context.Background(), types.LoginRequest{Email: "ann@example.com", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "tok-123", resp.Token)
	assert.True(t, credentials.IsAuthenticated(store))

	user, err := svc.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Ann", user.Name)

	require.NoError(t, svc.Logout())
	assert.False(t, credentials.IsAuthenticated(store))
}

func TestLogin_InvalidEmail(t *testing.T) {
	svc := NewService(nil, credentials.NewMemoryStore(""), nil)
	_, err := svc.Login(context.Background(), types.LoginRequest{Email: "nope", Password: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid login request")
}

func TestLogin_MissingToken(t *testing.T) {
	store := credentials.NewMemoryStore("")
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{}`)
	}, store)

	_, err := svc.Login(context.Background(), types.LoginRequest{Email: "ann@example.com", Password: "secret"})
	require.Error(t, err)
	assert.False(t, credentials.IsAuthenticated(store))
}

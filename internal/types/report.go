package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// HiringRecommendation is the service's hiring verdict.
type HiringRecommendation string

// Hiring recommendations emitted in reports.
const (
	StrongHire      HiringRecommendation = "STRONG_HIRE"
	Hire            HiringRecommendation = "HIRE"
	ConditionalHire HiringRecommendation = "CONDITIONAL_HIRE"
	NoHire          HiringRecommendation = "NO_HIRE"
)

// InterviewReport is the final scored report of a completed interview.
type InterviewReport struct {
	Interview           ReportInterview `json:"interview"`
	QuestionsAndAnswers []QuestionScore `json:"questions_and_answers"`
	Report              ReportBody      `json:"report"`
}

// ReportInterview summarizes the interview a report belongs to.
type ReportInterview struct {
	ID                string  `json:"interview_id,omitempty"`
	CandidateName     string  `json:"candidate_name"`
	StartTime         string  `json:"start_time,omitempty"`
	ExperienceLevel   string  `json:"experience_level,omitempty"`
	TargetRole        string  `json:"target_role,omitempty"`
	Industry          string  `json:"industry,omitempty"`
	Status            Status  `json:"status,omitempty"`
	TotalScore        float64 `json:"total_score"`
	QuestionsAnswered int     `json:"questions_answered"`
	DurationMinutes   float64 `json:"duration_minutes"`
}

// QuestionScore is one answered question with its score and feedback.
type QuestionScore struct {
	Question     string   `json:"question"`
	Category     Category `json:"category,omitempty"`
	Difficulty   int      `json:"difficulty"`
	Answer       string   `json:"answer"`
	Score        float64  `json:"score"`
	Feedback     string   `json:"feedback"`
	ResponseTime float64  `json:"response_time"`
}

// SkillScore is the assessment of a single skill.
type SkillScore struct {
	Score      float64 `json:"score"`
	Assessment string  `json:"assessment"`
}

// PerformanceMetrics carries service-computed aggregates.
type PerformanceMetrics struct {
	OverallScore *float64 `json:"overall_score,omitempty"`
}

// ReportBody is the narrative part of the report.
type ReportBody struct {
	ExecutiveSummary        string                `json:"executiveSummary"`
	Strengths               []string              `json:"strengths"`
	GrowthAreas             []string              `json:"growthAreas"`
	SkillAssessment         map[string]SkillScore `json:"skillAssessment,omitempty"`
	LearningRecommendations []string              `json:"learningRecommendations"`
	HiringRecommendation    HiringRecommendation  `json:"hiringRecommendation"`
	ConfidenceLevel         float64               `json:"confidenceLevel"`
	RoleSuitability         string                `json:"roleSuitability,omitempty"`
	NextSteps               Paragraph             `json:"nextSteps,omitempty"`
	PerformanceMetrics      *PerformanceMetrics   `json:"performance_metrics,omitempty"`
}

// Paragraph is free text the service sends either as one string or as a list of lines.
// A list is joined with newlines.
type Paragraph string

// UnmarshalJSON implements json.Unmarshaler.
func (p *Paragraph) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*p = ""
		return nil
	}

	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*p = Paragraph(text)
		return nil
	}

	var lines []string
	if err := json.Unmarshal(data, &lines); err != nil {
		return fmt.Errorf("paragraph must be a string or a list of strings: %w", err)
	}
	*p = Paragraph(strings.Join(lines, "\n"))
	return nil
}

// Package types provides the wire types exchanged with the remote interview service.
package types

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// ExperienceLevel is the candidate's self-reported Excel experience.
type ExperienceLevel string

// Experience levels accepted by the service.
const (
	ExperienceBeginner     ExperienceLevel = "beginner"
	ExperienceIntermediate ExperienceLevel = "intermediate"
	ExperienceAdvanced     ExperienceLevel = "advanced"
	ExperienceExpert       ExperienceLevel = "expert"
)

// ExperienceLevels lists the allowed levels with their display labels, in display order.
var ExperienceLevels = []struct {
	Value ExperienceLevel
	Label string
}{
	{ExperienceBeginner, "Beginner (0-1 years)"},
	{ExperienceIntermediate, "Intermediate (1-3 years)"},
	{ExperienceAdvanced, "Advanced (3-5 years)"},
	{ExperienceExpert, "Expert (5+ years)"},
}

// Valid reports whether l is one of the four allowed levels.
func (l ExperienceLevel) Valid() bool {
	switch l {
	case ExperienceBeginner, ExperienceIntermediate, ExperienceAdvanced, ExperienceExpert:
		return true
	}
	return false
}

// DefaultRoles are the target roles offered by the setup flow.
var DefaultRoles = []string{
	"Data Analyst",
	"Business Analyst",
	"Financial Analyst",
	"Operations Analyst",
	"Marketing Analyst",
	"Project Manager",
	"Administrative Assistant",
	"Accountant",
	"Sales Representative",
	"Human Resources",
	"Other",
}

// Industries are the industries offered by the setup flow.
var Industries = []string{
	"Technology",
	"Finance",
	"Healthcare",
	"Education",
	"Manufacturing",
	"Retail",
	"Consulting",
	"Government",
	"Non-profit",
	"Real Estate",
	"General",
}

// CandidateProfile is the payload that starts an interview.
type CandidateProfile struct {
	Name            string          `json:"candidate_name" validate:"required,min=2,max=100"`
	ExperienceLevel ExperienceLevel `json:"experience_level" validate:"required,oneof=beginner intermediate advanced expert"`
	TargetRole      string          `json:"target_role" validate:"max=100"`
	Industry        string          `json:"industry" validate:"max=100"`
	Interests       string          `json:"interests,omitempty" validate:"max=500"`
}

// Normalize trims surrounding whitespace from every text field.
func (p *CandidateProfile) Normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.ExperienceLevel = ExperienceLevel(strings.ToLower(strings.TrimSpace(string(p.ExperienceLevel))))
	p.TargetRole = strings.TrimSpace(p.TargetRole)
	p.Industry = strings.TrimSpace(p.Industry)
	p.Interests = strings.TrimSpace(p.Interests)
}

// Validate validates the CandidateProfile using the validator.
func (p *CandidateProfile) Validate() error {
	validate := validator.New()
	return validate.Struct(p)
}

// StartInterviewResponse is returned by the service when a session is created.
type StartInterviewResponse struct {
	InterviewID    string `json:"interview_id"`
	CandidateName  string `json:"candidate_name"`
	Status         string `json:"status,omitempty"`
	Message        string `json:"message,omitempty"`
	TotalQuestions int    `json:"total_questions,omitempty"`
}

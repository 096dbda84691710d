package report

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/excel-interviewer/internal/types"
)

// DateLayout is how the interview start time appears in exports.
const DateLayout = "January 2, 2006 at 03:04 PM"

var startTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// FormatStartTime renders a service timestamp with DateLayout. Unparseable values are
// returned unchanged and an empty value becomes "Unknown".
func FormatStartTime(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "Unknown"
	}
	for _, layout := range startTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(DateLayout)
		}
	}
	return raw
}

var whitespace = regexp.MustCompile(`\s+`)

// ExportFilename is the suggested file name for Export's output.
func ExportFilename(r *types.InterviewReport) string {
	name := strings.TrimSpace(r.Interview.CandidateName)
	if name == "" {
		name = "candidate"
	}
	return "excel-interview-report-" + whitespace.ReplaceAllString(name, "-") + ".txt"
}

// Export renders the report as plain text.
func Export(r *types.InterviewReport) string {
	var sb strings.Builder
	iv := r.Interview
	body := r.Report

	section := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(title)
		sb.WriteString("\n")
		sb.WriteString(strings.Repeat("=", len(title)))
		sb.WriteString("\n")
	}
	bullets := func(items []string) {
		for _, item := range items {
			sb.WriteString("• ")
			sb.WriteString(item)
			sb.WriteString("\n")
		}
	}

	sb.WriteString("EXCEL MOCK INTERVIEW REPORT\n")
	sb.WriteString("===========================\n\n")
	fmt.Fprintf(&sb, "Candidate: %s\n", iv.CandidateName)
	fmt.Fprintf(&sb, "Date: %s\n", FormatStartTime(iv.StartTime))
	fmt.Fprintf(&sb, "Experience Level: %s\n", orDefault(iv.ExperienceLevel, "Not specified"))
	fmt.Fprintf(&sb, "Target Role: %s\n", orDefault(iv.TargetRole, "Not specified"))
	fmt.Fprintf(&sb, "Industry: %s\n", orDefault(iv.Industry, "Not specified"))

	section("OVERALL PERFORMANCE")
	fmt.Fprintf(&sb, "Total Score: %d%%\n", RoundHalfUp(iv.TotalScore))
	fmt.Fprintf(&sb, "Questions Answered: %d\n", iv.QuestionsAnswered)
	fmt.Fprintf(&sb, "Duration: %d minutes\n", RoundHalfUp(iv.DurationMinutes))

	section("EXECUTIVE SUMMARY")
	sb.WriteString(orDefault(body.ExecutiveSummary, "No summary available"))
	sb.WriteString("\n")

	section("STRENGTHS")
	bullets(body.Strengths)

	section("AREAS FOR IMPROVEMENT")
	bullets(body.GrowthAreas)

	section("LEARNING RECOMMENDATIONS")
	bullets(body.LearningRecommendations)

	section("HIRING RECOMMENDATION")
	sb.WriteString(orDefault(string(body.HiringRecommendation), "Not specified"))
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Confidence Level: %s%%\n", formatNumber(body.ConfidenceLevel))

	section("DETAILED QUESTIONS & ANSWERS")
	for i, qa := range r.QuestionsAndAnswers {
		category := qa.Category
		if category == "" {
			category = types.CategoryGeneral
		}
		fmt.Fprintf(&sb, "Question %d: %s\n", i+1, qa.Question)
		fmt.Fprintf(&sb, "  Category: %s\n", category)
		fmt.Fprintf(&sb, "  Difficulty: %d/5\n", qa.Difficulty)
		fmt.Fprintf(&sb, "  Answer: %s\n", qa.Answer)
		fmt.Fprintf(&sb, "  Score: %s%%\n", formatNumber(qa.Score))
		fmt.Fprintf(&sb, "  Feedback: %s\n\n", qa.Feedback)
	}

	return sb.String()
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

// formatNumber prints v without trailing zeros: 80, 72.5.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

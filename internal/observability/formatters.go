// Package observability provides formatted terminal output for the interview CLI.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/excel-interviewer/internal/report"
	"github.com/jonathan/excel-interviewer/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for the CLI
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content. Long lines are wrapped.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	inner := boxWidth - 4
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(truncate(title, inner), inner))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		for _, wrapped := range wrap(line, inner) {
			fmt.Fprintf(p.out, "│ %s │\n", pad(wrapped, inner))
		}
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintQuestion shows the current question with progress and running score.
func (p *Printer) PrintQuestion(progress types.Progress, q *types.Question, score float64) {
	title := fmt.Sprintf("QUESTION %d OF %d  (%d%% complete)",
		progress.Current+1, progress.Total, report.Percentage(progress.Current, progress.Total))
	if q == nil {
		p.printBox(title, "Loading next question...")
		return
	}

	var sb strings.Builder
	category := q.Category
	if category == "" {
		category = types.CategoryGeneral
	}
	sb.WriteString(fmt.Sprintf("Category:   %s\n", category))
	sb.WriteString(fmt.Sprintf("Difficulty: %s (%d/5)\n", difficultyStars(q.Difficulty), q.Difficulty))
	if progress.Current > 0 {
		sb.WriteString(fmt.Sprintf("Score:      %d%%\n", report.RoundHalfUp(score)))
	}
	sb.WriteString("\n")
	sb.WriteString(q.Text)
	if q.Scenario != "" {
		sb.WriteString("\n\nScenario:\n")
		sb.WriteString(q.Scenario)
	}

	p.printBox(title, sb.String())
}

// PrintAnswerResult shows the acknowledgement of a submitted answer.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintAnswerResult(resp *types.SubmitAnswerResponse) {
	if resp == nil {
		return
	}
	if resp.Score != nil {
		band := report.BandFor(*resp.Score)
		fmt.Fprintf(p.out, "✓ Answer submitted. Score: %d%% (%s)\n", report.RoundHalfUp(*resp.Score), band.Label)
	} else {
		fmt.Fprintln(p.out, "✓ Answer submitted successfully!")
	}
	if resp.Feedback != "" {
		fmt.Fprintf(p.out, "  %s\n", resp.Feedback)
	}
}

// PrintSession outputs a status snapshot.
func (p *Printer) PrintSession(s *types.InterviewSession) {
	if s == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Interview:  %s\n", s.ID))
	if s.CandidateName != "" {
		sb.WriteString(fmt.Sprintf("Candidate:  %s\n", s.CandidateName))
	}
	sb.WriteString(fmt.Sprintf("Status:     %s\n", s.Status))
	sb.WriteString(fmt.Sprintf("Progress:   %d/%d (%d%%)\n", s.Progress.Current, s.Progress.Total,
		report.Percentage(s.Progress.Current, s.Progress.Total)))
	sb.WriteString(fmt.Sprintf("Score:      %d%%\n", report.RoundHalfUp(s.CurrentScore)))
	sb.WriteString(fmt.Sprintf("Duration:   %s", report.FormatDuration(s.DurationMinutes*60)))

	p.printBox("INTERVIEW STATUS", sb.String())
}

// PrintReportSummary outputs the overall score, category averages and narrative highlights.
func (p *Printer) PrintReportSummary(r *types.InterviewReport) {
	if r == nil {
		return
	}

	overall := report.OverallScore(r)
	band := report.BandFor(overall)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Candidate:  %s\n", r.Interview.CandidateName))
	sb.WriteString(fmt.Sprintf("Overall:    %d%% (%s)\n", report.RoundHalfUp(overall), band.Label))
	sb.WriteString(fmt.Sprintf("Questions:  %d\n", r.Interview.QuestionsAnswered))
	sb.WriteString(fmt.Sprintf("Duration:   %dm\n", report.RoundHalfUp(r.Interview.DurationMinutes)))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("%s demonstrated %s Excel skills with a total score of %d%%.\n",
		r.Interview.CandidateName, report.SkillLevel(overall), report.RoundHalfUp(overall)))

	if averages := report.CategoryAverages(r.QuestionsAndAnswers); len(averages) > 0 {
		sb.WriteString("\nPerformance by Category:\n")
		for _, avg := range averages {
			plural := "s"
			if avg.Count == 1 {
				plural = ""
			}
			sb.WriteString(fmt.Sprintf("  %-16s %3d%%  %-18s %d question%s\n",
				avg.Category, avg.Average, report.BandFor(float64(avg.Average)).Label, avg.Count, plural))
		}
	}

	writeList(&sb, "Strengths", r.Report.Strengths)
	writeList(&sb, "Areas for Improvement", r.Report.GrowthAreas)
	if steps := strings.TrimSpace(string(r.Report.NextSteps)); steps != "" {
		sb.WriteString("\nNext Steps:\n" + steps + "\n")
	}

	if r.Report.HiringRecommendation != "" {
		sb.WriteString(fmt.Sprintf("\nRecommendation: %s (%s%% confidence)\n",
			hiringLabel(r.Report.HiringRecommendation),
			strings.TrimSuffix(fmt.Sprintf("%.1f", r.Report.ConfidenceLevel), ".0")))
	}

	p.printBox("INTERVIEW REPORT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintHealth outputs the basic health payload and, when given, the detailed one.
func (p *Printer) PrintHealth(h *types.HealthStatus, detailed map[string]any) {
	if h == nil && detailed == nil {
		return
	}

	var sb strings.Builder
	if h != nil {
		mark := "✅"
		if !h.Healthy() {
			mark = "⚠"
		}
		sb.WriteString(fmt.Sprintf("%s Status: %s\n", mark, h.Status))
		if h.Version != "" {
			sb.WriteString(fmt.Sprintf("Version:   %s\n", h.Version))
		}
		if h.Timestamp != "" {
			sb.WriteString(fmt.Sprintf("Timestamp: %s\n", h.Timestamp))
		}
		for _, name := range sortedKeys(h.Services) {
			sb.WriteString(fmt.Sprintf("  • %s: %s\n", name, h.Services[name]))
		}
	}
	if len(detailed) > 0 {
		sb.WriteString("\nDetails:\n")
		for _, key := range sortedKeys(detailed) {
			sb.WriteString(fmt.Sprintf("  %s: %v\n", key, detailed[key]))
		}
	}

	p.printBox("SERVICE HEALTH", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintUser outputs the authenticated account.
func (p *Printer) PrintUser(u *types.User) {
	if u == nil {
		return
	}
	content := fmt.Sprintf("ID:    %s\nEmail: %s", u.ID, u.Email)
	if u.Name != "" {
		content = fmt.Sprintf("Name:  %s\n%s", u.Name, content)
	}
	p.printBox("SIGNED IN", content)
}

func writeList(sb *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(fmt.Sprintf("\n%s:\n", title))
	count := min(len(items), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", items[i]))
	}
	if len(items) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-maxItemsToShow))
	}
}

func hiringLabel(h types.HiringRecommendation) string {
	switch h {
	case types.StrongHire:
		return "Strong Hire"
	case types.Hire:
		return "Hire"
	case types.ConditionalHire:
		return "Conditional Hire"
	case types.NoHire:
		return "No Hire"
	}
	return string(h)
}

func difficultyStars(d int) string {
	d = max(0, min(d, 5))
	return strings.Repeat("★", d) + strings.Repeat("☆", 5-d)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func pad(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

func truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	return string(runes[:width-3]) + "..."
}

// wrap breaks line on spaces so no piece exceeds width runes. Words longer than width are split.
func wrap(line string, width int) []string {
	if utf8.RuneCountInString(line) <= width {
		return []string{line}
	}

	indent := line[:len(line)-len(strings.TrimLeft(line, " "))]
	var out []string
	current := ""
	for _, word := range strings.Fields(line) {
		for utf8.RuneCountInString(word) > width-len(indent) {
			if current != "" {
				out = append(out, current)
				current = ""
			}
			runes := []rune(word)
			cut := width - len(indent)
			out = append(out, indent+string(runes[:cut]))
			word = string(runes[cut:])
		}
		switch {
		case current == "":
			current = indent + word
		case utf8.RuneCountInString(current)+1+utf8.RuneCountInString(word) <= width:
			current += " " + word
		default:
			out = append(out, current)
			current = indent + word
		}
	}
	if current != "" {
		out = append(out, current)
	}
	return out
}

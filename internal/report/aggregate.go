package report

import (
	"math"

	"github.com/jonathan/excel-interviewer/internal/types"
)

// CategoryAverage is the rounded mean score of one question category.
type CategoryAverage struct {
	Category types.Category
	Average  int
	Count    int
}

// CategoryAverages groups answered questions by category (missing categories count as
// General) and averages their scores, in order of first appearance.
func CategoryAverages(qas []types.QuestionScore) []CategoryAverage {
	type acc struct {
		total float64
		count int
	}
	var order []types.Category
	sums := make(map[types.Category]*acc)

	for _, qa := range qas {
		category := qa.Category
		if category == "" {
			category = types.CategoryGeneral
		}
		a, ok := sums[category]
		if !ok {
			a = &acc{}
			sums[category] = a
			order = append(order, category)
		}
		a.total += qa.Score
		a.count++
	}

	out := make([]CategoryAverage, 0, len(order))
	for _, category := range order {
		a := sums[category]
		out = append(out, CategoryAverage{
			Category: category,
			Average:  RoundHalfUp(a.total / float64(a.count)),
			Count:    a.count,
		})
	}
	return out
}

// OverallScore prefers the service-computed overall score and falls back to the interview total.
func OverallScore(r *types.InterviewReport) float64 {
	if r == nil {
		return 0
	}
	if pm := r.Report.PerformanceMetrics; pm != nil && pm.OverallScore != nil {
		return *pm.OverallScore
	}
	return r.Interview.TotalScore
}

// RoundHalfUp rounds to the nearest integer, halves toward positive infinity.
func RoundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

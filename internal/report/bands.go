package report

// Severity is the visual weight of a score band.
type Severity string

// Band severities.
const (
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Band labels a score range.
type Band struct {
	Label    string
	Severity Severity
}

var bands = []struct {
	min  float64
	band Band
}{
	{90, Band{"Excellent", SeveritySuccess}},
	{80, Band{"Good", SeveritySuccess}},
	{70, Band{"Average", SeverityWarning}},
	{60, Band{"Below Average", SeverityWarning}},
}

// BandFor maps a 0-100 score to its band. Thresholds are inclusive lower bounds.
func BandFor(score float64) Band {
	for _, b := range bands {
		if score >= b.min {
			return b.band
		}
	}
	return Band{"Needs Improvement", SeverityError}
}

// SkillLevel is the one-word description used in the summary sentence.
func SkillLevel(score float64) string {
	switch {
	case score >= 80:
		return "excellent"
	case score >= 60:
		return "good"
	default:
		return "developing"
	}
}

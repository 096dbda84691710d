package types

// Status is the lifecycle state of an interview session.
type Status string

// Session statuses. Transitions are active→completed or active→expired only.
const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusExpired   Status = "expired"
)

// Terminal reports whether no further transitions are possible from s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusExpired
}

// Category groups questions by Excel skill area.
type Category string

// Question categories used by the service.
const (
	CategoryFormulas     Category = "Formulas"
	CategoryDataAnalysis Category = "Data Analysis"
	CategoryPivotTables  Category = "Pivot Tables"
	CategoryCharts       Category = "Charts"
	CategoryVBA          Category = "VBA"
	CategoryPowerQuery   Category = "Power Query"
	CategoryGeneral      Category = "General"
)

// Question is a single interview question. Immutable, sourced from the service.
type Question struct {
	ID         string   `json:"id"`
	Text       string   `json:"text"`
	Category   Category `json:"category"`
	Difficulty int      `json:"difficulty"`
	Scenario   string   `json:"scenario,omitempty"`
}

// Progress tracks how many questions have been answered out of the total.
type Progress struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// InterviewSession is a status snapshot of one interview.
type InterviewSession struct {
	ID              string     `json:"interview_id"`
	CandidateName   string     `json:"candidate_name"`
	Status          Status     `json:"status"`
	Progress        Progress   `json:"progress"`
	CurrentScore    float64    `json:"current_score"`
	DurationMinutes float64    `json:"duration_minutes"`
	NextQuestion    *Question  `json:"next_question,omitempty"`
	Questions       []Question `json:"questions,omitempty"`
}

// AnswerSubmission is sent for every answered question.
type AnswerSubmission struct {
	InterviewID  string  `json:"interview_id" validate:"required"`
	Answer       string  `json:"answer" validate:"required"`
	ResponseTime float64 `json:"response_time" validate:"gte=0"`
}

// SubmitAnswerResponse acknowledges an answer.
type SubmitAnswerResponse struct {
	Status   Status   `json:"status"`
	Score    *float64 `json:"score,omitempty"`
	Feedback string   `json:"feedback,omitempty"`
	Message  string   `json:"message,omitempty"`
}

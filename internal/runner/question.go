package runner

import "github.com/jonathan/excel-interviewer/internal/types"

// Source says where the current question came from.
type Source int

const (
	// SourceNone means no question could be derived; callers show an empty state.
	SourceNone Source = iota
	// SourceNextQuestion is the snapshot's next_question field.
	SourceNextQuestion
	// SourceQuestionList is questions[progress.current].
	SourceQuestionList
)

func (s Source) String() string {
	switch s {
	case SourceNextQuestion:
		return "next_question"
	case SourceQuestionList:
		return "questions"
	default:
		return "none"
	}
}

// Resolution is the question to display for a snapshot.
type Resolution struct {
	Question *types.Question
	Source   Source
	// Divergent is set when next_question and questions[progress.current] both exist and differ.
	Divergent bool
}

// Empty reports whether no question is available.
func (r Resolution) Empty() bool {
	return r.Source == SourceNone || r.Question == nil
}

// ResolveQuestion derives the current question: next_question first, then the indexed list entry.
func ResolveQuestion(s *types.InterviewSession) Resolution {
	if s == nil {
		return Resolution{Source: SourceNone}
	}

	var listed *types.Question
	if i := s.Progress.Current; i >= 0 && i < len(s.Questions) {
		q := s.Questions[i]
		listed = &q
	}

	if s.NextQuestion != nil {
		next := *s.NextQuestion
		return Resolution{
			Question:  &next,
			Source:    SourceNextQuestion,
			Divergent: listed != nil && !sameQuestion(next, *listed),
		}
	}
	if listed != nil {
		return Resolution{Question: listed, Source: SourceQuestionList}
	}
	return Resolution{Source: SourceNone}
}

func sameQuestion(a, b types.Question) bool {
	if a.ID != "" && b.ID != "" {
		return a.ID == b.ID
	}
	return a.Text == b.Text
}

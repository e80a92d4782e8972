// Package quiz scores generated quizzes and tracks an answering session.
//
// Information Hiding:
// - Scoring is a pure function over questions and answers
// - Submission only flips the classification of options; answers are kept
//   for review and cleared only by Reset
package quiz

import (
	"sort"
	"strings"

	"github.com/richinex/studio/model"
)

// Difficulty levels reported by the generator.
const (
	Easy   = "easy"
	Medium = "medium"
	Hard   = "hard"
)

// NormalizeDifficulty maps a difficulty label to easy, medium or hard.
// Unknown or missing labels are medium.
func NormalizeDifficulty(d string) string {
	switch strings.ToLower(strings.TrimSpace(d)) {
	case Easy:
		return Easy
	case Hard:
		return Hard
	default:
		return Medium
	}
}

// Score is the result of grading a quiz.
type Score struct {
	Correct    int     `json:"correct"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

// Grade returns the grade band for the percentage.
func (s Score) Grade() string {
	switch {
	case s.Percentage >= 80:
		return "excellent"
	case s.Percentage >= 60:
		return "good"
	default:
		return "keep practicing"
	}
}

// Calculate grades answers (question id to option letter) against the
// questions. An empty quiz scores 0%.
func Calculate(questions []model.Question, answers map[int]string) Score {
	s := Score{Total: len(questions)}
	for _, q := range questions {
		if a, ok := answers[q.ID]; ok && a == q.CorrectAnswer {
			s.Correct++
		}
	}
	if s.Total > 0 {
		s.Percentage = float64(s.Correct) * 100 / float64(s.Total)
	}
	return s
}

// Class is the visual classification of one option.
type Class int

const (
	// Plain: not selected, or not yet submitted and unselected.
	Plain Class = iota
	// Selected: chosen by the user before submission.
	Selected
	// Correct: the right answer after submission.
	Correct
	// Incorrect: a wrong answer the user chose, after submission.
	Incorrect
)

// String returns the class name.
func (c Class) String() string {
	switch c {
	case Plain:
		return "plain"
	case Selected:
		return "selected"
	case Correct:
		return "correct"
	case Incorrect:
		return "incorrect"
	default:
		return "unknown"
	}
}

// Session holds the user's answers for one quiz.
type Session struct {
	quiz      model.Quiz
	answers   map[int]string
	submitted bool
}

// NewSession starts answering q.
func NewSession(q model.Quiz) *Session {
	return &Session{quiz: q, answers: make(map[int]string)}
}

// Quiz returns the quiz being answered.
func (s *Session) Quiz() model.Quiz {
	return s.quiz
}

// Select records an answer. Selections after submission are ignored.
// It reports whether the answer was recorded.
func (s *Session) Select(questionID int, option string) bool {
	if s.submitted {
		return false
	}
	for _, q := range s.quiz.Questions {
		if q.ID == questionID {
			if _, ok := q.Options[option]; !ok {
				return false
			}
			s.answers[questionID] = option
			return true
		}
	}
	return false
}

// Answer returns the chosen option for a question.
func (s *Session) Answer(questionID int) (string, bool) {
	a, ok := s.answers[questionID]
	return a, ok
}

// Answered returns the number of answered questions.
func (s *Session) Answered() int {
	return len(s.answers)
}

// Submitted reports whether the session has been submitted.
func (s *Session) Submitted() bool {
	return s.submitted
}

// Submit ends answering and returns the score. Answers are kept.
func (s *Session) Submit() Score {
	s.submitted = true
	return s.Score()
}

// Score grades the current answers.
func (s *Session) Score() Score {
	return Calculate(s.quiz.Questions, s.answers)
}

// Reset clears answers and the submitted flag without touching the quiz.
func (s *Session) Reset() {
	s.answers = make(map[int]string)
	s.submitted = false
}

// Classify returns the classification of option for the question.
func (s *Session) Classify(q model.Question, option string) Class {
	chosen, answered := s.answers[q.ID]
	if !s.submitted {
		if answered && chosen == option {
			return Selected
		}
		return Plain
	}
	if option == q.CorrectAnswer {
		return Correct
	}
	if answered && chosen == option {
		return Incorrect
	}
	return Plain
}

// Verdict describes a submitted question: "correct", "incorrect" or
// "unanswered". It is empty before submission.
func (s *Session) Verdict(q model.Question) string {
	if !s.submitted {
		return ""
	}
	chosen, ok := s.answers[q.ID]
	switch {
	case !ok:
		return "unanswered"
	case chosen == q.CorrectAnswer:
		return "correct"
	default:
		return "incorrect"
	}
}

// Letters returns the option letters of q in order.
func Letters(q model.Question) []string {
	out := make([]string, 0, len(q.Options))
	for k := range q.Options {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

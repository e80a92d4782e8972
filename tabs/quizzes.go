package tabs

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/richinex/studio/lifecycle"
	"github.com/richinex/studio/model"
	"github.com/richinex/studio/quiz"
)

const (
	LatexListStatus = "Loading LaTeX summaries..."
	// MaxQuestions bounds the number of questions per quiz.
	MaxQuestions = 50
)

// QuizStatus returns the loading message for generating n questions.
func QuizStatus(n int) string {
	return fmt.Sprintf("Generating %d quiz questions...", n)
}

// QuizTab generates quizzes from LaTeX summaries and runs answer sessions.
type QuizTab struct {
	deps Deps

	list     lifecycle.Action
	generate lifecycle.Action
	alert    alert

	mu        sync.Mutex
	latex     []model.FileInfo
	model     string
	questions int
	session   *quiz.Session
}

// NewQuizTab creates the quiz view generating n questions with modelName.
func NewQuizTab(d Deps, modelName string, n int) *QuizTab {
	return &QuizTab{deps: d.withDefaults(), model: modelName, questions: clampQuestions(n)}
}

func clampQuestions(n int) int {
	switch {
	case n < 1:
		return 1
	case n > MaxQuestions:
		return MaxQuestions
	default:
		return n
	}
}

// LoadLatex lists the LaTeX summaries a quiz can be generated from.
func (q *QuizTab) LoadLatex(ctx context.Context) ([]model.FileInfo, error) {
	files, err := run(ctx, &q.list, q.deps.Notify, &q.alert, LatexListStatus, "Failed to load LaTeX files", q.deps.Backend.ListLatex)
	if err != nil {
		return nil, err
	}
	q.mu.Lock()
	q.latex = files
	q.mu.Unlock()
	return files, nil
}

// Latex returns the last loaded listing.
func (q *QuizTab) Latex() []model.FileInfo {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]model.FileInfo(nil), q.latex...)
}

// SetQuestions sets the number of questions, clamped to 1..MaxQuestions.
func (q *QuizTab) SetQuestions(n int) {
	q.mu.Lock()
	q.questions = clampQuestions(n)
	q.mu.Unlock()
}

// Generate requests a quiz for a LaTeX summary and starts a new session.
// On failure the previous session is kept.
func (q *QuizTab) Generate(ctx context.Context, latexPath string) (*quiz.Session, error) {
	if strings.TrimSpace(latexPath) == "" {
		return nil, reject(&q.generate, &q.alert, "Please select a LaTeX summary")
	}
	q.mu.Lock()
	n, modelName := q.questions, q.model
	q.mu.Unlock()

	generated, err := run(ctx, &q.generate, q.deps.Notify, &q.alert, QuizStatus(n), "Quiz generation failed", func(ctx context.Context) (model.Quiz, error) {
		return q.deps.Backend.GenerateQuiz(ctx, latexPath, modelName, n)
	})
	if err != nil {
		return nil, err
	}
	s := quiz.NewSession(generated)
	q.mu.Lock()
	q.session = s
	q.mu.Unlock()
	return s, nil
}

// Session returns the active answer session, or nil.
func (q *QuizTab) Session() *quiz.Session {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.session
}

// New drops the current quiz, returning to the generation form.
func (q *QuizTab) New() {
	q.mu.Lock()
	q.session = nil
	q.mu.Unlock()
	q.generate.Reset()
	q.alert.set("")
}

// GenerateState returns the state of the generation action.
func (q *QuizTab) GenerateState() lifecycle.State { return q.generate.State() }

// Error returns the message of the last failure, or "".
func (q *QuizTab) Error() string { return q.alert.get() }

// Close aborts every request in flight.
func (q *QuizTab) Close() {
	q.list.Cancel()
	q.generate.Cancel()
}

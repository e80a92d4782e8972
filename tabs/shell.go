package tabs

import (
	"fmt"
	"strings"
	"sync"

	"github.com/richinex/studio/lifecycle"
	"github.com/richinex/studio/llm"
)

// TabID names a view of the shell.
type TabID string

const (
	TabUpload      TabID = "upload"
	TabTranscripts TabID = "transcripts"
	TabFeatures    TabID = "features"
	TabQuiz        TabID = "quiz"
	TabChat        TabID = "chat"
)

// tabOrder is the display order of the tabs.
var tabOrder = []TabID{TabUpload, TabTranscripts, TabFeatures, TabQuiz, TabChat}

// Title returns the display title of a tab.
func (id TabID) Title() string {
	switch id {
	case TabUpload:
		return "Upload & Transcribe"
	case TabTranscripts:
		return "Transcripts"
	case TabFeatures:
		return "AI Features"
	case TabQuiz:
		return "Quiz"
	case TabChat:
		return "AI Assistant"
	default:
		return string(id)
	}
}

// ParseTabID parses a tab name (case-insensitive).
func ParseTabID(s string) (TabID, error) {
	id := TabID(strings.ToLower(strings.TrimSpace(s)))
	for _, t := range tabOrder {
		if t == id {
			return id, nil
		}
	}
	return "", fmt.Errorf("unknown tab: %s", s)
}

// Shell owns the views and the shared loading overlay. It holds no
// business logic.
type Shell struct {
	Overlay     *lifecycle.Overlay
	Upload      *UploadTab
	Transcripts *TranscriptsTab
	Features    *FeaturesTab
	Quiz        *QuizTab
	Chat        *ChatTab

	mu     sync.Mutex
	active TabID
}

// ShellConfig configures the views built by NewShell.
type ShellConfig struct {
	// SummaryProvider and SummaryModel select the features tab model.
	// Empty values keep OpenRouter and its default model.
	SummaryProvider string
	SummaryModel    string
	QuizModel       string
	QuizQuestions   int
	Chat            ChatConfig
	// OnOverlay receives every change of the loading overlay.
	OnOverlay func(lifecycle.Snapshot)
}

// NewShell builds every view around one overlay. d.Notify is replaced by
// the shell's overlay.
func NewShell(d Deps, cfg ShellConfig) (*Shell, error) {
	overlay := lifecycle.NewOverlay(cfg.OnOverlay)
	d.Notify = overlay

	features := NewFeaturesTab(d, llm.ProviderOpenRouter, "")
	if cfg.SummaryProvider != "" {
		if err := features.SetProvider(cfg.SummaryProvider); err != nil {
			return nil, err
		}
	}
	features.SetModel(cfg.SummaryModel)

	return &Shell{
		Overlay:     overlay,
		Upload:      NewUploadTab(d),
		Transcripts: NewTranscriptsTab(d),
		Features:    features,
		Quiz:        NewQuizTab(d, cfg.QuizModel, cfg.QuizQuestions),
		Chat:        NewChatTab(d, cfg.Chat),
		active:      TabUpload,
	}, nil
}

// Tabs returns the tab IDs in display order.
func (s *Shell) Tabs() []TabID {
	return append([]TabID(nil), tabOrder...)
}

// Active returns the selected tab.
func (s *Shell) Active() TabID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Select switches the active tab. Views keep their state.
func (s *Shell) Select(id TabID) error {
	parsed, err := ParseTabID(string(id))
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.active = parsed
	s.mu.Unlock()
	return nil
}

// Close aborts every request in flight in every view.
func (s *Shell) Close() {
	s.Upload.Close()
	s.Transcripts.Close()
	s.Features.Close()
	s.Quiz.Close()
	s.Chat.Close()
}

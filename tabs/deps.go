// Package tabs holds the view-state machines of the studio: upload,
// transcripts, features, quiz and chat, plus the shell that selects
// between them.
//
// Information Hiding:
// - Each view owns its request lifecycles; triggers are gated per action
// - Remote failures are mapped to a local alert message, never returned
//   as panics past the view
// - The loading indicator is injected; views never touch global state
package tabs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/richinex/studio/api"
	"github.com/richinex/studio/lifecycle"
	"github.com/richinex/studio/model"
	"github.com/richinex/studio/storage"
)

// Backend is the API surface the views use.
type Backend interface {
	ListMedia(ctx context.Context) ([]model.FileInfo, error)
	UploadMedia(ctx context.Context, filename string, r io.Reader, size int64, progress api.ProgressFunc) (string, error)
	DownloadYouTube(ctx context.Context, url string) (string, error)
	Transcribe(ctx context.Context, path string) (model.Transcription, error)
	ListTranscripts(ctx context.Context) ([]model.FileInfo, error)
	TranscriptContent(ctx context.Context, path string) (string, error)
	GenerateTTS(ctx context.Context, transcriptPath string, mode api.TTSMode) (model.TTSResult, error)
	StreamLatex(ctx context.Context, req api.LatexRequest) (*api.LatexStream, error)
	GeneratePDF(ctx context.Context, req api.PDFRequest) (model.PDFResult, error)
	ListLatex(ctx context.Context) ([]model.FileInfo, error)
	GenerateQuiz(ctx context.Context, latexPath, modelName string, numQuestions int) (model.Quiz, error)
	Chat(ctx context.Context, req api.ChatRequest) (api.ChatReply, error)
	Download(ctx context.Context, path string, w io.Writer) (int64, error)
}

var _ Backend = (*api.Client)(nil)

// Deps are the collaborators shared by every view.
type Deps struct {
	Backend Backend
	// Notify is the loading indicator. Nil discards.
	Notify lifecycle.Notifier
	// History records produced artifacts. Nil disables recording.
	History *History
	// DownloadDir is where downloaded artifacts are written.
	DownloadDir string
	Logger      *slog.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Notify == nil {
		d.Notify = lifecycle.Discard
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.DownloadDir == "" {
		d.DownloadDir = "."
	}
	return d
}

// History records artifacts produced in a session.
type History struct {
	store     storage.ArtifactStorage
	sessionID string
	logger    *slog.Logger
}

// NewHistory creates a recorder for sessionID.
func NewHistory(store storage.ArtifactStorage, sessionID string, logger *slog.Logger) *History {
	if logger == nil {
		logger = slog.Default()
	}
	return &History{store: store, sessionID: sessionID, logger: logger}
}

// SessionID returns the session artifacts are recorded under.
func (h *History) SessionID() string {
	if h == nil {
		return ""
	}
	return h.sessionID
}

// Record stores an artifact. Failures are logged, not returned: losing a
// history entry must not fail the user's action.
func (h *History) Record(ctx context.Context, kind storage.ArtifactKind, a model.Artifact) {
	if h == nil || h.store == nil || a.IsZero() {
		return
	}
	rec := storage.NewArtifactRecord(h.sessionID, kind, a)
	if err := h.store.RecordArtifact(ctx, rec); err != nil {
		h.logger.Warn("failed to record artifact", "path", a.Path, "error", err)
	}
}

// List returns the recorded artifacts, newest first.
func (h *History) List(ctx context.Context, limit int) ([]storage.ArtifactRecord, error) {
	if h == nil || h.store == nil {
		return nil, nil
	}
	return h.store.ListArtifacts(ctx, h.sessionID, limit)
}

// Clear removes every recorded artifact of the session.
func (h *History) Clear(ctx context.Context) error {
	if h == nil || h.store == nil {
		return nil
	}
	return h.store.DeleteSessionArtifacts(ctx, h.sessionID)
}

// alert is the error message a view shows.
type alert struct {
	mu  sync.Mutex
	msg string
}

func (a *alert) get() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.msg
}

func (a *alert) set(msg string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.msg = msg
}

// settle updates the alert for a finished run. Rejected and superseded runs
// leave it untouched.
func (a *alert) settle(err error, fallback string) {
	switch {
	case notApplied(err):
	case err != nil:
		a.set(api.Message(err, fallback))
	default:
		a.set("")
	}
}

// notApplied reports whether err means the run never touched view state.
func notApplied(err error) bool {
	return errors.Is(err, lifecycle.ErrBusy) || errors.Is(err, lifecycle.ErrSuperseded)
}

// run performs one remote action and settles the view's alert.
func run[T any](ctx context.Context, act *lifecycle.Action, n lifecycle.Notifier, al *alert, status, fallback string, call func(context.Context) (T, error)) (T, error) {
	res, err := lifecycle.Run(ctx, act, n, status, call)
	al.settle(err, fallback)
	return res, err
}

// rejecter is an action that can fail without running.
type rejecter interface {
	Reject(err error) error
}

// reject fails act with a validation message without touching the network.
func reject(act rejecter, al *alert, msg string) error {
	verr := api.Validation(msg)
	if err := act.Reject(verr); !errors.Is(err, verr) {
		return err
	}
	al.set(msg)
	return verr
}

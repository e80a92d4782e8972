// Command execution for CLI commands.
//
// Information Hiding:
// - Backend client, storage and view wiring hidden behind App
// - Output formatting hidden
// - Interactive loops (quiz, chat) hidden

package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/richinex/studio/api"
	"github.com/richinex/studio/config"
	"github.com/richinex/studio/internal/index"
	"github.com/richinex/studio/latex"
	"github.com/richinex/studio/model"
	"github.com/richinex/studio/quiz"
	"github.com/richinex/studio/storage"
	"github.com/richinex/studio/tabs"
	"github.com/richinex/studio/tools"
)

// DefaultSession names the session used when none is given.
const DefaultSession = "default"

// Options holds CLI execution options.
type Options struct {
	// APIURL overrides STUDIO_API_URL.
	APIURL string
	// Provider overrides STUDIO_PROVIDER for summaries.
	Provider  string
	SessionID string
	// InMemory keeps chat history and artifacts in memory instead of SQLite.
	InMemory bool
	Logger   *slog.Logger

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// DefaultOptions returns default CLI options.
func DefaultOptions() Options {
	return Options{
		SessionID: DefaultSession,
		Stdin:     os.Stdin,
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
	}
}

// App wires the backend client, local storage and the views together for
// one CLI invocation.
type App struct {
	Settings config.Settings
	Client   *api.Client
	Shell    *tabs.Shell

	store   storage.Storage
	closer  io.Closer
	history *tabs.History
	theme   theme
	in      *bufio.Scanner
	out     io.Writer
	errOut  io.Writer
}

// NewApp loads configuration and opens storage.
func NewApp(opts Options) (*App, error) {
	def := DefaultOptions()
	if opts.Stdin == nil {
		opts.Stdin = def.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = def.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = def.Stderr
	}
	if opts.SessionID == "" {
		opts.SessionID = def.SessionID
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	settings, err := config.New(opts.Provider)
	if err != nil {
		return nil, err
	}
	if opts.APIURL != "" {
		settings.API.BaseURL = opts.APIURL
	}

	app := &App{
		Settings: settings,
		Client:   api.New(settings.API.BaseURL, api.WithTimeout(settings.API.Timeout), api.WithLogger(opts.Logger)),
		theme:    newTheme(),
		in:       bufio.NewScanner(opts.Stdin),
		out:      opts.Stdout,
		errOut:   opts.Stderr,
	}

	if opts.InMemory {
		app.store = storage.NewInMemoryStorage()
	} else {
		s, err := storage.OpenSqlite(settings.Storage.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		app.store = s
		app.closer = s
	}

	app.history = tabs.NewHistory(app.store, opts.SessionID, opts.Logger)
	shell, err := tabs.NewShell(tabs.Deps{
		Backend:     app.Client,
		History:     app.history,
		DownloadDir: settings.Storage.DownloadDir,
		Logger:      opts.Logger,
	}, tabs.ShellConfig{
		SummaryProvider: settings.LLM.Provider,
		SummaryModel:    settings.LLM.Model,
		QuizModel:       settings.LLM.QuizModel,
		QuizQuestions:   settings.LLM.QuizQuestions,
		Chat: tabs.ChatConfig{
			Model:     settings.LLM.ChatModel,
			Provider:  settings.LLM.ChatProvider,
			Store:     app.store,
			SessionID: opts.SessionID,
		},
		OnOverlay: overlayPrinter(opts.Stderr, app.theme),
	})
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	app.Shell = shell
	return app, nil
}

// Close aborts pending requests and closes storage.
func (a *App) Close() error {
	if a.Shell != nil {
		a.Shell.Close()
	}
	if a.closer != nil {
		return a.closer.Close()
	}
	return nil
}

// reportedError marks an error whose message has already been printed.
type reportedError struct{ error }

func (e reportedError) Unwrap() error { return e.error }

// Reported reports whether err was already shown to the user.
func Reported(err error) bool {
	var r reportedError
	return errors.As(err, &r)
}

// fail prints a view's alert and returns err.
func (a *App) fail(alert string, err error) error {
	if alert == "" {
		alert = api.Message(err, err.Error())
	}
	fmt.Fprintln(a.errOut, a.theme.alert.Render("Error: "+alert))
	return reportedError{err}
}

// Health prints the backend health payload.
func (a *App) Health(ctx context.Context) error {
	status, err := a.Client.Health(ctx)
	if err != nil {
		return a.fail("", err)
	}
	keys := make([]string, 0, len(status))
	for k := range status {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Fprintln(a.out, a.theme.success.Render("Backend reachable at "+a.Client.BaseURL()))
	for _, k := range keys {
		fmt.Fprintf(a.out, "  %s: %v\n", k, status[k])
	}
	return nil
}

// ListMedia prints the media files on the server.
func (a *App) ListMedia(ctx context.Context) error {
	files, err := a.Shell.Upload.LoadMedia(ctx)
	if err != nil {
		return a.fail(a.Shell.Upload.Error(), err)
	}
	a.printFiles("Media files", files)
	return nil
}

// Upload uploads a local file and prints its transcription.
func (a *App) Upload(ctx context.Context, path string) error {
	tr, err := a.Shell.Upload.UploadFile(ctx, path)
	if err != nil {
		return a.fail(a.Shell.Upload.Error(), err)
	}
	a.printTranscription(tr)
	return nil
}

// YouTube downloads a video on the server and prints its transcription.
func (a *App) YouTube(ctx context.Context, url string) error {
	tr, err := a.Shell.Upload.UploadYouTube(ctx, url)
	if err != nil {
		return a.fail(a.Shell.Upload.Error(), err)
	}
	a.printTranscription(tr)
	return nil
}

// Transcribe transcribes media already on the server. query may be a path,
// a file name or a unique name prefix of a listed media file.
func (a *App) Transcribe(ctx context.Context, query string) error {
	path := query
	if query != "" && !strings.Contains(query, "/") {
		files, err := a.Shell.Upload.LoadMedia(ctx)
		if err != nil {
			return a.fail(a.Shell.Upload.Error(), err)
		}
		if path, err = a.resolveListed(files, query); err != nil {
			return err
		}
	}
	tr, err := a.Shell.Upload.Transcribe(ctx, path)
	if err != nil {
		return a.fail(a.Shell.Upload.Error(), err)
	}
	a.printTranscription(tr)
	return nil
}

// ListTranscripts prints the transcripts on the server.
func (a *App) ListTranscripts(ctx context.Context) error {
	files, err := a.Shell.Transcripts.Load(ctx)
	if err != nil {
		return a.fail(a.Shell.Transcripts.Error(), err)
	}
	a.printFiles("Transcripts", files)
	return nil
}

// ShowTranscript prints a transcript, or only the lines matching search.
func (a *App) ShowTranscript(ctx context.Context, query, search string) error {
	v := a.Shell.Transcripts
	if _, err := v.Load(ctx); err != nil {
		return a.fail(v.Error(), err)
	}
	content, err := v.View(ctx, query)
	if err != nil {
		return a.fail(v.Error(), err)
	}
	file, _ := v.Selected()
	fmt.Fprintln(a.out, a.theme.title.Render(file.Name))
	if search == "" {
		fmt.Fprintln(a.out, content)
		return nil
	}
	matches := v.Search(search)
	for _, m := range matches {
		fmt.Fprintf(a.out, "%s %s\n", a.theme.muted.Render(fmt.Sprintf("%4d:", m.Line)), m.Text)
	}
	fmt.Fprintln(a.out, a.theme.muted.Render(fmt.Sprintf("%d matching lines", len(matches))))
	return nil
}

// DownloadTranscript saves a transcript to the download directory.
func (a *App) DownloadTranscript(ctx context.Context, query string) error {
	v := a.Shell.Transcripts
	if _, err := v.Load(ctx); err != nil {
		return a.fail(v.Error(), err)
	}
	if _, err := v.View(ctx, query); err != nil {
		return a.fail(v.Error(), err)
	}
	saved, err := v.Download(ctx)
	if err != nil {
		return a.fail(v.Error(), err)
	}
	fmt.Fprintln(a.out, a.theme.success.Render("Saved "+saved))
	return nil
}

// resolveTranscript maps a transcript name or prefix to its server path.
func (a *App) resolveTranscript(ctx context.Context, query string) (string, error) {
	if query == "" || strings.Contains(query, "/") {
		return query, nil
	}
	v := a.Shell.Transcripts
	if _, err := v.Load(ctx); err != nil {
		return "", a.fail(v.Error(), err)
	}
	f, err := v.Resolve(query)
	if err != nil {
		return "", a.fail(err.Error(), err)
	}
	return f.Path, nil
}

// resolveListed maps a name or unique name prefix to a path in files. A
// query matching nothing is passed through so the backend can report it.
func (a *App) resolveListed(files []model.FileInfo, query string) (string, error) {
	f, err := index.NewNames(files).Resolve(query)
	switch {
	case err == nil:
		return f.Path, nil
	case errors.Is(err, index.ErrNotFound):
		return query, nil
	default:
		return "", a.fail("", api.Validation(err.Error()))
	}
}

// Speech generates audio from a transcript.
func (a *App) Speech(ctx context.Context, transcript string, mode api.TTSMode, download bool) error {
	path, err := a.resolveTranscript(ctx, transcript)
	if err != nil {
		return err
	}
	v := a.Shell.Features
	v.SetTTSMode(mode)
	res, err := v.GenerateSpeech(ctx, path)
	if err != nil {
		return a.fail(v.Error(), err)
	}
	fmt.Fprintln(a.out, a.theme.success.Render("Generated "+res.Filename))
	fmt.Fprintf(a.out, "  path: %s\n  url:  %s\n", res.AudioPath, res.AudioURL)
	if download {
		return a.save(ctx, res.Artifact())
	}
	return nil
}

// Summary streams a LaTeX summary of a transcript and compiles it to PDF.
func (a *App) Summary(ctx context.Context, transcript string, mode api.SummaryMode, showDraft, download bool) error {
	path, err := a.resolveTranscript(ctx, transcript)
	if err != nil {
		return err
	}
	v := a.Shell.Features
	v.SetSummaryMode(mode)
	provider, modelName := v.Provider()
	fmt.Fprintln(a.errOut, a.theme.muted.Render(fmt.Sprintf("Summarizing with %s (%s)", modelName, provider)))

	printed := 0
	out, err := v.GenerateSummary(ctx, path, func(text string) {
		if showDraft && len(text) > printed {
			fmt.Fprint(a.out, text[printed:])
			printed = len(text)
		}
	})
	if showDraft && printed > 0 {
		fmt.Fprintln(a.out)
	}

	switch {
	case err == nil:
		fmt.Fprintln(a.out, a.theme.success.Render("Generated "+out.PDF().Filename))
		fmt.Fprintf(a.out, "  pdf:   %s\n  latex: %s\n", out.PDF().Path, out.Source().Path)
		if download {
			return a.save(ctx, out.PDF())
		}
		return nil
	case out.Status == latex.Partial:
		ferr := a.fail(v.Error(), err)
		fmt.Fprintf(a.out, "LaTeX source kept at %s\n", out.Source().Path)
		if download {
			if serr := a.save(ctx, out.Source()); serr != nil {
				return serr
			}
		}
		return ferr
	default:
		return a.fail(v.Error(), err)
	}
}

func (a *App) save(ctx context.Context, art model.Artifact) error {
	saved, err := a.Shell.Features.Download(ctx, art)
	if err != nil {
		return a.fail(a.Shell.Features.Error(), err)
	}
	fmt.Fprintln(a.out, a.theme.success.Render("Saved "+saved))
	return nil
}

// ListLatex prints the LaTeX summaries on the server.
func (a *App) ListLatex(ctx context.Context) error {
	files, err := a.Shell.Quiz.LoadLatex(ctx)
	if err != nil {
		return a.fail(a.Shell.Quiz.Error(), err)
	}
	a.printFiles("LaTeX summaries", files)
	return nil
}

// Quiz generates a quiz and runs it interactively. n of zero keeps the
// configured question count.
func (a *App) Quiz(ctx context.Context, latexQuery string, n int) error {
	v := a.Shell.Quiz
	path := latexQuery
	if latexQuery != "" && !strings.Contains(latexQuery, "/") {
		files, err := v.LoadLatex(ctx)
		if err != nil {
			return a.fail(v.Error(), err)
		}
		if path, err = a.resolveListed(files, latexQuery); err != nil {
			return err
		}
	}
	if n > 0 {
		v.SetQuestions(n)
	}
	session, err := v.Generate(ctx, path)
	if err != nil {
		return a.fail(v.Error(), err)
	}
	return a.runQuiz(session)
}

func (a *App) runQuiz(s *quiz.Session) error {
	q := s.Quiz()
	fmt.Fprintln(a.out, a.theme.title.Render(q.DisplayTitle()))
	fmt.Fprintf(a.out, "%d questions. Answer with a letter, blank to skip.\n\n", q.Total())

	for _, question := range q.Questions {
		a.printQuestion(s, question)
		letters := quiz.Letters(question)
		fmt.Fprintf(a.out, "Answer (%s): ", strings.Join(letters, "/"))
		if !a.in.Scan() {
			break
		}
		answer := strings.ToUpper(strings.TrimSpace(a.in.Text()))
		if answer != "" && !s.Select(question.ID, answer) {
			fmt.Fprintln(a.errOut, a.theme.alert.Render("Unknown option "+answer+", skipped"))
		}
		fmt.Fprintln(a.out)
	}
	if err := a.in.Err(); err != nil {
		return err
	}

	score := s.Submit()
	fmt.Fprintln(a.out, a.theme.title.Render("Results"))
	for _, question := range q.Questions {
		a.printQuestion(s, question)
		fmt.Fprintf(a.out, "  %s", s.Verdict(question))
		if question.Explanation != "" {
			fmt.Fprintf(a.out, ": %s", question.Explanation)
		}
		fmt.Fprint(a.out, "\n\n")
	}
	fmt.Fprintln(a.out, a.theme.title.Render(fmt.Sprintf("Score: %d/%d (%.0f%%) %s",
		score.Correct, score.Total, score.Percentage, score.Grade())))
	return nil
}

func (a *App) printQuestion(s *quiz.Session, q model.Question) {
	fmt.Fprintf(a.out, "%d. %s %s\n", q.ID, q.Question, a.theme.muted.Render("["+quiz.NormalizeDifficulty(q.Difficulty)+"]"))
	for _, letter := range quiz.Letters(q) {
		style := a.theme.option[s.Classify(q, letter)]
		fmt.Fprintf(a.out, "   %s\n", style.Render(letter+") "+q.Options[letter]))
	}
}

// Chat starts an interactive chat session with the backend assistant.
func (a *App) Chat(ctx context.Context) error {
	c := a.Shell.Chat
	if err := c.Resume(ctx); err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	transcript := c.Transcript()
	if len(transcript) > 1 {
		fmt.Fprintf(a.out, "Resuming session '%s' (%d messages)\n\n", c.SessionID(), len(transcript))
	}
	a.printEntry(transcript[len(transcript)-1])
	fmt.Fprintln(a.out, a.theme.muted.Render("Type 'exit' to quit, 'clear' to start over."))

	for {
		fmt.Fprint(a.out, "> ")
		if !a.in.Scan() {
			break
		}
		input := strings.TrimSpace(a.in.Text())
		if input == "" {
			continue
		}
		switch input {
		case "exit", "quit":
			return nil
		case "clear":
			if err := c.Clear(ctx); err != nil {
				fmt.Fprintf(a.errOut, "Warning: failed to clear history: %v\n", err)
			}
			a.printEntry(c.Transcript()[0])
			continue
		}

		entry, err := c.Send(ctx, input)
		if err != nil && entry.Content == "" {
			fmt.Fprintf(a.errOut, "\nError: %s\n\n", api.Message(err, err.Error()))
			continue
		}
		fmt.Fprintln(a.out)
		a.printEntry(entry)
	}
	return a.in.Err()
}

func (a *App) printEntry(e model.ChatEntry) {
	fmt.Fprintf(a.out, "%s: %s\n", a.theme.role(e.Role), e.Content)
	for _, r := range e.ToolResults {
		fmt.Fprintln(a.out, a.theme.tool.Render("⚙ "+tools.Describe(r)))
	}
	fmt.Fprintln(a.out)
}

// History prints the artifacts recorded for the session, newest first.
func (a *App) History(ctx context.Context, limit int) error {
	recs, err := a.history.List(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to load artifacts: %w", err)
	}
	if len(recs) == 0 {
		fmt.Fprintf(a.out, "No artifacts recorded for session '%s'\n", a.history.SessionID())
		return nil
	}
	fmt.Fprintln(a.out, a.theme.title.Render("Artifacts of session "+a.history.SessionID()))
	for _, r := range recs {
		fmt.Fprintf(a.out, "  %-10s %-40s %s\n", r.Kind, r.Path, a.theme.muted.Render(time.Unix(r.CreatedAt, 0).Format("2006-01-02 15:04")))
	}
	return nil
}

// ClearHistory forgets every artifact recorded for the session.
func (a *App) ClearHistory(ctx context.Context) error {
	if err := a.history.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear artifacts: %w", err)
	}
	fmt.Fprintf(a.out, "Cleared artifacts of session '%s'\n", a.history.SessionID())
	return nil
}

// Sessions prints the stored chat sessions, most recent first.
func (a *App) Sessions(ctx context.Context) error {
	ids, err := a.store.ListSessions(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	for _, id := range ids {
		fmt.Fprintln(a.out, id)
	}
	return nil
}

func (a *App) printFiles(title string, files []model.FileInfo) {
	fmt.Fprintln(a.out, a.theme.title.Render(fmt.Sprintf("%s (%d)", title, len(files))))
	for _, f := range files {
		size := ""
		if f.Size > 0 {
			size = a.theme.muted.Render(humanSize(f.Size))
		}
		fmt.Fprintf(a.out, "  %-40s %s\n", f.Name, size)
	}
}

func (a *App) printTranscription(tr model.Transcription) {
	fmt.Fprintln(a.out, a.theme.title.Render(tr.Label()))
	fmt.Fprintln(a.out, tr.Transcript)
	if tr.IsMedia() && tr.Timestamped != "" {
		fmt.Fprintln(a.out)
		fmt.Fprintln(a.out, a.theme.title.Render("Timestamped Transcript"))
		fmt.Fprintln(a.out, tr.Timestamped)
	}
	fmt.Fprintln(a.out)
	for _, art := range tr.Artifacts() {
		fmt.Fprintf(a.out, "  saved on server: %s\n", art.Path)
	}
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}


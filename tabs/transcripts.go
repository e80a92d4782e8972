package tabs

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/richinex/studio/internal/index"
	"github.com/richinex/studio/lifecycle"
	"github.com/richinex/studio/model"
)

const (
	TranscriptListStatus    = "Loading transcripts..."
	TranscriptContentStatus = "Loading transcript content..."
)

// TranscriptsTab lists transcripts and shows one at a time.
type TranscriptsTab struct {
	deps Deps

	list      lifecycle.Action
	view      lifecycle.Action
	alert     alert
	downloads *Downloader

	mu       sync.Mutex
	files    []model.FileInfo
	names    *index.Names
	selected model.FileInfo
	content  string
	text     *index.Text
}

// NewTranscriptsTab creates the transcripts view.
func NewTranscriptsTab(d Deps) *TranscriptsTab {
	d = d.withDefaults()
	t := &TranscriptsTab{deps: d, names: index.NewNames(nil)}
	t.downloads = newDownloader(d, &t.alert)
	return t
}

// Load fetches the transcript listing.
func (t *TranscriptsTab) Load(ctx context.Context) ([]model.FileInfo, error) {
	files, err := run(ctx, &t.list, t.deps.Notify, &t.alert, TranscriptListStatus, "Failed to load transcripts", t.deps.Backend.ListTranscripts)
	if err != nil {
		return nil, err
	}
	t.mu.Lock()
	t.files = files
	t.names = index.NewNames(files)
	t.mu.Unlock()
	return files, nil
}

// Transcripts returns the last loaded listing.
func (t *TranscriptsTab) Transcripts() []model.FileInfo {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]model.FileInfo(nil), t.files...)
}

// Resolve maps a path, name or unique name prefix to a listed transcript.
func (t *TranscriptsTab) Resolve(query string) (model.FileInfo, error) {
	t.mu.Lock()
	names := t.names
	t.mu.Unlock()
	return names.Resolve(query)
}

// Complete returns listed transcript names starting with prefix.
func (t *TranscriptsTab) Complete(prefix string) []string {
	t.mu.Lock()
	names := t.names
	t.mu.Unlock()
	return names.Complete(prefix)
}

// View loads the content of a transcript. query is resolved against the
// listing; a path that is not listed is used as is.
func (t *TranscriptsTab) View(ctx context.Context, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", reject(&t.view, &t.alert, "Please select a transcript")
	}
	file, err := t.Resolve(query)
	var ambiguous *index.AmbiguousError
	switch {
	case errors.As(err, &ambiguous):
		return "", reject(&t.view, &t.alert, ambiguous.Error())
	case err != nil:
		file = model.FileInfo{Path: query, Name: query}
	}

	content, err := run(ctx, &t.view, t.deps.Notify, &t.alert, TranscriptContentStatus, "Failed to load content", func(ctx context.Context) (string, error) {
		return t.deps.Backend.TranscriptContent(ctx, file.Path)
	})
	if err != nil {
		return "", err
	}
	t.mu.Lock()
	t.selected = file
	t.content = content
	t.text = index.NewText(content)
	t.mu.Unlock()
	return content, nil
}

// Selected returns the transcript being viewed and its content.
func (t *TranscriptsTab) Selected() (model.FileInfo, string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.selected, t.content
}

// Search finds lines of the viewed transcript containing pattern,
// ignoring ASCII case.
func (t *TranscriptsTab) Search(pattern string) []index.Match {
	t.mu.Lock()
	text := t.text
	t.mu.Unlock()
	if text == nil {
		return nil
	}
	return text.Search(pattern)
}

// Download saves the viewed transcript locally.
func (t *TranscriptsTab) Download(ctx context.Context) (string, error) {
	t.mu.Lock()
	a := t.selected.Artifact()
	t.mu.Unlock()
	return t.downloads.Save(ctx, a)
}

// ViewState returns the state of the content action.
func (t *TranscriptsTab) ViewState() lifecycle.State { return t.view.State() }

// Error returns the message of the last failure, or "".
func (t *TranscriptsTab) Error() string {
	return t.alert.get()
}

// Close aborts every request in flight.
func (t *TranscriptsTab) Close() {
	t.list.Cancel()
	t.view.Cancel()
	t.downloads.Close()
}

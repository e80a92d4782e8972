package tabs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/richinex/studio/lifecycle"
	"github.com/richinex/studio/model"
	"github.com/richinex/studio/storage"
)

// Status messages of the upload view.
const (
	UploadStatus     = "Extracting Content..."
	YouTubeStatus    = "Downloading from YouTube..."
	TranscribeStatus = "Transcribing audio... This may take a while"
	MediaListStatus  = "Loading media files..."
)

// UploadTab brings media into the backend and transcribes it. Sources are a
// local file, a YouTube URL or media already on the server.
type UploadTab struct {
	deps Deps

	upload     lifecycle.Action
	transcribe lifecycle.Action
	list       lifecycle.Action
	alert      alert
	downloads  *Downloader

	mu            sync.Mutex
	media         []model.FileInfo
	progress      int
	transcription *model.Transcription
}

// NewUploadTab creates the upload view.
func NewUploadTab(d Deps) *UploadTab {
	d = d.withDefaults()
	u := &UploadTab{deps: d}
	u.downloads = newDownloader(d, &u.alert)
	return u
}

// LoadMedia lists media already on the server.
func (u *UploadTab) LoadMedia(ctx context.Context) ([]model.FileInfo, error) {
	files, err := run(ctx, &u.list, u.deps.Notify, &u.alert, MediaListStatus, "Failed to load media files", u.deps.Backend.ListMedia)
	if err != nil {
		return nil, err
	}
	u.mu.Lock()
	u.media = files
	u.mu.Unlock()
	return files, nil
}

// Media returns the last loaded media listing.
func (u *UploadTab) Media() []model.FileInfo {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]model.FileInfo(nil), u.media...)
}

// UploadFile uploads a local file and transcribes it.
func (u *UploadTab) UploadFile(ctx context.Context, localPath string) (model.Transcription, error) {
	if strings.TrimSpace(localPath) == "" {
		return model.Transcription{}, reject(&u.upload, &u.alert, "Please select a file")
	}
	f, err := os.Open(localPath)
	if err != nil {
		return model.Transcription{}, reject(&u.upload, &u.alert, fmt.Sprintf("Cannot open %s", localPath))
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil || info.IsDir() {
		return model.Transcription{}, reject(&u.upload, &u.alert, fmt.Sprintf("Cannot open %s", localPath))
	}

	u.setProgress(0)
	path, err := run(ctx, &u.upload, u.deps.Notify, &u.alert, UploadStatus, "Upload failed", func(ctx context.Context) (string, error) {
		return u.deps.Backend.UploadMedia(ctx, filepath.Base(localPath), f, info.Size(), u.setProgress)
	})
	if err != nil {
		return model.Transcription{}, err
	}
	u.deps.History.Record(ctx, storage.ArtifactMedia, model.NewArtifact(path, ""))
	return u.Transcribe(ctx, path)
}

// UploadYouTube downloads a YouTube video on the server and transcribes it.
func (u *UploadTab) UploadYouTube(ctx context.Context, url string) (model.Transcription, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return model.Transcription{}, reject(&u.upload, &u.alert, "Please enter a YouTube URL")
	}
	path, err := run(ctx, &u.upload, u.deps.Notify, &u.alert, YouTubeStatus, "Download failed", func(ctx context.Context) (string, error) {
		return u.deps.Backend.DownloadYouTube(ctx, url)
	})
	if err != nil {
		return model.Transcription{}, err
	}
	u.deps.History.Record(ctx, storage.ArtifactMedia, model.NewArtifact(path, ""))
	return u.Transcribe(ctx, path)
}

// Transcribe transcribes media already on the server.
func (u *UploadTab) Transcribe(ctx context.Context, serverPath string) (model.Transcription, error) {
	if strings.TrimSpace(serverPath) == "" {
		return model.Transcription{}, reject(&u.transcribe, &u.alert, "Please select a file")
	}
	t, err := run(ctx, &u.transcribe, u.deps.Notify, &u.alert, TranscribeStatus, "Transcription failed", func(ctx context.Context) (model.Transcription, error) {
		return u.deps.Backend.Transcribe(ctx, serverPath)
	})
	if err != nil {
		return model.Transcription{}, err
	}
	u.mu.Lock()
	u.transcription = &t
	u.mu.Unlock()
	for _, a := range t.Artifacts() {
		u.deps.History.Record(ctx, storage.ArtifactTranscript, a)
	}
	return t, nil
}

// Download saves one of the transcription's files locally.
func (u *UploadTab) Download(ctx context.Context, a model.Artifact) (string, error) {
	return u.downloads.Save(ctx, a)
}

// Transcription returns the last transcription result.
func (u *UploadTab) Transcription() (model.Transcription, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.transcription == nil {
		return model.Transcription{}, false
	}
	return *u.transcription, true
}

// Progress returns the upload progress in percent.
func (u *UploadTab) Progress() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.progress
}

func (u *UploadTab) setProgress(p int) {
	u.mu.Lock()
	u.progress = p
	u.mu.Unlock()
}

// UploadState returns the state of the upload or YouTube action.
func (u *UploadTab) UploadState() lifecycle.State { return u.upload.State() }

// TranscribeState returns the state of the transcription action.
func (u *UploadTab) TranscribeState() lifecycle.State { return u.transcribe.State() }

// Error returns the message of the last failure, or "".
func (u *UploadTab) Error() string { return u.alert.get() }

// Close aborts every request in flight.
func (u *UploadTab) Close() {
	u.upload.Cancel()
	u.transcribe.Cancel()
	u.list.Cancel()
	u.downloads.Close()
}

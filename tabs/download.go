package tabs

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/richinex/studio/lifecycle"
	"github.com/richinex/studio/model"
)

// DownloadStatus is shown while an artifact is fetched.
const DownloadStatus = "Downloading..."

// Downloader fetches artifacts and saves them locally under their filename.
type Downloader struct {
	backend Backend
	notify  lifecycle.Notifier
	dir     string
	action  lifecycle.Action
	alert   *alert
}

// newDownloader creates a downloader reporting failures to al.
func newDownloader(d Deps, al *alert) *Downloader {
	return &Downloader{backend: d.Backend, notify: d.Notify, dir: d.DownloadDir, alert: al}
}

// Save downloads a and returns the local path written. The body is fully
// received before anything is written, so a failed download leaves no
// partial file.
func (d *Downloader) Save(ctx context.Context, a model.Artifact) (string, error) {
	if a.IsZero() {
		return "", reject(&d.action, d.alert, "Nothing to download")
	}
	return run(ctx, &d.action, d.notify, d.alert, DownloadStatus, "Download failed", func(ctx context.Context) (string, error) {
		var buf bytes.Buffer
		if _, err := d.backend.Download(ctx, a.Path, &buf); err != nil {
			return "", err
		}
		name := a.Filename
		if name == "" {
			name = a.Path
		}
		dst := filepath.Join(d.dir, filepath.Base(name))
		if err := os.MkdirAll(d.dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create download directory: %w", err)
		}
		if err := os.WriteFile(dst, buf.Bytes(), 0644); err != nil {
			return "", fmt.Errorf("failed to save %s: %w", name, err)
		}
		return dst, nil
	})
}

// State returns the download lifecycle state.
func (d *Downloader) State() lifecycle.State {
	return d.action.State()
}

// Close aborts a download in flight.
func (d *Downloader) Close() {
	d.action.Cancel()
}

package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/richinex/studio/model"
)

// ArtifactKind classifies a recorded artifact.
type ArtifactKind string

const (
	// ArtifactMedia is uploaded or downloaded source media.
	ArtifactMedia ArtifactKind = "media"
	// ArtifactTranscript is a plain or timestamped transcript.
	ArtifactTranscript ArtifactKind = "transcript"
	// ArtifactAudio is generated speech.
	ArtifactAudio ArtifactKind = "audio"
	// ArtifactPDF is a compiled summary.
	ArtifactPDF ArtifactKind = "pdf"
	// ArtifactLatex is LaTeX summary source.
	ArtifactLatex ArtifactKind = "latex"
)

// String returns the string representation of the artifact kind.
func (k ArtifactKind) String() string {
	return string(k)
}

// ParseArtifactKind parses a string into an ArtifactKind.
func ParseArtifactKind(s string) (ArtifactKind, error) {
	switch strings.ToLower(s) {
	case "media":
		return ArtifactMedia, nil
	case "transcript":
		return ArtifactTranscript, nil
	case "audio":
		return ArtifactAudio, nil
	case "pdf":
		return ArtifactPDF, nil
	case "latex":
		return ArtifactLatex, nil
	default:
		return "", fmt.Errorf("unknown artifact kind: %s", s)
	}
}

// KindForPath guesses the artifact kind from a file extension.
func KindForPath(path string) ArtifactKind {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".pdf"):
		return ArtifactPDF
	case strings.HasSuffix(lower, ".tex"):
		return ArtifactLatex
	case strings.HasSuffix(lower, ".txt"):
		return ArtifactTranscript
	case strings.HasSuffix(lower, ".mp3"), strings.HasSuffix(lower, ".wav"):
		return ArtifactAudio
	default:
		return ArtifactMedia
	}
}

// ArtifactRecord is a stored reference to a server-side file.
type ArtifactRecord struct {
	// ID is a unique identifier for this record.
	ID string `json:"id"`
	// SessionID is the session that produced the artifact.
	SessionID string `json:"session_id"`
	// Kind is the artifact kind.
	Kind ArtifactKind `json:"kind"`
	// Path is the server path used for downloads.
	Path string `json:"path"`
	// Filename is the name the artifact is saved under.
	Filename string `json:"filename"`
	// URL is an optional direct URL (audio only).
	URL string `json:"url,omitempty"`
	// CreatedAt is the Unix timestamp when recorded.
	CreatedAt int64 `json:"created_at"`
}

// NewArtifactRecord creates a record for a with a fresh ID.
func NewArtifactRecord(sessionID string, kind ArtifactKind, a model.Artifact) ArtifactRecord {
	return ArtifactRecord{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Kind:      kind,
		Path:      a.Path,
		Filename:  a.Filename,
		URL:       a.URL,
		CreatedAt: time.Now().Unix(),
	}
}

// Artifact returns the record as an artifact reference.
func (r ArtifactRecord) Artifact() model.Artifact {
	return model.Artifact{Path: r.Path, Filename: r.Filename, URL: r.URL}
}

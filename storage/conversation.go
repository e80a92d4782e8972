// Package storage provides chat transcript and artifact history storage.
//
// Information Hiding:
// - Storage backend implementation details hidden behind interfaces
// - Allows swapping between memory and SQLite without API changes
// - Each storage implementation encapsulates its own data structures and protocols

package storage

import (
	"context"

	"github.com/richinex/studio/model"
)

// ConversationStorage defines the interface for storing chat transcripts.
// Implementations can use different backends (memory, database).
type ConversationStorage interface {
	// Save replaces the transcript of a session.
	Save(ctx context.Context, sessionID string, transcript []model.ChatEntry) error

	// Load loads the transcript of a session.
	// Returns empty slice (not nil) if session doesn't exist.
	// Returns error only for storage failures (I/O errors, etc.), not missing sessions.
	Load(ctx context.Context, sessionID string) ([]model.ChatEntry, error)

	// Delete deletes a session with its transcript and artifacts.
	Delete(ctx context.Context, sessionID string) error

	// ListSessions lists all session IDs, most recently updated first.
	ListSessions(ctx context.Context) ([]string, error)

	// Exists checks if a session exists.
	Exists(ctx context.Context, sessionID string) (bool, error)
}

// ArtifactStorage records the files produced during a session so they can
// be listed and downloaded again later.
type ArtifactStorage interface {
	// RecordArtifact stores an artifact record.
	RecordArtifact(ctx context.Context, rec ArtifactRecord) error

	// ListArtifacts returns a session's artifacts, newest first. A limit of
	// zero or less means no limit.
	ListArtifacts(ctx context.Context, sessionID string, limit int) ([]ArtifactRecord, error)

	// DeleteSessionArtifacts removes all artifact records of a session.
	DeleteSessionArtifacts(ctx context.Context, sessionID string) error
}

// Storage combines both interfaces.
type Storage interface {
	ConversationStorage
	ArtifactStorage
}

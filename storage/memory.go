// Package storage provides in-memory transcript storage.
//
// Information Hiding:
// - Map storage structure hidden from users
// - Thread-safe access via RWMutex hidden behind interface
// - Suitable for testing and ephemeral sessions

package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/richinex/studio/model"
)

// InMemoryStorage implements Storage using in-memory maps.
// Data is lost when process terminates.
type InMemoryStorage struct {
	mu        sync.RWMutex
	sessions  map[string][]model.ChatEntry
	updated   map[string]time.Time
	artifacts map[string][]ArtifactRecord
}

// NewInMemoryStorage creates a new in-memory storage.
func NewInMemoryStorage() *InMemoryStorage {
	return &InMemoryStorage{
		sessions:  make(map[string][]model.ChatEntry),
		updated:   make(map[string]time.Time),
		artifacts: make(map[string][]ArtifactRecord),
	}
}

// Save replaces the transcript of a session.
func (s *InMemoryStorage) Save(ctx context.Context, sessionID string, transcript []model.ChatEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Make a copy to avoid external mutations
	copied := make([]model.ChatEntry, len(transcript))
	copy(copied, transcript)
	s.sessions[sessionID] = copied
	s.updated[sessionID] = time.Now()

	return nil
}

// Load loads the transcript of a session.
// Returns empty slice if session doesn't exist.
func (s *InMemoryStorage) Load(ctx context.Context, sessionID string) ([]model.ChatEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	transcript, ok := s.sessions[sessionID]
	if !ok {
		return []model.ChatEntry{}, nil
	}

	// Return a copy to avoid external mutations
	copied := make([]model.ChatEntry, len(transcript))
	copy(copied, transcript)
	return copied, nil
}

// Delete deletes a session with its transcript and artifacts.
func (s *InMemoryStorage) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionID)
	delete(s.updated, sessionID)
	delete(s.artifacts, sessionID)
	return nil
}

// ListSessions lists all session IDs, most recently updated first.
func (s *InMemoryStorage) ListSessions(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]string, 0, len(s.sessions))
	for sessionID := range s.sessions {
		sessions = append(sessions, sessionID)
	}
	sort.Slice(sessions, func(i, j int) bool {
		return s.updated[sessions[i]].After(s.updated[sessions[j]])
	})
	return sessions, nil
}

// Exists checks if a session exists.
func (s *InMemoryStorage) Exists(ctx context.Context, sessionID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.sessions[sessionID]
	return ok, nil
}

// RecordArtifact stores an artifact record.
func (s *InMemoryStorage) RecordArtifact(ctx context.Context, rec ArtifactRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.artifacts[rec.SessionID] = append(s.artifacts[rec.SessionID], rec)
	return nil
}

// ListArtifacts returns a session's artifacts, newest first.
func (s *InMemoryStorage) ListArtifacts(ctx context.Context, sessionID string, limit int) ([]ArtifactRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recs := s.artifacts[sessionID]
	out := make([]ArtifactRecord, 0, len(recs))
	for i := len(recs) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, recs[i])
	}
	return out, nil
}

// DeleteSessionArtifacts removes all artifact records of a session.
func (s *InMemoryStorage) DeleteSessionArtifacts(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.artifacts, sessionID)
	return nil
}

// Verify InMemoryStorage implements Storage
var _ Storage = (*InMemoryStorage)(nil)

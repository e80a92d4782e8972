package storage

import (
	"context"
	"testing"
	"time"

	"github.com/richinex/studio/model"
)

func TestInMemoryStorageSaveAndLoad(t *testing.T) {
	storage := NewInMemoryStorage()
	ctx := context.Background()

	transcript := []model.ChatEntry{
		model.UserEntry("Hello"),
		model.AssistantEntry("Hi there", nil),
	}

	if err := storage.Save(ctx, "test-session", transcript); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := storage.Load(ctx, "test-session")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(loaded) != 2 {
		t.Errorf("expected 2 messages, got %d", len(loaded))
	}
	if loaded[0].Content != "Hello" {
		t.Errorf("expected 'Hello', got '%s'", loaded[0].Content)
	}
	if loaded[1].Content != "Hi there" {
		t.Errorf("expected 'Hi there', got '%s'", loaded[1].Content)
	}
}

func TestInMemoryStorageCopiesTranscript(t *testing.T) {
	storage := NewInMemoryStorage()
	ctx := context.Background()

	transcript := []model.ChatEntry{model.UserEntry("original")}
	if err := storage.Save(ctx, "s", transcript); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	transcript[0].Content = "mutated"

	loaded, _ := storage.Load(ctx, "s")
	if loaded[0].Content != "original" {
		t.Errorf("expected stored copy to be unaffected, got '%s'", loaded[0].Content)
	}
}

func TestInMemoryStorageLoadNonexistentSession(t *testing.T) {
	storage := NewInMemoryStorage()

	loaded, err := storage.Load(context.Background(), "nonexistent")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded == nil || len(loaded) != 0 {
		t.Errorf("expected empty slice, got %v", loaded)
	}
}

func TestInMemoryStorageDeleteSession(t *testing.T) {
	storage := NewInMemoryStorage()
	ctx := context.Background()

	if err := storage.Save(ctx, "test-session", []model.ChatEntry{model.UserEntry("Test")}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	_ = storage.RecordArtifact(ctx, NewArtifactRecord("test-session", ArtifactMedia, model.NewArtifact("uploads/a.mp4", "")))

	if err := storage.Delete(ctx, "test-session"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	exists, _ := storage.Exists(ctx, "test-session")
	if exists {
		t.Error("expected session to not exist after deletion")
	}
	arts, _ := storage.ListArtifacts(ctx, "test-session", 0)
	if len(arts) != 0 {
		t.Errorf("expected artifacts deleted, got %d", len(arts))
	}
}

func TestInMemoryStorageListSessionsNewestFirst(t *testing.T) {
	storage := NewInMemoryStorage()
	ctx := context.Background()

	_ = storage.Save(ctx, "old", nil)
	time.Sleep(2 * time.Millisecond)
	_ = storage.Save(ctx, "new", nil)

	sessions, err := storage.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(sessions) != 2 || sessions[0] != "new" {
		t.Errorf("expected [new old], got %v", sessions)
	}
}

func TestInMemoryStorageArtifactsNewestFirst(t *testing.T) {
	storage := NewInMemoryStorage()
	ctx := context.Background()

	for _, p := range []string{"a.txt", "b.txt", "c.txt"} {
		rec := NewArtifactRecord("s", ArtifactTranscript, model.NewArtifact(p, ""))
		if err := storage.RecordArtifact(ctx, rec); err != nil {
			t.Fatalf("RecordArtifact failed: %v", err)
		}
	}

	got, _ := storage.ListArtifacts(ctx, "s", 2)
	if len(got) != 2 || got[0].Path != "c.txt" || got[1].Path != "b.txt" {
		t.Errorf("expected [c.txt b.txt], got %+v", got)
	}
}

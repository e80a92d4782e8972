package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/richinex/studio/model"
)

func TestSqliteStorageSaveAndLoad(t *testing.T) {
	storage, err := NewSqliteInMemory()
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	defer storage.Close()

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
		t.Fatalf("expected 2 messages, got %d", len(loaded))
	}
	if loaded[0].Content != "Hello" || loaded[0].Role != model.RoleUser {
		t.Errorf("expected user 'Hello', got %s '%s'", loaded[0].Role, loaded[0].Content)
	}
	if loaded[1].Content != "Hi there" || loaded[1].Role != model.RoleAssistant {
		t.Errorf("expected assistant 'Hi there', got %s '%s'", loaded[1].Role, loaded[1].Content)
	}
	if loaded[1].ToolResults != nil {
		t.Errorf("expected no tool results, got %v", loaded[1].ToolResults)
	}
}

func TestSqliteStorageToolResultsRoundTrip(t *testing.T) {
	storage, err := NewSqliteInMemory()
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	defer storage.Close()

	ctx := context.Background()
	results := []model.ToolResult{{
		Tool:   "generate_summary_pdf",
		Result: model.ToolOutcome{Status: "success", Path: "pdfs/talk.pdf", Filename: "talk.pdf"},
	}}
	if err := storage.Save(ctx, "s", []model.ChatEntry{model.AssistantEntry("Done", results)}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := storage.Load(ctx, "s")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded[0].ToolResults) != 1 {
		t.Fatalf("expected 1 tool result, got %d", len(loaded[0].ToolResults))
	}
	got := loaded[0].ToolResults[0]
	if got.Tool != "generate_summary_pdf" || got.Result.Filename != "talk.pdf" || !got.Succeeded() {
		t.Errorf("unexpected tool result %+v", got)
	}
}

func TestSqliteStorageLoadNonexistentSession(t *testing.T) {
	storage, err := NewSqliteInMemory()
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	defer storage.Close()

	loaded, err := storage.Load(context.Background(), "nonexistent")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded == nil || len(loaded) != 0 {
		t.Errorf("expected empty slice, got %v", loaded)
	}
}

func TestSqliteStorageDeleteSessionCascades(t *testing.T) {
	storage, err := NewSqliteInMemory()
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	defer storage.Close()

	ctx := context.Background()

	if err := storage.Save(ctx, "test-session", []model.ChatEntry{model.UserEntry("Test")}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	rec := NewArtifactRecord("test-session", ArtifactPDF, model.NewArtifact("pdfs/a.pdf", ""))
	if err := storage.RecordArtifact(ctx, rec); err != nil {
		t.Fatalf("RecordArtifact failed: %v", err)
	}

	exists, err := storage.Exists(ctx, "test-session")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !exists {
		t.Error("expected session to exist")
	}

	if err := storage.Delete(ctx, "test-session"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	exists, err = storage.Exists(ctx, "test-session")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if exists {
		t.Error("expected session to not exist after deletion")
	}

	loaded, _ := storage.Load(ctx, "test-session")
	if len(loaded) != 0 {
		t.Errorf("expected messages removed with session, got %d", len(loaded))
	}
	arts, _ := storage.ListArtifacts(ctx, "test-session", 0)
	if len(arts) != 0 {
		t.Errorf("expected artifacts removed with session, got %d", len(arts))
	}
}

func TestSqliteStorageListSessions(t *testing.T) {
	storage, err := NewSqliteInMemory()
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	defer storage.Close()

	ctx := context.Background()
	msg := []model.ChatEntry{model.UserEntry("Test")}

	if err := storage.Save(ctx, "session-1", msg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := storage.Save(ctx, "session-2", msg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	sessions, err := storage.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(sessions) != 2 {
		t.Errorf("expected 2 sessions, got %d", len(sessions))
	}
}

func TestSqliteStorageOverwriteSession(t *testing.T) {
	storage, err := NewSqliteInMemory()
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	defer storage.Close()

	ctx := context.Background()

	first := []model.ChatEntry{model.UserEntry("one"), model.AssistantEntry("two", nil)}
	if err := storage.Save(ctx, "s", first); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	second := append(first, model.UserEntry("three"), model.AssistantEntry("four", nil))
	if err := storage.Save(ctx, "s", second); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := storage.Load(ctx, "s")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(loaded))
	}
	if loaded[3].Content != "four" {
		t.Errorf("expected 'four', got '%s'", loaded[3].Content)
	}
}

func TestSqliteStorageArtifacts(t *testing.T) {
	storage, err := NewSqliteInMemory()
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	defer storage.Close()

	ctx := context.Background()

	audio := model.NewArtifact("audio/talk.mp3", "talk.mp3")
	audio.URL = "/api/audio/talk.mp3"
	recs := []ArtifactRecord{
		NewArtifactRecord("s", ArtifactTranscript, model.NewArtifact("transcripts/talk.txt", "")),
		NewArtifactRecord("s", ArtifactAudio, audio),
		NewArtifactRecord("other", ArtifactPDF, model.NewArtifact("pdfs/x.pdf", "")),
	}
	for i := range recs {
		recs[i].CreatedAt = int64(100 + i)
		if err := storage.RecordArtifact(ctx, recs[i]); err != nil {
			t.Fatalf("RecordArtifact failed: %v", err)
		}
	}

	got, err := storage.ListArtifacts(ctx, "s", 0)
	if err != nil {
		t.Fatalf("ListArtifacts failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 artifacts, got %d", len(got))
	}
	if got[0].Kind != ArtifactAudio || got[0].URL != "/api/audio/talk.mp3" {
		t.Errorf("expected newest audio record first, got %+v", got[0])
	}
	if got[1].Artifact().Filename != "talk.txt" {
		t.Errorf("expected filename derived from path, got %q", got[1].Filename)
	}

	limited, err := storage.ListArtifacts(ctx, "s", 1)
	if err != nil {
		t.Fatalf("ListArtifacts failed: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("expected 1 artifact with limit, got %d", len(limited))
	}

	if err := storage.DeleteSessionArtifacts(ctx, "s"); err != nil {
		t.Fatalf("DeleteSessionArtifacts failed: %v", err)
	}
	got, _ = storage.ListArtifacts(ctx, "s", 0)
	if len(got) != 0 {
		t.Errorf("expected no artifacts, got %d", len(got))
	}
	other, _ := storage.ListArtifacts(ctx, "other", 0)
	if len(other) != 1 {
		t.Errorf("expected other session untouched, got %d", len(other))
	}
}

func TestOpenSqliteCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "studio.db")
	storage, err := OpenSqlite(path)
	if err != nil {
		t.Fatalf("OpenSqlite failed: %v", err)
	}
	defer storage.Close()

	ctx := context.Background()
	if err := storage.Save(ctx, "s", []model.ChatEntry{model.UserEntry("persisted")}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	storage.Close()

	reopened, err := OpenSqlite(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()
	loaded, err := reopened.Load(ctx, "s")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded) != 1 || loaded[0].Content != "persisted" {
		t.Errorf("expected persisted transcript, got %v", loaded)
	}
}

func TestParseArtifactKind(t *testing.T) {
	for _, k := range []ArtifactKind{ArtifactMedia, ArtifactTranscript, ArtifactAudio, ArtifactPDF, ArtifactLatex} {
		got, err := ParseArtifactKind(k.String())
		if err != nil || got != k {
			t.Errorf("expected %s, got %s (%v)", k, got, err)
		}
	}
	if _, err := ParseArtifactKind("video"); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestKindForPath(t *testing.T) {
	cases := map[string]ArtifactKind{
		"pdfs/a.pdf":          ArtifactPDF,
		"latex/a.tex":         ArtifactLatex,
		"transcripts/a.txt":   ArtifactTranscript,
		"audio/a.MP3":         ArtifactAudio,
		"downloads/video.mp4": ArtifactMedia,
	}
	for p, want := range cases {
		if got := KindForPath(p); got != want {
			t.Errorf("%s: expected %s, got %s", p, want, got)
		}
	}
}

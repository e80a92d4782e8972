package fakeapi

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func post(t *testing.T, srv *httptest.Server, route, body string) map[string]any {
	t.Helper()
	resp, err := http.Post(srv.URL+"/api"+route, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s failed: %v", route, err)
	}
	defer resp.Body.Close()
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode %s failed: %v", route, err)
	}
	return out
}

func TestTranscribeWritesTranscripts(t *testing.T) {
	s := New()
	s.Put("uploads/talk.mp3", []byte("audio"))
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	out := post(t, srv, "/transcribe", `{"path": "uploads/talk.mp3"}`)
	if out["success"] != true {
		t.Fatalf("expected success, got %v", out)
	}
	if out["type"] != "media" {
		t.Errorf("expected media type, got %v", out["type"])
	}
	if _, ok := s.File("transcripts/talk_timestamped.txt"); !ok {
		t.Error("expected timestamped transcript to be stored")
	}
	if s.Hits("/transcribe") != 1 {
		t.Errorf("expected 1 hit, got %d", s.Hits("/transcribe"))
	}
}

func TestDocumentTranscriptionHasNoTimestamps(t *testing.T) {
	s := New()
	s.Put("uploads/notes.pdf", []byte("%PDF"))
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	out := post(t, srv, "/transcribe", `{"path": "uploads/notes.pdf"}`)
	if out["type"] != "document" {
		t.Errorf("expected document type, got %v", out["type"])
	}
	if _, ok := out["timestamped_path"]; ok {
		t.Error("expected no timestamped path for documents")
	}
}

func TestFailAndRestore(t *testing.T) {
	s := New()
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	s.Fail("/chat", "model offline")
	out := post(t, srv, "/chat", `{"messages": [{"role": "user", "content": "hi"}]}`)
	if out["success"] != false || out["error"] != "model offline" {
		t.Fatalf("expected injected failure, got %v", out)
	}

	s.Restore("/chat")
	out = post(t, srv, "/chat", `{"messages": [{"role": "user", "content": "hi"}]}`)
	if out["message"] != "You said: hi" {
		t.Errorf("expected echo, got %v", out["message"])
	}
	if len(s.LastChat()) != 1 {
		t.Errorf("expected 1 message recorded, got %d", len(s.LastChat()))
	}
}

func TestBreakReturnsNonJSON(t *testing.T) {
	s := New()
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	s.Break("/health")
	resp, err := http.Get(srv.URL + "/api/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", resp.StatusCode)
	}
}

func TestStreamLatexEmitsChunks(t *testing.T) {
	s := New(WithLatexChunks("a", "b", "c"))
	s.Put("transcripts/talk.txt", []byte("hello"))
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/pdf/stream_latex", "application/json",
		strings.NewReader(`{"transcript_path": "transcripts/talk.txt"}`))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if string(body) != "abc" {
		t.Errorf("expected 'abc', got %q", body)
	}
}

func TestFailCompileKeepsSource(t *testing.T) {
	s := New()
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	s.FailCompile("pdflatex failed")
	out := post(t, srv, "/pdf/generate", `{"transcript_path": "transcripts/talk.txt", "summary_mode": "concise", "latex_code": "x"}`)
	if out["success"] != false {
		t.Fatalf("expected failure, got %v", out)
	}
	if out["tex_path"] != "latex/talk_concise.tex" {
		t.Errorf("expected tex path, got %v", out["tex_path"])
	}
	if _, ok := s.File("latex/talk_concise.tex"); !ok {
		t.Error("expected source to be stored")
	}
}

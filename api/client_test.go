package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/richinex/studio/internal/fakeapi"
	"github.com/richinex/studio/model"
)

func newTestClient(t *testing.T, opts ...fakeapi.Option) (*Client, *fakeapi.Server) {
	t.Helper()
	fake := fakeapi.New(opts...)
	srv := httptest.NewServer(fake.Handler())
	t.Cleanup(srv.Close)
	return New(srv.URL + "/api"), fake
}

func TestDecodeEnvelope(t *testing.T) {
	cases := []struct {
		name string
		body string
		kind Kind
		ok   bool
		msg  string
	}{
		{"success", `{"success": true}`, 0, true, ""},
		{"business", `{"success": false, "error": "boom"}`, KindBusiness, false, "boom"},
		{"missing flag", `{"path": "x"}`, KindBusiness, false, ""},
		{"not json", `<html>bad gateway</html>`, KindTransport, false, ConnectivityMessage},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := decodeEnvelope(200, []byte(c.body), nil)
			if c.ok {
				if err != nil {
					t.Fatalf("expected success, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if KindOf(err) != c.kind {
				t.Errorf("expected kind %s, got %s", c.kind, KindOf(err))
			}
			var e *Error
			if !errors.As(err, &e) || e.Message != c.msg {
				t.Errorf("expected message %q, got %v", c.msg, err)
			}
		})
	}
}

func TestMessageFallback(t *testing.T) {
	if got := Message(business(200, ""), "Quiz generation failed"); got != "Quiz generation failed" {
		t.Errorf("expected fallback, got %q", got)
	}
	if got := Message(business(200, "bad model"), "fallback"); got != "bad model" {
		t.Errorf("expected verbatim message, got %q", got)
	}
	if got := Message(transport(0, errors.New("dial tcp")), "fallback"); got != ConnectivityMessage {
		t.Errorf("expected connectivity message, got %q", got)
	}
	if got := Message(Validation("Please select a file"), ""); got != "Please select a file" {
		t.Errorf("expected validation message, got %q", got)
	}
	if got := Message(errors.New("disk full"), "Download failed"); got != "Download failed" {
		t.Errorf("expected local errors to use the fallback, got %q", got)
	}
}

func TestHealth(t *testing.T) {
	c, fake := newTestClient(t)
	out, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("Health failed: %v", err)
	}
	if out["status"] != "healthy" {
		t.Errorf("expected healthy, got %v", out)
	}
	if _, ok := out["success"]; ok {
		t.Error("expected success flag stripped")
	}
	if fake.Hits("/health") != 1 {
		t.Errorf("expected 1 hit, got %d", fake.Hits("/health"))
	}
}

func TestBusinessFailureVerbatim(t *testing.T) {
	c, fake := newTestClient(t)
	fake.Fail("/media/youtube", "Video unavailable")

	_, err := c.DownloadYouTube(context.Background(), "https://youtube.com/watch?v=x")
	if KindOf(err) != KindBusiness {
		t.Fatalf("expected business error, got %v", err)
	}
	if Message(err, "") != "Video unavailable" {
		t.Errorf("expected verbatim error, got %q", Message(err, ""))
	}
}

func TestTransportFailureOnBadGateway(t *testing.T) {
	c, fake := newTestClient(t)
	fake.Break("/transcripts/list")

	_, err := c.ListTranscripts(context.Background())
	if KindOf(err) != KindTransport {
		t.Fatalf("expected transport error, got %v", err)
	}
	var e *Error
	if !errors.As(err, &e) || e.Status != http.StatusBadGateway {
		t.Errorf("expected status 502 recorded, got %+v", e)
	}
}

func TestTransportFailureUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url+"/api").ListMedia(context.Background())
	if KindOf(err) != KindTransport {
		t.Fatalf("expected transport error, got %v", err)
	}
	if Message(err, "") != ConnectivityMessage {
		t.Errorf("expected connectivity message, got %q", Message(err, ""))
	}
}

func TestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c := New(srv.URL, WithTimeout(50*time.Millisecond))
	_, err := c.Health(context.Background())
	if KindOf(err) != KindTransport {
		t.Fatalf("expected transport error, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded cause, got %v", err)
	}
}

func TestUploadTranscribeFlow(t *testing.T) {
	c, fake := newTestClient(t)
	ctx := context.Background()

	payload := bytes.Repeat([]byte("x"), 10000)
	var mu sync.Mutex
	var progress []int
	p, err := c.UploadMedia(ctx, "lecture.mp3", bytes.NewReader(payload), int64(len(payload)), func(pct int) {
		mu.Lock()
		defer mu.Unlock()
		progress = append(progress, pct)
	})
	if err != nil {
		t.Fatalf("UploadMedia failed: %v", err)
	}
	if p != "uploads/lecture.mp3" {
		t.Errorf("expected uploads/lecture.mp3, got %q", p)
	}
	if stored, _ := fake.File(p); len(stored) != len(payload) {
		t.Errorf("expected %d bytes stored, got %d", len(payload), len(stored))
	}
	mu.Lock()
	defer mu.Unlock()
	if len(progress) == 0 || progress[len(progress)-1] != 100 {
		t.Errorf("expected progress ending at 100, got %v", progress)
	}
	for i := 1; i < len(progress); i++ {
		if progress[i] < progress[i-1] {
			t.Errorf("progress went backwards: %v", progress)
		}
	}

	media, err := c.ListMedia(ctx)
	if err != nil {
		t.Fatalf("ListMedia failed: %v", err)
	}
	if len(media) != 1 || media[0].Name != "lecture.mp3" {
		t.Errorf("unexpected media listing %+v", media)
	}

	tr, err := c.Transcribe(ctx, p)
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
	if !tr.IsMedia() || tr.TimestampedPath == "" {
		t.Errorf("expected media transcription with timestamps, got %+v", tr)
	}
	if len(tr.Artifacts()) != 2 {
		t.Errorf("expected 2 transcript artifacts, got %d", len(tr.Artifacts()))
	}

	content, err := c.TranscriptContent(ctx, tr.TranscriptPath)
	if err != nil {
		t.Fatalf("TranscriptContent failed: %v", err)
	}
	if content != tr.Transcript {
		t.Errorf("expected %q, got %q", tr.Transcript, content)
	}
}

func TestTranscribeDocument(t *testing.T) {
	c, fake := newTestClient(t)
	fake.Put("uploads/slides.pdf", []byte("%PDF"))

	tr, err := c.Transcribe(context.Background(), "uploads/slides.pdf")
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
	if tr.IsMedia() {
		t.Error("expected document transcription")
	}
	if tr.Label() != "Extracted Text / OCR Result" {
		t.Errorf("unexpected label %q", tr.Label())
	}
}

func TestDownload(t *testing.T) {
	c, fake := newTestClient(t)
	fake.Put("transcripts/a.txt", []byte("hello"))

	var buf bytes.Buffer
	n, err := c.Download(context.Background(), "transcripts/a.txt", &buf)
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	if n != 5 || buf.String() != "hello" {
		t.Errorf("expected 5 bytes 'hello', got %d %q", n, buf.String())
	}

	_, err = c.Download(context.Background(), "missing.txt", io.Discard)
	if KindOf(err) != KindBusiness || Message(err, "") != "File not found" {
		t.Errorf("expected business 'File not found', got %v", err)
	}
}

func TestGenerateTTS(t *testing.T) {
	c, fake := newTestClient(t)
	fake.Put("transcripts/talk.txt", []byte("hi"))

	res, err := c.GenerateTTS(context.Background(), "transcripts/talk.txt", TTSSummary)
	if err != nil {
		t.Fatalf("GenerateTTS failed: %v", err)
	}
	if res.Filename != "talk_summary.mp3" {
		t.Errorf("expected talk_summary.mp3, got %q", res.Filename)
	}
	if a := res.Artifact(); a.Path != "audio/talk_summary.mp3" || a.URL == "" {
		t.Errorf("unexpected artifact %+v", a)
	}
}

func TestStreamLatexAndGeneratePDF(t *testing.T) {
	c, fake := newTestClient(t, fakeapi.WithLatexChunks("\\section{A}", "é", "\\end"))
	fake.Put("transcripts/talk.txt", []byte("hi"))
	ctx := context.Background()
	req := LatexRequest{TranscriptPath: "transcripts/talk.txt", ModelName: "m", SummaryMode: SummaryDetailed, Provider: "Ollama"}

	s, err := c.StreamLatex(ctx, req)
	if err != nil {
		t.Fatalf("StreamLatex failed: %v", err)
	}
	var sb strings.Builder
	for {
		chunk, err := s.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		sb.WriteString(chunk)
	}
	s.Close()
	if sb.String() != "\\section{A}é\\end" {
		t.Errorf("unexpected draft %q", sb.String())
	}

	res, err := c.GeneratePDF(ctx, PDFRequest{LatexRequest: req, LatexCode: sb.String()})
	if err != nil {
		t.Fatalf("GeneratePDF failed: %v", err)
	}
	if res.PDFFilename != "talk_detailed.pdf" || res.TexFilename != "talk_detailed.tex" {
		t.Errorf("unexpected result %+v", res)
	}
	if tex, _ := fake.File(res.TexPath); string(tex) != sb.String() {
		t.Errorf("expected server to receive the draft, got %q", tex)
	}
}

func TestGeneratePDFPartial(t *testing.T) {
	c, fake := newTestClient(t)
	fake.FailCompile("LaTeX compilation failed")

	res, err := c.GeneratePDF(context.Background(), PDFRequest{
		LatexRequest: LatexRequest{TranscriptPath: "transcripts/talk.txt", SummaryMode: SummaryConcise},
		LatexCode:    "\\broken",
	})
	if KindOf(err) != KindBusiness {
		t.Fatalf("expected business error, got %v", err)
	}
	if res.TexPath != "latex/talk_concise.tex" {
		t.Errorf("expected tex path kept on failure, got %+v", res)
	}
	if !res.PDF().IsZero() {
		t.Errorf("expected no pdf, got %+v", res.PDF())
	}
}

func TestStreamLatexFailsBeforeBody(t *testing.T) {
	c, _ := newTestClient(t)
	_, err := c.StreamLatex(context.Background(), LatexRequest{TranscriptPath: "transcripts/missing.txt"})
	if KindOf(err) != KindBusiness || Message(err, "") != "Transcript not found" {
		t.Errorf("expected business 'Transcript not found', got %v", err)
	}
}

func TestGenerateQuiz(t *testing.T) {
	c, fake := newTestClient(t)
	fake.Put("latex/talk.tex", []byte("\\doc"))

	quiz, err := c.GenerateQuiz(context.Background(), "latex/talk.tex", "gpt-oss:latest", 4)
	if err != nil {
		t.Fatalf("GenerateQuiz failed: %v", err)
	}
	if quiz.Total() != 4 || len(quiz.Questions) != 4 {
		t.Errorf("expected 4 questions, got %d/%d", quiz.Total(), len(quiz.Questions))
	}
	if quiz.Questions[0].Options["A"] == "" {
		t.Errorf("expected options decoded, got %+v", quiz.Questions[0])
	}
}

func TestDecodeQuizFromText(t *testing.T) {
	text := "Here you go:\n```json\n" +
		`{"questions": [{"id": 1, "question": "Q", "options": {"A": "a"}, "correct_answer": "A"}]}` +
		"\n```"
	raw, err := json.Marshal(text)
	if err != nil {
		t.Fatal(err)
	}
	quiz, err := decodeQuiz(raw)
	if err != nil {
		t.Fatalf("decodeQuiz failed: %v", err)
	}
	if len(quiz.Questions) != 1 || quiz.DisplayTitle() != "Interactive Quiz" {
		t.Errorf("unexpected quiz %+v", quiz)
	}
	if _, err := decodeQuiz(nil); err == nil {
		t.Error("expected error for missing quiz_data")
	}
}

func TestChatSendsWholeTranscript(t *testing.T) {
	c, fake := newTestClient(t)
	entries := []model.ChatEntry{
		model.AssistantEntry("Hello!", nil),
		model.UserEntry("get https://youtube.com/watch?v=abc"),
	}
	reply, err := c.Chat(context.Background(), ChatRequest{
		Messages:  ChatMessages(entries),
		ModelName: "qwen3:30b-instruct",
		Provider:  "Ollama",
	})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if len(fake.LastChat()) != 2 {
		t.Errorf("expected 2 messages sent, got %d", len(fake.LastChat()))
	}
	if len(reply.ToolResults) != 1 || !reply.ToolResults[0].Succeeded() {
		t.Fatalf("expected one successful tool result, got %+v", reply.ToolResults)
	}
	if a, ok := reply.ToolResults[0].Artifact(); !ok || a.Filename != "video.mp4" {
		t.Errorf("unexpected artifact %+v", a)
	}
}

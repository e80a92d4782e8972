// Package fakeapi provides an in-memory stand-in for the studio backend.
//
// It serves the same routes under /api with canned but stateful behavior:
// uploads become listed media, transcription writes transcript files, the
// LaTeX stream emits configurable chunks and compilation can be forced to
// fail while keeping the .tex source. Every route counts its hits so tests
// can assert that validation failures never reach the network.
package fakeapi

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/richinex/studio/model"
)

// Directories of the in-memory file tree.
const (
	UploadDir     = "uploads"
	DownloadDir   = "downloads"
	TranscriptDir = "transcripts"
	LatexDir      = "latex"
	PDFDir        = "pdfs"
	AudioDir      = "audio"
)

// ChatFunc produces the assistant reply for a transcript.
type ChatFunc func(messages []Message) (string, []model.ToolResult)

// Message is a chat message as received on the wire.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Option configures a Server.
type Option func(*Server)

// WithRequestLog enables chi's request logger.
func WithRequestLog() Option {
	return func(s *Server) {
		s.requestLog = true
	}
}

// WithLogger sets the logger for diagnostic messages.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithLatexChunks sets the chunks emitted by the LaTeX stream.
func WithLatexChunks(chunks ...string) Option {
	return func(s *Server) {
		s.latexChunks = chunks
	}
}

// WithChat sets the chat responder.
func WithChat(fn ChatFunc) Option {
	return func(s *Server) {
		s.chat = fn
	}
}

// Server is the fake backend.
type Server struct {
	mu          sync.Mutex
	files       map[string][]byte
	hits        map[string]int
	failures    map[string]string
	broken      map[string]bool
	latexChunks []string
	compileFail string
	chat        ChatFunc
	lastChat    []Message
	requestLog  bool
	logger      *slog.Logger
}

// New creates a fake backend with an empty file tree.
func New(opts ...Option) *Server {
	s := &Server{
		files:    make(map[string][]byte),
		hits:     make(map[string]int),
		failures: make(map[string]string),
		broken:   make(map[string]bool),
		latexChunks: []string{
			"\\documentclass{article}\n",
			"\\begin{document}\n",
			"Summary\n",
			"\\end{document}\n",
		},
		chat:   echoChat,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the router with every route mounted under /api.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if s.requestLog {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.count)
		r.Get("/health", s.health)
		r.Get("/media/list", s.listMedia)
		r.Post("/media/upload", s.upload)
		r.Post("/media/youtube", s.youtube)
		r.Post("/transcribe", s.transcribe)
		r.Get("/transcripts/list", s.listTranscripts)
		r.Post("/transcripts/content", s.transcriptContent)
		r.Post("/tts/generate", s.tts)
		r.Post("/pdf/stream_latex", s.streamLatex)
		r.Post("/pdf/generate", s.generatePDF)
		r.Get("/latex/list", s.listLatex)
		r.Post("/quiz/generate", s.quiz)
		r.Post("/chat", s.chatHandler)
		r.Post("/download", s.download)
	})
	return r
}

// count records the hit and applies injected failures.
func (s *Server) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := strings.TrimPrefix(r.URL.Path, "/api")
		s.mu.Lock()
		s.hits[route]++
		msg, failing := s.failures[route]
		broken := s.broken[route]
		s.mu.Unlock()

		if broken {
			http.Error(w, "upstream exploded", http.StatusBadGateway)
			return
		}
		if failing {
			Error(w, http.StatusOK, msg)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// JSON writes a JSON response.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"success": false, "error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// OK writes a success envelope merged with payload.
func OK(w http.ResponseWriter, payload map[string]any) {
	body := map[string]any{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	JSON(w, http.StatusOK, body)
}

// Error writes a failure envelope.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]any{"success": false, "error": message})
}

// Hits returns how many requests reached route (for example "/transcribe").
func (s *Server) Hits(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[route]
}

// TotalHits returns the number of requests served.
func (s *Server) TotalHits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.hits {
		n += c
	}
	return n
}

// Fail makes route answer success=false with message until Restore.
func (s *Server) Fail(route, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = message
}

// Break makes route answer a non-JSON 502 until Restore.
func (s *Server) Break(route string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.broken[route] = true
}

// Restore clears injected failures on route.
func (s *Server) Restore(route string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, route)
	delete(s.broken, route)
}

// SetLatexChunks replaces the chunks emitted by the LaTeX stream.
func (s *Server) SetLatexChunks(chunks ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latexChunks = chunks
}

// FailCompile makes PDF compilation fail with message while still saving
// the .tex source. An empty message restores normal compilation.
func (s *Server) FailCompile(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.compileFail = message
}

// LastChat returns the messages received by the most recent chat call.
func (s *Server) LastChat() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.lastChat...)
}

// Put stores a file at p (for example "transcripts/talk.txt").
func (s *Server) Put(p string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[p] = data
}

// File returns the stored file at p.
func (s *Server) File(p string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[p]
	return data, ok
}

// list returns the files under dir, sorted by path. When ext is set only
// files with that extension are listed.
func (s *Server) list(dir, ext string) []model.FileInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.FileInfo
	for p, data := range s.files {
		if path.Dir(p) != dir {
			continue
		}
		if ext != "" && path.Ext(p) != ext {
			continue
		}
		out = append(out, model.FileInfo{Path: p, Name: path.Base(p), Size: int64(len(data))})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		Error(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

func stem(p string) string {
	base := path.Base(p)
	return strings.TrimSuffix(base, path.Ext(base))
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	OK(w, map[string]any{"status": "healthy"})
}

func (s *Server) listMedia(w http.ResponseWriter, r *http.Request) {
	files := append(s.list(UploadDir, ""), s.list(DownloadDir, "")...)
	if files == nil {
		files = []model.FileInfo{}
	}
	OK(w, map[string]any{"files": files})
}

func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		Error(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		Error(w, http.StatusBadRequest, "Failed to read upload")
		return
	}
	p := path.Join(UploadDir, path.Base(header.Filename))
	s.Put(p, data)
	s.logger.Debug("fake upload stored", "path", p, "bytes", len(data))
	OK(w, map[string]any{"path": p})
}

func (s *Server) youtube(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	if !decode(w, r, &req) {
		return
	}
	if !strings.Contains(req.URL, "youtube.com") && !strings.Contains(req.URL, "youtu.be") {
		Error(w, http.StatusOK, "Invalid YouTube URL")
		return
	}
	p := path.Join(DownloadDir, uuid.NewString()[:8]+".mp4")
	s.Put(p, []byte("video:"+req.URL))
	OK(w, map[string]any{"path": p})
}

func (s *Server) transcribe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path string `json:"path"`
	}
	if !decode(w, r, &req) {
		return
	}
	if _, ok := s.File(req.Path); !ok {
		Error(w, http.StatusOK, "File not found")
		return
	}
	name := stem(req.Path)
	plain := fmt.Sprintf("Transcript of %s.", name)
	resp := map[string]any{
		"transcript":      plain,
		"transcript_path": path.Join(TranscriptDir, name+".txt"),
	}
	switch strings.ToLower(path.Ext(req.Path)) {
	case ".pdf", ".png", ".jpg", ".jpeg", ".docx":
		resp["type"] = "document"
	default:
		stamped := "[00:00] " + plain
		resp["type"] = string(model.MediaTypeMedia)
		resp["timestamped"] = stamped
		resp["timestamped_path"] = path.Join(TranscriptDir, name+"_timestamped.txt")
		s.Put(resp["timestamped_path"].(string), []byte(stamped))
	}
	s.Put(resp["transcript_path"].(string), []byte(plain))
	OK(w, resp)
}

func (s *Server) listTranscripts(w http.ResponseWriter, r *http.Request) {
	files := s.list(TranscriptDir, "")
	if files == nil {
		files = []model.FileInfo{}
	}
	OK(w, map[string]any{"transcripts": files})
}

func (s *Server) transcriptContent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path string `json:"path"`
	}
	if !decode(w, r, &req) {
		return
	}
	data, ok := s.File(req.Path)
	if !ok {
		Error(w, http.StatusOK, "Transcript not found")
		return
	}
	OK(w, map[string]any{"content": string(data)})
}

func (s *Server) tts(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TranscriptPath string `json:"transcript_path"`
		Mode           string `json:"tts_mode"`
	}
	if !decode(w, r, &req) {
		return
	}
	if _, ok := s.File(req.TranscriptPath); !ok {
		Error(w, http.StatusOK, "Transcript not found")
		return
	}
	if req.Mode == "" {
		req.Mode = "transcript"
	}
	filename := fmt.Sprintf("%s_%s.mp3", stem(req.TranscriptPath), req.Mode)
	p := path.Join(AudioDir, filename)
	s.Put(p, []byte("ID3"))
	OK(w, map[string]any{
		"filename":   filename,
		"audio_url":  "/api/audio/" + filename,
		"audio_path": p,
	})
}

type latexRequest struct {
	TranscriptPath string `json:"transcript_path"`
	ModelName      string `json:"model_name"`
	SummaryMode    string `json:"summary_mode"`
	Provider       string `json:"provider"`
	LatexCode      string `json:"latex_code"`
}

func (s *Server) streamLatex(w http.ResponseWriter, r *http.Request) {
	var req latexRequest
	if !decode(w, r, &req) {
		return
	}
	if _, ok := s.File(req.TranscriptPath); !ok {
		Error(w, http.StatusNotFound, "Transcript not found")
		return
	}
	s.mu.Lock()
	chunks := append([]string(nil), s.latexChunks...)
	s.mu.Unlock()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	flusher, _ := w.(http.Flusher)
	for _, c := range chunks {
		if _, err := io.WriteString(w, c); err != nil {
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}

func (s *Server) generatePDF(w http.ResponseWriter, r *http.Request) {
	var req latexRequest
	if !decode(w, r, &req) {
		return
	}
	if req.LatexCode == "" {
		Error(w, http.StatusOK, "No LaTeX code provided")
		return
	}
	name := stem(req.TranscriptPath) + "_" + req.SummaryMode
	texFile := name + ".tex"
	texPath := path.Join(LatexDir, texFile)
	s.Put(texPath, []byte(req.LatexCode))

	s.mu.Lock()
	fail := s.compileFail
	s.mu.Unlock()
	if fail != "" {
		JSON(w, http.StatusOK, map[string]any{
			"success":      false,
			"error":        fail,
			"tex_path":     texPath,
			"tex_filename": texFile,
		})
		return
	}

	pdfFile := name + ".pdf"
	pdfPath := path.Join(PDFDir, pdfFile)
	s.Put(pdfPath, []byte("%PDF-1.5\n"))
	OK(w, map[string]any{
		"pdf_path":     pdfPath,
		"pdf_filename": pdfFile,
		"tex_path":     texPath,
		"tex_filename": texFile,
	})
}

func (s *Server) listLatex(w http.ResponseWriter, r *http.Request) {
	files := s.list(LatexDir, ".tex")
	if files == nil {
		files = []model.FileInfo{}
	}
	OK(w, map[string]any{"files": files})
}

func (s *Server) quiz(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LatexPath    string `json:"latex_path"`
		ModelName    string `json:"model_name"`
		NumQuestions int    `json:"num_questions"`
	}
	if !decode(w, r, &req) {
		return
	}
	if _, ok := s.File(req.LatexPath); !ok {
		Error(w, http.StatusOK, "LaTeX file not found")
		return
	}
	if req.NumQuestions <= 0 {
		req.NumQuestions = 10
	}
	difficulties := []string{"easy", "medium", "hard"}
	questions := make([]model.Question, req.NumQuestions)
	for i := range questions {
		questions[i] = model.Question{
			ID:            i + 1,
			Question:      fmt.Sprintf("What does section %d of %s cover?", i+1, stem(req.LatexPath)),
			Options:       map[string]string{"A": "The main idea", "B": "A detail", "C": "An aside", "D": "Nothing"},
			CorrectAnswer: "A",
			Difficulty:    difficulties[i%len(difficulties)],
			Explanation:   "The section introduces the main idea.",
		}
	}
	OK(w, map[string]any{
		"quiz_data": model.Quiz{
			Title:          "Quiz: " + stem(req.LatexPath),
			TotalQuestions: len(questions),
			Questions:      questions,
		},
	})
}

func (s *Server) chatHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Messages  []Message `json:"messages"`
		ModelName string    `json:"model_name"`
		Provider  string    `json:"provider"`
	}
	if !decode(w, r, &req) {
		return
	}
	if len(req.Messages) == 0 {
		Error(w, http.StatusOK, "No messages provided")
		return
	}
	s.mu.Lock()
	s.lastChat = req.Messages
	fn := s.chat
	s.mu.Unlock()

	reply, results := fn(req.Messages)
	payload := map[string]any{"message": reply}
	if len(results) > 0 {
		payload["tool_results"] = results
	}
	OK(w, payload)
}

func (s *Server) download(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path string `json:"path"`
	}
	if !decode(w, r, &req) {
		return
	}
	data, ok := s.File(req.Path)
	if !ok {
		Error(w, http.StatusNotFound, "File not found")
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", path.Base(req.Path)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// echoChat answers with the last user message and reports a YouTube
// download when the message contains a YouTube link.
func echoChat(messages []Message) (string, []model.ToolResult) {
	last := messages[len(messages)-1].Content
	for _, word := range strings.Fields(last) {
		if strings.Contains(word, "youtube.com") || strings.Contains(word, "youtu.be") {
			return "I downloaded the video for you.", []model.ToolResult{{
				Tool: "download_youtube",
				Result: model.ToolOutcome{
					Status:   "success",
					Path:     path.Join(DownloadDir, "video.mp4"),
					Filename: "video.mp4",
				},
			}}
		}
	}
	return "You said: " + last, nil
}

// Package model provides domain types shared across packages.
package model

import "path/filepath"

// Artifact references a server-side file (transcript, audio, PDF, LaTeX source).
// Artifacts are fetched on demand through the download endpoint.
type Artifact struct {
	Path     string `json:"path"`
	Filename string `json:"filename"`
	URL      string `json:"url,omitempty"`
}

// NewArtifact creates an artifact reference, deriving the filename from the
// path when none is given.
func NewArtifact(path, filename string) Artifact {
	if filename == "" {
		filename = filepath.Base(path)
	}
	return Artifact{Path: path, Filename: filename}
}

// IsZero reports whether the artifact references nothing.
func (a Artifact) IsZero() bool {
	return a.Path == ""
}

// FileInfo is a listing entry for uploaded media, transcripts and LaTeX sources.
type FileInfo struct {
	Path string `json:"path"`
	Name string `json:"name"`
	Size int64  `json:"size,omitempty"`
}

// Artifact returns the listing entry as a downloadable artifact.
func (f FileInfo) Artifact() Artifact {
	return NewArtifact(f.Path, f.Name)
}

// MediaType is the kind of source a transcription was produced from.
type MediaType string

// MediaTypeMedia marks audio/video transcriptions; other values come from
// document extraction (OCR).
const MediaTypeMedia MediaType = "media"

// Transcription is the payload of a successful transcribe call.
type Transcription struct {
	Type            MediaType `json:"type"`
	Transcript      string    `json:"transcript"`
	Timestamped     string    `json:"timestamped,omitempty"`
	TranscriptPath  string    `json:"transcript_path"`
	TimestampedPath string    `json:"timestamped_path,omitempty"`
}

// IsMedia reports whether the source was audio or video.
func (t Transcription) IsMedia() bool {
	return t.Type == MediaTypeMedia
}

// Label returns the display label for the plain transcript.
func (t Transcription) Label() string {
	if t.IsMedia() {
		return "Plain Transcript"
	}
	return "Extracted Text / OCR Result"
}

// Artifacts returns the transcript files produced by the transcription.
func (t Transcription) Artifacts() []Artifact {
	var out []Artifact
	if t.TranscriptPath != "" {
		out = append(out, NewArtifact(t.TranscriptPath, ""))
	}
	if t.TimestampedPath != "" {
		out = append(out, NewArtifact(t.TimestampedPath, ""))
	}
	return out
}

// TTSResult is the payload of a successful speech generation.
type TTSResult struct {
	Filename  string `json:"filename"`
	AudioURL  string `json:"audio_url"`
	AudioPath string `json:"audio_path"`
}

// Artifact returns the generated audio file.
func (r TTSResult) Artifact() Artifact {
	a := NewArtifact(r.AudioPath, r.Filename)
	a.URL = r.AudioURL
	return a
}

// PDFResult is the payload of the compile step. The tex fields may be present
// even when compilation failed.
type PDFResult struct {
	PDFPath     string `json:"pdf_path,omitempty"`
	PDFFilename string `json:"pdf_filename,omitempty"`
	TexPath     string `json:"tex_path,omitempty"`
	TexFilename string `json:"tex_filename,omitempty"`
}

// PDF returns the compiled document, or the zero artifact.
func (r PDFResult) PDF() Artifact {
	if r.PDFPath == "" {
		return Artifact{}
	}
	return NewArtifact(r.PDFPath, r.PDFFilename)
}

// Source returns the LaTeX source, or the zero artifact.
func (r PDFResult) Source() Artifact {
	if r.TexPath == "" {
		return Artifact{}
	}
	return NewArtifact(r.TexPath, r.TexFilename)
}

// Question is a single multiple-choice quiz question.
type Question struct {
	ID            int               `json:"id"`
	Question      string            `json:"question"`
	Options       map[string]string `json:"options"`
	CorrectAnswer string            `json:"correct_answer"`
	Difficulty    string            `json:"difficulty,omitempty"`
	Explanation   string            `json:"explanation,omitempty"`
}

// Quiz is the generated quiz payload.
type Quiz struct {
	Title          string     `json:"quiz_title,omitempty"`
	TotalQuestions int        `json:"total_questions,omitempty"`
	Questions      []Question `json:"questions"`
}

// DisplayTitle returns the quiz title with the default fallback.
func (q Quiz) DisplayTitle() string {
	if q.Title == "" {
		return "Interactive Quiz"
	}
	return q.Title
}

// Total returns the declared question count, falling back to the number of
// questions received.
func (q Quiz) Total() int {
	if q.TotalQuestions > 0 {
		return q.TotalQuestions
	}
	return len(q.Questions)
}

// Role identifies the author of a chat entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ToolOutcome describes the result of a tool the assistant invoked.
type ToolOutcome struct {
	Status   string `json:"status"`
	Path     string `json:"path,omitempty"`
	Filename string `json:"filename,omitempty"`
}

// ToolResult records a side-effecting tool invocation performed by the assistant.
type ToolResult struct {
	Tool   string      `json:"tool"`
	Result ToolOutcome `json:"result"`
}

// Succeeded reports whether the tool completed.
func (r ToolResult) Succeeded() bool {
	return r.Result.Status == "success"
}

// Artifact returns the file the tool produced, if any.
func (r ToolResult) Artifact() (Artifact, bool) {
	if r.Result.Path == "" {
		return Artifact{}, false
	}
	return NewArtifact(r.Result.Path, r.Result.Filename), true
}

// ChatEntry is one entry of the chat transcript.
type ChatEntry struct {
	Role        Role         `json:"role"`
	Content     string       `json:"content"`
	ToolResults []ToolResult `json:"tool_results,omitempty"`
}

// UserEntry creates a user chat entry.
func UserEntry(content string) ChatEntry {
	return ChatEntry{Role: RoleUser, Content: content}
}

// AssistantEntry creates an assistant chat entry.
func AssistantEntry(content string, results []ToolResult) ChatEntry {
	return ChatEntry{Role: RoleAssistant, Content: content, ToolResults: results}
}

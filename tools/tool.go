// Package tools describes the side-effecting tools the chat assistant can
// invoke on the backend, and renders the tool results it reports.
//
// Information Hiding:
// - Tool parameters and schemas hidden in the catalog
// - Registry implementation details hidden from consumers
// - Result wording per tool kept in one place
package tools

import (
	"fmt"
	"strings"

	"github.com/richinex/studio/model"
)

// ToolParameter defines a parameter schema for a tool.
type ToolParameter struct {
	Name        string   `json:"name"`
	ParamType   string   `json:"param_type"`
	Description string   `json:"description"`
	Required    bool     `json:"required"`
	Default     any      `json:"default,omitempty"`
	Enum        []string `json:"enum,omitempty"`
}

// ToolMetadata describes what a tool does and how to use it.
type ToolMetadata struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  []ToolParameter `json:"parameters"`
	// Produces is the kind of file the tool creates, if any.
	Produces string `json:"produces,omitempty"`
}

// String returns a string representation of the tool metadata.
func (m ToolMetadata) String() string {
	return fmt.Sprintf("%s: %s", m.Name, m.Description)
}

// Names of the backend tools.
const (
	DownloadYouTube = "download_youtube"
	TranscribeFile  = "transcribe_file"
	GenerateSummary = "generate_summary_pdf"
	GenerateQuiz    = "generate_quiz_from_latex"
	ListFiles       = "list_files"
)

// Describe renders a tool result as one line for the transcript.
func Describe(r model.ToolResult) string {
	if !r.Succeeded() {
		status := r.Result.Status
		if status == "" {
			status = "failed"
		}
		return fmt.Sprintf("%s: %s", r.Tool, status)
	}
	name := r.Result.Filename
	if name == "" {
		if a, ok := r.Artifact(); ok {
			name = a.Filename
		}
	}
	switch r.Tool {
	case DownloadYouTube:
		return "Downloaded " + orDefault(name, "video")
	case TranscribeFile:
		return "Transcribed " + orDefault(name, "file")
	case GenerateSummary:
		return "Generated summary " + orDefault(name, "PDF")
	case GenerateQuiz:
		return strings.TrimSpace("Generated quiz " + name)
	case ListFiles:
		return "Listed files"
	default:
		if name != "" {
			return fmt.Sprintf("%s: %s", r.Tool, name)
		}
		return r.Tool + ": success"
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

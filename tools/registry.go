// Package tools provides tool registration and lookup.
//
// Information Hiding:
// - Tool storage and lookup implementation hidden
// - Registration and discovery mechanisms abstracted

package tools

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry holds tool descriptions by name.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]ToolMetadata
}

// NewRegistry creates a new empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]ToolMetadata),
	}
}

// Register adds a new tool to the registry.
// Returns error if a tool with the same name already exists.
func (r *Registry) Register(meta ToolMetadata) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if meta.Name == "" {
		return fmt.Errorf("tool name is required")
	}
	if _, exists := r.tools[meta.Name]; exists {
		return fmt.Errorf("tool '%s' already registered", meta.Name)
	}
	r.tools[meta.Name] = meta
	return nil
}

// Get returns a tool by name.
func (r *Registry) Get(name string) (ToolMetadata, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	meta, exists := r.tools[name]
	return meta, exists
}

// Has checks if a tool exists in the registry.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.tools[name]
	return exists
}

// Names returns all registered tool names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// List returns metadata for all registered tools, sorted by name.
func (r *Registry) List() []ToolMetadata {
	names := r.Names()

	r.mu.RLock()
	defer r.mu.RUnlock()

	metadata := make([]ToolMetadata, 0, len(names))
	for _, name := range names {
		metadata = append(metadata, r.tools[name])
	}
	return metadata
}

// Description returns a formatted description of all tools.
func (r *Registry) Description() string {
	var descriptions []string
	for _, meta := range r.List() {
		var params []string
		for _, p := range meta.Parameters {
			required := "optional"
			if p.Required {
				required = "required"
			}
			line := fmt.Sprintf("  - %s (%s): %s [%s]", p.Name, p.ParamType, p.Description, required)
			if len(p.Enum) > 0 {
				line += " one of " + strings.Join(p.Enum, "|")
			}
			if p.Default != nil {
				line += fmt.Sprintf(" default %v", p.Default)
			}
			params = append(params, line)
		}

		descriptions = append(descriptions, fmt.Sprintf(
			"Tool: %s\nDescription: %s\nParameters:\n%s",
			meta.Name, meta.Description, strings.Join(params, "\n")))
	}

	return strings.Join(descriptions, "\n\n")
}

// Catalog returns a registry with the tools the backend assistant exposes.
func Catalog() *Registry {
	registry := NewRegistry()
	for _, meta := range catalog {
		if err := registry.Register(meta); err != nil {
			panic(fmt.Sprintf("tools: %v", err))
		}
	}
	return registry
}

var catalog = []ToolMetadata{
	{
		Name:        DownloadYouTube,
		Description: "Download audio from a YouTube URL",
		Parameters: []ToolParameter{
			{Name: "url", ParamType: "string", Description: "The YouTube video URL", Required: true},
		},
		Produces: "media",
	},
	{
		Name:        TranscribeFile,
		Description: "Transcribe an audio/video file to text",
		Parameters: []ToolParameter{
			{Name: "path", ParamType: "string", Description: "The absolute path to the media file", Required: true},
		},
		Produces: "transcript",
	},
	{
		Name:        GenerateSummary,
		Description: "Generate a LaTeX summary and compile it to PDF from a transcript file",
		Parameters: []ToolParameter{
			{Name: "transcript_path", ParamType: "string", Description: "The absolute path to the transcript .txt file", Required: true},
			{Name: "model_name", ParamType: "string", Description: "Model to use for summary generation", Default: "qwen3:30b-instruct"},
		},
		Produces: "pdf",
	},
	{
		Name:        GenerateQuiz,
		Description: "Generate an interactive quiz from a LaTeX summary file",
		Parameters: []ToolParameter{
			{Name: "latex_path", ParamType: "string", Description: "The absolute path to the .tex file", Required: true},
			{Name: "num_questions", ParamType: "integer", Description: "Number of questions to generate", Default: 10},
		},
	},
	{
		Name:        ListFiles,
		Description: "List available media or transcript files",
		Parameters: []ToolParameter{
			{
				Name: "folder_type", ParamType: "string", Description: "Type of files to list", Required: true,
				Enum: []string{"media", "transcripts", "latex", "quiz"},
			},
		},
	},
}

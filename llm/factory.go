// Package llm describes the model providers the studio backend can route
// summary, quiz and chat requests to.
//
// The backend performs every generation itself; the client only needs to
// name a provider and a model. Model catalogs are read straight from the
// providers' OpenAI-compatible endpoints.
//
// Quick Start:
//
//	p, err := llm.ParseProviderType("cloud")   // OpenRouter
//	model := p.DefaultModel()                  // openai/gpt-oss-120b
//	ids, err := llm.ListModels(ctx, p)         // live catalog

package llm

import (
	"fmt"
	"os"
	"strings"
)

// ProviderType represents supported LLM providers.
type ProviderType int

const (
	// ProviderOllama is a local Ollama server.
	ProviderOllama ProviderType = iota
	// ProviderOpenRouter is the OpenRouter cloud gateway.
	ProviderOpenRouter
)

// Model defaults per provider.
const (
	ModelOllamaDefault     = "gpt-oss:latest"
	ModelOpenRouterDefault = "openai/gpt-oss-120b"
)

// DefaultOllamaHost is used when OLLAMA_HOST is unset.
const DefaultOllamaHost = "http://localhost:11434"

// OpenRouterBaseURL is the OpenAI-compatible OpenRouter endpoint.
const OpenRouterBaseURL = "https://openrouter.ai/api/v1"

// String returns the provider name as the backend expects it.
func (p ProviderType) String() string {
	switch p {
	case ProviderOllama:
		return "Ollama"
	case ProviderOpenRouter:
		return "OpenRouter"
	default:
		return "unknown"
	}
}

// EnvVar returns the environment variable holding this provider's API key.
// Ollama needs none.
func (p ProviderType) EnvVar() string {
	switch p {
	case ProviderOpenRouter:
		return "OPENROUTER_API_KEY"
	default:
		return ""
	}
}

// DefaultModel returns the model selected when the provider is switched.
func (p ProviderType) DefaultModel() string {
	switch p {
	case ProviderOllama:
		return ModelOllamaDefault
	case ProviderOpenRouter:
		return ModelOpenRouterDefault
	default:
		return ""
	}
}

// BaseURL returns the OpenAI-compatible API root of the provider.
func (p ProviderType) BaseURL() string {
	switch p {
	case ProviderOllama:
		host := os.Getenv("OLLAMA_HOST")
		if host == "" {
			host = DefaultOllamaHost
		}
		if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
			host = "http://" + host
		}
		return strings.TrimRight(host, "/") + "/v1"
	case ProviderOpenRouter:
		return OpenRouterBaseURL
	default:
		return ""
	}
}

// ParseProviderType parses a provider from string (case-insensitive).
func ParseProviderType(s string) (ProviderType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ollama", "local":
		return ProviderOllama, nil
	case "openrouter", "cloud":
		return ProviderOpenRouter, nil
	default:
		return 0, fmt.Errorf("unknown provider: %s", s)
	}
}

// Providers returns every supported provider.
func Providers() []ProviderType {
	return []ProviderType{ProviderOllama, ProviderOpenRouter}
}

// Package config provides application settings loaded from environment variables.
//
// Settings are created via New() which handles:
// - Environment variable parsing with validation
// - Default value application
// - Provider-specific configuration lookup

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/richinex/studio/llm"
)

// Defaults applied when the corresponding variable is unset.
const (
	DefaultAPIURL        = "http://localhost:8000/api"
	DefaultProvider      = "openrouter"
	DefaultChatProvider  = "ollama"
	DefaultChatModel     = "qwen3:30b-instruct"
	DefaultQuizModel     = "gpt-oss:latest"
	DefaultQuizQuestions = 10
	MaxQuizQuestions     = 50
	DefaultDBPath        = ".studio/studio.db"
	DefaultDownloadDir   = "."
)

// Settings holds all application configuration.
type Settings struct {
	API     APIConfig
	LLM     LLMConfig
	Storage StorageConfig
}

// APIConfig holds backend connection configuration.
type APIConfig struct {
	BaseURL string
	// Timeout is a per-request deadline. Zero disables it.
	Timeout time.Duration
}

// LLMConfig holds the provider and model names sent to the backend.
type LLMConfig struct {
	Provider      string // backend name: "Ollama" or "OpenRouter"
	Model         string // summary model
	ChatProvider  string
	ChatModel     string
	QuizModel     string
	QuizQuestions int
}

// StorageConfig holds local persistence configuration.
type StorageConfig struct {
	DBPath      string
	DownloadDir string
}

// New creates settings for the specified provider, loading values from environment variables.
// An empty provider falls back to STUDIO_PROVIDER, then to OpenRouter.
// Returns an error if the provider is unknown or environment variables contain invalid values.
func New(provider string) (Settings, error) {
	if provider == "" {
		provider = getEnvString("STUDIO_PROVIDER", DefaultProvider)
	}
	summary, err := llm.ParseProviderType(provider)
	if err != nil {
		return Settings{}, err
	}

	chat, err := llm.ParseProviderType(getEnvString("STUDIO_CHAT_PROVIDER", DefaultChatProvider))
	if err != nil {
		return Settings{}, fmt.Errorf("invalid value for STUDIO_CHAT_PROVIDER: %w", err)
	}

	quizQuestions, err := getEnvInt("STUDIO_QUIZ_QUESTIONS", DefaultQuizQuestions)
	if err != nil {
		return Settings{}, err
	}
	if quizQuestions < 1 || quizQuestions > MaxQuizQuestions {
		return Settings{}, fmt.Errorf("invalid value for STUDIO_QUIZ_QUESTIONS: %d: must be between 1 and %d",
			quizQuestions, MaxQuizQuestions)
	}

	timeout, err := getEnvDuration("STUDIO_REQUEST_TIMEOUT", 0)
	if err != nil {
		return Settings{}, err
	}
	if timeout < 0 {
		return Settings{}, fmt.Errorf("invalid value for STUDIO_REQUEST_TIMEOUT: %s: must not be negative", timeout)
	}

	return Settings{
		API: APIConfig{
			BaseURL: getEnvString("STUDIO_API_URL", DefaultAPIURL),
			Timeout: timeout,
		},
		LLM: LLMConfig{
			Provider:      summary.String(),
			Model:         getEnvString("STUDIO_MODEL", summary.DefaultModel()),
			ChatProvider:  chat.String(),
			ChatModel:     getEnvString("STUDIO_CHAT_MODEL", DefaultChatModel),
			QuizModel:     getEnvString("STUDIO_QUIZ_MODEL", DefaultQuizModel),
			QuizQuestions: quizQuestions,
		},
		Storage: StorageConfig{
			DBPath:      getEnvString("STUDIO_DB", DefaultDBPath),
			DownloadDir: getEnvString("STUDIO_DOWNLOAD_DIR", DefaultDownloadDir),
		},
	}, nil
}

// MustNew creates settings for the specified provider.
// Panics if the provider is unknown or environment variables are invalid.
// Use this only when configuration errors should be fatal.
func MustNew(provider string) Settings {
	settings, err := New(provider)
	if err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return settings
}

// Environment variable helpers with proper error handling

func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return i, nil
}

func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return d, nil
}

package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseProviderType(t *testing.T) {
	cases := map[string]ProviderType{
		"Ollama":     ProviderOllama,
		"local":      ProviderOllama,
		"OpenRouter": ProviderOpenRouter,
		"CLOUD":      ProviderOpenRouter,
	}
	for in, want := range cases {
		got, err := ParseProviderType(in)
		if err != nil {
			t.Fatalf("ParseProviderType(%q) failed: %v", in, err)
		}
		if got != want {
			t.Errorf("%q: expected %s, got %s", in, want, got)
		}
	}
	if _, err := ParseProviderType("anthropic"); err == nil {
		t.Error("expected error for unsupported provider")
	}
}

func TestDefaultModels(t *testing.T) {
	if ProviderOllama.DefaultModel() != "gpt-oss:latest" {
		t.Errorf("unexpected Ollama default %q", ProviderOllama.DefaultModel())
	}
	if ProviderOpenRouter.DefaultModel() != "openai/gpt-oss-120b" {
		t.Errorf("unexpected OpenRouter default %q", ProviderOpenRouter.DefaultModel())
	}
}

func TestBaseURL(t *testing.T) {
	t.Setenv("OLLAMA_HOST", "gpu-box:11434/")
	if got := ProviderOllama.BaseURL(); got != "http://gpu-box:11434/v1" {
		t.Errorf("expected http://gpu-box:11434/v1, got %s", got)
	}
	t.Setenv("OLLAMA_HOST", "")
	if got := ProviderOllama.BaseURL(); got != DefaultOllamaHost+"/v1" {
		t.Errorf("expected default host, got %s", got)
	}
	if ProviderOpenRouter.BaseURL() != OpenRouterBaseURL {
		t.Errorf("unexpected OpenRouter URL %s", ProviderOpenRouter.BaseURL())
	}
}

func TestListModels(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "")
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/models") {
			http.NotFound(w, r)
			return
		}
		auth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[{"id":"qwen3:30b-instruct","object":"model"},{"id":"gpt-oss:latest","object":"model"}]}`))
	}))
	defer srv.Close()

	ids, err := ListModels(context.Background(), ProviderOpenRouter, WithBaseURL(srv.URL+"/v1"), WithAPIKey("sk-test"))
	if err != nil {
		t.Fatalf("ListModels failed: %v", err)
	}
	if len(ids) != 2 || ids[0] != "gpt-oss:latest" || ids[1] != "qwen3:30b-instruct" {
		t.Errorf("expected sorted ids, got %v", ids)
	}
	if auth != "Bearer sk-test" {
		t.Errorf("expected bearer token, got %q", auth)
	}
}

func TestListModelsRequiresOpenRouterKey(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "")
	if _, err := ListModels(context.Background(), ProviderOpenRouter); err == nil {
		t.Error("expected error without API key")
	}
}

func TestListModelsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"down"}}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := ListModels(context.Background(), ProviderOllama, WithBaseURL(srv.URL)); err == nil {
		t.Error("expected error from failing server")
	}
}

package llm

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/sashabaranov/go-openai"
)

// catalogConfig holds the endpoint and key used by ListModels.
type catalogConfig struct {
	baseURL string
	key     string
}

// CatalogOption configures ListModels.
type CatalogOption func(*catalogConfig)

// WithBaseURL overrides the provider's API root.
func WithBaseURL(url string) CatalogOption {
	return func(c *catalogConfig) {
		c.baseURL = url
	}
}

// WithAPIKey overrides the key read from the provider's environment variable.
func WithAPIKey(key string) CatalogOption {
	return func(c *catalogConfig) {
		c.key = key
	}
}

// ListModels returns the sorted model IDs the provider currently serves.
func ListModels(ctx context.Context, p ProviderType, opts ...CatalogOption) ([]string, error) {
	cc := catalogConfig{baseURL: p.BaseURL()}
	if env := p.EnvVar(); env != "" {
		cc.key = os.Getenv(env)
	}
	for _, opt := range opts {
		opt(&cc)
	}
	if p == ProviderOpenRouter && cc.key == "" {
		return nil, fmt.Errorf("%s environment variable not set", p.EnvVar())
	}

	cfg := openai.DefaultConfig(cc.key)
	cfg.BaseURL = cc.baseURL
	client := openai.NewClientWithConfig(cfg)
	list, err := client.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s models: %w", p, err)
	}

	ids := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		ids = append(ids, m.ID)
	}
	sort.Strings(ids)
	return ids, nil
}

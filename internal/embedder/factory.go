package embedder

import (
	"fmt"
	"os"
	"strings"
)

// ProviderAuto selects a provider from the API keys present in the environment
const ProviderAuto = "auto"

// Config holds embedder configuration
type Config struct {
	Provider  string
	APIKey    string
	BaseURL   string // ollama only
	Model     string // ollama only
	CacheSize int
}

// NewFromEnv creates an embedder based on environment variables.
// Priority:
// 1. PDFINDEX_EMBEDDING_PROVIDER (jina, openai, ollama, local, auto)
// 2. Check for API keys: JINA_API_KEY, OPENAI_API_KEY
// 3. Default to local if no API keys found
func NewFromEnv() (Embedder, error) {
	return New(Config{
		Provider:  os.Getenv(EnvProvider),
		CacheSize: DefaultCacheSize,
	})
}

// New creates an embedder with explicit configuration. An empty or "auto"
// provider is resolved with DetectProvider.
func New(cfg Config) (Embedder, error) {
	cache := NewCache(cfg.CacheSize)

	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" || provider == ProviderAuto {
		provider = DetectProvider()
	}

	switch provider {
	case ProviderJina:
		return NewJinaProvider(cfg.APIKey, cache)
	case ProviderOpenAI:
		return NewOpenAIProvider(cfg.APIKey, cache)
	case ProviderOllama:
		return NewOllamaProvider(cfg.BaseURL, cfg.Model, cache)
	case ProviderLocal:
		return NewLocalProvider(cache)
	default:
		return nil, fmt.Errorf("%w: unknown provider %s", ErrUnknownProvider, cfg.Provider)
	}
}

// DetectProvider returns the provider that would be used based on current environment
func DetectProvider() string {
	provider := strings.ToLower(os.Getenv(EnvProvider))
	if provider != "" && provider != ProviderAuto {
		return provider
	}

	if os.Getenv(EnvJinaAPIKey) != "" {
		return ProviderJina
	}
	if os.Getenv(EnvOpenAIAPIKey) != "" {
		return ProviderOpenAI
	}

	return ProviderLocal
}

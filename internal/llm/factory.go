package llm

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/abhisek/interviewdeck/internal/store"
)

// ErrNoProvider is returned by Registry.Get when nothing can serve a name.
var ErrNoProvider = errors.New("no LLM provider configured")

// NewProvider creates the named Provider from configuration, without
// middleware.
func NewProvider(ctx context.Context, name string, cfg Config) (Provider, error) {
	switch name {
	case ProviderAnthropic:
		return NewAnthropicProvider(cfg.Anthropic)
	case ProviderOpenAI:
		return NewOpenAIProvider(cfg.OpenAI)
	case ProviderGemini:
		return NewGeminiProvider(ctx, cfg.Gemini)
	case ProviderOpenRouter:
		return NewOpenRouterProvider(cfg.OpenRouter)
	case ProviderMock:
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", name)
	}
}

// Registry holds one Provider per name.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	fallback  string
}

// NewRegistry builds every provider that has an API key, each wrapped as
// caller → retry → logging → base. repo may be nil.
func NewRegistry(ctx context.Context, cfg Config, repo store.EventRepo, logger *zap.Logger) (*Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &Registry{providers: map[string]Provider{}}

	names := cfg.Configured()
	if cfg.Provider == ProviderMock {
		names = []string{ProviderMock}
	}
	for _, name := range names {
		base, err := NewProvider(ctx, name, cfg)
		if err != nil {
			return nil, fmt.Errorf("initializing %s provider: %w", name, err)
		}
		r.Register(name, WithRetry(WithLogging(base, name, repo, logger), cfg.Retry, RetryLogger(logger)))
	}

	r.fallback = cfg.Provider
	if r.fallback == "" && len(names) > 0 {
		r.fallback = names[0]
	}
	return r, nil
}

// NewStaticRegistry returns a Registry over ready-made providers. The first
// name in sorted order becomes the fallback unless fallback is set.
func NewStaticRegistry(fallback string, providers map[string]Provider) *Registry {
	r := &Registry{providers: map[string]Provider{}, fallback: fallback}
	for name, p := range providers {
		r.Register(name, p)
	}
	if r.fallback == "" {
		if names := r.Names(); len(names) > 0 {
			r.fallback = names[0]
		}
	}
	return r
}

// Register adds or replaces the provider for name.
func (r *Registry) Register(name string, p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[name] = p
}

// Get returns the provider for name, or the fallback provider.
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.providers[name]; ok {
		return p, nil
	}
	if p, ok := r.providers[r.fallback]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("%w for %q", ErrNoProvider, name)
}

// Names returns the registered provider names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Package llm holds the remote text-generation backends and the decorators
// that pace and measure calls to them.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"

	DefaultGeminiModel    = "gemini-2.5-flash"
	DefaultAnthropicModel = "claude-sonnet-4-5-20250929"
)

// Options selects and configures a backend.
type Options struct {
	Provider        string
	GeminiAPIKey    string
	GeminiModel     string
	AnthropicAPIKey string
	AnthropicModel  string

	RateLimitRPS   float64
	RateLimitBurst int
	StatsWindow    time.Duration
}

type backend interface {
	Generator
	Model() string
	Close() error
}

// Provider is a configured backend wrapped with rate limiting and latency
// stats. It implements Generator.
type Provider struct {
	name    string
	backend backend
	gen     Generator
	Stats   *LLMStats
}

// NewProvider builds the backend named by opts.Provider.
func NewProvider(ctx context.Context, opts Options) (*Provider, error) {
	name := strings.ToLower(strings.TrimSpace(opts.Provider))
	if name == "" {
		name = ProviderGemini
	}

	var b backend
	switch name {
	case ProviderGemini:
		g, err := NewGeminiClient(ctx, opts.GeminiAPIKey, opts.GeminiModel)
		if err != nil {
			return nil, err
		}
		b = g
	case ProviderAnthropic:
		if opts.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("anthropic API key is required")
		}
		model := opts.AnthropicModel
		if model == "" {
			model = DefaultAnthropicModel
		}
		b = NewClaudeClient(opts.AnthropicAPIKey, model)
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", opts.Provider)
	}

	return wrap(name, b, opts), nil
}

func wrap(name string, b backend, opts Options) *Provider {
	stats := NewLLMStats(opts.StatsWindow)
	// Token waits are excluded from recorded latency.
	gen := RateLimited(Instrumented(b, stats), opts.RateLimitRPS, opts.RateLimitBurst)
	return &Provider{
		name:    name,
		backend: b,
		gen:     gen,
		Stats:   stats,
	}
}

func (p *Provider) Generate(ctx context.Context, prompt string) (string, error) {
	return p.gen.Generate(ctx, prompt)
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return p.name
}

// Model returns the backend's model name.
func (p *Provider) Model() string {
	return p.backend.Model()
}

// Close releases the backend.
func (p *Provider) Close() error {
	return p.backend.Close()
}

package llm

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// RateLimitedGenerator paces calls to the wrapped generator with a token
// bucket. One instance is shared by every worker so the pace is global.
type RateLimitedGenerator struct {
	next    Generator
	limiter *rate.Limiter
}

// RateLimited wraps next with a limiter allowing rps calls per second and
// bursts of burst. A non-positive rps disables limiting.
func RateLimited(next Generator, rps float64, burst int) Generator {
	if rps <= 0 {
		return next
	}
	if burst <= 0 {
		burst = 1
	}
	return &RateLimitedGenerator{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

func (r *RateLimitedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}
	return r.next.Generate(ctx, prompt)
}

// InstrumentedGenerator records the latency and outcome of every call.
type InstrumentedGenerator struct {
	next  Generator
	stats *LLMStats
}

// Instrumented wraps next so each call is recorded in stats.
func Instrumented(next Generator, stats *LLMStats) Generator {
	return &InstrumentedGenerator{next: next, stats: stats}
}

func (g *InstrumentedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	text, err := g.next.Generate(ctx, prompt)
	g.stats.Record(time.Since(start).Milliseconds(), err != nil)
	return text, err
}

// Package query sends prompts to a remote text-generation service and
// absorbs transient quota errors with bounded exponential backoff.
package query

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// DefaultMaxRetries is the number of attempts made per query.
const DefaultMaxRetries = 3

// Generator is the remote text-generation service.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Client runs queries against a Generator. Attempts are sequential on the
// calling goroutine; a Client holds no per-call state and may be shared.
type Client struct {
	gen         Generator
	maxRetries  int
	backoffUnit time.Duration
	retryable   RetryablePredicate
	sleep       SleepFunc
	log         *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithMaxRetries sets the total number of attempts. Values below 1 select
// DefaultMaxRetries.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxRetries = n
		}
	}
}

// WithBackoffUnit sets the unit multiplied by 2^(attempt+1) between attempts.
func WithBackoffUnit(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.backoffUnit = d
		}
	}
}

// WithRetryable replaces the QuotaMessage classifier.
func WithRetryable(p RetryablePredicate) Option {
	return func(c *Client) {
		if p != nil {
			c.retryable = p
		}
	}
}

// WithSleep replaces the backoff wait.
func WithSleep(fn SleepFunc) Option {
	return func(c *Client) {
		if fn != nil {
			c.sleep = fn
		}
	}
}

// WithLogger sets the logger used for retry and failure messages.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// New creates a Client around gen.
func New(gen Generator, opts ...Option) *Client {
	c := &Client{
		gen:         gen,
		maxRetries:  DefaultMaxRetries,
		backoffUnit: time.Second,
		retryable:   QuotaMessage,
		sleep:       sleepContext,
		log:         slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MaxRetries returns the configured attempt count.
func (c *Client) MaxRetries() int {
	return c.maxRetries
}

// Query sends instruction followed by content and returns the model's text.
// It never returns an error: every failure is reported in the Result.
func (c *Client) Query(ctx context.Context, instruction, content string) Result {
	prompt := instruction + content

	var lastErr error
	for attempt := range c.maxRetries {
		text, err := c.call(ctx, prompt)
		if err == nil {
			return success(text, attempt+1)
		}
		lastErr = err

		if !c.retryable(err) {
			c.log.Error("query failed", "attempt", attempt, "error", err)
			return failure(FailureTerminal, err.Error(), attempt+1)
		}
		if attempt == c.maxRetries-1 {
			break
		}

		wait := Backoff(attempt, c.backoffUnit)
		c.log.Warn("retryable query error", "attempt", attempt, "backoff", wait, "error", err)
		if err := c.sleep(ctx, wait); err != nil {
			return failure(FailureTerminal, err.Error(), attempt+1)
		}
	}

	c.log.Error("query retries exhausted", "attempts", c.maxRetries, "error", lastErr)
	return failure(FailureExhausted,
		fmt.Sprintf("maximum retries exceeded (%d attempts): %s", c.maxRetries, lastErr), c.maxRetries)
}

// call invokes the generator, converting a panic into an error.
func (c *Client) call(ctx context.Context, prompt string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("generator panic: %v", r)
		}
	}()
	if c.gen == nil {
		return "", fmt.Errorf("no generator configured")
	}
	return c.gen.Generate(ctx, prompt)
}

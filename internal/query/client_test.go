package query

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scripted returns the queued responses in order and records each prompt.
type scripted struct {
	steps   []step
	prompts []string
}

type step struct {
	text string
	err  error
}

func (s *scripted) Generate(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	st := s.steps[len(s.prompts)-1]
	return st.text, st.err
}

type sleepRecorder struct {
	waits []time.Duration
}

func (r *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	r.waits = append(r.waits, d)
	return nil
}

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newClient(gen Generator, rec *sleepRecorder, opts ...Option) *Client {
	base := []Option{WithSleep(rec.sleep), WithLogger(quiet())}
	return New(gen, append(base, opts...)...)
}

func TestQuery_SuccessFirstAttempt(t *testing.T) {
	gen := &scripted{steps: []step{{text: "- point one\n- point two"}}}
	rec := &sleepRecorder{}

	res := newClient(gen, rec).Query(context.Background(), "Summarize:\n", "clause text")

	require.True(t, res.OK())
	assert.Equal(t, "- point one\n- point two", res.Text)
	assert.Equal(t, 1, res.Attempts)
	assert.Equal(t, []string{"Summarize:\nclause text"}, gen.prompts)
	assert.Empty(t, rec.waits)
}

func TestQuery_NonRetryableStopsImmediately(t *testing.T) {
	gen := &scripted{steps: []step{{err: errors.New("401 API key not valid")}}}
	rec := &sleepRecorder{}

	res := newClient(gen, rec).Query(context.Background(), "p", "t")

	require.False(t, res.OK())
	assert.Equal(t, FailureTerminal, res.Failure.Kind)
	assert.Equal(t, "401 API key not valid", res.Failure.Message)
	assert.Len(t, gen.prompts, 1)
	assert.Empty(t, rec.waits)
}

func TestQuery_ExhaustsRetries(t *testing.T) {
	tests := []struct {
		name       string
		maxRetries int
		wantWaits  []time.Duration
	}{
		{"one attempt", 1, nil},
		{"default three", 3, []time.Duration{2 * time.Second, 4 * time.Second}},
		{"five", 5, []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second, 16 * time.Second}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			steps := make([]step, tc.maxRetries)
			for i := range steps {
				steps[i] = step{err: errors.New("429 Resource has been exhausted (e.g. check QUOTA).")}
			}
			gen := &scripted{steps: steps}
			rec := &sleepRecorder{}

			res := newClient(gen, rec, WithMaxRetries(tc.maxRetries)).Query(context.Background(), "p", "t")

			require.False(t, res.OK())
			assert.True(t, res.Exhausted())
			assert.Equal(t, FailureExhausted, res.Failure.Kind)
			assert.Contains(t, res.Failure.Message, "maximum retries exceeded")
			assert.Len(t, gen.prompts, tc.maxRetries)
			assert.Equal(t, tc.maxRetries, res.Attempts)
			assert.Equal(t, tc.wantWaits, rec.waits)
		})
	}
}

func TestQuery_RetryThenSuccess(t *testing.T) {
	quota := errors.New("quota exceeded")
	gen := &scripted{steps: []step{{err: quota}, {err: quota}, {text: "final answer"}}}
	rec := &sleepRecorder{}

	res := newClient(gen, rec).Query(context.Background(), "p", "t")

	require.True(t, res.OK())
	assert.Equal(t, "final answer", res.Text)
	assert.Equal(t, 3, res.Attempts)
	assert.Len(t, gen.prompts, 3)
	for _, p := range gen.prompts {
		assert.Equal(t, "pt", p)
	}
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, rec.waits)
}

func TestQuery_QuotaThenTerminal(t *testing.T) {
	gen := &scripted{steps: []step{{err: errors.New("Quota hit")}, {err: errors.New("bad request")}}}
	rec := &sleepRecorder{}

	res := newClient(gen, rec).Query(context.Background(), "p", "t")

	require.False(t, res.OK())
	assert.Equal(t, FailureTerminal, res.Failure.Kind)
	assert.Equal(t, "bad request", res.Failure.Message)
	assert.Equal(t, 2, res.Attempts)
	assert.Len(t, rec.waits, 1)
}

func TestQuery_BackoffUnit(t *testing.T) {
	quota := errors.New("quota")
	gen := &scripted{steps: []step{{err: quota}, {text: "ok"}}}
	rec := &sleepRecorder{}

	res := newClient(gen, rec, WithBackoffUnit(time.Millisecond)).Query(context.Background(), "", "")

	require.True(t, res.OK())
	assert.Equal(t, []time.Duration{2 * time.Millisecond}, rec.waits)
}

func TestQuery_CustomPredicate(t *testing.T) {
	transient := errors.New("503 service unavailable")
	gen := &scripted{steps: []step{{err: transient}, {text: "ok"}}}
	rec := &sleepRecorder{}

	isUnavailable := func(err error) bool { return errors.Is(err, transient) }
	res := newClient(gen, rec, WithRetryable(AnyOf(QuotaMessage, isUnavailable))).Query(context.Background(), "", "")

	require.True(t, res.OK())
	assert.Len(t, gen.prompts, 2)
}

func TestQuery_CanceledDuringBackoff(t *testing.T) {
	gen := &scripted{steps: []step{{err: errors.New("quota")}, {text: "unreachable"}}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := New(gen, WithLogger(quiet()), WithBackoffUnit(time.Hour)).Query(ctx, "", "")

	require.False(t, res.OK())
	assert.Equal(t, FailureTerminal, res.Failure.Kind)
	assert.Equal(t, context.Canceled.Error(), res.Failure.Message)
	assert.Len(t, gen.prompts, 1)
}

func TestQuery_RecoversGeneratorPanic(t *testing.T) {
	gen := GeneratorFunc(func(context.Context, string) (string, error) {
		panic("nil response")
	})

	res := newClient(gen, &sleepRecorder{}).Query(context.Background(), "", "")

	require.False(t, res.OK())
	assert.Equal(t, FailureTerminal, res.Failure.Kind)
	assert.Contains(t, res.Failure.Message, "nil response")
}

func TestQuery_ReturnsTextUnmodified(t *testing.T) {
	raw := "  ```json\n{\"parties\": []}\n```  \n"
	gen := &scripted{steps: []step{{text: raw}}}

	res := newClient(gen, &sleepRecorder{}).Query(context.Background(), "", "")
	assert.Equal(t, raw, res.Text)
}

func TestNew_Defaults(t *testing.T) {
	c := New(nil, WithMaxRetries(0))
	assert.Equal(t, DefaultMaxRetries, c.MaxRetries())

	res := New(nil, WithLogger(quiet()), WithSleep((&sleepRecorder{}).sleep)).Query(context.Background(), "", "")
	assert.Equal(t, FailureTerminal, res.Failure.Kind)
}

func TestQuotaMessage(t *testing.T) {
	assert.True(t, QuotaMessage(errors.New("QUOTA exceeded")))
	assert.True(t, QuotaMessage(errors.New("rpc error: Quota metric limit")))
	assert.False(t, QuotaMessage(errors.New("connection refused")))
	assert.False(t, QuotaMessage(nil))
}

func TestBackoff(t *testing.T) {
	assert.Equal(t, 2*time.Second, Backoff(0, time.Second))
	assert.Equal(t, 4*time.Second, Backoff(1, time.Second))
	assert.Equal(t, 8*time.Second, Backoff(2, time.Second))
}

package query

import "fmt"

// FailureKind classifies a failed query.
type FailureKind string

const (
	// FailureTerminal is a non-retryable error, reported after one attempt.
	FailureTerminal FailureKind = "terminal"
	// FailureExhausted means every attempt hit a retryable error.
	FailureExhausted FailureKind = "retries_exhausted"
)

// Failure describes why a query produced no text.
type Failure struct {
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`
}

func (f *Failure) String() string {
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

// Result is the outcome of one query. Exactly one of Text and Failure is
// meaningful: the query succeeded iff Failure is nil.
type Result struct {
	Text     string   `json:"text,omitempty"`
	Failure  *Failure `json:"failure,omitempty"`
	Attempts int      `json:"attempts"`
}

// OK reports whether the query succeeded.
func (r Result) OK() bool {
	return r.Failure == nil
}

// Exhausted reports whether the query gave up after retrying.
func (r Result) Exhausted() bool {
	return r.Failure != nil && r.Failure.Kind == FailureExhausted
}

func success(text string, attempts int) Result {
	return Result{Text: text, Attempts: attempts}
}

func failure(kind FailureKind, msg string, attempts int) Result {
	return Result{Failure: &Failure{Kind: kind, Message: msg}, Attempts: attempts}
}

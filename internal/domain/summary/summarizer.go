package summary

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Fixed generation parameters for every summary request. Constants, never
// derived from the data being summarized.
const (
	maxResponseTokens = 512
	temperature       = 0.2
)

// Request is the payload handed to the external summarizer.
type Request struct {
	Document    string
	MaxTokens   int
	Temperature float64
}

// Summarizer is the narrow capability the summary flow depends on. Keeping
// it to one method lets the core run against a substitute implementation in
// tests; nothing here knows about a specific wire client.
type Summarizer interface {
	Summarize(ctx context.Context, req Request) (string, error)
}

// ErrEmptyCandidates is returned by Summarizer implementations when the
// service responds without a single usable completion.
var ErrEmptyCandidates = errors.New("summarizer returned no candidates")

// ErrNotConfigured means the summarizer credential is absent. It is a
// server-side configuration problem and is reported distinctly from a
// summarizer-side failure, so it never becomes an UnavailableError.
var ErrNotConfigured = errors.New("summarizer credential is not configured")

// Failure reasons carried by UnavailableError.
const (
	ReasonTimeout         = "timeout"
	ReasonTransport       = "transport_error"
	ReasonEmptyCandidates = "empty_candidates"
)

// UnavailableError is the uniform failure a caller sees when a summary could
// not be produced. Callers never receive partial or malformed text; the
// whole operation is idempotent and may be retried by the caller.
type UnavailableError struct {
	Reason string
	Err    error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("summary unavailable (%s): %v", e.Reason, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// Result is a successfully produced summary. Ephemeral; never persisted.
type Result struct {
	Summary     string    `json:"summary"`
	GeneratedAt time.Time `json:"generated_at"`
}

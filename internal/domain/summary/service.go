package summary

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/carechart/carechart/internal/domain/identity"
	"github.com/carechart/carechart/internal/domain/record"
)

// Service builds and dispatches record summaries. One call performs no
// writes anywhere, so the whole operation can be retried by the caller.
type Service struct {
	summarizer Summarizer
	aggregator *record.Aggregator
	identities identity.Repository
}

func NewService(summarizer Summarizer, aggregator *record.Aggregator, identities identity.Repository) *Service {
	return &Service{summarizer: summarizer, aggregator: aggregator, identities: identities}
}

// SummarizeRecord aggregates the patient's record, renders it, and asks the
// external summarizer for a summary. Errors pass through untranslated where
// they are already meaningful (identity.ErrNotFound, record.PartialDataError);
// every summarizer-side failure is normalized into an UnavailableError.
func (s *Service) SummarizeRecord(ctx context.Context, patientID uuid.UUID) (*Result, error) {
	patient, err := s.identities.GetPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}

	timeline, err := s.aggregator.Aggregate(ctx, patientID)
	if err != nil {
		return nil, err
	}

	doc := BuildDocument(patient.Name, timeline)
	text, err := s.summarizer.Summarize(ctx, Request{
		Document:    doc,
		MaxTokens:   maxResponseTokens,
		Temperature: temperature,
	})
	if err != nil {
		if errors.Is(err, ErrNotConfigured) {
			return nil, err
		}
		return nil, &UnavailableError{Reason: classify(err), Err: err}
	}
	return &Result{Summary: text, GeneratedAt: time.Now().UTC()}, nil
}

func classify(err error) string {
	if errors.Is(err, ErrEmptyCandidates) {
		return ReasonEmptyCandidates
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ReasonTimeout
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return ReasonTimeout
	}
	return ReasonTransport
}

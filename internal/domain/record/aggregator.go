package record

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// PartialDataError reports that one or more variant fetches failed during
// aggregation. The whole aggregation fails rather than returning a timeline
// that silently omits a data category; a clinically consumed summary must
// never be built from a record the caller doesn't know is incomplete.
type PartialDataError struct {
	Failed []Kind
	errs   []error
}

func (e *PartialDataError) Error() string {
	names := make([]string, len(e.Failed))
	for i, k := range e.Failed {
		names[i] = k.String()
	}
	return fmt.Sprintf("record aggregation failed: could not fetch %s", strings.Join(names, ", "))
}

func (e *PartialDataError) Unwrap() []error { return e.errs }

// Aggregator merges a patient's heterogeneous record entries into one
// Timeline. Each request is independent; the aggregator holds no mutable
// state beyond the store handles.
type Aggregator struct {
	vitals        VitalStore
	notes         NoteStore
	files         FileStore
	prescriptions PrescriptionStore
}

func NewAggregator(vitals VitalStore, notes NoteStore, files FileStore, prescriptions PrescriptionStore) *Aggregator {
	return &Aggregator{vitals: vitals, notes: notes, files: files, prescriptions: prescriptions}
}

// Aggregate fetches all four variants concurrently and k-way merges the
// pre-sorted sequences into one globally ascending Timeline. A patient with
// no records of any kind gets an empty Timeline, never an error. Any fetch
// failure fails the whole aggregation with a PartialDataError.
func (a *Aggregator) Aggregate(ctx context.Context, patientID uuid.UUID) (Timeline, error) {
	var (
		vitals        []*Vital
		notes         []*Note
		files         []*FileMeta
		prescriptions []*Prescription
	)
	fetchErrs := make([]error, 4)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		vitals, err = a.vitals.ListByPatient(gctx, patientID)
		fetchErrs[KindVital] = err
		return err
	})
	g.Go(func() error {
		var err error
		notes, err = a.notes.ListByPatient(gctx, patientID)
		fetchErrs[KindNote] = err
		return err
	})
	g.Go(func() error {
		var err error
		files, err = a.files.ListByPatient(gctx, patientID)
		fetchErrs[KindFileMeta] = err
		return err
	})
	g.Go(func() error {
		var err error
		prescriptions, err = a.prescriptions.ListByPatient(gctx, patientID)
		fetchErrs[KindPrescription] = err
		return err
	})

	if err := g.Wait(); err != nil {
		perr := &PartialDataError{}
		for kind, ferr := range fetchErrs {
			// Sibling fetches cancelled by the first failure are
			// collateral, not sources of their own.
			if ferr == nil || errors.Is(ferr, context.Canceled) {
				continue
			}
			perr.Failed = append(perr.Failed, Kind(kind))
			perr.errs = append(perr.errs, ferr)
		}
		if len(perr.Failed) == 0 {
			return nil, err
		}
		return nil, perr
	}

	seqs := [][]Entry{
		toEntries(vitals),
		toEntries(notes),
		toEntries(files),
		toEntries(prescriptions),
	}
	return mergeTimeline(seqs), nil
}

func toEntries[T Entry](items []T) []Entry {
	out := make([]Entry, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}

// mergeTimeline merges pre-sorted per-variant sequences into one globally
// non-decreasing sequence. Timestamp ties across variants resolve by Kind
// precedence; within a variant, source order is preserved. Linear in the
// total entry count for a fixed variant set.
func mergeTimeline(seqs [][]Entry) Timeline {
	total := 0
	for _, s := range seqs {
		total += len(s)
	}
	merged := make(Timeline, 0, total)
	heads := make([]int, len(seqs))

	for len(merged) < total {
		best := -1
		for i, s := range seqs {
			if heads[i] >= len(s) {
				continue
			}
			if best < 0 {
				best = i
				continue
			}
			cur, b := s[heads[i]], seqs[best][heads[best]]
			if cur.EntryTime().Before(b.EntryTime()) ||
				(cur.EntryTime().Equal(b.EntryTime()) && cur.EntryKind() < b.EntryKind()) {
				best = i
			}
		}
		merged = append(merged, seqs[best][heads[best]])
		heads[best]++
	}
	return merged
}

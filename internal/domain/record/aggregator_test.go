package record

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

type fakeVitalStore struct {
	items []*Vital
	err   error
}

func (f *fakeVitalStore) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Vital, error) {
	return f.items, f.err
}

type fakeNoteStore struct {
	items []*Note
	err   error
}

func (f *fakeNoteStore) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Note, error) {
	return f.items, f.err
}

func (f *fakeNoteStore) Create(ctx context.Context, n *Note) error {
	n.CreatedAt = time.Now()
	f.items = append(f.items, n)
	return nil
}

type fakeFileStore struct {
	items []*FileMeta
	err   error
}

func (f *fakeFileStore) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*FileMeta, error) {
	return f.items, f.err
}

type fakePrescriptionStore struct {
	items []*Prescription
	err   error
}

func (f *fakePrescriptionStore) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Prescription, error) {
	return f.items, f.err
}

func (f *fakePrescriptionStore) Create(ctx context.Context, p *Prescription) error {
	p.CreatedAt = time.Now()
	f.items = append(f.items, p)
	return nil
}

func at(day int) time.Time {
	return time.Date(2024, 3, day, 12, 0, 0, 0, time.UTC)
}

func newTestAggregator(v *fakeVitalStore, n *fakeNoteStore, f *fakeFileStore, p *fakePrescriptionStore) *Aggregator {
	if v == nil {
		v = &fakeVitalStore{}
	}
	if n == nil {
		n = &fakeNoteStore{}
	}
	if f == nil {
		f = &fakeFileStore{}
	}
	if p == nil {
		p = &fakePrescriptionStore{}
	}
	return NewAggregator(v, n, f, p)
}

func TestAggregateEmptyRecord(t *testing.T) {
	agg := newTestAggregator(nil, nil, nil, nil)

	timeline, err := agg.Aggregate(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("empty record must not be an error, got %v", err)
	}
	if len(timeline) != 0 {
		t.Errorf("expected empty timeline, got %d entries", len(timeline))
	}
}

func TestAggregateMergesSortedSequences(t *testing.T) {
	pid := uuid.New()
	vitals := &fakeVitalStore{items: []*Vital{
		{ID: uuid.New(), PatientID: pid, CreatedAt: at(1)},
		{ID: uuid.New(), PatientID: pid, CreatedAt: at(4)},
		{ID: uuid.New(), PatientID: pid, CreatedAt: at(7)},
	}}
	notes := &fakeNoteStore{items: []*Note{
		{ID: uuid.New(), PatientID: pid, CreatedAt: at(2)},
		{ID: uuid.New(), PatientID: pid, CreatedAt: at(5)},
	}}
	files := &fakeFileStore{items: []*FileMeta{
		{ID: uuid.New(), PatientID: pid, CreatedAt: at(3)},
	}}
	prescriptions := &fakePrescriptionStore{items: []*Prescription{
		{ID: uuid.New(), PatientID: pid, CreatedAt: at(6)},
	}}
	agg := newTestAggregator(vitals, notes, files, prescriptions)

	timeline, err := agg.Aggregate(context.Background(), pid)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if got, want := len(timeline), 7; got != want {
		t.Fatalf("timeline length = %d, want %d", got, want)
	}
	for i := 1; i < len(timeline); i++ {
		if timeline[i].EntryTime().Before(timeline[i-1].EntryTime()) {
			t.Errorf("timeline not non-decreasing at index %d", i)
		}
	}
}

func TestAggregateTieBreaksByVariantPrecedence(t *testing.T) {
	pid := uuid.New()
	ts := at(10)
	agg := newTestAggregator(
		&fakeVitalStore{items: []*Vital{{ID: uuid.New(), PatientID: pid, CreatedAt: ts}}},
		&fakeNoteStore{items: []*Note{{ID: uuid.New(), PatientID: pid, CreatedAt: ts}}},
		&fakeFileStore{items: []*FileMeta{{ID: uuid.New(), PatientID: pid, CreatedAt: ts}}},
		&fakePrescriptionStore{items: []*Prescription{{ID: uuid.New(), PatientID: pid, CreatedAt: ts}}},
	)

	timeline, err := agg.Aggregate(context.Background(), pid)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	want := []Kind{KindVital, KindNote, KindFileMeta, KindPrescription}
	if len(timeline) != len(want) {
		t.Fatalf("timeline length = %d, want %d", len(timeline), len(want))
	}
	for i, k := range want {
		if timeline[i].EntryKind() != k {
			t.Errorf("entry %d kind = %s, want %s", i, timeline[i].EntryKind(), k)
		}
	}
}

func TestAggregatePreservesWithinVariantOrder(t *testing.T) {
	pid := uuid.New()
	ts := at(10)
	first := &Note{ID: uuid.New(), PatientID: pid, Content: "first", CreatedAt: ts}
	second := &Note{ID: uuid.New(), PatientID: pid, Content: "second", CreatedAt: ts}
	agg := newTestAggregator(nil, &fakeNoteStore{items: []*Note{first, second}}, nil, nil)

	timeline, err := agg.Aggregate(context.Background(), pid)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if timeline[0].(*Note).Content != "first" || timeline[1].(*Note).Content != "second" {
		t.Error("same-timestamp entries within a variant must keep source order")
	}
}

func TestAggregateFailsOnAnyFetchError(t *testing.T) {
	pid := uuid.New()
	agg := newTestAggregator(
		&fakeVitalStore{items: []*Vital{{ID: uuid.New(), PatientID: pid, CreatedAt: at(1)}}},
		&fakeNoteStore{err: errors.New("notes store down")},
		nil, nil,
	)

	timeline, err := agg.Aggregate(context.Background(), pid)
	if timeline != nil {
		t.Error("a failed aggregation must not return a partially-merged timeline")
	}
	var perr *PartialDataError
	if !errors.As(err, &perr) {
		t.Fatalf("expected PartialDataError, got %v", err)
	}
	found := false
	for _, k := range perr.Failed {
		if k == KindNote {
			found = true
		}
	}
	if !found {
		t.Errorf("PartialDataError should name the failed variant, got %v", perr.Failed)
	}
}

func TestMergeTimelineLengths(t *testing.T) {
	mk := func(days ...int) []Entry {
		out := make([]Entry, len(days))
		for i, d := range days {
			out[i] = &Vital{ID: uuid.New(), CreatedAt: at(d)}
		}
		return out
	}
	tests := []struct {
		name string
		a, b []Entry
	}{
		{"both empty", nil, nil},
		{"one empty", mk(1, 2, 3), nil},
		{"interleaved", mk(1, 3, 5), mk(2, 4, 6)},
		{"disjoint ranges", mk(1, 2), mk(10, 11, 12)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged := mergeTimeline([][]Entry{tt.a, tt.b})
			if len(merged) != len(tt.a)+len(tt.b) {
				t.Fatalf("merged length = %d, want %d", len(merged), len(tt.a)+len(tt.b))
			}
			for i := 1; i < len(merged); i++ {
				if merged[i].EntryTime().Before(merged[i-1].EntryTime()) {
					t.Errorf("merged sequence decreases at index %d", i)
				}
			}
		})
	}
}

package consultation

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

// memRepo is an in-memory consultation edge store.
type memRepo struct {
	links map[uuid.UUID]map[uuid.UUID]struct{}
}

func newMemRepo() *memRepo {
	return &memRepo{links: make(map[uuid.UUID]map[uuid.UUID]struct{})}
}

func (m *memRepo) GetConsultedPatients(ctx context.Context, doctorID uuid.UUID) (map[uuid.UUID]struct{}, error) {
	set := make(map[uuid.UUID]struct{}, len(m.links[doctorID]))
	for id := range m.links[doctorID] {
		set[id] = struct{}{}
	}
	return set, nil
}

func (m *memRepo) Add(ctx context.Context, doctorID, patientID uuid.UUID) error {
	if m.links[doctorID] == nil {
		m.links[doctorID] = make(map[uuid.UUID]struct{})
	}
	m.links[doctorID][patientID] = struct{}{}
	return nil
}

func (m *memRepo) Remove(ctx context.Context, doctorID, patientID uuid.UUID) error {
	delete(m.links[doctorID], patientID)
	return nil
}

func TestIsConsultingUnknownDoctor(t *testing.T) {
	registry := NewRegistry(newMemRepo())

	ok, err := registry.IsConsulting(context.Background(), uuid.New(), uuid.New())
	if err != nil {
		t.Fatalf("unknown doctor must not be an error, got %v", err)
	}
	if ok {
		t.Error("unknown doctor must not be consulting anyone")
	}
}

func TestAddAndRemoveConsultation(t *testing.T) {
	ctx := context.Background()
	registry := NewRegistry(newMemRepo())
	doctor := uuid.New()
	patient := uuid.New()

	if err := registry.AddConsultation(ctx, doctor, patient); err != nil {
		t.Fatalf("add: %v", err)
	}
	ok, err := registry.IsConsulting(ctx, doctor, patient)
	if err != nil || !ok {
		t.Fatalf("expected consulting after add, got ok=%v err=%v", ok, err)
	}

	// The link is doctor-owned: another doctor gains nothing from it.
	ok, _ = registry.IsConsulting(ctx, uuid.New(), patient)
	if ok {
		t.Error("consultation link must not leak to other doctors")
	}

	if err := registry.RemoveConsultation(ctx, doctor, patient); err != nil {
		t.Fatalf("remove: %v", err)
	}
	ok, _ = registry.IsConsulting(ctx, doctor, patient)
	if ok {
		t.Error("expected not consulting after remove")
	}
}

func TestConsultedPatientsSorted(t *testing.T) {
	ctx := context.Background()
	registry := NewRegistry(newMemRepo())
	doctor := uuid.New()

	for i := 0; i < 5; i++ {
		if err := registry.AddConsultation(ctx, doctor, uuid.New()); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	patients, err := registry.ConsultedPatients(ctx, doctor)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(patients) != 5 {
		t.Fatalf("expected 5 patients, got %d", len(patients))
	}
	for i := 1; i < len(patients); i++ {
		if patients[i-1].String() >= patients[i].String() {
			t.Errorf("patients not sorted at index %d", i)
		}
	}
}

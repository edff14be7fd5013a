package access

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/carechart/carechart/internal/platform/auth"
)

// fakeRegistry is a mutable doctor→patients edge set.
type fakeRegistry struct {
	links map[uuid.UUID]map[uuid.UUID]struct{}
	err   error
}

func (f *fakeRegistry) IsConsulting(ctx context.Context, doctorID, patientID uuid.UUID) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.links[doctorID][patientID]
	return ok, nil
}

func (f *fakeRegistry) link(doctorID, patientID uuid.UUID) {
	if f.links == nil {
		f.links = make(map[uuid.UUID]map[uuid.UUID]struct{})
	}
	if f.links[doctorID] == nil {
		f.links[doctorID] = make(map[uuid.UUID]struct{})
	}
	f.links[doctorID][patientID] = struct{}{}
}

func TestAuthorize(t *testing.T) {
	patient1 := uuid.New()
	patient2 := uuid.New()
	doctor1 := uuid.New()
	unknownDoctor := uuid.New()

	registry := &fakeRegistry{}
	registry.link(doctor1, patient1)
	guard := NewGuard(registry)

	tests := []struct {
		name      string
		actor     auth.Actor
		patientID uuid.UUID
		op        Operation
		want      bool
	}{
		{"patient reads own vitals", auth.Actor{ID: patient1, Role: auth.RolePatient}, patient1, OpVitalsRead, true},
		{"patient reads own files", auth.Actor{ID: patient1, Role: auth.RolePatient}, patient1, OpFilesRead, true},
		{"patient reads own notes", auth.Actor{ID: patient1, Role: auth.RolePatient}, patient1, OpNotesRead, true},
		{"patient reads own prescriptions", auth.Actor{ID: patient1, Role: auth.RolePatient}, patient1, OpPrescriptionsRead, true},
		{"patient reads own merged record", auth.Actor{ID: patient1, Role: auth.RolePatient}, patient1, OpRecordRead, true},
		{"patient writes note for self", auth.Actor{ID: patient1, Role: auth.RolePatient}, patient1, OpNotesWrite, false},
		{"patient writes prescription for self", auth.Actor{ID: patient1, Role: auth.RolePatient}, patient1, OpPrescriptionsWrite, false},
		{"patient summarizes own record", auth.Actor{ID: patient1, Role: auth.RolePatient}, patient1, OpRecordSummarize, false},
		{"patient reads another patient", auth.Actor{ID: patient1, Role: auth.RolePatient}, patient2, OpVitalsRead, false},
		{"consulting doctor reads", auth.Actor{ID: doctor1, Role: auth.RoleDoctor}, patient1, OpVitalsRead, true},
		{"consulting doctor writes note", auth.Actor{ID: doctor1, Role: auth.RoleDoctor}, patient1, OpNotesWrite, true},
		{"consulting doctor summarizes", auth.Actor{ID: doctor1, Role: auth.RoleDoctor}, patient1, OpRecordSummarize, true},
		{"doctor without link writes note", auth.Actor{ID: doctor1, Role: auth.RoleDoctor}, patient2, OpNotesWrite, false},
		{"doctor without link reads", auth.Actor{ID: doctor1, Role: auth.RoleDoctor}, patient2, OpVitalsRead, false},
		{"unknown doctor denied", auth.Actor{ID: unknownDoctor, Role: auth.RoleDoctor}, patient1, OpVitalsRead, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision, err := guard.Authorize(context.Background(), tt.actor, tt.patientID, tt.op)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if decision.Allowed != tt.want {
				t.Errorf("Authorize() allowed = %v, want %v", decision.Allowed, tt.want)
			}
			if !decision.Allowed && decision.Reason != ReasonNotAuthorized {
				t.Errorf("denial reason = %q, want %q", decision.Reason, ReasonNotAuthorized)
			}
		})
	}
}

func TestAuthorizeRevocationTakesEffectImmediately(t *testing.T) {
	doctor := uuid.New()
	patient := uuid.New()
	registry := &fakeRegistry{}
	registry.link(doctor, patient)
	guard := NewGuard(registry)
	actor := auth.Actor{ID: doctor, Role: auth.RoleDoctor}

	decision, err := guard.Authorize(context.Background(), actor, patient, OpNotesWrite)
	if err != nil || !decision.Allowed {
		t.Fatalf("expected allow before revocation, got %+v err=%v", decision, err)
	}

	delete(registry.links[doctor], patient)

	decision, err = guard.Authorize(context.Background(), actor, patient, OpNotesWrite)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Allowed {
		t.Error("expected deny immediately after revocation; decisions must not be cached")
	}
}

func TestAuthorizeRegistryError(t *testing.T) {
	registry := &fakeRegistry{err: errors.New("store down")}
	guard := NewGuard(registry)
	actor := auth.Actor{ID: uuid.New(), Role: auth.RoleDoctor}

	decision, err := guard.Authorize(context.Background(), actor, uuid.New(), OpVitalsRead)
	if err == nil {
		t.Fatal("expected error when registry lookup fails")
	}
	if decision.Allowed {
		t.Error("registry failure must not grant access")
	}
}

func TestOperationReadOnly(t *testing.T) {
	readOnly := []Operation{OpVitalsRead, OpFilesRead, OpNotesRead, OpPrescriptionsRead, OpRecordRead}
	for _, op := range readOnly {
		if !op.ReadOnly() {
			t.Errorf("%s should be read-only", op)
		}
	}
	writes := []Operation{OpNotesWrite, OpPrescriptionsWrite, OpRecordSummarize}
	for _, op := range writes {
		if op.ReadOnly() {
			t.Errorf("%s should not be read-only", op)
		}
	}
}

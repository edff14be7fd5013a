package record

import (
	"context"

	"github.com/google/uuid"
)

// Each variant has its own store. ListByPatient returns the patient's
// entries ordered ascending by creation time; the aggregator relies on that
// ordering and never re-sorts. An unknown patient yields an empty slice.

type VitalStore interface {
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Vital, error)
}

type NoteStore interface {
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Note, error)
	Create(ctx context.Context, n *Note) error
}

type FileStore interface {
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*FileMeta, error)
}

type PrescriptionStore interface {
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Prescription, error)
	Create(ctx context.Context, p *Prescription) error
}

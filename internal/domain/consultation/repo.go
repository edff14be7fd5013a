package consultation

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the doctor-owned consultation edge store. Edges are keyed by
// doctor id; there is no patient-side mirror to keep consistent.
type Repository interface {
	// GetConsultedPatients returns the set of patient ids the doctor
	// currently consults. An unknown doctor yields an empty set, not an
	// error.
	GetConsultedPatients(ctx context.Context, doctorID uuid.UUID) (map[uuid.UUID]struct{}, error)
	Add(ctx context.Context, doctorID, patientID uuid.UUID) error
	Remove(ctx context.Context, doctorID, patientID uuid.UUID) error
}

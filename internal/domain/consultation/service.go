package consultation

import (
	"context"
	"sort"

	"github.com/google/uuid"
)

// Registry answers the single question authorization needs: does this doctor
// currently consult this patient? Lookups hit the store every time; nothing
// is cached, so a revoked link takes effect on the next call.
type Registry struct {
	repo Repository
}

func NewRegistry(repo Repository) *Registry {
	return &Registry{repo: repo}
}

// IsConsulting reports whether patientID is in the doctor's consulted set.
// An unresolved doctor is simply "not consulting", never a fault.
func (r *Registry) IsConsulting(ctx context.Context, doctorID, patientID uuid.UUID) (bool, error) {
	set, err := r.repo.GetConsultedPatients(ctx, doctorID)
	if err != nil {
		return false, err
	}
	_, ok := set[patientID]
	return ok, nil
}

// ConsultedPatients returns the doctor's consulted set as a sorted slice.
func (r *Registry) ConsultedPatients(ctx context.Context, doctorID uuid.UUID) ([]uuid.UUID, error) {
	set, err := r.repo.GetConsultedPatients(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	out := make([]uuid.UUID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out, nil
}

// AddConsultation links a patient into the doctor's own consulted set.
func (r *Registry) AddConsultation(ctx context.Context, doctorID, patientID uuid.UUID) error {
	return r.repo.Add(ctx, doctorID, patientID)
}

// RemoveConsultation revokes the link. Subsequent authorization checks for
// the pair deny immediately.
func (r *Registry) RemoveConsultation(ctx context.Context, doctorID, patientID uuid.UUID) error {
	return r.repo.Remove(ctx, doctorID, patientID)
}

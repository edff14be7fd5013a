package consultation

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) GetConsultedPatients(ctx context.Context, doctorID uuid.UUID) (map[uuid.UUID]struct{}, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT patient_id FROM consultations WHERE doctor_id = $1`, doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	set := make(map[uuid.UUID]struct{})
	for rows.Next() {
		var pid uuid.UUID
		if err := rows.Scan(&pid); err != nil {
			return nil, err
		}
		set[pid] = struct{}{}
	}
	return set, rows.Err()
}

func (r *repoPG) Add(ctx context.Context, doctorID, patientID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO consultations (doctor_id, patient_id)
		VALUES ($1, $2)
		ON CONFLICT (doctor_id, patient_id) DO NOTHING`,
		doctorID, patientID)
	return err
}

func (r *repoPG) Remove(ctx context.Context, doctorID, patientID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM consultations WHERE doctor_id = $1 AND patient_id = $2`,
		doctorID, patientID)
	return err
}

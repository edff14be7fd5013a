package record

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres implementations of the per-variant stores. All list queries
// order by created_at with id as a stable tie-break so repeated reads of
// the same data produce the same sequence.

type vitalRepoPG struct{ pool *pgxpool.Pool }

func NewVitalRepoPG(pool *pgxpool.Pool) VitalStore {
	return &vitalRepoPG{pool: pool}
}

func (r *vitalRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Vital, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, patient_id, bp_systolic, bp_diastolic, heart_rate_bpm,
			temperature_celsius, weight_kg, oxygen_saturation, respiratory_rate_bpm,
			created_at
		FROM vitals WHERE patient_id = $1
		ORDER BY created_at ASC, id ASC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Vital
	for rows.Next() {
		var v Vital
		if err := rows.Scan(&v.ID, &v.PatientID, &v.BPSystolic, &v.BPDiastolic, &v.HeartRateBPM,
			&v.TemperatureCelsius, &v.WeightKg, &v.OxygenSaturation, &v.RespiratoryRateBPM,
			&v.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &v)
	}
	return out, rows.Err()
}

type noteRepoPG struct{ pool *pgxpool.Pool }

func NewNoteRepoPG(pool *pgxpool.Pool) NoteStore {
	return &noteRepoPG{pool: pool}
}

func (r *noteRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Note, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT n.id, n.patient_id, n.doctor_id, d.name, n.content, n.created_at
		FROM notes n
		LEFT JOIN doctors d ON d.id = n.doctor_id
		WHERE n.patient_id = $1
		ORDER BY n.created_at ASC, n.id ASC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Note
	for rows.Next() {
		var n Note
		if err := rows.Scan(&n.ID, &n.PatientID, &n.DoctorID, &n.DoctorName, &n.Content, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &n)
	}
	return out, rows.Err()
}

func (r *noteRepoPG) Create(ctx context.Context, n *Note) error {
	n.ID = uuid.New()
	return r.pool.QueryRow(ctx, `
		INSERT INTO notes (id, patient_id, doctor_id, content)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`,
		n.ID, n.PatientID, n.DoctorID, n.Content).Scan(&n.CreatedAt)
}

type fileRepoPG struct{ pool *pgxpool.Pool }

func NewFileRepoPG(pool *pgxpool.Pool) FileStore {
	return &fileRepoPG{pool: pool}
}

func (r *fileRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*FileMeta, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, patient_id, file_name, content_type, storage_key, size_bytes, created_at
		FROM files WHERE patient_id = $1
		ORDER BY created_at ASC, id ASC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*FileMeta
	for rows.Next() {
		var f FileMeta
		if err := rows.Scan(&f.ID, &f.PatientID, &f.FileName, &f.ContentType, &f.StorageKey,
			&f.SizeBytes, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &f)
	}
	return out, rows.Err()
}

type prescriptionRepoPG struct{ pool *pgxpool.Pool }

func NewPrescriptionRepoPG(pool *pgxpool.Pool) PrescriptionStore {
	return &prescriptionRepoPG{pool: pool}
}

func (r *prescriptionRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Prescription, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.id, p.patient_id, p.doctor_id, d.name, p.medications, p.instructions, p.created_at
		FROM prescriptions p
		LEFT JOIN doctors d ON d.id = p.doctor_id
		WHERE p.patient_id = $1
		ORDER BY p.created_at ASC, p.id ASC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Prescription
	for rows.Next() {
		var p Prescription
		var meds []byte
		if err := rows.Scan(&p.ID, &p.PatientID, &p.DoctorID, &p.DoctorName, &meds,
			&p.Instructions, &p.CreatedAt); err != nil {
			return nil, err
		}
		if len(meds) > 0 {
			if err := json.Unmarshal(meds, &p.Medications); err != nil {
				return nil, fmt.Errorf("decode medications for prescription %s: %w", p.ID, err)
			}
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

func (r *prescriptionRepoPG) Create(ctx context.Context, p *Prescription) error {
	p.ID = uuid.New()
	meds, err := json.Marshal(p.Medications)
	if err != nil {
		return fmt.Errorf("encode medications: %w", err)
	}
	return r.pool.QueryRow(ctx, `
		INSERT INTO prescriptions (id, patient_id, doctor_id, medications, instructions)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		p.ID, p.PatientID, p.DoctorID, meds, p.Instructions).Scan(&p.CreatedAt)
}

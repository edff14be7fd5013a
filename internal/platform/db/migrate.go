package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema is the full DDL for the service. Statements are idempotent so
// Migrate can run on every start.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS patients (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		birth_date DATE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS doctors (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		specialty TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS consultations (
		doctor_id UUID NOT NULL REFERENCES doctors(id) ON DELETE CASCADE,
		patient_id UUID NOT NULL REFERENCES patients(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (doctor_id, patient_id)
	)`,
	`CREATE TABLE IF NOT EXISTS vitals (
		id UUID PRIMARY KEY,
		patient_id UUID NOT NULL REFERENCES patients(id) ON DELETE CASCADE,
		bp_systolic INTEGER,
		bp_diastolic INTEGER,
		heart_rate_bpm INTEGER,
		temperature_celsius DOUBLE PRECISION,
		weight_kg DOUBLE PRECISION,
		oxygen_saturation DOUBLE PRECISION,
		respiratory_rate_bpm INTEGER,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS notes (
		id UUID PRIMARY KEY,
		patient_id UUID NOT NULL REFERENCES patients(id) ON DELETE CASCADE,
		doctor_id UUID NOT NULL REFERENCES doctors(id),
		content TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS files (
		id UUID PRIMARY KEY,
		patient_id UUID NOT NULL REFERENCES patients(id) ON DELETE CASCADE,
		file_name TEXT NOT NULL,
		content_type TEXT NOT NULL DEFAULT 'application/octet-stream',
		storage_key TEXT NOT NULL,
		size_bytes BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS prescriptions (
		id UUID PRIMARY KEY,
		patient_id UUID NOT NULL REFERENCES patients(id) ON DELETE CASCADE,
		doctor_id UUID NOT NULL REFERENCES doctors(id),
		medications JSONB NOT NULL,
		instructions TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_vitals_patient_created ON vitals (patient_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_notes_patient_created ON notes (patient_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_files_patient_created ON files (patient_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_prescriptions_patient_created ON prescriptions (patient_id, created_at)`,
}

// Migrate applies the schema.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

package record

import (
	"time"

	"github.com/google/uuid"
)

// Kind tags the record variants. The declaration order is the merge
// precedence used to break cross-variant timestamp ties; it is fixed for
// reproducibility and carries no clinical meaning.
type Kind int

const (
	KindVital Kind = iota
	KindNote
	KindFileMeta
	KindPrescription
)

func (k Kind) String() string {
	switch k {
	case KindVital:
		return "vitals"
	case KindNote:
		return "notes"
	case KindFileMeta:
		return "files"
	case KindPrescription:
		return "prescriptions"
	}
	return "unknown"
}

// Entry is the tagged sum over the record variants. Every entry belongs to
// one patient and is immutable once created; this service only reads them.
type Entry interface {
	EntryKind() Kind
	EntryTime() time.Time
}

// Vital is one set of measurements, recorded by the patient or a device.
// Absent measurements are nil, not zero.
type Vital struct {
	ID                 uuid.UUID `db:"id" json:"id"`
	PatientID          uuid.UUID `db:"patient_id" json:"patient_id"`
	BPSystolic         *int      `db:"bp_systolic" json:"bp_systolic,omitempty"`
	BPDiastolic        *int      `db:"bp_diastolic" json:"bp_diastolic,omitempty"`
	HeartRateBPM       *int      `db:"heart_rate_bpm" json:"heart_rate_bpm,omitempty"`
	TemperatureCelsius *float64  `db:"temperature_celsius" json:"temperature_celsius,omitempty"`
	WeightKg           *float64  `db:"weight_kg" json:"weight_kg,omitempty"`
	OxygenSaturation   *float64  `db:"oxygen_saturation" json:"oxygen_saturation,omitempty"`
	RespiratoryRateBPM *int      `db:"respiratory_rate_bpm" json:"respiratory_rate_bpm,omitempty"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
}

func (v *Vital) EntryKind() Kind      { return KindVital }
func (v *Vital) EntryTime() time.Time { return v.CreatedAt }

// Note is a free-text clinical note authored by a doctor.
type Note struct {
	ID         uuid.UUID `db:"id" json:"id"`
	PatientID  uuid.UUID `db:"patient_id" json:"patient_id"`
	DoctorID   uuid.UUID `db:"doctor_id" json:"doctor_id"`
	DoctorName *string   `db:"doctor_name" json:"doctor_name,omitempty"`
	Content    string    `db:"content" json:"content"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

func (n *Note) EntryKind() Kind      { return KindNote }
func (n *Note) EntryTime() time.Time { return n.CreatedAt }

// FileMeta references an uploaded file. Only metadata is ever read here;
// file contents never enter a timeline or a summary prompt.
type FileMeta struct {
	ID          uuid.UUID `db:"id" json:"id"`
	PatientID   uuid.UUID `db:"patient_id" json:"patient_id"`
	FileName    string    `db:"file_name" json:"file_name"`
	ContentType string    `db:"content_type" json:"content_type"`
	StorageKey  string    `db:"storage_key" json:"-"`
	SizeBytes   int64     `db:"size_bytes" json:"size_bytes"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

func (f *FileMeta) EntryKind() Kind      { return KindFileMeta }
func (f *FileMeta) EntryTime() time.Time { return f.CreatedAt }

// Medication is one line of a prescription.
type Medication struct {
	Name   string `json:"name"`
	Dosage string `json:"dosage"`
}

// Prescription is a medication list with instructions, authored by a doctor.
type Prescription struct {
	ID           uuid.UUID    `db:"id" json:"id"`
	PatientID    uuid.UUID    `db:"patient_id" json:"patient_id"`
	DoctorID     uuid.UUID    `db:"doctor_id" json:"doctor_id"`
	DoctorName   *string      `db:"doctor_name" json:"doctor_name,omitempty"`
	Medications  []Medication `db:"medications" json:"medications"`
	Instructions string       `db:"instructions" json:"instructions"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
}

func (p *Prescription) EntryKind() Kind      { return KindPrescription }
func (p *Prescription) EntryTime() time.Time { return p.CreatedAt }

// Timeline is the request-scoped, globally time-ordered merge of one
// patient's record entries. It is never persisted.
type Timeline []Entry

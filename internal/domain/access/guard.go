package access

import (
	"context"

	"github.com/google/uuid"

	"github.com/carechart/carechart/internal/platform/auth"
)

// Operation names something an actor can do against one patient's record.
type Operation string

const (
	OpVitalsRead         Operation = "vitals:read"
	OpFilesRead          Operation = "files:read"
	OpNotesRead          Operation = "notes:read"
	OpNotesWrite         Operation = "notes:write"
	OpPrescriptionsRead  Operation = "prescriptions:read"
	OpPrescriptionsWrite Operation = "prescriptions:write"
	OpRecordRead         Operation = "record:read"
	OpRecordSummarize    Operation = "record:summarize"
)

// ReadOnly reports whether the operation only reads the patient's record.
// Summarization is not read-only: it exports the record to an external
// service, so patient-self access does not cover it.
func (op Operation) ReadOnly() bool {
	switch op {
	case OpVitalsRead, OpFilesRead, OpNotesRead, OpPrescriptionsRead, OpRecordRead:
		return true
	}
	return false
}

// ReasonNotAuthorized is the single denial reason surfaced to callers. The
// guard does not distinguish "unknown doctor" from "no consultation link",
// so denials leak no existence information.
const ReasonNotAuthorized = "not authorized"

// Decision is the outcome of an authorization check.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision             { return Decision{Allowed: true} }
func deny(reason string) Decision { return Decision{Allowed: false, Reason: reason} }

// ConsultationChecker is the slice of the consultation registry the guard
// depends on.
type ConsultationChecker interface {
	IsConsulting(ctx context.Context, doctorID, patientID uuid.UUID) (bool, error)
}

// Guard decides, per operation, whether an actor may touch a patient's
// record. Decisions are pure functions over current registry state and are
// re-evaluated on every call; consultation links can change between
// requests, so nothing is cached.
type Guard struct {
	registry ConsultationChecker
}

func NewGuard(registry ConsultationChecker) *Guard {
	return &Guard{registry: registry}
}

// Authorize evaluates the access rules in order:
//
//  1. A patient acting on their own record is allowed read-only operations,
//     regardless of any consultation link. Writes are never allowed on this
//     path.
//  2. A doctor consulting the patient is allowed both reads and writes,
//     including summarization.
//  3. Everything else is denied.
//
// The error return is reserved for registry lookup failures; a denial is a
// Decision, not an error.
func (g *Guard) Authorize(ctx context.Context, actor auth.Actor, patientID uuid.UUID, op Operation) (Decision, error) {
	switch actor.Role {
	case auth.RolePatient:
		if actor.ID == patientID && op.ReadOnly() {
			return allow(), nil
		}
	case auth.RoleDoctor:
		consulting, err := g.registry.IsConsulting(ctx, actor.ID, patientID)
		if err != nil {
			return deny(ReasonNotAuthorized), err
		}
		if consulting {
			return allow(), nil
		}
	}
	return deny(ReasonNotAuthorized), nil
}

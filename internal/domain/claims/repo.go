package claims

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SectionSnapshot is one persisted build of the claim's submission sections,
// kept for audit/replay.
type SectionSnapshot struct {
	ID       uuid.UUID `db:"id" json:"id"`
	ClaimID  uuid.UUID `db:"claim_id" json:"claim_id"`
	Sections Sections  `db:"sections" json:"sections"`
	BuiltBy  string    `db:"built_by" json:"built_by"`
	BuiltAt  time.Time `db:"built_at" json:"built_at"`
}

type Repository interface {
	Create(ctx context.Context, cl *Claim) error
	GetByID(ctx context.Context, id uuid.UUID) (*Claim, error)
	GetByAdmissionID(ctx context.Context, admissionID uuid.UUID) (*Claim, error)
	Update(ctx context.Context, cl *Claim) error

	// Diagnoses
	AddDiagnosis(ctx context.Context, d *ClaimDiagnosis) error
	ListDiagnoses(ctx context.Context, claimID uuid.UUID) ([]*ClaimDiagnosis, error)

	// Treatments
	AddTreatment(ctx context.Context, t *ClaimTreatment) error
	GetTreatment(ctx context.Context, id uuid.UUID) (*ClaimTreatment, error)
	UpdateTreatment(ctx context.Context, t *ClaimTreatment) error
	ListTreatments(ctx context.Context, claimID uuid.UUID) ([]*ClaimTreatment, error)

	// Section snapshots
	SaveSnapshot(ctx context.Context, snap *SectionSnapshot) error
	LatestSnapshot(ctx context.Context, claimID uuid.UUID) (*SectionSnapshot, error)
}

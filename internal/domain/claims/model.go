package claims

import (
	"time"

	"github.com/google/uuid"

	"github.com/hmo/claims/internal/platform/respond"
)

// Claim statuses. The claim moves forward through the pipeline; a new
// diagnosis can drop a validated claim back to classified.
const (
	StatusUnclassified = "unclassified"
	StatusClassified   = "classified"
	StatusValidated    = "validated"
	StatusSectioned    = "sectioned"
)

// Treatment classifications. Empty means not yet classified.
const (
	ClassificationBundle = "bundle"
	ClassificationFFS    = "ffs"
)

// Conversion reasons for bundle→FFS moves. A nil reason on an FFS line means
// the item simply was not part of the bundle; an explicit reason records a
// forced conversion.
const (
	ReasonComplication         = "complication"
	ReasonSecondaryDiagnosis   = "secondary_diagnosis"
	ReasonExtendedStay         = "extended_stay"
	ReasonEmergencyProcedure   = "emergency_procedure"
	ReasonExtraDiagnostics     = "extra_diagnostics"
	ReasonAdditionalMedication = "additional_medication"
	ReasonSpecialistReview     = "specialist_review"
	ReasonConsumables          = "consumables"
)

var validConversionReasons = map[string]bool{
	ReasonComplication:         true,
	ReasonSecondaryDiagnosis:   true,
	ReasonExtendedStay:         true,
	ReasonEmergencyProcedure:   true,
	ReasonExtraDiagnostics:     true,
	ReasonAdditionalMedication: true,
	ReasonSpecialistReview:     true,
	ReasonConsumables:          true,
}

// Claim maps to the claim table: the billable unit tied 1:1 to an admission.
// Totals are derived by the classification engine, never set by callers.
type Claim struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	AdmissionID uuid.UUID  `db:"admission_id" json:"admission_id"`
	EnrolleeID  uuid.UUID  `db:"enrollee_id" json:"enrollee_id"`
	Status      string     `db:"status" json:"status"`
	BundleID    *uuid.UUID `db:"bundle_id" json:"bundle_id,omitempty"`
	BundleTotal float64    `db:"bundle_total" json:"bundle_total"`
	FFSTotal    float64    `db:"ffs_total" json:"ffs_total"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// ClaimDiagnosis maps to the claim_diagnosis table.
type ClaimDiagnosis struct {
	ID             uuid.UUID `db:"id" json:"id"`
	ClaimID        uuid.UUID `db:"claim_id" json:"claim_id"`
	ICD10Code      string    `db:"icd10_code" json:"icd10_code"`
	Description    string    `db:"description" json:"description"`
	IsComplication bool      `db:"is_complication" json:"is_complication"`
	DiagnosedAt    time.Time `db:"diagnosed_at" json:"diagnosed_at"`
}

// ClaimTreatment maps to the claim_treatment table: one rendered service line.
type ClaimTreatment struct {
	ID               uuid.UUID `db:"id" json:"id"`
	ClaimID          uuid.UUID `db:"claim_id" json:"claim_id"`
	ServiceItemID    uuid.UUID `db:"service_item_id" json:"service_item_id"`
	Classification   string    `db:"classification" json:"classification"`
	ConversionReason *string   `db:"conversion_reason" json:"conversion_reason,omitempty"`
	UnitPrice        float64   `db:"unit_price" json:"unit_price"`
	Quantity         int       `db:"quantity" json:"quantity"`
	LineTotal        float64   `db:"line_total" json:"line_total"`
	RecordedAt       time.Time `db:"recorded_at" json:"recorded_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// IsClassified reports whether the line has been through classification.
func (t *ClaimTreatment) IsClassified() bool {
	return t.Classification != ""
}

// ValidConversionReason reports whether reason is one of the closed set.
func ValidConversionReason(reason string) bool {
	return validConversionReasons[reason]
}

// ConvertToFFS moves a line to fee-for-service with an explicit reason. The
// move is one-directional: a line already on FFS is never converted again,
// and there is no path back to bundle.
func (t *ClaimTreatment) ConvertToFFS(reason string) error {
	if !ValidConversionReason(reason) {
		return respond.NewValidationError("invalid conversion reason",
			"reason", "must be a recognized bundle-to-ffs conversion reason")
	}
	if t.Classification == ClassificationFFS {
		return respond.NewConflictError("treatment is already fee-for-service", t)
	}
	t.Classification = ClassificationFFS
	t.ConversionReason = &reason
	return nil
}

package admission

import (
	"time"

	"github.com/google/uuid"

	"github.com/hmo/claims/internal/platform/respond"
)

// Admission statuses.
const (
	StatusActive     = "active"
	StatusDischarged = "discharged"
)

// Admission types.
const (
	TypeElective  = "elective"
	TypeEmergency = "emergency"
	TypeTransfer  = "transfer"
)

// Admission maps to the admission table: one hospital stay for one enrollee
// at one facility. At most one active admission per enrollee, enforced by a
// partial unique index on (enrollee_id) WHERE status = 'active'.
type Admission struct {
	ID                     uuid.UUID  `db:"id" json:"id"`
	EnrolleeID             uuid.UUID  `db:"enrollee_id" json:"enrollee_id"`
	FacilityID             uuid.UUID  `db:"facility_id" json:"facility_id"`
	ReferralID             *uuid.UUID `db:"referral_id" json:"referral_id,omitempty"`
	PACodeID               *uuid.UUID `db:"pa_code_id" json:"pa_code_id,omitempty"`
	Status                 string     `db:"status" json:"status"`
	AdmissionType          string     `db:"admission_type" json:"admission_type"`
	PrincipalDiagnosisCode string     `db:"principal_diagnosis_code" json:"principal_diagnosis_code"`
	PrincipalDiagnosisDesc string     `db:"principal_diagnosis_desc" json:"principal_diagnosis_desc"`
	WardType               string     `db:"ward_type" json:"ward_type"`
	PlannedWardDays        int        `db:"planned_ward_days" json:"planned_ward_days"`
	ActualWardDays         *int       `db:"actual_ward_days" json:"actual_ward_days,omitempty"`
	AttendingPhysicianID   *uuid.UUID `db:"attending_physician_id" json:"attending_physician_id,omitempty"`
	AttendingPhysicianName string     `db:"attending_physician_name" json:"attending_physician_name"`
	AdmittedAt             time.Time  `db:"admitted_at" json:"admitted_at"`
	DischargedAt           *time.Time `db:"discharged_at" json:"discharged_at,omitempty"`
	DischargeSummary       *string    `db:"discharge_summary" json:"discharge_summary,omitempty"`
	DischargeDiagnosis     *string    `db:"discharge_diagnosis" json:"discharge_diagnosis,omitempty"`
	CreatedBy              string     `db:"created_by" json:"created_by"`
	CreatedAt              time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt              time.Time  `db:"updated_at" json:"updated_at"`
}

// IsActive reports whether the stay is still open.
func (a *Admission) IsActive() bool {
	return a.Status == StatusActive
}

// DischargeInput carries the discharge-time fields.
type DischargeInput struct {
	Summary            string `json:"summary" validate:"required"`
	DischargeDiagnosis string `json:"discharge_diagnosis"`
	ActualWardDays     *int   `json:"actual_ward_days"`
}

// Discharge transitions the admission to discharged. The transition is only
// legal from active; discharged admissions are immutable.
func (a *Admission) Discharge(in DischargeInput, now time.Time) error {
	if !a.IsActive() {
		return respond.NewConflictError("admission is not active", a)
	}
	a.Status = StatusDischarged
	a.DischargedAt = &now
	a.DischargeSummary = &in.Summary
	if in.DischargeDiagnosis != "" {
		a.DischargeDiagnosis = &in.DischargeDiagnosis
	}
	if in.ActualWardDays != nil {
		a.ActualWardDays = in.ActualWardDays
	} else {
		days := int(now.Sub(a.AdmittedAt).Hours() / 24)
		if days < 1 {
			days = 1
		}
		a.ActualWardDays = &days
	}
	return nil
}

package claims

import (
	"time"

	"github.com/google/uuid"
)

// SectionA carries the admission/identification part of the submission.
type SectionA struct {
	AdmissionID            uuid.UUID  `json:"admission_id"`
	EnrolleeID             uuid.UUID  `json:"enrollee_id"`
	FacilityID             uuid.UUID  `json:"facility_id"`
	ReferralID             *uuid.UUID `json:"referral_id,omitempty"`
	AdmissionType          string     `json:"admission_type"`
	WardType               string     `json:"ward_type"`
	AdmittedAt             time.Time  `json:"admitted_at"`
	DischargedAt           *time.Time `json:"discharged_at,omitempty"`
	PlannedWardDays        int        `json:"planned_ward_days"`
	ActualWardDays         *int       `json:"actual_ward_days,omitempty"`
	AttendingPhysicianName string     `json:"attending_physician_name"`
	PrincipalDiagnosisCode string     `json:"principal_diagnosis_code"`
	PrincipalDiagnosisDesc string     `json:"principal_diagnosis_desc"`
}

type DiagnosisLine struct {
	ICD10Code      string    `json:"icd10_code"`
	Description    string    `json:"description"`
	IsComplication bool      `json:"is_complication"`
	DiagnosedAt    time.Time `json:"diagnosed_at"`
}

type TreatmentLine struct {
	ServiceCode      string  `json:"service_code"`
	ServiceName      string  `json:"service_name"`
	Classification   string  `json:"classification"`
	ConversionReason *string `json:"conversion_reason,omitempty"`
	Quantity         int     `json:"quantity"`
	UnitPrice        float64 `json:"unit_price"`
	LineTotal        float64 `json:"line_total"`
}

// SectionB carries the clinical part: diagnoses and classified treatments.
type SectionB struct {
	Diagnoses  []DiagnosisLine `json:"diagnoses"`
	Treatments []TreatmentLine `json:"treatments"`
}

// SectionC carries the financial and compliance summary.
type SectionC struct {
	BundleCode       string  `json:"bundle_code,omitempty"`
	BundleTotal      float64 `json:"bundle_total"`
	FFSTotal         float64 `json:"ffs_total"`
	GrandTotal       float64 `json:"grand_total"`
	OpenAlerts       int     `json:"open_alerts"`
	CriticalAlerts   int     `json:"critical_alerts"`
	MissingPACount   int     `json:"missing_pa_count"`
	CompliancePassed bool    `json:"compliance_passed"`
}

// Sections is the ordered A/B/C submission projection of a claim.
type Sections struct {
	A SectionA `json:"section_a"`
	B SectionB `json:"section_b"`
	C SectionC `json:"section_c"`
}

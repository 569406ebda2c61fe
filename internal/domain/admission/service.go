package admission

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hmo/claims/internal/domain/referral"
	"github.com/hmo/claims/internal/platform/db"
	"github.com/hmo/claims/internal/platform/respond"
)

// UniqueActiveConstraint is the partial unique index backing the
// one-active-admission-per-enrollee invariant.
const UniqueActiveConstraint = "admission_one_active_per_enrollee"

var validAdmissionTypes = map[string]bool{
	TypeElective:  true,
	TypeEmergency: true,
	TypeTransfer:  true,
}

// ClaimCreator bootstraps the admission's claim. Implemented by the claims
// service; declared here to keep the dependency one-directional.
type ClaimCreator interface {
	CreateForAdmission(ctx context.Context, admissionID, enrolleeID uuid.UUID, bundleID *uuid.UUID) error
}

type Service struct {
	repo      Repository
	referrals referral.Repository
	claims    ClaimCreator
	runTx     db.TxRunner
	now       func() time.Time
}

func NewService(repo Repository, referrals referral.Repository, claims ClaimCreator, runTx db.TxRunner) *Service {
	return &Service{repo: repo, referrals: referrals, claims: claims, runTx: runTx, now: time.Now}
}

// AdmitCheck is the result of CanAdmit.
type AdmitCheck struct {
	CanAdmit        bool       `json:"can_admit"`
	Reason          string     `json:"reason,omitempty"`
	ActiveAdmission *Admission `json:"active_admission,omitempty"`
}

// CanAdmit reports whether the enrollee can be admitted. When an active
// admission exists it is attached for caller display. No side effects; the
// authoritative guard is the unique index checked at insert time.
func (s *Service) CanAdmit(ctx context.Context, enrolleeID uuid.UUID) (*AdmitCheck, error) {
	active, err := s.repo.GetActiveByEnrollee(ctx, enrolleeID)
	if err != nil {
		if db.IsNoRows(err) {
			return &AdmitCheck{CanAdmit: true}, nil
		}
		return nil, err
	}
	return &AdmitCheck{
		CanAdmit:        false,
		Reason:          "enrollee already has an active admission",
		ActiveAdmission: active,
	}, nil
}

// CreateInput carries the admission-time fields.
type CreateInput struct {
	EnrolleeID             uuid.UUID  `json:"enrollee_id" validate:"required"`
	FacilityID             uuid.UUID  `json:"facility_id" validate:"required"`
	ReferralID             *uuid.UUID `json:"referral_id"`
	PACodeID               *uuid.UUID `json:"pa_code_id"`
	AdmissionType          string     `json:"admission_type" validate:"required"`
	PrincipalDiagnosisCode string     `json:"principal_diagnosis_code" validate:"required"`
	PrincipalDiagnosisDesc string     `json:"principal_diagnosis_desc"`
	WardType               string     `json:"ward_type" validate:"required"`
	PlannedWardDays        int        `json:"planned_ward_days" validate:"required,min=1"`
	AttendingPhysicianID   *uuid.UUID `json:"attending_physician_id"`
	AttendingPhysicianName string     `json:"attending_physician_name" validate:"required"`
	AdmittedAt             *time.Time `json:"admitted_at"`
}

// CreateAdmission persists a new active admission and bootstraps its claim in
// the same transaction. A referral, when given, must be approved with a valid
// UTN; its bundle carries over to the claim. The single-active invariant is
// enforced by the unique index, so a concurrent duplicate surfaces as a
// ConflictError rather than a second active stay.
func (s *Service) CreateAdmission(ctx context.Context, actor string, in *CreateInput) (*Admission, error) {
	if !validAdmissionTypes[in.AdmissionType] {
		return nil, respond.NewValidationError("invalid admission type",
			"admission_type", "must be one of elective, emergency, transfer")
	}

	var bundleID *uuid.UUID
	if in.ReferralID != nil {
		ref, err := s.referrals.GetByID(ctx, *in.ReferralID)
		if err != nil {
			if db.IsNoRows(err) {
				return nil, respond.NewNotFoundError("referral", in.ReferralID.String())
			}
			return nil, err
		}
		if ref.EnrolleeID != in.EnrolleeID {
			return nil, respond.NewValidationError("referral does not belong to the enrollee",
				"referral_id", "enrollee mismatch")
		}
		if !ref.Admissible() {
			return nil, respond.NewValidationError("referral is not admissible",
				"referral_id", "referral must be approved with a valid UTN")
		}
		bundleID = ref.BundleID
	}

	admittedAt := s.now().UTC()
	if in.AdmittedAt != nil {
		admittedAt = in.AdmittedAt.UTC()
	}

	adm := &Admission{
		EnrolleeID:             in.EnrolleeID,
		FacilityID:             in.FacilityID,
		ReferralID:             in.ReferralID,
		PACodeID:               in.PACodeID,
		Status:                 StatusActive,
		AdmissionType:          in.AdmissionType,
		PrincipalDiagnosisCode: in.PrincipalDiagnosisCode,
		PrincipalDiagnosisDesc: in.PrincipalDiagnosisDesc,
		WardType:               in.WardType,
		PlannedWardDays:        in.PlannedWardDays,
		AttendingPhysicianID:   in.AttendingPhysicianID,
		AttendingPhysicianName: in.AttendingPhysicianName,
		AdmittedAt:             admittedAt,
		CreatedBy:              actor,
	}

	err := s.runTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, adm); err != nil {
			return err
		}
		return s.claims.CreateForAdmission(ctx, adm.ID, adm.EnrolleeID, bundleID)
	})
	if err != nil {
		if db.IsUniqueViolation(err, UniqueActiveConstraint) {
			existing, lookupErr := s.repo.GetActiveByEnrollee(ctx, in.EnrolleeID)
			if lookupErr != nil {
				existing = nil
			}
			return nil, respond.NewConflictError("enrollee already has an active admission", existing)
		}
		return nil, err
	}
	return adm, nil
}

// DischargePatient transitions an active admission to discharged.
func (s *Service) DischargePatient(ctx context.Context, actor string, id uuid.UUID, in DischargeInput) (*Admission, error) {
	adm, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, respond.NewNotFoundError("admission", id.String())
		}
		return nil, err
	}
	if err := adm.Discharge(in, s.now().UTC()); err != nil {
		return nil, err
	}
	if err := s.runTx(ctx, func(ctx context.Context) error {
		return s.repo.Update(ctx, adm)
	}); err != nil {
		return nil, err
	}
	return adm, nil
}

func (s *Service) GetAdmission(ctx context.Context, id uuid.UUID) (*Admission, error) {
	adm, err := s.repo.GetByID(ctx, id)
	if err != nil && db.IsNoRows(err) {
		return nil, respond.NewNotFoundError("admission", id.String())
	}
	return adm, err
}

// GetAdmissionHistory returns the enrollee's admissions, newest first.
func (s *Service) GetAdmissionHistory(ctx context.Context, enrolleeID uuid.UUID, limit, offset int) ([]*Admission, int, error) {
	return s.repo.ListByEnrollee(ctx, enrolleeID, limit, offset)
}

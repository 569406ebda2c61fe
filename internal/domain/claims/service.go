package claims

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hmo/claims/internal/domain/admission"
	"github.com/hmo/claims/internal/domain/catalog"
	"github.com/hmo/claims/internal/domain/compliance"
	"github.com/hmo/claims/internal/domain/paauth"
	"github.com/hmo/claims/internal/platform/db"
	"github.com/hmo/claims/internal/platform/respond"
)

// Validator is the compliance surface the orchestrator drives.
type Validator interface {
	ValidateClaim(ctx context.Context, v *compliance.ClaimView) (*compliance.ValidationResult, error)
	ListAlerts(ctx context.Context, claimID uuid.UUID) ([]*compliance.Alert, error)
}

// PADetector flags treatments missing prior authorization.
type PADetector interface {
	DetectMissing(ctx context.Context, in *paauth.Input) ([]*paauth.MissingPA, error)
}

// Service orchestrates the claims pipeline: classification, compliance
// validation, PA gap detection, and section assembly.
type Service struct {
	repo       Repository
	classifier *Classifier
	validator  Validator
	detector   PADetector
	admissions admission.Repository
	bundles    catalog.BundleRepository
	items      catalog.ServiceItemRepository
	runTx      db.TxRunner
	now        func() time.Time
}

func NewService(
	repo Repository,
	classifier *Classifier,
	validator Validator,
	detector PADetector,
	admissions admission.Repository,
	bundles catalog.BundleRepository,
	items catalog.ServiceItemRepository,
	runTx db.TxRunner,
) *Service {
	return &Service{
		repo:       repo,
		classifier: classifier,
		validator:  validator,
		detector:   detector,
		admissions: admissions,
		bundles:    bundles,
		items:      items,
		runTx:      runTx,
		now:        time.Now,
	}
}

// CreateForAdmission bootstraps the admission's claim. Satisfies the
// admission package's ClaimCreator.
func (s *Service) CreateForAdmission(ctx context.Context, admissionID, enrolleeID uuid.UUID, bundleID *uuid.UUID) error {
	return s.repo.Create(ctx, &Claim{
		AdmissionID: admissionID,
		EnrolleeID:  enrolleeID,
		Status:      StatusUnclassified,
		BundleID:    bundleID,
	})
}

func (s *Service) loadClaim(ctx context.Context, id uuid.UUID) (*Claim, error) {
	cl, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, respond.NewNotFoundError("claim", id.String())
		}
		return nil, err
	}
	return cl, nil
}

func (s *Service) loadClaimWithAdmission(ctx context.Context, id uuid.UUID) (*Claim, *admission.Admission, error) {
	cl, err := s.loadClaim(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	adm, err := s.admissions.GetByID(ctx, cl.AdmissionID)
	if err != nil {
		return nil, nil, err
	}
	return cl, adm, nil
}

func (s *Service) GetClaim(ctx context.Context, id uuid.UUID) (*Claim, error) {
	return s.loadClaim(ctx, id)
}

// TreatmentInput records one rendered service against the claim.
type TreatmentInput struct {
	ServiceItemID uuid.UUID  `json:"service_item_id" validate:"required"`
	Quantity      int        `json:"quantity" validate:"required,min=1"`
	UnitPrice     *float64   `json:"unit_price"`
	RecordedAt    *time.Time `json:"recorded_at"`
}

// AddTreatment appends an unclassified line. The unit price defaults to the
// catalog tariff. Sectioned claims are closed to new lines.
func (s *Service) AddTreatment(ctx context.Context, actor string, claimID uuid.UUID, in *TreatmentInput) (*ClaimTreatment, error) {
	var t *ClaimTreatment
	err := s.runTx(ctx, func(ctx context.Context) error {
		cl, err := s.loadClaim(ctx, claimID)
		if err != nil {
			return err
		}
		if cl.Status == StatusSectioned {
			return respond.NewConflictError("claim is already sectioned", cl)
		}

		unitPrice := 0.0
		if in.UnitPrice != nil {
			unitPrice = *in.UnitPrice
		} else {
			item, err := s.items.GetByID(ctx, in.ServiceItemID)
			if err != nil {
				if db.IsNoRows(err) {
					return respond.NewNotFoundError("service item", in.ServiceItemID.String())
				}
				return err
			}
			unitPrice = item.UnitPrice
		}

		recordedAt := s.now().UTC()
		if in.RecordedAt != nil {
			recordedAt = in.RecordedAt.UTC()
		}
		t = &ClaimTreatment{
			ClaimID:       cl.ID,
			ServiceItemID: in.ServiceItemID,
			UnitPrice:     unitPrice,
			Quantity:      in.Quantity,
			RecordedAt:    recordedAt,
		}
		if err := s.repo.AddTreatment(ctx, t); err != nil {
			return err
		}

		// A new unclassified line invalidates a prior validation pass.
		if cl.Status == StatusValidated {
			cl.Status = StatusClassified
			return s.repo.Update(ctx, cl)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ClassifyAllTreatments runs the classification engine over the claim.
func (s *Service) ClassifyAllTreatments(ctx context.Context, actor string, claimID uuid.UUID) (map[uuid.UUID]Decision, *Claim, error) {
	var decisions map[uuid.UUID]Decision
	var cl *Claim
	err := s.runTx(ctx, func(ctx context.Context) error {
		var adm *admission.Admission
		var err error
		cl, adm, err = s.loadClaimWithAdmission(ctx, claimID)
		if err != nil {
			return err
		}
		decisions, err = s.classifier.ClassifyAll(ctx, cl, adm)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return decisions, cl, nil
}

// ConvertTreatment applies an explicit bundle→FFS conversion and drops a
// validated claim back to classified.
func (s *Service) ConvertTreatment(ctx context.Context, actor string, treatmentID uuid.UUID, reason string) (*ClaimTreatment, error) {
	var t *ClaimTreatment
	err := s.runTx(ctx, func(ctx context.Context) error {
		var err error
		t, err = s.repo.GetTreatment(ctx, treatmentID)
		if err != nil {
			if db.IsNoRows(err) {
				return respond.NewNotFoundError("treatment", treatmentID.String())
			}
			return err
		}
		cl, err := s.loadClaim(ctx, t.ClaimID)
		if err != nil {
			return err
		}
		if err := s.classifier.ConvertToFFS(ctx, cl, t, reason); err != nil {
			return err
		}
		if cl.Status == StatusValidated {
			cl.Status = StatusClassified
			return s.repo.Update(ctx, cl)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// DetectMissingPAs reports the claim's PA gaps without mutating anything.
func (s *Service) DetectMissingPAs(ctx context.Context, claimID uuid.UUID) ([]*paauth.MissingPA, error) {
	cl, adm, err := s.loadClaimWithAdmission(ctx, claimID)
	if err != nil {
		return nil, err
	}
	treatments, err := s.repo.ListTreatments(ctx, cl.ID)
	if err != nil {
		return nil, err
	}
	return s.detectMissing(ctx, cl, adm, treatments)
}

func (s *Service) detectMissing(ctx context.Context, cl *Claim, adm *admission.Admission, treatments []*ClaimTreatment) ([]*paauth.MissingPA, error) {
	refs := make([]paauth.TreatmentRef, 0, len(treatments))
	for _, t := range treatments {
		refs = append(refs, paauth.TreatmentRef{TreatmentID: t.ID, ServiceItemID: t.ServiceItemID})
	}
	return s.detector.DetectMissing(ctx, &paauth.Input{
		EnrolleeID:  cl.EnrolleeID,
		ReferralID:  adm.ReferralID,
		AdmissionID: &adm.ID,
		Treatments:  refs,
	})
}

func (s *Service) buildView(ctx context.Context, cl *Claim, adm *admission.Admission, treatments []*ClaimTreatment, diagnoses []*ClaimDiagnosis, missing []*paauth.MissingPA) (*compliance.ClaimView, error) {
	v := &compliance.ClaimView{
		ClaimID:         cl.ID,
		BundleTotal:     cl.BundleTotal,
		FFSTotal:        cl.FFSTotal,
		PlannedWardDays: adm.PlannedWardDays,
		ActualWardDays:  adm.ActualWardDays,
	}
	if cl.BundleID != nil {
		bundle, err := s.bundles.GetByID(ctx, *cl.BundleID)
		if err != nil {
			return nil, err
		}
		v.HasBundle = true
		v.BundleTariff = bundle.Tariff
	}
	for _, t := range treatments {
		v.Treatments = append(v.Treatments, compliance.TreatmentView{
			ID:               t.ID,
			Classification:   t.Classification,
			ConversionReason: t.ConversionReason,
			RecordedAt:       t.RecordedAt,
		})
	}
	for _, d := range diagnoses {
		v.Diagnoses = append(v.Diagnoses, compliance.DiagnosisView{
			ICD10Code:      d.ICD10Code,
			IsComplication: d.IsComplication,
			DiagnosedAt:    d.DiagnosedAt,
		})
	}
	for _, m := range missing {
		v.MissingPACodes = append(v.MissingPACodes, m.ServiceCode)
	}
	return v, nil
}

// validateLocked runs compliance validation against current claim state and
// advances classified→validated. Callers hold the transaction.
func (s *Service) validateLocked(ctx context.Context, cl *Claim, adm *admission.Admission) (*compliance.ValidationResult, []*paauth.MissingPA, error) {
	treatments, err := s.repo.ListTreatments(ctx, cl.ID)
	if err != nil {
		return nil, nil, err
	}
	diagnoses, err := s.repo.ListDiagnoses(ctx, cl.ID)
	if err != nil {
		return nil, nil, err
	}
	missing, err := s.detectMissing(ctx, cl, adm, treatments)
	if err != nil {
		return nil, nil, err
	}
	view, err := s.buildView(ctx, cl, adm, treatments, diagnoses, missing)
	if err != nil {
		return nil, nil, err
	}
	result, err := s.validator.ValidateClaim(ctx, view)
	if err != nil {
		return nil, nil, err
	}
	if cl.Status == StatusClassified {
		cl.Status = StatusValidated
		if err := s.repo.Update(ctx, cl); err != nil {
			return nil, nil, err
		}
	}
	return result, missing, nil
}

// ValidateClaim runs the compliance pass on its own.
func (s *Service) ValidateClaim(ctx context.Context, claimID uuid.UUID) (*compliance.ValidationResult, error) {
	var result *compliance.ValidationResult
	err := s.runTx(ctx, func(ctx context.Context) error {
		cl, adm, err := s.loadClaimWithAdmission(ctx, claimID)
		if err != nil {
			return err
		}
		result, _, err = s.validateLocked(ctx, cl, adm)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ProcessResult is the consolidated output of the full pipeline.
type ProcessResult struct {
	ClaimID         uuid.UUID                    `json:"claim_id"`
	Status          string                       `json:"status"`
	Classifications map[uuid.UUID]Decision       `json:"classifications"`
	BundleTotal     float64                      `json:"bundle_total"`
	FFSTotal        float64                      `json:"ffs_total"`
	Validation      *compliance.ValidationResult `json:"validation"`
	MissingPAs      []*paauth.MissingPA          `json:"missing_pas"`
}

// ProcessClaim runs classify → validate → detect in one transaction. Repeat
// calls on an unchanged claim are idempotent: classifications and totals are
// stable and no duplicate alerts are raised.
func (s *Service) ProcessClaim(ctx context.Context, actor string, claimID uuid.UUID) (*ProcessResult, error) {
	var out *ProcessResult
	err := s.runTx(ctx, func(ctx context.Context) error {
		cl, adm, err := s.loadClaimWithAdmission(ctx, claimID)
		if err != nil {
			return err
		}
		decisions, err := s.classifier.ClassifyAll(ctx, cl, adm)
		if err != nil {
			return err
		}
		result, missing, err := s.validateLocked(ctx, cl, adm)
		if err != nil {
			return err
		}
		out = &ProcessResult{
			ClaimID:         cl.ID,
			Status:          cl.Status,
			Classifications: decisions,
			BundleTotal:     cl.BundleTotal,
			FFSTotal:        cl.FFSTotal,
			Validation:      result,
			MissingPAs:      missing,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DiagnosisInput appends a diagnosis to the claim.
type DiagnosisInput struct {
	ICD10Code      string `json:"icd10_code" validate:"required"`
	Description    string `json:"description"`
	IsComplication bool   `json:"is_complication"`
}

// DiagnosisResult reports what a new diagnosis changed.
type DiagnosisResult struct {
	Message             string                       `json:"message"`
	Diagnosis           *ClaimDiagnosis              `json:"diagnosis"`
	ConvertedTreatments []*ClaimTreatment            `json:"converted_treatments"`
	Validation          *compliance.ValidationResult `json:"validation"`
}

// HandleNewDiagnosis appends a diagnosis and, for complications, cascades the
// implicated bundle treatments to FFS with reason `complication`, then
// re-validates. The whole sequence is one transaction: a failure mid-cascade
// leaves no partial classification state.
func (s *Service) HandleNewDiagnosis(ctx context.Context, actor string, claimID uuid.UUID, in *DiagnosisInput) (*DiagnosisResult, error) {
	var out *DiagnosisResult
	err := s.runTx(ctx, func(ctx context.Context) error {
		cl, adm, err := s.loadClaimWithAdmission(ctx, claimID)
		if err != nil {
			return err
		}
		if cl.Status == StatusSectioned {
			return respond.NewConflictError("claim is already sectioned", cl)
		}

		d := &ClaimDiagnosis{
			ClaimID:        cl.ID,
			ICD10Code:      in.ICD10Code,
			Description:    in.Description,
			IsComplication: in.IsComplication,
			DiagnosedAt:    s.now().UTC(),
		}
		if err := s.repo.AddDiagnosis(ctx, d); err != nil {
			return err
		}

		var converted []*ClaimTreatment
		if in.IsComplication {
			treatments, err := s.repo.ListTreatments(ctx, cl.ID)
			if err != nil {
				return err
			}
			for _, t := range s.classifier.ImplicatedTreatments(d, treatments) {
				if err := s.classifier.ConvertToFFS(ctx, cl, t, ReasonComplication); err != nil {
					return err
				}
				converted = append(converted, t)
			}
		}

		if cl.Status == StatusValidated {
			cl.Status = StatusClassified
			if err := s.repo.Update(ctx, cl); err != nil {
				return err
			}
		}
		result, _, err := s.validateLocked(ctx, cl, adm)
		if err != nil {
			return err
		}

		msg := "diagnosis recorded"
		if len(converted) > 0 {
			msg = "diagnosis recorded; implicated treatments converted to fee-for-service"
		}
		out = &DiagnosisResult{
			Message:             msg,
			Diagnosis:           d,
			ConvertedTreatments: converted,
			Validation:          result,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) assembleSections(ctx context.Context, cl *Claim, adm *admission.Admission) (*Sections, error) {
	treatments, err := s.repo.ListTreatments(ctx, cl.ID)
	if err != nil {
		return nil, err
	}
	diagnoses, err := s.repo.ListDiagnoses(ctx, cl.ID)
	if err != nil {
		return nil, err
	}
	missing, err := s.detectMissing(ctx, cl, adm, treatments)
	if err != nil {
		return nil, err
	}
	alerts, err := s.validator.ListAlerts(ctx, cl.ID)
	if err != nil {
		return nil, err
	}

	secs := &Sections{
		A: SectionA{
			AdmissionID:            adm.ID,
			EnrolleeID:             cl.EnrolleeID,
			FacilityID:             adm.FacilityID,
			ReferralID:             adm.ReferralID,
			AdmissionType:          adm.AdmissionType,
			WardType:               adm.WardType,
			AdmittedAt:             adm.AdmittedAt,
			DischargedAt:           adm.DischargedAt,
			PlannedWardDays:        adm.PlannedWardDays,
			ActualWardDays:         adm.ActualWardDays,
			AttendingPhysicianName: adm.AttendingPhysicianName,
			PrincipalDiagnosisCode: adm.PrincipalDiagnosisCode,
			PrincipalDiagnosisDesc: adm.PrincipalDiagnosisDesc,
		},
	}

	for _, d := range diagnoses {
		secs.B.Diagnoses = append(secs.B.Diagnoses, DiagnosisLine{
			ICD10Code:      d.ICD10Code,
			Description:    d.Description,
			IsComplication: d.IsComplication,
			DiagnosedAt:    d.DiagnosedAt,
		})
	}

	itemIDs := make([]uuid.UUID, 0, len(treatments))
	for _, t := range treatments {
		itemIDs = append(itemIDs, t.ServiceItemID)
	}
	items, err := s.items.ListByIDs(ctx, itemIDs)
	if err != nil {
		return nil, err
	}
	itemsByID := make(map[uuid.UUID]*catalog.ServiceItem, len(items))
	for _, it := range items {
		itemsByID[it.ID] = it
	}
	for _, t := range treatments {
		line := TreatmentLine{
			Classification:   t.Classification,
			ConversionReason: t.ConversionReason,
			Quantity:         t.Quantity,
			UnitPrice:        t.UnitPrice,
			LineTotal:        t.LineTotal,
		}
		if it := itemsByID[t.ServiceItemID]; it != nil {
			line.ServiceCode = it.Code
			line.ServiceName = it.Name
		}
		secs.B.Treatments = append(secs.B.Treatments, line)
	}

	open, critical := 0, 0
	for _, a := range alerts {
		if a.IsOpen() {
			open++
			if a.Severity == compliance.SeverityCritical {
				critical++
			}
		}
	}
	secs.C = SectionC{
		BundleTotal:      cl.BundleTotal,
		FFSTotal:         cl.FFSTotal,
		GrandTotal:       cl.BundleTotal + cl.FFSTotal,
		OpenAlerts:       open,
		CriticalAlerts:   critical,
		MissingPACount:   len(missing),
		CompliancePassed: open == 0,
	}
	if cl.BundleID != nil {
		bundle, err := s.bundles.GetByID(ctx, *cl.BundleID)
		if err != nil {
			return nil, err
		}
		secs.C.BundleCode = bundle.Code
	}
	return secs, nil
}

// GetClaimPreview projects the claim into its submission sections without
// mutating classification, alerts, or status.
func (s *Service) GetClaimPreview(ctx context.Context, claimID uuid.UUID) (*Sections, error) {
	cl, adm, err := s.loadClaimWithAdmission(ctx, claimID)
	if err != nil {
		return nil, err
	}
	return s.assembleSections(ctx, cl, adm)
}

// BuildClaimSections assembles the final sections, persists the snapshot for
// audit/replay, and moves the claim to sectioned. The claim must have been
// through validation; rebuilds of a sectioned claim are allowed.
func (s *Service) BuildClaimSections(ctx context.Context, actor string, claimID uuid.UUID) (*SectionSnapshot, error) {
	var snap *SectionSnapshot
	err := s.runTx(ctx, func(ctx context.Context) error {
		cl, adm, err := s.loadClaimWithAdmission(ctx, claimID)
		if err != nil {
			return err
		}
		if cl.Status != StatusValidated && cl.Status != StatusSectioned {
			return respond.NewConflictError("claim must be validated before sectioning", cl)
		}
		secs, err := s.assembleSections(ctx, cl, adm)
		if err != nil {
			return err
		}
		snap = &SectionSnapshot{
			ClaimID:  cl.ID,
			Sections: *secs,
			BuiltBy:  actor,
			BuiltAt:  s.now().UTC(),
		}
		if err := s.repo.SaveSnapshot(ctx, snap); err != nil {
			return err
		}
		if cl.Status != StatusSectioned {
			cl.Status = StatusSectioned
			return s.repo.Update(ctx, cl)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

package claims

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hmo/claims/internal/domain/admission"
	"github.com/hmo/claims/internal/domain/catalog"
	"github.com/hmo/claims/internal/domain/compliance"
	"github.com/hmo/claims/internal/domain/paauth"
	"github.com/hmo/claims/internal/domain/referral"
	"github.com/hmo/claims/internal/platform/respond"
)

// -- In-memory repositories --

type mockRepo struct {
	claims     map[uuid.UUID]*Claim
	diagnoses  map[uuid.UUID][]*ClaimDiagnosis
	treatments map[uuid.UUID]*ClaimTreatment
	treatOrder []uuid.UUID
	snapshots  []*SectionSnapshot
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		claims:     make(map[uuid.UUID]*Claim),
		diagnoses:  make(map[uuid.UUID][]*ClaimDiagnosis),
		treatments: make(map[uuid.UUID]*ClaimTreatment),
	}
}

func (m *mockRepo) Create(_ context.Context, cl *Claim) error {
	cl.ID = uuid.New()
	cl.CreatedAt = time.Now()
	m.claims[cl.ID] = cl
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Claim, error) {
	cl, ok := m.claims[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return cl, nil
}

func (m *mockRepo) GetByAdmissionID(_ context.Context, admissionID uuid.UUID) (*Claim, error) {
	for _, cl := range m.claims {
		if cl.AdmissionID == admissionID {
			return cl, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *mockRepo) Update(_ context.Context, cl *Claim) error {
	m.claims[cl.ID] = cl
	return nil
}

func (m *mockRepo) AddDiagnosis(_ context.Context, d *ClaimDiagnosis) error {
	d.ID = uuid.New()
	m.diagnoses[d.ClaimID] = append(m.diagnoses[d.ClaimID], d)
	return nil
}

func (m *mockRepo) ListDiagnoses(_ context.Context, claimID uuid.UUID) ([]*ClaimDiagnosis, error) {
	return m.diagnoses[claimID], nil
}

func (m *mockRepo) AddTreatment(_ context.Context, t *ClaimTreatment) error {
	t.ID = uuid.New()
	t.LineTotal = t.UnitPrice * float64(t.Quantity)
	m.treatments[t.ID] = t
	m.treatOrder = append(m.treatOrder, t.ID)
	return nil
}

func (m *mockRepo) GetTreatment(_ context.Context, id uuid.UUID) (*ClaimTreatment, error) {
	t, ok := m.treatments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return t, nil
}

func (m *mockRepo) UpdateTreatment(_ context.Context, t *ClaimTreatment) error {
	m.treatments[t.ID] = t
	return nil
}

func (m *mockRepo) ListTreatments(_ context.Context, claimID uuid.UUID) ([]*ClaimTreatment, error) {
	var result []*ClaimTreatment
	for _, id := range m.treatOrder {
		if t := m.treatments[id]; t.ClaimID == claimID {
			result = append(result, t)
		}
	}
	return result, nil
}

func (m *mockRepo) SaveSnapshot(_ context.Context, snap *SectionSnapshot) error {
	snap.ID = uuid.New()
	m.snapshots = append(m.snapshots, snap)
	return nil
}

func (m *mockRepo) LatestSnapshot(_ context.Context, claimID uuid.UUID) (*SectionSnapshot, error) {
	for i := len(m.snapshots) - 1; i >= 0; i-- {
		if m.snapshots[i].ClaimID == claimID {
			return m.snapshots[i], nil
		}
	}
	return nil, pgx.ErrNoRows
}

type mockAdmRepo struct {
	admissions map[uuid.UUID]*admission.Admission
}

func (m *mockAdmRepo) Create(_ context.Context, adm *admission.Admission) error {
	adm.ID = uuid.New()
	m.admissions[adm.ID] = adm
	return nil
}

func (m *mockAdmRepo) GetByID(_ context.Context, id uuid.UUID) (*admission.Admission, error) {
	adm, ok := m.admissions[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return adm, nil
}

func (m *mockAdmRepo) GetActiveByEnrollee(_ context.Context, enrolleeID uuid.UUID) (*admission.Admission, error) {
	for _, adm := range m.admissions {
		if adm.EnrolleeID == enrolleeID && adm.IsActive() {
			return adm, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *mockAdmRepo) Update(_ context.Context, adm *admission.Admission) error {
	m.admissions[adm.ID] = adm
	return nil
}

func (m *mockAdmRepo) ListByEnrollee(_ context.Context, enrolleeID uuid.UUID, limit, offset int) ([]*admission.Admission, int, error) {
	return nil, 0, nil
}

type mockBundleRepo struct {
	bundles    map[uuid.UUID]*catalog.Bundle
	components map[uuid.UUID][]*catalog.BundleComponent
}

func (m *mockBundleRepo) GetByID(_ context.Context, id uuid.UUID) (*catalog.Bundle, error) {
	b, ok := m.bundles[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return b, nil
}

func (m *mockBundleRepo) GetByCode(_ context.Context, code string) (*catalog.Bundle, error) {
	for _, b := range m.bundles {
		if b.Code == code {
			return b, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *mockBundleRepo) FindByDiagnosisCode(_ context.Context, icd10 string) ([]*catalog.Bundle, error) {
	var result []*catalog.Bundle
	for _, b := range m.bundles {
		if strings.HasPrefix(icd10, b.DiagnosisPrefix) {
			result = append(result, b)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result, nil
}

func (m *mockBundleRepo) ListComponents(_ context.Context, bundleID uuid.UUID) ([]*catalog.BundleComponent, error) {
	return m.components[bundleID], nil
}

func (m *mockBundleRepo) List(_ context.Context, limit, offset int) ([]*catalog.Bundle, int, error) {
	return nil, 0, nil
}

type mockItemRepo struct {
	items map[uuid.UUID]*catalog.ServiceItem
}

func (m *mockItemRepo) GetByID(_ context.Context, id uuid.UUID) (*catalog.ServiceItem, error) {
	it, ok := m.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return it, nil
}

func (m *mockItemRepo) GetByCode(_ context.Context, code string) (*catalog.ServiceItem, error) {
	for _, it := range m.items {
		if it.Code == code {
			return it, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *mockItemRepo) ListByIDs(_ context.Context, ids []uuid.UUID) ([]*catalog.ServiceItem, error) {
	var result []*catalog.ServiceItem
	for _, id := range ids {
		if it, ok := m.items[id]; ok {
			result = append(result, it)
		}
	}
	return result, nil
}

func (m *mockItemRepo) List(_ context.Context, limit, offset int) ([]*catalog.ServiceItem, int, error) {
	return nil, 0, nil
}

type mockPARepo struct {
	grants []*catalog.PACode
}

func (m *mockPARepo) GetByCode(_ context.Context, code string) (*catalog.PACode, error) {
	return nil, pgx.ErrNoRows
}

func (m *mockPARepo) ListForScope(_ context.Context, enrolleeID uuid.UUID, _, _ *uuid.UUID) ([]*catalog.PACode, error) {
	var result []*catalog.PACode
	for _, g := range m.grants {
		if g.EnrolleeID == enrolleeID {
			result = append(result, g)
		}
	}
	return result, nil
}

type mockRefRepo struct {
	referrals map[uuid.UUID]*referral.Referral
}

func (m *mockRefRepo) GetByID(_ context.Context, id uuid.UUID) (*referral.Referral, error) {
	ref, ok := m.referrals[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return ref, nil
}

func (m *mockRefRepo) GetByUTN(_ context.Context, utn string) (*referral.Referral, error) {
	return nil, pgx.ErrNoRows
}

type mockAlertRepo struct {
	alerts map[uuid.UUID]*compliance.Alert
	order  []uuid.UUID
}

func (m *mockAlertRepo) Create(_ context.Context, a *compliance.Alert) error {
	a.ID = uuid.New()
	m.alerts[a.ID] = a
	m.order = append(m.order, a.ID)
	return nil
}

func (m *mockAlertRepo) GetByID(_ context.Context, id uuid.UUID) (*compliance.Alert, error) {
	a, ok := m.alerts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return a, nil
}

func (m *mockAlertRepo) Update(_ context.Context, a *compliance.Alert) error {
	m.alerts[a.ID] = a
	return nil
}

func (m *mockAlertRepo) ListByClaim(_ context.Context, claimID uuid.UUID) ([]*compliance.Alert, error) {
	var result []*compliance.Alert
	for _, id := range m.order {
		if a := m.alerts[id]; a.ClaimID == claimID {
			result = append(result, a)
		}
	}
	return result, nil
}

func passthroughTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// -- Fixture --

type fixture struct {
	svc     *Service
	repo    *mockRepo
	adms    *mockAdmRepo
	bundles *mockBundleRepo
	items   *mockItemRepo
	pas     *mockPARepo
	refs    *mockRefRepo
}

func newFixture() *fixture {
	f := &fixture{
		repo:    newMockRepo(),
		adms:    &mockAdmRepo{admissions: make(map[uuid.UUID]*admission.Admission)},
		bundles: &mockBundleRepo{bundles: make(map[uuid.UUID]*catalog.Bundle), components: make(map[uuid.UUID][]*catalog.BundleComponent)},
		items:   &mockItemRepo{items: make(map[uuid.UUID]*catalog.ServiceItem)},
		pas:     &mockPARepo{},
		refs:    &mockRefRepo{referrals: make(map[uuid.UUID]*referral.Referral)},
	}
	classifier := NewClassifier(f.repo, f.bundles, f.refs)
	validator := compliance.NewService(&mockAlertRepo{alerts: make(map[uuid.UUID]*compliance.Alert)}, passthroughTx, 20)
	detector := paauth.NewDetector(f.items, f.pas)
	f.svc = NewService(f.repo, classifier, validator, detector, f.adms, f.bundles, f.items, passthroughTx)
	return f
}

func (f *fixture) addItem(t *testing.T, code string, price float64, requiresPA bool) uuid.UUID {
	t.Helper()
	id := uuid.New()
	f.items.items[id] = &catalog.ServiceItem{ID: id, Code: code, Name: code + " item", UnitPrice: price, RequiresPA: requiresPA}
	return id
}

func (f *fixture) addBundle(t *testing.T, code, prefix string, tariff float64, componentItems ...uuid.UUID) uuid.UUID {
	t.Helper()
	id := uuid.New()
	f.bundles.bundles[id] = &catalog.Bundle{ID: id, Code: code, DiagnosisPrefix: prefix, Tariff: tariff}
	for _, itemID := range componentItems {
		f.bundles.components[id] = append(f.bundles.components[id],
			&catalog.BundleComponent{ID: uuid.New(), BundleID: id, ServiceItemID: itemID})
	}
	return id
}

func (f *fixture) grantPA(enrolleeID uuid.UUID, itemID *uuid.UUID) {
	f.pas.grants = append(f.pas.grants, &catalog.PACode{
		Code:          "PA-" + uuid.NewString()[:8],
		Status:        catalog.PAStatusActive,
		EnrolleeID:    enrolleeID,
		ServiceItemID: itemID,
	})
}

// admitWithClaim creates an active admission plus its bootstrapped claim and
// returns both.
func (f *fixture) admitWithClaim(t *testing.T, diagnosisCode string, plannedDays int) (*admission.Admission, *Claim) {
	t.Helper()
	ctx := context.Background()
	adm := &admission.Admission{
		EnrolleeID:             uuid.New(),
		FacilityID:             uuid.New(),
		Status:                 admission.StatusActive,
		AdmissionType:          admission.TypeElective,
		PrincipalDiagnosisCode: diagnosisCode,
		WardType:               "general",
		PlannedWardDays:        plannedDays,
		AdmittedAt:             time.Now().Add(-48 * time.Hour),
	}
	if err := f.adms.Create(ctx, adm); err != nil {
		t.Fatalf("create admission: %v", err)
	}
	if err := f.svc.CreateForAdmission(ctx, adm.ID, adm.EnrolleeID, nil); err != nil {
		t.Fatalf("bootstrap claim: %v", err)
	}
	cl, err := f.repo.GetByAdmissionID(ctx, adm.ID)
	if err != nil {
		t.Fatalf("load claim: %v", err)
	}
	return adm, cl
}

func (f *fixture) addTreatment(t *testing.T, claimID, itemID uuid.UUID, qty int) *ClaimTreatment {
	t.Helper()
	tr, err := f.svc.AddTreatment(context.Background(), "tester", claimID,
		&TreatmentInput{ServiceItemID: itemID, Quantity: qty})
	if err != nil {
		t.Fatalf("add treatment: %v", err)
	}
	return tr
}

// -- Orchestrator tests --

func TestProcessClaim_EndToEnd(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	inBundle := f.addItem(t, "SRG-001", 500, false)
	outOfBundle := f.addItem(t, "LAB-001", 120, false)
	f.addBundle(t, "BND-CS", "O82", 1500, inBundle)

	_, cl := f.admitWithClaim(t, "O82.1", 4)
	t1 := f.addTreatment(t, cl.ID, inBundle, 1)
	t2 := f.addTreatment(t, cl.ID, outOfBundle, 2)

	result, err := f.svc.ProcessClaim(ctx, "tester", cl.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if d := result.Classifications[t1.ID]; d.Classification != ClassificationBundle {
		t.Errorf("T1: expected bundle, got %s", d.Classification)
	}
	if d := result.Classifications[t2.ID]; d.Classification != ClassificationFFS || d.ConversionReason != nil {
		t.Errorf("T2: expected ffs with nil reason, got %+v", d)
	}
	if result.BundleTotal != 1500 {
		t.Errorf("expected bundle_total 1500, got %.2f", result.BundleTotal)
	}
	if result.FFSTotal != 240 {
		t.Errorf("expected ffs_total 240, got %.2f", result.FFSTotal)
	}
	if result.Status != StatusValidated {
		t.Errorf("expected validated, got %s", result.Status)
	}
	if !result.Validation.Passed {
		t.Errorf("expected clean claim to pass, findings: %+v", result.Validation.Findings)
	}
}

func TestProcessClaim_Idempotent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	itemID := f.addItem(t, "SRG-001", 500, true)
	f.addBundle(t, "BND-CS", "O82", 1500, itemID)
	_, cl := f.admitWithClaim(t, "O82.1", 4)
	f.addTreatment(t, cl.ID, itemID, 1)

	first, err := f.svc.ProcessClaim(ctx, "tester", cl.ID)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := f.svc.ProcessClaim(ctx, "tester", cl.ID)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if second.BundleTotal != first.BundleTotal || second.FFSTotal != first.FFSTotal {
		t.Error("totals must be stable across repeat runs")
	}
	if second.Validation.NewAlerts != 0 {
		t.Errorf("expected no duplicate alerts on repeat run, got %d new", second.Validation.NewAlerts)
	}
	if len(second.Validation.Alerts) != len(first.Validation.Alerts) {
		t.Error("alert set must be stable across repeat runs")
	}
}

func TestHandleNewDiagnosis_ComplicationCascade(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	inBundle := f.addItem(t, "SRG-001", 500, false)
	outOfBundle := f.addItem(t, "LAB-001", 120, false)
	f.addBundle(t, "BND-CS", "O82", 1500, inBundle)

	_, cl := f.admitWithClaim(t, "O82.1", 4)
	t1 := f.addTreatment(t, cl.ID, inBundle, 1)
	f.addTreatment(t, cl.ID, outOfBundle, 2)

	if _, err := f.svc.ProcessClaim(ctx, "tester", cl.ID); err != nil {
		t.Fatalf("process: %v", err)
	}

	result, err := f.svc.HandleNewDiagnosis(ctx, "tester", cl.ID, &DiagnosisInput{
		ICD10Code:      "T81.4",
		Description:    "post-operative infection",
		IsComplication: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.ConvertedTreatments) != 1 || result.ConvertedTreatments[0].ID != t1.ID {
		t.Fatalf("expected T1 converted, got %+v", result.ConvertedTreatments)
	}
	converted := result.ConvertedTreatments[0]
	if converted.Classification != ClassificationFFS {
		t.Errorf("expected ffs, got %s", converted.Classification)
	}
	if converted.ConversionReason == nil || *converted.ConversionReason != ReasonComplication {
		t.Errorf("expected complication reason, got %v", converted.ConversionReason)
	}

	cl, _ = f.repo.GetByID(ctx, cl.ID)
	if cl.BundleTotal != 0 {
		t.Errorf("expected bundle_total 0 after cascade, got %.2f", cl.BundleTotal)
	}
	if cl.FFSTotal != 740 {
		t.Errorf("expected ffs_total 740, got %.2f", cl.FFSTotal)
	}

	// The complication reason is consistent with the diagnosis: no
	// reason-mismatch alert.
	for _, a := range result.Validation.Alerts {
		if a.RuleID == compliance.RuleReasonMismatch && a.IsOpen() {
			t.Error("unexpected reason-mismatch alert after complication cascade")
		}
	}
}

func TestDetectMissingPAs(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	covered := f.addItem(t, "SRG-001", 500, true)
	uncovered := f.addItem(t, "SRG-002", 300, true)
	adm, cl := f.admitWithClaim(t, "J18.9", 4)
	f.addTreatment(t, cl.ID, covered, 1)
	f.addTreatment(t, cl.ID, uncovered, 1)
	f.grantPA(adm.EnrolleeID, &covered)

	missing, err := f.svc.DetectMissingPAs(ctx, cl.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(missing) != 1 || missing[0].ServiceCode != "SRG-002" {
		t.Fatalf("expected SRG-002 missing, got %+v", missing)
	}
}

func TestValidateClaim_RaisesPAMissingAlert(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	itemID := f.addItem(t, "SRG-001", 500, true)
	_, cl := f.admitWithClaim(t, "J18.9", 4)
	f.addTreatment(t, cl.ID, itemID, 1)

	if _, _, err := f.svc.ClassifyAllTreatments(ctx, "tester", cl.ID); err != nil {
		t.Fatalf("classify: %v", err)
	}
	result, err := f.svc.ValidateClaim(ctx, cl.ID)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if result.Passed {
		t.Error("expected fail for uncovered PA-required treatment")
	}
	found := false
	for _, a := range result.Alerts {
		if a.RuleID == compliance.RulePAMissing {
			found = true
		}
	}
	if !found {
		t.Error("expected pa-missing alert")
	}
}

func TestGetClaimPreview_DoesNotMutate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	itemID := f.addItem(t, "SRG-001", 500, true)
	_, cl := f.admitWithClaim(t, "J18.9", 4)
	f.addTreatment(t, cl.ID, itemID, 1)

	secs, err := f.svc.GetClaimPreview(ctx, cl.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if secs.C.MissingPACount != 1 {
		t.Errorf("expected 1 missing PA in preview, got %d", secs.C.MissingPACount)
	}

	cl, _ = f.repo.GetByID(ctx, cl.ID)
	if cl.Status != StatusUnclassified {
		t.Errorf("preview must not advance status, got %s", cl.Status)
	}
	tr, _ := f.repo.ListTreatments(ctx, cl.ID)
	if tr[0].IsClassified() {
		t.Error("preview must not classify treatments")
	}
}

func TestBuildClaimSections(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	inBundle := f.addItem(t, "SRG-001", 500, false)
	f.addBundle(t, "BND-CS", "O82", 1500, inBundle)
	_, cl := f.admitWithClaim(t, "O82.1", 4)
	f.addTreatment(t, cl.ID, inBundle, 1)

	if _, err := f.svc.ProcessClaim(ctx, "tester", cl.ID); err != nil {
		t.Fatalf("process: %v", err)
	}
	snap, err := f.svc.BuildClaimSections(ctx, "tester", cl.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.BuiltBy != "tester" {
		t.Errorf("expected built_by=tester, got %s", snap.BuiltBy)
	}
	if snap.Sections.C.GrandTotal != 1500 {
		t.Errorf("expected grand total 1500, got %.2f", snap.Sections.C.GrandTotal)
	}
	if len(snap.Sections.B.Treatments) != 1 {
		t.Errorf("expected 1 treatment line, got %d", len(snap.Sections.B.Treatments))
	}

	cl, _ = f.repo.GetByID(ctx, cl.ID)
	if cl.Status != StatusSectioned {
		t.Errorf("expected sectioned, got %s", cl.Status)
	}
	if len(f.repo.snapshots) != 1 {
		t.Errorf("expected persisted snapshot, got %d", len(f.repo.snapshots))
	}
}

func TestBuildClaimSections_RequiresValidation(t *testing.T) {
	f := newFixture()
	_, cl := f.admitWithClaim(t, "J18.9", 4)

	_, err := f.svc.BuildClaimSections(context.Background(), "tester", cl.ID)
	var conflict *respond.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError for unvalidated claim, got %v", err)
	}
}

func TestAddTreatment_SectionedClaimClosed(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	itemID := f.addItem(t, "SRG-001", 500, false)
	_, cl := f.admitWithClaim(t, "J18.9", 4)
	f.addTreatment(t, cl.ID, itemID, 1)
	if _, err := f.svc.ProcessClaim(ctx, "tester", cl.ID); err != nil {
		t.Fatalf("process: %v", err)
	}
	if _, err := f.svc.BuildClaimSections(ctx, "tester", cl.ID); err != nil {
		t.Fatalf("sections: %v", err)
	}

	_, err := f.svc.AddTreatment(ctx, "tester", cl.ID, &TreatmentInput{ServiceItemID: itemID, Quantity: 1})
	var conflict *respond.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
}

func TestConvertTreatment_DropsValidatedBackToClassified(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	inBundle := f.addItem(t, "SRG-001", 500, false)
	f.addBundle(t, "BND-CS", "O82", 1500, inBundle)
	_, cl := f.admitWithClaim(t, "O82.1", 4)
	tr := f.addTreatment(t, cl.ID, inBundle, 1)

	if _, err := f.svc.ProcessClaim(ctx, "tester", cl.ID); err != nil {
		t.Fatalf("process: %v", err)
	}

	out, err := f.svc.ConvertTreatment(ctx, "tester", tr.ID, ReasonExtendedStay)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Classification != ClassificationFFS {
		t.Errorf("expected ffs, got %s", out.Classification)
	}

	cl, _ = f.repo.GetByID(ctx, cl.ID)
	if cl.Status != StatusClassified {
		t.Errorf("expected classified after conversion, got %s", cl.Status)
	}
	if cl.BundleTotal != 0 || cl.FFSTotal != 500 {
		t.Errorf("expected totals (0, 500), got (%.2f, %.2f)", cl.BundleTotal, cl.FFSTotal)
	}
}

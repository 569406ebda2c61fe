package claims

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hmo/claims/internal/domain/referral"
	"github.com/hmo/claims/internal/platform/respond"
)

func TestClassifyAll_BundleAndFFS(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	inBundle := f.addItem(t, "SRG-001", 500, false)
	outOfBundle := f.addItem(t, "LAB-001", 120, false)
	bundleID := f.addBundle(t, "BND-CS", "O82", 1500, inBundle)

	adm, cl := f.admitWithClaim(t, "O82.1", 4)
	t1 := f.addTreatment(t, cl.ID, inBundle, 1)
	t2 := f.addTreatment(t, cl.ID, outOfBundle, 3)

	decisions, err := f.svc.classifier.ClassifyAll(ctx, cl, adm)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if decisions[t1.ID].Classification != ClassificationBundle {
		t.Errorf("expected T1 bundle, got %s", decisions[t1.ID].Classification)
	}
	if decisions[t1.ID].BundleCode != "BND-CS" {
		t.Errorf("expected bundle code on decision, got %q", decisions[t1.ID].BundleCode)
	}
	if decisions[t2.ID].Classification != ClassificationFFS {
		t.Errorf("expected T2 ffs, got %s", decisions[t2.ID].Classification)
	}
	if cl.BundleID == nil || *cl.BundleID != bundleID {
		t.Error("expected resolved bundle pinned to claim")
	}
	if cl.BundleTotal != 1500 {
		t.Errorf("expected bundle tariff counted once, got %.2f", cl.BundleTotal)
	}
	if cl.FFSTotal != 360 {
		t.Errorf("expected ffs_total 360, got %.2f", cl.FFSTotal)
	}
	if cl.Status != StatusClassified {
		t.Errorf("expected classified, got %s", cl.Status)
	}
}

func TestClassifyAll_BundleTariffCountedOnce(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	itemA := f.addItem(t, "SRG-001", 500, false)
	itemB := f.addItem(t, "SRG-002", 700, false)
	f.addBundle(t, "BND-CS", "O82", 1500, itemA, itemB)

	adm, cl := f.admitWithClaim(t, "O82.1", 4)
	f.addTreatment(t, cl.ID, itemA, 1)
	f.addTreatment(t, cl.ID, itemB, 1)

	if _, err := f.svc.classifier.ClassifyAll(ctx, cl, adm); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cl.BundleTotal != 1500 {
		t.Errorf("two bundle lines must still total one tariff, got %.2f", cl.BundleTotal)
	}
}

func TestClassifyAll_NoBundleMatch(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	itemID := f.addItem(t, "LAB-001", 120, false)
	f.addBundle(t, "BND-CS", "O82", 1500)

	adm, cl := f.admitWithClaim(t, "J18.9", 4)
	f.addTreatment(t, cl.ID, itemID, 1)

	if _, err := f.svc.classifier.ClassifyAll(ctx, cl, adm); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cl.BundleID != nil {
		t.Error("no bundle should be pinned without a diagnosis match")
	}
	if cl.BundleTotal != 0 || cl.FFSTotal != 120 {
		t.Errorf("expected pure FFS totals, got (%.2f, %.2f)", cl.BundleTotal, cl.FFSTotal)
	}
}

func TestClassifyAll_PrefersClaimBundleOverDiagnosisMatch(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	itemID := f.addItem(t, "SRG-001", 500, false)
	// Two bundles match the diagnosis; the claim's own bundle must win.
	f.addBundle(t, "BND-A", "O82", 1000, itemID)
	pinned := f.addBundle(t, "BND-B", "O82", 2000, itemID)

	adm, cl := f.admitWithClaim(t, "O82.1", 4)
	cl.BundleID = &pinned
	f.addTreatment(t, cl.ID, itemID, 1)

	if _, err := f.svc.classifier.ClassifyAll(ctx, cl, adm); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cl.BundleTotal != 2000 {
		t.Errorf("expected the claim's pinned bundle tariff, got %.2f", cl.BundleTotal)
	}
}

func TestClassifyAll_ReferralBundleBeatsDiagnosisMatch(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	itemID := f.addItem(t, "SRG-001", 500, false)
	f.addBundle(t, "BND-A", "O82", 1000, itemID)
	refBundle := f.addBundle(t, "BND-B", "O82", 2000, itemID)

	adm, cl := f.admitWithClaim(t, "O82.1", 4)
	refID := uuid.New()
	f.refs.referrals[refID] = &referral.Referral{
		ID:         refID,
		EnrolleeID: adm.EnrolleeID,
		UTN:        "UTN-ABC12345",
		Status:     referral.StatusApproved,
		BundleID:   &refBundle,
	}
	adm.ReferralID = &refID
	f.addTreatment(t, cl.ID, itemID, 1)

	if _, err := f.svc.classifier.ClassifyAll(ctx, cl, adm); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cl.BundleID == nil || *cl.BundleID != refBundle {
		t.Error("expected the referral's bundle selected")
	}
}

func TestClassifyAll_DiagnosisTieBreakByCode(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	itemID := f.addItem(t, "SRG-001", 500, false)
	first := f.addBundle(t, "BND-A", "O82", 1000, itemID)
	f.addBundle(t, "BND-B", "O82", 2000, itemID)

	adm, cl := f.admitWithClaim(t, "O82.1", 4)
	f.addTreatment(t, cl.ID, itemID, 1)

	if _, err := f.svc.classifier.ClassifyAll(ctx, cl, adm); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cl.BundleID == nil || *cl.BundleID != first {
		t.Error("expected the first bundle by code on a diagnosis tie")
	}
}

func TestClassifyAll_DoesNotReclassify(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	itemID := f.addItem(t, "SRG-001", 500, false)
	f.addBundle(t, "BND-CS", "O82", 1500, itemID)

	adm, cl := f.admitWithClaim(t, "O82.1", 4)
	tr := f.addTreatment(t, cl.ID, itemID, 1)

	if _, err := f.svc.classifier.ClassifyAll(ctx, cl, adm); err != nil {
		t.Fatalf("first: %v", err)
	}
	if err := f.svc.classifier.ConvertToFFS(ctx, cl, tr, ReasonConsumables); err != nil {
		t.Fatalf("convert: %v", err)
	}

	// A repeat pass leaves the explicit conversion alone.
	decisions, err := f.svc.classifier.ClassifyAll(ctx, cl, adm)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if decisions[tr.ID].Classification != ClassificationFFS {
		t.Error("repeat classification must not undo an explicit conversion")
	}
	if decisions[tr.ID].ConversionReason == nil || *decisions[tr.ID].ConversionReason != ReasonConsumables {
		t.Error("conversion reason must survive reclassification")
	}
}

func TestConvertToFFS_AlreadyFFS(t *testing.T) {
	tr := &ClaimTreatment{Classification: ClassificationFFS}
	err := tr.ConvertToFFS(ReasonComplication)

	var conflict *respond.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
}

func TestConvertToFFS_InvalidReason(t *testing.T) {
	tr := &ClaimTreatment{Classification: ClassificationBundle}
	err := tr.ConvertToFFS("because")

	var verr *respond.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if tr.Classification != ClassificationBundle {
		t.Error("failed conversion must not change classification")
	}
}

func TestDefaultImplicatedTreatments(t *testing.T) {
	diagTime := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	d := &ClaimDiagnosis{IsComplication: true, DiagnosedAt: diagTime}

	// Bundle lines are implicated whether they predate the diagnosis record
	// or not; FFS lines never are.
	before := &ClaimTreatment{ID: uuid.New(), Classification: ClassificationBundle, RecordedAt: diagTime.Add(-time.Hour)}
	after := &ClaimTreatment{ID: uuid.New(), Classification: ClassificationBundle, RecordedAt: diagTime.Add(time.Hour)}
	ffs := &ClaimTreatment{ID: uuid.New(), Classification: ClassificationFFS, RecordedAt: diagTime.Add(time.Hour)}
	unclassified := &ClaimTreatment{ID: uuid.New(), RecordedAt: diagTime}

	implicated := DefaultImplicatedTreatments(d, []*ClaimTreatment{before, after, ffs, unclassified})
	if len(implicated) != 2 {
		t.Fatalf("expected both bundle treatments implicated, got %d", len(implicated))
	}
	if implicated[0].ID != before.ID || implicated[1].ID != after.ID {
		t.Error("expected bundle treatments in recorded order")
	}
}

package compliance

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestCheckPAMissing(t *testing.T) {
	v := &ClaimView{}
	if f := checkPAMissing(v); f != nil {
		t.Error("expected pass with no missing PAs")
	}

	v.MissingPACodes = []string{"SRG-001"}
	f := checkPAMissing(v)
	if f == nil {
		t.Fatal("expected finding")
	}
	if f.Severity != SeverityCritical {
		t.Errorf("expected critical, got %s", f.Severity)
	}
}

func TestCheckReasonMismatch(t *testing.T) {
	v := &ClaimView{
		Treatments: []TreatmentView{
			{ID: uuid.New(), Classification: "ffs", ConversionReason: strPtr("complication")},
		},
	}
	if f := checkReasonMismatch(v); f == nil {
		t.Error("expected finding: complication reason without complication diagnosis")
	}

	v.Diagnoses = []DiagnosisView{{ICD10Code: "T81.4", IsComplication: true}}
	if f := checkReasonMismatch(v); f != nil {
		t.Error("expected pass when a complication diagnosis exists")
	}
}

func TestCheckExtendedStay(t *testing.T) {
	v := &ClaimView{PlannedWardDays: 4, ActualWardDays: intPtr(6)}
	if f := checkExtendedStay(v); f == nil {
		t.Error("expected finding for overstay without conversion")
	}

	v.Treatments = []TreatmentView{
		{Classification: "ffs", ConversionReason: strPtr("extended_stay")},
	}
	if f := checkExtendedStay(v); f != nil {
		t.Error("expected pass when an extended-stay conversion exists")
	}

	v = &ClaimView{PlannedWardDays: 4, ActualWardDays: intPtr(4)}
	if f := checkExtendedStay(v); f != nil {
		t.Error("expected pass at exactly the planned days")
	}

	v = &ClaimView{PlannedWardDays: 4}
	if f := checkExtendedStay(v); f != nil {
		t.Error("expected pass while still admitted")
	}
}

func TestCheckBundleTariffExceeded(t *testing.T) {
	v := &ClaimView{HasBundle: true, BundleTariff: 1000, BundleTotal: 1000}
	if f := checkBundleTariffExceeded(v); f != nil {
		t.Error("expected pass at exactly the tariff")
	}

	v.BundleTotal = 1200
	if f := checkBundleTariffExceeded(v); f == nil {
		t.Error("expected finding above the tariff")
	}

	v = &ClaimView{HasBundle: false, BundleTotal: 1200}
	if f := checkBundleTariffExceeded(v); f != nil {
		t.Error("expected pass without a bundle")
	}
}

func TestCheckUnclassifiedTreatment(t *testing.T) {
	v := &ClaimView{Treatments: []TreatmentView{
		{Classification: "bundle", RecordedAt: time.Now()},
		{Classification: ""},
	}}
	f := checkUnclassifiedTreatment(v)
	if f == nil {
		t.Fatal("expected finding for unclassified line")
	}
	if f.Severity != SeverityInfo {
		t.Errorf("expected info severity, got %s", f.Severity)
	}
}

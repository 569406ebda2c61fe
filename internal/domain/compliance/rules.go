package compliance

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Rule identifiers.
const (
	RulePAMissing             = "pa-missing"
	RuleReasonMismatch        = "reason-mismatch"
	RuleExtendedStay          = "extended-stay"
	RuleBundleTariffExceeded  = "bundle-tariff-exceeded"
	RuleUnclassifiedTreatment = "unclassified-treatment"
)

// ClaimView is the flattened claim state the rules inspect. The orchestrator
// assembles it from the claim, its admission, and the PA gap detector so this
// package stays free of storage concerns.
type ClaimView struct {
	ClaimID         uuid.UUID
	HasBundle       bool
	BundleTariff    float64
	BundleTotal     float64
	FFSTotal        float64
	PlannedWardDays int
	ActualWardDays  *int
	Treatments      []TreatmentView
	Diagnoses       []DiagnosisView
	MissingPACodes  []string
}

type TreatmentView struct {
	ID               uuid.UUID
	Classification   string
	ConversionReason *string
	RecordedAt       time.Time
}

type DiagnosisView struct {
	ICD10Code      string
	IsComplication bool
	DiagnosedAt    time.Time
}

// Finding is one rule violation.
type Finding struct {
	RuleID      string `json:"rule_id"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

// Rule checks one property of the claim, returning nil when it passes.
type Rule struct {
	ID    string
	Check func(v *ClaimView) *Finding
}

// DefaultRules returns the ordered rule list. Order is part of the contract:
// findings and the alerts raised from them follow it deterministically.
func DefaultRules() []Rule {
	return []Rule{
		{ID: RulePAMissing, Check: checkPAMissing},
		{ID: RuleReasonMismatch, Check: checkReasonMismatch},
		{ID: RuleExtendedStay, Check: checkExtendedStay},
		{ID: RuleBundleTariffExceeded, Check: checkBundleTariffExceeded},
		{ID: RuleUnclassifiedTreatment, Check: checkUnclassifiedTreatment},
	}
}

func checkPAMissing(v *ClaimView) *Finding {
	if len(v.MissingPACodes) == 0 {
		return nil
	}
	return &Finding{
		RuleID:   RulePAMissing,
		Severity: SeverityCritical,
		Description: fmt.Sprintf("treatments lack required prior authorization: %s",
			strings.Join(v.MissingPACodes, ", ")),
	}
}

func checkReasonMismatch(v *ClaimView) *Finding {
	hasComplicationDiag := false
	for _, d := range v.Diagnoses {
		if d.IsComplication {
			hasComplicationDiag = true
			break
		}
	}
	for _, t := range v.Treatments {
		if t.ConversionReason != nil && *t.ConversionReason == "complication" && !hasComplicationDiag {
			return &Finding{
				RuleID:      RuleReasonMismatch,
				Severity:    SeverityWarning,
				Description: "treatment converted to FFS for complication but no complication diagnosis is recorded",
			}
		}
	}
	return nil
}

func checkExtendedStay(v *ClaimView) *Finding {
	if v.ActualWardDays == nil || *v.ActualWardDays <= v.PlannedWardDays {
		return nil
	}
	for _, t := range v.Treatments {
		if t.ConversionReason != nil && *t.ConversionReason == "extended_stay" {
			return nil
		}
	}
	return &Finding{
		RuleID:   RuleExtendedStay,
		Severity: SeverityWarning,
		Description: fmt.Sprintf("stay of %d days exceeds the %d planned without an extended-stay conversion",
			*v.ActualWardDays, v.PlannedWardDays),
	}
}

func checkBundleTariffExceeded(v *ClaimView) *Finding {
	if !v.HasBundle || v.BundleTotal <= v.BundleTariff {
		return nil
	}
	return &Finding{
		RuleID:   RuleBundleTariffExceeded,
		Severity: SeverityCritical,
		Description: fmt.Sprintf("bundle total %.2f exceeds the catalog tariff %.2f",
			v.BundleTotal, v.BundleTariff),
	}
}

func checkUnclassifiedTreatment(v *ClaimView) *Finding {
	count := 0
	for _, t := range v.Treatments {
		if t.Classification == "" {
			count++
		}
	}
	if count == 0 {
		return nil
	}
	return &Finding{
		RuleID:      RuleUnclassifiedTreatment,
		Severity:    SeverityInfo,
		Description: fmt.Sprintf("%d treatment(s) have not been classified", count),
	}
}

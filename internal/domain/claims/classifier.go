package claims

import (
	"context"

	"github.com/google/uuid"

	"github.com/hmo/claims/internal/domain/admission"
	"github.com/hmo/claims/internal/domain/catalog"
	"github.com/hmo/claims/internal/domain/referral"
	"github.com/hmo/claims/internal/platform/db"
)

// Decision is the classification outcome for one treatment line.
type Decision struct {
	TreatmentID      uuid.UUID `json:"treatment_id"`
	Classification   string    `json:"classification"`
	ConversionReason *string   `json:"conversion_reason,omitempty"`
	BundleCode       string    `json:"bundle_code,omitempty"`
}

// Classifier decides bundle vs fee-for-service for each treatment line and
// keeps the claim's derived totals consistent.
type Classifier struct {
	repo      Repository
	bundles   catalog.BundleRepository
	referrals referral.Repository

	// ImplicatedTreatments selects the treatments a complication diagnosis
	// drags from bundle to FFS. Replaceable for payer-specific policies.
	ImplicatedTreatments func(d *ClaimDiagnosis, treatments []*ClaimTreatment) []*ClaimTreatment
}

func NewClassifier(repo Repository, bundles catalog.BundleRepository, referrals referral.Repository) *Classifier {
	return &Classifier{
		repo:                 repo,
		bundles:              bundles,
		referrals:            referrals,
		ImplicatedTreatments: DefaultImplicatedTreatments,
	}
}

// DefaultImplicatedTreatments returns every bundle-classified treatment on
// the claim. A complication compromises the bundled episode as a whole, and
// the treatments it implicates are normally already on the claim when the
// diagnosis is recorded, so no time window applies.
func DefaultImplicatedTreatments(d *ClaimDiagnosis, treatments []*ClaimTreatment) []*ClaimTreatment {
	var implicated []*ClaimTreatment
	for _, t := range treatments {
		if t.Classification == ClassificationBundle {
			implicated = append(implicated, t)
		}
	}
	return implicated
}

// resolveBundle picks the bundle the claim is priced against. Preference
// order: the claim's own bundle, then the referral's selected bundle, then
// the first bundle (by code) whose diagnosis prefix matches the admission's
// principal diagnosis. Returns nil when nothing matches; the claim is then
// pure fee-for-service.
func (c *Classifier) resolveBundle(ctx context.Context, cl *Claim, adm *admission.Admission) (*catalog.Bundle, error) {
	if cl.BundleID != nil {
		return c.bundles.GetByID(ctx, *cl.BundleID)
	}
	if adm.ReferralID != nil {
		ref, err := c.referrals.GetByID(ctx, *adm.ReferralID)
		if err != nil && !db.IsNoRows(err) {
			return nil, err
		}
		if ref != nil && ref.BundleID != nil {
			return c.bundles.GetByID(ctx, *ref.BundleID)
		}
	}
	candidates, err := c.bundles.FindByDiagnosisCode(ctx, adm.PrincipalDiagnosisCode)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	return candidates[0], nil
}

// ClassifyAll classifies every unclassified treatment on the claim, pins the
// resolved bundle to the claim, recomputes totals, and advances the claim to
// classified. Already-classified lines are untouched. Returns the resulting
// classification of every line for caller display.
func (c *Classifier) ClassifyAll(ctx context.Context, cl *Claim, adm *admission.Admission) (map[uuid.UUID]Decision, error) {
	treatments, err := c.repo.ListTreatments(ctx, cl.ID)
	if err != nil {
		return nil, err
	}

	bundle, err := c.resolveBundle(ctx, cl, adm)
	if err != nil {
		return nil, err
	}

	components := make(map[uuid.UUID]bool)
	bundleCode := ""
	if bundle != nil {
		bundleCode = bundle.Code
		comps, err := c.bundles.ListComponents(ctx, bundle.ID)
		if err != nil {
			return nil, err
		}
		for _, comp := range comps {
			components[comp.ServiceItemID] = true
		}
		if cl.BundleID == nil {
			cl.BundleID = &bundle.ID
		}
	}

	decisions := make(map[uuid.UUID]Decision, len(treatments))
	for _, t := range treatments {
		if !t.IsClassified() {
			if components[t.ServiceItemID] {
				t.Classification = ClassificationBundle
			} else {
				t.Classification = ClassificationFFS
				t.ConversionReason = nil
			}
			if err := c.repo.UpdateTreatment(ctx, t); err != nil {
				return nil, err
			}
		}
		d := Decision{
			TreatmentID:      t.ID,
			Classification:   t.Classification,
			ConversionReason: t.ConversionReason,
		}
		if t.Classification == ClassificationBundle {
			d.BundleCode = bundleCode
		}
		decisions[t.ID] = d
	}

	recomputeTotals(cl, treatments, bundle)
	if cl.Status == StatusUnclassified {
		cl.Status = StatusClassified
	}
	if err := c.repo.Update(ctx, cl); err != nil {
		return nil, err
	}
	return decisions, nil
}

// ConvertToFFS applies an explicit bundle→FFS conversion to one line and
// recomputes the claim totals.
func (c *Classifier) ConvertToFFS(ctx context.Context, cl *Claim, t *ClaimTreatment, reason string) error {
	if err := t.ConvertToFFS(reason); err != nil {
		return err
	}
	if err := c.repo.UpdateTreatment(ctx, t); err != nil {
		return err
	}

	treatments, err := c.repo.ListTreatments(ctx, cl.ID)
	if err != nil {
		return err
	}
	var bundle *catalog.Bundle
	if cl.BundleID != nil {
		bundle, err = c.bundles.GetByID(ctx, *cl.BundleID)
		if err != nil {
			return err
		}
	}
	recomputeTotals(cl, treatments, bundle)
	return c.repo.Update(ctx, cl)
}

// recomputeTotals derives the claim totals: the bundle tariff is counted once
// when at least one line remains on the bundle, and ffs_total is the sum of
// FFS line totals.
func recomputeTotals(cl *Claim, treatments []*ClaimTreatment, bundle *catalog.Bundle) {
	bundleLines := 0
	ffsTotal := 0.0
	for _, t := range treatments {
		switch t.Classification {
		case ClassificationBundle:
			bundleLines++
		case ClassificationFFS:
			ffsTotal += t.LineTotal
		}
	}
	cl.BundleTotal = 0
	if bundle != nil && bundleLines > 0 {
		cl.BundleTotal = bundle.Tariff
	}
	cl.FFSTotal = ffsTotal
}

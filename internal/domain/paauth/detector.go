// Package paauth detects prior-authorization gaps: treatments whose catalog
// item requires a PA but with no usable grant covering the claim's scope.
package paauth

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hmo/claims/internal/domain/catalog"
)

// TreatmentRef identifies one claim line to check.
type TreatmentRef struct {
	TreatmentID   uuid.UUID
	ServiceItemID uuid.UUID
}

// Input is the claim scope to check against the PA grant store.
type Input struct {
	EnrolleeID  uuid.UUID
	ReferralID  *uuid.UUID
	AdmissionID *uuid.UUID
	Treatments  []TreatmentRef
}

// MissingPA is one uncovered PA-required treatment.
type MissingPA struct {
	TreatmentID   uuid.UUID `json:"treatment_id"`
	ServiceItemID uuid.UUID `json:"service_item_id"`
	ServiceCode   string    `json:"service_code"`
	ServiceName   string    `json:"service_name"`
}

type Detector struct {
	items catalog.ServiceItemRepository
	pas   catalog.PACodeRepository
	now   func() time.Time
}

func NewDetector(items catalog.ServiceItemRepository, pas catalog.PACodeRepository) *Detector {
	return &Detector{items: items, pas: pas, now: time.Now}
}

// DetectMissing returns the treatments flagged PA-required in the catalog that
// have no active, unexpired, unexhausted grant scoped to the claim's
// referral/admission/enrollee (or the specific service item). Read-only.
func (d *Detector) DetectMissing(ctx context.Context, in *Input) ([]*MissingPA, error) {
	if len(in.Treatments) == 0 {
		return nil, nil
	}

	seen := make(map[uuid.UUID]bool)
	var itemIDs []uuid.UUID
	for _, tr := range in.Treatments {
		if !seen[tr.ServiceItemID] {
			seen[tr.ServiceItemID] = true
			itemIDs = append(itemIDs, tr.ServiceItemID)
		}
	}

	items, err := d.items.ListByIDs(ctx, itemIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*catalog.ServiceItem, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}

	grants, err := d.pas.ListForScope(ctx, in.EnrolleeID, in.ReferralID, in.AdmissionID)
	if err != nil {
		return nil, err
	}

	now := d.now().UTC()
	var missing []*MissingPA
	for _, tr := range in.Treatments {
		item, ok := byID[tr.ServiceItemID]
		if !ok || !item.RequiresPA {
			continue
		}
		if coveredBy(grants, tr.ServiceItemID, now) {
			continue
		}
		missing = append(missing, &MissingPA{
			TreatmentID:   tr.TreatmentID,
			ServiceItemID: tr.ServiceItemID,
			ServiceCode:   item.Code,
			ServiceName:   item.Name,
		})
	}
	return missing, nil
}

func coveredBy(grants []*catalog.PACode, serviceItemID uuid.UUID, now time.Time) bool {
	for _, g := range grants {
		if g.Usable(now) && g.CoversItem(serviceItemID) {
			return true
		}
	}
	return false
}

package catalog

import (
	"time"

	"github.com/google/uuid"
)

// ServiceItem maps to the service_item table: one billable catalog entry
// (service, drug, or procedure) with its FFS unit tariff.
type ServiceItem struct {
	ID         uuid.UUID `db:"id" json:"id"`
	Code       string    `db:"code" json:"code"`
	Name       string    `db:"name" json:"name"`
	Category   string    `db:"category" json:"category"`
	UnitPrice  float64   `db:"unit_price" json:"unit_price"`
	RequiresPA bool      `db:"requires_pa" json:"requires_pa"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Bundle maps to the bundle table: a fixed-price case-rate tariff covering a
// defined set of services for a diagnosis/case category.
type Bundle struct {
	ID              uuid.UUID `db:"id" json:"id"`
	Code            string    `db:"code" json:"code"`
	Description     string    `db:"description" json:"description"`
	DiagnosisPrefix string    `db:"diagnosis_prefix" json:"diagnosis_prefix"`
	Tariff          float64   `db:"tariff" json:"tariff"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// BundleComponent maps to the bundle_component junction table: one service
// item whose cost is absorbed into the bundle tariff.
type BundleComponent struct {
	ID            uuid.UUID `db:"id" json:"id"`
	BundleID      uuid.UUID `db:"bundle_id" json:"bundle_id"`
	ServiceItemID uuid.UUID `db:"service_item_id" json:"service_item_id"`
}

// PA code statuses.
const (
	PAStatusActive    = "active"
	PAStatusExpired   = "expired"
	PAStatusExhausted = "exhausted"
	PAStatusRevoked   = "revoked"
)

// PACode maps to the pa_code table: a prior-authorization grant created by the
// referral-approval flow and consumed read-only here.
type PACode struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	Code          string     `db:"code" json:"code"`
	Status        string     `db:"status" json:"status"`
	EnrolleeID    uuid.UUID  `db:"enrollee_id" json:"enrollee_id"`
	ReferralID    *uuid.UUID `db:"referral_id" json:"referral_id,omitempty"`
	AdmissionID   *uuid.UUID `db:"admission_id" json:"admission_id,omitempty"`
	ServiceItemID *uuid.UUID `db:"service_item_id" json:"service_item_id,omitempty"`
	ExpiresAt     *time.Time `db:"expires_at" json:"expires_at,omitempty"`
	MaxUses       int        `db:"max_uses" json:"max_uses"`
	UseCount      int        `db:"use_count" json:"use_count"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
}

// Usable reports whether the grant can still authorize a service at the given
// time: status active, not past expiry, and not exhausted.
func (p *PACode) Usable(now time.Time) bool {
	if p.Status != PAStatusActive {
		return false
	}
	if p.ExpiresAt != nil && now.After(*p.ExpiresAt) {
		return false
	}
	if p.MaxUses > 0 && p.UseCount >= p.MaxUses {
		return false
	}
	return true
}

// CoversItem reports whether the grant applies to the given service item. A
// grant without a service_item scope covers any item within its
// referral/admission scope.
func (p *PACode) CoversItem(serviceItemID uuid.UUID) bool {
	return p.ServiceItemID == nil || *p.ServiceItemID == serviceItemID
}

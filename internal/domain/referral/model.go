package referral

import (
	"regexp"
	"time"

	"github.com/google/uuid"
)

// Referral statuses. Referrals are created and approved by the referral
// back office; this service only reads them to gate admission eligibility.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
	StatusExpired  = "expired"
)

var utnPattern = regexp.MustCompile(`^UTN-[A-Z0-9]{8,12}$`)

// Referral maps to the referral table.
type Referral struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	EnrolleeID uuid.UUID  `db:"enrollee_id" json:"enrollee_id"`
	FacilityID uuid.UUID  `db:"facility_id" json:"facility_id"`
	UTN        string     `db:"utn" json:"utn"`
	Status     string     `db:"status" json:"status"`
	BundleID   *uuid.UUID `db:"bundle_id" json:"bundle_id,omitempty"`
	ApprovedAt *time.Time `db:"approved_at" json:"approved_at,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}

// ValidUTN reports whether s matches the unique tracking number format
// issued by the referral system.
func ValidUTN(s string) bool {
	return utnPattern.MatchString(s)
}

// Admissible reports whether the referral can back a new admission: it must
// be approved and carry a well-formed UTN.
func (r *Referral) Admissible() bool {
	return r.Status == StatusApproved && ValidUTN(r.UTN)
}

package compliance

import (
	"time"

	"github.com/google/uuid"

	"github.com/hmo/claims/internal/platform/respond"
)

// Alert severities, ordered info < warning < critical.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

var severityRank = map[string]int{
	SeverityInfo:     0,
	SeverityWarning:  1,
	SeverityCritical: 2,
}

// SeverityLess reports whether a is strictly less severe than b.
func SeverityLess(a, b string) bool {
	return severityRank[a] < severityRank[b]
}

// Alert statuses. Resolved and overridden are terminal; this subsystem never
// re-opens an alert.
const (
	StatusOpen       = "open"
	StatusResolved   = "resolved"
	StatusOverridden = "overridden"
)

// Alert maps to the compliance_alert table: one finding raised against a
// claim by a validation rule. Override is "accepted risk"; resolve is "fixed".
type Alert struct {
	ID                    uuid.UUID  `db:"id" json:"id"`
	ClaimID               uuid.UUID  `db:"claim_id" json:"claim_id"`
	RuleID                string     `db:"rule_id" json:"rule_id"`
	Severity              string     `db:"severity" json:"severity"`
	Status                string     `db:"status" json:"status"`
	Description           string     `db:"description" json:"description"`
	ResolvedBy            *string    `db:"resolved_by" json:"resolved_by,omitempty"`
	ResolvedAt            *time.Time `db:"resolved_at" json:"resolved_at,omitempty"`
	ResolutionNotes       *string    `db:"resolution_notes" json:"resolution_notes,omitempty"`
	OverriddenBy          *string    `db:"overridden_by" json:"overridden_by,omitempty"`
	OverriddenAt          *time.Time `db:"overridden_at" json:"overridden_at,omitempty"`
	OverrideJustification *string    `db:"override_justification" json:"override_justification,omitempty"`
	CreatedAt             time.Time  `db:"created_at" json:"created_at"`
}

func (a *Alert) IsOpen() bool {
	return a.Status == StatusOpen
}

// Resolve closes the alert as fixed. Legal only from open; notes are required.
func (a *Alert) Resolve(actor, notes string, now time.Time) error {
	if notes == "" {
		return respond.NewValidationError("resolution notes are required", "notes", "must not be empty")
	}
	if !a.IsOpen() {
		return respond.NewConflictError("alert is not open", a)
	}
	a.Status = StatusResolved
	a.ResolvedBy = &actor
	a.ResolvedAt = &now
	a.ResolutionNotes = &notes
	return nil
}

// Override closes the alert as accepted risk. Legal only from open; the
// justification must meet the configured minimum length.
func (a *Alert) Override(actor, justification string, minLen int, now time.Time) error {
	if len(justification) < minLen {
		return respond.NewValidationError("override justification too short",
			"justification", "must meet the minimum length")
	}
	if !a.IsOpen() {
		return respond.NewConflictError("alert is not open", a)
	}
	a.Status = StatusOverridden
	a.OverriddenBy = &actor
	a.OverriddenAt = &now
	a.OverrideJustification = &justification
	return nil
}

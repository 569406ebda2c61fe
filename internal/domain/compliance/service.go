package compliance

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hmo/claims/internal/platform/db"
	"github.com/hmo/claims/internal/platform/respond"
)

type Service struct {
	repo             Repository
	rules            []Rule
	minJustification int
	runTx            db.TxRunner
	now              func() time.Time
}

func NewService(repo Repository, runTx db.TxRunner, minJustification int) *Service {
	return &Service{
		repo:             repo,
		rules:            DefaultRules(),
		minJustification: minJustification,
		runTx:            runTx,
		now:              time.Now,
	}
}

// ValidationResult is the outcome of a full rule pass.
type ValidationResult struct {
	Passed    bool       `json:"passed"`
	Findings  []Finding  `json:"findings"`
	Alerts    []*Alert   `json:"alerts"`
	NewAlerts int        `json:"new_alerts"`
	ClaimID   uuid.UUID  `json:"claim_id"`
}

// ValidateClaim runs the ordered rule list over the view. Each violation
// raises an OPEN alert unless one with the same rule id is already open on
// the claim, so repeated validation never duplicates alerts. Returns the full
// current alert set and a pass/fail summary.
func (s *Service) ValidateClaim(ctx context.Context, v *ClaimView) (*ValidationResult, error) {
	result := &ValidationResult{ClaimID: v.ClaimID}

	err := s.runTx(ctx, func(ctx context.Context) error {
		existing, err := s.repo.ListByClaim(ctx, v.ClaimID)
		if err != nil {
			return err
		}
		openRules := make(map[string]bool)
		for _, a := range existing {
			if a.IsOpen() {
				openRules[a.RuleID] = true
			}
		}

		for _, rule := range s.rules {
			f := rule.Check(v)
			if f == nil {
				continue
			}
			result.Findings = append(result.Findings, *f)
			if openRules[f.RuleID] {
				continue
			}
			alert := &Alert{
				ClaimID:     v.ClaimID,
				RuleID:      f.RuleID,
				Severity:    f.Severity,
				Status:      StatusOpen,
				Description: f.Description,
			}
			if err := s.repo.Create(ctx, alert); err != nil {
				return err
			}
			result.NewAlerts++
		}

		result.Alerts, err = s.repo.ListByClaim(ctx, v.ClaimID)
		return err
	})
	if err != nil {
		return nil, err
	}

	result.Passed = len(result.Findings) == 0
	return result, nil
}

func (s *Service) getAlert(ctx context.Context, id uuid.UUID) (*Alert, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, respond.NewNotFoundError("alert", id.String())
		}
		return nil, err
	}
	return a, nil
}

// ResolveAlert marks the alert fixed. Terminal states reject the transition.
func (s *Service) ResolveAlert(ctx context.Context, actor string, id uuid.UUID, notes string) (*Alert, error) {
	a, err := s.getAlert(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := a.Resolve(actor, notes, s.now().UTC()); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// OverrideAlert marks the alert as accepted risk with an audited justification.
func (s *Service) OverrideAlert(ctx context.Context, actor string, id uuid.UUID, justification string) (*Alert, error) {
	a, err := s.getAlert(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := a.Override(actor, justification, s.minJustification, s.now().UTC()); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) ListAlerts(ctx context.Context, claimID uuid.UUID) ([]*Alert, error) {
	return s.repo.ListByClaim(ctx, claimID)
}

package admission

import (
	"errors"
	"testing"
	"time"

	"github.com/hmo/claims/internal/platform/respond"
)

func TestDischarge_FromActive(t *testing.T) {
	admitted := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	now := admitted.Add(72 * time.Hour)
	adm := &Admission{Status: StatusActive, AdmittedAt: admitted}

	err := adm.Discharge(DischargeInput{Summary: "recovered, discharged home"}, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if adm.Status != StatusDischarged {
		t.Errorf("expected status discharged, got %s", adm.Status)
	}
	if adm.DischargedAt == nil || !adm.DischargedAt.Equal(now) {
		t.Error("discharged_at not set")
	}
	if adm.ActualWardDays == nil || *adm.ActualWardDays != 3 {
		t.Errorf("expected 3 derived ward days, got %v", adm.ActualWardDays)
	}
}

func TestDischarge_ExplicitWardDays(t *testing.T) {
	days := 5
	adm := &Admission{Status: StatusActive, AdmittedAt: time.Now().Add(-time.Hour)}
	err := adm.Discharge(DischargeInput{Summary: "transferred", ActualWardDays: &days}, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *adm.ActualWardDays != 5 {
		t.Errorf("expected explicit ward days 5, got %d", *adm.ActualWardDays)
	}
}

func TestDischarge_AlreadyDischarged(t *testing.T) {
	adm := &Admission{Status: StatusDischarged}
	err := adm.Discharge(DischargeInput{Summary: "again"}, time.Now())

	var conflict *respond.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if adm.DischargedAt != nil {
		t.Error("failed transition must not mutate the admission")
	}
}

func TestDischarge_SameDayStayCountsOneDay(t *testing.T) {
	admitted := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	adm := &Admission{Status: StatusActive, AdmittedAt: admitted}
	if err := adm.Discharge(DischargeInput{Summary: "day case"}, admitted.Add(6*time.Hour)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *adm.ActualWardDays != 1 {
		t.Errorf("expected minimum 1 ward day, got %d", *adm.ActualWardDays)
	}
}

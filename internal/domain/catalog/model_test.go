package catalog

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestPACode_Usable(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(24 * time.Hour)

	tests := []struct {
		name string
		pa   PACode
		want bool
	}{
		{"active unlimited", PACode{Status: PAStatusActive}, true},
		{"active before expiry", PACode{Status: PAStatusActive, ExpiresAt: &future}, true},
		{"past expiry", PACode{Status: PAStatusActive, ExpiresAt: &past}, false},
		{"revoked", PACode{Status: PAStatusRevoked}, false},
		{"expired status", PACode{Status: PAStatusExpired}, false},
		{"uses remaining", PACode{Status: PAStatusActive, MaxUses: 3, UseCount: 2}, true},
		{"exhausted", PACode{Status: PAStatusActive, MaxUses: 3, UseCount: 3}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pa.Usable(now); got != tt.want {
				t.Errorf("Usable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPACode_CoversItem(t *testing.T) {
	itemID := uuid.New()
	otherID := uuid.New()

	unscoped := PACode{}
	if !unscoped.CoversItem(itemID) {
		t.Error("unscoped grant should cover any item")
	}

	scoped := PACode{ServiceItemID: &itemID}
	if !scoped.CoversItem(itemID) {
		t.Error("scoped grant should cover its own item")
	}
	if scoped.CoversItem(otherID) {
		t.Error("scoped grant should not cover a different item")
	}
}

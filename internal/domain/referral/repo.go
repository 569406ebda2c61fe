package referral

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the read-only view of referrals.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Referral, error)
	GetByUTN(ctx context.Context, utn string) (*Referral, error)
}

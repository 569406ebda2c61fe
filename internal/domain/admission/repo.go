package admission

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, adm *Admission) error
	GetByID(ctx context.Context, id uuid.UUID) (*Admission, error)
	GetActiveByEnrollee(ctx context.Context, enrolleeID uuid.UUID) (*Admission, error)
	Update(ctx context.Context, adm *Admission) error
	ListByEnrollee(ctx context.Context, enrolleeID uuid.UUID, limit, offset int) ([]*Admission, int, error)
}

package catalog

import (
	"context"

	"github.com/google/uuid"
)

// BundleRepository is the read-only view of the bundle catalog consumed by
// treatment classification. Bundle administration lives in a separate back
// office and never goes through this service.
type BundleRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Bundle, error)
	GetByCode(ctx context.Context, code string) (*Bundle, error)
	// FindByDiagnosisCode returns bundles whose diagnosis_prefix is a prefix
	// of the given ICD-10 code, ordered by bundle code.
	FindByDiagnosisCode(ctx context.Context, icd10 string) ([]*Bundle, error)
	ListComponents(ctx context.Context, bundleID uuid.UUID) ([]*BundleComponent, error)
	List(ctx context.Context, limit, offset int) ([]*Bundle, int, error)
}

// ServiceItemRepository is the read-only service/drug/procedure catalog.
type ServiceItemRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*ServiceItem, error)
	GetByCode(ctx context.Context, code string) (*ServiceItem, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*ServiceItem, error)
	List(ctx context.Context, limit, offset int) ([]*ServiceItem, int, error)
}

// PACodeRepository is the read-only view of prior-authorization grants.
type PACodeRepository interface {
	GetByCode(ctx context.Context, code string) (*PACode, error)
	// ListForScope returns every grant that could cover services under the
	// given enrollee, referral, or admission. Grants scoped to a different
	// referral/admission are excluded; enrollee-wide grants are included.
	ListForScope(ctx context.Context, enrolleeID uuid.UUID, referralID, admissionID *uuid.UUID) ([]*PACode, error)
}

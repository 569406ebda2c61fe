package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hmo/claims/internal/platform/db"
)

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

type repoPG struct {
	pool *pgxpool.Pool
}

func (r *repoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

// Bundles

type bundleRepoPG struct{ repoPG }

func NewBundleRepo(pool *pgxpool.Pool) BundleRepository {
	return &bundleRepoPG{repoPG{pool: pool}}
}

const bundleCols = `id, code, description, diagnosis_prefix, tariff, created_at`

func scanBundle(row pgx.Row) (*Bundle, error) {
	var b Bundle
	err := row.Scan(&b.ID, &b.Code, &b.Description, &b.DiagnosisPrefix, &b.Tariff, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bundleRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Bundle, error) {
	return scanBundle(r.conn(ctx).QueryRow(ctx, `SELECT `+bundleCols+` FROM bundle WHERE id = $1`, id))
}

func (r *bundleRepoPG) GetByCode(ctx context.Context, code string) (*Bundle, error) {
	return scanBundle(r.conn(ctx).QueryRow(ctx, `SELECT `+bundleCols+` FROM bundle WHERE code = $1`, code))
}

func (r *bundleRepoPG) FindByDiagnosisCode(ctx context.Context, icd10 string) ([]*Bundle, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+bundleCols+` FROM bundle WHERE $1 LIKE diagnosis_prefix || '%' ORDER BY code`, icd10)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bundles []*Bundle
	for rows.Next() {
		b, err := scanBundle(rows)
		if err != nil {
			return nil, err
		}
		bundles = append(bundles, b)
	}
	return bundles, rows.Err()
}

func (r *bundleRepoPG) ListComponents(ctx context.Context, bundleID uuid.UUID) ([]*BundleComponent, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT id, bundle_id, service_item_id FROM bundle_component WHERE bundle_id = $1`, bundleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comps []*BundleComponent
	for rows.Next() {
		var c BundleComponent
		if err := rows.Scan(&c.ID, &c.BundleID, &c.ServiceItemID); err != nil {
			return nil, err
		}
		comps = append(comps, &c)
	}
	return comps, rows.Err()
}

func (r *bundleRepoPG) List(ctx context.Context, limit, offset int) ([]*Bundle, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM bundle`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+bundleCols+` FROM bundle ORDER BY code LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var bundles []*Bundle
	for rows.Next() {
		b, err := scanBundle(rows)
		if err != nil {
			return nil, 0, err
		}
		bundles = append(bundles, b)
	}
	return bundles, total, rows.Err()
}

// Service items

type serviceItemRepoPG struct{ repoPG }

func NewServiceItemRepo(pool *pgxpool.Pool) ServiceItemRepository {
	return &serviceItemRepoPG{repoPG{pool: pool}}
}

const itemCols = `id, code, name, category, unit_price, requires_pa, created_at`

func scanItem(row pgx.Row) (*ServiceItem, error) {
	var si ServiceItem
	err := row.Scan(&si.ID, &si.Code, &si.Name, &si.Category, &si.UnitPrice, &si.RequiresPA, &si.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &si, nil
}

func (r *serviceItemRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*ServiceItem, error) {
	return scanItem(r.conn(ctx).QueryRow(ctx, `SELECT `+itemCols+` FROM service_item WHERE id = $1`, id))
}

func (r *serviceItemRepoPG) GetByCode(ctx context.Context, code string) (*ServiceItem, error) {
	return scanItem(r.conn(ctx).QueryRow(ctx, `SELECT `+itemCols+` FROM service_item WHERE code = $1`, code))
}

func (r *serviceItemRepoPG) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*ServiceItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+itemCols+` FROM service_item WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*ServiceItem
	for rows.Next() {
		si, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, si)
	}
	return items, rows.Err()
}

func (r *serviceItemRepoPG) List(ctx context.Context, limit, offset int) ([]*ServiceItem, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM service_item`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+itemCols+` FROM service_item ORDER BY code LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*ServiceItem
	for rows.Next() {
		si, err := scanItem(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, si)
	}
	return items, total, rows.Err()
}

// PA codes

type paCodeRepoPG struct{ repoPG }

func NewPACodeRepo(pool *pgxpool.Pool) PACodeRepository {
	return &paCodeRepoPG{repoPG{pool: pool}}
}

const paCols = `id, code, status, enrollee_id, referral_id, admission_id, service_item_id,
	expires_at, max_uses, use_count, created_at`

func scanPA(row pgx.Row) (*PACode, error) {
	var p PACode
	err := row.Scan(&p.ID, &p.Code, &p.Status, &p.EnrolleeID, &p.ReferralID, &p.AdmissionID,
		&p.ServiceItemID, &p.ExpiresAt, &p.MaxUses, &p.UseCount, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *paCodeRepoPG) GetByCode(ctx context.Context, code string) (*PACode, error) {
	return scanPA(r.conn(ctx).QueryRow(ctx, `SELECT `+paCols+` FROM pa_code WHERE code = $1`, code))
}

func (r *paCodeRepoPG) ListForScope(ctx context.Context, enrolleeID uuid.UUID, referralID, admissionID *uuid.UUID) ([]*PACode, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+paCols+` FROM pa_code
		WHERE enrollee_id = $1
		  AND (referral_id IS NULL OR referral_id = $2)
		  AND (admission_id IS NULL OR admission_id = $3)
		ORDER BY created_at`,
		enrolleeID, referralID, admissionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var codes []*PACode
	for rows.Next() {
		p, err := scanPA(rows)
		if err != nil {
			return nil, err
		}
		codes = append(codes, p)
	}
	return codes, rows.Err()
}

package compliance

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hmo/claims/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (r *repoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const alertCols = `id, claim_id, rule_id, severity, status, description,
	resolved_by, resolved_at, resolution_notes,
	overridden_by, overridden_at, override_justification, created_at`

func scanAlert(row pgx.Row) (*Alert, error) {
	var a Alert
	err := row.Scan(&a.ID, &a.ClaimID, &a.RuleID, &a.Severity, &a.Status, &a.Description,
		&a.ResolvedBy, &a.ResolvedAt, &a.ResolutionNotes,
		&a.OverriddenBy, &a.OverriddenAt, &a.OverrideJustification, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repoPG) Create(ctx context.Context, a *Alert) error {
	a.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO compliance_alert (id, claim_id, rule_id, severity, status, description)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		a.ID, a.ClaimID, a.RuleID, a.Severity, a.Status, a.Description,
	)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Alert, error) {
	return scanAlert(r.conn(ctx).QueryRow(ctx,
		`SELECT `+alertCols+` FROM compliance_alert WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, a *Alert) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE compliance_alert SET
			status=$2, resolved_by=$3, resolved_at=$4, resolution_notes=$5,
			overridden_by=$6, overridden_at=$7, override_justification=$8
		WHERE id = $1`,
		a.ID, a.Status, a.ResolvedBy, a.ResolvedAt, a.ResolutionNotes,
		a.OverriddenBy, a.OverriddenAt, a.OverrideJustification,
	)
	return err
}

func (r *repoPG) ListByClaim(ctx context.Context, claimID uuid.UUID) ([]*Alert, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+alertCols+` FROM compliance_alert WHERE claim_id = $1 ORDER BY created_at`, claimID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []*Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

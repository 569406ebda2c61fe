package claims

import (
	"context"
	"encoding/json"

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

const claimCols = `id, admission_id, enrollee_id, status, bundle_id, bundle_total, ffs_total, created_at, updated_at`

func scanClaim(row pgx.Row) (*Claim, error) {
	var cl Claim
	err := row.Scan(&cl.ID, &cl.AdmissionID, &cl.EnrolleeID, &cl.Status, &cl.BundleID,
		&cl.BundleTotal, &cl.FFSTotal, &cl.CreatedAt, &cl.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &cl, nil
}

func (r *repoPG) Create(ctx context.Context, cl *Claim) error {
	cl.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO claim (id, admission_id, enrollee_id, status, bundle_id, bundle_total, ffs_total)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		cl.ID, cl.AdmissionID, cl.EnrolleeID, cl.Status, cl.BundleID, cl.BundleTotal, cl.FFSTotal,
	)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Claim, error) {
	return scanClaim(r.conn(ctx).QueryRow(ctx, `SELECT `+claimCols+` FROM claim WHERE id = $1`, id))
}

func (r *repoPG) GetByAdmissionID(ctx context.Context, admissionID uuid.UUID) (*Claim, error) {
	return scanClaim(r.conn(ctx).QueryRow(ctx,
		`SELECT `+claimCols+` FROM claim WHERE admission_id = $1`, admissionID))
}

func (r *repoPG) Update(ctx context.Context, cl *Claim) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE claim SET status=$2, bundle_id=$3, bundle_total=$4, ffs_total=$5, updated_at=NOW()
		WHERE id = $1`,
		cl.ID, cl.Status, cl.BundleID, cl.BundleTotal, cl.FFSTotal,
	)
	return err
}

func (r *repoPG) AddDiagnosis(ctx context.Context, d *ClaimDiagnosis) error {
	d.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO claim_diagnosis (id, claim_id, icd10_code, description, is_complication, diagnosed_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		d.ID, d.ClaimID, d.ICD10Code, d.Description, d.IsComplication, d.DiagnosedAt,
	)
	return err
}

func (r *repoPG) ListDiagnoses(ctx context.Context, claimID uuid.UUID) ([]*ClaimDiagnosis, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, claim_id, icd10_code, description, is_complication, diagnosed_at
		FROM claim_diagnosis WHERE claim_id = $1 ORDER BY diagnosed_at`, claimID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var diags []*ClaimDiagnosis
	for rows.Next() {
		var d ClaimDiagnosis
		if err := rows.Scan(&d.ID, &d.ClaimID, &d.ICD10Code, &d.Description, &d.IsComplication, &d.DiagnosedAt); err != nil {
			return nil, err
		}
		diags = append(diags, &d)
	}
	return diags, rows.Err()
}

const treatmentCols = `id, claim_id, service_item_id, classification, conversion_reason,
	unit_price, quantity, line_total, recorded_at, updated_at`

func scanTreatment(row pgx.Row) (*ClaimTreatment, error) {
	var t ClaimTreatment
	err := row.Scan(&t.ID, &t.ClaimID, &t.ServiceItemID, &t.Classification, &t.ConversionReason,
		&t.UnitPrice, &t.Quantity, &t.LineTotal, &t.RecordedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *repoPG) AddTreatment(ctx context.Context, t *ClaimTreatment) error {
	t.ID = uuid.New()
	t.LineTotal = t.UnitPrice * float64(t.Quantity)
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO claim_treatment (id, claim_id, service_item_id, classification, conversion_reason,
			unit_price, quantity, line_total, recorded_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		t.ID, t.ClaimID, t.ServiceItemID, t.Classification, t.ConversionReason,
		t.UnitPrice, t.Quantity, t.LineTotal, t.RecordedAt,
	)
	return err
}

func (r *repoPG) GetTreatment(ctx context.Context, id uuid.UUID) (*ClaimTreatment, error) {
	return scanTreatment(r.conn(ctx).QueryRow(ctx,
		`SELECT `+treatmentCols+` FROM claim_treatment WHERE id = $1`, id))
}

func (r *repoPG) UpdateTreatment(ctx context.Context, t *ClaimTreatment) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE claim_treatment SET classification=$2, conversion_reason=$3, updated_at=NOW()
		WHERE id = $1`,
		t.ID, t.Classification, t.ConversionReason,
	)
	return err
}

func (r *repoPG) ListTreatments(ctx context.Context, claimID uuid.UUID) ([]*ClaimTreatment, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+treatmentCols+` FROM claim_treatment WHERE claim_id = $1 ORDER BY recorded_at`, claimID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var treatments []*ClaimTreatment
	for rows.Next() {
		t, err := scanTreatment(rows)
		if err != nil {
			return nil, err
		}
		treatments = append(treatments, t)
	}
	return treatments, rows.Err()
}

func (r *repoPG) SaveSnapshot(ctx context.Context, snap *SectionSnapshot) error {
	snap.ID = uuid.New()
	payload, err := json.Marshal(snap.Sections)
	if err != nil {
		return err
	}
	_, err = r.conn(ctx).Exec(ctx, `
		INSERT INTO claim_section_snapshot (id, claim_id, sections, built_by, built_at)
		VALUES ($1,$2,$3,$4,$5)`,
		snap.ID, snap.ClaimID, payload, snap.BuiltBy, snap.BuiltAt,
	)
	return err
}

func (r *repoPG) LatestSnapshot(ctx context.Context, claimID uuid.UUID) (*SectionSnapshot, error) {
	var snap SectionSnapshot
	var payload []byte
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, claim_id, sections, built_by, built_at
		FROM claim_section_snapshot WHERE claim_id = $1 ORDER BY built_at DESC LIMIT 1`, claimID).
		Scan(&snap.ID, &snap.ClaimID, &payload, &snap.BuiltBy, &snap.BuiltAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(payload, &snap.Sections); err != nil {
		return nil, err
	}
	return &snap, nil
}

package admission

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

const admCols = `id, enrollee_id, facility_id, referral_id, pa_code_id, status, admission_type,
	principal_diagnosis_code, principal_diagnosis_desc, ward_type,
	planned_ward_days, actual_ward_days, attending_physician_id, attending_physician_name,
	admitted_at, discharged_at, discharge_summary, discharge_diagnosis,
	created_by, created_at, updated_at`

func scanAdm(row pgx.Row) (*Admission, error) {
	var a Admission
	err := row.Scan(&a.ID, &a.EnrolleeID, &a.FacilityID, &a.ReferralID, &a.PACodeID,
		&a.Status, &a.AdmissionType,
		&a.PrincipalDiagnosisCode, &a.PrincipalDiagnosisDesc, &a.WardType,
		&a.PlannedWardDays, &a.ActualWardDays, &a.AttendingPhysicianID, &a.AttendingPhysicianName,
		&a.AdmittedAt, &a.DischargedAt, &a.DischargeSummary, &a.DischargeDiagnosis,
		&a.CreatedBy, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repoPG) Create(ctx context.Context, adm *Admission) error {
	adm.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO admission (
			id, enrollee_id, facility_id, referral_id, pa_code_id, status, admission_type,
			principal_diagnosis_code, principal_diagnosis_desc, ward_type,
			planned_ward_days, attending_physician_id, attending_physician_name,
			admitted_at, created_by
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
		adm.ID, adm.EnrolleeID, adm.FacilityID, adm.ReferralID, adm.PACodeID,
		adm.Status, adm.AdmissionType,
		adm.PrincipalDiagnosisCode, adm.PrincipalDiagnosisDesc, adm.WardType,
		adm.PlannedWardDays, adm.AttendingPhysicianID, adm.AttendingPhysicianName,
		adm.AdmittedAt, adm.CreatedBy,
	)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Admission, error) {
	return scanAdm(r.conn(ctx).QueryRow(ctx, `SELECT `+admCols+` FROM admission WHERE id = $1`, id))
}

func (r *repoPG) GetActiveByEnrollee(ctx context.Context, enrolleeID uuid.UUID) (*Admission, error) {
	return scanAdm(r.conn(ctx).QueryRow(ctx,
		`SELECT `+admCols+` FROM admission WHERE enrollee_id = $1 AND status = $2`,
		enrolleeID, StatusActive))
}

func (r *repoPG) Update(ctx context.Context, adm *Admission) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE admission SET
			status=$2, actual_ward_days=$3, discharged_at=$4,
			discharge_summary=$5, discharge_diagnosis=$6, updated_at=NOW()
		WHERE id = $1`,
		adm.ID, adm.Status, adm.ActualWardDays, adm.DischargedAt,
		adm.DischargeSummary, adm.DischargeDiagnosis,
	)
	return err
}

func (r *repoPG) ListByEnrollee(ctx context.Context, enrolleeID uuid.UUID, limit, offset int) ([]*Admission, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM admission WHERE enrollee_id = $1`, enrolleeID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+admCols+` FROM admission WHERE enrollee_id = $1 ORDER BY admitted_at DESC LIMIT $2 OFFSET $3`,
		enrolleeID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var adms []*Admission
	for rows.Next() {
		a, err := scanAdm(rows)
		if err != nil {
			return nil, 0, err
		}
		adms = append(adms, a)
	}
	return adms, total, rows.Err()
}

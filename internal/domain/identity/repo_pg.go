package identity

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dentix/dentix/internal/platform/db"
)

type patientRepoPG struct {
	pool *pgxpool.Pool
}

func NewPatientRepo(pool *pgxpool.Pool) PatientRepository {
	return &patientRepoPG{pool: pool}
}

func (r *patientRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const patientCols = `id, tenant_id, document_type_id, document_id, name, last_name, phone, address, email,
	to_char(birth_date, 'YYYY-MM-DD'), gender, marital_status_id, blood_type_id, occupation,
	status, created_at, updated_at`

var patientFilters = db.FilterSet{
	"name":          {Op: db.FilterContains, Columns: []string{"name", "last_name"}},
	"last_name":     {Op: db.FilterContains, Column: "last_name"},
	"document_id":   {Op: db.FilterExact, Column: "document_id"},
	"email":         {Op: db.FilterContains, Column: "email"},
	"phone":         {Op: db.FilterContains, Column: "phone"},
	"gender":        {Op: db.FilterExact, Column: "gender"},
	"blood_type_id": {Op: db.FilterInt, Column: "blood_type_id"},
}

func (r *patientRepoPG) Create(ctx context.Context, p *Patient) error {
	tenantID, err := db.RequireTenant(ctx)
	if err != nil {
		return err
	}
	p.TenantID = tenantID
	p.Status = StatusActive

	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO patients (
			tenant_id, document_type_id, document_id, name, last_name, phone, address, email,
			birth_date, gender, marital_status_id, blood_type_id, occupation, status
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9::date,$10,$11,$12,$13,$14)
		RETURNING id, created_at, updated_at`,
		p.TenantID, p.DocumentTypeID, p.DocumentID, p.Name, p.LastName, p.Phone, p.Address, p.Email,
		p.BirthDate, p.Gender, p.MaritalStatusID, p.BloodTypeID, p.Occupation, p.Status,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *patientRepoPG) GetByID(ctx context.Context, id int64) (*Patient, error) {
	tenantID, err := db.RequireTenant(ctx)
	if err != nil {
		return nil, err
	}
	return scanPatient(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patients WHERE id = $1 AND tenant_id = $2 AND status = 1`, id, tenantID))
}

func (r *patientRepoPG) List(ctx context.Context, params map[string]string, limit, offset int) ([]*Patient, int, error) {
	tenantID, err := db.RequireTenant(ctx)
	if err != nil {
		return nil, 0, err
	}
	qb := db.NewSearchQuery("patients", patientCols)
	qb.Eq("tenant_id", tenantID)
	qb.Add("status = 1")
	if err := qb.ApplyParams(params, patientFilters); err != nil {
		return nil, 0, err
	}
	qb.OrderBy("last_name, name, id")

	var total int
	if err := r.conn(ctx).QueryRow(ctx, qb.CountSQL(), qb.CountArgs()...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, qb.DataSQL(), qb.DataArgs(limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	patients := []*Patient{}
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		patients = append(patients, p)
	}
	return patients, total, rows.Err()
}

func (r *patientRepoPG) Update(ctx context.Context, id int64, patch *db.Patch) (*Patient, error) {
	tenantID, err := db.RequireTenant(ctx)
	if err != nil {
		return nil, err
	}
	patch.And("status = 1")
	sql, args := patch.Build("patients", id, tenantID, patientCols, "updated_at = NOW()")
	return scanPatient(r.conn(ctx).QueryRow(ctx, sql, args...))
}

func (r *patientRepoPG) SoftDelete(ctx context.Context, id int64) error {
	tenantID, err := db.RequireTenant(ctx)
	if err != nil {
		return err
	}
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE patients SET status = 0, updated_at = NOW() WHERE id = $1 AND tenant_id = $2 AND status = 1`,
		id, tenantID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(
		&p.ID, &p.TenantID, &p.DocumentTypeID, &p.DocumentID, &p.Name, &p.LastName, &p.Phone, &p.Address, &p.Email,
		&p.BirthDate, &p.Gender, &p.MaritalStatusID, &p.BloodTypeID, &p.Occupation,
		&p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

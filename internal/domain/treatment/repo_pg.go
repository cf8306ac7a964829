package treatment

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dentix/dentix/internal/platform/db"
)

type treatmentRepoPG struct {
	pool *pgxpool.Pool
}

func NewTreatmentRepo(pool *pgxpool.Pool) TreatmentRepository {
	return &treatmentRepoPG{pool: pool}
}

func (r *treatmentRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const treatmentCols = `t.id, t.tenant_id, t.appointment_id, t.description, t.cost, t.completed,
	t.created_at, t.updated_at,
	a.appointment_time, a.status, p.name, p.last_name, p.phone, d.name, o.name`

const treatmentFrom = `treatments t
	JOIN appointments a ON a.id = t.appointment_id
	JOIN patients p ON p.id = a.patient_id
	JOIN dentists d ON d.id = a.dentist_id
	JOIN offices o ON o.id = a.office_id`

var treatmentFilters = db.FilterSet{
	"appointment_id": {Op: db.FilterInt, Column: "t.appointment_id"},
	"completed":      {Op: db.FilterBool, Column: "t.completed"},
	"cost_min":       {Op: db.FilterMin, Column: "t.cost"},
	"cost_max":       {Op: db.FilterMax, Column: "t.cost"},
}

var patientFilters = db.FilterSet{
	"completed": treatmentFilters["completed"],
	"date_from": {Op: db.FilterDateFrom, Column: "a.appointment_time"},
	"date_to":   {Op: db.FilterDateTo, Column: "a.appointment_time"},
}

var statsFilters = db.FilterSet{
	"date_from": patientFilters["date_from"],
	"date_to":   patientFilters["date_to"],
}

func (r *treatmentRepoPG) Create(ctx context.Context, t *Treatment) error {
	tenantID, err := db.RequireTenant(ctx)
	if err != nil {
		return err
	}
	t.TenantID = tenantID

	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO treatments (tenant_id, appointment_id, description, cost, completed)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		t.TenantID, t.AppointmentID, t.Description, t.Cost, t.Completed,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

func (r *treatmentRepoPG) GetByID(ctx context.Context, id int64) (*Treatment, error) {
	tenantID, err := db.RequireTenant(ctx)
	if err != nil {
		return nil, err
	}
	return scanTreatment(r.conn(ctx).QueryRow(ctx,
		`SELECT `+treatmentCols+` FROM `+treatmentFrom+` WHERE t.id = $1 AND t.tenant_id = $2`, id, tenantID))
}

func (r *treatmentRepoPG) List(ctx context.Context, params map[string]string, limit, offset int) ([]*Treatment, int, error) {
	tenantID, err := db.RequireTenant(ctx)
	if err != nil {
		return nil, 0, err
	}
	qb := db.NewSearchQuery(treatmentFrom, treatmentCols)
	qb.Eq("t.tenant_id", tenantID)
	if err := qb.ApplyParams(params, treatmentFilters); err != nil {
		return nil, 0, err
	}
	qb.OrderBy("t.id DESC")

	var total int
	if err := r.conn(ctx).QueryRow(ctx, qb.CountSQL(), qb.CountArgs()...).Scan(&total); err != nil {
		return nil, 0, err
	}
	items, err := r.query(ctx, qb.DataSQL(), qb.DataArgs(limit, offset)...)
	return items, total, err
}

func (r *treatmentRepoPG) ListByAppointment(ctx context.Context, appointmentID int64) ([]*Treatment, error) {
	tenantID, err := db.RequireTenant(ctx)
	if err != nil {
		return nil, err
	}
	return r.query(ctx, `SELECT `+treatmentCols+` FROM `+treatmentFrom+`
		WHERE t.tenant_id = $1 AND t.appointment_id = $2
		ORDER BY t.id ASC`, tenantID, appointmentID)
}

func (r *treatmentRepoPG) ListByPatient(ctx context.Context, patientID int64, params map[string]string) ([]*Treatment, error) {
	tenantID, err := db.RequireTenant(ctx)
	if err != nil {
		return nil, err
	}
	qb := db.NewSearchQuery(treatmentFrom, treatmentCols)
	qb.Eq("t.tenant_id", tenantID)
	qb.Eq("a.patient_id", patientID)
	if err := qb.ApplyParams(params, patientFilters); err != nil {
		return nil, err
	}
	qb.OrderBy("a.appointment_time DESC, t.id DESC")
	return r.query(ctx, qb.SelectSQL(), qb.CountArgs()...)
}

func (r *treatmentRepoPG) Update(ctx context.Context, id int64, patch *db.Patch) error {
	tenantID, err := db.RequireTenant(ctx)
	if err != nil {
		return err
	}
	sql, args := patch.Build("treatments", id, tenantID, "id", "updated_at = NOW()")
	return r.conn(ctx).QueryRow(ctx, sql, args...).Scan(&id)
}

func (r *treatmentRepoPG) Delete(ctx context.Context, id int64) error {
	tenantID, err := db.RequireTenant(ctx)
	if err != nil {
		return err
	}
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM treatments WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *treatmentRepoPG) Stats(ctx context.Context, params map[string]string) (*Stats, error) {
	tenantID, err := db.RequireTenant(ctx)
	if err != nil {
		return nil, err
	}
	qb := db.NewSearchQuery("treatments t JOIN appointments a ON a.id = t.appointment_id", `
		COUNT(*),
		COUNT(*) FILTER (WHERE t.completed),
		COUNT(*) FILTER (WHERE NOT t.completed),
		COALESCE(SUM(t.cost), 0)::float8,
		COALESCE(AVG(t.cost), 0)::float8,
		COALESCE(SUM(t.cost) FILTER (WHERE t.completed), 0)::float8`)
	qb.Eq("t.tenant_id", tenantID)
	if err := qb.ApplyParams(params, statsFilters); err != nil {
		return nil, err
	}

	var s Stats
	err = r.conn(ctx).QueryRow(ctx, qb.SelectSQL(), qb.CountArgs()...).Scan(
		&s.Total, &s.Completed, &s.Pending, &s.TotalRevenue, &s.AverageCost, &s.CompletedRevenue)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *treatmentRepoPG) query(ctx context.Context, sql string, args ...interface{}) ([]*Treatment, error) {
	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*Treatment{}
	for rows.Next() {
		t, err := scanTreatment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

func scanTreatment(row pgx.Row) (*Treatment, error) {
	var t Treatment
	err := row.Scan(
		&t.ID, &t.TenantID, &t.AppointmentID, &t.Description, &t.Cost, &t.Completed,
		&t.CreatedAt, &t.UpdatedAt,
		&t.AppointmentTime, &t.AppointmentStatus, &t.PatientName, &t.PatientLastName, &t.PatientPhone,
		&t.DentistName, &t.OfficeName,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

type referencesPG struct {
	pool *pgxpool.Pool
}

func NewReferences(pool *pgxpool.Pool) References {
	return &referencesPG{pool: pool}
}

func (r *referencesPG) Appointment(ctx context.Context, id int64) (*AppointmentRef, error) {
	tenantID, err := db.RequireTenant(ctx)
	if err != nil {
		return nil, err
	}
	var a AppointmentRef
	err = db.Conn(ctx, r.pool).QueryRow(ctx, `
		SELECT a.id, a.appointment_time, a.status, p.name, p.last_name, d.name, o.name
		FROM appointments a
		JOIN patients p ON p.id = a.patient_id
		JOIN dentists d ON d.id = a.dentist_id
		JOIN offices o ON o.id = a.office_id
		WHERE a.id = $1 AND a.tenant_id = $2`, id, tenantID,
	).Scan(&a.ID, &a.AppointmentTime, &a.Status, &a.PatientName, &a.PatientLastName, &a.DentistName, &a.OfficeName)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *referencesPG) Patient(ctx context.Context, id int64) (*PatientRef, error) {
	tenantID, err := db.RequireTenant(ctx)
	if err != nil {
		return nil, err
	}
	var p PatientRef
	err = db.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT id, name, last_name FROM patients WHERE id = $1 AND tenant_id = $2 AND status = 1`,
		id, tenantID).Scan(&p.ID, &p.Name, &p.LastName)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

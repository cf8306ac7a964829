package scheduling

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dentix/dentix/internal/platform/db"
)

type appointmentRepoPG struct {
	pool *pgxpool.Pool
}

func NewAppointmentRepo(pool *pgxpool.Pool) AppointmentRepository {
	return &appointmentRepoPG{pool: pool}
}

func (r *appointmentRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const appointmentCols = `a.id, a.tenant_id, a.patient_id, a.dentist_id, a.office_id, a.appointment_time,
	a.status, a.reason, a.created_at, a.updated_at,
	p.name, p.last_name, p.phone, p.email, d.name, o.name`

const appointmentFrom = `appointments a
	JOIN patients p ON p.id = a.patient_id
	JOIN dentists d ON d.id = a.dentist_id
	JOIN offices o ON o.id = a.office_id`

var appointmentFilters = db.FilterSet{
	"patient_id": {Op: db.FilterInt, Column: "a.patient_id"},
	"dentist_id": {Op: db.FilterInt, Column: "a.dentist_id"},
	"office_id":  {Op: db.FilterInt, Column: "a.office_id"},
	"status":     {Op: db.FilterExact, Column: "a.status"},
	"date_from":  {Op: db.FilterDateFrom, Column: "a.appointment_time"},
	"date_to":    {Op: db.FilterDateTo, Column: "a.appointment_time"},
}

var rangeFilters = db.FilterSet{
	"date_from": appointmentFilters["date_from"],
	"date_to":   appointmentFilters["date_to"],
}

func (r *appointmentRepoPG) Create(ctx context.Context, a *Appointment) error {
	tenantID, err := db.RequireTenant(ctx)
	if err != nil {
		return err
	}
	a.TenantID = tenantID

	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO appointments (tenant_id, patient_id, dentist_id, office_id, appointment_time, status, reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		a.TenantID, a.PatientID, a.DentistID, a.OfficeID, a.AppointmentTime, a.Status, a.Reason,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

func (r *appointmentRepoPG) GetByID(ctx context.Context, id int64) (*Appointment, error) {
	tenantID, err := db.RequireTenant(ctx)
	if err != nil {
		return nil, err
	}
	return scanAppointment(r.conn(ctx).QueryRow(ctx,
		`SELECT `+appointmentCols+` FROM `+appointmentFrom+` WHERE a.id = $1 AND a.tenant_id = $2`, id, tenantID))
}

func (r *appointmentRepoPG) List(ctx context.Context, params map[string]string, limit, offset int) ([]*Appointment, int, error) {
	tenantID, err := db.RequireTenant(ctx)
	if err != nil {
		return nil, 0, err
	}
	qb := db.NewSearchQuery(appointmentFrom, appointmentCols)
	qb.Eq("a.tenant_id", tenantID)
	if err := qb.ApplyParams(params, appointmentFilters); err != nil {
		return nil, 0, err
	}
	qb.OrderBy("a.appointment_time DESC, a.id DESC")

	var total int
	if err := r.conn(ctx).QueryRow(ctx, qb.CountSQL(), qb.CountArgs()...).Scan(&total); err != nil {
		return nil, 0, err
	}
	items, err := r.query(ctx, qb.DataSQL(), qb.DataArgs(limit, offset)...)
	return items, total, err
}

func (r *appointmentRepoPG) ListByPatient(ctx context.Context, patientID int64) ([]*Appointment, error) {
	tenantID, err := db.RequireTenant(ctx)
	if err != nil {
		return nil, err
	}
	return r.query(ctx, `SELECT `+appointmentCols+` FROM `+appointmentFrom+`
		WHERE a.tenant_id = $1 AND a.patient_id = $2
		ORDER BY a.appointment_time DESC, a.id DESC`, tenantID, patientID)
}

func (r *appointmentRepoPG) ListByDentist(ctx context.Context, dentistID int64, params map[string]string) ([]*Appointment, error) {
	tenantID, err := db.RequireTenant(ctx)
	if err != nil {
		return nil, err
	}
	qb := db.NewSearchQuery(appointmentFrom, appointmentCols)
	qb.Eq("a.tenant_id", tenantID)
	qb.Eq("a.dentist_id", dentistID)
	if err := qb.ApplyParams(params, rangeFilters); err != nil {
		return nil, err
	}
	qb.OrderBy("a.appointment_time ASC, a.id ASC")
	return r.query(ctx, qb.SelectSQL(), qb.CountArgs()...)
}

func (r *appointmentRepoPG) Update(ctx context.Context, id int64, patch *db.Patch) error {
	tenantID, err := db.RequireTenant(ctx)
	if err != nil {
		return err
	}
	sql, args := patch.Build("appointments", id, tenantID, "id", "updated_at = NOW()")
	return r.conn(ctx).QueryRow(ctx, sql, args...).Scan(&id)
}

// Delete removes the appointment unless it is completed.
func (r *appointmentRepoPG) Delete(ctx context.Context, id int64) error {
	tenantID, err := db.RequireTenant(ctx)
	if err != nil {
		return err
	}
	tag, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM appointments WHERE id = $1 AND tenant_id = $2 AND status <> 'completed'`, id, tenantID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *appointmentRepoPG) Stats(ctx context.Context, params map[string]string) (*Stats, error) {
	tenantID, err := db.RequireTenant(ctx)
	if err != nil {
		return nil, err
	}
	qb := db.NewSearchQuery("appointments a", `
		COUNT(*),
		COUNT(*) FILTER (WHERE a.status = 'pending'),
		COUNT(*) FILTER (WHERE a.status = 'completed'),
		COUNT(*) FILTER (WHERE a.status = 'cancelled'),
		COUNT(*) FILTER (WHERE a.appointment_time::date = CURRENT_DATE),
		COUNT(*) FILTER (WHERE a.appointment_time::date = CURRENT_DATE + 1)`)
	qb.Eq("a.tenant_id", tenantID)
	if err := qb.ApplyParams(params, rangeFilters); err != nil {
		return nil, err
	}

	var s Stats
	err = r.conn(ctx).QueryRow(ctx, qb.SelectSQL(), qb.CountArgs()...).Scan(
		&s.Total, &s.Pending, &s.Completed, &s.Cancelled, &s.Today, &s.Tomorrow)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *appointmentRepoPG) HasPendingConflict(ctx context.Context, dentistID int64, at time.Time, excludeID int64) (bool, error) {
	tenantID, err := db.RequireTenant(ctx)
	if err != nil {
		return false, err
	}
	var exists bool
	err = r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE tenant_id = $1 AND dentist_id = $2 AND appointment_time = $3
			  AND status = 'pending' AND id <> $4
		)`, tenantID, dentistID, at, excludeID).Scan(&exists)
	return exists, err
}

func (r *appointmentRepoPG) query(ctx context.Context, sql string, args ...interface{}) ([]*Appointment, error) {
	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*Appointment{}
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(
		&a.ID, &a.TenantID, &a.PatientID, &a.DentistID, &a.OfficeID, &a.AppointmentTime,
		&a.Status, &a.Reason, &a.CreatedAt, &a.UpdatedAt,
		&a.PatientName, &a.PatientLastName, &a.PatientPhone, &a.PatientEmail, &a.DentistName, &a.OfficeName,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

type referencesPG struct {
	pool *pgxpool.Pool
}

func NewReferences(pool *pgxpool.Pool) References {
	return &referencesPG{pool: pool}
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

func (r *referencesPG) Dentist(ctx context.Context, id int64) (*DentistRef, error) {
	tenantID, err := db.RequireTenant(ctx)
	if err != nil {
		return nil, err
	}
	var d DentistRef
	err = db.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT id, name FROM dentists WHERE id = $1 AND tenant_id = $2`, id, tenantID).Scan(&d.ID, &d.Name)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *referencesPG) Office(ctx context.Context, id int64) error {
	tenantID, err := db.RequireTenant(ctx)
	if err != nil {
		return err
	}
	return db.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT id FROM offices WHERE id = $1 AND tenant_id = $2`, id, tenantID).Scan(&id)
}

package clinical

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dentix/dentix/internal/platform/db"
)

// -- Clinical History --

type historyRepoPG struct {
	pool *pgxpool.Pool
}

func NewHistoryRepo(pool *pgxpool.Pool) HistoryRepository {
	return &historyRepoPG{pool: pool}
}

func (r *historyRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const historyCols = `ch.id, ch.tenant_id, ch.patient_id, ch.observation, ch.created_at, ch.updated_at,
	p.name, p.last_name`

const historyFrom = `clinical_history ch JOIN patients p ON p.id = ch.patient_id`

var historyFilters = db.FilterSet{
	"patient_id":  {Op: db.FilterInt, Column: "ch.patient_id"},
	"observation": {Op: db.FilterContains, Column: "ch.observation"},
	"date_from":   {Op: db.FilterDateFrom, Column: "ch.created_at"},
	"date_to":     {Op: db.FilterDateTo, Column: "ch.created_at"},
}

func (r *historyRepoPG) Create(ctx context.Context, h *History) error {
	tenantID, err := db.RequireTenant(ctx)
	if err != nil {
		return err
	}
	h.TenantID = tenantID
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO clinical_history (tenant_id, patient_id, observation)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`,
		h.TenantID, h.PatientID, h.Observation,
	).Scan(&h.ID, &h.CreatedAt, &h.UpdatedAt)
}

func (r *historyRepoPG) GetByID(ctx context.Context, id int64) (*History, error) {
	tenantID, err := db.RequireTenant(ctx)
	if err != nil {
		return nil, err
	}
	return scanHistory(r.conn(ctx).QueryRow(ctx,
		`SELECT `+historyCols+` FROM `+historyFrom+` WHERE ch.id = $1 AND ch.tenant_id = $2`, id, tenantID))
}

func (r *historyRepoPG) List(ctx context.Context, params map[string]string, limit, offset int) ([]*History, int, error) {
	tenantID, err := db.RequireTenant(ctx)
	if err != nil {
		return nil, 0, err
	}
	qb := db.NewSearchQuery(historyFrom, historyCols)
	qb.Eq("ch.tenant_id", tenantID)
	if err := qb.ApplyParams(params, historyFilters); err != nil {
		return nil, 0, err
	}
	qb.OrderBy("ch.created_at DESC, ch.id DESC")

	var total int
	if err := r.conn(ctx).QueryRow(ctx, qb.CountSQL(), qb.CountArgs()...).Scan(&total); err != nil {
		return nil, 0, err
	}
	items, err := r.query(ctx, qb.DataSQL(), qb.DataArgs(limit, offset)...)
	return items, total, err
}

func (r *historyRepoPG) ListByPatient(ctx context.Context, patientID int64) ([]*History, error) {
	tenantID, err := db.RequireTenant(ctx)
	if err != nil {
		return nil, err
	}
	return r.query(ctx, `SELECT `+historyCols+` FROM `+historyFrom+`
		WHERE ch.tenant_id = $1 AND ch.patient_id = $2
		ORDER BY ch.created_at DESC, ch.id DESC`, tenantID, patientID)
}

func (r *historyRepoPG) Update(ctx context.Context, id int64, patch *db.Patch) error {
	tenantID, err := db.RequireTenant(ctx)
	if err != nil {
		return err
	}
	sql, args := patch.Build("clinical_history", id, tenantID, "id", "updated_at = NOW()")
	return r.conn(ctx).QueryRow(ctx, sql, args...).Scan(&id)
}

// Delete removes the history row. Attachments are not cascaded, so a history
// that still has files fails with a foreign key violation.
func (r *historyRepoPG) Delete(ctx context.Context, id int64) error {
	tenantID, err := db.RequireTenant(ctx)
	if err != nil {
		return err
	}
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM clinical_history WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *historyRepoPG) query(ctx context.Context, sql string, args ...interface{}) ([]*History, error) {
	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*History{}
	for rows.Next() {
		h, err := scanHistory(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, h)
	}
	return items, rows.Err()
}

func scanHistory(row pgx.Row) (*History, error) {
	var h History
	err := row.Scan(&h.ID, &h.TenantID, &h.PatientID, &h.Observation, &h.CreatedAt, &h.UpdatedAt,
		&h.PatientName, &h.PatientLastName)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// -- Attachments --

type attachmentRepoPG struct {
	pool *pgxpool.Pool
}

func NewAttachmentRepo(pool *pgxpool.Pool) AttachmentRepository {
	return &attachmentRepoPG{pool: pool}
}

func (r *attachmentRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const attachmentCols = `id, tenant_id, clinical_history_id, filename, mime_type, base64_content, created_at, updated_at`

// attachmentMetaCols projects an empty content column for listings.
const attachmentMetaCols = `id, tenant_id, clinical_history_id, filename, mime_type, '' AS base64_content, created_at, updated_at`

func (r *attachmentRepoPG) Create(ctx context.Context, a *Attachment) error {
	tenantID, err := db.RequireTenant(ctx)
	if err != nil {
		return err
	}
	a.TenantID = tenantID
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO clinical_history_attachments (tenant_id, clinical_history_id, filename, mime_type, base64_content)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		a.TenantID, a.ClinicalHistoryID, a.Filename, a.MimeType, a.Base64Content,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

func (r *attachmentRepoPG) GetByID(ctx context.Context, id int64) (*Attachment, error) {
	tenantID, err := db.RequireTenant(ctx)
	if err != nil {
		return nil, err
	}
	return scanAttachment(r.conn(ctx).QueryRow(ctx,
		`SELECT `+attachmentCols+` FROM clinical_history_attachments WHERE id = $1 AND tenant_id = $2`, id, tenantID))
}

func (r *attachmentRepoPG) List(ctx context.Context, historyID int64, limit, offset int) ([]*Attachment, int, error) {
	tenantID, err := db.RequireTenant(ctx)
	if err != nil {
		return nil, 0, err
	}
	qb := db.NewSearchQuery("clinical_history_attachments", attachmentMetaCols)
	qb.Eq("tenant_id", tenantID)
	if historyID > 0 {
		qb.Eq("clinical_history_id", historyID)
	}
	qb.OrderBy("created_at DESC, id DESC")

	var total int
	if err := r.conn(ctx).QueryRow(ctx, qb.CountSQL(), qb.CountArgs()...).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, qb.DataSQL(), qb.DataArgs(limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := []*Attachment{}
	for rows.Next() {
		a, err := scanAttachment(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}

func (r *attachmentRepoPG) Update(ctx context.Context, id int64, patch *db.Patch) (*Attachment, error) {
	tenantID, err := db.RequireTenant(ctx)
	if err != nil {
		return nil, err
	}
	sql, args := patch.Build("clinical_history_attachments", id, tenantID, attachmentCols, "updated_at = NOW()")
	return scanAttachment(r.conn(ctx).QueryRow(ctx, sql, args...))
}

func (r *attachmentRepoPG) Delete(ctx context.Context, id int64) error {
	tenantID, err := db.RequireTenant(ctx)
	if err != nil {
		return err
	}
	tag, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM clinical_history_attachments WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanAttachment(row pgx.Row) (*Attachment, error) {
	var a Attachment
	err := row.Scan(&a.ID, &a.TenantID, &a.ClinicalHistoryID, &a.Filename, &a.MimeType, &a.Base64Content,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("scan attachment: %w", err)
	}
	return &a, nil
}

// -- Patients --

type patientLookupPG struct {
	pool *pgxpool.Pool
}

func NewPatientLookup(pool *pgxpool.Pool) PatientLookup {
	return &patientLookupPG{pool: pool}
}

func (r *patientLookupPG) Patient(ctx context.Context, id int64) (*PatientRef, error) {
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

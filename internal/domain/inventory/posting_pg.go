package inventory

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dentix/dentix/internal/platform/db"
)

type postingRepoPG struct {
	pool *pgxpool.Pool
}

func NewPostingRepo(pool *pgxpool.Pool) PostingRepository {
	return &postingRepoPG{pool: pool}
}

func (r *postingRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

// dateArg binds an empty date as NULL so the column default applies.
func dateArg(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// -- Incoming --

const incomingCols = `it.id, it.tenant_id, it.transaction_number, to_char(it.transaction_date, 'YYYY-MM-DD'),
	it.supplier_id, s.name, s.code, it.invoice_number, it.transaction_type,
	it.subtotal, it.tax_amount, it.total, it.notes, it.created_by, it.created_at`

const incomingFrom = `incoming_transactions it LEFT JOIN suppliers s ON s.id = it.supplier_id`

var incomingFilters = db.FilterSet{
	"supplier_id":        {Op: db.FilterInt, Column: "it.supplier_id"},
	"transaction_number": {Op: db.FilterExact, Column: "it.transaction_number"},
	"transaction_type":   {Op: db.FilterExact, Column: "it.transaction_type"},
	"start_date":         {Op: db.FilterDateFrom, Column: "it.transaction_date"},
	"end_date":           {Op: db.FilterDateTo, Column: "it.transaction_date"},
}

func (r *postingRepoPG) InsertIncoming(ctx context.Context, t *IncomingTransaction) error {
	tenantID, err := db.RequireTenant(ctx)
	if err != nil {
		return err
	}
	t.TenantID = tenantID

	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO incoming_transactions (
			tenant_id, transaction_number, transaction_date, supplier_id, invoice_number,
			transaction_type, subtotal, tax_amount, total, notes, created_by
		) VALUES ($1, $2, COALESCE($3::date, CURRENT_DATE), $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, to_char(transaction_date, 'YYYY-MM-DD'), created_at`,
		t.TenantID, t.TransactionNumber, dateArg(t.TransactionDate), t.SupplierID, t.InvoiceNumber,
		t.TransactionType, t.Subtotal, t.TaxAmount, t.Total, t.Notes, t.CreatedBy,
	).Scan(&t.ID, &t.TransactionDate, &t.CreatedAt)
}

// InsertIncomingDetail inserts one line. A supply outside the tenant, or
// inactive, inserts nothing and fails the posting.
func (r *postingRepoPG) InsertIncomingDetail(ctx context.Context, d *IncomingDetail) error {
	tenantID, err := db.RequireTenant(ctx)
	if err != nil {
		return err
	}
	err = r.conn(ctx).QueryRow(ctx, `
		INSERT INTO incoming_details (
			tenant_id, incoming_id, supply_id, quantity, unit_cost, subtotal,
			batch_number, expiration_date, warehouse_location, notes
		)
		SELECT $1::text, $2::bigint, ms.id, $4::numeric, $5::numeric, $6::numeric,
			$7::text, $8::date, $9::text, $10::text
		FROM master_supplies ms
		WHERE ms.id = $3 AND ms.tenant_id = $1 AND ms.status
		RETURNING id`,
		tenantID, d.IncomingID, d.SupplyID, d.Quantity, d.UnitCost, d.Subtotal,
		d.BatchNumber, d.ExpirationDate, d.WarehouseLocation, d.Notes,
	).Scan(&d.ID)
	if db.IsNoRows(err) {
		return fmt.Errorf("supply %d does not exist", d.SupplyID)
	}
	return err
}

func (r *postingRepoPG) GetIncoming(ctx context.Context, id int64) (*IncomingTransaction, error) {
	tenantID, err := db.RequireTenant(ctx)
	if err != nil {
		return nil, err
	}
	t, err := scanIncoming(r.conn(ctx).QueryRow(ctx,
		`SELECT `+incomingCols+` FROM `+incomingFrom+` WHERE it.id = $1 AND it.tenant_id = $2`, id, tenantID))
	if err != nil {
		return nil, err
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT d.id, d.incoming_id, d.supply_id, ms.code, ms.name, d.quantity, d.unit_cost, d.subtotal,
			d.batch_number, to_char(d.expiration_date, 'YYYY-MM-DD'), d.warehouse_location, d.notes
		FROM incoming_details d
		JOIN master_supplies ms ON ms.id = d.supply_id
		WHERE d.incoming_id = $1 AND d.tenant_id = $2
		ORDER BY d.id`, id, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	t.Details = []IncomingDetail{}
	for rows.Next() {
		var d IncomingDetail
		if err := rows.Scan(&d.ID, &d.IncomingID, &d.SupplyID, &d.SupplyCode, &d.SupplyName, &d.Quantity,
			&d.UnitCost, &d.Subtotal, &d.BatchNumber, &d.ExpirationDate, &d.WarehouseLocation, &d.Notes); err != nil {
			return nil, err
		}
		t.Details = append(t.Details, d)
	}
	return t, rows.Err()
}

func (r *postingRepoPG) ListIncoming(ctx context.Context, params map[string]string, limit, offset int) ([]*IncomingTransaction, int, error) {
	tenantID, err := db.RequireTenant(ctx)
	if err != nil {
		return nil, 0, err
	}
	qb := db.NewSearchQuery(incomingFrom, incomingCols)
	qb.Eq("it.tenant_id", tenantID)
	if err := qb.ApplyParams(params, incomingFilters); err != nil {
		return nil, 0, err
	}
	qb.OrderBy("it.transaction_date DESC, it.id DESC")

	var total int
	if err := r.conn(ctx).QueryRow(ctx, qb.CountSQL(), qb.CountArgs()...).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, qb.DataSQL(), qb.DataArgs(limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := []*IncomingTransaction{}
	for rows.Next() {
		t, err := scanIncoming(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, t)
	}
	return items, total, rows.Err()
}

func scanIncoming(row pgx.Row) (*IncomingTransaction, error) {
	var t IncomingTransaction
	err := row.Scan(&t.ID, &t.TenantID, &t.TransactionNumber, &t.TransactionDate,
		&t.SupplierID, &t.SupplierName, &t.SupplierCode, &t.InvoiceNumber, &t.TransactionType,
		&t.Subtotal, &t.TaxAmount, &t.Total, &t.Notes, &t.CreatedBy, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// -- Outgoing --

const outgoingCols = `ot.id, ot.tenant_id, ot.transaction_number, to_char(ot.transaction_date, 'YYYY-MM-DD'),
	ot.transaction_type, ot.patient_id, p.name || ' ' || p.last_name, ot.dentist_id, d.name,
	ot.reason, ot.total, ot.created_by, ot.created_at`

const outgoingFrom = `outgoing_transactions ot
	LEFT JOIN patients p ON p.id = ot.patient_id
	LEFT JOIN dentists d ON d.id = ot.dentist_id`

var outgoingFilters = db.FilterSet{
	"patient_id":         {Op: db.FilterInt, Column: "ot.patient_id"},
	"dentist_id":         {Op: db.FilterInt, Column: "ot.dentist_id"},
	"transaction_number": {Op: db.FilterExact, Column: "ot.transaction_number"},
	"transaction_type":   {Op: db.FilterExact, Column: "ot.transaction_type"},
	"start_date":         {Op: db.FilterDateFrom, Column: "ot.transaction_date"},
	"end_date":           {Op: db.FilterDateTo, Column: "ot.transaction_date"},
}

func (r *postingRepoPG) InsertOutgoing(ctx context.Context, t *OutgoingTransaction) error {
	tenantID, err := db.RequireTenant(ctx)
	if err != nil {
		return err
	}
	t.TenantID = tenantID

	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO outgoing_transactions (
			tenant_id, transaction_number, transaction_date, transaction_type,
			patient_id, dentist_id, reason, total, created_by
		) VALUES ($1, $2, COALESCE($3::date, CURRENT_DATE), $4, $5, $6, $7, $8, $9)
		RETURNING id, to_char(transaction_date, 'YYYY-MM-DD'), created_at`,
		t.TenantID, t.TransactionNumber, dateArg(t.TransactionDate), t.TransactionType,
		t.PatientID, t.DentistID, t.Reason, t.Total, t.CreatedBy,
	).Scan(&t.ID, &t.TransactionDate, &t.CreatedAt)
}

func (r *postingRepoPG) InsertOutgoingDetail(ctx context.Context, d *OutgoingDetail) error {
	tenantID, err := db.RequireTenant(ctx)
	if err != nil {
		return err
	}
	err = r.conn(ctx).QueryRow(ctx, `
		INSERT INTO outgoing_details (
			tenant_id, outgoing_id, supply_id, quantity, unit_cost, subtotal, batch_number, notes
		)
		SELECT $1::text, $2::bigint, ms.id, $4::numeric, $5::numeric, $6::numeric, $7::text, $8::text
		FROM master_supplies ms
		WHERE ms.id = $3 AND ms.tenant_id = $1 AND ms.status
		RETURNING id`,
		tenantID, d.OutgoingID, d.SupplyID, d.Quantity, d.UnitCost, d.Subtotal, d.BatchNumber, d.Notes,
	).Scan(&d.ID)
	if db.IsNoRows(err) {
		return fmt.Errorf("supply %d does not exist", d.SupplyID)
	}
	return err
}

func (r *postingRepoPG) GetOutgoing(ctx context.Context, id int64) (*OutgoingTransaction, error) {
	tenantID, err := db.RequireTenant(ctx)
	if err != nil {
		return nil, err
	}
	t, err := scanOutgoing(r.conn(ctx).QueryRow(ctx,
		`SELECT `+outgoingCols+` FROM `+outgoingFrom+` WHERE ot.id = $1 AND ot.tenant_id = $2`, id, tenantID))
	if err != nil {
		return nil, err
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT od.id, od.outgoing_id, od.supply_id, ms.code, ms.name, od.quantity, od.unit_cost, od.subtotal,
			od.batch_number, od.notes
		FROM outgoing_details od
		JOIN master_supplies ms ON ms.id = od.supply_id
		WHERE od.outgoing_id = $1 AND od.tenant_id = $2
		ORDER BY od.id`, id, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	t.Details = []OutgoingDetail{}
	for rows.Next() {
		var d OutgoingDetail
		if err := rows.Scan(&d.ID, &d.OutgoingID, &d.SupplyID, &d.SupplyCode, &d.SupplyName, &d.Quantity,
			&d.UnitCost, &d.Subtotal, &d.BatchNumber, &d.Notes); err != nil {
			return nil, err
		}
		t.Details = append(t.Details, d)
	}
	return t, rows.Err()
}

func (r *postingRepoPG) ListOutgoing(ctx context.Context, params map[string]string, limit, offset int) ([]*OutgoingTransaction, int, error) {
	tenantID, err := db.RequireTenant(ctx)
	if err != nil {
		return nil, 0, err
	}
	qb := db.NewSearchQuery(outgoingFrom, outgoingCols)
	qb.Eq("ot.tenant_id", tenantID)
	if err := qb.ApplyParams(params, outgoingFilters); err != nil {
		return nil, 0, err
	}
	qb.OrderBy("ot.transaction_date DESC, ot.id DESC")

	var total int
	if err := r.conn(ctx).QueryRow(ctx, qb.CountSQL(), qb.CountArgs()...).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, qb.DataSQL(), qb.DataArgs(limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := []*OutgoingTransaction{}
	for rows.Next() {
		t, err := scanOutgoing(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, t)
	}
	return items, total, rows.Err()
}

func scanOutgoing(row pgx.Row) (*OutgoingTransaction, error) {
	var t OutgoingTransaction
	err := row.Scan(&t.ID, &t.TenantID, &t.TransactionNumber, &t.TransactionDate,
		&t.TransactionType, &t.PatientID, &t.PatientName, &t.DentistID, &t.DentistName,
		&t.Reason, &t.Total, &t.CreatedBy, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

package inventory

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dentix/dentix/internal/platform/db"
)

// -- Supplies --

type supplyRepoPG struct {
	pool *pgxpool.Pool
}

func NewSupplyRepo(pool *pgxpool.Pool) SupplyRepository {
	return &supplyRepoPG{pool: pool}
}

func (r *supplyRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const supplyCols = `id, tenant_id, code, name, description, category, unit_measure, presentation,
	unit_cost, sale_price, min_stock, max_stock, main_supplier, warehouse_location, status,
	created_by, updated_by, created_at, updated_at`

var supplyFilters = db.FilterSet{
	"code":          {Op: db.FilterExact, Column: "code"},
	"name":          {Op: db.FilterContains, Column: "name"},
	"category":      {Op: db.FilterContains, Column: "category"},
	"main_supplier": {Op: db.FilterInt, Column: "main_supplier"},
}

// supplyLookups are the fields accepted by Lookup.
var supplyLookups = db.FilterSet{
	"id":       {Op: db.FilterInt, Column: "id"},
	"code":     supplyFilters["code"],
	"name":     supplyFilters["name"],
	"category": supplyFilters["category"],
}

func (r *supplyRepoPG) Create(ctx context.Context, s *Supply) error {
	tenantID, err := db.RequireTenant(ctx)
	if err != nil {
		return err
	}
	s.TenantID = tenantID
	s.Status = true

	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO master_supplies (
			tenant_id, code, name, description, category, unit_measure, presentation,
			unit_cost, sale_price, min_stock, max_stock, main_supplier, warehouse_location, created_by
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		RETURNING id, created_at, updated_at`,
		s.TenantID, s.Code, s.Name, s.Description, s.Category, s.UnitMeasure, s.Presentation,
		s.UnitCost, s.SalePrice, s.MinStock, s.MaxStock, s.MainSupplier, s.WarehouseLocation, s.CreatedBy,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

func (r *supplyRepoPG) GetByID(ctx context.Context, id int64) (*Supply, error) {
	tenantID, err := db.RequireTenant(ctx)
	if err != nil {
		return nil, err
	}
	return scanSupply(r.conn(ctx).QueryRow(ctx,
		`SELECT `+supplyCols+` FROM master_supplies WHERE id = $1 AND tenant_id = $2 AND status`, id, tenantID))
}

func (r *supplyRepoPG) Lookup(ctx context.Context, field, value string) ([]*Supply, error) {
	tenantID, err := db.RequireTenant(ctx)
	if err != nil {
		return nil, err
	}
	qb := db.NewSearchQuery("master_supplies", supplyCols)
	qb.Eq("tenant_id", tenantID)
	qb.Add("status")
	if err := qb.ApplyParams(map[string]string{field: value}, supplyLookups); err != nil {
		return nil, err
	}
	qb.OrderBy("name, id")
	return r.query(ctx, qb.SelectSQL(), qb.CountArgs()...)
}

func (r *supplyRepoPG) List(ctx context.Context, params map[string]string, limit, offset int) ([]*Supply, int, error) {
	tenantID, err := db.RequireTenant(ctx)
	if err != nil {
		return nil, 0, err
	}
	qb := db.NewSearchQuery("master_supplies", supplyCols)
	qb.Eq("tenant_id", tenantID)
	qb.Add("status")
	if err := qb.ApplyParams(params, supplyFilters); err != nil {
		return nil, 0, err
	}
	qb.OrderBy("name, id")

	var total int
	if err := r.conn(ctx).QueryRow(ctx, qb.CountSQL(), qb.CountArgs()...).Scan(&total); err != nil {
		return nil, 0, err
	}
	items, err := r.query(ctx, qb.DataSQL(), qb.DataArgs(limit, offset)...)
	return items, total, err
}

func (r *supplyRepoPG) Update(ctx context.Context, id int64, patch *db.Patch) (*Supply, error) {
	tenantID, err := db.RequireTenant(ctx)
	if err != nil {
		return nil, err
	}
	patch.And("status")
	sql, args := patch.Build("master_supplies", id, tenantID, supplyCols, "updated_at = NOW()")
	return scanSupply(r.conn(ctx).QueryRow(ctx, sql, args...))
}

func (r *supplyRepoPG) SoftDelete(ctx context.Context, id int64, by string) error {
	tenantID, err := db.RequireTenant(ctx)
	if err != nil {
		return err
	}
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE master_supplies SET status = FALSE, updated_by = $3, updated_at = NOW()
		WHERE id = $1 AND tenant_id = $2 AND status`, id, tenantID, by)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *supplyRepoPG) query(ctx context.Context, sql string, args ...interface{}) ([]*Supply, error) {
	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*Supply{}
	for rows.Next() {
		s, err := scanSupply(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

func scanSupply(row pgx.Row) (*Supply, error) {
	var s Supply
	err := row.Scan(
		&s.ID, &s.TenantID, &s.Code, &s.Name, &s.Description, &s.Category, &s.UnitMeasure, &s.Presentation,
		&s.UnitCost, &s.SalePrice, &s.MinStock, &s.MaxStock, &s.MainSupplier, &s.WarehouseLocation, &s.Status,
		&s.CreatedBy, &s.UpdatedBy, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// -- Suppliers --

type supplierRepoPG struct {
	pool *pgxpool.Pool
}

func NewSupplierRepo(pool *pgxpool.Pool) SupplierRepository {
	return &supplierRepoPG{pool: pool}
}

func (r *supplierRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const supplierCols = `id, tenant_id, code, name, business_name, tax_id, address, phone, email, main_contact,
	status, created_at, updated_at`

var supplierFilters = db.FilterSet{
	"code":          {Op: db.FilterExact, Column: "code"},
	"name":          {Op: db.FilterContains, Column: "name"},
	"business_name": {Op: db.FilterContains, Column: "business_name"},
	"tax_id":        {Op: db.FilterExact, Column: "tax_id"},
}

var supplierLookups = db.FilterSet{
	"id":            {Op: db.FilterInt, Column: "id"},
	"code":          supplierFilters["code"],
	"name":          supplierFilters["name"],
	"business_name": supplierFilters["business_name"],
}

func (r *supplierRepoPG) Create(ctx context.Context, s *Supplier) error {
	tenantID, err := db.RequireTenant(ctx)
	if err != nil {
		return err
	}
	s.TenantID = tenantID
	s.Status = true

	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO suppliers (tenant_id, code, name, business_name, tax_id, address, phone, email, main_contact)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id, created_at, updated_at`,
		s.TenantID, s.Code, s.Name, s.BusinessName, s.TaxID, s.Address, s.Phone, s.Email, s.MainContact,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

func (r *supplierRepoPG) GetByID(ctx context.Context, id int64) (*Supplier, error) {
	tenantID, err := db.RequireTenant(ctx)
	if err != nil {
		return nil, err
	}
	return scanSupplier(r.conn(ctx).QueryRow(ctx,
		`SELECT `+supplierCols+` FROM suppliers WHERE id = $1 AND tenant_id = $2 AND status`, id, tenantID))
}

func (r *supplierRepoPG) Lookup(ctx context.Context, field, value string) ([]*Supplier, error) {
	tenantID, err := db.RequireTenant(ctx)
	if err != nil {
		return nil, err
	}
	qb := db.NewSearchQuery("suppliers", supplierCols)
	qb.Eq("tenant_id", tenantID)
	qb.Add("status")
	if err := qb.ApplyParams(map[string]string{field: value}, supplierLookups); err != nil {
		return nil, err
	}
	qb.OrderBy("name, id")
	return r.query(ctx, qb.SelectSQL(), qb.CountArgs()...)
}

func (r *supplierRepoPG) List(ctx context.Context, params map[string]string, limit, offset int) ([]*Supplier, int, error) {
	tenantID, err := db.RequireTenant(ctx)
	if err != nil {
		return nil, 0, err
	}
	qb := db.NewSearchQuery("suppliers", supplierCols)
	qb.Eq("tenant_id", tenantID)
	qb.Add("status")
	if err := qb.ApplyParams(params, supplierFilters); err != nil {
		return nil, 0, err
	}
	qb.OrderBy("name, id")

	var total int
	if err := r.conn(ctx).QueryRow(ctx, qb.CountSQL(), qb.CountArgs()...).Scan(&total); err != nil {
		return nil, 0, err
	}
	items, err := r.query(ctx, qb.DataSQL(), qb.DataArgs(limit, offset)...)
	return items, total, err
}

func (r *supplierRepoPG) Update(ctx context.Context, id int64, patch *db.Patch) (*Supplier, error) {
	tenantID, err := db.RequireTenant(ctx)
	if err != nil {
		return nil, err
	}
	patch.And("status")
	sql, args := patch.Build("suppliers", id, tenantID, supplierCols, "updated_at = NOW()")
	return scanSupplier(r.conn(ctx).QueryRow(ctx, sql, args...))
}

func (r *supplierRepoPG) SoftDelete(ctx context.Context, id int64) error {
	tenantID, err := db.RequireTenant(ctx)
	if err != nil {
		return err
	}
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE suppliers SET status = FALSE, updated_at = NOW() WHERE id = $1 AND tenant_id = $2 AND status`,
		id, tenantID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *supplierRepoPG) query(ctx context.Context, sql string, args ...interface{}) ([]*Supplier, error) {
	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*Supplier{}
	for rows.Next() {
		s, err := scanSupplier(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

func scanSupplier(row pgx.Row) (*Supplier, error) {
	var s Supplier
	err := row.Scan(
		&s.ID, &s.TenantID, &s.Code, &s.Name, &s.BusinessName, &s.TaxID, &s.Address, &s.Phone, &s.Email,
		&s.MainContact, &s.Status, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// -- References --

type referencesPG struct {
	pool *pgxpool.Pool
}

func NewReferences(pool *pgxpool.Pool) References {
	return &referencesPG{pool: pool}
}

func (r *referencesPG) Patient(ctx context.Context, id int64) error {
	return r.exists(ctx, `SELECT id FROM patients WHERE id = $1 AND tenant_id = $2 AND status = 1`, id)
}

func (r *referencesPG) Dentist(ctx context.Context, id int64) error {
	return r.exists(ctx, `SELECT id FROM dentists WHERE id = $1 AND tenant_id = $2`, id)
}

func (r *referencesPG) exists(ctx context.Context, sql string, id int64) error {
	tenantID, err := db.RequireTenant(ctx)
	if err != nil {
		return err
	}
	return db.Conn(ctx, r.pool).QueryRow(ctx, sql, id, tenantID).Scan(&id)
}

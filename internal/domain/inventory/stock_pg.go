package inventory

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dentix/dentix/internal/platform/db"
)

type stockRepoPG struct {
	pool *pgxpool.Pool
}

func NewStockRepo(pool *pgxpool.Pool) StockRepository {
	return &stockRepoPG{pool: pool}
}

func (r *stockRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const stockCols = `supply_id, code, name, category, unit_measure, min_stock, max_stock, current_stock`

var movementFilters = db.FilterSet{
	"supply_id":     {Op: db.FilterInt, Column: "supply_id"},
	"movement_type": {Op: db.FilterExact, Column: "movement_type"},
	"start_date":    {Op: db.FilterDateFrom, Column: "movement_date"},
	"end_date":      {Op: db.FilterDateTo, Column: "movement_date"},
}

func (r *stockRepoPG) CurrentStock(ctx context.Context) ([]*StockLevel, error) {
	return r.levels(ctx, `SELECT `+stockCols+` FROM current_stock_view WHERE tenant_id = $1 ORDER BY name, supply_id`)
}

func (r *stockRepoPG) LowStock(ctx context.Context) ([]*StockLevel, error) {
	return r.levels(ctx, `SELECT `+stockCols+` FROM low_stock_view WHERE tenant_id = $1 ORDER BY current_stock ASC, name`)
}

func (r *stockRepoPG) levels(ctx context.Context, sql string) ([]*StockLevel, error) {
	tenantID, err := db.RequireTenant(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := r.conn(ctx).Query(ctx, sql, tenantID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*StockLevel, error) {
		var s StockLevel
		err := row.Scan(&s.SupplyID, &s.Code, &s.Name, &s.Category, &s.UnitMeasure,
			&s.MinStock, &s.MaxStock, &s.CurrentStock)
		return &s, err
	})
}

func (r *stockRepoPG) StockBySupply(ctx context.Context, supplyID int64) ([]*BatchStock, error) {
	tenantID, err := db.RequireTenant(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT supply_id, batch_number, to_char(expiration_date, 'YYYY-MM-DD'), warehouse_location, quantity
		FROM current_stock
		WHERE supply_id = $1 AND tenant_id = $2
		ORDER BY expiration_date ASC NULLS LAST`, supplyID, tenantID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*BatchStock, error) {
		var b BatchStock
		err := row.Scan(&b.SupplyID, &b.BatchNumber, &b.ExpirationDate, &b.WarehouseLocation, &b.Quantity)
		return &b, err
	})
}

// Movements returns the newest movements first, at most limit rows.
func (r *stockRepoPG) Movements(ctx context.Context, params map[string]string, limit int) ([]*Movement, error) {
	tenantID, err := db.RequireTenant(ctx)
	if err != nil {
		return nil, err
	}
	qb := db.NewSearchQuery("recent_movements_view", `movement_type, transaction_id, transaction_number,
		to_char(movement_date, 'YYYY-MM-DD'), supply_id, supply_code, supply_name, quantity, unit_cost, batch_number`)
	qb.Eq("tenant_id", tenantID)
	if err := qb.ApplyParams(params, movementFilters); err != nil {
		return nil, err
	}
	qb.OrderBy("movement_date DESC, transaction_id DESC")

	rows, err := r.conn(ctx).Query(ctx, qb.DataSQL(), qb.DataArgs(limit, 0)...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Movement, error) {
		var m Movement
		err := row.Scan(&m.MovementType, &m.TransactionID, &m.TransactionNumber, &m.MovementDate,
			&m.SupplyID, &m.SupplyCode, &m.SupplyName, &m.Quantity, &m.UnitCost, &m.BatchNumber)
		return &m, err
	})
}

func (r *stockRepoPG) Categories(ctx context.Context) ([]*Category, error) {
	tenantID, err := db.RequireTenant(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT id, name, description FROM supply_categories WHERE tenant_id = $1 AND status ORDER BY name`, tenantID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Category, error) {
		var c Category
		err := row.Scan(&c.ID, &c.Name, &c.Description)
		return &c, err
	})
}

func (r *stockRepoPG) Units(ctx context.Context) ([]*Unit, error) {
	tenantID, err := db.RequireTenant(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT id, name, abbreviation FROM units_of_measure WHERE tenant_id = $1 AND status ORDER BY name`, tenantID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Unit, error) {
		var u Unit
		err := row.Scan(&u.ID, &u.Name, &u.Abbreviation)
		return &u, err
	})
}

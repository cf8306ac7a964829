package inventory

import (
	"context"

	"github.com/dentix/dentix/internal/platform/db"
)

// SupplyRepository and SupplierRepository only see active rows.
type SupplyRepository interface {
	Create(ctx context.Context, s *Supply) error
	GetByID(ctx context.Context, id int64) (*Supply, error)
	// Lookup matches one field: id or code exactly, name or category by
	// substring.
	Lookup(ctx context.Context, field, value string) ([]*Supply, error)
	List(ctx context.Context, params map[string]string, limit, offset int) ([]*Supply, int, error)
	Update(ctx context.Context, id int64, patch *db.Patch) (*Supply, error)
	SoftDelete(ctx context.Context, id int64, by string) error
}

type SupplierRepository interface {
	Create(ctx context.Context, s *Supplier) error
	GetByID(ctx context.Context, id int64) (*Supplier, error)
	Lookup(ctx context.Context, field, value string) ([]*Supplier, error)
	List(ctx context.Context, params map[string]string, limit, offset int) ([]*Supplier, int, error)
	Update(ctx context.Context, id int64, patch *db.Patch) (*Supplier, error)
	SoftDelete(ctx context.Context, id int64) error
}

// PostingRepository writes and reads stock postings. Insert methods join the
// transaction carried by ctx.
type PostingRepository interface {
	InsertIncoming(ctx context.Context, t *IncomingTransaction) error
	InsertIncomingDetail(ctx context.Context, d *IncomingDetail) error
	GetIncoming(ctx context.Context, id int64) (*IncomingTransaction, error)
	ListIncoming(ctx context.Context, params map[string]string, limit, offset int) ([]*IncomingTransaction, int, error)

	InsertOutgoing(ctx context.Context, t *OutgoingTransaction) error
	InsertOutgoingDetail(ctx context.Context, d *OutgoingDetail) error
	GetOutgoing(ctx context.Context, id int64) (*OutgoingTransaction, error)
	ListOutgoing(ctx context.Context, params map[string]string, limit, offset int) ([]*OutgoingTransaction, int, error)
}

// StockRepository reads the derived stock views and tenant reference lists.
type StockRepository interface {
	CurrentStock(ctx context.Context) ([]*StockLevel, error)
	LowStock(ctx context.Context) ([]*StockLevel, error)
	StockBySupply(ctx context.Context, supplyID int64) ([]*BatchStock, error)
	Movements(ctx context.Context, params map[string]string, limit int) ([]*Movement, error)
	Categories(ctx context.Context) ([]*Category, error)
	Units(ctx context.Context) ([]*Unit, error)
}

// References checks the patient and dentist an outgoing posting names.
// Missing rows are pgx.ErrNoRows.
type References interface {
	Patient(ctx context.Context, id int64) error
	Dentist(ctx context.Context, id int64) error
}
